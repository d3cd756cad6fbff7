package service

import (
	"context"
	"encoding/json"
	"fmt"

	"golang-sales-insights/internal/worker/dto"
	"golang-sales-insights/internal/worker/repository"
	"golang-sales-insights/pkg/common"
	"golang-sales-insights/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// ConsolidationService consumes insight consolidation tasks.
type ConsolidationService interface {
	ProcessTask(ctx context.Context)
	Execute(ctx context.Context, payload dto.ConsolidationTaskPayload) error
}

// NewConsolidationService creates a new ConsolidationService.
func NewConsolidationService(
	log *logger.Logger,
	redisClient *redis.Client,
	aiRepo repository.AIRepository,
	callRepo repository.CallTranscriptRepository,
	oppRepo repository.OpportunityRepository,
) ConsolidationService {
	return &consolidationService{
		log:         log,
		redisClient: redisClient,
		aiRepo:      aiRepo,
		callRepo:    callRepo,
		oppRepo:     oppRepo,
	}
}

type consolidationService struct {
	log         *logger.Logger
	redisClient *redis.Client
	aiRepo      repository.AIRepository
	callRepo    repository.CallTranscriptRepository
	oppRepo     repository.OpportunityRepository
}

// ProcessTask dequeues and executes a single consolidation task.
func (s *consolidationService) ProcessTask(ctx context.Context) {
	payload, messageID, ok := readStreamMessage(ctx, s.redisClient, s.log, common.RedisStreamInsightConsolidation)
	if !ok {
		return
	}

	var task dto.ConsolidationTaskPayload
	if err := json.Unmarshal([]byte(payload), &task); err != nil {
		s.log.Error("Failed to unmarshal consolidation task", logger.ErrorField(err), logger.Field("message_id", messageID))
		ackAndDelete(ctx, s.redisClient, s.log, common.RedisStreamInsightConsolidation, messageID)
		return
	}

	if err := s.Execute(ctx, task); err != nil {
		s.log.Error("Insight consolidation failed", logger.ErrorField(err), logger.Field("opportunity_id", task.OpportunityID))
	}
	ackAndDelete(ctx, s.redisClient, s.log, common.RedisStreamInsightConsolidation, messageID)
}

// Execute regenerates the consolidated insight for one opportunity from
// all of its successfully parsed calls.
func (s *consolidationService) Execute(ctx context.Context, payload dto.ConsolidationTaskPayload) error {
	records, err := s.collectRecords(ctx, payload.OpportunityID)
	if err != nil {
		s.markFailed(ctx, payload.OpportunityID, err)
		return err
	}

	if len(records) < 2 {
		err := fmt.Errorf("consolidation requires at least 2 parsed calls, got %d", len(records))
		s.markFailed(ctx, payload.OpportunityID, err)
		return err
	}

	consolidated, err := s.aiRepo.ConsolidateInsights(ctx, records)
	if err != nil {
		s.markFailed(ctx, payload.OpportunityID, err)
		return err
	}

	data, err := json.Marshal(consolidated)
	if err != nil {
		s.markFailed(ctx, payload.OpportunityID, err)
		return err
	}

	if err := s.oppRepo.SaveConsolidatedInsight(ctx, payload.OpportunityID, data); err != nil {
		s.markFailed(ctx, payload.OpportunityID, err)
		return err
	}

	s.log.Info("Consolidated opportunity insights",
		logger.Field("opportunity_id", payload.OpportunityID),
		logger.IntField("source_calls", len(records)),
		logger.StringField("risk_level", consolidated.RiskAssessment.RiskLevel),
	)
	return nil
}

// collectRecords loads each parsed call's stored insight. A call whose
// stored insight no longer unmarshals is skipped with a warning rather than
// blocking every future consolidation of the opportunity.
func (s *consolidationService) collectRecords(ctx context.Context, opportunityID uint) ([]dto.CallInsightRecord, error) {
	calls, err := s.callRepo.FindParsedByOpportunity(ctx, opportunityID)
	if err != nil {
		return nil, err
	}

	records := make([]dto.CallInsightRecord, 0, len(calls))
	for _, call := range calls {
		if len(call.Insight) == 0 {
			continue
		}
		var insight dto.CallInsight
		if err := json.Unmarshal(call.Insight, &insight); err != nil {
			s.log.Warn("Skipping call with unreadable stored insight",
				logger.Field("call_id", call.ID), logger.ErrorField(err))
			continue
		}
		records = append(records, dto.CallInsightRecord{
			CallID:    call.ID,
			Title:     call.Title,
			MeetingAt: call.MeetingAt,
			Insight:   insight,
		})
	}
	return records, nil
}

func (s *consolidationService) markFailed(ctx context.Context, opportunityID uint, cause error) {
	if err := s.oppRepo.MarkConsolidationFailed(ctx, opportunityID, cause.Error()); err != nil {
		s.log.Error("Failed to record consolidation failure", logger.ErrorField(err), logger.Field("opportunity_id", opportunityID))
	}
}

package service

import (
	"context"
	"encoding/json"

	"golang-sales-insights/internal/worker/dto"
	"golang-sales-insights/internal/worker/repository"
	"golang-sales-insights/pkg/common"
	"golang-sales-insights/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// RiskAnalysisService consumes risk analysis tasks.
type RiskAnalysisService interface {
	ProcessTask(ctx context.Context)
	Execute(ctx context.Context, payload dto.CallTaskPayload) error
}

// NewRiskAnalysisService creates a new RiskAnalysisService.
func NewRiskAnalysisService(
	log *logger.Logger,
	redisClient *redis.Client,
	aiRepo repository.AIRepository,
	callRepo repository.CallTranscriptRepository,
) RiskAnalysisService {
	return &riskAnalysisService{
		log:         log,
		redisClient: redisClient,
		aiRepo:      aiRepo,
		callRepo:    callRepo,
	}
}

type riskAnalysisService struct {
	log         *logger.Logger
	redisClient *redis.Client
	aiRepo      repository.AIRepository
	callRepo    repository.CallTranscriptRepository
}

// ProcessTask dequeues and executes a single risk analysis task.
func (s *riskAnalysisService) ProcessTask(ctx context.Context) {
	payload, messageID, ok := readStreamMessage(ctx, s.redisClient, s.log, common.RedisStreamRiskAnalysis)
	if !ok {
		return
	}

	var task dto.CallTaskPayload
	if err := json.Unmarshal([]byte(payload), &task); err != nil {
		s.log.Error("Failed to unmarshal risk task", logger.ErrorField(err), logger.Field("message_id", messageID))
		ackAndDelete(ctx, s.redisClient, s.log, common.RedisStreamRiskAnalysis, messageID)
		return
	}

	if err := s.Execute(ctx, task); err != nil {
		s.log.Error("Risk analysis failed", logger.ErrorField(err), logger.Field("call_id", task.CallID))
	}
	ackAndDelete(ctx, s.redisClient, s.log, common.RedisStreamRiskAnalysis, messageID)
}

// Execute analyzes one call transcript for deal risk and persists the
// assessment.
func (s *riskAnalysisService) Execute(ctx context.Context, payload dto.CallTaskPayload) error {
	call, err := s.callRepo.FindByID(ctx, payload.CallID)
	if err != nil {
		return err
	}

	assessment, err := s.aiRepo.AnalyzeRisk(ctx, call.Transcript)
	if err != nil {
		s.markFailed(ctx, call.ID, err)
		return err
	}

	data, err := json.Marshal(assessment)
	if err != nil {
		s.markFailed(ctx, call.ID, err)
		return err
	}

	if err := s.callRepo.SaveRisk(ctx, call.ID, data); err != nil {
		s.markFailed(ctx, call.ID, err)
		return err
	}

	s.log.Info("Analyzed call risk",
		logger.Field("call_id", call.ID),
		logger.StringField("risk_level", assessment.RiskLevel),
		logger.IntField("factors", len(assessment.RiskFactors)),
	)
	return nil
}

func (s *riskAnalysisService) markFailed(ctx context.Context, callID uint, cause error) {
	if err := s.callRepo.MarkRiskFailed(ctx, callID, cause.Error()); err != nil {
		s.log.Error("Failed to record risk failure", logger.ErrorField(err), logger.Field("call_id", callID))
	}
}

package service

import (
	"context"
	"encoding/json"
	"sync"

	"golang-sales-insights/internal/worker/dto"
	"golang-sales-insights/internal/worker/repository"
	"golang-sales-insights/pkg/common"
	"golang-sales-insights/pkg/logger"
	"golang-sales-insights/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// TranscriptParseService consumes transcript parse tasks and runs the
// extraction pipeline for one call at a time.
type TranscriptParseService interface {
	ProcessTask(ctx context.Context)
	Execute(ctx context.Context, payload dto.CallTaskPayload) error
}

// NewTranscriptParseService creates a new TranscriptParseService.
func NewTranscriptParseService(
	log *logger.Logger,
	redisClient *redis.Client,
	aiRepo repository.AIRepository,
	callRepo repository.CallTranscriptRepository,
) TranscriptParseService {
	return &transcriptParseService{
		log:         log,
		redisClient: redisClient,
		aiRepo:      aiRepo,
		callRepo:    callRepo,
	}
}

type transcriptParseService struct {
	log         *logger.Logger
	redisClient *redis.Client
	aiRepo      repository.AIRepository
	callRepo    repository.CallTranscriptRepository
}

// ProcessTask dequeues and executes a single parse task. The message is
// acknowledged either way: a failed parse is recorded as a terminal status
// on the call, not retried from the stream.
func (s *transcriptParseService) ProcessTask(ctx context.Context) {
	payload, messageID, ok := readStreamMessage(ctx, s.redisClient, s.log, common.RedisStreamTranscriptParse)
	if !ok {
		return
	}

	var task dto.CallTaskPayload
	if err := json.Unmarshal([]byte(payload), &task); err != nil {
		s.log.Error("Failed to unmarshal parse task", logger.ErrorField(err), logger.Field("message_id", messageID))
		ackAndDelete(ctx, s.redisClient, s.log, common.RedisStreamTranscriptParse, messageID)
		return
	}

	if err := s.Execute(ctx, task); err != nil {
		s.log.Error("Transcript parse failed", logger.ErrorField(err), logger.Field("call_id", task.CallID))
	}
	ackAndDelete(ctx, s.redisClient, s.log, common.RedisStreamTranscriptParse, messageID)
}

// Execute parses one call transcript, classifies the extracted people and
// persists the normalized insight.
func (s *transcriptParseService) Execute(ctx context.Context, payload dto.CallTaskPayload) error {
	call, err := s.callRepo.FindByID(ctx, payload.CallID)
	if err != nil {
		return err
	}

	insight, err := s.aiRepo.ParseTranscript(ctx, call.Transcript, payload.Organization)
	if err != nil {
		s.markFailed(ctx, call.ID, err)
		return err
	}

	s.classifyRoles(ctx, insight)

	data, err := json.Marshal(insight)
	if err != nil {
		s.markFailed(ctx, call.ID, err)
		return err
	}

	if err := s.callRepo.SaveInsight(ctx, call.ID, data); err != nil {
		s.markFailed(ctx, call.ID, err)
		return err
	}

	s.log.Info("Parsed call transcript",
		logger.Field("call_id", call.ID),
		logger.IntField("pain_points", len(insight.PainPoints)),
		logger.IntField("people", len(insight.People)),
	)
	return nil
}

// classifyRoles issues one classifier call per extracted person, dispatched
// concurrently and awaited together. Classification failure leaves the
// person's classified role unset; callers must treat it as optional.
func (s *transcriptParseService) classifyRoles(ctx context.Context, insight *dto.CallInsight) {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for i := range insight.People {
		wg.Add(1)
		idx := i
		utils.GoSafe(func() {
			defer wg.Done()
			role, err := s.aiRepo.ClassifyRole(ctx, insight.People[idx].Role)
			if err != nil {
				s.log.Warn("Failed to classify stakeholder role",
					logger.StringField("role", insight.People[idx].Role),
					logger.ErrorField(err),
				)
				return
			}
			mu.Lock()
			insight.People[idx].ClassifiedRole = role
			mu.Unlock()
		})
	}
	wg.Wait()
}

// markFailed is best-effort: a failure to record the failure must not mask
// the original error.
func (s *transcriptParseService) markFailed(ctx context.Context, callID uint, cause error) {
	if err := s.callRepo.MarkParseFailed(ctx, callID, cause.Error()); err != nil {
		s.log.Error("Failed to record parse failure", logger.ErrorField(err), logger.Field("call_id", callID))
	}
}

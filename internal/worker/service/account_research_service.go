package service

import (
	"context"
	"encoding/json"

	"golang-sales-insights/internal/worker/config"
	"golang-sales-insights/internal/worker/dto"
	"golang-sales-insights/internal/worker/repository"
	"golang-sales-insights/pkg/common"
	"golang-sales-insights/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// AccountResearchService consumes account research tasks and refreshes the
// persisted news items for an account.
type AccountResearchService interface {
	ProcessTask(ctx context.Context)
	Execute(ctx context.Context, payload dto.AccountResearchPayload) error
}

// NewAccountResearchService creates a new AccountResearchService.
func NewAccountResearchService(
	cfg *config.Config,
	log *logger.Logger,
	redisClient *redis.Client,
	accountRepo repository.AccountRepository,
	researchRepo repository.AccountResearchRepository,
	newsRepo repository.AccountNewsRepository,
) AccountResearchService {
	return &accountResearchService{
		cfg:          cfg,
		log:          log,
		redisClient:  redisClient,
		accountRepo:  accountRepo,
		researchRepo: researchRepo,
		newsRepo:     newsRepo,
	}
}

type accountResearchService struct {
	cfg          *config.Config
	log          *logger.Logger
	redisClient  *redis.Client
	accountRepo  repository.AccountRepository
	researchRepo repository.AccountResearchRepository
	newsRepo     repository.AccountNewsRepository
}

// ProcessTask dequeues and executes a single research task.
func (s *accountResearchService) ProcessTask(ctx context.Context) {
	payload, messageID, ok := readStreamMessage(ctx, s.redisClient, s.log, common.RedisStreamAccountResearch)
	if !ok {
		return
	}

	var task dto.AccountResearchPayload
	if err := json.Unmarshal([]byte(payload), &task); err != nil {
		s.log.Error("Failed to unmarshal research task", logger.ErrorField(err), logger.Field("message_id", messageID))
		ackAndDelete(ctx, s.redisClient, s.log, common.RedisStreamAccountResearch, messageID)
		return
	}

	if err := s.Execute(ctx, task); err != nil {
		s.log.Error("Account research failed", logger.ErrorField(err), logger.Field("account_id", task.AccountID))
	}
	ackAndDelete(ctx, s.redisClient, s.log, common.RedisStreamAccountResearch, messageID)
}

// Execute refreshes the stored news items for one account.
func (s *accountResearchService) Execute(ctx context.Context, payload dto.AccountResearchPayload) error {
	account, err := s.accountRepo.FindByID(ctx, payload.AccountID)
	if err != nil {
		return err
	}

	items, err := s.researchRepo.FetchNews(ctx, account, s.cfg.Research.MaxItems)
	if err != nil {
		return err
	}

	if err := s.newsRepo.Upsert(ctx, items); err != nil {
		return err
	}

	s.log.Info("Refreshed account news",
		logger.Field("account_id", account.ID),
		logger.StringField("account", account.Name),
		logger.IntField("items", len(items)),
	)
	return nil
}

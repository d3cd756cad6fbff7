package service

import (
	"context"

	"golang-sales-insights/internal/api/dto"
	"golang-sales-insights/internal/api/repository"
	"golang-sales-insights/pkg/common"
	"golang-sales-insights/pkg/logger"

	"github.com/robfig/cron/v3"
)

// ResearchScheduler periodically enqueues account news refresh tasks so
// meeting briefs always have reasonably fresh context.
type ResearchScheduler interface {
	Start() error
	Stop()
	EnqueueAll(ctx context.Context)
}

// NewResearchScheduler creates a new ResearchScheduler.
func NewResearchScheduler(
	cronExpr string,
	accountRepo repository.AccountRepository,
	publisher Publisher,
	log *logger.Logger,
) ResearchScheduler {
	return &researchScheduler{
		cronExpr:    cronExpr,
		accountRepo: accountRepo,
		publisher:   publisher,
		logger:      log,
		cron:        cron.New(),
	}
}

type researchScheduler struct {
	cronExpr    string
	accountRepo repository.AccountRepository
	publisher   Publisher
	logger      *logger.Logger
	cron        *cron.Cron
}

// Start registers the cron entry and starts the scheduler. An empty cron
// expression disables the refresh entirely.
func (s *researchScheduler) Start() error {
	if s.cronExpr == "" {
		s.logger.Info("Account research refresh disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.cronExpr, func() {
		s.EnqueueAll(context.Background())
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("Account research scheduler started", logger.StringField("cron", s.cronExpr))
	return nil
}

// Stop stops the scheduler. Already running enqueues finish on their own.
func (s *researchScheduler) Stop() {
	s.cron.Stop()
}

// EnqueueAll publishes a research task for every known account. Failures
// are logged per account so one bad publish does not stop the sweep.
func (s *researchScheduler) EnqueueAll(ctx context.Context) {
	accounts, err := s.accountRepo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to list accounts for research refresh", logger.ErrorField(err))
		return
	}

	for _, account := range accounts {
		payload := dto.AccountResearchPayload{AccountID: account.ID}
		if err := s.publisher.Publish(ctx, common.RedisStreamAccountResearch, payload); err != nil {
			s.logger.Error("Failed to enqueue research task",
				logger.ErrorField(err), logger.Field("account_id", account.ID))
		}
	}
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang-sales-insights/internal/entity"
	"golang-sales-insights/internal/worker/config"
	"golang-sales-insights/internal/worker/dto"
	"golang-sales-insights/internal/worker/repository"
	"golang-sales-insights/pkg/common"
	"golang-sales-insights/pkg/logger"
	"golang-sales-insights/pkg/telegram"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
)

// DocumentGenerationService consumes document generation tasks and runs the
// generator matching the requested document type.
type DocumentGenerationService interface {
	ProcessTask(ctx context.Context)
	Execute(ctx context.Context, payload dto.DocumentTaskPayload) error
}

// NewDocumentGenerationService creates a new DocumentGenerationService.
func NewDocumentGenerationService(
	cfg *config.Config,
	log *logger.Logger,
	redisClient *redis.Client,
	aiRepo repository.AIRepository,
	docRepo repository.DocumentRepository,
	oppRepo repository.OpportunityRepository,
	contactRepo repository.ContactRepository,
	newsRepo repository.AccountNewsRepository,
	notifier telegram.Notifier,
) DocumentGenerationService {
	return &documentGenerationService{
		cfg:         cfg,
		log:         log,
		redisClient: redisClient,
		aiRepo:      aiRepo,
		docRepo:     docRepo,
		oppRepo:     oppRepo,
		contactRepo: contactRepo,
		newsRepo:    newsRepo,
		notifier:    notifier,
	}
}

type documentGenerationService struct {
	cfg         *config.Config
	log         *logger.Logger
	redisClient *redis.Client
	aiRepo      repository.AIRepository
	docRepo     repository.DocumentRepository
	oppRepo     repository.OpportunityRepository
	contactRepo repository.ContactRepository
	newsRepo    repository.AccountNewsRepository
	notifier    telegram.Notifier
}

// ProcessTask dequeues and executes a single document generation task.
func (s *documentGenerationService) ProcessTask(ctx context.Context) {
	payload, messageID, ok := readStreamMessage(ctx, s.redisClient, s.log, common.RedisStreamDocumentGeneration)
	if !ok {
		return
	}

	var task dto.DocumentTaskPayload
	if err := json.Unmarshal([]byte(payload), &task); err != nil {
		s.log.Error("Failed to unmarshal document task", logger.ErrorField(err), logger.Field("message_id", messageID))
		ackAndDelete(ctx, s.redisClient, s.log, common.RedisStreamDocumentGeneration, messageID)
		return
	}

	if err := s.Execute(ctx, task); err != nil {
		s.log.Error("Document generation failed", logger.ErrorField(err),
			logger.Field("document_id", task.DocumentID), logger.StringField("doc_type", task.DocType))
	}
	ackAndDelete(ctx, s.redisClient, s.log, common.RedisStreamDocumentGeneration, messageID)
}

// Execute generates one document and persists the result with a terminal
// status.
func (s *documentGenerationService) Execute(ctx context.Context, payload dto.DocumentTaskPayload) error {
	doc, err := s.docRepo.FindByID(ctx, payload.DocumentID)
	if err != nil {
		return err
	}

	octx, err := s.buildContext(ctx, doc)
	if err != nil {
		s.markFailed(ctx, doc, err)
		return err
	}

	content, sections, err := s.generate(ctx, doc.DocType, octx)
	if err != nil {
		s.markFailed(ctx, doc, err)
		return err
	}

	if err := s.docRepo.SaveResult(ctx, doc.ID, content, sections, s.cfg.Gemini.Model); err != nil {
		s.markFailed(ctx, doc, err)
		return err
	}

	s.log.Info("Generated document",
		logger.Field("document_id", doc.ID),
		logger.StringField("doc_type", doc.DocType),
		logger.Field("opportunity_id", doc.OpportunityID),
	)
	s.notify(telegram.FormatDocumentReady(doc.DocType, octx.Opportunity.Name))
	return nil
}

func (s *documentGenerationService) generate(ctx context.Context, docType string, octx *dto.OpportunityContext) (string, datatypes.JSON, error) {
	switch docType {
	case entity.DocTypeBusinessCase:
		result, err := s.aiRepo.GenerateBusinessCase(ctx, octx)
		if err != nil {
			return "", nil, err
		}
		sections, err := json.Marshal(map[string]interface{}{"open_questions": result.OpenQuestions})
		if err != nil {
			return "", nil, err
		}
		return result.Document, sections, nil

	case entity.DocTypeBusinessImpact:
		result, err := s.aiRepo.GenerateProposal(ctx, octx)
		if err != nil {
			return "", nil, err
		}
		return result.Proposal, nil, nil

	case entity.DocTypeActionPlan:
		result, err := s.aiRepo.GenerateActionPlan(ctx, octx)
		if err != nil {
			return "", nil, err
		}
		sections, err := json.Marshal(result)
		if err != nil {
			return "", nil, err
		}
		return formatActionPlan(result), sections, nil

	case entity.DocTypeMeetingBrief:
		result, err := s.aiRepo.GenerateMeetingBrief(ctx, octx)
		if err != nil {
			return "", nil, err
		}
		return result.Brief, nil, nil
	}
	return "", nil, fmt.Errorf("unknown document type %q", docType)
}

// buildContext gathers the persisted deal context a generator renders into
// its prompt. Recent account news is only loaded for meeting briefs.
func (s *documentGenerationService) buildContext(ctx context.Context, doc *entity.GeneratedDocument) (*dto.OpportunityContext, error) {
	opp, err := s.oppRepo.FindByID(ctx, doc.OpportunityID)
	if err != nil {
		return nil, err
	}

	contacts, err := s.contactRepo.FindByAccountID(ctx, opp.AccountID)
	if err != nil {
		return nil, err
	}

	octx := &dto.OpportunityContext{
		Opportunity: *opp,
		Account:     opp.Account,
		Contacts:    contacts,
	}

	if len(opp.ConsolidatedInsight) > 0 {
		var consolidated dto.ConsolidatedInsight
		if err := json.Unmarshal(opp.ConsolidatedInsight, &consolidated); err != nil {
			s.log.Warn("Ignoring unreadable consolidated insight",
				logger.Field("opportunity_id", opp.ID), logger.ErrorField(err))
		} else {
			octx.Consolidated = &consolidated
		}
	}

	if doc.DocType == entity.DocTypeMeetingBrief {
		news, err := s.newsRepo.FindRecentByAccount(ctx, opp.AccountID, s.cfg.Research.MaxItems)
		if err != nil {
			s.log.Warn("Failed to load account news for brief",
				logger.Field("account_id", opp.AccountID), logger.ErrorField(err))
		} else {
			octx.News = news
		}
	}

	return octx, nil
}

func formatActionPlan(plan *dto.ActionPlanResult) string {
	var b strings.Builder
	b.WriteString("| # | Action | Owner | Side | Due | Status |\n")
	b.WriteString("|---|--------|-------|------|-----|--------|\n")
	for i, item := range plan.Items {
		b.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s |\n",
			i+1, item.Title, item.Owner, item.OwnerSide, item.DueDate, item.Status))
	}
	return b.String()
}

func (s *documentGenerationService) markFailed(ctx context.Context, doc *entity.GeneratedDocument, cause error) {
	if err := s.docRepo.MarkFailed(ctx, doc.ID, cause.Error()); err != nil {
		s.log.Error("Failed to record document failure", logger.ErrorField(err), logger.Field("document_id", doc.ID))
	}
	s.notify(telegram.FormatDocumentFailed(doc.DocType, fmt.Sprintf("opportunity %d", doc.OpportunityID), cause.Error()))
}

func (s *documentGenerationService) notify(message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendMessage(message); err != nil {
		s.log.Error("Failed to send Telegram notification", logger.ErrorField(err))
	}
}

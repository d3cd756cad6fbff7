package service

import (
	"context"
	"encoding/json"
	"errors"

	"golang-sales-insights/internal/api/dto"
	"golang-sales-insights/internal/api/repository"
	"golang-sales-insights/internal/entity"
	"golang-sales-insights/pkg/common"
	"golang-sales-insights/pkg/logger"
)

// ErrNotEnoughCalls is returned when consolidation is requested for an
// opportunity with fewer than two successfully parsed calls.
var ErrNotEnoughCalls = errors.New("at least 2 parsed calls are required for consolidation")

// OpportunityService manages opportunities and their consolidation jobs.
type OpportunityService interface {
	ListOpportunities(ctx context.Context) ([]*dto.OpportunityResponse, error)
	GetOpportunity(ctx context.Context, id uint) (*dto.OpportunityResponse, error)
	TriggerConsolidation(ctx context.Context, id uint) error
}

// NewOpportunityService creates a new OpportunityService.
func NewOpportunityService(
	oppRepo repository.OpportunityRepository,
	callRepo repository.CallRepository,
	contactRepo repository.ContactRepository,
	publisher Publisher,
	log *logger.Logger,
) OpportunityService {
	return &opportunityService{
		oppRepo:     oppRepo,
		callRepo:    callRepo,
		contactRepo: contactRepo,
		publisher:   publisher,
		logger:      log,
	}
}

type opportunityService struct {
	oppRepo     repository.OpportunityRepository
	callRepo    repository.CallRepository
	contactRepo repository.ContactRepository
	publisher   Publisher
	logger      *logger.Logger
}

// ListOpportunities returns all opportunities with their accounts.
func (s *opportunityService) ListOpportunities(ctx context.Context) ([]*dto.OpportunityResponse, error) {
	opportunities, err := s.oppRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.OpportunityResponse, 0, len(opportunities))
	for i := range opportunities {
		responses = append(responses, mapToOpportunityResponse(&opportunities[i], nil))
	}
	return responses, nil
}

// GetOpportunity returns one opportunity with account, contacts, calls and
// documents.
func (s *opportunityService) GetOpportunity(ctx context.Context, id uint) (*dto.OpportunityResponse, error) {
	opportunity, err := s.oppRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	contacts, err := s.contactRepo.FindByAccountID(ctx, opportunity.AccountID)
	if err != nil {
		s.logger.Error("Failed to load contacts", logger.ErrorField(err), logger.Field("account_id", opportunity.AccountID))
		return nil, err
	}

	return mapToOpportunityResponse(opportunity, contacts), nil
}

// TriggerConsolidation enqueues an insight consolidation task. The two-call
// minimum is checked here as well as in the worker so an obviously invalid
// request fails fast with a client error instead of a failed job.
func (s *opportunityService) TriggerConsolidation(ctx context.Context, id uint) error {
	if _, err := s.oppRepo.FindByID(ctx, id); err != nil {
		return err
	}

	parsed, err := s.callRepo.CountParsedByOpportunity(ctx, id)
	if err != nil {
		return err
	}
	if parsed < 2 {
		return ErrNotEnoughCalls
	}

	if err := s.oppRepo.MarkConsolidationGenerating(ctx, id); err != nil {
		return err
	}

	payload := dto.ConsolidationTaskPayload{OpportunityID: id}
	if err := s.publisher.Publish(ctx, common.RedisStreamInsightConsolidation, payload); err != nil {
		return err
	}
	return nil
}

func mapToOpportunityResponse(opp *entity.Opportunity, contacts []entity.Contact) *dto.OpportunityResponse {
	resp := &dto.OpportunityResponse{
		ID:                  opp.ID,
		AccountID:           opp.AccountID,
		Name:                opp.Name,
		Stage:               opp.Stage,
		Amount:              opp.Amount,
		CloseDate:           opp.CloseDate,
		ConsolidationStatus: opp.ConsolidationStatus,
		ConsolidationError:  opp.ConsolidationError,
		ConsolidatedInsight: json.RawMessage(opp.ConsolidatedInsight),
		ConsolidatedAt:      opp.ConsolidatedAt,
		CreatedAt:           opp.CreatedAt,
		UpdatedAt:           opp.UpdatedAt,
	}

	if opp.Account.ID != 0 {
		resp.Account = &dto.AccountResponse{
			ID:       opp.Account.ID,
			Name:     opp.Account.Name,
			Domain:   opp.Account.Domain,
			Industry: opp.Account.Industry,
		}
	}

	for _, contact := range contacts {
		resp.Contacts = append(resp.Contacts, dto.ContactResponse{
			ID:             contact.ID,
			Name:           contact.Name,
			Title:          contact.Title,
			Email:          contact.Email,
			ClassifiedRole: contact.ClassifiedRole,
		})
	}

	for i := range opp.Calls {
		resp.Calls = append(resp.Calls, *mapToCallResponse(&opp.Calls[i]))
	}

	for i := range opp.Documents {
		resp.Documents = append(resp.Documents, *mapToDocumentResponse(&opp.Documents[i]))
	}

	return resp
}

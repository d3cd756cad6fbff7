package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang-sales-insights/internal/api/dto"
	"golang-sales-insights/internal/api/repository"
	"golang-sales-insights/internal/entity"
	"golang-sales-insights/pkg/common"
	"golang-sales-insights/pkg/logger"
)

// ErrValidation marks request payloads the caller can fix.
var ErrValidation = errors.New("validation error")

// CallService manages call transcripts and their background AI jobs.
type CallService interface {
	CreateCall(ctx context.Context, req *dto.CreateCallRequest) (*dto.CallResponse, error)
	GetCall(ctx context.Context, id uint) (*dto.CallResponse, error)
	TriggerParse(ctx context.Context, id uint) error
	TriggerRiskAnalysis(ctx context.Context, id uint) error
}

// NewCallService creates a new CallService.
func NewCallService(callRepo repository.CallRepository, publisher Publisher, log *logger.Logger) CallService {
	return &callService{
		callRepo:  callRepo,
		publisher: publisher,
		logger:    log,
	}
}

type callService struct {
	callRepo  repository.CallRepository
	publisher Publisher
	logger    *logger.Logger
}

// CreateCall stores a new transcript. Parsing does not start until a parse
// task is explicitly triggered.
func (s *callService) CreateCall(ctx context.Context, req *dto.CreateCallRequest) (*dto.CallResponse, error) {
	if req.OpportunityID == 0 {
		return nil, fmt.Errorf("%w: opportunity_id is required", ErrValidation)
	}
	if req.Transcript == "" {
		return nil, fmt.Errorf("%w: transcript is required", ErrValidation)
	}
	if req.MeetingAt.IsZero() {
		return nil, fmt.Errorf("%w: meeting_at is required", ErrValidation)
	}

	call := &entity.CallTranscript{
		OpportunityID: req.OpportunityID,
		Title:         req.Title,
		Transcript:    req.Transcript,
		MeetingAt:     req.MeetingAt,
		ParseStatus:   entity.StatusPending,
		RiskStatus:    entity.StatusPending,
	}
	if err := s.callRepo.Create(ctx, call); err != nil {
		s.logger.Error("Failed to create call transcript", logger.ErrorField(err))
		return nil, err
	}

	return mapToCallResponse(call), nil
}

// GetCall retrieves a call with its parse and risk state.
func (s *callService) GetCall(ctx context.Context, id uint) (*dto.CallResponse, error) {
	call, err := s.callRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapToCallResponse(call), nil
}

// TriggerParse marks the call as generating and enqueues a parse task. The
// status flip happens first so a client polling right after the 202 never
// sees a stale terminal status.
func (s *callService) TriggerParse(ctx context.Context, id uint) error {
	call, err := s.callRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.callRepo.MarkParseGenerating(ctx, id); err != nil {
		return err
	}

	payload := dto.CallTaskPayload{
		CallID:       id,
		Organization: call.Opportunity.Account.Name,
	}
	if err := s.publisher.Publish(ctx, common.RedisStreamTranscriptParse, payload); err != nil {
		if markErr := s.callRepo.MarkParseFailed(ctx, id, err.Error()); markErr != nil {
			s.logger.Error("Failed to record enqueue failure", logger.ErrorField(markErr), logger.Field("call_id", id))
		}
		return err
	}
	return nil
}

// TriggerRiskAnalysis marks the call and enqueues a risk analysis task.
func (s *callService) TriggerRiskAnalysis(ctx context.Context, id uint) error {
	call, err := s.callRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.callRepo.MarkRiskGenerating(ctx, id); err != nil {
		return err
	}

	payload := dto.CallTaskPayload{
		CallID:       id,
		Organization: call.Opportunity.Account.Name,
	}
	if err := s.publisher.Publish(ctx, common.RedisStreamRiskAnalysis, payload); err != nil {
		if markErr := s.callRepo.MarkRiskFailed(ctx, id, err.Error()); markErr != nil {
			s.logger.Error("Failed to record enqueue failure", logger.ErrorField(markErr), logger.Field("call_id", id))
		}
		return err
	}
	return nil
}

func mapToCallResponse(call *entity.CallTranscript) *dto.CallResponse {
	return &dto.CallResponse{
		ID:            call.ID,
		OpportunityID: call.OpportunityID,
		Title:         call.Title,
		MeetingAt:     call.MeetingAt,
		ParseStatus:   call.ParseStatus,
		ParseError:    call.ParseError,
		Insight:       json.RawMessage(call.Insight),
		ParsedAt:      call.ParsedAt,
		RiskStatus:    call.RiskStatus,
		RiskError:     call.RiskError,
		Risk:          json.RawMessage(call.Risk),
		CreatedAt:     call.CreatedAt,
		UpdatedAt:     call.UpdatedAt,
	}
}

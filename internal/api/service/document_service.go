package service

import (
	"context"
	"encoding/json"
	"fmt"

	"golang-sales-insights/internal/api/dto"
	"golang-sales-insights/internal/api/repository"
	"golang-sales-insights/internal/entity"
	"golang-sales-insights/pkg/common"
	"golang-sales-insights/pkg/logger"
)

// DocumentService manages AI document generation requests.
type DocumentService interface {
	GenerateDocument(ctx context.Context, opportunityID uint, req *dto.GenerateDocumentRequest) (*dto.DocumentResponse, error)
	ListDocuments(ctx context.Context, opportunityID uint) ([]*dto.DocumentResponse, error)
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(
	docRepo repository.DocumentRepository,
	oppRepo repository.OpportunityRepository,
	publisher Publisher,
	log *logger.Logger,
) DocumentService {
	return &documentService{
		docRepo:   docRepo,
		oppRepo:   oppRepo,
		publisher: publisher,
		logger:    log,
	}
}

type documentService struct {
	docRepo   repository.DocumentRepository
	oppRepo   repository.OpportunityRepository
	publisher Publisher
	logger    *logger.Logger
}

// GenerateDocument creates a generating document row and enqueues the task.
// Each request produces a new attempt, earlier documents of the same type
// are kept as history.
func (s *documentService) GenerateDocument(ctx context.Context, opportunityID uint, req *dto.GenerateDocumentRequest) (*dto.DocumentResponse, error) {
	if !entity.ValidDocType(req.DocType) {
		return nil, fmt.Errorf("%w: unknown doc_type %q", ErrValidation, req.DocType)
	}

	if _, err := s.oppRepo.FindByID(ctx, opportunityID); err != nil {
		return nil, err
	}

	doc := &entity.GeneratedDocument{
		OpportunityID: opportunityID,
		DocType:       req.DocType,
		Status:        entity.StatusGenerating,
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		s.logger.Error("Failed to create document", logger.ErrorField(err), logger.Field("opportunity_id", opportunityID))
		return nil, err
	}

	payload := dto.DocumentTaskPayload{
		DocumentID:    doc.ID,
		OpportunityID: opportunityID,
		DocType:       req.DocType,
	}
	if err := s.publisher.Publish(ctx, common.RedisStreamDocumentGeneration, payload); err != nil {
		if markErr := s.docRepo.MarkFailed(ctx, doc.ID, err.Error()); markErr != nil {
			s.logger.Error("Failed to record enqueue failure", logger.ErrorField(markErr), logger.Field("document_id", doc.ID))
		}
		return nil, err
	}

	return mapToDocumentResponse(doc), nil
}

// ListDocuments returns all document attempts for an opportunity, newest
// first.
func (s *documentService) ListDocuments(ctx context.Context, opportunityID uint) ([]*dto.DocumentResponse, error) {
	if _, err := s.oppRepo.FindByID(ctx, opportunityID); err != nil {
		return nil, err
	}

	docs, err := s.docRepo.FindByOpportunityID(ctx, opportunityID)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.DocumentResponse, 0, len(docs))
	for i := range docs {
		responses = append(responses, mapToDocumentResponse(&docs[i]))
	}
	return responses, nil
}

func mapToDocumentResponse(doc *entity.GeneratedDocument) *dto.DocumentResponse {
	return &dto.DocumentResponse{
		ID:            doc.ID,
		OpportunityID: doc.OpportunityID,
		DocType:       doc.DocType,
		Status:        doc.Status,
		ErrorMessage:  doc.ErrorMessage,
		Content:       doc.Content,
		Sections:      json.RawMessage(doc.Sections),
		Model:         doc.Model,
		GeneratedAt:   doc.GeneratedAt,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
}

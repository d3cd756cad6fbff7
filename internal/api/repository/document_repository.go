package repository

import (
	"context"

	"golang-sales-insights/internal/entity"

	"gorm.io/gorm"
)

// DocumentRepository defines the API-side persistence for generated documents.
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.GeneratedDocument) error
	FindByOpportunityID(ctx context.Context, opportunityID uint) ([]entity.GeneratedDocument, error)
	MarkFailed(ctx context.Context, id uint, message string) error
}

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

type documentRepository struct {
	db *gorm.DB
}

func (r *documentRepository) Create(ctx context.Context, doc *entity.GeneratedDocument) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *documentRepository) FindByOpportunityID(ctx context.Context, opportunityID uint) ([]entity.GeneratedDocument, error) {
	var docs []entity.GeneratedDocument
	err := r.db.WithContext(ctx).
		Where("opportunity_id = ?", opportunityID).
		Order("created_at desc").
		Find(&docs).Error
	return docs, err
}

func (r *documentRepository) MarkFailed(ctx context.Context, id uint, message string) error {
	return r.db.WithContext(ctx).Model(&entity.GeneratedDocument{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        entity.StatusFailed,
			"error_message": message,
		}).Error
}

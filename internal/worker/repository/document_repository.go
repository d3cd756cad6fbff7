package repository

import (
	"context"
	"time"

	"golang-sales-insights/internal/entity"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DocumentRepository defines the worker's access to generated documents.
type DocumentRepository interface {
	FindByID(ctx context.Context, id uint) (*entity.GeneratedDocument, error)
	SaveResult(ctx context.Context, id uint, content string, sections datatypes.JSON, model string) error
	MarkFailed(ctx context.Context, id uint, errMsg string) error
}

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

type documentRepository struct {
	db *gorm.DB
}

func (r *documentRepository) FindByID(ctx context.Context, id uint) (*entity.GeneratedDocument, error) {
	var doc entity.GeneratedDocument
	if err := r.db.WithContext(ctx).First(&doc, id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) SaveResult(ctx context.Context, id uint, content string, sections datatypes.JSON, model string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&entity.GeneratedDocument{}).Where("id = ?", id).Updates(map[string]interface{}{
		"content":       content,
		"sections":      sections,
		"model":         model,
		"status":        entity.StatusCompleted,
		"error_message": "",
		"generated_at":  &now,
	}).Error
}

func (r *documentRepository) MarkFailed(ctx context.Context, id uint, errMsg string) error {
	return r.db.WithContext(ctx).Model(&entity.GeneratedDocument{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":        entity.StatusFailed,
		"error_message": errMsg,
	}).Error
}

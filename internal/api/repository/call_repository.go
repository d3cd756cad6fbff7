package repository

import (
	"context"

	"golang-sales-insights/internal/entity"

	"gorm.io/gorm"
)

// CallRepository defines the API-side persistence for call transcripts.
type CallRepository interface {
	Create(ctx context.Context, call *entity.CallTranscript) error
	FindByID(ctx context.Context, id uint) (*entity.CallTranscript, error)
	CountParsedByOpportunity(ctx context.Context, opportunityID uint) (int64, error)
	MarkParseGenerating(ctx context.Context, id uint) error
	MarkParseFailed(ctx context.Context, id uint, message string) error
	MarkRiskGenerating(ctx context.Context, id uint) error
	MarkRiskFailed(ctx context.Context, id uint, message string) error
}

// NewCallRepository creates a new CallRepository.
func NewCallRepository(db *gorm.DB) CallRepository {
	return &callRepository{db: db}
}

type callRepository struct {
	db *gorm.DB
}

func (r *callRepository) Create(ctx context.Context, call *entity.CallTranscript) error {
	return r.db.WithContext(ctx).Create(call).Error
}

func (r *callRepository) FindByID(ctx context.Context, id uint) (*entity.CallTranscript, error) {
	var call entity.CallTranscript
	err := r.db.WithContext(ctx).
		Preload("Opportunity").
		Preload("Opportunity.Account").
		First(&call, id).Error
	if err != nil {
		return nil, err
	}
	return &call, nil
}

func (r *callRepository) CountParsedByOpportunity(ctx context.Context, opportunityID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.CallTranscript{}).
		Where("opportunity_id = ? AND parse_status = ?", opportunityID, entity.StatusCompleted).
		Count(&count).Error
	return count, err
}

func (r *callRepository) MarkParseGenerating(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&entity.CallTranscript{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"parse_status": entity.StatusGenerating,
			"parse_error":  "",
		}).Error
}

func (r *callRepository) MarkParseFailed(ctx context.Context, id uint, message string) error {
	return r.db.WithContext(ctx).Model(&entity.CallTranscript{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"parse_status": entity.StatusFailed,
			"parse_error":  message,
		}).Error
}

func (r *callRepository) MarkRiskGenerating(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&entity.CallTranscript{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"risk_status": entity.StatusGenerating,
			"risk_error":  "",
		}).Error
}

func (r *callRepository) MarkRiskFailed(ctx context.Context, id uint, message string) error {
	return r.db.WithContext(ctx).Model(&entity.CallTranscript{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"risk_status": entity.StatusFailed,
			"risk_error":  message,
		}).Error
}

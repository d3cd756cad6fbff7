package repository

import (
	"context"
	"time"

	"golang-sales-insights/internal/entity"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CallTranscriptRepository defines the worker's access to call transcripts
// and their parse/risk artifacts.
type CallTranscriptRepository interface {
	FindByID(ctx context.Context, id uint) (*entity.CallTranscript, error)
	FindParsedByOpportunity(ctx context.Context, opportunityID uint) ([]entity.CallTranscript, error)
	SaveInsight(ctx context.Context, id uint, insight datatypes.JSON) error
	MarkParseFailed(ctx context.Context, id uint, errMsg string) error
	SaveRisk(ctx context.Context, id uint, risk datatypes.JSON) error
	MarkRiskFailed(ctx context.Context, id uint, errMsg string) error
}

// NewCallTranscriptRepository creates a new CallTranscriptRepository.
func NewCallTranscriptRepository(db *gorm.DB) CallTranscriptRepository {
	return &callTranscriptRepository{db: db}
}

type callTranscriptRepository struct {
	db *gorm.DB
}

func (r *callTranscriptRepository) FindByID(ctx context.Context, id uint) (*entity.CallTranscript, error) {
	var call entity.CallTranscript
	if err := r.db.WithContext(ctx).Preload("Opportunity.Account").First(&call, id).Error; err != nil {
		return nil, err
	}
	return &call, nil
}

func (r *callTranscriptRepository) FindParsedByOpportunity(ctx context.Context, opportunityID uint) ([]entity.CallTranscript, error) {
	var calls []entity.CallTranscript
	err := r.db.WithContext(ctx).
		Where("opportunity_id = ? AND parse_status = ?", opportunityID, entity.StatusCompleted).
		Order("meeting_at asc").
		Find(&calls).Error
	if err != nil {
		return nil, err
	}
	return calls, nil
}

func (r *callTranscriptRepository) SaveInsight(ctx context.Context, id uint, insight datatypes.JSON) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&entity.CallTranscript{}).Where("id = ?", id).Updates(map[string]interface{}{
		"insight":      insight,
		"parse_status": entity.StatusCompleted,
		"parse_error":  "",
		"parsed_at":    &now,
	}).Error
}

func (r *callTranscriptRepository) MarkParseFailed(ctx context.Context, id uint, errMsg string) error {
	return r.db.WithContext(ctx).Model(&entity.CallTranscript{}).Where("id = ?", id).Updates(map[string]interface{}{
		"parse_status": entity.StatusFailed,
		"parse_error":  errMsg,
	}).Error
}

func (r *callTranscriptRepository) SaveRisk(ctx context.Context, id uint, risk datatypes.JSON) error {
	return r.db.WithContext(ctx).Model(&entity.CallTranscript{}).Where("id = ?", id).Updates(map[string]interface{}{
		"risk":        risk,
		"risk_status": entity.StatusCompleted,
		"risk_error":  "",
	}).Error
}

func (r *callTranscriptRepository) MarkRiskFailed(ctx context.Context, id uint, errMsg string) error {
	return r.db.WithContext(ctx).Model(&entity.CallTranscript{}).Where("id = ?", id).Updates(map[string]interface{}{
		"risk_status": entity.StatusFailed,
		"risk_error":  errMsg,
	}).Error
}

package repository

import (
	"context"
	"time"

	"golang-sales-insights/internal/entity"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OpportunityRepository defines the worker's access to opportunities.
type OpportunityRepository interface {
	FindByID(ctx context.Context, id uint) (*entity.Opportunity, error)
	SaveConsolidatedInsight(ctx context.Context, id uint, insight datatypes.JSON) error
	MarkConsolidationFailed(ctx context.Context, id uint, errMsg string) error
}

// NewOpportunityRepository creates a new OpportunityRepository.
func NewOpportunityRepository(db *gorm.DB) OpportunityRepository {
	return &opportunityRepository{db: db}
}

type opportunityRepository struct {
	db *gorm.DB
}

func (r *opportunityRepository) FindByID(ctx context.Context, id uint) (*entity.Opportunity, error) {
	var opp entity.Opportunity
	if err := r.db.WithContext(ctx).Preload("Account").First(&opp, id).Error; err != nil {
		return nil, err
	}
	return &opp, nil
}

func (r *opportunityRepository) SaveConsolidatedInsight(ctx context.Context, id uint, insight datatypes.JSON) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&entity.Opportunity{}).Where("id = ?", id).Updates(map[string]interface{}{
		"consolidated_insight": insight,
		"consolidation_status": entity.StatusCompleted,
		"consolidation_error":  "",
		"consolidated_at":      &now,
	}).Error
}

func (r *opportunityRepository) MarkConsolidationFailed(ctx context.Context, id uint, errMsg string) error {
	return r.db.WithContext(ctx).Model(&entity.Opportunity{}).Where("id = ?", id).Updates(map[string]interface{}{
		"consolidation_status": entity.StatusFailed,
		"consolidation_error":  errMsg,
	}).Error
}

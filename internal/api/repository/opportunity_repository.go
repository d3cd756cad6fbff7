package repository

import (
	"context"

	"golang-sales-insights/internal/entity"

	"gorm.io/gorm"
)

// OpportunityRepository defines the API-side persistence for opportunities.
type OpportunityRepository interface {
	FindAll(ctx context.Context) ([]entity.Opportunity, error)
	FindByID(ctx context.Context, id uint) (*entity.Opportunity, error)
	MarkConsolidationGenerating(ctx context.Context, id uint) error
}

// NewOpportunityRepository creates a new OpportunityRepository.
func NewOpportunityRepository(db *gorm.DB) OpportunityRepository {
	return &opportunityRepository{db: db}
}

type opportunityRepository struct {
	db *gorm.DB
}

func (r *opportunityRepository) FindAll(ctx context.Context) ([]entity.Opportunity, error) {
	var opportunities []entity.Opportunity
	err := r.db.WithContext(ctx).
		Preload("Account").
		Order("updated_at desc").
		Find(&opportunities).Error
	return opportunities, err
}

func (r *opportunityRepository) FindByID(ctx context.Context, id uint) (*entity.Opportunity, error) {
	var opportunity entity.Opportunity
	err := r.db.WithContext(ctx).
		Preload("Account").
		Preload("Calls", func(db *gorm.DB) *gorm.DB {
			return db.Order("meeting_at asc")
		}).
		Preload("Documents", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at desc")
		}).
		First(&opportunity, id).Error
	if err != nil {
		return nil, err
	}
	return &opportunity, nil
}

// MarkConsolidationGenerating resets the consolidation cycle before a new
// task is enqueued. A concurrent re-trigger simply starts another cycle and
// the last writer wins.
func (r *opportunityRepository) MarkConsolidationGenerating(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&entity.Opportunity{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"consolidation_status": entity.StatusGenerating,
			"consolidation_error":  "",
		}).Error
}

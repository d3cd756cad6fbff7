package repository

import (
	"context"

	"golang-sales-insights/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountNewsRepository defines access to researched account news.
type AccountNewsRepository interface {
	Upsert(ctx context.Context, items []entity.AccountNews) error
	FindRecentByAccount(ctx context.Context, accountID uint, limit int) ([]entity.AccountNews, error)
}

// NewAccountNewsRepository creates a new AccountNewsRepository.
func NewAccountNewsRepository(db *gorm.DB) AccountNewsRepository {
	return &accountNewsRepository{db: db}
}

type accountNewsRepository struct {
	db *gorm.DB
}

func (r *accountNewsRepository) Upsert(ctx context.Context, items []entity.AccountNews) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "link"}},
		DoNothing: true,
	}).Create(&items).Error
}

func (r *accountNewsRepository) FindRecentByAccount(ctx context.Context, accountID uint, limit int) ([]entity.AccountNews, error) {
	var items []entity.AccountNews
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("published_at desc nulls last").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

package repository

import (
	"context"

	"golang-sales-insights/internal/entity"

	"gorm.io/gorm"
)

// AccountRepository defines the worker's read access to accounts.
type AccountRepository interface {
	FindByID(ctx context.Context, id uint) (*entity.Account, error)
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

type accountRepository struct {
	db *gorm.DB
}

func (r *accountRepository) FindByID(ctx context.Context, id uint) (*entity.Account, error) {
	var account entity.Account
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

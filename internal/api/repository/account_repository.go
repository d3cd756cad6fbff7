package repository

import (
	"context"

	"golang-sales-insights/internal/entity"

	"gorm.io/gorm"
)

// AccountRepository defines the API-side persistence for accounts.
type AccountRepository interface {
	FindAll(ctx context.Context) ([]entity.Account, error)
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

type accountRepository struct {
	db *gorm.DB
}

func (r *accountRepository) FindAll(ctx context.Context) ([]entity.Account, error) {
	var accounts []entity.Account
	err := r.db.WithContext(ctx).Order("id asc").Find(&accounts).Error
	return accounts, err
}

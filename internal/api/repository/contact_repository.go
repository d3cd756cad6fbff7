package repository

import (
	"context"

	"golang-sales-insights/internal/entity"

	"gorm.io/gorm"
)

// ContactRepository defines the API-side persistence for contacts.
type ContactRepository interface {
	FindByAccountID(ctx context.Context, accountID uint) ([]entity.Contact, error)
}

// NewContactRepository creates a new ContactRepository.
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

type contactRepository struct {
	db *gorm.DB
}

func (r *contactRepository) FindByAccountID(ctx context.Context, accountID uint) ([]entity.Contact, error) {
	var contacts []entity.Contact
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("name asc").
		Find(&contacts).Error
	return contacts, err
}

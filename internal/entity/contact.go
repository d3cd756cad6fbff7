package entity

import "time"

// Contact represents a person at a customer account.
type Contact struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	AccountID      uint      `gorm:"not null;index" json:"account_id"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	Title          string    `gorm:"type:varchar(255)" json:"title"`
	Email          string    `gorm:"type:varchar(255)" json:"email"`
	ClassifiedRole string    `gorm:"type:varchar(50)" json:"classified_role"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the Contact model.
func (Contact) TableName() string {
	return "contacts"
}

package entity

import "time"

// Account represents a customer organization a deal is pursued with.
type Account struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Domain    string    `gorm:"type:varchar(255)" json:"domain"`
	Industry  string    `gorm:"type:varchar(100)" json:"industry"`
	Ticker    string    `gorm:"type:varchar(20)" json:"ticker"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the Account model.
func (Account) TableName() string {
	return "accounts"
}

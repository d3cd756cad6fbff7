package entity

import "time"

// AccountNews is a researched news item about an account, used as extra
// context when generating meeting briefs.
type AccountNews struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	AccountID   uint       `gorm:"not null;index" json:"account_id"`
	Title       string     `gorm:"type:text;not null" json:"title"`
	Link        string     `gorm:"type:text;unique;not null" json:"link"`
	Source      string     `gorm:"type:varchar(255)" json:"source"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Summary     string     `gorm:"type:text" json:"summary"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the AccountNews model.
func (AccountNews) TableName() string {
	return "account_news"
}

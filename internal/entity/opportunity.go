package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Job lifecycle statuses shared by every AI-generated artifact. A retry
// starts a fresh generating→terminal cycle, it never resurrects a failed
// attempt in place.
const (
	StatusPending    = "pending"
	StatusGenerating = "generating"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Opportunity represents a sales deal in flight.
type Opportunity struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	AccountID uint       `gorm:"not null;index" json:"account_id"`
	Name      string     `gorm:"type:varchar(255);not null" json:"name"`
	Stage     string     `gorm:"type:varchar(50)" json:"stage"`
	Amount    float64    `json:"amount"`
	CloseDate *time.Time `json:"close_date,omitempty"`

	ConsolidationStatus string         `gorm:"type:varchar(20);default:pending" json:"consolidation_status"`
	ConsolidationError  string         `gorm:"type:text" json:"consolidation_error,omitempty"`
	ConsolidatedInsight datatypes.JSON `gorm:"type:jsonb" json:"consolidated_insight,omitempty"`
	ConsolidatedAt      *time.Time     `json:"consolidated_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Account   Account             `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	Calls     []CallTranscript    `gorm:"foreignKey:OpportunityID" json:"calls,omitempty"`
	Documents []GeneratedDocument `gorm:"foreignKey:OpportunityID" json:"documents,omitempty"`
}

// TableName specifies the table name for the Opportunity model.
func (Opportunity) TableName() string {
	return "opportunities"
}

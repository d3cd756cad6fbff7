package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Document types supported by the generators.
const (
	DocTypeBusinessCase   = "business_case"
	DocTypeBusinessImpact = "business_impact"
	DocTypeActionPlan     = "action_plan"
	DocTypeMeetingBrief   = "meeting_brief"
)

// ValidDocType reports whether t is a known document type.
func ValidDocType(t string) bool {
	switch t {
	case DocTypeBusinessCase, DocTypeBusinessImpact, DocTypeActionPlan, DocTypeMeetingBrief:
		return true
	}
	return false
}

// GeneratedDocument is one AI-generated sales document attempt for an
// opportunity.
type GeneratedDocument struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	OpportunityID uint   `gorm:"not null;index" json:"opportunity_id"`
	DocType       string `gorm:"type:varchar(30);not null" json:"doc_type"`

	Status       string `gorm:"type:varchar(20);default:pending" json:"status"`
	ErrorMessage string `gorm:"type:text" json:"error_message,omitempty"`

	Content     string         `gorm:"type:text" json:"content,omitempty"`
	Sections    datatypes.JSON `gorm:"type:jsonb" json:"sections,omitempty"`
	Model       string         `gorm:"type:varchar(100)" json:"model,omitempty"`
	GeneratedAt *time.Time     `json:"generated_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the GeneratedDocument model.
func (GeneratedDocument) TableName() string {
	return "generated_documents"
}

package entity

import (
	"time"

	"gorm.io/datatypes"
)

// CallTranscript holds the raw transcript of a sales call plus the parsed
// insight and risk assessment produced from it. Insight and Risk are only
// written by a full (re)parse, never mutated incrementally.
type CallTranscript struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	OpportunityID uint      `gorm:"not null;index" json:"opportunity_id"`
	Title         string    `gorm:"type:varchar(255)" json:"title"`
	Transcript    string    `gorm:"type:text;not null" json:"transcript"`
	MeetingAt     time.Time `gorm:"not null" json:"meeting_at"`

	ParseStatus string         `gorm:"type:varchar(20);default:pending" json:"parse_status"`
	ParseError  string         `gorm:"type:text" json:"parse_error,omitempty"`
	Insight     datatypes.JSON `gorm:"type:jsonb" json:"insight,omitempty"`
	ParsedAt    *time.Time     `json:"parsed_at,omitempty"`

	RiskStatus string         `gorm:"type:varchar(20);default:pending" json:"risk_status"`
	RiskError  string         `gorm:"type:text" json:"risk_error,omitempty"`
	Risk       datatypes.JSON `gorm:"type:jsonb" json:"risk,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Opportunity Opportunity `gorm:"foreignKey:OpportunityID" json:"opportunity,omitempty"`
}

// TableName specifies the table name for the CallTranscript model.
func (CallTranscript) TableName() string {
	return "call_transcripts"
}

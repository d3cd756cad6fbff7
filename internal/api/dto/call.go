package dto

import (
	"encoding/json"
	"time"
)

// CreateCallRequest is the payload for registering a new call transcript.
type CreateCallRequest struct {
	OpportunityID uint      `json:"opportunity_id"`
	Title         string    `json:"title"`
	Transcript    string    `json:"transcript"`
	MeetingAt     time.Time `json:"meeting_at"`
}

// CallResponse is the API view of a call transcript, including the parsed
// insight and risk assessment (raw JSON, absent until the jobs complete).
type CallResponse struct {
	ID            uint      `json:"id"`
	OpportunityID uint      `json:"opportunity_id"`
	Title         string    `json:"title"`
	MeetingAt     time.Time `json:"meeting_at"`

	ParseStatus string          `json:"parse_status"`
	ParseError  string          `json:"parse_error,omitempty"`
	Insight     json.RawMessage `json:"insight,omitempty"`
	ParsedAt    *time.Time      `json:"parsed_at,omitempty"`

	RiskStatus string          `json:"risk_status"`
	RiskError  string          `json:"risk_error,omitempty"`
	Risk       json.RawMessage `json:"risk,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskQueuedResponse acknowledges a fire-and-forget background trigger.
type TaskQueuedResponse struct {
	ID     uint   `json:"id"`
	Status string `json:"status"`
}

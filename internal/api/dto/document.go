package dto

import (
	"encoding/json"
	"time"
)

// GenerateDocumentRequest is the payload for requesting an AI document.
type GenerateDocumentRequest struct {
	DocType string `json:"doc_type"`
}

// DocumentResponse is the API view of a generated document attempt.
type DocumentResponse struct {
	ID            uint   `json:"id"`
	OpportunityID uint   `json:"opportunity_id"`
	DocType       string `json:"doc_type"`

	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`

	Content     string          `json:"content,omitempty"`
	Sections    json.RawMessage `json:"sections,omitempty"`
	Model       string          `json:"model,omitempty"`
	GeneratedAt *time.Time      `json:"generated_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

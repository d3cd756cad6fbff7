package dto

import (
	"encoding/json"
	"time"
)

// OpportunityResponse is the API view of an opportunity with its related
// account, calls and generated documents.
type OpportunityResponse struct {
	ID        uint       `json:"id"`
	AccountID uint       `json:"account_id"`
	Name      string     `json:"name"`
	Stage     string     `json:"stage"`
	Amount    float64    `json:"amount"`
	CloseDate *time.Time `json:"close_date,omitempty"`

	ConsolidationStatus string          `json:"consolidation_status"`
	ConsolidationError  string          `json:"consolidation_error,omitempty"`
	ConsolidatedInsight json.RawMessage `json:"consolidated_insight,omitempty"`
	ConsolidatedAt      *time.Time      `json:"consolidated_at,omitempty"`

	Account   *AccountResponse   `json:"account,omitempty"`
	Contacts  []ContactResponse  `json:"contacts,omitempty"`
	Calls     []CallResponse     `json:"calls,omitempty"`
	Documents []DocumentResponse `json:"documents,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AccountResponse is the API view of a customer account.
type AccountResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Domain   string `json:"domain,omitempty"`
	Industry string `json:"industry,omitempty"`
}

// ContactResponse is the API view of a contact at an account.
type ContactResponse struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Title          string `json:"title,omitempty"`
	Email          string `json:"email,omitempty"`
	ClassifiedRole string `json:"classified_role,omitempty"`
}

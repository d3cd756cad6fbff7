package dto

// CallTaskPayload is the stream payload for transcript parsing and risk
// analysis tasks. Organization carries the selling org's name so internal
// participants can be excluded from the extracted people list.
type CallTaskPayload struct {
	CallID       uint   `json:"call_id"`
	Organization string `json:"organization,omitempty"`
}

// ConsolidationTaskPayload is the stream payload for insight consolidation.
type ConsolidationTaskPayload struct {
	OpportunityID uint `json:"opportunity_id"`
}

// DocumentTaskPayload is the stream payload for document generation.
type DocumentTaskPayload struct {
	DocumentID    uint   `json:"document_id"`
	OpportunityID uint   `json:"opportunity_id"`
	DocType       string `json:"doc_type"`
}

// AccountResearchPayload is the stream payload for account news refreshes.
type AccountResearchPayload struct {
	AccountID uint `json:"account_id"`
}

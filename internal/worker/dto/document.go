package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang-sales-insights/internal/entity"
)

// Literal markers the business case generator is instructed to wrap its
// sections in. The parser splits on these, it does not pattern-match.
const (
	BusinessCaseStartMarker = "===BUSINESS_CASE_START==="
	QuestionsStartMarker    = "===QUESTIONS_START==="
)

// OpportunityContext is the persisted context a document generator renders
// into its prompt.
type OpportunityContext struct {
	Opportunity  entity.Opportunity
	Account      entity.Account
	Contacts     []entity.Contact
	Consolidated *ConsolidatedInsight
	News         []entity.AccountNews
}

// BusinessCaseResult is the parsed output of the business case generator.
type BusinessCaseResult struct {
	Document      string   `json:"document"`
	OpenQuestions []string `json:"open_questions"`
}

// ParseBusinessCaseResponse splits the model's free-text response on the
// section markers. When the start marker is missing the whole response is
// treated as the document body.
func ParseBusinessCaseResponse(text string) *BusinessCaseResult {
	doc := text
	if i := strings.Index(doc, BusinessCaseStartMarker); i >= 0 {
		doc = doc[i+len(BusinessCaseStartMarker):]
	}

	questions := []string{}
	if j := strings.Index(doc, QuestionsStartMarker); j >= 0 {
		block := doc[j+len(QuestionsStartMarker):]
		doc = doc[:j]
		for _, line := range strings.Split(block, "\n") {
			q := strings.TrimSpace(line)
			q = strings.TrimLeft(q, "-*• \t")
			if dot := strings.Index(q, ". "); dot > 0 && dot <= 3 && isDigits(q[:dot]) {
				q = strings.TrimSpace(q[dot+2:])
			}
			if q != "" {
				questions = append(questions, q)
			}
		}
	}

	return &BusinessCaseResult{
		Document:      strings.TrimSpace(doc),
		OpenQuestions: questions,
	}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// ProposalResult is the free-text output of the business impact proposal
// generator.
type ProposalResult struct {
	Proposal string `json:"proposal"`
}

// MeetingBriefResult is the free-text output of the meeting brief generator.
type MeetingBriefResult struct {
	Brief string `json:"brief"`
}

var actionItemOwnerSides = map[string]bool{
	"seller": true,
	"buyer":  true,
	"joint":  true,
}

var actionItemStatuses = map[string]bool{
	"pending":     true,
	"in_progress": true,
	"completed":   true,
}

// ActionPlanItem is one row of a mutual action plan.
type ActionPlanItem struct {
	Title     string `json:"title"`
	Owner     string `json:"owner"`
	OwnerSide string `json:"owner_side"`
	DueDate   string `json:"due_date"`
	Status    string `json:"status"`
}

// ActionPlanResult is the parsed output of the mutual action plan generator.
type ActionPlanResult struct {
	Items []ActionPlanItem `json:"items"`
}

// ParseActionPlan validates the model's JSON output. Dates must be
// YYYY-MM-DD and owner_side/status must be in their closed sets; any
// violation rejects the whole plan. Both a bare array and an {"items": []}
// wrapper are accepted.
func ParseActionPlan(data []byte) (*ActionPlanResult, error) {
	trimmed := strings.TrimSpace(string(data))

	var items []ActionPlanItem
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal action plan: %w", err)
		}
	} else {
		var wrapper ActionPlanResult
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("failed to unmarshal action plan: %w", err)
		}
		items = wrapper.Items
	}

	for i, item := range items {
		if strings.TrimSpace(item.Title) == "" {
			return nil, fmt.Errorf("action item %d has no title", i)
		}
		if item.DueDate != "" {
			if _, err := time.Parse("2006-01-02", item.DueDate); err != nil {
				return nil, fmt.Errorf("action item %d has invalid due date %q", i, item.DueDate)
			}
		}
		if !actionItemOwnerSides[item.OwnerSide] {
			return nil, fmt.Errorf("action item %d has invalid owner side %q", i, item.OwnerSide)
		}
		if !actionItemStatuses[item.Status] {
			return nil, fmt.Errorf("action item %d has invalid status %q", i, item.Status)
		}
	}
	if items == nil {
		items = []ActionPlanItem{}
	}

	return &ActionPlanResult{Items: items}, nil
}

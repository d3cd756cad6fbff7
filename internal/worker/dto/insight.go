package dto

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Classified stakeholder roles. The role classifier must return exactly one
// of these tokens; anything else is rejected, never coerced.
const (
	RoleDecisionMaker = "decision_maker"
	RoleInfluencer    = "influencer"
	RoleChampion      = "champion"
	RoleBlocker       = "blocker"
	RoleEndUser       = "end_user"
)

var stakeholderRoles = map[string]bool{
	RoleDecisionMaker: true,
	RoleInfluencer:    true,
	RoleChampion:      true,
	RoleBlocker:       true,
	RoleEndUser:       true,
}

// IsStakeholderRole reports whether token is one of the classified roles.
func IsStakeholderRole(token string) bool {
	return stakeholderRoles[token]
}

// Person is a participant extracted from a call transcript.
type Person struct {
	Name           string `json:"name"`
	Organization   string `json:"organization"`
	Role           string `json:"role"`
	ClassifiedRole string `json:"classified_role,omitempty"`
}

// CompetitorMention records a competitor the customer brought up.
type CompetitorMention struct {
	Competitor string `json:"competitor"`
	Context    string `json:"context"`
	Sentiment  string `json:"sentiment"`
}

// DecisionProcess captures what is known about how the customer will decide.
type DecisionProcess struct {
	Timeline      *string  `json:"timeline"`
	Stakeholders  []string `json:"stakeholders"`
	BudgetContext *string  `json:"budget_context"`
	ApprovalSteps []string `json:"approval_steps"`
}

// CallSentiment is the model's read on the tone of a single call.
type CallSentiment struct {
	Overall    string `json:"overall"`
	Momentum   string `json:"momentum"`
	Enthusiasm string `json:"enthusiasm"`
}

// CallInsight is the normalized result of parsing one call transcript.
// After normalization every array field is non-nil, possibly empty.
type CallInsight struct {
	PainPoints          []string            `json:"pain_points"`
	Goals               []string            `json:"goals"`
	People              []Person            `json:"people"`
	NextSteps           []string            `json:"next_steps"`
	BusinessDrivers     []string            `json:"business_drivers"`
	QuantifiableMetrics []string            `json:"quantifiable_metrics"`
	KeyQuotes           []string            `json:"key_quotes"`
	Objections          []string            `json:"objections"`
	CompetitorMentions  []CompetitorMention `json:"competitor_mentions"`
	DecisionProcess     DecisionProcess     `json:"decision_process"`
	CallSentiment       CallSentiment       `json:"call_sentiment"`
}

// ParseCallInsight validates and normalizes the model's JSON output.
//
// Two policies apply, per field:
//   - required fields (pain_points, goals, people, next_steps) fail the
//     whole result when missing or of the wrong type;
//   - optional fields introduced by later schema revisions are defaulted to
//     an empty value when missing or malformed, so an older model response
//     still parses.
func ParseCallInsight(data []byte) (*CallInsight, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal call insight: %w", err)
	}

	out := &CallInsight{}
	var err error
	if out.PainPoints, err = requiredStringList(raw, "pain_points"); err != nil {
		return nil, err
	}
	if out.Goals, err = requiredStringList(raw, "goals"); err != nil {
		return nil, err
	}
	if out.NextSteps, err = requiredStringList(raw, "next_steps"); err != nil {
		return nil, err
	}
	if out.People, err = requiredPeople(raw, "people"); err != nil {
		return nil, err
	}

	out.BusinessDrivers = optionalStringList(raw, "business_drivers")
	out.QuantifiableMetrics = optionalStringList(raw, "quantifiable_metrics")
	out.KeyQuotes = optionalStringList(raw, "key_quotes")
	out.Objections = optionalStringList(raw, "objections")
	out.CompetitorMentions = optionalCompetitorMentions(raw, "competitor_mentions")
	out.DecisionProcess = optionalDecisionProcess(raw, "decision_process")
	out.CallSentiment = optionalCallSentiment(raw, "call_sentiment")

	return out, nil
}

func requiredStringList(raw map[string]json.RawMessage, key string) ([]string, error) {
	msg, ok := raw[key]
	if !ok {
		return nil, fmt.Errorf("missing required field %q", key)
	}
	var list []string
	if err := json.Unmarshal(msg, &list); err != nil {
		return nil, fmt.Errorf("field %q is not a string array: %w", key, err)
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}

func optionalStringList(raw map[string]json.RawMessage, key string) []string {
	msg, ok := raw[key]
	if !ok {
		return []string{}
	}
	var list []string
	if err := json.Unmarshal(msg, &list); err != nil || list == nil {
		return []string{}
	}
	return list
}

func optionalString(raw map[string]json.RawMessage, key string) string {
	msg, ok := raw[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(msg, &s); err != nil {
		return ""
	}
	return s
}

func requiredPeople(raw map[string]json.RawMessage, key string) ([]Person, error) {
	msg, ok := raw[key]
	if !ok {
		return nil, fmt.Errorf("missing required field %q", key)
	}
	var people []Person
	if err := json.Unmarshal(msg, &people); err != nil {
		return nil, fmt.Errorf("field %q is not a people array: %w", key, err)
	}
	for i := range people {
		if strings.TrimSpace(people[i].Name) == "" {
			return nil, fmt.Errorf("person at index %d has no name", i)
		}
		if strings.TrimSpace(people[i].Organization) == "" {
			people[i].Organization = "Unknown"
		}
		if strings.TrimSpace(people[i].Role) == "" {
			people[i].Role = "Unknown"
		}
	}
	if people == nil {
		people = []Person{}
	}
	return people, nil
}

// optionalPeople parses people leniently: malformed entries are dropped
// instead of failing the result. Used by the consolidator, where people are
// an enrichment rather than a core field.
func optionalPeople(raw map[string]json.RawMessage, key string) []Person {
	msg, ok := raw[key]
	if !ok {
		return []Person{}
	}
	var people []Person
	if err := json.Unmarshal(msg, &people); err != nil {
		return []Person{}
	}
	out := make([]Person, 0, len(people))
	for _, p := range people {
		if strings.TrimSpace(p.Name) == "" {
			continue
		}
		if strings.TrimSpace(p.Organization) == "" {
			p.Organization = "Unknown"
		}
		if strings.TrimSpace(p.Role) == "" {
			p.Role = "Unknown"
		}
		out = append(out, p)
	}
	return out
}

func optionalCompetitorMentions(raw map[string]json.RawMessage, key string) []CompetitorMention {
	msg, ok := raw[key]
	if !ok {
		return []CompetitorMention{}
	}
	var mentions []CompetitorMention
	if err := json.Unmarshal(msg, &mentions); err != nil || mentions == nil {
		return []CompetitorMention{}
	}
	for i := range mentions {
		switch strings.ToLower(mentions[i].Sentiment) {
		case "positive", "negative", "neutral":
			mentions[i].Sentiment = strings.ToLower(mentions[i].Sentiment)
		default:
			mentions[i].Sentiment = "neutral"
		}
	}
	return mentions
}

func optionalDecisionProcess(raw map[string]json.RawMessage, key string) DecisionProcess {
	dp := DecisionProcess{
		Stakeholders:  []string{},
		ApprovalSteps: []string{},
	}
	msg, ok := raw[key]
	if !ok {
		return dp
	}
	var parsed DecisionProcess
	if err := json.Unmarshal(msg, &parsed); err != nil {
		return dp
	}
	if parsed.Stakeholders == nil {
		parsed.Stakeholders = []string{}
	}
	if parsed.ApprovalSteps == nil {
		parsed.ApprovalSteps = []string{}
	}
	return parsed
}

func optionalCallSentiment(raw map[string]json.RawMessage, key string) CallSentiment {
	cs := CallSentiment{
		Overall:    "neutral",
		Momentum:   "stable",
		Enthusiasm: "moderate",
	}
	msg, ok := raw[key]
	if !ok {
		return cs
	}
	var parsed CallSentiment
	if err := json.Unmarshal(msg, &parsed); err != nil {
		return cs
	}
	if strings.TrimSpace(parsed.Overall) == "" {
		parsed.Overall = cs.Overall
	}
	if strings.TrimSpace(parsed.Momentum) == "" {
		parsed.Momentum = cs.Momentum
	}
	if strings.TrimSpace(parsed.Enthusiasm) == "" {
		parsed.Enthusiasm = cs.Enthusiasm
	}
	return parsed
}

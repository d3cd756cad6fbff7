package dto

import (
	"encoding/json"
	"fmt"
	"time"
)

// CallInsightRecord pairs a parsed insight with the call it came from.
// The consolidator orders records by MeetingAt before building its prompt.
type CallInsightRecord struct {
	CallID    uint
	Title     string
	MeetingAt time.Time
	Insight   CallInsight
}

// SentimentTrend tracks how the customer's tone has moved across calls.
type SentimentTrend struct {
	Trajectory   string `json:"trajectory"`
	CurrentState string `json:"current_state"`
	Narrative    string `json:"narrative"`
}

// ConsolidatedInsight is the deduplicated synthesis of two or more parsed
// calls, regenerated as a whole whenever the source set changes.
type ConsolidatedInsight struct {
	CallInsight
	RiskAssessment         RiskAssessment `json:"risk_assessment"`
	CompetitionSummary     string         `json:"competition_summary"`
	DecisionProcessSummary string         `json:"decision_process_summary"`
	WhyAndWhyNow           string         `json:"why_and_why_now"`
	SentimentTrend         SentimentTrend `json:"sentiment_trend"`
}

// ParseConsolidatedInsight validates the consolidator's JSON output. Only
// pain_points, goals and risk_assessment are core: their absence fails the
// result. Every enrichment field is defaulted independently so the
// consolidator never fails just because an optional field is missing.
func ParseConsolidatedInsight(data []byte) (*ConsolidatedInsight, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal consolidated insight: %w", err)
	}

	out := &ConsolidatedInsight{}
	var err error
	if out.PainPoints, err = requiredStringList(raw, "pain_points"); err != nil {
		return nil, err
	}
	if out.Goals, err = requiredStringList(raw, "goals"); err != nil {
		return nil, err
	}

	riskMsg, ok := raw["risk_assessment"]
	if !ok {
		return nil, fmt.Errorf("missing required field %q", "risk_assessment")
	}
	risk, err := ParseRiskAssessment(riskMsg)
	if err != nil {
		return nil, err
	}
	out.RiskAssessment = *risk

	out.People = optionalPeople(raw, "people")
	out.NextSteps = optionalStringList(raw, "next_steps")
	out.BusinessDrivers = optionalStringList(raw, "business_drivers")
	out.QuantifiableMetrics = optionalStringList(raw, "quantifiable_metrics")
	out.KeyQuotes = optionalStringList(raw, "key_quotes")
	out.Objections = optionalStringList(raw, "objections")
	out.CompetitorMentions = optionalCompetitorMentions(raw, "competitor_mentions")
	out.DecisionProcess = optionalDecisionProcess(raw, "decision_process")
	out.CallSentiment = optionalCallSentiment(raw, "call_sentiment")

	out.CompetitionSummary = optionalString(raw, "competition_summary")
	out.DecisionProcessSummary = optionalString(raw, "decision_process_summary")
	out.WhyAndWhyNow = optionalString(raw, "why_and_why_now")
	out.SentimentTrend = optionalSentimentTrend(raw, "sentiment_trend")

	return out, nil
}

func optionalSentimentTrend(raw map[string]json.RawMessage, key string) SentimentTrend {
	trend := SentimentTrend{
		Trajectory:   "stable",
		CurrentState: "neutral",
	}
	msg, ok := raw[key]
	if !ok {
		return trend
	}
	var parsed SentimentTrend
	if err := json.Unmarshal(msg, &parsed); err != nil {
		return trend
	}
	switch parsed.Trajectory {
	case "improving", "stable", "declining":
	default:
		parsed.Trajectory = "stable"
	}
	if parsed.CurrentState == "" {
		parsed.CurrentState = "neutral"
	}
	return parsed
}

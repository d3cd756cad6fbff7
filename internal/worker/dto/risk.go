package dto

import (
	"encoding/json"
	"fmt"
)

// Risk levels, ordered by severity.
const (
	RiskLevelLow      = "low"
	RiskLevelMedium   = "medium"
	RiskLevelHigh     = "high"
	RiskLevelCritical = "critical"
)

var riskLevels = map[string]bool{
	RiskLevelLow:      true,
	RiskLevelMedium:   true,
	RiskLevelHigh:     true,
	RiskLevelCritical: true,
}

var riskCategories = map[string]bool{
	"budget":      true,
	"timeline":    true,
	"competition": true,
	"technical":   true,
	"alignment":   true,
	"resistance":  true,
}

var riskSeverities = map[string]bool{
	"low":    true,
	"medium": true,
	"high":   true,
}

// RiskFactor is a single categorized risk with supporting evidence from the
// transcript.
type RiskFactor struct {
	Category    string `json:"category"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Evidence    string `json:"evidence"`
}

// RiskAssessment is the model's read on the health of a deal.
type RiskAssessment struct {
	RiskLevel   string       `json:"risk_level"`
	RiskFactors []RiskFactor `json:"risk_factors"`
	Summary     string       `json:"summary"`
}

// ParseRiskAssessment validates the model's JSON output against the closed
// enum sets. Unlike the call-insight parser, a single invalid enum value
// anywhere rejects the whole result; factors are never silently dropped.
func ParseRiskAssessment(data []byte) (*RiskAssessment, error) {
	var result RiskAssessment
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal risk assessment: %w", err)
	}

	if !riskLevels[result.RiskLevel] {
		return nil, fmt.Errorf("invalid risk level %q", result.RiskLevel)
	}
	for i, f := range result.RiskFactors {
		if !riskCategories[f.Category] {
			return nil, fmt.Errorf("risk factor %d has invalid category %q", i, f.Category)
		}
		if !riskSeverities[f.Severity] {
			return nil, fmt.Errorf("risk factor %d has invalid severity %q", i, f.Severity)
		}
	}
	if result.RiskFactors == nil {
		result.RiskFactors = []RiskFactor{}
	}

	return &result, nil
}

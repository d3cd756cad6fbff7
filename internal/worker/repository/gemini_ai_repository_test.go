package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"golang-sales-insights/internal/worker/config"
	"golang-sales-insights/internal/worker/dto"
	"golang-sales-insights/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	calls     int
	sleeps    []time.Duration
	models    []string
	prompts   []string
	responses []fakeResponse
}

type fakeResponse struct {
	text string
	err  error
}

func newTestRepo(t *testing.T, responses ...fakeResponse) (*geminiAIRepository, *fakeTransport) {
	t.Helper()

	log, err := logger.New("error", "json")
	require.NoError(t, err)

	transport := &fakeTransport{responses: responses}
	repo := &geminiAIRepository{
		cfg: &config.Config{
			Gemini: config.Gemini{
				Model:           "primary-model",
				FallbackModel:   "fallback-model",
				ClassifierModel: "classifier-model",
			},
		},
		logger:     log,
		maxRetries: 3,
	}
	repo.generate = func(ctx context.Context, model, systemInstruction, prompt string) (string, error) {
		idx := transport.calls
		transport.calls++
		transport.models = append(transport.models, model)
		transport.prompts = append(transport.prompts, prompt)
		if idx >= len(transport.responses) {
			return "", fmt.Errorf("unexpected call %d", idx)
		}
		return transport.responses[idx].text, transport.responses[idx].err
	}
	repo.sleep = func(d time.Duration) {
		transport.sleeps = append(transport.sleeps, d)
	}
	return repo, transport
}

var overloadErr = errors.New("rpc error: code 503, model is overloaded")

const validRiskJSON = `{"risk_level": "low", "risk_factors": [], "summary": "fine"}`

func longTranscript(body string) string {
	return body + strings.Repeat(" filler sentence to cross the minimum length threshold.", 5)
}

func TestIsOverloadError(t *testing.T) {
	assert.True(t, isOverloadError(errors.New("HTTP 503 returned")))
	assert.True(t, isOverloadError(errors.New("service UNAVAILABLE")))
	assert.True(t, isOverloadError(errors.New("the model is overloaded, try later")))
	assert.False(t, isOverloadError(errors.New("invalid argument")))
	assert.False(t, isOverloadError(nil))
}

func TestInvoke_RetriesOverloadThenSucceeds(t *testing.T) {
	repo, transport := newTestRepo(t,
		fakeResponse{err: overloadErr},
		fakeResponse{err: overloadErr},
		fakeResponse{text: validRiskJSON},
	)

	result, err := repo.AnalyzeRisk(context.Background(), longTranscript("budget talk"))
	require.NoError(t, err)
	assert.Equal(t, "low", result.RiskLevel)
	assert.Equal(t, 3, transport.calls)
	assert.Len(t, transport.sleeps, 2)
}

func TestInvoke_BackoffGrowsPerAttempt(t *testing.T) {
	repo, transport := newTestRepo(t,
		fakeResponse{err: overloadErr},
		fakeResponse{err: overloadErr},
		fakeResponse{text: validRiskJSON},
	)

	_, err := repo.AnalyzeRisk(context.Background(), longTranscript("budget talk"))
	require.NoError(t, err)
	require.Len(t, transport.sleeps, 2)

	// First delay in [3s, 5s), second in [6s, 8s).
	assert.GreaterOrEqual(t, transport.sleeps[0], 3*time.Second)
	assert.Less(t, transport.sleeps[0], 5*time.Second)
	assert.GreaterOrEqual(t, transport.sleeps[1], 6*time.Second)
	assert.Less(t, transport.sleeps[1], 8*time.Second)
}

func TestInvoke_NonOverloadFailsFast(t *testing.T) {
	repo, transport := newTestRepo(t,
		fakeResponse{err: errors.New("invalid request")},
	)

	_, err := repo.AnalyzeRisk(context.Background(), longTranscript("budget talk"))
	require.Error(t, err)
	assert.Equal(t, 1, transport.calls)
	assert.Empty(t, transport.sleeps)
}

func TestInvoke_ExhaustsRetries(t *testing.T) {
	repo, transport := newTestRepo(t,
		fakeResponse{err: overloadErr},
		fakeResponse{err: overloadErr},
		fakeResponse{err: overloadErr},
		// Fallback model attempts after the primary exhausts.
		fakeResponse{err: errors.New("fallback also broken")},
	)

	_, err := repo.ConsolidateInsights(context.Background(), twoRecords())
	require.Error(t, err)
	// 3 primary attempts, then the fallback failed fast on a non-overload
	// error.
	assert.Equal(t, 4, transport.calls)
	assert.Equal(t, []string{"primary-model", "primary-model", "primary-model", "fallback-model"}, transport.models)
}

func TestInvokeWithFallback_SwitchesModelOnOverloadOnly(t *testing.T) {
	repo, transport := newTestRepo(t,
		fakeResponse{err: overloadErr},
		fakeResponse{err: overloadErr},
		fakeResponse{err: overloadErr},
		fakeResponse{text: "===BUSINESS_CASE_START===\nthe case\n"},
	)

	octx := &dto.OpportunityContext{}
	result, err := repo.GenerateBusinessCase(context.Background(), octx)
	require.NoError(t, err)
	assert.Equal(t, "the case", result.Document)
	assert.Equal(t, "fallback-model", transport.models[3])
}

func TestInvokeWithFallback_NoFallbackOnHardError(t *testing.T) {
	repo, transport := newTestRepo(t,
		fakeResponse{err: errors.New("prompt was rejected")},
	)

	_, err := repo.GenerateBusinessCase(context.Background(), &dto.OpportunityContext{})
	require.Error(t, err)
	assert.Equal(t, 1, transport.calls)
	assert.Equal(t, []string{"primary-model"}, transport.models)
}

func TestParseTranscript_TooShortSkipsModel(t *testing.T) {
	repo, transport := newTestRepo(t)

	_, err := repo.ParseTranscript(context.Background(), "too short", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "100")
	assert.Zero(t, transport.calls)
}

func TestAnalyzeRisk_TooLongSkipsModel(t *testing.T) {
	repo, transport := newTestRepo(t)

	_, err := repo.AnalyzeRisk(context.Background(), strings.Repeat("a", 80001))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "80000")
	assert.Zero(t, transport.calls)
}

func TestConsolidateInsights_RequiresTwoRecords(t *testing.T) {
	repo, transport := newTestRepo(t)

	_, err := repo.ConsolidateInsights(context.Background(), twoRecords()[:1])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 2")
	assert.Zero(t, transport.calls)
}

func TestConsolidateInsights_OrdersRecordsByMeetingDate(t *testing.T) {
	records := []dto.CallInsightRecord{
		{CallID: 3, Title: "March call", MeetingAt: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)},
		{CallID: 1, Title: "January call", MeetingAt: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)},
		{CallID: 2, Title: "February call", MeetingAt: time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)},
	}

	repo, transport := newTestRepo(t, fakeResponse{text: minimalConsolidatedJSON()})

	_, err := repo.ConsolidateInsights(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, transport.prompts, 1)

	prompt := transport.prompts[0]
	jan := strings.Index(prompt, "January call")
	feb := strings.Index(prompt, "February call")
	mar := strings.Index(prompt, "March call")
	require.True(t, jan >= 0 && feb >= 0 && mar >= 0)
	assert.Less(t, jan, feb)
	assert.Less(t, feb, mar)

	// The input slice is left untouched.
	assert.Equal(t, "March call", records[0].Title)
}

func TestClassifyRole_ValidToken(t *testing.T) {
	repo, transport := newTestRepo(t, fakeResponse{text: "```\nChampion\n```"})

	role, err := repo.ClassifyRole(context.Background(), "VP Engineering, very supportive")
	require.NoError(t, err)
	assert.Equal(t, dto.RoleChampion, role)
	assert.Equal(t, []string{"classifier-model"}, transport.models)
}

func TestClassifyRole_OutOfSetRejected(t *testing.T) {
	repo, _ := newTestRepo(t, fakeResponse{text: "manager"})

	_, err := repo.ClassifyRole(context.Background(), "Engineering Manager")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manager")
}

// A canned model response for an enterprise deal transcript flows through
// fence stripping, validation and normalization end to end.
func TestParseTranscript_EndToEndNormalization(t *testing.T) {
	transcript := longTranscript(
		"Dana: Honestly, the manual reconciliation is costing us about $2M a year. " +
			"We need a decision inside 45 days or the budget rolls over.")

	cannedResponse := "```json\n{" +
		`"pain_points": ["Manual reconciliation costs about $2M per year", "Budget window closes soon"],` +
		`"goals": ["Eliminate manual reconciliation"],` +
		`"people": [` +
		`{"name": "Dana Reyes", "organization": "Acme Corp", "role": "VP Finance"},` +
		`{"name": "Our AE", "organization": "Initech", "role": "Account Executive"}` +
		`],` +
		`"next_steps": ["Decision within 45 days"],` +
		`"quantifiable_metrics": ["$2M per year reconciliation cost", "45 day decision window"]` +
		"}\n```"

	repo, transport := newTestRepo(t, fakeResponse{text: cannedResponse})

	insight, err := repo.ParseTranscript(context.Background(), transcript, "Initech")
	require.NoError(t, err)
	assert.Equal(t, 1, transport.calls)

	joined := strings.Join(insight.PainPoints, " ")
	assert.Contains(t, joined, "$2M")

	metrics := strings.Join(insight.QuantifiableMetrics, " ")
	assert.Contains(t, metrics, "$2M")
	assert.Contains(t, metrics, "45 day")

	// The internal participant is excluded from the people list.
	require.Len(t, insight.People, 1)
	assert.Equal(t, "Dana Reyes", insight.People[0].Name)

	// Unset optional fields come back normalized, not nil.
	assert.NotNil(t, insight.Objections)
	assert.Equal(t, "neutral", insight.CallSentiment.Overall)
}

func twoRecords() []dto.CallInsightRecord {
	return []dto.CallInsightRecord{
		{CallID: 1, Title: "Discovery", MeetingAt: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)},
		{CallID: 2, Title: "Follow-up", MeetingAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func minimalConsolidatedJSON() string {
	return `{"pain_points": [], "goals": [], "risk_assessment": ` + validRiskJSON + `}`
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"golang-sales-insights/internal/entity"
	"golang-sales-insights/internal/worker/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscriptParseService_Execute(t *testing.T) {
	callRepo := newFakeCallRepo()
	callRepo.calls[7] = &entity.CallTranscript{ID: 7, OpportunityID: 1, Transcript: "long enough transcript"}

	aiRepo := &fakeAIRepo{
		parseTranscriptFn: func(ctx context.Context, transcript, organization string) (*dto.CallInsight, error) {
			assert.Equal(t, "long enough transcript", transcript)
			assert.Equal(t, "Initech", organization)
			return &dto.CallInsight{
				PainPoints: []string{"slow onboarding"},
				Goals:      []string{},
				NextSteps:  []string{},
				People: []dto.Person{
					{Name: "Dana Reyes", Organization: "Acme", Role: "VP Finance"},
					{Name: "Kim Soto", Organization: "Acme", Role: "Analyst"},
				},
			}, nil
		},
		classifyRoleFn: func(ctx context.Context, roleText string) (string, error) {
			if roleText == "VP Finance" {
				return dto.RoleDecisionMaker, nil
			}
			return "", errors.New("classifier unavailable")
		},
	}

	svc := NewTranscriptParseService(testLogger(t), nil, aiRepo, callRepo)
	err := svc.Execute(context.Background(), dto.CallTaskPayload{CallID: 7, Organization: "Initech"})
	require.NoError(t, err)

	saved, ok := callRepo.savedInsights[7]
	require.True(t, ok)

	var insight dto.CallInsight
	require.NoError(t, json.Unmarshal(saved, &insight))
	require.Len(t, insight.People, 2)

	// One classification succeeded, the failed one leaves the role unset
	// without failing the parse.
	assert.Equal(t, dto.RoleDecisionMaker, insight.People[0].ClassifiedRole)
	assert.Empty(t, insight.People[1].ClassifiedRole)
	assert.Empty(t, callRepo.parseFailures)
}

func TestTranscriptParseService_Execute_ParseErrorMarksFailed(t *testing.T) {
	callRepo := newFakeCallRepo()
	callRepo.calls[7] = &entity.CallTranscript{ID: 7, Transcript: "too short"}

	aiRepo := &fakeAIRepo{
		parseTranscriptFn: func(ctx context.Context, transcript, organization string) (*dto.CallInsight, error) {
			return nil, errors.New("transcript must be at least 100 characters")
		},
	}

	svc := NewTranscriptParseService(testLogger(t), nil, aiRepo, callRepo)
	err := svc.Execute(context.Background(), dto.CallTaskPayload{CallID: 7})
	require.Error(t, err)

	assert.Contains(t, callRepo.parseFailures[7], "100 characters")
	assert.Empty(t, callRepo.savedInsights)
}

func TestTranscriptParseService_Execute_UnknownCall(t *testing.T) {
	callRepo := newFakeCallRepo()
	aiRepo := &fakeAIRepo{}

	svc := NewTranscriptParseService(testLogger(t), nil, aiRepo, callRepo)
	err := svc.Execute(context.Background(), dto.CallTaskPayload{CallID: 99})
	require.Error(t, err)
	assert.Empty(t, callRepo.parseFailures)
}

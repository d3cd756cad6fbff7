package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang-sales-insights/internal/api/dto"
	"golang-sales-insights/internal/entity"
	"golang-sales-insights/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCallService_CreateCall(t *testing.T) {
	callRepo := newFakeAPICallRepo()
	publisher := &fakePublisher{}
	svc := NewCallService(callRepo, publisher, testLogger(t))

	resp, err := svc.CreateCall(context.Background(), &dto.CreateCallRequest{
		OpportunityID: 1,
		Title:         "Discovery call",
		Transcript:    "hello there",
		MeetingAt:     time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, resp.ParseStatus)
	assert.Equal(t, entity.StatusPending, resp.RiskStatus)

	// Creation never auto-enqueues a parse task.
	assert.Empty(t, publisher.published)
}

func TestCallService_CreateCall_Validation(t *testing.T) {
	svc := NewCallService(newFakeAPICallRepo(), &fakePublisher{}, testLogger(t))

	testCases := []struct {
		name string
		req  dto.CreateCallRequest
	}{
		{"missing opportunity", dto.CreateCallRequest{Transcript: "x", MeetingAt: time.Now()}},
		{"missing transcript", dto.CreateCallRequest{OpportunityID: 1, MeetingAt: time.Now()}},
		{"missing meeting time", dto.CreateCallRequest{OpportunityID: 1, Transcript: "x"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateCall(context.Background(), &tc.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCallService_TriggerParse(t *testing.T) {
	callRepo := newFakeAPICallRepo()
	callRepo.calls[7] = &entity.CallTranscript{
		ID:          7,
		Opportunity: entity.Opportunity{ID: 1, Account: entity.Account{Name: "Initech"}},
	}
	publisher := &fakePublisher{}
	svc := NewCallService(callRepo, publisher, testLogger(t))

	err := svc.TriggerParse(context.Background(), 7)
	require.NoError(t, err)

	// The status flips to generating before the task is published.
	require.Equal(t, []string{"generating"}, callRepo.parseMarks)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, common.RedisStreamTranscriptParse, publisher.published[0].stream)

	payload, ok := publisher.published[0].payload.(dto.CallTaskPayload)
	require.True(t, ok)
	assert.Equal(t, uint(7), payload.CallID)
	assert.Equal(t, "Initech", payload.Organization)
}

func TestCallService_TriggerParse_NotFound(t *testing.T) {
	svc := NewCallService(newFakeAPICallRepo(), &fakePublisher{}, testLogger(t))

	err := svc.TriggerParse(context.Background(), 99)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCallService_TriggerParse_PublishFailureMarksFailed(t *testing.T) {
	callRepo := newFakeAPICallRepo()
	callRepo.calls[7] = &entity.CallTranscript{ID: 7}
	publisher := &fakePublisher{err: errors.New("redis down")}
	svc := NewCallService(callRepo, publisher, testLogger(t))

	err := svc.TriggerParse(context.Background(), 7)
	require.Error(t, err)
	assert.Equal(t, []string{"generating", "failed"}, callRepo.parseMarks)
	assert.Contains(t, callRepo.parseFailures[7], "redis down")
}

func TestCallService_TriggerRiskAnalysis(t *testing.T) {
	callRepo := newFakeAPICallRepo()
	callRepo.calls[7] = &entity.CallTranscript{
		ID:          7,
		Opportunity: entity.Opportunity{ID: 1, Account: entity.Account{Name: "Initech"}},
	}
	publisher := &fakePublisher{}
	svc := NewCallService(callRepo, publisher, testLogger(t))

	err := svc.TriggerRiskAnalysis(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, common.RedisStreamRiskAnalysis, publisher.published[0].stream)
	assert.Equal(t, []string{"generating"}, callRepo.riskMarks)
}

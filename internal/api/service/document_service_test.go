package service

import (
	"context"
	"errors"
	"testing"

	"golang-sales-insights/internal/api/dto"
	"golang-sales-insights/internal/entity"
	"golang-sales-insights/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDocumentService_GenerateDocument(t *testing.T) {
	oppRepo := newFakeAPIOppRepo()
	oppRepo.opportunities[10] = &entity.Opportunity{ID: 10}
	docRepo := newFakeAPIDocRepo()
	publisher := &fakePublisher{}

	svc := NewDocumentService(docRepo, oppRepo, publisher, testLogger(t))
	resp, err := svc.GenerateDocument(context.Background(), 10, &dto.GenerateDocumentRequest{DocType: entity.DocTypeBusinessCase})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusGenerating, resp.Status)

	require.Len(t, docRepo.created, 1)
	assert.Equal(t, entity.StatusGenerating, docRepo.created[0].Status)

	require.Len(t, publisher.published, 1)
	assert.Equal(t, common.RedisStreamDocumentGeneration, publisher.published[0].stream)

	payload, ok := publisher.published[0].payload.(dto.DocumentTaskPayload)
	require.True(t, ok)
	assert.Equal(t, docRepo.created[0].ID, payload.DocumentID)
	assert.Equal(t, entity.DocTypeBusinessCase, payload.DocType)
}

func TestDocumentService_GenerateDocument_InvalidDocType(t *testing.T) {
	svc := NewDocumentService(newFakeAPIDocRepo(), newFakeAPIOppRepo(), &fakePublisher{}, testLogger(t))

	_, err := svc.GenerateDocument(context.Background(), 10, &dto.GenerateDocumentRequest{DocType: "press_release"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDocumentService_GenerateDocument_UnknownOpportunity(t *testing.T) {
	svc := NewDocumentService(newFakeAPIDocRepo(), newFakeAPIOppRepo(), &fakePublisher{}, testLogger(t))

	_, err := svc.GenerateDocument(context.Background(), 99, &dto.GenerateDocumentRequest{DocType: entity.DocTypeActionPlan})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDocumentService_GenerateDocument_PublishFailureMarksFailed(t *testing.T) {
	oppRepo := newFakeAPIOppRepo()
	oppRepo.opportunities[10] = &entity.Opportunity{ID: 10}
	docRepo := newFakeAPIDocRepo()
	publisher := &fakePublisher{err: errors.New("redis down")}

	svc := NewDocumentService(docRepo, oppRepo, publisher, testLogger(t))
	_, err := svc.GenerateDocument(context.Background(), 10, &dto.GenerateDocumentRequest{DocType: entity.DocTypeMeetingBrief})
	require.Error(t, err)

	require.Len(t, docRepo.created, 1)
	assert.Contains(t, docRepo.failures[docRepo.created[0].ID], "redis down")
}

func TestResearchScheduler_EnqueueAll(t *testing.T) {
	accountRepo := &fakeAPIAccountRepo{accounts: []entity.Account{{ID: 1}, {ID: 2}}}
	publisher := &fakePublisher{}

	scheduler := NewResearchScheduler("", accountRepo, publisher, testLogger(t))
	scheduler.EnqueueAll(context.Background())

	require.Len(t, publisher.published, 2)
	for i, task := range publisher.published {
		assert.Equal(t, common.RedisStreamAccountResearch, task.stream)
		payload, ok := task.payload.(dto.AccountResearchPayload)
		require.True(t, ok)
		assert.Equal(t, uint(i+1), payload.AccountID)
	}
}

package service

import (
	"context"
	"errors"
	"testing"

	"golang-sales-insights/internal/entity"
	"golang-sales-insights/internal/worker/config"
	"golang-sales-insights/internal/worker/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func docTestConfig() *config.Config {
	return &config.Config{
		Gemini:   config.Gemini{Model: "primary-model"},
		Research: config.Research{MaxItems: 5},
	}
}

func docTestRepos() (*fakeDocRepo, *fakeOppRepo, *fakeContactRepo, *fakeNewsRepo) {
	docRepo := newFakeDocRepo()
	oppRepo := newFakeOppRepo()
	oppRepo.opportunities[1] = &entity.Opportunity{
		ID:        1,
		AccountID: 2,
		Name:      "Acme expansion",
		Account:   entity.Account{ID: 2, Name: "Acme Corp"},
	}
	return docRepo, oppRepo, &fakeContactRepo{}, &fakeNewsRepo{}
}

func TestDocumentGenerationService_BusinessCase(t *testing.T) {
	docRepo, oppRepo, contactRepo, newsRepo := docTestRepos()
	docRepo.docs[5] = &entity.GeneratedDocument{ID: 5, OpportunityID: 1, DocType: entity.DocTypeBusinessCase}

	aiRepo := &fakeAIRepo{
		generateBusinessCase: func(ctx context.Context, octx *dto.OpportunityContext) (*dto.BusinessCaseResult, error) {
			assert.Equal(t, "Acme Corp", octx.Account.Name)
			return &dto.BusinessCaseResult{
				Document:      "# Business Case",
				OpenQuestions: []string{"What is the budget ceiling?"},
			}, nil
		},
	}

	svc := NewDocumentGenerationService(docTestConfig(), testLogger(t), nil, aiRepo, docRepo, oppRepo, contactRepo, newsRepo, nil)
	err := svc.Execute(context.Background(), dto.DocumentTaskPayload{DocumentID: 5})
	require.NoError(t, err)

	saved, ok := docRepo.saved[5]
	require.True(t, ok)
	assert.Equal(t, "# Business Case", saved.content)
	assert.Contains(t, string(saved.sections), "open_questions")
	assert.Equal(t, "primary-model", saved.model)
}

func TestDocumentGenerationService_ActionPlanSections(t *testing.T) {
	docRepo, oppRepo, contactRepo, newsRepo := docTestRepos()
	docRepo.docs[5] = &entity.GeneratedDocument{ID: 5, OpportunityID: 1, DocType: entity.DocTypeActionPlan}

	aiRepo := &fakeAIRepo{
		generateActionPlan: func(ctx context.Context, octx *dto.OpportunityContext) (*dto.ActionPlanResult, error) {
			return &dto.ActionPlanResult{Items: []dto.ActionPlanItem{
				{Title: "Security review", Owner: "Dana", OwnerSide: "buyer", DueDate: "2026-09-15", Status: "pending"},
			}}, nil
		},
	}

	svc := NewDocumentGenerationService(docTestConfig(), testLogger(t), nil, aiRepo, docRepo, oppRepo, contactRepo, newsRepo, nil)
	err := svc.Execute(context.Background(), dto.DocumentTaskPayload{DocumentID: 5})
	require.NoError(t, err)

	saved := docRepo.saved[5]
	assert.Contains(t, saved.content, "| 1 | Security review | Dana | buyer | 2026-09-15 | pending |")
	assert.Contains(t, string(saved.sections), "Security review")
}

func TestDocumentGenerationService_MeetingBriefLoadsNews(t *testing.T) {
	docRepo, oppRepo, contactRepo, newsRepo := docTestRepos()
	docRepo.docs[5] = &entity.GeneratedDocument{ID: 5, OpportunityID: 1, DocType: entity.DocTypeMeetingBrief}
	newsRepo.news = []entity.AccountNews{{ID: 1, AccountID: 2, Title: "Acme acquires competitor"}}

	var sawNews int
	aiRepo := &fakeAIRepo{
		generateMeetingBrief: func(ctx context.Context, octx *dto.OpportunityContext) (*dto.MeetingBriefResult, error) {
			sawNews = len(octx.News)
			return &dto.MeetingBriefResult{Brief: "brief text"}, nil
		},
	}

	svc := NewDocumentGenerationService(docTestConfig(), testLogger(t), nil, aiRepo, docRepo, oppRepo, contactRepo, newsRepo, nil)
	err := svc.Execute(context.Background(), dto.DocumentTaskPayload{DocumentID: 5})
	require.NoError(t, err)
	assert.Equal(t, 1, sawNews)
	assert.Equal(t, "brief text", docRepo.saved[5].content)
}

func TestDocumentGenerationService_ConsolidatedInsightIgnoredWhenUnreadable(t *testing.T) {
	docRepo, oppRepo, contactRepo, newsRepo := docTestRepos()
	oppRepo.opportunities[1].ConsolidatedInsight = datatypes.JSON("{broken")
	docRepo.docs[5] = &entity.GeneratedDocument{ID: 5, OpportunityID: 1, DocType: entity.DocTypeBusinessImpact}

	aiRepo := &fakeAIRepo{
		generateProposal: func(ctx context.Context, octx *dto.OpportunityContext) (*dto.ProposalResult, error) {
			assert.Nil(t, octx.Consolidated)
			return &dto.ProposalResult{Proposal: "impact proposal"}, nil
		},
	}

	svc := NewDocumentGenerationService(docTestConfig(), testLogger(t), nil, aiRepo, docRepo, oppRepo, contactRepo, newsRepo, nil)
	err := svc.Execute(context.Background(), dto.DocumentTaskPayload{DocumentID: 5})
	require.NoError(t, err)
}

func TestDocumentGenerationService_GeneratorErrorMarksFailed(t *testing.T) {
	docRepo, oppRepo, contactRepo, newsRepo := docTestRepos()
	docRepo.docs[5] = &entity.GeneratedDocument{ID: 5, OpportunityID: 1, DocType: entity.DocTypeBusinessCase}

	aiRepo := &fakeAIRepo{
		generateBusinessCase: func(ctx context.Context, octx *dto.OpportunityContext) (*dto.BusinessCaseResult, error) {
			return nil, errors.New("model exploded")
		},
	}

	svc := NewDocumentGenerationService(docTestConfig(), testLogger(t), nil, aiRepo, docRepo, oppRepo, contactRepo, newsRepo, nil)
	err := svc.Execute(context.Background(), dto.DocumentTaskPayload{DocumentID: 5})
	require.Error(t, err)
	assert.Equal(t, "model exploded", docRepo.failures[5])
	assert.Empty(t, docRepo.saved)
}

func TestDocumentGenerationService_UnknownDocType(t *testing.T) {
	docRepo, oppRepo, contactRepo, newsRepo := docTestRepos()
	docRepo.docs[5] = &entity.GeneratedDocument{ID: 5, OpportunityID: 1, DocType: "press_release"}

	svc := NewDocumentGenerationService(docTestConfig(), testLogger(t), nil, &fakeAIRepo{}, docRepo, oppRepo, contactRepo, newsRepo, nil)
	err := svc.Execute(context.Background(), dto.DocumentTaskPayload{DocumentID: 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "press_release")
	assert.Contains(t, docRepo.failures[5], "press_release")
}

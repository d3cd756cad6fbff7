package repository

import (
	"context"

	"golang-sales-insights/internal/entity"
	"golang-sales-insights/internal/worker/dto"
)

// AIRepository is the boundary to the generative model. Every method builds
// a prompt, invokes the model through the shared retry/backoff adapter and
// validates the response into its typed result.
type AIRepository interface {
	ParseTranscript(ctx context.Context, transcript, organization string) (*dto.CallInsight, error)
	ClassifyRole(ctx context.Context, roleText string) (string, error)
	AnalyzeRisk(ctx context.Context, transcript string) (*dto.RiskAssessment, error)
	ConsolidateInsights(ctx context.Context, records []dto.CallInsightRecord) (*dto.ConsolidatedInsight, error)
	GenerateBusinessCase(ctx context.Context, octx *dto.OpportunityContext) (*dto.BusinessCaseResult, error)
	GenerateProposal(ctx context.Context, octx *dto.OpportunityContext) (*dto.ProposalResult, error)
	GenerateActionPlan(ctx context.Context, octx *dto.OpportunityContext) (*dto.ActionPlanResult, error)
	GenerateMeetingBrief(ctx context.Context, octx *dto.OpportunityContext) (*dto.MeetingBriefResult, error)
}

// AccountResearchRepository fetches recent news about an account for brief
// context.
type AccountResearchRepository interface {
	FetchNews(ctx context.Context, account *entity.Account, maxItems int) ([]entity.AccountNews, error)
}

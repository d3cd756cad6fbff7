package service

import (
	"context"
	"testing"

	"golang-sales-insights/internal/entity"
	"golang-sales-insights/internal/worker/dto"
	"golang-sales-insights/pkg/logger"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "json")
	require.NoError(t, err)
	return log
}

var errNotFound = gorm.ErrRecordNotFound

type fakeAIRepo struct {
	parseTranscriptFn    func(ctx context.Context, transcript, organization string) (*dto.CallInsight, error)
	classifyRoleFn       func(ctx context.Context, roleText string) (string, error)
	analyzeRiskFn        func(ctx context.Context, transcript string) (*dto.RiskAssessment, error)
	consolidateFn        func(ctx context.Context, records []dto.CallInsightRecord) (*dto.ConsolidatedInsight, error)
	generateBusinessCase func(ctx context.Context, octx *dto.OpportunityContext) (*dto.BusinessCaseResult, error)
	generateProposal     func(ctx context.Context, octx *dto.OpportunityContext) (*dto.ProposalResult, error)
	generateActionPlan   func(ctx context.Context, octx *dto.OpportunityContext) (*dto.ActionPlanResult, error)
	generateMeetingBrief func(ctx context.Context, octx *dto.OpportunityContext) (*dto.MeetingBriefResult, error)
	consolidateCallCount int
}

func (f *fakeAIRepo) ParseTranscript(ctx context.Context, transcript, organization string) (*dto.CallInsight, error) {
	return f.parseTranscriptFn(ctx, transcript, organization)
}

func (f *fakeAIRepo) ClassifyRole(ctx context.Context, roleText string) (string, error) {
	return f.classifyRoleFn(ctx, roleText)
}

func (f *fakeAIRepo) AnalyzeRisk(ctx context.Context, transcript string) (*dto.RiskAssessment, error) {
	return f.analyzeRiskFn(ctx, transcript)
}

func (f *fakeAIRepo) ConsolidateInsights(ctx context.Context, records []dto.CallInsightRecord) (*dto.ConsolidatedInsight, error) {
	f.consolidateCallCount++
	return f.consolidateFn(ctx, records)
}

func (f *fakeAIRepo) GenerateBusinessCase(ctx context.Context, octx *dto.OpportunityContext) (*dto.BusinessCaseResult, error) {
	return f.generateBusinessCase(ctx, octx)
}

func (f *fakeAIRepo) GenerateProposal(ctx context.Context, octx *dto.OpportunityContext) (*dto.ProposalResult, error) {
	return f.generateProposal(ctx, octx)
}

func (f *fakeAIRepo) GenerateActionPlan(ctx context.Context, octx *dto.OpportunityContext) (*dto.ActionPlanResult, error) {
	return f.generateActionPlan(ctx, octx)
}

func (f *fakeAIRepo) GenerateMeetingBrief(ctx context.Context, octx *dto.OpportunityContext) (*dto.MeetingBriefResult, error) {
	return f.generateMeetingBrief(ctx, octx)
}

type fakeCallRepo struct {
	calls         map[uint]*entity.CallTranscript
	parsedCalls   []entity.CallTranscript
	savedInsights map[uint]datatypes.JSON
	savedRisks    map[uint]datatypes.JSON
	parseFailures map[uint]string
	riskFailures  map[uint]string
}

func newFakeCallRepo() *fakeCallRepo {
	return &fakeCallRepo{
		calls:         map[uint]*entity.CallTranscript{},
		savedInsights: map[uint]datatypes.JSON{},
		savedRisks:    map[uint]datatypes.JSON{},
		parseFailures: map[uint]string{},
		riskFailures:  map[uint]string{},
	}
}

func (f *fakeCallRepo) FindByID(ctx context.Context, id uint) (*entity.CallTranscript, error) {
	call, ok := f.calls[id]
	if !ok {
		return nil, errNotFound
	}
	return call, nil
}

func (f *fakeCallRepo) FindParsedByOpportunity(ctx context.Context, opportunityID uint) ([]entity.CallTranscript, error) {
	return f.parsedCalls, nil
}

func (f *fakeCallRepo) SaveInsight(ctx context.Context, id uint, insight datatypes.JSON) error {
	f.savedInsights[id] = insight
	return nil
}

func (f *fakeCallRepo) MarkParseFailed(ctx context.Context, id uint, errMsg string) error {
	f.parseFailures[id] = errMsg
	return nil
}

func (f *fakeCallRepo) SaveRisk(ctx context.Context, id uint, risk datatypes.JSON) error {
	f.savedRisks[id] = risk
	return nil
}

func (f *fakeCallRepo) MarkRiskFailed(ctx context.Context, id uint, errMsg string) error {
	f.riskFailures[id] = errMsg
	return nil
}

type fakeOppRepo struct {
	opportunities map[uint]*entity.Opportunity
	saved         map[uint]datatypes.JSON
	failures      map[uint]string
}

func newFakeOppRepo() *fakeOppRepo {
	return &fakeOppRepo{
		opportunities: map[uint]*entity.Opportunity{},
		saved:         map[uint]datatypes.JSON{},
		failures:      map[uint]string{},
	}
}

func (f *fakeOppRepo) FindByID(ctx context.Context, id uint) (*entity.Opportunity, error) {
	opp, ok := f.opportunities[id]
	if !ok {
		return nil, errNotFound
	}
	return opp, nil
}

func (f *fakeOppRepo) SaveConsolidatedInsight(ctx context.Context, id uint, insight datatypes.JSON) error {
	f.saved[id] = insight
	return nil
}

func (f *fakeOppRepo) MarkConsolidationFailed(ctx context.Context, id uint, errMsg string) error {
	f.failures[id] = errMsg
	return nil
}

type fakeDocRepo struct {
	docs     map[uint]*entity.GeneratedDocument
	saved    map[uint]savedDocument
	failures map[uint]string
}

type savedDocument struct {
	content  string
	sections datatypes.JSON
	model    string
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{
		docs:     map[uint]*entity.GeneratedDocument{},
		saved:    map[uint]savedDocument{},
		failures: map[uint]string{},
	}
}

func (f *fakeDocRepo) FindByID(ctx context.Context, id uint) (*entity.GeneratedDocument, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, errNotFound
	}
	return doc, nil
}

func (f *fakeDocRepo) SaveResult(ctx context.Context, id uint, content string, sections datatypes.JSON, model string) error {
	f.saved[id] = savedDocument{content: content, sections: sections, model: model}
	return nil
}

func (f *fakeDocRepo) MarkFailed(ctx context.Context, id uint, errMsg string) error {
	f.failures[id] = errMsg
	return nil
}

type fakeContactRepo struct {
	contacts []entity.Contact
}

func (f *fakeContactRepo) FindByAccountID(ctx context.Context, accountID uint) ([]entity.Contact, error) {
	return f.contacts, nil
}

type fakeNewsRepo struct {
	news     []entity.AccountNews
	upserted []entity.AccountNews
}

func (f *fakeNewsRepo) Upsert(ctx context.Context, items []entity.AccountNews) error {
	f.upserted = append(f.upserted, items...)
	return nil
}

func (f *fakeNewsRepo) FindRecentByAccount(ctx context.Context, accountID uint, limit int) ([]entity.AccountNews, error) {
	return f.news, nil
}

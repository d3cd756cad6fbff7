package service

import (
	"context"
	"testing"

	"golang-sales-insights/internal/entity"
	"golang-sales-insights/pkg/logger"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "json")
	require.NoError(t, err)
	return log
}

type publishedTask struct {
	stream  string
	payload interface{}
}

type fakePublisher struct {
	published []publishedTask
	err       error
}

func (f *fakePublisher) Publish(ctx context.Context, stream string, payload interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishedTask{stream: stream, payload: payload})
	return nil
}

type fakeAPICallRepo struct {
	calls         map[uint]*entity.CallTranscript
	created       []*entity.CallTranscript
	parsedCount   int64
	parseMarks    []string
	riskMarks     []string
	parseFailures map[uint]string
	riskFailures  map[uint]string
}

func newFakeAPICallRepo() *fakeAPICallRepo {
	return &fakeAPICallRepo{
		calls:         map[uint]*entity.CallTranscript{},
		parseFailures: map[uint]string{},
		riskFailures:  map[uint]string{},
	}
}

func (f *fakeAPICallRepo) Create(ctx context.Context, call *entity.CallTranscript) error {
	call.ID = uint(len(f.created) + 1)
	f.created = append(f.created, call)
	f.calls[call.ID] = call
	return nil
}

func (f *fakeAPICallRepo) FindByID(ctx context.Context, id uint) (*entity.CallTranscript, error) {
	call, ok := f.calls[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return call, nil
}

func (f *fakeAPICallRepo) CountParsedByOpportunity(ctx context.Context, opportunityID uint) (int64, error) {
	return f.parsedCount, nil
}

func (f *fakeAPICallRepo) MarkParseGenerating(ctx context.Context, id uint) error {
	f.parseMarks = append(f.parseMarks, "generating")
	return nil
}

func (f *fakeAPICallRepo) MarkParseFailed(ctx context.Context, id uint, message string) error {
	f.parseMarks = append(f.parseMarks, "failed")
	f.parseFailures[id] = message
	return nil
}

func (f *fakeAPICallRepo) MarkRiskGenerating(ctx context.Context, id uint) error {
	f.riskMarks = append(f.riskMarks, "generating")
	return nil
}

func (f *fakeAPICallRepo) MarkRiskFailed(ctx context.Context, id uint, message string) error {
	f.riskMarks = append(f.riskMarks, "failed")
	f.riskFailures[id] = message
	return nil
}

type fakeAPIOppRepo struct {
	opportunities map[uint]*entity.Opportunity
	marked        []uint
}

func newFakeAPIOppRepo() *fakeAPIOppRepo {
	return &fakeAPIOppRepo{opportunities: map[uint]*entity.Opportunity{}}
}

func (f *fakeAPIOppRepo) FindAll(ctx context.Context) ([]entity.Opportunity, error) {
	var out []entity.Opportunity
	for _, opp := range f.opportunities {
		out = append(out, *opp)
	}
	return out, nil
}

func (f *fakeAPIOppRepo) FindByID(ctx context.Context, id uint) (*entity.Opportunity, error) {
	opp, ok := f.opportunities[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return opp, nil
}

func (f *fakeAPIOppRepo) MarkConsolidationGenerating(ctx context.Context, id uint) error {
	f.marked = append(f.marked, id)
	return nil
}

type fakeAPIContactRepo struct {
	contacts []entity.Contact
}

func (f *fakeAPIContactRepo) FindByAccountID(ctx context.Context, accountID uint) ([]entity.Contact, error) {
	return f.contacts, nil
}

type fakeAPIDocRepo struct {
	docs     []entity.GeneratedDocument
	created  []*entity.GeneratedDocument
	failures map[uint]string
}

func newFakeAPIDocRepo() *fakeAPIDocRepo {
	return &fakeAPIDocRepo{failures: map[uint]string{}}
}

func (f *fakeAPIDocRepo) Create(ctx context.Context, doc *entity.GeneratedDocument) error {
	doc.ID = uint(len(f.created) + 1)
	f.created = append(f.created, doc)
	return nil
}

func (f *fakeAPIDocRepo) FindByOpportunityID(ctx context.Context, opportunityID uint) ([]entity.GeneratedDocument, error) {
	return f.docs, nil
}

func (f *fakeAPIDocRepo) MarkFailed(ctx context.Context, id uint, message string) error {
	f.failures[id] = message
	return nil
}

type fakeAPIAccountRepo struct {
	accounts []entity.Account
}

func (f *fakeAPIAccountRepo) FindAll(ctx context.Context) ([]entity.Account, error) {
	return f.accounts, nil
}

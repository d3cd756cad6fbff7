package repository

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"golang-sales-insights/internal/worker/config"
	"golang-sales-insights/internal/worker/dto"
	"golang-sales-insights/pkg/logger"
	"golang-sales-insights/pkg/ratelimit"
	"golang-sales-insights/pkg/utils"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

const (
	defaultMaxRetries      = 3
	minTranscriptLength    = 100
	maxRiskTranscriptChars = 80000
)

// generateFunc performs one model invocation and returns the raw text.
// It is a field on the repository so tests can substitute a fake transport.
type generateFunc func(ctx context.Context, model, systemInstruction, prompt string) (string, error)

// geminiAIRepository implements AIRepository on the Google Gemini API.
type geminiAIRepository struct {
	cfg            *config.Config
	logger         *logger.Logger
	genAiClient    *genai.Client
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
	generate       generateFunc
	sleep          func(time.Duration)
	maxRetries     int
}

// NewGeminiAIRepository creates a new instance of geminiAIRepository.
func NewGeminiAIRepository(cfg *config.Config, log *logger.Logger, genAiClient *genai.Client) (AIRepository, error) {
	secondsPerRequest := time.Minute / time.Duration(cfg.Gemini.MaxRequestPerMinute)
	maxRetries := cfg.Gemini.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	r := &geminiAIRepository{
		cfg:            cfg,
		logger:         log,
		genAiClient:    genAiClient,
		tokenLimiter:   ratelimit.NewTokenLimiter(cfg.Gemini.MaxTokenPerMinute),
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
		sleep:          time.Sleep,
		maxRetries:     maxRetries,
	}
	r.generate = r.generateContent
	return r, nil
}

// generateContent is the real transport: rate limiting, token counting, one
// GenerateContent call.
func (r *geminiAIRepository) generateContent(ctx context.Context, model, systemInstruction, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	tokenResp, err := r.genAiClient.Models.CountTokens(ctx, model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to count tokens: %w", err)
	}

	r.logger.Debug("Gemini token count",
		logger.IntField("total_tokens", int(tokenResp.TotalTokens)),
		logger.IntField("remaining", r.tokenLimiter.GetRemaining()),
	)

	if err := r.tokenLimiter.Wait(ctx, int(tokenResp.TotalTokens)); err != nil {
		return "", fmt.Errorf("failed to wait for token limit: %w", err)
	}
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for request limit: %w", err)
	}

	var genCfg *genai.GenerateContentConfig
	if systemInstruction != "" {
		genCfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		}
	}

	resp, err := r.genAiClient.Models.GenerateContent(ctx, model, contents, genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no content found in gemini response")
	}
	return text, nil
}

// isOverloadError reports whether err carries the overload signature that
// makes a retry worthwhile. Everything else fails fast.
func isOverloadError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "503") ||
		strings.Contains(msg, "unavailable") ||
		strings.Contains(msg, "overloaded")
}

func backoffDelay(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt+1)) * 1500 * time.Millisecond
	jitter := time.Duration(rand.Int63n(2000)) * time.Millisecond
	return base + jitter
}

// invoke runs one model call with retry on overload errors only.
// Non-overload errors (bad request, malformed response) return immediately;
// retrying them would just repeat the failure.
func (r *geminiAIRepository) invoke(ctx context.Context, model, systemInstruction, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < r.maxRetries; attempt++ {
		text, err := r.generate(ctx, model, systemInstruction, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !isOverloadError(err) {
			return "", err
		}
		if attempt == r.maxRetries-1 {
			break
		}
		delay := backoffDelay(attempt)
		r.logger.Warn("Gemini API overloaded, retrying",
			logger.IntField("attempt", attempt+1),
			logger.DurationField("delay", delay),
			logger.ErrorField(err),
		)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
		r.sleep(delay)
	}
	return "", fmt.Errorf("gemini request failed after %d attempts: %w", r.maxRetries, lastErr)
}

// invokeWithFallback tries the primary model and, only when it failed with
// the overload signature, degrades to the fallback model once.
func (r *geminiAIRepository) invokeWithFallback(ctx context.Context, systemInstruction, prompt string) (string, error) {
	text, err := r.invoke(ctx, r.cfg.Gemini.Model, systemInstruction, prompt)
	if err != nil && isOverloadError(err) && r.cfg.Gemini.FallbackModel != "" {
		r.logger.Warn("Primary model overloaded, degrading to fallback model",
			logger.StringField("fallback_model", r.cfg.Gemini.FallbackModel),
			logger.ErrorField(err),
		)
		return r.invoke(ctx, r.cfg.Gemini.FallbackModel, systemInstruction, prompt)
	}
	return text, err
}

// ParseTranscript extracts a structured insight from one call transcript.
func (r *geminiAIRepository) ParseTranscript(ctx context.Context, transcript, organization string) (*dto.CallInsight, error) {
	transcript = strings.TrimSpace(transcript)
	if len(transcript) < minTranscriptLength {
		return nil, fmt.Errorf("transcript must be at least %d characters", minTranscriptLength)
	}

	prompt := BuildTranscriptParsePrompt(transcript, organization)
	text, err := r.invoke(ctx, r.cfg.Gemini.Model, transcriptParseSystemInstruction, prompt)
	if err != nil {
		return nil, err
	}

	insight, err := dto.ParseCallInsight([]byte(utils.CleanJSONResponse(text)))
	if err != nil {
		r.logger.Error("Failed to parse transcript insight", logger.ErrorField(err), logger.StringField("response", utils.Truncate(text, 500)))
		return nil, err
	}

	if organization != "" {
		insight.People = excludeInternalPeople(insight.People, organization)
	}
	return insight, nil
}

func excludeInternalPeople(people []dto.Person, organization string) []dto.Person {
	org := strings.TrimSpace(organization)
	out := make([]dto.Person, 0, len(people))
	for _, p := range people {
		if strings.EqualFold(strings.TrimSpace(p.Organization), org) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ClassifyRole maps a free-text title to one of the stakeholder role
// tokens. An out-of-set answer is an error, not coerced.
func (r *geminiAIRepository) ClassifyRole(ctx context.Context, roleText string) (string, error) {
	prompt := BuildRoleClassifierPrompt(roleText)
	text, err := r.invoke(ctx, r.classifierModel(), roleClassifierSystemInstruction, prompt)
	if err != nil {
		return "", err
	}

	token := strings.ToLower(strings.TrimSpace(utils.CleanJSONResponse(text)))
	if !dto.IsStakeholderRole(token) {
		return "", fmt.Errorf("unrecognized stakeholder role %q", token)
	}
	return token, nil
}

func (r *geminiAIRepository) classifierModel() string {
	if r.cfg.Gemini.ClassifierModel != "" {
		return r.cfg.Gemini.ClassifierModel
	}
	return r.cfg.Gemini.Model
}

// AnalyzeRisk assesses deal risk from one call transcript.
func (r *geminiAIRepository) AnalyzeRisk(ctx context.Context, transcript string) (*dto.RiskAssessment, error) {
	transcript = strings.TrimSpace(transcript)
	if len(transcript) < minTranscriptLength {
		return nil, fmt.Errorf("transcript must be at least %d characters", minTranscriptLength)
	}
	if len(transcript) > maxRiskTranscriptChars {
		return nil, fmt.Errorf("transcript exceeds %d characters", maxRiskTranscriptChars)
	}

	prompt := BuildRiskAnalysisPrompt(transcript)
	text, err := r.invoke(ctx, r.cfg.Gemini.Model, riskAnalysisSystemInstruction, prompt)
	if err != nil {
		return nil, err
	}

	assessment, err := dto.ParseRiskAssessment([]byte(utils.CleanJSONResponse(text)))
	if err != nil {
		r.logger.Error("Failed to parse risk assessment", logger.ErrorField(err), logger.StringField("response", utils.Truncate(text, 500)))
		return nil, err
	}
	return assessment, nil
}

// ConsolidateInsights synthesizes two or more parsed calls into one
// deduplicated insight. Records are sorted oldest-first so the model can
// reason about temporal trends.
func (r *geminiAIRepository) ConsolidateInsights(ctx context.Context, records []dto.CallInsightRecord) (*dto.ConsolidatedInsight, error) {
	if len(records) < 2 {
		return nil, fmt.Errorf("consolidation requires at least 2 parsed calls, got %d", len(records))
	}

	sorted := make([]dto.CallInsightRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MeetingAt.Before(sorted[j].MeetingAt)
	})

	prompt := BuildConsolidationPrompt(sorted)
	text, err := r.invokeWithFallback(ctx, consolidationSystemInstruction, prompt)
	if err != nil {
		return nil, err
	}

	consolidated, err := dto.ParseConsolidatedInsight([]byte(utils.CleanJSONResponse(text)))
	if err != nil {
		r.logger.Error("Failed to parse consolidated insight", logger.ErrorField(err), logger.StringField("response", utils.Truncate(text, 500)))
		return nil, err
	}
	return consolidated, nil
}

// GenerateBusinessCase produces a business case document plus the open
// questions the model could not answer from the given context.
func (r *geminiAIRepository) GenerateBusinessCase(ctx context.Context, octx *dto.OpportunityContext) (*dto.BusinessCaseResult, error) {
	prompt := BuildBusinessCasePrompt(octx)
	text, err := r.invokeWithFallback(ctx, businessCaseSystemInstruction, prompt)
	if err != nil {
		return nil, err
	}
	return dto.ParseBusinessCaseResponse(text), nil
}

// GenerateProposal produces a business impact proposal.
func (r *geminiAIRepository) GenerateProposal(ctx context.Context, octx *dto.OpportunityContext) (*dto.ProposalResult, error) {
	prompt := BuildProposalPrompt(octx)
	text, err := r.invokeWithFallback(ctx, proposalSystemInstruction, prompt)
	if err != nil {
		return nil, err
	}
	return &dto.ProposalResult{Proposal: strings.TrimSpace(text)}, nil
}

// GenerateActionPlan produces a mutual action plan with validated dates and
// owner/status enums.
func (r *geminiAIRepository) GenerateActionPlan(ctx context.Context, octx *dto.OpportunityContext) (*dto.ActionPlanResult, error) {
	prompt := BuildActionPlanPrompt(octx)
	text, err := r.invokeWithFallback(ctx, actionPlanSystemInstruction, prompt)
	if err != nil {
		return nil, err
	}

	plan, err := dto.ParseActionPlan([]byte(utils.CleanJSONResponse(text)))
	if err != nil {
		r.logger.Error("Failed to parse action plan", logger.ErrorField(err), logger.StringField("response", utils.Truncate(text, 500)))
		return nil, err
	}
	return plan, nil
}

// GenerateMeetingBrief produces a pre-meeting brief, folding in recent
// account news when available.
func (r *geminiAIRepository) GenerateMeetingBrief(ctx context.Context, octx *dto.OpportunityContext) (*dto.MeetingBriefResult, error) {
	prompt := BuildMeetingBriefPrompt(octx)
	text, err := r.invokeWithFallback(ctx, meetingBriefSystemInstruction, prompt)
	if err != nil {
		return nil, err
	}
	return &dto.MeetingBriefResult{Brief: strings.TrimSpace(text)}, nil
}

package consumer

import (
	"context"
	"sync"
	"time"

	"golang-sales-insights/internal/worker/config"
	"golang-sales-insights/internal/worker/service"
	"golang-sales-insights/pkg/common"
	"golang-sales-insights/pkg/logger"
	"golang-sales-insights/pkg/utils"
)

// RedisConsumer manages the consumption of tasks from the Redis streams.
type RedisConsumer struct {
	cfg             *config.Config
	transcriptParse service.TranscriptParseService
	riskAnalysis    service.RiskAnalysisService
	consolidation   service.ConsolidationService
	documentGen     service.DocumentGenerationService
	accountResearch service.AccountResearchService
	logger          *logger.Logger
	stopChan        chan struct{}
	wg              sync.WaitGroup
}

// NewRedisConsumer creates a new RedisConsumer.
func NewRedisConsumer(
	cfg *config.Config,
	transcriptParse service.TranscriptParseService,
	riskAnalysis service.RiskAnalysisService,
	consolidation service.ConsolidationService,
	documentGen service.DocumentGenerationService,
	accountResearch service.AccountResearchService,
	log *logger.Logger,
) *RedisConsumer {
	return &RedisConsumer{
		cfg:             cfg,
		transcriptParse: transcriptParse,
		riskAnalysis:    riskAnalysis,
		consolidation:   consolidation,
		documentGen:     documentGen,
		accountResearch: accountResearch,
		logger:          log,
		stopChan:        make(chan struct{}),
	}
}

// Start begins one processing loop per stream.
func (c *RedisConsumer) Start(ctx context.Context) {
	c.logger.Info("Redis consumer started")
	c.registerStreamHandler(ctx, c.transcriptParse.ProcessTask, common.RedisStreamTranscriptParse, c.cfg.Worker.TranscriptParseTimeout)
	c.registerStreamHandler(ctx, c.riskAnalysis.ProcessTask, common.RedisStreamRiskAnalysis, c.cfg.Worker.RiskAnalysisTimeout)
	c.registerStreamHandler(ctx, c.consolidation.ProcessTask, common.RedisStreamInsightConsolidation, c.cfg.Worker.ConsolidationTimeout)
	c.registerStreamHandler(ctx, c.documentGen.ProcessTask, common.RedisStreamDocumentGeneration, c.cfg.Worker.DocumentGenerationTimeout)
	c.registerStreamHandler(ctx, c.accountResearch.ProcessTask, common.RedisStreamAccountResearch, c.cfg.Worker.AccountResearchTimeout)
}

func (c *RedisConsumer) registerStreamHandler(ctx context.Context, fn func(ctx context.Context), streamName string, timeout time.Duration) {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	c.logger.Info("Registering stream handler",
		logger.StringField("stream", streamName),
		logger.DurationField("timeout", timeout))
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Stream handler stopping due to context cancellation", logger.StringField("stream", streamName))
				return
			case <-c.stopChan:
				c.logger.Info("Stream handler stopping", logger.StringField("stream", streamName))
				return
			default:
				ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
				fn(ctxTimeout)
				cancel()
			}
		}
	})
}

// Stop gracefully shuts down the consumer.
func (c *RedisConsumer) Stop() {
	close(c.stopChan)
	c.wg.Wait()
	c.logger.Info("Redis consumer stopped")
}

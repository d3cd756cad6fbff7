package service

import (
	"context"
	"encoding/json"

	"golang-sales-insights/internal/api/config"
	"golang-sales-insights/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// Publisher enqueues background tasks for the worker service.
type Publisher interface {
	Publish(ctx context.Context, stream string, payload interface{}) error
}

// NewTaskPublisher creates a Publisher backed by Redis streams.
func NewTaskPublisher(redisClient *redis.Client, log *logger.Logger, cfg *config.Config) Publisher {
	return &taskPublisher{
		redisClient: redisClient,
		logger:      log,
		cfg:         cfg,
	}
}

type taskPublisher struct {
	redisClient *redis.Client
	logger      *logger.Logger
	cfg         *config.Config
}

func (p *taskPublisher) Publish(ctx context.Context, stream string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if err := p.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{"payload": body},
		MaxLen: p.cfg.Redis.StreamMaxLen,
		Approx: true,
	}).Err(); err != nil {
		p.logger.Error("Failed to enqueue task", logger.ErrorField(err), logger.StringField("stream", stream))
		return err
	}

	p.logger.Info("Task published", logger.StringField("stream", stream))
	return nil
}

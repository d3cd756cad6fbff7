package service

import (
	"context"
	"time"

	"golang-sales-insights/pkg/common"
	"golang-sales-insights/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// readStreamMessage blocks briefly on the given stream and returns the next
// task payload, if any. Context cancellation and empty reads are expected
// during shutdown and idle periods and are not logged as errors.
func readStreamMessage(ctx context.Context, client *redis.Client, log *logger.Logger, stream string) (payload string, messageID string, ok bool) {
	streams, err := client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{stream, ">"},
		Count:    1,
		Block:    2 * time.Second,
	}).Result()
	if err != nil {
		if err == context.Canceled || err == context.DeadlineExceeded || err == redis.Nil {
			return "", "", false
		}
		log.Error("Failed to read from stream", logger.StringField("stream", stream), logger.ErrorField(err))
		return "", "", false
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return "", "", false
	}

	message := streams[0].Messages[0]
	payload, isString := message.Values["payload"].(string)
	if !isString {
		log.Error("field 'payload' not found or not a string in stream message",
			logger.StringField("stream", stream), logger.Field("message_id", message.ID))
		ackAndDelete(ctx, client, log, stream, message.ID)
		return "", "", false
	}
	return payload, message.ID, true
}

// ackAndDelete acknowledges a message and removes it from the stream.
// Failures are worth knowing about but never abort the task that produced
// them.
func ackAndDelete(ctx context.Context, client *redis.Client, log *logger.Logger, stream, messageID string) {
	if err := client.XAck(ctx, stream, common.RedisStreamGroup, messageID).Err(); err != nil {
		log.Error("Failed to acknowledge message", logger.StringField("stream", stream), logger.Field("message_id", messageID), logger.ErrorField(err))
		return
	}
	if err := client.XDel(ctx, stream, messageID).Err(); err != nil {
		log.Error("Failed to delete message", logger.StringField("stream", stream), logger.Field("message_id", messageID), logger.ErrorField(err))
	}
}

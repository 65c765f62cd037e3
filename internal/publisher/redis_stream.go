package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/nyx/internal/store"
)

// TransitionStream receives one entry per injury status change
const TransitionStream = "injuries.transitions.basketball_nba"

// RedisStreamPublisher publishes injury transitions to Redis streams
type RedisStreamPublisher struct {
	client *redis.Client
}

// NewRedisStreamPublisher creates a new Redis stream publisher from existing client
func NewRedisStreamPublisher(client *redis.Client) *RedisStreamPublisher {
	return &RedisStreamPublisher{
		client: client,
	}
}

// PublishTransition publishes a single injury status change to the stream
func (rsp *RedisStreamPublisher) PublishTransition(ctx context.Context, event *store.InjuryEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return rsp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: TransitionStream,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}

// PublishTransitions publishes every status change recorded by one sync pass
func (rsp *RedisStreamPublisher) PublishTransitions(ctx context.Context, events []store.InjuryEvent) error {
	for i := range events {
		if err := rsp.PublishTransition(ctx, &events[i]); err != nil {
			return err
		}
	}
	return nil
}

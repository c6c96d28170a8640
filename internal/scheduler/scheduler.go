// Package scheduler implements the one-shot timer service: a job is a named
// payload delivered to the event bus once its run time has passed. Jobs are
// kept in Redis (a sorted set of names scored by run time, plus a hash of
// payload envelopes) and a worker polls for due names and publishes them.
//
// Delivery is at-least-once: the envelope is published before it is removed,
// so a crash in between re-delivers on the next tick. Consumers are
// idempotent by contract.
package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	dueSetKey   = "fuellock:timers:due"
	jobsHashKey = "fuellock:timers:jobs"
)

// Topic returns the bus topic timer payloads of the given event name are
// delivered to.
func Topic(eventName string) string {
	return "timers." + eventName
}

type storedJob struct {
	Name     string            `json:"name"`
	Topic    string            `json:"topic"`
	UUID     string            `json:"uuid"`
	Metadata map[string]string `json:"metadata"`
	Payload  json.RawMessage   `json:"payload"`
	RunAt    time.Time         `json:"run_at"`
}

type RedisScheduler struct {
	client       *redis.Client
	publisher    message.Publisher
	marshaler    cqrs.CommandEventMarshaler
	logger       zerolog.Logger
	pollInterval time.Duration
}

func NewRedisScheduler(
	client *redis.Client,
	publisher message.Publisher,
	marshaler cqrs.CommandEventMarshaler,
	logger zerolog.Logger,
	pollInterval time.Duration,
) *RedisScheduler {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &RedisScheduler{
		client:       client,
		publisher:    publisher,
		marshaler:    marshaler,
		logger:       logger,
		pollInterval: pollInterval,
	}
}

// Schedule registers a one-shot job. Scheduling an existing name replaces its
// payload and run time.
func (s *RedisScheduler) Schedule(ctx context.Context, name string, runAt time.Time, event any) error {
	msg, err := s.marshaler.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal timer payload: %w", err)
	}

	job := storedJob{
		Name:     name,
		Topic:    Topic(s.marshaler.Name(event)),
		UUID:     msg.UUID,
		Metadata: msg.Metadata,
		Payload:  json.RawMessage(msg.Payload),
		RunAt:    runAt.UTC(),
	}
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal timer job: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, jobsHashKey, name, data)
	pipe.ZAdd(ctx, dueSetKey, redis.Z{
		Score:  float64(job.RunAt.Unix()),
		Member: name,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store timer job %s: %w", name, err)
	}

	s.logger.Info().
		Str("job", name).
		Time("run_at", job.RunAt).
		Msg("timer job scheduled")
	return nil
}

// Cancel removes a job by name. A missing job is not an error.
func (s *RedisScheduler) Cancel(ctx context.Context, name string) error {
	pipe := s.client.TxPipeline()
	pipe.ZRem(ctx, dueSetKey, name)
	pipe.HDel(ctx, jobsHashKey, name)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cancel timer job %s: %w", name, err)
	}
	return nil
}

// RunWorker polls for due jobs until the context is cancelled.
func (s *RedisScheduler) RunWorker(ctx context.Context) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.deliverDue(ctx); err != nil {
				s.logger.Err(err).Msg("failed to deliver due timer jobs")
			}
		}
	}
}

func (s *RedisScheduler) deliverDue(ctx context.Context) error {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	names, err := s.client.ZRangeByScore(ctx, dueSetKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: now,
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to read due timer jobs: %w", err)
	}

	for _, name := range names {
		data, err := s.client.HGet(ctx, jobsHashKey, name).Result()
		if errors.Is(err, redis.Nil) {
			// cancelled or already delivered by a sibling worker
			s.client.ZRem(ctx, dueSetKey, name)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to load timer job %s: %w", name, err)
		}

		var job storedJob
		if err := json.Unmarshal([]byte(data), &job); err != nil {
			s.logger.Err(err).Str("job", name).Msg("dropping undecodable timer job")
			s.remove(ctx, name)
			continue
		}

		msg := message.NewMessage(job.UUID, []byte(job.Payload))
		for k, v := range job.Metadata {
			msg.Metadata.Set(k, v)
		}
		if err := s.publisher.Publish(job.Topic, msg); err != nil {
			// left in place, retried on the next tick
			s.logger.Err(err).Str("job", name).Msg("failed to publish timer payload")
			continue
		}
		s.remove(ctx, name)

		s.logger.Info().Str("job", name).Str("topic", job.Topic).Msg("timer job fired")
	}
	return nil
}

func (s *RedisScheduler) remove(ctx context.Context, name string) {
	pipe := s.client.TxPipeline()
	pipe.ZRem(ctx, dueSetKey, name)
	pipe.HDel(ctx, jobsHashKey, name)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Err(err).Str("job", name).Msg("failed to remove delivered timer job")
	}
}

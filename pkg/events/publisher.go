// Package events publishes migration run lifecycle events to Redis so
// downstream dashboards can follow long runs without tailing logs.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zoea-platform/zmig/pkg/logging"
)

// Redis channels for migration run events
const (
	ChannelRunStarted     = "events.migration_run.started"
	ChannelStageCompleted = "events.migration_run.stage_completed"
	ChannelRunCompleted   = "events.migration_run.completed"
)

// BaseEvent contains common fields for all events.
type BaseEvent struct {
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
}

// NewBaseEvent creates a BaseEvent with sensible defaults.
func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Source:    "zmig",
		Version:   "1.0",
	}
}

// RunStartedEvent is published when a migration procedure begins.
type RunStartedEvent struct {
	BaseEvent

	RunID     string   `json:"run_id"`
	Procedure string   `json:"procedure"`
	Stages    []string `json:"stages"`
}

// StageCompletedEvent is published after each stage of a run.
type StageCompletedEvent struct {
	BaseEvent

	RunID     string `json:"run_id"`
	Procedure string `json:"procedure"`
	Stage     string `json:"stage"`

	Migrated int `json:"migrated"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`

	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// RunCompletedEvent is published when a migration procedure finishes.
type RunCompletedEvent struct {
	BaseEvent

	RunID     string `json:"run_id"`
	Procedure string `json:"procedure"`

	Migrated int `json:"migrated"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`

	StartedAt       time.Time `json:"started_at"`
	CompletedAt     time.Time `json:"completed_at"`
	DurationSeconds float64   `json:"duration_seconds"`

	Success bool `json:"success"`
}

// Publisher publishes run events to Redis. A nil Publisher is valid and
// drops every event, so callers never have to branch on whether eventing
// is configured.
type Publisher struct {
	client *redis.Client
	logger logging.Logger
}

// NewPublisher creates a new event publisher.
func NewPublisher(client *redis.Client, logger logging.Logger) *Publisher {
	return &Publisher{
		client: client,
		logger: logger.With(logging.F("component", "event_publisher")),
	}
}

// NewPublisherFromAddr creates a publisher with a new Redis connection.
// An empty addr returns a nil publisher, which is a no-op.
func NewPublisherFromAddr(addr string, logger logging.Logger) (*Publisher, error) {
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewPublisher(client, logger), nil
}

// PublishRunStarted publishes the start of a migration procedure.
func (p *Publisher) PublishRunStarted(ctx context.Context, runID, procedure string, stages []string) error {
	if p == nil {
		return nil
	}
	return p.publish(ctx, ChannelRunStarted, RunStartedEvent{
		BaseEvent: NewBaseEvent("migration_run.started"),
		RunID:     runID,
		Procedure: procedure,
		Stages:    stages,
	})
}

// PublishStageCompleted publishes the outcome of one stage.
func (p *Publisher) PublishStageCompleted(ctx context.Context, runID, procedure, stage string, migrated, skipped, failed int, elapsed time.Duration) error {
	if p == nil {
		return nil
	}
	return p.publish(ctx, ChannelStageCompleted, StageCompletedEvent{
		BaseEvent:      NewBaseEvent("migration_run.stage_completed"),
		RunID:          runID,
		Procedure:      procedure,
		Stage:          stage,
		Migrated:       migrated,
		Skipped:        skipped,
		Failed:         failed,
		ElapsedSeconds: elapsed.Seconds(),
	})
}

// PublishRunCompleted publishes the final outcome of a run.
func (p *Publisher) PublishRunCompleted(ctx context.Context, e RunCompletedEvent) error {
	if p == nil {
		return nil
	}
	e.BaseEvent = NewBaseEvent("migration_run.completed")
	e.DurationSeconds = e.CompletedAt.Sub(e.StartedAt).Seconds()
	return p.publish(ctx, ChannelRunCompleted, e)
}

// publish serializes and publishes an event to Redis.
func (p *Publisher) publish(ctx context.Context, channel string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.client.Publish(ctx, channel, data).Err(); err != nil {
		p.logger.Error("Failed to publish event",
			logging.Err(err),
			logging.F("channel", channel))
		return fmt.Errorf("failed to publish to %s: %w", channel, err)
	}

	p.logger.Debug("Event published",
		logging.F("channel", channel),
		logging.F("payload_size", len(data)))

	return nil
}

// Close closes the Redis connection.
func (p *Publisher) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}

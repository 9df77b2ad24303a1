// Package events publishes run notifications on Redis pub/sub channels.
// Publishing is best effort: failures are logged and never fail a run.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"jobmate/apply-service/internal/model"
)

// Channel names, also used as the event "type" field.
const (
	ChannelJobApplied  = "EVENT_JOB_APPLIED"
	ChannelRunFinished = "EVENT_APPLY_RUN_FINISHED"
)

// Publisher emits an event on a channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, event any)
}

// JobApplied is sent once per successful application.
type JobApplied struct {
	Type      string    `json:"type"`
	ProfileID string    `json:"profileId"`
	JobURL    string    `json:"jobUrl"`
	JobTitle  string    `json:"jobTitle"`
	Company   string    `json:"company"`
	AppliedAt time.Time `json:"appliedAt"`
}

// NewJobApplied builds the event for a successful result.
func NewJobApplied(profileID string, r model.CandidaturaResult) JobApplied {
	return JobApplied{
		Type:      ChannelJobApplied,
		ProfileID: profileID,
		JobURL:    r.JobURL,
		JobTitle:  r.JobTitle,
		Company:   r.Company,
		AppliedAt: r.Timestamp,
	}
}

// RunFinished carries the result of a queued run back to its requester.
type RunFinished struct {
	Type      string          `json:"type"`
	RequestID string          `json:"requestId"`
	ProfileID string          `json:"profileId"`
	Result    model.RunResult `json:"result"`
}

// NewRunFinished builds the completion event of a queued run.
func NewRunFinished(requestID, profileID string, res model.RunResult) RunFinished {
	return RunFinished{Type: ChannelRunFinished, RequestID: requestID, ProfileID: profileID, Result: res}
}

// redisPublisher is the slice of the go-redis client used here.
type redisPublisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// Redis publishes JSON-encoded events.
type Redis struct {
	rdb redisPublisher
	log *slog.Logger
}

// NewRedis wraps a connected client (*redis.Client satisfies redisPublisher).
func NewRedis(rdb redisPublisher, log *slog.Logger) *Redis {
	if log == nil {
		log = slog.Default()
	}
	return &Redis{rdb: rdb, log: log.With("component", "events")}
}

func (p *Redis) Publish(ctx context.Context, channel string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.log.Warn("encode event failed", "channel", channel, "err", err)
		return
	}
	if err := p.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		p.log.Warn("publish "+channel+" failed", "err", err)
	}
}

// Nop drops every event. Used when no Redis is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) {}

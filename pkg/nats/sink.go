package nats

import (
	"context"
	"time"

	"ai-organizer-be/internal/pkg/logger"
	"ai-organizer-be/pkg/events"
	"ai-organizer-be/pkg/telemetry"
)

// Sink forwards telemetry records onto the NATS event stream. Failures are
// logged and swallowed: observability must never fail the operation it
// observes.
type Sink struct {
	publisher *Publisher
	logger    logger.ILogger
}

var _ telemetry.Sink = &Sink{}

func NewSink(publisher *Publisher, log logger.ILogger) *Sink {
	return &Sink{
		publisher: publisher,
		logger:    log,
	}
}

func (s *Sink) RecordProviderCall(ctx context.Context, providerName string, latency time.Duration, success bool) {
	if s.publisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type: "PROVIDER_CALL",
		Data: map[string]interface{}{
			"provider":   providerName,
			"latency_ms": latency.Milliseconds(),
			"success":    success,
		},
		OccurredAt: time.Now(),
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("telemetry", "failed to publish provider call record", map[string]interface{}{
			"provider": providerName,
			"error":    err.Error(),
		})
	}
}

func (s *Sink) RecordApplyOutcome(ctx context.Context, jobId, groupKey string, moves int, success bool) {
	if s.publisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type: "APPLY_OUTCOME",
		Data: map[string]interface{}{
			"job_id":    jobId,
			"group_key": groupKey,
			"moves":     moves,
			"success":   success,
		},
		OccurredAt: time.Now(),
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("telemetry", "failed to publish apply outcome record", map[string]interface{}{
			"job_id": jobId,
			"error":  err.Error(),
		})
	}
}

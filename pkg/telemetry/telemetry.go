package telemetry

import (
	"context"
	"time"
)

// Sink receives observability records. The engine only depends on this
// contract; the NATS publisher and the test doubles implement it.
type Sink interface {
	// RecordProviderCall reports one gateway invocation.
	RecordProviderCall(ctx context.Context, providerName string, latency time.Duration, success bool)

	// RecordApplyOutcome reports one action group result.
	RecordApplyOutcome(ctx context.Context, jobId, groupKey string, moves int, success bool)
}

// Noop discards everything. Used when no NATS connection is configured.
type Noop struct{}

func (Noop) RecordProviderCall(ctx context.Context, providerName string, latency time.Duration, success bool) {
}

func (Noop) RecordApplyOutcome(ctx context.Context, jobId, groupKey string, moves int, success bool) {
}

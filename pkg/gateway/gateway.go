package gateway

import (
	"context"
	"fmt"
	"time"

	"ai-organizer-be/internal/pkg/apperrors"
	"ai-organizer-be/internal/pkg/logger"
	"ai-organizer-be/pkg/breaker"
	"ai-organizer-be/pkg/provider"
	"ai-organizer-be/pkg/retry"
	"ai-organizer-be/pkg/telemetry"
)

// ProviderGateway fronts the configured LLM providers. Each provider gets
// its own circuit breaker; when the primary's circuit is open the gateway
// fails over to the next configured provider. Every invocation is recorded
// on the telemetry sink, success or not.
type ProviderGateway struct {
	providers []guarded
	policy    retry.Policy
	sink      telemetry.Sink
	logger    logger.ILogger
}

type guarded struct {
	provider provider.LLMProvider
	breaker  *breaker.CircuitBreaker
}

func New(
	providers []provider.LLMProvider,
	breakerCfg breaker.Config,
	policy retry.Policy,
	sink telemetry.Sink,
	log logger.ILogger,
) *ProviderGateway {
	if sink == nil {
		sink = telemetry.Noop{}
	}
	g := &ProviderGateway{
		policy: policy,
		sink:   sink,
		logger: log,
	}
	for _, p := range providers {
		g.providers = append(g.providers, guarded{
			provider: p,
			breaker:  breaker.New(breakerCfg),
		})
	}
	return g
}

// Generate routes a single prompt to the first healthy provider.
func (g *ProviderGateway) Generate(ctx context.Context, prompt string, opts ...provider.Option) (string, error) {
	return g.invoke(ctx, func(p provider.LLMProvider) (string, error) {
		return p.Generate(ctx, prompt, opts...)
	})
}

// Chat routes a chat history to the first healthy provider.
func (g *ProviderGateway) Chat(ctx context.Context, history []provider.Message, opts ...provider.Option) (string, error) {
	return g.invoke(ctx, func(p provider.LLMProvider) (string, error) {
		return p.Chat(ctx, history, opts...)
	})
}

// BreakerState exposes the per-provider circuit state for status endpoints.
func (g *ProviderGateway) BreakerState(name string) (breaker.State, bool) {
	for _, gp := range g.providers {
		if gp.provider.Name() == name {
			return gp.breaker.State(), true
		}
	}
	return "", false
}

func (g *ProviderGateway) invoke(ctx context.Context, call func(provider.LLMProvider) (string, error)) (string, error) {
	if len(g.providers) == 0 {
		return "", apperrors.ProviderUnavailable("no providers configured", nil)
	}

	var lastErr error
	for _, gp := range g.providers {
		if !gp.breaker.Allow() {
			if g.logger != nil {
				g.logger.Warn("gateway", "circuit open, failing over", map[string]interface{}{
					"provider": gp.provider.Name(),
				})
			}
			continue
		}

		var out string
		start := time.Now()
		err := g.policy.Do(ctx, func() error {
			var callErr error
			out, callErr = call(gp.provider)
			return callErr
		})
		latency := time.Since(start)

		if err != nil {
			gp.breaker.RecordFailure()
			g.sink.RecordProviderCall(ctx, gp.provider.Name(), latency, false)
			lastErr = fmt.Errorf("provider %s: %w", gp.provider.Name(), err)
			continue
		}

		gp.breaker.RecordSuccess()
		g.sink.RecordProviderCall(ctx, gp.provider.Name(), latency, true)
		return out, nil
	}

	return "", apperrors.ProviderUnavailable("all providers circuit-open or unreachable", lastErr)
}

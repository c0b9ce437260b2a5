package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-organizer-be/internal/pkg/apperrors"
	"ai-organizer-be/pkg/breaker"
	"ai-organizer-be/pkg/provider"
	"ai-organizer-be/pkg/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name   string
	answer string
	err    error
	calls  int
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Chat(ctx context.Context, history []provider.Message, opts ...provider.Option) (string, error) {
	p.calls++
	return p.answer, p.err
}

func (p *stubProvider) Generate(ctx context.Context, prompt string, opts ...provider.Option) (string, error) {
	p.calls++
	return p.answer, p.err
}

type recordingSink struct {
	calls []bool
}

func (s *recordingSink) RecordProviderCall(ctx context.Context, providerName string, latency time.Duration, success bool) {
	s.calls = append(s.calls, success)
}

func (s *recordingSink) RecordApplyOutcome(ctx context.Context, jobId, groupKey string, moves int, success bool) {
}

func testConfig() breaker.Config {
	return breaker.Config{FailureThreshold: 2, Cooldown: time.Minute, SuccessThreshold: 1}
}

func onePass() retry.Policy {
	return retry.NewPolicy(1, 0, 1)
}

func TestGenerateUsesPrimary(t *testing.T) {
	primary := &stubProvider{name: "primary", answer: "hello"}
	secondary := &stubProvider{name: "secondary", answer: "backup"}
	sink := &recordingSink{}
	g := New([]provider.LLMProvider{primary, secondary}, testConfig(), onePass(), sink, nil)

	out, err := g.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, secondary.calls)
	assert.Equal(t, []bool{true}, sink.calls)
}

func TestFailoverToSecondary(t *testing.T) {
	primary := &stubProvider{name: "primary", err: errors.New("timeout")}
	secondary := &stubProvider{name: "secondary", answer: "backup"}
	sink := &recordingSink{}
	g := New([]provider.LLMProvider{primary, secondary}, testConfig(), onePass(), sink, nil)

	out, err := g.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "backup", out)
	assert.Equal(t, []bool{false, true}, sink.calls)
}

func TestOpenCircuitSkipsProvider(t *testing.T) {
	primary := &stubProvider{name: "primary", err: errors.New("down")}
	secondary := &stubProvider{name: "secondary", answer: "backup"}
	g := New([]provider.LLMProvider{primary, secondary}, testConfig(), onePass(), nil, nil)

	// Two failing calls open the primary's breaker.
	for i := 0; i < 2; i++ {
		_, err := g.Generate(context.Background(), "prompt")
		require.NoError(t, err)
	}
	state, ok := g.BreakerState("primary")
	require.True(t, ok)
	assert.Equal(t, breaker.StateOpen, state)

	callsBefore := primary.calls
	_, err := g.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, callsBefore, primary.calls, "open circuit must fail fast without reaching the provider")
}

func TestAllProvidersDownRaisesProviderUnavailable(t *testing.T) {
	primary := &stubProvider{name: "primary", err: errors.New("down")}
	secondary := &stubProvider{name: "secondary", err: errors.New("also down")}
	g := New([]provider.LLMProvider{primary, secondary}, testConfig(), onePass(), nil, nil)

	_, err := g.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeProviderUnavailable))
}

func TestNoProvidersConfigured(t *testing.T) {
	g := New(nil, testConfig(), onePass(), nil, nil)

	_, err := g.Chat(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeProviderUnavailable))
}

func TestRetryPolicyAppliesPerProvider(t *testing.T) {
	primary := &stubProvider{name: "primary", err: errors.New("flaky")}
	g := New([]provider.LLMProvider{primary}, breaker.Config{FailureThreshold: 10, Cooldown: time.Minute, SuccessThreshold: 1},
		retry.NewPolicy(3, 0, 1), nil, nil)

	_, err := g.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.Equal(t, 3, primary.calls)
}

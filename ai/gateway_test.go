package ai

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider returns replies[i] or errs[i] on its i-th call.
type scriptedProvider struct {
	name    string
	replies []string
	errs    []error

	mu    sync.Mutex
	calls int
}

func (p *scriptedProvider) Name() string { return p.name }

func (p *scriptedProvider) Generate(ctx context.Context, prompt string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.calls
	p.calls++
	if i < len(p.errs) && p.errs[i] != nil {
		return "", p.errs[i]
	}
	if i < len(p.replies) {
		return p.replies[i], nil
	}
	return "", errors.New("no scripted reply")
}

func (p *scriptedProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func fastConfig(retries int) GatewayConfig {
	return GatewayConfig{MaxRetries: retries, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
}

func TestFallbackGatewayPrimarySucceeds(t *testing.T) {
	primary := &scriptedProvider{name: "primary", replies: []string{"hello"}}
	secondary := &scriptedProvider{name: "secondary", replies: []string{"unused"}}
	g := NewFallbackGateway(fastConfig(1), primary, secondary)

	out, err := g.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Equal(t, 1, primary.Calls())
	assert.Equal(t, 0, secondary.Calls())
}

func TestFallbackGatewayRetriesTransientFailure(t *testing.T) {
	primary := &scriptedProvider{
		name:    "flaky",
		errs:    []error{errors.New("timeout"), nil},
		replies: []string{"", "recovered"},
	}
	g := NewFallbackGateway(fastConfig(1), primary)

	out, err := g.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "recovered", out)
	assert.Equal(t, 2, primary.Calls())
}

func TestFallbackGatewayUsesSecondProvider(t *testing.T) {
	primary := &scriptedProvider{name: "down", errs: []error{errors.New("a"), errors.New("b")}}
	secondary := &scriptedProvider{name: "backup-provider", replies: []string{"from backup"}}
	g := NewFallbackGateway(fastConfig(1), primary, secondary)

	before := testutil.ToFloat64(FallbacksTotal.WithLabelValues("backup-provider"))
	out, err := g.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "from backup", out)
	assert.Equal(t, 2, primary.Calls())
	assert.Equal(t, before+1, testutil.ToFloat64(FallbacksTotal.WithLabelValues("backup-provider")))
}

func TestFallbackGatewayPermanentErrorSkipsRetry(t *testing.T) {
	primary := &scriptedProvider{name: "rejects", errs: []error{backoff.Permanent(errors.New("bad key"))}}
	secondary := &scriptedProvider{name: "second", replies: []string{"ok"}}
	g := NewFallbackGateway(fastConfig(3), primary, secondary)

	out, err := g.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 1, primary.Calls())
}

func TestFallbackGatewayAllProvidersFail(t *testing.T) {
	primary := &scriptedProvider{name: "one", errs: []error{errors.New("x"), errors.New("x")}}
	secondary := &scriptedProvider{name: "two", errs: []error{errors.New("y"), errors.New("y")}}
	g := NewFallbackGateway(fastConfig(1), primary, secondary)

	_, err := g.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.Contains(t, err.Error(), "one")
	assert.Contains(t, err.Error(), "two")
}

func TestFallbackGatewayWithoutProviders(t *testing.T) {
	g := NewFallbackGateway(GatewayConfig{}, nil)
	assert.Empty(t, g.Providers())

	_, err := g.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestFallbackGatewayProviders(t *testing.T) {
	g := NewFallbackGateway(GatewayConfig{}, &scriptedProvider{name: "gemini"}, &scriptedProvider{name: "groq"})
	assert.Equal(t, []string{"gemini", "groq"}, g.Providers())
}

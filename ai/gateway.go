// Package ai sends prompts to generative text providers and normalizes what
// comes back.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

var (
	// ErrUpstreamUnavailable means every configured provider failed.
	ErrUpstreamUnavailable = errors.New("ai upstream unavailable")
	// ErrMalformedResponse means the provider replied but the text could not be
	// decoded into the expected shape.
	ErrMalformedResponse = errors.New("malformed ai response")
)

// Gateway turns a prompt into raw completion text.
type Gateway interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Provider is a single completion backend.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

type GatewayConfig struct {
	MaxRetries      int           // extra attempts per provider
	InitialInterval time.Duration // first retry delay
	MaxInterval     time.Duration
}

// FallbackGateway tries each provider in order, retrying transient failures
// with exponential backoff before moving on to the next one.
type FallbackGateway struct {
	providers []Provider
	cfg       GatewayConfig
}

func NewFallbackGateway(cfg GatewayConfig, providers ...Provider) *FallbackGateway {
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 500 * time.Millisecond
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = 5 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	active := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			active = append(active, p)
		}
	}
	return &FallbackGateway{providers: active, cfg: cfg}
}

// Providers lists the provider names in the order they are tried.
func (g *FallbackGateway) Providers() []string {
	names := make([]string, len(g.providers))
	for i, p := range g.providers {
		names[i] = p.Name()
	}
	return names
}

func (g *FallbackGateway) backOff(ctx context.Context) backoff.BackOff {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = g.cfg.InitialInterval
	expo.MaxInterval = g.cfg.MaxInterval
	expo.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(expo, uint64(g.cfg.MaxRetries)), ctx)
}

func (g *FallbackGateway) Generate(ctx context.Context, prompt string) (string, error) {
	if len(g.providers) == 0 {
		return "", fmt.Errorf("%w: no providers configured", ErrUpstreamUnavailable)
	}

	var errs []error
	for i, p := range g.providers {
		var text string
		op := func() error {
			start := time.Now()
			out, err := p.Generate(ctx, prompt)
			observeRequest(p.Name(), start, err)
			if err != nil {
				return err
			}
			text = out
			return nil
		}
		err := backoff.Retry(op, g.backOff(ctx))
		if err == nil {
			if i > 0 {
				slog.Warn("AI request served by fallback provider", "provider", p.Name())
				FallbacksTotal.WithLabelValues(p.Name()).Inc()
			}
			return text, nil
		}
		slog.Error("AI provider failed", "provider", p.Name(), "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	return "", fmt.Errorf("%w: %w", ErrUpstreamUnavailable, errors.Join(errs...))
}

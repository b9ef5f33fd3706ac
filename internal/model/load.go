package model

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/danielpatrickdp/trustlens/internal/content"
)

// #region config

// LoadConfig lists the sidecar endpoint per domain. An empty address leaves
// the domain unloaded.
type LoadConfig struct {
	Addrs         map[content.Domain]string
	Timeout       time.Duration // per Classify call
	ProbeAttempts int
	ProbeBackoff  time.Duration
}

// #endregion config

// #region load

var errNotLoaded = errors.New("sidecar reports weights not loaded")

// Load connects to every configured sidecar and keeps the domains whose
// status probe succeeds. A domain that fails is logged and left absent so
// the process still serves the others.
func Load(ctx context.Context, cfg LoadConfig, logger *slog.Logger) (*Registry, []io.Closer) {
	if logger == nil {
		logger = slog.Default()
	}
	models := make(map[content.Domain]Classifier)
	var closers []io.Closer

	for _, d := range content.Domains() {
		addr := cfg.Addrs[d]
		if addr == "" {
			logger.Warn("model not configured", "domain", d)
			continue
		}
		c, err := NewGRPCClassifier(addr, d, cfg.Timeout)
		if err != nil {
			logger.Error("model connect failed", "domain", d, "addr", addr, "error", err)
			continue
		}
		if err := probe(ctx, c, cfg); err != nil {
			logger.Error("model not ready", "domain", d, "addr", addr, "error", err)
			c.Close()
			continue
		}
		logger.Info("model loaded", "domain", d, "addr", addr)
		models[d] = c
		closers = append(closers, c)
	}
	return NewRegistry(models), closers
}

// probe polls the sidecar status with Fibonacci backoff.
func probe(ctx context.Context, c *GRPCClassifier, cfg LoadConfig) error {
	attempts := cfg.ProbeAttempts
	if attempts < 1 {
		attempts = 1
	}
	base := cfg.ProbeBackoff
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	b := retry.WithMaxRetries(uint64(attempts-1), retry.NewFibonacci(base))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		ok, err := c.Ready(ctx)
		if err != nil {
			return retry.RetryableError(err)
		}
		if !ok {
			return retry.RetryableError(errNotLoaded)
		}
		return nil
	})
}

// #endregion load

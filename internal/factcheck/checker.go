package factcheck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// #region config

// Config bounds provider calls.
type Config struct {
	Timeout       time.Duration // per provider call, including limiter wait
	CacheTTL      time.Duration // 0 disables caching
	RatePerSecond float64       // per provider; <= 0 means unlimited
	Burst         int
	MaxQueryRunes int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:       4 * time.Second,
		CacheTTL:      time.Hour,
		RatePerSecond: 5,
		Burst:         5,
		MaxQueryRunes: 300,
	}
}

// #endregion config

// #region checker

// Checker fans a claim out to every provider and returns one outcome per
// provider, in provider order. It never returns an error: failures become
// StatusFailed outcomes with zero delta.
type Checker struct {
	cfg       Config
	providers []Provider
	limiters  []*rate.Limiter
	cache     *cache.Cache
	logger    *slog.Logger
}

// cachedAnswer is what the cache keeps; failures are never cached.
type cachedAnswer struct {
	verdict Verdict
	noMatch bool
}

// NewChecker creates a checker over providers in the given order.
func NewChecker(cfg Config, logger *slog.Logger, providers ...Provider) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	c := &Checker{cfg: cfg, providers: providers, logger: logger}
	for range providers {
		limit := rate.Inf
		if cfg.RatePerSecond > 0 {
			limit = rate.Limit(cfg.RatePerSecond)
		}
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiters = append(c.limiters, rate.NewLimiter(limit, burst))
	}
	if cfg.CacheTTL > 0 {
		c.cache = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	return c
}

// Providers lists provider names in evaluation order.
func (c *Checker) Providers() []string {
	if c == nil {
		return nil
	}
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// #endregion checker

// #region check

// Check queries all providers concurrently. Each slot of the result is
// written by exactly one goroutine so order is fixed regardless of which
// provider answers first.
func (c *Checker) Check(ctx context.Context, text string) []Outcome {
	if c == nil || len(c.providers) == 0 {
		return nil
	}
	query := c.query(text)
	outcomes := make([]Outcome, len(c.providers))

	var g errgroup.Group
	for i := range c.providers {
		g.Go(func() error {
			outcomes[i] = c.lookup(ctx, i, query)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func (c *Checker) lookup(ctx context.Context, i int, query string) Outcome {
	p := c.providers[i]
	name := p.Name()
	key := name + "\x00" + query

	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			ans := v.(cachedAnswer)
			var o Outcome
			if ans.noMatch {
				o = noMatchOutcome(name)
			} else {
				o = ratedOutcome(name, ans.verdict)
			}
			o.Cached = true
			return o
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	if err := c.limiters[i].Wait(ctx); err != nil {
		return c.failed(name, fmt.Errorf("rate limit: %w", err))
	}
	verdict, err := p.Lookup(ctx, query)
	switch {
	case errors.Is(err, ErrNoMatch):
		c.remember(key, cachedAnswer{noMatch: true})
		return noMatchOutcome(name)
	case err != nil:
		return c.failed(name, err)
	}
	c.remember(key, cachedAnswer{verdict: verdict})
	return ratedOutcome(name, verdict)
}

func (c *Checker) remember(key string, ans cachedAnswer) {
	if c.cache != nil {
		c.cache.SetDefault(key, ans)
	}
}

func (c *Checker) failed(name string, err error) Outcome {
	c.logger.Warn("fact-check provider failed", "provider", name, "error", err)
	return Outcome{Provider: name, Status: StatusFailed, Err: err}
}

// query trims text to the provider-friendly length.
func (c *Checker) query(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if c.cfg.MaxQueryRunes > 0 {
		if r := []rune(text); len(r) > c.cfg.MaxQueryRunes {
			text = strings.TrimSpace(string(r[:c.cfg.MaxQueryRunes]))
		}
	}
	return text
}

// #endregion check

// #region outcomes

func ratedOutcome(name string, v Verdict) Outcome {
	delta, known := RatingDelta(v.Rating)
	reason := fmt.Sprintf("%s: rated '%s'", name, v.Rating)
	if v.Publisher != "" {
		reason += " by " + v.Publisher
	}
	status := StatusRated
	if !known {
		status = StatusUnmapped
		reason += " (no effect)"
	}
	return Outcome{Provider: name, Status: status, Verdict: v, Delta: delta, Reason: reason}
}

func noMatchOutcome(name string) Outcome {
	return Outcome{
		Provider: name,
		Status:   StatusNoMatch,
		Reason:   name + ": no matching fact-check found",
	}
}

// #endregion outcomes

package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/trustlens/internal/content"
	"github.com/danielpatrickdp/trustlens/internal/decision"
	"github.com/danielpatrickdp/trustlens/internal/factcheck"
	"github.com/danielpatrickdp/trustlens/internal/model"
	"github.com/danielpatrickdp/trustlens/internal/rules"
	"github.com/danielpatrickdp/trustlens/internal/signals"
)

// #region engine

// Options wires an Engine. Registry, Rules and Policy are required; a nil
// Checker disables fact-checking and a nil Recorder disables persistence.
type Options struct {
	Registry *model.Registry
	Rules    *rules.Engine
	Checker  *factcheck.Checker
	Policy   *decision.Policy
	Recorder Recorder
	Logger   *slog.Logger
	Now      func() time.Time
}

// Engine runs the per-domain pipelines. All collaborators are read-only
// after construction, so Evaluate is safe for concurrent use.
type Engine struct {
	registry *model.Registry
	rules    *rules.Engine
	checker  *factcheck.Checker
	policy   *decision.Policy
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// New validates opts and builds an engine.
func New(opts Options) (*Engine, error) {
	switch {
	case opts.Registry == nil:
		return nil, errors.New("engine: model registry is required")
	case opts.Rules == nil:
		return nil, errors.New("engine: rule engine is required")
	case opts.Policy == nil:
		return nil, errors.New("engine: decision policy is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		registry: opts.Registry,
		rules:    opts.Rules,
		checker:  opts.Checker,
		policy:   opts.Policy,
		recorder: opts.Recorder,
		logger:   opts.Logger,
		now:      opts.Now,
	}, nil
}

// Available lists domains whose classifier is loaded.
func (e *Engine) Available() []content.Domain {
	return e.registry.Available()
}

// FactCheckProviders lists the configured provider names in order.
func (e *Engine) FactCheckProviders() []string {
	return e.checker.Providers()
}

// #endregion engine

// #region evaluate

// Evaluate scores one submission. The only error path is an unavailable
// classifier (wrapping model.ErrUnavailable); rule, provider and override
// problems degrade to zero effect.
func (e *Engine) Evaluate(ctx context.Context, sub content.Submission) (Result, error) {
	start := e.now()
	acc := signals.NewAccumulator()

	modelSignal, err := e.registry.Score(ctx, sub)
	if err != nil {
		e.logger.Warn("model unavailable", "domain", sub.Domain, "error", err)
		return Result{}, err
	}
	acc.Add(modelSignal)
	acc.Add(e.rules.Evaluate(sub.Domain, sub.Text))

	var outcomes []factcheck.Outcome
	if sub.Domain == content.News {
		outcomes = e.checker.Check(ctx, sub.Text)
		for _, o := range outcomes {
			acc.Add(o.Contribution())
		}
	}

	d, err := e.policy.Decide(sub.Domain, sub.Text, acc)
	if err != nil {
		e.logger.Warn("override skipped", "domain", sub.Domain, "error", err)
	}

	reasons := append(make([]string, 0, len(d.Reasons)+4), acc.Reasons()...)
	reasons = append(reasons, d.Reasons...)

	contributions := acc.Contributions()
	if d.Overridden {
		contributions = append(contributions, signals.Contribution{
			Source:  signals.SourceOverride,
			Name:    "science_override",
			Delta:   d.Score - acc.Score(),
			Reasons: d.Reasons,
		})
	}

	res := Result{
		ID:         uuid.NewString(),
		Domain:     sub.Domain,
		Label:      string(d.Label),
		Confidence: d.Score,
		Reasons:    reasons,
		Overridden: d.Overridden,
		Signals:    contributions,
		FactChecks: outcomes,
		CreatedAt:  start.UTC(),
	}
	res.Duration = e.now().Sub(start)

	e.logger.Info("prediction",
		"id", res.ID,
		"domain", res.Domain,
		"label", res.Label,
		"confidence", res.Confidence,
		"signals", len(res.Signals),
		"overridden", res.Overridden,
		"duration_ms", res.Duration.Milliseconds(),
	)

	if e.recorder != nil {
		if err := e.recorder.Record(ctx, sub, res); err != nil {
			e.logger.Warn("record prediction", "id", res.ID, "error", err)
		}
	}
	return res, nil
}

// #endregion evaluate

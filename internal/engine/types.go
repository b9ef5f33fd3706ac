package engine

import (
	"context"
	"time"

	"github.com/danielpatrickdp/trustlens/internal/content"
	"github.com/danielpatrickdp/trustlens/internal/factcheck"
	"github.com/danielpatrickdp/trustlens/internal/signals"
)

// #region result

// Result is one finished evaluation. Reasons follow signal order: model,
// rules, fact-check providers, override notes.
type Result struct {
	ID         string                 `json:"id"`
	Domain     content.Domain         `json:"domain"`
	Label      string                 `json:"label"`
	Confidence float64                `json:"confidence"`
	Reasons    []string               `json:"reasons"`
	Overridden bool                   `json:"overridden,omitempty"`
	Signals    []signals.Contribution `json:"signals,omitempty"`
	FactChecks []factcheck.Outcome    `json:"fact_checks,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
	Duration   time.Duration          `json:"-"`
}

// #endregion result

// #region recorder

// Recorder persists results. Failures never fail the evaluation.
type Recorder interface {
	Record(ctx context.Context, sub content.Submission, res Result) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, sub content.Submission, res Result) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, sub content.Submission, res Result) error {
	return f(ctx, sub, res)
}

// #endregion recorder

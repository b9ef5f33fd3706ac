package factcheck

import (
	"context"
	"errors"

	"github.com/danielpatrickdp/trustlens/internal/signals"
)

// #region errors

// ErrNoMatch is returned by a provider that answered but had nothing for
// the query.
var ErrNoMatch = errors.New("no matching fact-check")

// #endregion errors

// #region provider

// Verdict is a provider's normalized answer.
type Verdict struct {
	Rating    string `json:"rating"`
	Publisher string `json:"publisher,omitempty"`
	URL       string `json:"url,omitempty"`
}

// Provider is an external fact-check or source-reputation service.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, query string) (Verdict, error)
}

// #endregion provider

// #region outcome

// Status distinguishes "provider said neutral" from "provider call failed".
type Status string

const (
	StatusRated    Status = "rated"    // rating found in the table
	StatusUnmapped Status = "unmapped" // rating returned but not in the table
	StatusNoMatch  Status = "no_match"
	StatusFailed   Status = "failed"
)

// Outcome is the result of one provider lookup. Delta is zero for every
// status except StatusRated.
type Outcome struct {
	Provider string  `json:"provider"`
	Status   Status  `json:"status"`
	Verdict  Verdict `json:"verdict"`
	Delta    float64 `json:"delta"`
	Reason   string  `json:"reason,omitempty"`
	Err      error   `json:"-"`
	Cached   bool    `json:"cached,omitempty"`
}

// Contribution converts the outcome for the score accumulator.
func (o Outcome) Contribution() signals.Contribution {
	c := signals.Contribution{
		Source: signals.SourceFactCheck,
		Name:   o.Provider,
		Delta:  o.Delta,
	}
	if o.Reason != "" {
		c.Reasons = []string{o.Reason}
	}
	return c
}

// #endregion outcome

package store

import (
	"errors"
	"time"

	"github.com/danielpatrickdp/trustlens/internal/content"
)

// ErrNotFound is returned by Get for unknown prediction IDs.
var ErrNotFound = errors.New("prediction not found")

// #region prediction

// Prediction is a stored evaluation. The submitted text itself is not
// kept; TextHash identifies repeats.
type Prediction struct {
	ID         string           `json:"id"`
	Domain     content.Domain   `json:"domain"`
	Label      string           `json:"label"`
	Confidence float64          `json:"confidence"`
	Reasons    []string         `json:"reasons"`
	Overridden bool             `json:"overridden,omitempty"`
	TextHash   string           `json:"text_hash"`
	TextLength int              `json:"text_length"`
	FactChecks []FactCheckEntry `json:"fact_checks,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// #endregion prediction

// #region factcheck-entry

// FactCheckEntry is one provider outcome attached to a prediction.
type FactCheckEntry struct {
	Provider string  `json:"provider"`
	Status   string  `json:"status"`
	Rating   string  `json:"rating,omitempty"`
	Delta    float64 `json:"delta"`
	Reason   string  `json:"reason,omitempty"`
}

// #endregion factcheck-entry

// #region stats

// LabelCount is one row of Stats.
type LabelCount struct {
	Domain content.Domain `json:"domain"`
	Label  string         `json:"label"`
	Count  int            `json:"count"`
}

// #endregion stats

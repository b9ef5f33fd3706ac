package model

import (
	"context"
	"fmt"

	"github.com/danielpatrickdp/trustlens/internal/content"
	"github.com/danielpatrickdp/trustlens/internal/signals"
)

// #region registry

// Registry holds the classifier for each loaded domain. Built once at
// startup and never mutated; a missing entry means "not loaded".
type Registry struct {
	models map[content.Domain]Classifier
}

// NewRegistry copies models, dropping nil entries.
func NewRegistry(models map[content.Domain]Classifier) *Registry {
	m := make(map[content.Domain]Classifier, len(models))
	for d, c := range models {
		if c != nil {
			m[d] = c
		}
	}
	return &Registry{models: m}
}

// Lookup returns the classifier for domain, if loaded.
func (r *Registry) Lookup(domain content.Domain) (Classifier, bool) {
	if r == nil {
		return nil, false
	}
	c, ok := r.models[domain]
	return c, ok
}

// Available lists loaded domains in content.Domains order.
func (r *Registry) Available() []content.Domain {
	var out []content.Domain
	for _, d := range content.Domains() {
		if _, ok := r.Lookup(d); ok {
			out = append(out, d)
		}
	}
	return out
}

// #endregion registry

// #region score

// Score runs the domain classifier and adapts its output into the model
// contribution. Any failure wraps ErrUnavailable.
func (r *Registry) Score(ctx context.Context, sub content.Submission) (signals.Contribution, error) {
	c, ok := r.Lookup(sub.Domain)
	if !ok {
		return signals.Contribution{}, fmt.Errorf("%w: %s model not loaded", ErrUnavailable, sub.Domain)
	}
	pred, err := c.Classify(ctx, sub.Text)
	if err != nil {
		return signals.Contribution{}, fmt.Errorf("%w: %s classify: %v", ErrUnavailable, sub.Domain, err)
	}
	score, reason, err := Adapt(sub.Domain, pred)
	if err != nil {
		return signals.Contribution{}, err
	}
	return signals.Contribution{
		Source:  signals.SourceModel,
		Name:    string(sub.Domain) + "_model",
		Delta:   score,
		Reasons: []string{reason},
	}, nil
}

// #endregion score

package model

import (
	"context"
	"errors"
)

// #region errors

// ErrUnavailable means the domain's classifier is not loaded, failed, or
// answered with something unusable. It is the only fatal error of an
// evaluation.
var ErrUnavailable = errors.New("model unavailable")

// #endregion errors

// #region prediction

// Prediction is the raw output of a pretrained classifier.
type Prediction struct {
	ClassIndex    int       `json:"class_index"`
	Confidence    float64   `json:"confidence"`
	Probabilities []float64 `json:"probabilities,omitempty"`
}

// #endregion prediction

// #region classifier

// Classifier is the black-box capability "given text, return a class and a
// confidence". Implementations must be safe for concurrent use.
type Classifier interface {
	Classify(ctx context.Context, text string) (Prediction, error)
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(ctx context.Context, text string) (Prediction, error)

// Classify calls f.
func (f ClassifierFunc) Classify(ctx context.Context, text string) (Prediction, error) {
	return f(ctx, text)
}

// Static always returns the same prediction. Used by replay fixtures and
// the offline CLI.
type Static struct {
	Prediction Prediction
	Err        error
}

// Classify returns the configured prediction or error.
func (s Static) Classify(_ context.Context, _ string) (Prediction, error) {
	return s.Prediction, s.Err
}

// #endregion classifier

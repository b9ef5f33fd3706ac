package model

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/trustlens/internal/content"
)

// #region labels

// Class orderings as the classifiers were trained. News: 0=True,
// 1=Misleading, 2=Fake. Review and job: 0=Real, 1=Fake.
var labelTables = map[content.Domain][]string{
	content.News:   {"True", "Misleading", "Fake"},
	content.Review: {"Real", "Fake"},
	content.Job:    {"Real", "Fake"},
}

// Label maps a class index to its name for domain.
func Label(domain content.Domain, classIndex int) (string, bool) {
	labels, ok := labelTables[domain]
	if !ok || classIndex < 0 || classIndex >= len(labels) {
		return "", false
	}
	return labels[classIndex], true
}

// #endregion labels

// #region adapt

// Adapt normalizes a raw prediction into a fake-likelihood in [0, 1] and a
// reason string. Malformed predictions wrap ErrUnavailable.
func Adapt(domain content.Domain, p Prediction) (float64, string, error) {
	label, ok := Label(domain, p.ClassIndex)
	if !ok {
		return 0, "", fmt.Errorf("%w: %s classifier returned unknown class %d", ErrUnavailable, domain, p.ClassIndex)
	}
	for _, v := range append([]float64{p.Confidence}, p.Probabilities...) {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return 0, "", fmt.Errorf("%w: %s classifier returned probability %v outside [0,1]", ErrUnavailable, domain, v)
		}
	}

	conf := p.Confidence
	var score float64
	switch domain {
	case content.News:
		switch label {
		case "Fake":
			score = conf
		case "Misleading":
			score = 0.5 + conf*0.2
		default:
			score = 1 - conf
		}
	case content.Review:
		if len(p.Probabilities) >= 2 {
			score = p.Probabilities[1]
			conf = maxOf(p.Probabilities)
		} else if label == "Fake" {
			score = 1
		}
	case content.Job:
		if label == "Fake" {
			score = conf
		} else {
			score = 1 - conf
		}
	}

	reason := fmt.Sprintf("AI Model predicted '%s' (%.1f%% confidence)", label, conf*100)
	return score, reason, nil
}

func maxOf(vs []float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// #endregion adapt

package rules

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// #region load

// LoadFile reads a YAML rule file layered over DefaultRuleSet. Fields the
// file omits keep their defaults; lists present in the file replace the
// default lists.
func LoadFile(path string) (RuleSet, error) {
	set := DefaultRuleSet()
	if path == "" {
		return set, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, errors.Wrapf(err, "failed to read rule file: %s", path)
	}
	if err := yaml.Unmarshal(b, &set); err != nil {
		return RuleSet{}, errors.Wrapf(err, "failed to parse rule file: %s", path)
	}
	if err := set.Validate(); err != nil {
		return RuleSet{}, errors.Wrapf(err, "invalid rule file: %s", path)
	}
	return set, nil
}

// Validate rejects weights that would let a rule lower the score.
func (s RuleSet) Validate() error {
	weights := map[string]float64{
		"news.per_match":           s.News.PerMatch,
		"news.cap":                 s.News.Cap,
		"review.short_delta":       s.Review.ShortDelta,
		"review.exclamation_delta": s.Review.ExclamationDelta,
		"review.phrase_delta":      s.Review.PhraseDelta,
		"review.caps_delta":        s.Review.CapsDelta,
		"review.repetition_delta":  s.Review.RepetitionDelta,
		"job.per_match":            s.Job.PerMatch,
		"job.cap":                  s.Job.Cap,
	}
	for name, w := range weights {
		if w < 0 {
			return errors.Errorf("%s must not be negative (got %v)", name, w)
		}
	}
	if s.Review.MinUniqueRatio < 0 || s.Review.MinUniqueRatio > 1 {
		return errors.Errorf("review.min_unique_ratio must be within [0,1] (got %v)", s.Review.MinUniqueRatio)
	}
	return nil
}

// #endregion load

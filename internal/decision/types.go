package decision

import (
	"github.com/danielpatrickdp/trustlens/internal/content"
)

// #region labels

// Label is the final verdict string returned to callers.
type Label string

const (
	LabelNewsFake Label = "FAKE"
	LabelNewsReal Label = "REAL"
	LabelFake     Label = "Fake"
	LabelReal     Label = "Real"
)

// Labels returns the (fake, real) pair used for a domain. News uses upper
// case; review and job use title case.
func Labels(d content.Domain) (fakeLabel, realLabel Label) {
	if d == content.News {
		return LabelNewsFake, LabelNewsReal
	}
	return LabelFake, LabelReal
}

// #endregion labels

// #region policy-config

// DefaultOverrideExpression flips a FAKE news verdict that is not
// overwhelming when the text reads like science reporting.
const DefaultOverrideExpression = `label == "FAKE" && score < max_score && science_hit`

// DefaultScienceKeywords are matched as case-insensitive substrings.
var DefaultScienceKeywords = []string{"research", "study", "scientists", "nasa", "isro", "data", "mission"}

// PolicyConfig holds fusion thresholds and the news override settings.
type PolicyConfig struct {
	Threshold        float64 // score >= Threshold is fake
	MaxOverrideScore float64 // override only below this score
	OverrideFactor   float64 // overridden score = score * factor
	ScienceKeywords  []string
	ScienceOverride  bool
	Expression       string // CEL; empty uses DefaultOverrideExpression
}

// DefaultPolicyConfig returns the production policy with the override on.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		Threshold:        0.6,
		MaxOverrideScore: 0.8,
		OverrideFactor:   0.5,
		ScienceKeywords:  append([]string(nil), DefaultScienceKeywords...),
		ScienceOverride:  true,
		Expression:       DefaultOverrideExpression,
	}
}

// #endregion policy-config

// #region decision

// Decision is the outcome of fusion.
type Decision struct {
	Label      Label    `json:"label"`
	Score      float64  `json:"score"`
	Overridden bool     `json:"overridden"`
	Reasons    []string `json:"reasons,omitempty"` // override notes only
}

// #endregion decision

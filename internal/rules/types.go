package rules

// #region news-rules

// NewsRules flags sensational vocabulary. Every matched keyword adds
// PerMatch; the total is capped so keyword stuffing cannot dominate.
type NewsRules struct {
	Keywords []string `yaml:"keywords"`
	PerMatch float64  `yaml:"per_match"`
	Cap      float64  `yaml:"cap"`
}

// #endregion news-rules

// #region review-rules

// ReviewRules are independent, additive, uncapped checks.
type ReviewRules struct {
	ShortWords       int      `yaml:"short_words"` // fewer words than this → short review
	ShortDelta       float64  `yaml:"short_delta"`
	ExclamationMin   int      `yaml:"exclamation_min"`
	ExclamationDelta float64  `yaml:"exclamation_delta"`
	Phrases          []string `yaml:"phrases"`
	PhraseDelta      float64  `yaml:"phrase_delta"`
	CapsMinLen       int      `yaml:"caps_min_len"` // words longer than this are checked for all-caps
	CapsDelta        float64  `yaml:"caps_delta"`
	MinUniqueRatio   float64  `yaml:"min_unique_ratio"`
	RepetitionDelta  float64  `yaml:"repetition_delta"`
}

// #endregion review-rules

// #region job-rules

// JobRules flags scam-indicator phrases, summed per match and capped.
type JobRules struct {
	Phrases  []string `yaml:"phrases"`
	PerMatch float64  `yaml:"per_match"`
	Cap      float64  `yaml:"cap"`
}

// #endregion job-rules

// #region rule-set

// RuleSet is the versioned rule configuration for all three domains.
// Loaded once at startup and read-only afterwards.
type RuleSet struct {
	Version string      `yaml:"version"`
	News    NewsRules   `yaml:"news"`
	Review  ReviewRules `yaml:"review"`
	Job     JobRules    `yaml:"job"`
}

// DefaultRuleSet returns the canonical rule tables.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		Version: "2",
		News: NewsRules{
			Keywords: []string{
				"miracle", "aliens", "secret", "government hiding", "cover up",
				"conspiracy", "hoax", "shocking", "you won't believe",
				"exposed", "banned",
			},
			PerMatch: 0.15,
			Cap:      0.4,
		},
		Review: ReviewRules{
			ShortWords:       8,
			ShortDelta:       0.2,
			ExclamationMin:   3,
			ExclamationDelta: 0.15,
			Phrases: []string{
				"best product ever", "absolutely amazing", "buy it now", "buy now",
				"life changing", "must buy", "absolutely perfect", "100% recommend",
				"best purchase ever", "too good to be true",
			},
			PhraseDelta:     0.25,
			CapsMinLen:      3,
			CapsDelta:       0.1,
			MinUniqueRatio:  0.4,
			RepetitionDelta: 0.15,
		},
		Job: JobRules{
			Phrases: []string{
				"registration fee", "send bank details", "urgent hiring",
				"no experience needed", "earn", "work from home", "wire transfer",
				"processing fee", "guaranteed income", "limited slots",
				"pay to apply", "whatsapp",
			},
			PerMatch: 0.15,
			Cap:      0.5,
		},
	}
}

// #endregion rule-set

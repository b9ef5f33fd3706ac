package signals

// #region source

// Source identifies which stage of the pipeline produced a contribution.
type Source string

const (
	SourceModel     Source = "model"
	SourceRules     Source = "rules"
	SourceFactCheck Source = "factcheck"
	SourceOverride  Source = "override"
)

// #endregion source

// #region contribution

// Contribution is one signed score delta plus the reasons that explain it.
// Lives for a single evaluation.
type Contribution struct {
	Source  Source   `json:"source"`
	Name    string   `json:"name"`
	Delta   float64  `json:"delta"`
	Reasons []string `json:"reasons,omitempty"`
}

// #endregion contribution

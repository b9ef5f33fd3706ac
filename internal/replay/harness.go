package replay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/danielpatrickdp/trustlens/internal/decision"
	"github.com/danielpatrickdp/trustlens/internal/engine"
	"github.com/danielpatrickdp/trustlens/internal/factcheck"
	"github.com/danielpatrickdp/trustlens/internal/model"
	"github.com/danielpatrickdp/trustlens/internal/rules"
)

// confidenceTolerance absorbs float noise in fixture confidences.
const confidenceTolerance = 1e-4

// #region types

// Options configures a replay run.
type Options struct {
	Rules  rules.RuleSet
	Policy decision.PolicyConfig
	Logger *slog.Logger
}

// DefaultOptions returns the production rules and policy.
func DefaultOptions() Options {
	return Options{
		Rules:  rules.DefaultRuleSet(),
		Policy: decision.DefaultPolicyConfig(),
	}
}

// CaseResult captures the outcome of replaying one fixture case.
type CaseResult struct {
	ID          string   `json:"id"`
	Label       string   `json:"label,omitempty"`
	Confidence  float64  `json:"confidence"`
	Reasons     []string `json:"reasons,omitempty"`
	Overridden  bool     `json:"overridden,omitempty"`
	Unavailable bool     `json:"unavailable,omitempty"`
	Failures    []string `json:"failures,omitempty"`
}

// Passed reports whether every expectation held.
func (r CaseResult) Passed() bool { return len(r.Failures) == 0 }

// Summary provides aggregate stats from a replay run.
type Summary struct {
	Total       int            `json:"total"`
	Passed      int            `json:"passed"`
	Failed      int            `json:"failed"`
	Unavailable int            `json:"unavailable"`
	Labels      map[string]int `json:"labels"`
	FailedIDs   []string       `json:"failed_ids,omitempty"`
}

// #endregion types

// #region stub-provider

// stubProvider answers from the fixture.
type stubProvider struct {
	fp FixtureProvider
}

func (s stubProvider) Name() string { return s.fp.Name }

func (s stubProvider) Lookup(_ context.Context, _ string) (factcheck.Verdict, error) {
	switch s.fp.Outcome {
	case "no_match":
		return factcheck.Verdict{}, factcheck.ErrNoMatch
	case "error":
		return factcheck.Verdict{}, errors.New("stubbed provider failure")
	}
	return factcheck.Verdict{Rating: s.fp.Rating, Publisher: s.fp.Publisher}, nil
}

// #endregion stub-provider

// #region replay

// Run evaluates every case through a real engine wired to the case's stubs
// and checks the expectations. Cases are independent.
func Run(ctx context.Context, f *Fixture, opts Options) ([]CaseResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	policy, err := decision.NewPolicy(opts.Policy)
	if err != nil {
		return nil, fmt.Errorf("policy: %w", err)
	}
	ruleEngine := rules.NewEngine(opts.Rules)

	fcCfg := factcheck.DefaultConfig()
	fcCfg.CacheTTL = 0
	fcCfg.RatePerSecond = 0

	results := make([]CaseResult, 0, len(f.Cases))
	for i := range f.Cases {
		fc := &f.Cases[i]
		res := CaseResult{ID: fc.ID}

		sub, err := fc.Submission()
		if err != nil {
			res.Failures = append(res.Failures, "invalid submission: "+err.Error())
			results = append(results, res)
			continue
		}

		providers := make([]factcheck.Provider, len(fc.Providers))
		for j, p := range fc.Providers {
			providers[j] = stubProvider{fp: p}
		}
		eng, err := engine.New(engine.Options{
			Registry: fc.Registry(),
			Rules:    ruleEngine,
			Checker:  factcheck.NewChecker(fcCfg, logger, providers...),
			Policy:   policy,
			Logger:   logger,
		})
		if err != nil {
			return nil, err
		}

		out, err := eng.Evaluate(ctx, sub)
		switch {
		case errors.Is(err, model.ErrUnavailable):
			res.Unavailable = true
		case err != nil:
			res.Failures = append(res.Failures, "evaluate: "+err.Error())
		default:
			res.Label = out.Label
			res.Confidence = out.Confidence
			res.Reasons = out.Reasons
			res.Overridden = out.Overridden
		}
		res.Failures = append(res.Failures, check(fc.Expected, res)...)
		results = append(results, res)
	}
	return results, nil
}

// check compares one result against its expectations.
func check(want FixtureExpected, got CaseResult) []string {
	var fails []string
	if want.Unavailable != got.Unavailable {
		fails = append(fails, fmt.Sprintf("unavailable: expected %v, got %v", want.Unavailable, got.Unavailable))
		return fails
	}
	if want.Unavailable {
		return fails
	}
	if want.Label != "" && want.Label != got.Label {
		fails = append(fails, fmt.Sprintf("label: expected %s, got %s", want.Label, got.Label))
	}
	if want.Confidence != nil && math.Abs(*want.Confidence-got.Confidence) > confidenceTolerance {
		fails = append(fails, fmt.Sprintf("confidence: expected %.4f, got %.4f", *want.Confidence, got.Confidence))
	}
	if want.ReasonCount != nil && *want.ReasonCount != len(got.Reasons) {
		fails = append(fails, fmt.Sprintf("reasons: expected %d, got %d %q", *want.ReasonCount, len(got.Reasons), got.Reasons))
	}
	joined := strings.Join(got.Reasons, "\n")
	for _, sub := range want.ReasonsContain {
		if !strings.Contains(joined, sub) {
			fails = append(fails, fmt.Sprintf("reasons missing %q", sub))
		}
	}
	if want.Overridden != got.Overridden {
		fails = append(fails, fmt.Sprintf("overridden: expected %v, got %v", want.Overridden, got.Overridden))
	}
	return fails
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []CaseResult) Summary {
	s := Summary{Total: len(results), Labels: map[string]int{}}
	for _, r := range results {
		if r.Passed() {
			s.Passed++
		} else {
			s.Failed++
			s.FailedIDs = append(s.FailedIDs, r.ID)
		}
		if r.Unavailable {
			s.Unavailable++
		} else if r.Label != "" {
			s.Labels[r.Label]++
		}
	}
	return s
}

// #endregion replay

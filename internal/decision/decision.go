package decision

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/danielpatrickdp/trustlens/internal/content"
	"github.com/danielpatrickdp/trustlens/internal/signals"
)

// #region policy

// Policy turns an accumulated score into a label. It is immutable after
// NewPolicy and safe for concurrent use.
type Policy struct {
	config   PolicyConfig
	keywords []string
	override cel.Program
}

// NewPolicy validates config and compiles the override expression once.
func NewPolicy(config PolicyConfig) (*Policy, error) {
	if config.Threshold <= 0 || config.Threshold > 1 {
		return nil, fmt.Errorf("threshold %.4f outside (0,1]", config.Threshold)
	}
	if config.OverrideFactor < 0 || config.OverrideFactor > 1 {
		return nil, fmt.Errorf("override factor %.4f outside [0,1]", config.OverrideFactor)
	}
	if config.Expression == "" {
		config.Expression = DefaultOverrideExpression
	}
	if len(config.ScienceKeywords) == 0 {
		config.ScienceKeywords = DefaultScienceKeywords
	}

	p := &Policy{config: config}
	for _, k := range config.ScienceKeywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			p.keywords = append(p.keywords, k)
		}
	}
	if !config.ScienceOverride {
		return p, nil
	}

	prg, err := compileOverride(config.Expression)
	if err != nil {
		return nil, err
	}
	p.override = prg
	return p, nil
}

// compileOverride builds the CEL program. The expression must yield a bool.
func compileOverride(expr string) (cel.Program, error) {
	env, err := cel.NewEnv(
		cel.Variable("domain", cel.StringType),
		cel.Variable("label", cel.StringType),
		cel.Variable("score", cel.DoubleType),
		cel.Variable("max_score", cel.DoubleType),
		cel.Variable("science_hit", cel.BoolType),
	)
	if err != nil {
		return nil, fmt.Errorf("override env: %w", err)
	}
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("compile override %q: %w", expr, iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("override %q must return bool, got %s", expr, ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("override program: %w", err)
	}
	return prg, nil
}

// #endregion policy

// #region decide

// Decide fuses the accumulated signals. The score is the clamped sum rounded
// to four decimals, so the label always agrees with the reported score. The
// override is only considered for news; if it fails to evaluate, the
// un-overridden decision is returned alongside the error.
func (p *Policy) Decide(domain content.Domain, text string, acc *signals.Accumulator) (Decision, error) {
	score := Round(acc.Score())
	fakeLabel, realLabel := Labels(domain)

	d := Decision{Label: realLabel, Score: score}
	if score >= p.config.Threshold {
		d.Label = fakeLabel
	}

	if domain != content.News || p.override == nil {
		return d, nil
	}

	hits := p.scienceHits(text)
	out, _, err := p.override.Eval(map[string]any{
		"domain":      string(domain),
		"label":       string(d.Label),
		"score":       score,
		"max_score":   p.config.MaxOverrideScore,
		"science_hit": len(hits) > 0,
	})
	if err != nil {
		return d, fmt.Errorf("evaluate override: %w", err)
	}
	if flip, ok := out.Value().(bool); !ok || !flip {
		return d, nil
	}

	d.Label = realLabel
	d.Score = Round(signals.Clamp(score*p.config.OverrideFactor, 0, 1))
	d.Overridden = true
	d.Reasons = []string{fmt.Sprintf(
		"Override: scientific context detected (%s); label changed to %s",
		strings.Join(hits, ", "), realLabel,
	)}
	return d, nil
}

// scienceHits returns the configured keywords contained in text,
// case-insensitively, in keyword order.
func (p *Policy) scienceHits(text string) []string {
	lower := strings.ToLower(text)
	var hits []string
	for _, k := range p.keywords {
		if strings.Contains(lower, k) {
			hits = append(hits, k)
		}
	}
	return hits
}

// Round rounds a score to four decimal places.
func Round(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// #endregion decide

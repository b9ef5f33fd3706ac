package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielpatrickdp/trustlens/internal/content"
	"github.com/danielpatrickdp/trustlens/internal/decision"
	"github.com/danielpatrickdp/trustlens/internal/factcheck"
	"github.com/danielpatrickdp/trustlens/internal/model"
	"github.com/danielpatrickdp/trustlens/internal/rules"
)

// #region helpers

type fakeProvider struct {
	name    string
	verdict factcheck.Verdict
	err     error
	calls   atomic.Int32
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Lookup(_ context.Context, _ string) (factcheck.Verdict, error) {
	p.calls.Add(1)
	return p.verdict, p.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEngine(t *testing.T, models map[content.Domain]model.Classifier, rec Recorder, providers ...factcheck.Provider) *Engine {
	t.Helper()
	policy, err := decision.NewPolicy(decision.DefaultPolicyConfig())
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	cfg := factcheck.DefaultConfig()
	cfg.RatePerSecond = 0
	cfg.CacheTTL = 0
	e, err := New(Options{
		Registry: model.NewRegistry(models),
		Rules:    rules.NewEngine(rules.DefaultRuleSet()),
		Checker:  factcheck.NewChecker(cfg, quietLogger(), providers...),
		Policy:   policy,
		Recorder: rec,
		Logger:   quietLogger(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func submission(t *testing.T, d content.Domain, text string) content.Submission {
	t.Helper()
	sub, err := content.NewSubmission(d, text)
	if err != nil {
		t.Fatalf("NewSubmission: %v", err)
	}
	return sub
}

func static(class int, conf float64, probs ...float64) model.Classifier {
	return model.Static{Prediction: model.Prediction{ClassIndex: class, Confidence: conf, Probabilities: probs}}
}

func near(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}

// #endregion helpers

// #region news

func TestNewsSensationalIsFake(t *testing.T) {
	e := newEngine(t, map[content.Domain]model.Classifier{content.News: static(2, 0.9)}, nil)
	res, err := e.Evaluate(context.Background(), submission(t, content.News,
		"Shocking secret: government hiding aliens, you won't believe this miracle cure"))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Label != "FAKE" {
		t.Fatalf("expected FAKE, got %s", res.Label)
	}
	if res.Confidence != 1 {
		t.Fatalf("expected clamped confidence 1, got %v", res.Confidence)
	}
	if len(res.Reasons) != 2 {
		t.Fatalf("expected model+rules reasons, got %v", res.Reasons)
	}
	if !strings.HasPrefix(res.Reasons[0], "AI Model predicted 'Fake'") {
		t.Errorf("first reason should be the model: %q", res.Reasons[0])
	}
	if !strings.HasSuffix(res.Reasons[1], "(capped)") {
		t.Errorf("rule reason should be capped: %q", res.Reasons[1])
	}
	if res.ID == "" || res.CreatedAt.IsZero() {
		t.Errorf("missing id or timestamp: %+v", res)
	}
}

func TestNewsReasonOrderWithFactChecks(t *testing.T) {
	rated := &fakeProvider{name: "p1", verdict: factcheck.Verdict{Rating: "False"}}
	broken := &fakeProvider{name: "p2", err: errors.New("timeout")}
	none := &fakeProvider{name: "p3", err: factcheck.ErrNoMatch}
	e := newEngine(t, map[content.Domain]model.Classifier{content.News: static(0, 0.9)}, nil, rated, broken, none)

	res, err := e.Evaluate(context.Background(), submission(t, content.News, "Shocking turn in the city council vote"))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	// 0.1 model + 0.15 rules + 0.3 fact-check
	if !near(res.Confidence, 0.55) || res.Label != "REAL" {
		t.Fatalf("expected REAL 0.55, got %s %v", res.Label, res.Confidence)
	}
	want := []string{
		"AI Model predicted 'True' (90.0% confidence)",
		"Suspicious keyword detected: shocking",
		"p1: rated 'False'",
		"p3: no matching fact-check found",
	}
	if len(res.Reasons) != len(want) {
		t.Fatalf("reasons = %v, want %v", res.Reasons, want)
	}
	for i := range want {
		if res.Reasons[i] != want[i] {
			t.Errorf("reason[%d] = %q, want %q", i, res.Reasons[i], want[i])
		}
	}
	if len(res.FactChecks) != 3 || res.FactChecks[1].Status != factcheck.StatusFailed {
		t.Errorf("expected failed outcome in slot 1: %+v", res.FactChecks)
	}
}

func TestNewsScienceOverride(t *testing.T) {
	e := newEngine(t, map[content.Domain]model.Classifier{content.News: static(2, 0.65)}, nil)
	res, err := e.Evaluate(context.Background(), submission(t, content.News, "NASA study reports new findings on solar wind"))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Label != "REAL" || !near(res.Confidence, 0.325) {
		t.Fatalf("expected REAL 0.325, got %s %v", res.Label, res.Confidence)
	}
	if !res.Overridden {
		t.Fatal("expected overridden result")
	}
	last := res.Reasons[len(res.Reasons)-1]
	if !strings.HasPrefix(last, "Override: scientific context detected") {
		t.Fatalf("override reason must come last, got %q", last)
	}
}

func TestModelUnavailableIsFatal(t *testing.T) {
	var recorded atomic.Int32
	rec := RecorderFunc(func(context.Context, content.Submission, Result) error {
		recorded.Add(1)
		return nil
	})
	e := newEngine(t, map[content.Domain]model.Classifier{content.Review: static(0, 0.9)}, rec)

	_, err := e.Evaluate(context.Background(), submission(t, content.News, "Any headline"))
	if !errors.Is(err, model.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if recorded.Load() != 0 {
		t.Fatal("failed evaluation must not be recorded")
	}
}

func TestClassifierErrorIsFatal(t *testing.T) {
	failing := model.Static{Err: errors.New("connection refused")}
	e := newEngine(t, map[content.Domain]model.Classifier{content.Job: failing}, nil)
	_, err := e.Evaluate(context.Background(), submission(t, content.Job, "Hiring now"))
	if !errors.Is(err, model.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

// #endregion news

// #region review-job

func TestReviewScenario(t *testing.T) {
	p := &fakeProvider{name: "never", verdict: factcheck.Verdict{Rating: "False"}}
	e := newEngine(t, map[content.Domain]model.Classifier{content.Review: static(1, 0, 0.7, 0.3)}, nil, p)

	res, err := e.Evaluate(context.Background(), submission(t, content.Review, "Best product ever! Absolutely amazing! Buy it now!"))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	// 0.3 model + 0.15 exclamations + 0.25 phrases
	if res.Label != "Fake" || !near(res.Confidence, 0.7) {
		t.Fatalf("expected Fake 0.7, got %s %v", res.Label, res.Confidence)
	}
	if len(res.Reasons) != 3 {
		t.Fatalf("expected 3 reasons, got %v", res.Reasons)
	}
	if p.calls.Load() != 0 {
		t.Fatal("fact-check providers must not run for reviews")
	}
	if res.FactChecks != nil {
		t.Fatalf("unexpected fact checks: %+v", res.FactChecks)
	}
}

func TestJobScenario(t *testing.T) {
	e := newEngine(t, map[content.Domain]model.Classifier{content.Job: static(0, 0.8)}, nil)
	res, err := e.Evaluate(context.Background(), submission(t, content.Job,
		"Earn 50,000 per week. No experience needed. Send bank details for registration fee."))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	// 0.2 model + 0.5 capped rules
	if res.Label != "Fake" || !near(res.Confidence, 0.7) {
		t.Fatalf("expected Fake 0.7, got %s %v", res.Label, res.Confidence)
	}
	for _, phrase := range []string{"earn", "no experience needed", "send bank details", "registration fee"} {
		if !strings.Contains(res.Reasons[1], phrase) {
			t.Errorf("rule reason %q missing %q", res.Reasons[1], phrase)
		}
	}
}

func TestConfidenceRounded(t *testing.T) {
	e := newEngine(t, map[content.Domain]model.Classifier{content.Job: static(1, 0.123456)}, nil)
	res, err := e.Evaluate(context.Background(), submission(t, content.Job, "Warehouse associate, day shift, forklift licence required"))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Confidence != 0.1235 {
		t.Fatalf("expected 0.1235, got %v", res.Confidence)
	}
}

func TestLabelAgreesWithRoundedConfidence(t *testing.T) {
	// True at 0.40005 gives a raw fake-likelihood just under 0.6.
	e := newEngine(t, map[content.Domain]model.Classifier{content.News: static(0, 0.40005)}, nil)
	res, err := e.Evaluate(context.Background(), submission(t, content.News, "Council meets on Tuesday"))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Confidence != 0.6 || res.Label != "FAKE" {
		t.Fatalf("expected FAKE at 0.6, got %s at %v", res.Label, res.Confidence)
	}
}

// #endregion review-job

// #region degraded

func TestWithoutChecker(t *testing.T) {
	policy, err := decision.NewPolicy(decision.DefaultPolicyConfig())
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	e, err := New(Options{
		Registry: model.NewRegistry(map[content.Domain]model.Classifier{content.News: static(2, 0.9)}),
		Rules:    rules.NewEngine(rules.DefaultRuleSet()),
		Policy:   policy,
		Logger:   quietLogger(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if names := e.FactCheckProviders(); len(names) != 0 {
		t.Fatalf("expected no providers, got %v", names)
	}
	res, err := e.Evaluate(context.Background(), submission(t, content.News, "Council meets on Tuesday"))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Label != "FAKE" || len(res.FactChecks) != 0 || len(res.Reasons) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestOverrideErrorKeepsVerdict(t *testing.T) {
	cfg := decision.DefaultPolicyConfig()
	cfg.Expression = `science_hit && int(score) / 0 == 0`
	policy, err := decision.NewPolicy(cfg)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	e := newEngine(t, map[content.Domain]model.Classifier{content.News: static(2, 0.65)}, nil)
	e.policy = policy
	res, err := e.Evaluate(context.Background(), submission(t, content.News, "NASA study reports new findings on solar wind"))
	if err != nil {
		t.Fatalf("override failure leaked: %v", err)
	}
	if res.Label != "FAKE" || res.Overridden || res.Confidence != 0.65 {
		t.Fatalf("expected un-overridden FAKE at 0.65, got %+v", res)
	}
}

// #endregion degraded

// #region recorder

func TestRecorderReceivesResult(t *testing.T) {
	var got Result
	var gotText string
	rec := RecorderFunc(func(_ context.Context, sub content.Submission, res Result) error {
		got, gotText = res, sub.Text
		return nil
	})
	e := newEngine(t, map[content.Domain]model.Classifier{content.Job: static(1, 0.9)}, rec)
	res, err := e.Evaluate(context.Background(), submission(t, content.Job, "Pay to apply today"))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got.ID != res.ID || gotText != "Pay to apply today" {
		t.Fatalf("recorder got %+v / %q", got, gotText)
	}
}

func TestRecorderFailureIgnored(t *testing.T) {
	rec := RecorderFunc(func(context.Context, content.Submission, Result) error {
		return errors.New("disk full")
	})
	e := newEngine(t, map[content.Domain]model.Classifier{content.Job: static(1, 0.9)}, rec)
	if _, err := e.Evaluate(context.Background(), submission(t, content.Job, "Pay to apply")); err != nil {
		t.Fatalf("recorder failure leaked: %v", err)
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatal("expected error for empty options")
	}
}

func TestDeterministicAcrossRuns(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	e := newEngine(t, map[content.Domain]model.Classifier{content.Review: static(0, 0.8)}, nil)
	e.now = func() time.Time { return fixed }
	sub := submission(t, content.Review, "GREAT GREAT GREAT GREAT GREAT!!!")
	a, _ := e.Evaluate(context.Background(), sub)
	b, _ := e.Evaluate(context.Background(), sub)
	if a.Label != b.Label || a.Confidence != b.Confidence || strings.Join(a.Reasons, "|") != strings.Join(b.Reasons, "|") {
		t.Fatalf("non-deterministic: %+v vs %+v", a, b)
	}
	if !a.CreatedAt.Equal(fixed) {
		t.Fatalf("CreatedAt = %v", a.CreatedAt)
	}
}

// #endregion recorder

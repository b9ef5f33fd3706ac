package factcheck

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/trustlens/internal/signals"
)

// #region stub

type stubProvider struct {
	name      string
	verdict   Verdict
	err       error
	delay     time.Duration
	calls     atomic.Int32
	lastQuery atomic.Value
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Lookup(ctx context.Context, query string) (Verdict, error) {
	s.calls.Add(1)
	s.lastQuery.Store(query)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return Verdict{}, ctx.Err()
		}
	}
	return s.verdict, s.err
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Timeout = 200 * time.Millisecond
	cfg.RatePerSecond = 0
	return cfg
}

// #endregion stub

// #region rating-tests

func TestRatingDelta(t *testing.T) {
	tests := []struct {
		rating string
		delta  float64
		known  bool
	}{
		{"High", -0.2, true},
		{"Mostly Factual", -0.15, true},
		{"Very Low", 0.3, true},
		{"Fake News", 0.3, true},
		{"Satire", 0.2, true},
		{"  Mostly   False. ", 0.2, true},
		{"Mixed", 0, true},
		{"Needs context", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		d, known := RatingDelta(tt.rating)
		assert.InDelta(t, tt.delta, d, 1e-9, tt.rating)
		assert.Equal(t, tt.known, known, tt.rating)
	}
}

// #endregion rating-tests

// #region google-tests

func TestGoogle_Lookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret-key", r.URL.Query().Get("key"))
		assert.Equal(t, "Earth 15 days of darkness", r.URL.Query().Get("query"))
		assert.Equal(t, "en", r.URL.Query().Get("languageCode"))
		fmt.Fprint(w, `{"claims":[{"text":"Earth will go dark","claimReview":[
			{"publisher":{"name":"PolitiFact","site":"politifact.com"},"url":"https://example.org/r","textualRating":"Pants on Fire"}]}]}`)
	}))
	defer srv.Close()

	g := NewGoogle("secret-key", srv.Client()).WithBaseURL(srv.URL)
	v, err := g.Lookup(context.Background(), "Earth 15 days of darkness")
	require.NoError(t, err)
	assert.Equal(t, Verdict{Rating: "Pants on Fire", Publisher: "PolitiFact", URL: "https://example.org/r"}, v)
}

func TestGoogle_NoClaims(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	_, err := NewGoogle("k", srv.Client()).WithBaseURL(srv.URL).Lookup(context.Background(), "q")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestGoogle_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewGoogle("k", srv.Client()).WithBaseURL(srv.URL).Lookup(context.Background(), "q")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoMatch))
}

// #endregion google-tests

// #region mbfc-tests

func TestMBFC_LookupArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "rapid-key", r.Header.Get("X-RapidAPI-Key"))
		assert.Equal(t, "mbfc.example", r.Header.Get("X-RapidAPI-Host"))
		assert.Equal(t, "daily planet", r.URL.Query().Get("query"))
		fmt.Fprint(w, `[{"name":"Daily Planet","bias":"Least Biased","factual_reporting":"Mostly Factual"}]`)
	}))
	defer srv.Close()

	m := NewMBFC("rapid-key", "mbfc.example", srv.Client()).WithBaseURL(srv.URL)
	v, err := m.Lookup(context.Background(), "daily planet")
	require.NoError(t, err)
	assert.Equal(t, "Mostly Factual", v.Rating)
	assert.Equal(t, "Daily Planet", v.Publisher)
}

func TestMBFC_BiasWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"results":[{"name":"The Onion","bias":"Satire","factual_reporting":"Mixed"}]}`)
	}))
	defer srv.Close()

	v, err := NewMBFC("k", "", srv.Client()).WithBaseURL(srv.URL).Lookup(context.Background(), "onion")
	require.NoError(t, err)
	assert.Equal(t, "Satire", v.Rating)
}

func TestMBFC_CredibilityFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[{"name":"Site","credibility":"Low Credibility"}]`)
	}))
	defer srv.Close()

	v, err := NewMBFC("k", "", srv.Client()).WithBaseURL(srv.URL).Lookup(context.Background(), "site")
	require.NoError(t, err)
	assert.Equal(t, "low", v.Rating)
}

func TestMBFC_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	_, err := NewMBFC("k", "", srv.Client()).WithBaseURL(srv.URL).Lookup(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestMBFC_Malformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html>oops</html>`)
	}))
	defer srv.Close()

	_, err := NewMBFC("k", "", srv.Client()).WithBaseURL(srv.URL).Lookup(context.Background(), "x")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoMatch))
}

// #endregion mbfc-tests

// #region openai-tests

func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"c1","object":"chat.completion","created":0,"model":"test-model",
			"choices":[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":"stop"}]}`, content)
	}))
}

func TestOpenAI_Lookup(t *testing.T) {
	srv := chatServer(t, `{"rating":"Mostly False","explanation":"no evidence"}`)
	defer srv.Close()

	o := NewOpenAI("sk-test", "test-model", srv.URL+"/v1")
	v, err := o.Lookup(context.Background(), "The moon is made of cheese")
	require.NoError(t, err)
	assert.Equal(t, Verdict{Rating: "Mostly False", Publisher: "test-model"}, v)
}

func TestOpenAI_Unverifiable(t *testing.T) {
	srv := chatServer(t, `{"rating":"Unverifiable"}`)
	defer srv.Close()

	_, err := NewOpenAI("sk-test", "test-model", srv.URL+"/v1").Lookup(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestOpenAI_BadJSON(t *testing.T) {
	srv := chatServer(t, `not json`)
	defer srv.Close()

	_, err := NewOpenAI("sk-test", "test-model", srv.URL+"/v1").Lookup(context.Background(), "x")
	require.Error(t, err)
}

// #endregion openai-tests

// #region checker-tests

func TestChecker_OrderIndependentOfLatency(t *testing.T) {
	slow := &stubProvider{name: "slow", verdict: Verdict{Rating: "False", Publisher: "Snopes"}, delay: 50 * time.Millisecond}
	fast := &stubProvider{name: "fast", verdict: Verdict{Rating: "High"}}
	c := NewChecker(testConfig(), nil, slow, fast)

	out := c.Check(context.Background(), "claim")
	require.Len(t, out, 2)
	assert.Equal(t, "slow", out[0].Provider)
	assert.Equal(t, "fast", out[1].Provider)
	assert.Equal(t, StatusRated, out[0].Status)
	assert.InDelta(t, 0.3, out[0].Delta, 1e-9)
	assert.Equal(t, "slow: rated 'False' by Snopes", out[0].Reason)
	assert.InDelta(t, -0.2, out[1].Delta, 1e-9)
	assert.Equal(t, []string{"slow", "fast"}, c.Providers())
}

func TestChecker_FailureIsZeroEffect(t *testing.T) {
	broken := &stubProvider{name: "broken", err: errors.New("connection reset")}
	c := NewChecker(testConfig(), nil, broken)

	out := c.Check(context.Background(), "claim")
	require.Len(t, out, 1)
	assert.Equal(t, StatusFailed, out[0].Status)
	assert.Zero(t, out[0].Delta)
	assert.Empty(t, out[0].Reason)
	assert.Error(t, out[0].Err)

	contrib := out[0].Contribution()
	assert.Equal(t, signals.SourceFactCheck, contrib.Source)
	assert.Empty(t, contrib.Reasons)
}

func TestChecker_TimeoutIsZeroEffect(t *testing.T) {
	hung := &stubProvider{name: "hung", delay: 10 * time.Second}
	cfg := testConfig()
	cfg.Timeout = 20 * time.Millisecond
	c := NewChecker(cfg, nil, hung)

	start := time.Now()
	out := c.Check(context.Background(), "claim")
	assert.Less(t, time.Since(start), 2*time.Second)
	require.Len(t, out, 1)
	assert.Equal(t, StatusFailed, out[0].Status)
	assert.ErrorIs(t, out[0].Err, context.DeadlineExceeded)
	assert.Zero(t, out[0].Delta)
}

func TestChecker_NoMatchReason(t *testing.T) {
	p := &stubProvider{name: "Google Fact Check", err: ErrNoMatch}
	out := NewChecker(testConfig(), nil, p).Check(context.Background(), "claim")
	require.Len(t, out, 1)
	assert.Equal(t, StatusNoMatch, out[0].Status)
	assert.Equal(t, "Google Fact Check: no matching fact-check found", out[0].Reason)
	assert.Zero(t, out[0].Delta)
}

func TestChecker_Unmapped(t *testing.T) {
	p := &stubProvider{name: "p", verdict: Verdict{Rating: "Needs Context"}}
	out := NewChecker(testConfig(), nil, p).Check(context.Background(), "claim")
	assert.Equal(t, StatusUnmapped, out[0].Status)
	assert.Zero(t, out[0].Delta)
	assert.Equal(t, "p: rated 'Needs Context' (no effect)", out[0].Reason)
}

func TestChecker_CachesAnswersNotFailures(t *testing.T) {
	ok := &stubProvider{name: "ok", verdict: Verdict{Rating: "Low"}}
	bad := &stubProvider{name: "bad", err: errors.New("boom")}
	c := NewChecker(testConfig(), nil, ok, bad)

	first := c.Check(context.Background(), "same claim")
	second := c.Check(context.Background(), "same claim")

	assert.Equal(t, int32(1), ok.calls.Load())
	assert.Equal(t, int32(2), bad.calls.Load())
	assert.False(t, first[0].Cached)
	assert.True(t, second[0].Cached)
	assert.Equal(t, first[0].Reason, second[0].Reason)
}

func TestChecker_QueryTruncated(t *testing.T) {
	p := &stubProvider{name: "p", err: ErrNoMatch}
	cfg := testConfig()
	cfg.MaxQueryRunes = 10
	NewChecker(cfg, nil, p).Check(context.Background(), "  one two   three four five  ")
	assert.Equal(t, "one two th", p.lastQuery.Load())
}

func TestChecker_NoProviders(t *testing.T) {
	assert.Nil(t, NewChecker(testConfig(), nil).Check(context.Background(), "x"))
	var c *Checker
	assert.Nil(t, c.Check(context.Background(), "x"))
}

// #endregion checker-tests

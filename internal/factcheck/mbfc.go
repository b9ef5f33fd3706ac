package factcheck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// #region types

const defaultMBFCHost = "mediabiasfactcheck.p.rapidapi.com"

// mbfcSource is one source-reputation record.
type mbfcSource struct {
	Name             string `json:"name"`
	URL              string `json:"url"`
	Bias             string `json:"bias"`
	FactualReporting string `json:"factual_reporting"`
	Credibility      string `json:"credibility"`
}

// MBFC queries Media Bias/Fact Check through RapidAPI.
type MBFC struct {
	apiKey  string
	host    string
	baseURL string
	client  *http.Client
}

// #endregion types

// #region constructor

// NewMBFC creates a provider; an empty host uses the public RapidAPI host.
func NewMBFC(apiKey, host string, client *http.Client) *MBFC {
	if host == "" {
		host = defaultMBFCHost
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &MBFC{apiKey: apiKey, host: host, baseURL: "https://" + host + "/search", client: client}
}

// WithBaseURL points the provider at another endpoint (tests, proxies).
func (m *MBFC) WithBaseURL(u string) *MBFC {
	m.baseURL = u
	return m
}

// Name implements Provider.
func (m *MBFC) Name() string { return "MediaBiasFactCheck" }

// #endregion constructor

// #region lookup

// Lookup returns the reputation of the best-matching source. A bias
// category that flags content (satire, fake news, ...) wins over the
// factual-reporting grade.
func (m *MBFC) Lookup(ctx context.Context, query string) (Verdict, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"?"+url.Values{"query": {query}}.Encode(), nil)
	if err != nil {
		return Verdict{}, fmt.Errorf("build mbfc request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", m.apiKey)
	req.Header.Set("X-RapidAPI-Host", m.host)

	var raw json.RawMessage
	if err := doJSON(m.client, req, &raw); err != nil {
		return Verdict{}, err
	}
	sources, err := decodeMBFC(raw)
	if err != nil {
		return Verdict{}, err
	}
	if len(sources) == 0 {
		return Verdict{}, ErrNoMatch
	}
	src := sources[0]
	rating := src.FactualReporting
	if d, ok := RatingDelta(src.Bias); ok && d > 0 {
		rating = src.Bias
	}
	if rating == "" {
		rating = strings.TrimSuffix(NormalizeRating(src.Credibility), " credibility")
	}
	if strings.TrimSpace(rating) == "" {
		return Verdict{}, ErrNoMatch
	}
	return Verdict{Rating: strings.TrimSpace(rating), Publisher: src.Name, URL: src.URL}, nil
}

// decodeMBFC accepts either a bare array or {"results": [...]}.
func decodeMBFC(raw json.RawMessage) ([]mbfcSource, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var sources []mbfcSource
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &sources); err != nil {
			return nil, fmt.Errorf("decode mbfc results: %w", err)
		}
		return sources, nil
	}
	var wrapped struct {
		Results []mbfcSource `json:"results"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode mbfc results: %w", err)
	}
	return wrapped.Results, nil
}

// #endregion lookup

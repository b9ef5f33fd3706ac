package factcheck

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// #region types

const googleBaseURL = "https://factchecktools.googleapis.com/v1alpha1/claims:search"

// googleClaimsResponse is the subset of claims:search we read.
type googleClaimsResponse struct {
	Claims []struct {
		Text        string `json:"text"`
		Claimant    string `json:"claimant"`
		ClaimReview []struct {
			Publisher struct {
				Name string `json:"name"`
				Site string `json:"site"`
			} `json:"publisher"`
			URL           string `json:"url"`
			TextualRating string `json:"textualRating"`
		} `json:"claimReview"`
	} `json:"claims"`
}

// Google queries the Google Fact Check Tools API.
type Google struct {
	apiKey   string
	baseURL  string
	language string
	client   *http.Client
}

// #endregion types

// #region constructor

// NewGoogle creates a provider. A nil client uses http.DefaultClient; the
// checker bounds each call with its own deadline.
func NewGoogle(apiKey string, client *http.Client) *Google {
	if client == nil {
		client = http.DefaultClient
	}
	return &Google{apiKey: apiKey, baseURL: googleBaseURL, language: "en", client: client}
}

// WithBaseURL points the provider at another endpoint (tests, proxies).
func (g *Google) WithBaseURL(u string) *Google {
	g.baseURL = u
	return g
}

// Name implements Provider.
func (g *Google) Name() string { return "Google Fact Check" }

// #endregion constructor

// #region lookup

// Lookup returns the first review of the first matching claim.
func (g *Google) Lookup(ctx context.Context, query string) (Verdict, error) {
	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("query", query)
	params.Set("languageCode", g.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Verdict{}, fmt.Errorf("build google request: %w", err)
	}
	var body googleClaimsResponse
	if err := doJSON(g.client, req, &body); err != nil {
		return Verdict{}, err
	}
	if len(body.Claims) == 0 || len(body.Claims[0].ClaimReview) == 0 {
		return Verdict{}, ErrNoMatch
	}
	review := body.Claims[0].ClaimReview[0]
	if strings.TrimSpace(review.TextualRating) == "" {
		return Verdict{}, ErrNoMatch
	}
	publisher := review.Publisher.Name
	if publisher == "" {
		publisher = review.Publisher.Site
	}
	return Verdict{
		Rating:    strings.TrimSpace(review.TextualRating),
		Publisher: publisher,
		URL:       review.URL,
	}, nil
}

// #endregion lookup

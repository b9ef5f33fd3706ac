package content

import (
	"errors"
	"fmt"
	"strings"
)

// #region errors

var (
	ErrEmptyText     = errors.New("text is empty")
	ErrUnknownDomain = errors.New("unknown domain")
)

// #endregion errors

// #region domain

// Domain selects which pipeline scores a submission.
type Domain string

const (
	News   Domain = "news"
	Review Domain = "review"
	Job    Domain = "job"
)

// Domains lists every supported domain in a stable order.
func Domains() []Domain {
	return []Domain{News, Review, Job}
}

// ParseDomain accepts a domain name in any case.
func ParseDomain(s string) (Domain, error) {
	switch d := Domain(strings.ToLower(strings.TrimSpace(s))); d {
	case News, Review, Job:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDomain, s)
}

// #endregion domain

// #region submission

// Submission is the immutable input to one evaluation.
type Submission struct {
	Domain Domain
	Text   string
}

// NewSubmission normalizes text and rejects submissions with nothing to score.
func NewSubmission(domain Domain, text string) (Submission, error) {
	if _, err := ParseDomain(string(domain)); err != nil {
		return Submission{}, err
	}
	norm := Normalize(text)
	if norm == "" {
		return Submission{}, ErrEmptyText
	}
	return Submission{Domain: domain, Text: norm}, nil
}

// #endregion submission

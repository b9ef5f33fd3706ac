package factcheck

import (
	"strings"
)

// #region rating-table

// ratingDeltas maps normalized ratings to score deltas. Negative values mean
// the provider vouches for the content; positive values mean it flags it.
var ratingDeltas = map[string]float64{
	// credible
	"very high":      -0.25,
	"high":           -0.2,
	"mostly factual": -0.15,
	"true":           -0.2,
	"mostly true":    -0.1,
	"correct":        -0.2,
	"accurate":       -0.2,

	// known neutral
	"mixed":     0,
	"half true": 0,
	"unproven":  0,

	// not credible
	"low":                      0.2,
	"very low":                 0.3,
	"fake news":                0.3,
	"satire":                   0.2,
	"questionable":             0.2,
	"conspiracy-pseudoscience": 0.3,
	"false":                    0.3,
	"mostly false":             0.2,
	"pants on fire":            0.35,
	"misleading":               0.15,
	"fake":                     0.3,
	"incorrect":                0.3,
}

// #endregion rating-table

// #region lookup

// RatingDelta returns the delta for rating. known is false for ratings the
// table does not cover; their delta is 0.
func RatingDelta(rating string) (delta float64, known bool) {
	delta, known = ratingDeltas[NormalizeRating(rating)]
	return delta, known
}

// NormalizeRating lower-cases a rating, drops trailing punctuation and
// collapses whitespace ("Mostly  False." → "mostly false").
func NormalizeRating(rating string) string {
	r := strings.ToLower(strings.Join(strings.Fields(rating), " "))
	return strings.TrimRight(r, ".!")
}

// #endregion lookup

package rules

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/danielpatrickdp/trustlens/internal/content"
	"github.com/danielpatrickdp/trustlens/internal/signals"
)

// #region engine

// Engine applies the rule set for a domain. Pure: no I/O, no state
// between calls.
type Engine struct {
	set RuleSet
}

// NewEngine creates an engine over a copy of set.
func NewEngine(set RuleSet) *Engine {
	return &Engine{set: set}
}

// Evaluate scores text with the rules of domain. The delta is never negative.
func (e *Engine) Evaluate(domain content.Domain, text string) signals.Contribution {
	var delta float64
	var reasons []string
	switch domain {
	case content.News:
		delta, reasons = e.News(text)
	case content.Review:
		delta, reasons = e.Review(text)
	case content.Job:
		delta, reasons = e.Job(text)
	}
	return signals.Contribution{
		Source:  signals.SourceRules,
		Name:    string(domain) + "_rules",
		Delta:   delta,
		Reasons: reasons,
	}
}

// #endregion engine

// #region news

// News matches sensational keywords case-insensitively.
func (e *Engine) News(text string) (float64, []string) {
	r := e.set.News
	return cappedMatch(text, r.Keywords, r.PerMatch, r.Cap, "Suspicious keyword detected")
}

// #endregion news

// #region job

// Job matches scam-indicator phrases case-insensitively.
func (e *Engine) Job(text string) (float64, []string) {
	r := e.set.Job
	return cappedMatch(text, r.Phrases, r.PerMatch, r.Cap, "Scam indicator detected")
}

// #endregion job

// #region review

// Review runs the five review checks in fixed order; each firing check
// contributes one reason.
func (e *Engine) Review(text string) (float64, []string) {
	r := e.set.Review
	lower := strings.ToLower(text)
	words := strings.Fields(text)

	var delta float64
	var reasons []string

	// a. short review
	if len(words) < r.ShortWords {
		delta += r.ShortDelta
		reasons = append(reasons, fmt.Sprintf("Review is very short (%d words)", len(words)))
	}

	// b. exclamation marks
	if n := strings.Count(text, "!"); n >= r.ExclamationMin {
		delta += r.ExclamationDelta
		reasons = append(reasons, fmt.Sprintf("Excessive exclamation marks (%d)", n))
	}

	// c. exaggerated phrases, one delta regardless of how many
	if hits := matchAll(lower, r.Phrases); len(hits) > 0 {
		delta += r.PhraseDelta
		reasons = append(reasons, "Exaggerated phrase detected: "+strings.Join(hits, ", "))
	}

	// d. shouting
	if caps := capsWords(words, r.CapsMinLen); len(caps) > 0 {
		delta += r.CapsDelta
		reasons = append(reasons, "Excessive capitalization detected: "+strings.Join(caps, ", "))
	}

	// e. lexical repetition
	if ratio, ok := uniqueRatio(words); ok && ratio < r.MinUniqueRatio {
		delta += r.RepetitionDelta
		reasons = append(reasons, fmt.Sprintf("Repetitive wording (unique word ratio %.2f)", ratio))
	}

	return delta, reasons
}

// #endregion review

// #region helpers

// cappedMatch sums perMatch for every table entry found in text and caps
// the total. Matches are reported in table order.
func cappedMatch(text string, table []string, perMatch, limit float64, label string) (float64, []string) {
	hits := matchAll(strings.ToLower(text), table)
	if len(hits) == 0 {
		return 0, nil
	}
	raw := perMatch * float64(len(hits))
	delta := math.Min(raw, limit)
	reason := label + ": " + strings.Join(hits, ", ")
	if raw > limit {
		reason += " (capped)"
	}
	return delta, []string{reason}
}

// matchAll returns the entries of table contained in lower.
func matchAll(lower string, table []string) []string {
	var hits []string
	for _, entry := range table {
		if entry == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(entry)) {
			hits = append(hits, entry)
		}
	}
	return hits
}

// trimWord strips surrounding punctuation.
func trimWord(w string) string {
	return strings.TrimFunc(w, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// capsWords returns words longer than minLen written entirely in upper case.
func capsWords(words []string, minLen int) []string {
	var out []string
	for _, w := range words {
		w = trimWord(w)
		if len([]rune(w)) <= minLen {
			continue
		}
		hasLetter := false
		shouting := true
		for _, r := range w {
			if unicode.IsLetter(r) {
				hasLetter = true
				if !unicode.IsUpper(r) {
					shouting = false
					break
				}
			}
		}
		if hasLetter && shouting {
			out = append(out, w)
		}
	}
	return out
}

// uniqueRatio is distinct/total over case-folded words. ok is false when
// there are no words to measure.
func uniqueRatio(words []string) (float64, bool) {
	seen := make(map[string]struct{}, len(words))
	total := 0
	for _, w := range words {
		w = strings.ToLower(trimWord(w))
		if w == "" {
			continue
		}
		total++
		seen[w] = struct{}{}
	}
	if total == 0 {
		return 0, false
	}
	return float64(len(seen)) / float64(total), true
}

// #endregion helpers

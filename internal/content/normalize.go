package content

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// #region normalize

var markupPattern = regexp.MustCompile(`(?i)<\s*/?\s*(p|div|br|span|ul|ol|li|h[1-6]|strong|em|b|i|a|table|tr|td|body|html)\b[^>]*>`)

// Normalize strips HTML markup (pasted job ads and articles often carry it)
// and collapses whitespace.
func Normalize(text string) string {
	if markupPattern.MatchString(text) {
		if plain, ok := stripMarkup(text); ok {
			text = plain
		}
	}
	return strings.Join(strings.Fields(text), " ")
}

// stripMarkup returns the visible text of an HTML fragment. Block elements
// are separated by a space so words on adjacent lines do not merge.
func stripMarkup(fragment string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", false
	}
	doc.Find("script, style, noscript").Remove()
	doc.Find("br").ReplaceWithHtml(" ")
	doc.Find("p, div, li, h1, h2, h3, h4, h5, h6, tr, td").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})
	return doc.Text(), true
}

// #endregion normalize

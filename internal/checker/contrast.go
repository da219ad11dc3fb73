package checker

import (
	"math"
	"regexp"

	"web4all-backend/internal/htmldoc"
)

// Inline-style heuristics only: near-white text risks low contrast on light
// backgrounds, near-black on dark ones. Not a computed contrast ratio.
var (
	lightTextPattern = regexp.MustCompile(`color:\s*#[ef][ef][ef]|color:\s*rgb\(2[3-5]\d`)
	darkTextPattern  = regexp.MustCompile(`color:\s*#[0-2][0-2][0-2]|color:\s*rgb\([0-2]\d`)
)

// checkColorContrast scans inline style declarations for suspiciously light
// or dark text colors. An element can trigger both patterns independently.
func checkColorContrast(doc *htmldoc.Document) CategoryResult {
	issues := []string{}
	matches := 0

	for _, el := range doc.WithInlineColor() {
		style := htmldoc.AttrOr(el, "style", "")
		if lightTextPattern.MatchString(style) {
			matches++
			issues = append(issues, "Potential low contrast light text")
		}
		if darkTextPattern.MatchString(style) {
			matches++
			issues = append(issues, "Potential low contrast dark text")
		}
	}

	score := 1.0 - math.Min(0.5, float64(matches)*0.1)

	if len(issues) == 0 {
		// Disclosure, not a failure: rendered-DOM contrast is out of scope.
		issues = append(issues, "Limited contrast check performed (inline styles only)")
	}

	return CategoryResult{Score: score, Issues: issues}
}

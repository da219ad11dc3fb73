package checker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"web4all-backend/internal/htmldoc"
)

// poorLinkTexts are link labels that say nothing about the target.
var poorLinkTexts = map[string]struct{}{
	"click here": {},
	"read more":  {},
	"more":       {},
	"link":       {},
	"here":       {},
	"this":       {},
	"page":       {},
}

// checkDescriptiveLinks flags anchors with empty or non-descriptive visible
// text. Image-only links are skipped; their alt text is covered by the
// images category.
func checkDescriptiveLinks(doc *htmldoc.Document) CategoryResult {
	issues := []string{}
	links := doc.FindAll("a")
	if len(links) == 0 {
		return CategoryResult{Score: 1.0, Issues: issues}
	}

	poor := 0
	for _, link := range links {
		text := strings.ToLower(strings.TrimSpace(htmldoc.Text(link)))
		href := htmldoc.AttrOr(link, "href", "unknown")

		if text == "" && htmldoc.ContainsTag(link, "img") {
			continue
		}
		if text == "" {
			poor++
			issues = append(issues, "Empty link text: "+href)
			continue
		}
		if _, bad := poorLinkTexts[text]; bad || utf8.RuneCountInString(text) < 3 {
			poor++
			issues = append(issues, fmt.Sprintf("Non-descriptive link text: '%s' for %s", text, href))
		}
	}

	score := 1.0 - float64(poor)/float64(len(links))
	return CategoryResult{Score: clamp01(score), Issues: issues}
}

// Package report renders a completed audit report for its consumers:
// markdown summaries, CSV issue exports, the category radar chart, and the
// HTML email body.
package report

import (
	"fmt"
	"strings"

	"web4all-backend/internal/checker"
)

// maxIssuesShown bounds the markdown issue listing; the remainder collapses
// into a "+N more" tail.
const maxIssuesShown = 10

// Markdown renders the report summary.
func Markdown(r checker.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Accessibility Report for %s\n\n", r.URL)
	fmt.Fprintf(&b, "### Overall Score: %d/100 - %s\n\n", r.TotalScore, checker.Rating(r.TotalScore))

	b.WriteString("### Category Scores:\n\n")
	for _, cat := range checker.CategoryOrder() {
		res, ok := r.Categories[cat]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "- **%s**: %d/100\n", Title(cat), int(res.Score*100))
	}

	b.WriteString("\n### Top Issues:\n\n")
	for i, issue := range r.Issues {
		if i == maxIssuesShown {
			break
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, issue)
	}
	if extra := len(r.Issues) - maxIssuesShown; extra > 0 {
		fmt.Fprintf(&b, "\n...and %d more issues.\n", extra)
	}

	return b.String()
}

// Title capitalizes a category name for display.
func Title(cat checker.Category) string {
	s := string(cat)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ScoreClass maps a 0-100 score to the CSS class used in HTML output.
func ScoreClass(score int) string {
	return strings.ToLower(strings.ReplaceAll(checker.Rating(score), " ", "-"))
}

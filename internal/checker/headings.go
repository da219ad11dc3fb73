package checker

import (
	"fmt"
	"math"

	"web4all-backend/internal/htmldoc"
)

// checkHeadingStructure validates the heading outline: exactly one h1 and no
// skipped levels walking the headings in document order.
func checkHeadingStructure(doc *htmldoc.Document) CategoryResult {
	headings := doc.FindAll("h1", "h2", "h3", "h4", "h5", "h6")
	if len(headings) == 0 {
		return CategoryResult{Score: 0.0, Issues: []string{"No headings found on page"}}
	}

	issues := []string{}
	h1Count := 0
	for _, h := range headings {
		if h.Data == "h1" {
			h1Count++
		}
	}
	if h1Count == 0 {
		issues = append(issues, "No H1 heading found")
	} else if h1Count > 1 {
		issues = append(issues, fmt.Sprintf("Multiple H1 headings found (%d)", h1Count))
	}

	prev := 0
	skips := 0
	for _, h := range headings {
		level := int(h.Data[1] - '0')
		if prev > 0 && level > prev+1 {
			skips++
			issues = append(issues, fmt.Sprintf("Heading level skip from h%d to h%d", prev, level))
		}
		prev = level
	}

	score := 1.0
	if h1Count == 0 {
		score -= 0.5
	} else if h1Count > 1 {
		score -= 0.3
	}
	if skips > 0 {
		score -= math.Min(0.5, float64(skips)*0.1)
	}

	return CategoryResult{Score: math.Max(0, score), Issues: issues}
}

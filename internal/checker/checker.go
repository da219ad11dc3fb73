// Package checker evaluates a parsed HTML document against heuristic
// accessibility rules and aggregates the per-category results into a
// weighted 0-100 score.
package checker

import (
	"math"

	"web4all-backend/internal/htmldoc"
)

// Category names a group of related accessibility rules.
type Category string

const (
	CategoryImages    Category = "images"
	CategoryHeadings  Category = "headings"
	CategoryLinks     Category = "links"
	CategoryForms     Category = "forms"
	CategoryContrast  Category = "contrast"
	CategoryKeyboard  Category = "keyboard"
	CategoryStructure Category = "structure"
)

// Weights assigns each category its share of the total score. Keyboard is
// declared here but has no registered checker yet; the aggregator divides by
// the sum of the weights actually evaluated, so the total stays well-defined.
var Weights = map[Category]float64{
	CategoryImages:    0.15,
	CategoryHeadings:  0.15,
	CategoryLinks:     0.10,
	CategoryForms:     0.15,
	CategoryContrast:  0.15,
	CategoryKeyboard:  0.10,
	CategoryStructure: 0.20,
}

// CategoryResult is the outcome of one checker: a sub-score in [0,1] and the
// issues found.
type CategoryResult struct {
	Score  float64  `json:"score"`
	Issues []string `json:"issues"`
}

// Checker couples a category with its weight and check function. Checks are
// pure: they read the document and share no state with one another.
type Checker struct {
	Category Category
	Weight   float64
	Check    func(*htmldoc.Document) CategoryResult
}

// registry fixes the evaluation order: images, headings, links, forms,
// structure, contrast. Issue lists are concatenated in this order.
var registry = []Checker{
	{Category: CategoryImages, Weight: Weights[CategoryImages], Check: checkAltText},
	{Category: CategoryHeadings, Weight: Weights[CategoryHeadings], Check: checkHeadingStructure},
	{Category: CategoryLinks, Weight: Weights[CategoryLinks], Check: checkDescriptiveLinks},
	{Category: CategoryForms, Weight: Weights[CategoryForms], Check: checkFormLabels},
	{Category: CategoryStructure, Weight: Weights[CategoryStructure], Check: checkSemanticStructure},
	{Category: CategoryContrast, Weight: Weights[CategoryContrast], Check: checkColorContrast},
}

// Registry returns the checkers in evaluation order.
func Registry() []Checker {
	out := make([]Checker, len(registry))
	copy(out, registry)
	return out
}

// Run evaluates every registered checker against the document and assembles
// the report. The weighted total is normalized by the sum of the weights of
// the categories that were evaluated.
func Run(doc *htmldoc.Document, url string) Report {
	categories := make(map[Category]CategoryResult, len(registry))
	issues := []string{}
	var weighted, weightSum float64

	for _, c := range registry {
		res := c.Check(doc)
		categories[c.Category] = res
		issues = append(issues, res.Issues...)
		weighted += res.Score * c.Weight
		weightSum += c.Weight
	}

	total := 0
	if weightSum > 0 {
		total = int(math.Round(weighted / weightSum * 100))
	}

	return Report{
		URL:        url,
		Categories: categories,
		TotalScore: total,
		Issues:     issues,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

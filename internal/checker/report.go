package checker

// Report is the complete output of one audit run. It is write-once: built by
// Run (or FailedReport) and never mutated afterwards.
type Report struct {
	URL        string                      `json:"url"`
	Categories map[Category]CategoryResult `json:"categories"`
	TotalScore int                         `json:"totalScore"`
	Issues     []string                    `json:"issues"`
}

// FailedReport builds the zero-score report for a run whose page could not be
// fetched or parsed. No category results are produced.
func FailedReport(url, issue string) Report {
	return Report{
		URL:        url,
		Categories: map[Category]CategoryResult{},
		TotalScore: 0,
		Issues:     []string{issue},
	}
}

// CategoryOrder returns the category names in evaluation order, for callers
// that render per-category output.
func CategoryOrder() []Category {
	out := make([]Category, 0, len(registry))
	for _, c := range registry {
		out = append(out, c.Category)
	}
	return out
}

package report

import (
	"encoding/csv"
	"io"

	"web4all-backend/internal/checker"
)

// CSV writes one row per issue, keyed by category, in category evaluation
// order. A report with no category results (failed fetch) still lists its
// run-level issues under an empty category.
func CSV(w io.Writer, r checker.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Category", "Issue"}); err != nil {
		return err
	}

	if len(r.Categories) == 0 {
		for _, issue := range r.Issues {
			if err := cw.Write([]string{"", issue}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	}

	for _, cat := range checker.CategoryOrder() {
		res, ok := r.Categories[cat]
		if !ok {
			continue
		}
		for _, issue := range res.Issues {
			if err := cw.Write([]string{Title(cat), issue}); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

package checker

import (
	"strings"

	"web4all-backend/internal/htmldoc"
)

// excludedInputTypes are input types that need no visible label.
var excludedInputTypes = map[string]struct{}{
	"hidden": {},
	"submit": {},
	"button": {},
	"image":  {},
}

// checkFormLabels verifies every form control is labeled: a label element
// referencing its id, a wrapping label ancestor, or a non-blank aria-label.
func checkFormLabels(doc *htmldoc.Document) CategoryResult {
	issues := []string{}
	controls := doc.FindAll("input", "select", "textarea")
	if len(controls) == 0 {
		return CategoryResult{Score: 1.0, Issues: issues}
	}

	total := 0
	unlabeled := 0
	for _, control := range controls {
		if control.Data == "input" {
			typ := strings.ToLower(htmldoc.AttrOr(control, "type", ""))
			if _, skip := excludedInputTypes[typ]; skip {
				continue
			}
		}
		total++

		labeled := false
		if id, ok := htmldoc.Attr(control, "id"); ok && doc.FindLabelFor(id) != nil {
			labeled = true
		}
		if !labeled && htmldoc.HasAncestor(control, "label") {
			labeled = true
		}
		if !labeled {
			if aria, ok := htmldoc.Attr(control, "aria-label"); ok && strings.TrimSpace(aria) != "" {
				labeled = true
			}
		}

		if !labeled {
			unlabeled++
			name := htmldoc.AttrOr(control, "name", "unnamed")
			desc := strings.TrimSpace(name + " " + htmldoc.AttrOr(control, "type", ""))
			issues = append(issues, "Form control missing label: "+desc)
		}
	}

	if total == 0 {
		return CategoryResult{Score: 1.0, Issues: issues}
	}

	score := 1.0 - float64(unlabeled)/float64(total)
	return CategoryResult{Score: clamp01(score), Issues: issues}
}

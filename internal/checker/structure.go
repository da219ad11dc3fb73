package checker

import (
	"math"

	"web4all-backend/internal/htmldoc"
)

// checkSemanticStructure counts landmark elements as a proxy for navigable
// page structure. Full credit at three or more landmarks; a missing main
// element costs an extra 0.3 after the landmark ratio.
func checkSemanticStructure(doc *htmldoc.Document) CategoryResult {
	landmarks := len(doc.FindAll("header", "footer", "nav", "main", "article", "section", "aside"))
	score := math.Min(1.0, float64(landmarks)/3)

	issues := []string{}
	if landmarks == 0 {
		issues = append(issues, "No semantic HTML elements found")
	}
	if doc.First("main") == nil {
		issues = append(issues, "No <main> element found")
		score -= 0.3
	}

	return CategoryResult{Score: math.Max(0, score), Issues: issues}
}

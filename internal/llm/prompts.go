package llm

import (
	"fmt"
	"strings"
)

// SystemPrompt frames the model as an accessibility reviewer.
const SystemPrompt = "You are a web accessibility expert providing concise, practical recommendations."

// BuildRecommendPrompt renders the user message for a recommendation request.
// Categories without issues are omitted.
func BuildRecommendPrompt(input RecommendInput) string {
	var issues strings.Builder
	for _, cat := range input.Categories {
		if len(cat.Issues) == 0 {
			continue
		}
		fmt.Fprintf(&issues, "\n%s ISSUES:\n", strings.ToUpper(cat.Name))
		for _, issue := range cat.Issues {
			fmt.Fprintf(&issues, "- %s\n", issue)
		}
	}

	var b strings.Builder
	b.WriteString("You are a web accessibility expert. Based on the following accessibility issues found on a website, ")
	b.WriteString("provide 3-5 practical recommendations to improve the website's accessibility:\n\n")
	fmt.Fprintf(&b, "OVERALL SCORE: %d/100\n\n", input.TotalScore)
	fmt.Fprintf(&b, "ISSUES FOUND: %s\n\n", issues.String())
	b.WriteString("Please provide specific, actionable recommendations that address the most critical issues first.\n")
	b.WriteString("Format your response with markdown headings and bullet points.")
	return b.String()
}

package report

import (
	"html/template"
	"strings"
	"time"

	"web4all-backend/internal/checker"
)

var emailTmpl = template.Must(template.New("email").Parse(`<html>
<head>
<style>
    body { font-family: Arial, sans-serif; line-height: 1.6; }
    .container { max-width: 800px; margin: 0 auto; padding: 20px; }
    .header { background-color: #f2f2f2; padding: 10px; border-radius: 5px; }
    .score-container { background-color: #f8f9fa; border-radius: 10px; padding: 20px; margin: 15px 0; }
    .category { margin-bottom: 15px; }
    .issues { margin-left: 20px; }
    .excellent { color: #28a745; }
    .good { color: #17a2b8; }
    .fair { color: #ffc107; }
    .poor { color: #fd7e14; }
    .very-poor { color: #dc3545; }
</style>
</head>
<body>
<div class="container">
    <div class="header">
        <h1>Web Accessibility Report</h1>
        <p>Website: <strong>{{.Domain}}</strong></p>
        <p>Date: {{.Date}}</p>
    </div>

    <div class="score-container">
        <h2 class="{{.ScoreClass}}">Overall Score: {{.TotalScore}}/100</h2>
    </div>

    <h2>Category Scores</h2>
{{range .Categories}}    <div class="category">
        <h3>{{.Name}}: <span class="{{.Class}}">{{.Score}}/100</span></h3>
{{if .Issues}}        <ul class="issues">
{{range .Issues}}            <li>{{.}}</li>
{{end}}        </ul>
{{else}}        <p>No issues found</p>
{{end}}    </div>
{{end}}{{if .Recommendations}}
    <h2>AI-Powered Recommendations</h2>
    <div class="ai-recommendations">{{.Recommendations}}</div>
{{end}}</div>
</body>
</html>
`))

type emailCategory struct {
	Name   string
	Class  string
	Score  int
	Issues []string
}

type emailData struct {
	Domain          string
	Date            string
	ScoreClass      string
	TotalScore      int
	Categories      []emailCategory
	Recommendations string
}

// HTMLEmail renders the email body for a report. Recommendations may be
// empty; the section is omitted then.
func HTMLEmail(domain string, r checker.Report, recommendations string, now time.Time) (string, error) {
	data := emailData{
		Domain:          domain,
		Date:            now.UTC().Format("2006-01-02 15:04:05"),
		ScoreClass:      ScoreClass(r.TotalScore),
		TotalScore:      r.TotalScore,
		Recommendations: recommendations,
	}
	for _, cat := range checker.CategoryOrder() {
		res, ok := r.Categories[cat]
		if !ok {
			continue
		}
		score := int(res.Score * 100)
		data.Categories = append(data.Categories, emailCategory{
			Name:   Title(cat),
			Class:  ScoreClass(score),
			Score:  score,
			Issues: res.Issues,
		})
	}

	var b strings.Builder
	if err := emailTmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

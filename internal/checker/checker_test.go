package checker

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"

	"web4all-backend/internal/htmldoc"
)

func parse(t *testing.T, raw string) *htmldoc.Document {
	t.Helper()
	doc, err := htmldoc.ParseString(raw)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAltTextMixedMisses(t *testing.T) {
	doc := parse(t, `<body>
		<img src="/one.png">
		<img src="/two.png" alt="  ">
		<img src="/three.png" alt="A chart">
		<img src="/four.png" alt="Logo">
	</body>`)

	res := checkAltText(doc)
	if !almostEqual(res.Score, 0.625) {
		t.Fatalf("expected score 0.625, got %v", res.Score)
	}
	if len(res.Issues) != 2 {
		t.Fatalf("expected 2 issues, got %d: %v", len(res.Issues), res.Issues)
	}
	if res.Issues[0] != "Image missing alt attribute: /one.png" {
		t.Fatalf("unexpected first issue: %q", res.Issues[0])
	}
	if res.Issues[1] != "Image has empty alt text: /two.png" {
		t.Fatalf("unexpected second issue: %q", res.Issues[1])
	}
}

func TestAltTextDecorativeAndUnknownSource(t *testing.T) {
	doc := parse(t, `<body>
		<img alt="" role="presentation" src="/deco.png">
		<img>
	</body>`)

	res := checkAltText(doc)
	// Decorative blank alt is fine; the bare img is a full miss over 2 images.
	if !almostEqual(res.Score, 0.5) {
		t.Fatalf("expected score 0.5, got %v", res.Score)
	}
	if len(res.Issues) != 1 || res.Issues[0] != "Image missing alt attribute: unknown" {
		t.Fatalf("unexpected issues: %v", res.Issues)
	}
}

func TestAltTextNoImages(t *testing.T) {
	res := checkAltText(parse(t, `<body><p>no images here</p></body>`))
	if !almostEqual(res.Score, 1.0) || len(res.Issues) != 0 {
		t.Fatalf("expected perfect score with no issues, got %v %v", res.Score, res.Issues)
	}
}

func TestHeadingSkipSingleH1(t *testing.T) {
	doc := parse(t, `<body><h1>Title</h1><h3>Jumped</h3></body>`)

	res := checkHeadingStructure(doc)
	if !almostEqual(res.Score, 0.9) {
		t.Fatalf("expected score 0.9, got %v", res.Score)
	}
	if len(res.Issues) != 1 || res.Issues[0] != "Heading level skip from h1 to h3" {
		t.Fatalf("unexpected issues: %v", res.Issues)
	}
}

func TestHeadingNoHeadings(t *testing.T) {
	res := checkHeadingStructure(parse(t, `<body><p>prose only</p></body>`))
	if !almostEqual(res.Score, 0.0) {
		t.Fatalf("expected score 0, got %v", res.Score)
	}
	if len(res.Issues) != 1 || res.Issues[0] != "No headings found on page" {
		t.Fatalf("unexpected issues: %v", res.Issues)
	}
}

func TestHeadingMissingH1(t *testing.T) {
	res := checkHeadingStructure(parse(t, `<body><h2>Section</h2><h3>Sub</h3></body>`))
	if !almostEqual(res.Score, 0.5) {
		t.Fatalf("expected score 0.5, got %v", res.Score)
	}
	if res.Issues[0] != "No H1 heading found" {
		t.Fatalf("unexpected issues: %v", res.Issues)
	}
}

func TestHeadingMultipleH1AndCappedSkips(t *testing.T) {
	res := checkHeadingStructure(parse(t, `<body>
		<h1>One</h1><h1>Two</h1>
		<h3>a</h3><h1>x</h1><h3>b</h3><h1>y</h1><h3>c</h3>
		<h1>z</h1><h3>d</h3><h1>w</h1><h3>e</h3><h1>v</h1><h3>f</h3>
	</body>`)) // six h1->h3 skips, penalty capped at 0.5

	if !almostEqual(res.Score, 0.2) {
		t.Fatalf("expected score 0.2 (1.0 - 0.3 - 0.5), got %v", res.Score)
	}
	if res.Issues[0] != "Multiple H1 headings found (7)" {
		t.Fatalf("unexpected first issue: %q", res.Issues[0])
	}
}

func TestDescriptiveLinksPoorText(t *testing.T) {
	doc := parse(t, `<body>
		<a href="/a">Click Here</a>
		<a href="/b">click here</a>
		<a href="/c">Read our accessibility statement</a>
		<a href="/d">Pricing details</a>
		<a href="/e">Contact support</a>
	</body>`)

	res := checkDescriptiveLinks(doc)
	if !almostEqual(res.Score, 0.6) {
		t.Fatalf("expected score 0.6, got %v", res.Score)
	}
	if len(res.Issues) != 2 {
		t.Fatalf("expected 2 issues, got %v", res.Issues)
	}
	if res.Issues[0] != "Non-descriptive link text: 'click here' for /a" {
		t.Fatalf("unexpected issue: %q", res.Issues[0])
	}
}

func TestDescriptiveLinksEdgeCases(t *testing.T) {
	doc := parse(t, `<body>
		<a href="/icon"><img src="/i.png" alt="Home"></a>
		<a href="/empty"></a>
		<a>no href but fine text content</a>
		<a href="/short">ok</a>
	</body>`)

	res := checkDescriptiveLinks(doc)
	// Image-only link skipped; empty link and 2-char link are misses over 4 links.
	if !almostEqual(res.Score, 0.5) {
		t.Fatalf("expected score 0.5, got %v", res.Score)
	}
	want := []string{
		"Empty link text: /empty",
		"Non-descriptive link text: 'ok' for /short",
	}
	if !reflect.DeepEqual(res.Issues, want) {
		t.Fatalf("unexpected issues: %v", res.Issues)
	}
}

func TestDescriptiveLinksNoLinks(t *testing.T) {
	res := checkDescriptiveLinks(parse(t, `<body><p>nothing</p></body>`))
	if !almostEqual(res.Score, 1.0) || len(res.Issues) != 0 {
		t.Fatalf("expected perfect score, got %v %v", res.Score, res.Issues)
	}
}

func TestFormLabelsOneUnlabeledOfThree(t *testing.T) {
	doc := parse(t, `<body><form>
		<label for="email">Email</label>
		<input type="text" id="email" name="email">
		<input type="text" name="search" aria-label="Search the site">
		<input type="text" name="phone">
	</form></body>`)

	res := checkFormLabels(doc)
	if !almostEqual(res.Score, 1.0-1.0/3.0) {
		t.Fatalf("expected score 2/3, got %v", res.Score)
	}
	if len(res.Issues) != 1 || res.Issues[0] != "Form control missing label: phone text" {
		t.Fatalf("unexpected issues: %v", res.Issues)
	}
}

func TestFormLabelsWrappedAndExcludedTypes(t *testing.T) {
	doc := parse(t, `<body><form>
		<label>Name <input type="text" name="name"></label>
		<input type="hidden" name="csrf">
		<input type="submit" value="Go">
		<select name="country"><option>NL</option></select>
		<textarea></textarea>
	</form></body>`)

	res := checkFormLabels(doc)
	// Wrapped input is labeled; hidden/submit excluded; select and textarea are not labeled.
	if !almostEqual(res.Score, 1.0/3.0) {
		t.Fatalf("expected score 1/3, got %v", res.Score)
	}
	want := []string{
		"Form control missing label: country",
		"Form control missing label: unnamed",
	}
	if !reflect.DeepEqual(res.Issues, want) {
		t.Fatalf("unexpected issues: %v", res.Issues)
	}
}

func TestFormLabelsOnlyExcludedControls(t *testing.T) {
	doc := parse(t, `<body><form><input type="hidden" name="t"><input type="submit"></form></body>`)
	res := checkFormLabels(doc)
	if !almostEqual(res.Score, 1.0) || len(res.Issues) != 0 {
		t.Fatalf("expected perfect score, got %v %v", res.Score, res.Issues)
	}
}

func TestSemanticStructureNoLandmarks(t *testing.T) {
	res := checkSemanticStructure(parse(t, `<body><div><p>all divs</p></div></body>`))
	if !almostEqual(res.Score, 0.0) {
		t.Fatalf("expected score 0 (max(0, 0-0.3)), got %v", res.Score)
	}
	want := []string{"No semantic HTML elements found", "No <main> element found"}
	if !reflect.DeepEqual(res.Issues, want) {
		t.Fatalf("unexpected issues: %v", res.Issues)
	}
}

func TestSemanticStructureFullCredit(t *testing.T) {
	res := checkSemanticStructure(parse(t, `<body>
		<header>h</header><nav>n</nav><main>m</main><footer>f</footer>
	</body>`))
	if !almostEqual(res.Score, 1.0) || len(res.Issues) != 0 {
		t.Fatalf("expected full credit, got %v %v", res.Score, res.Issues)
	}
}

func TestSemanticStructureMissingMain(t *testing.T) {
	res := checkSemanticStructure(parse(t, `<body><header>h</header><footer>f</footer><nav>n</nav></body>`))
	if !almostEqual(res.Score, 0.7) {
		t.Fatalf("expected score 0.7, got %v", res.Score)
	}
	if len(res.Issues) != 1 || res.Issues[0] != "No <main> element found" {
		t.Fatalf("unexpected issues: %v", res.Issues)
	}
}

func TestColorContrastMatches(t *testing.T) {
	doc := parse(t, `<body>
		<p style="color: #eee">light</p>
		<p style="color: #111; background: white">dark</p>
		<p style="color: rgb(240, 240, 240)">light rgb</p>
	</body>`)

	res := checkColorContrast(doc)
	// rgb(240,...) triggers both patterns: red >= 230 reads as light, and the
	// leading "24" also satisfies the dark prefix match.
	if !almostEqual(res.Score, 0.6) {
		t.Fatalf("expected score 0.6, got %v", res.Score)
	}
	want := []string{
		"Potential low contrast light text",
		"Potential low contrast dark text",
		"Potential low contrast light text",
		"Potential low contrast dark text",
	}
	if !reflect.DeepEqual(res.Issues, want) {
		t.Fatalf("unexpected issues: %v", res.Issues)
	}
}

func TestColorContrastNoMatchesIsInformational(t *testing.T) {
	res := checkColorContrast(parse(t, `<body><p style="color: #777">midtone</p></body>`))
	if !almostEqual(res.Score, 1.0) {
		t.Fatalf("expected score 1.0, got %v", res.Score)
	}
	if len(res.Issues) != 1 || res.Issues[0] != "Limited contrast check performed (inline styles only)" {
		t.Fatalf("unexpected issues: %v", res.Issues)
	}
}

func TestColorContrastPenaltyCapped(t *testing.T) {
	doc := parse(t, `<body>
		<p style="color:#eee">1</p><p style="color:#eee">2</p><p style="color:#eee">3</p>
		<p style="color:#eee">4</p><p style="color:#eee">5</p><p style="color:#eee">6</p>
		<p style="color:#eee">7</p>
	</body>`)
	res := checkColorContrast(doc)
	if !almostEqual(res.Score, 0.5) {
		t.Fatalf("expected capped score 0.5, got %v", res.Score)
	}
}

const perfectPage = `<!DOCTYPE html><html><head><title>t</title></head><body>
<header><h1>Only Heading</h1></header>
<nav>site nav</nav>
<main><h2>Section</h2><p>plain prose</p></main>
<footer>footer</footer>
</body></html>`

func TestRunPerfectPageScoresHundred(t *testing.T) {
	report := Run(parse(t, perfectPage), "https://example.com")

	if report.TotalScore != 100 {
		t.Fatalf("expected 100, got %d", report.TotalScore)
	}
	if len(report.Categories) != 6 {
		t.Fatalf("expected 6 categories, got %d", len(report.Categories))
	}
	for cat, res := range report.Categories {
		if res.Score < 0 || res.Score > 1 {
			t.Fatalf("category %s score out of range: %v", cat, res.Score)
		}
	}
	// Only the contrast disclosure line should be present.
	if len(report.Issues) != 1 || report.Issues[0] != "Limited contrast check performed (inline styles only)" {
		t.Fatalf("unexpected issues: %v", report.Issues)
	}
}

func TestRunWeightedNormalization(t *testing.T) {
	// Images scores 0.625, every other category is perfect:
	// (0.625*0.15 + 0.75) / 0.90 = 0.9375 -> 94.
	page := `<!DOCTYPE html><html><body>
	<header><h1>Title</h1></header>
	<nav>n</nav>
	<main>
		<img src="/one.png">
		<img src="/two.png" alt=" ">
		<img src="/three.png" alt="chart">
		<img src="/four.png" alt="logo">
	</main>
	<footer>f</footer>
	</body></html>`

	report := Run(parse(t, page), "https://example.com")
	if report.TotalScore != 94 {
		t.Fatalf("expected 94, got %d", report.TotalScore)
	}
}

func TestRunIssueOrderFollowsCategoryOrder(t *testing.T) {
	page := `<body>
		<img src="/x.png">
		<a href="/a">here</a>
		<input type="text" name="q">
	</body>`

	report := Run(parse(t, page), "https://example.com")
	want := []string{
		"Image missing alt attribute: /x.png",
		"No headings found on page",
		"Non-descriptive link text: 'here' for /a",
		"Form control missing label: q text",
		"No semantic HTML elements found",
		"No <main> element found",
		"Limited contrast check performed (inline styles only)",
	}
	if !reflect.DeepEqual(report.Issues, want) {
		t.Fatalf("unexpected flat issue list: %v", report.Issues)
	}
}

func TestRunIdempotent(t *testing.T) {
	doc := parse(t, perfectPage)

	first := Run(doc, "https://example.com")
	second := Run(doc, "https://example.com")
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("reports differ across runs:\n%+v\n%+v", first, second)
	}

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal report: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal report: %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("serialized reports differ:\n%s\n%s", a, b)
	}
}

func TestRunTotalScoreInRange(t *testing.T) {
	pages := []string{
		`<body></body>`,
		`<body><img><a href="x"></a><input name="a"></body>`,
		perfectPage,
	}
	for _, page := range pages {
		report := Run(parse(t, page), "https://example.com")
		if report.TotalScore < 0 || report.TotalScore > 100 {
			t.Fatalf("total out of range for %q: %d", page, report.TotalScore)
		}
	}
}

func TestFailedReport(t *testing.T) {
	report := FailedReport("https://down.example.com", "Failed to fetch URL")
	if report.TotalScore != 0 {
		t.Fatalf("expected zero score, got %d", report.TotalScore)
	}
	if len(report.Categories) != 0 {
		t.Fatalf("expected no categories, got %v", report.Categories)
	}
	if !reflect.DeepEqual(report.Issues, []string{"Failed to fetch URL"}) {
		t.Fatalf("unexpected issues: %v", report.Issues)
	}
}

func TestCategoryOrder(t *testing.T) {
	want := []Category{
		CategoryImages, CategoryHeadings, CategoryLinks,
		CategoryForms, CategoryStructure, CategoryContrast,
	}
	if !reflect.DeepEqual(CategoryOrder(), want) {
		t.Fatalf("unexpected order: %v", CategoryOrder())
	}
}

func TestRatingBands(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{100, "Excellent"}, {90, "Excellent"},
		{89, "Good"}, {80, "Good"},
		{79, "Fair"}, {70, "Fair"},
		{69, "Poor"}, {50, "Poor"},
		{49, "Very Poor"}, {0, "Very Poor"},
	}
	for _, tc := range cases {
		if got := Rating(tc.score); got != tc.want {
			t.Fatalf("Rating(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

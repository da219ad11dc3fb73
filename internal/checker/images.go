package checker

import (
	"strings"

	"web4all-backend/internal/htmldoc"
)

// checkAltText verifies that images carry alt text. A missing alt attribute
// is a full miss; a blank alt on a non-decorative image is a half miss.
func checkAltText(doc *htmldoc.Document) CategoryResult {
	issues := []string{}
	images := doc.FindAll("img")
	if len(images) == 0 {
		return CategoryResult{Score: 1.0, Issues: issues}
	}

	var missing, empty int
	for _, img := range images {
		src := htmldoc.AttrOr(img, "src", "unknown")
		alt, ok := htmldoc.Attr(img, "alt")
		if !ok {
			missing++
			issues = append(issues, "Image missing alt attribute: "+src)
			continue
		}
		if strings.TrimSpace(alt) == "" && htmldoc.AttrOr(img, "role", "") != "presentation" {
			empty++
			issues = append(issues, "Image has empty alt text: "+src)
		}
	}

	score := 1.0 - (float64(missing)+float64(empty)*0.5)/float64(len(images))
	return CategoryResult{Score: clamp01(score), Issues: issues}
}

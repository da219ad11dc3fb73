package report

import (
	"fmt"
	"math"
	"strings"

	"web4all-backend/internal/checker"
)

const (
	chartSize   = 520
	chartRadius = 180
)

// RadarSVG renders the per-category scores as a standalone radar chart.
// Categories appear in evaluation order, clockwise from the top.
func RadarSVG(r checker.Report) string {
	order := make([]checker.Category, 0, len(r.Categories))
	for _, cat := range checker.CategoryOrder() {
		if _, ok := r.Categories[cat]; ok {
			order = append(order, cat)
		}
	}

	cx := float64(chartSize) / 2
	cy := float64(chartSize)/2 + 10

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		chartSize, chartSize, chartSize, chartSize)
	fmt.Fprintf(&b, `<title>Accessibility Score: %d/100 - %s</title>`+"\n", r.TotalScore, checker.Rating(r.TotalScore))
	fmt.Fprintf(&b, `<text x="%.0f" y="24" text-anchor="middle" font-size="16" font-family="sans-serif">Accessibility Score: %d/100 - %s</text>`+"\n",
		cx, r.TotalScore, checker.Rating(r.TotalScore))

	if len(order) == 0 {
		b.WriteString(`<text x="50%" y="50%" text-anchor="middle" font-size="14" font-family="sans-serif">no category results</text>` + "\n")
		b.WriteString("</svg>\n")
		return b.String()
	}

	// Grid rings at 20-point steps.
	for ring := 1; ring <= 5; ring++ {
		radius := chartRadius * float64(ring) / 5
		fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="#ccc" stroke-width="0.5"/>`+"\n", cx, cy, radius)
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" font-size="9" fill="#888" font-family="sans-serif">%d</text>`+"\n",
			cx+3, cy-radius-2, ring*20)
	}

	// Axes and labels.
	for i, cat := range order {
		angle := angleFor(i, len(order))
		x := cx + chartRadius*math.Cos(angle)
		y := cy + chartRadius*math.Sin(angle)
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#ccc" stroke-width="0.5"/>`+"\n", cx, cy, x, y)

		lx := cx + (chartRadius+22)*math.Cos(angle)
		ly := cy + (chartRadius+22)*math.Sin(angle)
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" text-anchor="middle" font-size="12" font-family="sans-serif">%s</text>`+"\n",
			lx, ly, Title(cat))
	}

	// Score polygon.
	points := make([]string, 0, len(order))
	for i, cat := range order {
		angle := angleFor(i, len(order))
		radius := chartRadius * r.Categories[cat].Score
		points = append(points, fmt.Sprintf("%.1f,%.1f", cx+radius*math.Cos(angle), cy+radius*math.Sin(angle)))
	}
	fmt.Fprintf(&b, `<polygon points="%s" fill="#1f77b4" fill-opacity="0.1" stroke="#1f77b4" stroke-width="1"/>`+"\n",
		strings.Join(points, " "))

	b.WriteString("</svg>\n")
	return b.String()
}

func angleFor(i, n int) float64 {
	return 2*math.Pi*float64(i)/float64(n) - math.Pi/2
}

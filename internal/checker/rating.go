package checker

// Rating maps a 0-100 total score to its qualitative band.
func Rating(score int) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 80:
		return "Good"
	case score >= 70:
		return "Fair"
	case score >= 50:
		return "Poor"
	default:
		return "Very Poor"
	}
}

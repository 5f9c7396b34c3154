package marking

// DefaultGradeBoundaries apply when a rubric declares none
var DefaultGradeBoundaries = []GradeBoundary{
	{Grade: "A", Min: 80, Max: 100},
	{Grade: "B", Min: 70, Max: 79},
	{Grade: "C", Min: 60, Max: 69},
	{Grade: "D", Min: 50, Max: 59},
	{Grade: "F", Min: 0, Max: 49},
}

// DetermineGrade returns the first boundary containing percentage. When no
// boundary matches, for example 79.5 with integer ranges, the threshold scale is used.
func DetermineGrade(percentage float64, boundaries []GradeBoundary) string {
	if len(boundaries) == 0 {
		boundaries = DefaultGradeBoundaries
	}

	for _, b := range boundaries {
		if b.Min <= percentage && percentage <= b.Max {
			return b.Grade
		}
	}

	switch {
	case percentage >= 80:
		return "A"
	case percentage >= 70:
		return "B"
	case percentage >= 60:
		return "C"
	case percentage >= 50:
		return "D"
	default:
		return "F"
	}
}

// AnalyticsGrade is the coarse scale used for stored marks that carry no grade
func AnalyticsGrade(percentage float64) string {
	switch {
	case percentage >= 70:
		return "A"
	case percentage >= 60:
		return "B"
	case percentage >= 50:
		return "C"
	case percentage >= 40:
		return "D"
	default:
		return "F"
	}
}

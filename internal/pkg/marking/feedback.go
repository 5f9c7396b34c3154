package marking

import (
	"fmt"
	"strings"
)

// CriterionFeedbackFor builds the strength, weakness and suggestion for a criterion score
func CriterionFeedbackFor(name string, score, maxScore float64) CriterionFeedback {
	lower := strings.ToLower(name)
	percentage := 0.0
	if maxScore > 0 {
		percentage = score / maxScore * 100
	}

	fb := CriterionFeedback{
		Suggestions: "Consider reviewing the requirements for " + lower + " in the assessment brief",
	}

	switch {
	case percentage >= 80:
		fb.Strength = "Excellent demonstration of " + lower
	case percentage >= 60:
		fb.Strength = "Good demonstration of " + lower
		fb.Weakness = "Could further improve " + lower + " by providing more depth"
	case percentage >= 40:
		fb.Strength = "Adequate demonstration of " + lower
		fb.Weakness = "Need to develop " + lower + " more thoroughly"
	default:
		fb.Weakness = "Significant improvement needed in " + lower
	}
	return fb
}

// OverallFeedback summarises the criterion feedback into general comments and recommendations
func OverallFeedback(marks []CriterionMark, percentage, topicCoverage float64, analyses []URLAnalysis) Feedback {
	fb := Feedback{
		Strengths:           []string{},
		AreasForImprovement: []string{},
	}

	for _, m := range marks {
		if m.Feedback.Strength != "" {
			fb.Strengths = append(fb.Strengths, m.Feedback.Strength)
		}
		if m.Feedback.Weakness != "" {
			fb.AreasForImprovement = append(fb.AreasForImprovement, m.Feedback.Weakness)
		}
	}

	var comments string
	switch {
	case percentage >= 80:
		comments = "Excellent work that demonstrates a comprehensive understanding of the subject matter."
	case percentage >= 70:
		comments = "Very good work that shows a solid understanding of the subject matter."
	case percentage >= 60:
		comments = "Good work that demonstrates understanding of most key aspects of the subject matter."
	case percentage >= 50:
		comments = "Satisfactory work that meets the basic requirements but lacks depth in some areas."
	default:
		comments = "This work does not meet the minimum requirements and needs significant improvement."
	}

	switch {
	case topicCoverage > 0.8:
		comments += " The work covers all key topics effectively."
	case topicCoverage > 0.6:
		comments += " The work covers most key topics but could be more comprehensive."
	default:
		comments += " The work misses several key topics that should be addressed."
	}

	if len(analyses) > 0 {
		comments += fmt.Sprintf(" The work incorporates %d external sources, which adds to its depth.", len(analyses))
	}
	fb.GeneralComments = comments

	fb.Recommendations = []string{
		"Review the assessment brief to ensure all requirements are met",
		"Consider the feedback for each criterion to improve future work",
	}
	if len(fb.AreasForImprovement) > 0 {
		fb.Recommendations = append(fb.Recommendations, "Focus on addressing the identified areas for improvement")
	}
	return fb
}

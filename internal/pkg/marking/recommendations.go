package marking

import "fmt"

// GenerateRecommendations derives teaching recommendations from cohort analytics
func GenerateRecommendations(analytics Analytics) []RecommendationItem {
	if analytics.Summary.Count == 0 {
		return []RecommendationItem{{
			Text:     "Not enough data to generate recommendations",
			Type:     TypeGeneral,
			Priority: PriorityLow,
		}}
	}

	var recs []RecommendationItem

	for _, weakness := range analytics.CriteriaAnalysis.Weaknesses {
		recs = append(recs, RecommendationItem{
			Text:     fmt.Sprintf("Consider revising teaching materials related to '%s' as students are scoring lower in this area", weakness),
			Type:     TypeContent,
			Priority: PriorityHigh,
		})
	}

	avg := analytics.Summary.AvgPercentage
	switch {
	case avg < 60:
		recs = append(recs, RecommendationItem{
			Text:     "Overall student performance is below expectations. Consider reviewing the assessment brief for clarity and providing additional support materials",
			Type:     TypeAssessment,
			Priority: PriorityHigh,
		})
	case avg > 80:
		recs = append(recs, RecommendationItem{
			Text:     "Students are performing exceptionally well. Consider increasing the challenge level in future assessments",
			Type:     TypeAssessment,
			Priority: PriorityMedium,
		})
	}

	if analytics.Statistics.WordCount.Average < 500 {
		recs = append(recs, RecommendationItem{
			Text:     "Student submissions are quite brief. Consider providing clearer guidelines on expected depth and detail",
			Type:     TypeGuidance,
			Priority: PriorityMedium,
		})
	}

	if analytics.Statistics.URLUsage.Average < 2 {
		recs = append(recs, RecommendationItem{
			Text:     "Students are using few external sources. Consider emphasizing the importance of research and citation",
			Type:     TypeGuidance,
			Priority: PriorityMedium,
		})
	}

	recs = append(recs,
		RecommendationItem{
			Text:     "Provide more example work to help students understand expectations",
			Type:     TypeGuidance,
			Priority: PriorityLow,
		},
		RecommendationItem{
			Text:     "Consider peer review activities to help students understand assessment criteria",
			Type:     TypeActivity,
			Priority: PriorityMedium,
		},
	)
	return recs
}

package marking

import (
	"errors"
	"sort"
)

// ErrNoResults is returned when analytics are requested for an empty cohort
var ErrNoResults = errors.New("no marking results provided")

const (
	strengthThreshold = 70.0
	weaknessThreshold = 50.0
)

// GenerateAnalytics aggregates a cohort of marking results
func GenerateAnalytics(results []Result) (Analytics, error) {
	if len(results) == 0 {
		return Analytics{}, ErrNoResults
	}

	n := float64(len(results))
	analytics := Analytics{
		Summary: Summary{
			Count:             len(results),
			GradeDistribution: make(map[string]int),
		},
		CriteriaAnalysis: CriteriaAnalysis{
			Averages:   make(map[string]float64),
			Strengths:  []string{},
			Weaknesses: []string{},
		},
	}

	var (
		totalPercentage float64
		totalWords      int
		totalURLs       int
		criterionSums   = make(map[string][]float64)
	)

	minWords, maxWords := results[0].Statistics.WordCount, results[0].Statistics.WordCount
	for _, r := range results {
		totalPercentage += r.Percentage

		grade := r.Grade
		if grade == "" {
			grade = "N/A"
		}
		analytics.Summary.GradeDistribution[grade]++

		for _, cm := range r.CriteriaMarks {
			pct := 0.0
			if cm.MaxScore > 0 {
				pct = cm.Score / cm.MaxScore * 100
			}
			criterionSums[cm.Name] = append(criterionSums[cm.Name], pct)
		}

		wc := r.Statistics.WordCount
		totalWords += wc
		if wc < minWords {
			minWords = wc
		}
		if wc > maxWords {
			maxWords = wc
		}
		totalURLs += r.Statistics.URLCount
	}

	analytics.Summary.AvgPercentage = totalPercentage / n

	names := make([]string, 0, len(criterionSums))
	for name := range criterionSums {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		scores := criterionSums[name]
		var sum float64
		for _, s := range scores {
			sum += s
		}
		avg := sum / float64(len(scores))
		analytics.CriteriaAnalysis.Averages[name] = avg

		switch {
		case avg >= strengthThreshold:
			analytics.CriteriaAnalysis.Strengths = append(analytics.CriteriaAnalysis.Strengths, name)
		case avg <= weaknessThreshold:
			analytics.CriteriaAnalysis.Weaknesses = append(analytics.CriteriaAnalysis.Weaknesses, name)
		}
	}

	analytics.Statistics = AnalyticsStatistics{
		WordCount: WordCountStats{
			Average: float64(totalWords) / n,
			Minimum: minWords,
			Maximum: maxWords,
		},
		URLUsage: URLUsageStats{Average: float64(totalURLs) / n},
	}
	return analytics, nil
}

package marking

import (
	"context"
	"math"
	"strings"
)

const (
	// criterionMaxScore is the score every criterion is marked out of
	criterionMaxScore = 10.0
	// DefaultMaxURLs is how many cited URLs are analysed per submission
	DefaultMaxURLs = 5

	minRelevance     = 0.3
	maxRelevance     = 0.9
	neutralRelevance = 0.5
)

// Engine marks student work against a processed brief and rubric
type Engine struct {
	analyzer URLAnalyzer
	maxURLs  int
}

// NewEngine creates an Engine. A nil analyzer skips URL analysis.
func NewEngine(analyzer URLAnalyzer, maxURLs int) *Engine {
	if maxURLs < 0 {
		maxURLs = DefaultMaxURLs
	}
	return &Engine{analyzer: analyzer, maxURLs: maxURLs}
}

// Analyzer returns the URL analyzer used by the engine
func (e *Engine) Analyzer() URLAnalyzer {
	return e.analyzer
}

// Mark scores workText against every rubric criterion and builds the feedback
func (e *Engine) Mark(ctx context.Context, workText string, brief BriefAnalysis, rubric RubricAnalysis) Result {
	urls := ExtractURLs(workText)
	analyses := []URLAnalysis{}
	if e.analyzer != nil {
		for i, u := range urls {
			if i >= e.maxURLs {
				break
			}
			if ctx.Err() != nil {
				break
			}
			analyses = append(analyses, e.analyzer.AnalyzeURL(ctx, u))
		}
	}

	stats := TextStatistics(workText)
	stats.URLCount = len(urls)
	stats.TopicCoverage = TopicCoverage(Phrases(workText), brief.KeyTopics)

	lowered := strings.ToLower(workText)
	result := Result{
		CriteriaMarks: make([]CriterionMark, 0, len(rubric.Criteria)),
		Statistics:    stats,
		URLAnalyses:   analyses,
	}

	for _, c := range rubric.Criteria {
		relevance := criterionRelevance(lowered, c.Keywords)
		score := math.Min(math.Round(relevance*criterionMaxScore), criterionMaxScore)

		result.CriteriaMarks = append(result.CriteriaMarks, CriterionMark{
			Name:     c.Name,
			Score:    score,
			MaxScore: criterionMaxScore,
			Feedback: CriterionFeedbackFor(c.Name, score, criterionMaxScore),
		})
		result.TotalScore += score
		result.MaxScore += criterionMaxScore
	}

	if result.MaxScore > 0 {
		result.Percentage = result.TotalScore / result.MaxScore * 100
	}
	result.Grade = DetermineGrade(result.Percentage, rubric.GradeBoundaries)
	result.Feedback = OverallFeedback(result.CriteriaMarks, result.Percentage, stats.TopicCoverage, analyses)
	return result
}

// TextStatistics computes word and sentence counts of text. URLs do not count as words.
func TextStatistics(text string) Statistics {
	words := WordCount(urlPattern.ReplaceAllString(text, " "))
	sentences := len(SplitSentences(text))
	stats := Statistics{WordCount: words, SentenceCount: sentences}
	if sentences > 0 {
		stats.AvgSentenceLength = float64(words) / float64(sentences)
	}
	return stats
}

// TopicCoverage is the share of brief topics that are contained in, or contain,
// one of the student's phrases. With no brief topics coverage is complete.
func TopicCoverage(studentTopics, briefTopics []string) float64 {
	if len(briefTopics) == 0 {
		return 1.0
	}

	covered := 0
	for _, bt := range briefTopics {
		for _, st := range studentTopics {
			if strings.Contains(st, bt) || strings.Contains(bt, st) {
				covered++
				break
			}
		}
	}
	return float64(covered) / float64(len(briefTopics))
}

// criterionRelevance is the clamped share of keywords present in the lowered text
func criterionRelevance(loweredText string, keywords []string) float64 {
	if len(keywords) == 0 {
		return neutralRelevance
	}

	found := 0
	for _, k := range keywords {
		if strings.Contains(loweredText, strings.ToLower(k)) {
			found++
		}
	}
	relevance := float64(found) / float64(len(keywords))
	return math.Min(maxRelevance, math.Max(minRelevance, relevance))
}

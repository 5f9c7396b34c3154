package marking

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessBrief(t *testing.T) {
	text := "Students must write a report on cloud computing architecture. You will be able to apply design patterns!\n\nSubmit via the portal before the deadline."

	analysis := ProcessBrief(text)

	assert.Equal(t, []string{"Students must write a report on cloud computing architecture."}, analysis.Requirements)
	assert.Equal(t, []string{"You will be able to apply design patterns!"}, analysis.LearningOutcomes)
	assert.Equal(t, []string{"Submit via the portal before the deadline."}, analysis.SubmissionDetails)
	assert.Equal(t, []string{"cloud computing architecture", "apply design patterns"}, analysis.KeyTopics)
	assert.Equal(t, text, analysis.FullText)
}

func TestProcessBrief_Empty(t *testing.T) {
	analysis := ProcessBrief("")
	assert.NotNil(t, analysis.Requirements)
	assert.NotNil(t, analysis.KeyTopics)
	assert.Empty(t, analysis.KeyTopics)
}

func TestProcessRubric_PercentageHeaders(t *testing.T) {
	text := "Marking Rubric\n\nContent (40%): Demonstrates thorough knowledge of distributed systems.\nStructure (30%): Clear logical organisation with headings.\nGrade A: 70-100\nGrade B: 60-69\n"

	analysis := ProcessRubric(text)

	require.Len(t, analysis.Criteria, 2)
	assert.Equal(t, "Content", analysis.Criteria[0].Name)
	assert.Equal(t, 40.0, analysis.Criteria[0].Weight)
	assert.Equal(t, "Demonstrates thorough knowledge of distributed systems.", analysis.Criteria[0].Description)
	assert.Equal(t, []string{
		"demonstrates thorough",
		"distributed systems",
		"thorough knowledge",
		"demonstrates",
		"distributed",
		"knowledge",
		"thorough",
		"systems",
	}, analysis.Criteria[0].Keywords)

	assert.Equal(t, "Structure", analysis.Criteria[1].Name)
	assert.Equal(t, 30.0, analysis.Criteria[1].Weight)
	assert.Equal(t, "Clear logical organisation with headings.", analysis.Criteria[1].Description)

	assert.Equal(t, []GradeBoundary{
		{Grade: "A", Min: 70, Max: 100},
		{Grade: "B", Min: 60, Max: 69},
	}, analysis.GradeBoundaries)
}

func TestProcessRubric_LongHeaderNameIsCapped(t *testing.T) {
	preamble := strings.Repeat("This rubric explains how work is assessed ", 4)
	text := preamble + "Content (40%): Demonstrates knowledge of distributed systems."

	analysis := ProcessRubric(text)

	require.Len(t, analysis.Criteria, 1)
	name := analysis.Criteria[0].Name
	assert.LessOrEqual(t, utf8.RuneCountInString(name), MaxCriterionNameLength)
	assert.True(t, strings.HasSuffix(name, "Content"), name)
	assert.Equal(t, 40.0, analysis.Criteria[0].Weight)
}

func TestProcessRubric_ParagraphHeaders(t *testing.T) {
	text := "Introduction:\n\nClear opening paragraph.\n\nAnalysis)\n\nDeep evaluation of results.\n\nMore detail here."

	analysis := ProcessRubric(text)

	require.Len(t, analysis.Criteria, 2)
	assert.Equal(t, "Introduction", analysis.Criteria[0].Name)
	assert.Equal(t, 25.0, analysis.Criteria[0].Weight)
	assert.Equal(t, "Clear opening paragraph.", analysis.Criteria[0].Description)
	assert.Equal(t, "Analysis", analysis.Criteria[1].Name)
	assert.Equal(t, "Deep evaluation of results. More detail here.", analysis.Criteria[1].Description)
}

func TestProcessRubric_DefaultCriteria(t *testing.T) {
	analysis := ProcessRubric("Just some text without structure")

	require.Len(t, analysis.Criteria, 4)
	names := []string{}
	var total float64
	for _, c := range analysis.Criteria {
		names = append(names, c.Name)
		total += c.Weight
		assert.Len(t, c.Keywords, 5)
	}
	assert.Equal(t, []string{"Content", "Structure", "Research", "Language"}, names)
	assert.Equal(t, 100.0, total)
	assert.Empty(t, analysis.GradeBoundaries)
}

func TestExtractKeywords_Limit(t *testing.T) {
	text := "alpha bravo charlie delta echo foxtrot golf hotel india juliet kilo lima mike november oscar papa"
	keywords := ExtractKeywords(text)
	assert.Len(t, keywords, 20)
	assert.Equal(t, "november oscar", keywords[0])
}

func TestExtractGradeBoundaries_RangeFallback(t *testing.T) {
	boundaries := ExtractGradeBoundaries("70-79% = Distinction, 60 to 69: Merit")
	assert.Equal(t, []GradeBoundary{
		{Grade: "Distinction", Min: 70, Max: 79},
		{Grade: "Merit", Min: 60, Max: 69},
	}, boundaries)
}

func TestExtractGradeBoundaries_SingleValue(t *testing.T) {
	boundaries := ExtractGradeBoundaries("Mark Pass: 40")
	assert.Equal(t, []GradeBoundary{{Grade: "Pass", Min: 40, Max: 40}}, boundaries)
}

func TestDetermineGrade(t *testing.T) {
	assert.Equal(t, "A", DetermineGrade(85, nil))
	assert.Equal(t, "B", DetermineGrade(75, nil))
	assert.Equal(t, "B", DetermineGrade(79.5, nil))
	assert.Equal(t, "F", DetermineGrade(10, nil))

	custom := []GradeBoundary{{Grade: "Distinction", Min: 70, Max: 79}, {Grade: "Merit", Min: 60, Max: 69}}
	assert.Equal(t, "Distinction", DetermineGrade(75, custom))
	assert.Equal(t, "A", DetermineGrade(95, custom))
}

func TestAnalyticsGrade(t *testing.T) {
	assert.Equal(t, "A", AnalyticsGrade(70))
	assert.Equal(t, "B", AnalyticsGrade(65))
	assert.Equal(t, "C", AnalyticsGrade(50))
	assert.Equal(t, "D", AnalyticsGrade(40))
	assert.Equal(t, "F", AnalyticsGrade(39.9))
}

func TestExtractURLs(t *testing.T) {
	urls := ExtractURLs("See https://example.com/page?x=1 and http://foo.org/a b, not ftp://nope")
	assert.Equal(t, []string{"https://example.com/page?x=1", "http://foo.org/a"}, urls)
	assert.Equal(t, []string{}, ExtractURLs("no links"))
}

type stubAnalyzer struct {
	calls []string
}

func (s *stubAnalyzer) AnalyzeURL(_ context.Context, rawURL string) URLAnalysis {
	s.calls = append(s.calls, rawURL)
	return URLAnalysis{URL: rawURL, Title: "stub"}
}

func TestEngineMark(t *testing.T) {
	analyzer := &stubAnalyzer{}
	engine := NewEngine(analyzer, 5)

	rubric := RubricAnalysis{Criteria: []Criterion{
		{Name: "Research", Keywords: []string{"sources", "evidence", "citation", "references", "research"}},
		{Name: "Style"},
	}}
	work := "This research uses evidence from sources. See https://a.test/x and https://b.test/y"

	result := engine.Mark(context.Background(), work, BriefAnalysis{}, rubric)

	require.Len(t, result.CriteriaMarks, 2)
	assert.Equal(t, 6.0, result.CriteriaMarks[0].Score)
	assert.Equal(t, "Good demonstration of research", result.CriteriaMarks[0].Feedback.Strength)
	assert.Equal(t, "Could further improve research by providing more depth", result.CriteriaMarks[0].Feedback.Weakness)
	assert.Equal(t, 5.0, result.CriteriaMarks[1].Score)
	assert.Equal(t, "Need to develop style more thoroughly", result.CriteriaMarks[1].Feedback.Weakness)

	assert.Equal(t, 11.0, result.TotalScore)
	assert.Equal(t, 20.0, result.MaxScore)
	assert.InDelta(t, 55.0, result.Percentage, 0.0001)
	assert.Equal(t, "D", result.Grade)

	assert.Equal(t, 8, result.Statistics.WordCount)
	assert.Equal(t, 2, result.Statistics.SentenceCount)
	assert.Equal(t, 4.0, result.Statistics.AvgSentenceLength)
	assert.Equal(t, 2, result.Statistics.URLCount)
	assert.Equal(t, 1.0, result.Statistics.TopicCoverage)

	assert.Equal(t, []string{"https://a.test/x", "https://b.test/y"}, analyzer.calls)
	assert.Len(t, result.URLAnalyses, 2)

	assert.Equal(t, "Satisfactory work that meets the basic requirements but lacks depth in some areas."+
		" The work covers all key topics effectively."+
		" The work incorporates 2 external sources, which adds to its depth.", result.Feedback.GeneralComments)
	assert.Equal(t, []string{"Good demonstration of research", "Adequate demonstration of style"}, result.Feedback.Strengths)
	assert.Len(t, result.Feedback.AreasForImprovement, 2)
	assert.Equal(t, []string{
		"Review the assessment brief to ensure all requirements are met",
		"Consider the feedback for each criterion to improve future work",
		"Focus on addressing the identified areas for improvement",
	}, result.Feedback.Recommendations)
}

func TestEngineMark_RespectsMaxURLs(t *testing.T) {
	analyzer := &stubAnalyzer{}
	engine := NewEngine(analyzer, 1)

	result := engine.Mark(context.Background(), "https://a.test https://b.test", BriefAnalysis{}, RubricAnalysis{})

	assert.Len(t, analyzer.calls, 1)
	assert.Equal(t, 2, result.Statistics.URLCount)
	assert.Equal(t, 0.0, result.Percentage)
	assert.Equal(t, "F", result.Grade)
}

func TestTopicCoverage(t *testing.T) {
	assert.Equal(t, 1.0, TopicCoverage(nil, nil))
	assert.Equal(t, 0.5, TopicCoverage(
		[]string{"modern cloud computing platforms"},
		[]string{"cloud computing", "graph theory"},
	))
	assert.Equal(t, 0.0, TopicCoverage(nil, []string{"graph theory"}))
}

func TestCriterionFeedbackFor(t *testing.T) {
	fb := CriterionFeedbackFor("Critical Analysis", 9, 10)
	assert.Equal(t, "Excellent demonstration of critical analysis", fb.Strength)
	assert.Empty(t, fb.Weakness)
	assert.Equal(t, "Consider reviewing the requirements for critical analysis in the assessment brief", fb.Suggestions)

	fb = CriterionFeedbackFor("Content", 3, 10)
	assert.Empty(t, fb.Strength)
	assert.Equal(t, "Significant improvement needed in content", fb.Weakness)
}

func TestOverallFeedback_CoverageSentences(t *testing.T) {
	fb := OverallFeedback(nil, 85, 0.7, nil)
	assert.Equal(t, "Excellent work that demonstrates a comprehensive understanding of the subject matter."+
		" The work covers most key topics but could be more comprehensive.", fb.GeneralComments)
	assert.Len(t, fb.Recommendations, 2)

	fb = OverallFeedback(nil, 10, 0.2, nil)
	assert.Contains(t, fb.GeneralComments, "does not meet the minimum requirements")
	assert.Contains(t, fb.GeneralComments, "misses several key topics")
}

package marking

// BriefAnalysis is the structured view of an assessment brief
type BriefAnalysis struct {
	Requirements      []string `json:"requirements"`
	LearningOutcomes  []string `json:"learning_outcomes"`
	SubmissionDetails []string `json:"submission_details"`
	KeyTopics         []string `json:"key_topics"`
	FullText          string   `json:"full_text"`
}

// Criterion is one marking criterion extracted from a rubric
type Criterion struct {
	Name        string   `json:"name"`
	Weight      float64  `json:"weight"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// GradeBoundary is an inclusive percentage range for a grade
type GradeBoundary struct {
	Grade string  `json:"grade"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// RubricAnalysis is the structured view of a rubric
type RubricAnalysis struct {
	Criteria []Criterion `json:"criteria"`
	// GradeBoundaries keeps the order in which grades were found
	GradeBoundaries []GradeBoundary `json:"grade_boundaries"`
	FullText        string          `json:"full_text"`
}

// URLAnalysis describes the content behind a referenced URL
type URLAnalysis struct {
	URL             string   `json:"url"`
	Title           string   `json:"title,omitempty"`
	MetaDescription string   `json:"meta_description,omitempty"`
	KeyPhrases      []string `json:"key_phrases,omitempty"`
	ContentSample   string   `json:"content_sample,omitempty"`
	Status          string   `json:"status,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// Failed reports whether the URL could not be analysed
func (a URLAnalysis) Failed() bool {
	return a.Status == StatusFailed
}

// StatusFailed marks an unsuccessful URL analysis
const StatusFailed = "failed"

// CriterionFeedback is the feedback for a single criterion.
// Empty strength or weakness means none applies.
type CriterionFeedback struct {
	Strength    string `json:"strength,omitempty"`
	Weakness    string `json:"weakness,omitempty"`
	Suggestions string `json:"suggestions"`
}

// CriterionMark is the score awarded for one criterion
type CriterionMark struct {
	Name     string            `json:"name"`
	Score    float64           `json:"score"`
	MaxScore float64           `json:"max_score"`
	Feedback CriterionFeedback `json:"feedback"`
}

// Feedback is the overall narrative for a piece of work
type Feedback struct {
	GeneralComments     string   `json:"general_comments"`
	Strengths           []string `json:"strengths"`
	AreasForImprovement []string `json:"areas_for_improvement"`
	Recommendations     []string `json:"recommendations"`
}

// Statistics are the text metrics of a piece of work
type Statistics struct {
	WordCount         int     `json:"word_count"`
	SentenceCount     int     `json:"sentence_count"`
	AvgSentenceLength float64 `json:"avg_sentence_length"`
	URLCount          int     `json:"url_count"`
	TopicCoverage     float64 `json:"topic_coverage"`
}

// Result is the full outcome of marking a piece of work
type Result struct {
	TotalScore    float64         `json:"total_score"`
	MaxScore      float64         `json:"max_score"`
	Percentage    float64         `json:"percentage"`
	Grade         string          `json:"grade"`
	CriteriaMarks []CriterionMark `json:"criteria_marks"`
	Feedback      Feedback        `json:"feedback"`
	Statistics    Statistics      `json:"statistics"`
	URLAnalyses   []URLAnalysis   `json:"url_analyses"`
}

// Summary is the headline part of Analytics
type Summary struct {
	Count             int            `json:"count"`
	AvgPercentage     float64        `json:"avg_percentage"`
	GradeDistribution map[string]int `json:"grade_distribution"`
}

// CriteriaAnalysis holds per criterion averages in percent
type CriteriaAnalysis struct {
	Averages   map[string]float64 `json:"averages"`
	Strengths  []string           `json:"strengths"`
	Weaknesses []string           `json:"weaknesses"`
}

// WordCountStats summarises submission lengths
type WordCountStats struct {
	Average float64 `json:"average"`
	Minimum int     `json:"minimum"`
	Maximum int     `json:"maximum"`
}

// URLUsageStats summarises source usage
type URLUsageStats struct {
	Average float64 `json:"average"`
}

// AnalyticsStatistics groups the text statistics of a cohort
type AnalyticsStatistics struct {
	WordCount WordCountStats `json:"word_count"`
	URLUsage  URLUsageStats  `json:"url_usage"`
}

// Analytics aggregates the marking results of an assessment
type Analytics struct {
	Summary          Summary             `json:"summary"`
	CriteriaAnalysis CriteriaAnalysis    `json:"criteria_analysis"`
	Statistics       AnalyticsStatistics `json:"statistics"`
}

// Recommendation priorities and types
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"

	TypeGeneral    = "general"
	TypeContent    = "content"
	TypeAssessment = "assessment"
	TypeGuidance   = "guidance"
	TypeActivity   = "activity"
)

// RecommendationItem is a single teaching recommendation
type RecommendationItem struct {
	Text     string `json:"text"`
	Type     string `json:"type"`
	Priority string `json:"priority"`
}

package models

import "time"

// Mark is the scored result of a piece of student work
type Mark struct {
	ID                int64     `json:"id" db:"id"`
	StudentWorkID     int64     `json:"studentWorkId" db:"student_work_id"`
	TotalScore        float64   `json:"totalScore" db:"total_score"`
	MaxScore          float64   `json:"maxScore" db:"max_score"`
	Percentage        float64   `json:"percentage" db:"percentage"`
	Grade             string    `json:"grade" db:"grade"`
	WordCount         int       `json:"wordCount" db:"word_count"`
	SentenceCount     int       `json:"sentenceCount" db:"sentence_count"`
	URLCount          int       `json:"urlCount" db:"url_count"`
	TopicCoverage     float64   `json:"topicCoverage" db:"topic_coverage"`
	MarkedByAI        bool      `json:"markedByAi" db:"marked_by_ai"`
	VerifiedByTeacher bool      `json:"verifiedByTeacher" db:"verified_by_teacher"`
	TeacherID         *int64    `json:"teacherId,omitempty" db:"teacher_id"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time `json:"updatedAt" db:"updated_at"`
}

// CriteriaMark is the per criterion score of a mark
type CriteriaMark struct {
	ID         int64   `json:"id" db:"id"`
	MarkID     int64   `json:"markId" db:"mark_id"`
	CriteriaID int64   `json:"criteriaId" db:"criteria_id"`
	Score      float64 `json:"score" db:"score"`
	Comments   *string `json:"comments,omitempty" db:"comments"`

	CriteriaName string  `json:"criteriaName,omitempty"`
	MaxScore     float64 `json:"maxScore,omitempty"`
}

// Feedback is the narrative attached to a mark
type Feedback struct {
	ID                  int64     `json:"id" db:"id"`
	MarkID              int64     `json:"markId" db:"mark_id"`
	GeneralComments     string    `json:"generalComments" db:"general_comments"`
	Strengths           string    `json:"strengths" db:"strengths"`
	AreasForImprovement string    `json:"areasForImprovement" db:"areas_for_improvement"`
	Recommendations     string    `json:"recommendations" db:"recommendations"`
	CreatedAt           time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time `json:"updatedAt" db:"updated_at"`
}

// MarkWithCriteria is a stored mark together with its criteria marks
type MarkWithCriteria struct {
	Mark
	CriteriaMarks []*CriteriaMark `json:"criteriaMarks"`
}

package models

// AdminStats are the site wide counts shown on the admin dashboard
type AdminStats struct {
	Users       int64 `json:"users"`
	Teachers    int64 `json:"teachers"`
	Admins      int64 `json:"admins"`
	Assessments int64 `json:"assessments"`
	Categories  int64 `json:"categories"`
	Modules     int64 `json:"modules"`
	Sections    int64 `json:"sections"`
	Templates   int64 `json:"templates"`
	Layouts     int64 `json:"layouts"`
}

// TeacherStats are the counts shown on a teacher's dashboard
type TeacherStats struct {
	Categories  int64 `json:"categories"`
	Modules     int64 `json:"modules"`
	Assessments int64 `json:"assessments"`
	Marked      int64 `json:"marked"`
	Pending     int64 `json:"pending"`
}

// Submission is a student work joined with its assessment title for listings
type Submission struct {
	StudentWork
	AssessmentTitle string `json:"assessmentTitle"`
}

// WorkStatusCounts counts an assessment's works by status
type WorkStatusCounts struct {
	Submitted int `json:"submitted"`
	Marking   int `json:"marking"`
	Marked    int `json:"marked"`
}

// Add counts one work in the given status
func (c *WorkStatusCounts) Add(status WorkStatus) {
	switch status {
	case WorkStatusSubmitted:
		c.Submitted++
	case WorkStatusMarking:
		c.Marking++
	case WorkStatusMarked:
		c.Marked++
	}
}

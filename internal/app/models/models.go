package models

// RoleType defines the user role type
type RoleType string

const (
	RoleAdmin   RoleType = "admin"
	RoleTeacher RoleType = "teacher"
)

// IsValid reports whether the role is one the system knows
func (r RoleType) IsValid() bool {
	return r == RoleAdmin || r == RoleTeacher
}

// WorkStatus is the marking lifecycle state of a student submission
type WorkStatus string

const (
	WorkStatusSubmitted WorkStatus = "submitted"
	WorkStatusMarking   WorkStatus = "marking"
	WorkStatusMarked    WorkStatus = "marked"
)

// Recommendation priorities as stored in the database (lower is more urgent)
const (
	PriorityHigh   = 1
	PriorityMedium = 3
	PriorityLow    = 5
)

// PriorityValue maps a textual priority onto its stored value
func PriorityValue(priority string) int {
	switch priority {
	case "high":
		return PriorityHigh
	case "medium":
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// AnalyticsTypeMarking is the data_type of generated marking analytics
const AnalyticsTypeMarking = "marking_analytics"

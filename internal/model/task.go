package model

import "time"

// Task status and priority values. The literal strings are part of the
// API surface and of activity-log transition records.
const (
	TaskToDo       = "To Do"
	TaskInProgress = "In Progress"
	TaskInReview   = "In Review"
	TaskDone       = "Done"

	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// ValidTaskStatus reports whether s is a known task state.
func ValidTaskStatus(s string) bool {
	switch s {
	case TaskToDo, TaskInProgress, TaskInReview, TaskDone:
		return true
	}
	return false
}

// ValidPriority reports whether s is a known task priority.
func ValidPriority(s string) bool {
	switch s {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task mirrors the `tasks` table. AssigneeID is nullable; deleting the
// assigned user sets it to NULL at the database level.
type Task struct {
	ID          uint64     // tasks.id
	ProjectID   uint64     // tasks.project_id
	Title       string     // tasks.title
	Description string     // tasks.description
	Status      string     // tasks.status
	Priority    string     // tasks.priority
	AssigneeID  *uint64    // tasks.assignee_id (nullable)
	CreatedAt   time.Time  // tasks.created_at
	UpdatedAt   time.Time  // tasks.updated_at
}

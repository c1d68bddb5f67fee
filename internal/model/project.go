package model

import "time"

// Project status values accepted by the API. Stored verbatim in
// projects.status; status transitions are recorded in the activity
// log as "old→new".
const (
	ProjectNotStarted = "Not Started"
	ProjectInProgress = "In Progress"
	ProjectOnHold     = "On Hold"
	ProjectCompleted  = "Completed"
	ProjectCancelled  = "Cancelled"
	ProjectArchived   = "Archived"
)

// ValidProjectStatus reports whether s is one of the six project states.
func ValidProjectStatus(s string) bool {
	switch s {
	case ProjectNotStarted, ProjectInProgress, ProjectOnHold,
		ProjectCompleted, ProjectCancelled, ProjectArchived:
		return true
	}
	return false
}

// Project mirrors the `projects` table. Assignees live in the
// project_assignees join table and are loaded on demand; the struct
// holds only id references so the object graph stays acyclic.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – unique project title.
//  Description – free-form description.
//  StartDate   – date work begins.
//  Deadline    – must be strictly after StartDate.
//  Status      – one of the six project states.
//  CreatorID   – user who created the project.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Project struct {
	ID          uint64    // projects.id
	Title       string    // projects.title
	Description string    // projects.description
	StartDate   time.Time // projects.start_date
	Deadline    time.Time // projects.deadline
	Status      string    // projects.status
	CreatorID   uint64    // projects.creator_id
	CreatedAt   time.Time // projects.created_at
	UpdatedAt   time.Time // projects.updated_at
}

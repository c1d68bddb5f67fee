package model

import "time"

// ActivityLog is an append-only audit record of one mutation. Rows are
// never updated after insertion and disappear only when their project
// is deleted (FK cascade). The payload columns are type-specific:
// task rows fill TaskTitle/TaskStatus, comment rows fill
// CommentSnippet, project status changes fill ProjectStatus. A status
// transition is stored as a single "old→new" string.
//
// Fields:
//  ID             – primary key identifier.
//  Action         – human-readable action text, truncated before insert.
//  ActorID        – user who performed the mutation (from JWT claims).
//  ProjectID      – project the mutation belongs to.
//  TaskTitle      – title of the affected task, if any.
//  TaskStatus     – task status or "old→new" transition, if any.
//  CommentSnippet – leading characters of the comment, if any.
//  ProjectStatus  – project status transition "old→new", if any.
//  CreatedAt      – insertion timestamp.
type ActivityLog struct {
	ID             uint64    // activity_logs.id
	Action         string    // activity_logs.action
	ActorID        uint64    // activity_logs.actor_id
	ProjectID      uint64    // activity_logs.project_id
	TaskTitle      *string   // activity_logs.task_title (nullable)
	TaskStatus     *string   // activity_logs.task_status (nullable)
	CommentSnippet *string   // activity_logs.comment_snippet (nullable)
	ProjectStatus  *string   // activity_logs.project_status (nullable)
	CreatedAt      time.Time // activity_logs.created_at
}

package model

import "time"

// Comment mirrors the `comments` table. Exactly one of TaskID or
// ProjectID is set; the policy layer rejects anything else before a
// row is written.
type Comment struct {
	ID        uint64    // comments.id
	Content   string    // comments.content
	TaskID    *uint64   // comments.task_id (nullable)
	ProjectID *uint64   // comments.project_id (nullable)
	AuthorID  uint64    // comments.author_id
	CreatedAt time.Time // comments.created_at
}

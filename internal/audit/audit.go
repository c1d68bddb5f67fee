// Package audit appends activity-log rows for every mutation on
// projects, tasks, comments and users. Entries are attributed to the
// acting user taken from the request's JWT claims, never from the
// payload, and are written inside the same transaction as the
// mutation they describe so the trail cannot miss a committed change.
package audit

import (
	"context"
	"database/sql"

	"github.com/mkravets/projecthub/internal/model"
	"github.com/mkravets/projecthub/internal/repository"
)

// Action text limits per entity, matching the activity_logs column
// widths.
const (
	ProjectActionLimit = 250
	TaskActionLimit    = 150
	CommentActionLimit = 100
	SnippetLimit       = 80
)

// TransitionSep joins the old and new status of a change into one
// stored string, e.g. "To Do→In Progress".
const TransitionSep = "→"

// Transition encodes an old→new status pair.
func Transition(oldStatus, newStatus string) string {
	return oldStatus + TransitionSep + newStatus
}

// Truncate clips s to at most limit bytes without splitting a UTF-8
// sequence.
func Truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut]
}

// Recorder writes audit entries through the activity repository. The
// project repository is consulted so an entry is only written while
// the referenced project still exists; a vanished project simply means
// no row, never an error for the caller.
type Recorder struct {
	Activity *repository.ActivityRepo
	Projects *repository.ProjectRepo
}

func NewRecorder(activity *repository.ActivityRepo, projects *repository.ProjectRepo) *Recorder {
	return &Recorder{Activity: activity, Projects: projects}
}

// record inserts the entry when its project exists inside tx.
func (r *Recorder) record(ctx context.Context, tx *sql.Tx, l *model.ActivityLog) error {
	ok, err := r.Projects.ExistsTx(ctx, tx, l.ProjectID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return r.Activity.InsertTx(ctx, tx, l)
}

// ProjectCreated records a new project.
func (r *Recorder) ProjectCreated(ctx context.Context, tx *sql.Tx, actorID uint64, p model.Project) error {
	return r.record(ctx, tx, &model.ActivityLog{
		Action:    Truncate("created project "+p.Title, ProjectActionLimit),
		ActorID:   actorID,
		ProjectID: p.ID,
	})
}

// ProjectUpdated records a generic project update carrying only the
// new title.
func (r *Recorder) ProjectUpdated(ctx context.Context, tx *sql.Tx, actorID uint64, p model.Project) error {
	return r.record(ctx, tx, &model.ActivityLog{
		Action:    Truncate("updated project "+p.Title, ProjectActionLimit),
		ActorID:   actorID,
		ProjectID: p.ID,
	})
}

// ProjectStatusChanged records an old→new project status transition.
func (r *Recorder) ProjectStatusChanged(ctx context.Context, tx *sql.Tx, actorID uint64, p model.Project, oldStatus string) error {
	tr := Transition(oldStatus, p.Status)
	return r.record(ctx, tx, &model.ActivityLog{
		Action:        Truncate("changed status of project "+p.Title, ProjectActionLimit),
		ActorID:       actorID,
		ProjectID:     p.ID,
		ProjectStatus: &tr,
	})
}

// TaskCreated records a new task under its project.
func (r *Recorder) TaskCreated(ctx context.Context, tx *sql.Tx, actorID uint64, t model.Task) error {
	return r.record(ctx, tx, &model.ActivityLog{
		Action:     Truncate("created task "+t.Title, TaskActionLimit),
		ActorID:    actorID,
		ProjectID:  t.ProjectID,
		TaskTitle:  &t.Title,
		TaskStatus: &t.Status,
	})
}

// TaskUpdated records a generic task update carrying the new title and
// status only.
func (r *Recorder) TaskUpdated(ctx context.Context, tx *sql.Tx, actorID uint64, t model.Task) error {
	return r.record(ctx, tx, &model.ActivityLog{
		Action:     Truncate("updated task "+t.Title, TaskActionLimit),
		ActorID:    actorID,
		ProjectID:  t.ProjectID,
		TaskTitle:  &t.Title,
		TaskStatus: &t.Status,
	})
}

// TaskStatusChanged records an old→new task status transition.
func (r *Recorder) TaskStatusChanged(ctx context.Context, tx *sql.Tx, actorID uint64, t model.Task, oldStatus string) error {
	tr := Transition(oldStatus, t.Status)
	return r.record(ctx, tx, &model.ActivityLog{
		Action:     Truncate("changed status of task "+t.Title, TaskActionLimit),
		ActorID:    actorID,
		ProjectID:  t.ProjectID,
		TaskTitle:  &t.Title,
		TaskStatus: &tr,
	})
}

// TaskDeleted records a task removal.
func (r *Recorder) TaskDeleted(ctx context.Context, tx *sql.Tx, actorID uint64, t model.Task) error {
	return r.record(ctx, tx, &model.ActivityLog{
		Action:    Truncate("deleted task "+t.Title, TaskActionLimit),
		ActorID:   actorID,
		ProjectID: t.ProjectID,
		TaskTitle: &t.Title,
	})
}

// CommentAdded records a new comment with a truncated snippet.
func (r *Recorder) CommentAdded(ctx context.Context, tx *sql.Tx, actorID, projectID uint64, content string) error {
	snippet := Truncate(content, SnippetLimit)
	return r.record(ctx, tx, &model.ActivityLog{
		Action:         Truncate("added a comment", CommentActionLimit),
		ActorID:        actorID,
		ProjectID:      projectID,
		CommentSnippet: &snippet,
	})
}

// CommentUpdated records a comment edit with the new snippet.
func (r *Recorder) CommentUpdated(ctx context.Context, tx *sql.Tx, actorID, projectID uint64, content string) error {
	snippet := Truncate(content, SnippetLimit)
	return r.record(ctx, tx, &model.ActivityLog{
		Action:         Truncate("edited a comment", CommentActionLimit),
		ActorID:        actorID,
		ProjectID:      projectID,
		CommentSnippet: &snippet,
	})
}

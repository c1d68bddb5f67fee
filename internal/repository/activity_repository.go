package repository

import (
	"context"
	"database/sql"

	"github.com/mkravets/projecthub/internal/model"
)

// ActivityRepo appends and reads audit records. Rows are insert-only;
// there is deliberately no update or single-row delete method, the
// only way a log disappears is the project FK cascade.
type ActivityRepo struct{ db *sql.DB }

func NewActivityRepo(db *sql.DB) *ActivityRepo { return &ActivityRepo{db: db} }

func (r *ActivityRepo) DB() *sql.DB { return r.db }

const activityCols = "id,action,actor_id,project_id,task_title,task_status,comment_snippet,project_status,created_at"

// InsertTx appends one audit row inside the transaction that carries
// the mutation being recorded.
func (r *ActivityRepo) InsertTx(ctx context.Context, tx *sql.Tx, l *model.ActivityLog) error {
	var taskTitle, taskStatus, snippet, projStatus any
	if l.TaskTitle != nil {
		taskTitle = *l.TaskTitle
	}
	if l.TaskStatus != nil {
		taskStatus = *l.TaskStatus
	}
	if l.CommentSnippet != nil {
		snippet = *l.CommentSnippet
	}
	if l.ProjectStatus != nil {
		projStatus = *l.ProjectStatus
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO activity_logs (action, actor_id, project_id, task_title, task_status, comment_snippet, project_status) VALUES (?,?,?,?,?,?,?)",
		l.Action, l.ActorID, l.ProjectID, taskTitle, taskStatus, snippet, projStatus)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)
	return nil
}

// ListByProject returns a project's audit trail, newest first.
func (r *ActivityRepo) ListByProject(ctx context.Context, projectID uint64) ([]model.ActivityLog, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+activityCols+" FROM activity_logs WHERE project_id=? ORDER BY created_at DESC, id DESC",
		projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLogs(rows)
}

// ListAll returns the global feed, newest first, bounded by limit.
func (r *ActivityRepo) ListAll(ctx context.Context, limit int) ([]model.ActivityLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+activityCols+" FROM activity_logs ORDER BY created_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLogs(rows)
}

func collectLogs(rows *sql.Rows) ([]model.ActivityLog, error) {
	var out []model.ActivityLog
	for rows.Next() {
		var l model.ActivityLog
		var taskTitle, taskStatus, snippet, projStatus sql.NullString
		if err := rows.Scan(&l.ID, &l.Action, &l.ActorID, &l.ProjectID,
			&taskTitle, &taskStatus, &snippet, &projStatus, &l.CreatedAt); err != nil {
			return nil, err
		}
		if taskTitle.Valid {
			l.TaskTitle = &taskTitle.String
		}
		if taskStatus.Valid {
			l.TaskStatus = &taskStatus.String
		}
		if snippet.Valid {
			l.CommentSnippet = &snippet.String
		}
		if projStatus.Valid {
			l.ProjectStatus = &projStatus.String
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

package repository

import (
	"context"
	"database/sql"

	"github.com/mkravets/projecthub/internal/model"
)

// TaskRepo provides persistence for tasks. All timestamps are UTC.
type TaskRepo struct{ db *sql.DB }

func NewTaskRepo(db *sql.DB) *TaskRepo { return &TaskRepo{db: db} }

func (r *TaskRepo) DB() *sql.DB { return r.db }

const taskCols = "id,project_id,title,description,status,priority,assignee_id,created_at,updated_at"

func scanTask(row interface{ Scan(...any) error }) (model.Task, error) {
	var t model.Task
	var assignee sql.NullInt64
	err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status,
		&t.Priority, &assignee, &t.CreatedAt, &t.UpdatedAt)
	if assignee.Valid {
		v := uint64(assignee.Int64)
		t.AssigneeID = &v
	}
	return t, err
}

// CreateTx inserts a task within an existing transaction and populates
// the generated ID.
func (r *TaskRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Task) error {
	var assignee any
	if t.AssigneeID != nil {
		assignee = *t.AssigneeID
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO tasks (project_id, title, description, status, priority, assignee_id) VALUES (?,?,?,?,?,?)",
		t.ProjectID, t.Title, t.Description, t.Status, t.Priority, assignee)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// UpdateTx rewrites the mutable task columns.
func (r *TaskRepo) UpdateTx(ctx context.Context, tx *sql.Tx, t *model.Task) error {
	var assignee any
	if t.AssigneeID != nil {
		assignee = *t.AssigneeID
	}
	_, err := tx.ExecContext(ctx,
		"UPDATE tasks SET title=?, description=?, status=?, priority=?, assignee_id=? WHERE id=?",
		t.Title, t.Description, t.Status, t.Priority, assignee, t.ID)
	return err
}

// GetByID fetches a single task.
func (r *TaskRepo) GetByID(ctx context.Context, id uint64) (model.Task, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+taskCols+" FROM tasks WHERE id=? LIMIT 1", id)
	return scanTask(row)
}

// ListByProject returns all tasks of a project, newest first.
func (r *TaskRepo) ListByProject(ctx context.Context, projectID uint64) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+taskCols+" FROM tasks WHERE project_id=? ORDER BY created_at DESC", projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTasks(rows)
}

// ListByAssignee returns tasks assigned to a user.
func (r *TaskRepo) ListByAssignee(ctx context.Context, userID uint64) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+taskCols+" FROM tasks WHERE assignee_id=? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTasks(rows)
}

func collectTasks(rows *sql.Rows) ([]model.Task, error) {
	var out []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// DeleteTx removes a task within an existing transaction; its comments
// follow through the FK cascade.
func (r *TaskRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM tasks WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

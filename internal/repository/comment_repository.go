package repository

import (
	"context"
	"database/sql"

	"github.com/mkravets/projecthub/internal/model"
)

// CommentRepo provides persistence for comments on tasks and projects.
type CommentRepo struct{ db *sql.DB }

func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{db: db} }

func (r *CommentRepo) DB() *sql.DB { return r.db }

const commentCols = "id,content,task_id,project_id,author_id,created_at"

func scanComment(row interface{ Scan(...any) error }) (model.Comment, error) {
	var c model.Comment
	var taskID, projectID sql.NullInt64
	err := row.Scan(&c.ID, &c.Content, &taskID, &projectID, &c.AuthorID, &c.CreatedAt)
	if taskID.Valid {
		v := uint64(taskID.Int64)
		c.TaskID = &v
	}
	if projectID.Valid {
		v := uint64(projectID.Int64)
		c.ProjectID = &v
	}
	return c, err
}

// CreateTx inserts a comment within an existing transaction and
// populates the generated ID.
func (r *CommentRepo) CreateTx(ctx context.Context, tx *sql.Tx, c *model.Comment) error {
	var taskID, projectID any
	if c.TaskID != nil {
		taskID = *c.TaskID
	}
	if c.ProjectID != nil {
		projectID = *c.ProjectID
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO comments (content, task_id, project_id, author_id) VALUES (?,?,?,?)",
		c.Content, taskID, projectID, c.AuthorID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetByID fetches a single comment.
func (r *CommentRepo) GetByID(ctx context.Context, id uint64) (model.Comment, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+commentCols+" FROM comments WHERE id=? LIMIT 1", id)
	return scanComment(row)
}

// ListByTask returns all comments on a task, oldest first.
func (r *CommentRepo) ListByTask(ctx context.Context, taskID uint64) ([]model.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+commentCols+" FROM comments WHERE task_id=? ORDER BY created_at", taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectComments(rows)
}

// ListByProject returns comments made directly on a project.
func (r *CommentRepo) ListByProject(ctx context.Context, projectID uint64) ([]model.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+commentCols+" FROM comments WHERE project_id=? ORDER BY created_at", projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectComments(rows)
}

func collectComments(rows *sql.Rows) ([]model.Comment, error) {
	var out []model.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateContentTx rewrites the comment body.
func (r *CommentRepo) UpdateContentTx(ctx context.Context, tx *sql.Tx, id uint64, content string) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE comments SET content=? WHERE id=?", content, id)
	return err
}

// Delete removes a comment.
func (r *CommentRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM comments WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

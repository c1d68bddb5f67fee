package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/mkravets/projecthub/internal/model"
)

// ProjectRepo provides persistence for projects and their assignee
// join table. Mutations that must appear in the activity log have *Tx
// variants so the caller can commit the entity change and the audit
// row atomically.
type ProjectRepo struct{ db *sql.DB }

func NewProjectRepo(db *sql.DB) *ProjectRepo { return &ProjectRepo{db: db} }

func (r *ProjectRepo) DB() *sql.DB { return r.db }

var ErrTitleExists = errors.New("project title already exists")

const projectCols = "id,title,description,start_date,deadline,status,creator_id,created_at,updated_at"

func scanProject(row interface{ Scan(...any) error }) (model.Project, error) {
	var p model.Project
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.StartDate, &p.Deadline,
		&p.Status, &p.CreatorID, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// CreateTx inserts a project and its assignee rows within an existing
// transaction, populating the generated ID on the record. The caller
// must commit or roll back.
func (r *ProjectRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Project, assignees []uint64) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO projects (title, description, start_date, deadline, status, creator_id) VALUES (?,?,?,?,?,?)",
		p.Title, p.Description, p.StartDate, p.Deadline, p.Status, p.CreatorID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrTitleExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	for _, uid := range assignees {
		if _, err := tx.ExecContext(ctx,
			"INSERT IGNORE INTO project_assignees (project_id, user_id) VALUES (?,?)",
			p.ID, uid); err != nil {
			return err
		}
	}
	return nil
}

// UpdateTx rewrites the mutable project columns.
func (r *ProjectRepo) UpdateTx(ctx context.Context, tx *sql.Tx, p *model.Project) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE projects SET title=?, description=?, start_date=?, deadline=?, status=? WHERE id=?",
		p.Title, p.Description, p.StartDate, p.Deadline, p.Status, p.ID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrTitleExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// zero rows can also mean an identical update; confirm existence
		var one int
		if err := tx.QueryRowContext(ctx, "SELECT 1 FROM projects WHERE id=?", p.ID).Scan(&one); err != nil {
			return sql.ErrNoRows
		}
	}
	return nil
}

// ReplaceAssigneesTx swaps the assignee set of a project.
func (r *ProjectRepo) ReplaceAssigneesTx(ctx context.Context, tx *sql.Tx, projectID uint64, assignees []uint64) error {
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM project_assignees WHERE project_id=?", projectID); err != nil {
		return err
	}
	for _, uid := range assignees {
		if _, err := tx.ExecContext(ctx,
			"INSERT IGNORE INTO project_assignees (project_id, user_id) VALUES (?,?)",
			projectID, uid); err != nil {
			return err
		}
	}
	return nil
}

// GetByID fetches a single project.
func (r *ProjectRepo) GetByID(ctx context.Context, id uint64) (model.Project, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+projectCols+" FROM projects WHERE id=? LIMIT 1", id)
	return scanProject(row)
}

// Exists reports whether the project row is still present.
func (r *ProjectRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM projects WHERE id=?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// ExistsTx is Exists within a caller-held transaction.
func (r *ProjectRepo) ExistsTx(ctx context.Context, tx *sql.Tx, id uint64) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, "SELECT 1 FROM projects WHERE id=?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// List returns every project, newest first.
func (r *ProjectRepo) List(ctx context.Context) ([]model.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+projectCols+" FROM projects ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProjects(rows)
}

// ListForUser returns projects the user created or is assigned to.
func (r *ProjectRepo) ListForUser(ctx context.Context, userID uint64) ([]model.Project, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT DISTINCT p.id,p.title,p.description,p.start_date,p.deadline,p.status,p.creator_id,p.created_at,p.updated_at
        FROM projects p
        LEFT JOIN project_assignees a ON a.project_id = p.id
        WHERE p.creator_id = ? OR a.user_id = ?
        ORDER BY p.created_at DESC`, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProjects(rows)
}

func collectProjects(rows *sql.Rows) ([]model.Project, error) {
	var out []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Assignees returns the ids of users assigned to the project.
func (r *ProjectRepo) Assignees(ctx context.Context, projectID uint64) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT user_id FROM project_assignees WHERE project_id=? ORDER BY user_id", projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Delete removes a project; tasks, comments, assignees and activity
// logs go with it through FK cascades.
func (r *ProjectRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

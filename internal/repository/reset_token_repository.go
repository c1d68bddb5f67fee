package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/mkravets/projecthub/internal/model"
)

// ResetTokenRepo persists password reset tokens. Like refresh tokens
// only the SHA-256 hash is stored; unlike them, consumed rows are
// deleted rather than flagged, and expired rows are purged lazily.
type ResetTokenRepo struct{ db *sql.DB }

func NewResetTokenRepo(db *sql.DB) *ResetTokenRepo { return &ResetTokenRepo{db: db} }

func (r *ResetTokenRepo) DB() *sql.DB { return r.db }

// Store inserts a reset token hash row.
func (r *ResetTokenRepo) Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO password_reset_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, exp)
	return err
}

// CountRecentForUser counts unexpired tokens issued to the user within
// the window. The forgot-password handler rate-limits on this count.
func (r *ResetTokenRepo) CountRecentForUser(ctx context.Context, userID uint64, window time.Duration) (int, error) {
	since := time.Now().UTC().Add(-window)
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM password_reset_tokens WHERE user_id=? AND created_at > ? AND expires_at > UTC_TIMESTAMP()",
		userID, since).Scan(&n)
	return n, err
}

// FindValid returns the owning user id for an unexpired token hash.
func (r *ResetTokenRepo) FindValid(ctx context.Context, tokenHash string) (uint64, error) {
	var pt model.PasswordResetToken
	err := r.db.QueryRowContext(ctx,
		"SELECT user_id, expires_at FROM password_reset_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&pt.UserID, &pt.ExpiresAt)
	if err != nil {
		return 0, ErrTokenInvalid
	}
	if time.Now().UTC().After(pt.ExpiresAt) {
		return 0, ErrTokenInvalid
	}
	return pt.UserID, nil
}

// DeleteByHash removes a consumed token.
func (r *ResetTokenRepo) DeleteByHash(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM password_reset_tokens WHERE token_hash=?", tokenHash)
	return err
}

// PurgeExpired deletes every expired token table-wide. Called
// opportunistically on each reset so the table never needs a cron job.
func (r *ResetTokenRepo) PurgeExpired(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM password_reset_tokens WHERE expires_at <= UTC_TIMESTAMP()")
	return err
}

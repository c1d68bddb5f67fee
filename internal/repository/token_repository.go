package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/mkravets/projecthub/internal/model"
)

// TokenRepo persists and validates refresh tokens (single 'token_hash'
// column; only hashes ever touch the database).
type TokenRepo struct{ db *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{db: db} }

func (r *TokenRepo) DB() *sql.DB { return r.db }

// StoreRefresh inserts a refresh token hash row.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, exp)
	return err
}

// StoreRefreshTx is StoreRefresh within a caller-held transaction.
func (r *TokenRepo) StoreRefreshTx(ctx context.Context, tx *sql.Tx, userID uint64, tokenHash string, exp time.Time) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, exp)
	return err
}

// LockForRotationTx loads a refresh token row FOR UPDATE and verifies
// it is unexpired, unused and unrevoked. Returns the owning user id.
// Any failed check surfaces as ErrTokenInvalid so callers cannot leak
// which condition rejected the token.
func (r *TokenRepo) LockForRotationTx(ctx context.Context, tx *sql.Tx, tokenHash string) (uint64, error) {
	var rt model.RefreshToken
	err := tx.QueryRowContext(ctx,
		"SELECT user_id, expires_at, used_at, revoked_at FROM refresh_tokens WHERE token_hash=? LIMIT 1 FOR UPDATE",
		tokenHash).Scan(&rt.UserID, &rt.ExpiresAt, &rt.UsedAt, &rt.RevokedAt)
	if err != nil {
		return 0, ErrTokenInvalid
	}
	if rt.UsedAt.Valid || rt.RevokedAt.Valid {
		return 0, ErrTokenInvalid
	}
	if time.Now().UTC().After(rt.ExpiresAt) {
		return 0, ErrTokenInvalid
	}
	return rt.UserID, nil
}

// ConsumeTx marks a token used and revoked. Combined with
// LockForRotationTx in one transaction this makes rotation a one-time
// chain: a replayed token hits the used_at guard and is rejected.
func (r *TokenRepo) ConsumeTx(ctx context.Context, tx *sql.Tx, tokenHash string) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE refresh_tokens SET used_at=UTC_TIMESTAMP(), revoked_at=UTC_TIMESTAMP() WHERE token_hash=? AND used_at IS NULL AND revoked_at IS NULL",
		tokenHash)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTokenInvalid
	}
	return nil
}

// DeleteByHash removes a token row outright; used by logout.
func (r *TokenRepo) DeleteByHash(ctx context.Context, tokenHash string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE token_hash=?", tokenHash)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTokenInvalid
	}
	return nil
}

// RevokeAllForUser revokes all of a user's active tokens.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE user_id=? AND revoked_at IS NULL",
		userID)
	return err
}

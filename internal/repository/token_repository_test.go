package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

const (
	lockRefreshQuery = "SELECT user_id, expires_at, used_at, revoked_at FROM refresh_tokens WHERE token_hash=? LIMIT 1 FOR UPDATE"
	consumeQuery     = "UPDATE refresh_tokens SET used_at=UTC_TIMESTAMP(), revoked_at=UTC_TIMESTAMP() WHERE token_hash=? AND used_at IS NULL AND revoked_at IS NULL"
	insertQuery      = "INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)"
)

func newMockTokenRepo(t *testing.T) (*TokenRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewTokenRepo(db), mock
}

func refreshRow(userID uint64, exp time.Time, usedAt, revokedAt interface{}) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"user_id", "expires_at", "used_at", "revoked_at"}).
		AddRow(userID, exp, usedAt, revokedAt)
}

// A full rotation consumes the old hash and stores the new one in the
// same transaction; presenting the consumed hash again must fail.
func TestRefreshRotationIsOneTime(t *testing.T) {
	repo, mock := newMockTokenRepo(t)
	ctx := context.Background()
	oldHash := "aaa111"
	newHash := "bbb222"
	exp := time.Now().UTC().Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(lockRefreshQuery).WithArgs(oldHash).
		WillReturnRows(refreshRow(7, exp, nil, nil))
	mock.ExpectExec(consumeQuery).WithArgs(oldHash).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertQuery).WithArgs(uint64(7), newHash, exp).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	tx, err := repo.DB().BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	uid, err := repo.LockForRotationTx(ctx, tx, oldHash)
	if err != nil || uid != 7 {
		t.Fatalf("lock: got uid=%d err=%v", uid, err)
	}
	if err := repo.ConsumeTx(ctx, tx, oldHash); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if err := repo.StoreRefreshTx(ctx, tx, uid, newHash, exp); err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	// Second exchange: the row now carries used_at and revoked_at.
	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery(lockRefreshQuery).WithArgs(oldHash).
		WillReturnRows(refreshRow(7, exp, now, now))
	mock.ExpectRollback()

	tx2, err := repo.DB().BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin replay: %v", err)
	}
	if _, err := repo.LockForRotationTx(ctx, tx2, oldHash); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("replayed token: got %v, want ErrTokenInvalid", err)
	}
	_ = tx2.Rollback()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLockForRotationRejectsExpired(t *testing.T) {
	repo, mock := newMockTokenRepo(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(lockRefreshQuery).WithArgs("old").
		WillReturnRows(refreshRow(7, time.Now().UTC().Add(-time.Minute), nil, nil))
	mock.ExpectRollback()

	tx, err := repo.DB().BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := repo.LockForRotationTx(ctx, tx, "old"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expired token: got %v, want ErrTokenInvalid", err)
	}
	_ = tx.Rollback()
}

func TestLockForRotationRejectsUnknownHash(t *testing.T) {
	repo, mock := newMockTokenRepo(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(lockRefreshQuery).WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "used_at", "revoked_at"}))
	mock.ExpectRollback()

	tx, err := repo.DB().BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := repo.LockForRotationTx(ctx, tx, "missing"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("unknown hash: got %v, want ErrTokenInvalid", err)
	}
	_ = tx.Rollback()
}

// ConsumeTx guards on used_at/revoked_at in the UPDATE itself, so a
// row consumed by a racing transaction reports zero rows affected.
func TestConsumeRejectsAlreadyConsumed(t *testing.T) {
	repo, mock := newMockTokenRepo(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(consumeQuery).WithArgs("old").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := repo.DB().BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := repo.ConsumeTx(ctx, tx, "old"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("consumed token: got %v, want ErrTokenInvalid", err)
	}
	_ = tx.Rollback()
}

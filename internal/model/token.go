package model

import (
	"database/sql"
	"time"
)

// RefreshToken models an entry in the `refresh_tokens` table. Each
// token belongs to a user; only the SHA-256 hash of the raw value is
// stored. A token is consumed exactly once: the rotation exchange
// marks it used and revoked in the same transaction that persists its
// successor, so a replay can never succeed.
type RefreshToken struct {
	ID        uint64       // refresh_tokens.id
	UserID    uint64       // refresh_tokens.user_id
	TokenHash string       // refresh_tokens.token_hash
	ExpiresAt time.Time    // refresh_tokens.expires_at
	UsedAt    sql.NullTime // refresh_tokens.used_at
	RevokedAt sql.NullTime // refresh_tokens.revoked_at
	CreatedAt time.Time    // refresh_tokens.created_at
}

// PasswordResetToken models the `password_reset_tokens` table. Rows
// are deleted on use and purged lazily once expired.
type PasswordResetToken struct {
	ID        uint64    // password_reset_tokens.id
	UserID    uint64    // password_reset_tokens.user_id
	TokenHash string    // password_reset_tokens.token_hash
	ExpiresAt time.Time // password_reset_tokens.expires_at
	CreatedAt time.Time // password_reset_tokens.created_at
}

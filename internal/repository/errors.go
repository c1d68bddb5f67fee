// Package repository holds the data-access layer: one thin struct per
// table over *sql.DB, with *Tx method variants for writes that must
// share a transaction. Sentinel errors let handlers map failures to
// HTTP statuses without inspecting driver errors; the uniqueness
// sentinels (ErrEmailExists, ErrTitleExists) live next to the repos
// that raise them.
package repository

import "errors"

// ErrTokenInvalid is returned when a refresh or reset token is
// unknown, expired, already used or revoked. Handlers respond with
// 401 (refresh) or 400 (reset) without detailing which check failed.
var ErrTokenInvalid = errors.New("token invalid")

package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/mkravets/projecthub/internal/config"
	"github.com/mkravets/projecthub/internal/mailer"
	"github.com/mkravets/projecthub/internal/repository"
)

const (
	userByEmailQuery = "SELECT id,name,email,password_hash,role,created_at,updated_at FROM users WHERE email=? LIMIT 1"
	countResetsQuery = "SELECT COUNT(*) FROM password_reset_tokens WHERE user_id=? AND created_at > ? AND expires_at > UTC_TIMESTAMP()"
	storeResetQuery  = "INSERT INTO password_reset_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)"
)

func newMockPasswordHandler(t *testing.T) (*PasswordHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	cfg := config.Config{ResetTTL: time.Hour, FrontendURL: "http://localhost:3000"}
	h := NewPasswordHandler(cfg,
		repository.NewUserRepo(db),
		repository.NewResetTokenRepo(db),
		repository.NewTokenRepo(db),
		mailer.New(config.SMTPConfig{}))
	return h, mock
}

func forgotRequest(email string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/password/forgot",
		strings.NewReader(`{"email":"`+email+`"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func dbUserRow() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "created_at", "updated_at"}).
		AddRow(int64(5), "Dana", "dana@example.com", "$2a$04$hash", "DEVELOPER", now, now)
}

func TestForgotFourthRequestInWindowIsRejected(t *testing.T) {
	h, mock := newMockPasswordHandler(t)

	mock.ExpectQuery(userByEmailQuery).WithArgs("dana@example.com").
		WillReturnRows(dbUserRow())
	mock.ExpectQuery(countResetsQuery).WithArgs(int64(5), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	c, rec := forgotRequest("dana@example.com")
	if err := h.Forgot(c); err != nil {
		t.Fatalf("Forgot returned error: %v", err)
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("got status %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestForgotUnderLimitIssuesToken(t *testing.T) {
	h, mock := newMockPasswordHandler(t)

	mock.ExpectQuery(userByEmailQuery).WithArgs("dana@example.com").
		WillReturnRows(dbUserRow())
	mock.ExpectQuery(countResetsQuery).WithArgs(int64(5), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec(storeResetQuery).
		WithArgs(int64(5), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	c, rec := forgotRequest("dana@example.com")
	if err := h.Forgot(c); err != nil {
		t.Fatalf("Forgot returned error: %v", err)
	}
	// The unconfigured mailer fails; the response must stay generic.
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), genericForgotMsg) {
		t.Fatalf("body %q missing generic message", rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestForgotUnknownEmailStaysGeneric(t *testing.T) {
	h, mock := newMockPasswordHandler(t)

	mock.ExpectQuery(userByEmailQuery).WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "created_at", "updated_at"}))

	c, rec := forgotRequest("ghost@example.com")
	if err := h.Forgot(c); err != nil {
		t.Fatalf("Forgot returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), genericForgotMsg) {
		t.Fatalf("body %q missing generic message", rec.Body.String())
	}
}

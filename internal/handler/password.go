package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mkravets/projecthub/internal/config"
	"github.com/mkravets/projecthub/internal/mailer"
	"github.com/mkravets/projecthub/internal/repository"
	"github.com/mkravets/projecthub/internal/utils"
)

// forgotWindow is the rolling window for the per-email request limit.
const (
	forgotWindow = time.Hour
	forgotLimit  = 3
)

// genericForgotMsg is returned whether or not the email exists, so the
// endpoint cannot be used to enumerate accounts.
const genericForgotMsg = "If that email is registered, a reset link has been sent."

// PasswordHandler implements the forgot/reset password flow.
type PasswordHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Resets *repository.ResetTokenRepo
	Tokens *repository.TokenRepo
	Mail   *mailer.Mailer
}

func NewPasswordHandler(cfg config.Config, u *repository.UserRepo, r *repository.ResetTokenRepo, t *repository.TokenRepo, m *mailer.Mailer) *PasswordHandler {
	return &PasswordHandler{Cfg: cfg, Users: u, Resets: r, Tokens: t, Mail: m}
}

type forgotReq struct {
	Email string `json:"email"`
}
type resetReq struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// Forgot issues a password reset token and mails it as a link. The
// response body is identical for known and unknown addresses; only a
// caller that already owns a registered email can observe the rate
// limit. At most three unexpired tokens may be issued per account per
// rolling hour, the fourth request gets a 429.
func (h *PasswordHandler) Forgot(c echo.Context) error {
	var req forgotReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusOK, echo.Map{"message": genericForgotMsg})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	n, err := h.Resets.CountRecentForUser(ctx, u.ID, forgotWindow)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if n >= forgotLimit {
		return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many reset requests, try again later"})
	}

	tok, err := utils.NewResetToken(h.Cfg.ResetTTL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	if err := h.Resets.Store(ctx, u.ID, utils.HashTokenRaw(tok.Raw), tok.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save token failed"})
	}

	// Delivery is best-effort; a mail failure must not change the response.
	if err := h.Mail.SendPasswordReset(u.Email, u.Name, h.Cfg.FrontendURL, tok.Raw); err != nil {
		c.Logger().Errorf("password reset mail to %s failed: %v", u.Email, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": genericForgotMsg})
}

// Reset consumes a reset token and rotates the account password. The
// consumed token is deleted and every expired token table-wide is
// purged on the way out.
func (h *PasswordHandler) Reset(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil ||
		strings.TrimSpace(req.Token) == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token and new_password required"})
	}
	hash := utils.HashTokenRaw(strings.TrimSpace(req.Token))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Resets.FindValid(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired token"})
	}
	if err := utils.CheckPasswordPolicy(req.NewPassword); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	if utils.VerifyPassword(u.PasswordHash, req.NewPassword) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "new password must differ from the current one"})
	}

	newHash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash failed"})
	}
	if err := h.Users.UpdatePasswordHash(ctx, u.ID, newHash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	// Existing sessions die with the old password.
	_ = h.Tokens.RevokeAllForUser(ctx, u.ID)

	if err := h.Resets.DeleteByHash(ctx, hash); err != nil {
		c.Logger().Warnf("delete consumed reset token: %v", err)
	}
	if err := h.Resets.PurgeExpired(ctx); err != nil {
		c.Logger().Warnf("purge expired reset tokens: %v", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

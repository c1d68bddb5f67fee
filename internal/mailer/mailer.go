// Package mailer sends plain HTML mail over SMTP with STARTTLS. All
// sends are best-effort from the application's point of view: callers
// log failures and move on, nothing user-facing depends on delivery.
package mailer

import (
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/mkravets/projecthub/internal/config"
)

// ErrNotConfigured is returned when SMTP settings are absent; callers
// treat it like any other send failure.
var ErrNotConfigured = errors.New("smtp not configured")

// Mailer wraps a gomail dialer with the configured From address.
type Mailer struct {
	cfg config.SMTPConfig
}

func New(cfg config.SMTPConfig) *Mailer { return &Mailer{cfg: cfg} }

// Send delivers one HTML message to a single recipient.
func (m *Mailer) Send(to, subject, htmlBody string) error {
	if m.cfg.Host == "" || m.cfg.From == "" {
		return ErrNotConfigured
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.User, m.cfg.Pass)
	return d.DialAndSend(msg)
}

// SendPasswordReset mails the raw reset token as a frontend link. The
// raw token exists only in this email; storage holds its hash.
func (m *Mailer) SendPasswordReset(to, name, frontendURL, rawToken string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", frontendURL, rawToken)
	body := fmt.Sprintf(
		`<p>Hi %s,</p>`+
			`<p>A password reset was requested for your account. Click the link below to choose a new password:</p>`+
			`<p><a href="%s">Reset your password</a></p>`+
			`<p>This link expires in 1 hour. If you did not request a reset, you can ignore this email.</p>`,
		name, link,
	)
	return m.Send(to, "Reset your password", body)
}

// SendTaskAssigned notifies a user that a task was assigned to them.
func (m *Mailer) SendTaskAssigned(to, name, actor, project, task string) error {
	body := fmt.Sprintf(
		`<p>Hi %s,</p>`+
			`<p>%s assigned you the task <b>%s</b> in project <b>%s</b>.</p>`,
		name, actor, task, project,
	)
	return m.Send(to, fmt.Sprintf("New task in %s", project), body)
}

// SendProjectAssigned notifies a user that they joined a project.
func (m *Mailer) SendProjectAssigned(to, name, actor, project string) error {
	body := fmt.Sprintf(
		`<p>Hi %s,</p>`+
			`<p>%s added you to the project <b>%s</b>.</p>`,
		name, actor, project,
	)
	return m.Send(to, fmt.Sprintf("You joined %s", project), body)
}

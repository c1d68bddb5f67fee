// Package policy centralizes the business rules that gate mutations.
// Handlers gather the facts (counts, records, the caller's identity)
// and ask this package for a verdict before touching the database, so
// rules like "never demote the last admin" live in exactly one place.
package policy

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mkravets/projecthub/internal/model"
)

var (
	// ErrLastAdmin blocks demoting or deleting the sole remaining admin.
	ErrLastAdmin = errors.New("cannot remove the last remaining admin")

	// ErrCommentTarget is returned when a comment does not reference
	// exactly one of a task or a project.
	ErrCommentTarget = errors.New("comment must reference exactly one of task or project")

	// ErrNotCommentOwner is returned when a non-author, non-admin user
	// tries to edit a comment.
	ErrNotCommentOwner = errors.New("only the author or an admin may edit this comment")

	// ErrProjectDates is returned when a project deadline does not fall
	// strictly after its start date.
	ErrProjectDates = errors.New("deadline must be after start date")

	// ErrNoAssignees is returned when a project would be left without
	// any assigned user.
	ErrNoAssignees = errors.New("project must have at least one assigned user")
)

// UserBlockedError reports why a user cannot be deleted. Reasons list
// each kind of work still tied to the account.
type UserBlockedError struct {
	Reasons []string
}

func (e *UserBlockedError) Error() string {
	return "user still has work: " + strings.Join(e.Reasons, "; ")
}

// CanChangeRole rejects demoting the last admin. adminCount is the
// current number of ADMIN users.
func CanChangeRole(target model.User, newRole string, adminCount int) error {
	if target.Role == model.RoleAdmin && newRole != model.RoleAdmin && adminCount <= 1 {
		return ErrLastAdmin
	}
	return nil
}

// CanDeleteUser rejects deleting the last admin or a user with
// remaining work. The returned *UserBlockedError lists every reason.
func CanDeleteUser(target model.User, adminCount, createdProjects, assignedProjects, assignedTasks int) error {
	if target.Role == model.RoleAdmin && adminCount <= 1 {
		return ErrLastAdmin
	}
	var reasons []string
	if createdProjects > 0 {
		reasons = append(reasons, fmt.Sprintf("%d created project(s)", createdProjects))
	}
	if assignedProjects > 0 {
		reasons = append(reasons, fmt.Sprintf("%d project assignment(s)", assignedProjects))
	}
	if assignedTasks > 0 {
		reasons = append(reasons, fmt.Sprintf("%d assigned task(s)", assignedTasks))
	}
	if len(reasons) > 0 {
		return &UserBlockedError{Reasons: reasons}
	}
	return nil
}

// CanEditComment allows the original author or any admin.
func CanEditComment(c model.Comment, actorID uint64, actorRole string) error {
	if c.AuthorID == actorID || actorRole == model.RoleAdmin {
		return nil
	}
	return ErrNotCommentOwner
}

// CheckCommentTarget enforces that exactly one of taskID and projectID
// is present.
func CheckCommentTarget(taskID, projectID *uint64) error {
	if (taskID == nil) == (projectID == nil) {
		return ErrCommentTarget
	}
	return nil
}

// CheckProjectDates enforces deadline strictly after start.
func CheckProjectDates(start, deadline time.Time) error {
	if !deadline.After(start) {
		return ErrProjectDates
	}
	return nil
}

// CheckAssignees enforces the non-empty assignee invariant.
func CheckAssignees(assignees []uint64) error {
	if len(assignees) == 0 {
		return ErrNoAssignees
	}
	return nil
}

// CanWriteTask reports whether the role may create or update tasks.
func CanWriteTask(role string) bool {
	return role == model.RoleAdmin || role == model.RoleManager
}

// CanDeleteTask reports whether the role may delete tasks.
func CanDeleteTask(role string) bool {
	return role == model.RoleAdmin
}

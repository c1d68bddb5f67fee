package policy

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mkravets/projecthub/internal/model"
)

func TestCanChangeRoleLastAdmin(t *testing.T) {
	admin := model.User{ID: 1, Role: model.RoleAdmin}
	if err := CanChangeRole(admin, model.RoleDeveloper, 1); err != ErrLastAdmin {
		t.Fatalf("expected ErrLastAdmin, got %v", err)
	}
	if err := CanChangeRole(admin, model.RoleDeveloper, 2); err != nil {
		t.Fatalf("demotion with a second admin should pass: %v", err)
	}
	// Keeping the admin role on the last admin is fine.
	if err := CanChangeRole(admin, model.RoleAdmin, 1); err != nil {
		t.Fatalf("no-op role change should pass: %v", err)
	}
	dev := model.User{ID: 2, Role: model.RoleDeveloper}
	if err := CanChangeRole(dev, model.RoleManager, 1); err != nil {
		t.Fatalf("non-admin change should pass: %v", err)
	}
}

func TestCanDeleteUser(t *testing.T) {
	admin := model.User{ID: 1, Role: model.RoleAdmin}
	if err := CanDeleteUser(admin, 1, 0, 0, 0); err != ErrLastAdmin {
		t.Fatalf("expected ErrLastAdmin, got %v", err)
	}

	dev := model.User{ID: 2, Role: model.RoleDeveloper}
	if err := CanDeleteUser(dev, 1, 0, 0, 0); err != nil {
		t.Fatalf("idle user should be deletable: %v", err)
	}

	err := CanDeleteUser(dev, 1, 2, 1, 3)
	var blocked *UserBlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected UserBlockedError, got %v", err)
	}
	if len(blocked.Reasons) != 3 {
		t.Fatalf("expected 3 reasons, got %v", blocked.Reasons)
	}
	if !strings.Contains(blocked.Error(), "2 created project(s)") {
		t.Fatalf("unexpected message: %s", blocked.Error())
	}
}

func TestCheckCommentTarget(t *testing.T) {
	one := uint64(1)
	if err := CheckCommentTarget(nil, nil); err != ErrCommentTarget {
		t.Fatalf("neither target: got %v", err)
	}
	if err := CheckCommentTarget(&one, &one); err != ErrCommentTarget {
		t.Fatalf("both targets: got %v", err)
	}
	if err := CheckCommentTarget(&one, nil); err != nil {
		t.Fatalf("task target: got %v", err)
	}
	if err := CheckCommentTarget(nil, &one); err != nil {
		t.Fatalf("project target: got %v", err)
	}
}

func TestCanEditComment(t *testing.T) {
	c := model.Comment{ID: 5, AuthorID: 10}
	if err := CanEditComment(c, 10, model.RoleDeveloper); err != nil {
		t.Fatalf("author should edit: %v", err)
	}
	if err := CanEditComment(c, 11, model.RoleAdmin); err != nil {
		t.Fatalf("admin should edit: %v", err)
	}
	if err := CanEditComment(c, 11, model.RoleManager); err != ErrNotCommentOwner {
		t.Fatalf("expected ErrNotCommentOwner, got %v", err)
	}
}

func TestCheckProjectDates(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if err := CheckProjectDates(start, start.AddDate(0, 1, 0)); err != nil {
		t.Fatalf("later deadline should pass: %v", err)
	}
	if err := CheckProjectDates(start, start); err != ErrProjectDates {
		t.Fatalf("equal dates: got %v", err)
	}
	if err := CheckProjectDates(start, start.AddDate(0, 0, -1)); err != ErrProjectDates {
		t.Fatalf("earlier deadline: got %v", err)
	}
}

func TestCheckAssignees(t *testing.T) {
	if err := CheckAssignees(nil); err != ErrNoAssignees {
		t.Fatalf("empty assignees: got %v", err)
	}
	if err := CheckAssignees([]uint64{3}); err != nil {
		t.Fatalf("non-empty assignees: got %v", err)
	}
}

func TestTaskRoleGates(t *testing.T) {
	if !CanWriteTask(model.RoleAdmin) || !CanWriteTask(model.RoleManager) {
		t.Fatal("admins and managers write tasks")
	}
	if CanWriteTask(model.RoleDeveloper) {
		t.Fatal("developers must not write tasks")
	}
	if !CanDeleteTask(model.RoleAdmin) {
		t.Fatal("admins delete tasks")
	}
	if CanDeleteTask(model.RoleManager) || CanDeleteTask(model.RoleDeveloper) {
		t.Fatal("only admins delete tasks")
	}
}

package model

import "testing"

func TestValidRole(t *testing.T) {
	for _, r := range []string{RoleAdmin, RoleManager, RoleDeveloper} {
		if !ValidRole(r) {
			t.Fatalf("%q should be valid", r)
		}
	}
	for _, r := range []string{"", "admin", "OWNER", "SUPERUSER"} {
		if ValidRole(r) {
			t.Fatalf("%q should be rejected", r)
		}
	}
}

func TestValidProjectStatus(t *testing.T) {
	for _, s := range []string{ProjectNotStarted, ProjectInProgress, ProjectOnHold, ProjectCompleted, ProjectCancelled, ProjectArchived} {
		if !ValidProjectStatus(s) {
			t.Fatalf("%q should be valid", s)
		}
	}
	if ValidProjectStatus("Done") || ValidProjectStatus("") {
		t.Fatal("unknown project statuses should be rejected")
	}
}

func TestValidTaskStatusAndPriority(t *testing.T) {
	for _, s := range []string{TaskToDo, TaskInProgress, TaskInReview, TaskDone} {
		if !ValidTaskStatus(s) {
			t.Fatalf("%q should be valid", s)
		}
	}
	if ValidTaskStatus("Completed") {
		t.Fatal("project-only status accepted for tasks")
	}
	for _, p := range []string{PriorityLow, PriorityMedium, PriorityHigh} {
		if !ValidPriority(p) {
			t.Fatalf("%q should be valid", p)
		}
	}
	if ValidPriority("Urgent") || ValidPriority("") {
		t.Fatal("unknown priorities should be rejected")
	}
}

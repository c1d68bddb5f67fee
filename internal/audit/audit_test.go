package audit

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTransition(t *testing.T) {
	got := Transition("To Do", "In Progress")
	if got != "To Do→In Progress" {
		t.Fatalf("unexpected transition encoding: %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("short string must pass through, got %q", got)
	}
	long := strings.Repeat("a", 300)
	if got := Truncate(long, ProjectActionLimit); len(got) != ProjectActionLimit {
		t.Fatalf("expected %d bytes, got %d", ProjectActionLimit, len(got))
	}
}

func TestTruncateKeepsUTF8Valid(t *testing.T) {
	// "é" is two bytes; a limit landing inside it must back off.
	s := "aé"
	got := Truncate(s, 2)
	if got != "a" {
		t.Fatalf("expected %q, got %q", "a", got)
	}
	if !utf8.ValidString(Truncate(strings.Repeat("é", 100), SnippetLimit)) {
		t.Fatal("truncation split a UTF-8 sequence")
	}
}

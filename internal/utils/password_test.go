package utils

import "testing"

func TestCheckPasswordPolicy(t *testing.T) {
	cases := []struct {
		name string
		pw   string
		ok   bool
	}{
		{"valid", "Str0ng!pass", true},
		{"too short", "Ab1!x", false},
		{"no upper", "weak1pass!", false},
		{"no lower", "WEAK1PASS!", false},
		{"no digit", "Weakpass!!", false},
		{"no special", "Weakpass11", false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckPasswordPolicy(tc.pw)
			if tc.ok && err != nil {
				t.Fatalf("expected %q to pass, got %v", tc.pw, err)
			}
			if !tc.ok && err != ErrWeakPassword {
				t.Fatalf("expected %q to fail with ErrWeakPassword, got %v", tc.pw, err)
			}
		})
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Str0ng!pass", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword(hash, "Str0ng!pass") {
		t.Fatal("correct password rejected")
	}
	if VerifyPassword(hash, "Wr0ng!pass") {
		t.Fatal("wrong password accepted")
	}
}

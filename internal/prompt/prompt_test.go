package prompt

import (
	"strings"
	"testing"
)

func TestGetPasswordFromEnv(t *testing.T) {
	t.Setenv(PasswordEnv, "")
	if got := GetPasswordFromEnv(); got != nil {
		t.Errorf("Expected nil password, got %q", got)
	}

	t.Setenv(PasswordEnv, "correcthorsebattery")
	got := GetPasswordFromEnv()
	if string(got) != "correcthorsebattery" {
		t.Errorf("Password mismatch: got %q", got)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes \n", true},
		{"y", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"sure\n", false},
	}
	for _, tt := range tests {
		if got := Confirm(strings.NewReader(tt.input), "Continue?"); got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

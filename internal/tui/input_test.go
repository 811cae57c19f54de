package tui

import (
	"strings"
	"testing"
)

func TestEditRuneAddCharacters(t *testing.T) {
	tests := []struct {
		name  string
		start string
		key   string
		want  string
	}{
		{"append to empty", "", "a", "a"},
		{"append letter", "ops@example.co", "m", "ops@example.com"},
		{"append digit", "abc", "1", "abc1"},
		{"append space", "hello", " ", "hello "},
		{"append multibyte", "caf", "é", "café"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := editRune(tc.start, tc.key)
			if got != tc.want {
				t.Errorf("editRune(%q, %q) = %q, want %q", tc.start, tc.key, got, tc.want)
			}
		})
	}
}

func TestEditRuneBackspace(t *testing.T) {
	tests := []struct {
		name  string
		start string
		want  string
	}{
		{"backspace on single char", "a", ""},
		{"backspace on longer string", "hello", "hell"},
		{"backspace on empty does nothing", "", ""},
		{"backspace removes whole rune", "café", "caf"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := editRune(tc.start, "backspace")
			if got != tc.want {
				t.Errorf("editRune(%q, backspace) = %q, want %q", tc.start, got, tc.want)
			}
		})
	}
}

func TestEditRuneIgnoresNamedKeys(t *testing.T) {
	for _, key := range []string{"enter", "esc", "tab", "up", "ctrl+c"} {
		if got := editRune("abc", key); got != "abc" {
			t.Errorf("editRune(abc, %q) = %q, want unchanged", key, got)
		}
	}
}

func TestEditRuneClampsLength(t *testing.T) {
	full := strings.Repeat("x", maxInputLen)
	if got := editRune(full, "y"); got != full {
		t.Errorf("editRune past maxInputLen grew to %d runes", len([]rune(got)))
	}
}

func TestEditDigits(t *testing.T) {
	tests := []struct {
		start string
		key   string
		want  string
	}{
		{"", "4", "4"},
		{"12", "3", "123"},
		{"12", "a", "12"},
		{"12", "-", "12"},
		{"12", "backspace", "1"},
		{"12", "enter", "12"},
		{strings.Repeat("9", 18), "9", strings.Repeat("9", 18)},
	}
	for _, tc := range tests {
		if got := editDigits(tc.start, tc.key); got != tc.want {
			t.Errorf("editDigits(%q, %q) = %q, want %q", tc.start, tc.key, got, tc.want)
		}
	}
}

func TestTruncateToHeight(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLines int
		want     string
	}{
		{"fits", "a\nb\n", 5, "a\nb\n"},
		{"truncated", "a\nb\nc\nd\n", 2, "a\nb\n"},
		{"zero limit returns input", "a\nb\n", 0, "a\nb\n"},
		{"no newlines", "abc", 1, "abc"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := truncateToHeight(tc.input, tc.maxLines); got != tc.want {
				t.Errorf("truncateToHeight(%q, %d) = %q, want %q", tc.input, tc.maxLines, got, tc.want)
			}
		})
	}
}

func TestRenderFieldMasksPassword(t *testing.T) {
	out := renderField("password", "hunter2", "", false, true)
	if strings.Contains(out, "hunter2") {
		t.Errorf("masked field leaked its value: %q", out)
	}
	if !strings.Contains(out, strings.Repeat("•", 7)) {
		t.Errorf("masked field = %q, want 7 bullets", out)
	}
}

func TestRenderFieldPlaceholder(t *testing.T) {
	out := renderField("email", "", "staff@example.com", false, false)
	if !strings.Contains(out, "staff@example.com") {
		t.Errorf("empty unfocused field should show placeholder, got %q", out)
	}
}

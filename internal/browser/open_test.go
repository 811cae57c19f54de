package browser

import (
	"errors"
	"runtime"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		ref     string
		want    string
		wantErr bool
	}{
		{"relative media path", "https://admin.example.com", "/media/tickets/a.png", "https://admin.example.com/media/tickets/a.png", false},
		{"absolute https", "https://admin.example.com", "https://cdn.example.com/a.png", "https://cdn.example.com/a.png", false},
		{"base with path", "https://admin.example.com/console/", "media/a.png", "https://admin.example.com/console/media/a.png", false},
		{"javascript scheme", "https://admin.example.com", "javascript:alert(1)", "", true},
		{"file scheme", "https://admin.example.com", "file:///etc/passwd", "", true},
		{"empty", "https://admin.example.com", "  ", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Resolve(tc.base, tc.ref)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Resolve(%q, %q) = %q, want error", tc.base, tc.ref, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got != tc.want {
				t.Errorf("Resolve(%q, %q) = %q, want %q", tc.base, tc.ref, got, tc.want)
			}
		})
	}
}

func TestOpenAttachment(t *testing.T) {
	switch runtime.GOOS {
	case "darwin", "linux", "windows":
	default:
		t.Skip("no opener on " + runtime.GOOS)
	}

	var gotArgs []string
	orig := start
	start = func(name string, args ...string) error {
		gotArgs = append([]string{name}, args...)
		return nil
	}
	t.Cleanup(func() { start = orig })

	if err := OpenAttachment("https://admin.example.com", "/media/tickets/a.png"); err != nil {
		t.Fatalf("OpenAttachment: %v", err)
	}
	if len(gotArgs) == 0 || gotArgs[len(gotArgs)-1] != "https://admin.example.com/media/tickets/a.png" {
		t.Errorf("opener args = %v", gotArgs)
	}

	gotArgs = nil
	err := OpenAttachment("https://admin.example.com", "javascript:alert(1)")
	if !errors.Is(err, ErrUnsupportedScheme) {
		t.Errorf("err = %v, want ErrUnsupportedScheme", err)
	}
	if gotArgs != nil {
		t.Errorf("opener ran for rejected link: %v", gotArgs)
	}
}

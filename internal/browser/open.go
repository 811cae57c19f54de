// Package browser opens ticket attachments in the operator's browser.
package browser

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
)

// ErrUnsupportedScheme is returned for attachment links that are not http(s).
var ErrUnsupportedScheme = errors.New("attachment link is not http(s)")

// start launches the platform opener. Replaced in tests.
var start = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Resolve turns an attachment reference into an absolute URL. References
// served by the backend are usually relative ("/media/tickets/x.png") and
// are resolved against baseURL. Only http and https results are accepted.
func Resolve(baseURL, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", errors.New("empty attachment link")
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("browser.Resolve: %w", err)
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("browser.Resolve: %w", err)
	}
	u := base.ResolveReference(r)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrUnsupportedScheme
	}
	return u.String(), nil
}

// Open opens the specified URL in the user's default browser.
func Open(rawURL string) error {
	switch runtime.GOOS {
	case "darwin":
		return start("open", rawURL)
	case "linux":
		return start("xdg-open", rawURL)
	case "windows":
		return start("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
}

// OpenAttachment resolves ref against baseURL and opens it.
func OpenAttachment(baseURL, ref string) error {
	u, err := Resolve(baseURL, ref)
	if err != nil {
		return err
	}
	return Open(u)
}

package session

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"
)

// Fetcher issues authenticated requests. *Session implements it.
type Fetcher interface {
	Fetch(ctx context.Context, r Request) (*http.Response, error)
}

// Request is one call made through Fetch. Body and Form are kept as values
// so the request can be replayed after a refresh.
type Request struct {
	Method string // defaults to GET
	Path   string // joined to the base URL
	Header http.Header
	Body   []byte
	Form   *Form
}

// Form is a multipart/form-data body. Its Content-Type, boundary included,
// is produced each time it is encoded.
type Form struct {
	fields []formField
	files  []formFile
}

type formField struct{ name, value string }

type formFile struct {
	field, filename string
	data            []byte
}

// AddField appends a text field.
func (f *Form) AddField(name, value string) {
	f.fields = append(f.fields, formField{name, value})
}

// AddFile appends a file part.
func (f *Form) AddFile(field, filename string, data []byte) {
	f.files = append(f.files, formFile{field, filename, data})
}

func (f *Form) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, fld := range f.fields {
		if err := w.WriteField(fld.name, fld.value); err != nil {
			return nil, "", err
		}
	}
	for _, file := range f.files {
		part, err := w.CreateFormFile(file.field, file.filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(file.data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// Fetch sends r with the current bearer. A 401 triggers one silent refresh;
// if it succeeds the request is retried exactly once with the new token and
// that response is returned. If the refresh fails the original 401 response
// is returned untouched. Other statuses pass through.
func (s *Session) Fetch(ctx context.Context, r Request) (*http.Response, error) {
	resp, reqID, err := s.attempt(ctx, r, s.AccessToken())
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	fresh, rerr := s.SilentRefresh(ctx)
	if rerr != nil {
		s.log.Info("refresh after 401 failed", "path", r.Path, "request_id", reqID, "err", rerr)
		return resp, nil
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxAuthBody))
	resp.Body.Close()

	retry, retryID, err := s.attempt(ctx, r, fresh)
	if err != nil {
		return nil, err
	}
	s.log.Info("retried after refresh", "path", r.Path, "request_id", reqID, "retry_id", retryID, "status", retry.StatusCode)
	return retry, nil
}

func (s *Session) attempt(ctx context.Context, r Request, token string) (*http.Response, string, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	header := r.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}

	var body io.Reader
	switch {
	case r.Form != nil:
		data, contentType, err := r.Form.encode()
		if err != nil {
			return nil, "", fmt.Errorf("session.Fetch: encode form: %w", err)
		}
		header.Set("Content-Type", contentType)
		body = bytes.NewReader(data)
	default:
		if header.Get("Content-Type") == "" {
			header.Set("Content-Type", "application/json")
		}
		if r.Body != nil {
			body = bytes.NewReader(r.Body)
		}
	}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	reqID := uuid.NewString()
	header.Set("X-Request-ID", reqID)

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+r.Path, body)
	if err != nil {
		return nil, reqID, fmt.Errorf("session.Fetch: %w", err)
	}
	req.Header = header

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, reqID, fmt.Errorf("session.Fetch %s %s: %w", method, r.Path, err)
	}
	s.log.Debug("api request", "method", method, "path", r.Path, "status", resp.StatusCode, "request_id", reqID)
	return resp, reqID, nil
}

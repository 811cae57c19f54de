// Package session owns the staff console's bearer tokens: it persists them,
// refreshes the access token before it expires and re-authenticates once
// when the backend answers 401.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/naveenspark/casedesk/pkg/domain"
	"golang.org/x/sync/singleflight"
)

const (
	loginPath   = "/api/auth/login/"
	refreshPath = "/api/auth/refresh/"
	mePath      = "/api/auth/me/"

	// refreshLead is how long before expiry the silent refresh fires.
	refreshLead = 30 * time.Second

	storeTimeout   = 5 * time.Second
	maxAuthBody    = 1 << 20
	defaultTimeout = 30 * time.Second
)

// State is the externally visible authentication state.
type State int

const (
	Anonymous State = iota
	Bootstrapping
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Bootstrapping:
		return "bootstrapping"
	case Authenticated:
		return "authenticated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Timer is the handle returned by Options.AfterFunc. *time.Timer satisfies it.
type Timer interface {
	Stop() bool
}

// Options tunes a Session. The zero value is usable.
type Options struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
	// Now and AfterFunc default to time.Now and time.AfterFunc.
	Now       func() time.Time
	AfterFunc func(d time.Duration, f func()) Timer
}

// Session holds the staff credentials for one console process.
type Session struct {
	baseURL   string
	http      *http.Client
	store     Store
	log       *slog.Logger
	now       func() time.Time
	afterFunc func(time.Duration, func()) Timer

	refreshGroup singleflight.Group

	// storeMu orders token writes against Logout's deletes.
	storeMu sync.Mutex

	mu            sync.Mutex
	access        string
	refresh       string
	user          *domain.User
	bootstrapping bool
	timer         Timer
	listeners     []func(State)
	lastState     State
	epoch         uint64 // advanced by Logout
}

// New reads the persisted tokens from store. Call Bootstrap to resolve the
// identity behind them.
func New(ctx context.Context, baseURL string, store Store, opts Options) (*Session, error) {
	if store == nil {
		return nil, errors.New("session.New: nil store")
	}
	s := &Session{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      opts.HTTPClient,
		store:     store,
		log:       opts.Logger,
		now:       opts.Now,
		afterFunc: opts.AfterFunc,
	}
	if s.http == nil {
		s.http = &http.Client{Timeout: defaultTimeout}
	}
	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.afterFunc == nil {
		s.afterFunc = func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
	}

	access, err := store.Get(ctx, AccessKey)
	if err != nil {
		return nil, fmt.Errorf("session.New: %w", err)
	}
	refresh, err := store.Get(ctx, RefreshKey)
	if err != nil {
		return nil, fmt.Errorf("session.New: %w", err)
	}
	s.access = access
	s.refresh = refresh
	s.bootstrapping = access != ""
	s.lastState = s.stateLocked()
	return s, nil
}

// OnChange registers fn to run after every state transition. fn runs on the
// goroutine that caused the change and must not block.
func (s *Session) OnChange(fn func(State)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// State returns the current authentication state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	switch {
	case s.access == "":
		return Anonymous
	case s.user.Privileged():
		return Authenticated
	}
	return Bootstrapping
}

// IsAuthenticated reports whether a staff identity backs the current token.
func (s *Session) IsAuthenticated() bool {
	return s.State() == Authenticated
}

// User returns a copy of the loaded identity, or nil.
func (s *Session) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// AccessToken returns the current bearer, possibly "".
func (s *Session) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access
}

// Bootstrapping reports whether the startup identity check is running.
func (s *Session) Bootstrapping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bootstrapping
}

func (s *Session) notify() {
	s.mu.Lock()
	st := s.stateLocked()
	if st == s.lastState {
		s.mu.Unlock()
		return
	}
	s.lastState = st
	listeners := append([]func(State){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(st)
	}
}

// Login exchanges credentials for a token pair and loads the identity.
func (s *Session) Login(ctx context.Context, email, password string) error {
	epoch := s.currentEpoch()
	var out struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
		Detail  string `json:"detail"`
		Error   string `json:"error"`
	}
	status, err := s.postJSON(ctx, loginPath, map[string]string{"email": email, "password": password}, &out)
	if err != nil {
		return &AuthenticationError{Message: "login failed", Cause: err}
	}
	if status < 200 || status >= 300 || out.Access == "" {
		msg := out.Detail
		if msg == "" {
			msg = out.Error
		}
		if msg == "" {
			msg = "login failed"
		}
		s.log.Info("login rejected", "email", email, "status", status)
		return &AuthenticationError{Message: msg}
	}

	if !s.adoptTokens(ctx, epoch, out.Access, out.Refresh, true) {
		s.log.Info("login discarded after logout", "email", email)
		return &AuthenticationError{Message: "signed out during login"}
	}
	s.ScheduleRefresh(out.Access)
	s.log.Info("login accepted", "email", email)
	return s.LoadUser(ctx, out.Access)
}

// Bootstrap resolves the persisted token into an identity. It is a no-op
// when nothing is persisted. An access token that has already expired is
// refreshed first.
func (s *Session) Bootstrap(ctx context.Context) error {
	s.mu.Lock()
	access, refresh := s.access, s.refresh
	if access == "" {
		s.bootstrapping = false
		s.mu.Unlock()
		return nil
	}
	s.bootstrapping = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.bootstrapping = false
		s.mu.Unlock()
		s.notify()
	}()

	if exp, ok := ExpiryOf(access); ok && !exp.After(s.now()) && refresh != "" {
		fresh, err := s.SilentRefresh(ctx)
		if err != nil {
			return err
		}
		access = fresh
	} else {
		s.ScheduleRefresh(access)
	}
	return s.LoadUser(ctx, access)
}

// LoadUser fetches the identity behind token. Anything other than a staff or
// superuser identity ends the session.
func (s *Session) LoadUser(ctx context.Context, token string) error {
	if token == "" {
		return &AuthenticationError{Message: "no access token"}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+mePath, nil)
	if err != nil {
		return fmt.Errorf("session.LoadUser: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := s.http.Do(req)
	if err != nil {
		s.Logout()
		return &AuthenticationError{Message: "identity check failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.Logout()
		return &AuthenticationError{Message: fmt.Sprintf("identity check failed: HTTP %d", resp.StatusCode)}
	}
	var u domain.User
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxAuthBody)).Decode(&u); err != nil {
		s.Logout()
		return &AuthenticationError{Message: "identity check failed", Cause: err}
	}
	if !u.Privileged() {
		s.log.Warn("non-staff account rejected", "user_id", u.ID)
		s.Logout()
		return &AuthenticationError{Message: "account is not staff"}
	}

	s.mu.Lock()
	current := s.access == token
	if current {
		s.user = &u
	}
	s.mu.Unlock()
	if !current {
		return &AuthenticationError{Message: "session ended"}
	}
	s.notify()
	return nil
}

// ScheduleRefresh replaces the pending refresh timer with one firing 30s
// before token expires. Tokens without a readable exp get no timer.
func (s *Session) ScheduleRefresh(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	exp, ok := ExpiryOf(token)
	if !ok {
		s.log.Debug("access token has no expiry, refresh not scheduled")
		return
	}
	delay := exp.Add(-refreshLead).Sub(s.now())
	if delay < 0 {
		delay = 0
	}
	s.timer = s.afterFunc(delay, s.onTimer)
	s.log.Debug("refresh scheduled", "in", delay.Round(time.Second))
}

func (s *Session) onTimer() {
	timeout := s.http.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if _, err := s.SilentRefresh(ctx); err != nil {
		s.log.Warn("scheduled refresh failed", "err", err)
	}
}

// SilentRefresh exchanges the refresh token for a new access token.
// Concurrent callers share a single exchange. Any failure logs out.
func (s *Session) SilentRefresh(ctx context.Context) (string, error) {
	v, err, shared := s.refreshGroup.Do("refresh", func() (any, error) {
		return s.refreshOnce(ctx)
	})
	if shared {
		s.log.Debug("joined in-flight refresh")
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *Session) refreshOnce(ctx context.Context) (string, error) {
	s.mu.Lock()
	refresh, epoch := s.refresh, s.epoch
	s.mu.Unlock()
	if refresh == "" {
		s.Logout()
		return "", &AuthenticationError{Message: "session expired", Cause: ErrNoRefreshToken}
	}

	var out struct {
		Access string `json:"access"`
	}
	status, err := s.postJSON(ctx, refreshPath, map[string]string{"refresh": refresh}, &out)
	switch {
	case err != nil:
		s.log.Warn("refresh failed", "err", err)
		s.Logout()
		return "", &AuthenticationError{Message: "session expired", Cause: err}
	case status < 200 || status >= 300 || out.Access == "":
		s.log.Warn("refresh rejected", "status", status)
		s.Logout()
		return "", &AuthenticationError{Message: "session expired"}
	}

	if !s.adoptTokens(ctx, epoch, out.Access, "", false) {
		s.log.Info("refresh result discarded after logout")
		return "", &AuthenticationError{Message: "session ended"}
	}
	s.ScheduleRefresh(out.Access)
	s.log.Info("access token refreshed")
	s.notify()
	return out.Access, nil
}

// Logout clears tokens, identity and the pending timer. Safe to call twice.
func (s *Session) Logout() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	wasSignedIn := s.access != "" || s.refresh != ""
	s.access, s.refresh, s.user = "", "", nil
	s.epoch++
	s.mu.Unlock()

	s.deleteTokens()
	if wasSignedIn {
		s.log.Info("logged out")
	}
	s.notify()
}

// Close stops the refresh timer. Tokens stay persisted.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) deleteTokens() {
	s.storeMu.Lock()
	defer s.storeMu.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	for _, key := range []string{AccessKey, RefreshKey} {
		if err := s.store.Delete(ctx, key); err != nil {
			s.log.Warn("token delete failed", "key", key, "err", err)
		}
	}
}

func (s *Session) currentEpoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// adoptTokens installs and persists access, and refresh when rotate is set
// (an empty refresh then clears the old one). It reports false without
// touching anything when a Logout ran since epoch was read. A store failure
// is logged; the in-memory session still uses the new tokens.
func (s *Session) adoptTokens(ctx context.Context, epoch uint64, access, refresh string, rotate bool) bool {
	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return false
	}
	s.access = access
	if rotate {
		s.refresh = refresh
	}
	s.mu.Unlock()

	if err := s.store.Set(ctx, AccessKey, access); err != nil {
		s.log.Warn("token persist failed", "key", AccessKey, "err", err)
	}
	if !rotate {
		return true
	}
	var err error
	if refresh != "" {
		err = s.store.Set(ctx, RefreshKey, refresh)
	} else {
		err = s.store.Delete(ctx, RefreshKey)
	}
	if err != nil {
		s.log.Warn("token persist failed", "key", RefreshKey, "err", err)
	}
	return true
}

// postJSON posts body without a bearer and decodes the reply into out on a
// best-effort basis. It returns the status code.
func (s *Session) postJSON(ctx context.Context, path string, body any, out any) (int, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_ = json.NewDecoder(io.LimitReader(resp.Body, maxAuthBody)).Decode(out)
	return resp.StatusCode, nil
}

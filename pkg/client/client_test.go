package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/naveenspark/casedesk/internal/apitest"
	"github.com/naveenspark/casedesk/pkg/domain"
	"github.com/naveenspark/casedesk/pkg/session"
)

// newClient returns a client whose session holds no token.
func newClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	s, err := session.New(context.Background(), baseURL, session.NewFileStore(t.TempDir()), session.Options{})
	if err != nil {
		t.Fatalf("session.New() error: %v", err)
	}
	t.Cleanup(s.Close)
	return New(s)
}

// newBackendClient logs a staff member into a fake backend.
func newBackendClient(t *testing.T) (*Client, *apitest.Server) {
	t.Helper()
	srv := apitest.New(t)
	staff := domain.User{ID: 1, Email: "ops@example.com", IsStaff: true}
	srv.AddAccount(staff.Email, "pw", staff)
	s, err := session.New(context.Background(), srv.URL, session.NewFileStore(t.TempDir()), session.Options{})
	if err != nil {
		t.Fatalf("session.New() error: %v", err)
	}
	t.Cleanup(s.Close)
	if err := s.Login(context.Background(), staff.Email, "pw"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	return New(s), srv
}

func TestListUsers(t *testing.T) {
	c, srv := newBackendClient(t)
	srv.SetUsers([]domain.UserRow{
		{User: domain.User{ID: 2, Email: "a@example.com"}, Profile: domain.Profile{BalanceUSD: domain.NewNumber(12.5)}},
		{User: domain.User{ID: 3, Email: "b@example.com"}},
	})

	rows, err := c.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers() error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if got := domain.FormatUSD(rows[0].Profile.BalanceUSD); got != "12.50" {
		t.Errorf("balance = %q, want 12.50", got)
	}
}

func TestListUsers_Paginated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/admin/users/" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"count":1,"results":[{"id":9,"email":"p@example.com","profile":{"balance_usd":"3"}}]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	rows, err := newClient(t, srv.URL).ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers() error: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != 9 {
		t.Fatalf("rows = %+v", rows)
	}
	if got := domain.FormatUSD(rows[0].Profile.BalanceUSD); got != "3.00" {
		t.Errorf("balance = %q, want 3.00", got)
	}
}

func TestGetUserDetails(t *testing.T) {
	c, srv := newBackendClient(t)
	srv.SetUserDetails(5, domain.UserDetails{
		User: domain.UserRow{User: domain.User{ID: 5, Username: "lucky"}},
		Spins: []domain.SpinSummary{
			{ID: 41, Case: domain.CaseRef{Name: "Gold"}, Prize: domain.PrizeRef{Title: "Watch"}},
		},
	})

	d, err := c.GetUserDetails(context.Background(), 5)
	if err != nil {
		t.Fatalf("GetUserDetails() error: %v", err)
	}
	if d.User.Username != "lucky" || len(d.Spins) != 1 || d.Spins[0].Case.Name != "Gold" {
		t.Errorf("details = %+v", d)
	}
}

func TestGetUserDetails_NotFound(t *testing.T) {
	c, _ := newBackendClient(t)
	_, err := c.GetUserDetails(context.Background(), 404)
	if !IsStatus(err, http.StatusNotFound) {
		t.Fatalf("error = %v, want HTTP 404", err)
	}
	if !strings.Contains(err.Error(), "Not found.") {
		t.Errorf("error = %q, want backend detail", err)
	}
	if !strings.HasPrefix(err.Error(), "client.GetUserDetails:") {
		t.Errorf("error = %q, want method prefix", err)
	}
}

func TestTicketLifecycle(t *testing.T) {
	c, srv := newBackendClient(t)
	srv.SetTickets([]domain.Ticket{
		{ID: 4, Subject: "Withdrawal", Status: domain.TicketOpen, UnreadForStaff: true, UnreadCountForStaff: 2},
	})
	ctx := context.Background()

	tickets, err := c.ListTickets(ctx)
	if err != nil {
		t.Fatalf("ListTickets() error: %v", err)
	}
	if len(tickets) != 1 || !tickets[0].UnreadForStaff {
		t.Fatalf("tickets = %+v", tickets)
	}

	if err := c.MarkTicketRead(ctx, 4); err != nil {
		t.Fatalf("MarkTicketRead() error: %v", err)
	}
	msg, err := c.ReplyTicket(ctx, 4, "Paid out", &Attachment{Name: "proof.png", Data: []byte{0x89, 'P'}})
	if err != nil {
		t.Fatalf("ReplyTicket() error: %v", err)
	}
	if msg.Body != "Paid out" || msg.Attachment != "/media/tickets/proof.png" {
		t.Errorf("message = %+v", msg)
	}
	if err := c.CloseTicket(ctx, 4); err != nil {
		t.Fatalf("CloseTicket() error: %v", err)
	}

	got, _ := srv.Ticket(4)
	if got.UnreadForStaff || got.UnreadCountForStaff != 0 {
		t.Error("ticket still unread")
	}
	if !got.Closed() {
		t.Errorf("status = %q, want closed", got.Status)
	}
	if got.LatestAttachment() != "/media/tickets/proof.png" {
		t.Errorf("LatestAttachment() = %q", got.LatestAttachment())
	}
}

func TestReplyTicket_WithoutAttachment(t *testing.T) {
	c, srv := newBackendClient(t)
	srv.SetTickets([]domain.Ticket{{ID: 1, Status: domain.TicketOpen}})

	if _, err := c.ReplyTicket(context.Background(), 1, "hello", nil); err != nil {
		t.Fatalf("ReplyTicket() error: %v", err)
	}
	if up := srv.LastUpload(); up == nil || up.Body != "hello" || up.Filename != "" {
		t.Errorf("upload = %+v", up)
	}
}

func TestClient_RefreshesExpiredToken(t *testing.T) {
	c, srv := newBackendClient(t)
	srv.SetUsers([]domain.UserRow{{User: domain.User{ID: 2}}})
	srv.RevokeAccess()

	if _, err := c.ListUsers(context.Background()); err != nil {
		t.Fatalf("ListUsers() error: %v", err)
	}
	if got := srv.Hits(http.MethodPost, "/api/auth/refresh/"); got != 1 {
		t.Errorf("refresh calls = %d, want 1", got)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantMsg   string
		malformed bool
		transient bool
	}{
		{"error field", 400, `{"error":"bad id"}`, "bad id", false, true},
		{"detail field", 403, `{"detail":"forbidden"}`, "forbidden", false, true},
		{"plain text", 502, "bad gateway\n", "bad gateway", false, true},
		{"empty body", 500, "", "Internal Server Error", false, true},
		{"bad json", 200, "{not json", "", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			rec.WriteHeader(tt.status)
			rec.WriteString(tt.body) //nolint:errcheck

			var out map[string]any
			err := Decode(rec.Result(), &out)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, ErrMalformedResponse); got != tt.malformed {
				t.Errorf("malformed = %v, want %v", got, tt.malformed)
			}
			if got := IsTransient(err); got != tt.transient {
				t.Errorf("IsTransient() = %v, want %v", got, tt.transient)
			}
			var httpErr *HTTPError
			if tt.wantMsg != "" && (!errors.As(err, &httpErr) || httpErr.Message != tt.wantMsg) {
				t.Errorf("error = %v, want message %q", err, tt.wantMsg)
			}
		})
	}
}

func TestDecode_Success(t *testing.T) {
	rec := httptest.NewRecorder()
	json.NewEncoder(rec).Encode(domain.User{ID: 3, Email: "x@example.com"}) //nolint:errcheck

	var u domain.User
	if err := Decode(rec.Result(), &u); err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if u.ID != 3 {
		t.Errorf("ID = %d, want 3", u.ID)
	}
}

func TestIsTransient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newClient(t, url)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := c.ListTickets(ctx)
	if !IsTransient(err) {
		t.Errorf("IsTransient(%v) = false, want true", err)
	}
	if IsTransient(nil) {
		t.Error("IsTransient(nil) = true")
	}
}

package tui

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/casedesk/pkg/client"
	"github.com/naveenspark/casedesk/pkg/domain"
)

func testUserRows() []domain.UserRow {
	return []domain.UserRow{
		{User: domain.User{ID: 1, Email: "ops@example.com", IsStaff: true}},
		{User: domain.User{ID: 2, Email: "root@example.com", IsSuperuser: true}},
		{User: domain.User{ID: 42, Email: "player@example.com", Username: "lucky"}, Profile: domain.Profile{BalanceUSD: domain.NewNumber(12.5)}},
		{User: domain.User{ID: 43, Email: "whale@example.com", Username: "moby"}},
	}
}

func loadedUsers() usersModel {
	m := newUsersModel(nil)
	m, _ = m.Update(usersLoadedMsg{users: testUserRows()})
	return m
}

func TestUsersHidesStaff(t *testing.T) {
	m := loadedUsers()
	if len(m.filtered) != 2 {
		t.Fatalf("filtered = %d rows, want 2 customers", len(m.filtered))
	}
	view := m.View()
	if strings.Contains(view, "ops@example.com") || strings.Contains(view, "root@example.com") {
		t.Errorf("staff listed in users view:\n%s", view)
	}
	if !strings.Contains(view, "$12.50") {
		t.Errorf("balance not rendered:\n%s", view)
	}
}

func TestUsersSearch(t *testing.T) {
	tests := []struct {
		query string
		want  []int64
	}{
		{"moby", []int64{43}},
		{"PLAYER", []int64{42}},
		{"42", []int64{42}},
		{"example", []int64{42, 43}},
		{"nobody", nil},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			m := loadedUsers()
			m, _ = m.Update(keyRunes("/"))
			for _, r := range tc.query {
				m, _ = m.Update(keyRunes(string(r)))
			}
			var got []int64
			for _, u := range m.filtered {
				got = append(got, u.ID)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("query %q matched %v, want %v", tc.query, got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("query %q matched %v, want %v", tc.query, got, tc.want)
				}
			}
		})
	}
}

func TestUsersSearchEscClears(t *testing.T) {
	m := loadedUsers()
	m, _ = m.Update(keyRunes("/"))
	m, _ = m.Update(keyRunes("z"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.searching || m.query != "" || len(m.filtered) != 2 {
		t.Errorf("searching=%v query=%q filtered=%d after esc", m.searching, m.query, len(m.filtered))
	}
}

func TestUsersEnterOpensDetails(t *testing.T) {
	m := loadedUsers()
	m, _ = m.Update(keyRunes("j"))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected showUserMsg command")
	}
	msg, ok := cmd().(showUserMsg)
	if !ok || msg.id != 43 {
		t.Errorf("cmd() = %#v, want showUserMsg{id: 43}", cmd())
	}
}

func TestUsersLoadError(t *testing.T) {
	m := newUsersModel(nil)
	m, _ = m.Update(usersLoadedMsg{err: errors.New("boom")})
	if !strings.Contains(m.View(), "could not load users: boom") {
		t.Errorf("view missing error:\n%s", m.View())
	}
}

func TestUsersLoadErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
		hint bool
	}{
		{"server error", fmt.Errorf("client.ListUsers: %w", &client.HTTPError{StatusCode: http.StatusBadGateway, Message: "bad gateway"}), "HTTP 502", true},
		{"forbidden", fmt.Errorf("client.ListUsers: %w", &client.HTTPError{StatusCode: http.StatusForbidden, Message: "nope"}), "not allowed for this account", false},
		{"malformed", fmt.Errorf("client.ListUsers: %w", client.ErrMalformedResponse), "unexpected response from the server", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := newUsersModel(nil)
			m, _ = m.Update(usersLoadedMsg{err: tc.err})
			view := m.View()
			if !strings.Contains(view, tc.want) {
				t.Errorf("view missing %q:\n%s", tc.want, view)
			}
			if got := strings.Contains(view, "r to retry"); got != tc.hint {
				t.Errorf("retry hint shown = %v, want %v", got, tc.hint)
			}
		})
	}
}

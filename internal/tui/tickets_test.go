package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/casedesk/internal/apitest"
	"github.com/naveenspark/casedesk/pkg/domain"
)

func testTickets() []domain.Ticket {
	customer := &domain.User{ID: 42, Email: "player@example.com", Username: "lucky"}
	return []domain.Ticket{
		{ID: 1, Subject: "Old withdrawal", Status: domain.TicketClosed, User: customer},
		{ID: 2, Subject: "Missing deposit", Status: domain.TicketOpen, User: customer, UnreadForStaff: true, UnreadCountForStaff: 2,
			Messages: []domain.TicketMessage{{ID: 1, Body: "where is my money", Author: customer, Attachment: "/media/tickets/receipt.png"}}},
		{ID: 3, Subject: "Bonus question", Status: domain.TicketOpen, User: &domain.User{ID: 43, Email: "whale@example.com"}},
	}
}

func loadedTickets(m ticketsModel) ticketsModel {
	m, _ = m.Update(ticketsLoadedMsg{tickets: testTickets()})
	return m
}

// liveTickets returns a tickets model wired to a fake backend holding testTickets.
func liveTickets(t *testing.T) (ticketsModel, *apitest.Server) {
	t.Helper()
	a, srv := newLiveApp(t)
	srv.SetTickets(testTickets())
	m := loadedTickets(a.tickets)
	return m, srv
}

func ticketIDs(ts []domain.Ticket) []int64 {
	var ids []int64
	for _, t := range ts {
		ids = append(ids, t.ID)
	}
	return ids
}

func TestTicketsOpenBeforeClosed(t *testing.T) {
	m := loadedTickets(newTicketsModel(nil, ""))
	got := ticketIDs(m.filtered)
	want := []int64{2, 3, 1}
	if len(got) != len(want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	view := m.View()
	if strings.Index(view, "OPEN") > strings.Index(view, "CLOSED") {
		t.Errorf("open section should precede closed:\n%s", view)
	}
	if m.unreadCount() != 1 {
		t.Errorf("unreadCount = %d, want 1", m.unreadCount())
	}
}

func TestTicketsSearch(t *testing.T) {
	tests := []struct {
		query string
		want  []int64
	}{
		{"deposit", []int64{2}},
		{"whale", []int64{3}},
		{"lucky", []int64{2, 1}},
		{"closed", []int64{1}},
		{"3", []int64{3}},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			m := loadedTickets(newTicketsModel(nil, ""))
			m, _ = m.Update(keyRunes("/"))
			for _, r := range tc.query {
				m, _ = m.Update(keyRunes(string(r)))
			}
			got := ticketIDs(m.filtered)
			if len(got) != len(tc.want) {
				t.Fatalf("query %q = %v, want %v", tc.query, got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("query %q = %v, want %v", tc.query, got, tc.want)
				}
			}
		})
	}
}

func TestTicketsOpenThreadMarksRead(t *testing.T) {
	m, srv := liveTickets(t)
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.threadID != 2 {
		t.Fatalf("threadID = %d, want 2", m.threadID)
	}
	if cmd == nil {
		t.Fatal("expected mark-read command for an unread ticket")
	}
	m, _ = m.Update(cmd())
	if th := m.thread(); th.UnreadForStaff || th.UnreadCountForStaff != 0 {
		t.Errorf("ticket still unread locally: %+v", th)
	}
	if got, _ := srv.Ticket(2); got.UnreadForStaff {
		t.Error("backend ticket still unread")
	}
	if view := m.View(); !strings.Contains(view, "where is my money") {
		t.Errorf("thread view missing message:\n%s", view)
	}
}

func TestTicketsReadTicketSkipsMarkRead(t *testing.T) {
	m := loadedTickets(newTicketsModel(nil, ""))
	m, _ = m.Update(keyRunes("j"))
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.threadID != 3 {
		t.Fatalf("threadID = %d, want 3", m.threadID)
	}
	if cmd != nil {
		t.Error("no mark-read expected for a read ticket")
	}
}

func TestTicketsReplyWithAttachment(t *testing.T) {
	m, srv := liveTickets(t)
	m.threadID = 2

	path := filepath.Join(t.TempDir(), "refund.pdf")
	if err := os.WriteFile(path, []byte("%PDF"), 0o600); err != nil {
		t.Fatal(err)
	}

	m, _ = m.Update(keyRunes("r"))
	if !m.composing {
		t.Fatal("expected compose mode after r")
	}
	for _, r := range "refund issued" {
		m, _ = m.Update(keyRunes(string(r)))
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	for _, r := range path {
		m, _ = m.Update(keyRunes(string(r)))
	}
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil || !m.sending {
		t.Fatal("expected reply command")
	}
	m, _ = m.Update(cmd())

	if m.composing || m.sending {
		t.Errorf("composing=%v sending=%v after success", m.composing, m.sending)
	}
	up := srv.LastUpload()
	if up == nil || up.Body != "refund issued" || up.Filename != "refund.pdf" || string(up.Data) != "%PDF" {
		t.Fatalf("upload = %+v", up)
	}
	th := m.thread()
	last := th.Messages[len(th.Messages)-1]
	if last.Body != "refund issued" || last.Attachment != "/media/tickets/refund.pdf" {
		t.Errorf("last message = %+v", last)
	}
	if m.status != "reply sent" {
		t.Errorf("status = %q", m.status)
	}
}

func TestTicketsReplyMissingFile(t *testing.T) {
	m, srv := liveTickets(t)
	m.threadID = 2
	m.composing = true
	m.replyBody = "see attached"
	m.replyFile = filepath.Join(t.TempDir(), "nope.png")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = m.Update(cmd())
	if !m.composing {
		t.Error("compose should stay open after a failed reply")
	}
	if !strings.Contains(m.status, "read attachment") {
		t.Errorf("status = %q, want attachment error", m.status)
	}
	if srv.LastUpload() != nil {
		t.Error("nothing should be uploaded")
	}
}

func TestTicketsEmptyReplyRejected(t *testing.T) {
	m := loadedTickets(newTicketsModel(nil, ""))
	m.threadID = 2
	m.composing = true
	m.replyBody = "   "
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("empty reply should not be sent")
	}
	if m.status != "reply is empty" {
		t.Errorf("status = %q", m.status)
	}
}

func TestTicketsClose(t *testing.T) {
	m, srv := liveTickets(t)
	m.threadID = 3
	m, cmd := m.Update(keyRunes("c"))
	if cmd == nil {
		t.Fatal("expected close command")
	}
	m, _ = m.Update(cmd())
	if !m.thread().Closed() {
		t.Error("ticket not closed locally")
	}
	if got, _ := srv.Ticket(3); !got.Closed() {
		t.Error("ticket not closed on backend")
	}

	// closed tickets take no reply
	m, _ = m.Update(keyRunes("r"))
	if m.composing {
		t.Error("compose opened on a closed ticket")
	}
}

func TestTicketsActionFailure(t *testing.T) {
	m := loadedTickets(newTicketsModel(nil, ""))
	m.threadID = 3
	m, _ = m.Update(ticketActionMsg{id: 3, action: actionClose, err: errors.New("403")})
	if m.thread().Closed() {
		t.Error("failed close should not change the ticket")
	}
	if !strings.Contains(m.status, "close failed") {
		t.Errorf("status = %q", m.status)
	}
}

func TestTicketsOpenAttachmentWithoutOne(t *testing.T) {
	m := loadedTickets(newTicketsModel(nil, ""))
	m.threadID = 3
	m, cmd := m.Update(keyRunes("o"))
	if cmd != nil {
		t.Error("no command expected without an attachment")
	}
	if m.status != "no attachment" {
		t.Errorf("status = %q", m.status)
	}
}

func TestTicketsEscLeavesThread(t *testing.T) {
	m := loadedTickets(newTicketsModel(nil, ""))
	m.threadID = 2
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.threadID != 0 {
		t.Error("esc should return to the list")
	}
}

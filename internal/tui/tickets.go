package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/casedesk/internal/browser"
	"github.com/naveenspark/casedesk/pkg/client"
	"github.com/naveenspark/casedesk/pkg/domain"
)

type ticketsLoadedMsg struct {
	tickets []domain.Ticket
	err     error
}

// Ticket actions reported through ticketActionMsg.
const (
	actionRead  = "read"
	actionReply = "reply"
	actionClose = "close"
	actionOpen  = "open"
)

type ticketActionMsg struct {
	id     int64
	action string
	msg    *domain.TicketMessage
	err    error
}

const (
	replyFieldBody = iota
	replyFieldFile
)

type ticketsModel struct {
	client  *client.Client
	baseURL string

	tickets   []domain.Ticket
	filtered  []domain.Ticket
	cursor    int
	query     string
	searching bool
	loaded    bool
	err       string

	threadID int64 // 0 while the list is shown
	status   string

	composing  bool
	replyBody  string
	replyFile  string
	replyField int
	sending    bool

	width  int
	height int
}

func newTicketsModel(c *client.Client, baseURL string) ticketsModel {
	return ticketsModel{client: c, baseURL: baseURL}
}

func (m ticketsModel) Init() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		tickets, err := c.ListTickets(context.Background())
		return ticketsLoadedMsg{tickets: tickets, err: err}
	}
}

func (m ticketsModel) editing() bool {
	return m.searching || m.composing
}

// applyFilter lists open tickets before closed ones and matches the query
// against subject, customer, id and status.
func (m *ticketsModel) applyFilter() {
	var open, closed []domain.Ticket
	for _, t := range m.tickets {
		var email, username string
		if t.User != nil {
			email, username = t.User.Email, t.User.Username
		}
		if !containsFold(m.query, t.Subject, email, username, strconv.FormatInt(t.ID, 10), t.Status) {
			continue
		}
		if t.Closed() {
			closed = append(closed, t)
		} else {
			open = append(open, t)
		}
	}
	m.filtered = append(open, closed...)
	if m.cursor >= len(m.filtered) {
		m.cursor = max(0, len(m.filtered)-1)
	}
}

func (m ticketsModel) thread() *domain.Ticket {
	if m.threadID == 0 {
		return nil
	}
	for i := range m.tickets {
		if m.tickets[i].ID == m.threadID {
			return &m.tickets[i]
		}
	}
	return nil
}

// updateTicket applies fn to a copy of the ticket list so earlier model
// values keep their own slice.
func (m *ticketsModel) updateTicket(id int64, fn func(*domain.Ticket)) {
	m.tickets = slices.Clone(m.tickets)
	for i := range m.tickets {
		if m.tickets[i].ID == id {
			fn(&m.tickets[i])
		}
	}
	m.applyFilter()
}

func (m ticketsModel) markRead(id int64) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		return ticketActionMsg{id: id, action: actionRead, err: c.MarkTicketRead(context.Background(), id)}
	}
}

func (m ticketsModel) closeTicket(id int64) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		return ticketActionMsg{id: id, action: actionClose, err: c.CloseTicket(context.Background(), id)}
	}
}

func (m ticketsModel) sendReply(id int64, body, path string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		var att *client.Attachment
		if path != "" {
			data, err := os.ReadFile(path)
			if err != nil {
				return ticketActionMsg{id: id, action: actionReply, err: fmt.Errorf("read attachment: %w", err)}
			}
			att = &client.Attachment{Name: filepath.Base(path), Data: data}
		}
		msg, err := c.ReplyTicket(context.Background(), id, body, att)
		return ticketActionMsg{id: id, action: actionReply, msg: msg, err: err}
	}
}

func (m ticketsModel) openAttachment(id int64, ref string) tea.Cmd {
	base := m.baseURL
	return func() tea.Msg {
		return ticketActionMsg{id: id, action: actionOpen, err: browser.OpenAttachment(base, ref)}
	}
}

func (m ticketsModel) Update(msg tea.Msg) (ticketsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case ticketsLoadedMsg:
		m.loaded = true
		if msg.err != nil {
			m.err = loadErrorText(msg.err)
			return m, nil
		}
		m.err = ""
		m.tickets = msg.tickets
		m.applyFilter()
		return m, nil

	case ticketActionMsg:
		return m.handleAction(msg), nil

	case tea.KeyMsg:
		switch {
		case m.composing:
			return m.updateCompose(msg)
		case m.searching:
			return m.updateSearch(msg), nil
		case m.threadID != 0:
			return m.updateThread(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m ticketsModel) handleAction(msg ticketActionMsg) ticketsModel {
	if msg.action == actionReply {
		m.sending = false
	}
	if msg.err != nil {
		m.status = msg.action + " failed: " + describeError(msg.err)
		return m
	}
	switch msg.action {
	case actionRead:
		m.updateTicket(msg.id, func(t *domain.Ticket) {
			t.UnreadForStaff = false
			t.UnreadCountForStaff = 0
		})
		return m
	case actionReply:
		m.composing = false
		m.replyBody, m.replyFile = "", ""
		if msg.msg != nil {
			reply := *msg.msg
			m.updateTicket(msg.id, func(t *domain.Ticket) {
				t.Messages = append(slices.Clip(t.Messages), reply)
			})
		}
		m.status = "reply sent"
	case actionClose:
		m.updateTicket(msg.id, func(t *domain.Ticket) { t.Status = domain.TicketClosed })
		m.status = "ticket closed"
	case actionOpen:
		m.status = "attachment opened"
	}
	return m
}

func (m ticketsModel) updateSearch(msg tea.KeyMsg) ticketsModel {
	switch msg.String() {
	case "enter":
		m.searching = false
	case "esc":
		m.searching = false
		m.query = ""
		m.applyFilter()
	default:
		m.query = editRune(m.query, msg.String())
		m.cursor = 0
		m.applyFilter()
	}
	return m
}

func (m ticketsModel) updateList(msg tea.KeyMsg) (ticketsModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "/":
		m.searching = true
	case "r":
		m.loaded = false
		m.status = ""
		return m, m.Init()
	case "enter":
		if m.cursor >= len(m.filtered) {
			return m, nil
		}
		t := m.filtered[m.cursor]
		m.threadID = t.ID
		m.status = ""
		if t.UnreadForStaff || t.UnreadCountForStaff > 0 {
			return m, m.markRead(t.ID)
		}
	}
	return m, nil
}

func (m ticketsModel) updateThread(msg tea.KeyMsg) (ticketsModel, tea.Cmd) {
	t := m.thread()
	switch msg.String() {
	case "esc":
		m.threadID = 0
		m.status = ""
	case "r":
		if t != nil && !t.Closed() {
			m.composing = true
			m.replyField = replyFieldBody
			m.status = ""
		}
	case "c":
		if t != nil && !t.Closed() {
			return m, m.closeTicket(t.ID)
		}
	case "o":
		if t == nil {
			return m, nil
		}
		ref := t.LatestAttachment()
		if ref == "" {
			m.status = "no attachment"
			return m, nil
		}
		return m, m.openAttachment(t.ID, ref)
	}
	return m, nil
}

func (m ticketsModel) updateCompose(msg tea.KeyMsg) (ticketsModel, tea.Cmd) {
	if m.sending {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.composing = false
		return m, nil
	case "tab", "shift+tab":
		m.replyField = 1 - m.replyField
		return m, nil
	case "enter":
		body := strings.TrimSpace(m.replyBody)
		if body == "" {
			m.status = "reply is empty"
			return m, nil
		}
		m.sending = true
		m.status = "sending..."
		return m, m.sendReply(m.threadID, body, strings.TrimSpace(m.replyFile))
	}
	if m.replyField == replyFieldBody {
		m.replyBody = editRune(m.replyBody, msg.String())
	} else {
		m.replyFile = editRune(m.replyFile, msg.String())
	}
	return m, nil
}

func (m ticketsModel) helpKeys() string {
	switch {
	case m.composing:
		return helpEntry("tab", "field") + "  " + helpEntry("enter", "send") + "  " + helpEntry("esc", "cancel")
	case m.searching:
		return helpEntry("enter", "done") + "  " + helpEntry("esc", "clear")
	case m.threadID != 0:
		return helpEntry("r", "reply") + "  " + helpEntry("c", "close") + "  " + helpEntry("o", "attachment") + "  " + helpEntry("esc", "back")
	}
	return helpEntry("j/k", "nav") + "  " + helpEntry("/", "search") + "  " + helpEntry("enter", "open") + "  " + helpEntry("r", "reload")
}

func (m ticketsModel) View() string {
	if t := m.thread(); t != nil {
		return m.threadView(t)
	}

	var b strings.Builder
	search := dimStyle.Render("/ search")
	if m.searching || m.query != "" {
		search = searchStyle.Render("/ ") + normalStyle.Render(m.query)
		if m.searching {
			search += accentStyle.Render("█")
		}
	}
	b.WriteString(" " + search + "\n")

	switch {
	case m.err != "":
		b.WriteString("\n " + errorStyle.Render("could not load tickets: "+m.err) + "\n")
		return b.String()
	case !m.loaded:
		b.WriteString("\n " + dimStyle.Render("loading...") + "\n")
		return b.String()
	case len(m.filtered) == 0:
		b.WriteString("\n " + dimStyle.Render("no tickets") + "\n")
		return b.String()
	}

	lastClosed := false
	for i, t := range m.filtered {
		if i == 0 || t.Closed() != lastClosed {
			heading := "── OPEN ──"
			if t.Closed() {
				heading = "── CLOSED ──"
			}
			b.WriteString(" " + sectionHeaderStyle.Render(heading) + "\n")
			lastClosed = t.Closed()
		}
		who := "—"
		if t.User != nil {
			who = t.User.DisplayName()
		}
		row := fmt.Sprintf("#%-6d %-34s %-18s %s", t.ID, truncStr(t.Subject, 34), truncStr(who, 18), formatTime(t.CreatedAt))
		unread := "  "
		if t.UnreadCountForStaff > 0 {
			unread = unreadStyle.Render(fmt.Sprintf("%d ", t.UnreadCountForStaff))
		} else if t.UnreadForStaff {
			unread = unreadStyle.Render("● ")
		}
		if i == m.cursor {
			b.WriteString(" " + unread + selectedRowBg.Render(selectedStyle.Render(row)) + "\n")
		} else {
			b.WriteString(" " + unread + normalStyle.Render(row) + "\n")
		}
	}
	if m.status != "" {
		b.WriteString("\n " + dimStyle.Render(m.status) + "\n")
	}
	return b.String()
}

func (m ticketsModel) threadView(t *domain.Ticket) string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render(fmt.Sprintf("#%d %s", t.ID, t.Subject)) + "  " + statusStyle(t.Status).Render(t.Status) + "\n")
	if t.User != nil {
		b.WriteString(" " + dimStyle.Render(t.User.DisplayName()) + metaStyle.Render(fmt.Sprintf(" · user #%d", t.User.ID)) + "\n")
	}
	b.WriteString(separator(m.width) + "\n")

	for _, msg := range t.Messages {
		author := "customer"
		if msg.Author != nil {
			author = msg.Author.DisplayName()
			if msg.Author.Privileged() {
				author = accentStyle.Render(author)
			}
		}
		b.WriteString(" " + selectedStyle.Render(author) + "  " + metaStyle.Render(formatTime(msg.CreatedAt)) + "\n")
		for _, line := range strings.Split(strings.TrimRight(msg.Body, "\n"), "\n") {
			b.WriteString("   " + normalStyle.Render(line) + "\n")
		}
		if msg.Attachment != "" {
			b.WriteString("   " + bonusStyle.Render("📎 "+msg.Attachment) + "\n")
		}
	}
	if len(t.Messages) == 0 {
		b.WriteString(" " + dimStyle.Render("no messages") + "\n")
	}

	if m.composing {
		b.WriteString(separator(m.width) + "\n")
		b.WriteString(" " + renderField("reply ", oneLine(m.replyBody), "type a reply", m.replyField == replyFieldBody, false) + "\n")
		b.WriteString(" " + renderField("attach", m.replyFile, "optional file path", m.replyField == replyFieldFile, false) + "\n")
	}
	if m.status != "" {
		b.WriteString("\n " + dimStyle.Render(m.status) + "\n")
	}
	return b.String()
}

// unreadCount is the number of open tickets waiting on staff.
func (m ticketsModel) unreadCount() int {
	n := 0
	for _, t := range m.tickets {
		if !t.Closed() && (t.UnreadForStaff || t.UnreadCountForStaff > 0) {
			n++
		}
	}
	return n
}

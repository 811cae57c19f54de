package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/casedesk/pkg/client"
	"github.com/naveenspark/casedesk/pkg/domain"
)

type usersLoadedMsg struct {
	users []domain.UserRow
	err   error
}

// showUserMsg opens the user details overlay.
type showUserMsg struct {
	id int64
}

type usersModel struct {
	client    *client.Client
	users     []domain.UserRow
	filtered  []domain.UserRow
	cursor    int
	query     string
	searching bool
	loaded    bool
	err       string
	width     int
	height    int
}

func newUsersModel(c *client.Client) usersModel {
	return usersModel{client: c}
}

func (m usersModel) Init() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		users, err := c.ListUsers(context.Background())
		return usersLoadedMsg{users: users, err: err}
	}
}

// applyFilter keeps customers only and matches the query against email,
// username and id.
func (m *usersModel) applyFilter() {
	m.filtered = nil
	for _, u := range m.users {
		if u.Privileged() {
			continue
		}
		if containsFold(m.query, u.Email, u.Username, strconv.FormatInt(u.ID, 10)) {
			m.filtered = append(m.filtered, u)
		}
	}
	if m.cursor >= len(m.filtered) {
		m.cursor = max(0, len(m.filtered)-1)
	}
}

func (m usersModel) Update(msg tea.Msg) (usersModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case usersLoadedMsg:
		m.loaded = true
		if msg.err != nil {
			m.err = loadErrorText(msg.err)
			return m, nil
		}
		m.err = ""
		m.users = msg.users
		m.applyFilter()
		return m, nil

	case tea.KeyMsg:
		if m.searching {
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
			return m, nil
		}
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
			return m, m.Init()
		case "enter":
			if m.cursor < len(m.filtered) {
				id := m.filtered[m.cursor].ID
				return m, func() tea.Msg { return showUserMsg{id: id} }
			}
		}
	}
	return m, nil
}

func (m usersModel) View() string {
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
		b.WriteString("\n " + errorStyle.Render("could not load users: "+m.err) + "\n")
		return b.String()
	case !m.loaded:
		b.WriteString("\n " + dimStyle.Render("loading...") + "\n")
		return b.String()
	case len(m.filtered) == 0:
		b.WriteString("\n " + dimStyle.Render("no customers match") + "\n")
		return b.String()
	}

	b.WriteString(" " + sectionHeaderStyle.Render(fmt.Sprintf("%-7s %-28s %-16s %10s %10s", "ID", "EMAIL", "USERNAME", "BALANCE", "DEPOSITS")) + "\n")
	for i, u := range m.filtered {
		row := fmt.Sprintf("%-7d %-28s %-16s %10s %10s",
			u.ID,
			truncStr(u.Email, 28),
			truncStr(u.Username, 16),
			"$"+domain.FormatUSD(u.Profile.BalanceUSD),
			"$"+domain.FormatUSD(u.Profile.DepositTotalUSD))
		if i == m.cursor {
			b.WriteString(" " + selectedRowBg.Render(selectedStyle.Render(row)) + "\n")
		} else {
			b.WriteString(" " + normalStyle.Render(row) + "\n")
		}
	}
	return b.String()
}

package tui

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/casedesk/pkg/session"
)

// loginResultMsg carries the outcome of Session.Login.
type loginResultMsg struct {
	err error
}

const (
	fieldEmail = iota
	fieldPassword
)

type loginModel struct {
	session  *session.Session
	email    string
	password string
	field    int
	busy     bool
	err      string
	notice   string
	width    int
}

func newLoginModel(s *session.Session) loginModel {
	return loginModel{session: s}
}

func (m loginModel) submit() tea.Cmd {
	s := m.session
	email := strings.TrimSpace(m.email)
	password := m.password
	return func() tea.Msg {
		return loginResultMsg{err: s.Login(context.Background(), email, password)}
	}
}

// loginErrorText prefers the session's own message over the wrapped cause.
func loginErrorText(err error) string {
	var ae *session.AuthenticationError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return err.Error()
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case loginResultMsg:
		m.busy = false
		if msg.err != nil {
			m.err = loginErrorText(msg.err)
			m.password = ""
			m.field = fieldPassword
			return m, nil
		}
		m.err = ""
		m.notice = ""
		m.password = ""
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			m.field = 1 - m.field
			return m, nil
		case "enter":
			if m.field == fieldEmail {
				m.field = fieldPassword
				return m, nil
			}
			if strings.TrimSpace(m.email) == "" || m.password == "" {
				m.err = "email and password are required"
				return m, nil
			}
			m.busy = true
			m.err = ""
			return m, m.submit()
		case "esc":
			m.email, m.password, m.err = "", "", ""
			m.field = fieldEmail
			return m, nil
		}
		if m.field == fieldEmail {
			m.email = editRune(m.email, msg.String())
		} else {
			m.password = editRune(m.password, msg.String())
		}
	}
	return m, nil
}

func (m loginModel) View() string {
	var b strings.Builder
	b.WriteString("\n " + titleStyle.Render("Staff sign in") + "\n\n")
	if m.notice != "" {
		b.WriteString(" " + dimStyle.Render(m.notice) + "\n\n")
	}
	b.WriteString(" " + renderField("email    ", m.email, "staff@example.com", m.field == fieldEmail, false) + "\n")
	b.WriteString(" " + renderField("password ", m.password, "••••••", m.field == fieldPassword, true) + "\n\n")
	switch {
	case m.busy:
		b.WriteString(" " + dimStyle.Render("signing in...") + "\n")
	case m.err != "":
		b.WriteString(" " + errorStyle.Render(m.err) + "\n")
	}
	return b.String()
}

package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/casedesk/internal/spinview"
	"github.com/naveenspark/casedesk/pkg/client"
	"github.com/naveenspark/casedesk/pkg/domain"
)

type userDetailsLoadedMsg struct {
	id      int64
	details *domain.UserDetails
	err     error
}

// openSpinMsg opens the spin details overlay on top of the current view.
type openSpinMsg struct {
	id       int64
	basePath string
}

// userModel is the user details overlay.
type userModel struct {
	client  *client.Client
	id      int64
	details *domain.UserDetails
	cursor  int
	closed  bool
	err     string
	width   int
}

func newUserModel(c *client.Client) userModel {
	return userModel{client: c}
}

func (m userModel) load(id int64) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		d, err := c.GetUserDetails(context.Background(), id)
		return userDetailsLoadedMsg{id: id, details: d, err: err}
	}
}

func (m userModel) Update(msg tea.Msg) (userModel, tea.Cmd) {
	switch msg := msg.(type) {
	case userDetailsLoadedMsg:
		if msg.id != m.id {
			return m, nil
		}
		if msg.err != nil {
			m.err = loadErrorText(msg.err)
		} else {
			m.details = msg.details
			m.cursor = 0
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			m.closed = true
		case "j", "down":
			if m.details != nil && m.cursor < len(m.details.Spins)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "r":
			m.err = ""
			m.details = nil
			return m, m.load(m.id)
		case "enter":
			if m.details != nil && m.cursor < len(m.details.Spins) {
				id := m.details.Spins[m.cursor].ID
				return m, func() tea.Msg { return openSpinMsg{id: id, basePath: spinview.SpinsPath} }
			}
		}
	}
	return m, nil
}

func (m userModel) View() string {
	if m.err != "" {
		return "\n " + errorStyle.Render("user error: "+m.err)
	}
	if m.details == nil {
		return "\n " + dimStyle.Render("loading...")
	}

	d := m.details
	cardWidth := min(72, m.width-4)
	if cardWidth < 40 {
		cardWidth = 40
	}
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Background(surfaceColor).
		Padding(1, 2).
		Width(cardWidth)

	var sb strings.Builder
	sb.WriteString(selectedStyle.Render(d.User.DisplayName()) + "  " + metaStyle.Render(fmt.Sprintf("#%d", d.User.ID)) + "\n")
	if d.User.Email != "" && d.User.Email != d.User.DisplayName() {
		sb.WriteString(dimStyle.Render(d.User.Email) + "\n")
	}

	p := d.User.Profile
	sb.WriteString("\n" + sectionHeaderStyle.Render("── FINANCES ──") + "\n")
	for _, row := range []struct {
		label string
		value domain.Number
	}{
		{"Balance", p.BalanceUSD},
		{"Deposits", p.DepositTotalUSD},
		{"Won", p.WonTotalUSD},
		{"Lost", p.LostTotalUSD},
	} {
		sb.WriteString(fmt.Sprintf("  %-10s %s\n", dimStyle.Render(row.label), moneyStyle.Render("$"+domain.FormatUSD(row.value))))
	}

	r := d.Referrals
	sb.WriteString("\n" + sectionHeaderStyle.Render("── REFERRALS ──") + "\n")
	writeReferrals(&sb, "Level 1", r.Level1Percent, r.Level1)
	writeReferrals(&sb, "Level 2", r.Level2Percent, r.Level2)

	sb.WriteString("\n" + sectionHeaderStyle.Render("── SPINS ──") + "\n")
	if len(d.Spins) == 0 {
		sb.WriteString("  " + dimStyle.Render("no spins") + "\n")
	}
	for i, s := range d.Spins {
		caseName := s.Case.Name
		if caseName == "" && s.Case.ID != 0 {
			caseName = fmt.Sprintf("#%d", s.Case.ID)
		}
		row := fmt.Sprintf("#%-7d %-18s %-20s %s", s.ID, truncStr(caseName, 18), truncStr(s.Prize.Title, 20), formatTime(s.CreatedAt))
		if i == m.cursor {
			sb.WriteString(accentStyle.Render("› ") + selectedStyle.Render(row) + "\n")
		} else {
			sb.WriteString("  " + normalStyle.Render(row) + "\n")
		}
	}

	sb.WriteString("\n" + helpEntry("enter", "spin") + "  " + helpEntry("r", "reload") + "  " + helpEntry("esc", "close"))
	return "\n" + border.Render(sb.String())
}

func writeReferrals(sb *strings.Builder, label string, percent domain.Number, refs []domain.Referral) {
	head := fmt.Sprintf("  %s  %d", label, len(refs))
	if percent.Valid {
		head += metaStyle.Render(" · " + percent.String() + "%")
	}
	sb.WriteString(normalStyle.Render(head) + "\n")
	for _, ref := range refs {
		name := ref.Username
		if name == "" {
			name = ref.Email
		}
		line := fmt.Sprintf("    #%d %s", ref.ID, name)
		if ref.ReferredBy != nil {
			line += metaStyle.Render(" via " + ref.ReferredBy.DisplayName())
		}
		sb.WriteString(dimStyle.Render(line) + "\n")
	}
}

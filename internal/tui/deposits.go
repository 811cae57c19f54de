package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/casedesk/pkg/client"
	"github.com/naveenspark/casedesk/pkg/domain"
)

type depositsLoadedMsg struct {
	preset string
	page   int
	result *domain.DepositPage
	err    error
}

type depositsModel struct {
	client   *client.Client
	preset   string
	page     int
	total    int
	deposits []domain.Deposit
	cursor   int
	loaded   bool
	err      string
	width    int
	height   int
}

func newDepositsModel(c *client.Client) depositsModel {
	return depositsModel{client: c, preset: client.DefaultPreset, page: 1}
}

func (m depositsModel) Init() tea.Cmd {
	c, preset, page := m.client, m.preset, m.page
	return func() tea.Msg {
		p, err := c.ListDeposits(context.Background(), client.ReportQuery{Preset: preset}, page)
		return depositsLoadedMsg{preset: preset, page: page, result: p, err: err}
	}
}

// pages is the page count for the last known total, at least 1.
func (m depositsModel) pages() int {
	return max(1, (m.total+client.ReportPageSize-1)/client.ReportPageSize)
}

func (m depositsModel) reload() (depositsModel, tea.Cmd) {
	m.loaded = false
	m.cursor = 0
	return m, m.Init()
}

func (m depositsModel) Update(msg tea.Msg) (depositsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case depositsLoadedMsg:
		if msg.preset != m.preset || msg.page != m.page {
			return m, nil
		}
		m.loaded = true
		if msg.err != nil {
			m.err = loadErrorText(msg.err)
			return m, nil
		}
		m.err = ""
		m.deposits = msg.result.Deposits
		m.total = int(msg.result.Total)
		if m.cursor >= len(m.deposits) {
			m.cursor = max(0, len(m.deposits)-1)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.deposits)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "]":
			if m.page < m.pages() {
				m.page++
				return m.reload()
			}
		case "[":
			if m.page > 1 {
				m.page--
				return m.reload()
			}
		case "p":
			m.preset = client.NextPreset(m.preset)
			m.page = 1
			return m.reload()
		case "r":
			return m.reload()
		case "enter":
			if m.cursor < len(m.deposits) {
				id := m.deposits[m.cursor].User.ID
				return m, func() tea.Msg { return showUserMsg{id: id} }
			}
		}
	}
	return m, nil
}

func (m depositsModel) helpKeys() string {
	return helpEntry("j/k", "nav") + "  " + helpEntry("[ ]", "page") + "  " + helpEntry("p", "period") + "  " + helpEntry("enter", "user") + "  " + helpEntry("r", "reload") + "  " + helpEntry("q", "quit")
}

func (m depositsModel) View() string {
	var b strings.Builder
	b.WriteString(" " + dimStyle.Render("period ") + accentStyle.Render(m.preset) +
		metaStyle.Render(fmt.Sprintf("   page %d/%d · %d deposits", m.page, m.pages(), m.total)) + "\n")

	switch {
	case m.err != "":
		b.WriteString("\n " + errorStyle.Render("could not load deposits: "+m.err) + "\n")
		return b.String()
	case !m.loaded:
		b.WriteString("\n " + dimStyle.Render("loading...") + "\n")
		return b.String()
	case len(m.deposits) == 0:
		b.WriteString("\n " + dimStyle.Render("no deposits in this period") + "\n")
		return b.String()
	}

	b.WriteString(" " + sectionHeaderStyle.Render(fmt.Sprintf("%-7s %-26s %10s %-10s %-10s %8s", "ID", "USER", "AMOUNT", "METHOD", "STATUS", "WHEN")) + "\n")
	for i, d := range m.deposits {
		row := fmt.Sprintf("%-7d %-26s %10s %-10s %-10s %8s",
			d.ID,
			truncStr(d.User.DisplayName(), 26),
			"$"+domain.FormatUSD(d.AmountUSD),
			truncStr(d.Method, 10),
			truncStr(firstOf(d.Status.Name, d.Status.Code), 10),
			formatTime(d.CreatedAt.Time))
		if i == m.cursor {
			b.WriteString(" " + selectedRowBg.Render(selectedStyle.Render(row)) + "\n")
		} else {
			b.WriteString(" " + normalStyle.Render(row) + "\n")
		}
	}
	return b.String()
}

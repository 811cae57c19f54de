package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/casedesk/pkg/client"
	"github.com/naveenspark/casedesk/pkg/domain"
)

type dashboardLoadedMsg struct {
	preset    string
	dashboard *domain.Dashboard
	err       error
}

type dashboardModel struct {
	client    *client.Client
	preset    string
	dashboard *domain.Dashboard
	loaded    bool
	err       string
	width     int
	height    int
}

func newDashboardModel(c *client.Client) dashboardModel {
	return dashboardModel{client: c, preset: client.DefaultPreset}
}

func (m dashboardModel) Init() tea.Cmd {
	c, preset := m.client, m.preset
	return func() tea.Msg {
		d, err := c.Dashboard(context.Background(), client.ReportQuery{Preset: preset})
		return dashboardLoadedMsg{preset: preset, dashboard: d, err: err}
	}
}

func (m dashboardModel) Update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case dashboardLoadedMsg:
		// a reply for a preset the user already cycled past
		if msg.preset != m.preset {
			return m, nil
		}
		m.loaded = true
		if msg.err != nil {
			m.err = loadErrorText(msg.err)
			return m, nil
		}
		m.err = ""
		m.dashboard = msg.dashboard
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "p":
			m.preset = client.NextPreset(m.preset)
			m.loaded = false
			return m, m.Init()
		case "r":
			m.loaded = false
			return m, m.Init()
		}
	}
	return m, nil
}

func (m dashboardModel) helpKeys() string {
	return helpEntry("p", "period") + "  " + helpEntry("r", "reload") + "  " + helpEntry("h", "help") + "  " + helpEntry("q", "quit")
}

func (m dashboardModel) View() string {
	var b strings.Builder
	b.WriteString(" " + dimStyle.Render("period ") + accentStyle.Render(m.preset) + "\n")

	switch {
	case m.err != "":
		b.WriteString("\n " + errorStyle.Render("could not load dashboard: "+m.err) + "\n")
		return b.String()
	case !m.loaded || m.dashboard == nil:
		b.WriteString("\n " + dimStyle.Render("loading...") + "\n")
		return b.String()
	}

	d := m.dashboard
	k := d.KPIs
	money := func(n domain.Number) string { return moneyStyle.Render("$" + domain.FormatUSD(n)) }
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %-12s %s   %-10s %s   %-10s %s\n",
		dimStyle.Render("profit"), money(k.ProfitUSD),
		dimStyle.Render("won"), money(k.WinsUSD),
		dimStyle.Render("lost"), money(k.LossesUSD))
	fmt.Fprintf(&b, "  %-12s %s   %-10s %s   %-10s %s\n",
		dimStyle.Render("deposits"), money(k.Deposits.SumCompletedUSD),
		dimStyle.Render("payouts"), money(k.Withdrawals.SumCompletedUSD),
		dimStyle.Render("spins"), normalStyle.Render(fmt.Sprint(k.SpinsCount)))
	fmt.Fprintf(&b, "  %-12s %s\n",
		dimStyle.Render("new users"),
		normalStyle.Render(fmt.Sprintf("%d (%d referred)", k.NewUsers, k.NewUsersFromReferrals)))

	if len(d.SpinsByType) > 0 {
		b.WriteString("\n " + titleStyle.Render("Spins by case type") + "\n")
		for _, s := range d.SpinsByType {
			b.WriteString(fmt.Sprintf("  %-24s %s\n", truncStr(firstOf(s.Name, s.Type), 24), normalStyle.Render(fmt.Sprint(s.Spins))))
		}
	}

	writeTop := func(title string, rows []domain.TopUser) {
		if len(rows) == 0 {
			return
		}
		b.WriteString("\n " + titleStyle.Render(title) + "\n")
		for _, u := range rows {
			b.WriteString(fmt.Sprintf("  %-7d %-20s %6d spins  %s\n",
				u.UserID, truncStr(firstOf(u.Username, u.Email), 20), u.Spins, money(u.UserProfitUSD)))
		}
	}
	writeTop("Top by spins", d.TopUsers.BySpins)
	writeTop("Top by player profit", d.TopUsers.ByUserProfit)

	if len(d.NewUsersList) > 0 {
		b.WriteString("\n " + titleStyle.Render("New users") + "\n")
		for _, u := range d.NewUsersList {
			ref := ""
			if u.ReferredByID != 0 {
				ref = metaStyle.Render(fmt.Sprintf("  via #%d", u.ReferredByID))
			}
			b.WriteString(fmt.Sprintf("  %-7d %-28s %8s  %s%s\n",
				u.ID, truncStr(firstOf(u.Email, u.Username), 28),
				metaStyle.Render(formatTime(u.DateJoined.Time)), money(u.BalanceUSD), ref))
		}
	}
	return b.String()
}

// firstOf returns the first non-empty value.
func firstOf(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

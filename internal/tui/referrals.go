package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/naveenspark/casedesk/pkg/client"
	"github.com/naveenspark/casedesk/pkg/domain"
)

// bonusWindow is how far back the referrals tab looks.
const bonusWindow = 24 * time.Hour

type referralsLoadedMsg struct {
	page     int
	bonuses  *domain.ReferralBonusPage
	levels   []domain.RefLevel
	cashback *domain.CashbackSetting
	err      error
}

type referralsModel struct {
	client   *client.Client
	now      func() time.Time
	page     int
	bonuses  *domain.ReferralBonusPage
	levels   []domain.RefLevel
	cashback *domain.CashbackSetting
	cursor   int
	loaded   bool
	err      string
	width    int
	height   int
}

func newReferralsModel(c *client.Client) referralsModel {
	return referralsModel{client: c, now: time.Now, page: 1}
}

// Init loads one page of recent bonuses along with the commission settings.
func (m referralsModel) Init() tea.Cmd {
	c, page := m.client, m.page
	to := m.now()
	from := to.Add(-bonusWindow)
	return func() tea.Msg {
		msg := referralsLoadedMsg{page: page}
		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			p, err := c.ListReferralBonuses(ctx, from, to, page)
			msg.bonuses = p
			return err
		})
		g.Go(func() error {
			levels, err := c.ListRefLevels(ctx)
			msg.levels = levels
			return err
		})
		g.Go(func() error {
			cb, err := c.CashbackSetting(ctx)
			msg.cashback = cb
			return err
		})
		msg.err = g.Wait()
		return msg
	}
}

func (m referralsModel) items() []domain.ReferralBonus {
	if m.bonuses == nil {
		return nil
	}
	return m.bonuses.Items
}

func (m referralsModel) pages() int {
	if m.bonuses == nil {
		return 1
	}
	return max(1, int(m.bonuses.Pagination.TotalPages))
}

func (m referralsModel) reload() (referralsModel, tea.Cmd) {
	m.loaded = false
	m.cursor = 0
	return m, m.Init()
}

func (m referralsModel) Update(msg tea.Msg) (referralsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case referralsLoadedMsg:
		if msg.page != m.page {
			return m, nil
		}
		m.loaded = true
		if msg.err != nil {
			m.err = loadErrorText(msg.err)
			return m, nil
		}
		m.err = ""
		m.bonuses = msg.bonuses
		m.levels = msg.levels
		m.cashback = msg.cashback
		if n := len(m.items()); m.cursor >= n {
			m.cursor = max(0, n-1)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.items())-1 {
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
		case "r":
			return m.reload()
		case "enter":
			if items := m.items(); m.cursor < len(items) {
				id := items[m.cursor].Referrer.ID
				return m, func() tea.Msg { return showUserMsg{id: id} }
			}
		}
	}
	return m, nil
}

func (m referralsModel) helpKeys() string {
	return helpEntry("j/k", "nav") + "  " + helpEntry("[ ]", "page") + "  " + helpEntry("enter", "referrer") + "  " + helpEntry("r", "reload") + "  " + helpEntry("q", "quit")
}

func (m referralsModel) View() string {
	var b strings.Builder

	switch {
	case m.err != "":
		b.WriteString("\n " + errorStyle.Render("could not load referrals: "+m.err) + "\n")
		return b.String()
	case !m.loaded:
		b.WriteString("\n " + dimStyle.Render("loading...") + "\n")
		return b.String()
	}

	var rates []string
	for _, l := range m.levels {
		rates = append(rates, fmt.Sprintf("L%d %s%%", l.Level, domain.FormatUSD(l.Percent)))
	}
	if m.cashback != nil {
		rates = append(rates, "cashback "+domain.FormatUSD(m.cashback.Percent)+"%")
	}
	if len(rates) > 0 {
		b.WriteString(" " + dimStyle.Render("rates ") + normalStyle.Render(strings.Join(rates, "  ")) + "\n")
	}

	total := domain.Number{}
	count := 0
	if m.bonuses != nil {
		total = m.bonuses.TotalSumUSD
		count = int(m.bonuses.Pagination.TotalCount)
	}
	b.WriteString(" " + dimStyle.Render("last 24h ") + moneyStyle.Render("$"+domain.FormatUSD(total)) +
		metaStyle.Render(fmt.Sprintf("   page %d/%d · %d bonuses", m.page, m.pages(), count)) + "\n")

	items := m.items()
	if len(items) == 0 {
		b.WriteString("\n " + dimStyle.Render("no referral bonuses in the last 24h") + "\n")
		return b.String()
	}

	b.WriteString(" " + sectionHeaderStyle.Render(fmt.Sprintf("%-20s %-20s %3s %7s %10s %10s %8s", "REFERRER", "REFERRAL", "LVL", "RATE", "DEPOSIT", "BONUS", "WHEN")) + "\n")
	for i, r := range items {
		row := fmt.Sprintf("%-20s %-20s %3d %7s %10s %10s %8s",
			truncStr(r.Referrer.DisplayName(), 20),
			truncStr(r.Referral.DisplayName(), 20),
			r.Level,
			domain.FormatUSD(r.Percent)+"%",
			"$"+domain.FormatUSD(r.Deposit.AmountUSD),
			"$"+domain.FormatUSD(r.AmountUSD),
			formatTime(r.CreatedAt.Time))
		if i == m.cursor {
			b.WriteString(" " + selectedRowBg.Render(selectedStyle.Render(row)) + "\n")
		} else {
			b.WriteString(" " + normalStyle.Render(row) + "\n")
		}
	}
	return b.String()
}

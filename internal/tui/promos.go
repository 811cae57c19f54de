package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/naveenspark/casedesk/pkg/client"
	"github.com/naveenspark/casedesk/pkg/domain"
)

type promosLoadedMsg struct {
	codes       []domain.Promocode
	activations []domain.PromocodeActivation
	err         error
}

type promoPane int

const (
	paneCodes promoPane = iota
	paneActivations
)

type promosModel struct {
	client      *client.Client
	codes       []domain.Promocode
	activations []domain.PromocodeActivation
	shownCodes  []domain.Promocode
	shownActs   []domain.PromocodeActivation
	pane        promoPane
	cursor      int
	query       string
	searching   bool
	loaded      bool
	err         string
	width       int
	height      int
}

func newPromosModel(c *client.Client) promosModel {
	return promosModel{client: c}
}

// Init fetches the codes and their activations in parallel.
func (m promosModel) Init() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		var msg promosLoadedMsg
		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			codes, err := c.ListPromocodes(ctx)
			msg.codes = codes
			return err
		})
		g.Go(func() error {
			acts, err := c.ListPromocodeActivations(ctx)
			msg.activations = acts
			return err
		})
		msg.err = g.Wait()
		return msg
	}
}

// applyFilter matches the query against the promo code in both panes.
func (m *promosModel) applyFilter() {
	m.shownCodes = nil
	for _, p := range m.codes {
		if containsFold(m.query, p.Code) {
			m.shownCodes = append(m.shownCodes, p)
		}
	}
	m.shownActs = nil
	for _, a := range m.activations {
		if containsFold(m.query, a.Promocode.Code) {
			m.shownActs = append(m.shownActs, a)
		}
	}
	if n := m.rows(); m.cursor >= n {
		m.cursor = max(0, n-1)
	}
}

func (m promosModel) rows() int {
	if m.pane == paneActivations {
		return len(m.shownActs)
	}
	return len(m.shownCodes)
}

func (m promosModel) Update(msg tea.Msg) (promosModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case promosLoadedMsg:
		m.loaded = true
		if msg.err != nil {
			m.err = loadErrorText(msg.err)
			return m, nil
		}
		m.err = ""
		m.codes = msg.codes
		m.activations = msg.activations
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
			if m.cursor < m.rows()-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "tab":
			if m.pane == paneCodes {
				m.pane = paneActivations
			} else {
				m.pane = paneCodes
			}
			m.cursor = 0
		case "/":
			m.searching = true
		case "r":
			m.loaded = false
			return m, m.Init()
		case "enter":
			if m.pane == paneActivations && m.cursor < len(m.shownActs) {
				id := m.shownActs[m.cursor].User.ID
				return m, func() tea.Msg { return showUserMsg{id: id} }
			}
		}
	}
	return m, nil
}

func (m promosModel) helpKeys() string {
	if m.searching {
		return helpEntry("enter", "done") + "  " + helpEntry("esc", "clear")
	}
	keys := helpEntry("j/k", "nav") + "  " + helpEntry("tab", "codes/activations") + "  " + helpEntry("/", "search")
	if m.pane == paneActivations {
		keys += "  " + helpEntry("enter", "user")
	}
	return keys + "  " + helpEntry("r", "reload") + "  " + helpEntry("q", "quit")
}

func (m promosModel) View() string {
	var b strings.Builder

	search := dimStyle.Render("/ search code")
	if m.searching || m.query != "" {
		search = searchStyle.Render("/ ") + normalStyle.Render(m.query)
		if m.searching {
			search += accentStyle.Render("█")
		}
	}
	codesLabel, actsLabel := dimStyle.Render("codes"), dimStyle.Render("activations")
	if m.pane == paneCodes {
		codesLabel = selectedStyle.Underline(true).Render("codes")
	} else {
		actsLabel = selectedStyle.Underline(true).Render("activations")
	}
	b.WriteString(" " + search + "   " + codesLabel + metaStyle.Render(" · ") + actsLabel + "\n")

	switch {
	case m.err != "":
		b.WriteString("\n " + errorStyle.Render("could not load promo codes: "+m.err) + "\n")
		return b.String()
	case !m.loaded:
		b.WriteString("\n " + dimStyle.Render("loading...") + "\n")
		return b.String()
	case m.rows() == 0:
		b.WriteString("\n " + dimStyle.Render("nothing matches") + "\n")
		return b.String()
	}

	var header string
	var rows []string
	if m.pane == paneCodes {
		header = fmt.Sprintf("%-16s %-8s %10s %11s %-8s %s", "CODE", "TYPE", "AMOUNT", "LEFT", "STATE", "ENDS")
		for _, p := range m.shownCodes {
			state := "off"
			if p.IsActive {
				state = "active"
			}
			ends := "never"
			if !p.EndsAt.IsZero() {
				ends = p.EndsAt.Local().Format("2006-01-02")
			}
			rows = append(rows, fmt.Sprintf("%-16s %-8s %10s %11s %-8s %s",
				truncStr(p.Code, 16),
				truncStr(p.PromoType, 8),
				"$"+domain.FormatUSD(p.AmountUSD),
				fmt.Sprintf("%d/%d", p.RemainingActivations, p.MaxActivations),
				state, ends))
		}
	} else {
		header = fmt.Sprintf("%-7s %-16s %-26s %10s %8s", "ID", "CODE", "USER", "AMOUNT", "WHEN")
		for _, a := range m.shownActs {
			rows = append(rows, fmt.Sprintf("%-7d %-16s %-26s %10s %8s",
				a.ID,
				truncStr(a.Promocode.Code, 16),
				truncStr(a.User.DisplayName(), 26),
				"$"+domain.FormatUSD(a.AmountUSD),
				formatTime(a.CreatedAt.Time)))
		}
	}

	b.WriteString(" " + sectionHeaderStyle.Render(header) + "\n")
	for i, row := range rows {
		if i == m.cursor {
			b.WriteString(" " + selectedRowBg.Render(selectedStyle.Render(row)) + "\n")
		} else {
			b.WriteString(" " + normalStyle.Render(row) + "\n")
		}
	}
	return b.String()
}

package tui

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/casedesk/internal/spinview"
)

// spinsModel is the spin lookup tab: type an id, pick the collection, open.
type spinsModel struct {
	input   string
	focused bool
	bonus   bool
	err     string
	recent  []openSpinMsg
}

func newSpinsModel() spinsModel {
	return spinsModel{focused: true}
}

func (m spinsModel) basePath() string {
	if m.bonus {
		return spinview.BonusSpinsPath
	}
	return spinview.SpinsPath
}

func (m spinsModel) Update(msg tea.Msg) (spinsModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.focused {
		switch key.String() {
		case "esc":
			m.focused = false
		case "enter":
			id, err := strconv.ParseInt(m.input, 10, 64)
			if err != nil || id <= 0 {
				m.err = "enter a positive spin id"
				return m, nil
			}
			m.err = ""
			open := openSpinMsg{id: id, basePath: m.basePath()}
			m.remember(open)
			return m, func() tea.Msg { return open }
		default:
			m.input = editDigits(m.input, key.String())
		}
		return m, nil
	}

	switch key.String() {
	case "/", "enter":
		m.focused = true
	case "b":
		m.bonus = !m.bonus
	default:
		// Digits 1-9 reopen a recent lookup.
		if s := key.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			i := int(s[0] - '1')
			if i < len(m.recent) {
				open := m.recent[i]
				return m, func() tea.Msg { return open }
			}
		}
	}
	return m, nil
}

// remember keeps the last few lookups, newest first and without duplicates.
func (m *spinsModel) remember(o openSpinMsg) {
	recent := []openSpinMsg{o}
	for _, r := range m.recent {
		if r != o && len(recent) < 9 {
			recent = append(recent, r)
		}
	}
	m.recent = recent
}

func (m spinsModel) helpKeys() string {
	if m.focused {
		return helpEntry("0-9", "id") + "  " + helpEntry("enter", "open") + "  " + helpEntry("esc", "nav")
	}
	return helpEntry("/", "type id") + "  " + helpEntry("b", "collection") + "  " + helpEntry("1-9", "recent")
}

func (m spinsModel) View() string {
	var b strings.Builder
	collection := dimStyle.Render("spins")
	if m.bonus {
		collection = bonusStyle.Render("bonus spins")
	}
	b.WriteString("\n " + renderField("spin id", m.input, "e.g. 1042", m.focused, false) + "   " + metaStyle.Render("collection ") + collection + "\n")
	if m.err != "" {
		b.WriteString(" " + errorStyle.Render(m.err) + "\n")
	}
	if len(m.recent) > 0 {
		b.WriteString("\n " + sectionHeaderStyle.Render("── RECENT ──") + "\n")
		for i, r := range m.recent {
			label := "Spin #" + strconv.FormatInt(r.id, 10)
			if spinview.IsBonusCollection(r.basePath) {
				label = bonusStyle.Render("Extra open #" + strconv.FormatInt(r.id, 10))
			}
			b.WriteString(" " + helpKeyStyle.Render(strconv.Itoa(i+1)) + " " + normalStyle.Render(label) + "\n")
		}
	}
	return b.String()
}

package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/casedesk/internal/spinview"
	"github.com/naveenspark/casedesk/pkg/session"
)

// spinLoadedMsg and verifyDoneMsg carry the view-model they were issued for,
// so results for a popped or reloaded view are dropped by its generation.
type spinLoadedMsg struct {
	vm  *spinview.ViewModel
	res spinview.Result
}

type verifyDoneMsg struct {
	vm  *spinview.ViewModel
	out spinview.VerifyOutcome
}

type copyResultMsg struct {
	what string
	err  error
}

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

// spinModel is the spin details overlay. Opening an extra open pushes a
// nested view; esc pops back to its parent.
type spinModel struct {
	fetcher session.Fetcher
	stack   []*spinview.ViewModel
	status  string
	closed  bool
	width   int
	height  int
}

func newSpinModel(f session.Fetcher) spinModel {
	return spinModel{fetcher: f}
}

func (m spinModel) top() *spinview.ViewModel {
	if len(m.stack) == 0 {
		return nil
	}
	return m.stack[len(m.stack)-1]
}

// open pushes a new view for id and starts loading it.
func (m spinModel) open(id int64, basePath string) (spinModel, tea.Cmd) {
	vm := spinview.New()
	l, err := vm.Begin(id, basePath)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.stack = append(slices.Clip(m.stack), vm)
	m.status = ""
	return m, m.fetch(vm, l)
}

func (m spinModel) fetch(vm *spinview.ViewModel, l spinview.Load) tea.Cmd {
	f := m.fetcher
	return func() tea.Msg {
		return spinLoadedMsg{vm: vm, res: spinview.Fetch(context.Background(), f, l)}
	}
}

func (m spinModel) verify(vm *spinview.ViewModel, req spinview.VerifyRequest) tea.Cmd {
	f := m.fetcher
	return func() tea.Msg {
		return verifyDoneMsg{vm: vm, out: spinview.RunVerify(context.Background(), f, req)}
	}
}

func copyCmd(what, text string) tea.Cmd {
	return func() tea.Msg {
		return copyResultMsg{what: what, err: writeClipboard(text)}
	}
}

func (m spinModel) Update(msg tea.Msg) (spinModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinLoadedMsg:
		msg.vm.Commit(msg.res)
		return m, nil

	case verifyDoneMsg:
		msg.vm.CommitVerify(msg.out)
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			m.status = "copy failed: " + msg.err.Error()
		} else {
			m.status = msg.what + " copied"
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m spinModel) handleKey(msg tea.KeyMsg) (spinModel, tea.Cmd) {
	vm := m.top()
	if vm == nil {
		m.closed = true
		return m, nil
	}
	switch key := msg.String(); key {
	case "esc", "q":
		vm.Cancel()
		m.stack = m.stack[:len(m.stack)-1]
		m.status = ""
		if len(m.stack) == 0 {
			m.closed = true
		}
	case "r":
		l, err := vm.Begin(vm.SpinID(), vm.BasePath())
		if err == nil {
			m.status = ""
			return m, m.fetch(vm, l)
		}
	case "v":
		req, ok := vm.BeginVerify()
		if !ok {
			return m, nil
		}
		m.status = ""
		return m, m.verify(vm, req)
	case "c":
		if d := vm.Details(); d != nil && d.ServerSeedHash != "" {
			return m, copyCmd("server seed hash", d.ServerSeedHash)
		}
	case "s":
		d := vm.Details()
		if d == nil {
			return m, nil
		}
		if d.ServerSeed == "" {
			m.status = "server seed not revealed yet"
			return m, nil
		}
		return m, copyCmd("server seed", d.ServerSeed)
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			stubs := vm.BonusSpins()
			i := int(key[0] - '1')
			if i >= len(stubs) {
				return m, nil
			}
			id := stubs[i].TargetID()
			if id == 0 {
				m.status = "extra open has no spin id"
				return m, nil
			}
			child, l, err := vm.OpenBonusSpin(id)
			if err != nil {
				m.status = err.Error()
				return m, nil
			}
			m.stack = append(slices.Clip(m.stack), child)
			m.status = ""
			return m, m.fetch(child, l)
		}
	}
	return m, nil
}

func (m spinModel) helpKeys() string {
	h := helpEntry("v", "verify") + "  " + helpEntry("c", "copy hash") + "  " + helpEntry("s", "copy seed") + "  " + helpEntry("r", "reload")
	if vm := m.top(); vm != nil && len(vm.BonusSpins()) > 0 {
		h += "  " + helpEntry("1-9", "extra open")
	}
	return h + "  " + helpEntry("esc", "back")
}

func (m spinModel) breadcrumb() string {
	parts := make([]string, 0, len(m.stack))
	for _, vm := range m.stack {
		if spinview.IsBonusCollection(vm.BasePath()) {
			parts = append(parts, fmt.Sprintf("extra #%d", vm.SpinID()))
		} else {
			parts = append(parts, fmt.Sprintf("spin #%d", vm.SpinID()))
		}
	}
	return strings.Join(parts, " › ")
}

func (m spinModel) View() string {
	vm := m.top()
	if vm == nil {
		return ""
	}

	var sb strings.Builder
	if len(m.stack) > 1 {
		sb.WriteString(metaStyle.Render(m.breadcrumb()) + "\n\n")
	}

	d := vm.Details()
	switch {
	case vm.Err() != "":
		sb.WriteString(errorStyle.Render(vm.Err()) + "\n")
	case vm.Loading() || d == nil:
		sb.WriteString(dimStyle.Render("loading...") + "\n")
	default:
		sb.WriteString(titleStyle.Render(d.Title()) + "\n")
		writeSpinLines(&sb, spinview.Lines(d))

		rows := spinview.WeightRows(d)
		if len(rows) > 0 {
			sb.WriteString("\n" + sectionHeaderStyle.Render("── WEIGHTS ──") + "\n")
			sb.WriteString(metaStyle.Render(fmt.Sprintf("%-8s %-22s %8s %16s %8s", "PRIZE", "NAME", "WEIGHT", "AMOUNT, $", "CHANCE")) + "\n")
			for _, r := range rows {
				sb.WriteString(normalStyle.Render(fmt.Sprintf("%-8s %-22s %8s %16s %8s",
					truncStr(r.PrizeID, 8), truncStr(r.Name, 22), r.Weight, r.Amount, r.Chance)) + "\n")
			}
		}

		switch {
		case vm.Verifying():
			sb.WriteString("\n" + dimStyle.Render("verifying...") + "\n")
		case vm.Verification() != nil:
			sb.WriteString("\n" + sectionHeaderStyle.Render("── VERIFICATION ──") + "\n")
			writeSpinLines(&sb, spinview.VerifyLines(vm.Verification()))
		}
	}

	if m.status != "" {
		sb.WriteString("\n" + dimStyle.Render(m.status) + "\n")
	}

	width := min(96, m.width-4)
	if width < 50 {
		width = 50
	}
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Background(surfaceColor).
		Padding(0, 2).
		Width(width)
	return "\n" + border.Render(strings.TrimRight(sb.String(), "\n"))
}

func writeSpinLines(sb *strings.Builder, lines []spinview.Line) {
	for _, l := range lines {
		if l.Heading != "" {
			sb.WriteString("\n" + sectionHeaderStyle.Render("── "+strings.ToUpper(l.Heading)+" ──") + "\n")
			continue
		}
		value := normalStyle.Render(l.Value)
		switch {
		case l.Value == "OK":
			value = okStyle.Render(l.Value)
		case l.Value == "MISMATCH":
			value = errorStyle.Render(l.Value)
		case strings.HasPrefix(l.Value, "$") || strings.HasPrefix(l.Value, "+$"):
			value = moneyStyle.Render(l.Value)
		case l.Copy:
			value = bonusStyle.Render(l.Value)
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", dimStyle.Render(fmt.Sprintf("%-18s", l.Label)), value))
	}
}

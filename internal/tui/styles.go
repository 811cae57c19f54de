package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Shimmer animation for the CASEDESK logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "C A S E D E S K" as a slow wave of gold light.
// Dark bronze (#3a2a0e) -> bright gold (#facc15).
func renderShimmerLogo(frame int) string {
	const text = "CASEDESK"
	n := len(text)

	var out string
	t := float64(frame)

	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)

		phase := t*0.1 - x*3.0
		phase += math.Sin(t*0.023) * 2.0

		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.3)

		tide := math.Sin(t*0.035) * 0.12
		b = b*0.75 + tide + 0.18

		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		r := clampByte(58 + b*(250-58))
		g := clampByte(42 + b*(204-42))
		bl := clampByte(14 + b*(21-14))

		color := fmt.Sprintf("#%02X%02X%02X", r, g, bl)
		out += lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color)).Render(string(text[i]))

		if i < n-1 {
			out += "  "
		}
	}
	return out
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Search / accent
	searchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#facc15")).
			Bold(true)

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#eab308"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844")).
			Bold(true)

	// Money and outcome styles
	moneyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4ade80")).
		Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e06060"))

	bonusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#22d3ee"))

	unreadStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f59e0b")).
			Bold(true)

	// Surface colors
	borderColor  = lipgloss.Color("#2a2418")
	surfaceColor = lipgloss.Color("#111118")

	selectedRowBg = lipgloss.NewStyle().Background(lipgloss.Color("#1e1e2a"))

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#606878"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#eab308")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))
)

// statusStyle colors a ticket status.
func statusStyle(status string) lipgloss.Style {
	switch status {
	case "open":
		return okStyle
	case "closed":
		return metaStyle
	default:
		return dimStyle
	}
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpView renders the help overlay.
func helpView() string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#facc15")).
		Bold(true).
		Render("C A S E D E S K")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)

	commands := []struct{ cmd, desc string }{
		{"casedesk", "Open the console"},
		{"casedesk spin <id>", "Print spin details (--bonus for extra opens)"},
		{"casedesk verify <id>", "Re-run the fairness check of a spin"},
		{"casedesk dashboard", "Print report KPIs (--preset 7d)"},
		{"casedesk logout", "Clear the stored session"},
		{"casedesk version", "Show version"},
	}
	keys := []struct{ key, desc string }{
		{"1 2 3", "users, tickets, spins"},
		{"4 5 6 7", "dashboard, deposits, promos, referrals"},
		{"/", "search or type a spin id"},
		{"enter", "open"},
		{"p", "cycle report period"},
		{"[ ]", "previous / next page"},
		{"tab", "promo codes or activations"},
		{"r", "reload (reply on a ticket)"},
		{"L", "log out"},
		{"esc", "back / close"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n", title)

	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-22s", c.cmd)), descStyle.Render(c.desc))
	}
	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Keys"))
	for _, k := range keys {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-22s", k.key)), descStyle.Render(k.desc))
	}
	return b.String()
}

package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/casedesk/pkg/client"
	"github.com/naveenspark/casedesk/pkg/session"
)

type view int

const (
	viewUsers view = iota
	viewTickets
	viewSpins
	viewDashboard
	viewDeposits
	viewPromos
	viewReferrals
)

// sessionChangedMsg reports a session state transition.
type sessionChangedMsg struct {
	state session.State
}

// SessionChanged wraps a session state for delivery with Program.Send.
func SessionChanged(st session.State) tea.Msg {
	return sessionChangedMsg{state: st}
}

// bootstrapDoneMsg carries the result of restoring a persisted session.
type bootstrapDoneMsg struct {
	err error
}

// App is the root Bubbletea model.
type App struct {
	session *session.Session
	client  *client.Client
	baseURL string
	state   session.State

	view      view
	login     loginModel
	users     usersModel
	tickets   ticketsModel
	spins     spinsModel
	dashboard dashboardModel
	deposits  depositsModel
	promos    promosModel
	referrals referralsModel
	user      userModel
	userOpen  bool
	spin      spinModel
	spinOpen  bool
	helpOpen  bool

	width  int
	height int
	frame  int // logo shimmer animation frame
}

// NewApp creates the console on top of s. baseURL resolves attachment links.
func NewApp(s *session.Session, c *client.Client, baseURL string) App {
	a := App{
		session:   s,
		client:    c,
		baseURL:   baseURL,
		login:     newLoginModel(s),
		users:     newUsersModel(c),
		tickets:   newTicketsModel(c, baseURL),
		spins:     newSpinsModel(),
		dashboard: newDashboardModel(c),
		deposits:  newDepositsModel(c),
		promos:    newPromosModel(c),
		referrals: newReferralsModel(c),
		user:      newUserModel(c),
		spin:      newSpinModel(s),
	}
	if s != nil {
		a.state = s.State()
	}
	return a
}

func (a App) Init() tea.Cmd {
	switch a.state {
	case session.Bootstrapping:
		return tea.Batch(shimmerTickCmd(), a.bootstrap())
	case session.Authenticated:
		return tea.Batch(shimmerTickCmd(), a.initView())
	}
	return shimmerTickCmd()
}

func (a App) bootstrap() tea.Cmd {
	s := a.session
	return func() tea.Msg {
		return bootstrapDoneMsg{err: s.Bootstrap(context.Background())}
	}
}

func (a App) initView() tea.Cmd {
	switch a.view {
	case viewUsers:
		return a.users.Init()
	case viewTickets:
		return a.tickets.Init()
	case viewDashboard:
		return a.dashboard.Init()
	case viewDeposits:
		return a.deposits.Init()
	case viewPromos:
		return a.promos.Init()
	case viewReferrals:
		return a.referrals.Init()
	}
	return nil
}

// enter moves the app to st. Becoming authenticated loads the active view;
// losing the session closes every overlay and shows the login form.
func (a App) enter(st session.State, notice string) (App, tea.Cmd) {
	prev := a.state
	a.state = st
	switch {
	case st == session.Authenticated && prev != session.Authenticated:
		a.login = newLoginModel(a.session)
		a.login.width = a.width
		return a, a.initView()
	case st == session.Anonymous && prev != session.Anonymous:
		a.closeOverlays()
		a.helpOpen = false
		a.login = newLoginModel(a.session)
		a.login.width = a.width
		a.login.notice = notice
	}
	return a, nil
}

func (a *App) closeOverlays() {
	for _, vm := range a.spin.stack {
		vm.Cancel()
	}
	a.spin = newSpinModel(a.session)
	a.spinOpen = false
	a.user = newUserModel(a.client)
	a.userOpen = false
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + tabs(1) + status(1) + help(1) = 5 lines
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 5}
		a.login, _ = a.login.Update(bodyMsg)
		a.users, _ = a.users.Update(bodyMsg)
		a.tickets, _ = a.tickets.Update(bodyMsg)
		a.dashboard, _ = a.dashboard.Update(bodyMsg)
		a.deposits, _ = a.deposits.Update(bodyMsg)
		a.promos, _ = a.promos.Update(bodyMsg)
		a.referrals, _ = a.referrals.Update(bodyMsg)
		a.user, _ = a.user.Update(bodyMsg)
		a.spin, _ = a.spin.Update(bodyMsg)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case sessionChangedMsg:
		return a.enter(msg.state, "session expired, sign in again")

	case bootstrapDoneMsg:
		st := session.Anonymous
		if a.session != nil {
			st = a.session.State()
		}
		notice := ""
		if msg.err != nil {
			notice = "session expired, sign in again"
		}
		return a.enter(st, notice)

	case loginResultMsg:
		a.login, _ = a.login.Update(msg)
		if msg.err != nil {
			return a, nil
		}
		return a.enter(session.Authenticated, "")

	case usersLoadedMsg:
		a.users, _ = a.users.Update(msg)
		return a, nil

	case ticketsLoadedMsg, ticketActionMsg:
		var cmd tea.Cmd
		a.tickets, cmd = a.tickets.Update(msg)
		return a, cmd

	case dashboardLoadedMsg:
		a.dashboard, _ = a.dashboard.Update(msg)
		return a, nil

	case depositsLoadedMsg:
		a.deposits, _ = a.deposits.Update(msg)
		return a, nil

	case promosLoadedMsg:
		a.promos, _ = a.promos.Update(msg)
		return a, nil

	case referralsLoadedMsg:
		a.referrals, _ = a.referrals.Update(msg)
		return a, nil

	case userDetailsLoadedMsg:
		a.user, _ = a.user.Update(msg)
		return a, nil

	case spinLoadedMsg, verifyDoneMsg, copyResultMsg:
		a.spin, _ = a.spin.Update(msg)
		return a, nil

	case showUserMsg:
		if a.state != session.Authenticated {
			return a, nil
		}
		a.user = newUserModel(a.client)
		a.user.id = msg.id
		a.user.width = a.width
		a.userOpen = true
		return a, a.user.load(msg.id)

	case openSpinMsg:
		if a.state != session.Authenticated {
			return a, nil
		}
		if !a.spinOpen {
			a.spin = newSpinModel(a.session)
			a.spin.width, a.spin.height = a.width, a.height-5
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.open(msg.id, msg.basePath)
		a.spinOpen = len(a.spin.stack) > 0
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	if a.state != session.Authenticated {
		if a.state == session.Bootstrapping {
			return a, nil
		}
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg)
		return a, cmd
	}

	// Help overlay captures all keys when open
	if a.helpOpen {
		switch msg.String() {
		case "h", "esc":
			a.helpOpen = false
		case "q":
			return a, tea.Quit
		}
		return a, nil
	}

	// Overlays capture all keys when open; the spin overlay sits on top.
	if a.spinOpen {
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		if a.spin.closed {
			a.spinOpen = false
		}
		return a, cmd
	}
	if a.userOpen {
		var cmd tea.Cmd
		a.user, cmd = a.user.Update(msg)
		if a.user.closed {
			a.userOpen = false
		}
		return a, cmd
	}

	// Global keys (only when not editing)
	if !a.isEditing() {
		switch msg.String() {
		case "h":
			a.helpOpen = true
			return a, nil
		case "q":
			return a, tea.Quit
		case "1":
			return a.switchView(viewUsers)
		case "2":
			return a.switchView(viewTickets)
		case "3":
			return a.switchView(viewSpins)
		case "4":
			return a.switchView(viewDashboard)
		case "5":
			return a.switchView(viewDeposits)
		case "6":
			return a.switchView(viewPromos)
		case "7":
			return a.switchView(viewReferrals)
		case "L":
			s := a.session
			a, _ = a.enter(session.Anonymous, "signed out")
			return a, func() tea.Msg {
				if s != nil {
					s.Logout()
				}
				return nil
			}
		}
	}

	var cmd tea.Cmd
	switch a.view {
	case viewUsers:
		a.users, cmd = a.users.Update(msg)
	case viewTickets:
		a.tickets, cmd = a.tickets.Update(msg)
	case viewSpins:
		a.spins, cmd = a.spins.Update(msg)
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.Update(msg)
	case viewDeposits:
		a.deposits, cmd = a.deposits.Update(msg)
	case viewPromos:
		a.promos, cmd = a.promos.Update(msg)
	case viewReferrals:
		a.referrals, cmd = a.referrals.Update(msg)
	}
	return a, cmd
}

func (a App) switchView(v view) (tea.Model, tea.Cmd) {
	if a.view == v {
		return a, nil
	}
	a.view = v
	switch v {
	case viewUsers:
		if !a.users.loaded {
			return a, a.users.Init()
		}
	case viewTickets:
		return a, a.tickets.Init()
	case viewSpins:
		a.spins.focused = true
	case viewDashboard:
		if !a.dashboard.loaded {
			return a, a.dashboard.Init()
		}
	case viewDeposits:
		if !a.deposits.loaded {
			return a, a.deposits.Init()
		}
	case viewPromos:
		if !a.promos.loaded {
			return a, a.promos.Init()
		}
	case viewReferrals:
		return a, a.referrals.Init()
	}
	return a, nil
}

func (a App) isEditing() bool {
	switch a.view {
	case viewUsers:
		return a.users.searching
	case viewTickets:
		return a.tickets.editing()
	case viewSpins:
		return a.spins.focused
	case viewPromos:
		return a.promos.searching
	}
	return false
}

func centered(s string, width int) string {
	pad := (width - lipgloss.Width(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}

func (a App) View() string {
	header := centered(renderShimmerLogo(a.frame), a.width)

	identity := ""
	if a.state == session.Authenticated && a.session != nil {
		if u := a.session.User(); u != nil {
			identity = metaStyle.Render(u.DisplayName() + " · staff")
		}
	}
	header += "\n" + centered(identity, a.width)

	var tabLine, body, status, help string
	switch a.state {
	case session.Bootstrapping:
		body = "\n " + dimStyle.Render("restoring session...")
		help = " " + helpEntry("ctrl+c", "quit")
	case session.Anonymous:
		body = a.login.View()
		help = " " + helpEntry("tab", "field") + "  " + helpEntry("enter", "sign in") + "  " + helpEntry("ctrl+c", "quit")
	default:
		tabLine = a.tabBar()
		switch a.view {
		case viewUsers:
			body = a.users.View()
			if a.users.searching {
				help = " " + helpEntry("enter", "done") + "  " + helpEntry("esc", "clear")
			} else {
				help = " " + helpEntry("1-7", "tabs") + "  " + helpEntry("j/k", "nav") + "  " + helpEntry("/", "search") + "  " + helpEntry("enter", "open") + "  " + helpEntry("r", "reload") + "  " + helpEntry("h", "help") + "  " + helpEntry("q", "quit")
			}
		case viewTickets:
			body = a.tickets.View()
			help = " " + helpEntry("1-7", "tabs") + "  " + a.tickets.helpKeys()
		case viewSpins:
			body = a.spins.View()
			help = " " + helpEntry("1-7", "tabs") + "  " + a.spins.helpKeys()
		case viewDashboard:
			body = a.dashboard.View()
			help = " " + helpEntry("1-7", "tabs") + "  " + a.dashboard.helpKeys()
		case viewDeposits:
			body = a.deposits.View()
			help = " " + helpEntry("1-7", "tabs") + "  " + a.deposits.helpKeys()
		case viewPromos:
			body = a.promos.View()
			help = " " + a.promos.helpKeys()
			if !a.promos.searching {
				help = " " + helpEntry("1-7", "tabs") + "  " + a.promos.helpKeys()
			}
		case viewReferrals:
			body = a.referrals.View()
			help = " " + helpEntry("1-7", "tabs") + "  " + a.referrals.helpKeys()
		}
		if a.userOpen {
			body = a.user.View()
			help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "spin") + "  " + helpEntry("esc", "close")
		}
		if a.spinOpen {
			body = a.spin.View()
			help = " " + a.spin.helpKeys()
		}
		if a.helpOpen {
			body = helpView()
			help = " " + helpEntry("esc", "close")
		}
		status = " " + metaStyle.Render(fmt.Sprintf("%s · %s", a.state, a.baseURL))
	}

	// Chrome budget: header(2) + tabs(1) + status(1) + help(1) = 5 lines + body
	chrome := 5
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", header, tabLine, body, status, help)
}

func (a App) tabBar() string {
	tabs := []struct {
		key  string
		name string
		v    view
	}{
		{"1", "Users", viewUsers},
		{"2", "Tickets", viewTickets},
		{"3", "Spins", viewSpins},
		{"4", "Dashboard", viewDashboard},
		{"5", "Deposits", viewDeposits},
		{"6", "Promos", viewPromos},
		{"7", "Referrals", viewReferrals},
	}

	colWidth := a.width / len(tabs)
	var tabBar strings.Builder
	for _, t := range tabs {
		var label string
		if t.v == a.view {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		if t.v == viewTickets {
			if n := a.tickets.unreadCount(); n > 0 {
				label += " " + unreadStyle.Render(fmt.Sprintf("●%d", n))
			}
		}
		labelWidth := lipgloss.Width(label)
		leftPad := max(0, (colWidth-labelWidth)/2)
		rightPad := max(0, colWidth-labelWidth-leftPad)
		tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
	}
	return tabBar.String()
}

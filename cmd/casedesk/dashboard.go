package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/pflag"

	"github.com/naveenspark/casedesk/pkg/client"
	"github.com/naveenspark/casedesk/pkg/domain"
	"github.com/naveenspark/casedesk/pkg/session"
)

// dashboardPreset parses "[--preset name]".
func dashboardPreset(args []string) (string, error) {
	fs := pflag.NewFlagSet("dashboard", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	preset := fs.StringP("preset", "p", client.DefaultPreset, "report period: "+strings.Join(client.Presets, ", "))
	if err := fs.Parse(args); err != nil {
		return "", fmt.Errorf("dashboard: %w", err)
	}
	if fs.NArg() != 0 {
		return "", fmt.Errorf("usage: casedesk dashboard [--preset %s]", strings.Join(client.Presets, "|"))
	}
	if !slices.Contains(client.Presets, *preset) {
		return "", fmt.Errorf("dashboard: unknown preset %q", *preset)
	}
	return *preset, nil
}

func runDashboard(ctx context.Context, s *session.Session, args []string, w io.Writer) error {
	preset, err := dashboardPreset(args)
	if err != nil {
		return err
	}
	if err := requireSession(ctx, s); err != nil {
		return err
	}
	d, err := client.New(s).Dashboard(ctx, client.ReportQuery{Preset: preset})
	if err != nil {
		return fmt.Errorf("load dashboard: %w", err)
	}
	printDashboard(w, preset, d)
	return nil
}

func printDashboard(w io.Writer, preset string, d *domain.Dashboard) {
	k := d.KPIs
	fmt.Fprintf(w, "Dashboard (%s)\n", preset)
	for _, l := range []struct{ label, value string }{
		{"Profit", "$" + domain.FormatUSD(k.ProfitUSD)},
		{"Won by players", "$" + domain.FormatUSD(k.WinsUSD)},
		{"Lost by players", "$" + domain.FormatUSD(k.LossesUSD)},
		{"Deposits", "$" + domain.FormatUSD(k.Deposits.SumCompletedUSD)},
		{"Withdrawals", "$" + domain.FormatUSD(k.Withdrawals.SumCompletedUSD)},
		{"Spins", fmt.Sprint(k.SpinsCount)},
		{"New users", fmt.Sprintf("%d (%d referred)", k.NewUsers, k.NewUsersFromReferrals)},
	} {
		fmt.Fprintf(w, "  %-18s %s\n", l.label, l.value)
	}

	if len(d.TopUsers.BySpins) == 0 {
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("USER", "NAME", "SPINS", "PROFIT, $")
	for _, u := range d.TopUsers.BySpins {
		name := u.Username
		if name == "" {
			name = u.Email
		}
		t.Row(fmt.Sprint(u.UserID), name, fmt.Sprint(u.Spins), domain.FormatUSD(u.UserProfitUSD))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, t.String())
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/pflag"

	"github.com/naveenspark/casedesk/internal/spinview"
	"github.com/naveenspark/casedesk/pkg/session"
)

// spinTarget parses "<id> [--bonus]".
func spinTarget(name string, args []string) (int64, string, error) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	bonus := fs.BoolP("bonus", "b", false, "look the id up in the bonus-spins collection")
	if err := fs.Parse(args); err != nil {
		return 0, "", fmt.Errorf("%s: %w", name, err)
	}
	if fs.NArg() != 1 {
		return 0, "", fmt.Errorf("usage: casedesk %s <id> [--bonus]", name)
	}
	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil || id <= 0 {
		return 0, "", fmt.Errorf("%s: %q is not a spin id", name, fs.Arg(0))
	}
	base := spinview.SpinsPath
	if *bonus {
		base = spinview.BonusSpinsPath
	}
	return id, base, nil
}

func runSpin(ctx context.Context, s *session.Session, args []string, w io.Writer) error {
	id, base, err := spinTarget("spin", args)
	if err != nil {
		return err
	}
	if err := requireSession(ctx, s); err != nil {
		return err
	}
	vm := spinview.New()
	if err := vm.LoadDetails(ctx, s, id, base); err != nil {
		return fmt.Errorf("%s: %w", vm.Err(), err)
	}
	printSpin(w, vm.Details())
	return nil
}

func runVerify(ctx context.Context, s *session.Session, args []string, w io.Writer) error {
	id, base, err := spinTarget("verify", args)
	if err != nil {
		return err
	}
	if err := requireSession(ctx, s); err != nil {
		return err
	}
	vm := spinview.New()
	if err := vm.LoadDetails(ctx, s, id, base); err != nil {
		return fmt.Errorf("%s: %w", vm.Err(), err)
	}
	res, _ := vm.Verify(ctx, s)
	fmt.Fprintln(w, vm.Details().Title())
	printLines(w, spinview.VerifyLines(&res))
	if !res.OK {
		return errors.New("verification failed")
	}
	return nil
}

func printSpin(w io.Writer, d *spinview.Details) {
	fmt.Fprintln(w, d.Title())
	printLines(w, spinview.Lines(d))

	rows := spinview.WeightRows(d)
	if len(rows) == 0 {
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("PRIZE", "NAME", "WEIGHT", "AMOUNT, $", "CHANCE, %")
	for _, r := range rows {
		t.Row(r.PrizeID, r.Name, r.Weight, r.Amount, r.Chance)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, t.String())
}

func printLines(w io.Writer, lines []spinview.Line) {
	for _, l := range lines {
		if l.Label == "" {
			fmt.Fprintf(w, "\n%s\n", l.Heading)
			continue
		}
		fmt.Fprintf(w, "  %-18s %s\n", l.Label, l.Value)
	}
}

package spinview

import (
	"fmt"
	"strconv"

	"github.com/naveenspark/casedesk/pkg/domain"
)

// Line is one row of the details view. A Line with a Heading and no Label
// starts a section. Copy marks values a renderer may offer to copy.
type Line struct {
	Heading string
	Label   string
	Value   string
	Copy    bool
}

// WeightRow is one row of the weights snapshot table.
type WeightRow struct {
	PrizeID string
	Name    string
	Weight  string
	Amount  string
	Chance  string
}

// Lines builds the general and provably-fair rows for d.
func Lines(d *Details) []Line {
	if d == nil {
		return nil
	}
	s := d.Spin
	lines := []Line{
		{Heading: "General"},
		{Label: "ID", Value: "#" + strconv.FormatInt(s.ID, 10)},
		{Label: "Date", Value: dateText(s)},
		{Label: "Case", Value: dash(s.CaseName)},
		{Label: "Prize", Value: prizeText(s)},
		{Label: "Amount, $", Value: WinAmount(s)},
	}
	if s.HasBonus {
		lines = append(lines, Line{Label: "Bonus", Value: s.BonusLabel})
	}
	if s.HasBonus && s.BonusType == domain.BonusExtraOpen {
		for i, b := range s.BonusSpins {
			v := "+$" + domain.FormatUSD(b.Amount)
			if b.Nonce != 0 {
				v += fmt.Sprintf(" (nonce %d)", b.Nonce)
			}
			if b.TargetID() != 0 {
				v += fmt.Sprintf(" [%d: open #%d]", i+1, b.TargetID())
			}
			lines = append(lines, Line{Label: fmt.Sprintf("Extra open #%d", i+1), Value: v})
		}
	}

	lines = append(lines, Line{Heading: "Provably fair"})
	if s.IsExtraOpen {
		lines = append(lines, Line{Label: "Type", Value: "EXTRA OPEN"})
	}
	if s.HasBonus && s.BaseAmount.Present() {
		lines = append(lines, Line{Label: "Base win", Value: "$" + domain.FormatUSD(s.BaseAmount)})
	}
	if s.HasBonus {
		lines = append(lines, Line{Label: "Final win", Value: FinalWin(s)})
	}
	seed := Line{Label: "Server seed", Value: s.ServerSeed, Copy: true}
	if s.ServerSeed == "" {
		seed = Line{Label: "Server seed", Value: "hidden until reveal"}
	}
	lines = append(lines,
		Line{Label: "Server seed hash", Value: s.ServerSeedHash, Copy: true},
		seed,
		Line{Label: "Client seed", Value: s.ClientSeed, Copy: true},
		Line{Label: "Nonce", Value: strconv.FormatInt(s.Nonce, 10)},
		Line{Label: "Roll digest", Value: s.RollDigest, Copy: true},
		Line{Label: "RNG value", Value: s.RNGValue},
	)
	return lines
}

// WeightRows builds the weights snapshot table for d.
func WeightRows(d *Details) []WeightRow {
	if d == nil {
		return nil
	}
	rows := make([]WeightRow, 0, len(d.Weights))
	for _, w := range d.Weights {
		weight := ""
		if w.Weight.Valid {
			weight = w.Weight.String()
		}
		rows = append(rows, WeightRow{
			PrizeID: string(w.PrizeID),
			Name:    dash(w.PrizeName),
			Weight:  weight,
			Amount:  AmountText(w),
			Chance:  Chance(w.Weight, d.TotalWeight),
		})
	}
	return rows
}

// VerifyLines renders a verification result.
func VerifyLines(r *domain.VerifyResult) []Line {
	if r == nil {
		return nil
	}
	status := "MISMATCH"
	if r.OK {
		status = "OK"
	}
	lines := []Line{{Label: "Verification", Value: status}}
	if r.Error != "" {
		lines = append(lines, Line{Label: "Error", Value: r.Error})
	}
	if c := r.Checks; c != nil {
		lines = append(lines,
			Line{Label: "Server seed hash", Value: strconv.FormatBool(c.ServerSeedHashMatches)},
			Line{Label: "Roll digest", Value: strconv.FormatBool(c.RollDigestMatches)},
			Line{Label: "Prize matches", Value: strconv.FormatBool(c.PrizeMatches)},
		)
	}
	return lines
}

func prizeText(s domain.Spin) string {
	title := dash(s.PrizeTitle)
	if s.PrizeID != 0 {
		return "#" + strconv.FormatInt(s.PrizeID, 10) + " " + title
	}
	return title
}

func dateText(s domain.Spin) string {
	if s.CreatedAt.IsZero() {
		return "—"
	}
	return s.CreatedAt.Local().Format("2006-01-02 15:04:05")
}

func dash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

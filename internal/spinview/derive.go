package spinview

import (
	"github.com/naveenspark/casedesk/pkg/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// TotalWeight sums the snapshot weights. Missing or unparseable weights count as zero.
func TotalWeight(weights []domain.WeightEntry) decimal.Decimal {
	total := decimal.Zero
	for _, w := range weights {
		if w.Weight.Valid {
			total = total.Add(w.Weight.Decimal)
		}
	}
	return total
}

// Chance renders weight/total as a percentage with two decimals, or "—"
// when the total is zero.
func Chance(weight domain.Number, total decimal.Decimal) string {
	if total.IsZero() {
		return "—"
	}
	w := decimal.Zero
	if weight.Valid {
		w = weight.Decimal
	}
	return w.Div(total).Mul(hundred).StringFixed(2)
}

// AmountText renders the payout of a weight entry: "min-max" when both
// bounds are set and differ, otherwise the fixed amount or the lower bound.
func AmountText(e domain.WeightEntry) string {
	if e.AmountMinUSD.Present() && e.AmountMaxUSD.Present() && !e.AmountMinUSD.Equal(e.AmountMaxUSD.Decimal) {
		return domain.FormatUSD(e.AmountMinUSD) + "-" + domain.FormatUSD(e.AmountMaxUSD)
	}
	if e.AmountUSD.Present() {
		return domain.FormatUSD(e.AmountUSD)
	}
	return domain.FormatUSD(e.AmountMinUSD)
}

// WinAmount renders the payout of a spin. A bonus spin shows the base win
// followed by the final amount and how the bonus produced it.
func WinAmount(s domain.Spin) string {
	if !s.HasBonus || !s.BaseAmount.Present() {
		return domain.FormatUSD(s.FallbackAmount)
	}
	base := domain.FormatUSD(s.BaseAmount)
	actual := domain.FormatUSD(s.ActualAmount)
	switch {
	case s.BonusType == domain.BonusMultiplier && s.BonusMultiplier.Present():
		return base + " (" + actual + " x" + s.BonusMultiplier.String() + ")"
	case s.BonusType == domain.BonusExtraOpen:
		return base + " (" + actual + " + extra open)"
	}
	return base + " (" + actual + ")"
}

// FinalWin renders the final amount of a bonus spin with a short suffix.
func FinalWin(s domain.Spin) string {
	out := "$" + domain.FormatUSD(s.ActualAmount)
	switch {
	case s.BonusType == domain.BonusMultiplier && s.BonusMultiplier.Present():
		out += " (x" + s.BonusMultiplier.String() + ")"
	case s.BonusType == domain.BonusExtraOpen:
		out += " (with bonus)"
	}
	return out
}

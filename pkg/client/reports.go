package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/naveenspark/casedesk/pkg/domain"
)

// ReportPageSize is the page size requested from paged reports.
const ReportPageSize = 50

// Presets are the named report periods the backend understands.
var Presets = []string{"today", "yesterday", "7d", "30d", "this_month", "prev_month"}

// DefaultPreset is the period used when a query names none.
const DefaultPreset = "7d"

// ReportQuery selects a report period: an explicit From/To range when
// either is set, otherwise a named preset.
type ReportQuery struct {
	Preset string
	From   time.Time
	To     time.Time
}

func (q ReportQuery) values() url.Values {
	v := url.Values{}
	if !q.From.IsZero() || !q.To.IsZero() {
		if !q.From.IsZero() {
			v.Set("from", q.From.UTC().Format(time.RFC3339))
		}
		if !q.To.IsZero() {
			v.Set("to", q.To.UTC().Format(time.RFC3339))
		}
		return v
	}
	preset := q.Preset
	if preset == "" {
		preset = DefaultPreset
	}
	v.Set("preset", preset)
	return v
}

// NextPreset returns the preset after p in Presets, wrapping around.
func NextPreset(p string) string {
	for i, name := range Presets {
		if name == p {
			return Presets[(i+1)%len(Presets)]
		}
	}
	return DefaultPreset
}

func withPage(v url.Values, page int) url.Values {
	if page < 1 {
		page = 1
	}
	v.Set("page", strconv.Itoa(page))
	v.Set("page_size", strconv.Itoa(ReportPageSize))
	return v
}

// --- Report methods ---

// Dashboard returns the KPIs, leaderboards and new accounts for a period.
func (c *Client) Dashboard(ctx context.Context, q ReportQuery) (*domain.Dashboard, error) {
	var d domain.Dashboard
	if err := c.get(ctx, "/api/admin/dashboard/?"+q.values().Encode(), &d); err != nil {
		return nil, fmt.Errorf("client.Dashboard: %w", err)
	}
	return &d, nil
}

// ListDeposits returns one page of deposits made in a period.
func (c *Client) ListDeposits(ctx context.Context, q ReportQuery, page int) (*domain.DepositPage, error) {
	var p domain.DepositPage
	if err := c.get(ctx, "/api/admin/deposits/?"+withPage(q.values(), page).Encode(), &p); err != nil {
		return nil, fmt.Errorf("client.ListDeposits: %w", err)
	}
	return &p, nil
}

// ListReferralBonuses returns one page of referral commissions paid between
// from and to.
func (c *Client) ListReferralBonuses(ctx context.Context, from, to time.Time, page int) (*domain.ReferralBonusPage, error) {
	q := ReportQuery{From: from, To: to}
	var p domain.ReferralBonusPage
	if err := c.get(ctx, "/api/admin/referral-bonuses/?"+withPage(q.values(), page).Encode(), &p); err != nil {
		return nil, fmt.Errorf("client.ListReferralBonuses: %w", err)
	}
	return &p, nil
}

// --- Promo code methods ---

// ListPromocodes returns every promo code.
func (c *Client) ListPromocodes(ctx context.Context) ([]domain.Promocode, error) {
	var codes list[domain.Promocode]
	if err := c.get(ctx, "/api/admin/promocodes/", &codes); err != nil {
		return nil, fmt.Errorf("client.ListPromocodes: %w", err)
	}
	return codes, nil
}

// ListPromocodeActivations returns the redemption history.
func (c *Client) ListPromocodeActivations(ctx context.Context) ([]domain.PromocodeActivation, error) {
	var acts list[domain.PromocodeActivation]
	if err := c.get(ctx, "/api/admin/promocode-activations/", &acts); err != nil {
		return nil, fmt.Errorf("client.ListPromocodeActivations: %w", err)
	}
	return acts, nil
}

// --- Referral settings ---

// ListRefLevels returns the commission percent of each referral level.
func (c *Client) ListRefLevels(ctx context.Context) ([]domain.RefLevel, error) {
	var levels list[domain.RefLevel]
	if err := c.get(ctx, "/api/admin/ref-levels/", &levels); err != nil {
		return nil, fmt.Errorf("client.ListRefLevels: %w", err)
	}
	return levels, nil
}

// CashbackSetting returns the active cashback setting, or nil when the
// backend has none configured.
func (c *Client) CashbackSetting(ctx context.Context) (*domain.CashbackSetting, error) {
	var settings list[domain.CashbackSetting]
	if err := c.get(ctx, "/api/admin/cashback-settings/", &settings); err != nil {
		return nil, fmt.Errorf("client.CashbackSetting: %w", err)
	}
	if len(settings) == 0 {
		return nil, nil
	}
	return &settings[0], nil
}

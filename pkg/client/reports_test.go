package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/naveenspark/casedesk/pkg/domain"
)

func TestReportQueryValues(t *testing.T) {
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	tests := []struct {
		name string
		q    ReportQuery
		want string
	}{
		{"default preset", ReportQuery{}, "preset=7d"},
		{"named preset", ReportQuery{Preset: "today"}, "preset=today"},
		{"range wins over preset", ReportQuery{Preset: "today", From: from, To: to}, "from=2025-03-01T00%3A00%3A00Z&to=2025-03-02T00%3A00%3A00Z"},
		{"open range", ReportQuery{From: from}, "from=2025-03-01T00%3A00%3A00Z"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.q.values().Encode(); got != tc.want {
				t.Errorf("values() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNextPreset(t *testing.T) {
	tests := []struct{ in, want string }{
		{"today", "yesterday"},
		{"7d", "30d"},
		{"prev_month", "today"},
		{"bogus", DefaultPreset},
	}
	for _, tc := range tests {
		if got := NextPreset(tc.in); got != tc.want {
			t.Errorf("NextPreset(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDashboard(t *testing.T) {
	c, srv := newBackendClient(t)
	srv.SetDashboard("today", domain.Dashboard{
		KPIs:        domain.DashboardKPIs{ProfitUSD: domain.NewNumber(120.5), SpinsCount: 31},
		SpinsByType: []domain.CaseTypeSpins{{TypeID: 1, Type: "standard", Name: "Neon", Spins: 31}},
		TopUsers:    domain.TopUsers{BySpins: []domain.TopUser{{UserID: 42, Username: "lucky", Spins: 20}}},
	})

	d, err := c.Dashboard(context.Background(), ReportQuery{Preset: "today"})
	if err != nil {
		t.Fatalf("Dashboard() error: %v", err)
	}
	if got := domain.FormatUSD(d.KPIs.ProfitUSD); got != "120.50" {
		t.Errorf("profit = %q, want 120.50", got)
	}
	if d.KPIs.SpinsCount != 31 || len(d.SpinsByType) != 1 || len(d.TopUsers.BySpins) != 1 {
		t.Errorf("dashboard = %+v", d)
	}
	if got := srv.LastQuery(http.MethodGet, "/api/admin/dashboard/").Get("preset"); got != "today" {
		t.Errorf("preset sent = %q, want today", got)
	}
}

func TestListDeposits_Pages(t *testing.T) {
	c, srv := newBackendClient(t)
	deposits := make([]domain.Deposit, ReportPageSize+5)
	for i := range deposits {
		deposits[i] = domain.Deposit{ID: domain.Int(i + 1), AmountUSD: domain.NewNumber(10)}
	}
	srv.SetDeposits(deposits)

	p, err := c.ListDeposits(context.Background(), ReportQuery{Preset: "30d"}, 2)
	if err != nil {
		t.Fatalf("ListDeposits() error: %v", err)
	}
	if p.Total != domain.Int(len(deposits)) {
		t.Errorf("Total = %d, want %d", p.Total, len(deposits))
	}
	if len(p.Deposits) != 5 || p.Deposits[0].ID != ReportPageSize+1 {
		t.Errorf("page 2 = %d deposits starting at %v", len(p.Deposits), p.Deposits)
	}
	q := srv.LastQuery(http.MethodGet, "/api/admin/deposits/")
	if q.Get("page") != "2" || q.Get("page_size") != "50" || q.Get("preset") != "30d" {
		t.Errorf("query = %v", q)
	}
}

func TestListReferralBonuses(t *testing.T) {
	c, srv := newBackendClient(t)
	srv.SetReferralBonuses([]domain.ReferralBonus{
		{ID: 1, Level: 1, Percent: domain.NewNumber(10), AmountUSD: domain.NewNumber(5)},
		{ID: 2, Level: 2, Percent: domain.NewNumber(3), AmountUSD: domain.NewNumber(1.5)},
	})
	to := time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)
	from := to.Add(-24 * time.Hour)

	p, err := c.ListReferralBonuses(context.Background(), from, to, 1)
	if err != nil {
		t.Fatalf("ListReferralBonuses() error: %v", err)
	}
	if len(p.Items) != 2 || p.Pagination.TotalCount != 2 || p.Pagination.TotalPages != 1 {
		t.Errorf("page = %+v", p)
	}
	if got := domain.FormatUSD(p.TotalSumUSD); got != "6.50" {
		t.Errorf("total = %q, want 6.50", got)
	}
	q := srv.LastQuery(http.MethodGet, "/api/admin/referral-bonuses/")
	if q.Get("from") != "2025-03-01T12:00:00Z" || q.Get("to") != "2025-03-02T12:00:00Z" || q.Has("preset") {
		t.Errorf("query = %v", q)
	}
}

func TestPromocodes(t *testing.T) {
	c, srv := newBackendClient(t)
	srv.SetPromocodes(
		[]domain.Promocode{{ID: 1, Code: "SPRING", PromoType: "single", AmountUSD: domain.NewNumber(5), MaxActivations: 100, RemainingActivations: 98, IsActive: true}},
		[]domain.PromocodeActivation{{ID: 7, Promocode: domain.PromocodeRef{Code: "SPRING"}, User: domain.User{ID: 42}, AmountUSD: domain.NewNumber(5)}},
	)

	codes, err := c.ListPromocodes(context.Background())
	if err != nil {
		t.Fatalf("ListPromocodes() error: %v", err)
	}
	if len(codes) != 1 || !codes[0].SingleUse() || codes[0].RemainingActivations != 98 {
		t.Errorf("codes = %+v", codes)
	}
	acts, err := c.ListPromocodeActivations(context.Background())
	if err != nil {
		t.Fatalf("ListPromocodeActivations() error: %v", err)
	}
	if len(acts) != 1 || acts[0].Promocode.Code != "SPRING" {
		t.Errorf("activations = %+v", acts)
	}
}

func TestReferralSettings(t *testing.T) {
	c, srv := newBackendClient(t)
	srv.SetReferralSettings(
		[]domain.RefLevel{{ID: 1, Level: 1, Percent: domain.NewNumber(10)}, {ID: 2, Level: 2, Percent: domain.NewNumber(3)}},
		[]domain.CashbackSetting{{ID: 1, Percent: domain.NewNumber(5)}},
	)

	levels, err := c.ListRefLevels(context.Background())
	if err != nil {
		t.Fatalf("ListRefLevels() error: %v", err)
	}
	if len(levels) != 2 || levels[1].Level != 2 {
		t.Errorf("levels = %+v", levels)
	}
	cb, err := c.CashbackSetting(context.Background())
	if err != nil {
		t.Fatalf("CashbackSetting() error: %v", err)
	}
	if cb == nil || domain.FormatUSD(cb.Percent) != "5.00" {
		t.Errorf("cashback = %+v", cb)
	}
}

func TestCashbackSetting_None(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[]`)) //nolint:errcheck
	}))
	defer srv.Close()

	cb, err := newClient(t, srv.URL).CashbackSetting(context.Background())
	if err != nil || cb != nil {
		t.Errorf("CashbackSetting() = %+v, %v; want nil, nil", cb, err)
	}
}

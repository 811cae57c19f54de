package domain

import (
	"encoding/json"
	"testing"
)

const rootSpinJSON = `{
	"id": 41,
	"created_at": "2025-03-01T10:00:00Z",
	"case": {"id": 3, "name": "Neon"},
	"case_prize": {"id": 12},
	"prize": {"title": "AWP", "amount_usd": "25.00"},
	"actual_amount_usd": "30.00",
	"base_amount_usd": "10.00",
	"has_bonus": true,
	"bonus_type": "extra_open",
	"bonus_spins": [{"bonus_spin_id": 7, "amount": "20.00", "nonce": 5}],
	"bonus_spins_list": [{"spin_id": 8, "amount": 5}],
	"server_seed_hash": "abc",
	"client_seed": "client",
	"nonce": 4,
	"roll_digest": "ffee",
	"rng_value": 0.4211,
	"weights_snapshot": [
		{"prize_id": 12, "prize_name": "AWP", "weight": 1, "amount_usd": "25.00"},
		{"prize_id": "13", "prize_name": "Knife", "weight": "3", "amount_min_usd": "1", "amount_max_usd": "2"}
	],
	"parent_spin_id": null
}`

func TestRootSpinCanonical(t *testing.T) {
	var rec RootSpin
	if err := json.Unmarshal([]byte(rootSpinJSON), &rec); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	s := rec.Canonical()

	if s.ID != 41 {
		t.Errorf("ID = %d, want 41", s.ID)
	}
	if s.CaseName != "Neon" {
		t.Errorf("CaseName = %q, want %q", s.CaseName, "Neon")
	}
	if s.PrizeID != 12 || s.PrizeTitle != "AWP" {
		t.Errorf("prize = #%d %q, want #12 AWP", s.PrizeID, s.PrizeTitle)
	}
	if s.IsExtraOpen {
		t.Error("root spin without parent should not be an extra open")
	}
	if len(s.BonusSpins) != 1 || s.BonusSpins[0].TargetID() != 8 {
		t.Errorf("BonusSpins = %+v, want bonus_spins_list to win", s.BonusSpins)
	}
	if s.RNGValue != "0.4211" {
		t.Errorf("RNGValue = %q, want %q", s.RNGValue, "0.4211")
	}
	if len(s.Weights) != 2 || string(s.Weights[1].PrizeID) != "13" {
		t.Errorf("Weights = %+v", s.Weights)
	}
	if s.BonusLabel != "Bonus" {
		t.Errorf("BonusLabel = %q, want fallback %q", s.BonusLabel, "Bonus")
	}
}

func TestRootSpinWithParentIsExtraOpen(t *testing.T) {
	var rec RootSpin
	if err := json.Unmarshal([]byte(`{"id": 2, "parent_spin_id": 1}`), &rec); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if !rec.Canonical().IsExtraOpen {
		t.Error("record with parent_spin_id should be an extra open")
	}
}

func TestBonusSubSpinAlwaysExtraOpen(t *testing.T) {
	var rec BonusSubSpin
	if err := json.Unmarshal([]byte(`{"id": 7, "server_seed_hash": "h"}`), &rec); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	s := rec.Canonical()
	if !s.IsExtraOpen {
		t.Error("bonus sub-spin should always be an extra open")
	}
	if s.ParentSpinID != nil {
		t.Errorf("ParentSpinID = %v, want nil", *s.ParentSpinID)
	}
}

func TestCaseRefForms(t *testing.T) {
	tests := []struct {
		raw      string
		wantID   int64
		wantName string
	}{
		{`5`, 5, ""},
		{`"6"`, 6, ""},
		{`{"id": 7, "name": "Gold"}`, 7, "Gold"},
		{`null`, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var r CaseRef
			if err := json.Unmarshal([]byte(tt.raw), &r); err != nil {
				t.Fatalf("Unmarshal error: %v", err)
			}
			if r.ID != tt.wantID || r.Name != tt.wantName {
				t.Errorf("got %+v, want id=%d name=%q", r, tt.wantID, tt.wantName)
			}
		})
	}
}

func TestCaseNameFallsBackToID(t *testing.T) {
	var rec RootSpin
	if err := json.Unmarshal([]byte(`{"id": 1, "case": 9}`), &rec); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if got := rec.Canonical().CaseName; got != "#9" {
		t.Errorf("CaseName = %q, want %q", got, "#9")
	}
}

func TestFallbackAmountOrder(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"actual wins", `{"actual_amount_usd": "3", "amount_usd": "4", "prize": {"amount_usd": "5"}}`, "3.00"},
		{"amount next", `{"amount_usd": "4", "prize": {"amount_usd": "5"}}`, "4.00"},
		{"prize last", `{"prize": {"amount_usd": "5"}}`, "5.00"},
		{"nothing", `{}`, "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec RootSpin
			if err := json.Unmarshal([]byte(tt.raw), &rec); err != nil {
				t.Fatalf("Unmarshal error: %v", err)
			}
			if got := FormatUSD(rec.Canonical().FallbackAmount); got != tt.want {
				t.Errorf("FallbackAmount = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBonusSpinStubsIgnoresNonArray(t *testing.T) {
	var rec RootSpin
	if err := json.Unmarshal([]byte(`{"bonus_spins": 2}`), &rec); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if len(rec.BonusSpins) != 0 {
		t.Errorf("BonusSpins = %+v, want empty", rec.BonusSpins)
	}
}

func TestBonusSpinStubTargetID(t *testing.T) {
	tests := []struct {
		stub BonusSpinStub
		want int64
	}{
		{BonusSpinStub{BonusSpinID: 1, SpinID: 2, SpinIDCamel: 3}, 1},
		{BonusSpinStub{SpinID: 2, SpinIDCamel: 3}, 2},
		{BonusSpinStub{SpinIDCamel: 3}, 3},
		{BonusSpinStub{}, 0},
	}
	for _, tt := range tests {
		if got := tt.stub.TargetID(); got != tt.want {
			t.Errorf("TargetID(%+v) = %d, want %d", tt.stub, got, tt.want)
		}
	}
}

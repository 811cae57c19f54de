package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// BonusType identifies how a bonus modified a spin's payout.
type BonusType string

const (
	BonusMultiplier BonusType = "multiplier"
	BonusExtraOpen  BonusType = "extra_open"
)

// SpinRecord is one of the two wire shapes a spin can arrive in.
// RootSpin comes from a spins collection, BonusSubSpin from the bonus-spins
// collection. Canonical maps either into the shape the console renders.
type SpinRecord interface {
	Canonical() Spin
	spinRecord()
}

// SpinFields holds the fields both wire shapes share.
type SpinFields struct {
	ID               int64          `json:"id"`
	CreatedAt        Timestamp      `json:"created_at"`
	CaseName         string         `json:"case_name"`
	Case             CaseRef        `json:"case"`
	CasePrize        *PrizeRef      `json:"case_prize"`
	PrizeTitle       string         `json:"prize_title"`
	Prize            PrizeRef       `json:"prize"`
	ActualAmountUSD  Number         `json:"actual_amount_usd"`
	BaseAmountUSD    Number         `json:"base_amount_usd"`
	AmountUSD        Number         `json:"amount_usd"`
	HasBonus         bool           `json:"has_bonus"`
	BonusType        BonusType      `json:"bonus_type"`
	BonusTypeDisplay string         `json:"bonus_type_display"`
	BonusMultiplier  Number         `json:"bonus_multiplier"`
	BonusDescription string         `json:"bonus_description"`
	BonusSpinsList   BonusSpinStubs `json:"bonus_spins_list"`
	BonusSpins       BonusSpinStubs `json:"bonus_spins"`
	ServerSeedHash   string         `json:"server_seed_hash"`
	ServerSeed       string         `json:"server_seed"`
	ClientSeed       string         `json:"client_seed"`
	Nonce            Int            `json:"nonce"`
	RollDigest       string         `json:"roll_digest"`
	RNGValue         Scalar         `json:"rng_value"`
	WeightsSnapshot  []WeightEntry  `json:"weights_snapshot"`
	ParentSpinID     *int64         `json:"parent_spin_id"`
	IsExtraOpen      bool           `json:"is_extra_open"`
}

// RootSpin is a spin record from a spins collection.
type RootSpin struct {
	SpinFields
}

// BonusSubSpin is a chained extra-open spin stored in the bonus-spins collection.
type BonusSubSpin struct {
	SpinFields
}

func (RootSpin) spinRecord()     {}
func (BonusSubSpin) spinRecord() {}

// Canonical maps a root spin. It is an extra open only when the record
// itself points at a parent.
func (r RootSpin) Canonical() Spin {
	s := r.SpinFields.canonical()
	s.IsExtraOpen = r.ParentSpinID != nil || r.IsExtraOpen
	return s
}

// Canonical maps a bonus sub-spin. Bonus sub-spins are always extra opens.
func (b BonusSubSpin) Canonical() Spin {
	s := b.SpinFields.canonical()
	s.IsExtraOpen = true
	return s
}

func (f SpinFields) canonical() Spin {
	s := Spin{
		ID:              f.ID,
		CreatedAt:       f.CreatedAt.Time,
		CaseName:        f.caseName(),
		PrizeTitle:      f.PrizeTitle,
		ActualAmount:    f.ActualAmountUSD,
		BaseAmount:      f.BaseAmountUSD,
		HasBonus:        f.HasBonus,
		BonusType:       f.BonusType,
		BonusMultiplier: f.BonusMultiplier,
		BonusLabel:      firstNonEmpty(f.BonusDescription, f.BonusTypeDisplay, "Bonus"),
		ServerSeedHash:  f.ServerSeedHash,
		ServerSeed:      f.ServerSeed,
		ClientSeed:      f.ClientSeed,
		Nonce:           int64(f.Nonce),
		RollDigest:      f.RollDigest,
		RNGValue:        string(f.RNGValue),
		Weights:         f.WeightsSnapshot,
		ParentSpinID:    f.ParentSpinID,
	}
	if f.CasePrize != nil {
		s.PrizeID = f.CasePrize.ID
	}
	if s.PrizeTitle == "" {
		s.PrizeTitle = f.Prize.Title
	}
	switch {
	case f.ActualAmountUSD.Valid:
		s.FallbackAmount = f.ActualAmountUSD
	case f.AmountUSD.Valid:
		s.FallbackAmount = f.AmountUSD
	default:
		s.FallbackAmount = f.Prize.AmountUSD
	}
	if len(f.BonusSpinsList) > 0 {
		s.BonusSpins = f.BonusSpinsList
	} else {
		s.BonusSpins = f.BonusSpins
	}
	return s
}

func (f SpinFields) caseName() string {
	switch {
	case f.CaseName != "":
		return f.CaseName
	case f.Case.Name != "":
		return f.Case.Name
	case f.Case.ID != 0:
		return "#" + strconv.FormatInt(f.Case.ID, 10)
	}
	return ""
}

// Spin is the collection-agnostic record the spin views render.
type Spin struct {
	ID              int64
	CreatedAt       time.Time
	CaseName        string
	PrizeID         int64
	PrizeTitle      string
	ActualAmount    Number
	BaseAmount      Number
	FallbackAmount  Number // actual, else amount_usd, else prize amount
	HasBonus        bool
	BonusType       BonusType
	BonusMultiplier Number
	BonusLabel      string
	BonusSpins      []BonusSpinStub
	ServerSeedHash  string
	ServerSeed      string // empty until revealed
	ClientSeed      string
	Nonce           int64
	RollDigest      string
	RNGValue        string
	Weights         []WeightEntry
	ParentSpinID    *int64
	IsExtraOpen     bool
}

// WeightEntry is one row of the prize odds captured at spin time.
type WeightEntry struct {
	PrizeID      Scalar `json:"prize_id"`
	PrizeName    string `json:"prize_name"`
	Weight       Number `json:"weight"`
	AmountUSD    Number `json:"amount_usd"`
	AmountMinUSD Number `json:"amount_min_usd"`
	AmountMaxUSD Number `json:"amount_max_usd"`
}

// BonusSpinStub points from a root spin at one of its extra opens.
type BonusSpinStub struct {
	BonusSpinID Int    `json:"bonus_spin_id"`
	SpinID      Int    `json:"spin_id"`
	SpinIDCamel Int    `json:"spinId"`
	Amount      Number `json:"amount"`
	Nonce       Int    `json:"nonce"`
}

// TargetID returns the id of the bonus sub-spin, or 0 when the stub has none.
func (b BonusSpinStub) TargetID() int64 {
	switch {
	case b.BonusSpinID != 0:
		return int64(b.BonusSpinID)
	case b.SpinID != 0:
		return int64(b.SpinID)
	}
	return int64(b.SpinIDCamel)
}

// BonusSpinStubs decodes a list of stubs and ignores anything that is not an array.
type BonusSpinStubs []BonusSpinStub

func (s *BonusSpinStubs) UnmarshalJSON(b []byte) error {
	*s = nil
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '[' {
		return nil
	}
	var stubs []BonusSpinStub
	if err := json.Unmarshal(b, &stubs); err != nil {
		return err
	}
	*s = stubs
	return nil
}

// VerifyChecks are the individual comparisons behind a verification.
type VerifyChecks struct {
	ServerSeedHashMatches bool `json:"serverSeedHashMatches"`
	RollDigestMatches     bool `json:"rollDigestMatches"`
	PrizeMatches          bool `json:"prizeMatches"`
}

// VerifyResult is the backend's re-derivation of a spin outcome.
type VerifyResult struct {
	OK     bool          `json:"ok"`
	Checks *VerifyChecks `json:"checks,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// CaseRef is a case reference sent either as a bare id or as an object.
type CaseRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (r *CaseRef) UnmarshalJSON(b []byte) error {
	type plain CaseRef
	var p plain
	id, err := decodeRef(b, &p)
	if err != nil {
		return err
	}
	*r = CaseRef(p)
	if id != 0 {
		r.ID = id
	}
	return nil
}

// PrizeRef is a prize reference sent either as a bare id or as an object.
type PrizeRef struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	AmountUSD Number `json:"amount_usd"`
}

func (r *PrizeRef) UnmarshalJSON(b []byte) error {
	type plain PrizeRef
	var p plain
	id, err := decodeRef(b, &p)
	if err != nil {
		return err
	}
	*r = PrizeRef(p)
	if id != 0 {
		r.ID = id
	}
	return nil
}

// decodeRef fills obj when b is an object and returns the id when b is a
// bare number or numeric string.
func decodeRef(b []byte, obj any) (int64, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return 0, nil
	}
	if b[0] == '{' {
		return 0, json.Unmarshal(b, obj)
	}
	s := strings.Trim(string(b), `"`)
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, nil
	}
	return id, nil
}

// Scalar keeps the textual form of a JSON scalar (string, number or bool).
type Scalar string

func (s *Scalar) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		*s = ""
	case b[0] == '"':
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = Scalar(str)
	default:
		*s = Scalar(b)
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

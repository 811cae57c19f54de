// Package spinview loads a spin record, derives what the console shows
// about it and drives re-verification and drill-down into bonus spins.
// It has no rendering of its own; the TUI and the CLI both read from it.
package spinview

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/naveenspark/casedesk/pkg/client"
	"github.com/naveenspark/casedesk/pkg/domain"
	"github.com/naveenspark/casedesk/pkg/session"
	"github.com/shopspring/decimal"
)

// User-facing failure messages.
const (
	LoadErrorMessage   = "could not load spin details"
	VerifyErrorMessage = "verification could not be completed"
)

// ErrInvalidSpinID is returned for ids that are zero or negative.
var ErrInvalidSpinID = errors.New("spin id must be positive")

// Details is a loaded spin plus its derived values.
type Details struct {
	domain.Spin
	TotalWeight decimal.Decimal
}

// Title is "Extra open #id" for chained spins and "Spin #id" otherwise.
func (d *Details) Title() string {
	if d.IsExtraOpen {
		return fmt.Sprintf("Extra open #%d", d.ID)
	}
	return fmt.Sprintf("Spin #%d", d.ID)
}

// Load identifies one load request and the generation it was issued under.
type Load struct {
	Generation uint64
	SpinID     int64
	BasePath   string
}

// Result is the outcome of Fetch, handed back to Commit.
type Result struct {
	Load
	Details *Details
	Err     error
}

// VerifyRequest identifies one verification call.
type VerifyRequest struct {
	Generation uint64
	Path       string
}

// VerifyOutcome is the outcome of RunVerify, handed back to CommitVerify.
type VerifyOutcome struct {
	Generation uint64
	Result     domain.VerifyResult
}

// ViewModel is the state of one spin details view. It is not safe for
// concurrent use; network work happens in Fetch and RunVerify, which touch
// no state, and results are applied with Commit and CommitVerify.
type ViewModel struct {
	generation uint64
	spinID     int64
	basePath   string

	loading bool
	details *Details
	err     string

	verifying bool
	verify    *domain.VerifyResult
}

// New returns an idle view-model.
func New() *ViewModel {
	return &ViewModel{}
}

// Begin starts loading spinID from basePath. Any load or verification still
// in flight is superseded.
func (vm *ViewModel) Begin(spinID int64, basePath string) (Load, error) {
	if spinID <= 0 {
		return Load{}, ErrInvalidSpinID
	}
	vm.generation++
	vm.spinID = spinID
	vm.basePath = basePath
	vm.loading = true
	vm.details = nil
	vm.err = ""
	vm.verifying = false
	vm.verify = nil
	return Load{Generation: vm.generation, SpinID: spinID, BasePath: basePath}, nil
}

// Fetch performs the request described by l. It does not touch any view-model.
func Fetch(ctx context.Context, f session.Fetcher, l Load) Result {
	res := Result{Load: l}
	resp, err := f.Fetch(ctx, session.Request{
		Method: http.MethodGet,
		Path:   DetailPath(l.BasePath, l.SpinID),
		Header: http.Header{"Accept": []string{"application/json"}},
	})
	if err != nil {
		res.Err = fmt.Errorf("spinview.Fetch: %w", err)
		return res
	}

	var rec domain.SpinRecord
	if IsBonusCollection(l.BasePath) {
		var b domain.BonusSubSpin
		err = client.Decode(resp, &b)
		rec = b
	} else {
		var r domain.RootSpin
		err = client.Decode(resp, &r)
		rec = r
	}
	if err != nil {
		res.Err = fmt.Errorf("spinview.Fetch: %w", err)
		return res
	}

	spin := rec.Canonical()
	res.Details = &Details{Spin: spin, TotalWeight: TotalWeight(spin.Weights)}
	return res
}

// Commit applies r if it belongs to the current generation and reports
// whether it did. Stale results are dropped.
func (vm *ViewModel) Commit(r Result) bool {
	if r.Generation != vm.generation || !vm.loading {
		return false
	}
	vm.loading = false
	if r.Err != nil {
		vm.err = LoadErrorMessage
		return true
	}
	vm.details = r.Details
	return true
}

// Cancel discards every in-flight load and verification.
func (vm *ViewModel) Cancel() {
	vm.generation++
	vm.loading = false
	vm.verifying = false
}

// LoadDetails runs Begin, Fetch and Commit in sequence. The returned error is
// the underlying fetch error; the view-model holds the user-facing message.
func (vm *ViewModel) LoadDetails(ctx context.Context, f session.Fetcher, spinID int64, basePath string) error {
	l, err := vm.Begin(spinID, basePath)
	if err != nil {
		return err
	}
	r := Fetch(ctx, f, l)
	vm.Commit(r)
	return r.Err
}

// BeginVerify starts a verification of the loaded spin. It refuses while
// one is outstanding or before details are loaded.
func (vm *ViewModel) BeginVerify() (VerifyRequest, bool) {
	if vm.verifying || vm.details == nil {
		return VerifyRequest{}, false
	}
	vm.verifying = true
	vm.verify = nil
	return VerifyRequest{Generation: vm.generation, Path: VerifyPath(vm.basePath, vm.spinID)}, true
}

// RunVerify performs the verification call. Any failure becomes a
// not-ok result carrying VerifyErrorMessage.
func RunVerify(ctx context.Context, f session.Fetcher, req VerifyRequest) VerifyOutcome {
	out := VerifyOutcome{Generation: req.Generation}
	resp, err := f.Fetch(ctx, session.Request{
		Method: http.MethodGet,
		Path:   req.Path,
		Header: http.Header{"Accept": []string{"application/json"}},
	})
	if err == nil {
		err = client.Decode(resp, &out.Result)
	}
	if err != nil {
		out.Result = domain.VerifyResult{OK: false, Error: VerifyErrorMessage}
	}
	return out
}

// CommitVerify applies o unless the view-model moved on since BeginVerify.
func (vm *ViewModel) CommitVerify(o VerifyOutcome) bool {
	if o.Generation != vm.generation || !vm.verifying {
		return false
	}
	vm.verifying = false
	res := o.Result
	vm.verify = &res
	return true
}

// Verify runs BeginVerify, RunVerify and CommitVerify in sequence.
func (vm *ViewModel) Verify(ctx context.Context, f session.Fetcher) (domain.VerifyResult, bool) {
	req, ok := vm.BeginVerify()
	if !ok {
		return domain.VerifyResult{}, false
	}
	o := RunVerify(ctx, f, req)
	vm.CommitVerify(o)
	return o.Result, true
}

// OpenBonusSpin returns a child view-model already loading bonus sub-spin
// bonusSpinID from the bonus-spins collection.
func (vm *ViewModel) OpenBonusSpin(bonusSpinID int64) (*ViewModel, Load, error) {
	child := New()
	l, err := child.Begin(bonusSpinID, BonusSpinsPath)
	if err != nil {
		return nil, Load{}, err
	}
	return child, l, nil
}

// BonusSpins lists the extra opens of the loaded spin, or nil when the spin
// is not an extra-open bonus.
func (vm *ViewModel) BonusSpins() []domain.BonusSpinStub {
	if vm.details == nil || !vm.details.HasBonus || vm.details.BonusType != domain.BonusExtraOpen {
		return nil
	}
	return vm.details.BonusSpins
}

func (vm *ViewModel) SpinID() int64                      { return vm.spinID }
func (vm *ViewModel) BasePath() string                   { return vm.basePath }
func (vm *ViewModel) Generation() uint64                 { return vm.generation }
func (vm *ViewModel) Loading() bool                      { return vm.loading }
func (vm *ViewModel) Details() *Details                  { return vm.details }
func (vm *ViewModel) Err() string                        { return vm.err }
func (vm *ViewModel) Verifying() bool                    { return vm.verifying }
func (vm *ViewModel) Verification() *domain.VerifyResult { return vm.verify }

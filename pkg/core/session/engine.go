package session

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NodeProvider is the capability set the engine consumes from the external
// ledger node. Transport and authentication are the implementation's concern.
type NodeProvider interface {
	// Coin resolves a coin id to its ledger snapshot. Unknown coins fail
	// with KindCoinNotFound.
	Coin(ctx context.Context, coinID string) (*Coin, error)

	// Simulate dry-runs the candidate transaction without committing it and
	// returns the node's fee estimate.
	Simulate(ctx context.Context, tx *WireTransaction) (*Simulation, error)

	// Sign asks the node's wallet for signatures over the exact shape that
	// was simulated.
	Sign(ctx context.Context, tx *WireTransaction) (*SignatureBundle, error)

	// Broadcast submits a fully signed transaction for propagation and
	// returns the resulting ledger transaction identifier.
	Broadcast(ctx context.Context, bundle *SignatureBundle) (string, error)

	// DefaultAddress returns the wallet address implicit change is sent to.
	DefaultAddress(ctx context.Context) (string, error)
}

// Simulation is the node's dry-run verdict for a candidate transaction.
type Simulation struct {
	Fee    decimal.Decimal
	Detail string
}

// Config tunes the engine's validation policy.
type Config struct {
	// MinFee is the fee floor assumed before the node has produced an
	// estimate, expressed in the base asset.
	MinFee decimal.Decimal `mapstructure:"-"`

	// AutoTokenChange switches the validator to the looser policy: leftover
	// non-base surplus is returned automatically instead of being rejected
	// as UnbalancedToken.
	AutoTokenChange bool `mapstructure:"auto_token_change"`
}

// Engine orchestrates the draft lifecycle: it owns no state of its own and
// funnels every mutation through the store, so per-draft serialization is
// inherited from the store's locking.
type Engine struct {
	store *Store
	node  NodeProvider
	cfg   Config
}

// NewEngine wires the session engine to its store and node provider.
// Panics if either is nil, enforcing correct application configuration.
func NewEngine(store *Store, node NodeProvider, cfg Config) *Engine {
	if store == nil {
		panic("session engine store is nil")
	}
	if node == nil {
		panic("session engine node provider is nil")
	}
	return &Engine{store: store, node: node, cfg: cfg}
}

// Store exposes the underlying draft store for read paths and the janitor.
func (e *Engine) Store() *Store { return e.store }

// Open creates a fresh OPEN draft. An empty id asks the engine to generate
// one; duplicates are rejected.
func (e *Engine) Open(ctx context.Context, id string) (*Draft, error) {
	if id == "" {
		id = uuid.NewString()
	}
	return e.store.Open(id)
}

// Get returns a snapshot of the draft.
func (e *Engine) Get(ctx context.Context, id string) (*Draft, error) {
	return e.store.Get(id)
}

// List returns snapshots of every active draft.
func (e *Engine) List(ctx context.Context) []*Draft {
	return e.store.List()
}

// Delete moves a non-terminal draft to DELETED and evicts it.
func (e *Engine) Delete(ctx context.Context, id string) (*Draft, error) {
	return e.store.Delete(id)
}

// AddInput resolves the coin against the ledger and attaches it to the
// draft. Mutation is legal only while the draft is OPEN or SIMULATED; the
// latter invalidates the simulation and reverts to OPEN. The resolution
// happens before the draft is touched, so a failed resolve leaves the draft
// byte-for-byte as it was.
func (e *Engine) AddInput(ctx context.Context, id, coinID string, override *decimal.Decimal) (*Draft, error) {
	if coinID == "" {
		return nil, Errorf(KindInvalidArgument, "coin id must not be empty")
	}
	return e.store.Update(id, func(d *Draft) error {
		if err := mutable(d, "add an input to"); err != nil {
			return err
		}

		coin, err := e.node.Coin(ctx, coinID)
		if err != nil {
			return e.translate(err, "coin resolution")
		}
		if coin.Spent {
			return NewCoinSpentError(coinID)
		}
		if override != nil {
			if override.Sign() <= 0 {
				return Errorf(KindInvalidArgument, "override amount must be positive")
			}
			if override.GreaterThan(coin.Amount) {
				return Errorf(KindInvalidArgument, "override amount %s exceeds resolved coin amount %s", override.String(), coin.Amount.String())
			}
		}

		d.invalidate()
		d.Inputs = append(d.Inputs, InputRef{
			CoinID:   coin.CoinID,
			Amount:   coin.Amount,
			TokenID:  coin.TokenID,
			Script:   coin.Script,
			Override: override,
		})
		return nil
	})
}

// AddOutput attaches a new output to the draft under the same mutation rules
// as AddInput. Validation is purely local and never touches the network.
func (e *Engine) AddOutput(ctx context.Context, id string, out OutputSpec) (*Draft, error) {
	if out.Address == "" {
		return nil, Errorf(KindInvalidArgument, "output address must not be empty")
	}
	if !out.Amount.IsPositive() {
		return nil, Errorf(KindInvalidArgument, "output amount must be positive")
	}
	if out.TokenID == "" {
		out.TokenID = BaseTokenID
	}
	seen := make(map[int]bool, len(out.State))
	for _, sv := range out.State {
		if sv.Index < 0 {
			return nil, Errorf(KindInvalidArgument, "state variable index must not be negative")
		}
		if seen[sv.Index] {
			return nil, Errorf(KindInvalidArgument, "duplicate state variable index %d", sv.Index)
		}
		seen[sv.Index] = true
	}
	out.Change = false

	return e.store.Update(id, func(d *Draft) error {
		if err := mutable(d, "add an output to"); err != nil {
			return err
		}
		d.invalidate()
		d.Outputs = append(d.Outputs, out)
		return nil
	})
}

// Simulate assembles the draft into the node's wire shape and asks for a
// dry-run. It re-resolves every input first, verifies per-token coverage,
// appends the implicit base-asset change output, and caches the node's fee
// estimate. Legal from OPEN, SIMULATED and SIGNED (re-run is idempotent).
// On any failure the draft keeps its prior state.
func (e *Engine) Simulate(ctx context.Context, id string) (*Draft, error) {
	return e.store.Update(id, func(d *Draft) error {
		switch d.Status {
		case StatusOpen, StatusSimulated, StatusSigned:
		default:
			return NewInvalidStateError("simulate", d.Status)
		}
		if len(d.Inputs) == 0 {
			return Errorf(KindInvalidArgument, "draft has no inputs")
		}

		if err := e.refreshInputs(ctx, d); err != nil {
			return err
		}

		// First pass with the fee floor: fail fast on drafts that cannot
		// cover their outputs before going back to the network.
		sheet := NewBalanceSheet(d)
		if err := sheet.Verify(e.cfg.MinFee, e.cfg.AutoTokenChange); err != nil {
			return err
		}

		changeAddr, err := e.node.DefaultAddress(ctx)
		if err != nil {
			return e.translate(err, "default address lookup")
		}

		candidate := d.clone()
		applyChange(candidate, sheet, e.cfg.MinFee, changeAddr)

		sim, err := e.node.Simulate(ctx, candidate.Wire())
		if err != nil {
			return e.translate(err, "simulation")
		}

		fee := sim.Fee
		if fee.LessThan(e.cfg.MinFee) {
			fee = e.cfg.MinFee
		}
		// Second pass with the node's estimate: the change output shrinks
		// by the fee delta and must stay non-negative.
		if err := sheet.Verify(fee, e.cfg.AutoTokenChange); err != nil {
			return err
		}

		applyChange(d, sheet, fee, changeAddr)
		d.Fee = fee
		d.Signatures = nil
		d.Status = StatusSimulated
		return nil
	})
}

// Sign requests wallet signatures over the exact shape that was simulated.
// Legal only from SIMULATED. A node rejection or timeout leaves the draft
// SIMULATED; only the caller decides whether to retry.
func (e *Engine) Sign(ctx context.Context, id string) (*Draft, error) {
	return e.store.Update(id, func(d *Draft) error {
		if d.Status != StatusSimulated {
			return NewInvalidStateError("sign", d.Status)
		}

		bundle, err := e.node.Sign(ctx, d.Wire())
		if err != nil {
			return e.translate(err, "signing")
		}

		d.Signatures = bundle
		d.Status = StatusSigned
		return nil
	})
}

// Broadcast submits a SIGNED draft. Every input is re-resolved immediately
// before submission; any coin spent in the interim fails with StaleInputs
// and moves the draft to FAILED without retry. A submission the node may
// have already received (rejection or timeout) is also terminal: the draft
// must never be left "possibly applied".
func (e *Engine) Broadcast(ctx context.Context, id string) (*Draft, error) {
	return e.store.Update(id, func(d *Draft) error {
		if d.Status != StatusSigned {
			return NewInvalidStateError("broadcast", d.Status)
		}
		if d.Signatures == nil {
			return NewInvalidStateError("broadcast an unsigned", d.Status)
		}

		for _, in := range d.Inputs {
			coin, err := e.node.Coin(ctx, in.CoinID)
			if err != nil {
				var sessErr *Error
				if errors.As(err, &sessErr) && sessErr.Kind == KindCoinNotFound {
					return e.fail(d, NewStaleInputsError(in.CoinID))
				}
				return e.translate(err, "input re-validation")
			}
			if coin.Spent {
				return e.fail(d, NewStaleInputsError(in.CoinID))
			}
		}

		txID, err := e.node.Broadcast(ctx, d.Signatures)
		if err != nil {
			return e.fail(d, e.translate(err, "broadcast"))
		}

		d.LedgerTxID = txID
		d.Status = StatusBroadcast
		return nil
	})
}

// Export serializes the draft into its portable hex encoding. Legal from any
// state.
func (e *Engine) Export(ctx context.Context, id string) (string, error) {
	draft, err := e.store.Get(id)
	if err != nil {
		return "", err
	}
	return EncodeDraft(draft)
}

// Import reconstructs a draft from a portable encoding under a fresh or
// caller-supplied id. Payloads carrying signatures enter at SIGNED with the
// bundle preserved; the signatures are still validated by the node at
// broadcast time.
func (e *Engine) Import(ctx context.Context, id, encoded string) (*Draft, error) {
	if id == "" {
		id = uuid.NewString()
	}
	draft, err := DecodeDraft(id, encoded)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	draft.CreatedAt = now
	draft.LastModifiedAt = now
	return e.store.Insert(draft)
}

// refreshInputs re-resolves every attached coin, since ledger state can
// change between calls. Resolved amounts and scripts are refreshed in place;
// overrides are re-bounded against the fresh amount.
func (e *Engine) refreshInputs(ctx context.Context, d *Draft) error {
	for i, in := range d.Inputs {
		coin, err := e.node.Coin(ctx, in.CoinID)
		if err != nil {
			return e.translate(err, "input re-validation")
		}
		if coin.Spent {
			return NewCoinSpentError(in.CoinID)
		}
		if in.Override != nil && in.Override.GreaterThan(coin.Amount) {
			return Errorf(KindInvalidArgument, "override amount %s exceeds resolved coin amount %s", in.Override.String(), coin.Amount.String())
		}
		d.Inputs[i].Amount = coin.Amount
		d.Inputs[i].TokenID = coin.TokenID
		d.Inputs[i].Script = coin.Script
	}
	return nil
}

// fail moves the draft to FAILED carrying the error detail. The draft stays
// inspectable but is not resumable.
func (e *Engine) fail(d *Draft, err *Error) error {
	d.Status = StatusFailed
	d.FailureDetail = err.Detail
	d.LastModifiedAt = time.Now()
	return err
}

// translate normalizes provider errors into session errors: context
// deadlines and transport timeouts become NetworkTimeout, session errors
// pass through, anything else is a remote rejection carried verbatim.
func (e *Engine) translate(err error, op string) *Error {
	var sessErr *Error
	if errors.As(err, &sessErr) {
		return sessErr
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewNetworkTimeoutError(op)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewNetworkTimeoutError(op)
	}
	return NewRemoteRejectedError(err.Error())
}

// mutable gates input/output mutations: legal while OPEN, and legal while
// SIMULATED since mutation invalidates the simulation.
func mutable(d *Draft, op string) error {
	if d.Status != StatusOpen && d.Status != StatusSimulated {
		return NewInvalidStateError(op, d.Status)
	}
	return nil
}

// applyChange strips previously appended change outputs and appends fresh
// ones: the base-asset surplus beyond the fee, plus per-token surplus in the
// auto-token-change mode. A draft is never allowed to silently burn change.
func applyChange(d *Draft, sheet *BalanceSheet, fee decimal.Decimal, changeAddr string) {
	kept := d.Outputs[:0]
	for _, out := range d.Outputs {
		if !out.Change {
			kept = append(kept, out)
		}
	}
	d.Outputs = kept

	if base := sheet.BaseChange(fee); base.IsPositive() {
		d.Outputs = append(d.Outputs, OutputSpec{
			Address: changeAddr,
			Amount:  base,
			TokenID: BaseTokenID,
			Change:  true,
		})
	}
	for _, tc := range sheet.TokenChange() {
		d.Outputs = append(d.Outputs, OutputSpec{
			Address: changeAddr,
			Amount:  tc.Amount,
			TokenID: tc.TokenID,
			Change:  true,
		})
	}
}

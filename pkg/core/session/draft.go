package session

import (
	"time"

	"github.com/shopspring/decimal"
)

// BaseTokenID is the token identifier of the ledger's base asset. Fees are
// always paid in the base asset.
const BaseTokenID = "0x00"

// Status represents the lifecycle state of a transaction draft.
type Status string

// Draft lifecycle states. BROADCAST, FAILED and DELETED are terminal.
const (
	StatusOpen      Status = "OPEN"
	StatusSimulated Status = "SIMULATED"
	StatusSigned    Status = "SIGNED"
	StatusBroadcast Status = "BROADCAST"
	StatusFailed    Status = "FAILED"
	StatusDeleted   Status = "DELETED"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusBroadcast || s == StatusFailed || s == StatusDeleted
}

// Coin is a snapshot of an unspent transaction output held by the external
// ledger node. The node owns the authoritative copy; the engine only keeps
// the snapshot taken at resolution time and re-validates it before it
// matters (simulate, broadcast).
type Coin struct {
	CoinID  string          `json:"coinid"`
	Amount  decimal.Decimal `json:"amount"`
	TokenID string          `json:"tokenid"`
	Script  string          `json:"script"`
	Spent   bool            `json:"spent"`
}

// InputRef is a coin attached to a draft as an input. Amount, TokenID and
// Script are resolved from the node at attach time. Override, when present,
// spends less than the coin's full value; it must be positive and must not
// exceed the resolved amount.
type InputRef struct {
	CoinID   string           `json:"coinid"`
	Amount   decimal.Decimal  `json:"amount"`
	TokenID  string           `json:"tokenid"`
	Script   string           `json:"script,omitempty"`
	Override *decimal.Decimal `json:"override,omitempty"`
}

// SpendAmount returns the amount this input contributes to the draft: the
// override when one is set, the full resolved amount otherwise.
func (r InputRef) SpendAmount() decimal.Decimal {
	if r.Override != nil {
		return *r.Override
	}
	return r.Amount
}

// StateVar is a single state variable carried by an output: a small integer
// index mapped to a byte-string value. Order is significant for hashing, so
// outputs carry state variables as an ordered slice rather than a map.
type StateVar struct {
	Index int    `json:"index"`
	Value string `json:"value"`
}

// OutputSpec describes a new coin the draft will create.
type OutputSpec struct {
	Address string          `json:"address"`
	Amount  decimal.Decimal `json:"amount"`
	TokenID string          `json:"tokenid"`
	State   []StateVar      `json:"state,omitempty"`

	// Change marks outputs the engine appended automatically to return
	// base-asset surplus. They are recomputed on every simulation pass.
	Change bool `json:"change,omitempty"`
}

// SignatureBundle is the opaque signing material produced by the external
// node's wallet. Data carries the node's portable signed-transaction hex;
// Keys lists the public keys that signed, when the node reports them.
type SignatureBundle struct {
	Data string   `json:"data"`
	Keys []string `json:"keys,omitempty"`
}

// Draft is a transaction under construction. Inputs and outputs keep their
// insertion order, which determines the transaction's input ordering for
// hashing and signing.
type Draft struct {
	ID             string           `json:"id"`
	Status         Status           `json:"status"`
	Inputs         []InputRef       `json:"inputs"`
	Outputs        []OutputSpec     `json:"outputs"`
	Fee            decimal.Decimal  `json:"fee"`
	Signatures     *SignatureBundle `json:"signatures,omitempty"`
	LedgerTxID     string           `json:"ledger_txid,omitempty"`
	FailureDetail  string           `json:"failure_detail,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	LastModifiedAt time.Time        `json:"last_modified_at"`
}

// clone returns a deep copy of the draft, safe to hand to callers while the
// store keeps mutating the original.
func (d *Draft) clone() *Draft {
	cp := *d
	cp.Inputs = make([]InputRef, len(d.Inputs))
	copy(cp.Inputs, d.Inputs)
	for i, in := range d.Inputs {
		if in.Override != nil {
			v := *in.Override
			cp.Inputs[i].Override = &v
		}
	}
	cp.Outputs = make([]OutputSpec, len(d.Outputs))
	copy(cp.Outputs, d.Outputs)
	for i, out := range d.Outputs {
		if len(out.State) > 0 {
			cp.Outputs[i].State = make([]StateVar, len(out.State))
			copy(cp.Outputs[i].State, out.State)
		}
	}
	if d.Signatures != nil {
		sig := *d.Signatures
		sig.Keys = append([]string(nil), d.Signatures.Keys...)
		cp.Signatures = &sig
	}
	return &cp
}

// invalidate drops the results of a previous simulation after a mutation:
// cached fee, signatures and any engine-appended change outputs. The draft
// re-enters OPEN and must be re-simulated before signing.
func (d *Draft) invalidate() {
	d.Status = StatusOpen
	d.Fee = decimal.Zero
	d.Signatures = nil
	kept := d.Outputs[:0]
	for _, out := range d.Outputs {
		if !out.Change {
			kept = append(kept, out)
		}
	}
	d.Outputs = kept
}

// WireInput is an input in the transaction shape the external node expects.
type WireInput struct {
	CoinID string          `json:"coinid"`
	Amount decimal.Decimal `json:"amount"`
	Script string          `json:"script,omitempty"`
}

// WireOutput is an output in the transaction shape the external node expects.
type WireOutput struct {
	Address string          `json:"address"`
	Amount  decimal.Decimal `json:"amount"`
	TokenID string          `json:"tokenid"`
	State   []StateVar      `json:"state,omitempty"`
}

// WireTransaction is the assembled candidate transaction submitted to the
// external node for dry-run evaluation and signing.
type WireTransaction struct {
	Inputs  []WireInput  `json:"inputs"`
	Outputs []WireOutput `json:"outputs"`
}

// Wire assembles the draft into the transaction shape the node expects.
func (d *Draft) Wire() *WireTransaction {
	tx := &WireTransaction{
		Inputs:  make([]WireInput, 0, len(d.Inputs)),
		Outputs: make([]WireOutput, 0, len(d.Outputs)),
	}
	for _, in := range d.Inputs {
		tx.Inputs = append(tx.Inputs, WireInput{
			CoinID: in.CoinID,
			Amount: in.SpendAmount(),
			Script: in.Script,
		})
	}
	for _, out := range d.Outputs {
		tx.Outputs = append(tx.Outputs, WireOutput{
			Address: out.Address,
			Amount:  out.Amount,
			TokenID: out.TokenID,
			State:   out.State,
		})
	}
	return tx
}

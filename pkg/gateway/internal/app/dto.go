package app

import (
	"time"

	"github.com/minima-tools/go-minima-gateway/pkg/core/session"
)

// InputDTO is the transport-layer view of a draft input. Amounts travel as
// decimal strings, matching the ledger's own representation.
type InputDTO struct {
	CoinID   string `json:"coinid"`
	Amount   string `json:"amount"`
	TokenID  string `json:"tokenid"`
	Script   string `json:"script,omitempty"`
	Override string `json:"override,omitempty"`
}

// StateVarDTO is the transport-layer view of an output state variable.
type StateVarDTO struct {
	Index int    `json:"index"`
	Value string `json:"value"`
}

// OutputDTO is the transport-layer view of a draft output.
type OutputDTO struct {
	Address string        `json:"address"`
	Amount  string        `json:"amount"`
	TokenID string        `json:"tokenid"`
	State   []StateVarDTO `json:"state,omitempty"`
	Change  bool          `json:"change,omitempty"`
}

// DraftDTO is the transport-layer view of a transaction draft.
type DraftDTO struct {
	ID             string      `json:"id"`
	Status         string      `json:"status"`
	Inputs         []InputDTO  `json:"inputs"`
	Outputs        []OutputDTO `json:"outputs"`
	Fee            string      `json:"fee"`
	SignatureKeys  []string    `json:"signature_keys,omitempty"`
	Signed         bool        `json:"signed"`
	LedgerTxID     string      `json:"ledger_txid,omitempty"`
	FailureDetail  string      `json:"failure_detail,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	LastModifiedAt time.Time   `json:"last_modified_at"`
}

// NewDraftDTO converts a draft snapshot into its transport representation.
// The signature bundle itself stays engine-internal; callers move it around
// via export/import, not via status payloads.
func NewDraftDTO(d *session.Draft) *DraftDTO {
	dto := &DraftDTO{
		ID:             d.ID,
		Status:         string(d.Status),
		Inputs:         make([]InputDTO, 0, len(d.Inputs)),
		Outputs:        make([]OutputDTO, 0, len(d.Outputs)),
		Fee:            d.Fee.String(),
		Signed:         d.Signatures != nil,
		LedgerTxID:     d.LedgerTxID,
		FailureDetail:  d.FailureDetail,
		CreatedAt:      d.CreatedAt,
		LastModifiedAt: d.LastModifiedAt,
	}
	if d.Signatures != nil {
		dto.SignatureKeys = d.Signatures.Keys
	}
	for _, in := range d.Inputs {
		inputDTO := InputDTO{
			CoinID:  in.CoinID,
			Amount:  in.Amount.String(),
			TokenID: in.TokenID,
			Script:  in.Script,
		}
		if in.Override != nil {
			inputDTO.Override = in.Override.String()
		}
		dto.Inputs = append(dto.Inputs, inputDTO)
	}
	for _, out := range d.Outputs {
		outputDTO := OutputDTO{
			Address: out.Address,
			Amount:  out.Amount.String(),
			TokenID: out.TokenID,
			Change:  out.Change,
		}
		for _, sv := range out.State {
			outputDTO.State = append(outputDTO.State, StateVarDTO{Index: sv.Index, Value: sv.Value})
		}
		dto.Outputs = append(dto.Outputs, outputDTO)
	}
	return dto
}

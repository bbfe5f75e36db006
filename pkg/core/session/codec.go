package session

import (
	"encoding/hex"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// codecVersion tags the export payload layout so future revisions can stay
// readable by older cosigners.
const codecVersion = 1

// exportPayload is the portable form of a draft, intended for out-of-band
// transfer to a cosigner. It carries everything import needs to reconstruct
// an equivalent draft; the encoding must round-trip byte-identically, since
// export → import → export is the multi-party signing mechanism.
type exportPayload struct {
	Version    int              `json:"version"`
	Inputs     []InputRef       `json:"inputs"`
	Outputs    []OutputSpec     `json:"outputs"`
	Fee        decimal.Decimal  `json:"fee"`
	Signed     bool             `json:"signed,omitempty"`
	Signatures *SignatureBundle `json:"signatures,omitempty"`
}

// EncodeDraft serializes a draft into its portable hex encoding. Drafts in
// any state may be exported; the signed flag and signature bundle are carried
// only once the draft has reached SIGNED.
func EncodeDraft(d *Draft) (string, error) {
	payload := exportPayload{
		Version: codecVersion,
		Inputs:  d.Inputs,
		Outputs: d.Outputs,
		Fee:     d.Fee,
	}
	if d.Status == StatusSigned || d.Status == StatusBroadcast {
		payload.Signed = true
		payload.Signatures = d.Signatures
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", NewMalformedImportError(err.Error())
	}
	return "0x" + hex.EncodeToString(raw), nil
}

// DecodeDraft parses a portable hex encoding back into a draft carrying the
// given id. Signed payloads enter at SIGNED with their signature bundle
// preserved; everything else enters at OPEN and must be re-simulated.
func DecodeDraft(id, encoded string) (*Draft, error) {
	if len(encoded) > 2 && (encoded[:2] == "0x" || encoded[:2] == "0X") {
		encoded = encoded[2:]
	}
	raw, err := hex.DecodeString(encoded)
	if err != nil {
		return nil, NewMalformedImportError("not a hex string")
	}

	var payload exportPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, NewMalformedImportError(err.Error())
	}
	if payload.Version != codecVersion {
		return nil, NewMalformedImportError("unsupported payload version")
	}
	if payload.Signed && payload.Signatures == nil {
		return nil, NewMalformedImportError("signed payload carries no signature bundle")
	}
	for _, in := range payload.Inputs {
		if in.CoinID == "" {
			return nil, NewMalformedImportError("input missing coin id")
		}
		if in.Override != nil && (in.Override.Sign() <= 0 || in.Override.GreaterThan(in.Amount)) {
			return nil, NewMalformedImportError("input override out of range")
		}
	}
	for i, out := range payload.Outputs {
		if out.Address == "" || !out.Amount.IsPositive() {
			return nil, NewMalformedImportError("output missing address or non-positive amount")
		}
		// Cosigner tooling may omit the token id for base-asset outputs, the
		// same shorthand add-output accepts.
		if out.TokenID == "" {
			payload.Outputs[i].TokenID = BaseTokenID
		}
	}

	draft := &Draft{
		ID:         id,
		Status:     StatusOpen,
		Inputs:     payload.Inputs,
		Outputs:    payload.Outputs,
		Fee:        payload.Fee,
		Signatures: payload.Signatures,
	}
	if draft.Inputs == nil {
		draft.Inputs = []InputRef{}
	}
	if draft.Outputs == nil {
		draft.Outputs = []OutputSpec{}
	}
	if payload.Signed {
		draft.Status = StatusSigned
	}
	return draft, nil
}

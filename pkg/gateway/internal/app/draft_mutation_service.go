package app

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/minima-tools/go-minima-gateway/pkg/core/session"
)

// DraftMutationProvider defines the session engine surface for attaching
// inputs and outputs to an open draft.
type DraftMutationProvider interface {
	AddInput(ctx context.Context, id, coinID string, override *decimal.Decimal) (*session.Draft, error)
	AddOutput(ctx context.Context, id string, out session.OutputSpec) (*session.Draft, error)
}

// AddInputRequest carries the caller's input attachment parameters. Amount,
// when present, deliberately spends less than the coin's full value.
type AddInputRequest struct {
	CoinID string `json:"coinid"`
	Amount string `json:"amount,omitempty"`
}

// AddOutputRequest carries the caller's output parameters. TokenID defaults
// to the base asset; State is an ordered index → value mapping.
type AddOutputRequest struct {
	Address string        `json:"address"`
	Amount  string        `json:"amount"`
	TokenID string        `json:"tokenid,omitempty"`
	State   []StateVarDTO `json:"state,omitempty"`
}

// DraftMutationService validates mutation requests and delegates them to the
// session engine. All parsing happens here so the engine only ever sees
// well-formed decimals.
type DraftMutationService struct {
	provider DraftMutationProvider
}

// NewDraftMutationService constructs a DraftMutationService with the given
// provider. Panics if the provider is nil.
func NewDraftMutationService(provider DraftMutationProvider) *DraftMutationService {
	if provider == nil {
		panic("draft mutation provider is nil")
	}
	return &DraftMutationService{provider: provider}
}

// AddInput resolves and attaches a coin to the draft.
func (s *DraftMutationService) AddInput(ctx context.Context, id string, req AddInputRequest) (*DraftDTO, error) {
	if id == "" {
		return nil, NewIncorrectInputWithFieldError("id")
	}
	if req.CoinID == "" {
		return nil, NewIncorrectInputWithFieldError("coinid")
	}

	var override *decimal.Decimal
	if req.Amount != "" {
		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			return nil, NewIncorrectInputWithFieldError("amount")
		}
		override = &amount
	}

	draft, err := s.provider.AddInput(ctx, id, req.CoinID, override)
	if err != nil {
		return nil, NewSessionEngineError(err)
	}
	return NewDraftDTO(draft), nil
}

// AddOutput attaches a new output to the draft.
func (s *DraftMutationService) AddOutput(ctx context.Context, id string, req AddOutputRequest) (*DraftDTO, error) {
	if id == "" {
		return nil, NewIncorrectInputWithFieldError("id")
	}
	if req.Address == "" {
		return nil, NewIncorrectInputWithFieldError("address")
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return nil, NewIncorrectInputWithFieldError("amount")
	}

	spec := session.OutputSpec{
		Address: req.Address,
		Amount:  amount,
		TokenID: req.TokenID,
	}
	for _, sv := range req.State {
		if sv.Index < 0 {
			return nil, NewIncorrectInputError(
				fmt.Sprintf("state variable index %d is negative", sv.Index),
				"State variable indexes must be non-negative integers.",
			)
		}
		spec.State = append(spec.State, session.StateVar{Index: sv.Index, Value: sv.Value})
	}

	draft, err := s.provider.AddOutput(ctx, id, spec)
	if err != nil {
		return nil, NewSessionEngineError(err)
	}
	return NewDraftDTO(draft), nil
}

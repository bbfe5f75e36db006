package app

import (
	"context"
	"encoding/json"

	"github.com/minima-tools/go-minima-gateway/pkg/node"
)

// NodeQueryProvider defines the read/query surface of the ledger node the
// gateway passes through to callers: health, balances, coins, tokens, the
// wallet's default address, and one-shot simple sends.
type NodeQueryProvider interface {
	Status(ctx context.Context) (json.RawMessage, error)
	Balance(ctx context.Context, q node.BalanceQuery) (json.RawMessage, error)
	Coins(ctx context.Context, q node.CoinQuery) (json.RawMessage, error)
	Tokens(ctx context.Context, tokenID string) (json.RawMessage, error)
	Peers(ctx context.Context) (json.RawMessage, error)
	DefaultAddress(ctx context.Context) (string, error)
	Send(ctx context.Context, req node.SendRequest) (json.RawMessage, error)
	TokenCreate(ctx context.Context, req node.TokenCreateRequest) (json.RawMessage, error)
	Command(ctx context.Context, cmd string) (json.RawMessage, error)
}

// SendRequest carries a one-shot simple send, bypassing the session engine.
type SendRequest struct {
	Amount  string            `json:"amount"`
	Address string            `json:"address"`
	TokenID string            `json:"tokenid,omitempty"`
	State   map[string]string `json:"state,omitempty"`
}

// NodeQueryService passes node query results through to the transport layer.
// The node's payload shapes are its own; the service does not re-model them.
type NodeQueryService struct {
	provider NodeQueryProvider
}

// NewNodeQueryService constructs a NodeQueryService with the given provider.
// Panics if the provider is nil.
func NewNodeQueryService(provider NodeQueryProvider) *NodeQueryService {
	if provider == nil {
		panic("node query provider is nil")
	}
	return &NodeQueryService{provider: provider}
}

// NodeStatus returns the node's status payload.
func (s *NodeQueryService) NodeStatus(ctx context.Context) (json.RawMessage, error) {
	payload, err := s.provider.Status(ctx)
	if err != nil {
		return nil, NewNodeProviderError(err)
	}
	return payload, nil
}

// Balance returns wallet balances, optionally scoped by address or token.
func (s *NodeQueryService) Balance(ctx context.Context, q node.BalanceQuery) (json.RawMessage, error) {
	payload, err := s.provider.Balance(ctx, q)
	if err != nil {
		return nil, NewNodeProviderError(err)
	}
	return payload, nil
}

// Coins lists the node's coins subject to the query filters.
func (s *NodeQueryService) Coins(ctx context.Context, q node.CoinQuery) (json.RawMessage, error) {
	payload, err := s.provider.Coins(ctx, q)
	if err != nil {
		return nil, NewNodeProviderError(err)
	}
	return payload, nil
}

// Tokens lists tokens known to the node.
func (s *NodeQueryService) Tokens(ctx context.Context, tokenID string) (json.RawMessage, error) {
	payload, err := s.provider.Tokens(ctx, tokenID)
	if err != nil {
		return nil, NewNodeProviderError(err)
	}
	return payload, nil
}

// Peers lists the node's connected peers.
func (s *NodeQueryService) Peers(ctx context.Context) (json.RawMessage, error) {
	payload, err := s.provider.Peers(ctx)
	if err != nil {
		return nil, NewNodeProviderError(err)
	}
	return payload, nil
}

// DefaultAddress returns the wallet's default receive address.
func (s *NodeQueryService) DefaultAddress(ctx context.Context) (string, error) {
	addr, err := s.provider.DefaultAddress(ctx)
	if err != nil {
		return "", NewNodeProviderError(err)
	}
	return addr, nil
}

// Send performs a one-shot simple send through the node's wallet.
func (s *NodeQueryService) Send(ctx context.Context, req SendRequest) (json.RawMessage, error) {
	if req.Amount == "" {
		return nil, NewIncorrectInputWithFieldError("amount")
	}
	if req.Address == "" {
		return nil, NewIncorrectInputWithFieldError("address")
	}
	payload, err := s.provider.Send(ctx, node.SendRequest{
		Amount:  req.Amount,
		Address: req.Address,
		TokenID: req.TokenID,
		State:   req.State,
	})
	if err != nil {
		return nil, NewNodeProviderError(err)
	}
	return payload, nil
}

// TokenCreateRequest carries the minting parameters for a new custom token.
type TokenCreateRequest struct {
	Name        string `json:"name"`
	Amount      string `json:"amount"`
	Decimals    int    `json:"decimals,omitempty"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Proof       string `json:"proof,omitempty"`
}

// CreateToken mints a new custom token through the node's wallet.
func (s *NodeQueryService) CreateToken(ctx context.Context, req TokenCreateRequest) (json.RawMessage, error) {
	if req.Name == "" {
		return nil, NewIncorrectInputWithFieldError("name")
	}
	if req.Amount == "" {
		return nil, NewIncorrectInputWithFieldError("amount")
	}
	payload, err := s.provider.TokenCreate(ctx, node.TokenCreateRequest{
		Name:        req.Name,
		Amount:      req.Amount,
		Decimals:    req.Decimals,
		Description: req.Description,
		Icon:        req.Icon,
		Proof:       req.Proof,
	})
	if err != nil {
		return nil, NewNodeProviderError(err)
	}
	return payload, nil
}

// Command executes a raw node command. Exposed only behind the admin
// bearer-token route.
func (s *NodeQueryService) Command(ctx context.Context, cmd string) (json.RawMessage, error) {
	if cmd == "" {
		return nil, NewIncorrectInputWithFieldError("command")
	}
	payload, err := s.provider.Command(ctx, cmd)
	if err != nil {
		return nil, NewNodeProviderError(err)
	}
	return payload, nil
}

package adapters

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/minima-tools/go-minima-gateway/pkg/core/session"
	"github.com/minima-tools/go-minima-gateway/pkg/node"
)

// NoopNodeProvider is a stand-in node backend with canned responses. It keeps
// the HTTP server bootable without a running node, mainly for local runs and
// transport-level tests.
type NoopNodeProvider struct{}

// NewNoopNodeProvider returns a ready-to-use NoopNodeProvider.
func NewNoopNodeProvider() *NoopNodeProvider {
	return &NoopNodeProvider{}
}

// Coin returns a fixed unspent base-asset coin for any coin id.
func (*NoopNodeProvider) Coin(ctx context.Context, coinID string) (*session.Coin, error) {
	return &session.Coin{
		CoinID:  coinID,
		Amount:  decimal.NewFromInt(100),
		TokenID: session.BaseTokenID,
		Script:  "RETURN SIGNEDBY(0xNOOPKEY)",
		Spent:   false,
	}, nil
}

// Simulate accepts every candidate transaction with a fixed fee estimate.
func (*NoopNodeProvider) Simulate(ctx context.Context, tx *session.WireTransaction) (*session.Simulation, error) {
	return &session.Simulation{
		Fee:    decimal.RequireFromString("0.0001"),
		Detail: "noop node provider verdict",
	}, nil
}

// Sign returns a fixed signature bundle for any candidate transaction.
func (*NoopNodeProvider) Sign(ctx context.Context, tx *session.WireTransaction) (*session.SignatureBundle, error) {
	return &session.SignatureBundle{
		Data: "0x6e6f6f702d7369676e6564",
		Keys: []string{"0xNOOPKEY"},
	}, nil
}

// Broadcast accepts every signed bundle and returns a fixed transaction id.
func (*NoopNodeProvider) Broadcast(ctx context.Context, bundle *session.SignatureBundle) (string, error) {
	return "0x4E4F4F5054584944", nil
}

// DefaultAddress returns a fixed wallet address.
func (*NoopNodeProvider) DefaultAddress(ctx context.Context) (string, error) {
	return "0xNOOPADDRESS", nil
}

// Status returns a minimal canned node status payload.
func (*NoopNodeProvider) Status(ctx context.Context) (json.RawMessage, error) {
	return json.RawMessage(`{"version":"noop","locked":false}`), nil
}

// Balance returns a canned balance listing.
func (*NoopNodeProvider) Balance(ctx context.Context, q node.BalanceQuery) (json.RawMessage, error) {
	return json.RawMessage(`[{"tokenid":"0x00","confirmed":"100","unconfirmed":"0"}]`), nil
}

// Coins returns a canned single-coin listing.
func (*NoopNodeProvider) Coins(ctx context.Context, q node.CoinQuery) (json.RawMessage, error) {
	return json.RawMessage(`[{"coinid":"0xNOOPCOIN","amount":"100","tokenid":"0x00"}]`), nil
}

// Tokens returns a canned token listing holding only the base asset.
func (*NoopNodeProvider) Tokens(ctx context.Context, tokenID string) (json.RawMessage, error) {
	return json.RawMessage(`[{"tokenid":"0x00","name":"Minima"}]`), nil
}

// Peers returns a canned empty peer listing.
func (*NoopNodeProvider) Peers(ctx context.Context) (json.RawMessage, error) {
	return json.RawMessage(`{"peers":[]}`), nil
}

// TokenCreate accepts every minting request and returns a canned token.
func (*NoopNodeProvider) TokenCreate(ctx context.Context, req node.TokenCreateRequest) (json.RawMessage, error) {
	return json.RawMessage(`{"tokenid":"0xNOOPTOKEN"}`), nil
}

// Send accepts every simple send and returns a canned result.
func (*NoopNodeProvider) Send(ctx context.Context, req node.SendRequest) (json.RawMessage, error) {
	return json.RawMessage(`{"txpowid":"0x4E4F4F5054584944"}`), nil
}

// Command echoes the command word back in a canned envelope.
func (*NoopNodeProvider) Command(ctx context.Context, cmd string) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

package testabilities

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/minima-tools/go-minima-gateway/pkg/core/session"
	"github.com/minima-tools/go-minima-gateway/pkg/gateway/internal/app"
	"github.com/minima-tools/go-minima-gateway/pkg/node"
)

// The mock stands in for both faces of the node client.
var (
	_ session.NodeProvider  = (*NodeProviderMock)(nil)
	_ app.NodeQueryProvider = (*NodeProviderMock)(nil)
)

// NodeProviderMockExpectations defines the expected behavior of the NodeProviderMock during a test.
type NodeProviderMockExpectations struct {
	// Coins maps coin ids to the ledger snapshots Coin should resolve them to.
	// Ids absent from the map resolve as unknown coins.
	Coins map[string]*session.Coin

	// CoinError, when set, is returned from every Coin call instead of a lookup.
	CoinError error

	// Simulation is the dry-run verdict Simulate returns on success.
	Simulation *session.Simulation

	// SimulateError is the error to return from Simulate. If set, Simulation is ignored.
	SimulateError error

	// Bundle is the signature bundle Sign returns on success.
	Bundle *session.SignatureBundle

	// SignError is the error to return from Sign. If set, Bundle is ignored.
	SignError error

	// TxID is the ledger transaction id Broadcast returns on success.
	TxID string

	// BroadcastError is the error to return from Broadcast. If set, TxID is ignored.
	BroadcastError error

	// Address is the wallet address DefaultAddress returns.
	Address string

	// AddressError is the error to return from DefaultAddress. If set, Address is ignored.
	AddressError error

	// QueryPayloads maps node query names (status, balance, coins, tokens,
	// peers, send, tokencreate, command) to the canned raw JSON each query
	// returns. Queries absent from the map return an empty object.
	QueryPayloads map[string]json.RawMessage

	// QueryError, when set, is returned from every node query call.
	QueryError error

	// SimulateCall indicates whether the Simulate method is expected to be called during the test.
	SimulateCall bool

	// SignCall indicates whether the Sign method is expected to be called during the test.
	SignCall bool

	// BroadcastCall indicates whether the Broadcast method is expected to be called during the test.
	BroadcastCall bool
}

// DefaultNodeProviderMockExpectations provides default expectations for NodeProviderMock:
// a single spendable 100-unit base asset coin, an accepting simulation verdict,
// a canned signature bundle and a fixed broadcast transaction id.
func DefaultNodeProviderMockExpectations() NodeProviderMockExpectations {
	return NodeProviderMockExpectations{
		Coins: map[string]*session.Coin{
			"0xC0FFEE": {
				CoinID:  "0xC0FFEE",
				Amount:  decimal.NewFromInt(100),
				TokenID: session.BaseTokenID,
				Script:  "RETURN SIGNEDBY(0xKEY)",
			},
		},
		Simulation: &session.Simulation{Fee: decimal.RequireFromString("0.0001"), Detail: "valid"},
		Bundle:     &session.SignatureBundle{Data: "0xDEADBEEF", Keys: []string{"0xKEY"}},
		TxID:       "0x7AB0",
		Address:    "0xCHANGE",
		QueryPayloads: map[string]json.RawMessage{
			"status":      json.RawMessage(`{"version":"mock","locked":false}`),
			"balance":     json.RawMessage(`[{"tokenid":"0x00","confirmed":"100"}]`),
			"coins":       json.RawMessage(`[{"coinid":"0xC0FFEE","amount":"100","tokenid":"0x00"}]`),
			"tokens":      json.RawMessage(`[{"tokenid":"0x00","name":"Minima"}]`),
			"peers":       json.RawMessage(`{"peers":[]}`),
			"send":        json.RawMessage(`{"txpowid":"0x7AB0"}`),
			"tokencreate": json.RawMessage(`{"tokenid":"0xMOCKTOKEN"}`),
			"command":     json.RawMessage(`{}`),
		},
	}
}

// NodeProviderMock is a mock implementation of the session engine's node
// provider, used for testing engine and transport behavior without a node.
type NodeProviderMock struct {
	t *testing.T

	// expectations defines the expected behavior and outcomes for this mock.
	expectations NodeProviderMockExpectations

	// coinCalls stores the coin ids passed to Coin, in call order.
	coinCalls []string

	// simulateCalled is true if the Simulate method was called.
	simulateCalled bool

	// signCalled is true if the Sign method was called.
	signCalled bool

	// broadcastCalled is true if the Broadcast method was called.
	broadcastCalled bool

	// simulatedTx stores the candidate transaction passed to Simulate.
	simulatedTx *session.WireTransaction

	// broadcastBundle stores the signature bundle passed to Broadcast.
	broadcastBundle *session.SignatureBundle
}

// Coin resolves a coin id against the expectations' coin map. It records the
// call and returns the configured error, the mapped snapshot, or an unknown
// coin failure.
func (m *NodeProviderMock) Coin(ctx context.Context, coinID string) (*session.Coin, error) {
	m.t.Helper()

	m.coinCalls = append(m.coinCalls, coinID)

	if m.expectations.CoinError != nil {
		return nil, m.expectations.CoinError
	}
	coin, ok := m.expectations.Coins[coinID]
	if !ok {
		return nil, session.NewCoinNotFoundError(coinID)
	}
	cp := *coin
	return &cp, nil
}

// Simulate records the call and returns the predefined verdict or error.
func (m *NodeProviderMock) Simulate(ctx context.Context, tx *session.WireTransaction) (*session.Simulation, error) {
	m.t.Helper()

	m.simulateCalled = true
	m.simulatedTx = tx

	if m.expectations.SimulateError != nil {
		return nil, m.expectations.SimulateError
	}
	return m.expectations.Simulation, nil
}

// Sign records the call and returns the predefined bundle or error.
func (m *NodeProviderMock) Sign(ctx context.Context, tx *session.WireTransaction) (*session.SignatureBundle, error) {
	m.t.Helper()

	m.signCalled = true

	if m.expectations.SignError != nil {
		return nil, m.expectations.SignError
	}
	return m.expectations.Bundle, nil
}

// Broadcast records the call and returns the predefined transaction id or error.
func (m *NodeProviderMock) Broadcast(ctx context.Context, bundle *session.SignatureBundle) (string, error) {
	m.t.Helper()

	m.broadcastCalled = true
	m.broadcastBundle = bundle

	if m.expectations.BroadcastError != nil {
		return "", m.expectations.BroadcastError
	}
	return m.expectations.TxID, nil
}

// DefaultAddress returns the predefined wallet address or error.
func (m *NodeProviderMock) DefaultAddress(ctx context.Context) (string, error) {
	m.t.Helper()

	if m.expectations.AddressError != nil {
		return "", m.expectations.AddressError
	}
	return m.expectations.Address, nil
}

// queryPayload resolves a canned node query result from the expectations.
func (m *NodeProviderMock) queryPayload(name string) (json.RawMessage, error) {
	m.t.Helper()

	if m.expectations.QueryError != nil {
		return nil, m.expectations.QueryError
	}
	payload, ok := m.expectations.QueryPayloads[name]
	if !ok {
		return json.RawMessage(`{}`), nil
	}
	return payload, nil
}

// Status returns the canned status payload.
func (m *NodeProviderMock) Status(ctx context.Context) (json.RawMessage, error) {
	return m.queryPayload("status")
}

// Balance returns the canned balance payload.
func (m *NodeProviderMock) Balance(ctx context.Context, q node.BalanceQuery) (json.RawMessage, error) {
	return m.queryPayload("balance")
}

// Coins returns the canned coin listing.
func (m *NodeProviderMock) Coins(ctx context.Context, q node.CoinQuery) (json.RawMessage, error) {
	return m.queryPayload("coins")
}

// Tokens returns the canned token listing.
func (m *NodeProviderMock) Tokens(ctx context.Context, tokenID string) (json.RawMessage, error) {
	return m.queryPayload("tokens")
}

// Peers returns the canned peer listing.
func (m *NodeProviderMock) Peers(ctx context.Context) (json.RawMessage, error) {
	return m.queryPayload("peers")
}

// Send returns the canned simple-send result.
func (m *NodeProviderMock) Send(ctx context.Context, req node.SendRequest) (json.RawMessage, error) {
	return m.queryPayload("send")
}

// TokenCreate returns the canned minting result.
func (m *NodeProviderMock) TokenCreate(ctx context.Context, req node.TokenCreateRequest) (json.RawMessage, error) {
	return m.queryPayload("tokencreate")
}

// Command returns the canned raw command result.
func (m *NodeProviderMock) Command(ctx context.Context, cmd string) (json.RawMessage, error) {
	return m.queryPayload("command")
}

// AssertCalled verifies that Simulate, Sign and Broadcast were called exactly
// when they were expected to be.
func (m *NodeProviderMock) AssertCalled() {
	m.t.Helper()
	require.Equal(m.t, m.expectations.SimulateCall, m.simulateCalled, "Discrepancy between expected and actual Simulate call")
	require.Equal(m.t, m.expectations.SignCall, m.signCalled, "Discrepancy between expected and actual Sign call")
	require.Equal(m.t, m.expectations.BroadcastCall, m.broadcastCalled, "Discrepancy between expected and actual Broadcast call")
}

// CoinCalls returns the coin ids passed to Coin, in call order.
func (m *NodeProviderMock) CoinCalls() []string {
	m.t.Helper()
	return m.coinCalls
}

// SimulatedTx returns the candidate transaction last passed to Simulate.
func (m *NodeProviderMock) SimulatedTx() *session.WireTransaction {
	m.t.Helper()
	return m.simulatedTx
}

// NewNodeProviderMock creates a new instance of NodeProviderMock with the given expectations.
func NewNodeProviderMock(t *testing.T, expectations NodeProviderMockExpectations) *NodeProviderMock {
	return &NodeProviderMock{
		t:            t,
		expectations: expectations,
	}
}

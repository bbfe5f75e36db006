package node

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// The query surface mirrors the node's own response payloads, so results are
// passed through as raw JSON rather than re-modeled.

// Status returns the node status and chain information.
func (c *Client) Status(ctx context.Context) (json.RawMessage, error) {
	return c.Command(ctx, "status")
}

// Healthy reports whether the node answers a status query at all.
func (c *Client) Healthy(ctx context.Context) bool {
	_, err := c.Status(ctx)
	return err == nil
}

// BalanceQuery filters a balance lookup. All fields are optional.
type BalanceQuery struct {
	Address       string
	TokenID       string
	Confirmations int
}

// Balance returns the wallet balance, optionally scoped by address or token.
func (c *Client) Balance(ctx context.Context, q BalanceQuery) (json.RawMessage, error) {
	cmd := newCommand("balance").
		param("address", q.Address).
		param("tokenid", q.TokenID)
	if q.Confirmations > 0 {
		cmd.param("confirmations", strconv.Itoa(q.Confirmations))
	}
	return c.Command(ctx, cmd.String())
}

// CoinQuery filters a coin listing.
type CoinQuery struct {
	Relevant bool
	Sendable bool
	Address  string
	TokenID  string
}

// Coins lists coins (UTxOs) known to the node, subject to the query filters.
func (c *Client) Coins(ctx context.Context, q CoinQuery) (json.RawMessage, error) {
	cmd := newCommand("coins").
		param("relevant", strconv.FormatBool(q.Relevant)).
		param("sendable", strconv.FormatBool(q.Sendable)).
		param("address", q.Address).
		param("tokenid", q.TokenID)
	return c.Command(ctx, cmd.String())
}

// Tokens lists tokens known to the node, or a single token when id is given.
func (c *Client) Tokens(ctx context.Context, tokenID string) (json.RawMessage, error) {
	return c.Command(ctx, newCommand("tokens").param("tokenid", tokenID).String())
}

// Peers lists the node's connected peers and network information.
func (c *Client) Peers(ctx context.Context) (json.RawMessage, error) {
	return c.Command(ctx, "peers")
}

// TokenCreateRequest describes a new custom token. Name and Amount are
// required; the node defaults omitted decimals to 8.
type TokenCreateRequest struct {
	Name        string
	Amount      string
	Decimals    int
	Description string
	Icon        string
	Proof       string
}

// TokenCreate mints a new token on the ledger and returns the node's result.
func (c *Client) TokenCreate(ctx context.Context, req TokenCreateRequest) (json.RawMessage, error) {
	cmd := newCommand("tokencreate").
		param("name", req.Name).
		param("amount", req.Amount)
	if req.Decimals > 0 {
		cmd.param("decimals", strconv.Itoa(req.Decimals))
	}
	cmd.param("description", req.Description).
		param("icon", req.Icon).
		param("proof", req.Proof)
	return c.Command(ctx, cmd.String())
}

// SendRequest is a one-shot simple send, bypassing the session engine; the
// node picks the inputs and handles change itself.
type SendRequest struct {
	Amount  string
	Address string
	TokenID string
	State   map[string]string
}

// Send performs a simple wallet send and returns the node's result.
func (c *Client) Send(ctx context.Context, req SendRequest) (json.RawMessage, error) {
	cmd := newCommand("send").
		param("amount", req.Amount).
		param("address", req.Address).
		param("tokenid", req.TokenID)
	if len(req.State) > 0 {
		state, err := json.Marshal(req.State)
		if err != nil {
			return nil, fmt.Errorf("marshal send state: %w", err)
		}
		cmd.param("state", string(state))
	}
	return c.Command(ctx, cmd.String())
}

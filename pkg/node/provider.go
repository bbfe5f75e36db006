package node

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minima-tools/go-minima-gateway/pkg/core/session"
)

// coinRecord mirrors the node's coin payload shape.
type coinRecord struct {
	CoinID  string          `json:"coinid"`
	Amount  decimal.Decimal `json:"amount"`
	TokenID string          `json:"tokenid"`
	Address string          `json:"address"`
	Script  string          `json:"script"`
	Spent   bool            `json:"spent"`
}

func (r coinRecord) toCoin() *session.Coin {
	script := r.Script
	if script == "" {
		script = r.Address
	}
	return &session.Coin{
		CoinID:  r.CoinID,
		Amount:  r.Amount,
		TokenID: r.TokenID,
		Script:  script,
		Spent:   r.Spent,
	}
}

// Coin resolves a single coin id against the ledger. A coin the node has
// never seen fails with a coin-not-found session error.
func (c *Client) Coin(ctx context.Context, coinID string) (*session.Coin, error) {
	payload, err := c.Command(ctx, newCommand("coins").param("coinid", coinID).String())
	if err != nil {
		return nil, err
	}

	var records []coinRecord
	if err := json.Unmarshal(payload, &records); err != nil {
		// Single-coin queries may return a bare object instead of a list.
		var record coinRecord
		if err := json.Unmarshal(payload, &record); err != nil || record.CoinID == "" {
			return nil, session.NewCoinNotFoundError(coinID)
		}
		records = []coinRecord{record}
	}
	if len(records) == 0 {
		return nil, session.NewCoinNotFoundError(coinID)
	}
	return records[0].toCoin(), nil
}

// simulateResult carries the fields of interest from the node's dry-run.
type simulateResult struct {
	Valid bool            `json:"valid"`
	Fee   decimal.Decimal `json:"fee"`
	Notes string          `json:"notes"`
}

// Simulate builds a scratch transaction on the node, runs a validity check
// against it without posting, and tears it down. The node's fee estimate is
// returned; the scratch transaction never reaches the ledger.
func (c *Client) Simulate(ctx context.Context, tx *session.WireTransaction) (*session.Simulation, error) {
	id, err := c.stage(ctx, tx)
	if err != nil {
		return nil, err
	}
	defer c.discard(ctx, id)

	payload, err := c.Command(ctx, newCommand("txncheck").param("id", id).String())
	if err != nil {
		return nil, err
	}

	var result simulateResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, session.NewRemoteRejectedError("node returned an unreadable simulation result")
	}
	if !result.Valid {
		detail := result.Notes
		if detail == "" {
			detail = "node rejected the transaction dry-run"
		}
		return nil, session.NewRemoteRejectedError(detail)
	}
	return &session.Simulation{Fee: result.Fee, Detail: result.Notes}, nil
}

// Sign stages the simulated shape, asks the wallet to sign it with its own
// keys, and exports the signed transaction as the portable bundle.
func (c *Client) Sign(ctx context.Context, tx *session.WireTransaction) (*session.SignatureBundle, error) {
	id, err := c.stage(ctx, tx)
	if err != nil {
		return nil, err
	}
	defer c.discard(ctx, id)

	payload, err := c.Command(ctx, newCommand("txnsign").param("id", id).param("publickey", "auto").String())
	if err != nil {
		return nil, err
	}
	var signed struct {
		Keys []string `json:"keys"`
	}
	if err := json.Unmarshal(payload, &signed); err != nil {
		return nil, session.NewRemoteRejectedError("node returned an unreadable signing result")
	}

	payload, err = c.Command(ctx, newCommand("txnexport").param("id", id).String())
	if err != nil {
		return nil, err
	}
	var exported struct {
		Data string `json:"data"`
	}
	if err := json.Unmarshal(payload, &exported); err != nil || exported.Data == "" {
		return nil, session.NewRemoteRejectedError("node returned no signed transaction data")
	}

	return &session.SignatureBundle{Data: exported.Data, Keys: signed.Keys}, nil
}

// Broadcast imports the signed bundle into the node and posts it to the
// network, returning the resulting ledger transaction identifier.
func (c *Client) Broadcast(ctx context.Context, bundle *session.SignatureBundle) (string, error) {
	payload, err := c.Command(ctx, newCommand("txnimport").param("data", bundle.Data).String())
	if err != nil {
		return "", err
	}
	var imported struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(payload, &imported); err != nil || imported.ID == "" {
		return "", session.NewRemoteRejectedError("node could not import the signed transaction")
	}
	defer c.discard(ctx, imported.ID)

	payload, err = c.Command(ctx, newCommand("txnpost").param("id", imported.ID).String())
	if err != nil {
		return "", err
	}
	var posted struct {
		TxPoWID string `json:"txpowid"`
	}
	if err := json.Unmarshal(payload, &posted); err != nil || posted.TxPoWID == "" {
		return "", session.NewRemoteRejectedError("node accepted the post but returned no transaction id")
	}
	return posted.TxPoWID, nil
}

// DefaultAddress returns the wallet address implicit change outputs go to.
func (c *Client) DefaultAddress(ctx context.Context) (string, error) {
	payload, err := c.Command(ctx, "getaddress")
	if err != nil {
		return "", err
	}
	var addr struct {
		MiniAddress string `json:"miniaddress"`
		Address     string `json:"address"`
	}
	if err := json.Unmarshal(payload, &addr); err != nil {
		return "", session.NewRemoteRejectedError("node returned an unreadable address")
	}
	if addr.MiniAddress != "" {
		return addr.MiniAddress, nil
	}
	if addr.Address != "" {
		return addr.Address, nil
	}
	return "", session.NewRemoteRejectedError("node returned an empty address")
}

// stage creates a scratch transaction on the node and attaches the wire
// shape's inputs and outputs to it.
func (c *Client) stage(ctx context.Context, tx *session.WireTransaction) (string, error) {
	id := "gw-" + uuid.NewString()
	if _, err := c.Command(ctx, newCommand("txncreate").param("id", id).String()); err != nil {
		return "", err
	}

	for _, in := range tx.Inputs {
		cmd := newCommand("txninput").
			param("id", id).
			param("coinid", in.CoinID).
			param("amount", in.Amount.String()).
			param("scriptmmr", "true")
		if _, err := c.Command(ctx, cmd.String()); err != nil {
			c.discard(ctx, id)
			return "", err
		}
	}

	for _, out := range tx.Outputs {
		cmd := newCommand("txnoutput").
			param("id", id).
			param("address", out.Address).
			param("amount", out.Amount.String()).
			param("tokenid", out.TokenID)
		for _, sv := range out.State {
			cmd.param("state", fmt.Sprintf("%d:%s", sv.Index, sv.Value))
		}
		if _, err := c.Command(ctx, cmd.String()); err != nil {
			c.discard(ctx, id)
			return "", err
		}
	}

	return id, nil
}

// discard tears down a scratch transaction. Best effort: the node evicts
// dangling scratch transactions on its own, so failures here are not fatal.
func (c *Client) discard(ctx context.Context, id string) {
	_, _ = c.Command(ctx, newCommand("txndelete").param("id", id).String())
}

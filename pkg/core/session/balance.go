package session

import (
	"sort"

	"github.com/shopspring/decimal"
)

// BalanceSheet groups a draft's value flow per token id:
// surplus[token] = sum(inputs[token]) - sum(outputs[token]).
// Engine-appended change outputs are excluded, since the sheet is what the
// engine uses to recompute them.
type BalanceSheet struct {
	surplus map[string]decimal.Decimal
}

// NewBalanceSheet computes the per-token surplus of the given draft.
func NewBalanceSheet(d *Draft) *BalanceSheet {
	sheet := &BalanceSheet{surplus: make(map[string]decimal.Decimal)}
	for _, in := range d.Inputs {
		sheet.surplus[in.TokenID] = sheet.token(in.TokenID).Add(in.SpendAmount())
	}
	for _, out := range d.Outputs {
		if out.Change {
			continue
		}
		sheet.surplus[out.TokenID] = sheet.token(out.TokenID).Sub(out.Amount)
	}
	return sheet
}

// Surplus returns the surplus for the given token id, zero if the token does
// not appear in the draft.
func (b *BalanceSheet) Surplus(tokenID string) decimal.Decimal {
	return b.token(tokenID)
}

// BaseChange returns the base-asset surplus left after the fee: the amount
// the engine must return to the default address so no value is silently
// burned. A negative result means the inputs cannot cover the fee.
func (b *BalanceSheet) BaseChange(fee decimal.Decimal) decimal.Decimal {
	return b.token(BaseTokenID).Sub(fee)
}

// Verify checks that every token is covered and, for non-base tokens, exactly
// balanced. The fee is charged against the base asset. When autoTokenChange
// is set, leftover non-base surplus is allowed (the engine returns it as an
// automatic change output); otherwise it is an UnbalancedToken error and the
// caller must add an explicit change output.
func (b *BalanceSheet) Verify(fee decimal.Decimal, autoTokenChange bool) error {
	for _, tokenID := range b.tokens() {
		surplus := b.token(tokenID)
		if tokenID == BaseTokenID {
			surplus = surplus.Sub(fee)
		}
		if surplus.IsNegative() {
			return NewInsufficientFundsError(tokenID, surplus.Neg())
		}
		if tokenID != BaseTokenID && surplus.IsPositive() && !autoTokenChange {
			return NewUnbalancedTokenError(tokenID, surplus)
		}
	}
	return nil
}

// TokenChange returns the non-base tokens with positive surplus and their
// amounts, in token id order. Used only in the auto-token-change mode.
func (b *BalanceSheet) TokenChange() []struct {
	TokenID string
	Amount  decimal.Decimal
} {
	var change []struct {
		TokenID string
		Amount  decimal.Decimal
	}
	for _, tokenID := range b.tokens() {
		if tokenID == BaseTokenID {
			continue
		}
		if surplus := b.token(tokenID); surplus.IsPositive() {
			change = append(change, struct {
				TokenID string
				Amount  decimal.Decimal
			}{TokenID: tokenID, Amount: surplus})
		}
	}
	return change
}

func (b *BalanceSheet) token(tokenID string) decimal.Decimal {
	if v, ok := b.surplus[tokenID]; ok {
		return v
	}
	return decimal.Zero
}

func (b *BalanceSheet) tokens() []string {
	tokens := make([]string, 0, len(b.surplus))
	for tokenID := range b.surplus {
		tokens = append(tokens, tokenID)
	}
	sort.Strings(tokens)
	return tokens
}

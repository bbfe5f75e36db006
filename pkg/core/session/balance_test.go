package session_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"

	"github.com/minima-tools/go-minima-gateway/pkg/core/session"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestBalanceSheet_Surplus(t *testing.T) {
	// given:
	draft := &session.Draft{
		Inputs: []session.InputRef{
			{CoinID: "0x01", Amount: dec(t, "100"), TokenID: session.BaseTokenID},
			{CoinID: "0x02", Amount: dec(t, "50"), TokenID: session.BaseTokenID},
			{CoinID: "0x03", Amount: dec(t, "7"), TokenID: "0xTOKEN"},
		},
		Outputs: []session.OutputSpec{
			{Address: "0xA", Amount: dec(t, "100"), TokenID: session.BaseTokenID},
			{Address: "0xB", Amount: dec(t, "5"), TokenID: "0xTOKEN"},
		},
	}

	// when:
	sheet := session.NewBalanceSheet(draft)

	// then:
	require.True(t, sheet.Surplus(session.BaseTokenID).Equal(dec(t, "50")))
	require.True(t, sheet.Surplus("0xTOKEN").Equal(dec(t, "2")))
	require.True(t, sheet.Surplus("0xUNKNOWN").IsZero())
}

func TestBalanceSheet_ExcludesChangeOutputs(t *testing.T) {
	// given:
	draft := &session.Draft{
		Inputs: []session.InputRef{
			{CoinID: "0x01", Amount: dec(t, "100"), TokenID: session.BaseTokenID},
		},
		Outputs: []session.OutputSpec{
			{Address: "0xA", Amount: dec(t, "60"), TokenID: session.BaseTokenID},
			{Address: "0xCHG", Amount: dec(t, "40"), TokenID: session.BaseTokenID, Change: true},
		},
	}

	// when:
	sheet := session.NewBalanceSheet(draft)

	// then: the sheet ignores engine-appended change so it can be recomputed.
	require.True(t, sheet.Surplus(session.BaseTokenID).Equal(dec(t, "40")))
}

func TestBalanceSheet_OverrideLimitsSpend(t *testing.T) {
	// given:
	draft := &session.Draft{
		Inputs: []session.InputRef{
			{CoinID: "0x01", Amount: dec(t, "100"), TokenID: session.BaseTokenID, Override: ptr.To(dec(t, "30"))},
		},
		Outputs: []session.OutputSpec{
			{Address: "0xA", Amount: dec(t, "10"), TokenID: session.BaseTokenID},
		},
	}

	// when:
	sheet := session.NewBalanceSheet(draft)

	// then:
	require.True(t, sheet.Surplus(session.BaseTokenID).Equal(dec(t, "20")))
}

func TestBalanceSheet_Verify(t *testing.T) {
	tests := map[string]struct {
		inputs          []session.InputRef
		outputs         []session.OutputSpec
		fee             string
		autoTokenChange bool
		expectedKind    session.FailureKind
	}{
		"covered base asset with fee passes": {
			inputs: []session.InputRef{
				{CoinID: "0x01", Amount: dec(t, "150"), TokenID: session.BaseTokenID},
			},
			outputs: []session.OutputSpec{
				{Address: "0xA", Amount: dec(t, "100"), TokenID: session.BaseTokenID},
			},
			fee: "0.0001",
		},
		"base asset short of the fee fails": {
			inputs: []session.InputRef{
				{CoinID: "0x01", Amount: dec(t, "100"), TokenID: session.BaseTokenID},
			},
			outputs: []session.OutputSpec{
				{Address: "0xA", Amount: dec(t, "100"), TokenID: session.BaseTokenID},
			},
			fee:          "0.0001",
			expectedKind: session.KindInsufficientFunds,
		},
		"token outputs exceeding token inputs fail": {
			inputs: []session.InputRef{
				{CoinID: "0x01", Amount: dec(t, "150"), TokenID: session.BaseTokenID},
				{CoinID: "0x02", Amount: dec(t, "3"), TokenID: "0xTOKEN"},
			},
			outputs: []session.OutputSpec{
				{Address: "0xA", Amount: dec(t, "5"), TokenID: "0xTOKEN"},
			},
			fee:          "0",
			expectedKind: session.KindInsufficientFunds,
		},
		"leftover token surplus fails under the strict policy": {
			inputs: []session.InputRef{
				{CoinID: "0x01", Amount: dec(t, "150"), TokenID: session.BaseTokenID},
				{CoinID: "0x02", Amount: dec(t, "7"), TokenID: "0xTOKEN"},
			},
			outputs: []session.OutputSpec{
				{Address: "0xA", Amount: dec(t, "5"), TokenID: "0xTOKEN"},
			},
			fee:          "0",
			expectedKind: session.KindUnbalancedToken,
		},
		"leftover token surplus passes with auto token change": {
			inputs: []session.InputRef{
				{CoinID: "0x01", Amount: dec(t, "150"), TokenID: session.BaseTokenID},
				{CoinID: "0x02", Amount: dec(t, "7"), TokenID: "0xTOKEN"},
			},
			outputs: []session.OutputSpec{
				{Address: "0xA", Amount: dec(t, "5"), TokenID: "0xTOKEN"},
			},
			fee:             "0",
			autoTokenChange: true,
		},
		"base asset surplus is always allowed": {
			inputs: []session.InputRef{
				{CoinID: "0x01", Amount: dec(t, "150"), TokenID: session.BaseTokenID},
			},
			outputs: []session.OutputSpec{
				{Address: "0xA", Amount: dec(t, "1"), TokenID: session.BaseTokenID},
			},
			fee: "0",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			// given:
			sheet := session.NewBalanceSheet(&session.Draft{Inputs: tc.inputs, Outputs: tc.outputs})

			// when:
			err := sheet.Verify(dec(t, tc.fee), tc.autoTokenChange)

			// then:
			if tc.expectedKind == "" {
				require.NoError(t, err)
				return
			}
			var sessErr *session.Error
			require.ErrorAs(t, err, &sessErr)
			require.Equal(t, tc.expectedKind, sessErr.Kind)
		})
	}
}

func TestBalanceSheet_BaseChange(t *testing.T) {
	// given:
	sheet := session.NewBalanceSheet(&session.Draft{
		Inputs: []session.InputRef{
			{CoinID: "0x01", Amount: dec(t, "150"), TokenID: session.BaseTokenID},
		},
		Outputs: []session.OutputSpec{
			{Address: "0xA", Amount: dec(t, "100"), TokenID: session.BaseTokenID},
		},
	})

	// when:
	change := sheet.BaseChange(dec(t, "0.0001"))

	// then:
	require.True(t, change.Equal(dec(t, "49.9999")))
}

func TestBalanceSheet_TokenChange(t *testing.T) {
	// given:
	sheet := session.NewBalanceSheet(&session.Draft{
		Inputs: []session.InputRef{
			{CoinID: "0x01", Amount: dec(t, "10"), TokenID: "0xBBB"},
			{CoinID: "0x02", Amount: dec(t, "4"), TokenID: "0xAAA"},
		},
		Outputs: []session.OutputSpec{
			{Address: "0xA", Amount: dec(t, "6"), TokenID: "0xBBB"},
		},
	})

	// when:
	change := sheet.TokenChange()

	// then: ordered by token id for deterministic output layout.
	require.Len(t, change, 2)
	require.Equal(t, "0xAAA", change[0].TokenID)
	require.True(t, change[0].Amount.Equal(dec(t, "4")))
	require.Equal(t, "0xBBB", change[1].TokenID)
	require.True(t, change[1].Amount.Equal(dec(t, "4")))
}

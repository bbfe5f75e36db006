package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minima-tools/go-minima-gateway/pkg/gateway/internal/app"
	"github.com/minima-tools/go-minima-gateway/pkg/gateway/internal/testabilities"
)

func TestDraftMutationService_AddInput(t *testing.T) {
	// given:
	mock := testabilities.NewNodeProviderMock(t, testabilities.DefaultNodeProviderMockExpectations())
	engine := testabilities.NewTestDraftEngine(t, mock)
	lifecycle := app.NewDraftLifecycleService(engine)
	service := app.NewDraftMutationService(engine)

	_, err := lifecycle.OpenDraft(context.Background(), "t1")
	require.NoError(t, err)

	// when:
	draft, err := service.AddInput(context.Background(), "t1", app.AddInputRequest{CoinID: "0xC0FFEE"})

	// then:
	require.NoError(t, err)
	require.Len(t, draft.Inputs, 1)
	require.Equal(t, "0xC0FFEE", draft.Inputs[0].CoinID)
	require.Equal(t, "100", draft.Inputs[0].Amount)
	require.Equal(t, []string{"0xC0FFEE"}, mock.CoinCalls())
}

func TestDraftMutationService_AddInputWithPartialSpend(t *testing.T) {
	// given:
	mock := testabilities.NewNodeProviderMock(t, testabilities.DefaultNodeProviderMockExpectations())
	engine := testabilities.NewTestDraftEngine(t, mock)
	lifecycle := app.NewDraftLifecycleService(engine)
	service := app.NewDraftMutationService(engine)

	_, err := lifecycle.OpenDraft(context.Background(), "t1")
	require.NoError(t, err)

	// when:
	draft, err := service.AddInput(context.Background(), "t1", app.AddInputRequest{
		CoinID: "0xC0FFEE",
		Amount: "40",
	})

	// then:
	require.NoError(t, err)
	require.Equal(t, "40", draft.Inputs[0].Override)
}

func TestDraftMutationService_AddInputInvalidCases(t *testing.T) {
	tests := map[string]struct {
		id           string
		req          app.AddInputRequest
		expectedType app.ErrorType
	}{
		"empty draft id": {
			req:          app.AddInputRequest{CoinID: "0xC0FFEE"},
			expectedType: app.ErrorTypeIncorrectInput,
		},
		"empty coin id": {
			id:           "t1",
			req:          app.AddInputRequest{},
			expectedType: app.ErrorTypeIncorrectInput,
		},
		"amount is not a decimal": {
			id:           "t1",
			req:          app.AddInputRequest{CoinID: "0xC0FFEE", Amount: "not-a-number"},
			expectedType: app.ErrorTypeIncorrectInput,
		},
		"unknown coin": {
			id:           "t1",
			req:          app.AddInputRequest{CoinID: "0xMISSING"},
			expectedType: app.ErrorTypeNotFound,
		},
		"unknown draft": {
			id:           "other",
			req:          app.AddInputRequest{CoinID: "0xC0FFEE"},
			expectedType: app.ErrorTypeNotFound,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			// given:
			mock := testabilities.NewNodeProviderMock(t, testabilities.DefaultNodeProviderMockExpectations())
			engine := testabilities.NewTestDraftEngine(t, mock)
			lifecycle := app.NewDraftLifecycleService(engine)
			service := app.NewDraftMutationService(engine)

			_, err := lifecycle.OpenDraft(context.Background(), "t1")
			require.NoError(t, err)

			// when:
			_, err = service.AddInput(context.Background(), tc.id, tc.req)

			// then:
			var appErr app.Error
			require.ErrorAs(t, err, &appErr)
			require.Equal(t, tc.expectedType, appErr.ErrorType())
		})
	}
}

func TestDraftMutationService_AddOutput(t *testing.T) {
	// given:
	mock := testabilities.NewNodeProviderMock(t, testabilities.DefaultNodeProviderMockExpectations())
	engine := testabilities.NewTestDraftEngine(t, mock)
	lifecycle := app.NewDraftLifecycleService(engine)
	service := app.NewDraftMutationService(engine)

	_, err := lifecycle.OpenDraft(context.Background(), "t1")
	require.NoError(t, err)

	// when:
	draft, err := service.AddOutput(context.Background(), "t1", app.AddOutputRequest{
		Address: "0xRECIPIENT",
		Amount:  "25",
		State:   []app.StateVarDTO{{Index: 0, Value: "order-42"}},
	})

	// then: the token id defaults to the base asset.
	require.NoError(t, err)
	require.Len(t, draft.Outputs, 1)
	require.Equal(t, "0xRECIPIENT", draft.Outputs[0].Address)
	require.Equal(t, "25", draft.Outputs[0].Amount)
	require.Equal(t, "0x00", draft.Outputs[0].TokenID)
	require.Equal(t, []app.StateVarDTO{{Index: 0, Value: "order-42"}}, draft.Outputs[0].State)
}

func TestDraftMutationService_AddOutputInvalidCases(t *testing.T) {
	tests := map[string]struct {
		req app.AddOutputRequest
	}{
		"empty address": {
			req: app.AddOutputRequest{Amount: "10"},
		},
		"amount is not a decimal": {
			req: app.AddOutputRequest{Address: "0xA", Amount: "ten"},
		},
		"zero amount": {
			req: app.AddOutputRequest{Address: "0xA", Amount: "0"},
		},
		"negative state index": {
			req: app.AddOutputRequest{Address: "0xA", Amount: "10", State: []app.StateVarDTO{{Index: -1, Value: "x"}}},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			// given:
			mock := testabilities.NewNodeProviderMock(t, testabilities.DefaultNodeProviderMockExpectations())
			engine := testabilities.NewTestDraftEngine(t, mock)
			lifecycle := app.NewDraftLifecycleService(engine)
			service := app.NewDraftMutationService(engine)

			_, err := lifecycle.OpenDraft(context.Background(), "t1")
			require.NoError(t, err)

			// when:
			_, err = service.AddOutput(context.Background(), "t1", tc.req)

			// then:
			var appErr app.Error
			require.ErrorAs(t, err, &appErr)
			require.Equal(t, app.ErrorTypeIncorrectInput, appErr.ErrorType())
		})
	}
}

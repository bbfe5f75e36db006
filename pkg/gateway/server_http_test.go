package gateway_test

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/minima-tools/go-minima-gateway/pkg/gateway"
	"github.com/minima-tools/go-minima-gateway/pkg/gateway/internal/app"
	"github.com/minima-tools/go-minima-gateway/pkg/gateway/internal/ports"
	"github.com/minima-tools/go-minima-gateway/pkg/gateway/internal/testabilities"
)

func TestDraftPipelineOverHTTP(t *testing.T) {
	// given:
	expectations := testabilities.DefaultNodeProviderMockExpectations()
	expectations.SimulateCall = true
	expectations.SignCall = true
	expectations.BroadcastCall = true
	mock := testabilities.NewNodeProviderMock(t, expectations)
	fixture := gateway.NewServerTestFixture(t,
		gateway.WithDraftEngine(testabilities.NewTestDraftEngine(t, mock)),
		gateway.WithNodeQueries(mock),
	)
	client := fixture.Client()

	// when: a draft is opened, funded and walked through the pipeline.
	var opened app.DraftDTO
	res, _ := client.R().
		SetBody(map[string]string{"id": "t1"}).
		SetResult(&opened).
		Post("/api/v1/drafts")
	require.Equal(t, fiber.StatusCreated, res.StatusCode())
	require.Equal(t, "t1", opened.ID)
	require.Equal(t, "OPEN", opened.Status)

	var withInput app.DraftDTO
	res, _ = client.R().
		SetBody(map[string]string{"coinid": "0xC0FFEE"}).
		SetResult(&withInput).
		Post("/api/v1/drafts/t1/inputs")
	require.Equal(t, fiber.StatusOK, res.StatusCode())
	require.Len(t, withInput.Inputs, 1)

	var withOutput app.DraftDTO
	res, _ = client.R().
		SetBody(map[string]string{"address": "0xRECIPIENT", "amount": "60"}).
		SetResult(&withOutput).
		Post("/api/v1/drafts/t1/outputs")
	require.Equal(t, fiber.StatusOK, res.StatusCode())
	require.Len(t, withOutput.Outputs, 1)

	var simulated app.DraftDTO
	res, _ = client.R().
		SetResult(&simulated).
		Post("/api/v1/drafts/t1/simulate")
	require.Equal(t, fiber.StatusOK, res.StatusCode())
	require.Equal(t, "SIMULATED", simulated.Status)
	require.Equal(t, "0.0001", simulated.Fee)
	require.Len(t, simulated.Outputs, 2)
	require.True(t, simulated.Outputs[1].Change)

	var signed app.DraftDTO
	res, _ = client.R().
		SetResult(&signed).
		Post("/api/v1/drafts/t1/sign")
	require.Equal(t, fiber.StatusOK, res.StatusCode())
	require.Equal(t, "SIGNED", signed.Status)
	require.True(t, signed.Signed)

	var broadcast app.DraftDTO
	res, _ = client.R().
		SetResult(&broadcast).
		Post("/api/v1/drafts/t1/broadcast")

	// then:
	require.Equal(t, fiber.StatusOK, res.StatusCode())
	require.Equal(t, "BROADCAST", broadcast.Status)
	require.Equal(t, "0x7AB0", broadcast.LedgerTxID)
	mock.AssertCalled()
}

func TestDraftErrorMappingOverHTTP(t *testing.T) {
	tests := map[string]struct {
		method         string
		url            string
		body           any
		expectedStatus int
	}{
		"unknown draft returns 404": {
			method:         fiber.MethodGet,
			url:            "/api/v1/drafts/missing",
			expectedStatus: fiber.StatusNotFound,
		},
		"signing an open draft returns 409": {
			method:         fiber.MethodPost,
			url:            "/api/v1/drafts/t1/sign",
			expectedStatus: fiber.StatusConflict,
		},
		"malformed import returns 400": {
			method:         fiber.MethodPost,
			url:            "/api/v1/drafts/import",
			body:           map[string]string{"data": "garbage"},
			expectedStatus: fiber.StatusBadRequest,
		},
		"underfunded simulate returns 422": {
			method:         fiber.MethodPost,
			url:            "/api/v1/drafts/t2/simulate",
			expectedStatus: fiber.StatusUnprocessableEntity,
		},
	}

	// given: t1 is open and empty; t2 is overdrawn against its single coin.
	mock := testabilities.NewNodeProviderMock(t, testabilities.DefaultNodeProviderMockExpectations())
	fixture := gateway.NewServerTestFixture(t,
		gateway.WithDraftEngine(testabilities.NewTestDraftEngine(t, mock)),
		gateway.WithNodeQueries(mock),
	)
	client := fixture.Client()

	res, _ := client.R().SetBody(map[string]string{"id": "t1"}).Post("/api/v1/drafts")
	require.Equal(t, fiber.StatusCreated, res.StatusCode())
	res, _ = client.R().SetBody(map[string]string{"id": "t2"}).Post("/api/v1/drafts")
	require.Equal(t, fiber.StatusCreated, res.StatusCode())
	res, _ = client.R().SetBody(map[string]string{"coinid": "0xC0FFEE"}).Post("/api/v1/drafts/t2/inputs")
	require.Equal(t, fiber.StatusOK, res.StatusCode())
	res, _ = client.R().SetBody(map[string]string{"address": "0xA", "amount": "150"}).Post("/api/v1/drafts/t2/outputs")
	require.Equal(t, fiber.StatusOK, res.StatusCode())

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			// when:
			var errorResponse ports.ErrorResponse
			req := client.R().SetError(&errorResponse)
			if tc.body != nil {
				req.SetBody(tc.body)
			}
			res, _ := req.Execute(tc.method, tc.url)

			// then:
			require.Equal(t, tc.expectedStatus, res.StatusCode())
			require.NotEmpty(t, errorResponse.Message)
		})
	}
}

func TestDraftListingAndDeletionOverHTTP(t *testing.T) {
	// given:
	mock := testabilities.NewNodeProviderMock(t, testabilities.DefaultNodeProviderMockExpectations())
	fixture := gateway.NewServerTestFixture(t,
		gateway.WithDraftEngine(testabilities.NewTestDraftEngine(t, mock)),
		gateway.WithNodeQueries(mock),
	)
	client := fixture.Client()

	res, _ := client.R().SetBody(map[string]string{"id": "t1"}).Post("/api/v1/drafts")
	require.Equal(t, fiber.StatusCreated, res.StatusCode())
	res, _ = client.R().SetBody(map[string]string{"id": "t2"}).Post("/api/v1/drafts")
	require.Equal(t, fiber.StatusCreated, res.StatusCode())

	// when:
	var listing ports.ListDraftsResponse
	res, _ = client.R().SetResult(&listing).Get("/api/v1/drafts")

	// then:
	require.Equal(t, fiber.StatusOK, res.StatusCode())
	require.Equal(t, 2, listing.Count)

	// when:
	var deleted app.DraftDTO
	res, _ = client.R().SetResult(&deleted).Delete("/api/v1/drafts/t1")

	// then:
	require.Equal(t, fiber.StatusOK, res.StatusCode())
	require.Equal(t, "DELETED", deleted.Status)

	res, _ = client.R().SetResult(&listing).Get("/api/v1/drafts")
	require.Equal(t, fiber.StatusOK, res.StatusCode())
	require.Equal(t, 1, listing.Count)
}

func TestExportImportOverHTTP(t *testing.T) {
	// given:
	mock := testabilities.NewNodeProviderMock(t, testabilities.DefaultNodeProviderMockExpectations())
	fixture := gateway.NewServerTestFixture(t,
		gateway.WithDraftEngine(testabilities.NewTestDraftEngine(t, mock)),
		gateway.WithNodeQueries(mock),
	)
	client := fixture.Client()

	res, _ := client.R().SetBody(map[string]string{"id": "t1"}).Post("/api/v1/drafts")
	require.Equal(t, fiber.StatusCreated, res.StatusCode())
	res, _ = client.R().SetBody(map[string]string{"coinid": "0xC0FFEE"}).Post("/api/v1/drafts/t1/inputs")
	require.Equal(t, fiber.StatusOK, res.StatusCode())

	// when:
	var exported app.ExportDTO
	res, _ = client.R().SetResult(&exported).Get("/api/v1/drafts/t1/export")
	require.Equal(t, fiber.StatusOK, res.StatusCode())
	require.NotEmpty(t, exported.Data)

	var imported app.DraftDTO
	res, _ = client.R().
		SetBody(map[string]string{"id": "t1-copy", "data": exported.Data}).
		SetResult(&imported).
		Post("/api/v1/drafts/import")

	// then:
	require.Equal(t, fiber.StatusCreated, res.StatusCode())
	require.Equal(t, "t1-copy", imported.ID)
	require.Len(t, imported.Inputs, 1)
}

func TestAdminCommandAuthorizationOverHTTP(t *testing.T) {
	const token = "428e1f07-79b6-4901-b0a0-ec1fe815331b"

	tests := map[string]struct {
		authorization  string
		expectedStatus int
	}{
		"missing authorization header": {
			expectedStatus: fiber.StatusUnauthorized,
		},
		"missing bearer scheme": {
			authorization:  token,
			expectedStatus: fiber.StatusUnauthorized,
		},
		"wrong token": {
			authorization:  "Bearer not-the-token",
			expectedStatus: fiber.StatusForbidden,
		},
		"valid token": {
			authorization:  "Bearer " + token,
			expectedStatus: fiber.StatusOK,
		},
	}

	// given:
	mock := testabilities.NewNodeProviderMock(t, testabilities.DefaultNodeProviderMockExpectations())
	fixture := gateway.NewServerTestFixture(t,
		gateway.WithDraftEngine(testabilities.NewTestDraftEngine(t, mock)),
		gateway.WithAdminBearerToken(token),
	)
	client := fixture.Client()

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			// when:
			req := client.R().SetBody(map[string]string{"command": "status"})
			if tc.authorization != "" {
				req.SetHeader(fiber.HeaderAuthorization, tc.authorization)
			}
			res, _ := req.Post("/api/v1/admin/command")

			// then:
			require.Equal(t, tc.expectedStatus, res.StatusCode())
		})
	}
}

func TestNodeQueriesOverHTTP(t *testing.T) {
	// given: the default noop node backend serves the node routes.
	fixture := gateway.NewServerTestFixture(t)
	client := fixture.Client()

	// when:
	res, _ := client.R().Get("/api/v1/node/status")

	// then:
	require.Equal(t, fiber.StatusOK, res.StatusCode())
	require.Contains(t, string(res.Body()), "noop")

	// when:
	var address ports.AddressResponse
	res, _ = client.R().SetResult(&address).Get("/api/v1/node/address")

	// then:
	require.Equal(t, fiber.StatusOK, res.StatusCode())
	require.Equal(t, "0xNOOPADDRESS", address.Address)

	// when:
	res, _ = client.R().Get("/api/v1/node/peers")

	// then:
	require.Equal(t, fiber.StatusOK, res.StatusCode())
	require.Contains(t, string(res.Body()), "peers")
}

func TestNodeQueriesUseConfiguredProviderOverHTTP(t *testing.T) {
	// given: the mock serves node queries alongside the draft engine.
	mock := testabilities.NewNodeProviderMock(t, testabilities.DefaultNodeProviderMockExpectations())
	fixture := gateway.NewServerTestFixture(t,
		gateway.WithDraftEngine(testabilities.NewTestDraftEngine(t, mock)),
		gateway.WithNodeQueries(mock),
	)
	client := fixture.Client()

	// when:
	res, _ := client.R().Get("/api/v1/node/balance")

	// then: the mock's canned payload passes through unchanged.
	require.Equal(t, fiber.StatusOK, res.StatusCode())
	require.JSONEq(t, `[{"tokenid":"0x00","confirmed":"100"}]`, string(res.Body()))
}

func TestTokenMintingOverHTTP(t *testing.T) {
	// given:
	mock := testabilities.NewNodeProviderMock(t, testabilities.DefaultNodeProviderMockExpectations())
	fixture := gateway.NewServerTestFixture(t,
		gateway.WithDraftEngine(testabilities.NewTestDraftEngine(t, mock)),
		gateway.WithNodeQueries(mock),
	)
	client := fixture.Client()

	// when: the minting request omits the required amount.
	var errorResponse ports.ErrorResponse
	res, _ := client.R().
		SetBody(map[string]string{"name": "GatewayCoin"}).
		SetError(&errorResponse).
		Post("/api/v1/tokens")

	// then:
	require.Equal(t, fiber.StatusBadRequest, res.StatusCode())
	require.NotEmpty(t, errorResponse.Message)

	// when:
	res, _ = client.R().
		SetBody(map[string]string{"name": "GatewayCoin", "amount": "1000"}).
		Post("/api/v1/tokens")

	// then:
	require.Equal(t, fiber.StatusCreated, res.StatusCode())
	require.JSONEq(t, `{"tokenid":"0xMOCKTOKEN"}`, string(res.Body()))
}

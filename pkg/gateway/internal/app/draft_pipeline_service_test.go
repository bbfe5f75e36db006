package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minima-tools/go-minima-gateway/pkg/core/session"
	"github.com/minima-tools/go-minima-gateway/pkg/gateway/internal/app"
	"github.com/minima-tools/go-minima-gateway/pkg/gateway/internal/testabilities"
)

// pipelineFixture wires all draft services around one engine and walks a
// draft up to the requested status.
type pipelineFixture struct {
	mock      *testabilities.NodeProviderMock
	lifecycle *app.DraftLifecycleService
	mutation  *app.DraftMutationService
	pipeline  *app.DraftPipelineService
}

func newPipelineFixture(t *testing.T, expectations testabilities.NodeProviderMockExpectations) *pipelineFixture {
	t.Helper()
	mock := testabilities.NewNodeProviderMock(t, expectations)
	engine := testabilities.NewTestDraftEngine(t, mock)
	return &pipelineFixture{
		mock:      mock,
		lifecycle: app.NewDraftLifecycleService(engine),
		mutation:  app.NewDraftMutationService(engine),
		pipeline:  app.NewDraftPipelineService(engine),
	}
}

func (f *pipelineFixture) openFundedDraft(t *testing.T, id string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.lifecycle.OpenDraft(ctx, id)
	require.NoError(t, err)
	_, err = f.mutation.AddInput(ctx, id, app.AddInputRequest{CoinID: "0xC0FFEE"})
	require.NoError(t, err)
	_, err = f.mutation.AddOutput(ctx, id, app.AddOutputRequest{Address: "0xRECIPIENT", Amount: "60"})
	require.NoError(t, err)
}

func TestDraftPipelineService_SimulateDraft(t *testing.T) {
	// given:
	expectations := testabilities.DefaultNodeProviderMockExpectations()
	expectations.SimulateCall = true
	fixture := newPipelineFixture(t, expectations)
	fixture.openFundedDraft(t, "t1")

	// when:
	draft, err := fixture.pipeline.SimulateDraft(context.Background(), "t1")

	// then:
	require.NoError(t, err)
	require.Equal(t, "SIMULATED", draft.Status)
	require.Equal(t, "0.0001", draft.Fee)
	require.Len(t, draft.Outputs, 2)
	require.True(t, draft.Outputs[1].Change)
	require.Equal(t, "39.9999", draft.Outputs[1].Amount)
	fixture.mock.AssertCalled()
}

func TestDraftPipelineService_SignDraft(t *testing.T) {
	// given:
	expectations := testabilities.DefaultNodeProviderMockExpectations()
	expectations.SimulateCall = true
	expectations.SignCall = true
	fixture := newPipelineFixture(t, expectations)
	fixture.openFundedDraft(t, "t1")

	_, err := fixture.pipeline.SimulateDraft(context.Background(), "t1")
	require.NoError(t, err)

	// when:
	draft, err := fixture.pipeline.SignDraft(context.Background(), "t1")

	// then: the bundle stays engine-internal, only the keys are reported.
	require.NoError(t, err)
	require.Equal(t, "SIGNED", draft.Status)
	require.True(t, draft.Signed)
	require.Equal(t, []string{"0xKEY"}, draft.SignatureKeys)
	fixture.mock.AssertCalled()
}

func TestDraftPipelineService_BroadcastDraft(t *testing.T) {
	// given:
	expectations := testabilities.DefaultNodeProviderMockExpectations()
	expectations.SimulateCall = true
	expectations.SignCall = true
	expectations.BroadcastCall = true
	fixture := newPipelineFixture(t, expectations)
	fixture.openFundedDraft(t, "t1")

	_, err := fixture.pipeline.SimulateDraft(context.Background(), "t1")
	require.NoError(t, err)
	_, err = fixture.pipeline.SignDraft(context.Background(), "t1")
	require.NoError(t, err)

	// when:
	draft, err := fixture.pipeline.BroadcastDraft(context.Background(), "t1")

	// then:
	require.NoError(t, err)
	require.Equal(t, "BROADCAST", draft.Status)
	require.Equal(t, "0x7AB0", draft.LedgerTxID)
	fixture.mock.AssertCalled()
}

func TestDraftPipelineService_SignBeforeSimulate(t *testing.T) {
	// given:
	fixture := newPipelineFixture(t, testabilities.DefaultNodeProviderMockExpectations())
	fixture.openFundedDraft(t, "t1")

	// when:
	_, err := fixture.pipeline.SignDraft(context.Background(), "t1")

	// then:
	var appErr app.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, app.ErrorTypeStateConflict, appErr.ErrorType())
	fixture.mock.AssertCalled()
}

func TestDraftPipelineService_BroadcastRejection(t *testing.T) {
	// given:
	expectations := testabilities.DefaultNodeProviderMockExpectations()
	expectations.SimulateCall = true
	expectations.SignCall = true
	expectations.BroadcastCall = true
	expectations.BroadcastError = session.NewRemoteRejectedError("txn invalid")
	fixture := newPipelineFixture(t, expectations)
	fixture.openFundedDraft(t, "t1")

	_, err := fixture.pipeline.SimulateDraft(context.Background(), "t1")
	require.NoError(t, err)
	_, err = fixture.pipeline.SignDraft(context.Background(), "t1")
	require.NoError(t, err)

	// when:
	_, err = fixture.pipeline.BroadcastDraft(context.Background(), "t1")

	// then: the node's detail reaches the caller verbatim as the slug.
	var appErr app.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, app.ErrorTypeRemoteRejected, appErr.ErrorType())
	require.Equal(t, "txn invalid", appErr.Slug())

	status, statusErr := fixture.lifecycle.DraftStatus(context.Background(), "t1")
	require.NoError(t, statusErr)
	require.Equal(t, "FAILED", status.Status)
	require.Equal(t, "txn invalid", status.FailureDetail)
	fixture.mock.AssertCalled()
}

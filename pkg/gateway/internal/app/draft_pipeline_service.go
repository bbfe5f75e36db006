package app

import (
	"context"

	"github.com/minima-tools/go-minima-gateway/pkg/core/session"
)

// DraftPipelineProvider defines the session engine surface for the network
// stages of the draft lifecycle: dry-run, signing and broadcast.
type DraftPipelineProvider interface {
	Simulate(ctx context.Context, id string) (*session.Draft, error)
	Sign(ctx context.Context, id string) (*session.Draft, error)
	Broadcast(ctx context.Context, id string) (*session.Draft, error)
}

// DraftPipelineService drives a draft through simulation, signing and
// broadcast. It owns no retry logic: every retry decision belongs to the
// caller, since blindly retrying a broadcast risks double-submission.
type DraftPipelineService struct {
	provider DraftPipelineProvider
}

// NewDraftPipelineService constructs a DraftPipelineService with the given
// provider. Panics if the provider is nil.
func NewDraftPipelineService(provider DraftPipelineProvider) *DraftPipelineService {
	if provider == nil {
		panic("draft pipeline provider is nil")
	}
	return &DraftPipelineService{provider: provider}
}

// SimulateDraft dry-runs the draft against the ledger node and caches the
// fee estimate. On success the draft advances to SIMULATED.
func (s *DraftPipelineService) SimulateDraft(ctx context.Context, id string) (*DraftDTO, error) {
	if id == "" {
		return nil, NewIncorrectInputWithFieldError("id")
	}
	draft, err := s.provider.Simulate(ctx, id)
	if err != nil {
		return nil, NewSessionEngineError(err)
	}
	return NewDraftDTO(draft), nil
}

// SignDraft requests wallet signatures over the simulated shape.
func (s *DraftPipelineService) SignDraft(ctx context.Context, id string) (*DraftDTO, error) {
	if id == "" {
		return nil, NewIncorrectInputWithFieldError("id")
	}
	draft, err := s.provider.Sign(ctx, id)
	if err != nil {
		return nil, NewSessionEngineError(err)
	}
	return NewDraftDTO(draft), nil
}

// BroadcastDraft submits a signed draft to the network.
func (s *DraftPipelineService) BroadcastDraft(ctx context.Context, id string) (*DraftDTO, error) {
	if id == "" {
		return nil, NewIncorrectInputWithFieldError("id")
	}
	draft, err := s.provider.Broadcast(ctx, id)
	if err != nil {
		return nil, NewSessionEngineError(err)
	}
	return NewDraftDTO(draft), nil
}

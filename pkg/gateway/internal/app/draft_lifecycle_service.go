package app

import (
	"context"

	"github.com/minima-tools/go-minima-gateway/pkg/core/session"
)

// DraftLifecycleProvider defines the session engine surface for opening,
// inspecting and deleting transaction drafts.
type DraftLifecycleProvider interface {
	Open(ctx context.Context, id string) (*session.Draft, error)
	Get(ctx context.Context, id string) (*session.Draft, error)
	List(ctx context.Context) []*session.Draft
	Delete(ctx context.Context, id string) (*session.Draft, error)
}

// DraftLifecycleService coordinates draft creation, status inspection,
// listing and deletion against the configured provider.
type DraftLifecycleService struct {
	provider DraftLifecycleProvider
}

// NewDraftLifecycleService constructs a DraftLifecycleService with the given
// provider. Panics if the provider is nil, enforcing correct application
// configuration.
func NewDraftLifecycleService(provider DraftLifecycleProvider) *DraftLifecycleService {
	if provider == nil {
		panic("draft lifecycle provider is nil")
	}
	return &DraftLifecycleService{provider: provider}
}

// OpenDraft creates a fresh draft. An empty id asks the engine to generate
// one; a caller-chosen id that is already active is rejected.
func (s *DraftLifecycleService) OpenDraft(ctx context.Context, id string) (*DraftDTO, error) {
	draft, err := s.provider.Open(ctx, id)
	if err != nil {
		return nil, NewSessionEngineError(err)
	}
	return NewDraftDTO(draft), nil
}

// DraftStatus returns the current state of the draft with the given id.
func (s *DraftLifecycleService) DraftStatus(ctx context.Context, id string) (*DraftDTO, error) {
	if id == "" {
		return nil, NewIncorrectInputWithFieldError("id")
	}
	draft, err := s.provider.Get(ctx, id)
	if err != nil {
		return nil, NewSessionEngineError(err)
	}
	return NewDraftDTO(draft), nil
}

// ListDrafts returns every active draft held by the engine.
func (s *DraftLifecycleService) ListDrafts(ctx context.Context) []*DraftDTO {
	drafts := s.provider.List(ctx)
	dtos := make([]*DraftDTO, 0, len(drafts))
	for _, d := range drafts {
		dtos = append(dtos, NewDraftDTO(d))
	}
	return dtos
}

// DeleteDraft moves a non-terminal draft to DELETED and evicts it.
func (s *DraftLifecycleService) DeleteDraft(ctx context.Context, id string) (*DraftDTO, error) {
	if id == "" {
		return nil, NewIncorrectInputWithFieldError("id")
	}
	draft, err := s.provider.Delete(ctx, id)
	if err != nil {
		return nil, NewSessionEngineError(err)
	}
	return NewDraftDTO(draft), nil
}

package app

import (
	"context"

	"github.com/minima-tools/go-minima-gateway/pkg/core/session"
)

// DraftTransferProvider defines the session engine surface for moving drafts
// between parties: portable export and import for cosigning workflows.
type DraftTransferProvider interface {
	Export(ctx context.Context, id string) (string, error)
	Import(ctx context.Context, id, encoded string) (*session.Draft, error)
}

// ImportDraftRequest carries a portable draft encoding and the optional id
// the reconstructed draft should be registered under.
type ImportDraftRequest struct {
	ID   string `json:"id,omitempty"`
	Data string `json:"data"`
}

// ExportDTO is the portable encoding handed to the caller for out-of-band
// transfer to a cosigner.
type ExportDTO struct {
	ID   string `json:"id"`
	Data string `json:"data"`
}

// DraftTransferService serializes drafts for cosigners and reconstructs
// drafts received from them.
type DraftTransferService struct {
	provider DraftTransferProvider
}

// NewDraftTransferService constructs a DraftTransferService with the given
// provider. Panics if the provider is nil.
func NewDraftTransferService(provider DraftTransferProvider) *DraftTransferService {
	if provider == nil {
		panic("draft transfer provider is nil")
	}
	return &DraftTransferService{provider: provider}
}

// ExportDraft serializes the draft into its portable hex encoding.
func (s *DraftTransferService) ExportDraft(ctx context.Context, id string) (*ExportDTO, error) {
	if id == "" {
		return nil, NewIncorrectInputWithFieldError("id")
	}
	data, err := s.provider.Export(ctx, id)
	if err != nil {
		return nil, NewSessionEngineError(err)
	}
	return &ExportDTO{ID: id, Data: data}, nil
}

// ImportDraft reconstructs a draft from a portable encoding. Encodings that
// already carry signatures enter at SIGNED with the bundle preserved.
func (s *DraftTransferService) ImportDraft(ctx context.Context, req ImportDraftRequest) (*DraftDTO, error) {
	if req.Data == "" {
		return nil, NewIncorrectInputWithFieldError("data")
	}
	draft, err := s.provider.Import(ctx, req.ID, req.Data)
	if err != nil {
		return nil, NewSessionEngineError(err)
	}
	return NewDraftDTO(draft), nil
}

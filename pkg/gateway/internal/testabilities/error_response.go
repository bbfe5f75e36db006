package testabilities

import (
	"testing"

	"github.com/minima-tools/go-minima-gateway/pkg/core/session"
	"github.com/minima-tools/go-minima-gateway/pkg/gateway/internal/app"
	"github.com/minima-tools/go-minima-gateway/pkg/gateway/internal/ports"
)

// NewTestErrorResponse creates a ports.ErrorResponse from the given app.Error,
// primarily for use in tests. It sets the error message to the error's slug.
func NewTestErrorResponse(t *testing.T, err app.Error) ports.ErrorResponse {
	t.Helper()
	return ports.ErrorResponse{
		Message: err.Slug(),
	}
}

// NewTestDraftEngine builds a session engine wired to the given mock, backed
// by a fresh in-memory store. Most transport tests route through it.
func NewTestDraftEngine(t *testing.T, node *NodeProviderMock) *session.Engine {
	t.Helper()
	return session.NewEngine(session.NewStore(session.DefaultStoreConfig), node, session.Config{})
}

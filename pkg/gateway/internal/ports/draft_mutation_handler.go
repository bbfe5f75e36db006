package ports

import (
	"github.com/gofiber/fiber/v2"

	"github.com/minima-tools/go-minima-gateway/pkg/gateway/internal/app"
)

// DraftMutationHandler handles input and output attachment requests.
type DraftMutationHandler struct {
	service *app.DraftMutationService
}

// NewDraftMutationHandler creates the handler backed by the given provider.
// Panics if the provider is nil.
func NewDraftMutationHandler(provider app.DraftMutationProvider) *DraftMutationHandler {
	if provider == nil {
		panic("draft mutation provider is nil")
	}
	return &DraftMutationHandler{service: app.NewDraftMutationService(provider)}
}

// AddInput handles POST /drafts/:id/inputs.
func (h *DraftMutationHandler) AddInput(c *fiber.Ctx) error {
	var req app.AddInputRequest
	if err := c.BodyParser(&req); err != nil {
		return NewRequestBodyParserError(err)
	}

	draft, err := h.service.AddInput(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(draft)
}

// AddOutput handles POST /drafts/:id/outputs.
func (h *DraftMutationHandler) AddOutput(c *fiber.Ctx) error {
	var req app.AddOutputRequest
	if err := c.BodyParser(&req); err != nil {
		return NewRequestBodyParserError(err)
	}

	draft, err := h.service.AddOutput(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(draft)
}

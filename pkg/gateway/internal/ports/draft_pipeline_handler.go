package ports

import (
	"github.com/gofiber/fiber/v2"

	"github.com/minima-tools/go-minima-gateway/pkg/gateway/internal/app"
)

// DraftPipelineHandler handles the simulate, sign and broadcast stages.
type DraftPipelineHandler struct {
	service *app.DraftPipelineService
}

// NewDraftPipelineHandler creates the handler backed by the given provider.
// Panics if the provider is nil.
func NewDraftPipelineHandler(provider app.DraftPipelineProvider) *DraftPipelineHandler {
	if provider == nil {
		panic("draft pipeline provider is nil")
	}
	return &DraftPipelineHandler{service: app.NewDraftPipelineService(provider)}
}

// Simulate handles POST /drafts/:id/simulate.
func (h *DraftPipelineHandler) Simulate(c *fiber.Ctx) error {
	draft, err := h.service.SimulateDraft(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(draft)
}

// Sign handles POST /drafts/:id/sign.
func (h *DraftPipelineHandler) Sign(c *fiber.Ctx) error {
	draft, err := h.service.SignDraft(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(draft)
}

// Broadcast handles POST /drafts/:id/broadcast.
func (h *DraftPipelineHandler) Broadcast(c *fiber.Ctx) error {
	draft, err := h.service.BroadcastDraft(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(draft)
}

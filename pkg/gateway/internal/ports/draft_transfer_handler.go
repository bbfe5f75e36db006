package ports

import (
	"github.com/gofiber/fiber/v2"

	"github.com/minima-tools/go-minima-gateway/pkg/gateway/internal/app"
)

// DraftTransferHandler handles export and import of drafts for cosigning.
type DraftTransferHandler struct {
	service *app.DraftTransferService
}

// NewDraftTransferHandler creates the handler backed by the given provider.
// Panics if the provider is nil.
func NewDraftTransferHandler(provider app.DraftTransferProvider) *DraftTransferHandler {
	if provider == nil {
		panic("draft transfer provider is nil")
	}
	return &DraftTransferHandler{service: app.NewDraftTransferService(provider)}
}

// Export handles GET /drafts/:id/export.
func (h *DraftTransferHandler) Export(c *fiber.Ctx) error {
	payload, err := h.service.ExportDraft(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(payload)
}

// Import handles POST /drafts/import.
func (h *DraftTransferHandler) Import(c *fiber.Ctx) error {
	var req app.ImportDraftRequest
	if err := c.BodyParser(&req); err != nil {
		return NewRequestBodyParserError(err)
	}

	draft, err := h.service.ImportDraft(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(draft)
}

package ports

import (
	"github.com/gofiber/fiber/v2"

	"github.com/minima-tools/go-minima-gateway/pkg/gateway/internal/app"
)

// OpenDraftRequest optionally names the draft to open; the engine generates
// an id when none is supplied.
type OpenDraftRequest struct {
	ID string `json:"id,omitempty"`
}

// ListDraftsResponse wraps the active draft listing.
type ListDraftsResponse struct {
	Drafts []*app.DraftDTO `json:"drafts"`
	Count  int             `json:"count"`
}

// DraftLifecycleHandler handles draft creation, inspection, listing and
// deletion requests. It validates transport-level concerns and delegates the
// rest to the lifecycle service.
type DraftLifecycleHandler struct {
	service *app.DraftLifecycleService
}

// NewDraftLifecycleHandler creates the handler backed by the given provider.
// Panics if the provider is nil.
func NewDraftLifecycleHandler(provider app.DraftLifecycleProvider) *DraftLifecycleHandler {
	if provider == nil {
		panic("draft lifecycle provider is nil")
	}
	return &DraftLifecycleHandler{service: app.NewDraftLifecycleService(provider)}
}

// Open handles POST /drafts. The body is optional; an empty body opens a
// draft under a generated id.
func (h *DraftLifecycleHandler) Open(c *fiber.Ctx) error {
	var req OpenDraftRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return NewRequestBodyParserError(err)
		}
	}

	draft, err := h.service.OpenDraft(c.UserContext(), req.ID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(draft)
}

// Get handles GET /drafts/:id.
func (h *DraftLifecycleHandler) Get(c *fiber.Ctx) error {
	draft, err := h.service.DraftStatus(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(draft)
}

// List handles GET /drafts.
func (h *DraftLifecycleHandler) List(c *fiber.Ctx) error {
	drafts := h.service.ListDrafts(c.UserContext())
	return c.Status(fiber.StatusOK).JSON(ListDraftsResponse{Drafts: drafts, Count: len(drafts)})
}

// Delete handles DELETE /drafts/:id.
func (h *DraftLifecycleHandler) Delete(c *fiber.Ctx) error {
	draft, err := h.service.DeleteDraft(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(draft)
}

package ports

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/minima-tools/go-minima-gateway/pkg/gateway/internal/app"
)

// AdminCommandHandler runs raw node commands. The route it serves sits
// behind bearer token auth; the handler itself only validates the payload.
type AdminCommandHandler struct {
	service *app.NodeQueryService
}

// NewAdminCommandHandler creates the handler backed by the given provider.
// Panics if the provider is nil.
func NewAdminCommandHandler(provider app.NodeQueryProvider) *AdminCommandHandler {
	if provider == nil {
		panic("node query provider is nil")
	}
	return &AdminCommandHandler{service: app.NewNodeQueryService(provider)}
}

// AdminCommandRequest carries a raw node command line.
type AdminCommandRequest struct {
	Command string `json:"command"`
}

// Command handles POST /admin/command.
func (h *AdminCommandHandler) Command(c *fiber.Ctx) error {
	var req AdminCommandRequest
	if err := c.BodyParser(&req); err != nil {
		return NewRequestBodyParserError(err)
	}
	if strings.TrimSpace(req.Command) == "" {
		return app.NewIncorrectInputError("command must not be empty", "empty-command")
	}

	res, err := h.service.Command(c.UserContext(), req.Command)
	if err != nil {
		return err
	}
	return rawJSON(c, fiber.StatusOK, res)
}

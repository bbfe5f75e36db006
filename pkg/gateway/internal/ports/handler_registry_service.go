package ports

import (
	"github.com/gofiber/fiber/v2"

	"github.com/minima-tools/go-minima-gateway/pkg/gateway/internal/app"
	"github.com/minima-tools/go-minima-gateway/pkg/gateway/internal/ports/middleware"
)

// HandlerRegistryService defines the main point for registering HTTP handler dependencies.
// It acts as a central registry for mapping API endpoints to their handler implementations.
type HandlerRegistryService struct {
	lifecycle *DraftLifecycleHandler
	mutation  *DraftMutationHandler
	pipeline  *DraftPipelineHandler
	transfer  *DraftTransferHandler
	node      *NodeHandler
	admin     *AdminCommandHandler
}

// NewHandlerRegistryService creates and returns a new HandlerRegistryService instance.
// It initializes all handler implementations with their required dependencies.
func NewHandlerRegistryService(drafts app.DraftEngineProvider, node app.NodeQueryProvider) *HandlerRegistryService {
	return &HandlerRegistryService{
		lifecycle: NewDraftLifecycleHandler(drafts),
		mutation:  NewDraftMutationHandler(drafts),
		pipeline:  NewDraftPipelineHandler(drafts),
		transfer:  NewDraftTransferHandler(drafts),
		node:      NewNodeHandler(node),
		admin:     NewAdminCommandHandler(node),
	}
}

// RegisterRoutes mounts all API routes under /api/v1 on the given app.
// Admin routes sit behind the bearer token authorization middleware.
func (h *HandlerRegistryService) RegisterRoutes(app *fiber.App, adminBearerToken string) {
	api := app.Group("/api/v1")

	api.Post("/drafts", h.lifecycle.Open)
	api.Get("/drafts", h.lifecycle.List)
	api.Get("/drafts/:id", h.lifecycle.Get)
	api.Delete("/drafts/:id", h.lifecycle.Delete)

	api.Post("/drafts/import", h.transfer.Import)
	api.Get("/drafts/:id/export", h.transfer.Export)

	api.Post("/drafts/:id/inputs", h.mutation.AddInput)
	api.Post("/drafts/:id/outputs", h.mutation.AddOutput)

	api.Post("/drafts/:id/simulate", h.pipeline.Simulate)
	api.Post("/drafts/:id/sign", h.pipeline.Sign)
	api.Post("/drafts/:id/broadcast", h.pipeline.Broadcast)

	api.Get("/node/status", h.node.Status)
	api.Get("/node/balance", h.node.Balance)
	api.Get("/node/coins", h.node.Coins)
	api.Get("/node/tokens", h.node.Tokens)
	api.Get("/node/address", h.node.Address)
	api.Get("/node/peers", h.node.Peers)
	api.Post("/send", h.node.Send)
	api.Post("/tokens", h.node.CreateToken)

	api.Post("/admin/command",
		middleware.BearerTokenAuthorizationMiddleware(adminBearerToken),
		h.admin.Command,
	)
}

package ports

import (
	"github.com/gofiber/fiber/v2"

	"github.com/minima-tools/go-minima-gateway/pkg/gateway/internal/app"
	"github.com/minima-tools/go-minima-gateway/pkg/node"
)

// NodeHandler exposes read-only node queries and the simple wallet send.
type NodeHandler struct {
	service *app.NodeQueryService
}

// NewNodeHandler creates the handler backed by the given provider.
// Panics if the provider is nil.
func NewNodeHandler(provider app.NodeQueryProvider) *NodeHandler {
	if provider == nil {
		panic("node query provider is nil")
	}
	return &NodeHandler{service: app.NewNodeQueryService(provider)}
}

// AddressResponse wraps the wallet's default receive address.
type AddressResponse struct {
	Address string `json:"address"`
}

// Status handles GET /node/status.
func (h *NodeHandler) Status(c *fiber.Ctx) error {
	res, err := h.service.NodeStatus(c.UserContext())
	if err != nil {
		return err
	}
	return rawJSON(c, fiber.StatusOK, res)
}

// Balance handles GET /node/balance.
func (h *NodeHandler) Balance(c *fiber.Ctx) error {
	q := node.BalanceQuery{
		Address:       c.Query("address"),
		TokenID:       c.Query("tokenid"),
		Confirmations: c.QueryInt("confirmations"),
	}
	res, err := h.service.Balance(c.UserContext(), q)
	if err != nil {
		return err
	}
	return rawJSON(c, fiber.StatusOK, res)
}

// Coins handles GET /node/coins.
func (h *NodeHandler) Coins(c *fiber.Ctx) error {
	q := node.CoinQuery{
		Relevant: c.QueryBool("relevant", true),
		Sendable: c.QueryBool("sendable", true),
		Address:  c.Query("address"),
		TokenID:  c.Query("tokenid"),
	}
	res, err := h.service.Coins(c.UserContext(), q)
	if err != nil {
		return err
	}
	return rawJSON(c, fiber.StatusOK, res)
}

// Tokens handles GET /node/tokens.
func (h *NodeHandler) Tokens(c *fiber.Ctx) error {
	res, err := h.service.Tokens(c.UserContext(), c.Query("tokenid"))
	if err != nil {
		return err
	}
	return rawJSON(c, fiber.StatusOK, res)
}

// Peers handles GET /node/peers.
func (h *NodeHandler) Peers(c *fiber.Ctx) error {
	res, err := h.service.Peers(c.UserContext())
	if err != nil {
		return err
	}
	return rawJSON(c, fiber.StatusOK, res)
}

// Address handles GET /node/address.
func (h *NodeHandler) Address(c *fiber.Ctx) error {
	addr, err := h.service.DefaultAddress(c.UserContext())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(AddressResponse{Address: addr})
}

// Send handles POST /send.
func (h *NodeHandler) Send(c *fiber.Ctx) error {
	var req app.SendRequest
	if err := c.BodyParser(&req); err != nil {
		return NewRequestBodyParserError(err)
	}

	res, err := h.service.Send(c.UserContext(), req)
	if err != nil {
		return err
	}
	return rawJSON(c, fiber.StatusOK, res)
}

// CreateToken handles POST /tokens.
func (h *NodeHandler) CreateToken(c *fiber.Ctx) error {
	var req app.TokenCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return NewRequestBodyParserError(err)
	}

	res, err := h.service.CreateToken(c.UserContext(), req)
	if err != nil {
		return err
	}
	return rawJSON(c, fiber.StatusCreated, res)
}

// rawJSON writes a node payload verbatim, without re-encoding it.
func rawJSON(c *fiber.Ctx, status int, body []byte) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(status).Send(body)
}

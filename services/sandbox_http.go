package services

import (
	"contest-ledger/host"
	"contest-ledger/models"

	"github.com/gofiber/fiber/v2"
)

// SandboxService exposes the sandbox token ledger for local development.
type SandboxService struct {
	Token *host.SandboxToken
}

func NewSandboxService(token *host.SandboxToken) *SandboxService {
	return &SandboxService{Token: token}
}

// MintHandler handles POST /sandbox/mint.
func (s *SandboxService) MintHandler(c *fiber.Ctx) error {
	var req struct {
		Asset  string         `json:"asset"`
		To     models.Address `json:"to"`
		Amount int64          `json:"amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if err := s.Token.Mint(c.UserContext(), req.Asset, req.To, req.Amount); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	bal, err := s.Token.Balance(c.UserContext(), req.Asset, req.To)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"asset": req.Asset, "address": req.To, "balance": bal})
}

// BalanceHandler handles GET /sandbox/balances/:asset/:address.
func (s *SandboxService) BalanceHandler(c *fiber.Ctx) error {
	asset := c.Params("asset")
	addr := models.Address(c.Params("address"))
	bal, err := s.Token.Balance(c.UserContext(), asset, addr)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"asset": asset, "address": addr, "balance": bal})
}

package services

import (
	"contest-ledger/models"

	"github.com/gofiber/fiber/v2"
)

// DonateHandler handles POST /donations.
func (s *DonationService) DonateHandler(c *fiber.Ctx) error {
	var req struct {
		Donor     models.Address `json:"donor"`
		Recipient models.Address `json:"recipient"`
		Amount    int64          `json:"amount"`
		Message   string         `json:"message"`
		Asset     string         `json:"asset"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.Donor.IsZero() || req.Recipient.IsZero() || req.Asset == "" {
		return badRequest(c, "donor, recipient and asset are required")
	}

	count, err := s.Donate(c.UserContext(), req.Donor, req.Recipient, req.Amount, req.Message, req.Asset)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"count": count})
}

// GetDonationCountHandler handles GET /donations/count.
func (s *DonationService) GetDonationCountHandler(c *fiber.Ctx) error {
	count, err := s.GetDonationCount(c.UserContext())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"count": count})
}

// GetRecipientDonationsHandler handles GET /recipients/:address/donations.
// Optional ?offset= and ?limit= page through the recipient's donations.
func (s *DonationService) GetRecipientDonationsHandler(c *fiber.Ctx) error {
	recipient := models.Address(c.Params("address"))
	if recipient.IsZero() {
		return badRequest(c, "recipient address required in URL")
	}
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 0)
	if offset < 0 || limit < 0 {
		return badRequest(c, "offset and limit must be non-negative")
	}

	donations, err := s.ListRecipientDonations(c.UserContext(), recipient, offset, limit)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(donations)
}

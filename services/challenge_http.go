package services

import (
	"contest-ledger/models"

	"github.com/gofiber/fiber/v2"
)

// CreateChallengeHandler handles POST /challenges.
func (s *ChallengeService) CreateChallengeHandler(c *fiber.Ctx) error {
	var req struct {
		Creator     models.Address `json:"creator"`
		Title       string         `json:"title"`
		Description string         `json:"description"`
		PrizePool   int64          `json:"prize_pool"`
		EndDate     uint64         `json:"end_date"`
		Asset       string         `json:"asset"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.Creator.IsZero() || req.Asset == "" {
		return badRequest(c, "creator and asset are required")
	}

	id, err := s.CreateChallenge(c.UserContext(), req.Creator, req.Title, req.Description, req.PrizePool, req.EndDate, req.Asset)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// JoinChallengeHandler handles POST /challenges/:id/join.
func (s *ChallengeService) JoinChallengeHandler(c *fiber.Ctx) error {
	id, ok := paramUint32(c, "id")
	if !ok {
		return badRequest(c, "invalid challenge id")
	}
	var req struct {
		Participant models.Address `json:"participant"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.Participant.IsZero() {
		return badRequest(c, "participant is required")
	}

	if err := s.JoinChallenge(c.UserContext(), id, req.Participant); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetWinnerHandler handles POST /challenges/:id/winner.
func (s *ChallengeService) SetWinnerHandler(c *fiber.Ctx) error {
	id, ok := paramUint32(c, "id")
	if !ok {
		return badRequest(c, "invalid challenge id")
	}
	var req struct {
		Winner models.Address `json:"winner"`
		Asset  string         `json:"asset"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.Winner.IsZero() || req.Asset == "" {
		return badRequest(c, "winner and asset are required")
	}

	if err := s.SetWinner(c.UserContext(), id, req.Winner, req.Asset); err != nil {
		return errorResponse(c, err)
	}
	challenge, err := s.GetChallenge(c.UserContext(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(challenge)
}

// GetChallengeHandler handles GET /challenges/:id.
func (s *ChallengeService) GetChallengeHandler(c *fiber.Ctx) error {
	id, ok := paramUint32(c, "id")
	if !ok {
		return badRequest(c, "invalid challenge id")
	}
	challenge, err := s.GetChallenge(c.UserContext(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(challenge)
}

// GetChallengeCountHandler handles GET /challenges/count.
func (s *ChallengeService) GetChallengeCountHandler(c *fiber.Ctx) error {
	count, err := s.GetChallengeCount(c.UserContext())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"count": count})
}

// ListChallengesHandler handles GET /challenges. ?status=active|finalized|awaiting_winner filters.
func (s *ChallengeService) ListChallengesHandler(c *fiber.Ctx) error {
	var (
		challenges []models.Challenge
		err        error
	)
	status := c.Query("status")
	if status == "awaiting_winner" {
		challenges, err = s.AwaitingWinner(c.UserContext())
	} else {
		challenges, err = s.ListChallenges(c.UserContext())
	}
	if err != nil {
		return errorResponse(c, err)
	}

	filtered := make([]models.Challenge, 0, len(challenges))
	for _, ch := range challenges {
		switch status {
		case "active":
			if !ch.IsActive {
				continue
			}
		case "finalized":
			if !ch.IsFinalized() {
				continue
			}
		case "", "awaiting_winner":
		default:
			return badRequest(c, "status must be one of active, finalized, awaiting_winner")
		}
		filtered = append(filtered, ch)
	}
	return c.JSON(filtered)
}

package handlers

import (
	"contest-ledger/services"

	"github.com/gofiber/fiber/v2"
)

// SetupChallengeRoutes registers the challenge entry points. secured must
// attach the caller account; it guards every state-changing route.
func SetupChallengeRoutes(app fiber.Router, challengeService *services.ChallengeService, secured fiber.Handler) {
	// 🔓 Reads
	app.Get("/challenges", challengeService.ListChallengesHandler)
	app.Get("/challenges/count", challengeService.GetChallengeCountHandler)
	app.Get("/challenges/:id", challengeService.GetChallengeHandler)

	// 🔐 Entry points acting for an account
	app.Post("/challenges", secured, challengeService.CreateChallengeHandler)
	app.Post("/challenges/:id/join", secured, challengeService.JoinChallengeHandler)
	app.Post("/challenges/:id/winner", secured, challengeService.SetWinnerHandler)
}

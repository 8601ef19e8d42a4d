package handlers

import (
	"contest-ledger/services"

	"github.com/gofiber/fiber/v2"
)

// SetupDonationRoutes registers the donation entry points. stream guards the
// SSE feed, which authenticates through query parameters.
func SetupDonationRoutes(app fiber.Router, donationService *services.DonationService, secured, stream fiber.Handler) {
	app.Get("/donations/count", donationService.GetDonationCountHandler)
	app.Get("/recipients/:address/donations", donationService.GetRecipientDonationsHandler)
	app.Get("/recipients/:address/donations/stream", stream, donationService.StreamRecipientDonationsSSE)

	app.Post("/donations", secured, donationService.DonateHandler)
}

package services

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"contest-ledger/host"
	"contest-ledger/models"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// defaultStreamPollInterval is how often the donation stream checks for new donations.
const defaultStreamPollInterval = 2 * time.Second

// StreamRecipientDonationsSSE streams donations to the authenticated recipient
// as they are recorded. Donations already received are skipped.
func (s *DonationService) StreamRecipientDonationsSSE(c *fiber.Ctx) error {
	recipient := models.Address(c.Params("address"))
	caller, ok := host.CallerFromContext(c.UserContext())
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	if caller != recipient {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "can only stream your own donations"})
	}

	// Cursor: number of donations already in the recipient index.
	existing, err := s.ListRecipientDonations(c.UserContext(), recipient, 0, 0)
	if err != nil {
		return errorResponse(c, err)
	}
	cursor := len(existing)

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	log := s.log.WithField("recipient", recipient)
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ticker := time.NewTicker(s.streamPoll)
		defer ticker.Stop()

		// Initial keepalive (comment event)
		w.WriteString(":\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		for range ticker.C {
			fresh, err := s.ListRecipientDonations(context.Background(), recipient, cursor, 0)
			if err != nil {
				log.WithError(err).Warn("[SSE] donation query failed")
				continue
			}
			if len(fresh) == 0 {
				w.WriteString(":\n\n")
			}
			writeDonationEvents(w, fresh, log)
			cursor += len(fresh)

			if err := w.Flush(); err != nil {
				// Client disconnected
				log.Debug("[SSE] client disconnected")
				return
			}
		}
	})

	return nil
}

// writeDonationEvents writes one SSE event per donation. A donation that
// cannot be encoded is logged and skipped.
func writeDonationEvents(w io.Writer, donations []models.Donation, log *logrus.Entry) {
	for _, d := range donations {
		payload, err := json.Marshal(d)
		if err != nil {
			log.WithError(err).WithField("donation_id", d.ID).Warn("[SSE] donation encode failed")
			continue
		}
		fmt.Fprintf(w, "event: donation\ndata: %s\n\n", payload)
	}
}

// middleware/sse_auth.go
package middleware

import (
	"context"
	"strings"

	"contest-ledger/host"
	"contest-ledger/models"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// TokenValidator validates a wallet session token.
type TokenValidator interface {
	ValidateAccount(ctx context.Context, accessToken, deviceID string) (models.Address, error)
}

// SSEAuthMiddleware validates `token` and `device_id` query params, since
// EventSource clients cannot send headers.
//
// Usage:
//
//	app.Get("/recipients/:address/donations/stream", middleware.SSEAuthMiddleware(validator, log), donationService.StreamRecipientDonationsSSE)
func SSEAuthMiddleware(validator TokenValidator, log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := strings.TrimSpace(c.Query("token"))
		deviceID := strings.TrimSpace(c.Query("device_id"))

		if accessToken == "" || deviceID == "" {
			log.WithField("path", c.Path()).Warn("[SSEAuth] ❌ Missing token or device_id")
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Missing token or device_id in query",
			})
		}

		account, err := validator.ValidateAccount(c.UserContext(), accessToken, deviceID)
		if err != nil {
			log.WithError(err).WithField("device_id", deviceID).Warn("[SSEAuth] ❌ Validation failed")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		c.Locals("account", account)
		c.SetUserContext(host.WithCaller(c.UserContext(), account))

		log.WithFields(logrus.Fields{"account": account, "device_id": deviceID}).Debug("[SSEAuth] ✅ Authenticated")
		return c.Next()
	}
}

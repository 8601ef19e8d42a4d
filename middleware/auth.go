// middleware/auth.go
package middleware

import (
	"strings"

	"contest-ledger/host"
	"contest-ledger/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AccountHeader carries the wallet address the Gateway authenticated.
const AccountHeader = "X-Account-Address"

// RequestIDHeader identifies a client request across retries.
const RequestIDHeader = "X-Request-ID"

// AccountContextMiddleware attaches the Gateway-authenticated account to the
// request context, where host.CallerAuthorizer checks it. Requests without
// an account are rejected.
func AccountContextMiddleware(log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		account := models.Address(strings.TrimSpace(c.Get(AccountHeader)))
		if account.IsZero() {
			log.WithField("path", c.Path()).Warn("❌ [ACCOUNT_CTX] account header missing on secured route")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing " + AccountHeader + ": request must come through gateway with auth context",
			})
		}

		requestID := strings.TrimSpace(c.Get(RequestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Locals("account", account)
		ctx := host.WithCaller(c.UserContext(), account)
		c.SetUserContext(host.WithRequestID(ctx, requestID))

		log.WithFields(logrus.Fields{"account": account, "path": c.Path()}).Debug("👤 [ACCOUNT_CTX]")
		return c.Next()
	}
}

package services

import (
	"strconv"

	"contest-ledger/host"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps an entry point error to an HTTP status.
func statusFor(c *fiber.Ctx, err error) int {
	switch Classify(err) {
	case KindAuth:
		if _, ok := host.CallerFromContext(c.UserContext()); ok {
			return fiber.StatusForbidden
		}
		return fiber.StatusUnauthorized
	case KindNotFound:
		return fiber.StatusNotFound
	case KindInvalidState:
		return fiber.StatusConflict
	case KindTransfer:
		return fiber.StatusPaymentRequired
	default:
		return fiber.StatusInternalServerError
	}
}

func errorResponse(c *fiber.Ctx, err error) error {
	status := statusFor(c, err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "internal error"
	}
	return c.Status(status).JSON(fiber.Map{"error": msg, "kind": Classify(err)})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// paramUint32 parses a positive-or-zero uint32 route parameter.
func paramUint32(c *fiber.Ctx, name string) (uint32, bool) {
	n, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

package handlers

import (
	"contest-ledger/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupMetricsRoute exposes the service collectors.
func SetupMetricsRoute(app fiber.Router) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(services.Registry, promhttp.HandlerOpts{})))
}

// SetupSandboxRoutes registers the sandbox token endpoints. Only mounted when
// the service runs on the in-memory host.
func SetupSandboxRoutes(app fiber.Router, sandboxService *services.SandboxService) {
	app.Post("/sandbox/mint", sandboxService.MintHandler)
	app.Get("/sandbox/balances/:asset/:address", sandboxService.BalanceHandler)
}

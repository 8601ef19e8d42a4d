package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"contest-ledger/config"
	"contest-ledger/handlers"
	"contest-ledger/host"
	"contest-ledger/middleware"
	"contest-ledger/models"
	"contest-ledger/services"
	"contest-ledger/store"
	"contest-ledger/utils"
	"contest-ledger/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.WithField("level", cfg.LogLevel).Warn("⚠️  unknown LOG_LEVEL, using info")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := host.Env{
		Auth:  host.CallerAuthorizer{},
		Clock: host.NewLedgerClock(nil),
	}

	var sandbox *services.SandboxService
	if cfg.Sandbox() {
		memStore := store.NewMemoryStore()
		token := host.NewSandboxToken(memStore)
		env.Store = memStore
		env.Token = token
		env.Contract = models.Address(cfg.ContractAccount)
		sandbox = services.NewSandboxService(token)
		log.Warn("⚠️  Running on the in-memory sandbox ledger, state is lost on exit")
	} else {
		db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
		if err != nil {
			log.WithError(err).Fatal("failed to connect to database")
		}
		gormStore := store.NewGormStore(db)
		if err := gormStore.AutoMigrate(); err != nil {
			log.WithError(err).Fatal("failed to migrate ledger entries")
		}
		if err := db.AutoMigrate(&models.WalletMirror{}); err != nil {
			log.WithError(err).Fatal("failed to migrate wallet mirror")
		}

		env.Store = gormStore
		env.Token = services.NewTransferClient(cfg.TransferServiceURL, cfg.GatewayToken, utils.HTTPClient, workers.WalletDirectory{DB: db}, log)
		env.Contract = models.Address(cfg.ContractAccount)
		if env.Contract.IsZero() {
			treasury, err := workers.GetTreasuryWallet(ctx, db)
			if err != nil {
				log.WithError(err).Fatal("CONTRACT_ACCOUNT not set and no treasury wallet mirrored")
			}
			env.Contract = treasury.Address
		}

		if cfg.SyncServiceURL != "" {
			walletSyncClient := workers.NewWalletSyncClient(db, cfg.SyncServiceURL, cfg.GatewayToken, log)
			go workers.PollWallets(ctx, walletSyncClient, cfg.WalletPollInterval)
		} else {
			log.Warn("⚠️  SYNC_SERVICE_URL not set, wallet mirror will not be refreshed")
		}
	}

	challengeService := services.NewChallengeService(env, log)
	donationService := services.NewDonationService(env, log)

	if cfg.R2.Enabled() {
		archiver, err := utils.NewR2Archiver(ctx, cfg.R2)
		if err != nil {
			log.WithError(err).Fatal("failed to initialize R2 client")
		}
		challengeService.WithArchiver(archiver, cfg.AssetDecimals)
		donationService.WithArchiver(archiver, cfg.AssetDecimals)
	}

	if err := challengeService.Initialize(ctx); err != nil {
		log.WithError(err).Fatal("failed to initialize challenge ledger")
	}
	if err := donationService.Initialize(ctx); err != nil {
		log.WithError(err).Fatal("failed to initialize donation ledger")
	}

	sched, err := challengeService.StartSweepScheduler(cfg.SweepInterval)
	if err != nil {
		log.WithError(err).Fatal("failed to start sweep scheduler")
	}
	defer sched.Shutdown()

	app := fiber.New()

	// 🔐❗ GLOBAL: Only Gateway requests allowed, no exceptions
	app.Use(middleware.GatewayAuthMiddleware(cfg.GatewayToken, log))

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods:     "GET,POST,OPTIONS,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, " + middleware.RequestIDHeader + ", " + middleware.AccountHeader,
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	secured := middleware.AccountContextMiddleware(log)

	var stream fiber.Handler
	if cfg.AuthServiceURL != "" {
		stream = middleware.SSEAuthMiddleware(services.NewAuthServiceClient(cfg.AuthServiceURL, cfg.GatewayToken), log)
	} else {
		stream = func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "donation stream not configured"})
		}
	}

	handlers.SetupChallengeRoutes(app, challengeService, secured)
	handlers.SetupDonationRoutes(app, donationService, secured, stream)
	handlers.SetupMetricsRoute(app)
	if sandbox != nil {
		handlers.SetupSandboxRoutes(app, sandbox)
	}

	go func() {
		if err := app.Listen(cfg.ListenAddr); err != nil {
			log.WithError(err).Error("Server error")
		}
	}()

	log.WithField("addr", cfg.ListenAddr).Info("✅ Server running")
	log.WithField("contract", env.Contract).Info("✅ Escrow account configured")
	log.WithField("interval", cfg.SweepInterval).Info("✅ Challenge sweep running")
	log.WithField("origins", cfg.AllowedOrigins).Info("✅ CORS configured")

	<-ctx.Done()
	log.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.WithError(err).Warn("server shutdown")
	}
}

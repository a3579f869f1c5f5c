package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"catalog-sync/core/loader"
	"catalog-sync/core/logger"
	"catalog-sync/core/middleware/auth"
	"catalog-sync/core/middleware/rayid"
	"catalog-sync/feature/catalog"
	"catalog-sync/feature/history"
	"catalog-sync/feature/trigger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "catalog-sync/docs/swagger"
)

// @title Catalog Sync API
// @version 1.0
// @description Status API for the supplier to storefront catalog sync.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the status API server",
	Long:  `Starts the HTTP server exposing run history and the on-demand sync trigger.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Configuration, logger, history and archive
		a, err := newApp(cmd.Context())
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}
		logg := a.logger
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 2. Features
		triggerFeature := trigger.NewFeature(a.runConfigured, logg)

		mgr := loader.NewManager(logg)
		mgr.Register(history.NewFeature(a.history, logg))
		mgr.Register(triggerFeature)
		mgr.Register(a.integrity())

		// 3. Middleware: ray id first so every log line carries it
		app.Use(rayid.New())
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Swagger stays public
		app.Get("/swagger/*", swagger.HandlerDefault)
		app.Use(auth.New(auth.Config{
			ApiKey: a.cfg.Server.ApiKey,
			Skip:   func(c *fiber.Ctx) bool { return strings.HasPrefix(c.Path(), "/swagger") },
		}))

		// 4. Routes
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		go func() {
			logg.Info("Starting server", zap.String("address", a.cfg.Server.Address()), zap.Strings("features", mgr.Loaded()))
			if err := app.Listen(a.cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 5. Graceful shutdown: stop accepting requests, then let a running sync wind down
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()

		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := triggerFeature.Service().Shutdown(ctx); err != nil {
			logg.Warn("Sync run did not stop in time", zap.Error(err))
		}
	},
}

// runConfigured runs a live sync over the configured categories.
func (a *app) runConfigured(ctx context.Context) (*catalog.RunSummary, error) {
	if err := a.cfg.ValidateForSync(); err != nil {
		return nil, err
	}

	source, err := a.source("")
	if err != nil {
		return nil, err
	}
	defer source.Close()

	orch, err := a.orchestrator(source, a.cfg.Sync, false)
	if err != nil {
		return nil, err
	}

	summary, err := orch.Run(ctx, a.cfg.Source.Categories)
	if err != nil && !errors.Is(err, catalog.ErrLoginFailed) {
		return nil, err
	}
	if summary != nil {
		printRunSummary(a.logger, summary)
	}
	return summary, err
}

func init() {
	RootCmd.AddCommand(startCmd)
}

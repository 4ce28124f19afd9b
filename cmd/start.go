package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"mod-builder/core/config"
	"mod-builder/core/loader"
	"mod-builder/core/logger"
	"mod-builder/core/middleware/auth"
	"mod-builder/core/middleware/rayid"
	"mod-builder/feature/generation"
	"mod-builder/feature/history"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "mod-builder/docs/swagger"
)

// @title Mod Builder API
// @version 1.0
// @description API for building and installing cosmetic mod packages.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the mod builder server",
	Long:  `Starts the HTTP server, accepting generation jobs and serving their status.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Wire storage, history and the pipeline
		comps, err := bootstrap(cfg, logg)
		if err != nil {
			logg.Fatal("Failed to initialize components", zap.Error(err))
		}
		svc := generation.NewService(comps.pipeline, comps.flags, comps.recorder(), logg.Named("jobs"))

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		// 4. Register Features
		mgr := loader.NewManager(logg)
		mgr.Register(generation.NewFeature(svc, logg))
		mgr.Register(history.NewFeature(comps.history, logg))

		// RayID first so every later log line carries it
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

		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 5. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 6. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(cfg.Server.Addr()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 7. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout()); err != nil {
			logg.Warn("Server shutdown incomplete", zap.Error(err))
		}
		// Running jobs are cancelled; any already installing finish first.
		svc.Close()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}

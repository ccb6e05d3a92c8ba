package cmd

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"equipment-manager/core/auth"
	"equipment-manager/core/loader"
	"equipment-manager/core/logger"
	authmw "equipment-manager/core/middleware/auth"
	"equipment-manager/core/middleware/rayid"
	"equipment-manager/feature/assets"
	"equipment-manager/feature/integrity"
	"equipment-manager/feature/session"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "equipment-manager/docs/swagger"
)

// @title Equipment Manager API
// @version 1.0
// @description API for managing laboratory equipment and general assets.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the equipment manager server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := loadRuntime(true)
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		defer rt.close()
		logg := rt.logger
		zap.ReplaceGlobals(logg)

		secret := rt.cfg.Server.TokenSecret
		if !rt.cfg.Server.HasTokenSecret() {
			// Tokens issued with a generated secret do not survive a restart.
			secret = strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
			logg.Warn("SERVER_TOKEN_SECRET is not set, using a random secret")
		}
		issuer := auth.NewIssuer(secret, rt.cfg.Server.TokenTTL)

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			BodyLimit:             rt.cfg.Server.BodyLimit(),
		})

		mgr := loader.NewManager(logg)
		mgr.Register(session.NewFeature(rt.coord, issuer, logg))
		mgr.Register(assets.NewFeature(rt.coord, rt.client, rt.cfg.Storage, rt.recorder, logg))
		mgr.Register(integrity.NewFeature(rt.store, rt.coord, rt.client, rt.cfg.Storage, rt.db, logg))

		// RayID first so every log line carries it.
		app.Use(rayid.New())

		app.Use(logger.Middleware(logg))

		app.Get("/swagger/*", swagger.HandlerDefault)

		// Routes decide for themselves whether a login or the admin role is needed.
		app.Use(authmw.New(authmw.Config{Issuer: issuer, Optional: true}))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		go func() {
			logg.Info("Starting server",
				zap.String("port", rt.cfg.Server.Port),
				zap.String("store", rt.store.Path()))
			if err := app.Listen(":" + rt.cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}

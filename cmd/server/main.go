package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/benbeisheim/dama-backend/internal/advice"
	"github.com/benbeisheim/dama-backend/internal/config"
	"github.com/benbeisheim/dama-backend/internal/controller"
	"github.com/benbeisheim/dama-backend/internal/logging"
	"github.com/benbeisheim/dama-backend/internal/middleware"
	"github.com/benbeisheim/dama-backend/internal/profile"
	"github.com/benbeisheim/dama-backend/internal/service"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		bootLog := logging.New("info", false)
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logging.New(cfg.LogLevel, cfg.LogPretty)

	app := fiber.New(fiber.Config{
		AppName:               "dama-backend",
		DisableStartupMessage: true,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, X-Player-ID",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: true,
	}))
	app.Use(middleware.RequestLogger(log))

	// Initialize services
	gameManager := service.NewGameManager(cfg.ClockTime, cfg.MatchmakingInterval, log)
	profiles := profile.NewStore()
	advisor := advice.NewClient(cfg.Advice, log)
	gameService := service.NewGameService(gameManager, profiles, advisor, cfg, log)

	// Initialize controllers
	gameController := controller.NewGameController(gameService, log)
	profileController := controller.NewProfileController(profiles)
	wsController := controller.NewWebSocketController(gameService, log)

	controller.SetupRoutes(app, gameController, profileController, wsController, splitOrigins(cfg.AllowedOrigins))

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		sig := <-quit
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("addr", cfg.Addr).Int("ai_depth", cfg.AIDepth).Msg("listening")
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}

	gameManager.Close()
	gameService.Wait()
	log.Info().Msg("bye")
}

func splitOrigins(v string) []string {
	var out []string
	for _, o := range strings.Split(v, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-backend/api"
	"github.com/rpupo63/portfolio-backend/config"
	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rpupo63/portfolio-backend/services"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	setupLogging(cfg)
	log.Info().Msg("Initializing app...")

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}

	// If generating models, run generation and exit
	if config.GetBool(cfg, "GENERATE_MODELS", false) {
		log.Info().Msg("Generating models and query helpers...")
		if err := models.GenerateModels(db); err != nil {
			log.Fatal().Err(err).Msg("Error generating models")
		}
		return
	}

	// If generating column mismatch report, run report and exit
	if config.GetBool(cfg, "GENERATE_COLUMN_REPORT", false) {
		log.Info().Msg("Generating column mismatch report...")
		if _, err := models.GenerateColumnMismatchReport(db, os.Stdout); err != nil {
			log.Fatal().Err(err).Msg("Error generating column report")
		}
		return
	}

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Error migrating database")
	}
	currentDB := database.New(db)

	svc, err := buildServices(ctx, cfg, currentDB)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing services")
	}

	if _, err := svc.Auth.EnsureOwner(ctx, services.OwnerBootstrap{
		Username: config.GetString(cfg, "OWNER_USERNAME", "admin"),
		Email:    config.GetString(cfg, "OWNER_EMAIL", "admin@example.com"),
		FullName: config.GetString(cfg, "OWNER_FULL_NAME", ""),
		Password: config.GetString(cfg, "OWNER_PASSWORD", ""),
	}); err != nil {
		log.Fatal().Err(err).Msg("Error creating owner account")
	}

	errChannel := make(chan error)
	defer close(errChannel)

	server, err := api.NewServer(cfg, svc)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

// buildServices wires the services from configuration.
func buildServices(ctx context.Context, cfg map[string]string, db database.Database) (api.Services, error) {
	secret := config.GetString(cfg, "SESSION_SECRET", "")
	if secret == "" {
		return api.Services{}, fmt.Errorf("SESSION_SECRET must be set")
	}
	ttl := time.Duration(config.GetInt(cfg, "SESSION_TTL_HOURS", 24*7)) * time.Hour

	storage, err := services.NewStorageFromConfig(ctx, cfg)
	if err != nil {
		return api.Services{}, err
	}
	baseURL := services.GetBaseURL(cfg)

	var notifier services.Notifier
	if n := services.NewNotifierFromConfig(cfg); n != nil {
		notifier = n
	} else {
		log.Info().Msg("No notification channel configured, comment notifications disabled")
	}

	github := services.NewGitHubClient(
		config.GetString(cfg, "GITHUB_API_URL", "https://api.github.com"),
		config.GetString(cfg, "GITHUB_TOKEN", ""),
		config.GetSeconds(cfg, "GITHUB_TIMEOUT_SECONDS", 10*time.Second),
	)

	return api.Services{
		DB:          db,
		Auth:        services.NewAuthService(db, services.NewSessionTokens(secret, ttl), storage),
		Content:     services.NewContentService(db, storage, baseURL),
		Interaction: services.NewInteractionService(db, notifier, baseURL),
		About:       services.NewAboutService(db),
		Dashboard:   services.NewDashboardService(db),
		GitHub:      services.NewGitHubSyncService(db, github),
	}, nil
}

// setupLogging applies LOG_LEVEL and LOG_FORMAT to the global logger.
func setupLogging(cfg map[string]string) {
	level, err := zerolog.ParseLevel(strings.ToLower(config.GetString(cfg, "LOG_LEVEL", "info")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if config.GetString(cfg, "LOG_FORMAT", "console") == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}

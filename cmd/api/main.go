package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rubrica/rubrica-api/internal/config"
	"github.com/rubrica/rubrica-api/internal/database"
	"github.com/rubrica/rubrica-api/internal/handler"
	"github.com/rubrica/rubrica-api/internal/idgen"
	"github.com/rubrica/rubrica-api/internal/middleware"
	"github.com/rubrica/rubrica-api/internal/repository"
	"github.com/rubrica/rubrica-api/internal/roster"
	"github.com/rubrica/rubrica-api/internal/router"
	"github.com/rubrica/rubrica-api/internal/service"
	"github.com/rubrica/rubrica-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	validate := validator.New(validator.WithRequiredStructEnabled())
	ids := idgen.UUID{}

	var drafter ai.RubricDrafter
	var grader ai.AutoGrader
	if cfg.AIEnabled() {
		aiClient, err := ai.NewOpenAIClient(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.AIModel,
			Logger: logger,
		})
		if err != nil {
			log.Fatalf("failed to create ai client: %v", err)
		}
		drafter = aiClient
		grader = aiClient
	} else {
		logger.Warn().Msg("no ai credentials configured, drafting and auto-grading disabled")
	}

	rubricRepo := repository.NewRubricRepository(db)
	assigneeRepo := repository.NewAssigneeRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)

	summaryService := service.NewSummaryService(rubricRepo, assigneeRepo, assessmentRepo, redisClient, cfg.SummaryCacheTTL, logger)
	rubricService := service.NewRubricService(rubricRepo, assessmentRepo, drafter, ids, validate, summaryService, cfg.PassingPercentage, logger)
	rosterService := service.NewRosterService(assigneeRepo, assessmentRepo, roster.NewParser(ids), validate, summaryService, logger)
	gradingService := service.NewGradingService(rubricRepo, assigneeRepo, assessmentRepo, grader, ids, validate, summaryService, logger)
	exportService := service.NewExportService(rubricRepo, assigneeRepo, assessmentRepo, summaryService, logger)

	rubricHandler := handler.NewRubricHandler(rubricService, logger)
	rosterHandler := handler.NewRosterHandler(rosterService, logger)
	gradingHandler := handler.NewGradingHandler(gradingService, logger)
	summaryHandler := handler.NewSummaryHandler(summaryService, logger)
	exportHandler := handler.NewExportHandler(exportService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		RubricHandler:  rubricHandler,
		RosterHandler:  rosterHandler,
		GradingHandler: gradingHandler,
		SummaryHandler: summaryHandler,
		ExportHandler:  exportHandler,
		JWTMiddleware:  middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}

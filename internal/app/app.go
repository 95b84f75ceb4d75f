package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/templui/coachflow/internal/config"
	"github.com/templui/coachflow/internal/db"
	"github.com/templui/coachflow/internal/markdown"
	"github.com/templui/coachflow/internal/repository"
	"github.com/templui/coachflow/internal/service"
	"github.com/templui/coachflow/internal/storage"
)

type App struct {
	Cfg                 *config.Config
	DB                  *sqlx.DB
	AuthService         *service.AuthService
	AchievementService  *service.AchievementService
	WorkflowService     *service.WorkflowService
	CardService         *service.CardService
	NotificationService *service.NotificationService
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(ctx, cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(ctx, database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Repositories
	clientRepository := repository.NewClientRepository(database)
	activityRepository := repository.NewActivityRepository(database)
	achievementRepository := repository.NewAchievementRepository(database)
	progressRepository := repository.NewProgressRepository(database)
	awardRepository := repository.NewAwardRepository(database)
	workflowRepository := repository.NewWorkflowRepository(database)
	historyRepository := repository.NewHistoryRepository(database)
	messageRepository := repository.NewMessageRepository(database)
	cardRepository := repository.NewCardRepository(database)
	assessmentRepository := repository.NewAssessmentRepository(database)

	// Card archive (optional)
	archive, err := storage.New(ctx, cfg)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Services
	notificationService := service.NewNotificationService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	authService := service.NewAuthService(cfg.JWTSecret, cfg.JWTExpiry)
	achievementService := service.NewAchievementService(
		achievementRepository,
		progressRepository,
		awardRepository,
		clientRepository,
		activityRepository,
		cfg.Location,
	)
	workflowService := service.NewWorkflowService(
		workflowRepository,
		historyRepository,
		clientRepository,
		messageRepository,
		notificationService,
		cfg.Location,
	)
	cardService := service.NewCardService(
		cardRepository,
		clientRepository,
		messageRepository,
		workflowRepository,
		assessmentRepository,
		markdown.NewRenderer(),
		notificationService,
		archive,
		cfg.Location,
	)

	return &App{
		Cfg:                 cfg,
		DB:                  database,
		AuthService:         authService,
		AchievementService:  achievementService,
		WorkflowService:     workflowService,
		CardService:         cardService,
		NotificationService: notificationService,
	}, nil
}

func (a *App) Close() error {
	return db.Close(a.DB)
}

package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/nimbusdrive/nimbus/internal/ai"
	"github.com/nimbusdrive/nimbus/internal/config"
	"github.com/nimbusdrive/nimbus/internal/db"
	"github.com/nimbusdrive/nimbus/internal/markdown"
	"github.com/nimbusdrive/nimbus/internal/repository"
	"github.com/nimbusdrive/nimbus/internal/service"
	"github.com/nimbusdrive/nimbus/internal/storage"
	"github.com/nimbusdrive/nimbus/internal/vfs"
)

type App struct {
	Cfg          *config.Config
	DB           *sqlx.DB
	AuthService  *service.AuthService
	UserService  *service.UserService
	EmailService *service.EmailService
	Manager      *vfs.Manager
	Renderer     *markdown.Renderer
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	fileRepository := repository.NewFileRepository(database)
	folderRepository := repository.NewFolderRepository(database)

	// Storage
	blobStore, err := storage.NewS3Store(storage.S3Config{
		Region:         cfg.S3Region,
		Bucket:         cfg.S3Bucket,
		AccessKey:      cfg.S3AccessKey,
		SecretKey:      cfg.S3SecretKey,
		Endpoint:       cfg.S3Endpoint,
		DownloadExpiry: cfg.S3DownloadExpiry,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	// AI
	var analyzer ai.Service
	if cfg.GeminiAPIKey != "" {
		analyzer, err = ai.NewGemini(context.Background(), cfg.GeminiAPIKey, cfg.GeminiTextModel, cfg.GeminiImageModel)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize gemini: %v", err)
		}
	} else {
		slog.Warn("GEMINI_API_KEY not set, file analysis and chat disabled")
		analyzer = ai.Disabled{}
	}

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppName,
		cfg.AppURL,
		cfg.IsDevelopment(),
	)
	authService := service.NewAuthService(
		userRepository,
		emailService,
		cfg.JWTSecret,
		cfg.IsProduction(),
		cfg.JWTExpiry,
	)
	userService := service.NewUserService(userRepository)

	manager := vfs.NewManager(fileRepository, folderRepository, blobStore, analyzer)

	return &App{
		Cfg:          cfg,
		DB:           database,
		AuthService:  authService,
		UserService:  userService,
		EmailService: emailService,
		Manager:      manager,
		Renderer:     markdown.NewRenderer(),
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

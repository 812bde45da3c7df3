package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vocabtrainer/internal/config"
	"vocabtrainer/internal/handler"
	"vocabtrainer/internal/middleware"
	"vocabtrainer/internal/repository"
	"vocabtrainer/internal/repository/memory"
	"vocabtrainer/internal/repository/postgres"
	"vocabtrainer/internal/service"
	"vocabtrainer/internal/session"
	"vocabtrainer/internal/trainer"

	"github.com/golang-migrate/migrate/v4"
	postgresdb "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
	telemw "gopkg.in/telebot.v3/middleware"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting vocabulary trainer bot")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Configuration loaded successfully",
		zap.String("storage", cfg.Storage),
		zap.String("session_store", cfg.SessionStore),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize repositories
	userRepo, wordRepo, closeStorage, err := openStorage(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer closeStorage()

	// Initialize services
	words := service.NewWordStore(userRepo, wordRepo)
	selection := service.NewSelectionEngine(wordRepo, nil)
	progress := service.NewProgressTracker(words)
	statsService := service.NewStatsService(wordRepo, logger)

	if err := words.SeedMainWords(ctx); err != nil {
		logger.Fatal("Failed to seed main words", zap.Error(err))
	}

	sessions, closeSessions, err := openSessions(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open session store", zap.Error(err))
	}
	defer closeSessions()

	// Initialize Telegram bot
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: cfg.PollTimeout},
		OnError: func(err error, c tele.Context) {
			fields := []zap.Field{zap.Error(err)}
			if c != nil && c.Sender() != nil {
				fields = append(fields, zap.Int64("user_id", c.Sender().ID))
			}
			logger.Error("Bot error", fields...)
		},
	})
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}
	bot.Use(telemw.Recover(), middleware.Logging(logger))

	logger.Info("Telegram bot initialized")

	// Initialize trainer and handler
	presenter := handler.NewPresenter(bot)
	machine := trainer.NewMachine(words, selection, progress, statsService, sessions, presenter, logger)

	h := handler.NewHandler(bot, machine, logger)
	h.RegisterHandlers()

	logger.Info("Handlers registered")

	// Start cleanup job in background
	go runCleanupJob(ctx, statsService, cfg.CleanupInterval, logger)

	// Start bot in background
	go func() {
		logger.Info("Bot started successfully")
		bot.Start()
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	logger.Info("Shutdown signal received, stopping bot...")

	// Graceful shutdown
	bot.Stop()
	cancel()

	logger.Info("Bot stopped gracefully")
}

// openStorage builds the configured repositories and returns a close func
func openStorage(cfg *config.Config, logger *zap.Logger) (repository.UserRepository, repository.WordRepository, func(), error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn("Using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return store, store, func() {}, nil
	}

	// Connect to database with retries
	db, err := connectDatabase(cfg.DSN(), logger)
	if err != nil {
		return nil, nil, nil, err
	}

	logger.Info("Database connection established")

	// Run migrations
	if err := runMigrations(db, cfg.MigrationsPath, logger); err != nil {
		db.Close()
		return nil, nil, nil, err
	}

	logger.Info("Database migrations completed")

	return postgres.NewUserRepo(db), postgres.NewWordRepo(db), func() { db.Close() }, nil
}

// openSessions builds the configured session store and returns a close func
func openSessions(ctx context.Context, cfg *config.Config) (trainer.SessionStore, func(), error) {
	if cfg.SessionStore != config.SessionRedis {
		return session.NewMemoryStore(), func() {}, nil
	}

	rdb, err := session.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		return nil, nil, err
	}
	return session.NewRedisStore(rdb, cfg.SessionTTL), func() { rdb.Close() }, nil
}

// connectDatabase connects to PostgreSQL with retries
func connectDatabase(dsn string, logger *zap.Logger) (*sql.DB, error) {
	var db *sql.DB
	var err error

	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			logger.Warn("Failed to open database connection",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			time.Sleep(retryDelay)
			continue
		}

		// Test connection
		if err = db.Ping(); err != nil {
			logger.Warn("Failed to ping database",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			db.Close()
			time.Sleep(retryDelay)
			continue
		}

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB, sourceURL string, logger *zap.Logger) error {
	driver, err := postgresdb.WithInstance(db, &postgresdb.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("No new migrations to apply")
	case err != nil:
		return fmt.Errorf("failed to run migrations: %w", err)
	default:
		logger.Info("Migrations applied successfully")
	}

	return nil
}

// runCleanupJob periodically removes words nobody references
func runCleanupJob(ctx context.Context, statsService *service.StatsService, interval time.Duration, logger *zap.Logger) {
	// Run cleanup once at startup
	if err := statsService.CleanupOrphanWords(ctx); err != nil {
		logger.Error("Failed to run initial cleanup", zap.Error(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Cleanup job stopped")
			return
		case <-ticker.C:
			logger.Info("Running scheduled cleanup")
			if err := statsService.CleanupOrphanWords(ctx); err != nil {
				logger.Error("Failed to run scheduled cleanup", zap.Error(err))
			}
		}
	}
}

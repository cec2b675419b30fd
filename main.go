package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/smolenkov/unarch-bot/internal/config"
	"github.com/smolenkov/unarch-bot/internal/gate"
	"github.com/smolenkov/unarch-bot/internal/handlers"
	"github.com/smolenkov/unarch-bot/internal/membership"
	"github.com/smolenkov/unarch-bot/internal/middleware"
	"github.com/smolenkov/unarch-bot/internal/unpack"
	"github.com/smolenkov/unarch-bot/store"
)

func main() {
	cfg, err := config.Load("config.env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.LogFile != "" {
		logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			log.Printf("Failed to open log file %s: %v", cfg.LogFile, err)
		} else {
			defer logFile.Close()
			log.SetOutput(io.MultiWriter(os.Stderr, logFile))
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rdb, err := store.NewRedisClient(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB, "unarch_bot")
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	taskStore := store.NewRedisTaskStore(rdb, cfg.TaskTTL)

	pgStore, err := store.NewPostgresStore(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer pgStore.Close()

	if err := os.MkdirAll(cfg.DownloadDir, 0o755); err != nil {
		log.Fatalf("Failed to create download dir %s: %v", cfg.DownloadDir, err)
	}

	httpClient := &http.Client{
		Timeout: 10 * time.Minute,
	}
	pollTimeout := 50 * time.Second

	b, err := bot.New(
		cfg.BotToken,
		bot.WithHTTPClient(pollTimeout, httpClient),
	)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	memberChecker := membership.NewChecker(b)

	accessGate := gate.New(
		gate.Config{
			MaxConcurrentTasks: cfg.MaxConcurrentTasks,
			CooldownWindow:     cfg.FreeUserCooldown,
			AuthChannelID:      cfg.AuthChannelID,
		},
		pgStore,
		pgStore,
		taskStore,
		memberChecker,
		pgStore,
	)

	runner := unpack.NewRunner(taskStore, b, unpack.Config{
		Workers:        cfg.UnpackWorkers,
		DownloadDir:    cfg.DownloadDir,
		ExtractTimeout: cfg.ExtractTimeout,
		MergeTimeout:   cfg.MergeTimeout,
	})

	h := handlers.NewHandlers(pgStore, pgStore, taskStore, pgStore, accessGate, runner, cfg)

	runner.Start()
	defer runner.Stop()

	middlewares := middleware.NewMiddlewares(pgStore)

	handlerChain := middlewares.RegisterUserMiddleware(
		middlewares.AnalyzeMessageMiddleware(
			h.MainHandler,
		),
	)

	b.RegisterHandlerMatchFunc(func(update *models.Update) bool {
		return update.Message != nil
	}, handlerChain)

	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, handlerChain)

	log.Println("Bot started. Press Ctrl+C to stop.")
	b.Start(ctx)
}

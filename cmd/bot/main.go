// Package main contains the entrypoint for the moderation bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/modbot/internal/bot"
	"github.com/edgard/modbot/internal/bot/handlers"
	"github.com/edgard/modbot/internal/bot/tasks"
	"github.com/edgard/modbot/internal/config"
	"github.com/edgard/modbot/internal/database"
	"github.com/edgard/modbot/internal/directory"
	"github.com/edgard/modbot/internal/logger"
	"github.com/edgard/modbot/internal/moderation"
	"github.com/edgard/modbot/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all application components, handles graceful
// shutdown, and returns an exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)
	registry := directory.New(store, log, nil, directory.DefaultCacheSize, directory.DefaultCacheTTL)

	botOpts := []tgbot.Option{
		// Identity is fetched once below.
		tgbot.WithSkipGetMe(),
		tgbot.WithMiddlewares(
			logger.Recover(log),
			logger.Middleware(log),
			handlers.ObserveUsers(registry, log),
		),
		tgbot.WithHTTPClient(cfg.Telegram.PollTimeout, &http.Client{Timeout: cfg.Telegram.PollTimeout + 10*time.Second}),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)
	botID := cfg.Telegram.BotInfo.ID

	dir := telegram.NewDirectory(tg, registry, log)
	greeter := telegram.NewGreeter(tg)
	limiter := moderation.NewRateLimiter(nil, moderation.CommandCooldown)
	guard := moderation.NewPermissionGuard(dir, botID, log)
	resolver := moderation.NewTargetResolver(dir, log)
	audit := moderation.NewAuditLog(log, nil, cfg.Moderation.AuditCapacity)

	suppressor, err := moderation.NewDuplicateSuppressor(log, nil, moderation.DedupWindow)
	if err != nil {
		log.Error("Failed to create duplicate suppressor", "error", err)
		return 1
	}

	hDeps := handlers.HandlerDeps{
		Logger: log,
		Config: cfg,
		Engine: moderation.NewEngine(moderation.EngineDeps{
			Logger:   log,
			Limiter:  limiter,
			Guard:    guard,
			Resolver: resolver,
			Executor: telegram.NewExecutor(tg, log),
			Audit:    audit,
		}),
		Limiter:   limiter,
		Guard:     guard,
		Resolver:  resolver,
		Audit:     audit,
		Notifier:  moderation.NewMembershipNotifier(log, suppressor, greeter, botID, moderation.BatchDelay),
		Directory: dir,
		Greeter:   greeter,
		Users:     registry,
		Counter:   store,
	}
	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		_ = suppressor.Close()
		return 1
	}

	tDeps := tasks.TaskDeps{
		Logger:  log,
		Config:  cfg,
		Limiter: limiter,
		Users:   registry,
	}
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		_ = suppressor.Close()
		return 1
	}
	app := bot.NewBot(log, tg, sched, cfg.Metrics.Listen, suppressor)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	return 0
}

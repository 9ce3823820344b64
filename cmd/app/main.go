package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"support-duty-bot/internal/application"
	"support-duty-bot/internal/config"
	"support-duty-bot/internal/domain/ports/adapter"
	tele "support-duty-bot/internal/infra/adapters/telegram"
	pg "support-duty-bot/internal/infra/db/postgres"
	"support-duty-bot/internal/infra/logging"
	"support-duty-bot/internal/infra/metrics"
	red "support-duty-bot/internal/infra/redis"
	"support-duty-bot/internal/infra/sched"
	"support-duty-bot/internal/infra/web"
	"support-duty-bot/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	envFile := flag.String("env", ".env", "path to .env file (optional)")
	migrationsDir := flag.String("migrations", "migrations", "path to migration scripts")
	devMode := flag.Bool("dev", false, "developer mode (console logs, noop telegram)")
	flag.Parse()

	cfg, err := config.LoadConfig(*envFile, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 15)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, *migrationsDir); err != nil {
		logger.Fatal().Err(err).Msg("migrations")
	}

	// ---- Redis (optional: enables rate limiting) ----
	var redisClient *red.Client
	var rateLimiter *red.RateLimiter
	if cfg.Redis.URL != "" {
		redisClient, err = red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		rateLimiter = red.NewRateLimiter(redisClient)
	} else {
		logger.Warn().Msg("REDIS_URL not set; rate limiting disabled")
	}

	// ---- Repositories ----
	employeeRepo := pg.NewPostgresEmployeeRepo(pool)
	dutyRepo := pg.NewPostgresDutyRepo(pool)
	tm := pg.NewTxManager(pool)

	// ---- Use cases ----
	employeeUC := usecase.NewEmployeeUseCase(employeeRepo, dutyRepo, tm, cfg.Bot.AdminIDs, logger)
	dutyUC := usecase.NewDutyUseCase(dutyRepo, employeeRepo, tm, logger)

	// Allowlist is the configuration source; persisted is_admin is what
	// authorization reads. Reconcile them once per startup.
	if err := employeeUC.SyncAdmins(ctx); err != nil {
		logger.Fatal().Err(err).Msg("sync admins")
	}

	// ---- Facade ----
	facade := application.NewBotFacade(employeeUC, dutyUC, cfg.Bot.AdminIDs, cfg.Scheduler.Location, logger)

	// ---- Telegram ----
	var bot adapter.TelegramBotAdapter
	if cfg.Runtime.Dev {
		bot = tele.NewNoopBotAdapter()
	} else {
		bot, err = tele.NewRealTelegramBotAdapter(&cfg.Bot, facade, rateLimiter, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram")
		}
	}
	go func() {
		if err := bot.StartPolling(ctx); err != nil && err != context.Canceled {
			logger.Error().Err(err).Msg("telegram polling stopped")
		}
	}()

	// ---- Daily reminder worker ----
	reminderUC := usecase.NewReminderUseCase(dutyRepo, employeeRepo, tm, bot, logger)
	worker := sched.NewReminderWorker(cfg.Scheduler.ReminderHour, cfg.Scheduler.ReminderMinute, cfg.Scheduler.Location, reminderUC, logger)
	go func() { _ = worker.Run(ctx) }()

	// ---- Ops server (healthz, metrics) ----
	ops := web.NewServer(cfg.Ops.Port, pool, redisClient, logger)
	go func() {
		if err := ops.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("ops server")
		}
	}()

	logger.Info().Msg("support duty bot is running")

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	bot.StopPolling()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := ops.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("ops shutdown")
	}
}

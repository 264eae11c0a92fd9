package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/tabdeel/pulse/internal/activity"
	"github.com/tabdeel/pulse/internal/app"
	"github.com/tabdeel/pulse/internal/auth"
	"github.com/tabdeel/pulse/internal/observability"
	"github.com/tabdeel/pulse/internal/platform/cache"
	"github.com/tabdeel/pulse/internal/platform/db"
	"github.com/tabdeel/pulse/internal/session"
	"github.com/tabdeel/pulse/internal/shared"
	"github.com/tabdeel/pulse/internal/users"
	"github.com/tabdeel/pulse/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("pulse exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	redisClient, err := cache.New(ctx, cache.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	var pool *pgxpool.Pool
	var auditSink activity.Sink
	if cfg.PGDSN != "" {
		pool, err = db.New(ctx, db.Options{
			DSN:             cfg.PGDSN,
			MaxConns:        cfg.PGMaxConns,
			ApplicationName: "tabdeel-pulse",
		})
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := app.EnsureSchema(ctx, pool, cfg.RoleStoreKey); err != nil {
			return err
		}
		auditSink = activity.NewPGSink(pool)
	}

	roleStore, err := app.RoleStore(cfg, redisClient, pool)
	if err != nil {
		return err
	}
	seedHash, err := users.HashPassword(cfg.SeedPassword, 0)
	if err != nil {
		return err
	}
	workspace := app.NewWorkspace(ctx, app.WorkspaceConfig{
		RoleStore:    roleStore,
		AuditSink:    auditSink,
		PasswordHash: seedHash,
		Logger:       logger,
	})

	metrics := observability.NewMetrics()
	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	queue := jobs.NewClient(redisOpts, cfg.PublicURL)
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("asynq client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer inspector.Close()

	sessionManager := shared.NewSessionManager(redisClient, "pulse_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	identities := session.NewManager(workspace.Directory, logger, metrics)
	authService := auth.NewService(workspace.Directory, auth.NewRedisTokenStore(redisClient, cfg.ResetTokenTTL), queue, logger, 0)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Workspace:      workspace,
		SessionManager: sessionManager,
		CSRFManager:    shared.NewCSRFManager(cfg.CSRFSecret),
		Identities:     identities,
		AuthService:    authService,
		QueueInspector: inspector,
		Metrics:        metrics,
		Idempotency:    app.IdempotencyStore(redisClient, pool),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if cfg.WorkerEnabled {
		worker, err := newWorker(cfg, logger, redisOpts, workspace, metrics)
		if err != nil {
			return err
		}
		g.Go(func() error {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	return g.Wait()
}

func newWorker(cfg *app.Config, logger *slog.Logger, redisOpts asynq.RedisClientOpt, ws *app.Workspace, metrics *observability.Metrics) (*jobs.Worker, error) {
	reminders, err := jobs.PaymentReminderCron(cfg.ReminderCron, cfg.ReminderLeadDays)
	if err != nil {
		return nil, err
	}
	return jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts,
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeSendEmail, Handler: jobs.NewSendEmailHandler(jobs.LogMailer{Logger: logger}, cfg.SMTPFrom)},
			{Type: jobs.TaskTypePaymentReminders, Handler: jobs.NewPaymentReminderHandler(ws.Finance, logger, time.Now)},
		},
		Cron:     []jobs.CronRegistration{reminders},
		Outcomes: metrics,
	})
}

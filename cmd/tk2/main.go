package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/text/language"

	"github.com/timmiekettle/tk2/cmd/tk2/cli"
	"github.com/timmiekettle/tk2/internal/accounting/accounts"
	"github.com/timmiekettle/tk2/internal/accounting/adspend"
	"github.com/timmiekettle/tk2/internal/accounting/agentpayments"
	"github.com/timmiekettle/tk2/internal/accounting/fx"
	"github.com/timmiekettle/tk2/internal/accounting/journals"
	"github.com/timmiekettle/tk2/internal/app"
	"github.com/timmiekettle/tk2/internal/auth"
	"github.com/timmiekettle/tk2/internal/dashboard"
	"github.com/timmiekettle/tk2/internal/inventory"
	"github.com/timmiekettle/tk2/internal/observability"
	"github.com/timmiekettle/tk2/internal/platform/cache"
	"github.com/timmiekettle/tk2/internal/platform/db"
	"github.com/timmiekettle/tk2/internal/rbac"
	"github.com/timmiekettle/tk2/internal/sales/customers"
	"github.com/timmiekettle/tk2/internal/sales/invoices"
	"github.com/timmiekettle/tk2/internal/sales/servicesheets"
	"github.com/timmiekettle/tk2/internal/shared"
	"github.com/timmiekettle/tk2/internal/users"
	"github.com/timmiekettle/tk2/internal/view"
	"github.com/timmiekettle/tk2/jobs"
	"github.com/timmiekettle/tk2/report"
)

const usage = `usage:
  tk2                          run the HTTP server
  tk2 fx rate -currency USD [-date YYYY-MM-DD] [-json]
  tk2 fx import -source rates.csv [-mode dry|apply] [-json]
  tk2 passwd -user EMAIL        (password on stdin)
  tk2 jobs trigger -job NAME | tk2 jobs stats`

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	args := os.Args[1:]
	if len(args) == 0 || args[0] == "serve" {
		if err := serve(ctx, cfg, logger); err != nil {
			logger.Error("server", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}
	os.Exit(runCommand(ctx, cfg, args))
}

func runCommand(ctx context.Context, cfg *app.Config, args []string) int {
	switch args[0] {
	case "fx":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, usage)
			return 2
		}
		pool, err := db.New(ctx, cfg.PGDSN, cfg.PoolOptions()...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "connect postgres: %v\n", err)
			return 1
		}
		defer pool.Close()
		fxCLI, err := cli.NewFXOpsCLI(fx.NewRepository(pool), cfg.BaseCurrency)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fs := flag.NewFlagSet("fx "+args[1], flag.ContinueOnError)
		jsonOut := fs.Bool("json", false, "Print JSON")
		switch args[1] {
		case "rate":
			currency := fs.String("currency", "", "Required: currency code")
			date := fs.String("date", "", "Rate date (YYYY-MM-DD, default today)")
			if err := fs.Parse(args[2:]); err != nil {
				return 2
			}
			return fxCLI.RateCommand(ctx, cli.FXRateOptions{Currency: *currency, Date: *date, JSONOutput: *jsonOut})
		case "import":
			source := fs.String("source", "", "Required: CSV file, or - for stdin")
			mode := fs.String("mode", "dry", "dry or apply")
			if err := fs.Parse(args[2:]); err != nil {
				return 2
			}
			return fxCLI.ImportCommand(ctx, cli.FXImportOptions{Source: *source, Mode: cli.FXImportMode(*mode), JSONOutput: *jsonOut})
		}
	case "passwd":
		fs := flag.NewFlagSet("passwd", flag.ContinueOnError)
		user := fs.String("user", "", "Required: login email")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		pool, err := db.New(ctx, cfg.PGDSN, cfg.PoolOptions()...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "connect postgres: %v\n", err)
			return 1
		}
		defer pool.Close()
		return cli.PasswdCommand(ctx, auth.NewRepository(pool), cli.PasswdOptions{User: *user})
	case "jobs":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, usage)
			return 2
		}
		jobsCLI := cli.NewJobsCLI(cfg.AsynqRedis())
		defer func() { _ = jobsCLI.Close() }()
		switch args[1] {
		case "trigger":
			fs := flag.NewFlagSet("jobs trigger", flag.ContinueOnError)
			name := fs.String("job", "", "Required: "+jobs.TaskDashboardInvalidate+" or "+jobs.TaskIdempotencyCleanup)
			if err := fs.Parse(args[2:]); err != nil {
				return 2
			}
			info, err := jobsCLI.Trigger(ctx, *name, cfg.IdempotencyRetention)
			if err != nil {
				fmt.Fprintf(os.Stderr, "jobs trigger: %v\n", err)
				return 1
			}
			fmt.Printf("enqueued %s as %s\n", info.Type, info.ID)
			return 0
		case "stats":
			stats, err := jobsCLI.InspectQueue()
			if err != nil {
				fmt.Fprintf(os.Stderr, "jobs stats: %v\n", err)
				return 1
			}
			fmt.Printf("queue=%s pending=%d active=%d scheduled=%d retry=%d\n",
				stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
			return 0
		}
	}
	fmt.Fprintln(os.Stderr, usage)
	return 2
}

func serve(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	dbpool, err := db.New(ctx, cfg.PGDSN, cfg.PoolOptions()...)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer dbpool.Close()

	redisClient := cfg.RedisOptions().Client()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	redisOpts := cfg.AsynqRedis()
	jobClient := jobs.NewClient(redisOpts, logger)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("asynq client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(dbpool)
	idempotencyStore := shared.NewIdempotencyStore(dbpool)
	locker := shared.NewDocumentLocker(redisClient, cfg.DocumentLockTTL)
	notifier := metrics.Notifier(jobClient)

	templates, err := view.NewEngine(language.BritishEnglish)
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	pdf := report.NewClient(cfg.GotenbergURL)
	authService := auth.NewService(auth.NewRepository(dbpool), cfg.JWTSecret, cfg.JWTTTL)
	modules, dashboardHandler := buildModules(dbpool, redisClient, cfg, logger, moduleDeps{
		audit:     auditLogger,
		notifier:  notifier,
		locker:    locker,
		templates: templates,
		pdf:       pdf,
	})

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		Metrics:          metrics,
		RBACMiddleware:   rbac.Middleware{Logger: logger},
		Idempotency:      idempotencyStore,
		AuthService:      authService,
		AuthHandler:      auth.NewHandler(logger, authService, sessionManager, csrfManager),
		Modules:          modules,
		DashboardHandler: dashboardHandler,
		ReportHandler:    report.NewHandler(pdf, logger),
		JobHandler:       jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

type moduleDeps struct {
	audit     shared.AuditRecorder
	notifier  shared.SubmitNotifier
	locker    *shared.DocumentLocker
	templates *view.Engine
	pdf       *report.Client
}

func buildModules(pool *pgxpool.Pool, rdb redis.UniversalClient, cfg *app.Config, logger *slog.Logger, deps moduleDeps) ([]app.RPCModule, *dashboard.Handler) {
	loc := cfg.Location()

	invoiceService := invoices.NewService(invoices.NewRepository(pool), deps.audit, deps.notifier)
	journalService := journals.NewService(journals.NewRepository(pool), deps.audit, deps.notifier)

	customerService := customers.NewService(customers.NewRepository(pool), deps.audit)
	sheetService := servicesheets.NewService(servicesheets.NewRepository(pool), invoiceService, deps.locker, servicesheets.Defaults{
		Company:          cfg.DefaultCompany,
		ComboItemCode:    cfg.ComboItemCode,
		DefaultWarehouse: cfg.DefaultWarehouse,
		Location:         loc,
	}, logger)
	adSpendService := adspend.NewService(adspend.NewRepository(pool), journalService, deps.locker, adspend.Accounts{
		Company:     cfg.DefaultCompany,
		Advertising: cfg.AdvertisingAccount,
	})
	agentPaymentService := agentpayments.NewService(accounts.NewRepository(pool), journalService, invoiceService, deps.locker, agentpayments.Config{
		CommissionAccount:      cfg.CommissionAccount,
		DeliveryChargesAccount: cfg.DeliveryChargesAccount,
		Location:               loc,
	})
	dashboardService := dashboard.NewService(dashboard.NewRepository(pool),
		cache.NewVersioned(rdb, "dashboard", cfg.DashboardCacheTTL), loc)
	inventoryService := inventory.NewService(inventory.NewRepository(pool), invoiceService)
	userService := users.NewService(users.NewRepository(pool), deps.audit, users.Profiles{
		Active:   cfg.CSRoleProfile,
		Inactive: cfg.InactiveRoleProfile,
	})
	fxLookup := fx.NewLookup(cfg.BaseCurrency, fx.NewRepository(pool))

	dashboardHandler := dashboard.NewHandler(logger, dashboardService)
	return []app.RPCModule{
		customers.NewHandler(logger, customerService),
		servicesheets.NewHandler(logger, sheetService),
		adspend.NewHandler(logger, adSpendService),
		agentpayments.NewHandler(logger, agentPaymentService),
		fx.NewHandler(logger, fxLookup),
		dashboardHandler,
		inventory.NewHandler(logger, inventoryService, deps.templates, deps.pdf),
		users.NewHandler(logger, userService),
	}, dashboardHandler
}

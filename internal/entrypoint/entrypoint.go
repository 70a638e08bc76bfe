package entrypoint

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/classlib/internal/analytics"
	"github.com/mrlokans/classlib/internal/audit"
	"github.com/mrlokans/classlib/internal/auth"
	"github.com/mrlokans/classlib/internal/config"
	"github.com/mrlokans/classlib/internal/database"
	auditdb "github.com/mrlokans/classlib/internal/database/audit"
	"github.com/mrlokans/classlib/internal/database/borrows"
	http_controllers "github.com/mrlokans/classlib/internal/http"
	"github.com/mrlokans/classlib/internal/library"
	"github.com/mrlokans/classlib/internal/readonly"
	"github.com/mrlokans/classlib/internal/scheduler"
	"github.com/mrlokans/classlib/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// OpenDatabase opens and migrates the library database and seeds it when
// configured to.
func OpenDatabase(cfg *config.Config) (*database.Database, error) {
	db, err := database.NewDatabase(cfg.Database.Path, cfg.Database.LogLevel)
	if err != nil {
		return nil, err
	}
	if cfg.Library.SeedOnStart {
		if _, err := db.Seed(cfg.Auth.BcryptCost); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to seed database: %w", err)
		}
	}
	return db, nil
}

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// SIGKILL cannot be caught
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}
	log.Printf("Shutdown Server, waiting %v before killing", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before the server so no new tasks start
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Println("Server exiting")
	return nil
}

func Run(cfg *config.Config, version string) error {
	log.Printf("Starting Class Library v%s", version)

	db, err := OpenDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	auditService := audit.NewService(auditdb.NewRepository(db.DB))
	defer auditService.Wait()

	libraryService := library.NewService(db.DB, cfg.Library, auditService)

	authService := auth.NewService(db.DB, cfg.Auth)
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get SQL DB for sessions: %w", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize session manager: %w", err)
	}
	authMiddleware := auth.NewMiddleware(authService, sessionManager)
	loginLimiter := auth.NewLoginLimiter(cfg.Auth)
	defer loginLimiter.Stop()

	secret, err := csrfSecret(cfg.Auth.SessionSecret)
	if err != nil {
		return err
	}

	routerCfg := http_controllers.RouterConfig{
		Database:       db,
		Library:        libraryService,
		Audit:          auditService,
		AuthService:    authService,
		SessionManager: sessionManager,
		AuthMiddleware: authMiddleware,
		LoginLimiter:   loginLimiter,
		CSRFSecret:     secret,
		SecureCookies:  cfg.Auth.SecureCookies,
		TemplatesPath:  cfg.UI.TemplatesPath,
		StaticPath:     cfg.UI.StaticPath,
		Analytics:      analytics.FromConfig(cfg.Analytics),
		Version:        version,
	}
	if cfg.Library.ReadOnly {
		log.Printf("Read-only mode enabled - borrowing and returning are paused")
		routerCfg.ReadOnly = readonly.NewMiddleware(true, cfg.Library.ReadOnlyMessage)
	}

	// Task queue and cron schedules
	var (
		taskClient    *tasks.Client
		cronScheduler *scheduler.Scheduler
		taskCtxCancel context.CancelFunc = func() {}
	)
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.ConfigFrom(cfg.Tasks, cfg.Audit))
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.RegisterLibraryQueues(borrows.NewRepository(db.DB), auditService, auditService)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		taskClient.Start(taskCtx)

		cronScheduler = scheduler.New(taskClient,
			scheduler.Job{Task: tasks.QueueOverdueScan, Schedule: cfg.Library.OverdueSchedule},
			scheduler.Job{Task: tasks.QueueCleanupAuditEvents, Schedule: cfg.Audit.Schedule},
		)
		if err := cronScheduler.Start(taskCtx); err != nil {
			taskCtxCancel()
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		routerCfg.TaskRunner = taskClient
	} else {
		log.Printf("Task queue disabled, overdue scans and audit cleanup will not run")
	}

	router := http_controllers.NewRouter(routerCfg)

	return Serve(router, cfg, shutdownBackground(cronScheduler, taskClient, taskCtxCancel, loginLimiter))
}

// shutdownBackground stops the goroutines Run started. Nil parts are skipped.
func shutdownBackground(cron *scheduler.Scheduler, client *tasks.Client, cancel context.CancelFunc, limiter *auth.LoginLimiter) ShutdownFunc {
	return func(ctx context.Context) {
		if cron != nil {
			cron.Stop()
		}
		if client != nil {
			client.Stop(ctx)
		}
		if cancel != nil {
			cancel()
		}
		if limiter != nil {
			limiter.Stop()
		}
	}
}

// csrfSecret decodes the configured secret, or generates one for this run.
func csrfSecret(configured string) ([]byte, error) {
	if configured != "" {
		if secret, err := hex.DecodeString(configured); err == nil {
			return secret, nil
		}
		// Not hex, use as raw bytes
		return []byte(configured), nil
	}

	secret, err := auth.GenerateSessionSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSRF secret: %w", err)
	}
	log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	return hex.DecodeString(secret)
}

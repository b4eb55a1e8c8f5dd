package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"shopadmin.org/internal/audit"
	"shopadmin.org/internal/auth"
	"shopadmin.org/internal/cache"
	"shopadmin.org/internal/config"
	"shopadmin.org/internal/employee"
	"shopadmin.org/internal/httpapi"
	"shopadmin.org/internal/obs"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

// Demo account for the in-memory store (DATABASE_URL unset).
const (
	demoEmail    = "demo@shop.test"
	demoPassword = "backoffice-demo"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("backoffice exited with error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := obs.NewLogger(cfg.LogLevel, cfg.Development())
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	obs.SetLogger(logger)

	obs.Init()
	obs.SetBuildInfo(version, commit)

	logger.Info("loaded config",
		zap.String("env", cfg.Env),
		zap.String("http_addr", cfg.HTTPAddr),
		zap.String("cache_backend", cfg.CacheBackend),
		zap.Bool("database", cfg.DatabaseURL != ""),
		zap.String("admin_base_path", cfg.AdminBasePath),
	)

	ctx := context.Background()
	links := employee.NewLinker(cfg.AdminBasePath)

	// ----- Employee lookup -----
	var (
		db     *sql.DB
		lookup employee.Lookup
	)
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
		lookup = employee.NewPGStore(db, links)
	} else {
		if !cfg.Development() {
			return errors.New("DATABASE_URL is required outside dev")
		}
		store, err := demoEmployees(links)
		if err != nil {
			return err
		}
		lookup = store
		logger.Warn("using in-memory employee store", zap.String("demo_email", demoEmail))
	}

	// ----- Cache -----
	var (
		redisClient *redis.Client
		pinger      httpapi.Pinger
	)
	if cfg.CacheBackend == "redis" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("redis connection failed", zap.Error(err))
			return err
		}
		logger.Info("redis connection established", zap.String("addr", cfg.RedisAddr))
	}
	store := cache.New(cache.Config{
		Backend: cfg.CacheBackend,
		TTL:     cfg.CacheTTL,
		Prefix:  cfg.CachePrefix,
		Size:    cfg.CacheSize,
	}, redisClient)
	if p, ok := store.(httpapi.Pinger); ok {
		pinger = p
	}

	// ----- Security -----
	provider := auth.NewEmployeeProvider(cache.NewLogging(store), lookup, auth.WithPrincipalTTL(cfg.CacheTTL))
	sessions, err := auth.NewCookieSessions(cfg.SessionSecret,
		auth.WithSessionTTL(cfg.SessionTTL),
		auth.WithRememberTTL(cfg.RememberTTL),
		auth.WithSecureCookie(cfg.SecureCookie),
		auth.WithCookiePath(links.BasePath),
	)
	if err != nil {
		return err
	}
	routes := httpapi.NewStaticRouter(cfg.AdminBasePath)
	authenticator := auth.NewLoginFormAuthenticator(provider, lookup, sessions, routes,
		auth.WithOutcomeHook(audit.LoginOutcome))

	api := httpapi.New(httpapi.Deps{
		Authenticator:     authenticator,
		Provider:          provider,
		Sessions:          sessions,
		Routes:            routes,
		Ready:             httpapi.ReadyProbe{DB: db, Cache: pinger},
		Logger:            logger,
		Version:           version,
		LoginRatePerSec:   cfg.LoginRatePerSec,
		LoginRateBurst:    cfg.LoginRateBurst,
		TrustProxyHeaders: cfg.TrustProxy,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting backoffice", zap.String("version", version), zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-stop:
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("stopped")
	return nil
}

func demoEmployees(links employee.Linker) (*employee.InMemory, error) {
	hash, err := auth.HashPassword(demoPassword)
	if err != nil {
		return nil, err
	}
	store := employee.NewInMemory(links)
	store.Add(employee.Record{
		ID:           1,
		Email:        demoEmail,
		PasswordHash: hash,
		Active:       true,
		DefaultTab:   "AdminDashboard",
		Roles:        []string{"ROLE_MOD_TAB_ADMINORDERS_READ"},
	})
	return store, nil
}

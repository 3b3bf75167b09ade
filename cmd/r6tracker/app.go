package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nkiryanov/r6tracker/internal/cache"
	"github.com/nkiryanov/r6tracker/internal/cache/memory"
	"github.com/nkiryanov/r6tracker/internal/cache/redis"
	"github.com/nkiryanov/r6tracker/internal/db"
	"github.com/nkiryanov/r6tracker/internal/handlers"
	"github.com/nkiryanov/r6tracker/internal/logger"
	"github.com/nkiryanov/r6tracker/internal/metrics"
	"github.com/nkiryanov/r6tracker/internal/repository/postgres"
	"github.com/nkiryanov/r6tracker/internal/service/auth"
	"github.com/nkiryanov/r6tracker/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/r6tracker/internal/service/ubi"
	"github.com/nkiryanov/r6tracker/internal/service/user"
)

const redisKeyPrefix = "r6tracker"

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	logger logger.Logger

	// Release db pool, cache connections
	closers []func()
}

func NewServerApp(ctx context.Context, c *Config) (_ *ServerApp, err error) {
	app := &ServerApp{ListenAddr: c.ListenAddr}
	defer func() {
		if err != nil {
			app.Close()
		}
	}()

	// Initialize logger
	l, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}
	app.logger = l

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}
	app.closers = append(app.closers, pool.Close)

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Metrics of this app and go runtime
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		return nil, fmt.Errorf("error while registering metrics. Err: %w", err)
	}

	// Upstream session: the app does not start without valid credential
	client := ubi.NewClient(ubi.ClientConfig{
		BaseURL: c.UbiBaseURL,
		AppID:   c.UbiAppID,
		Timeout: c.UbiTimeout,
		Logger:  l.With("component", "ubi_client"),
		Metrics: m,
	})
	session, err := ubi.NewSessionManager(ubi.SessionConfig{
		Account:      ubi.Account{Email: c.UbiEmail, Password: c.UbiPassword},
		AuthPrefix:   c.UbiAuthPrefix,
		RefreshAhead: c.UbiRefreshAhead,
		Logger:       l.With("component", "ubi_session"),
		Metrics:      m,
	}, storage.Credential(), client)
	if err != nil {
		return nil, fmt.Errorf("error while creating session manager. Err: %w", err)
	}
	credential, err := session.EnsureSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("error while establishing upstream session. Err: %w", err)
	}
	l.Info("Upstream session established", "expires_at", credential.ExpiresAt)

	profileCache, err := app.newCache(ctx, c)
	if err != nil {
		return nil, err
	}

	gateway, err := ubi.NewStatsGateway(ubi.GatewayConfig{
		Sandboxes: ubi.Sandboxes{
			PC:   c.UbiSandboxPCURL,
			Xbox: c.UbiSandboxXboxURL,
			PSN:  c.UbiSandboxPSNURL,
		},
		Cache:    profileCache,
		CacheTTL: c.CacheTTL,
		Logger:   l.With("component", "ubi_gateway"),
		Metrics:  m,
	}, client, session)
	if err != nil {
		return nil, fmt.Errorf("error while creating stats gateway. Err: %w", err)
	}

	// Initialize end user services
	tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: c.SecretKey})
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}
	userService := user.NewService(user.DefaultHasher, storage.User())
	authService, err := auth.NewService(auth.Config{}, tokenManager, userService)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	app.Handler = handlers.NewRouter(authService, userService, gateway, session, m, l)
	return app, nil
}

// Redis if configured, in memory cache otherwise
func (app *ServerApp) newCache(ctx context.Context, c *Config) (cache.Cache, error) {
	if c.RedisAddr == "" {
		return memory.New(c.CacheTTL), nil
	}

	rc := redis.New(c.RedisAddr, 0, redisKeyPrefix)
	app.closers = append(app.closers, func() { _ = rc.Close() })
	if err := rc.Ping(ctx); err != nil {
		return nil, err
	}
	return rc, nil
}

func (app *ServerApp) Close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		app.closers[i]()
	}
	app.closers = nil
}

// Run starts http server and closes gracefully on context cancellation
func (app *ServerApp) Run(ctx context.Context) error {
	defer app.Close()

	httpServer := &http.Server{
		Addr:              app.ListenAddr,
		Handler:           app.Handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			app.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		app.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	app.logger.Info("Starting server", "address", app.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}

package handlers

import (
	"net/http"

	"github.com/nkiryanov/r6tracker/internal/handlers/middleware"
	"github.com/nkiryanov/r6tracker/internal/logger"
	"github.com/nkiryanov/r6tracker/internal/metrics"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	userService userService,
	gateway statsGateway,
	session sessionInfo,
	m *metrics.Metrics,
	logger logger.Logger,
) http.Handler {
	withAuth := middleware.AuthMiddleware(authService)
	authHandler := NewAuth(authService, logger)

	root := http.NewServeMux()
	root.Handle("GET /{$}", handlePing())

	root.HandleFunc("POST /api/user/register", authHandler.register)
	root.HandleFunc("POST /api/user/login", authHandler.login)
	root.Handle("GET /api/user/me", withAuth(handleUserMe()))
	root.Handle("PATCH /api/user/me", withAuth(handleUpdateProfile(userService, logger)))

	root.Handle("GET /api/ubi/profile", handleFindProfile(gateway, logger))
	root.Handle("GET /api/ubi/stats", handleRankStats(gateway, logger))
	root.Handle("GET /api/ubi/populations", handlePopulationsStatistics(gateway, logger))
	root.Handle("GET /api/ubi/progression", handleProgression(gateway, logger))
	root.Handle("GET /api/ubi/session", handleSession(session))

	if m != nil {
		root.Handle("GET /metrics", m.Handler())
	}

	return chain(root,
		middleware.LoggerMiddleware(logger),
		middleware.MetricsMiddleware(m),
	)
}

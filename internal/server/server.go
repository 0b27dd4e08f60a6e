// Package server assembles the LOSTLIBRARY HTTP backend: routes, middleware
// chain and background maintenance.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iudanet/lostlibrary/internal/config"
	"github.com/iudanet/lostlibrary/internal/server/handlers"
	"github.com/iudanet/lostlibrary/internal/server/jwt"
	"github.com/iudanet/lostlibrary/internal/server/middleware"
	"github.com/iudanet/lostlibrary/internal/server/storage"
)

// TokenCleanupInterval задает период удаления просроченных refresh token
const TokenCleanupInterval = time.Hour

// Store объединяет все хранилища, нужные серверу
type Store interface {
	storage.UserStorage
	storage.TokenStorage
	storage.ProfileStorage
	storage.ArticleStorage
	storage.LikeStorage
	handlers.Pinger
}

// Server is the HTTP backend
type Server struct {
	cfg     config.Server
	store   Store
	logger  *slog.Logger
	limiter *middleware.RateLimiter
	handler http.Handler
}

// New собирает маршруты и middleware. Stop освобождает rate limiter.
func New(cfg config.Server, store Store, logger *slog.Logger, version string) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:     cfg,
		store:   store,
		logger:  logger,
		limiter: middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window, logger),
	}

	tokens := jwt.NewService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	requireAuth := middleware.AuthMiddleware(logger, tokens)
	optionalAuth := middleware.OptionalAuthMiddleware(logger, tokens)

	auth := handlers.NewAuthHandler(logger, store, store, tokens)
	profiles := handlers.NewProfileHandler(logger, store)
	articles := handlers.NewArticleHandler(logger, store, store, store)
	health := handlers.NewHealthHandler(logger, store, version)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/health", health.Health)

	// Публичные auth endpoints ограничены по частоте
	mux.Handle("POST /api/v1/auth/signup", s.limiter.Middleware(http.HandlerFunc(auth.SignUp)))
	mux.Handle("POST /api/v1/auth/token", s.limiter.Middleware(http.HandlerFunc(auth.Token)))
	mux.Handle("POST /api/v1/auth/refresh", s.limiter.Middleware(http.HandlerFunc(auth.Refresh)))
	mux.Handle("POST /api/v1/auth/logout", requireAuth(http.HandlerFunc(auth.Logout)))
	mux.Handle("GET /api/v1/auth/user", requireAuth(http.HandlerFunc(auth.User)))

	mux.HandleFunc("GET /api/v1/profiles/{id}", profiles.Get)
	mux.Handle("PUT /api/v1/profiles/me", requireAuth(http.HandlerFunc(profiles.UpdateMe)))

	mux.HandleFunc("GET /api/v1/articles", articles.List)
	mux.HandleFunc("GET /api/v1/articles/{slug}", articles.Get)
	mux.Handle("POST /api/v1/articles", requireAuth(http.HandlerFunc(articles.Create)))
	mux.Handle("GET /api/v1/articles/{id}/like", optionalAuth(http.HandlerFunc(articles.LikeStatus)))
	mux.Handle("POST /api/v1/articles/{id}/like", requireAuth(http.HandlerFunc(articles.Like)))
	mux.Handle("DELETE /api/v1/articles/{id}/like", requireAuth(http.HandlerFunc(articles.Unlike)))

	// Порядок: request id -> логирование -> recovery -> маршруты
	s.handler = middleware.RequestIDMiddleware(
		middleware.LoggingMiddleware(logger, "/api/v1/health")(
			middleware.RecoveryMiddleware(logger)(mux),
		),
	)

	return s
}

// Handler returns the root handler with the full middleware chain
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Stop освобождает фоновые ресурсы middleware
func (s *Server) Stop() {
	s.limiter.Stop()
}

// Run слушает cfg.Addr до отмены ctx, затем корректно завершает соединения
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server listening", slog.String("addr", s.cfg.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.cleanupTokens(gctx, TokenCleanupInterval)
		return nil
	})

	return g.Wait()
}

// cleanupTokens периодически удаляет просроченные refresh token
func (s *Server) cleanupTokens(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.store.DeleteExpiredTokens(ctx)
			if err != nil {
				s.logger.Warn("failed to delete expired tokens", slog.Any("error", err))
				continue
			}
			if n > 0 {
				s.logger.Info("expired tokens deleted", slog.Int("count", n))
			}
		}
	}
}

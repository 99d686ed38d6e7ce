// Package server wires the application together: store clients,
// services, handlers, routes, the session sweep scheduler, and
// graceful shutdown.
//
// This is the composition root. Every store client (sqlite pool, S3
// client, redis client) is constructed exactly once here and owned by
// the Server for its whole lifetime — there are no lazy singletons, so
// there is nothing to guard against concurrent first use.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-co-op/gocron"

	"github.com/tazwar/feedpost/internal/auth"
	"github.com/tazwar/feedpost/internal/handler"
	"github.com/tazwar/feedpost/internal/middleware"
	"github.com/tazwar/feedpost/internal/repository/blob"
	"github.com/tazwar/feedpost/internal/repository/cache"
	sqliteRepo "github.com/tazwar/feedpost/internal/repository/sqlite"
	"github.com/tazwar/feedpost/internal/service"
)

// requestTimeout bounds every request end to end; store clients
// inherit it through the request context.
const requestTimeout = 15 * time.Second

// sweepInterval is how often the expired-session sweep runs.
const sweepInterval = 1 * time.Hour

// Config holds everything the server needs to start. main.go fills it
// from the environment; missing store settings fail in New, not on the
// first request.
type Config struct {
	Port   int
	DBPath string
	Blob   blob.Config
	Cache  cache.Config
}

// Server owns the HTTP router, the store clients, and the sweep
// scheduler. Close order on shutdown: HTTP drain, scheduler, cache,
// database.
type Server struct {
	router    *chi.Mux
	config    Config
	logger    *slog.Logger
	db        *sqliteRepo.DB
	topics    *cache.TopicCache
	sessions  *service.SessionService
	scheduler *gocron.Scheduler
}

// New constructs all clients, services, and routes. On any failure the
// already-opened clients are closed before returning.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	posts, err := blob.New(ctx, cfg.Blob)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating blob store: %w", err)
	}

	topics, err := cache.New(ctx, cfg.Cache)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting topic cache: %w", err)
	}

	// Service layer. The sqlite DB implements the user, session, and
	// subscription repositories; blob and cache implement the rest.
	sessionService := service.NewSessionService(db, logger)
	authService := service.NewAuthService(db, sessionService, auth.NewPasswordService(), logger)
	postService := service.NewPostService(posts, logger)
	subscriptionService := service.NewSubscriptionService(db, topics, sessionService, logger)

	s := &Server{
		router:    chi.NewRouter(),
		config:    cfg,
		logger:    logger,
		db:        db,
		topics:    topics,
		sessions:  sessionService,
		scheduler: gocron.NewScheduler(time.UTC),
	}

	s.setupRoutes(authService, postService, subscriptionService)

	if err := s.setupSweep(); err != nil {
		topics.Close()
		db.Close()
		return nil, fmt.Errorf("scheduling session sweep: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and the route table.
//
// POST   /auth/register           register
// POST   /auth/login              login, issues session
// POST   /auth/logout             revoke session
// POST   /posts/create            create post
// GET    /posts                   list posts
// POST   /posts/id/{id}           get one post (POST-for-read, legacy shape)
// POST   /posts/comment/{id}      append comment
// DELETE /posts/delete/{id}       delete post
// POST   /subscription/create     session-gated topic subscribe
// POST   /subscription/delete     session-gated topic unsubscribe
// POST   /subscription/get        session-gated topic list (cached)
// GET    /healthz                 liveness
func (s *Server) setupRoutes(
	authService *service.AuthService,
	postService *service.PostService,
	subscriptionService *service.SubscriptionService,
) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(chimiddleware.Timeout(requestTimeout))
	s.router.Use(middleware.Logger(s.logger))

	authHandler := handler.NewAuthHandler(authService, s.logger)
	postHandler := handler.NewPostHandler(postService, s.logger)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService, s.logger)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)
	})

	s.router.Route("/posts", func(r chi.Router) {
		r.Get("/", postHandler.HandleList)
		r.Post("/create", postHandler.HandleCreate)
		r.Post("/id/{id}", postHandler.HandleGet)
		r.Post("/comment/{id}", postHandler.HandleComment)
		r.Delete("/delete/{id}", postHandler.HandleDelete)
	})

	s.router.Route("/subscription", func(r chi.Router) {
		r.Post("/create", subscriptionHandler.HandleCreate)
		r.Post("/delete", subscriptionHandler.HandleDelete)
		r.Post("/get", subscriptionHandler.HandleGet)
	})
}

// setupSweep registers the hourly expired-session sweep. Request
// handlers never delete expired rows — validation is read-only — so
// this job is the only cleanup path.
func (s *Server) setupSweep() error {
	_, err := s.scheduler.Every(sweepInterval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		count, err := s.sessions.DeleteExpired(ctx)
		if err != nil {
			s.logger.Error("session sweep failed", slog.String("error", err.Error()))
			return
		}
		s.logger.Debug("session sweep completed", slog.Int64("removed", count))
	})
	return err
}

// Start runs the HTTP server and the sweep scheduler until SIGINT or
// SIGTERM, then drains in-flight requests (30s budget) and closes the
// store clients.
func (s *Server) Start() error {
	defer s.db.Close()
	defer s.topics.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.scheduler.StartAsync()
	defer s.scheduler.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.String("bucket", s.config.Blob.Bucket),
			slog.String("cache", s.config.Cache.Addr),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

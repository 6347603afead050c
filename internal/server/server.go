package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/eventure/apiserver/config"
	"github.com/eventure/apiserver/internal/db"
	"github.com/eventure/apiserver/internal/handlers"
	"github.com/eventure/apiserver/internal/mq"
	"github.com/eventure/apiserver/internal/services"
	"github.com/eventure/apiserver/internal/storage"
	"github.com/eventure/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server wraps the HTTP server and its shared resources.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	broker     *mq.MQ
}

// New constructs a Server with basic middleware and defaults. The
// connection pool, signing secret, storage and broker clients are all
// built here once and injected; nothing reads them from globals later.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	jwtSecret := strings.TrimSpace(cfg.JWTSecret)
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	thumbnailStorage, err := storage.NewFromConfig(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if thumbnailStorage != nil {
		if err := thumbnailStorage.EnsureBucket(ctx); err != nil {
			_ = dbConn.Close()
			return nil, err
		}
	}

	broker, err := mq.NewFromConfig(ctx, cfg.Broker)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	eventRepo := store.NewEventRepository(dbConn)
	registrationRepo := store.NewRegistrationRepository(dbConn)
	catalogRepo := store.NewCatalogRepository(dbConn)

	authService := services.NewAuthService(userRepo, jwtSecret)
	eventService := services.NewEventService(eventRepo, thumbnailStorage)
	catalogService := services.NewCatalogService(catalogRepo)

	var publisher services.Publisher
	if broker != nil {
		publisher = broker
	}
	registrationService := services.NewRegistrationService(registrationRepo, eventRepo, publisher)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, authService)
	})
	router.Route("/events", func(r chi.Router) {
		handlers.EventRouter(r, eventService, registrationService, authService)
	})
	router.Route("/registrations", func(r chi.Router) {
		handlers.RegistrationRouter(r, registrationService, authService)
	})
	handlers.CatalogRouter(router, catalogService, authService)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		broker:     broker,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.broker != nil {
		_ = s.broker.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}

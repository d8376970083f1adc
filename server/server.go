package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/tripmind/tripmind/pkg/domain"
	"github.com/tripmind/tripmind/pkg/recommender"
)

// Server represents HTTP server instance
type Server struct {
	config     ConfigProvider
	engine     Recommender
	confidence ConfidenceChecker
	group      GroupEngine
	store      SwipeStore
	importer   Importer
	version    string
	debug      bool

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// Recommender produces ranked item lists
type Recommender interface {
	Recommend(ctx context.Context, userID, destination string, topN int) ([]recommender.ScoredItem, error)
	GroupRecommend(ctx context.Context, participantIDs []string, destination string, topN int) ([]recommender.ScoredItem, error)
	HighConfidenceItems(ctx context.Context, userID, destination string) ([]recommender.ScoredItem, error)
}

// ConfidenceChecker computes single-user confidence metrics
type ConfidenceChecker interface {
	Check(ctx context.Context, userID, destination string) (domain.ConfidenceMetrics, error)
}

// GroupEngine merges group preferences and drives trip readiness
type GroupEngine interface {
	GroupConfidence(ctx context.Context, participantIDs []string, destination string) (*domain.GroupConfidence, error)
	GroupPreferences(ctx context.Context, participantIDs []string, destination string) (*domain.GroupPreferences, error)
	ParticipantJoined(ctx context.Context, tripID, userID string) (*domain.GroupConfidence, error)
	SwipeRecorded(ctx context.Context, tripID string) (*domain.GroupConfidence, error)
}

// SwipeStore is the write surface for swipes and trips
type SwipeStore interface {
	RecordInteraction(ctx context.Context, inter *domain.Interaction) error
	EnsureUser(ctx context.Context, id string) (*domain.User, error)
	CreateTrip(ctx context.Context, trip *domain.Trip) error
	GetTrip(ctx context.Context, id string) (*domain.Trip, error)
}

// Importer builds a generic candidate pool for an empty destination; nil
// disables the fallback
type Importer interface {
	Import(ctx context.Context, destination string) ([]domain.Item, error)
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
}

// New initializes a new server instance
func New(cfg ConfigProvider, engine Recommender, confidence ConfidenceChecker, group GroupEngine,
	store SwipeStore, importer Importer, version string, debug bool) *Server {
	s := &Server{
		config:     cfg,
		engine:     engine,
		confidence: confidence,
		group:      group,
		store:      store,
		importer:   importer,
		version:    version,
		debug:      debug,
		router:     routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	log.Printf("[INFO] starting server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:         listen,
		Handler:      s.router,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		log.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("tripmind", "tripmind", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(1024 * 1024)) // 1MB
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)

		r.HandleFunc("POST /recommendations", s.recommendHandler)
		r.HandleFunc("POST /group-recommendations", s.groupRecommendHandler)
		r.HandleFunc("POST /swipes", s.swipeHandler)

		r.HandleFunc("GET /confidence", s.confidenceHandler)
		r.HandleFunc("GET /group-confidence", s.groupConfidenceHandler)
		r.HandleFunc("GET /group-preferences", s.groupPreferencesHandler)
		r.HandleFunc("GET /high-confidence-items", s.highConfidenceHandler)

		r.HandleFunc("POST /trips", s.createTripHandler)
		r.HandleFunc("POST /trips/{id}/participants", s.joinTripHandler)
	})
}

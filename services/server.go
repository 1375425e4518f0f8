package services

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/hireready/backend/ai"
	ws "github.com/hireready/backend/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Server holds all server dependencies
type Server struct {
	config   *Config
	store    Store
	db       *gorm.DB
	registry *prometheus.Registry
	tasks    *TaskRunner
	hub      *ws.Hub

	authService  *AuthService
	interviews   *InterviewService
	live         *LiveInterviewService
	schedules    *ScheduleService
	analytics    *AnalyticsService
	authRoutes   *AuthEndpoints
	sessionRoute *SessionEndpoints
	liveRoutes   *LiveEndpoints
	scheduleRts  *ScheduleEndpoints
	analyticsRts *AnalyticsEndpoints
}

// NewGateway builds the provider chain from config: Gemini first, then Groq.
// Providers without an API key are skipped.
func NewGateway(ctx context.Context, cfg AIConfig) *ai.FallbackGateway {
	hc := ai.NewHTTPClient(cfg.ConnectTimeout, cfg.RequestTimeout)

	var providers []ai.Provider
	if cfg.GeminiAPIKey != "" {
		gemini, err := ai.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, hc)
		if err != nil {
			slog.Error("Failed to initialize Gemini provider", "error", err)
		} else {
			providers = append(providers, gemini)
			slog.Info("Gemini provider initialized", "model", cfg.GeminiModel)
		}
	}
	if cfg.GroqAPIKey != "" {
		providers = append(providers, ai.NewGroqProvider(cfg.GroqAPIKey, cfg.GroqURL, cfg.GroqModel, hc))
		slog.Info("Groq provider initialized", "model", cfg.GroqModel)
	}
	if len(providers) == 0 {
		slog.Warn("No AI providers configured, AI-backed operations will fail")
	}

	return ai.NewFallbackGateway(ai.GatewayConfig{MaxRetries: cfg.MaxRetries}, providers...)
}

// NewServer wires services and routes. db may be nil when running on the
// in-memory store.
func NewServer(config *Config, store Store, db *gorm.DB, gateway ai.Gateway) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	InitMetrics(registry)
	ai.RegisterMetrics(registry)

	locks := NewLocks()
	tasks := NewTaskRunner(config.Interview.AsyncTimeout)
	hub := ws.NewHub()

	s := &Server{
		config:   config,
		store:    store,
		db:       db,
		registry: registry,
		tasks:    tasks,
		hub:      hub,
	}

	s.authService = NewAuthService(store, config.JWT.Secret, config.JWT.Expiry)
	s.interviews = NewInterviewService(store, store, gateway, locks, config.Interview.MaxQuestions)
	s.live = NewLiveInterviewService(LiveStores{
		Sessions:    store,
		Exchanges:   store,
		Evaluations: store,
		Schedules:   store,
	}, gateway, tasks, locks, config.Interview.ResumeChars)
	s.schedules = NewScheduleService(store, gateway)
	s.analytics = NewAnalyticsService(store, store, store)

	room := NewLiveRoom(s.live, s.interviews, hub, config.WebSocket.AllowedOrigins)
	s.authRoutes = NewAuthEndpoints(s.authService)
	s.sessionRoute = NewSessionEndpoints(s.interviews)
	s.liveRoutes = NewLiveEndpoints(s.live, s.interviews, s.schedules, room)
	s.scheduleRts = NewScheduleEndpoints(s.schedules)
	s.analyticsRts = NewAnalyticsEndpoints(s.analytics)

	return s
}

// SetupRoutes configures all HTTP routes
func (s *Server) SetupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(HTTPMetricsMiddleware)
	if len(s.config.CORS.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.CORS.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/health", s.healthHandler)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", s.apiV1Handler)
		s.authRoutes.RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(s.authService.Middleware)
			if s.config.RateLimit.PerMinute > 0 {
				r.Use(httprate.LimitByIP(s.config.RateLimit.PerMinute, time.Minute))
			}
			s.sessionRoute.RegisterRoutes(r)
			s.liveRoutes.RegisterRoutes(r)
			s.scheduleRts.RegisterRoutes(r)
			s.analyticsRts.RegisterRoutes(r)
		})
	})

	return r
}

// Start serves until SIGINT or SIGTERM, then drains requests and background tasks.
func (s *Server) Start() {
	port := s.config.Server.Port
	if port == "" {
		port = "8080"
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go s.hub.Run(hubCtx)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           s.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	stopHub()
	if err := s.tasks.Shutdown(ctx); err != nil {
		slog.Warn("Background tasks still running at shutdown", "error", err)
	}

	slog.Info("Server exited")
}

// CheckOrigin validates the origin of WebSocket connections to prevent CSRF attacks
func CheckOrigin(r *http.Request, allowedOriginsStr string) bool {
	origin := r.Header.Get("Origin")

	if allowedOriginsStr == "" {
		slog.Warn("WebSocket connection rejected: no allowed origins configured", "origin", origin)
		return false
	}

	for _, allowed := range strings.Split(allowedOriginsStr, ",") {
		if strings.TrimSpace(allowed) == origin {
			slog.Info("WebSocket connection accepted", "origin", origin)
			return true
		}
	}

	slog.Warn("WebSocket connection rejected: origin not allowed", "origin", origin, "allowed_origins", allowedOriginsStr)
	return false
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "not configured"

	if s.db != nil {
		if sqlDB, err := s.db.DB(); err != nil {
			dbStatus = "down"
			status = "degraded"
		} else if err := sqlDB.PingContext(r.Context()); err != nil {
			dbStatus = "down"
			status = "degraded"
		} else {
			dbStatus = "up"
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": status, "database": dbStatus})
	slog.Debug("Health check", "status", status, "database", dbStatus)
}

func (s *Server) apiV1Handler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "API v1", "version": "1.0.0"})
}

package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/portfolio-backend/config"
	"github.com/rs/zerolog/log"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(c map[string]string, svc Services) (Server, error) {
	if svc.Auth == nil {
		return Server{}, fmt.Errorf("auth service is required")
	}

	port := config.GetString(c, "PORT", "8080")
	address := fmt.Sprintf("0.0.0.0:%s", port)

	startupTime := time.Now()

	router := newRouter(svc, withConfig(c), withStartupTime(startupTime))

	readTimeout := config.GetSeconds(c, "READ_TIMEOUT_SECONDS", 180*time.Second)
	writeTimeout := config.GetSeconds(c, "WRITE_TIMEOUT_SECONDS", 180*time.Second)
	idleTimeout := config.GetSeconds(c, "IDLE_TIMEOUT_SECONDS", 180*time.Second)

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return Server{server, startupTime}, nil
}

type router struct {
	config      map[string]string
	startupTime time.Time
}

func withConfig(c map[string]string) func(*router) {
	return func(r *router) {
		r.config = c
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func newRouter(svc Services, opts ...func(*router)) *chi.Mux {
	var router router
	for _, opt := range opts {
		opt(&router)
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(LogInternalServerErrors)

	acceptedOrigins := config.GetList(router.config, "ACCEPTED_ORIGINS")
	chiRouter.Use(CORSCheckMiddleware(acceptedOrigins))
	chiRouter.Use(corsMiddleware(acceptedOrigins))

	handlers := initializeHandlers(svc, router.config)
	cookies := newSessionCookies(config.GetBool(router.config, "SESSION_COOKIE_SECURE", false))
	authMiddleware := newAuthMiddleware(svc.Auth, cookies)
	limiter := newLoginLimiter(config.GetInt(router.config, "LOGIN_RATE_PER_MINUTE", 10))

	chiRouter.Get("/health", healthHandler(svc, router.startupTime))

	if config.GetString(router.config, "STORAGE_DRIVER", "local") == "local" {
		dir := config.GetString(router.config, "UPLOAD_DIR", "uploads")
		chiRouter.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(dir))))
	}

	setupFrontendRoutes(chiRouter, handlers, authMiddleware, limiter)

	return chiRouter
}

// HealthResponse reports liveness and datastore reachability
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Uptime   string `json:"uptime"`
}

func healthHandler(svc Services, startupTime time.Time) http.HandlerFunc {
	responder := NewResponder(log.With().Str("handlerName", "healthHandler").Logger())
	return func(w http.ResponseWriter, r *http.Request) {
		res := HealthResponse{Status: "ok", Database: "ok", Uptime: time.Since(startupTime).Round(time.Second).String()}
		if err := svc.DB.Ping(r.Context()); err != nil {
			log.Warn().Err(err).Msg("Health check could not reach the database")
			res.Status = "degraded"
			res.Database = "unreachable"
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		responder.WriteJSON(w, res)
	}
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}

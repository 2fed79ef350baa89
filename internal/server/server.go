package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cogniscreen/cogniscreen/internal/database"
	"github.com/cogniscreen/cogniscreen/internal/server/handlers"
	"github.com/cogniscreen/cogniscreen/internal/server/response"
	"github.com/cogniscreen/cogniscreen/pkg/analysis"
	"github.com/cogniscreen/cogniscreen/pkg/auth"
	"github.com/cogniscreen/cogniscreen/pkg/logger"
)

// Version is the API version reported by the health and root endpoints.
const Version = "1.0.0"

// Server represents the HTTP server
type Server struct {
	config     *Config
	db         *database.Connection
	analyzer   *analysis.Service
	httpServer *http.Server
	router     *Router
	logger     *logger.Logger
}

// New creates a new HTTP server
func New(config *Config, db *database.Connection, analyzer *analysis.Service, log *logger.Logger) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server config: %w", err)
	}
	if log == nil {
		log = logger.GetDefault()
	}

	jwtManager, err := auth.NewJWTManager(config.JWT)
	if err != nil {
		return nil, fmt.Errorf("failed to create token manager: %w", err)
	}

	server := &Server{
		config:   config,
		db:       db,
		analyzer: analyzer,
		logger:   log.WithField("component", "http_server"),
	}

	server.router = NewRouter(config, db, analyzer, jwtManager, server.logger)

	server.httpServer = &http.Server{
		Addr:         config.GetAddress(),
		Handler:      server.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return server, nil
}

// Start starts the HTTP server and blocks until shutdown
func (s *Server) Start(ctx context.Context) error {
	go func() {
		s.logger.Info("Starting server on %s", s.config.GetAddress())

		var err error
		if s.config.TLSEnabled {
			err = s.httpServer.ListenAndServeTLS(s.config.TLSCertFile, s.config.TLSKeyFile)
		} else {
			err = s.httpServer.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		s.logger.Info("Shutting down server")
	case <-ctx.Done():
		s.logger.Info("Context cancelled, shutting down server")
	}

	return s.Shutdown()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.WithError(err).Error("Server shutdown error")
		return err
	}

	s.logger.Info("Server shutdown complete")
	return nil
}

// Router represents the HTTP router
type Router struct {
	*http.ServeMux
	config     *Config
	db         *database.Connection
	analyzer   *analysis.Service
	jwtManager *auth.JWTManager
	logger     *logger.Logger
	middleware *MiddlewareStack
}

// NewRouter creates a new HTTP router
func NewRouter(config *Config, db *database.Connection, analyzer *analysis.Service, jwtManager *auth.JWTManager, log *logger.Logger) *Router {
	router := &Router{
		ServeMux:   http.NewServeMux(),
		config:     config,
		db:         db,
		analyzer:   analyzer,
		jwtManager: jwtManager,
		logger:     log,
		middleware: NewMiddlewareStack(),
	}

	router.setupMiddleware()
	router.setupRoutes()

	return router
}

// ServeHTTP implements the http.Handler interface
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	handler := r.middleware.Apply(r.ServeMux)
	handler.ServeHTTP(w, req)
}

// setupMiddleware configures the middleware stack
func (r *Router) setupMiddleware() {
	// Order matters: recovery outermost, request ID before logging.
	r.middleware.Use(RecoveryMiddleware(r.logger))
	r.middleware.Use(SecurityHeadersMiddleware())
	r.middleware.Use(RequestIDMiddleware(r.config.RequestIDHeader))
	r.middleware.Use(LoggingMiddleware(r.config, r.logger))
	r.middleware.Use(CORSMiddleware(r.config))
	r.middleware.Use(RateLimitMiddleware(r.config))
	r.middleware.Use(MaxRequestSizeMiddleware(r.config.MaxRequestSize))
	r.middleware.Use(PaginationMiddleware(r.config))
}

// setupRoutes configures all API routes
func (r *Router) setupRoutes() {
	users := r.db.NewUserService()
	patients := r.db.NewPatientService()

	authHandler := handlers.NewAuthHandler(users, r.jwtManager)
	patientHandler := handlers.NewPatientHandler(patients)
	analysisHandler := handlers.NewAnalysisHandler(r.analyzer, patients)

	authRequired := AuthenticationMiddleware(r.jwtManager, users)
	apiPrefix := r.config.APIPrefix

	// Public endpoints
	r.HandleFunc(r.config.HealthCheckPath, r.healthCheckHandler)
	r.HandleFunc("/", r.rootHandler)
	r.HandleFunc("/auth/register", authHandler.Register)
	r.HandleFunc("/auth/token", authHandler.Token)
	r.HandleFunc(fmt.Sprintf("%s/analysis/demo", apiPrefix), analysisHandler.AnalyzeDemo)

	// Authenticated endpoints
	r.Handle("/auth/me", authRequired(http.HandlerFunc(authHandler.Me)))
	r.Handle(fmt.Sprintf("%s/patients", apiPrefix), authRequired(http.HandlerFunc(patientHandler.HandlePatients)))
	r.Handle(fmt.Sprintf("%s/patients/", apiPrefix), authRequired(http.HandlerFunc(patientHandler.HandlePatients)))
	r.Handle(fmt.Sprintf("%s/analysis", apiPrefix), authRequired(http.HandlerFunc(analysisHandler.Analyze)))
	r.Handle(fmt.Sprintf("%s/analysis/batch", apiPrefix), authRequired(http.HandlerFunc(analysisHandler.AnalyzeBatch)))
	r.Handle(fmt.Sprintf("%s/analysis/model", apiPrefix), authRequired(http.HandlerFunc(analysisHandler.ModelInfo)))

	if r.config.MetricsEnabled {
		r.Handle(r.config.MetricsPath, authRequired(http.HandlerFunc(analysisHandler.Metrics)))
	}
}

// healthCheckHandler handles health check requests
func (r *Router) healthCheckHandler(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	checks := make(map[string]string)
	status := "healthy"

	if err := r.db.HealthCheck(req.Context()); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
		status = "unhealthy"
	} else {
		checks["database"] = "healthy"
	}

	if err := r.analyzer.HealthCheck(req.Context()); err != nil {
		checks["analysis"] = "unhealthy: " + err.Error()
		status = "unhealthy"
	} else {
		checks["analysis"] = "healthy"
	}

	response.WriteHealthCheck(w, status, Version, checks)
}

// rootHandler handles API root requests
func (r *Router) rootHandler(w http.ResponseWriter, req *http.Request) {
	if req.URL.Path != "/" {
		http.NotFound(w, req)
		return
	}
	if req.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	info := map[string]interface{}{
		"name":        "CogniScreen API",
		"version":     Version,
		"description": "Linguistic screening for early signs of cognitive decline",
		"endpoints": map[string]string{
			"health":   r.config.HealthCheckPath,
			"auth":     "/auth",
			"patients": fmt.Sprintf("%s/patients", r.config.APIPrefix),
			"analysis": fmt.Sprintf("%s/analysis", r.config.APIPrefix),
		},
	}

	requestID := getRequestID(req.Context())
	response.WriteSuccess(w, requestID, info, nil)
}

// RunServer is a convenience function to run the server
func RunServer(config *Config, db *database.Connection, analyzer *analysis.Service, log *logger.Logger) error {
	server, err := New(config, db, analyzer, log)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return server.Start(context.Background())
}

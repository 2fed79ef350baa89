package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/cogniscreen/cogniscreen/internal/database"
	"github.com/cogniscreen/cogniscreen/internal/database/models"
	"github.com/cogniscreen/cogniscreen/internal/server/response"
	"github.com/cogniscreen/cogniscreen/pkg/auth"
	"github.com/cogniscreen/cogniscreen/pkg/logger"
)

// Middleware represents HTTP middleware
type Middleware func(http.Handler) http.Handler

// MiddlewareStack represents a stack of middleware
type MiddlewareStack struct {
	middlewares []Middleware
}

// NewMiddlewareStack creates a new middleware stack
func NewMiddlewareStack() *MiddlewareStack {
	return &MiddlewareStack{
		middlewares: make([]Middleware, 0),
	}
}

// Use adds a middleware to the stack
func (ms *MiddlewareStack) Use(middleware Middleware) {
	ms.middlewares = append(ms.middlewares, middleware)
}

// Apply applies all middleware to a handler
func (ms *MiddlewareStack) Apply(handler http.Handler) http.Handler {
	// Apply middleware in reverse order so they execute in the order they were added
	for i := len(ms.middlewares) - 1; i >= 0; i-- {
		handler = ms.middlewares[i](handler)
	}
	return handler
}

// Context keys shared with the handlers package and the logger's
// WithContext helper.
const (
	requestIDKey   = "request_id"
	currentUserKey = "current_user"
	paginationKey  = "pagination"
)

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(header string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(header)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			w.Header().Set(header, requestID)

			ctx := context.WithValue(r.Context(), requestIDKey, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CORSMiddleware handles Cross-Origin Resource Sharing
func CORSMiddleware(config *Config) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.CORSEnabled {
				next.ServeHTTP(w, r)
				return
			}

			origin := r.Header.Get("Origin")

			allowed := false
			for _, allowedOrigin := range config.CORSAllowedOrigins {
				if allowedOrigin == "*" || allowedOrigin == origin {
					allowed = true
					break
				}
			}

			if allowed && origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}

			w.Header().Set("Access-Control-Allow-Methods", strings.Join(config.CORSAllowedMethods, ", "))
			w.Header().Set("Access-Control-Allow-Headers", strings.Join(config.CORSAllowedHeaders, ", "))
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitMiddleware implements rate limiting
func RateLimitMiddleware(config *Config) Middleware {
	if !config.RateLimitEnabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	limiter := rate.NewLimiter(rate.Limit(config.RateLimitRPS), config.RateLimitBurst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				requestID := getRequestID(r.Context())
				response.WriteError(w, requestID, http.StatusTooManyRequests,
					response.ErrorCodeTooManyRequests, "Rate limit exceeded", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(config *Config, log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.LogRequests || r.URL.Path == config.HealthCheckPath {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			entry := log.WithFields(map[string]interface{}{
				"request_id":  getRequestID(r.Context()),
				"http_method": r.Method,
				"http_path":   r.URL.Path,
				"http_status": wrapped.statusCode,
				"duration_ms": float64(duration.Nanoseconds()) / 1e6,
				"remote_addr": r.RemoteAddr,
			})

			message := r.Method + " " + r.URL.Path
			switch {
			case wrapped.statusCode >= 500:
				entry.Error(message)
			case wrapped.statusCode >= 400:
				entry.Warn(message)
			default:
				entry.Info(message)
			}
		})
	}
}

// AuthenticationMiddleware validates the bearer token and loads the current
// user into the request context. Inactive accounts are rejected even when
// the token itself is still valid.
func AuthenticationMiddleware(jwtManager *auth.JWTManager, users *database.UserService) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := getRequestID(r.Context())
			rw := response.NewResponseWriter(w, requestID)

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				rw.Unauthorized("Authentication required")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := jwtManager.VerifyToken(token)
			if err != nil {
				rw.Unauthorized("Could not validate credentials")
				return
			}

			user, err := users.GetUserByUsername(r.Context(), claims.Username)
			if err != nil {
				rw.Unauthorized("Could not validate credentials")
				return
			}
			if !user.IsActive {
				rw.Forbidden("Inactive user")
				return
			}

			ctx := context.WithValue(r.Context(), currentUserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RecoveryMiddleware recovers from panics
func RecoveryMiddleware(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					requestID := getRequestID(r.Context())
					log.WithFields(map[string]interface{}{
						"request_id": requestID,
						"panic":      err,
					}).Error("HTTP handler panicked")
					response.WriteError(w, requestID, http.StatusInternalServerError,
						response.ErrorCodeInternalError, "Internal server error", nil)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeadersMiddleware adds security headers
func SecurityHeadersMiddleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("X-XSS-Protection", "1; mode=block")
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			next.ServeHTTP(w, r)
		})
	}
}

// MaxRequestSizeMiddleware limits request body size
func MaxRequestSizeMiddleware(maxSize int64) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxSize {
				requestID := getRequestID(r.Context())
				response.WriteError(w, requestID, http.StatusRequestEntityTooLarge,
					response.ErrorCodeBadRequest, "Request too large", nil)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxSize)
			next.ServeHTTP(w, r)
		})
	}
}

// PaginationMiddleware extracts pagination parameters
func PaginationMiddleware(config *Config) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			page := 1
			pageSize := config.DefaultPageSize

			if pageStr := r.URL.Query().Get("page"); pageStr != "" {
				if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
					page = p
				}
			}

			if sizeStr := r.URL.Query().Get("page_size"); sizeStr != "" {
				if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= config.MaxPageSize {
					pageSize = s
				}
			}

			ctx := context.WithValue(r.Context(), paginationKey, map[string]int{
				"page":      page,
				"page_size": pageSize,
				"offset":    (page - 1) * pageSize,
			})

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Helper types and functions

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func getRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return "unknown"
}

// CurrentUser returns the authenticated user attached by the
// authentication middleware, or nil outside an authenticated route.
func CurrentUser(ctx context.Context) *models.User {
	if user, ok := ctx.Value(currentUserKey).(*models.User); ok {
		return user
	}
	return nil
}

// GetPagination returns the pagination parameters attached by the
// pagination middleware.
func GetPagination(ctx context.Context) (page, pageSize, offset int) {
	if pagination, ok := ctx.Value(paginationKey).(map[string]int); ok {
		return pagination["page"], pagination["page_size"], pagination["offset"]
	}
	return 1, 20, 0
}

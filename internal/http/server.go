package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"grafico/internal/cache"
	"grafico/internal/core"
	"grafico/internal/services"
)

// ChartAPI is the slice of the chart service the HTTP layer needs.
type ChartAPI interface {
	Generate(ctx context.Context, prompt string, filter core.DataFilter) (services.GenerateResult, error)
	Save(ctx context.Context, prompt string, filter core.DataFilter, specText string) (core.ChartRequest, error)
	ListRecent(ctx context.Context, limit int) ([]core.ChartRequest, error)
}

type Server struct {
	http.Server
	charts      ChartAPI
	rateLimiter *rateLimiter

	// Recent listings are cheap to cache and invalidate; generation is never cached.
	recentCache *cache.LRU[[]core.ChartRequest]
	cacheEpoch  atomic.Int64

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// recentKey folds the invalidation epoch into the cache key. Bumping the
// epoch on every save orphans older entries, which age out via TTL.
func (s *Server) recentKey(limit int) string {
	return fmt.Sprintf("recent:%d:%d", s.cacheEpoch.Load(), limit)
}

func (s *Server) invalidateRecent() {
	s.cacheEpoch.Add(1)
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, charts ChartAPI) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		charts:           charts,
		rateLimiter:      newRateLimiter(),
		recentCache:      cache.New[[]core.ChartRequest](50, 30*time.Second),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/api/charts/generate", s.withSecurityHeaders(s.handleGenerate))
	mux.HandleFunc("/api/charts", s.withSecurityHeaders(s.handleSave))
	mux.HandleFunc("/api/charts/recent", s.withSecurityHeaders(s.handleRecent))

	return s
}

// startCacheCleanup runs periodic cleanup for the recent-list cache
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.recentCache.CleanExpired(); cleaned > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}

		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}

		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request logging
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extract client IP (considering proxies)
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		// Rate limit mutating requests only; listings stay cheap via the cache.
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate_limited", "Rate limit exceeded. Please try again later.")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

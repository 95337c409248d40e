package server

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/MeKo-Tech/langid/internal/detector"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// detectorInterface defines the methods needed by the server from a detector.
type detectorInterface interface {
	Detect(text string) ([]detector.Match, error)
	Languages() []string
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	detector     detectorInterface
	corsOrigin   string
	maxBodyBytes int64
	topK         int
	rateLimiter  *RateLimiter

	stop      chan struct{}
	closeOnce sync.Once
}

// Config holds server configuration.
type Config struct {
	Host       string
	Port       int
	CORSOrigin string
	MaxBodyKB  int64
	TimeoutSec int
	TopK       int
	RateLimit  RateLimitConfig
}

// RateLimitConfig holds per-client request limits.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	RequestsPerHour   int
	MaxRequestsPerDay int
	MaxDataPerDay     int64
}

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version,omitempty"`
	Time      string `json:"time"`
	Languages int    `json:"languages"`
}

// LanguagesResponse is returned by /languages.
type LanguagesResponse struct {
	Languages []string `json:"languages"`
	Count     int      `json:"count"`
}

// DetectRequest is the JSON body accepted by /detect and /ws/detect.
type DetectRequest struct {
	Text string `json:"text"`
	Top  int    `json:"top,omitempty"`
}

// DetectResponse is returned by /detect.
type DetectResponse struct {
	Success   bool             `json:"success"`
	RequestID string           `json:"request_id,omitempty"`
	Language  string           `json:"language,omitempty"`
	Matches   []detector.Match `json:"matches,omitempty"`
	Error     string           `json:"error,omitempty"`
	ErrorType string           `json:"error_type,omitempty"`
}

// NewServer creates a detection server around a ready detector.
func NewServer(config Config, det detectorInterface) (*Server, error) {
	if det == nil {
		return nil, errors.New("detector is required")
	}

	maxBody := config.MaxBodyKB * 1024
	if maxBody <= 0 {
		maxBody = 1024 * 1024
	}

	s := &Server{
		detector:     det,
		corsOrigin:   config.CORSOrigin,
		maxBodyBytes: maxBody,
		topK:         config.TopK,
		stop:         make(chan struct{}),
	}

	if config.RateLimit.Enabled {
		s.rateLimiter = NewRateLimiter(
			config.RateLimit.RequestsPerMinute,
			config.RateLimit.RequestsPerHour,
			config.RateLimit.MaxRequestsPerDay,
			config.RateLimit.MaxDataPerDay,
		)
		go s.pruneClients(time.Hour)
	}

	referenceProfiles.Set(float64(len(det.Languages())))
	return s, nil
}

// Close stops background work. It is safe to call more than once.
func (s *Server) Close() error {
	s.closeOnce.Do(func() { close(s.stop) })
	return nil
}

// pruneClients drops rate limiter entries of clients idle for more than a
// day, checking every interval.
func (s *Server) pruneClients(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if n := s.rateLimiter.Prune(24 * time.Hour); n > 0 {
				slog.Debug("Pruned idle rate limit clients", "clients", n)
			}
		}
	}
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/languages", s.corsMiddleware(s.languagesHandler))
	mux.HandleFunc("/detect", s.corsMiddleware(s.rateLimitMiddleware(s.detectHandler)))
	// the websocket upgrade needs the unwrapped ResponseWriter
	mux.HandleFunc("/ws/detect", s.rateLimitMiddleware(s.detectWebSocketHandler))
	mux.Handle("/metrics", promhttp.Handler())
}

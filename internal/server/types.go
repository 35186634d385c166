package server

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MeKo-Tech/tally/internal/ocr"
	"github.com/MeKo-Tech/tally/internal/receipt"
)

// engineClient defines the methods needed by the server from the remote
// text-detection engine.
type engineClient interface {
	DetectImage(ctx context.Context, img []byte, filename string) (*ocr.ImageResult, error)
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	engine        engineClient
	parser        *receipt.Parser
	corsOrigin    string
	maxUploadMB   int64
	timeoutSec    int
	maxImageWidth int
	rateLimiter   *RateLimiter
}

// Config holds server configuration.
type Config struct {
	Host          string
	Port          int
	CORSOrigin    string
	MaxUploadMB   int64
	TimeoutSec    int
	MaxImageWidth int
	Parser        receipt.Config
	RateLimit     RateLimitConfig
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	RequestsPerHour   int
	MaxDataPerDay     int64 // bytes, 0 disables the quota
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// ReceiptResponse is the payload for receipt parsing endpoints.
type ReceiptResponse struct {
	Success bool            `json:"success"`
	Result  *receipt.Result `json:"result,omitempty"`
	RawText []string        `json:"raw_text,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// RegionsRequest carries pre-computed detection results, one entry per
// screenshot in top-to-bottom order.
type RegionsRequest struct {
	Images []ocr.ImageResult `json:"images"`
}

// NewServer creates a new receipt parsing server instance.
func NewServer(engine engineClient, config Config) *Server {
	var limiter *RateLimiter
	if config.RateLimit.Enabled {
		limiter = NewRateLimiter(
			config.RateLimit.RequestsPerMinute,
			config.RateLimit.RequestsPerHour,
			config.RateLimit.MaxDataPerDay,
		)
	}

	return &Server{
		engine:        engine,
		parser:        receipt.NewParser(config.Parser),
		corsOrigin:    config.CORSOrigin,
		maxUploadMB:   config.MaxUploadMB,
		timeoutSec:    config.TimeoutSec,
		maxImageWidth: config.MaxImageWidth,
		rateLimiter:   limiter,
	}
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/receipt", s.corsMiddleware(s.rateLimitMiddleware(s.receiptHandler)))
	mux.HandleFunc("/receipt/regions", s.corsMiddleware(s.rateLimitMiddleware(s.regionsHandler)))
	mux.HandleFunc("/receipt/ws", s.receiptWebSocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
}

package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tally_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tally_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Detection engine metrics
	ocrRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tally_ocr_requests_total",
			Help: "Total number of detection engine requests",
		},
		[]string{"type", "status"}, // type: image, regions, websocket
	)

	ocrProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tally_ocr_processing_duration_seconds",
			Help:    "Detection and parsing duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 25, 50},
		},
		[]string{"type"},
	)

	detectionsPerImage = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tally_detections_per_image",
			Help:    "Number of text regions detected per screenshot",
			Buckets: []float64{0, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	// Receipt parsing metrics
	receiptsParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tally_receipts_parsed_total",
			Help: "Total number of parsed receipts",
		},
		[]string{"validity"}, // validity: valid, invalid
	)

	itemsPerReceipt = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tally_items_per_receipt",
			Help:    "Number of order items extracted per receipt",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
	)

	// Rate limiting metrics
	rateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tally_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"type"}, // type: minute, hour, data
	)

	// File upload metrics
	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tally_upload_size_bytes",
			Help:    "Size of uploaded screenshots in bytes",
			Buckets: []float64{1024, 10 * 1024, 100 * 1024, 1024 * 1024, 10 * 1024 * 1024, 50 * 1024 * 1024},
		},
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tally_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tally_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // direction: sent, received
	)
)

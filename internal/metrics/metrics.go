package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deckbuilder_http_requests_total",
		Help: "Total HTTP requests by method, route and status code",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "deckbuilder_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// Catalog client metrics
var (
	CatalogRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deckbuilder_catalog_requests_total",
		Help: "Requests issued to the card catalog API by operation",
	}, []string{"operation"})

	CatalogErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deckbuilder_catalog_errors_total",
		Help: "Card catalog API failures by reason",
	}, []string{"reason"})

	CatalogLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "deckbuilder_catalog_latency_seconds",
		Help:    "Card catalog API request latency",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})
)

// Gemini metrics
var (
	GeminiRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deckbuilder_gemini_requests_total",
		Help: "Successful deck generation calls to Gemini",
	})

	GeminiErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deckbuilder_gemini_errors_total",
		Help: "Gemini call failures by reason",
	}, []string{"reason"})

	GeminiAPILatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "deckbuilder_gemini_latency_seconds",
		Help:    "Gemini API request latency",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
	})
)

// Deck engine metrics
var (
	DecksTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "deckbuilder_decks_total",
		Help: "Number of decks in the persisted collection",
	})

	ActiveDeckCards = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "deckbuilder_active_deck_cards",
		Help: "Cards in the active deck by zone",
	}, []string{"zone"})

	CardAddsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deckbuilder_card_adds_total",
		Help: "Cards successfully added to the active deck",
	})

	CardAddRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deckbuilder_card_add_rejected_total",
		Help: "Rejected card additions by reason",
	}, []string{"reason"})
)

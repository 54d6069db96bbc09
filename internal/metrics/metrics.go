package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// DeadlinesIssued counts freshly computed countdown deadlines by cause.
	DeadlinesIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "landing_countdown_deadlines_issued_total",
		Help: "Countdown deadlines computed because none was stored, the stored one was unreadable, or it had elapsed",
	}, []string{"reason"})

	// DeadlinesReused counts page loads that continued an existing countdown.
	DeadlinesReused = promauto.NewCounter(prometheus.CounterOpts{
		Name: "landing_countdown_deadlines_reused_total",
		Help: "Countdown deadlines returned unchanged from storage",
	})

	// ActiveStreams tracks open countdown event streams.
	ActiveStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "landing_countdown_active_streams",
		Help: "Countdown event streams currently open",
	})

	// CheckoutClicks counts checkout link clicks by tracker outcome.
	CheckoutClicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "landing_checkout_clicks_total",
		Help: "Checkout link clicks reported by the page, by tracker result",
	}, []string{"result"})

	// SinkFailures counts swallowed tracking sink errors.
	SinkFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "landing_tracking_sink_failures_total",
		Help: "Tracking sink deliveries that failed and were ignored",
	}, []string{"sink"})

	// DocumentLoads counts offer document loads by outcome.
	DocumentLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "landing_document_loads_total",
		Help: "Offer document load attempts",
	}, []string{"outcome"})
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RefreshTotal counts treasury refresh cycles by outcome (ok, partial, failed, busy).
	RefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "treasury_refresh_total",
			Help: "Number of treasury refresh cycles by outcome.",
		},
		[]string{"outcome"},
	)

	// RefreshDuration observes the wall time of a full treasury refresh.
	RefreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "treasury_refresh_duration_seconds",
			Help:    "Duration of a full treasury refresh cycle.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		},
	)

	// WalletFetchErrors counts per-wallet fetch failures.
	WalletFetchErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "treasury_wallet_fetch_errors_total",
			Help: "Number of per-wallet fetch failures.",
		},
		[]string{"wallet"},
	)

	// UpstreamRequestDuration observes outbound API request latency.
	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "treasury_upstream_request_duration_seconds",
			Help:    "Latency of outbound requests to third-party APIs.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"api", "endpoint"},
	)

	// OutOfBandRates counts annualized rates that fell outside the sanity band.
	OutOfBandRates = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "treasury_out_of_band_rates_total",
			Help: "Number of computed annualized rates outside the configured band.",
		},
	)
)

// MustRegisterMetrics registers all collectors with the default registry.
func MustRegisterMetrics() {
	prometheus.MustRegister(
		RefreshTotal,
		RefreshDuration,
		WalletFetchErrors,
		UpstreamRequestDuration,
		OutOfBandRates,
	)
}

// ObserveUpstreamRequest records one outbound request observation.
func ObserveUpstreamRequest(api, endpoint string, d time.Duration) {
	UpstreamRequestDuration.WithLabelValues(api, endpoint).Observe(d.Seconds())
}

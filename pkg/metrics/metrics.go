package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loantrack_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// LoanTransitions counts loan state transitions by target state.
	LoanTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loantrack_loan_transitions_total",
			Help: "Total number of loan lifecycle transitions",
		},
		[]string{"to"},
	)

	// TokenRedemptions counts single-use token redemption attempts by outcome
	// (success|not_found|expired|used).
	TokenRedemptions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loantrack_token_redemptions_total",
			Help: "Total number of single-use access token redemption attempts",
		},
		[]string{"result"},
	)

	// ActiveSessions tracks active sessions (not expired/revoked).
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "loantrack_active_sessions",
			Help: "Number of active sessions",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "loantrack_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

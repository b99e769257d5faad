package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RLRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limiter_requests_total",
			Help: "Total requests seen by the rate limiter",
		},
		[]string{"endpoint"},
	)
	RLBlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limiter_blocked_total",
			Help: "Total requests blocked by the rate limiter",
		},
		[]string{"endpoint"},
	)
	TapsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "taps_total",
			Help: "Total tap events recorded",
		},
	)
	RegistrationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "registrations_total",
			Help: "Total successful registrations",
		},
	)
	WithdrawalRequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "withdrawal_requests_total",
			Help: "Total withdrawal requests created",
		},
	)
	WithdrawalTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "withdrawal_transitions_total",
			Help: "Withdrawal lifecycle transitions by terminal status",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(RLRequests)
	prometheus.MustRegister(RLBlocked)
	prometheus.MustRegister(TapsTotal)
	prometheus.MustRegister(RegistrationsTotal)
	prometheus.MustRegister(WithdrawalRequestsTotal)
	prometheus.MustRegister(WithdrawalTransitions)
}

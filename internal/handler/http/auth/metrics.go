package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// authRequestsTotal counts token checks on guarded routes.
	authRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_requests_total",
			Help: "Token checks on guarded routes by result",
		},
		[]string{"result"}, // result: success | unauthorized | forbidden
	)
)

func recordAuth(result string) {
	authRequestsTotal.WithLabelValues(result).Inc()
}

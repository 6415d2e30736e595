package session

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Labels carry no session or user identifiers.
var (
	// TokenRequestsTotal counts token endpoint calls by grant and outcome.
	TokenRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rdp",
		Subsystem: "session",
		Name:      "token_requests_total",
		Help:      "Total token endpoint requests, by grant type and outcome.",
	}, []string{"grant", "outcome"})

	// RevocationsTotal counts revoke endpoint calls by outcome.
	RevocationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rdp",
		Subsystem: "session",
		Name:      "revocations_total",
		Help:      "Total token revocation requests, by outcome.",
	}, []string{"outcome"})

	// DispatchTotal counts data requests by method and status code.
	DispatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rdp",
		Subsystem: "session",
		Name:      "dispatch_total",
		Help:      "Total authenticated data requests, by method and status code (or failure kind).",
	}, []string{"method", "code"})

	// OpenSessions tracks sessions currently in the Open state.
	OpenSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "rdp",
		Subsystem: "session",
		Name:      "open",
		Help:      "Current number of open sessions.",
	})
)

const (
	outcomeSuccess   = "success"
	outcomeRejected  = "rejected"
	outcomeTransport = "transport"
	outcomeMalformed = "malformed"
	outcomeInvalid   = "invalid"
)

func recordDispatch(method string, status int, failure string) {
	code := failure
	if code == "" {
		code = strconv.Itoa(status)
	}
	DispatchTotal.WithLabelValues(method, code).Inc()
}

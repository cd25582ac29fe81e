package verify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var tokenChecks = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "shopify",
	Subsystem: "auth",
	Name:      "token_checks_total",
	Help:      "Stored-token re-checks by outcome.",
}, []string{"access", "outcome"})

const (
	outcomeValid       = "valid"
	outcomeRejected    = "rejected"
	outcomeUnreachable = "unreachable"
	outcomeNoSession   = "no_session"
)

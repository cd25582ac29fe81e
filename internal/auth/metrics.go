package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// oauthResults counts Start and Callback outcomes: "started", "completed" or an ErrorKind.
var oauthResults = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "shopify",
	Subsystem: "auth",
	Name:      "oauth_results_total",
	Help:      "OAuth start and callback outcomes by result.",
}, []string{"result"})

const (
	resultStarted   = "started"
	resultCompleted = "completed"
)

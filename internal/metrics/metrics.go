// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login methods.
const (
	MethodPassword = "password"
	MethodOTP      = "otp"
)

// Login outcomes.
const (
	OutcomeSuccess            = "success"
	OutcomeNotFound           = "not_found"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeError              = "error"
)

var (
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Name:      "login_attempts_total",
		Help:      "Login attempts by method and outcome.",
	}, []string{"method", "outcome"})

	OTPIssued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "portal",
		Name:      "otp_issued_total",
		Help:      "One-time login codes issued.",
	})

	Registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Name:      "registrations_total",
		Help:      "Accounts registered by role.",
	}, []string{"role"})
)

package service

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aussiebroadwan/mfa/internal/mfa/domain"
)

// Metrics are the Prometheus collectors of the MFA core.
type Metrics struct {
	Attempts            *prometheus.CounterVec
	LedgerWriteFailures prometheus.Counter
}

// NewMetrics builds the collectors and registers them with reg. A nil reg
// leaves them unregistered, which is what most tests want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mfa",
			Name:      "verification_attempts_total",
			Help:      "Code-bearing MFA operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		LedgerWriteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mfa",
			Name:      "ledger_write_failures_total",
			Help:      "Verification attempts that could not be written to the ledger.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Attempts, m.LedgerWriteFailures)
	}
	return m
}

func (m *Metrics) observeAttempt(op domain.Operation, outcome domain.Outcome) {
	if m == nil {
		return
	}
	m.Attempts.WithLabelValues(string(op), string(outcome)).Inc()
}

func (m *Metrics) observeLedgerFailure() {
	if m == nil {
		return
	}
	m.LedgerWriteFailures.Inc()
}

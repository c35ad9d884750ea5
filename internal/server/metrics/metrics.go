// Package metrics holds the prometheus collectors of the identity service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Registry *prometheus.Registry

	AuthOperations   *prometheus.CounterVec
	RecoveryLockouts prometheus.Counter
}

// New registers the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		AuthOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "resourcehub_auth_operations_total",
			Help: "Identity service operations by name and result code",
		}, []string{"operation", "result"}),
		RecoveryLockouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "resourcehub_recovery_lockouts_total",
			Help: "Emails locked after too many failed security answers",
		}),
	}
}

func (m *Metrics) ObserveOperation(operation, result string) {
	m.AuthOperations.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) IncrementRecoveryLockouts() {
	m.RecoveryLockouts.Inc()
}

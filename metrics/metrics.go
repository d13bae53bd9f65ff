// metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics groups the collectors exported on /metrics. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	mutations         *prometheus.CounterVec
	persistenceErrors *prometheus.CounterVec
	remoteWrites      *prometheus.CounterVec
	trashPurged       prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stride_mutations_total",
			Help: "State changes applied, by operation.",
		}, []string{"op"}),
		persistenceErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stride_persistence_errors_total",
			Help: "Failed writes, by backend.",
		}, []string{"backend"}),
		remoteWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stride_remote_writes_total",
			Help: "Remote mirror writes, by result.",
		}, []string{"result"}),
		trashPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stride_trash_purged_total",
			Help: "Trash items removed after the retention period.",
		}),
	}
	m.Registry.MustRegister(
		m.mutations,
		m.persistenceErrors,
		m.remoteWrites,
		m.trashPurged,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) Mutation(op string) {
	if m != nil {
		m.mutations.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) PersistenceError(backend string) {
	if m != nil {
		m.persistenceErrors.WithLabelValues(backend).Inc()
	}
}

// RemoteWrite records the outcome of one mirrored write.
func (m *Metrics) RemoteWrite(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.remoteWrites.WithLabelValues(result).Inc()
}

func (m *Metrics) TrashPurged(n int) {
	if m != nil && n > 0 {
		m.trashPurged.Add(float64(n))
	}
}

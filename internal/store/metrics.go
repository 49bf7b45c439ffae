package store

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the store's prometheus collectors
type Metrics struct {
	Mutations     *prometheus.CounterVec
	PersistErrors *prometheus.CounterVec
	Records       *prometheus.GaugeVec
}

// NewMetrics builds the collectors and registers them with reg when reg is
// not nil
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crmdb",
			Subsystem: "store",
			Name:      "mutations_total",
			Help:      "Record store mutations by collection, operation and result.",
		}, []string{"collection", "op", "result"}),
		PersistErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crmdb",
			Subsystem: "store",
			Name:      "persist_errors_total",
			Help:      "Failed writes to the persistence medium by collection.",
		}, []string{"collection"}),
		Records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "crmdb",
			Subsystem: "store",
			Name:      "records",
			Help:      "Records currently held per collection.",
		}, []string{"collection"}),
	}
	if reg != nil {
		reg.MustRegister(m.Mutations, m.PersistErrors, m.Records)
	}
	return m
}

func (m *Metrics) observe(ops []txOp, outcome string) {
	for _, op := range ops {
		result := outcome
		if result == "" {
			result = op.result.String()
		}
		m.Mutations.WithLabelValues(op.collection, op.op, result).Inc()
	}
}

// Package metrics defines the document lifecycle counters exported on /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Documents counts lifecycle events of the document manager.
// A nil *Documents is valid and records nothing.
type Documents struct {
	added           prometheus.Counter
	deleted         prometheus.Counter
	compensations   *prometheus.CounterVec
	refreshFailures prometheus.Counter
}

// NewDocuments creates the counters and registers them with reg.
func NewDocuments(reg prometheus.Registerer) (*Documents, error) {
	m := &Documents{
		added: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "documents_added_total",
			Help: "Documents stored with both blob and metadata row.",
		}),
		deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "documents_deleted_total",
			Help: "Documents removed from blob storage and database.",
		}),
		compensations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "document_compensations_total",
			Help: "Orphaned blob deletions attempted after a failed add, by result.",
		}, []string{"result"}),
		refreshFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "document_cache_refresh_failures_total",
			Help: "Cache refreshes that failed and kept the previous snapshot.",
		}),
	}

	for _, c := range []prometheus.Collector{m.added, m.deleted, m.compensations, m.refreshFailures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Documents) Added() {
	if m != nil {
		m.added.Inc()
	}
}

func (m *Documents) Deleted() {
	if m != nil {
		m.deleted.Inc()
	}
}

// Compensation records one compensating delete and whether it succeeded.
func (m *Documents) Compensation(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.compensations.WithLabelValues(result).Inc()
}

func (m *Documents) RefreshFailed() {
	if m != nil {
		m.refreshFailures.Inc()
	}
}

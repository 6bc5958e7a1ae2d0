package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	remoteRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "glowbook",
			Name:      "remote_requests_total",
			Help:      "Remote booking service requests by endpoint and result.",
		},
		[]string{"endpoint", "result"},
	)

	storeFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "glowbook",
			Name:      "store_fallbacks_total",
			Help:      "Reads served from the local store after a remote failure.",
		},
		[]string{"entity"},
	)

	syncItems = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "glowbook",
			Name:      "sync_items_total",
			Help:      "Sync queue items by terminal result of an attempt.",
		},
		[]string{"entity_type", "result"},
	)

	syncPasses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "glowbook",
			Name:      "sync_passes_total",
			Help:      "Full sync passes by result.",
		},
		[]string{"result"},
	)

	queuePending = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "glowbook",
			Name:      "sync_queue_pending",
			Help:      "Sync queue items waiting to be replayed.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(remoteRequests, storeFallbacks, syncItems, syncPasses, queuePending)
	})
}

// IncRemote counts a remote request outcome for an endpoint label.
func IncRemote(endpoint, result string) {
	remoteRequests.WithLabelValues(endpoint, result).Inc()
}

// IncFallback counts a read served from the local store after a remote failure.
func IncFallback(entity string) {
	storeFallbacks.WithLabelValues(entity).Inc()
}

// IncSyncItem counts the outcome of one queue item attempt.
func IncSyncItem(entityType, result string) {
	syncItems.WithLabelValues(entityType, result).Inc()
}

// IncSyncPass counts the outcome of one full sync pass.
func IncSyncPass(result string) {
	syncPasses.WithLabelValues(result).Inc()
}

// SetPending publishes the current pending queue depth.
func SetPending(n int) {
	queuePending.Set(float64(n))
}

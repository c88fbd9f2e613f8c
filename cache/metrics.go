package cache

import "github.com/prometheus/client_golang/prometheus"

// promMetrics mirrors Stats as scrapeable counters, wired in only when a
// Manager is constructed with WithPrometheusRegisterer.
type promMetrics struct {
	hits      prometheus.Counter
	staleHits prometheus.Counter
	misses    prometheus.Counter
}

func newPromMetrics(reg prometheus.Registerer, namespace string) *promMetrics {
	m := &promMetrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_hits_total", Help: "Fresh cache hits.",
		}),
		staleHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_stale_hits_total", Help: "Stale cache hits served during revalidation.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_misses_total", Help: "Cache misses.",
		}),
	}
	reg.MustRegister(m.hits, m.staleHits, m.misses)
	return m
}

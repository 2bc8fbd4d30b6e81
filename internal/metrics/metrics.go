// Package metrics exports key-service counters to Prometheus. A nil *Metrics
// records nothing, so callers never need to guard it.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "xrpl_keyservice"

type Metrics struct {
	signatures    *prometheus.CounterVec
	verifications *prometheus.CounterVec
	proofs        *prometheus.CounterVec
	cache         *prometheus.CounterVec
	rateLimited   prometheus.Counter
	derivation    prometheus.Histogram
	rpcRequests   *prometheus.CounterVec
}

// New registers the collectors on reg. A nil reg leaves them unregistered,
// which is what tests usually want.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		signatures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signatures_total",
			Help:      "Signatures produced, by algorithm and mode.",
		}, []string{"algorithm", "mode"}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verifications_total",
			Help:      "Signature verifications, by mode and result.",
		}, []string{"mode", "result"}),
		proofs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proofs_total",
			Help:      "Secret-key proofs generated or verified, by result.",
		}, []string{"op", "result"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "key_cache_events_total",
			Help:      "Derived-key cache hits, misses and evictions.",
		}, []string{"event"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-key rate limiter.",
		}),
		derivation: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "derivation_seconds",
			Help:      "Time spent deriving a key pair on cache miss.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "JSON-RPC calls served by the signing daemon, by method and result.",
		}, []string{"method", "result"}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.signatures, m.verifications, m.proofs, m.cache, m.rateLimited, m.derivation, m.rpcRequests} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) Signature(algorithm, mode string) {
	if m == nil {
		return
	}
	m.signatures.WithLabelValues(algorithm, mode).Inc()
}

func (m *Metrics) Verification(mode string, ok bool) {
	if m == nil {
		return
	}
	m.verifications.WithLabelValues(mode, result(ok)).Inc()
}

func (m *Metrics) Proof(op string, ok bool) {
	if m == nil {
		return
	}
	m.proofs.WithLabelValues(op, result(ok)).Inc()
}

func (m *Metrics) CacheHit()      { m.cacheEvent("hit") }
func (m *Metrics) CacheMiss()     { m.cacheEvent("miss") }
func (m *Metrics) CacheEviction() { m.cacheEvent("eviction") }

func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

func (m *Metrics) ObserveDerivation(seconds float64) {
	if m == nil {
		return
	}
	m.derivation.Observe(seconds)
}

// RPCRequest counts one JSON-RPC call. method must come from a fixed set so
// the label stays bounded.
func (m *Metrics) RPCRequest(method string, ok bool) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(method, result(ok)).Inc()
}

func (m *Metrics) cacheEvent(event string) {
	if m == nil {
		return
	}
	m.cache.WithLabelValues(event).Inc()
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "fail"
}

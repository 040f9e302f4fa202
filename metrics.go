package perksAdmin

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one console counter.
type MetricID uint16

const (
	// MetricRequest counts completed API requests.
	MetricRequest MetricID = iota
	// MetricRequestFailure counts requests answered with a non-2xx status.
	MetricRequestFailure
	// MetricRequestNetworkError counts requests that never got a response.
	MetricRequestNetworkError
	// MetricUnauthorized counts 401 responses.
	MetricUnauthorized
	// MetricCacheHit counts fresh cache reads.
	MetricCacheHit
	// MetricCacheMiss counts reads that had to fetch.
	MetricCacheMiss
	// MetricCacheStale counts reads served stale while revalidating.
	MetricCacheStale
	// MetricCacheDiscarded counts responses dropped because a newer request won.
	MetricCacheDiscarded
	// MetricCacheEvicted counts entries collected after their GC window.
	MetricCacheEvicted
	// MetricCacheFetchFailure counts fetches that failed after retries.
	MetricCacheFetchFailure
	// MetricCacheRevalidate counts background revalidations.
	MetricCacheRevalidate
	// MetricSignInSuccess counts successful sign-ins.
	MetricSignInSuccess
	// MetricSignInFailure counts rejected sign-ins, including validation failures.
	MetricSignInFailure
	// MetricSignOut counts explicit sign-outs.
	MetricSignOut
	// MetricSessionExpired counts sessions ended by a 401.
	MetricSessionExpired
	// MetricBlockToggleSuccess counts accepted block or unblock requests.
	MetricBlockToggleSuccess
	// MetricBlockToggleFailure counts failed block or unblock requests.
	MetricBlockToggleFailure
	// MetricBlockToggleRejected counts toggles rejected while one was in flight.
	MetricBlockToggleRejected
	// MetricPasswordChangeSuccess counts successful password changes.
	MetricPasswordChangeSuccess
	// MetricPasswordChangeFailure counts failed password changes.
	MetricPasswordChangeFailure
	// MetricPasswordResetRequest counts verification codes requested.
	MetricPasswordResetRequest
	// MetricOTPVerifySuccess counts accepted verification codes.
	MetricOTPVerifySuccess
	// MetricOTPVerifyFailure counts rejected verification codes.
	MetricOTPVerifyFailure
	// MetricPasswordResetSuccess counts completed resets.
	MetricPasswordResetSuccess
	// MetricPasswordResetFailure counts failed resets, including expired sessions.
	MetricPasswordResetFailure
	// MetricNotificationCreated counts broadcast notifications sent.
	MetricNotificationCreated
	// MetricRequestLatency is the request latency histogram.
	MetricRequestLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free console counters. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of every counter. Histogram buckets
// are non-cumulative.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates counters according to cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d in the histogram of id. Only [MetricRequestLatency] has a
// histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricRequestLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value reads one counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter. Disabled metrics yield empty maps.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		if id == MetricRequestLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricRequestLatency].buckets[i])
		}
		s.Histograms[MetricRequestLatency] = buckets
	}

	return s
}

// Request latency buckets are wider than an in-process hot path: the upper
// bounds are 50ms, 100ms, 250ms, 500ms, 1s, 2.5s, 5s and +Inf.
func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 50:
		return 0
	case ms <= 100:
		return 1
	case ms <= 250:
		return 2
	case ms <= 500:
		return 3
	case ms <= 1000:
		return 4
	case ms <= 2500:
		return 5
	case ms <= 5000:
		return 6
	default:
		return 7
	}
}

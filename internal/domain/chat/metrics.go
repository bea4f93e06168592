package chat

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// lowConfidenceLogSize bounds the diagnostic ring of weak queries.
const lowConfidenceLogSize = 50

var (
	promRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bytedent_chat_requests_total",
		Help: "Total chat requests processed.",
	})
	promResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bytedent_chat_results_total",
		Help: "Chat results by terminal type.",
	}, []string{"type"})
	promHandoffsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bytedent_chat_handoffs_total",
		Help: "Handoffs by reason.",
	}, []string{"reason"})
	promRequestSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bytedent_chat_request_duration_seconds",
		Help:    "End-to-end request latency.",
		Buckets: prometheus.DefBuckets,
	})
)

// LowConfidenceEntry records a query whose best retrieval score fell
// under the reporting threshold.
type LowConfidenceEntry struct {
	Query    string    `json:"query"`
	TopScore float64   `json:"top_score"`
	SeenAt   time.Time `json:"seen_at"`
}

// MetricsSnapshot is a point-in-time copy of the engine counters.
type MetricsSnapshot struct {
	TotalRequests       int64                `json:"total_requests"`
	TotalAnswers        int64                `json:"total_answers"`
	TotalHandoffs       int64                `json:"total_handoffs"`
	HandoffReasons      map[string]int64     `json:"handoff_reasons"`
	LowConfidence       []LowConfidenceEntry `json:"low_confidence_queries"`
	AvgLatencyMS        float64              `json:"avg_latency_ms"`
	MaxLatencyMS        float64              `json:"max_latency_ms"`
	UptimeSeconds       float64              `json:"uptime_seconds"`
	CacheHits           int64                `json:"cache_hits"`
	CacheMisses         int64                `json:"cache_misses"`
	ActiveConversations int                  `json:"active_conversations"`
}

// Metrics aggregates per-request outcomes. Recording is O(1) under a
// single mutex; Snapshot copies everything out so readers never hold
// writers up for longer than the copy.
type Metrics struct {
	threshold float64
	startedAt time.Time

	mu             sync.Mutex
	totalRequests  int64
	totalAnswers   int64
	totalHandoffs  int64
	handoffReasons map[string]int64
	lowConfidence  []LowConfidenceEntry
	latencySum     time.Duration
	latencyMax     time.Duration
	latencyCount   int64
}

// NewMetrics sets the low-confidence reporting threshold.
func NewMetrics(lowConfidenceThreshold float64) *Metrics {
	return &Metrics{
		threshold:      lowConfidenceThreshold,
		startedAt:      time.Now(),
		handoffReasons: make(map[string]int64),
	}
}

// Record folds one finished request into the aggregates.
func (m *Metrics) Record(res Result, query string, latency time.Duration) {
	promRequestsTotal.Inc()
	promResultsTotal.WithLabelValues(res.Type).Inc()
	promRequestSeconds.Observe(latency.Seconds())
	if res.Type == KindHandoff {
		promHandoffsTotal.WithLabelValues(res.HandoffReason).Inc()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalRequests++
	switch res.Type {
	case KindAnswer:
		m.totalAnswers++
	case KindHandoff:
		m.totalHandoffs++
		m.handoffReasons[res.HandoffReason]++
	}

	// Conversational fast-path answers never ran retrieval, so they
	// carry the no-match sentinel and must not count as low
	// confidence.
	ranRetrieval := res.Type == KindHandoff || res.Retrieval.ChunksRetrieved > 0
	if score := res.Retrieval.TopSimilarityScore; ranRetrieval && score < m.threshold {
		m.lowConfidence = append(m.lowConfidence, LowConfidenceEntry{
			Query:    query,
			TopScore: score,
			SeenAt:   time.Now().UTC(),
		})
		if len(m.lowConfidence) > lowConfidenceLogSize {
			m.lowConfidence = m.lowConfidence[len(m.lowConfidence)-lowConfidenceLogSize:]
		}
	}

	m.latencySum += latency
	m.latencyCount++
	if latency > m.latencyMax {
		m.latencyMax = latency
	}
}

// Snapshot returns a copy of the current aggregates.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	reasons := make(map[string]int64, len(m.handoffReasons))
	for k, v := range m.handoffReasons {
		reasons[k] = v
	}
	low := make([]LowConfidenceEntry, len(m.lowConfidence))
	copy(low, m.lowConfidence)

	snap := MetricsSnapshot{
		TotalRequests:  m.totalRequests,
		TotalAnswers:   m.totalAnswers,
		TotalHandoffs:  m.totalHandoffs,
		HandoffReasons: reasons,
		LowConfidence:  low,
		MaxLatencyMS:   float64(m.latencyMax) / float64(time.Millisecond),
		UptimeSeconds:  time.Since(m.startedAt).Seconds(),
	}
	if m.latencyCount > 0 {
		snap.AvgLatencyMS = float64(m.latencySum) / float64(m.latencyCount) / float64(time.Millisecond)
	}
	return snap
}

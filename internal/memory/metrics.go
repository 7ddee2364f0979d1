package memory

import "github.com/prometheus/client_golang/prometheus"

// engineMetrics tracks window-maintenance and compression activity. The
// collectors work unregistered, so a nil registerer only means the numbers
// are not scraped.
type engineMetrics struct {
	turnsAdded       prometheus.Counter
	turnsEvicted     prometheus.Counter
	turnsSummarized  prometheus.Counter
	summarizations   prometheus.Counter
	compressionRatio prometheus.Gauge
}

func newEngineMetrics(reg prometheus.Registerer) *engineMetrics {
	m := &engineMetrics{
		turnsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kora_memory_turns_added_total",
			Help: "Conversation turns appended to sessions.",
		}),
		turnsEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kora_memory_turns_evicted_total",
			Help: "Turns dropped outright by window maintenance.",
		}),
		turnsSummarized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kora_memory_turns_summarized_total",
			Help: "Turns collapsed into summary turns.",
		}),
		summarizations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kora_memory_summarizations_total",
			Help: "Summarization passes executed.",
		}),
		compressionRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kora_memory_context_compression_ratio",
			Help: "Compression ratio of the most recent context diff.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.turnsAdded, m.turnsEvicted, m.turnsSummarized, m.summarizations, m.compressionRatio)
	}
	return m
}

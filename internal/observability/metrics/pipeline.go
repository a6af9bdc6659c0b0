package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics records question outcomes. It satisfies ports.PipelineObserver.
type PipelineMetrics struct {
	service string

	repliesTotal       *prometheus.CounterVec
	replyDuration      *prometheus.HistogramVec
	relevanceScore     *prometheus.HistogramVec
	generationsTotal   *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
}

func NewPipelineMetrics(registerer prometheus.Registerer, service string) *PipelineMetrics {
	repliesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "replies_total",
			Help:      "Answered questions by reply kind.",
		},
		[]string{"service", "kind"},
	)
	replyDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "reply_duration_seconds",
			Help:      "End-to-end question handling duration by reply kind.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"service", "kind"},
	)
	relevanceScore := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "relevance_score",
			Help:      "Top-1 retrieval score seen by the relevance gate.",
			Buckets:   []float64{0, 0.02, 0.04, 0.06, 0.08, 0.1, 0.15, 0.2, 0.3, 0.5, 0.75, 1},
		},
		[]string{"service", "verdict"},
	)
	generationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "generations_total",
			Help:      "Answer generation attempts by generator and status.",
		},
		[]string{"service", "generator", "status"},
	)
	generationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "generation_duration_seconds",
			Help:      "Answer generation duration in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30, 60, 120, 300},
		},
		[]string{"service", "generator"},
	)

	registerer.MustRegister(repliesTotal, replyDuration, relevanceScore, generationsTotal, generationDuration)

	return &PipelineMetrics{
		service:            service,
		repliesTotal:       repliesTotal,
		replyDuration:      replyDuration,
		relevanceScore:     relevanceScore,
		generationsTotal:   generationsTotal,
		generationDuration: generationDuration,
	}
}

func (m *PipelineMetrics) ObserveReply(kind string, duration time.Duration) {
	m.repliesTotal.WithLabelValues(m.service, kind).Inc()
	m.replyDuration.WithLabelValues(m.service, kind).Observe(duration.Seconds())
}

func (m *PipelineMetrics) ObserveRelevance(score float64, relevant bool) {
	verdict := "off_topic"
	if relevant {
		verdict = "relevant"
	}
	m.relevanceScore.WithLabelValues(m.service, verdict).Observe(score)
}

func (m *PipelineMetrics) ObserveGeneration(generator string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.generationsTotal.WithLabelValues(m.service, generator, status).Inc()
	m.generationDuration.WithLabelValues(m.service, generator).Observe(duration.Seconds())
}

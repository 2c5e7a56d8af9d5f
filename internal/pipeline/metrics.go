package pipeline

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeSuccess = "success"
	outcomeFailed  = "failed"
)

// Metrics holds the pipeline collectors.
type Metrics struct {
	runs          *prometheus.CounterVec
	stageFailures *prometheus.CounterVec
	duration      prometheus.Histogram
}

// NewMetrics creates and registers the pipeline collectors on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "receiptiq_pipeline_runs_total",
				Help: "Extraction pipeline runs by outcome.",
			},
			[]string{"outcome"},
		),
		stageFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "receiptiq_pipeline_stage_failures_total",
				Help: "Extraction pipeline failures by stage.",
			},
			[]string{"stage"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "receiptiq_pipeline_duration_seconds",
			Help:    "Wall time of one extraction pipeline run.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		}),
	}
	for _, c := range []prometheus.Collector{m.runs, m.stageFailures, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(seconds float64, failedStage string) {
	if m == nil {
		return
	}
	m.duration.Observe(seconds)
	if failedStage == "" {
		m.runs.WithLabelValues(outcomeSuccess).Inc()
		return
	}
	m.runs.WithLabelValues(outcomeFailed).Inc()
	m.stageFailures.WithLabelValues(failedStage).Inc()
}

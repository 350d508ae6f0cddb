package telemetry

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "flakeci"

// Metrics — Prometheus метрики одного прогона.
//
// Прогон короткоживущий, поэтому метрики не отдаются по HTTP,
// а выгружаются в textfile для node_exporter (WriteTextfile).
type Metrics struct {
	registry *prometheus.Registry

	subflakes        *prometheus.CounterVec
	subflakeDuration *prometheus.HistogramVec
	stepDuration     *prometheus.HistogramVec
	runs             *prometheus.CounterVec
	runDuration      prometheus.Histogram
}

// NewMetrics создаёт метрики в отдельном реестре.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		subflakes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subflakes_total",
			Help:      "Subflakes by outcome (passed, failed, skipped_deselected, skipped_incompatible)",
		}, []string{"subflake", "outcome"}),
		subflakeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "subflake_duration_seconds",
			Help:      "Duration of a subflake pipeline",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200, 3600},
		}, []string{"subflake", "outcome"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Duration of individual steps",
			Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}, []string{"subflake", "step", "outcome"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "CI runs by outcome",
		}, []string{"outcome"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Total CI run duration",
			Buckets:   []float64{1, 10, 30, 60, 300, 600, 1800, 3600, 7200},
		}),
	}

	m.registry.MustRegister(m.subflakes, m.subflakeDuration, m.stepDuration, m.runs, m.runDuration)
	return m
}

// Registry возвращает реестр метрик.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func outcome(err error) string {
	if err != nil {
		return "failed"
	}
	return "passed"
}

// SubflakeSkipped учитывает пропущенный subflake.
func (m *Metrics) SubflakeSkipped(_ context.Context, name, reason string) {
	m.subflakes.WithLabelValues(name, "skipped_"+reason).Inc()
}

// SubflakeStarted ничего не учитывает: длительность известна по завершении.
func (m *Metrics) SubflakeStarted(context.Context, string) {}

// SubflakeFinished учитывает завершённый subflake.
func (m *Metrics) SubflakeFinished(_ context.Context, name string, d time.Duration, err error) {
	o := outcome(err)
	m.subflakes.WithLabelValues(name, o).Inc()
	m.subflakeDuration.WithLabelValues(name, o).Observe(d.Seconds())
}

// StepFinished учитывает завершённый шаг.
func (m *Metrics) StepFinished(_ context.Context, subflake, step string, d time.Duration, err error) {
	m.stepDuration.WithLabelValues(subflake, step, outcome(err)).Observe(d.Seconds())
}

// RunFinished учитывает завершённый прогон.
func (m *Metrics) RunFinished(_ context.Context, d time.Duration, err error) {
	m.runs.WithLabelValues(outcome(err)).Inc()
	m.runDuration.Observe(d.Seconds())
}

// WriteTextfile выгружает метрики в файл формата textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

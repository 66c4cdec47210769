package observability

import (
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	deliveriesResolvedTotal *prometheus.CounterVec
	deliveriesSkippedTotal  *prometheus.CounterVec
	testCasesTotal          *prometheus.CounterVec
	errorsTotal             *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		deliveriesResolvedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "wptgen_deliveries_resolved_total", Help: "Total policy deliveries kept after expansion"},
			[]string{"source_context"},
		),
		deliveriesSkippedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "wptgen_deliveries_skipped_total", Help: "Total policy deliveries omitted during expansion"},
			[]string{"source_context", "reason"},
		),
		testCasesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "wptgen_test_cases_total", Help: "Total generated test cases"},
			[]string{"scenario"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "wptgen_errors_total", Help: "Total generation errors"},
			[]string{"stage"},
		),
	}

	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	reg.MustRegister(
		m.deliveriesResolvedTotal,
		m.deliveriesSkippedTotal,
		m.testCasesTotal,
		m.errorsTotal,
	)
	m.gatherer = reg

	return m
}

func (m *Metrics) ObserveContext(sourceContext string, resolved int, skipped map[string]int) {
	if m == nil {
		return
	}
	m.deliveriesResolvedTotal.WithLabelValues(sourceContext).Add(float64(resolved))
	for reason, count := range skipped {
		m.deliveriesSkippedTotal.WithLabelValues(sourceContext, reason).Add(float64(count))
	}
}

func (m *Metrics) ObserveTestCase(scenario string) {
	if m == nil {
		return
	}
	m.testCasesTotal.WithLabelValues(scenario).Inc()
}

func (m *Metrics) ObserveError(stage string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(stage).Inc()
}

// WriteTextfile dumps the registry in the text exposition format, for
// collection by a node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, m.gatherer)
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ExportResultOK       = "ok"
	ExportResultInvalid  = "invalid"
	ExportResultTemplate = "template_unavailable"
	ExportResultInternal = "internal"
)

// ExportMetrics tracks spreadsheet export latency, outcome and sheet fan-out.
type ExportMetrics struct {
	duration *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
	sheets   prometheus.Histogram
}

func NewExportMetrics(reg prometheus.Registerer) *ExportMetrics {
	if reg == nil {
		return &ExportMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mukayese_export_duration_seconds",
		Help:    "Time spent rendering comparison exports.",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"mode"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mukayese_export_total",
		Help: "Comparison exports by mode and result.",
	}, []string{"mode", "result"})
	sheets := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "mukayese_export_sheets",
		Help:    "Sheets emitted per template export.",
		Buckets: []float64{1, 2, 3, 5, 8, 13},
	})
	reg.MustRegister(duration, outcomes, sheets)
	return &ExportMetrics{duration: duration, outcomes: outcomes, sheets: sheets}
}

func (m *ExportMetrics) Observe(mode, result string, elapsed time.Duration) {
	if m == nil || m.outcomes == nil {
		return
	}
	mode = normalizeLabel(mode)
	m.outcomes.WithLabelValues(mode, normalizeLabel(result)).Inc()
	if result == ExportResultOK {
		m.duration.WithLabelValues(mode).Observe(elapsed.Seconds())
	}
}

func (m *ExportMetrics) ObserveSheets(count int) {
	if m == nil || m.sheets == nil {
		return
	}
	m.sheets.Observe(float64(count))
}

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestExportMetricsCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewExportMetrics(reg)

	m.Observe("template", ExportResultOK, 300*time.Millisecond)
	m.Observe("template", ExportResultTemplate, 0)
	m.Observe("csv", ExportResultOK, 10*time.Millisecond)
	m.ObserveSheets(3)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	family := findMetricFamily(mfs, "mukayese_export_total")
	require.NotNil(t, family)
	require.Len(t, family.GetMetric(), 3)

	sum, err := fetchHistogramSum(mfs, "mukayese_export_duration_seconds", "mode", "template")
	require.NoError(t, err)
	require.InDelta(t, 0.3, sum, 0.0001)

	sheets := findMetricFamily(mfs, "mukayese_export_sheets")
	require.NotNil(t, sheets)
	require.Equal(t, float64(3), sheets.GetMetric()[0].GetHistogram().GetSampleSum())
}

func TestExportMetricsNilSafe(t *testing.T) {
	var m *ExportMetrics
	m.Observe("csv", ExportResultOK, time.Second)
	m.ObserveSheets(1)

	empty := NewExportMetrics(nil)
	empty.Observe("csv", ExportResultOK, time.Second)
	empty.ObserveSheets(1)
}

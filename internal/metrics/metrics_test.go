package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	return m.GetGauge().GetValue()
}

func TestRecordNID_Valid(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordNID(true, 3)

	assert.Equal(t, 1.0, counterValue(t, m.NIDValidTotal))
	assert.Equal(t, 0.0, counterValue(t, m.NIDInvalidTotal))
}

func TestRecordNID_Invalid(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordNID(false, 0)

	assert.Equal(t, 0.0, counterValue(t, m.NIDValidTotal))
	assert.Equal(t, 1.0, counterValue(t, m.NIDInvalidTotal))
}

func TestSetSyncLock_TogglesGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.SetSyncLock(true)
	assert.Equal(t, 1.0, gaugeValue(t, m.SyncLocked))

	m.SetSyncLock(false)
	assert.Equal(t, 0.0, gaugeValue(t, m.SyncLocked))
}

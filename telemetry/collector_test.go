package telemetry

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gathered returns the value of the metric with the given name and labels.
func gathered(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) (float64, bool) {
	families, err := reg.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	metrics:
		for _, m := range family.GetMetric() {
			for _, pair := range m.GetLabel() {
				if labels[pair.GetName()] != pair.GetValue() {
					continue metrics
				}
			}
			if m.GetCounter() != nil {
				return m.GetCounter().GetValue(), true
			}
			return m.GetGauge().GetValue(), true
		}
	}
	return 0, false
}

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	now := time.Unix(1700000000, 0)
	c.Observe(NewReading(uuid.New(), now, map[string]map[string]float64{
		"heating_circuits[0]": {"supply_temperature": 35.2},
		"heatpump":            {"electrical_power": 1800},
	}, nil))

	val, ok := gathered(t, reg, "solarfocus_register_value", map[string]string{"component": "heating_circuits[0]", "register": "supply_temperature"})
	require.True(t, ok)
	assert.InDelta(t, 35.2, val, 1e-9)

	val, _ = gathered(t, reg, "solarfocus_healthy", nil)
	assert.Equal(t, 1.0, val)
	val, _ = gathered(t, reg, "solarfocus_last_update_timestamp_seconds", nil)
	assert.Equal(t, 1700000000.0, val)

	c.Observe(NewReading(uuid.New(), now.Add(time.Minute), map[string]map[string]float64{}, []string{"heatpump"}))

	val, _ = gathered(t, reg, "solarfocus_healthy", nil)
	assert.Equal(t, 0.0, val)
	val, _ = gathered(t, reg, "solarfocus_updates_total", map[string]string{"result": "failure"})
	assert.Equal(t, 1.0, val)
	val, _ = gathered(t, reg, "solarfocus_updates_total", map[string]string{"result": "success"})
	assert.Equal(t, 1.0, val)

	// values of failed components are kept
	val, _ = gathered(t, reg, "solarfocus_register_value", map[string]string{"component": "heatpump", "register": "electrical_power"})
	assert.Equal(t, 1800.0, val)
}

func TestCollectorRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector(reg)
	require.NoError(t, err)

	_, err = NewCollector(reg)
	assert.Error(t, err)
}

func TestNewReading(t *testing.T) {
	deviceID := uuid.New()
	r := NewReading(deviceID, time.Now(), nil, []string{"boilers[0]"})

	assert.NotEqual(t, uuid.Nil, r.ID)
	assert.Equal(t, deviceID, r.DeviceID)
	assert.False(t, r.Healthy)
}

package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "solarfocus"

// Collector exposes the latest readings as Prometheus metrics.
type Collector struct {
	values     *prometheus.GaugeVec
	healthy    prometheus.Gauge
	updates    *prometheus.CounterVec
	lastUpdate prometheus.Gauge
}

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		values: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "register_value",
			Help:      "Scaled value of a controller register",
		}, []string{"component", "register"}),
		healthy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "healthy",
			Help:      "1 if every component was read in the last update",
		}),
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_total",
			Help:      "Number of updates by result",
		}, []string{"result"}),
		lastUpdate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_update_timestamp_seconds",
			Help:      "Time of the last update",
		}),
	}

	for _, collector := range []prometheus.Collector{c.values, c.healthy, c.updates, c.lastUpdate} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	return c, nil
}

// Observe records a reading. Values of components that failed keep their previous reading.
func (c *Collector) Observe(r Reading) {
	for component, values := range r.Values {
		for register, value := range values {
			c.values.WithLabelValues(component, register).Set(value)
		}
	}

	result := "success"
	healthy := 1.0
	if !r.Healthy {
		result = "failure"
		healthy = 0
	}
	c.healthy.Set(healthy)
	c.updates.WithLabelValues(result).Inc()
	c.lastUpdate.Set(float64(r.Time.Unix()))
}

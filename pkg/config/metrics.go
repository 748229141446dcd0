package config

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes configuration health of one component.
// Metric names are prefixed with the component name, e.g. worker_config_fallbacks_total.
type Metrics struct {
	LoadTimestamp  prometheus.Gauge
	FallbacksTotal *prometheus.CounterVec
	FallbackActive prometheus.Gauge
}

// NewMetrics registers component metrics on the default registerer.
// Call it once per component and process.
func NewMetrics(component string) *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer, component)
}

// NewMetricsWith registers component metrics on reg.
func NewMetricsWith(reg prometheus.Registerer, component string) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LoadTimestamp: f.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_config_load_timestamp", component),
			Help: fmt.Sprintf("Unix timestamp of last %s configuration load", component),
		}),
		FallbacksTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_config_fallbacks_total", component),
			Help: fmt.Sprintf("Total number of %s configuration values replaced by defaults", component),
		}, []string{"field"}),
		FallbackActive: f.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_config_fallback_active", component),
			Help: fmt.Sprintf("1 if any %s configuration fallback is active, 0 otherwise", component),
		}),
	}
}

// Observe records a finished load. fallbacks lists the fields that fell back to defaults.
func (m *Metrics) Observe(fallbacks []string) {
	m.LoadTimestamp.SetToCurrentTime()
	for _, field := range fallbacks {
		m.FallbacksTotal.WithLabelValues(field).Inc()
	}
	if len(fallbacks) > 0 {
		m.FallbackActive.Set(1)
	} else {
		m.FallbackActive.Set(0)
	}
}

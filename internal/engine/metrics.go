package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	transitions  prometheus.Counter
	buttonEvents *prometheus.CounterVec
	inputs       prometheus.Counter
	dropped      prometheus.Counter
	activeSet    prometheus.Gauge
	saves        *prometheus.CounterVec
}

func newMetrics(reg *prometheus.Registry) *metrics {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &metrics{
		transitions: f.NewCounter(prometheus.CounterOpts{
			Name: "padmapper_dpad_transitions_total",
			Help: "Committed D-pad direction changes.",
		}),
		buttonEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "padmapper_button_events_total",
			Help: "Direction button presses and releases.",
		}, []string{"state"}),
		inputs: f.NewCounter(prometheus.CounterOpts{
			Name: "padmapper_input_events_total",
			Help: "Raw hat readings accepted by the engine.",
		}),
		dropped: f.NewCounter(prometheus.CounterOpts{
			Name: "padmapper_input_events_dropped_total",
			Help: "Raw hat readings dropped because the engine queue was full.",
		}),
		activeSet: f.NewGauge(prometheus.GaugeOpts{
			Name: "padmapper_active_set",
			Help: "Currently active button set.",
		}),
		saves: f.NewCounterVec(prometheus.CounterOpts{
			Name: "padmapper_profile_saves_total",
			Help: "Profile save attempts.",
		}, []string{"result"}),
	}
}

package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/progressforms/pkg/domain"
)

// Metrics counts navigation activity.
type Metrics struct {
	transitions *prometheus.CounterVec
	entered     *prometheus.CounterVec
	failures    *prometheus.CounterVec
	completed   prometheus.Counter
	registerer  prometheus.Registerer
}

// NewMetrics creates and registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "progressforms_transitions_total",
				Help: "Navigation requests by outcome",
			},
			[]string{"kind"},
		),
		entered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "progressforms_panel_entered_total",
				Help: "Times a panel became current",
			},
			[]string{"panel_id"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "progressforms_validation_failures_total",
				Help: "Blocked forward steps by blamed field",
			},
			[]string{"panel_id", "field"},
		),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "progressforms_last_panel_entered_total",
			Help: "Times the last panel was reached",
		}),
		registerer: reg,
	}

	for _, c := range []prometheus.Collector{m.transitions, m.entered, m.failures, m.completed} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Callbacks records panel entries, validation failures and completions.
func (m *Metrics) Callbacks() domain.Callbacks {
	return domain.Callbacks{
		OnNext: func(_, entered domain.Panel) {
			m.entered.WithLabelValues(entered.ID).Inc()
		},
		OnPrev: func(_, entered domain.Panel) {
			m.entered.WithLabelValues(entered.ID).Inc()
		},
		OnValidationFailed: func(ref domain.FieldRef) {
			field := ref.Name
			if ref.Group != "" {
				field = ref.Group
			}
			m.failures.WithLabelValues(ref.PanelID, field).Inc()
		},
		OnLastPanelEntered: func() {
			m.completed.Inc()
		},
	}
}

// ObserveTransition counts a request outcome, including no-ops and ignored
// clicks that raise no events.
func (m *Metrics) ObserveTransition(t domain.Transition) {
	m.transitions.WithLabelValues(string(t.Kind)).Inc()
}

// RegisterActiveSessions exposes a gauge read from fn at scrape time.
func (m *Metrics) RegisterActiveSessions(fn func() float64) error {
	return m.registerer.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "progressforms_sessions_in_flight",
		Help: "Session operations currently holding a lock",
	}, fn))
}

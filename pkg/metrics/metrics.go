package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rulebase_agent"

// Metrics groups the agent's collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests         *prometheus.CounterVec
	requestDuration  prometheus.Histogram
	steps            *prometheus.CounterVec
	toolErrors       *prometheus.CounterVec
	plannerFallbacks *prometheus.CounterVec
}

func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Agent runs by outcome.",
		}, []string{"outcome"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Wall time of a full agent run.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Executed steps by tool.",
		}, []string{"tool"}),
		toolErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_errors_total",
			Help:      "Tool runs that failed and were captured as error output.",
		}, []string{"tool"}),
		plannerFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "planner_fallbacks_total",
			Help:      "Planner responses repaired locally, by kind.",
		}, []string{"kind"}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.requests, m.requestDuration, m.steps, m.toolErrors, m.plannerFallbacks} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func MustNew(reg prometheus.Registerer) *Metrics {
	m, err := New(reg)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Metrics) ObserveRequest(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
	m.requestDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) IncStep(tool string) {
	if m == nil {
		return
	}
	m.steps.WithLabelValues(tool).Inc()
}

func (m *Metrics) IncToolError(tool string) {
	if m == nil {
		return
	}
	m.toolErrors.WithLabelValues(tool).Inc()
}

func (m *Metrics) IncPlannerFallback(kind string) {
	if m == nil {
		return
	}
	m.plannerFallbacks.WithLabelValues(kind).Inc()
}

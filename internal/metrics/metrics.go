// Package metrics wires the engine's progress signals into a Prometheus
// registry, following Cizor-spacetime-constellation-sim's
// internal/observability.NewNBICollector register-with-fallback pattern.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the run-level metrics a CLI invocation exposes (spec
// §6 "Metrics").
type Collector struct {
	gatherer prometheus.Gatherer

	DaysSimulated  prometheus.Counter
	SSATransitions *prometheus.CounterVec
	PhaseDuration  *prometheus.HistogramVec
	RunInfo        *prometheus.GaugeVec
}

// NewCollector registers the run metrics against reg, defaulting to the
// global Prometheus registry when reg is nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	days, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "siminf_days_simulated_total",
		Help: "Total number of simulated days completed across all runs in this process.",
	}), "siminf_days_simulated_total")
	if err != nil {
		return nil, err
	}

	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "siminf_ssa_transitions_total",
		Help: "Total number of SSA transitions fired, labeled by partition.",
	}, []string{"partition"})
	transitions, err = registerCounterVec(reg, transitions, "siminf_ssa_transitions_total")
	if err != nil {
		return nil, err
	}

	phase := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "siminf_phase_duration_seconds",
		Help:    "Wall-clock duration of one day-loop phase, labeled by phase name.",
		Buckets: prometheus.DefBuckets,
	}, []string{"phase"})
	phase, err = registerHistogramVec(reg, phase, "siminf_phase_duration_seconds")
	if err != nil {
		return nil, err
	}

	info := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "siminf_run_info",
		Help: "Constant 1, labeled by run_id/seed/threads, identifying the current run.",
	}, []string{"run_id", "seed", "threads"})
	info, err = registerGaugeVec(reg, info, "siminf_run_info")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:       gatherer,
		DaysSimulated:  days,
		SSATransitions: transitions,
		PhaseDuration:  phase,
		RunInfo:        info,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetRunInfo stamps the run_info gauge for runID/seed/nthread. Safe to
// call on a nil Collector (no-op), so callers don't need to guard every
// call site when metrics were not requested.
func (c *Collector) SetRunInfo(runID string, seed uint64, nthread int) {
	if c == nil || c.RunInfo == nil {
		return
	}
	c.RunInfo.WithLabelValues(runID, fmt.Sprintf("%d", seed), fmt.Sprintf("%d", nthread)).Set(1)
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return c, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

// Package metrics exports engine activity as Prometheus metrics. A Collector
// is attached to an engine through its lifecycle callbacks:
//
//	reg := prometheus.NewRegistry()
//	c := metrics.New(reg)
//	e := engine.New(func(o *engine.Options) { o.Callbacks = c.Callbacks() })
package metrics

import (
	"context"
	"errors"

	"github.com/hupe1980/conceptmesh/core"
	"github.com/hupe1980/conceptmesh/engine"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "conceptmesh"

// Collector holds the engine metrics.
type Collector struct {
	processed    *prometheus.CounterVec
	fallbacks    *prometheus.CounterVec
	violations   prometheus.Counter
	reconfigures prometheus.Counter
	margin       prometheus.Gauge
	secondary    prometheus.Gauge
	stability    prometheus.Gauge
	duration     *prometheus.HistogramVec
	retained     prometheus.Histogram
}

// New registers the metrics with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		// Labels: branch, status (success, fallback)
		processed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "processed_total",
			Help:      "Total Process calls by branch and status",
		}, []string{"branch", "status"}),

		// Labels: reason (not_initialized, no_concepts, scorer, composer, canceled, other)
		fallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "fallbacks_total",
			Help:      "Total fallback results by reason",
		}, []string{"reason"}),

		violations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "violations_total",
			Help:      "Total recorded violations",
		}),

		reconfigures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "reconfigures_total",
			Help:      "Total committed reconfigurations",
		}),

		margin: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "config",
			Name:      "margin",
			Help:      "Current adaptive margin",
		}),

		secondary: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "config",
			Name:      "secondary",
			Help:      "Current secondary value",
		}),

		stability: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "stability_count",
			Help:      "Consecutive stable calls",
		}),

		// Labels: branch
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "process_duration_seconds",
			Help:      "Process call latency in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"branch"}),

		retained: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "retained_edges",
			Help:      "Edges retained by the capacity filter per call",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
}

// Callbacks returns the engine callbacks feeding this collector.
func (c *Collector) Callbacks() []engine.Callback {
	return []engine.Callback{
		engine.NewFunctionCallback(engine.CallbackAfterProcess, c.observeProcess),
		engine.NewFunctionCallback(engine.CallbackOnFallback, c.observeFallback),
		engine.NewFunctionCallback(engine.CallbackOnViolation, c.observeViolation),
		engine.NewFunctionCallback(engine.CallbackAfterReconfigure, c.observeReconfigure),
	}
}

func (c *Collector) observeProcess(_ context.Context, cc *engine.CallbackContext) error {
	if cc.Result == nil {
		return nil
	}
	r := cc.Result
	status := "success"
	if !r.Success {
		status = "fallback"
	}
	c.processed.WithLabelValues(r.Branch, status).Inc()
	c.duration.WithLabelValues(r.Branch).Observe(r.Duration.Seconds())
	if r.Success {
		c.retained.Observe(float64(r.EdgesRetained))
	}
	c.observeState(cc)
	return nil
}

func (c *Collector) observeFallback(_ context.Context, cc *engine.CallbackContext) error {
	c.fallbacks.WithLabelValues(Reason(cc.Err)).Inc()
	return nil
}

func (c *Collector) observeViolation(_ context.Context, cc *engine.CallbackContext) error {
	c.violations.Inc()
	c.observeState(cc)
	return nil
}

func (c *Collector) observeReconfigure(_ context.Context, cc *engine.CallbackContext) error {
	c.reconfigures.Inc()
	c.observeState(cc)
	return nil
}

func (c *Collector) observeState(cc *engine.CallbackContext) {
	c.margin.Set(cc.Config.Margin)
	c.secondary.Set(cc.Config.Secondary)
	c.stability.Set(float64(cc.State.StabilityCount))
}

// Reason maps a fallback error to a low-cardinality label value.
func Reason(err error) string {
	switch {
	case err == nil:
		return "other"
	case errors.Is(err, core.ErrNotInitialized):
		return "not_initialized"
	case errors.Is(err, core.ErrNoConcepts):
		return "no_concepts"
	case errors.Is(err, core.ErrScorer):
		return "scorer"
	case errors.Is(err, core.ErrComposer):
		return "composer"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}

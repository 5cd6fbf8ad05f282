// Package metrics exports stage and queue metrics to Prometheus.
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fxsml/stagepipe/pipe/middleware"
)

const namespace = "stagepipe"

// Metrics holds the Prometheus collectors of a pipeline.
type Metrics struct {
	ItemsTotal   *prometheus.CounterVec
	ItemDuration *prometheus.HistogramVec
	InFlight     *prometheus.GaugeVec
	Retries      *prometheus.CounterVec

	reg prometheus.Registerer
}

// New registers the pipeline metrics with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		ItemsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "items_total",
				Help:      "Items handled by a stage, by result",
			},
			[]string{"stage", "result"},
		),
		ItemDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "item_duration_seconds",
				Help:      "Time spent handling one item",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"stage"},
		),
		InFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "items_in_flight",
				Help:      "Items currently handled by a stage",
			},
			[]string{"stage"},
		),
		Retries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "retries_total",
				Help:      "Items that ended with a retry error",
			},
			[]string{"stage"},
		),
		reg: reg,
	}
}

// Collector returns a middleware.MetricsCollector recording under stage.
func (m *Metrics) Collector(stage string) middleware.MetricsCollector {
	return func(x *middleware.Metrics) {
		m.ItemsTotal.WithLabelValues(stage, x.Outcome().String()).Inc()
		m.ItemDuration.WithLabelValues(stage).Observe(x.Duration.Seconds())
		if x.Retry() == 1 {
			m.Retries.WithLabelValues(stage).Inc()
		}
	}
}

// TrackInFlight keeps stagepipe_items_in_flight{stage} at the number of
// calls currently inside the wrapped function.
func TrackInFlight[In, Out any](m *Metrics, stage string) middleware.Middleware[In, Out] {
	gauge := m.InFlight.WithLabelValues(stage)
	return func(next middleware.ProcessFunc[In, Out]) middleware.ProcessFunc[In, Out] {
		return func(ctx context.Context, in In) (Out, error) {
			gauge.Inc()
			defer gauge.Dec()
			return next(ctx, in)
		}
	}
}

// Middleware returns the in-flight, result and duration metrics for stage.
func Middleware[In, Out any](m *Metrics, stage string) middleware.Middleware[In, Out] {
	track := TrackInFlight[In, Out](m, stage)
	measure := middleware.MetricsMiddleware[In, Out](m.Collector(stage))
	return func(next middleware.ProcessFunc[In, Out]) middleware.ProcessFunc[In, Out] {
		return track(measure(next))
	}
}

// Lener reports a length. *channel.Queue satisfies it.
type Lener interface {
	Len() int
}

// ObserveQueue exports the current length of q as
// stagepipe_queue_length{queue=name}.
func (m *Metrics) ObserveQueue(name string, q Lener) error {
	g := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "queue_length",
			Help:        "Items waiting in a queue",
			ConstLabels: prometheus.Labels{"queue": name},
		},
		func() float64 { return float64(q.Len()) },
	)
	if err := m.reg.Register(g); err != nil {
		return fmt.Errorf("metrics: observe queue %s: %w", name, err)
	}
	return nil
}

package metrics

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink exports compilation records as Prometheus metrics.
type PrometheusSink struct {
	compilations *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	steps        prometheus.Histogram
	warnings     prometheus.Counter
	features     *prometheus.CounterVec
}

// NewPrometheusSink creates the collectors and registers them with reg.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	s := &PrometheusSink{
		compilations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowc",
			Name:      "compilations_total",
			Help:      "Compilations by outcome and failing stage.",
		}, []string{"success", "stage", "error_type"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "flowc",
			Name:      "compilation_duration_milliseconds",
			Help:      "Wall time of one pipeline run.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		}, []string{"success"}),
		steps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flowc",
			Name:      "workflow_steps",
			Help:      "Compiled steps per workflow, nested steps included.",
			Buckets:   prometheus.LinearBuckets(1, 2, 10),
		}),
		warnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flowc",
			Name:      "warnings_total",
			Help:      "Compiler and workflow check warnings.",
		}),
		features: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowc",
			Name:      "ir_features_total",
			Help:      "IR sections seen by the compiler.",
		}, []string{"feature"}),
	}

	for _, c := range []prometheus.Collector{s.compilations, s.duration, s.steps, s.warnings, s.features} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *PrometheusSink) Record(_ context.Context, rec CompilationRecord) error {
	success := strconv.FormatBool(rec.Success)
	s.compilations.WithLabelValues(success, rec.Stage, rec.ErrorType).Inc()
	s.duration.WithLabelValues(success).Observe(rec.CompilationTimeMS)
	if rec.Success {
		s.steps.Observe(float64(rec.StepCount))
	}
	s.warnings.Add(float64(rec.WarningCount))
	for _, f := range rec.Features {
		s.features.WithLabelValues(f).Inc()
	}
	return nil
}

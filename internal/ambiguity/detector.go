package ambiguity

import (
	"log/slog"
)

// Detector runs detection layers in a fixed order and merges their results.
type Detector struct {
	layers []DetectionLayer
	logger *slog.Logger
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithLayers replaces the default layers.
func WithLayers(layers ...DetectionLayer) DetectorOption {
	return func(d *Detector) {
		d.layers = layers
	}
}

// WithLogger sets the logger used for per-layer diagnostics.
func WithLogger(logger *slog.Logger) DetectorOption {
	return func(d *Detector) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDetector creates a detector with the five default layers.
func NewDetector(opts ...DetectorOption) *Detector {
	d := &Detector{
		layers: DefaultLayers(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect runs every layer against in and returns the merged report.
func (d *Detector) Detect(in Input) Report {
	results := make([]LayerResult, 0, len(d.layers))
	for _, layer := range d.layers {
		r := layer.Detect(in)
		stampLayer(&r, layer.Name())
		d.logger.Debug("ambiguity layer",
			"layer", layer.Name(),
			"must_confirm", len(r.MustConfirm),
			"should_review", len(r.ShouldReview),
			"looks_good", len(r.LooksGood))
		results = append(results, r)
	}

	rep := Merge(results, in.Grounded)
	d.logger.Info("ambiguity report",
		"must_confirm", len(rep.MustConfirm),
		"should_review", len(rep.ShouldReview),
		"looks_good", len(rep.LooksGood),
		"overall_confidence", rep.OverallConfidence)
	return rep
}

// stampLayer fills in the layer name on items that did not set one.
func stampLayer(r *LayerResult, name string) {
	for _, items := range [][]Item{r.MustConfirm, r.ShouldReview, r.LooksGood} {
		for i := range items {
			if items[i].Layer == "" {
				items[i].Layer = name
			}
		}
	}
}

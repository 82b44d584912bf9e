package ambiguity

// DetectionLayer inspects the input from one angle and triages what it finds.
// Implementations must be pure: the same Input always yields the same result.
type DetectionLayer interface {
	Name() string
	Detect(in Input) LayerResult
}

// DefaultLayers returns the five built-in layers in detector order.
func DefaultLayers() []DetectionLayer {
	return []DetectionLayer{
		ConfidenceLayer{},
		PatternLayer{},
		ConflictLayer{},
		VagueLanguageLayer{},
		RiskLayer{},
	}
}

// Confidence thresholds shared by the layers.
const (
	lowConfidence      = 0.5
	highConfidence     = 0.8
	mismatchThreshold  = 0.3
	thresholdTolerance = 1e-9
)

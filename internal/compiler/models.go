package compiler

// Model preference tiers.
const (
	TierFast     = "fast"
	TierBalanced = "balanced"
	TierAccurate = "accurate"
)

// ModelSpec is the model, temperature and token budget for one tier.
type ModelSpec struct {
	Model       string  `json:"model" mapstructure:"model" validate:"required"`
	Temperature float64 `json:"temperature" mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `json:"max_tokens" mapstructure:"max_tokens" validate:"min=1"`
}

// DefaultModelTiers returns a fresh copy of the built-in tier table.
func DefaultModelTiers() map[string]ModelSpec {
	return map[string]ModelSpec{
		TierFast:     {Model: "gpt-4o-mini", Temperature: 0.2, MaxTokens: 1024},
		TierBalanced: {Model: "gpt-4o", Temperature: 0.3, MaxTokens: 2048},
		TierAccurate: {Model: "gpt-4.1", Temperature: 0.1, MaxTokens: 4096},
	}
}

// defaultTier is the tier used when an operation sets no model preference.
var defaultTier = map[string]string{
	"summarize": TierBalanced,
	"extract":   TierAccurate,
	"classify":  TierFast,
	"sentiment": TierFast,
	"generate":  TierBalanced,
	"decide":    TierAccurate,
}

// DefaultTier returns the tier used for an AI operation type.
func DefaultTier(opType string) string {
	if t, ok := defaultTier[opType]; ok {
		return t
	}
	return TierBalanced
}

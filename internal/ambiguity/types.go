package ambiguity

import "strings"

// Layer names, in detector order.
const (
	LayerConfidence = "confidence"
	LayerPatterns   = "patterns"
	LayerConflicts  = "conflicts"
	LayerVague      = "vague"
	LayerRisk       = "risk"
)

// Option is one resolution a reviewer can pick for an item.
type Option struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// Item is a single finding placed in one of the report buckets.
type Item struct {
	ID                   string   `json:"id"`
	Layer                string   `json:"layer"`
	Kind                 string   `json:"kind"`
	Title                string   `json:"title"`
	Description          string   `json:"description"`
	Options              []Option `json:"options,omitempty"`
	RecommendedOption    string   `json:"recommended_option,omitempty"`
	SourceAssumptionID   string   `json:"source_assumption_id,omitempty"`
	RelatedAssumptionIDs []string `json:"related_assumption_ids,omitempty"`
	Term                 string   `json:"term,omitempty"`
	Confidence           float64  `json:"confidence"`
}

// LayerResult is what one detection layer reports.
type LayerResult struct {
	MustConfirm  []Item `json:"must_confirm"`
	ShouldReview []Item `json:"should_review"`
	LooksGood    []Item `json:"looks_good"`
}

// Len returns the number of items across all buckets.
func (r LayerResult) Len() int {
	return len(r.MustConfirm) + len(r.ShouldReview) + len(r.LooksGood)
}

// GroundingAmbiguity records an assumption that matched several real values.
type GroundingAmbiguity struct {
	AssumptionID string        `json:"assumption_id"`
	Description  string        `json:"description"`
	Alternatives []Alternative `json:"alternatives"`
}

// Report is the merged output of all layers.
type Report struct {
	MustConfirm          []Item               `json:"must_confirm"`
	ShouldReview         []Item               `json:"should_review"`
	LooksGood            []Item               `json:"looks_good"`
	GroundingAmbiguities []GroundingAmbiguity `json:"grounding_ambiguities"`
	OverallConfidence    float64              `json:"overall_confidence"`
}

// Blocking reports whether formalization must wait for a human.
func (r Report) Blocking() bool {
	return len(r.MustConfirm) > 0
}

// Assumption is something the semantic plan took for granted.
type Assumption struct {
	ID            string  `json:"id"`
	Category      string  `json:"category"`
	Description   string  `json:"description"`
	ImpactIfWrong string  `json:"impact_if_wrong"`
	Confidence    float64 `json:"confidence"`
}

// Alternative is a candidate value found while grounding an assumption.
type Alternative struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// GroundingResult is the outcome of checking one assumption against real data.
type GroundingResult struct {
	AssumptionID string        `json:"assumption_id"`
	Validated    bool          `json:"validated"`
	Confidence   float64       `json:"confidence"`
	Error        string        `json:"error,omitempty"`
	Evidence     string        `json:"evidence,omitempty"`
	Alternatives []Alternative `json:"alternatives,omitempty"`
}

// GroupingIntent is the planner's reading of how results are grouped.
type GroupingIntent struct {
	NeedsGrouping bool   `json:"needs_grouping"`
	GroupBy       string `json:"group_by"`
	PerGroup      bool   `json:"per_group"`
}

// DeliveryIntent is the planner's reading of how results are delivered.
type DeliveryIntent struct {
	Method     string   `json:"method"`
	Recipients []string `json:"recipients"`
}

type Understanding struct {
	Grouping *GroupingIntent `json:"grouping,omitempty"`
	Delivery *DeliveryIntent `json:"delivery,omitempty"`
}

type Inference struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	BasedOn     []string `json:"based_on"`
	Confidence  float64  `json:"confidence"`
}

// Ambiguity is an open question the planner could not settle on its own.
type Ambiguity struct {
	ID                    string   `json:"id"`
	Field                 string   `json:"field"`
	Question              string   `json:"question"`
	PossibleResolutions   []string `json:"possible_resolutions"`
	RequiresUserInput     bool     `json:"requires_user_input"`
	RecommendedResolution string   `json:"recommended_resolution,omitempty"`
}

// SemanticPlan is the upstream, ambiguity-tolerant draft of the request.
type SemanticPlan struct {
	Goal          string        `json:"goal"`
	Understanding Understanding `json:"understanding"`
	Assumptions   []Assumption  `json:"assumptions"`
	Inferences    []Inference   `json:"inferences"`
	Ambiguities   []Ambiguity   `json:"ambiguities"`
}

// Assumption returns the assumption with the given id.
func (p SemanticPlan) Assumption(id string) (Assumption, bool) {
	for _, a := range p.Assumptions {
		if a.ID == id {
			return a, true
		}
	}
	return Assumption{}, false
}

// GroundedPlan carries the grounding results for a semantic plan.
type GroundedPlan struct {
	GroundingResults    []GroundingResult `json:"grounding_results"`
	GroundingConfidence float64           `json:"grounding_confidence"`
}

type PromptSections struct {
	Data            []string `json:"data"`
	Actions         []string `json:"actions"`
	Output          []string `json:"output"`
	Delivery        []string `json:"delivery"`
	ProcessingSteps []string `json:"processing_steps"`
}

// EnhancedPrompt is the user's request plus the structured sections
// extracted from it upstream.
type EnhancedPrompt struct {
	OriginalPrompt string         `json:"original_prompt"`
	Sections       PromptSections `json:"sections"`
}

// Text joins the original prompt with every section line.
func (p EnhancedPrompt) Text() string {
	parts := []string{p.OriginalPrompt}
	for _, section := range [][]string{
		p.Sections.Data,
		p.Sections.Actions,
		p.Sections.Output,
		p.Sections.Delivery,
		p.Sections.ProcessingSteps,
	} {
		parts = append(parts, section...)
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// Input bundles everything a layer may inspect.
type Input struct {
	Prompt   EnhancedPrompt `json:"enhanced_prompt"`
	Semantic SemanticPlan   `json:"semantic_plan"`
	Grounded GroundedPlan   `json:"grounded_plan"`
}

package ambiguity

import (
	"fmt"
	"strings"
)

// ConfidenceLayer compares each grounding result with the semantic
// confidence of the assumption it checked.
type ConfidenceLayer struct{}

func (ConfidenceLayer) Name() string { return LayerConfidence }

func (l ConfidenceLayer) Detect(in Input) LayerResult {
	var res LayerResult
	for _, gr := range in.Grounded.GroundingResults {
		a, known := in.Semantic.Assumption(gr.AssumptionID)
		item := Item{
			ID:                 qualify(LayerConfidence, gr.AssumptionID),
			Layer:              LayerConfidence,
			Title:              assumptionTitle(a, gr.AssumptionID),
			SourceAssumptionID: gr.AssumptionID,
			Confidence:         gr.Confidence,
		}

		switch {
		case strings.Contains(strings.ToLower(gr.Error), "not implemented"):
			item.Kind = "fake_validation"
			item.Description = "This assumption was not actually checked against your data: " + gr.Error
			item.Options = confirmOptions()
			res.MustConfirm = append(res.MustConfirm, item)

		case gr.Validated && known && a.Confidence-gr.Confidence >= mismatchThreshold-thresholdTolerance:
			item.Kind = "confidence_mismatch"
			item.Description = fmt.Sprintf(
				"The plan was %.0f%% sure, but your data only supports %.0f%%.",
				a.Confidence*100, gr.Confidence*100)
			item.Options = []Option{
				{ID: "proceed_anyway", Label: "Proceed anyway", Description: "The data check is good enough"},
				{ID: "revise", Label: "Let me correct it"},
				{ID: "show_evidence", Label: "Show me what was found"},
			}
			item.RecommendedOption = "proceed_anyway"
			res.MustConfirm = append(res.MustConfirm, item)

		case !gr.Validated || gr.Confidence < lowConfidence:
			item.Kind = "low_confidence"
			item.Description = groundingDescription(gr, "could not be confirmed in your data")
			item.Options = confirmOptions()
			res.MustConfirm = append(res.MustConfirm, item)

		case gr.Confidence < highConfidence:
			item.Kind = "medium_confidence"
			item.Description = groundingDescription(gr, "was partially confirmed")
			res.ShouldReview = append(res.ShouldReview, item)

		default:
			item.Kind = "validated"
			item.Description = groundingDescription(gr, "was confirmed")
			res.LooksGood = append(res.LooksGood, item)
		}
	}
	return res
}

func confirmOptions() []Option {
	return []Option{
		{ID: "confirm", Label: "Yes, this is correct"},
		{ID: "revise", Label: "Let me correct it"},
		{ID: "skip", Label: "Skip this part"},
	}
}

func assumptionTitle(a Assumption, id string) string {
	if a.Description != "" {
		return a.Description
	}
	return "Assumption " + id
}

func groundingDescription(gr GroundingResult, verdict string) string {
	desc := fmt.Sprintf("Assumption %s %s (%.0f%% confidence).", gr.AssumptionID, verdict, gr.Confidence*100)
	if gr.Evidence != "" {
		desc += " Evidence: " + gr.Evidence
	}
	if gr.Error != "" {
		desc += " Error: " + gr.Error
	}
	return desc
}

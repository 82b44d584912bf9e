package ambiguity

import "fmt"

// PatternLayer looks for request shapes that are commonly misread:
// per-group versus combined delivery, per-item versus batch processing, and
// per-user versus shared data scope.
type PatternLayer struct{}

func (PatternLayer) Name() string { return LayerPatterns }

func (l PatternLayer) Detect(in Input) LayerResult {
	var res LayerResult
	text := in.Prompt.Text() + "\n" + in.Semantic.Goal
	grouping := in.Semantic.Understanding.Grouping
	groupingActive := grouping != nil && (grouping.NeedsGrouping || grouping.GroupBy != "")

	deliveryFired := false
	if groupingActive && hasAny(text, deliveryVerbs) {
		deliveryFired = true
		groupBy := grouping.GroupBy
		if groupBy == "" {
			groupBy = "group"
		}
		recommended := "single_summary"
		if grouping.PerGroup {
			recommended = "per_group"
		}
		res.MustConfirm = append(res.MustConfirm, Item{
			ID:          qualify(LayerPatterns, "delivery_granularity"),
			Layer:       LayerPatterns,
			Kind:        "delivery_granularity",
			Title:       "One message per group, or one summary?",
			Description: fmt.Sprintf("Results are grouped by %s. Should each %s get their own message?", groupBy, groupBy),
			Options: []Option{
				{ID: "per_group", Label: fmt.Sprintf("Send one message per %s", groupBy)},
				{ID: "single_summary", Label: "Send one combined summary"},
			},
			RecommendedOption: recommended,
			Confidence:        0.5,
		})
	}

	// Loop intent is only asked when the delivery question did not already
	// settle granularity.
	if !deliveryFired && hasAny(text, eachTerms) && hasAny(text, allTerms) {
		res.MustConfirm = append(res.MustConfirm, Item{
			ID:          qualify(LayerPatterns, "loop_intent"),
			Layer:       LayerPatterns,
			Kind:        "loop_intent",
			Title:       "Process items one at a time, or all together?",
			Description: "The request mentions both individual items and a combined result.",
			Options: []Option{
				{ID: "process_each", Label: "Handle each item separately"},
				{ID: "process_all", Label: "Handle everything in one batch"},
			},
			Confidence: 0.5,
		})
	}

	if hasAny(text, ownershipTerms) && hasAny(text, allDataTerms) {
		res.MustConfirm = append(res.MustConfirm, Item{
			ID:          qualify(LayerPatterns, "data_scope"),
			Layer:       LayerPatterns,
			Kind:        "data_scope",
			Title:       "Who sees which data?",
			Description: "The request mentions both personal ownership and all data.",
			Options: []Option{
				{ID: "filtered_per_user", Label: "Each person sees only their own data"},
				{ID: "everyone_sees_all", Label: "Everyone sees all data"},
			},
			Confidence: 0.5,
		})
	}

	if len(res.MustConfirm) == 0 {
		if d := in.Semantic.Understanding.Delivery; d != nil && d.Method != "" {
			res.LooksGood = append(res.LooksGood, Item{
				ID:          qualify(LayerPatterns, "delivery"),
				Layer:       LayerPatterns,
				Kind:        "delivery_understood",
				Title:       "Delivery is clear",
				Description: fmt.Sprintf("Results will be delivered by %s.", d.Method),
				Confidence:  0.9,
			})
		}
	}
	return res
}

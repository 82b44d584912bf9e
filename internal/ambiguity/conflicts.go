package ambiguity

import (
	"fmt"
	"slices"
)

// ConflictLayer finds assumptions that contradict each other along a fixed
// set of opposite-term pairs.
type ConflictLayer struct{}

func (ConflictLayer) Name() string { return LayerConflicts }

func (l ConflictLayer) Detect(in Input) LayerResult {
	var res LayerResult
	assumptions := in.Semantic.Assumptions
	conflicted := map[string]bool{}

	for _, pair := range conflictPairs {
		left := make([]bool, len(assumptions))
		right := make([]bool, len(assumptions))
		for i, a := range assumptions {
			left[i] = hasAny(a.Description, pair.left)
			right[i] = hasAny(a.Description, pair.right)

			if left[i] && right[i] {
				conflicted[a.ID] = true
				res.ShouldReview = append(res.ShouldReview, Item{
					ID:                 qualify(LayerConflicts, a.ID, pair.name),
					Layer:              LayerConflicts,
					Kind:               "internal_conflict",
					Title:              fmt.Sprintf("Mixed %s signals", pair.category),
					Description:        fmt.Sprintf("Assumption %s mentions both sides of a %s choice: %q.", a.ID, pair.category, a.Description),
					SourceAssumptionID: a.ID,
					Confidence:         a.Confidence * 0.7,
				})
			}
		}

		for i := range assumptions {
			for j := i + 1; j < len(assumptions); j++ {
				if !(left[i] && right[j]) && !(right[i] && left[j]) {
					continue
				}
				first, second := assumptions[i], assumptions[j]
				conflicted[first.ID] = true
				conflicted[second.ID] = true
				res.MustConfirm = append(res.MustConfirm, Item{
					ID:    qualify(LayerConflicts, first.ID, second.ID, pair.name),
					Layer: LayerConflicts,
					Kind:  "assumption_conflict",
					Title: fmt.Sprintf("Conflicting %s assumptions", pair.category),
					Description: fmt.Sprintf("%q contradicts %q.",
						first.Description, second.Description),
					Options: []Option{
						{ID: "keep_first", Label: first.Description},
						{ID: "keep_second", Label: second.Description},
						{ID: "keep_both", Label: "Both apply in different situations"},
					},
					RelatedAssumptionIDs: []string{first.ID, second.ID},
					Confidence:           min(first.Confidence, second.Confidence),
				})
			}
		}
	}

	for _, inf := range in.Semantic.Inferences {
		var affected []string
		for _, id := range inf.BasedOn {
			if conflicted[id] && !slices.Contains(affected, id) {
				affected = append(affected, id)
			}
		}
		if len(affected) == 0 {
			continue
		}
		res.ShouldReview = append(res.ShouldReview, Item{
			ID:                   qualify(LayerConflicts, "inference", inf.ID),
			Layer:                LayerConflicts,
			Kind:                 "dependent_inference",
			Title:                "Inference built on a conflict",
			Description:          fmt.Sprintf("%q depends on conflicting assumptions.", inf.Description),
			RelatedAssumptionIDs: affected,
			Confidence:           inf.Confidence * 0.8,
		})
	}

	for _, a := range assumptions {
		if conflicted[a.ID] {
			continue
		}
		res.LooksGood = append(res.LooksGood, Item{
			ID:                 qualify(LayerConflicts, a.ID),
			Layer:              LayerConflicts,
			Kind:               "no_conflict",
			Title:              assumptionTitle(a, a.ID),
			Description:        "No conflicting assumptions found.",
			SourceAssumptionID: a.ID,
			Confidence:         a.Confidence,
		})
	}
	return res
}

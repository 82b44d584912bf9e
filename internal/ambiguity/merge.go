package ambiguity

import "math"

// Confidence adjustments applied per item when scoring a report.
const (
	mustConfirmPenalty  = 0.05
	shouldReviewPenalty = 0.02
	looksGoodBonus      = 0.01
)

// Merge folds layer results into one report.
//
// must_confirm and should_review are concatenated in layer order. looks_good
// is deduplicated by source assumption (falling back to the item id),
// keeping the most confident entry, and any entry that collides with a
// blocking item's id or assumption ids is dropped.
func Merge(results []LayerResult, grounded GroundedPlan) Report {
	rep := Report{
		MustConfirm:          []Item{},
		ShouldReview:         []Item{},
		LooksGood:            []Item{},
		GroundingAmbiguities: []GroundingAmbiguity{},
	}
	for _, r := range results {
		rep.MustConfirm = append(rep.MustConfirm, r.MustConfirm...)
		rep.ShouldReview = append(rep.ShouldReview, r.ShouldReview...)
	}

	blocked := map[string]bool{}
	for _, items := range [][]Item{rep.MustConfirm, rep.ShouldReview} {
		for _, item := range items {
			blocked[item.ID] = true
			if item.SourceAssumptionID != "" {
				blocked[item.SourceAssumptionID] = true
			}
			for _, id := range item.RelatedAssumptionIDs {
				blocked[id] = true
			}
		}
	}

	index := map[string]int{}
	var deduped []Item
	for _, r := range results {
		for _, item := range r.LooksGood {
			key := looksGoodKey(item)
			if i, ok := index[key]; ok {
				if item.Confidence > deduped[i].Confidence {
					deduped[i] = item
				}
				continue
			}
			index[key] = len(deduped)
			deduped = append(deduped, item)
		}
	}
	for _, item := range deduped {
		if blocked[looksGoodKey(item)] || blocked[item.ID] {
			continue
		}
		rep.LooksGood = append(rep.LooksGood, item)
	}

	for _, gr := range grounded.GroundingResults {
		if len(gr.Alternatives) < 2 {
			continue
		}
		rep.GroundingAmbiguities = append(rep.GroundingAmbiguities, GroundingAmbiguity{
			AssumptionID: gr.AssumptionID,
			Description:  "Several matching values were found.",
			Alternatives: gr.Alternatives,
		})
	}

	rep.OverallConfidence = OverallConfidence(grounded.GroundingConfidence,
		len(rep.MustConfirm), len(rep.ShouldReview), len(rep.LooksGood))
	return rep
}

func looksGoodKey(item Item) string {
	if item.SourceAssumptionID != "" {
		return item.SourceAssumptionID
	}
	return item.ID
}

// OverallConfidence scores a report: the grounding confidence minus a
// penalty per open item plus a bonus per pre-approved item, clamped to
// [0, 1] and rounded to four decimals.
func OverallConfidence(grounding float64, mustConfirm, shouldReview, looksGood int) float64 {
	c := grounding -
		mustConfirmPenalty*float64(mustConfirm) -
		shouldReviewPenalty*float64(shouldReview) +
		looksGoodBonus*float64(looksGood)
	c = math.Max(0, math.Min(1, c))
	return math.Round(c*10000) / 10000
}

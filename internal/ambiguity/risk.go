package ambiguity

import (
	"fmt"
	"slices"
	"strings"
)

// RiskLayer flags business risk: personal data, destructive actions,
// messages leaving the organisation, and high-impact assumptions.
type RiskLayer struct{}

func (RiskLayer) Name() string { return LayerRisk }

func (l RiskLayer) Detect(in Input) LayerResult {
	var res LayerResult
	text := in.Prompt.Text() + "\n" + in.Semantic.Goal

	var flagged []string
	flag := func(cat riskCategory, terms []string, desc string) {
		flagged = append(flagged, terms...)
		res.MustConfirm = append(res.MustConfirm, Item{
			ID:          qualify(LayerRisk, cat.name),
			Layer:       LayerRisk,
			Kind:        cat.name,
			Title:       cat.title,
			Description: desc,
			Options:     slices.Clone(cat.options),
			Term:        terms[0],
			Confidence:  0.3,
		})
	}

	if pii := matchTerms(text, piiRisk.terms); len(pii) > 0 {
		flag(piiRisk, pii, fmt.Sprintf("The workflow touches personal data (%s).", strings.Join(pii, ", ")))
	}
	deletes := matchTerms(text, deleteRisk.terms)
	if len(deletes) > 0 {
		flag(deleteRisk, deletes, fmt.Sprintf("The workflow may permanently remove data (%s).", strings.Join(deletes, ", ")))
	}

	sends := matchTerms(text, sendTerms)
	external := matchTerms(text, externalTerms)
	switch {
	case len(sends) > 0 && len(external) > 0:
		flag(externalSendRisk, slices.Concat(sends, external),
			fmt.Sprintf("Messages will go to people outside your team (%s).", strings.Join(external, ", ")))
	case len(sends) > 0:
		res.ShouldReview = append(res.ShouldReview, Item{
			ID:          qualify(LayerRisk, "internal_send"),
			Layer:       LayerRisk,
			Kind:        "internal_send",
			Title:       "Messages will be sent",
			Description: "The workflow sends messages to internal recipients.",
			Term:        sends[0],
			Confidence:  0.7,
		})
	}

	if len(deletes) == 0 {
		bulk := matchTerms(text, bulkTerms)
		irreversible := matchTerms(text, irreversibleTerms)
		if len(bulk) > 0 && len(irreversible) > 0 {
			res.ShouldReview = append(res.ShouldReview, Item{
				ID:          qualify(LayerRisk, "bulk_irreversible"),
				Layer:       LayerRisk,
				Kind:        "bulk_irreversible",
				Title:       "Bulk change",
				Description: fmt.Sprintf("The workflow changes many records at once (%s, %s).", bulk[0], irreversible[0]),
				Term:        irreversible[0],
				Confidence:  0.6,
			})
		}
	}

	for _, a := range in.Semantic.Assumptions {
		impact := strings.ToLower(a.ImpactIfWrong)
		if impact != "critical" && impact != "high" {
			continue
		}
		if len(flagged) > 0 && hasAny(a.Description, flagged) {
			continue
		}
		res.MustConfirm = append(res.MustConfirm, Item{
			ID:          qualify(LayerRisk, "impact", a.ID),
			Layer:       LayerRisk,
			Kind:        "high_impact_assumption",
			Title:       assumptionTitle(a, a.ID),
			Description: fmt.Sprintf("If this assumption is wrong the impact is %s.", impact),
			Options: []Option{
				{ID: "confirm", Label: "Yes, this is correct"},
				{ID: "verify_first", Label: "Verify with a test run first"},
				{ID: "skip", Label: "Skip this part"},
			},
			SourceAssumptionID: a.ID,
			Confidence:         a.Confidence,
		})
	}

	if res.Len() == 0 {
		res.LooksGood = append(res.LooksGood, Item{
			ID:          qualify(LayerRisk, "none"),
			Layer:       LayerRisk,
			Kind:        "no_risk",
			Title:       "No business risks found",
			Description: "No personal data, destructive actions or external sends detected.",
			Confidence:  0.95,
		})
	}
	return res
}

package ambiguity

import (
	"fmt"
	"slices"
)

// minResolutionOptions is the menu size below which a "None of these"
// option is appended to a planner ambiguity.
const minResolutionOptions = 4

// VagueLanguageLayer flags vague quantifiers, timeframes and magnitudes in
// the prompt, and surfaces the planner's own open questions.
type VagueLanguageLayer struct{}

func (VagueLanguageLayer) Name() string { return LayerVague }

func (l VagueLanguageLayer) Detect(in Input) LayerResult {
	var res LayerResult
	text := in.Prompt.Text()

	type match struct {
		class vagueClass
		term  string
	}
	var matches []match
	var found []string
	for _, class := range vagueClasses {
		for _, term := range matchTerms(text, class.terms) {
			matches = append(matches, match{class: class, term: term})
			found = append(found, term)
		}
	}
	kept := dropSubsumed(found)

	seen := map[string]bool{}
	for _, m := range matches {
		key := slug(m.term)
		if seen[key] || !slices.Contains(kept, m.term) {
			continue
		}
		seen[key] = true
		res.MustConfirm = append(res.MustConfirm, Item{
			ID:          qualify(LayerVague, key),
			Layer:       LayerVague,
			Kind:        "vague_" + m.class.name,
			Title:       fmt.Sprintf("What does %q mean here?", m.term),
			Description: fmt.Sprintf("%q is open to interpretation.", m.term),
			Options:     slices.Clone(m.class.options),
			Term:        m.term,
			Confidence:  0.4,
		})
	}

	for _, amb := range in.Semantic.Ambiguities {
		options, recommended := resolutionOptions(amb)
		item := Item{
			ID:                qualify(LayerVague, "ambiguity", amb.ID),
			Layer:             LayerVague,
			Title:             amb.Question,
			Description:       fmt.Sprintf("The planner could not decide %s.", fieldOrID(amb)),
			Options:           options,
			RecommendedOption: recommended,
			Confidence:        0.5,
		}
		if amb.RequiresUserInput {
			item.Kind = "user_input_required"
			res.MustConfirm = append(res.MustConfirm, item)
		} else {
			item.Kind = "planner_ambiguity"
			res.ShouldReview = append(res.ShouldReview, item)
		}
	}

	if len(res.MustConfirm) == 0 && len(res.ShouldReview) == 0 {
		res.LooksGood = append(res.LooksGood, Item{
			ID:          qualify(LayerVague, "clear_language"),
			Layer:       LayerVague,
			Kind:        "clear_language",
			Title:       "The request is specific",
			Description: "No vague quantities or timeframes found.",
			Confidence:  0.9,
		})
	}
	return res
}

func resolutionOptions(amb Ambiguity) ([]Option, string) {
	var options []Option
	recommended := ""
	for i, r := range amb.PossibleResolutions {
		id := fmt.Sprintf("option_%d", i+1)
		options = append(options, Option{ID: id, Label: r})
		if r == amb.RecommendedResolution && recommended == "" {
			recommended = id
		}
	}
	if len(options) < minResolutionOptions {
		options = append(options, Option{ID: "none_of_these", Label: "None of these"})
	}
	return options, recommended
}

func fieldOrID(amb Ambiguity) string {
	if amb.Field != "" {
		return amb.Field
	}
	return amb.ID
}

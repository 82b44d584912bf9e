package ambiguity

func ids(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func find(items []Item, id string) (Item, bool) {
	for _, item := range items {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

func promptInput(prompt string) Input {
	return Input{Prompt: EnhancedPrompt{OriginalPrompt: prompt}}
}

func salesRepInput() Input {
	return Input{
		Prompt: EnhancedPrompt{
			OriginalPrompt: "Email each sales rep their opportunities",
			Sections: PromptSections{
				Data:     []string{"Opportunities spreadsheet"},
				Delivery: []string{"Email to the rep"},
			},
		},
		Semantic: SemanticPlan{
			Goal: "Email each sales rep their opportunities",
			Understanding: Understanding{
				Grouping: &GroupingIntent{NeedsGrouping: true, GroupBy: "sales_rep", PerGroup: true},
				Delivery: &DeliveryIntent{Method: "email", Recipients: []string{"sales_rep_email"}},
			},
			Assumptions: []Assumption{
				{ID: "a1", Category: "data", Description: "Rep names are in the sales_rep column", ImpactIfWrong: "medium", Confidence: 0.9},
				{ID: "a2", Category: "delivery", Description: "Rep emails are in the rep_email column", ImpactIfWrong: "medium", Confidence: 0.85},
			},
		},
		Grounded: GroundedPlan{
			GroundingResults: []GroundingResult{
				{AssumptionID: "a1", Validated: true, Confidence: 0.95},
				{AssumptionID: "a2", Validated: true, Confidence: 0.6},
			},
			GroundingConfidence: 0.8,
		},
	}
}

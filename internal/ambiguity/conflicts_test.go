package ambiguity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func conflictInput() Input {
	return Input{Semantic: SemanticPlan{
		Assumptions: []Assumption{
			{ID: "a1", Description: "Send the report daily", Confidence: 0.8},
			{ID: "a2", Description: "Send the report weekly", Confidence: 0.7},
			{ID: "a3", Description: "Use the sales sheet", Confidence: 0.9},
			{ID: "a4", Description: "Automatic send after manual approval", Confidence: 0.6},
		},
		Inferences: []Inference{
			{ID: "i1", Description: "Runs on a schedule", BasedOn: []string{"a1", "a3"}, Confidence: 0.5},
			{ID: "i2", Description: "Reads one sheet", BasedOn: []string{"a3"}, Confidence: 0.9},
		},
	}}
}

func TestConflictLayer_CrossAssumptionConflict(t *testing.T) {
	res := ConflictLayer{}.Detect(conflictInput())

	require.Len(t, res.MustConfirm, 1)
	item := res.MustConfirm[0]
	assert.Equal(t, "conflicts:a1:a2:daily_weekly", item.ID)
	assert.Equal(t, []string{"a1", "a2"}, item.RelatedAssumptionIDs)
	assert.Equal(t, []string{"keep_first", "keep_second", "keep_both"},
		[]string{item.Options[0].ID, item.Options[1].ID, item.Options[2].ID})
	assert.InDelta(t, 0.7, item.Confidence, 1e-9)
}

func TestConflictLayer_InternalConflict(t *testing.T) {
	res := ConflictLayer{}.Detect(conflictInput())

	item, ok := find(res.ShouldReview, "conflicts:a4:automatic_manual")
	require.True(t, ok, "should_review: %v", ids(res.ShouldReview))
	assert.Equal(t, "internal_conflict", item.Kind)
	assert.InDelta(t, 0.6*0.7, item.Confidence, 1e-9)
}

func TestConflictLayer_DependentInference(t *testing.T) {
	res := ConflictLayer{}.Detect(conflictInput())

	item, ok := find(res.ShouldReview, "conflicts:inference:i1")
	require.True(t, ok)
	assert.Equal(t, []string{"a1"}, item.RelatedAssumptionIDs)
	assert.InDelta(t, 0.5*0.8, item.Confidence, 1e-9)

	_, ok = find(res.ShouldReview, "conflicts:inference:i2")
	assert.False(t, ok)
}

func TestConflictLayer_UntouchedAssumptionsLookGood(t *testing.T) {
	res := ConflictLayer{}.Detect(conflictInput())

	require.Len(t, res.LooksGood, 1)
	assert.Equal(t, "conflicts:a3", res.LooksGood[0].ID)
	assert.Equal(t, "a3", res.LooksGood[0].SourceAssumptionID)
}

func TestConflictLayer_NoAssumptions(t *testing.T) {
	assert.Zero(t, ConflictLayer{}.Detect(Input{}).Len())
}

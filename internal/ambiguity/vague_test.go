package ambiguity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVagueLanguageLayer_Terms(t *testing.T) {
	res := VagueLanguageLayer{}.Detect(promptInput("Send some recent deals, and some more"))

	assert.Equal(t, []string{"vague:some", "vague:recent"}, ids(res.MustConfirm))
	item := res.MustConfirm[0]
	assert.Equal(t, "vague_quantifier", item.Kind)
	assert.Equal(t, "some", item.Term)
	assert.NotEmpty(t, item.Options)
	assert.Equal(t, "vague_timeframe", res.MustConfirm[1].Kind)
	assert.Empty(t, res.LooksGood)
}

func TestVagueLanguageLayer_LongestTermWins(t *testing.T) {
	res := VagueLanguageLayer{}.Detect(promptInput("Email me a few deals"))

	assert.Equal(t, []string{"vague:a_few"}, ids(res.MustConfirm))
	assert.Equal(t, "a few", res.MustConfirm[0].Term)

	res = VagueLanguageLayer{}.Detect(promptInput("Email me few deals"))
	assert.Equal(t, []string{"vague:few"}, ids(res.MustConfirm))
}

func TestVagueLanguageLayer_UserInputAmbiguity(t *testing.T) {
	in := promptInput("Send the Q4 report")
	in.Semantic.Ambiguities = []Ambiguity{{
		ID:                    "amb1",
		Field:                 "recipient",
		Question:              "Who should receive the report?",
		PossibleResolutions:   []string{"Finance team", "Sales team"},
		RequiresUserInput:     true,
		RecommendedResolution: "Sales team",
	}}

	res := VagueLanguageLayer{}.Detect(in)

	require.Len(t, res.MustConfirm, 1)
	item := res.MustConfirm[0]
	assert.Equal(t, "vague:ambiguity:amb1", item.ID)
	require.Len(t, item.Options, 3)
	assert.Equal(t, "none_of_these", item.Options[2].ID)
	assert.Equal(t, "option_2", item.RecommendedOption)
}

func TestVagueLanguageLayer_FullMenuHasNoSyntheticOption(t *testing.T) {
	in := promptInput("Send the Q4 report")
	in.Semantic.Ambiguities = []Ambiguity{{
		ID:                  "amb1",
		PossibleResolutions: []string{"a", "b", "c", "d"},
		RequiresUserInput:   true,
	}}

	res := VagueLanguageLayer{}.Detect(in)

	require.Len(t, res.MustConfirm, 1)
	assert.Len(t, res.MustConfirm[0].Options, 4)
	assert.Empty(t, res.MustConfirm[0].RecommendedOption)
}

func TestVagueLanguageLayer_OptionalAmbiguityIsReview(t *testing.T) {
	in := promptInput("Send the Q4 report")
	in.Semantic.Ambiguities = []Ambiguity{{ID: "amb2", Question: "Include archived rows?"}}

	res := VagueLanguageLayer{}.Detect(in)

	assert.Empty(t, res.MustConfirm)
	require.Len(t, res.ShouldReview, 1)
	assert.Equal(t, "vague:ambiguity:amb2", res.ShouldReview[0].ID)
	assert.Empty(t, res.LooksGood)
}

func TestVagueLanguageLayer_ClearLanguage(t *testing.T) {
	res := VagueLanguageLayer{}.Detect(promptInput("Send the Q4 report to finance"))

	assert.Empty(t, res.MustConfirm)
	require.Len(t, res.LooksGood, 1)
	assert.Equal(t, "vague:clear_language", res.LooksGood[0].ID)
}

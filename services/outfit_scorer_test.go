package services

import (
	"strings"
	"testing"

	"outfitapi/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreStyleMetadataPrimaryTier(t *testing.T) {
	item := itemWithID(1, models.CategoryTop)
	item.Name = "Plain sequin top" // keyword would say sequin, metadata wins
	item.Pattern = "solid"
	item.Colors = []string{"black"}
	item.Material = "wool"

	rs := StrictRuleSet(&GenerationRequest{Occasion: "casual", Style: "minimalist", Weather: DefaultWeather()})
	w := DefaultScoringWeights()
	scored := ScoreItem(item, rs, w)

	assert.Equal(t, w.PatternMatch+w.ColorMatch+w.MaterialMatch, scored.Score)
	for _, reason := range scored.Reasons {
		assert.False(t, strings.HasPrefix(reason, "keyword:"), "metadata tier must suppress keyword scoring")
	}
}

func TestScoreKeywordTierOnlyWithoutMetadata(t *testing.T) {
	item := itemWithID(1, models.CategoryTop)
	item.Name = "Tweed blazer"

	rs := StrictRuleSet(&GenerationRequest{Occasion: "casual", Style: "dark academia", Weather: DefaultWeather()})
	w := DefaultScoringWeights()
	scored := ScoreItem(item, rs, w)

	assert.Equal(t, 2*w.KeywordMatch, scored.Score, "blazer and tweed keywords")
	require.NotEmpty(t, scored.Reasons)
	assert.True(t, strings.HasPrefix(scored.Reasons[0], "keyword:"))
}

func TestScorePatternConflictAndColorOverload(t *testing.T) {
	item := itemWithID(1, models.CategoryTop)
	item.Pattern = "graphic"
	item.Colors = []string{"red", "green", "yellow"}

	rs := StrictRuleSet(&GenerationRequest{Occasion: "casual", Style: "minimalist", Weather: DefaultWeather()})
	w := DefaultScoringWeights()
	scored := ScoreItem(item, rs, w)

	assert.Equal(t, w.PatternConflict+w.ColorOverload, scored.Score)
}

func TestOccasionOverrideFloorsAndBoosts(t *testing.T) {
	// neon athletic leggings score deep negative under minimalist, but gym
	// needs them: floored to OccasionFloor, then boosted
	item := itemWithID(1, models.CategoryBottom)
	item.Pattern = "graphic"
	item.Colors = []string{"neon green", "pink", "orange"}
	item.StyleTags = []string{"athletic"}

	rs := StrictRuleSet(&GenerationRequest{Occasion: "gym", Style: "minimalist", Weather: DefaultWeather()})
	w := DefaultScoringWeights()
	scored := ScoreItem(item, rs, w)

	assert.Equal(t, w.OccasionFloor+w.OccasionBonus, scored.Score)
}

func TestOccasionBonusOnTopOfPositiveScore(t *testing.T) {
	item := itemWithID(1, models.CategoryTop)
	item.Pattern = "solid"
	item.Colors = []string{"black"}
	item.StyleTags = []string{"athletic"}

	rs := StrictRuleSet(&GenerationRequest{Occasion: "workout", Style: "athleisure", Weather: DefaultWeather()})
	w := DefaultScoringWeights()
	scored := ScoreItem(item, rs, w)

	// already above the floor, only the bonus applies
	base := w.PatternMatch + w.ColorMatch + w.StyleTagMatch
	assert.Equal(t, base+w.OccasionBonus, scored.Score)
}

func TestMoodAccentIsNudgeOnly(t *testing.T) {
	item := itemWithID(1, models.CategoryTop)
	item.Colors = []string{"red"}
	item.Pattern = "floral"

	rs := StrictRuleSet(&GenerationRequest{Occasion: "date night", Mood: "Romantic", Weather: DefaultWeather()})
	w := DefaultScoringWeights()
	scored := ScoreItem(item, rs, w)

	assert.Equal(t, 2*w.MoodMatch, scored.Score, "color and pattern accents")
}

func TestProfileBodyTypeFitNudge(t *testing.T) {
	item := itemWithID(1, models.CategoryBottom)
	item.Fit = "straight"

	rs := StrictRuleSet(&GenerationRequest{
		Occasion: "casual",
		Profile:  StylingProfile{BodyType: "Pear"},
		Weather:  DefaultWeather(),
	})
	w := DefaultScoringWeights()

	assert.Equal(t, w.BodyTypeFit, ScoreItem(item, rs, w).Score)

	// a fit outside the body type table gets nothing
	item.Fit = "oversized"
	assert.Equal(t, 0, ScoreItem(item, rs, w).Score)
}

func TestProfileStylePreferenceNudge(t *testing.T) {
	item := itemWithID(1, models.CategoryTop)
	item.StyleTags = []string{"Classic", "minimalist"}

	rs := StrictRuleSet(&GenerationRequest{
		Occasion: "casual",
		Profile:  StylingProfile{StylePreferences: []string{"classic", "minimalist"}},
		Weather:  DefaultWeather(),
	})
	w := DefaultScoringWeights()
	scored := ScoreItem(item, rs, w)

	// one nudge even when several preferences would match
	assert.Equal(t, w.StylePreference, scored.Score)
}

func TestEmptyProfileScoresUnchanged(t *testing.T) {
	item := itemWithID(1, models.CategoryTop)
	item.Fit = "tailored"
	item.StyleTags = []string{"classic"}

	rs := StrictRuleSet(&GenerationRequest{Occasion: "casual", Weather: DefaultWeather()})
	assert.Equal(t, 0, ScoreItem(item, rs, DefaultScoringWeights()).Score)
}

func TestVersatileScoring(t *testing.T) {
	staple := itemWithID(1, models.CategoryTop)
	staple.Favorite = true
	staple.Colors = []string{"Black"}
	staple.Pattern = "Solid"

	loud := itemWithID(2, models.CategoryTop)
	loud.Colors = []string{"neon green"}
	loud.Pattern = "graphic"

	rs := OutfitRuleSet{VersatileOnly: true}
	w := DefaultScoringWeights()

	assert.Equal(t, w.FavoriteBonus+w.NeutralColorBonus+w.SolidPatternBonus, ScoreItem(staple, rs, w).Score)
	assert.Equal(t, 0, ScoreItem(loud, rs, w).Score)
}

package services

import (
	"fmt"
	"strings"

	"outfitapi/models"
)

// ScoringWeights are the tunable constants of the weighted scorer. None of
// them is a hard invariant; the defaults reflect how strongly each attribute
// should pull relative to the others.
type ScoringWeights struct {
	PatternMatch    int
	PatternConflict int
	ColorMatch      int
	ColorOverload   int
	MaterialMatch   int
	FitMatch        int
	StyleTagMatch   int
	KeywordMatch    int
	MoodMatch       int
	BodyTypeFit     int
	StylePreference int

	// occasion override: functional items are floored then boosted,
	// no matter how negative the aesthetic score went
	OccasionFloor int
	OccasionBonus int

	// diversity penalty for the most recent history entry; decays linearly
	// over the history window
	DiversityMaxPenalty int

	// minimum effective score for opportunistic optional categories
	OptionalMinScore int

	// versatile fallback scoring
	FavoriteBonus     int
	NeutralColorBonus int
	SolidPatternBonus int
}

func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		PatternMatch:        25,
		PatternConflict:     -28,
		ColorMatch:          20,
		ColorOverload:       -25,
		MaterialMatch:       18,
		FitMatch:            15,
		StyleTagMatch:       20,
		KeywordMatch:        8,
		MoodMatch:           10,
		BodyTypeFit:         12,
		StylePreference:     10,
		OccasionFloor:       20,
		OccasionBonus:       30,
		DiversityMaxPenalty: 30,
		OptionalMinScore:    15,
		FavoriteBonus:       20,
		NeutralColorBonus:   15,
		SolidPatternBonus:   10,
	}
}

// ScoredItem is a per-request, ephemeral scoring result. Reasons are kept for
// explainability and never persisted.
type ScoredItem struct {
	Item    models.WardrobeItem
	Score   int
	Reasons []string
}

// ScoreItem computes the signed appropriateness score of one item under the
// active rule set. Structured metadata is the primary tier; the keyword
// heuristic over name/description only kicks in when the structured fields
// are absent, and its contributions are tagged separately in the reasons.
func ScoreItem(item models.WardrobeItem, rs OutfitRuleSet, w ScoringWeights) ScoredItem {
	scored := ScoredItem{Item: item}

	if rs.VersatileOnly {
		scoreVersatile(&scored, w)
	} else {
		if rs.UseStyleScoring && rs.Style.Known {
			if hasStructuredMetadata(&item) {
				scoreStyleMetadata(&scored, rs.Style, w)
			} else {
				scoreStyleKeywords(&scored, rs.Style, w)
			}
		}
		if rs.UseMoodScoring && rs.Mood != "" {
			scoreMood(&scored, rs.Mood, w)
		}
	}

	// styling profile nudges, independent of the active style rules
	if item.Fit != "" && containsFold(fitsForBodyType(rs.Profile.BodyType), item.Fit) {
		scored.add(w.BodyTypeFit,
			fmt.Sprintf("profile: %s fit flatters a %s build", item.Fit, Canonical(rs.Profile.BodyType)))
	}
	for _, pref := range rs.Profile.StylePreferences {
		if item.HasStyleTag(pref) {
			scored.add(w.StylePreference, fmt.Sprintf("profile: matches %q preference", Canonical(pref)))
			break
		}
	}

	// occasion override, after all aesthetic scoring: functional items are
	// never buried by a conflicting style
	if rs.HasOccasion && rs.Occasion.FunctionalTag != "" && item.HasStyleTag(rs.Occasion.FunctionalTag) {
		if scored.Score < w.OccasionFloor {
			scored.Reasons = append(scored.Reasons,
				fmt.Sprintf("occasion: floored %d -> %d (%s required)", scored.Score, w.OccasionFloor, rs.Occasion.FunctionalTag))
			scored.Score = w.OccasionFloor
		}
		scored.Score += w.OccasionBonus
		scored.Reasons = append(scored.Reasons,
			fmt.Sprintf("occasion: +%d functional %s item", w.OccasionBonus, rs.Occasion.FunctionalTag))
	}

	return scored
}

func hasStructuredMetadata(item *models.WardrobeItem) bool {
	return item.Pattern != "" || item.Material != "" || len(item.Colors) > 0 || len(item.StyleTags) > 0
}

func scoreStyleMetadata(scored *ScoredItem, style StyleRule, w ScoringWeights) {
	item := &scored.Item

	if item.Pattern != "" {
		if containsFold(style.FavoredPatterns, item.Pattern) {
			scored.add(w.PatternMatch, fmt.Sprintf("metadata: %s pattern suits %s", item.Pattern, style.Name))
		} else if containsFold(style.ConflictingPatterns, item.Pattern) {
			scored.add(w.PatternConflict, fmt.Sprintf("metadata: %s pattern conflicts with %s", item.Pattern, style.Name))
		}
	}

	if len(item.Colors) > 0 {
		if containsFold(style.FavoredColors, item.Colors[0]) {
			scored.add(w.ColorMatch, fmt.Sprintf("metadata: %s fits the %s palette", item.Colors[0], style.Name))
		}
		if style.PaletteSize > 0 && len(item.Colors) > style.PaletteSize {
			scored.add(w.ColorOverload, fmt.Sprintf("metadata: %d colors exceed the %s palette", len(item.Colors), style.Name))
		}
	}

	if item.Material != "" && containsFold(style.FavoredMaterials, item.Material) {
		scored.add(w.MaterialMatch, fmt.Sprintf("metadata: %s is canonical for %s", item.Material, style.Name))
	}
	if item.Fit != "" && containsFold(style.FavoredFits, item.Fit) {
		scored.add(w.FitMatch, fmt.Sprintf("metadata: %s fit suits %s", item.Fit, style.Name))
	}
	for _, tag := range style.Tags {
		if item.HasStyleTag(tag) {
			scored.add(w.StyleTagMatch, fmt.Sprintf("metadata: tagged %s", tag))
			break
		}
	}
}

// keyword tier: only reached when the item has no structured metadata at all
func scoreStyleKeywords(scored *ScoredItem, style StyleRule, w ScoringWeights) {
	text := itemText(&scored.Item)
	for _, kw := range style.Keywords {
		if strings.Contains(text, kw) {
			scored.add(w.KeywordMatch, fmt.Sprintf("keyword: %q matches %s", kw, style.Name))
		}
	}
}

func scoreMood(scored *ScoredItem, mood string, w ScoringWeights) {
	accent, ok := moodAccents[mood]
	if !ok {
		return
	}
	item := &scored.Item
	for _, c := range item.Colors {
		if containsFold(accent.Colors, c) {
			scored.add(w.MoodMatch, fmt.Sprintf("mood: %s color suits %s mood", c, mood))
			break
		}
	}
	if item.Pattern != "" && containsFold(accent.Patterns, item.Pattern) {
		scored.add(w.MoodMatch, fmt.Sprintf("mood: %s pattern suits %s mood", item.Pattern, mood))
	}
}

// versatile fallback: style/season/mood are gone, pick wardrobe staples
func scoreVersatile(scored *ScoredItem, w ScoringWeights) {
	item := &scored.Item
	if item.Favorite {
		scored.add(w.FavoriteBonus, "versatile: favorited item")
	}
	if len(item.Colors) > 0 && neutralColors[Canonical(item.Colors[0])] {
		scored.add(w.NeutralColorBonus, "versatile: neutral color")
	}
	if Canonical(item.Pattern) == "solid" {
		scored.add(w.SolidPatternBonus, "versatile: solid pattern")
	}
}

func (s *ScoredItem) add(points int, reason string) {
	s.Score += points
	s.Reasons = append(s.Reasons, reason)
}

func containsFold(list []string, value string) bool {
	v := Canonical(value)
	for _, entry := range list {
		if Canonical(entry) == v {
			return true
		}
	}
	return false
}

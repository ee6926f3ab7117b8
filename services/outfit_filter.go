package services

import (
	"fmt"
	"strings"

	"outfitapi/models"
)

// OutfitRuleSet is the active constraint set for one pipeline pass. The
// fallback ladder produces progressively relaxed copies of the strict set;
// each pass stays a pure function of its rule set.
type OutfitRuleSet struct {
	Occasion    OccasionRule
	HasOccasion bool
	Style       StyleRule
	Mood        string
	Weather     WeatherSnapshot
	Profile     StylingProfile

	ApplySeason       bool
	ApplyStyleExclude bool
	UseStyleScoring   bool
	UseMoodScoring    bool
	VersatileOnly     bool
	RequireOuterwear  bool
}

// StrictRuleSet builds the level-0 rule set for a request: every constraint
// active, outerwear mandatory in freezing/cold weather.
func StrictRuleSet(req *GenerationRequest) OutfitRuleSet {
	occRule, known := ResolveOccasionRule(req.Occasion)
	return OutfitRuleSet{
		Occasion:          occRule,
		HasOccasion:       known,
		Style:             ResolveStyleRule(req.Style),
		Mood:              Canonical(req.Mood),
		Weather:           req.Weather,
		Profile:           req.Profile,
		ApplySeason:       true,
		ApplyStyleExclude: true,
		UseStyleScoring:   true,
		UseMoodScoring:    true,
		RequireOuterwear:  req.Weather.TemperatureC < 10,
	}
}

type FilterResult struct {
	Included         []models.WardrobeItem
	Excluded         []models.WardrobeItem
	ExclusionReasons map[uint]string
}

// FilterWardrobe partitions the wardrobe into hard-included and hard-excluded
// items under the given rule set. Pure; an empty mandatory category is not an
// error here, it surfaces later as a gap.
//
// Items carrying the occasion's functional tag are exempt from style and
// season exclusion: functional wearability outranks aesthetics.
func FilterWardrobe(items []models.WardrobeItem, rs OutfitRuleSet) FilterResult {
	result := FilterResult{ExclusionReasons: map[uint]string{}}

	for _, item := range items {
		item := item
		if reason := exclusionReason(&item, rs); reason != "" {
			result.Excluded = append(result.Excluded, item)
			result.ExclusionReasons[item.ID] = reason
			continue
		}
		result.Included = append(result.Included, item)
	}
	return result
}

func exclusionReason(item *models.WardrobeItem, rs OutfitRuleSet) string {
	if item.Category == models.CategoryOther {
		return "category not used in outfits"
	}

	functional := rs.HasOccasion && rs.Occasion.FunctionalTag != "" && item.HasStyleTag(rs.Occasion.FunctionalTag)

	if rs.HasOccasion {
		for _, tag := range rs.Occasion.ExcludeTags {
			if item.HasStyleTag(tag) && !functional {
				return fmt.Sprintf("%q is excluded for this occasion", tag)
			}
		}
		if !functional && item.Formality > 0 {
			if rs.Occasion.MinFormality > 0 && item.Formality < rs.Occasion.MinFormality {
				return "not formal enough for the occasion"
			}
			if rs.Occasion.MaxFormality > 0 && item.Formality > rs.Occasion.MaxFormality {
				return "too formal for the occasion"
			}
		}
	}

	if functional {
		return ""
	}

	if rs.ApplyStyleExclude && rs.Style.Known {
		for _, tag := range rs.Style.ExcludeTags {
			if item.HasStyleTag(tag) {
				return fmt.Sprintf("%q clashes with the %s style", tag, rs.Style.Name)
			}
		}
		text := itemText(item)
		for _, kw := range rs.Style.ExcludeKeywords {
			if strings.Contains(text, kw) {
				return fmt.Sprintf("%q clashes with the %s style", kw, rs.Style.Name)
			}
		}
	}

	if rs.ApplySeason {
		match := false
		for _, season := range SeasonsForWeather(rs.Weather) {
			if item.HasSeasonTag(season) {
				match = true
				break
			}
		}
		if !match {
			return "out of season for current weather"
		}
	}

	return ""
}

func itemText(item *models.WardrobeItem) string {
	text := strings.ToLower(item.Name + " " + item.Subtype)
	if item.Description != nil {
		text += " " + strings.ToLower(*item.Description)
	}
	return text
}

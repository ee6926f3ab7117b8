package services

import (
	"sort"

	"outfitapi/models"
)

// HistoryWindow is how many recent outfits feed the diversity penalty.
const HistoryWindow = 10

// SelectOutfit assembles a category-complete outfit from scored candidates.
// Candidates are ranked per category by score minus a diversity penalty that
// grows with how recently/frequently the item was worn. A base item, when
// given, occupies its category slot unconditionally and takes no penalty.
//
// Returns the ordered picks and the list of mandatory categories that could
// not be filled. A non-empty gap list means no outfit: the caller decides
// whether to walk the fallback ladder.
func SelectOutfit(scored []ScoredItem, rs OutfitRuleSet, history []models.GeneratedOutfit, baseItem *models.WardrobeItem, w ScoringWeights) ([]ScoredItem, []string) {
	byCategory := map[string][]ScoredItem{}
	for _, s := range scored {
		byCategory[s.Item.Category] = append(byCategory[s.Item.Category], s)
	}

	penalties := historyPenalties(history, w)

	rank := func(candidates []ScoredItem) []ScoredItem {
		ranked := make([]ScoredItem, len(candidates))
		copy(ranked, candidates)
		for i := range ranked {
			if p := penalties[ranked[i].Item.ID]; p > 0 {
				ranked[i].Score -= p
				ranked[i].Reasons = append(ranked[i].Reasons, "diversity: worn recently")
			}
		}
		// deterministic: score desc, then least worn, then favorites, then id
		sort.SliceStable(ranked, func(i, j int) bool {
			a, b := ranked[i], ranked[j]
			if a.Score != b.Score {
				return a.Score > b.Score
			}
			if a.Item.WearCount != b.Item.WearCount {
				return a.Item.WearCount < b.Item.WearCount
			}
			if a.Item.Favorite != b.Item.Favorite {
				return a.Item.Favorite
			}
			return a.Item.ID < b.Item.ID
		})
		return ranked
	}

	required := []string{models.CategoryTop, models.CategoryBottom, models.CategoryShoes}
	optional := []string{models.CategoryOuterwear, models.CategoryAccessory}
	if rs.RequireOuterwear {
		required = append(required, models.CategoryOuterwear)
		optional = []string{models.CategoryAccessory}
	}

	var picks []ScoredItem
	var gaps []string
	taken := map[uint]bool{}

	pickBase := func(category string) bool {
		if baseItem == nil || baseItem.Category != category {
			return false
		}
		picks = append(picks, ScoredItem{Item: *baseItem, Reasons: []string{"base item requested by caller"}})
		taken[baseItem.ID] = true
		return true
	}

	for _, category := range required {
		if pickBase(category) {
			continue
		}
		ranked := rank(byCategory[category])
		if len(ranked) == 0 {
			gaps = append(gaps, category)
			continue
		}
		picks = append(picks, ranked[0])
		taken[ranked[0].Item.ID] = true
	}
	if len(gaps) > 0 {
		return nil, gaps
	}

	for _, category := range optional {
		if pickBase(category) {
			continue
		}
		ranked := rank(byCategory[category])
		if len(ranked) > 0 && !taken[ranked[0].Item.ID] && ranked[0].Score >= w.OptionalMinScore {
			picks = append(picks, ranked[0])
			taken[ranked[0].Item.ID] = true
		}
	}

	return picks, nil
}

// historyPenalties weights each appearance by recency: the most recent outfit
// contributes the full penalty, the oldest in the window almost none.
func historyPenalties(history []models.GeneratedOutfit, w ScoringWeights) map[uint]int {
	penalties := map[uint]int{}
	n := len(history)
	if n > HistoryWindow {
		n = HistoryWindow
	}
	for i := 0; i < n; i++ {
		weight := w.DiversityMaxPenalty * (HistoryWindow - i) / HistoryWindow
		for _, id := range history[i].ItemIDs {
			penalties[id] += weight
		}
	}
	return penalties
}

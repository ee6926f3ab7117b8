package services

// RelaxationLevel is one rung of the fallback ladder: a pure transform of the
// active rule set plus the caller-facing explanation of what was given up.
// Occasion functional requirements survive every rung; they encode
// wearability, not taste.
type RelaxationLevel struct {
	Name    string
	Reason  string
	Relaxes []string
	Apply   func(OutfitRuleSet) OutfitRuleSet
}

// FallbackLadder is walked in order after the strict pass produces a gap.
// Each level relaxes a strict superset of the previous level's constraints.
func FallbackLadder() []RelaxationLevel {
	return []RelaxationLevel{
		{
			Name:   "relax_season",
			Reason: "no complete outfit matched the current season",
			Relaxes: []string{
				"season",
			},
			Apply: func(rs OutfitRuleSet) OutfitRuleSet {
				rs.ApplySeason = false
				return rs
			},
		},
		{
			Name:   "relax_style",
			Reason: "no complete outfit matched the requested style",
			Relaxes: []string{
				"season", "style_exclusions",
			},
			Apply: func(rs OutfitRuleSet) OutfitRuleSet {
				rs.ApplySeason = false
				rs.ApplyStyleExclude = false
				return rs
			},
		},
		{
			Name:   "versatile",
			Reason: "falling back to versatile wardrobe staples",
			Relaxes: []string{
				"season", "style_exclusions", "style_scoring", "mood",
			},
			Apply: func(rs OutfitRuleSet) OutfitRuleSet {
				rs.ApplySeason = false
				rs.ApplyStyleExclude = false
				rs.UseStyleScoring = false
				rs.UseMoodScoring = false
				rs.VersatileOnly = true
				return rs
			},
		},
	}
}

// runPass executes filter -> score -> select for one rule set.
func runPass(req *GenerationRequest, rs OutfitRuleSet, w ScoringWeights) ([]ScoredItem, []string, FilterResult) {
	filtered := FilterWardrobe(req.Wardrobe, rs)
	scored := make([]ScoredItem, 0, len(filtered.Included))
	for _, item := range filtered.Included {
		scored = append(scored, ScoreItem(item, rs, w))
	}
	picks, gaps := SelectOutfit(scored, rs, req.History, req.BaseItem, w)
	return picks, gaps, filtered
}

package services

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var styleCaser = cases.Fold()

// Canonical lowercases and trims user-supplied occasion/style/mood strings so
// that "Dark Academia " and "dark academia" resolve to the same rules and the
// same cache fingerprint.
func Canonical(s string) string {
	return strings.TrimSpace(styleCaser.String(s))
}

var titleCaser = cases.Title(language.English)

func TitleName(s string) string {
	return titleCaser.String(Canonical(s))
}

// OccasionRule captures the functional requirements of an occasion. The
// functional tag is never relaxed: an item carrying it cannot be filtered or
// score-buried by aesthetic style rules.
type OccasionRule struct {
	FunctionalTag string
	ExcludeTags   []string
	MinFormality  int
	MaxFormality  int
}

var occasionRules = map[string]OccasionRule{
	"gym":             {FunctionalTag: "athletic", ExcludeTags: []string{"formal", "loungewear"}, MaxFormality: 2},
	"workout":         {FunctionalTag: "athletic", ExcludeTags: []string{"formal", "loungewear"}, MaxFormality: 2},
	"wedding guest":   {FunctionalTag: "formal", ExcludeTags: []string{"loungewear", "athletic", "swim"}, MinFormality: 4},
	"gala":            {FunctionalTag: "formal", ExcludeTags: []string{"loungewear", "athletic", "swim"}, MinFormality: 4},
	"black tie":       {FunctionalTag: "formal", ExcludeTags: []string{"loungewear", "athletic", "swim"}, MinFormality: 5},
	"beach":           {FunctionalTag: "swim", ExcludeTags: []string{"formal"}},
	"pool":            {FunctionalTag: "swim", ExcludeTags: []string{"formal"}},
	"business formal": {ExcludeTags: []string{"loungewear", "athletic", "swim"}, MinFormality: 3},
	"work":            {ExcludeTags: []string{"loungewear", "swim"}, MinFormality: 2},
	"job interview":   {ExcludeTags: []string{"loungewear", "athletic", "swim"}, MinFormality: 3},
	"date night":      {ExcludeTags: []string{"loungewear", "swim"}},
	"night out":       {ExcludeTags: []string{"loungewear", "swim"}},
	"brunch":          {ExcludeTags: []string{"swim"}},
	"travel":          {ExcludeTags: []string{"swim"}},
	"loungewear":      {FunctionalTag: "loungewear", ExcludeTags: []string{"formal"}},
	"casual":          {ExcludeTags: []string{"swim"}},
}

// ResolveOccasionRule looks up the rule for a (canonicalized) occasion.
// Unknown occasions get an empty, permissive rule.
func ResolveOccasionRule(occasion string) (OccasionRule, bool) {
	rule, ok := occasionRules[Canonical(occasion)]
	return rule, ok
}

// StyleRule is the resolved scoring/exclusion profile for a style string.
// For an unrecognized style Known is false and every exclusion list is empty:
// a custom style the engine has never heard of must never forbid categories
// the occasion needs.
type StyleRule struct {
	Known               bool
	Name                string
	Tags                []string
	FavoredPatterns     []string
	ConflictingPatterns []string
	FavoredColors       []string
	PaletteSize         int
	FavoredMaterials    []string
	FavoredFits         []string
	ExcludeTags         []string
	ExcludeKeywords     []string
	Keywords            []string
}

var styleRules = map[string]StyleRule{
	"minimalist": {
		Name:                "minimalist",
		Tags:                []string{"minimalist", "basic"},
		FavoredPatterns:     []string{"solid"},
		ConflictingPatterns: []string{"floral", "graphic", "animal"},
		FavoredColors:       []string{"black", "white", "gray", "beige", "navy"},
		PaletteSize:         2,
		FavoredMaterials:    []string{"cotton", "wool", "linen"},
		FavoredFits:         []string{"tailored", "slim", "straight"},
		ExcludeTags:         []string{"neon", "maximalist"},
		ExcludeKeywords:     []string{"sequin", "glitter", "neon"},
		Keywords:            []string{"minimal", "clean", "basic", "plain"},
	},
	"dark academia": {
		Name:                "dark academia",
		Tags:                []string{"dark academia", "vintage", "preppy"},
		FavoredPatterns:     []string{"plaid", "houndstooth", "solid"},
		ConflictingPatterns: []string{"graphic", "tropical", "neon"},
		FavoredColors:       []string{"brown", "black", "burgundy", "dark green", "cream"},
		PaletteSize:         3,
		FavoredMaterials:    []string{"wool", "tweed", "corduroy", "leather"},
		FavoredFits:         []string{"tailored", "relaxed"},
		ExcludeTags:         []string{"neon", "athletic"},
		ExcludeKeywords:     []string{"neon", "jersey", "track"},
		Keywords:            []string{"blazer", "tweed", "oxford", "plaid", "vintage"},
	},
	"streetwear": {
		Name:                "streetwear",
		Tags:                []string{"streetwear", "urban"},
		FavoredPatterns:     []string{"graphic", "solid", "camo"},
		ConflictingPatterns: []string{"floral", "houndstooth"},
		FavoredColors:       []string{"black", "white", "red", "green"},
		PaletteSize:         3,
		FavoredMaterials:    []string{"cotton", "denim", "fleece", "nylon"},
		FavoredFits:         []string{"oversized", "relaxed", "baggy"},
		ExcludeTags:         []string{"formal"},
		ExcludeKeywords:     []string{"gown", "tuxedo"},
		Keywords:            []string{"hoodie", "sneaker", "graphic", "cargo", "oversized"},
	},
	"bohemian": {
		Name:                "bohemian",
		Tags:                []string{"bohemian", "boho"},
		FavoredPatterns:     []string{"floral", "paisley", "embroidered"},
		ConflictingPatterns: []string{"graphic", "camo"},
		FavoredColors:       []string{"cream", "rust", "olive", "mustard", "terracotta"},
		PaletteSize:         4,
		FavoredMaterials:    []string{"linen", "suede", "crochet", "cotton"},
		FavoredFits:         []string{"flowy", "relaxed", "oversized"},
		ExcludeTags:         []string{"athletic"},
		ExcludeKeywords:     []string{"track", "jersey"},
		Keywords:            []string{"fringe", "embroidered", "maxi", "flowy", "crochet"},
	},
	"classic": {
		Name:                "classic",
		Tags:                []string{"classic", "preppy", "timeless"},
		FavoredPatterns:     []string{"solid", "striped", "plaid"},
		ConflictingPatterns: []string{"neon", "graphic"},
		FavoredColors:       []string{"navy", "white", "beige", "black", "burgundy"},
		PaletteSize:         3,
		FavoredMaterials:    []string{"cotton", "wool", "silk", "leather"},
		FavoredFits:         []string{"tailored", "straight", "slim"},
		ExcludeTags:         []string{"neon"},
		ExcludeKeywords:     []string{"ripped", "distressed", "neon"},
		Keywords:            []string{"oxford", "chino", "loafer", "trench", "button-down"},
	},
	"athleisure": {
		Name:                "athleisure",
		Tags:                []string{"athleisure", "athletic", "sporty"},
		FavoredPatterns:     []string{"solid", "color-block"},
		ConflictingPatterns: []string{"floral", "paisley"},
		FavoredColors:       []string{"black", "gray", "white", "navy"},
		PaletteSize:         2,
		FavoredMaterials:    []string{"jersey", "fleece", "nylon", "spandex"},
		FavoredFits:         []string{"slim", "relaxed", "fitted"},
		ExcludeTags:         []string{"formal"},
		ExcludeKeywords:     []string{"gown", "blazer", "tuxedo"},
		Keywords:            []string{"legging", "jogger", "sneaker", "hoodie", "track"},
	},
	"romantic": {
		Name:                "romantic",
		Tags:                []string{"romantic", "feminine"},
		FavoredPatterns:     []string{"floral", "lace", "polka dot"},
		ConflictingPatterns: []string{"camo", "graphic"},
		FavoredColors:       []string{"blush", "cream", "lavender", "red", "white"},
		PaletteSize:         3,
		FavoredMaterials:    []string{"silk", "chiffon", "lace", "satin"},
		FavoredFits:         []string{"flowy", "fitted", "a-line"},
		ExcludeTags:         []string{"athletic"},
		ExcludeKeywords:     []string{"cargo", "track"},
		Keywords:            []string{"lace", "ruffle", "floral", "silk", "wrap"},
	},
}

// ResolveStyleRule resolves a free-text style string once, at request time.
// Recognized styles get their curated rule; anything else gets the permissive
// default with empty exclusion lists.
func ResolveStyleRule(style string) StyleRule {
	if rule, ok := styleRules[Canonical(style)]; ok {
		rule.Known = true
		return rule
	}
	return StyleRule{Name: Canonical(style)}
}

// bodyTypeFits maps a body type to the fits that flatter it. A nudge only,
// never an exclusion; unknown body types match nothing.
var bodyTypeFits = map[string][]string{
	"hourglass": {"fitted", "wrap", "tailored"},
	"pear":      {"a-line", "flowy", "straight"},
	"apple":     {"relaxed", "flowy", "a-line"},
	"rectangle": {"slim", "fitted", "tailored"},
	"athletic":  {"slim", "straight", "fitted"},
	"petite":    {"slim", "tailored", "cropped"},
	"tall":      {"straight", "relaxed", "oversized"},
}

func fitsForBodyType(bodyType string) []string {
	return bodyTypeFits[Canonical(bodyType)]
}

// Mood accents give a small nudge, never an exclusion.
var moodAccents = map[string]struct {
	Colors   []string
	Patterns []string
}{
	"romantic":    {Colors: []string{"red", "blush", "cream"}, Patterns: []string{"floral", "lace"}},
	"confident":   {Colors: []string{"red", "black"}, Patterns: []string{"solid"}},
	"relaxed":     {Colors: []string{"beige", "olive", "gray"}, Patterns: []string{"solid"}},
	"playful":     {Colors: []string{"yellow", "pink", "orange"}, Patterns: []string{"graphic", "polka dot"}},
	"serious":     {Colors: []string{"navy", "black", "gray"}, Patterns: []string{"solid", "striped"}},
	"adventurous": {Colors: []string{"green", "rust"}, Patterns: []string{"camo", "plaid"}},
}

// neutral colors count toward versatility in the last fallback level
var neutralColors = map[string]bool{
	"black": true, "white": true, "gray": true, "grey": true,
	"navy": true, "beige": true, "cream": true, "tan": true,
}

package models

import "github.com/go-playground/validator"

// Occasions the engine has explicit rules for. Free-text occasions are
// accepted by the API and fall through to the permissive default rule set.
const (
	OccasionCasual       = "casual"
	OccasionWork         = "work"
	OccasionBusiness     = "business formal"
	OccasionGym          = "gym"
	OccasionWorkout      = "workout"
	OccasionWedding      = "wedding guest"
	OccasionGala         = "gala"
	OccasionBlackTie     = "black tie"
	OccasionBeach        = "beach"
	OccasionPool         = "pool"
	OccasionDate         = "date night"
	OccasionLoungewear   = "loungewear"
	OccasionNightOut     = "night out"
	OccasionBrunch       = "brunch"
	OccasionTravel       = "travel"
	OccasionInterviewJob = "job interview"
)

func ValidateOccasion(fl validator.FieldLevel) bool {
	return fl.Field().String() != ""
}

// FallbackStrategy records which relaxation level produced the outfit and
// what was given up to get there.
type FallbackStrategy struct {
	Name               string   `json:"name"`
	Reason             string   `json:"reason"`
	RelaxedConstraints []string `json:"relaxed_constraints"`
	Gaps               []string `json:"gaps"`
}

// GenerationMetadata is attached to every engine response, cache hit or not.
type GenerationMetadata struct {
	CacheHit           bool    `json:"cache_hit"`
	GenerationDuration float64 `json:"generation_duration"` // seconds
	IsSlow             bool    `json:"is_slow"`
}

type GeneratedOutfit struct {
	JsonModel
	Name     string      `json:"name"`
	Owner    UserAccount `json:"-"`
	OwnerID  uint        `json:"-"`
	Occasion string      `json:"occasion"`
	Style    string      `json:"style"`
	Mood     string      `json:"mood"`

	// ordered: top, bottom, shoes, then optional outerwear/accessory
	ItemIDs []uint `gorm:"serializer:json" json:"items"`

	WasSuccessful    bool              `json:"wasSuccessful"`
	Warnings         []string          `gorm:"serializer:json" json:"warnings"`
	ValidationErrors []string          `gorm:"serializer:json" json:"validationErrors"`
	Gaps             []string          `gorm:"serializer:json" json:"gaps"`
	FallbackStrategy *FallbackStrategy `gorm:"serializer:json" json:"fallback_strategy"`

	Metadata GenerationMetadata `gorm:"embedded;embeddedPrefix:meta_" json:"metadata"`

	// filled in asynchronously by the stylist worker task
	StylistNote         *string `gorm:"type:text" json:"stylist_note"`
	LLMModel            *string `json:"llm_model"`
	LLMInputTokenCount  *int32  `json:"llm_input_token_usage"`
	LLMOutputTokenCount *int32  `json:"llm_output_token_usage"`
	LLMTotalTokenCount  *int32  `json:"llm_total_token_usage"`

	WornAt *int64 `json:"worn_at"`
}

// ContainsItem reports whether the outfit includes the given wardrobe item.
func (o *GeneratedOutfit) ContainsItem(itemID uint) bool {
	for _, id := range o.ItemIDs {
		if id == itemID {
			return true
		}
	}
	return false
}

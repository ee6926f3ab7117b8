package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator"
)

// Wardrobe item categories. "other" covers items that never take part in
// outfit assembly (bags, umbrellas etc.) but still live in the closet.
const (
	CategoryTop       = "top"
	CategoryBottom    = "bottom"
	CategoryShoes     = "shoes"
	CategoryOuterwear = "outerwear"
	CategoryAccessory = "accessory"
	CategoryOther     = "other"
)

func ValidateCategory(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case CategoryTop, CategoryBottom, CategoryShoes, CategoryOuterwear, CategoryAccessory, CategoryOther:
		return true
	}
	return false
}

type WardrobeItem struct {
	JsonModel
	Name        string      `json:"name"`
	Description *string     `gorm:"type:text" json:"description"`
	Category    string      `json:"category"` // top, bottom, shoes, outerwear, accessory, other
	Subtype     string      `json:"subtype"`  // e.g. blazer, sneakers, midi-skirt
	Owner       UserAccount `json:"-"`
	OwnerID     uint        `json:"-"`

	// dominant color first, then matching/secondary colors
	Colors    []string `gorm:"serializer:json" json:"colors"`
	Pattern   string   `json:"pattern"`  // solid, floral, striped, plaid, graphic ...
	Material  string   `json:"material"` // cotton, wool, leather, linen ...
	Fit       string   `json:"fit"`      // slim, relaxed, oversized, tailored ...
	Formality int      `json:"formality"`

	SeasonTags []string `gorm:"serializer:json" json:"season_tags"`
	StyleTags  []string `gorm:"serializer:json" json:"style_tags"`

	WearCount  int        `json:"wear_count"`
	LastWornAt *time.Time `json:"last_worn_at"`
	Favorite   bool       `gorm:"default:false" json:"favorite"`

	Status   string  `json:"status"` // temporary, in_closet
	ImageURL *string `json:"image_url"`
}

// HasSeasonTag reports whether the item is tagged for the given season.
// Items with no season tags are treated as all-season. Tags are user-typed,
// so matching is case-insensitive.
func (w *WardrobeItem) HasSeasonTag(season string) bool {
	if len(w.SeasonTags) == 0 {
		return true
	}
	for _, t := range w.SeasonTags {
		if strings.EqualFold(t, season) {
			return true
		}
	}
	return false
}

func (w *WardrobeItem) HasStyleTag(tag string) bool {
	for _, t := range w.StyleTags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

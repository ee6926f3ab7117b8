package models

import "time"

type UserAccount struct {
	JsonModel
	Name     string   `json:"name"`
	Email    string   `json:"email" gorm:"unique"`
	Banned   bool     `gorm:"default:false" json:"-"`
	LastIp   string   `json:"-"`
	Status   string   `json:"-"`
	Platform Platform `sql:"type:ENUM('ios', 'android', 'web')" json:"platform"`

	Subscription   *string    `json:"subscription"`
	ExpirationDate *time.Time `json:"-"`
	// overrides the free-plan quota when set
	EnforcedDailyGenerationLimit *int32 `json:"enforced_daily_generation_limit"`

	// styling profile used by the outfit engine
	BodyType         string   `json:"body_type"`
	StylePreferences []string `gorm:"serializer:json" json:"style_preferences"`
	HeightCm         *int32   `json:"height_cm"`
	WeightKg         *int32   `json:"weight_kg"`

	AvatarURL string `json:"avatar_url"`
}

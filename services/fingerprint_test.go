package services

import (
	"testing"
	"time"

	"outfitapi/models"

	"github.com/stretchr/testify/assert"
)

func fingerprintRequest() *GenerationRequest {
	top := itemWithID(1, models.CategoryTop)
	top.Colors = []string{"white"}
	bottom := itemWithID(2, models.CategoryBottom)
	return &GenerationRequest{
		Occasion: "casual",
		Style:    "minimalist",
		Weather:  WeatherSnapshot{TemperatureC: 18, Condition: "clear"},
		Wardrobe: []models.WardrobeItem{top, bottom},
	}
}

func TestFingerprintStable(t *testing.T) {
	a := Fingerprint(fingerprintRequest())
	b := Fingerprint(fingerprintRequest())
	assert.Equal(t, a, b)
	assert.Contains(t, a, "outfit:")
}

func TestFingerprintCanonicalizesText(t *testing.T) {
	req := fingerprintRequest()
	base := Fingerprint(req)

	req.Occasion = "  CASUAL "
	req.Style = "Minimalist"
	assert.Equal(t, base, Fingerprint(req))
}

func TestFingerprintIgnoresStylingProfile(t *testing.T) {
	// the profile is caller identity; it nudges scoring but never the key
	req := fingerprintRequest()
	base := Fingerprint(req)

	req.Profile = StylingProfile{BodyType: "petite", StylePreferences: []string{"classic"}}
	assert.Equal(t, base, Fingerprint(req))
}

func TestFingerprintIgnoresWardrobeOrder(t *testing.T) {
	req := fingerprintRequest()
	base := Fingerprint(req)

	req.Wardrobe[0], req.Wardrobe[1] = req.Wardrobe[1], req.Wardrobe[0]
	assert.Equal(t, base, Fingerprint(req))
}

func TestFingerprintChangesWithWardrobeContent(t *testing.T) {
	req := fingerprintRequest()
	base := Fingerprint(req)

	req.Wardrobe[0].WearCount++
	assert.NotEqual(t, base, Fingerprint(req), "wear count changes invalidate the entry")

	req = fingerprintRequest()
	req.Wardrobe[1].StyleTags = []string{"classic"}
	assert.NotEqual(t, base, Fingerprint(req), "tag changes invalidate the entry")

	req = fingerprintRequest()
	worn := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	req.Wardrobe[0].LastWornAt = &worn
	assert.NotEqual(t, base, Fingerprint(req))
}

func TestFingerprintBucketsWeather(t *testing.T) {
	req := fingerprintRequest()
	base := Fingerprint(req)

	// same bucket, same key
	req.Weather.TemperatureC = 15
	assert.Equal(t, base, Fingerprint(req))

	// crossing a bucket boundary changes the key
	req.Weather.TemperatureC = 25
	assert.NotEqual(t, base, Fingerprint(req))
}

func TestFingerprintIncludesBaseItem(t *testing.T) {
	req := fingerprintRequest()
	base := Fingerprint(req)

	req.BaseItem = &req.Wardrobe[0]
	assert.NotEqual(t, base, Fingerprint(req))
}

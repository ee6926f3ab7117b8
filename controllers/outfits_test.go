package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"outfitapi/dbhelper"
	"outfitapi/models"
	"outfitapi/services"
	"outfitapi/test"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestServer(t *testing.T, db *gorm.DB) (*echo.Echo, *services.OutfitEngine) {
	t.Helper()
	os.Setenv("JWT_SECRET", "testsecret")
	os.Setenv("ROOT_PASSWORD", "rootpass")

	cache, err := services.NewOutfitCacheService(time.Hour)
	require.NoError(t, err)
	engine := services.NewOutfitEngine(cache, services.NewPerformanceMonitor())
	weather := &test.WeatherProviderMock{Snapshot: services.DefaultWeather()}
	e := SetupServer(db, &test.AWSProviderMock{}, test.URLCacheMock{MockUrl: "https://fake.example/read"}, weather, engine, nil)
	return e, engine
}

func userPk(user *models.UserAccount) string {
	return strconv.FormatUint(uint64(user.ID), 10)
}

func TestGenerateOutfitOk(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e, _ := newTestServer(t, db)
	user := test.FakeUser(db)
	test.FakeWardrobe(db, user.ID)

	reqBody := GenerateOutfitIn{Occasion: "casual"}
	req := test.NewJSONAuthRequest("POST", "/shop/outfits/generate", userPk(user), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, "Expected status code 200, got %d: %s", rec.Code, rec.Body.String())

	var response models.GeneratedOutfit
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.True(t, response.WasSuccessful)
	assert.Equal(t, "casual", response.Occasion)
	assert.Len(t, response.ItemIDs, 3)
	assert.False(t, response.Metadata.CacheHit)

	// persisted exactly once
	var count int64
	db.Model(&models.GeneratedOutfit{}).Where("owner_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestGenerateOutfitSecondCallCacheHit(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e, _ := newTestServer(t, db)
	user := test.FakeUser(db)
	test.FakeWardrobe(db, user.ID)

	reqBody := GenerateOutfitIn{Occasion: "casual"}

	req := test.NewJSONAuthRequest("POST", "/shop/outfits/generate", userPk(user), reqBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var first models.GeneratedOutfit
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	require.True(t, first.WasSuccessful)

	// the first generation enters history; wait for nothing, history feeds
	// diversity only on cache misses, so the identical request still hits
	req = test.NewJSONAuthRequest("POST", "/shop/outfits/generate", userPk(user), reqBody)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var second models.GeneratedOutfit
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, first.ItemIDs, second.ItemIDs)

	// cached responses are not re-persisted
	var count int64
	db.Model(&models.GeneratedOutfit{}).Where("owner_id = ? AND meta_cache_hit = ?", user.ID, false).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestGenerateOutfitUsesStylingProfile(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e, _ := newTestServer(t, db)
	user := test.FakeUser(db)
	user.StylePreferences = []string{"classic"}
	db.Save(user)

	items := test.FakeWardrobe(db, user.ID)
	// the oxford shirt carries the preferred tag; without the profile the
	// white tee would win the zero-score tie on id
	items[1].StyleTags = []string{"classic"}
	db.Save(&items[1])

	req := test.NewJSONAuthRequest("POST", "/shop/outfits/generate", userPk(user), GenerateOutfitIn{Occasion: "casual"})
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var response models.GeneratedOutfit
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Contains(t, response.ItemIDs, items[1].ID)
	assert.NotContains(t, response.ItemIDs, items[0].ID)
}

func TestGenerateOutfitEmptyCloset(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e, _ := newTestServer(t, db)
	user := test.FakeUser(db)

	reqBody := GenerateOutfitIn{Occasion: "casual"}
	req := test.NewJSONAuthRequest("POST", "/shop/outfits/generate", userPk(user), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var response map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Contains(t, response["error"], "closet is empty")
}

func TestGenerateOutfitMissingOccasion(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e, _ := newTestServer(t, db)
	user := test.FakeUser(db)
	test.FakeWardrobe(db, user.ID)

	req := test.NewJSONAuthRequest("POST", "/shop/outfits/generate", userPk(user), GenerateOutfitIn{})
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateOutfitUnauthorized(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e, _ := newTestServer(t, db)

	req := test.NewJSONRequest("POST", "/shop/outfits/generate", GenerateOutfitIn{Occasion: "casual"})
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGenerateOutfitBaseItemNotOwned(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e, _ := newTestServer(t, db)
	user := test.FakeUser(db)
	test.FakeWardrobe(db, user.ID)

	missing := uint(999999)
	reqBody := GenerateOutfitIn{Occasion: "casual", BaseItemID: &missing}
	req := test.NewJSONAuthRequest("POST", "/shop/outfits/generate", userPk(user), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var response map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Contains(t, response["error"], "not in your closet")
}

func TestGenerateOutfitDailyQuota(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e, _ := newTestServer(t, db)
	user := test.FakeUser(db)
	test.FakeWardrobe(db, user.ID)

	limit := int32(1)
	user.EnforcedDailyGenerationLimit = &limit
	db.Save(user)

	req := test.NewJSONAuthRequest("POST", "/shop/outfits/generate", userPk(user), GenerateOutfitIn{Occasion: "casual"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// a different occasion so the cache does not absorb the call
	req = test.NewJSONAuthRequest("POST", "/shop/outfits/generate", userPk(user), GenerateOutfitIn{Occasion: "brunch"})
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	var response map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Contains(t, response["error"], "daily limit")
}

func TestOutfitHistoryOk(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e, _ := newTestServer(t, db)
	user := test.FakeUser(db)

	outfit := models.GeneratedOutfit{OwnerID: user.ID, Name: "Casual Look", Occasion: "casual", ItemIDs: []uint{1, 2, 3}, WasSuccessful: true}
	db.Create(&outfit)

	req := test.NewJSONAuthRequest("GET", "/shop/outfits/history", userPk(user), nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var response OutfitHistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response.Outfits, 1)
	assert.Equal(t, "Casual Look", response.Outfits[0].Name)
}

func TestMarkWornUpdatesWearCounts(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e, _ := newTestServer(t, db)
	user := test.FakeUser(db)
	items := test.FakeWardrobe(db, user.ID)

	outfit := models.GeneratedOutfit{
		OwnerID:       user.ID,
		Name:          "Casual Look",
		Occasion:      "casual",
		ItemIDs:       []uint{items[0].ID, items[2].ID, items[4].ID},
		WasSuccessful: true,
	}
	db.Create(&outfit)

	req := test.NewJSONAuthRequest("POST", fmt.Sprintf("/shop/outfits/%v/wear", outfit.ID), userPk(user), nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var worn models.GeneratedOutfit
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &worn))
	assert.NotNil(t, worn.WornAt)

	var item models.WardrobeItem
	db.First(&item, items[0].ID)
	assert.Equal(t, 1, item.WearCount)
	assert.NotNil(t, item.LastWornAt)
}

func TestMarkWornRejectsGapOutfit(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e, _ := newTestServer(t, db)
	user := test.FakeUser(db)

	outfit := models.GeneratedOutfit{OwnerID: user.ID, Occasion: "casual", WasSuccessful: false, Gaps: []string{"shoes"}}
	db.Create(&outfit)

	req := test.NewJSONAuthRequest("POST", fmt.Sprintf("/shop/outfits/%v/wear", outfit.ID), userPk(user), nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarkWornNotFoundForOtherUser(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e, _ := newTestServer(t, db)
	user := test.FakeUser(db)

	other := models.UserAccount{Name: "Other", Email: "other@example.com", Platform: models.PlatformIOS}
	db.Create(&other)
	outfit := models.GeneratedOutfit{OwnerID: other.ID, Occasion: "casual", WasSuccessful: true}
	db.Create(&outfit)

	req := test.NewJSONAuthRequest("POST", fmt.Sprintf("/shop/outfits/%v/wear", outfit.ID), userPk(user), nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInternalCacheStatsAndInvalidate(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e, _ := newTestServer(t, db)
	user := test.FakeUser(db)
	test.FakeWardrobe(db, user.ID)

	// one miss, one hit
	for i := 0; i < 2; i++ {
		req := test.NewJSONAuthRequest("POST", "/shop/outfits/generate", userPk(user), GenerateOutfitIn{Occasion: "casual"})
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	req := test.NewJSONRootRequest("GET", "/internal/cache/stats", nil, os.Getenv("ROOT_PASSWORD"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats services.CacheStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)

	req = test.NewJSONRootRequest("POST", "/internal/cache/invalidate", nil, os.Getenv("ROOT_PASSWORD"))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInternalPerformanceEndpoints(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e, engine := newTestServer(t, db)

	engine.Monitor.Observe(30 * time.Millisecond)

	req := test.NewJSONRootRequest("GET", "/internal/performance", nil, os.Getenv("ROOT_PASSWORD"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var report services.PerformanceReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, int64(1), report.Count)

	req = test.NewJSONRootRequest("POST", "/internal/performance/reset", nil, os.Getenv("ROOT_PASSWORD"))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, int64(0), engine.Monitor.Snapshot().Count)
}

func TestInternalRequiresRootPassword(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e, _ := newTestServer(t, db)

	req := test.NewJSONRequest("GET", "/internal/cache/stats", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

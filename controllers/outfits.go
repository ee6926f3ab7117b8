package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"outfitapi/models"
	"outfitapi/services"
	"outfitapi/tasks"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// free plan cap on generations per day
const freeDailyGenerationLimit = 10

type GenerateOutfitIn struct {
	Occasion    string   `json:"occasion" validate:"required,occasion,max=60"`
	Style       string   `json:"style" validate:"omitempty,max=60"`
	Mood        string   `json:"mood" validate:"omitempty,max=60"`
	BaseItemID  *uint    `json:"base_item_id"`
	BypassCache bool     `json:"bypass_cache"`
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
}

type OutfitHistoryResponse struct {
	Outfits []models.GeneratedOutfit `json:"outfits"`
}

type OutfitsController struct {
	Engine  *services.OutfitEngine
	Weather services.WeatherProvider
}

func (controller *OutfitsController) OutfitRoutes(g *echo.Group) {
	g.POST("/generate", controller.GenerateOutfit)
	g.GET("/history", controller.History)
	g.POST("/:id/wear", controller.MarkWorn)
}

func (controller *OutfitsController) GenerateOutfit(c echo.Context) error {
	var req GenerateOutfitIn
	if err := c.Bind(&req); err != nil {
		fmt.Println(err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}

	if blocked, resp := checkGenerationQuota(c, db, &user); blocked {
		return resp
	}

	wardrobe, err := loadCloset(db, user.ID)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": services.ErrWardrobeUnavailable.Error()})
	}
	if len(wardrobe) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Your closet is empty, add some items first"})
	}

	var baseItem *models.WardrobeItem
	if req.BaseItemID != nil {
		for i := range wardrobe {
			if wardrobe[i].ID == *req.BaseItemID {
				baseItem = &wardrobe[i]
				break
			}
		}
		if baseItem == nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Base item is not in your closet"})
		}
	}

	var history []models.GeneratedOutfit
	if err := db.Where("owner_id = ? AND was_successful = ?", user.ID, true).
		Order("id desc").Limit(services.HistoryWindow).Find(&history).Error; err != nil {
		log.Printf("Failed to load outfit history for user %v: %v", user.ID, err)
		history = nil
	}

	weather := controller.resolveWeather(c, req.Lat, req.Lon)

	generated, err := controller.Engine.Generate(c.Request().Context(), &services.GenerationRequest{
		Occasion:    req.Occasion,
		Style:       req.Style,
		Mood:        req.Mood,
		Weather:     weather,
		Profile:     services.StylingProfileOf(&user),
		Wardrobe:    wardrobe,
		BaseItem:    baseItem,
		History:     history,
		BypassCache: req.BypassCache,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyWardrobe), errors.Is(err, services.ErrMissingOccasion):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, services.ErrGenerationTimeout):
			sentry.CaptureException(err)
			return c.JSON(http.StatusGatewayTimeout, map[string]string{"error": "Outfit generation took too long, please try again"})
		default:
			sentry.CaptureException(err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate outfit"})
		}
	}

	if !generated.Metadata.CacheHit {
		generated.OwnerID = user.ID
		if err := db.Create(generated).Error; err != nil {
			sentry.CaptureException(err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save outfit"})
		}

		if generated.WasSuccessful {
			if asynqClient, ok := c.Get("__asynqclient").(*asynq.Client); ok && asynqClient != nil {
				task, taskErr := tasks.NewStylistNoteTask(generated.ID)
				if taskErr == nil {
					info, enqErr := asynqClient.Enqueue(task, asynq.MaxRetry(3), asynq.Queue("generate"))
					if enqErr != nil {
						sentry.CaptureException(enqErr)
					} else {
						fmt.Println("[Queue] Stylist note task submitted, Outfit ID: ", generated.ID, " Task ID: ", info.ID)
					}
				}
			}
		}
	}

	if generated.Metadata.IsSlow {
		log.Printf("SLOW GENERATION: user %v occasion %q took %.2fs (target %.0fs)",
			user.ID, generated.Occasion, generated.Metadata.GenerationDuration, controller.Engine.Monitor.Threshold().Seconds())
	}

	return c.JSON(http.StatusOK, generated)
}

func (controller *OutfitsController) History(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}

	var outfits []models.GeneratedOutfit
	if err := db.Where("owner_id = ?", user.ID).Order("id desc").Limit(50).Find(&outfits).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch outfit history"})
	}
	if outfits == nil {
		outfits = []models.GeneratedOutfit{}
	}
	return c.JSON(http.StatusOK, OutfitHistoryResponse{Outfits: outfits})
}

// MarkWorn records that the user actually wore the outfit. Wear counts feed
// both scoring tie-breaks and the diversity penalty on later generations, so
// the cache is rewarmed afterwards.
func (controller *OutfitsController) MarkWorn(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}

	outfitId, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid outfit id"})
	}

	var outfit models.GeneratedOutfit
	if err := db.First(&outfit, "id = ? AND owner_id = ?", outfitId, user.ID).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Outfit not found"})
	}
	if !outfit.WasSuccessful {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "This outfit has gaps and cannot be worn"})
	}

	now := time.Now()
	wornAt := now.Unix()
	outfit.WornAt = &wornAt
	if err := db.Save(&outfit).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update outfit"})
	}

	if len(outfit.ItemIDs) > 0 {
		if err := db.Model(&models.WardrobeItem{}).
			Where("id IN ? AND owner_id = ?", outfit.ItemIDs, user.ID).
			Updates(map[string]interface{}{
				"wear_count":   gorm.Expr("wear_count + 1"),
				"last_worn_at": now,
			}).Error; err != nil {
			sentry.CaptureException(err)
		}
	}

	if asynqClient, ok := c.Get("__asynqclient").(*asynq.Client); ok && asynqClient != nil {
		task, taskErr := tasks.NewOutfitPrecomputeTask(user.ID)
		if taskErr == nil {
			if _, enqErr := asynqClient.Enqueue(task, asynq.MaxRetry(3), asynq.Queue("generate")); enqErr != nil {
				sentry.CaptureException(enqErr)
			}
		}
	}

	return c.JSON(http.StatusOK, outfit)
}

// resolveWeather fetches live conditions when coordinates are present, with
// one retry, then falls back to the mild default so generation never blocks
// on the weather provider.
func (controller *OutfitsController) resolveWeather(c echo.Context, lat, lon *float64) services.WeatherSnapshot {
	if lat == nil || lon == nil || controller.Weather == nil {
		return services.DefaultWeather()
	}
	ctx := c.Request().Context()
	weather, err := controller.Weather.CurrentWeather(ctx, *lat, *lon)
	if err != nil {
		weather, err = controller.Weather.CurrentWeather(ctx, *lat, *lon)
	}
	if err != nil {
		log.Printf("Weather provider unavailable, using default: %v", err)
		return services.DefaultWeather()
	}
	return weather
}

// loadCloset reads the in_closet wardrobe with one retry before giving up.
func loadCloset(db *gorm.DB, ownerID uint) ([]models.WardrobeItem, error) {
	var wardrobe []models.WardrobeItem
	err := db.Where("owner_id = ? AND status = ?", ownerID, "in_closet").Find(&wardrobe).Error
	if err != nil {
		if err = db.Where("owner_id = ? AND status = ?", ownerID, "in_closet").Find(&wardrobe).Error; err != nil {
			return nil, services.ErrWardrobeUnavailable
		}
	}
	return wardrobe, nil
}

func checkGenerationQuota(c echo.Context, db *gorm.DB, user *models.UserAccount) (bool, error) {
	limit := int64(freeDailyGenerationLimit)
	if user.EnforcedDailyGenerationLimit != nil {
		limit = int64(*user.EnforcedDailyGenerationLimit)
	} else if user.Subscription != nil && *user.Subscription != "free" {
		return false, nil
	}

	startOfDay := time.Now().UTC().Truncate(24 * time.Hour)
	var todayCount int64
	if err := db.Model(&models.GeneratedOutfit{}).
		Where("owner_id = ? AND created_at >= ? AND meta_cache_hit = ?", user.ID, startOfDay, false).
		Count(&todayCount).Error; err != nil {
		return true, c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to check generation quota"})
	}
	if todayCount >= limit {
		return true, c.JSON(http.StatusForbidden, map[string]string{"error": fmt.Sprintf("You have reached your daily limit of %v generations, please subscribe or come back tomorrow", limit)})
	}
	return false, nil
}

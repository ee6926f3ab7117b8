package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"outfitapi/models"
	"outfitapi/services"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

const (
	TypeOutfitPrecompute = "outfit:precompute"
	TypeStylistNote      = "outfit:stylist_note"
)

type OutfitPrecomputePayload struct {
	UserID uint `json:"user_id"`
}
type StylistNotePayload struct {
	OutfitID uint `json:"outfit_id"`
}

// staple occasions warmed into the cache after wardrobe changes
var precomputeOccasions = []string{models.OccasionCasual, models.OccasionWork}

func NewOutfitPrecomputeTask(userID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(OutfitPrecomputePayload{UserID: userID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeOutfitPrecompute, payload), nil
}

func NewStylistNoteTask(outfitID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(StylistNotePayload{OutfitID: outfitID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeStylistNote, payload), nil
}

// HandleOutfitPrecomputeTask warms the generation cache for a user after
// their wardrobe or wear history changed. It bypasses the cache so stale
// entries for the new fingerprint never linger.
func HandleOutfitPrecomputeTask(ctx context.Context, t *asynq.Task, db *gorm.DB, engine *services.OutfitEngine) error {
	var payload OutfitPrecomputePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	fmt.Printf("[Precompute: %v] Start warming\n", payload.UserID)

	var user models.UserAccount
	if err := db.First(&user, payload.UserID).Error; err != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on retrieving user for precompute %v: %v", payload.UserID, err))
		return err
	}

	var wardrobe []models.WardrobeItem
	if err := db.Where("owner_id = ? AND status = ?", payload.UserID, "in_closet").Find(&wardrobe).Error; err != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on retrieving wardrobe for precompute, user %v: %v", payload.UserID, err))
		return err
	}
	if len(wardrobe) == 0 {
		fmt.Printf("[Precompute: %v] Closet is empty, nothing to warm\n", payload.UserID)
		return nil
	}

	var history []models.GeneratedOutfit
	if err := db.Where("owner_id = ? AND was_successful = ?", payload.UserID, true).
		Order("id desc").Limit(services.HistoryWindow).Find(&history).Error; err != nil {
		fmt.Printf("[Precompute: %v] Failed to load history, warming without it: %v\n", payload.UserID, err)
		history = nil
	}

	for _, occasion := range precomputeOccasions {
		_, err := engine.Generate(ctx, &services.GenerationRequest{
			Occasion:    occasion,
			Weather:     services.DefaultWeather(),
			Profile:     services.StylingProfileOf(&user),
			Wardrobe:    wardrobe,
			History:     history,
			BypassCache: true,
		})
		if err != nil {
			fmt.Printf("[Precompute: %v] Warming %q failed: %v\n", payload.UserID, occasion, err)
			sentry.CaptureException(fmt.Errorf("[Precompute: %v] Warming %q failed: %v", payload.UserID, occasion, err))
			continue
		}
		fmt.Printf("[Precompute: %v] Warmed %q\n", payload.UserID, occasion)
	}
	return nil
}

// HandleNightlyWarmTask warms staple-occasion outfits for every recently
// active user before the morning rush.
func HandleNightlyWarmTask(ctx context.Context, t *asynq.Task, db *gorm.DB, engine *services.OutfitEngine) error {
	fmt.Printf("[Nightly Warm] Processing for recently active users\n")

	cutoff := time.Now().AddDate(0, 0, -7)
	var userIDs []uint
	if err := db.Model(&models.GeneratedOutfit{}).
		Where("created_at >= ?", cutoff).
		Distinct("owner_id").Pluck("owner_id", &userIDs).Error; err != nil {
		sentry.CaptureException(fmt.Errorf("[Nightly Warm] Error fetching active users: %v", err))
		return err
	}
	fmt.Printf("[Nightly Warm] Found %d users to warm\n", len(userIDs))

	for _, userID := range userIDs {
		payload, err := json.Marshal(OutfitPrecomputePayload{UserID: userID})
		if err != nil {
			continue
		}
		if err := HandleOutfitPrecomputeTask(ctx, asynq.NewTask(TypeOutfitPrecompute, payload), db, engine); err != nil {
			fmt.Printf("[Nightly Warm] Failed for user %d: %v\n", userID, err)
			continue
		}
	}
	return nil
}

// HandleStylistNoteTask writes the asynchronous stylist note for a generated
// outfit. Failures return an error so asynq retries.
func HandleStylistNoteTask(ctx context.Context, t *asynq.Task, db *gorm.DB, stylist services.StylistProvider) error {
	var payload StylistNotePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	fmt.Printf("[Stylist: %v] Start Processing\n", payload.OutfitID)

	var outfit models.GeneratedOutfit
	if err := db.First(&outfit, payload.OutfitID).Error; err != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on retrieving outfit for stylist note %v: %v", payload.OutfitID, err))
		return err
	}
	if !outfit.WasSuccessful {
		fmt.Printf("[Stylist: %v] Outfit has gaps, skipping note\n", payload.OutfitID)
		return nil
	}
	if outfit.StylistNote != nil {
		fmt.Printf("[Stylist: %v] Note already written\n", payload.OutfitID)
		return nil
	}

	var items []models.WardrobeItem
	if len(outfit.ItemIDs) > 0 {
		if err := db.Where("id IN ?", outfit.ItemIDs).Find(&items).Error; err != nil {
			sentry.CaptureException(fmt.Errorf("[Stylist: %v] Error on retrieving outfit items: %v", payload.OutfitID, err))
			return err
		}
	}

	model := services.Flash25
	modelString := model.String()
	fmt.Printf("[Stylist: %v] Model: %s\n", payload.OutfitID, modelString)

	response, err := stylist.OutfitNote(ctx, &outfit, items, model)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Stylist: %v] Error on generating note: %v", payload.OutfitID, err))
		return err
	}
	if response == nil || response.Response == "" {
		sentry.CaptureException(fmt.Errorf("[Stylist: %v] Response is empty but no error provided", payload.OutfitID))
		return fmt.Errorf("[Stylist: %v] Response is empty but no error provided", payload.OutfitID)
	}

	outfit.StylistNote = &response.Response
	outfit.LLMModel = &modelString
	outfit.LLMInputTokenCount = &response.InputTokenCount
	outfit.LLMOutputTokenCount = &response.OutputTokenCount
	outfit.LLMTotalTokenCount = &response.TotalTokenCount
	if err := db.Save(&outfit).Error; err != nil {
		sentry.CaptureException(fmt.Errorf("[Stylist: %v] Error on saving note: %v", payload.OutfitID, err))
		return err
	}
	fmt.Printf("[Stylist: %v] Note saved, IT: %d, OT: %d, TT: %d\n",
		payload.OutfitID, response.InputTokenCount, response.OutputTokenCount, response.TotalTokenCount)
	return nil
}

package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"outfitapi/models"
	"outfitapi/services"
	"outfitapi/tasks"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// free plan cap on total wardrobe items
const freeWardrobeLimit = 30

type CreateWardrobeItemIn struct {
	Name        string   `json:"name" validate:"omitempty,max=100"`
	FileName    *string  `json:"file_name" validate:"required,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=500"`
	Category    string   `json:"category" validate:"required,category"`
	Subtype     string   `json:"subtype" validate:"omitempty,max=60"`
	Colors      []string `json:"colors" validate:"omitempty,max=6,dive,max=30"`
	Pattern     string   `json:"pattern" validate:"omitempty,max=30"`
	Material    string   `json:"material" validate:"omitempty,max=30"`
	Fit         string   `json:"fit" validate:"omitempty,max=30"`
	Formality   int      `json:"formality" validate:"omitempty,min=1,max=5"`
	SeasonTags  []string `json:"season_tags" validate:"omitempty,max=4,dive,max=20"`
	StyleTags   []string `json:"style_tags" validate:"omitempty,max=10,dive,max=40"`
	Favorite    *bool    `json:"favorite"`
	AddToCloset *bool    `json:"add_to_closet" validate:"required"`
}

type WardrobeItemResponse struct {
	ID         uint       `json:"id"`
	Name       string     `json:"name"`
	Category   string     `json:"category"`
	Subtype    string     `json:"subtype"`
	Colors     []string   `json:"colors"`
	Pattern    string     `json:"pattern"`
	Material   string     `json:"material"`
	Fit        string     `json:"fit"`
	Formality  int        `json:"formality"`
	SeasonTags []string   `json:"season_tags"`
	StyleTags  []string   `json:"style_tags"`
	WearCount  int        `json:"wear_count"`
	LastWornAt *time.Time `json:"last_worn_at"`
	Favorite   bool       `json:"favorite"`
	Status     string     `json:"status"`
	Uri        *string    `json:"uri,omitempty"`
	CreatedAt  string     `json:"created_at"`
}

type WardrobeItemCreatedResponse struct {
	Item          WardrobeItemResponse `json:"item"`
	FileUploadUrl string               `json:"file_upload_url"`
}

type WardrobeListResponse struct {
	Tops        []WardrobeItemResponse `json:"tops"`
	Bottoms     []WardrobeItemResponse `json:"bottoms"`
	Shoes       []WardrobeItemResponse `json:"shoes"`
	Outerwear   []WardrobeItemResponse `json:"outerwear"`
	Accessories []WardrobeItemResponse `json:"accessories"`
	Other       []WardrobeItemResponse `json:"other"`
}

type WardrobeController struct {
	AWSService services.AWSServiceProvider
	URLCache   services.URLCacheServiceProvider
}

func (controller *WardrobeController) WardrobeRoutes(g *echo.Group) {
	g.POST("/create", controller.CreateItem)
	g.GET("/list", controller.ListItems)
}

func (controller *WardrobeController) CreateItem(c echo.Context) error {
	var req CreateWardrobeItemIn
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

	if req.FileName == nil || *req.FileName == "" {
		sentry.CaptureException(fmt.Errorf("Image was not provided when creating wardrobe item %s, user %v", req.Name, user.ID))
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Sorry, it seems image was not provided, please try again"})
	}

	if user.Subscription == nil || *user.Subscription == "free" {
		var totalItemCount int64
		if err := db.Model(&models.WardrobeItem{}).Where("owner_id = ?", user.ID).Count(&totalItemCount).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get wardrobe data"})
		}
		if totalItemCount >= freeWardrobeLimit {
			return c.JSON(http.StatusForbidden, map[string]string{"error": fmt.Sprintf("You have reached the free limit of %v wardrobe items, please subscribe", freeWardrobeLimit)})
		}
	}

	item := models.WardrobeItem{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Subtype:     req.Subtype,
		OwnerID:     user.ID,
		Colors:      req.Colors,
		Pattern:     req.Pattern,
		Material:    req.Material,
		Fit:         req.Fit,
		Formality:   req.Formality,
		SeasonTags:  req.SeasonTags,
		StyleTags:   req.StyleTags,
		Status:      "temporary",
	}
	if req.Favorite != nil {
		item.Favorite = *req.Favorite
	}
	if req.AddToCloset != nil && *req.AddToCloset {
		item.Status = "in_closet"
	}

	var bucketName = services.GetEnv("R2_BUCKET_NAME", "")
	safeFileName := fmt.Sprintf("wardrobe/%s", *req.FileName)
	uploadUrl, presignErr := controller.AWSService.PresignLink(c.Request().Context(), bucketName, safeFileName)
	if presignErr != nil {
		log.Printf("Unable to presign upload for %s!, %s", item.Name, presignErr)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"message": "Error while creating wardrobe item with attachment",
		})
	}
	item.ImageURL = &safeFileName

	if err := db.Create(&item).Error; err != nil {
		sentry.CaptureException(err)
		return err
	}

	// the wardrobe content changed, warm the cache for staple occasions
	if asynqClient, ok := c.Get("__asynqclient").(*asynq.Client); ok && asynqClient != nil {
		task, err := tasks.NewOutfitPrecomputeTask(user.ID)
		if err == nil {
			info, err := asynqClient.Enqueue(task, asynq.MaxRetry(3), asynq.Queue("generate"))
			if err != nil {
				sentry.CaptureException(err)
			} else {
				fmt.Println("[Queue] Precompute task submitted, User ID: ", user.ID, " Task ID: ", info.ID)
			}
		}
	}

	return c.JSON(http.StatusCreated, WardrobeItemCreatedResponse{
		Item:          toWardrobeItemResponse(&item, nil),
		FileUploadUrl: uploadUrl,
	})
}

func (controller *WardrobeController) ListItems(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}

	var items []models.WardrobeItem
	if err := db.Where("owner_id = ?", user.ID).Find(&items).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch wardrobe"})
	}

	processed := controller.populatePresignedItemImages(c.Request().Context(), items)

	response := WardrobeListResponse{
		Tops:        []WardrobeItemResponse{},
		Bottoms:     []WardrobeItemResponse{},
		Shoes:       []WardrobeItemResponse{},
		Outerwear:   []WardrobeItemResponse{},
		Accessories: []WardrobeItemResponse{},
		Other:       []WardrobeItemResponse{},
	}
	for _, resp := range processed {
		switch resp.Category {
		case models.CategoryTop:
			response.Tops = append(response.Tops, resp)
		case models.CategoryBottom:
			response.Bottoms = append(response.Bottoms, resp)
		case models.CategoryShoes:
			response.Shoes = append(response.Shoes, resp)
		case models.CategoryOuterwear:
			response.Outerwear = append(response.Outerwear, resp)
		case models.CategoryAccessory:
			response.Accessories = append(response.Accessories, resp)
		default:
			response.Other = append(response.Other, resp)
		}
	}

	return c.JSON(http.StatusOK, response)
}

// populatePresignedItemImages enriches raw items with presigned read URLs
// concurrently, with a direct-presign failsafe when the cache itself fails.
func (controller *WardrobeController) populatePresignedItemImages(ctx context.Context, items []models.WardrobeItem) []WardrobeItemResponse {
	if len(items) == 0 {
		return []WardrobeItemResponse{}
	}

	var wg sync.WaitGroup
	processed := make([]WardrobeItemResponse, len(items))
	bucketName := services.GetEnv("R2_BUCKET_NAME", "")

	for i, wardrobeItem := range items {
		wg.Add(1)
		go func(index int, item models.WardrobeItem) {
			defer wg.Done()

			var imageUrl string
			if item.ImageURL != nil && *item.ImageURL != "" {
				objectKey := *item.ImageURL
				url, err := controller.URLCache.GetReadURL(ctx, objectKey)
				if err == nil {
					imageUrl = url
				} else {
					log.Printf("CACHE WARNING: URL cache failed for key '%s': %v. Triggering direct presign fallback.", objectKey, err)
					sentry.WithScope(func(scope *sentry.Scope) {
						scope.SetTag("failure_type", "cache_system")
						scope.SetExtra("objectKey", objectKey)
						sentry.CaptureException(err)
					})
					fallbackUrl, fallbackErr := controller.AWSService.GetPresignedR2FileReadURL(ctx, bucketName, objectKey)
					if fallbackErr != nil {
						log.Printf("CRITICAL: direct presign fallback also failed for key '%s': %v", objectKey, fallbackErr)
						sentry.CaptureException(fallbackErr)
					} else {
						imageUrl = fallbackUrl
					}
				}
			}
			processed[index] = toWardrobeItemResponse(&item, &imageUrl)
		}(i, wardrobeItem)
	}

	wg.Wait()
	return processed
}

func toWardrobeItemResponse(item *models.WardrobeItem, uri *string) WardrobeItemResponse {
	return WardrobeItemResponse{
		ID:         item.ID,
		Name:       item.Name,
		Category:   item.Category,
		Subtype:    item.Subtype,
		Colors:     item.Colors,
		Pattern:    item.Pattern,
		Material:   item.Material,
		Fit:        item.Fit,
		Formality:  item.Formality,
		SeasonTags: item.SeasonTags,
		StyleTags:  item.StyleTags,
		WearCount:  item.WearCount,
		LastWornAt: item.LastWornAt,
		Favorite:   item.Favorite,
		Status:     item.Status,
		Uri:        uri,
		CreatedAt:  item.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

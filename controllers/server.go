package controllers

import (
	"net/http"
	"os"

	"outfitapi/models"
	"outfitapi/services"

	"github.com/go-playground/validator"
	"github.com/hibiken/asynq"
	echojwt "github.com/labstack/echo-jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func SetupServer(
	db *gorm.DB,
	awsService services.AWSServiceProvider,
	urlCache services.URLCacheServiceProvider,
	weatherService services.WeatherProvider,
	engine *services.OutfitEngine,
	asynqClient *asynq.Client,
) *echo.Echo {
	e := echo.New()

	v := validator.New()
	v.RegisterValidation("platform", models.ValidatePlatform)
	v.RegisterValidation("category", models.ValidateCategory)
	v.RegisterValidation("occasion", models.ValidateOccasion)
	e.Validator = &CustomValidator{validator: v}

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("__db", db)
			c.Set("__asynqclient", asynqClient)
			return next(c)
		}
	})

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	shopGroup := e.Group("shop", echojwt.JWT([]byte(os.Getenv("JWT_SECRET"))))
	shopGroup.Use(UserMiddleware)

	wardrobeController := WardrobeController{AWSService: awsService, URLCache: urlCache}
	wardrobeGroup := shopGroup.Group("/wardrobe")
	wardrobeController.WardrobeRoutes(wardrobeGroup)

	outfitsController := OutfitsController{Engine: engine, Weather: weatherService}
	outfitsGroup := shopGroup.Group("/outfits")
	outfitsController.OutfitRoutes(outfitsGroup)

	internalController := InternalController{Engine: engine}
	internalGroup := e.Group("/internal", RootMiddleware)
	internalController.InternalRoutes(internalGroup)

	return e
}

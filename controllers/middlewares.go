package controllers

import (
	"log"
	"os"

	"outfitapi/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

func UserMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		db := c.Get("__db").(*gorm.DB)
		userRaw := c.Get("user")
		if userRaw == nil {
			return echo.ErrUnauthorized
		}
		user := userRaw.(*jwt.Token)
		claims := user.Claims.(jwt.MapClaims)
		userId := claims["sub"]
		if userId == nil || userId == "" {
			log.Println("Error while getting the token information!")
			return echo.ErrUnauthorized
		}

		var currentUser models.UserAccount
		if err := db.First(&currentUser, "id = ?", userId).Error; err != nil {
			return echo.ErrUnauthorized
		}
		if currentUser.Banned {
			return echo.ErrForbidden
		}
		c.Set("currentUser", currentUser)
		return next(c)
	}
}

// RootMiddleware guards the operational endpoints with the shared root
// password, same as the rest of the internal tooling.
func RootMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		password := os.Getenv("ROOT_PASSWORD")
		if password == "" || c.Request().Header.Get("Authorization") != password {
			return echo.ErrUnauthorized
		}
		return next(c)
	}
}

package models

import "github.com/go-playground/validator"

type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformWeb     Platform = "web"
)

func ValidatePlatform(fl validator.FieldLevel) bool {
	switch Platform(fl.Field().String()) {
	case PlatformIOS, PlatformAndroid, PlatformWeb:
		return true
	}
	return false
}

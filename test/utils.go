package test

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"outfitapi/models"
	"outfitapi/services"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

func JsonString(model interface{}) string {
	bytes, _ := json.Marshal(model)
	return string(bytes)
}

func NewJSONRequest(method string, target string, param interface{}) *http.Request {

	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	return req
}

func GenerateUserToken(userPk string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userPk,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	t, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		log.Fatalf("Error when signing user token for %s. Error %s ", userPk, err)
	}
	return t
}

func NewJSONAuthRequest(method string, target string, userPk string, param interface{}) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	token := GenerateUserToken(userPk)
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", token))
	return req
}

func NewJSONRootRequest(method string, target string, param interface{}, password string) *http.Request {

	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Authorization", password)
	return req
}

func NewRefString(data string) *string {
	return &data
}

func BoolPointer(b bool) *bool {
	return &b
}

func FakeUser(db *gorm.DB) *models.UserAccount {
	user := &models.UserAccount{
		Name:         "OurName",
		Email:        "email@example.com",
		Platform:     models.PlatformIOS,
		LastIp:       "123.122.122.122",
		Status:       "FINISHED_AUTH",
		Subscription: services.StrPointer("free"),
	}
	db.Create(&user)
	return user
}

// FakeWardrobe seeds a small complete closet: two tops, two bottoms, one
// pair of shoes and a coat, all in_closet.
func FakeWardrobe(db *gorm.DB, ownerID uint) []models.WardrobeItem {
	items := []models.WardrobeItem{
		{
			Name: "White Tee", Category: models.CategoryTop, OwnerID: ownerID,
			Colors: []string{"white"}, Pattern: "solid", Material: "cotton",
			Fit: "relaxed", Formality: 1, Status: "in_closet",
		},
		{
			Name: "Oxford Shirt", Category: models.CategoryTop, OwnerID: ownerID,
			Colors: []string{"blue"}, Pattern: "solid", Material: "cotton",
			Fit: "tailored", Formality: 3, Status: "in_closet",
		},
		{
			Name: "Dark Jeans", Category: models.CategoryBottom, OwnerID: ownerID,
			Colors: []string{"navy"}, Pattern: "solid", Material: "denim",
			Fit: "straight", Formality: 2, Status: "in_closet",
		},
		{
			Name: "Wool Trousers", Category: models.CategoryBottom, OwnerID: ownerID,
			Colors: []string{"gray"}, Pattern: "solid", Material: "wool",
			Fit: "tailored", Formality: 4, Status: "in_closet",
		},
		{
			Name: "White Sneakers", Category: models.CategoryShoes, OwnerID: ownerID,
			Colors: []string{"white"}, Pattern: "solid", Material: "leather",
			Fit: "regular", Formality: 2, Status: "in_closet",
		},
		{
			Name: "Wool Coat", Category: models.CategoryOuterwear, OwnerID: ownerID,
			Colors: []string{"camel"}, Pattern: "solid", Material: "wool",
			Fit: "oversized", Formality: 3, Status: "in_closet",
		},
	}
	for i := range items {
		db.Create(&items[i])
	}
	return items
}

type AWSProviderMock struct {
	MockUrl string
}

func (awsService AWSProviderMock) InitPresignClient(ctx context.Context) error {
	return nil
}

func (awsService AWSProviderMock) PresignLink(ctx context.Context, bucketName string, fileName string) (string, error) {

	return fmt.Sprintf("https://fakebucketurl.com/%s", fileName), nil
}

func (awsService AWSProviderMock) GetPresignedR2FileReadURL(ctx context.Context, bucketName, fileKey string) (string, error) {
	return awsService.MockUrl, nil
}

type URLCacheMock struct {
	MockUrl string
}

func (m URLCacheMock) GetReadURL(ctx context.Context, objectKey string) (string, error) {
	return m.MockUrl, nil
}

type WeatherProviderMock struct {
	Snapshot services.WeatherSnapshot
	Err      error
	Calls    int
}

func (m *WeatherProviderMock) CurrentWeather(ctx context.Context, lat, lon float64) (services.WeatherSnapshot, error) {
	m.Calls++
	if m.Err != nil {
		return services.WeatherSnapshot{}, m.Err
	}
	return m.Snapshot, nil
}

type StylistMock struct{}

func (StylistMock) OutfitNote(ctx context.Context, outfit *models.GeneratedOutfit, items []models.WardrobeItem, modelName services.LLMModelName) (*services.LLMResponse, error) {
	return &services.LLMResponse{
		Response:         "These pieces balance each other nicely. Roll the sleeves for a relaxed finish.",
		InputTokenCount:  10,
		OutputTokenCount: 13,
		TotalTokenCount:  23,
	}, nil
}

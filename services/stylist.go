package services

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	"outfitapi/models"
)

// LLMModelName is the GenAI model used for stylist notes.
type LLMModelName int32

const (
	Flash25 LLMModelName = iota
	FlashLite25
	Flash20
)

func (t LLMModelName) String() string {
	switch t {
	case Flash25:
		return "gemini-2.5-flash"
	case FlashLite25:
		return "gemini-2.5-flash-lite-preview-06-17"
	default:
		return "gemini-2.0-flash"
	}
}

type LLMResponse struct {
	Response         string `json:"response"`
	InputTokenCount  int32  `json:"input_token_count"`
	OutputTokenCount int32  `json:"output_token_count"`
	TotalTokenCount  int32  `json:"total_token_count"`
}

// StylistProvider writes a short human styling note for a generated outfit.
// It runs from the worker queue, never inside the generation pipeline.
type StylistProvider interface {
	OutfitNote(ctx context.Context, outfit *models.GeneratedOutfit, items []models.WardrobeItem, modelName LLMModelName) (*LLMResponse, error)
}

type GeminiStylist struct{}

func (GeminiStylist) OutfitNote(ctx context.Context, outfit *models.GeneratedOutfit, items []models.WardrobeItem, modelName LLMModelName) (*LLMResponse, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  os.Getenv("GOOGLE_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %v", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Occasion: %s. Style: %s. Mood: %s.\nPieces:\n", outfit.Occasion, outfit.Style, outfit.Mood)
	for _, item := range items {
		fmt.Fprintf(&sb, "- %s (%s, %s, %s, %s)\n",
			item.Name, item.Category, strings.Join(item.Colors, "/"), item.Pattern, item.Material)
	}
	sb.WriteString("Write a warm two-sentence stylist note on why these pieces work together and one small styling tip. Plain text only.")

	result, err := client.Models.GenerateContent(ctx, modelName.String(), []*genai.Content{
		{Parts: []*genai.Part{{Text: sb.String()}}},
	}, &genai.GenerateContentConfig{
		MaxOutputTokens: 300,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: "You are a friendly personal stylist. Keep it short, specific to the listed pieces, no markdown."},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%v", err)
	}

	resp := &LLMResponse{Response: strings.TrimSpace(result.Text())}
	if result.UsageMetadata != nil {
		resp.InputTokenCount = result.UsageMetadata.PromptTokenCount
		resp.OutputTokenCount = result.UsageMetadata.CandidatesTokenCount
		resp.TotalTokenCount = result.UsageMetadata.TotalTokenCount
	}
	return resp, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"outfitapi/models"
)

var (
	// ErrEmptyWardrobe means there is nothing to generate from; surfaced
	// before any cache interaction.
	ErrEmptyWardrobe = errors.New("wardrobe is empty")
	// ErrMissingOccasion means the request had no occasion.
	ErrMissingOccasion = errors.New("occasion is required")
	// ErrGenerationTimeout means the pipeline exceeded the caller-visible
	// budget; distinct from a gap result.
	ErrGenerationTimeout = errors.New("outfit generation timed out")
	// ErrWardrobeUnavailable means the wardrobe store could not be read even
	// after a retry.
	ErrWardrobeUnavailable = errors.New("wardrobe is temporarily unavailable")
)

// GenerationRequest is the immutable input of one generation. The engine
// never mutates the wardrobe snapshot; fingerprinting is a pure function of
// this struct (minus caller identity).
type GenerationRequest struct {
	Occasion string
	Style    string
	Mood     string
	Weather  WeatherSnapshot
	Profile  StylingProfile

	Wardrobe []models.WardrobeItem
	BaseItem *models.WardrobeItem
	// most recent first
	History []models.GeneratedOutfit

	BypassCache bool
}

// StylingProfile is the caller's body and taste profile. It nudges scoring
// only, never filters, and stays out of the fingerprint along with the rest
// of the caller identity.
type StylingProfile struct {
	BodyType         string
	StylePreferences []string
}

func StylingProfileOf(user *models.UserAccount) StylingProfile {
	return StylingProfile{
		BodyType:         user.BodyType,
		StylePreferences: user.StylePreferences,
	}
}

// OutfitEngine runs the filter -> score -> select pipeline behind the
// fingerprint cache and the performance monitor.
type OutfitEngine struct {
	Cache   OutfitCacheServiceProvider
	Monitor *PerformanceMonitor
	Weights ScoringWeights
	Timeout time.Duration
}

func NewOutfitEngine(cacheService OutfitCacheServiceProvider, monitor *PerformanceMonitor) *OutfitEngine {
	return &OutfitEngine{
		Cache:   cacheService,
		Monitor: monitor,
		Weights: DefaultScoringWeights(),
		Timeout: 10 * time.Second,
	}
}

// Generate returns the outfit for the request, served from cache when the
// fingerprint matches a fresh entry. Gap outcomes are successful calls with
// WasSuccessful=false; only input validation, timeouts and cache compute
// failures come back as errors.
func (e *OutfitEngine) Generate(ctx context.Context, req *GenerationRequest) (*models.GeneratedOutfit, error) {
	if req.Occasion == "" {
		return nil, ErrMissingOccasion
	}
	if len(req.Wardrobe) == 0 {
		return nil, ErrEmptyWardrobe
	}

	key := Fingerprint(req)
	compute := func(cctx context.Context) (*models.GeneratedOutfit, error) {
		return e.computeTimed(cctx, req)
	}

	if req.BypassCache {
		return e.Cache.Bypass(ctx, key, compute)
	}

	start := time.Now()
	outfit, hit, err := e.Cache.GetOrCompute(ctx, key, compute)
	if err != nil {
		return nil, err
	}
	if hit {
		// hand back a copy so the cached entry stays immutable
		served := *outfit
		served.Metadata = models.GenerationMetadata{
			CacheHit:           true,
			GenerationDuration: time.Since(start).Seconds(),
			IsSlow:             false,
		}
		return &served, nil
	}
	return outfit, nil
}

func (e *OutfitEngine) computeTimed(ctx context.Context, req *GenerationRequest) (*models.GeneratedOutfit, error) {
	ctx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	start := time.Now()
	outfit, err := e.runLadder(ctx, req)
	duration := time.Since(start)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrGenerationTimeout
		}
		return nil, err
	}

	outfit.Metadata = models.GenerationMetadata{
		CacheHit:           false,
		GenerationDuration: duration.Seconds(),
		IsSlow:             e.Monitor.Observe(duration),
	}
	return outfit, nil
}

// runLadder executes the strict pass, then walks the fallback ladder until a
// complete outfit appears. If even the versatile level leaves a mandatory
// category empty the result is WasSuccessful=false with the gap list; the
// engine never fabricates items.
func (e *OutfitEngine) runLadder(ctx context.Context, req *GenerationRequest) (*models.GeneratedOutfit, error) {
	strict := StrictRuleSet(req)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	picks, gaps, _ := runPass(req, strict, e.Weights)
	if len(gaps) == 0 {
		return e.buildOutfit(req, picks, nil, nil), nil
	}

	var lastGaps = gaps
	for _, level := range FallbackLadder() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		relaxed := level.Apply(strict)
		picks, gaps, _ = runPass(req, relaxed, e.Weights)
		if len(gaps) == 0 {
			strategy := &models.FallbackStrategy{
				Name:               level.Name,
				Reason:             level.Reason,
				RelaxedConstraints: level.Relaxes,
			}
			warnings := make([]string, 0, len(level.Relaxes))
			for _, c := range level.Relaxes {
				warnings = append(warnings, fmt.Sprintf("relaxed %s constraint", c))
			}
			return e.buildOutfit(req, picks, strategy, warnings), nil
		}
		lastGaps = gaps
	}

	// exhausted: report the gaps, never a fake outfit
	outfit := e.buildOutfit(req, nil, &models.FallbackStrategy{
		Name:   "exhausted",
		Reason: "no complete outfit even after relaxing all aesthetic constraints",
		RelaxedConstraints: []string{
			"season", "style_exclusions", "style_scoring", "mood",
		},
		Gaps: lastGaps,
	}, nil)
	outfit.WasSuccessful = false
	outfit.Gaps = lastGaps
	for _, gap := range lastGaps {
		outfit.ValidationErrors = append(outfit.ValidationErrors, fmt.Sprintf("no eligible item for category %q", gap))
	}
	return outfit, nil
}

func (e *OutfitEngine) buildOutfit(req *GenerationRequest, picks []ScoredItem, strategy *models.FallbackStrategy, warnings []string) *models.GeneratedOutfit {
	itemIDs := make([]uint, 0, len(picks))
	for _, pick := range picks {
		itemIDs = append(itemIDs, pick.Item.ID)
	}
	return &models.GeneratedOutfit{
		Name:             fmt.Sprintf("%s Look", TitleName(req.Occasion)),
		Occasion:         Canonical(req.Occasion),
		Style:            Canonical(req.Style),
		Mood:             Canonical(req.Mood),
		ItemIDs:          itemIDs,
		WasSuccessful:    len(picks) > 0,
		Warnings:         warnings,
		FallbackStrategy: strategy,
	}
}

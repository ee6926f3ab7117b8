package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint derives the cache key for a generation request. It is a pure
// function of the request: canonicalized occasion/style/mood, the bucketed
// weather, the base item, and a content hash over every wardrobe field that
// influences generation (so a changed tag or wear count invalidates the
// entry). Caller identity, the styling profile and timestamps never enter
// the hash; two wardrobes only collide when their content is identical.
func Fingerprint(req *GenerationRequest) string {
	h := xxhash.New()

	write := func(parts ...string) {
		for _, p := range parts {
			_, _ = h.WriteString(p)
			_, _ = h.WriteString("\x1f")
		}
	}

	write("v1", Canonical(req.Occasion), Canonical(req.Style), Canonical(req.Mood))
	write(WeatherBucket(req.Weather))
	if req.BaseItem != nil {
		write(fmt.Sprintf("base=%d", req.BaseItem.ID))
	}

	items := make([]string, 0, len(req.Wardrobe))
	for _, item := range req.Wardrobe {
		lastWorn := ""
		if item.LastWornAt != nil {
			lastWorn = item.LastWornAt.UTC().Format("2006-01-02")
		}
		items = append(items, fmt.Sprintf("%d|%s|%s|%s|%s|%s|%d|%s|%s|%d|%t|%s",
			item.ID,
			item.Category,
			strings.Join(item.Colors, ","),
			item.Pattern,
			item.Material,
			item.Fit,
			item.Formality,
			strings.Join(item.SeasonTags, ","),
			strings.Join(item.StyleTags, ","),
			item.WearCount,
			item.Favorite,
			lastWorn,
		))
	}
	sort.Strings(items)
	write(items...)

	return fmt.Sprintf("outfit:%016x", h.Sum64())
}

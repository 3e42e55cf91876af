package feed

import (
	"sync"

	"github.com/goliatone/go-activity-feed/pkg/types"
	"github.com/goliatone/go-masker"
)

var defaultMaskerOnce sync.Once

// DefaultMasker returns a configured masker instance with the default
// denylist. Audit detail payloads occasionally echo credential fields from
// login records; those must never reach a rendered feed.
func DefaultMasker() *masker.Masker {
	defaultMaskerOnce.Do(func() {
		if masker.Default == nil {
			return
		}
		registerDefaultMaskFields(masker.Default)
	})
	return masker.Default
}

// SanitizeActivity masks sensitive values in the activity detail payload.
func SanitizeActivity(mask *masker.Masker, activity types.Activity) types.Activity {
	if len(activity.Data) == 0 {
		return activity
	}
	if mask == nil {
		mask = DefaultMasker()
	}
	if mask == nil {
		activity.Data = map[string]any{}
		return activity
	}

	cloned := cloneDataMap(activity.Data)
	masked, err := mask.Mask(cloned)
	if err != nil {
		activity.Data = map[string]any{}
		return activity
	}

	switch masked := masked.(type) {
	case map[string]any:
		activity.Data = masked
	default:
		activity.Data = map[string]any{}
	}
	return activity
}

// SanitizeActivities masks sensitive values for every activity in the slice.
func SanitizeActivities(mask *masker.Masker, activities []types.Activity) []types.Activity {
	if len(activities) == 0 {
		return activities
	}
	out := make([]types.Activity, 0, len(activities))
	for _, activity := range activities {
		out = append(out, SanitizeActivity(mask, activity))
	}
	return out
}

func registerDefaultMaskFields(mask *masker.Masker) {
	if mask == nil {
		return
	}
	mask.RegisterMaskField("password", "filled4")
	mask.RegisterMaskField("secret", "filled4")
	mask.RegisterMaskField("token", "filled4")
}

func cloneDataMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return map[string]any{}
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}

package feed

import (
	"strings"
	"time"

	"github.com/goliatone/go-activity-feed/pkg/types"
)

// DisplayTimeFormat is the minute-granularity timestamp format used for
// rendering and, deliberately, for the dedup key. The same user action often
// reaches the pipeline twice (optimistic live insert plus the next batch
// fetch), and the formatted timestamp is the practical collision domain for
// "same event". Known trade-off: two genuinely distinct events with identical
// kind, actor, label, and quantity inside the same display minute collapse
// into one.
const DisplayTimeFormat = "Jan 2, 2006 3:04 PM"

// DedupeKey returns the identity tuple used to decide whether two activities
// represent the same real-world event.
func DedupeKey(activity types.Activity) string {
	label := strings.TrimSpace(activity.SubjectLabel)
	if label == "" {
		label = altProductName(activity)
	}
	parts := []string{
		string(activity.Kind),
		activity.Actor,
		label,
		activity.Quantity,
		activity.OccurredAt.Format(DisplayTimeFormat),
	}
	return strings.Join(parts, "|")
}

// Dedupe collapses duplicate activities, preserving order with the first
// occurrence winning. Idempotent: Dedupe(Dedupe(list)) == Dedupe(list).
func Dedupe(activities []types.Activity) []types.Activity {
	if len(activities) == 0 {
		return activities
	}
	seen := make(map[string]struct{}, len(activities))
	out := make([]types.Activity, 0, len(activities))
	for _, activity := range activities {
		key := DedupeKey(activity)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, activity)
	}
	return out
}

func altProductName(activity types.Activity) string {
	if len(activity.Data) == 0 {
		return ""
	}
	if name, ok := activity.Data["productname"].(string); ok {
		return strings.TrimSpace(name)
	}
	return ""
}

// olderThan reports whether the activity falls outside the rolling window.
func olderThan(activity types.Activity, cutoff time.Time) bool {
	return !activity.OccurredAt.After(cutoff)
}

package feed

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-activity-feed/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestSanitizeActivityMasksDefaultFields(t *testing.T) {
	activity := types.Activity{
		Data: map[string]any{
			"password": "secret-value",
			"token":    "abcd1234",
			"secret":   "shh",
			"message":  "in stock",
		},
	}
	out := SanitizeActivity(nil, activity)
	require.NotEqual(t, "secret-value", out.Data["password"])
	require.NotEqual(t, "abcd1234", out.Data["token"])
	require.NotEqual(t, "shh", out.Data["secret"])
	require.Equal(t, "in stock", out.Data["message"])
	// The source payload is cloned, not mutated.
	require.Equal(t, "secret-value", activity.Data["password"])
}

func TestSanitizeActivityWithoutDataIsUntouched(t *testing.T) {
	activity := activityAt(types.KindLogin, "Ada", "Ada", "", time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC))
	out := SanitizeActivity(nil, activity)
	require.Equal(t, activity, out)
}

func TestSnapshotAndMergeHookMaskSensitiveFields(t *testing.T) {
	var snapshots []types.FeedSnapshot
	f := newTestFeed(t, Config{
		Source: &stubSource{},
		Hooks: types.Hooks{
			AfterMerge: func(_ context.Context, snapshot types.FeedSnapshot) {
				snapshots = append(snapshots, snapshot)
			},
		},
	})

	activity := activityAt(types.KindLogin, "Ada", "Ada", "", time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC))
	activity.Data = map[string]any{"password": "secret-value", "message": "welcome back"}
	f.Append(context.Background(), activity)

	snapshot := f.Snapshot()
	require.Len(t, snapshot.Activities, 1)
	require.NotEqual(t, "secret-value", snapshot.Activities[0].Data["password"])
	require.Equal(t, "welcome back", snapshot.Activities[0].Data["message"])

	require.Len(t, snapshots, 1)
	require.Len(t, snapshots[0].Activities, 1)
	require.NotEqual(t, "secret-value", snapshots[0].Activities[0].Data["password"])
}

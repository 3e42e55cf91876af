package markers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.MarkRead(ctx, "notif-1"))
	require.NoError(t, store.MarkRead(ctx, "notif-1"))
	require.NoError(t, store.MarkRead(ctx, "notif-2"))

	ids, err := store.ListMarkers(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"notif-1", "notif-2"}, ids)

	require.NoError(t, store.ClearMarkers(ctx))
	ids, err = store.ListMarkers(ctx)
	require.NoError(t, err)
	require.Empty(t, ids)
}

package command

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-activity-feed/classify"
	"github.com/goliatone/go-activity-feed/feed"
	"github.com/goliatone/go-activity-feed/markers"
	"github.com/goliatone/go-activity-feed/pkg/types"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	records []types.RawLogRecord
	err     error
}

func (s *stubSource) FetchRecords(context.Context) ([]types.RawLogRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

type stubGate struct {
	enabled map[string]bool
}

func (s *stubGate) Enabled(_ context.Context, key string, _ ...featuregate.ResolveOption) (bool, error) {
	enabled, ok := s.enabled[key]
	if !ok {
		return true, nil
	}
	return enabled, nil
}

func newFeed(t *testing.T, source types.LogSource, store types.ReadMarkerStore) *feed.Feed {
	t.Helper()
	classifier, err := classify.New(classify.Config{Rules: classify.DashboardRuleset()})
	require.NoError(t, err)
	f, err := feed.New(feed.Config{
		Source:     source,
		Classifier: classifier,
		Markers:    store,
	})
	require.NoError(t, err)
	return f
}

func TestFeedRefreshCommand(t *testing.T) {
	source := &stubSource{records: []types.RawLogRecord{
		{
			Action:     "create",
			Subject:    "products",
			Details:    `{"ProductName":"Widget"}`,
			OccurredAt: time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC),
			Actor:      types.ActorRef{FullName: "Ada"},
		},
	}}
	f := newFeed(t, source, nil)

	cmd := NewFeedRefreshCommand(FeedRefreshConfig{Feed: f})
	require.NoError(t, cmd.Execute(context.Background(), FeedRefreshInput{}))
	require.Len(t, f.Snapshot().Activities, 1)
}

func TestFeedRefreshCommandRequiresFeed(t *testing.T) {
	cmd := NewFeedRefreshCommand(FeedRefreshConfig{})
	require.ErrorIs(t, cmd.Execute(context.Background(), FeedRefreshInput{}), types.ErrMissingFeed)
}

func TestFeedAppendCommand(t *testing.T) {
	f := newFeed(t, &stubSource{}, nil)
	cmd := NewFeedAppendCommand(FeedAppendConfig{Feed: f})

	activity := types.Activity{
		Kind:        types.KindProductAdded,
		Actor:       "Ada",
		Description: "Widget was added by Ada",
		Status:      types.StatusCompleted,
		OccurredAt:  time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, cmd.Execute(context.Background(), FeedAppendInput{Activities: []types.Activity{activity}}))
	require.Len(t, f.Snapshot().Activities, 1)
}

func TestFeedAppendCommandValidatesInput(t *testing.T) {
	f := newFeed(t, &stubSource{}, nil)
	cmd := NewFeedAppendCommand(FeedAppendConfig{Feed: f})
	require.ErrorIs(t, cmd.Execute(context.Background(), FeedAppendInput{}), ErrActivitiesRequired)
}

func TestFeedAppendCommandHonorsFeatureGate(t *testing.T) {
	f := newFeed(t, &stubSource{}, nil)
	gate := &stubGate{enabled: map[string]bool{feed.FeatureLiveEvents: false}}
	cmd := NewFeedAppendCommand(FeedAppendConfig{Feed: f, FeatureGate: gate})

	err := cmd.Execute(context.Background(), FeedAppendInput{Activities: []types.Activity{{
		Kind:  types.KindProductAdded,
		Actor: "Ada",
	}}})
	require.ErrorIs(t, err, ErrLiveEventsDisabled)
	require.Empty(t, f.Snapshot().Activities)
}

func TestMarkerAckCommand(t *testing.T) {
	store := markers.NewMemoryStore()
	f := newFeed(t, &stubSource{}, store)
	cmd := NewMarkerAckCommand(MarkerAckConfig{Feed: f})

	require.NoError(t, cmd.Execute(context.Background(), MarkerAckInput{MarkerID: "notif-1"}))
	require.True(t, f.IsRead("notif-1"))

	ids, err := store.ListMarkers(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"notif-1"}, ids)
}

func TestMarkerAckCommandValidatesInput(t *testing.T) {
	f := newFeed(t, &stubSource{}, markers.NewMemoryStore())
	cmd := NewMarkerAckCommand(MarkerAckConfig{Feed: f})
	require.ErrorIs(t, cmd.Execute(context.Background(), MarkerAckInput{MarkerID: "  "}), ErrMarkerIDRequired)
}

func TestMarkerAckCommandRequiresStore(t *testing.T) {
	f := newFeed(t, &stubSource{}, nil)
	cmd := NewMarkerAckCommand(MarkerAckConfig{Feed: f})
	require.ErrorIs(t, cmd.Execute(context.Background(), MarkerAckInput{MarkerID: "notif-1"}), types.ErrMissingMarkerStore)
}

func TestInputMessageContracts(t *testing.T) {
	require.Equal(t, "command.feed.refresh", FeedRefreshInput{}.Type())
	require.Equal(t, "command.feed.append", FeedAppendInput{}.Type())
	require.Equal(t, "command.feed.marker_ack", MarkerAckInput{}.Type())
}

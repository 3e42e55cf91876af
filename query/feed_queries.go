// Package query exposes go-command compatible read helpers over the activity
// feed: the rendered snapshot and per-kind aggregate counts.
package query

import (
	"context"

	"github.com/goliatone/go-activity-feed/feed"
	"github.com/goliatone/go-activity-feed/pkg/types"
	gocommand "github.com/goliatone/go-command"
)

// SnapshotFilter selects what the snapshot query returns.
type SnapshotFilter struct {
	// Kinds restricts the snapshot to the listed kinds. Empty means all.
	Kinds []types.Kind
	// Limit caps the number of returned activities. Zero means no cap.
	Limit int
}

// Type implements gocommand.Message.
func (SnapshotFilter) Type() string {
	return "query.feed.snapshot"
}

// Validate implements gocommand.Message.
func (SnapshotFilter) Validate() error {
	return nil
}

// FeedSnapshotQuery renders the current feed projection for dashboards.
type FeedSnapshotQuery struct {
	feed *feed.Feed
}

// NewFeedSnapshotQuery constructs the snapshot query helper.
func NewFeedSnapshotQuery(f *feed.Feed) *FeedSnapshotQuery {
	return &FeedSnapshotQuery{feed: f}
}

var _ gocommand.Querier[SnapshotFilter, types.FeedSnapshot] = (*FeedSnapshotQuery)(nil)

// Query returns the current, already sanitized snapshot, optionally filtered
// by kind and capped.
func (q *FeedSnapshotQuery) Query(_ context.Context, filter SnapshotFilter) (types.FeedSnapshot, error) {
	if q.feed == nil {
		return types.FeedSnapshot{}, types.ErrMissingFeed
	}
	snapshot := q.feed.Snapshot()
	if len(filter.Kinds) > 0 {
		kinds := make(map[types.Kind]struct{}, len(filter.Kinds))
		for _, kind := range filter.Kinds {
			kinds[kind] = struct{}{}
		}
		filtered := snapshot.Activities[:0:0]
		for _, activity := range snapshot.Activities {
			if _, ok := kinds[activity.Kind]; ok {
				filtered = append(filtered, activity)
			}
		}
		snapshot.Activities = filtered
	}
	if filter.Limit > 0 && len(snapshot.Activities) > filter.Limit {
		snapshot.Activities = snapshot.Activities[:filter.Limit]
	}
	return snapshot, nil
}

// StatsFilter selects what the stats query aggregates.
type StatsFilter struct{}

// Type implements gocommand.Message.
func (StatsFilter) Type() string {
	return "query.feed.stats"
}

// Validate implements gocommand.Message.
func (StatsFilter) Validate() error {
	return nil
}

// FeedStatsQuery aggregates activity counts per kind for UI widgets.
type FeedStatsQuery struct {
	feed *feed.Feed
}

// NewFeedStatsQuery constructs the stats helper.
func NewFeedStatsQuery(f *feed.Feed) *FeedStatsQuery {
	return &FeedStatsQuery{feed: f}
}

var _ gocommand.Querier[StatsFilter, map[types.Kind]int] = (*FeedStatsQuery)(nil)

// Query returns the per-kind counts of the current projection.
func (q *FeedStatsQuery) Query(_ context.Context, _ StatsFilter) (map[types.Kind]int, error) {
	if q.feed == nil {
		return nil, types.ErrMissingFeed
	}
	return q.feed.Stats(), nil
}

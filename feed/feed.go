// Package feed derives and maintains the recent-activity projection: it
// merges batch-classified audit records with live local events into one
// deduplicated, descending-ordered store, and expires entries on a rolling
// window plus a fixed daily reset.
package feed

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-activity-feed/classify"
	"github.com/goliatone/go-activity-feed/events"
	"github.com/goliatone/go-activity-feed/pkg/types"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-masker"
)

const (
	// FeatureLiveEvents gates merging of live local events into the feed.
	FeatureLiveEvents = "activityfeed.live_events"
	// FeatureDailyReset gates the scheduled full clear of the feed.
	FeatureDailyReset = "activityfeed.daily_reset"

	// DefaultRefreshInterval is the cadence of the periodic batch re-fetch.
	DefaultRefreshInterval = time.Minute
)

// Config wires the feed. Source and Classifier are required; everything else
// has a safe default or is optional.
type Config struct {
	Source          types.LogSource
	Classifier      *classify.Classifier
	Bus             events.Bus
	Markers         types.ReadMarkerStore
	Hooks           types.Hooks
	Clock           types.Clock
	Logger          types.Logger
	Masker          *masker.Masker
	FeatureGate     featuregate.FeatureGate
	Location        *time.Location
	RefreshInterval time.Duration
	CleanupInterval time.Duration
	CleanupWindow   time.Duration
	ResetHour       int
	ResetMinute     int
	ResetAtMidnight bool
}

// Feed owns the activity store and its two producers for the duration of one
// Inactive -> Active -> Inactive lifecycle. There is no paused or error
// state: fetch failures leave the previous contents in place.
type Feed struct {
	source       types.LogSource
	classifier   *classify.Classifier
	bus          events.Bus
	markers      types.ReadMarkerStore
	hooks        types.Hooks
	clock        types.Clock
	logger       types.Logger
	mask         *masker.Masker
	gate         featuregate.FeatureGate
	refreshEvery time.Duration
	window       time.Duration

	store     *Store
	scheduler *Scheduler

	mu           sync.Mutex
	active       bool
	cancel       context.CancelFunc
	unsubscribes []events.Unsubscribe
	done         sync.WaitGroup

	readMu      sync.RWMutex
	readMarkers map[string]struct{}
}

// New constructs an inactive feed from the supplied configuration.
func New(cfg Config) (*Feed, error) {
	if cfg.Source == nil {
		return nil, types.ErrMissingLogSource
	}
	if cfg.Classifier == nil {
		return nil, types.ErrMissingClassifier
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	refresh := cfg.RefreshInterval
	if refresh <= 0 {
		refresh = DefaultRefreshInterval
	}
	window := cfg.CleanupWindow
	if window <= 0 {
		window = DefaultCleanupWindow
	}

	f := &Feed{
		source:       cfg.Source,
		classifier:   cfg.Classifier,
		bus:          cfg.Bus,
		markers:      cfg.Markers,
		hooks:        cfg.Hooks,
		clock:        clock,
		logger:       logger,
		mask:         cfg.Masker,
		gate:         cfg.FeatureGate,
		refreshEvery: refresh,
		window:       window,
		store:        NewStore(),
		readMarkers:  make(map[string]struct{}),
	}
	f.scheduler = NewScheduler(SchedulerConfig{
		Clock:           clock,
		Logger:          logger,
		Location:        cfg.Location,
		CleanupInterval: cfg.CleanupInterval,
		ResetHour:       cfg.ResetHour,
		ResetMinute:     cfg.ResetMinute,
		ResetAtMidnight: cfg.ResetAtMidnight,
		OnCleanup:       func(now time.Time) { f.runCleanup(context.Background(), now) },
		OnReset:         func(now time.Time) { f.runReset(context.Background(), now) },
	})
	return f, nil
}

// Start transitions the feed to Active: the store is rebuilt from scratch,
// persisted read markers are loaded, the live-event subscriptions are
// attached, the initial batch fetch is issued, and both expiry timers start.
func (f *Feed) Start(ctx context.Context) error {
	f.mu.Lock()
	if f.active {
		f.mu.Unlock()
		return types.ErrFeedActive
	}
	f.active = true
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	f.cancel = cancel

	if f.bus != nil {
		f.unsubscribes = append(f.unsubscribes,
			f.bus.SubscribeEntityChanged(f.onEntityChanged),
			f.bus.SubscribeStockMovement(f.onStockMovement),
		)
	}
	f.mu.Unlock()

	f.store.Clear()
	f.loadMarkers(ctx)

	if err := f.Refresh(ctx); err != nil {
		// Initial fetch failures are not fatal; the next cycle retries.
		f.logger.Error("initial activity fetch failed", err)
	}

	f.done.Add(1)
	go f.refreshLoop(runCtx)
	f.scheduler.Start()
	return nil
}

// Stop transitions the feed back to Inactive: both timers are cancelled, the
// subscriptions detach, any pending fetch result is dropped, and the
// in-memory store is discarded.
func (f *Feed) Stop() {
	f.mu.Lock()
	if !f.active {
		f.mu.Unlock()
		return
	}
	f.active = false
	cancel := f.cancel
	f.cancel = nil
	unsubscribes := f.unsubscribes
	f.unsubscribes = nil
	f.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	for _, unsubscribe := range unsubscribes {
		unsubscribe()
	}
	f.scheduler.Stop()
	f.done.Wait()
	f.store.Clear()
}

// Active reports whether the feed is between Start and Stop.
func (f *Feed) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

// Refresh performs one batch cycle: fetch, classify, merge. A fetch failure
// leaves the previous store contents untouched and is reported to the caller;
// no retry is scheduled here because the next periodic cycle tries again.
func (f *Feed) Refresh(ctx context.Context) error {
	records, err := f.source.FetchRecords(ctx)
	if err != nil {
		f.logger.Error("activity fetch failed, keeping previous feed", err)
		return err
	}
	if ctx.Err() != nil {
		// The feed was torn down while the fetch was in flight.
		return ctx.Err()
	}
	incoming := f.classifier.ClassifyBatch(ctx, records)
	f.merge(ctx, incoming)
	return nil
}

// Append merges already-classified activities, typically from a live event.
func (f *Feed) Append(ctx context.Context, activities ...types.Activity) {
	if len(activities) == 0 {
		return
	}
	f.merge(ctx, activities)
}

// Snapshot returns the current read-only projection: sorted descending,
// deduplicated, with sensitive detail fields masked.
func (f *Feed) Snapshot() types.FeedSnapshot {
	return types.FeedSnapshot{
		Activities: SanitizeActivities(f.mask, f.store.Snapshot()),
		TakenAt:    f.clock.Now(),
	}
}

// Stats aggregates the current projection per kind for dashboard widgets.
func (f *Feed) Stats() map[types.Kind]int {
	stats := make(map[types.Kind]int)
	for _, activity := range f.store.Snapshot() {
		stats[activity.Kind]++
	}
	return stats
}

// MarkRead records that the notification with the given ID was acknowledged.
func (f *Feed) MarkRead(ctx context.Context, id string) error {
	if f.markers == nil {
		return types.ErrMissingMarkerStore
	}
	if err := f.markers.MarkRead(ctx, id); err != nil {
		return err
	}
	f.readMu.Lock()
	f.readMarkers[id] = struct{}{}
	f.readMu.Unlock()
	return nil
}

// IsRead reports whether the notification ID has been acknowledged.
func (f *Feed) IsRead(id string) bool {
	f.readMu.RLock()
	defer f.readMu.RUnlock()
	_, ok := f.readMarkers[id]
	return ok
}

func (f *Feed) refreshLoop(ctx context.Context) {
	defer f.done.Done()
	ticker := time.NewTicker(f.refreshEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = f.Refresh(ctx)
		}
	}
}

func (f *Feed) merge(ctx context.Context, incoming []types.Activity) {
	merged := f.store.Merge(SanitizeActivities(f.mask, incoming))
	f.emit(ctx, f.hooks.AfterMerge, merged)
}

// runCleanup is one rolling-window tick: prune, re-dedupe, re-sort.
func (f *Feed) runCleanup(ctx context.Context, now time.Time) {
	cutoff := now.Add(-f.window)
	kept := f.store.Prune(cutoff)
	f.logger.Debug("activity cleanup pass", "cutoff", cutoff, "kept", len(kept))
	f.emit(ctx, f.hooks.AfterCleanup, kept)
}

// runReset is the daily reset: empty the store and the read-marker set.
func (f *Feed) runReset(ctx context.Context, now time.Time) {
	if enabled, err := f.featureEnabled(ctx, FeatureDailyReset); err != nil {
		f.logger.Error("daily reset feature check failed", err)
		return
	} else if !enabled {
		f.logger.Debug("daily reset disabled, skipping")
		return
	}

	f.store.Clear()
	f.readMu.Lock()
	f.readMarkers = make(map[string]struct{})
	f.readMu.Unlock()
	if f.markers != nil {
		if err := f.markers.ClearMarkers(ctx); err != nil {
			f.logger.Error("clearing read markers failed", err)
		}
	}
	f.logger.Info("daily activity reset", "at", now)
	f.emit(ctx, f.hooks.AfterReset, nil)
}

func (f *Feed) onEntityChanged(ctx context.Context, event events.EntityChanged) {
	if !f.liveEventsEnabled(ctx) {
		return
	}
	f.Append(ctx, f.classifier.ClassifyEntityChanged(ctx, event))
}

func (f *Feed) onStockMovement(ctx context.Context, event events.StockMovementOccurred) {
	if !f.liveEventsEnabled(ctx) {
		return
	}
	f.Append(ctx, f.classifier.ClassifyStockMovement(ctx, event))
}

func (f *Feed) liveEventsEnabled(ctx context.Context) bool {
	enabled, err := f.featureEnabled(ctx, FeatureLiveEvents)
	if err != nil {
		f.logger.Error("live event feature check failed", err)
		return false
	}
	return enabled
}

func (f *Feed) featureEnabled(ctx context.Context, key string) (bool, error) {
	if f.gate == nil {
		return true, nil
	}
	return f.gate.Enabled(ctx, key)
}

func (f *Feed) loadMarkers(ctx context.Context) {
	if f.markers == nil {
		return
	}
	ids, err := f.markers.ListMarkers(ctx)
	if err != nil {
		f.logger.Error("loading read markers failed", err)
		return
	}
	f.readMu.Lock()
	f.readMarkers = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		f.readMarkers[id] = struct{}{}
	}
	f.readMu.Unlock()
}

func (f *Feed) emit(ctx context.Context, hook func(context.Context, types.FeedSnapshot), activities []types.Activity) {
	if hook == nil {
		return
	}
	hook(ctx, types.FeedSnapshot{
		Activities: SanitizeActivities(f.mask, activities),
		TakenAt:    f.clock.Now(),
	})
}

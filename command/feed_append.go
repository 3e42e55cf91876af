package command

import (
	"context"

	"github.com/goliatone/go-activity-feed/feed"
	"github.com/goliatone/go-activity-feed/pkg/types"
	gocommand "github.com/goliatone/go-command"
	featuregate "github.com/goliatone/go-featuregate/gate"
)

// FeedAppendInput carries already-classified activities to merge into the
// feed, typically produced from a local event.
type FeedAppendInput struct {
	Activities []types.Activity
}

// Type implements gocommand.Message.
func (FeedAppendInput) Type() string {
	return "command.feed.append"
}

// Validate implements gocommand.Message.
func (input FeedAppendInput) Validate() error {
	if len(input.Activities) == 0 {
		return ErrActivitiesRequired
	}
	return nil
}

// FeedAppendCommand merges live activities into the feed, honoring the live
// events feature gate.
type FeedAppendCommand struct {
	feed   *feed.Feed
	gate   featuregate.FeatureGate
	logger types.Logger
}

// FeedAppendConfig wires dependencies for the append command.
type FeedAppendConfig struct {
	Feed        *feed.Feed
	FeatureGate featuregate.FeatureGate
	Logger      types.Logger
}

// NewFeedAppendCommand constructs the append handler.
func NewFeedAppendCommand(cfg FeedAppendConfig) *FeedAppendCommand {
	return &FeedAppendCommand{
		feed:   cfg.Feed,
		gate:   cfg.FeatureGate,
		logger: safeLogger(cfg.Logger),
	}
}

var _ gocommand.Commander[FeedAppendInput] = (*FeedAppendCommand)(nil)

// Execute merges the supplied activities after the gate check.
func (c *FeedAppendCommand) Execute(ctx context.Context, input FeedAppendInput) error {
	if c.feed == nil {
		return types.ErrMissingFeed
	}
	if err := input.Validate(); err != nil {
		return err
	}
	enabled, err := featureEnabled(ctx, c.gate, feed.FeatureLiveEvents)
	if err != nil {
		return err
	}
	if !enabled {
		return ErrLiveEventsDisabled
	}
	c.feed.Append(ctx, input.Activities...)
	return nil
}

package command

import (
	"context"

	"github.com/goliatone/go-activity-feed/feed"
	"github.com/goliatone/go-activity-feed/pkg/types"
	gocommand "github.com/goliatone/go-command"
)

// FeedRefreshInput triggers one fetch-classify-merge cycle.
type FeedRefreshInput struct{}

// Type implements gocommand.Message.
func (FeedRefreshInput) Type() string {
	return "command.feed.refresh"
}

// Validate implements gocommand.Message.
func (FeedRefreshInput) Validate() error {
	return nil
}

// FeedRefreshCommand re-derives the feed from the backend audit log on demand,
// outside of the periodic cycle.
type FeedRefreshCommand struct {
	feed   *feed.Feed
	logger types.Logger
}

// FeedRefreshConfig wires dependencies for the refresh command.
type FeedRefreshConfig struct {
	Feed   *feed.Feed
	Logger types.Logger
}

// NewFeedRefreshCommand constructs the refresh handler.
func NewFeedRefreshCommand(cfg FeedRefreshConfig) *FeedRefreshCommand {
	return &FeedRefreshCommand{
		feed:   cfg.Feed,
		logger: safeLogger(cfg.Logger),
	}
}

var _ gocommand.Commander[FeedRefreshInput] = (*FeedRefreshCommand)(nil)

// Execute runs one refresh cycle. A fetch failure leaves the previous feed
// contents in place and is returned to the caller.
func (c *FeedRefreshCommand) Execute(ctx context.Context, input FeedRefreshInput) error {
	if c.feed == nil {
		return types.ErrMissingFeed
	}
	if err := input.Validate(); err != nil {
		return err
	}
	return c.feed.Refresh(ctx)
}

package command

import (
	"context"
	"strings"

	"github.com/goliatone/go-activity-feed/feed"
	"github.com/goliatone/go-activity-feed/pkg/types"
	gocommand "github.com/goliatone/go-command"
)

// MarkerAckInput acknowledges a feed notification by its marker ID.
type MarkerAckInput struct {
	MarkerID string
}

// Type implements gocommand.Message.
func (MarkerAckInput) Type() string {
	return "command.feed.marker_ack"
}

// Validate implements gocommand.Message.
func (input MarkerAckInput) Validate() error {
	if strings.TrimSpace(input.MarkerID) == "" {
		return ErrMarkerIDRequired
	}
	return nil
}

// MarkerAckCommand records the acknowledgement through the feed so it
// persists across restarts.
type MarkerAckCommand struct {
	feed   *feed.Feed
	logger types.Logger
}

// MarkerAckConfig wires dependencies for the acknowledgement command.
type MarkerAckConfig struct {
	Feed   *feed.Feed
	Logger types.Logger
}

// NewMarkerAckCommand constructs the acknowledgement handler.
func NewMarkerAckCommand(cfg MarkerAckConfig) *MarkerAckCommand {
	return &MarkerAckCommand{
		feed:   cfg.Feed,
		logger: safeLogger(cfg.Logger),
	}
}

var _ gocommand.Commander[MarkerAckInput] = (*MarkerAckCommand)(nil)

// Execute validates and persists the acknowledgement.
func (c *MarkerAckCommand) Execute(ctx context.Context, input MarkerAckInput) error {
	if c.feed == nil {
		return types.ErrMissingFeed
	}
	if err := input.Validate(); err != nil {
		return err
	}
	return c.feed.MarkRead(ctx, strings.TrimSpace(input.MarkerID))
}

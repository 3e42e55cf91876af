// Package service is the wiring entry point for the activity feed. It builds
// the classifier and feed from one configuration and exposes command/query
// facades to the host application.
package service

import (
	"context"
	"time"

	"github.com/goliatone/go-activity-feed/classify"
	"github.com/goliatone/go-activity-feed/command"
	"github.com/goliatone/go-activity-feed/events"
	"github.com/goliatone/go-activity-feed/feed"
	"github.com/goliatone/go-activity-feed/pkg/types"
	"github.com/goliatone/go-activity-feed/query"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-masker"
)

// Service owns the feed lifecycle and its command/query facades.
type Service struct {
	cfg        Config
	classifier *classify.Classifier
	feed       *feed.Feed
	commands   Commands
	queries    Queries
}

// Commands exposes the service command handlers.
type Commands struct {
	FeedRefresh *command.FeedRefreshCommand
	FeedAppend  *command.FeedAppendCommand
	MarkerAck   *command.MarkerAckCommand
}

// Queries exposes read-model helpers.
type Queries struct {
	FeedSnapshot *query.FeedSnapshotQuery
	FeedStats    *query.FeedStatsQuery
}

// Config captures all dependencies so callers can provide their own instances
// (log source, bus, marker repository, hooks, etc.).
type Config struct {
	Source          types.LogSource
	Bus             events.Bus
	Markers         types.ReadMarkerStore
	Products        types.ProductResolver
	SessionActor    types.SessionActorProvider
	Rules           classify.Ruleset
	Hooks           types.Hooks
	Clock           types.Clock
	IDGenerator     types.IDGenerator
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

// New constructs a Service from the supplied configuration. The classifier
// defaults to the dashboard ruleset when none is supplied.
func New(cfg Config) (*Service, error) {
	norm := normalizeConfig(cfg)

	classifier, err := classify.New(classify.Config{
		Rules:        norm.Rules,
		Products:     norm.Products,
		SessionActor: norm.SessionActor,
		Clock:        norm.Clock,
		IDGen:        norm.IDGenerator,
		Logger:       norm.Logger,
	})
	if err != nil {
		return nil, err
	}

	f, err := feed.New(feed.Config{
		Source:          norm.Source,
		Classifier:      classifier,
		Bus:             norm.Bus,
		Markers:         norm.Markers,
		Hooks:           norm.Hooks,
		Clock:           norm.Clock,
		Logger:          norm.Logger,
		Masker:          norm.Masker,
		FeatureGate:     norm.FeatureGate,
		Location:        norm.Location,
		RefreshInterval: norm.RefreshInterval,
		CleanupInterval: norm.CleanupInterval,
		CleanupWindow:   norm.CleanupWindow,
		ResetHour:       norm.ResetHour,
		ResetMinute:     norm.ResetMinute,
		ResetAtMidnight: norm.ResetAtMidnight,
	})
	if err != nil {
		return nil, err
	}

	s := &Service{
		cfg:        norm,
		classifier: classifier,
		feed:       f,
	}
	s.commands = s.buildCommands()
	s.queries = s.buildQueries()
	return s, nil
}

func normalizeConfig(cfg Config) Config {
	if cfg.Clock == nil {
		cfg.Clock = types.SystemClock{}
	}
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = types.UUIDGenerator{}
	}
	if cfg.Logger == nil {
		cfg.Logger = types.NopLogger{}
	}
	if cfg.Rules == nil {
		cfg.Rules = classify.DashboardRuleset()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return cfg
}

// Start activates the feed: initial fetch, live subscriptions, expiry timers.
func (s *Service) Start(ctx context.Context) error {
	return s.feed.Start(ctx)
}

// Stop deactivates the feed and discards the in-memory projection.
func (s *Service) Stop() {
	s.feed.Stop()
}

// Active reports whether the feed is between Start and Stop.
func (s *Service) Active() bool {
	return s.feed.Active()
}

// Feed exposes the underlying feed so hosts can subscribe hooks or call
// Snapshot without going through the query facade.
func (s *Service) Feed() *feed.Feed {
	if s == nil {
		return nil
	}
	return s.feed
}

// Classifier exposes the rule engine, e.g. to classify records produced
// outside the configured log source.
func (s *Service) Classifier() *classify.Classifier {
	if s == nil {
		return nil
	}
	return s.classifier
}

// Commands returns the command facade.
func (s *Service) Commands() Commands {
	return s.commands
}

// Queries returns the query facade.
func (s *Service) Queries() Queries {
	return s.queries
}

// Ready reports whether the service has the required dependencies wired in.
func (s *Service) Ready() bool {
	return s != nil && s.cfg.Source != nil && s.classifier != nil && s.feed != nil
}

// HealthCheck surfaces missing configuration to upstream transports.
func (s *Service) HealthCheck(ctx context.Context) error {
	if !s.Ready() {
		return types.ErrServiceNotReady
	}
	if s.cfg.Source == nil {
		return types.ErrMissingLogSource
	}
	if s.classifier == nil {
		return types.ErrMissingClassifier
	}
	if s.feed == nil {
		return types.ErrMissingFeed
	}
	return ctx.Err()
}

func (s *Service) buildCommands() Commands {
	return Commands{
		FeedRefresh: command.NewFeedRefreshCommand(command.FeedRefreshConfig{
			Feed:   s.feed,
			Logger: s.cfg.Logger,
		}),
		FeedAppend: command.NewFeedAppendCommand(command.FeedAppendConfig{
			Feed:        s.feed,
			FeatureGate: s.cfg.FeatureGate,
			Logger:      s.cfg.Logger,
		}),
		MarkerAck: command.NewMarkerAckCommand(command.MarkerAckConfig{
			Feed:   s.feed,
			Logger: s.cfg.Logger,
		}),
	}
}

func (s *Service) buildQueries() Queries {
	return Queries{
		FeedSnapshot: query.NewFeedSnapshotQuery(s.feed),
		FeedStats:    query.NewFeedStatsQuery(s.feed),
	}
}

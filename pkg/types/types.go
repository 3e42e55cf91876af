package types

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind enumerates the closed set of activity classifications produced by the
// pipeline. Unrecognized (action, subject) combinations always resolve to
// KindOther, never to a classification failure.
type Kind string

const (
	KindLogin           Kind = "login"
	KindLogout          Kind = "logout"
	KindProductAdded    Kind = "product_added"
	KindProductUpdated  Kind = "product_updated"
	KindProductDeleted  Kind = "product_deleted"
	KindCategoryAdded   Kind = "category_added"
	KindCategoryUpdated Kind = "category_updated"
	KindCategoryDeleted Kind = "category_deleted"
	KindStockMovement   Kind = "stock_movement"
	KindReturn          Kind = "return"
	KindOther           Kind = "other"
)

// Status reflects the delivery state of a derived activity. The pipeline has
// no pending state; everything it derives already happened.
type Status string

// StatusCompleted is the only status this subsystem emits.
const StatusCompleted Status = "completed"

// ActorRef carries the zero-or-more name fields the audit backend attaches to
// a log record. Any of the fields may be empty.
type ActorRef struct {
	FullName  string
	FirstName string
	LastName  string
	Username  string
}

// Display resolves the best structured name available on the reference. The
// boolean reports whether any name field was populated.
func (a ActorRef) Display() (string, bool) {
	if name := strings.TrimSpace(a.FullName); name != "" {
		return name, true
	}
	first := strings.TrimSpace(a.FirstName)
	last := strings.TrimSpace(a.LastName)
	switch {
	case first != "" && last != "":
		return first + " " + last, true
	case first != "":
		return first, true
	case last != "":
		return last, true
	}
	if name := strings.TrimSpace(a.Username); name != "" {
		return name, true
	}
	return "", false
}

// RawLogRecord is the unprocessed audit-log entry as delivered by the backend.
// Records are immutable once fetched.
type RawLogRecord struct {
	Action      string
	Subject     string
	EntityLabel string
	Details     string
	OccurredAt  time.Time
	Actor       ActorRef
}

// Activity is the derived, classified, human-readable representation of one
// audit event. Activities are never mutated after creation; the store replaces
// them wholesale on merge, cleanup, and reset.
type Activity struct {
	ID           uuid.UUID
	Kind         Kind
	Actor        string
	SubjectLabel string
	Description  string
	Quantity     string
	Status       Status
	OccurredAt   time.Time
	Data         map[string]any
}

// FeedSnapshot is the read-only projection handed to consumers: always sorted
// descending by OccurredAt and already deduplicated.
type FeedSnapshot struct {
	Activities []Activity
	TakenAt    time.Time
}

// Hooks groups optional callbacks invoked after the store changes. Each hook
// receives the snapshot that resulted from the pass.
type Hooks struct {
	AfterMerge   func(context.Context, FeedSnapshot)
	AfterCleanup func(context.Context, FeedSnapshot)
	AfterReset   func(context.Context, FeedSnapshot)
}

// LogSource fetches the raw audit-log batch from the backend. Implementations
// own credentials and transport; the pipeline only consumes the records.
type LogSource interface {
	FetchRecords(ctx context.Context) ([]RawLogRecord, error)
}

// ReadMarkerStore persists which notification IDs have been acknowledged. It
// is a side concern of the feed: loaded when the feed activates and cleared on
// the daily reset.
type ReadMarkerStore interface {
	ListMarkers(ctx context.Context) ([]string, error)
	MarkRead(ctx context.Context, id string) error
	ClearMarkers(ctx context.Context) error
}

// ProductResolver supplies display names for products referenced only by ID in
// stock-movement payloads.
type ProductResolver interface {
	ProductName(ctx context.Context, id string) (string, bool)
}

// ProductResolverFunc adapts a function into a ProductResolver.
type ProductResolverFunc func(ctx context.Context, id string) (string, bool)

// ProductName satisfies ProductResolver.
func (f ProductResolverFunc) ProductName(ctx context.Context, id string) (string, bool) {
	if f == nil {
		return "", false
	}
	return f(ctx, id)
}

// SessionActorProvider resolves the current session user's display name, used
// as the fallback actor when a record carries no usable name fields.
type SessionActorProvider interface {
	ActorDisplay(ctx context.Context) (string, bool)
}

// SessionActorProviderFunc adapts a function into a SessionActorProvider.
type SessionActorProviderFunc func(ctx context.Context) (string, bool)

// ActorDisplay satisfies SessionActorProvider.
func (f SessionActorProviderFunc) ActorDisplay(ctx context.Context) (string, bool) {
	if f == nil {
		return "", false
	}
	return f(ctx)
}

// Clock abstracts time retrieval for deterministic testing.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID creation.
type IDGenerator interface {
	UUID() uuid.UUID
}

// Logger captures basic logging hooks used by the pipeline.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Error(msg string, err error, fields ...any)
}

// SystemClock defers to time.Now for production usage.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator produces UUIDv4 identifiers.
type UUIDGenerator struct{}

// UUID returns a randomly generated UUID.
func (UUIDGenerator) UUID() uuid.UUID { return uuid.New() }

// NopLogger discards all log lines.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(string, ...any) {}

// Info implements Logger.
func (NopLogger) Info(string, ...any) {}

// Error implements Logger.
func (NopLogger) Error(string, error, ...any) {}

var (
	// ErrMissingLogSource indicates no audit-log source was supplied.
	ErrMissingLogSource = errors.New("activityfeed: missing log source")
	// ErrMissingClassifier indicates the feed lacks a classifier.
	ErrMissingClassifier = errors.New("activityfeed: missing classifier")
	// ErrMissingRuleset indicates a classifier was built without rules.
	ErrMissingRuleset = errors.New("activityfeed: missing ruleset")
	// ErrMissingMarkerStore indicates a marker operation lacks storage.
	ErrMissingMarkerStore = errors.New("activityfeed: missing read marker store")
	// ErrMissingFeed indicates a command or query was built without a feed.
	ErrMissingFeed = errors.New("activityfeed: missing feed")
	// ErrFeedActive indicates Start was called on an already active feed.
	ErrFeedActive = errors.New("activityfeed: feed already active")
	// ErrFeedInactive indicates an operation that requires an active feed.
	ErrFeedInactive = errors.New("activityfeed: feed not active")
	// ErrServiceNotReady indicates the service is missing required dependencies.
	ErrServiceNotReady = errors.New("activityfeed: service not ready")
)

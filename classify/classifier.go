// Package classify turns raw audit-log records and live local events into
// typed, human-readable activities. Classification is total: every record
// yields an activity, falling back to the generic kind when no rule matches.
package classify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-activity-feed/events"
	"github.com/goliatone/go-activity-feed/extract"
	"github.com/goliatone/go-activity-feed/pkg/types"
)

// SystemActor is the placeholder used when no actor name can be resolved.
const SystemActor = "System"

// Config wires classifier dependencies. Rules is required; everything else
// has a safe default.
type Config struct {
	Rules        Ruleset
	Products     types.ProductResolver
	SessionActor types.SessionActorProvider
	Clock        types.Clock
	IDGen        types.IDGenerator
	Logger       types.Logger
}

// Classifier evaluates the ordered rule table against records and events.
type Classifier struct {
	rules    Ruleset
	products types.ProductResolver
	session  types.SessionActorProvider
	clock    types.Clock
	idGen    types.IDGenerator
	logger   types.Logger
}

// New constructs a classifier from the supplied configuration.
func New(cfg Config) (*Classifier, error) {
	if len(cfg.Rules) == 0 {
		return nil, types.ErrMissingRuleset
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	idGen := cfg.IDGen
	if idGen == nil {
		idGen = types.UUIDGenerator{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &Classifier{
		rules:    cfg.Rules,
		products: cfg.Products,
		session:  cfg.SessionActor,
		clock:    clock,
		idGen:    idGen,
		logger:   logger,
	}, nil
}

// Classify derives one activity from a raw log record. It never fails: an
// unmatched (action, subject) pair produces a KindOther activity whose
// description is the raw details string or a synthesized phrase.
func (c *Classifier) Classify(ctx context.Context, record types.RawLogRecord) types.Activity {
	fields := extract.Parse(record.Details)
	actor := c.resolveActor(ctx, record.Actor, fields)
	in := Input{
		Record: record,
		Fields: fields,
		Actor:  actor,
	}

	rule, ok := c.rules.match(record.Action, record.Subject)
	if !ok {
		c.logger.Debug("no classification rule matched", "action", record.Action, "subject", record.Subject)
		return c.newActivity(types.KindOther, actor, c.genericDescribed(in), record.OccurredAt, fields)
	}
	return c.newActivity(rule.Kind, actor, rule.Describe(ctx, c, in), record.OccurredAt, fields)
}

// ClassifyBatch derives activities for a fetched batch, preserving order.
func (c *Classifier) ClassifyBatch(ctx context.Context, records []types.RawLogRecord) []types.Activity {
	if len(records) == 0 {
		return nil
	}
	activities := make([]types.Activity, 0, len(records))
	for _, record := range records {
		activities = append(activities, c.Classify(ctx, record))
	}
	return activities
}

// ClassifyEntityChanged derives an activity from a live entity-changed event
// without waiting for the next batch fetch.
func (c *Classifier) ClassifyEntityChanged(ctx context.Context, event events.EntityChanged) types.Activity {
	action := strings.TrimSpace(event.Action)
	if action == "" {
		action = "update"
	}
	record := types.RawLogRecord{
		Action:      action,
		Subject:     event.Subject,
		EntityLabel: event.Label,
		OccurredAt:  event.OccurredAt,
		Actor:       types.ActorRef{FullName: event.Actor},
	}
	fields := extract.Fields{}
	actor := c.resolveActor(ctx, record.Actor, fields)
	in := Input{
		Record:        record,
		Fields:        fields,
		Actor:         actor,
		ChangedFields: event.ChangedFields,
	}
	rule, ok := c.rules.match(record.Action, record.Subject)
	if !ok {
		return c.newActivity(types.KindOther, actor, c.genericDescribed(in), record.OccurredAt, nil)
	}
	return c.newActivity(rule.Kind, actor, rule.Describe(ctx, c, in), record.OccurredAt, nil)
}

// ClassifyStockMovement derives an activity from a live stock-movement event.
func (c *Classifier) ClassifyStockMovement(ctx context.Context, event events.StockMovementOccurred) types.Activity {
	actor := strings.TrimSpace(event.Actor)
	if actor == "" {
		actor = c.sessionOrSystem(ctx)
	}

	product := strings.TrimSpace(event.ProductLabel)
	quantity := strings.TrimSpace(event.Quantity)
	var description string
	switch strings.ToLower(strings.TrimSpace(event.Direction)) {
	case "in":
		description = fmt.Sprintf("%s received %s of %s", actor, unitsPhrase(quantity), product)
	case "out":
		description = fmt.Sprintf("%s issued %s of %s", actor, unitsPhrase(quantity), product)
	default:
		description = fmt.Sprintf("%s recorded a stock movement of %s of %s", actor, unitsPhrase(quantity), product)
	}

	return types.Activity{
		ID:           c.idGen.UUID(),
		Kind:         types.KindStockMovement,
		Actor:        actor,
		SubjectLabel: product,
		Description:  description,
		Quantity:     quantity,
		Status:       types.StatusCompleted,
		OccurredAt:   c.occurredAt(event.OccurredAt),
	}
}

func (c *Classifier) newActivity(kind types.Kind, actor string, described Described, occurredAt time.Time, fields extract.Fields) types.Activity {
	activity := types.Activity{
		ID:           c.idGen.UUID(),
		Kind:         kind,
		Actor:        actor,
		SubjectLabel: described.SubjectLabel,
		Description:  described.Description,
		Quantity:     described.Quantity,
		Status:       types.StatusCompleted,
		OccurredAt:   c.occurredAt(occurredAt),
	}
	if len(fields) > 0 {
		activity.Data = map[string]any(fields)
	}
	return activity
}

// genericDescribed covers the fallback rule: raw details when present and
// unparsed, otherwise a synthesized per-action phrase.
func (c *Classifier) genericDescribed(in Input) Described {
	description := strings.TrimSpace(in.Record.Details)
	if description == "" || !in.Fields.IsEmpty() {
		description = genericPhrase(in.Record.Action, in.Actor)
	}
	return Described{
		SubjectLabel: strings.TrimSpace(in.Record.EntityLabel),
		Description:  description,
	}
}

// resolveActor applies the fallback chain: structured actor fields, a name
// recovered from the details payload, the current session user, then the
// system placeholder.
func (c *Classifier) resolveActor(ctx context.Context, ref types.ActorRef, fields extract.Fields) string {
	if name, ok := ref.Display(); ok {
		return name
	}
	if name, ok := fields.UserName(); ok {
		return name
	}
	return c.sessionOrSystem(ctx)
}

func (c *Classifier) sessionOrSystem(ctx context.Context) string {
	if c.session != nil {
		if name, ok := c.session.ActorDisplay(ctx); ok && strings.TrimSpace(name) != "" {
			return strings.TrimSpace(name)
		}
	}
	return SystemActor
}

func (c *Classifier) occurredAt(at time.Time) time.Time {
	if at.IsZero() {
		return c.clock.Now()
	}
	return at
}

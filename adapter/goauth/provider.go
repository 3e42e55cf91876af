// Package goauth adapts go-auth's request-scoped actor metadata to the
// SessionActorProvider used by the classifier's actor fallback chain.
package goauth

import (
	"context"
	"strings"

	"github.com/goliatone/go-activity-feed/pkg/types"
	auth "github.com/goliatone/go-auth"
)

// DisplayResolver maps the auth actor payload to a display name. Hosts that
// store a friendly name in claims can override the default Subject/ActorID
// resolution.
type DisplayResolver func(actor *auth.ActorContext) string

// Provider resolves the session actor from the go-auth context payload.
type Provider struct {
	resolve DisplayResolver
}

// ProviderConfig wires the go-auth session actor provider.
type ProviderConfig struct {
	Resolve DisplayResolver
}

// NewProvider constructs the session actor provider.
func NewProvider(cfg ProviderConfig) *Provider {
	resolve := cfg.Resolve
	if resolve == nil {
		resolve = defaultDisplay
	}
	return &Provider{resolve: resolve}
}

var _ types.SessionActorProvider = (*Provider)(nil)

// ActorDisplay returns the current session user's display name when go-auth
// middleware stored an actor payload on the context.
func (p *Provider) ActorDisplay(ctx context.Context) (string, bool) {
	actor, ok := auth.ActorFromContext(ctx)
	if !ok || actor == nil {
		return "", false
	}
	display := strings.TrimSpace(p.resolve(actor))
	if display == "" {
		return "", false
	}
	return display, true
}

func defaultDisplay(actor *auth.ActorContext) string {
	if actor == nil {
		return ""
	}
	if subject := strings.TrimSpace(actor.Subject); subject != "" {
		return subject
	}
	return strings.TrimSpace(actor.ActorID)
}

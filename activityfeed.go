package activityfeed

import "github.com/goliatone/go-activity-feed/service"

// Re-export the service package entry point so consumers can do
// `activityfeed.New(...)` without importing internal wiring helpers.
type (
	Service  = service.Service
	Config   = service.Config
	Commands = service.Commands
	Queries  = service.Queries
)

// New constructs the activity feed runtime using the provided configuration.
func New(cfg Config) (*Service, error) {
	return service.New(cfg)
}

package command

import (
	"context"

	"github.com/goliatone/go-activity-feed/pkg/types"
	featuregate "github.com/goliatone/go-featuregate/gate"
)

func safeLogger(logger types.Logger) types.Logger {
	if logger != nil {
		return logger
	}
	return types.NopLogger{}
}

func featureEnabled(ctx context.Context, gate featuregate.FeatureGate, key string) (bool, error) {
	if gate == nil {
		return true, nil
	}
	return gate.Enabled(ctx, key)
}

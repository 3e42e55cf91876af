package migrations

import (
	"io/fs"

	activityfeed "github.com/goliatone/go-activity-feed"
)

func init() {
	coreFS, err := fs.Sub(activityfeed.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return
	}
	Register(coreFS)
}

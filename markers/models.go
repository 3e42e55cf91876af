package markers

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record models the feed_read_markers row. MarkerID is the dashboard-facing
// notification identifier; one row per acknowledged notification.
type Record struct {
	bun.BaseModel `bun:"table:feed_read_markers"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	MarkerID  string    `bun:"marker_id"`
	CreatedAt time.Time `bun:"created_at"`
}

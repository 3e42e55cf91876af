// Package markers persists read-marker acknowledgements so the "new since
// last visit" indicator survives restarts.
package markers

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-activity-feed/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires dependencies for the Bun-backed marker store.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*Record]
	Clock      types.Clock
	IDGen      types.IDGenerator
}

type markerStore interface {
	repository.Repository[*Record]
}

// Repository implements types.ReadMarkerStore on top of go-repository-bun.
type Repository struct {
	markerStore
	clock types.Clock
	idGen types.IDGenerator
}

// NewRepository constructs the default marker repository. WithCache wraps the
// underlying record repository in the cache decorator unless the supplied
// repository is already wrapped.
func NewRepository(cfg RepositoryConfig, options ...RepositoryOption) (*Repository, error) {
	if cfg.Repository == nil && cfg.DB == nil {
		return nil, errors.New("markers: db or repository required")
	}
	opts := applyRepositoryOptions(options)

	repo := cfg.Repository
	if repo == nil {
		repo = newBaseRepository(cfg.DB)
	}
	if opts.CacheEnabled {
		if _, wrapped := repo.(*repositorycache.CachedRepository[*Record]); !wrapped {
			cacheCfg := cache.DefaultConfig()
			if opts.CacheConfig != nil {
				cacheCfg = *opts.CacheConfig
			}
			cacheService, err := cache.NewCacheService(cacheCfg)
			if err != nil {
				return nil, err
			}
			repo = repositorycache.New(repo, cacheService, cache.NewDefaultKeySerializer())
		}
	}

	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	idGen := cfg.IDGen
	if idGen == nil {
		idGen = types.UUIDGenerator{}
	}

	return &Repository{
		markerStore: repo,
		clock:       clock,
		idGen:       idGen,
	}, nil
}

var (
	_ repository.Repository[*Record] = (*Repository)(nil)
	_ types.ReadMarkerStore          = (*Repository)(nil)
)

// ListMarkers returns every acknowledged notification ID.
func (r *Repository) ListMarkers(ctx context.Context) ([]string, error) {
	criteria := []repository.SelectCriteria{
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("created_at ASC")
		},
	}
	rows, _, err := r.List(ctx, criteria...)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.MarkerID)
	}
	return ids, nil
}

// MarkRead records an acknowledgement. Marking the same ID again is a no-op.
func (r *Repository) MarkRead(ctx context.Context, id string) error {
	markerID := strings.TrimSpace(id)
	if markerID == "" {
		return errors.New("markers: marker id required")
	}
	existing, err := r.findExisting(ctx, markerID)
	switch {
	case err == nil && existing != nil:
		return nil
	case repository.IsRecordNotFound(err):
		_, err := r.Create(ctx, &Record{
			ID:        r.idGen.UUID(),
			MarkerID:  markerID,
			CreatedAt: r.clock.Now(),
		})
		return err
	default:
		return err
	}
}

// ClearMarkers removes all acknowledgements, used by the daily reset.
func (r *Repository) ClearMarkers(ctx context.Context) error {
	rows, _, err := r.List(ctx)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := r.Delete(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) findExisting(ctx context.Context, markerID string) (*Record, error) {
	criteria := []repository.SelectCriteria{
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("marker_id = ?", markerID).Limit(1)
		},
	}
	rows, _, err := r.List(ctx, criteria...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, repository.NewRecordNotFound()
	}
	return rows[0], nil
}

func newBaseRepository(db *bun.DB) repository.Repository[*Record] {
	return repository.NewRepository(db, repository.ModelHandlers[*Record]{
		NewRecord: func() *Record { return &Record{} },
		GetID: func(rec *Record) uuid.UUID {
			if rec == nil {
				return uuid.Nil
			}
			return rec.ID
		},
		SetID: func(rec *Record, id uuid.UUID) {
			if rec != nil {
				rec.ID = id
			}
		},
	})
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"eventhub/internal/venues/repository"
	"eventhub/pkg/logger"
	"eventhub/pkg/model"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "venue:"

// Directory resolves venues for the booking service.
type Directory interface {
	GetVenue(ctx context.Context, id string) (*model.Venue, error)
}

type directory struct {
	repo repository.VenueRepository
}

// NewDirectory returns a Directory reading straight from repo.
func NewDirectory(repo repository.VenueRepository) Directory {
	return &directory{repo: repo}
}

func (d *directory) GetVenue(ctx context.Context, id string) (*model.Venue, error) {
	return d.repo.FindByID(ctx, id)
}

// cachedDirectory is a read-through cache in front of another Directory.
// Cache failures degrade to a direct read; misses are never cached.
type cachedDirectory struct {
	next Directory
	rdb  redis.Cmdable
	ttl  time.Duration
	log  *logger.Logger
}

func NewCachedDirectory(next Directory, rdb redis.Cmdable, ttl time.Duration, log *logger.Logger) Directory {
	return &cachedDirectory{next: next, rdb: rdb, ttl: ttl, log: log}
}

func (d *cachedDirectory) GetVenue(ctx context.Context, id string) (*model.Venue, error) {
	key := cacheKeyPrefix + id

	data, err := d.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var venue model.Venue
		if err := json.Unmarshal(data, &venue); err == nil {
			return &venue, nil
		}
		d.log.Warn("Discarding undecodable cached venue", "venue_id", id)
	case !errors.Is(err, redis.Nil):
		d.log.Warn("Venue cache read failed", "venue_id", id, "error", err)
	}

	venue, err := d.next.GetVenue(ctx, id)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(venue)
	if err != nil {
		return venue, nil
	}
	if err := d.rdb.Set(ctx, key, string(encoded), d.ttl).Err(); err != nil {
		d.log.Warn("Venue cache write failed", "venue_id", id, "error", err)
	}
	return venue, nil
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	venueserrors "eventhub/internal/venues/errors"
	"eventhub/pkg/config"
	"eventhub/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CollectionName = "Venues"
)

// VenueRepository is read-only: venues are owned by the venue catalog.
type VenueRepository interface {
	FindByID(ctx context.Context, id string) (*model.Venue, error)
}

type mongoVenueRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoVenueRepository(cfg *config.Config) VenueRepository {
	return &mongoVenueRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName).Collection(CollectionName),
	}
}

func (r *mongoVenueRepository) FindByID(ctx context.Context, id string) (*model.Venue, error) {
	if strings.TrimSpace(id) == "" {
		return nil, venueserrors.ErrInvalidID
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var venue model.Venue
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&venue); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, venueserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find venue: %w", err)
	}
	return &venue, nil
}

type memoryVenueRepository struct {
	venues map[string]model.Venue
}

// NewMemoryVenueRepository serves a fixed venue catalog.
func NewMemoryVenueRepository(venues ...model.Venue) VenueRepository {
	r := &memoryVenueRepository{venues: make(map[string]model.Venue, len(venues))}
	for _, v := range venues {
		r.venues[v.ID] = v
	}
	return r
}

// LoadVenueSeed reads a JSON array of venues, as used by the memory storage driver.
func LoadVenueSeed(path string) ([]model.Venue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read venue seed: %w", err)
	}
	var venues []model.Venue
	if err := json.Unmarshal(data, &venues); err != nil {
		return nil, fmt.Errorf("decode venue seed: %w", err)
	}
	return venues, nil
}

func (r *memoryVenueRepository) FindByID(ctx context.Context, id string) (*model.Venue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, venueserrors.ErrInvalidID
	}

	v, ok := r.venues[id]
	if !ok {
		return nil, venueserrors.ErrNotFound
	}
	return &v, nil
}

package repository

import (
	"context"
	"sort"
	"sync"

	bookingserrors "eventhub/internal/bookings/errors"
	mongotx "eventhub/pkg/db/mongo"
	"eventhub/pkg/model"
)

// memoryBookingRepository keeps bookings in process. It backs the memory
// storage driver and the service tests.
type memoryBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*model.Booking
}

func NewMemoryBookingRepository() BookingRepository {
	return &memoryBookingRepository{bookings: make(map[string]*model.Booking)}
}

func (r *memoryBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateID(booking.ID); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.bookings[booking.ID]; exists {
		return bookingserrors.ErrVersionConflict
	}
	r.bookings[booking.ID] = booking.Clone()
	return nil
}

func (r *memoryBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateID(id); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	return b.Clone(), nil
}

func (r *memoryBookingRepository) matching(filter model.BookingFilter) []*model.Booking {
	var out []*model.Booking
	for _, b := range r.bookings {
		if filter.Customer != "" && b.Customer != filter.Customer {
			continue
		}
		if filter.Organizer != "" && b.Organizer != filter.Organizer {
			continue
		}
		if filter.Venue != "" && b.Venue != filter.Venue {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		out = append(out, b)
	}
	return out
}

func (r *memoryBookingRepository) Find(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.matching(filter)
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	result := make([]*model.Booking, 0)
	if offset >= int64(len(matched)) {
		return result, nil
	}
	end := len(matched)
	if limit > 0 && int(offset)+limit < end {
		end = int(offset) + limit
	}
	for _, b := range matched[offset:end] {
		result = append(result, b.Clone())
	}
	return result, nil
}

func (r *memoryBookingRepository) Count(ctx context.Context, filter model.BookingFilter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.matching(filter))), nil
}

func (r *memoryBookingRepository) Update(ctx context.Context, booking *model.Booking, expectedVersion int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateID(booking.ID); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.bookings[booking.ID]
	if !ok {
		return bookingserrors.ErrNotFound
	}
	if current.Version != expectedVersion {
		return bookingserrors.ErrVersionConflict
	}

	next := booking.Clone()
	next.Version = expectedVersion + 1
	r.bookings[booking.ID] = next
	booking.Version = next.Version
	return nil
}

func (r *memoryBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return mongotx.NoopTransactionManager{}.ExecuteTransaction(ctx, fn)
}

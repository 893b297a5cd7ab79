package service

import (
	"context"
	"errors"
	"math"
	"time"

	bookingserrors "eventhub/internal/bookings/errors"
	"eventhub/internal/bookings/pricing"
	"eventhub/internal/bookings/repository"
	"eventhub/internal/bookings/validator"
	venueserrors "eventhub/internal/venues/errors"
	venues "eventhub/internal/venues/service"
	"eventhub/pkg/auth"
	"eventhub/pkg/config"
	apperrors "eventhub/pkg/errors"
	"eventhub/pkg/model"
	"eventhub/pkg/sanitizer"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type BookingService interface {
	Create(ctx context.Context, p auth.Principal, req *model.CreateBookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, p auth.Principal, id string) (*model.Booking, error)
	ListFor(ctx context.Context, p auth.Principal, filter model.BookingFilter) ([]*model.Booking, int64, error)
	Transition(ctx context.Context, p auth.Principal, id string, req *model.TransitionRequest) (*model.Booking, error)
	RecordPayment(ctx context.Context, p auth.Principal, id string, req *model.PaymentRequest) (*model.Booking, error)
	AttachReview(ctx context.Context, p auth.Principal, id string, req *model.ReviewRequest) (*model.Booking, error)
	SettleRefund(ctx context.Context, p auth.Principal, id string) (*model.Booking, error)
	PostMessage(ctx context.Context, p auth.Principal, id string, req *model.MessageRequest) (*model.Booking, error)
}

// Notifier accepts events for asynchronous delivery. It must not block.
type Notifier interface {
	Dispatch(events ...model.BookingEvent)
}

type bookingService struct {
	repo      repository.BookingRepository
	venues    venues.Directory
	notifier  Notifier
	validator *validator.BookingValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	venueDirectory venues.Directory,
	notifier Notifier,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		venues:    venueDirectory,
		notifier:  notifier,
		validator: validator,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (s *bookingService) Create(ctx context.Context, p auth.Principal, req *model.CreateBookingRequest) (*model.Booking, error) {
	if err := s.validate(s.validator.ValidateCreate(req), "Invalid booking request"); err != nil {
		return nil, err
	}

	venue, err := s.venues.GetVenue(ctx, req.VenueID)
	if err != nil {
		if errors.Is(err, venueserrors.ErrNotFound) || errors.Is(err, venueserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Venue", req.VenueID)
		}
		s.cfg.Log.Error("Venue lookup failed", "venue_id", req.VenueID, "error", err)
		return nil, apperrors.Unavailable("Venue directory").WithCause(err)
	}

	if venue.Capacity.Max > 0 && req.EventDetails.ExpectedGuests > venue.Capacity.Max {
		return nil, apperrors.Validation("Expected guests exceed venue capacity", map[string]any{
			"expected_guests": req.EventDetails.ExpectedGuests,
			"max_capacity":    venue.Capacity.Max,
		}).WithCause(bookingserrors.ErrCapacityExceeded)
	}

	base := req.Pricing.BaseAmount
	if base == nil {
		base = &venue.BasePrice
	}
	priced, err := pricing.Calculate(pricing.Input{
		BaseAmount:        base,
		AdditionalCharges: req.Pricing.AdditionalCharges,
		Taxes:             req.Pricing.Taxes,
		Discount:          req.Pricing.Discount,
	})
	if err != nil {
		return nil, apperrors.InvalidPricing(err.Error()).WithCause(err)
	}

	now := s.now()
	booking := &model.Booking{
		ID:              uuid.NewString(),
		Customer:        p.ID,
		Organizer:       venue.Organizer,
		Venue:           venue.ID,
		CustomerDetails: s.sanitizeCustomer(req.CustomerDetails),
		EventDetails:    sanitizeEvent(req.EventDetails),
		Schedule:        buildSchedule(req.Schedule),
		Pricing: model.Pricing{
			BaseAmount:        *base,
			AdditionalCharges: append([]model.Charge{}, req.Pricing.AdditionalCharges...),
			Taxes:             req.Pricing.Taxes,
			Discount:          req.Pricing.Discount,
			TotalAmount:       priced.TotalAmount,
			RemainingAmount:   priced.RemainingAmount,
		},
		Status:         model.StatusPending,
		PaymentStatus:  model.PaymentPending,
		PaymentDetails: []model.PaymentEntry{},
		Communication:  []model.CommunicationEntry{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		s.cfg.Log.Error("Failed to create booking", "venue_id", venue.ID, "error", err)
		if isTransient(err) {
			return nil, apperrors.Unavailable("Booking storage").WithCause(err)
		}
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"venue_id", booking.Venue,
		"customer", booking.Customer,
		"organizer", booking.Organizer,
		"total_amount", booking.Pricing.TotalAmount,
	)

	s.notify(booking, model.EventBookingCreated, p.ID, "",
		model.RecipientCustomer, model.RecipientOrganizer)
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, p auth.Principal, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.storageError(err, id)
	}
	if !booking.IsParty(p.ID) && !p.IsAdmin() {
		return nil, apperrors.Forbidden("You are not a party to this booking").WithCause(bookingserrors.ErrForbidden)
	}
	return booking, nil
}

// ListFor returns the bookings visible to p: a customer sees what they booked,
// an organizer what they organize, an admin everything.
func (s *bookingService) ListFor(ctx context.Context, p auth.Principal, filter model.BookingFilter) ([]*model.Booking, int64, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, apperrors.InvalidInput("Unknown booking status filter").
			WithDetails(map[string]any{"status": filter.Status})
	}

	filter.Customer, filter.Organizer = "", ""
	switch p.Role {
	case auth.RoleAdmin:
	case auth.RoleOrganizer:
		filter.Organizer = p.ID
	default:
		filter.Customer = p.ID
	}

	limit := config.NormalizePaginationLimit(filter.Limit)
	offset := config.NormalizeOffset(filter.Offset)

	var (
		bookings []*model.Booking
		count    int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		count, err = s.repo.Count(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		bookings, err = s.repo.Find(gctx, filter, limit, offset)
		return err
	})
	if err := g.Wait(); err != nil {
		s.cfg.Log.Error("Failed to list bookings", "principal", p.ID, "role", p.Role, "error", err)
		if isTransient(err) {
			return nil, 0, apperrors.Unavailable("Booking storage").WithCause(err)
		}
		return nil, 0, apperrors.Internal("Failed to retrieve bookings", err)
	}

	s.cfg.Log.Debug("Bookings listed",
		"principal", p.ID,
		"role", p.Role,
		"status", filter.Status,
		"count", len(bookings),
		"total", count,
	)
	return bookings, count, nil
}

func (s *bookingService) validate(err error, message string) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		s.cfg.Log.Warn(message, "error", err)
		return apperrors.Validation(message, verrs.Details()).WithCause(err)
	}
	return apperrors.InvalidInput(message).WithCause(err)
}

func (s *bookingService) sanitizeCustomer(in model.CustomerDetailsInput) model.CustomerDetails {
	return model.CustomerDetails{
		Name:    sanitizer.NormalizeName(in.Name),
		Email:   sanitizer.NormalizeEmail(in.Email),
		Phone:   sanitizer.NormalizePhone(in.Phone, s.cfg.PhoneRegion),
		Address: sanitizer.TrimAndNormalize(in.Address),
		City:    sanitizer.NormalizeName(in.City),
		State:   sanitizer.NormalizeName(in.State),
	}
}

func sanitizeEvent(in model.EventDetailsInput) model.EventDetails {
	return model.EventDetails{
		Title:               sanitizer.TrimAndNormalize(in.Title),
		EventType:           sanitizer.NormalizeLabel(in.EventType),
		Description:         sanitizer.NormalizeText(in.Description),
		ExpectedGuests:      in.ExpectedGuests,
		SpecialRequirements: sanitizer.NormalizeText(in.SpecialRequirements),
	}
}

// buildSchedule expects a validated input; a missing duration is derived
// from the clock times and rounded to the quarter hour.
func buildSchedule(in model.ScheduleInput) model.Schedule {
	out := model.Schedule{
		EventDate: in.EventDate.UTC(),
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
	}
	if in.DurationHours != nil {
		out.DurationHours = *in.DurationHours
		return out
	}
	start, _ := validator.ParseClock(in.StartTime)
	end, _ := validator.ParseClock(in.EndTime)
	out.DurationHours = math.Round(float64(end-start)/15) / 4
	return out
}

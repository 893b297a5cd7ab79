package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	bookingserrors "eventhub/internal/bookings/errors"
	"eventhub/internal/bookings/repository"
	"eventhub/internal/bookings/validator"
	venuerepo "eventhub/internal/venues/repository"
	venues "eventhub/internal/venues/service"
	"eventhub/pkg/auth"
	"eventhub/pkg/config"
	apperrors "eventhub/pkg/errors"
	"eventhub/pkg/logger"
	"eventhub/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	customer  = auth.Principal{ID: "cust-1", Role: auth.RoleUser}
	stranger  = auth.Principal{ID: "cust-2", Role: auth.RoleUser}
	organizer = auth.Principal{ID: "org-1", Role: auth.RoleOrganizer}
	admin     = auth.Principal{ID: "admin-1", Role: auth.RoleAdmin}

	hall = model.Venue{
		ID:        "venue-1",
		Title:     "Lake View Hall",
		Organizer: organizer.ID,
		Contact:   model.VenueContact{Name: "Ravi", Email: "ravi@example.com"},
		Capacity:  model.VenueCapacity{Min: 10, Max: 200},
		BasePrice: 30000,
	}
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []model.BookingEvent
}

func (n *recordingNotifier) Dispatch(events ...model.BookingEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, events...)
}

func (n *recordingNotifier) last() model.BookingEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.events[len(n.events)-1]
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

func testConfig(maxRetries int) *config.Config {
	return &config.Config{
		PersistenceMaxRetries:   maxRetries,
		PersistenceRetryBackoff: time.Millisecond,
		PhoneRegion:             "IN",
		Log:                     logger.Discard(),
	}
}

type fixture struct {
	svc      *bookingService
	repo     repository.BookingRepository
	notifier *recordingNotifier
}

func newFixture(t *testing.T, repo repository.BookingRepository, maxRetries int) *fixture {
	t.Helper()
	if repo == nil {
		repo = repository.NewMemoryBookingRepository()
	}
	cfg := testConfig(maxRetries)
	n := &recordingNotifier{}
	dir := venues.NewDirectory(venuerepo.NewMemoryVenueRepository(hall))
	svc := NewBookingService(repo, dir, n, validator.NewBookingValidator(cfg.Log, cfg.PhoneRegion), cfg).(*bookingService)

	// Every reading of the clock moves it forward so creation order is total.
	start := time.Now().UTC().Truncate(time.Second)
	var ticks atomic.Int64
	svc.now = func() time.Time { return start.Add(time.Duration(ticks.Add(1)) * time.Millisecond) }
	return &fixture{svc: svc, repo: repo, notifier: n}
}

func int64p(v int64) *int64 { return &v }

func createRequest(base *int64) *model.CreateBookingRequest {
	return &model.CreateBookingRequest{
		VenueID: hall.ID,
		CustomerDetails: model.CustomerDetailsInput{
			Name:  "  Asha   Rao ",
			Email: "Asha@Example.com",
			Phone: "98765 43210",
		},
		EventDetails: model.EventDetailsInput{
			Title:          "Anniversary dinner",
			EventType:      "Party",
			ExpectedGuests: 80,
		},
		Schedule: model.ScheduleInput{
			EventDate: time.Now().UTC().AddDate(0, 1, 0),
			StartTime: "18:00",
			EndTime:   "22:30",
		},
		Pricing: model.PricingInput{BaseAmount: base},
	}
}

// scenarioA creates a booking priced at 25000 with nothing else.
func (f *fixture) scenarioA(t *testing.T) *model.Booking {
	t.Helper()
	b, err := f.svc.Create(context.Background(), customer, createRequest(int64p(25000)))
	require.NoError(t, err)
	return b
}

func (f *fixture) pay(t *testing.T, id string, amount int64, tx string) *model.Booking {
	t.Helper()
	b, err := f.svc.RecordPayment(context.Background(), customer, id, &model.PaymentRequest{Amount: amount, Method: "card", TransactionID: tx})
	require.NoError(t, err)
	return b
}

func (f *fixture) transition(t *testing.T, p auth.Principal, id string, to model.BookingStatus, msg string) *model.Booking {
	t.Helper()
	b, err := f.svc.Transition(context.Background(), p, id, &model.TransitionRequest{Status: to, Message: msg})
	require.NoError(t, err)
	return b
}

func TestCreate_ScenarioA(t *testing.T) {
	f := newFixture(t, nil, 3)
	b := f.scenarioA(t)

	assert.Equal(t, int64(25000), b.Pricing.TotalAmount)
	assert.Equal(t, int64(25000), b.Pricing.RemainingAmount)
	assert.Equal(t, model.StatusPending, b.Status)
	assert.Equal(t, model.PaymentPending, b.PaymentStatus)
	assert.Equal(t, customer.ID, b.Customer)
	assert.Equal(t, organizer.ID, b.Organizer, "organizer comes from the venue")
	assert.Equal(t, "Asha Rao", b.CustomerDetails.Name)
	assert.Equal(t, "asha@example.com", b.CustomerDetails.Email)
	assert.Equal(t, "+919876543210", b.CustomerDetails.Phone)
	assert.Equal(t, "party", b.EventDetails.EventType)
	assert.Equal(t, 4.5, b.Schedule.DurationHours)

	stored, err := f.repo.FindByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.Pricing, stored.Pricing)

	require.Equal(t, 2, f.notifier.count())
	roles := []string{f.notifier.events[0].RecipientRole, f.notifier.events[1].RecipientRole}
	assert.ElementsMatch(t, []string{model.RecipientCustomer, model.RecipientOrganizer}, roles)
	assert.Equal(t, model.EventBookingCreated, f.notifier.events[0].Kind)
}

func TestCreate_DefaultsBaseToVenuePrice(t *testing.T) {
	f := newFixture(t, nil, 3)
	req := createRequest(nil)
	req.Pricing.AdditionalCharges = []model.Charge{{Name: "Decor", Amount: 2000}}
	req.Pricing.Taxes = 1800
	req.Pricing.Discount = 800

	b, err := f.svc.Create(context.Background(), customer, req)
	require.NoError(t, err)
	assert.Equal(t, hall.BasePrice, b.Pricing.BaseAmount)
	assert.Equal(t, int64(30000+2000+1800-800), b.Pricing.TotalAmount)
}

func TestCreate_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(r *model.CreateBookingRequest)
		wantCode string
	}{
		{"unknown venue", func(r *model.CreateBookingRequest) { r.VenueID = "nowhere" }, apperrors.CodeNotFound},
		{"negative charge", func(r *model.CreateBookingRequest) {
			r.Pricing.AdditionalCharges = []model.Charge{{Name: "Credit", Amount: -1}}
		}, apperrors.CodeInvalidPricing},
		{"discount above gross", func(r *model.CreateBookingRequest) { r.Pricing.Discount = 30000 }, apperrors.CodeInvalidPricing},
		{"negative base", func(r *model.CreateBookingRequest) { r.Pricing.BaseAmount = int64p(-5) }, apperrors.CodeInvalidPricing},
		{"missing email", func(r *model.CreateBookingRequest) { r.CustomerDetails.Email = "" }, apperrors.CodeValidation},
		{"over capacity", func(r *model.CreateBookingRequest) { r.EventDetails.ExpectedGuests = 500 }, apperrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, 3)
			req := createRequest(int64p(25000))
			tt.mutate(req)

			_, err := f.svc.Create(context.Background(), customer, req)
			assert.True(t, apperrors.HasCode(err, tt.wantCode), "got %v", err)
			assert.Equal(t, 0, f.notifier.count())

			count, err := f.repo.Count(context.Background(), model.BookingFilter{})
			require.NoError(t, err)
			assert.Zero(t, count)
		})
	}
}

func TestTransition_ScenarioB(t *testing.T) {
	f := newFixture(t, nil, 3)
	b := f.scenarioA(t)

	confirmed := f.transition(t, organizer, b.ID, model.StatusConfirmed, "")
	assert.Equal(t, model.StatusConfirmed, confirmed.Status)
	require.Len(t, confirmed.Communication, 1)
	assert.Equal(t, model.KindStatusUpdate, confirmed.Communication[0].Kind)
	assert.Equal(t, "Booking confirmed", confirmed.Communication[0].Message)

	ev := f.notifier.last()
	assert.Equal(t, model.EventBookingConfirmed, ev.Kind)
	assert.Equal(t, customer.ID, ev.Recipient)

	_, err := f.svc.Transition(context.Background(), organizer, b.ID, &model.TransitionRequest{Status: model.StatusConfirmed})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition), "got %v", err)
	assert.ErrorIs(t, err, bookingserrors.ErrInvalidTransition)
}

func TestTransition_ErrorPrecedence(t *testing.T) {
	f := newFixture(t, nil, 3)
	b := f.scenarioA(t)
	ctx := context.Background()

	_, err := f.svc.Transition(ctx, organizer, "6f1c2f8e-1111-4c3a-9a55-0a0b0c0d0e0f", &model.TransitionRequest{Status: model.StatusConfirmed})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound), "got %v", err)

	// A stranger asking for an edge that is not in the table hears about the edge first.
	_, err = f.svc.Transition(ctx, stranger, b.ID, &model.TransitionRequest{Status: model.StatusCompleted})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition), "got %v", err)

	_, err = f.svc.Transition(ctx, customer, b.ID, &model.TransitionRequest{Status: model.StatusConfirmed})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden), "got %v", err)

	f.transition(t, organizer, b.ID, model.StatusRejected, "fully booked")

	for _, p := range []auth.Principal{customer, organizer, admin, stranger} {
		for _, to := range []model.BookingStatus{model.StatusPending, model.StatusConfirmed, model.StatusCancelled, model.StatusCompleted, model.StatusRejected} {
			_, err := f.svc.Transition(ctx, p, b.ID, &model.TransitionRequest{Status: to})
			assert.True(t, apperrors.HasCode(err, apperrors.CodeTerminalState), "%s -> %s: got %v", p.ID, to, err)
		}
	}
}

func TestTransition_AdminCompletes(t *testing.T) {
	f := newFixture(t, nil, 3)
	b := f.scenarioA(t)
	f.transition(t, organizer, b.ID, model.StatusConfirmed, "")

	_, err := f.svc.Transition(context.Background(), organizer, b.ID, &model.TransitionRequest{Status: model.StatusCompleted})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden), "got %v", err)

	done := f.transition(t, admin, b.ID, model.StatusCompleted, "")
	assert.Equal(t, model.StatusCompleted, done.Status)
}

func TestPayments_ScenariosCDE(t *testing.T) {
	f := newFixture(t, nil, 3)
	b := f.scenarioA(t)
	f.transition(t, organizer, b.ID, model.StatusConfirmed, "")

	c := f.pay(t, b.ID, 10000, "TXN1")
	assert.Equal(t, int64(10000), c.Pricing.AdvancePaid)
	assert.Equal(t, int64(15000), c.Pricing.RemainingAmount)
	assert.Equal(t, model.PaymentPartial, c.PaymentStatus)

	d := f.pay(t, b.ID, 15000, "TXN2")
	assert.Equal(t, int64(25000), d.Pricing.AdvancePaid)
	assert.Zero(t, d.Pricing.RemainingAmount)
	assert.Equal(t, model.PaymentCompleted, d.PaymentStatus)
	assert.Equal(t, model.KindPaymentUpdate, d.Communication[len(d.Communication)-1].Kind)

	e := f.transition(t, customer, b.ID, model.StatusCancelled, "change of plans")
	assert.Equal(t, model.StatusCancelled, e.Status)
	require.NotNil(t, e.Cancellation)
	assert.Equal(t, "change of plans", e.Cancellation.Reason)
	assert.Equal(t, int64(25000), e.Cancellation.RefundAmount)
	assert.Equal(t, model.RefundPending, e.Cancellation.RefundStatus)
	assert.Equal(t, organizer.ID, f.notifier.last().Recipient)

	_, err := f.svc.RecordPayment(context.Background(), customer, b.ID, &model.PaymentRequest{Amount: 100, Method: "card", TransactionID: "TXN3"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeTerminalState), "got %v", err)
}

func TestRecordPayment_Rejections(t *testing.T) {
	f := newFixture(t, nil, 3)
	b := f.scenarioA(t)
	ctx := context.Background()

	for _, amount := range []int64{0, -10} {
		_, err := f.svc.RecordPayment(ctx, customer, b.ID, &model.PaymentRequest{Amount: amount, Method: "card", TransactionID: "T"})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidAmount), "amount %d: got %v", amount, err)
	}

	// Amount is checked before the booking is even loaded.
	_, err := f.svc.RecordPayment(ctx, customer, "not-a-booking", &model.PaymentRequest{Amount: 0, Method: "card", TransactionID: "T"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidAmount), "got %v", err)

	_, err = f.svc.RecordPayment(ctx, stranger, b.ID, &model.PaymentRequest{Amount: 10, Method: "card", TransactionID: "T"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden), "got %v", err)

	f.pay(t, b.ID, 10, "T")
	_, err = f.svc.RecordPayment(ctx, customer, b.ID, &model.PaymentRequest{Amount: 10, Method: "card", TransactionID: "T"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict), "got %v", err)

	f.transition(t, organizer, b.ID, model.StatusRejected, "")
	_, err = f.svc.RecordPayment(ctx, customer, b.ID, &model.PaymentRequest{Amount: 10, Method: "card", TransactionID: "T2"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeTerminalState), "got %v", err)
}

func TestCancellation_WithoutPaymentNeedsNoRefund(t *testing.T) {
	f := newFixture(t, nil, 3)
	b := f.scenarioA(t)

	cancelled := f.transition(t, organizer, b.ID, model.StatusCancelled, "")
	assert.Equal(t, "Booking cancelled", cancelled.Cancellation.Reason)
	assert.Equal(t, model.RefundNotRequired, cancelled.Cancellation.RefundStatus)
	assert.Equal(t, customer.ID, f.notifier.last().Recipient)

	_, err := f.svc.SettleRefund(context.Background(), organizer, b.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidState), "got %v", err)
}

func TestSettleRefund(t *testing.T) {
	f := newFixture(t, nil, 3)
	b := f.scenarioA(t)
	f.pay(t, b.ID, 5000, "ADV1")
	f.transition(t, customer, b.ID, model.StatusCancelled, "")

	_, err := f.svc.SettleRefund(context.Background(), customer, b.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden), "got %v", err)

	refunded, err := f.svc.SettleRefund(context.Background(), organizer, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentRefunded, refunded.PaymentStatus)
	assert.Equal(t, model.RefundProcessed, refunded.Cancellation.RefundStatus)
	assert.NotNil(t, refunded.Cancellation.RefundedAt)
	assert.Equal(t, model.EventRefundProcessed, f.notifier.last().Kind)
	assert.Equal(t, customer.ID, f.notifier.last().Recipient)

	_, err = f.svc.SettleRefund(context.Background(), admin, b.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidState), "got %v", err)
}

func TestAttachReview(t *testing.T) {
	f := newFixture(t, nil, 3)
	b := f.scenarioA(t)
	ctx := context.Background()
	review := &model.ReviewRequest{Rating: 5, Comment: "Lovely evening"}

	_, err := f.svc.AttachReview(ctx, customer, b.ID, review)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidState), "got %v", err)

	f.transition(t, organizer, b.ID, model.StatusConfirmed, "")
	f.transition(t, admin, b.ID, model.StatusCompleted, "")

	_, err = f.svc.AttachReview(ctx, customer, b.ID, &model.ReviewRequest{Rating: 6})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation), "got %v", err)

	_, err = f.svc.AttachReview(ctx, organizer, b.ID, review)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden), "got %v", err)

	reviewed, err := f.svc.AttachReview(ctx, customer, b.ID, review)
	require.NoError(t, err)
	require.NotNil(t, reviewed.Review)
	assert.Equal(t, 5, reviewed.Review.Rating)
	assert.Equal(t, organizer.ID, f.notifier.last().Recipient)

	_, err = f.svc.AttachReview(ctx, customer, b.ID, review)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAlreadyReviewed), "got %v", err)
	assert.ErrorIs(t, err, bookingserrors.ErrAlreadyReviewed)
}

func TestPostMessage(t *testing.T) {
	f := newFixture(t, nil, 3)
	b := f.scenarioA(t)

	updated, err := f.svc.PostMessage(context.Background(), customer, b.ID, &model.MessageRequest{Message: "Can we start at 7?"})
	require.NoError(t, err)
	last := updated.Communication[len(updated.Communication)-1]
	assert.Equal(t, model.KindMessage, last.Kind)
	assert.Equal(t, customer.ID, last.From)
	assert.Equal(t, organizer.ID, f.notifier.last().Recipient)

	_, err = f.svc.PostMessage(context.Background(), stranger, b.ID, &model.MessageRequest{Message: "hi"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden), "got %v", err)

	// The audit trail stays open after the booking ends.
	f.transition(t, organizer, b.ID, model.StatusRejected, "")
	_, err = f.svc.PostMessage(context.Background(), organizer, b.ID, &model.MessageRequest{Message: "Sorry!"})
	assert.NoError(t, err)
}

func TestCommunicationLogIsAppendOnly(t *testing.T) {
	f := newFixture(t, nil, 3)
	b := f.scenarioA(t)

	var history []model.CommunicationEntry
	check := func(next *model.Booking) {
		require.GreaterOrEqual(t, len(next.Communication), len(history))
		for i, entry := range history {
			assert.Equal(t, entry.Message, next.Communication[i].Message)
			assert.True(t, entry.Timestamp.Equal(next.Communication[i].Timestamp))
		}
		history = next.Communication
	}

	check(f.transition(t, organizer, b.ID, model.StatusConfirmed, "see you"))
	check(f.pay(t, b.ID, 1000, "A"))
	next, err := f.svc.PostMessage(context.Background(), organizer, b.ID, &model.MessageRequest{Message: "thanks"})
	require.NoError(t, err)
	check(next)
	check(f.pay(t, b.ID, 2000, "B"))
	check(f.transition(t, customer, b.ID, model.StatusCancelled, "sorry"))
}

func TestGetByID_Visibility(t *testing.T) {
	f := newFixture(t, nil, 3)
	b := f.scenarioA(t)

	for _, p := range []auth.Principal{customer, organizer, admin} {
		got, err := f.svc.GetByID(context.Background(), p, b.ID)
		require.NoError(t, err)
		assert.Equal(t, b.ID, got.ID)
	}

	_, err := f.svc.GetByID(context.Background(), stranger, b.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden), "got %v", err)

	_, err = f.svc.GetByID(context.Background(), customer, "bad-id")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput), "got %v", err)
}

func TestListFor_ScopesByRole(t *testing.T) {
	f := newFixture(t, nil, 3)
	ctx := context.Background()

	mine := f.scenarioA(t)
	theirs, err := f.svc.Create(ctx, stranger, createRequest(int64p(1000)))
	require.NoError(t, err)
	f.transition(t, organizer, theirs.ID, model.StatusConfirmed, "")

	got, total, err := f.svc.ListFor(ctx, customer, model.BookingFilter{Customer: "someone-else"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, got, 1)
	assert.Equal(t, mine.ID, got[0].ID)

	got, total, err = f.svc.ListFor(ctx, organizer, model.BookingFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, theirs.ID, got[0].ID, "newest first")

	got, total, err = f.svc.ListFor(ctx, admin, model.BookingFilter{Status: model.StatusConfirmed})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, theirs.ID, got[0].ID)

	_, _, err = f.svc.ListFor(ctx, admin, model.BookingFilter{Status: "archived"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput), "got %v", err)
}

func TestPaymentReplayIsDeterministic(t *testing.T) {
	amounts := []int64{4000, 6000, 20000}

	run := func() *model.Booking {
		f := newFixture(t, nil, 3)
		b := f.scenarioA(t)
		// Unrelated booking traffic must not affect the outcome.
		other := f.scenarioA(t)
		var last *model.Booking
		for i, amount := range amounts {
			last = f.pay(t, b.ID, amount, fmt.Sprintf("TX%d", i))
			f.pay(t, other.ID, 1, fmt.Sprintf("TX%d", i))
		}
		return last
	}

	first, second := run(), run()
	assert.Equal(t, first.PaymentStatus, second.PaymentStatus)
	assert.Equal(t, first.Pricing.AdvancePaid, second.Pricing.AdvancePaid)
	assert.Equal(t, int64(30000), first.Pricing.AdvancePaid)
	assert.Zero(t, first.Pricing.RemainingAmount)
	assert.Equal(t, int64(5000), first.Pricing.OverpaidAmount)
	assert.Equal(t, model.PaymentCompleted, first.PaymentStatus)
}

func TestConcurrentPaymentsSerialize(t *testing.T) {
	f := newFixture(t, nil, 100)
	b := f.scenarioA(t)

	const writers = 20
	var wg sync.WaitGroup
	var ok atomic.Int64
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.RecordPayment(context.Background(), customer, b.ID, &model.PaymentRequest{
				Amount: 100, Method: "upi", TransactionID: fmt.Sprintf("C%d", i),
			})
			if err == nil {
				ok.Add(1)
				return
			}
			assert.True(t, apperrors.HasCode(err, apperrors.CodeUnavailable), "got %v", err)
		}(i)
	}
	wg.Wait()

	stored, err := f.repo.FindByID(context.Background(), b.ID)
	require.NoError(t, err)
	n := ok.Load()
	assert.Positive(t, n)
	assert.Equal(t, 100*n, stored.Pricing.AdvancePaid)
	assert.Len(t, stored.PaymentDetails, int(n))
	assert.Equal(t, n, stored.Version)
}

// conflictingRepo fails the first failures updates with a version conflict.
type conflictingRepo struct {
	repository.BookingRepository
	failures int32
	updates  atomic.Int32
	finds    atomic.Int32
}

func (r *conflictingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	r.finds.Add(1)
	return r.BookingRepository.FindByID(ctx, id)
}

func (r *conflictingRepo) Update(ctx context.Context, b *model.Booking, expected int64) error {
	if r.updates.Add(1) <= r.failures {
		return bookingserrors.ErrVersionConflict
	}
	return r.BookingRepository.Update(ctx, b, expected)
}

func TestMutate_RetriesVersionConflicts(t *testing.T) {
	repo := &conflictingRepo{BookingRepository: repository.NewMemoryBookingRepository(), failures: 2}
	f := newFixture(t, repo, 3)
	b := f.scenarioA(t)

	paid := f.pay(t, b.ID, 500, "R1")
	assert.Equal(t, int64(500), paid.Pricing.AdvancePaid)
	assert.Equal(t, int32(3), repo.updates.Load())
	assert.Equal(t, int32(3), repo.finds.Load())
}

func TestMutate_ExhaustedRetriesAreUnavailable(t *testing.T) {
	repo := &conflictingRepo{BookingRepository: repository.NewMemoryBookingRepository(), failures: 1000}
	f := newFixture(t, repo, 2)
	b := f.scenarioA(t)

	_, err := f.svc.RecordPayment(context.Background(), customer, b.ID, &model.PaymentRequest{Amount: 500, Method: "card", TransactionID: "R1"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnavailable), "got %v", err)
	assert.True(t, errors.Is(err, bookingserrors.ErrVersionConflict))
	assert.Equal(t, int32(3), repo.updates.Load())
}

func TestMutate_DomainErrorsAreNotRetried(t *testing.T) {
	repo := &conflictingRepo{BookingRepository: repository.NewMemoryBookingRepository()}
	f := newFixture(t, repo, 5)
	b := f.scenarioA(t)

	_, err := f.svc.Transition(context.Background(), customer, b.ID, &model.TransitionRequest{Status: model.StatusConfirmed})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden), "got %v", err)
	assert.Equal(t, int32(1), repo.finds.Load())
	assert.Zero(t, repo.updates.Load())
}

func TestNotificationFailureDoesNotFailOperation(t *testing.T) {
	f := newFixture(t, nil, 3)
	f.svc.notifier = nil
	b := f.scenarioA(t)

	confirmed := f.transition(t, organizer, b.ID, model.StatusConfirmed, "")
	assert.Equal(t, model.StatusConfirmed, confirmed.Status)
}

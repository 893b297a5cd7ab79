package notifier

import (
	"context"
	"errors"
	"sync"
	"time"

	"eventhub/pkg/logger"
	"eventhub/pkg/model"
)

// ErrDispatchFailure marks a notification that was dropped or could not be
// delivered. It is only ever logged; booking operations never see it.
var ErrDispatchFailure = errors.New("notification dispatch failed")

// Sink delivers a single event to whatever transport backs notifications.
type Sink interface {
	Send(ctx context.Context, event model.BookingEvent) error
}

type Options struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
}

// Dispatcher fans events out to a Sink from a bounded queue served by a fixed
// worker pool. Each delivery is attempted once within its own timeout.
type Dispatcher struct {
	sink    Sink
	queue   chan model.BookingEvent
	workers int
	timeout time.Duration
	log     *logger.Logger

	mu       sync.RWMutex
	closed   bool
	started  bool
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewDispatcher(sink Sink, opts Options, log *logger.Logger) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 3 * time.Second
	}
	return &Dispatcher{
		sink:    sink,
		queue:   make(chan model.BookingEvent, opts.QueueSize),
		workers: opts.Workers,
		timeout: opts.Timeout,
		log:     log,
	}
}

func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work(i)
	}
	d.log.Info("Notification dispatcher started", "workers", d.workers, "queue_size", cap(d.queue))
}

// Dispatch enqueues events without blocking. Events that do not fit are dropped.
func (d *Dispatcher) Dispatch(events ...model.BookingEvent) {
	for _, event := range events {
		if err := d.enqueue(event); err != nil {
			d.log.Warn("Notification dropped",
				"error", err,
				"event_id", event.ID,
				"kind", event.Kind,
				"booking_id", event.BookingID,
				"recipient", event.Recipient,
			)
		}
	}
}

func (d *Dispatcher) enqueue(event model.BookingEvent) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return errors.Join(ErrDispatchFailure, errors.New("dispatcher stopped"))
	}
	select {
	case d.queue <- event:
		return nil
	default:
		return errors.Join(ErrDispatchFailure, errors.New("queue full"))
	}
}

func (d *Dispatcher) work(id int) {
	defer d.wg.Done()
	for event := range d.queue {
		d.deliver(id, event)
	}
}

func (d *Dispatcher) deliver(worker int, event model.BookingEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.sink.Send(ctx, event); err != nil {
		d.log.Warn("Notification delivery failed",
			"error", errors.Join(ErrDispatchFailure, err),
			"worker", worker,
			"event_id", event.ID,
			"kind", event.Kind,
			"booking_id", event.BookingID,
			"recipient", event.Recipient,
		)
		return
	}
	d.log.Debug("Notification delivered",
		"event_id", event.ID,
		"kind", event.Kind,
		"booking_id", event.BookingID,
	)
}

// Stop refuses new events and waits for queued ones to drain, or for ctx to end.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.stopOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		started := d.started
		d.mu.Unlock()

		if !started {
			// Nobody will drain the queue; count what was lost.
			if n := len(d.queue); n > 0 {
				d.log.Warn("Notification dispatcher stopped before start", "dropped", n)
			}
		}
	})

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.log.Info("Notification dispatcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

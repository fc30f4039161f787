package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"stablebook/pkg/kafka"
	"stablebook/pkg/logger"
	"stablebook/pkg/metrics"
	"stablebook/pkg/model"
)

const (
	DefaultQueueSize = 256
	DefaultWorkers   = 2
	DefaultTimeout   = 5 * time.Second

	schemaVersion = "1"
)

var ErrDispatcherStopped = errors.New("notification dispatcher stopped")

type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type AdminDirectory interface {
	FindAdminIDs(ctx context.Context) ([]string, error)
}

// Notifier accepts post-commit events. Dispatch never blocks and reports
// whether the event was queued.
type Notifier interface {
	Dispatch(event Event) bool
}

// Event is one committed batch.
type Event struct {
	BatchID       string
	CorrelationID string
	Reservations  []model.ReservationDetail
}

type Options struct {
	QueueSize int
	Workers   int
	Timeout   time.Duration
	Source    string
	Metrics   *metrics.ReservationMetrics
}

// Dispatcher fans committed reservations out to the stable owner and every
// admin, one Kafka message per recipient per reservation. Failures are logged
// and counted, never surfaced to the booking path.
type Dispatcher struct {
	pub     Publisher
	admins  AdminDirectory
	log     *logger.Logger
	opts    Options
	queue   chan Event
	mu      sync.RWMutex
	stopped bool
	started bool
	wg      sync.WaitGroup
}

func NewDispatcher(pub Publisher, admins AdminDirectory, log *logger.Logger, opts Options) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Dispatcher{
		pub:    pub,
		admins: admins,
		log:    log.Component("notify_dispatcher"),
		opts:   opts,
		queue:  make(chan Event, opts.QueueSize),
	}
}

func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.stopped {
		return
	}
	d.started = true

	for i := 0; i < d.opts.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	d.log.Info("Notification dispatcher started", "workers", d.opts.Workers, "queue_size", d.opts.QueueSize)
}

func (d *Dispatcher) Dispatch(event Event) bool {
	if len(event.Reservations) == 0 {
		return true
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		d.drop(event, ErrDispatcherStopped)
		return false
	}

	select {
	case d.queue <- event:
		return true
	default:
		d.drop(event, fmt.Errorf("queue full (%d)", d.opts.QueueSize))
		return false
	}
}

func (d *Dispatcher) drop(event Event, reason error) {
	d.log.Warn("Dropping reservation notifications",
		"batch_id", event.BatchID,
		"reservations", len(event.Reservations),
		"reason", reason,
	)
	d.opts.Metrics.Notification(metrics.OutcomeDropped)
}

// Stop closes the queue and waits for the workers to drain it, or for ctx.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return nil
	}
	d.stopped = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.log.Info("Notification dispatcher drained")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notification dispatcher drain: %w", ctx.Err())
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for event := range d.queue {
		d.handle(event)
	}
}

func (d *Dispatcher) handle(event Event) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("Notification worker panic", "batch_id", event.BatchID, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.opts.Timeout)
	defer cancel()

	var admins []string
	if d.admins != nil {
		ids, err := d.admins.FindAdminIDs(ctx)
		if err != nil {
			d.log.Warn("Failed to resolve admin recipients", "batch_id", event.BatchID, "error", err)
		}
		admins = ids
	}

	for _, reservation := range event.Reservations {
		for _, recipient := range Recipients(reservation, admins) {
			d.publish(ctx, event, recipient, reservation)
		}
	}
}

func (d *Dispatcher) publish(ctx context.Context, event Event, recipient string, reservation model.ReservationDetail) {
	outcome := metrics.OutcomeSuccess
	defer func() {
		if r := recover(); r != nil {
			outcome = metrics.OutcomeError
			d.log.Error("Notification publish panic", "recipient_id", recipient, "panic", r)
		}
		d.opts.Metrics.Notification(outcome)
	}()

	msg, err := kafka.NewMessage().
		WithKey(recipient).
		WithValue(model.ReservationNotification{
			RecipientID: recipient,
			BatchID:     event.BatchID,
			Reservation: reservation,
		}).
		WithEventType(model.EventReservationCreated).
		WithCorrelationID(event.CorrelationID).
		WithSchemaVersion(schemaVersion).
		WithSource(d.opts.Source).
		Build()
	if err == nil {
		err = d.pub.Publish(ctx, msg)
	}
	if err != nil {
		outcome = metrics.OutcomeError
		d.log.Warn("Failed to publish reservation notification",
			"batch_id", event.BatchID,
			"reservation_id", reservation.ID,
			"recipient_id", recipient,
			"error", err,
		)
	}
}

// Recipients returns the stable owner followed by the admins, without
// duplicates or empty ids.
func Recipients(reservation model.ReservationDetail, admins []string) []string {
	seen := make(map[string]struct{}, len(admins)+1)
	recipients := make([]string, 0, len(admins)+1)
	for _, id := range append([]string{reservation.Stable.OwnerID}, admins...) {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		recipients = append(recipients, id)
	}
	return recipients
}

// Discard drops every event. Used when notifications are disabled.
type Discard struct{}

func (Discard) Dispatch(Event) bool { return true }

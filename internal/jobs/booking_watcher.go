package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	bookingDatamodel "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/datamodel/booking"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/events"
)

type BookingStore interface {
	ListCreatedAfter(since time.Time) ([]*bookingDatamodel.Booking, error)
}

// BookingWatcher polls for newly confirmed bookings and announces them on
// the event bus so the staff console can surface incoming pickups. The
// seen set dedups bookings that straddle two polls.
type BookingWatcher struct {
	bookings BookingStore
	eventBus *events.EventBus
	logger   *slog.Logger
	now      func() time.Time

	mu        sync.Mutex
	seen      map[string]struct{}
	lastPoll  time.Time
	pollSlack time.Duration
}

func NewBookingWatcher(bookings BookingStore, eventBus *events.EventBus, logger *slog.Logger) *BookingWatcher {
	w := &BookingWatcher{
		bookings:  bookings,
		eventBus:  eventBus,
		logger:    logger,
		now:       time.Now,
		seen:      make(map[string]struct{}),
		pollSlack: time.Minute,
	}
	w.lastPoll = w.now()
	return w
}

// Schedule registers the watcher on the given cron runner.
func (w *BookingWatcher) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		if err := w.Poll(); err != nil {
			w.logger.Error("booking poll failed", "error", err)
		}
	})
}

// Poll fetches bookings created since the last poll and publishes a
// detection event for each one not seen before.
func (w *BookingWatcher) Poll() error {
	w.mu.Lock()
	since := w.lastPoll.Add(-w.pollSlack)
	w.mu.Unlock()

	bookings, err := w.bookings.ListCreatedAfter(since)
	if err != nil {
		return err
	}

	polledAt := w.now()

	w.mu.Lock()
	defer w.mu.Unlock()

	for _, b := range bookings {
		if _, ok := w.seen[b.Code]; ok {
			continue
		}
		w.seen[b.Code] = struct{}{}

		w.logger.Info("new booking detected",
			"booking_code", b.Code,
			"station_id", b.StationID,
			"start_time", b.StartTime)
		w.eventBus.Publish(context.Background(), events.NewBookingDetectedEvent(b.Code, b.StationID))
	}

	w.lastPoll = polledAt
	return nil
}

// SeenCount reports how many bookings the watcher has announced.
func (w *BookingWatcher) SeenCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.seen)
}

package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"toran/internal/datekey"
	"toran/internal/events"
	"toran/internal/metrics"
	"toran/internal/models"
)

// Store is the document-store boundary the service depends on. The engine
// never talks to storage directly; everything arrives as plain data.
type Store interface {
	GetBusiness(ctx context.Context, id string) (*models.Business, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	// BookedTimes returns the normalized "HH:MM" times occupied by active
	// bookings of a business on a date, excluding excludeID when non-empty.
	BookedTimes(ctx context.Context, businessID, dateKey, excludeID string) (map[string]struct{}, error)
	// SlotTaken re-checks one exact (business, date, time) tuple.
	SlotTaken(ctx context.Context, businessID, dateKey, timeKey, excludeID string) (bool, error)
	InsertBooking(ctx context.Context, b *models.Booking) error
	// UpdateBookingSlot moves a booking to a new slot and status, guarded by
	// the optimistic version.
	UpdateBookingSlot(ctx context.Context, id string, version int64, dateKey, timeKey, status string) error
	// UpdateBookingStatus changes only the status, guarded by the version.
	UpdateBookingStatus(ctx context.Context, id string, version int64, status string) error
}

// CreateRequest carries a client's booking attempt.
type CreateRequest struct {
	BusinessID string
	UserID     string
	UserName   string
	UserPhone  string
	Date       string
	Time       string
}

// Service applies booking operations against the store. All availability
// decisions are computed from snapshots; the only concurrency defense is the
// re-check of the exact slot immediately before each write. Two writers
// racing inside that narrow window can still both succeed - the store offers
// no compare-and-set over a query, so this stays a documented best-effort
// guarantee.
type Service struct {
	store Store
	log   zerolog.Logger
	now   func() time.Time
	bus   *events.Bus
}

// NewService creates a booking service. now is injected for tests; nil
// defaults to time.Now.
func NewService(store Store, logger zerolog.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, log: logger, now: now}
}

// WithEvents attaches a lifecycle event bus. Publishing on a nil bus is a
// no-op, so attaching is optional.
func (s *Service) WithEvents(bus *events.Bus) *Service {
	s.bus = bus
	return s
}

func (s *Service) publish(eventType string, b *models.Booking) {
	s.bus.Publish(events.Event{
		Type:       eventType,
		BookingID:  b.ID,
		BusinessID: b.BusinessID,
		DateKey:    b.DateKey(),
		TimeKey:    b.TimeKey(),
		CreatedAt:  s.now(),
	})
}

// Create validates the requested slot and writes a new booking. The booking
// starts as approved or pending depending on the business's auto-approve
// setting.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Booking, error) {
	business, err := s.store.GetBusiness(ctx, req.BusinessID)
	if err != nil {
		return nil, fmt.Errorf("load business: %w", err)
	}

	slot, err := s.validateAgainstStore(ctx, business, req.Date, req.Time, "")
	if err != nil {
		return nil, err
	}

	now := s.now()
	b := &models.Booking{
		ID:           uuid.NewString(),
		BusinessID:   business.ID,
		BusinessName: business.Name,
		UserID:       req.UserID,
		UserName:     req.UserName,
		UserPhone:    req.UserPhone,
		Date:         slot.DateKey,
		Time:         slot.TimeKey,
		Status:       business.InitialBookingStatus(),
		CreatedAt:    now,
		UpdatedAt:    now,
		Version:      1,
	}

	if err := s.store.InsertBooking(ctx, b); err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}

	metrics.IncBookingCreated(b.Status)
	s.publish(events.BookingCreated, b)
	s.log.Info().
		Str("booking_id", b.ID).
		Str("business_id", b.BusinessID).
		Str("date", b.Date).
		Str("time", b.Time).
		Str("status", b.Status).
		Msg("booking created")
	return b, nil
}

// Reschedule moves an existing booking to a new slot. The booking's own
// current slot is excluded from the collision checks, so rescheduling onto
// the same (date, time) succeeds. The old slot is freed immediately by the
// in-place update.
func (s *Service) Reschedule(ctx context.Context, id, date, clock string) (*models.Booking, error) {
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if !models.CanTransition(b.Status, models.StatusRescheduled) {
		return nil, ErrInvalidTransition
	}

	business, err := s.store.GetBusiness(ctx, b.BusinessID)
	if err != nil {
		return nil, fmt.Errorf("load business: %w", err)
	}

	slot, err := s.validateAgainstStore(ctx, business, date, clock, b.ID)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateBookingSlot(ctx, b.ID, b.Version, slot.DateKey, slot.TimeKey, models.StatusRescheduled); err != nil {
		return nil, fmt.Errorf("update booking slot: %w", err)
	}

	b.Date = slot.DateKey
	b.Time = slot.TimeKey
	b.Status = models.StatusRescheduled
	b.Version++

	metrics.IncBookingRescheduled()
	s.publish(events.BookingRescheduled, b)
	s.log.Info().
		Str("booking_id", b.ID).
		Str("date", b.Date).
		Str("time", b.Time).
		Msg("booking rescheduled")
	return b, nil
}

// Cancel marks a booking cancelled, freeing its slot for reuse immediately.
func (s *Service) Cancel(ctx context.Context, id string) (*models.Booking, error) {
	b, err := s.transition(ctx, id, models.StatusCancelled)
	if err != nil {
		return nil, err
	}
	metrics.IncBookingCancelled()
	s.publish(events.BookingCancelled, b)
	return b, nil
}

// Approve confirms a pending (or rescheduled) booking.
func (s *Service) Approve(ctx context.Context, id string) (*models.Booking, error) {
	b, err := s.transition(ctx, id, models.StatusApproved)
	if err != nil {
		return nil, err
	}
	s.publish(events.BookingApproved, b)
	return b, nil
}

func (s *Service) transition(ctx context.Context, id, to string) (*models.Booking, error) {
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if !models.CanTransition(b.Status, to) {
		return nil, ErrInvalidTransition
	}

	if err := s.store.UpdateBookingStatus(ctx, b.ID, b.Version, to); err != nil {
		return nil, fmt.Errorf("update booking status: %w", err)
	}

	b.Status = to
	b.Version++
	s.log.Info().Str("booking_id", b.ID).Str("status", to).Msg("booking status updated")
	return b, nil
}

// validateAgainstStore runs the pure slot validation against a fresh
// booked-times read, then re-checks the exact slot immediately before the
// caller writes. The second read narrows the race window against a
// concurrent booking of the same slot; a hit rejects with ErrSlotTaken and
// nothing is written.
func (s *Service) validateAgainstStore(ctx context.Context, business *models.Business, date, clock, excludeID string) (Slot, error) {
	sched := business.Schedule()

	booked := map[string]struct{}{}
	if dateKey := datekey.NormalizeDate(date); dateKey != "" {
		var err error
		booked, err = s.store.BookedTimes(ctx, business.ID, dateKey, excludeID)
		if err != nil {
			return Slot{}, fmt.Errorf("load booked times: %w", err)
		}
	}

	slot, err := ValidateSlot(sched, date, clock, s.now(), booked)
	if err != nil {
		return Slot{}, err
	}

	taken, err := s.store.SlotTaken(ctx, business.ID, slot.DateKey, slot.TimeKey, excludeID)
	if err != nil {
		return Slot{}, fmt.Errorf("re-check slot: %w", err)
	}
	if taken {
		metrics.IncSlotConflict()
		s.log.Warn().
			Str("business_id", business.ID).
			Str("date", slot.DateKey).
			Str("time", slot.TimeKey).
			Msg("slot lost to concurrent booking")
		return Slot{}, ErrSlotTaken
	}
	return slot, nil
}

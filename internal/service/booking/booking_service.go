package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Domenick1991/tripassist/internal/domain"
	"github.com/Domenick1991/tripassist/internal/kafka"
	"github.com/Domenick1991/tripassist/internal/repository"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	CancelBooking(ctx context.Context, pnr string) (*domain.CancelOutcome, error)
	GetBooking(ctx context.Context, pnr string) (*domain.Booking, error)
	ListCustomerBookings(ctx context.Context, customerID int64) ([]domain.Booking, error)
	Customer(ctx context.Context, id int64) (*domain.Customer, error)
}

// Inventory is the store behind BookingService: the booking transactions
// plus the seat map that prices a seat.
type Inventory interface {
	repository.BookingRepository
	Seats(ctx context.Context, flightID int64) ([]domain.Seat, error)
}

// SeatLocker queues concurrent booking attempts for the same seat so only one
// at a time reaches the database. The returned release removes only the
// caller's own lock.
type SeatLocker interface {
	AcquireSeatLock(ctx context.Context, flightID int64, seat string, ttl time.Duration) (release func(context.Context) error, err error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value any) error
}

type BookingService struct {
	bookings           Inventory
	locker             SeatLocker
	lockTTL            time.Duration
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	publishTimeout     time.Duration
	log                logrus.FieldLogger
	now                func() time.Time
}

// CreateBookingInput carries no fare: the seat's own price is charged.
type CreateBookingInput struct {
	CustomerID int64  `json:"customer_id" binding:"required,gt=0"`
	FlightID   int64  `json:"flight_id" binding:"required,gt=0"`
	SeatLabel  string `json:"seat" binding:"required"`
}

type BookingServiceOption func(*BookingService)

func WithSeatLocker(locker SeatLocker, ttl time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.locker = locker
		s.lockTTL = ttl
	}
}

func WithProducer(producer Producer, bookingTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = bookingTopic
	}
}

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

// WithPublishTimeout bounds event publishing independently of the caller's
// context, so a committed booking is announced even if the client went away.
func WithPublishTimeout(timeout time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.publishTimeout = timeout
	}
}

func NewBookingService(bookings Inventory, log logrus.FieldLogger, opts ...BookingServiceOption) *BookingService {
	service := &BookingService{
		bookings:       bookings,
		lockTTL:        10 * time.Second,
		publishTimeout: 5 * time.Second,
		log:            log,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	label, err := domain.ParseSeatLabel(input.SeatLabel)
	if err != nil {
		return nil, err
	}
	seat := label.String()
	log := s.log.WithFields(logrus.Fields{"flight_id": input.FlightID, "seat": seat, "customer_id": input.CustomerID})

	fare, err := s.seatPrice(ctx, input.FlightID, label)
	if err != nil {
		return nil, err
	}

	if s.locker != nil {
		release, err := s.locker.AcquireSeatLock(ctx, input.FlightID, seat, s.lockTTL)
		if err != nil {
			// the row lock in the inventory transaction still decides who gets the seat
			log.WithError(err).Warn("seat lock unavailable, continuing without it")
		} else {
			defer func() {
				if err := release(context.WithoutCancel(ctx)); err != nil {
					log.WithError(err).Warn("failed to release seat lock")
				}
			}()
		}
	}

	booking, err := s.bookings.CreateBooking(ctx, input.CustomerID, input.FlightID, seat, fare)
	if err != nil {
		log.WithError(err).Info("booking failed")
		return nil, err
	}
	log.WithField("pnr", booking.PNR).Info("booking created")

	s.publish(ctx, kafka.BookingEvent{
		Type:       kafka.EventBookingCreated,
		PNR:        booking.PNR,
		CustomerID: booking.CustomerID,
		FlightID:   booking.FlightID,
		Seat:       booking.AssignedSeat,
		Status:     string(booking.Status),
		Fare:       booking.FareAmount,
		OccurredAt: s.now().UTC(),
	})
	return booking, nil
}

func (s *BookingService) seatPrice(ctx context.Context, flightID int64, label domain.SeatLabel) (float64, error) {
	seats, err := s.bookings.Seats(ctx, flightID)
	if err != nil {
		return 0, fmt.Errorf("load seats of flight %d: %w", flightID, err)
	}
	for _, seat := range seats {
		if seat.Row == label.Row && seat.Column == label.Column {
			return seat.Price, nil
		}
	}
	return 0, fmt.Errorf("%w: %s on flight %d", domain.ErrSeatNotFound, label, flightID)
}

// CancelBooking cancels pnr. Cancelling twice is reported through
// CancelOutcome.AlreadyCancelled and publishes nothing the second time.
func (s *BookingService) CancelBooking(ctx context.Context, pnr string) (*domain.CancelOutcome, error) {
	pnr = normalizePNR(pnr)
	outcome, err := s.bookings.CancelBooking(ctx, pnr)
	if err != nil {
		return nil, err
	}
	log := s.log.WithField("pnr", pnr)
	if outcome.AlreadyCancelled {
		log.Info("booking was already cancelled")
		return outcome, nil
	}
	log.WithFields(logrus.Fields{"refund": outcome.RefundAmount, "seat_released": outcome.SeatReleased}).Info("booking cancelled")

	event := kafka.BookingEvent{
		Type:         kafka.EventBookingCancelled,
		PNR:          outcome.PNR,
		Status:       string(domain.BookingStatusCancelled),
		RefundAmount: outcome.RefundAmount,
		OccurredAt:   s.now().UTC(),
	}
	if b, err := s.bookings.BookingByPNR(ctx, pnr); err == nil {
		event.CustomerID = b.CustomerID
		event.FlightID = b.FlightID
		event.Seat = b.AssignedSeat
		event.Fare = b.FareAmount
	}
	s.publish(ctx, event)
	return outcome, nil
}

func (s *BookingService) GetBooking(ctx context.Context, pnr string) (*domain.Booking, error) {
	return s.bookings.BookingByPNR(ctx, normalizePNR(pnr))
}

func (s *BookingService) ListCustomerBookings(ctx context.Context, customerID int64) ([]domain.Booking, error) {
	return s.bookings.BookingsByCustomer(ctx, customerID)
}

func (s *BookingService) Customer(ctx context.Context, id int64) (*domain.Customer, error) {
	return s.bookings.CustomerByID(ctx, id)
}

// publish never fails the caller; the booking is already committed.
func (s *BookingService) publish(ctx context.Context, event kafka.BookingEvent) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if s.publishTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.publishTimeout)
		defer cancel()
	}

	topics := []string{s.bookingTopic}
	if s.notificationsTopic != "" {
		topics = append(topics, s.notificationsTopic)
	}
	for _, topic := range topics {
		if err := s.producer.Publish(ctx, topic, event.PNR, event); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{"topic": topic, "pnr": event.PNR, "type": event.Type}).Warn("failed to publish booking event")
		}
	}
}

func normalizePNR(pnr string) string {
	return strings.ToUpper(strings.TrimSpace(pnr))
}

var _ BookingUseCase = (*BookingService)(nil)

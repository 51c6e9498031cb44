package repository

import (
	"context"

	"github.com/Domenick1991/tripassist/internal/domain"
)

// BookingRepository owns the only two write paths into seats and bookings.
type BookingRepository interface {
	CreateBooking(ctx context.Context, customerID, flightID int64, seatLabel string, fare float64) (*domain.Booking, error)
	CancelBooking(ctx context.Context, pnr string) (*domain.CancelOutcome, error)
	BookingByPNR(ctx context.Context, pnr string) (*domain.Booking, error)
	BookingsByCustomer(ctx context.Context, customerID int64) ([]domain.Booking, error)
	CustomerByID(ctx context.Context, id int64) (*domain.Customer, error)
}

type FlightRepository interface {
	FlightByNumber(ctx context.Context, number string) (*domain.Flight, error)
	FlightByID(ctx context.Context, id int64) (*domain.Flight, error)
	FlightsByRoute(ctx context.Context, origin, destination string) ([]domain.Flight, error)
	FirstAvailableSeat(ctx context.Context, flightID int64) (*domain.Seat, error)
	SeatCounts(ctx context.Context, flightID int64) (domain.SeatCounts, error)
	Seats(ctx context.Context, flightID int64) ([]domain.Seat, error)
}

type PolicyRepository interface {
	// PolicyByType matches policyType case-insensitively as a substring; an
	// empty type matches every policy of the airline. When the airline has no
	// match the default airline's policies of the same type are returned.
	PolicyByType(ctx context.Context, policyType, airlineCode string) (*domain.PolicyLookup, error)
	Policies(ctx context.Context, airlineCode string) ([]domain.Policy, error)
}

type InventoryRepository interface {
	BookingRepository
	FlightRepository
	PolicyRepository
}

func policyLookup(policyType, requested, matched string, docs []string) *domain.PolicyLookup {
	if docs == nil {
		docs = []string{}
	}
	return &domain.PolicyLookup{
		PolicyType:  policyType,
		AirlineCode: matched,
		Documents:   docs,
		FellBack:    matched != requested,
	}
}

func cancelledOutcome(b *domain.Booking) *domain.CancelOutcome {
	out := &domain.CancelOutcome{PNR: b.PNR, AlreadyCancelled: true, RefundDate: b.RefundDate}
	if b.RefundAmount != nil {
		out.RefundAmount = *b.RefundAmount
	}
	return out
}

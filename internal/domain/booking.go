package domain

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "Confirmed"
	BookingStatusCancelled BookingStatus = "Cancelled"
)

const PaymentStatusPaid = "Paid"

// RefundRate is the share of the fare returned on cancellation.
const RefundRate = 0.9

type Booking struct {
	PNR           string
	CustomerID    int64
	FlightID      int64
	AssignedSeat  string
	FareAmount    float64
	PaymentStatus string
	Status        BookingStatus
	BookingDate   time.Time
	RefundAmount  *float64
	RefundDate    *time.Time
}

func (b Booking) Cancelled() bool {
	return b.Status == BookingStatusCancelled
}

// RefundFor computes the refund owed for a cancelled fare.
func RefundFor(fare float64) float64 {
	return fare * RefundRate
}

// CancelOutcome is the result of a cancellation request.
type CancelOutcome struct {
	PNR              string
	RefundAmount     float64
	RefundDate       *time.Time
	AlreadyCancelled bool
	SeatReleased     bool
}

func (o CancelOutcome) Message() string {
	if o.AlreadyCancelled {
		return fmt.Sprintf("Booking %s is already cancelled.", o.PNR)
	}
	return fmt.Sprintf("Booking with PNR %s has been cancelled. Refund: ₹%.2f.", o.PNR, o.RefundAmount)
}

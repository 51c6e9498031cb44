package email

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Domenick1991/tripassist/internal/domain"
	"github.com/Domenick1991/tripassist/internal/kafka"
)

// Sender renders booking notifications. Delivery is a structured log line;
// a mail transport can replace deliver without touching the worker.
type Sender struct {
	log     logrus.FieldLogger
	deliver func(to, subject, body string) error
}

func NewSender(log logrus.FieldLogger) *Sender {
	s := &Sender{log: log}
	s.deliver = s.logDelivery
	return s
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent, customer *domain.Customer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if customer == nil || customer.Email == "" {
		s.log.WithField("pnr", event.PNR).Warn("no email address for booking event, skipping")
		return nil
	}
	subject, body, err := Render(event, customer.Name)
	if err != nil {
		return err
	}
	return s.deliver(customer.Email, subject, body)
}

func (s *Sender) logDelivery(to, subject, body string) error {
	s.log.WithFields(logrus.Fields{"to": to, "subject": subject}).Info(body)
	return nil
}

// Render builds the subject and body for a booking event.
func Render(event kafka.BookingEvent, name string) (string, string, error) {
	switch event.Type {
	case kafka.EventBookingCreated:
		return fmt.Sprintf("Booking %s confirmed", event.PNR),
			fmt.Sprintf("Dear %s, your booking %s is confirmed. Seat %s on flight %d, fare ₹%.2f.", name, event.PNR, event.Seat, event.FlightID, event.Fare),
			nil
	case kafka.EventBookingCancelled:
		return fmt.Sprintf("Booking %s cancelled", event.PNR),
			fmt.Sprintf("Dear %s, your booking %s has been cancelled. A refund of ₹%.2f is on its way.", name, event.PNR, event.RefundAmount),
			nil
	default:
		return "", "", fmt.Errorf("unknown booking event type %q", event.Type)
	}
}

package email

import (
	"context"
	"errors"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/Domenick1991/tripassist/internal/domain"
	"github.com/Domenick1991/tripassist/internal/kafka"
)

type CustomerLookup interface {
	CustomerByID(ctx context.Context, id int64) (*domain.Customer, error)
}

// HandleMessage returns a consumer handler that notifies the customer named
// in each booking event. Malformed events and unknown customers are skipped;
// only lookup failures and cancellation stop the consumer.
func (s *Sender) HandleMessage(customers CustomerLookup) func(context.Context, kafkago.Message) error {
	return func(ctx context.Context, msg kafkago.Message) error {
		event, err := kafka.DecodeBookingEvent(msg)
		if err != nil {
			s.log.WithError(err).WithField("offset", msg.Offset).Warn("skipping undecodable booking event")
			return nil
		}
		log := s.log.WithFields(logrus.Fields{"pnr": event.PNR, "type": event.Type})

		customer, err := customers.CustomerByID(ctx, event.CustomerID)
		if errors.Is(err, domain.ErrCustomerNotFound) {
			log.WithField("customer_id", event.CustomerID).Warn("customer not found, skipping notification")
			return nil
		}
		if err != nil {
			return err
		}

		if err := s.Send(ctx, event, customer); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.WithError(err).Warn("notification not sent")
		}
		return nil
	}
}

package email

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/tripassist/internal/domain"
	"github.com/Domenick1991/tripassist/internal/kafka"
)

type MockCustomerLookup struct {
	mock.Mock
}

func (m *MockCustomerLookup) CustomerByID(ctx context.Context, id int64) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func eventMessage(t *testing.T, event kafka.BookingEvent) kafkago.Message {
	t.Helper()
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return kafkago.Message{Key: []byte(event.PNR), Value: value}
}

func TestHandleMessage_delivers(t *testing.T) {
	logger, _ := test.NewNullLogger()
	s := NewSender(logger)
	var to string
	s.deliver = func(addr, _, _ string) error {
		to = addr
		return nil
	}

	customers := &MockCustomerLookup{}
	customers.On("CustomerByID", mock.Anything, int64(3)).Return(&domain.Customer{ID: 3, Name: "Ravi", Email: "ravi@example.com"}, nil)

	handler := s.HandleMessage(customers)
	err := handler(context.Background(), eventMessage(t, kafka.BookingEvent{Type: kafka.EventBookingCreated, PNR: "PNR10001", CustomerID: 3}))

	require.NoError(t, err)
	assert.Equal(t, "ravi@example.com", to)
	customers.AssertExpectations(t)
}

func TestHandleMessage_skipsBadInput(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s := NewSender(logger)
	s.deliver = func(_, _, _ string) error {
		t.Fatal("nothing should be delivered")
		return nil
	}

	customers := &MockCustomerLookup{}
	customers.On("CustomerByID", mock.Anything, int64(99)).Return(nil, domain.ErrCustomerNotFound)
	customers.On("CustomerByID", mock.Anything, int64(1)).Return(&domain.Customer{ID: 1, Email: "a@example.com"}, nil)
	handler := s.HandleMessage(customers)

	assert.NoError(t, handler(context.Background(), kafkago.Message{Value: []byte("{not json")}))
	assert.NoError(t, handler(context.Background(), eventMessage(t, kafka.BookingEvent{Type: kafka.EventBookingCreated, PNR: "PNR10002", CustomerID: 99})))
	assert.NoError(t, handler(context.Background(), eventMessage(t, kafka.BookingEvent{Type: "booking_teleported", PNR: "PNR10003", CustomerID: 1})))
	assert.Len(t, hook.AllEntries(), 3)
}

func TestHandleMessage_lookupFailureStops(t *testing.T) {
	logger, _ := test.NewNullLogger()
	s := NewSender(logger)

	customers := &MockCustomerLookup{}
	customers.On("CustomerByID", mock.Anything, int64(1)).Return(nil, errors.New("db down"))

	err := s.HandleMessage(customers)(context.Background(), eventMessage(t, kafka.BookingEvent{Type: kafka.EventBookingCreated, PNR: "PNR10004", CustomerID: 1}))
	assert.EqualError(t, err, "db down")
}

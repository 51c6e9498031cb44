package session

import (
	"encoding/json"
	"fmt"
)

type Kind string

const (
	KindIdle                        Kind = "idle"
	KindAwaitingPNR                 Kind = "awaiting_pnr"
	KindAwaitingCancelConfirmation  Kind = "awaiting_cancel_confirmation"
	KindAwaitingBookingSource       Kind = "awaiting_booking_source"
	KindAwaitingBookingDestination  Kind = "awaiting_booking_destination"
	KindAwaitingBookingConfirmation Kind = "awaiting_booking_confirmation"
	KindAwaitingCustomerID          Kind = "awaiting_customer_id"
	KindAwaitingSearchSource        Kind = "awaiting_search_source"
	KindAwaitingSearchDestination   Kind = "awaiting_search_destination"
)

// State is the dialog a user is in. The set of implementations is closed;
// each carries only the slots collected so far for its dialog.
type State interface {
	Kind() Kind
	isState()
}

type Idle struct{}

type AwaitingPNR struct{}

type AwaitingCancelConfirmation struct {
	PNR string `json:"pnr"`
}

type AwaitingBookingSource struct{}

type AwaitingBookingDestination struct {
	Source string `json:"source"`
}

// BookingSlots is the proposal carried from the confirmation prompt to the
// booking transaction.
type BookingSlots struct {
	FlightID     int64   `json:"flight_id"`
	FlightNumber string  `json:"flight_number"`
	Seat         string  `json:"seat"`
	Fare         float64 `json:"fare"`
}

type AwaitingBookingConfirmation struct {
	BookingSlots
}

type AwaitingCustomerID struct {
	BookingSlots
}

type AwaitingSearchSource struct{}

type AwaitingSearchDestination struct {
	Source string `json:"source"`
}

func (Idle) Kind() Kind                        { return KindIdle }
func (AwaitingPNR) Kind() Kind                 { return KindAwaitingPNR }
func (AwaitingCancelConfirmation) Kind() Kind  { return KindAwaitingCancelConfirmation }
func (AwaitingBookingSource) Kind() Kind       { return KindAwaitingBookingSource }
func (AwaitingBookingDestination) Kind() Kind  { return KindAwaitingBookingDestination }
func (AwaitingBookingConfirmation) Kind() Kind { return KindAwaitingBookingConfirmation }
func (AwaitingCustomerID) Kind() Kind          { return KindAwaitingCustomerID }
func (AwaitingSearchSource) Kind() Kind        { return KindAwaitingSearchSource }
func (AwaitingSearchDestination) Kind() Kind   { return KindAwaitingSearchDestination }

func (Idle) isState()                        {}
func (AwaitingPNR) isState()                 {}
func (AwaitingCancelConfirmation) isState()  {}
func (AwaitingBookingSource) isState()       {}
func (AwaitingBookingDestination) isState()  {}
func (AwaitingBookingConfirmation) isState() {}
func (AwaitingCustomerID) isState()          {}
func (AwaitingSearchSource) isState()        {}
func (AwaitingSearchDestination) isState()   {}

type stateEnvelope struct {
	Kind Kind            `json:"kind"`
	Data json.RawMessage `json:"data,omitempty"`
}

func encodeState(s State) (stateEnvelope, error) {
	if s == nil {
		s = Idle{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return stateEnvelope{}, err
	}
	return stateEnvelope{Kind: s.Kind(), Data: data}, nil
}

func decodeState(env stateEnvelope) (State, error) {
	switch env.Kind {
	case KindIdle, "":
		return Idle{}, nil
	case KindAwaitingPNR:
		return AwaitingPNR{}, nil
	case KindAwaitingBookingSource:
		return AwaitingBookingSource{}, nil
	case KindAwaitingSearchSource:
		return AwaitingSearchSource{}, nil
	case KindAwaitingCancelConfirmation:
		var s AwaitingCancelConfirmation
		err := unmarshalData(env.Data, &s)
		return s, err
	case KindAwaitingBookingDestination:
		var s AwaitingBookingDestination
		err := unmarshalData(env.Data, &s)
		return s, err
	case KindAwaitingBookingConfirmation:
		var s AwaitingBookingConfirmation
		err := unmarshalData(env.Data, &s)
		return s, err
	case KindAwaitingCustomerID:
		var s AwaitingCustomerID
		err := unmarshalData(env.Data, &s)
		return s, err
	case KindAwaitingSearchDestination:
		var s AwaitingSearchDestination
		err := unmarshalData(env.Data, &s)
		return s, err
	default:
		return nil, fmt.Errorf("session: unknown state kind %q", env.Kind)
	}
}

func unmarshalData(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("session: decode state: %w", err)
	}
	return nil
}

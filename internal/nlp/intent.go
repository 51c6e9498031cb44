// Package nlp turns a free-text message into an intent and the entities the
// assistant needs to act on it.
package nlp

type Intent string

const (
	IntentFlightInfo       Intent = "api_flight_info"
	IntentSeatAvailability Intent = "check_seat_availability"
	IntentCancelBooking    Intent = "cancel_booking"
	IntentCreateBooking    Intent = "create_booking"
	IntentSearchRoute      Intent = "search_flights_by_route"
	IntentPolicy           Intent = "rag_policy"
	IntentUnknown          Intent = "unknown"
)

// Entities is what the extractor found in one message.
type Entities struct {
	Intent       Intent   `json:"intent_hint"`
	FlightNumber string   `json:"flight_number,omitempty"`
	AirlineCode  string   `json:"airline_code,omitempty"`
	FlightDigits string   `json:"flight_digits,omitempty"`
	Locations    []string `json:"locations"`
	Dates        []string `json:"dates"`
	Keywords     []string `json:"keywords"`
}

func (e Entities) HasKeyword(keyword string) bool {
	for _, k := range e.Keywords {
		if k == keyword {
			return true
		}
	}
	return false
}

func (e Entities) HasAnyKeyword(keywords ...string) bool {
	for _, k := range keywords {
		if e.HasKeyword(k) {
			return true
		}
	}
	return false
}

// Flight returns the flight number, rebuilding it from an airline code and
// digits when the message spelled them apart ("AI 202").
func (e Entities) Flight() string {
	if e.FlightNumber != "" {
		return e.FlightNumber
	}
	if e.AirlineCode != "" && e.FlightDigits != "" {
		return e.AirlineCode + e.FlightDigits
	}
	return ""
}

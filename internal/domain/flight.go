package domain

import "time"

type FlightStatus string

const (
	FlightStatusScheduled FlightStatus = "Scheduled"
	FlightStatusOnTime    FlightStatus = "On Time"
	FlightStatusDelayed   FlightStatus = "Delayed"
	FlightStatusCancelled FlightStatus = "Cancelled"
	FlightStatusDeparted  FlightStatus = "Departed"
	FlightStatusLanded    FlightStatus = "Landed"
)

// NonBookableStatuses lists the statuses a flight can no longer be sold in.
var NonBookableStatuses = []FlightStatus{FlightStatusCancelled, FlightStatusDeparted, FlightStatusLanded}

// Bookable reports whether seats may still be sold on a flight with this status.
func (s FlightStatus) Bookable() bool {
	for _, st := range NonBookableStatuses {
		if s == st {
			return false
		}
	}
	return true
}

type Flight struct {
	ID                 int64
	AirlineCode        string
	FlightNumber       string
	Origin             string
	Destination        string
	ScheduledDeparture time.Time
	ScheduledArrival   time.Time
	Status             FlightStatus
}

func (f Flight) Bookable() bool {
	return f.Status.Bookable()
}

// LiveRecord renders a stored flight in the shape the live data gateway returns,
// so replies can be composed the same way from either source.
func (f Flight) LiveRecord() LiveFlight {
	return LiveFlight{
		FlightNumber:       f.FlightNumber,
		Airline:            AirlineName(f.AirlineCode),
		Status:             string(f.Status),
		DepartureAirport:   f.Origin,
		ArrivalAirport:     f.Destination,
		DepartureScheduled: f.ScheduledDeparture.Format(time.RFC3339),
		ArrivalScheduled:   f.ScheduledArrival.Format(time.RFC3339),
	}
}

// LiveFlight is a normalized real-time flight record.
type LiveFlight struct {
	FlightNumber       string `json:"flight_number"`
	Airline            string `json:"airline,omitempty"`
	Status             string `json:"status,omitempty"`
	DepartureAirport   string `json:"departure_airport,omitempty"`
	ArrivalAirport     string `json:"arrival_airport,omitempty"`
	DepartureScheduled string `json:"departure_scheduled,omitempty"`
	DepartureEstimated string `json:"departure_estimated,omitempty"`
	ArrivalScheduled   string `json:"arrival_scheduled,omitempty"`
	ArrivalEstimated   string `json:"arrival_estimated,omitempty"`
	DepartureGate      string `json:"departure_gate,omitempty"`
	ArrivalGate        string `json:"arrival_gate,omitempty"`
	DepartureTerminal  string `json:"departure_terminal,omitempty"`
	ArrivalTerminal    string `json:"arrival_terminal,omitempty"`
}

// DepartureTime returns the best known departure timestamp.
func (l LiveFlight) DepartureTime() string {
	if l.DepartureEstimated != "" {
		return l.DepartureEstimated
	}
	return l.DepartureScheduled
}

// ArrivalTime returns the best known arrival timestamp.
func (l LiveFlight) ArrivalTime() string {
	if l.ArrivalEstimated != "" {
		return l.ArrivalEstimated
	}
	return l.ArrivalScheduled
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// ParseTimestamp parses the ISO-8601 variants returned by flight data providers.
func ParseTimestamp(value string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ClockTime returns the HH:MM component of an ISO timestamp, or "N/A".
func ClockTime(value string) string {
	t, ok := ParseTimestamp(value)
	if !ok {
		return "N/A"
	}
	return t.Format("15:04")
}

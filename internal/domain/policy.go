package domain

import "time"

const (
	PolicyTypeBaggage      = "Baggage"
	PolicyTypePetTravel    = "Pet Travel"
	PolicyTypeRefund       = "Refund"
	PolicyTypeCheckIn      = "Check-in"
	PolicyTypeCancellation = "Cancellation"
)

type Policy struct {
	ID          int64
	Type        string
	AirlineCode string
	Text        string
	SourceURL   string
	LastUpdated time.Time
}

// PolicyLookup holds the documents matched for a (type, airline) query.
// AirlineCode is the airline the documents belong to, which differs from the
// requested one when the default airline fallback was applied.
type PolicyLookup struct {
	PolicyType  string   `json:"policy_type"`
	AirlineCode string   `json:"airline_code"`
	Documents   []string `json:"documents"`
	FellBack    bool     `json:"fell_back"`
}

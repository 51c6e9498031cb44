package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type Seat struct {
	ID       int64
	FlightID int64
	Row      int
	Column   string
	Class    string
	Price    float64
	IsBooked bool
}

func (s Seat) Label() string {
	return SeatLabel{Row: s.Row, Column: s.Column}.String()
}

// SeatCounts summarizes a flight's seat map.
type SeatCounts struct {
	Available int `json:"available"`
	Total     int `json:"total"`
}

// SeatLabel identifies a seat within a flight, e.g. 12C.
type SeatLabel struct {
	Row    int
	Column string
}

func (l SeatLabel) String() string {
	return fmt.Sprintf("%d%s", l.Row, l.Column)
}

var seatLabelRe = regexp.MustCompile(`^(\d+)([A-Z])$`)

// ParseSeatLabel parses "<row digits><column letter>". Lower-case column letters
// and surrounding whitespace are accepted; anything else is ErrInvalidSeatFormat.
func ParseSeatLabel(raw string) (SeatLabel, error) {
	m := seatLabelRe.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(raw)))
	if m == nil {
		return SeatLabel{}, fmt.Errorf("%w: %q", ErrInvalidSeatFormat, raw)
	}
	row, err := strconv.Atoi(m[1])
	if err != nil || row <= 0 {
		return SeatLabel{}, fmt.Errorf("%w: %q", ErrInvalidSeatFormat, raw)
	}
	return SeatLabel{Row: row, Column: m[2]}, nil
}

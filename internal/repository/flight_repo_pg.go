package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/Domenick1991/tripassist/internal/domain"
	"github.com/jackc/pgx/v5"
)

const flightColumns = `flight_id, airline_code, flight_number, source_airport_code, destination_airport_code, scheduled_departure, scheduled_arrival, current_status`

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	var status string
	if err := row.Scan(&f.ID, &f.AirlineCode, &f.FlightNumber, &f.Origin, &f.Destination, &f.ScheduledDeparture, &f.ScheduledArrival, &status); err != nil {
		return nil, err
	}
	f.Status = domain.FlightStatus(status)
	return &f, nil
}

func nonBookableStatuses() []string {
	out := make([]string, 0, len(domain.NonBookableStatuses))
	for _, s := range domain.NonBookableStatuses {
		out = append(out, string(s))
	}
	return out
}

func (r *PGInventoryRepository) FlightByNumber(ctx context.Context, number string) (*domain.Flight, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE UPPER(flight_number)=UPPER($1) ORDER BY scheduled_departure LIMIT 1`, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFlightNotFound
		}
		return nil, err
	}
	return f, nil
}

func (r *PGInventoryRepository) FlightByID(ctx context.Context, id int64) (*domain.Flight, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE flight_id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFlightNotFound
		}
		return nil, err
	}
	return f, nil
}

func (r *PGInventoryRepository) FlightsByRoute(ctx context.Context, origin, destination string) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights
		WHERE source_airport_code=$1 AND destination_airport_code=$2 AND NOT (current_status = ANY($3))
		ORDER BY scheduled_departure, flight_id`, origin, destination, nonBookableStatuses())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

const seatColumns = `seat_id, flight_id, row_number, column_letter, seat_class, price, is_booked`

func scanSeat(row pgx.Row) (*domain.Seat, error) {
	var s domain.Seat
	if err := row.Scan(&s.ID, &s.FlightID, &s.Row, &s.Column, &s.Class, &s.Price, &s.IsBooked); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PGInventoryRepository) FirstAvailableSeat(ctx context.Context, flightID int64) (*domain.Seat, error) {
	s, err := scanSeat(r.db.QueryRow(ctx, `SELECT `+seatColumns+` FROM seats WHERE flight_id=$1 AND is_booked = false ORDER BY row_number, column_letter LIMIT 1`, flightID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoSeatsAvailable
		}
		return nil, err
	}
	return s, nil
}

func (r *PGInventoryRepository) SeatCounts(ctx context.Context, flightID int64) (domain.SeatCounts, error) {
	var counts domain.SeatCounts
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FILTER (WHERE NOT is_booked), COUNT(*) FROM seats WHERE flight_id=$1`, flightID).
		Scan(&counts.Available, &counts.Total)
	return counts, err
}

func (r *PGInventoryRepository) Seats(ctx context.Context, flightID int64) ([]domain.Seat, error) {
	rows, err := r.db.Query(ctx, `SELECT `+seatColumns+` FROM seats WHERE flight_id=$1 ORDER BY row_number, column_letter`, flightID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]domain.Seat, 0)
	for rows.Next() {
		s, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		seats = append(seats, *s)
	}
	return seats, rows.Err()
}

func (r *PGInventoryRepository) PolicyByType(ctx context.Context, policyType, airlineCode string) (*domain.PolicyLookup, error) {
	airlineCode = strings.ToUpper(strings.TrimSpace(airlineCode))
	if airlineCode == "" {
		airlineCode = domain.DefaultAirlineCode
	}
	docs, err := r.policyTexts(ctx, policyType, airlineCode)
	if err != nil {
		return nil, err
	}
	if len(docs) > 0 || airlineCode == domain.DefaultAirlineCode {
		return policyLookup(policyType, airlineCode, airlineCode, docs), nil
	}
	docs, err = r.policyTexts(ctx, policyType, domain.DefaultAirlineCode)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return policyLookup(policyType, airlineCode, airlineCode, nil), nil
	}
	return policyLookup(policyType, airlineCode, domain.DefaultAirlineCode, docs), nil
}

func (r *PGInventoryRepository) policyTexts(ctx context.Context, policyType, airlineCode string) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT policy_text FROM policies
		WHERE UPPER(airline_code)=UPPER($1) AND LOWER(policy_type) LIKE '%' || LOWER($2) || '%'
		ORDER BY policy_id`, airlineCode, policyType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, err
		}
		docs = append(docs, text)
	}
	return docs, rows.Err()
}

func (r *PGInventoryRepository) Policies(ctx context.Context, airlineCode string) ([]domain.Policy, error) {
	rows, err := r.db.Query(ctx, `SELECT policy_id, policy_type, airline_code, policy_text, source_url, last_updated FROM policies
		WHERE $1 = '' OR UPPER(airline_code)=UPPER($1) ORDER BY airline_code, policy_id`, airlineCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	policies := make([]domain.Policy, 0)
	for rows.Next() {
		var p domain.Policy
		if err := rows.Scan(&p.ID, &p.Type, &p.AirlineCode, &p.Text, &p.SourceURL, &p.LastUpdated); err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

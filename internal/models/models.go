// Package models holds the GORM table definitions for the inventory database.
package models

import (
	"time"

	"github.com/Domenick1991/tripassist/internal/domain"
)

type Customer struct {
	CustomerID  int64     `gorm:"column:customer_id;primaryKey;autoIncrement"`
	Name        string    `gorm:"column:name;size:100;not null"`
	Email       string    `gorm:"column:email;size:100;uniqueIndex"`
	PhoneNumber string    `gorm:"column:phone_number;size:20"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (Customer) TableName() string { return "customers" }

func (m Customer) ToDomain() domain.Customer {
	return domain.Customer{
		ID:        m.CustomerID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.PhoneNumber,
		CreatedAt: m.CreatedAt,
	}
}

type Flight struct {
	FlightID               int64     `gorm:"column:flight_id;primaryKey;autoIncrement"`
	AirlineCode            string    `gorm:"column:airline_code;size:3;not null"`
	FlightNumber           string    `gorm:"column:flight_number;size:10;not null;index"`
	SourceAirportCode      string    `gorm:"column:source_airport_code;size:3;not null;index:idx_flights_route"`
	DestinationAirportCode string    `gorm:"column:destination_airport_code;size:3;not null;index:idx_flights_route"`
	ScheduledDeparture     time.Time `gorm:"column:scheduled_departure;not null"`
	ScheduledArrival       time.Time `gorm:"column:scheduled_arrival;not null"`
	CurrentStatus          string    `gorm:"column:current_status;size:20;not null"`
}

func (Flight) TableName() string { return "flights" }

func (m Flight) ToDomain() domain.Flight {
	return domain.Flight{
		ID:                 m.FlightID,
		AirlineCode:        m.AirlineCode,
		FlightNumber:       m.FlightNumber,
		Origin:             m.SourceAirportCode,
		Destination:        m.DestinationAirportCode,
		ScheduledDeparture: m.ScheduledDeparture,
		ScheduledArrival:   m.ScheduledArrival,
		Status:             domain.FlightStatus(m.CurrentStatus),
	}
}

type Seat struct {
	SeatID       int64   `gorm:"column:seat_id;primaryKey;autoIncrement"`
	FlightID     int64   `gorm:"column:flight_id;not null;uniqueIndex:idx_seats_position"`
	RowNumber    int     `gorm:"column:row_number;not null;uniqueIndex:idx_seats_position"`
	ColumnLetter string  `gorm:"column:column_letter;size:1;not null;uniqueIndex:idx_seats_position"`
	SeatClass    string  `gorm:"column:seat_class;size:20"`
	Price        float64 `gorm:"column:price;type:double precision"`
	IsBooked     bool    `gorm:"column:is_booked;not null;default:false"`
}

func (Seat) TableName() string { return "seats" }

func (m Seat) ToDomain() domain.Seat {
	return domain.Seat{
		ID:       m.SeatID,
		FlightID: m.FlightID,
		Row:      m.RowNumber,
		Column:   m.ColumnLetter,
		Class:    m.SeatClass,
		Price:    m.Price,
		IsBooked: m.IsBooked,
	}
}

type Booking struct {
	PNR           string     `gorm:"column:pnr;primaryKey;size:10"`
	CustomerID    int64      `gorm:"column:customer_id;not null;index"`
	FlightID      int64      `gorm:"column:flight_id;not null;index"`
	BookingDate   time.Time  `gorm:"column:booking_date;not null"`
	AssignedSeat  string     `gorm:"column:assigned_seat;size:5"`
	FareAmount    float64    `gorm:"column:fare_amount;type:double precision"`
	PaymentStatus string     `gorm:"column:payment_status;size:20"`
	BookingStatus string     `gorm:"column:booking_status;size:20;not null"`
	RefundAmount  *float64   `gorm:"column:refund_amount;type:double precision"`
	RefundDate    *time.Time `gorm:"column:refund_date"`
}

func (Booking) TableName() string { return "bookings" }

func (m Booking) ToDomain() domain.Booking {
	return domain.Booking{
		PNR:           m.PNR,
		CustomerID:    m.CustomerID,
		FlightID:      m.FlightID,
		AssignedSeat:  m.AssignedSeat,
		FareAmount:    m.FareAmount,
		PaymentStatus: m.PaymentStatus,
		Status:        domain.BookingStatus(m.BookingStatus),
		BookingDate:   m.BookingDate,
		RefundAmount:  m.RefundAmount,
		RefundDate:    m.RefundDate,
	}
}

type Policy struct {
	PolicyID    int64     `gorm:"column:policy_id;primaryKey;autoIncrement"`
	PolicyType  string    `gorm:"column:policy_type;size:50;not null;index:idx_policies_lookup"`
	AirlineCode string    `gorm:"column:airline_code;size:3;not null;index:idx_policies_lookup"`
	PolicyText  string    `gorm:"column:policy_text;type:text;not null"`
	SourceURL   string    `gorm:"column:source_url;size:255"`
	LastUpdated time.Time `gorm:"column:last_updated"`
}

func (Policy) TableName() string { return "policies" }

func (m Policy) ToDomain() domain.Policy {
	return domain.Policy{
		ID:          m.PolicyID,
		Type:        m.PolicyType,
		AirlineCode: m.AirlineCode,
		Text:        m.PolicyText,
		SourceURL:   m.SourceURL,
		LastUpdated: m.LastUpdated,
	}
}

// All returns every model in migration order.
func All() []any {
	return []any{&Customer{}, &Flight{}, &Seat{}, &Booking{}, &Policy{}}
}

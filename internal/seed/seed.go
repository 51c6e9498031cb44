// Package seed loads the demo inventory: customers, flights with a 5x5 seat
// map each, a handful of confirmed bookings and the airline policy texts.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/tripassist/internal/domain"
	"github.com/Domenick1991/tripassist/internal/models"
	"gorm.io/gorm"
)

const (
	seatRows    = 5
	seatColumns = "ABCDE"
	sourceMock  = "mock_data"
)

type Summary struct {
	Customers int
	Flights   int
	Seats     int
	Bookings  int
	Policies  int
}

var customers = []models.Customer{
	{Name: "Jeni Mathews", Email: "jeni@example.com", PhoneNumber: "+919876543210"},
	{Name: "Arun Kumar", Email: "arun@example.com", PhoneNumber: "+919812345678"},
	{Name: "Priya Singh", Email: "priya@example.com", PhoneNumber: "+919899887766"},
	{Name: "Rahul Verma", Email: "rahul@example.com", PhoneNumber: "+919877665544"},
	{Name: "Sneha Reddy", Email: "sneha@example.com", PhoneNumber: "+919988776655"},
}

type flightSpec struct {
	airline, number, from, to string
	dayOffset                 int
	departs                   time.Duration
	duration                  time.Duration
	status                    domain.FlightStatus
}

var flights = []flightSpec{
	{"AI", "AI202", "DEL", "BOM", 1, 9*time.Hour + 30*time.Minute, 2*time.Hour + 15*time.Minute, domain.FlightStatusOnTime},
	{"AI", "AI305", "DEL", "BLR", 2, 14 * time.Hour, 2*time.Hour + 15*time.Minute, domain.FlightStatusScheduled},
	{"AI", "AI450", "BOM", "DEL", 3, 8 * time.Hour, 2*time.Hour + 15*time.Minute, domain.FlightStatusDelayed},
	{"EK", "EK510", "DXB", "DEL", 4, 18*time.Hour + 30*time.Minute, 2*time.Hour + 15*time.Minute, domain.FlightStatusOnTime},
	{"UA", "UA123", "LHR", "EWR", 5, 7*time.Hour + 15*time.Minute, 2*time.Hour + 15*time.Minute, domain.FlightStatusScheduled},
}

// bookings reference customers and flights by their position in the lists above.
var bookings = []struct {
	pnr              string
	customer, flight int
	seat             string
	fare             float64
}{
	{"PNR12345", 0, 0, "1A", 5500},
	{"PNR67890", 1, 1, "2B", 6200},
	{"PNR54321", 2, 2, "3C", 5000},
	{"PNR98765", 3, 3, "4D", 7000},
	{"PNR11223", 4, 4, "5E", 6800},
}

var policies = []models.Policy{
	{PolicyType: domain.PolicyTypePetTravel, AirlineCode: "AI", PolicyText: "Air India: Small dogs and cats under 7kg allowed in cabin in approved carrier. Must be booked in advance. Check IATA and destination rules. Not allowed in exit rows."},
	{PolicyType: domain.PolicyTypeCancellation, AirlineCode: "AI", PolicyText: "Air India: Cancellations allowed up to 24h before departure with fee (e.g., 10%). Fees vary by fare type. Refunds processed within 7-10 business days."},
	{PolicyType: domain.PolicyTypeBaggage, AirlineCode: "AI", PolicyText: "Air India: Economy standard: 1 checked bag up to 15kg (domestic) or 23kg (international, varies by route), 1 cabin bag up to 7kg. Dimensions apply."},
	{PolicyType: domain.PolicyTypeRefund, AirlineCode: "AI", PolicyText: "Air India: Refunds for eligible cancellations processed to original payment method within 7-10 business days. Cancellation fees apply."},
	{PolicyType: domain.PolicyTypeCheckIn, AirlineCode: "AI", PolicyText: "Air India: Online check-in opens 48 hours before departure and closes 2 hours before departure. Airport check-in counters close 60 minutes prior."},

	{PolicyType: domain.PolicyTypePetTravel, AirlineCode: "DL", PolicyText: "Delta: Small dogs, cats, household birds allowed in cabin (fee applies, space limited, book early). Carrier must fit under seat (18x11x11 inches recommended). Check international rules."},
	{PolicyType: domain.PolicyTypeBaggage, AirlineCode: "DL", PolicyText: "Delta: Main Cabin (US Domestic): 1st checked bag $35, 2nd $45 (under 50lbs/23kg). Int'l varies (often 1 free). Carry-on: 1 bag + 1 personal item free."},
	{PolicyType: domain.PolicyTypeCancellation, AirlineCode: "DL", PolicyText: "Delta: Most tickets (except Basic Economy) can be cancelled for eCredit. Refundable tickets get refund. Check fare rules."},

	{PolicyType: domain.PolicyTypePetTravel, AirlineCode: "UA", PolicyText: "United: Small dogs/cats in cabin (fee applies, space limited, book early). Carrier under seat. No pets in Polaris/First int'l. Check specific flight/destination rules."},
	{PolicyType: domain.PolicyTypeBaggage, AirlineCode: "UA", PolicyText: "United: Economy (US Domestic): 1st checked bag ~$40, 2nd ~$50 (under 50lbs/23kg). Int'l varies. Carry-on: 1 bag + 1 personal item free (except Basic Economy on some routes)."},
	{PolicyType: domain.PolicyTypeCancellation, AirlineCode: "UA", PolicyText: "United: Most tickets (except Basic Economy) have no change fees, cancellation yields future flight credit. Refundable tickets get refund."},

	{PolicyType: domain.PolicyTypePetTravel, AirlineCode: "EK", PolicyText: "Emirates: No pets in cabin (except falcons on some routes). Pets travel as checked baggage (fees apply, <17hr journey) or cargo based on size/weight/route. Book well in advance."},
	{PolicyType: domain.PolicyTypeBaggage, AirlineCode: "EK", PolicyText: "Emirates: Allowance by weight or piece depending on route/fare. Economy often 20-35kg or 1-2 pieces. Check specific ticket rules. Carry-on: 1 bag (7kg)."},
	{PolicyType: domain.PolicyTypeCancellation, AirlineCode: "EK", PolicyText: "Emirates: Fees and refund eligibility depend heavily on fare type (Saver, Flex, Flex Plus). Check specific ticket conditions."},
}

// SeatPrice is the demo fare for a seat: 5000 + 100 per flight id + 50 per row
// + 10 per column position.
func SeatPrice(flightID int64, row, columnIndex int) float64 {
	return float64(5000 + flightID*100 + int64(row)*50 + int64(columnIndex)*10)
}

// Load inserts the demo data in one transaction. Flight schedules are placed on
// the days following base. Tables that already hold rows are left untouched,
// so running Load twice is a no-op.
func Load(ctx context.Context, db *gorm.DB, base time.Time) (Summary, error) {
	var sum Summary
	day := base.UTC().Truncate(24 * time.Hour)

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customerIDs, err := loadCustomers(tx, &sum)
		if err != nil {
			return err
		}
		if err := loadFlights(tx, day, customerIDs, &sum); err != nil {
			return err
		}
		return loadPolicies(tx, base.UTC(), &sum)
	})
	if err != nil {
		return Summary{}, fmt.Errorf("seed: %w", err)
	}
	return sum, nil
}

func loadCustomers(tx *gorm.DB, sum *Summary) ([]int64, error) {
	var existing []models.Customer
	if err := tx.Order("customer_id").Find(&existing).Error; err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	if len(existing) == 0 {
		rows := make([]models.Customer, len(customers))
		copy(rows, customers)
		if err := tx.Create(&rows).Error; err != nil {
			return nil, fmt.Errorf("insert customers: %w", err)
		}
		sum.Customers = len(rows)
		existing = rows
	}
	ids := make([]int64, 0, len(existing))
	for _, c := range existing {
		ids = append(ids, c.CustomerID)
	}
	return ids, nil
}

func loadFlights(tx *gorm.DB, day time.Time, customerIDs []int64, sum *Summary) error {
	var count int64
	if err := tx.Model(&models.Flight{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count flights: %w", err)
	}
	if count > 0 {
		return nil
	}

	rows := make([]models.Flight, 0, len(flights))
	for _, f := range flights {
		departure := day.AddDate(0, 0, f.dayOffset).Add(f.departs)
		rows = append(rows, models.Flight{
			AirlineCode:            f.airline,
			FlightNumber:           f.number,
			SourceAirportCode:      f.from,
			DestinationAirportCode: f.to,
			ScheduledDeparture:     departure,
			ScheduledArrival:       departure.Add(f.duration),
			CurrentStatus:          string(f.status),
		})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("insert flights: %w", err)
	}
	sum.Flights = len(rows)

	booked := make(map[string]bool)
	var bookingRows []models.Booking
	if len(customerIDs) >= len(customers) {
		for _, b := range bookings {
			flightID := rows[b.flight].FlightID
			booked[fmt.Sprintf("%d/%s", flightID, b.seat)] = true
			bookingRows = append(bookingRows, models.Booking{
				PNR:           b.pnr,
				CustomerID:    customerIDs[b.customer],
				FlightID:      flightID,
				BookingDate:   day,
				AssignedSeat:  b.seat,
				FareAmount:    b.fare,
				PaymentStatus: domain.PaymentStatusPaid,
				BookingStatus: string(domain.BookingStatusConfirmed),
			})
		}
	}

	var seats []models.Seat
	for _, f := range rows {
		for row := 1; row <= seatRows; row++ {
			for col, letter := range seatColumns {
				label := domain.SeatLabel{Row: row, Column: string(letter)}
				seats = append(seats, models.Seat{
					FlightID:     f.FlightID,
					RowNumber:    row,
					ColumnLetter: label.Column,
					SeatClass:    "Economy",
					Price:        SeatPrice(f.FlightID, row, col),
					IsBooked:     booked[fmt.Sprintf("%d/%s", f.FlightID, label)],
				})
			}
		}
	}
	if err := tx.Create(&seats).Error; err != nil {
		return fmt.Errorf("insert seats: %w", err)
	}
	sum.Seats = len(seats)

	if len(bookingRows) > 0 {
		if err := tx.Create(&bookingRows).Error; err != nil {
			return fmt.Errorf("insert bookings: %w", err)
		}
		sum.Bookings = len(bookingRows)
	}
	return nil
}

func loadPolicies(tx *gorm.DB, now time.Time, sum *Summary) error {
	var count int64
	if err := tx.Model(&models.Policy{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count policies: %w", err)
	}
	if count > 0 {
		return nil
	}
	rows := make([]models.Policy, len(policies))
	for i, p := range policies {
		p.SourceURL = sourceMock
		p.LastUpdated = now
		rows[i] = p
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("insert policies: %w", err)
	}
	sum.Policies = len(rows)
	return nil
}

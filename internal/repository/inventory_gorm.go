package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/tripassist/internal/domain"
	"github.com/Domenick1991/tripassist/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInventoryRepository is the GORM backed inventory. On SQLite the handle
// must be limited to one open connection so transactions run one at a time.
type GormInventoryRepository struct {
	db           *gorm.DB
	log          logrus.FieldLogger
	newReference func() string
	now          func() time.Time
}

func NewGormInventoryRepository(db *gorm.DB, log logrus.FieldLogger) *GormInventoryRepository {
	return &GormInventoryRepository{
		db:           db,
		log:          log,
		newReference: randomReference,
		now:          time.Now,
	}
}

func (r *GormInventoryRepository) CreateBooking(ctx context.Context, customerID, flightID int64, seatLabel string, fare float64) (*domain.Booking, error) {
	label, err := domain.ParseSeatLabel(seatLabel)
	if err != nil {
		return nil, err
	}

	var booking domain.Booking
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var flight models.Flight
		if err := tx.Where("flight_id = ?", flightID).Take(&flight).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrFlightNotFound
			}
			return fmt.Errorf("load flight %d: %w", flightID, err)
		}
		if !domain.FlightStatus(flight.CurrentStatus).Bookable() {
			return fmt.Errorf("%w: status %s", domain.ErrFlightNotBookable, flight.CurrentStatus)
		}

		var customers int64
		if err := tx.Model(&models.Customer{}).Where("customer_id = ?", customerID).Count(&customers).Error; err != nil {
			return fmt.Errorf("check customer %d: %w", customerID, err)
		}
		if customers == 0 {
			return domain.ErrCustomerNotFound
		}

		var seat models.Seat
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("flight_id = ? AND row_number = ? AND column_letter = ?", flightID, label.Row, label.Column).
			Limit(1).
			Find(&seat)
		if result.Error != nil {
			return fmt.Errorf("lock seat %s: %w", label, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: %s on flight %d", domain.ErrSeatNotFound, label, flightID)
		}
		if seat.IsBooked {
			return fmt.Errorf("%w: %s", domain.ErrSeatAlreadyBooked, label)
		}

		pnr, err := nextReference(r.newReference, func(candidate string) (bool, error) {
			var n int64
			err := tx.Model(&models.Booking{}).Where("pnr = ?", candidate).Count(&n).Error
			return n > 0, err
		})
		if err != nil {
			return err
		}

		row := models.Booking{
			PNR:           pnr,
			CustomerID:    customerID,
			FlightID:      flightID,
			BookingDate:   r.now().UTC(),
			AssignedSeat:  label.String(),
			FareAmount:    fare,
			PaymentStatus: domain.PaymentStatusPaid,
			BookingStatus: string(domain.BookingStatusConfirmed),
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("insert booking %s: %w", pnr, err)
		}

		update := tx.Model(&models.Seat{}).
			Where("seat_id = ? AND is_booked = ?", seat.SeatID, false).
			Update("is_booked", true)
		if update.Error != nil {
			return fmt.Errorf("mark seat %s booked: %w", label, update.Error)
		}
		if update.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", domain.ErrSeatAlreadyBooked, label)
		}

		booking = row.ToDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *GormInventoryRepository) CancelBooking(ctx context.Context, pnr string) (*domain.CancelOutcome, error) {
	var outcome *domain.CancelOutcome
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.Booking
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("pnr = ?", pnr).Limit(1).Find(&row)
		if result.Error != nil {
			return fmt.Errorf("load booking %s: %w", pnr, result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.ErrBookingNotFound
		}
		b := row.ToDomain()
		if b.Cancelled() {
			outcome = cancelledOutcome(&b)
			return nil
		}

		log := r.log.WithFields(logrus.Fields{"pnr": pnr, "seat": b.AssignedSeat, "flight_id": b.FlightID})
		released := false
		if label, err := domain.ParseSeatLabel(b.AssignedSeat); err != nil {
			log.WithError(err).Warn("cannot resolve booked seat, cancelling without releasing it")
		} else {
			update := tx.Model(&models.Seat{}).
				Where("flight_id = ? AND row_number = ? AND column_letter = ?", b.FlightID, label.Row, label.Column).
				Update("is_booked", false)
			if update.Error != nil {
				return fmt.Errorf("release seat %s: %w", label, update.Error)
			}
			if update.RowsAffected == 0 {
				log.Warn("booked seat not present on flight, cancelling without releasing it")
			} else {
				released = true
			}
		}

		refund := domain.RefundFor(b.FareAmount)
		refundDate := r.now().UTC()
		if err := tx.Model(&models.Booking{}).Where("pnr = ?", pnr).Updates(map[string]any{
			"booking_status": string(domain.BookingStatusCancelled),
			"refund_amount":  refund,
			"refund_date":    refundDate,
		}).Error; err != nil {
			return fmt.Errorf("cancel booking %s: %w", pnr, err)
		}

		outcome = &domain.CancelOutcome{PNR: pnr, RefundAmount: refund, RefundDate: &refundDate, SeatReleased: released}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

func (r *GormInventoryRepository) BookingByPNR(ctx context.Context, pnr string) (*domain.Booking, error) {
	var row models.Booking
	if err := r.db.WithContext(ctx).Where("pnr = ?", pnr).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	b := row.ToDomain()
	return &b, nil
}

func (r *GormInventoryRepository) BookingsByCustomer(ctx context.Context, customerID int64) ([]domain.Booking, error) {
	var rows []models.Booking
	if err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).Order("booking_date").Find(&rows).Error; err != nil {
		return nil, err
	}
	bookings := make([]domain.Booking, 0, len(rows))
	for _, row := range rows {
		bookings = append(bookings, row.ToDomain())
	}
	return bookings, nil
}

func (r *GormInventoryRepository) CustomerByID(ctx context.Context, id int64) (*domain.Customer, error) {
	var row models.Customer
	if err := r.db.WithContext(ctx).Where("customer_id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}
	c := row.ToDomain()
	return &c, nil
}

func (r *GormInventoryRepository) FlightByNumber(ctx context.Context, number string) (*domain.Flight, error) {
	var row models.Flight
	err := r.db.WithContext(ctx).
		Where("UPPER(flight_number) = ?", strings.ToUpper(strings.TrimSpace(number))).
		Order("scheduled_departure").
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrFlightNotFound
		}
		return nil, err
	}
	f := row.ToDomain()
	return &f, nil
}

func (r *GormInventoryRepository) FlightByID(ctx context.Context, id int64) (*domain.Flight, error) {
	var row models.Flight
	if err := r.db.WithContext(ctx).Where("flight_id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrFlightNotFound
		}
		return nil, err
	}
	f := row.ToDomain()
	return &f, nil
}

func (r *GormInventoryRepository) FlightsByRoute(ctx context.Context, origin, destination string) ([]domain.Flight, error) {
	var rows []models.Flight
	err := r.db.WithContext(ctx).
		Where("source_airport_code = ? AND destination_airport_code = ?", origin, destination).
		Where("current_status NOT IN ?", nonBookableStatuses()).
		Order("scheduled_departure, flight_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	flights := make([]domain.Flight, 0, len(rows))
	for _, row := range rows {
		flights = append(flights, row.ToDomain())
	}
	return flights, nil
}

func (r *GormInventoryRepository) FirstAvailableSeat(ctx context.Context, flightID int64) (*domain.Seat, error) {
	var row models.Seat
	err := r.db.WithContext(ctx).
		Where("flight_id = ? AND is_booked = ?", flightID, false).
		Order("row_number, column_letter").
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNoSeatsAvailable
		}
		return nil, err
	}
	s := row.ToDomain()
	return &s, nil
}

func (r *GormInventoryRepository) SeatCounts(ctx context.Context, flightID int64) (domain.SeatCounts, error) {
	var counts struct {
		Available int
		Total     int
	}
	err := r.db.WithContext(ctx).Model(&models.Seat{}).
		Select("COALESCE(SUM(CASE WHEN is_booked THEN 0 ELSE 1 END), 0) AS available, COUNT(*) AS total").
		Where("flight_id = ?", flightID).
		Scan(&counts).Error
	if err != nil {
		return domain.SeatCounts{}, err
	}
	return domain.SeatCounts{Available: counts.Available, Total: counts.Total}, nil
}

func (r *GormInventoryRepository) Seats(ctx context.Context, flightID int64) ([]domain.Seat, error) {
	var rows []models.Seat
	if err := r.db.WithContext(ctx).Where("flight_id = ?", flightID).Order("row_number, column_letter").Find(&rows).Error; err != nil {
		return nil, err
	}
	seats := make([]domain.Seat, 0, len(rows))
	for _, row := range rows {
		seats = append(seats, row.ToDomain())
	}
	return seats, nil
}

func (r *GormInventoryRepository) PolicyByType(ctx context.Context, policyType, airlineCode string) (*domain.PolicyLookup, error) {
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

func (r *GormInventoryRepository) policyTexts(ctx context.Context, policyType, airlineCode string) ([]string, error) {
	var docs []string
	err := r.db.WithContext(ctx).Model(&models.Policy{}).
		Where("UPPER(airline_code) = ?", strings.ToUpper(airlineCode)).
		Where("LOWER(policy_type) LIKE ?", "%"+strings.ToLower(policyType)+"%").
		Order("policy_id").
		Pluck("policy_text", &docs).Error
	return docs, err
}

func (r *GormInventoryRepository) Policies(ctx context.Context, airlineCode string) ([]domain.Policy, error) {
	q := r.db.WithContext(ctx).Order("airline_code, policy_id")
	if airlineCode != "" {
		q = q.Where("UPPER(airline_code) = ?", strings.ToUpper(airlineCode))
	}
	var rows []models.Policy
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	policies := make([]domain.Policy, 0, len(rows))
	for _, row := range rows {
		policies = append(policies, row.ToDomain())
	}
	return policies, nil
}

var _ InventoryRepository = (*GormInventoryRepository)(nil)

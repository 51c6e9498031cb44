package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/tripassist/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

type PGInventoryRepository struct {
	db           *pgxpool.Pool
	log          logrus.FieldLogger
	newReference func() string
	now          func() time.Time
}

func NewPGInventoryRepository(db *pgxpool.Pool, log logrus.FieldLogger) InventoryRepository {
	return &PGInventoryRepository{
		db:           db,
		log:          log,
		newReference: randomReference,
		now:          time.Now,
	}
}

const bookingColumns = `pnr, customer_id, flight_id, assigned_seat, fare_amount, payment_status, booking_status, booking_date, refund_amount, refund_date`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	var status string
	if err := row.Scan(&b.PNR, &b.CustomerID, &b.FlightID, &b.AssignedSeat, &b.FareAmount, &b.PaymentStatus, &status, &b.BookingDate, &b.RefundAmount, &b.RefundDate); err != nil {
		return nil, err
	}
	b.Status = domain.BookingStatus(status)
	return &b, nil
}

func (r *PGInventoryRepository) CreateBooking(ctx context.Context, customerID, flightID int64, seatLabel string, fare float64) (*domain.Booking, error) {
	label, err := domain.ParseSeatLabel(seatLabel)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var status string
	if err := tx.QueryRow(ctx, `SELECT current_status FROM flights WHERE flight_id=$1`, flightID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFlightNotFound
		}
		return nil, fmt.Errorf("load flight %d: %w", flightID, err)
	}
	if !domain.FlightStatus(status).Bookable() {
		return nil, fmt.Errorf("%w: status %s", domain.ErrFlightNotBookable, status)
	}

	var customerExists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM customers WHERE customer_id=$1)`, customerID).Scan(&customerExists); err != nil {
		return nil, fmt.Errorf("check customer %d: %w", customerID, err)
	}
	if !customerExists {
		return nil, domain.ErrCustomerNotFound
	}

	var seatID int64
	var booked bool
	err = tx.QueryRow(ctx, `SELECT seat_id, is_booked FROM seats WHERE flight_id=$1 AND row_number=$2 AND column_letter=$3 FOR UPDATE`,
		flightID, label.Row, label.Column).Scan(&seatID, &booked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s on flight %d", domain.ErrSeatNotFound, label, flightID)
		}
		return nil, fmt.Errorf("lock seat %s: %w", label, err)
	}
	if booked {
		return nil, fmt.Errorf("%w: %s", domain.ErrSeatAlreadyBooked, label)
	}

	pnr, err := nextReference(r.newReference, func(candidate string) (bool, error) {
		var exists bool
		err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM bookings WHERE pnr=$1)`, candidate).Scan(&exists)
		return exists, err
	})
	if err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		PNR:           pnr,
		CustomerID:    customerID,
		FlightID:      flightID,
		AssignedSeat:  label.String(),
		FareAmount:    fare,
		PaymentStatus: domain.PaymentStatusPaid,
		Status:        domain.BookingStatusConfirmed,
		BookingDate:   r.now().UTC(),
	}
	if _, err := tx.Exec(ctx, `INSERT INTO bookings (`+bookingColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULL, NULL)`,
		booking.PNR, booking.CustomerID, booking.FlightID, booking.AssignedSeat, booking.FareAmount,
		booking.PaymentStatus, string(booking.Status), booking.BookingDate); err != nil {
		return nil, fmt.Errorf("insert booking %s: %w", pnr, err)
	}

	cmd, err := tx.Exec(ctx, `UPDATE seats SET is_booked = true WHERE seat_id=$1 AND is_booked = false`, seatID)
	if err != nil {
		return nil, fmt.Errorf("mark seat %s booked: %w", label, err)
	}
	if cmd.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrSeatAlreadyBooked, label)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *PGInventoryRepository) CancelBooking(ctx context.Context, pnr string) (*domain.CancelOutcome, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	b, err := scanBooking(tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE pnr=$1 FOR UPDATE`, pnr))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("load booking %s: %w", pnr, err)
	}
	if b.Cancelled() {
		return cancelledOutcome(b), nil
	}

	log := r.log.WithFields(logrus.Fields{"pnr": pnr, "seat": b.AssignedSeat, "flight_id": b.FlightID})
	released := false
	if label, err := domain.ParseSeatLabel(b.AssignedSeat); err != nil {
		log.WithError(err).Warn("cannot resolve booked seat, cancelling without releasing it")
	} else {
		cmd, err := tx.Exec(ctx, `UPDATE seats SET is_booked = false WHERE flight_id=$1 AND row_number=$2 AND column_letter=$3`,
			b.FlightID, label.Row, label.Column)
		if err != nil {
			return nil, fmt.Errorf("release seat %s: %w", label, err)
		}
		if cmd.RowsAffected() == 0 {
			log.Warn("booked seat not present on flight, cancelling without releasing it")
		} else {
			released = true
		}
	}

	refund := domain.RefundFor(b.FareAmount)
	refundDate := r.now().UTC()
	if _, err := tx.Exec(ctx, `UPDATE bookings SET booking_status=$1, refund_amount=$2, refund_date=$3 WHERE pnr=$4`,
		string(domain.BookingStatusCancelled), refund, refundDate, pnr); err != nil {
		return nil, fmt.Errorf("cancel booking %s: %w", pnr, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &domain.CancelOutcome{PNR: pnr, RefundAmount: refund, RefundDate: &refundDate, SeatReleased: released}, nil
}

func (r *PGInventoryRepository) BookingByPNR(ctx context.Context, pnr string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE pnr=$1`, pnr))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *PGInventoryRepository) BookingsByCustomer(ctx context.Context, customerID int64) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE customer_id=$1 ORDER BY booking_date`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *PGInventoryRepository) CustomerByID(ctx context.Context, id int64) (*domain.Customer, error) {
	row := r.db.QueryRow(ctx, `SELECT customer_id, name, email, phone_number, created_at FROM customers WHERE customer_id=$1`, id)
	var c domain.Customer
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}
	return &c, nil
}

var _ InventoryRepository = (*PGInventoryRepository)(nil)

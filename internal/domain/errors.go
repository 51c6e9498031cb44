package domain

import "errors"

var (
	ErrInvalidSeatFormat       = errors.New("invalid seat format")
	ErrSeatNotFound            = errors.New("seat not found")
	ErrSeatAlreadyBooked       = errors.New("seat is already booked")
	ErrNoSeatsAvailable        = errors.New("no seats available")
	ErrFlightNotFound          = errors.New("flight not found")
	ErrFlightNotBookable       = errors.New("flight is not open for booking")
	ErrBookingNotFound         = errors.New("booking not found")
	ErrCustomerNotFound        = errors.New("customer not found")
	ErrReferenceSpaceExhausted = errors.New("could not allocate a unique booking reference")
)

// IsBookingFailure reports whether err is one of the expected outcomes of the
// booking transaction, as opposed to an infrastructure failure.
func IsBookingFailure(err error) bool {
	for _, target := range []error{
		ErrInvalidSeatFormat,
		ErrSeatNotFound,
		ErrSeatAlreadyBooked,
		ErrFlightNotFound,
		ErrFlightNotBookable,
		ErrCustomerNotFound,
		ErrReferenceSpaceExhausted,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

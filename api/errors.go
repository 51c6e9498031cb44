package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/tripassist/internal/domain"
	"github.com/gin-gonic/gin"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrFlightNotFound),
		errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrCustomerNotFound),
		errors.Is(err, domain.ErrSeatNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSeatAlreadyBooked),
		errors.Is(err, domain.ErrNoSeatsAvailable),
		errors.Is(err, domain.ErrFlightNotBookable):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidSeatFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError hides infrastructure failures behind a generic message.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

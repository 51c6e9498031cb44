package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/tripassist/internal/domain"
	"github.com/Domenick1991/tripassist/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type bookingResponse struct {
	PNR           string     `json:"pnr"`
	CustomerID    int64      `json:"customer_id"`
	FlightID      int64      `json:"flight_id"`
	Seat          string     `json:"seat"`
	Fare          float64    `json:"fare"`
	PaymentStatus string     `json:"payment_status"`
	Status        string     `json:"status"`
	BookingDate   string     `json:"booking_date"`
	RefundAmount  *float64   `json:"refund_amount,omitempty"`
	RefundDate    *time.Time `json:"refund_date,omitempty"`
}

type cancelResponse struct {
	PNR              string  `json:"pnr"`
	RefundAmount     float64 `json:"refund_amount"`
	AlreadyCancelled bool    `json:"already_cancelled"`
	SeatReleased     bool    `json:"seat_released"`
	Message          string  `json:"message"`
}

type customerResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func toBookingResponse(b domain.Booking) bookingResponse {
	return bookingResponse{
		PNR:           b.PNR,
		CustomerID:    b.CustomerID,
		FlightID:      b.FlightID,
		Seat:          b.AssignedSeat,
		Fare:          b.FareAmount,
		PaymentStatus: b.PaymentStatus,
		Status:        string(b.Status),
		BookingDate:   b.BookingDate.Format(time.RFC3339),
		RefundAmount:  b.RefundAmount,
		RefundDate:    b.RefundDate,
	}
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

// Register mounts the booking routes. customers is a separate group so that
// /customers/:id/bookings does not compete with /bookings/:pnr.
func (h *BookingHandler) Register(bookings, customers *gin.RouterGroup) {
	bookings.POST("", h.create)
	bookings.GET("/:pnr", h.get)
	bookings.DELETE("/:pnr", h.cancel)

	customers.GET("/:id", h.customer)
	customers.GET("/:id/bookings", h.listByCustomer)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req booking.CreateBookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(*b))
}

func (h *BookingHandler) get(c *gin.Context) {
	b, err := h.service.GetBooking(c.Request.Context(), c.Param("pnr"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(*b))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	outcome, err := h.service.CancelBooking(c.Request.Context(), c.Param("pnr"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, cancelResponse{
		PNR:              outcome.PNR,
		RefundAmount:     outcome.RefundAmount,
		AlreadyCancelled: outcome.AlreadyCancelled,
		SeatReleased:     outcome.SeatReleased,
		Message:          outcome.Message(),
	})
}

func (h *BookingHandler) customer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	customer, err := h.service.Customer(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, customerResponse{
		ID:    customer.ID,
		Name:  customer.Name,
		Email: customer.Email,
		Phone: customer.Phone,
	})
}

func (h *BookingHandler) listByCustomer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	bookings, err := h.service.ListCustomerBookings(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		resp = append(resp, toBookingResponse(b))
	}
	c.JSON(http.StatusOK, resp)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/tripassist/internal/domain"
	"github.com/Domenick1991/tripassist/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

type flightResponse struct {
	ID                 int64  `json:"id"`
	Airline            string `json:"airline"`
	AirlineCode        string `json:"airline_code"`
	FlightNumber       string `json:"flight_number"`
	Origin             string `json:"origin"`
	Destination        string `json:"destination"`
	ScheduledDeparture string `json:"scheduled_departure"`
	ScheduledArrival   string `json:"scheduled_arrival"`
	Status             string `json:"status"`
	Bookable           bool   `json:"bookable"`
}

type seatResponse struct {
	Seat     string  `json:"seat"`
	Class    string  `json:"class"`
	Price    float64 `json:"price"`
	IsBooked bool    `json:"is_booked"`
}

type seatMapResponse struct {
	FlightNumber string         `json:"flight_number"`
	Available    int            `json:"available"`
	Total        int            `json:"total"`
	Seats        []seatResponse `json:"seats"`
}

func toFlightResponse(f domain.Flight) flightResponse {
	return flightResponse{
		ID:                 f.ID,
		Airline:            domain.AirlineName(f.AirlineCode),
		AirlineCode:        f.AirlineCode,
		FlightNumber:       f.FlightNumber,
		Origin:             f.Origin,
		Destination:        f.Destination,
		ScheduledDeparture: f.ScheduledDeparture.Format(time.RFC3339),
		ScheduledArrival:   f.ScheduledArrival.Format(time.RFC3339),
		Status:             string(f.Status),
		Bookable:           f.Bookable(),
	}
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.GET("/:id/seats", h.seats)
}

// list answers either ?number= or ?origin=&destination=.
func (h *FlightHandler) list(c *gin.Context) {
	ctx := c.Request.Context()

	if number := strings.TrimSpace(c.Query("number")); number != "" {
		flight, err := h.service.FlightByNumber(ctx, number)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, []flightResponse{toFlightResponse(*flight)})
		return
	}

	origin := strings.ToUpper(strings.TrimSpace(c.Query("origin")))
	destination := strings.ToUpper(strings.TrimSpace(c.Query("destination")))
	if origin == "" || destination == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "either number or origin and destination are required"})
		return
	}

	found, err := h.service.FlightsByRoute(ctx, origin, destination)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]flightResponse, 0, len(found))
	for _, f := range found {
		resp = append(resp, toFlightResponse(f))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	flight, err := h.service.FlightByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponse(*flight))
}

func (h *FlightHandler) seats(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	flight, err := h.service.FlightByID(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	seats, err := h.service.Seats(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := seatMapResponse{FlightNumber: flight.FlightNumber, Seats: make([]seatResponse, 0, len(seats))}
	for _, s := range seats {
		resp.Total++
		if !s.IsBooked {
			resp.Available++
		}
		resp.Seats = append(resp.Seats, seatResponse{
			Seat:     s.Label(),
			Class:    s.Class,
			Price:    s.Price,
			IsBooked: s.IsBooked,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// Package gateway fetches real-time flight data from AviationStack.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Domenick1991/tripassist/internal/domain"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL = "http://api.aviationstack.com/v1"
	DefaultTimeout = 8 * time.Second
	routeLimit     = 10
)

var ErrNotConfigured = errors.New("gateway: no api key configured")

// Config holds the AviationStack connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client calls the AviationStack flights endpoint. A nil record with a nil
// error means the provider has no data; an error means the call failed.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  *http.Client
	log     logrus.FieldLogger
}

func NewClient(cfg Config, log logrus.FieldLogger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
		client:  &http.Client{Timeout: cfg.Timeout},
		log:     log,
	}
}

type flightsResponse struct {
	Data  []flightRecord `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type endpoint struct {
	Airport   string `json:"airport"`
	IATA      string `json:"iata"`
	Scheduled string `json:"scheduled"`
	Estimated string `json:"estimated"`
	Gate      string `json:"gate"`
	Terminal  string `json:"terminal"`
}

type flightRecord struct {
	FlightStatus string   `json:"flight_status"`
	Departure    endpoint `json:"departure"`
	Arrival      endpoint `json:"arrival"`
	Airline      struct {
		Name string `json:"name"`
		IATA string `json:"iata"`
	} `json:"airline"`
	Flight struct {
		IATA   string `json:"iata"`
		Number string `json:"number"`
	} `json:"flight"`
}

func (r flightRecord) normalize(fallbackNumber string) domain.LiveFlight {
	number := r.Flight.IATA
	if number == "" {
		number = fallbackNumber
	}
	return domain.LiveFlight{
		FlightNumber:       number,
		Airline:            r.Airline.Name,
		Status:             r.FlightStatus,
		DepartureAirport:   r.Departure.Airport,
		ArrivalAirport:     r.Arrival.Airport,
		DepartureScheduled: r.Departure.Scheduled,
		DepartureEstimated: r.Departure.Estimated,
		ArrivalScheduled:   r.Arrival.Scheduled,
		ArrivalEstimated:   r.Arrival.Estimated,
		DepartureGate:      r.Departure.Gate,
		ArrivalGate:        r.Arrival.Gate,
		DepartureTerminal:  r.Departure.Terminal,
		ArrivalTerminal:    r.Arrival.Terminal,
	}
}

// GetFlightInfo returns the first record for a flight number.
func (c *Client) GetFlightInfo(ctx context.Context, flightNumber string) (*domain.LiveFlight, error) {
	records, err := c.flights(ctx, url.Values{"flight_iata": {flightNumber}})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	rec := records[0].normalize(flightNumber)
	return &rec, nil
}

// SearchRoute lists flights between two airports. The slice is empty, not
// nil, when the provider answered with no flights.
func (c *Client) SearchRoute(ctx context.Context, source, destination string) ([]domain.LiveFlight, error) {
	records, err := c.flights(ctx, url.Values{
		"dep_iata": {source},
		"arr_iata": {destination},
		"limit":    {fmt.Sprint(routeLimit)},
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.LiveFlight, 0, len(records))
	for _, r := range records {
		out = append(out, r.normalize(""))
	}
	return out, nil
}

func (c *Client) flights(ctx context.Context, params url.Values) ([]flightRecord, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params.Set("access_key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/flights?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("gateway: build request: %w", err)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway: request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("gateway: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway: unexpected status %d", resp.StatusCode)
	}

	var parsed flightsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("gateway: decode response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("gateway: provider error %s: %s", parsed.Error.Code, parsed.Error.Message)
	}

	c.log.WithFields(logrus.Fields{
		"results":  len(parsed.Data),
		"duration": time.Since(start).String(),
	}).Debug("aviationstack lookup")
	return parsed.Data, nil
}

package flights

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Domenick1991/tripassist/internal/domain"
	"github.com/Domenick1991/tripassist/internal/repository"
)

type FlightUseCase interface {
	FlightByNumber(ctx context.Context, number string) (*domain.Flight, error)
	FlightByID(ctx context.Context, id int64) (*domain.Flight, error)
	FlightsByRoute(ctx context.Context, origin, destination string) ([]domain.Flight, error)
	FirstAvailableSeat(ctx context.Context, flightID int64) (*domain.Seat, error)
	SeatCounts(ctx context.Context, flightID int64) (domain.SeatCounts, error)
	Seats(ctx context.Context, flightID int64) ([]domain.Seat, error)
	Policy(ctx context.Context, policyType, airlineCode string) (*domain.PolicyLookup, error)
	Policies(ctx context.Context, airlineCode string) ([]domain.Policy, error)
}

type PolicyCache interface {
	GetPolicy(ctx context.Context, policyType, airlineCode string) (*domain.PolicyLookup, error)
	SetPolicy(ctx context.Context, policyType, airlineCode string, lookup *domain.PolicyLookup) error
}

type FlightService struct {
	flights  repository.FlightRepository
	policies repository.PolicyRepository
	cache    PolicyCache
	log      logrus.FieldLogger
}

type FlightServiceOption func(*FlightService)

func WithPolicyCache(cache PolicyCache) FlightServiceOption {
	return func(s *FlightService) {
		s.cache = cache
	}
}

func NewFlightService(flights repository.FlightRepository, policies repository.PolicyRepository, log logrus.FieldLogger, opts ...FlightServiceOption) *FlightService {
	s := &FlightService{flights: flights, policies: policies, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FlightService) FlightByNumber(ctx context.Context, number string) (*domain.Flight, error) {
	return s.flights.FlightByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
}

func (s *FlightService) FlightByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.flights.FlightByID(ctx, id)
}

func (s *FlightService) FlightsByRoute(ctx context.Context, origin, destination string) ([]domain.Flight, error) {
	return s.flights.FlightsByRoute(ctx, strings.ToUpper(origin), strings.ToUpper(destination))
}

func (s *FlightService) FirstAvailableSeat(ctx context.Context, flightID int64) (*domain.Seat, error) {
	return s.flights.FirstAvailableSeat(ctx, flightID)
}

func (s *FlightService) SeatCounts(ctx context.Context, flightID int64) (domain.SeatCounts, error) {
	return s.flights.SeatCounts(ctx, flightID)
}

func (s *FlightService) Seats(ctx context.Context, flightID int64) ([]domain.Seat, error) {
	return s.flights.Seats(ctx, flightID)
}

// Policy looks up policy documents, consulting the cache first when one is
// configured. Cache failures only cost a database round trip.
func (s *FlightService) Policy(ctx context.Context, policyType, airlineCode string) (*domain.PolicyLookup, error) {
	airlineCode = strings.ToUpper(strings.TrimSpace(airlineCode))
	if airlineCode == "" {
		airlineCode = domain.DefaultAirlineCode
	}
	log := s.log.WithFields(logrus.Fields{"policy_type": policyType, "airline_code": airlineCode})

	if s.cache != nil {
		if cached, err := s.cache.GetPolicy(ctx, policyType, airlineCode); err != nil {
			log.WithError(err).Warn("policy cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	lookup, err := s.policies.PolicyByType(ctx, policyType, airlineCode)
	if err != nil {
		return nil, err
	}
	if s.cache != nil && len(lookup.Documents) > 0 {
		if err := s.cache.SetPolicy(ctx, policyType, airlineCode, lookup); err != nil {
			log.WithError(err).Warn("policy cache write failed")
		}
	}
	return lookup, nil
}

func (s *FlightService) Policies(ctx context.Context, airlineCode string) ([]domain.Policy, error) {
	return s.policies.Policies(ctx, airlineCode)
}

var _ FlightUseCase = (*FlightService)(nil)

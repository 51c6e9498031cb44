package flights

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/tripassist/internal/domain"
)

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) FlightByNumber(ctx context.Context, number string) (*domain.Flight, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) FlightByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) FlightsByRoute(ctx context.Context, origin, destination string) ([]domain.Flight, error) {
	args := m.Called(ctx, origin, destination)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) FirstAvailableSeat(ctx context.Context, flightID int64) (*domain.Seat, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Seat), args.Error(1)
}

func (m *MockFlightRepository) SeatCounts(ctx context.Context, flightID int64) (domain.SeatCounts, error) {
	args := m.Called(ctx, flightID)
	return args.Get(0).(domain.SeatCounts), args.Error(1)
}

func (m *MockFlightRepository) Seats(ctx context.Context, flightID int64) ([]domain.Seat, error) {
	args := m.Called(ctx, flightID)
	return args.Get(0).([]domain.Seat), args.Error(1)
}

type MockPolicyRepository struct {
	mock.Mock
}

func (m *MockPolicyRepository) PolicyByType(ctx context.Context, policyType, airlineCode string) (*domain.PolicyLookup, error) {
	args := m.Called(ctx, policyType, airlineCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PolicyLookup), args.Error(1)
}

func (m *MockPolicyRepository) Policies(ctx context.Context, airlineCode string) ([]domain.Policy, error) {
	args := m.Called(ctx, airlineCode)
	return args.Get(0).([]domain.Policy), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetPolicy(ctx context.Context, policyType, airlineCode string) (*domain.PolicyLookup, error) {
	args := m.Called(ctx, policyType, airlineCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PolicyLookup), args.Error(1)
}

func (m *MockCache) SetPolicy(ctx context.Context, policyType, airlineCode string, lookup *domain.PolicyLookup) error {
	args := m.Called(ctx, policyType, airlineCode, lookup)
	return args.Error(0)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestFlightByNumber_Normalizes(t *testing.T) {
	repo := new(MockFlightRepository)
	repo.On("FlightByNumber", mock.Anything, "AI202").Return(&domain.Flight{ID: 1, FlightNumber: "AI202"}, nil)

	svc := NewFlightService(repo, new(MockPolicyRepository), quietLogger())
	f, err := svc.FlightByNumber(context.Background(), " ai202 ")
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.ID)
}

func TestFlightsByRoute(t *testing.T) {
	repo := new(MockFlightRepository)
	repo.On("FlightsByRoute", mock.Anything, "DEL", "BOM").Return([]domain.Flight{{ID: 1}}, nil)

	svc := NewFlightService(repo, new(MockPolicyRepository), quietLogger())
	got, err := svc.FlightsByRoute(context.Background(), "del", "bom")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestPolicy_CacheMissThenStore(t *testing.T) {
	policies := new(MockPolicyRepository)
	cache := new(MockCache)

	lookup := &domain.PolicyLookup{PolicyType: "Baggage", AirlineCode: "AI", Documents: []string{"15kg"}, FellBack: true}
	cache.On("GetPolicy", mock.Anything, "Baggage", "UA").Return(nil, nil)
	policies.On("PolicyByType", mock.Anything, "Baggage", "UA").Return(lookup, nil)
	cache.On("SetPolicy", mock.Anything, "Baggage", "UA", lookup).Return(nil)

	svc := NewFlightService(new(MockFlightRepository), policies, quietLogger(), WithPolicyCache(cache))
	got, err := svc.Policy(context.Background(), "Baggage", "ua")
	require.NoError(t, err)
	assert.Equal(t, lookup, got)

	cache.AssertExpectations(t)
	policies.AssertExpectations(t)
}

func TestPolicy_CacheHit(t *testing.T) {
	policies := new(MockPolicyRepository)
	cache := new(MockCache)
	cache.On("GetPolicy", mock.Anything, "Refund", "AI").Return(&domain.PolicyLookup{Documents: []string{"cached"}}, nil)

	svc := NewFlightService(new(MockFlightRepository), policies, quietLogger(), WithPolicyCache(cache))
	got, err := svc.Policy(context.Background(), "Refund", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"cached"}, got.Documents)
	policies.AssertNotCalled(t, "PolicyByType", mock.Anything, mock.Anything, mock.Anything)
}

func TestPolicy_CacheErrorAndEmptyResult(t *testing.T) {
	policies := new(MockPolicyRepository)
	cache := new(MockCache)
	cache.On("GetPolicy", mock.Anything, "Lounge", "EK").Return(nil, errors.New("redis down"))
	policies.On("PolicyByType", mock.Anything, "Lounge", "EK").Return(&domain.PolicyLookup{PolicyType: "Lounge", AirlineCode: "EK", Documents: []string{}}, nil)

	svc := NewFlightService(new(MockFlightRepository), policies, quietLogger(), WithPolicyCache(cache))
	got, err := svc.Policy(context.Background(), "Lounge", "EK")
	require.NoError(t, err)
	assert.Empty(t, got.Documents)
	cache.AssertNotCalled(t, "SetPolicy", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPolicy_StoreError(t *testing.T) {
	policies := new(MockPolicyRepository)
	policies.On("PolicyByType", mock.Anything, "Baggage", "AI").Return(nil, errors.New("db down"))

	svc := NewFlightService(new(MockFlightRepository), policies, quietLogger())
	_, err := svc.Policy(context.Background(), "Baggage", "AI")
	assert.Error(t, err)
}

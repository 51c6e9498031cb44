package gateway

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/tripassist/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGateway struct{ mock.Mock }

func (m *mockGateway) GetFlightInfo(ctx context.Context, flightNumber string) (*domain.LiveFlight, error) {
	args := m.Called(ctx, flightNumber)
	if f := args.Get(0); f != nil {
		return f.(*domain.LiveFlight), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) SearchRoute(ctx context.Context, source, destination string) ([]domain.LiveFlight, error) {
	args := m.Called(ctx, source, destination)
	if f := args.Get(0); f != nil {
		return f.([]domain.LiveFlight), args.Error(1)
	}
	return nil, args.Error(1)
}

type mapCache struct {
	mu      sync.Mutex
	flights map[string]*domain.LiveFlight
	routes  map[string][]domain.LiveFlight
	readErr error
}

func newMapCache() *mapCache {
	return &mapCache{flights: map[string]*domain.LiveFlight{}, routes: map[string][]domain.LiveFlight{}}
}

func (c *mapCache) GetLiveFlight(_ context.Context, n string) (*domain.LiveFlight, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flights[n], c.readErr
}

func (c *mapCache) SetLiveFlight(_ context.Context, n string, f *domain.LiveFlight) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flights[n] = f
	return nil
}

func (c *mapCache) GetRoute(_ context.Context, s, d string) ([]domain.LiveFlight, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.routes[s+d], c.readErr
}

func (c *mapCache) SetRoute(_ context.Context, s, d string, f []domain.LiveFlight) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routes[s+d] = f
	return nil
}

func TestCachedGateway_ServesSecondLookupFromCache(t *testing.T) {
	next := new(mockGateway)
	live := &domain.LiveFlight{FlightNumber: "AI202", Status: "active"}
	next.On("GetFlightInfo", mock.Anything, "ai202").Return(live, nil).Once()

	g := NewCachedGateway(next, newMapCache(), time.Second, quietLogger())
	for range 3 {
		got, err := g.GetFlightInfo(context.Background(), "ai202")
		require.NoError(t, err)
		assert.Equal(t, live, got)
	}
	next.AssertExpectations(t)
}

func TestCachedGateway_DoesNotCacheMissesOrErrors(t *testing.T) {
	next := new(mockGateway)
	next.On("GetFlightInfo", mock.Anything, "ZZ1").Return(nil, nil).Twice()
	next.On("SearchRoute", mock.Anything, "DEL", "BOM").Return(nil, errors.New("timeout")).Twice()

	cache := newMapCache()
	g := NewCachedGateway(next, cache, time.Second, quietLogger())
	for range 2 {
		got, err := g.GetFlightInfo(context.Background(), "ZZ1")
		assert.NoError(t, err)
		assert.Nil(t, got)

		flights, err := g.SearchRoute(context.Background(), "DEL", "BOM")
		assert.Error(t, err)
		assert.Nil(t, flights)
	}
	assert.Empty(t, cache.flights)
	next.AssertExpectations(t)
}

func TestCachedGateway_CacheReadFailureFallsThrough(t *testing.T) {
	next := new(mockGateway)
	route := []domain.LiveFlight{{FlightNumber: "AI202"}}
	next.On("SearchRoute", mock.Anything, "DEL", "BOM").Return(route, nil).Once()

	cache := newMapCache()
	cache.readErr = errors.New("redis down")
	g := NewCachedGateway(next, cache, time.Second, quietLogger())

	got, err := g.SearchRoute(context.Background(), "DEL", "BOM")
	require.NoError(t, err)
	assert.Equal(t, route, got)
	assert.Equal(t, route, cache.routes["DELBOM"])
}

// blockingGateway answers once release is closed, reporting the context
// state it saw at that moment.
type blockingGateway struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingGateway) GetFlightInfo(ctx context.Context, flightNumber string) (*domain.LiveFlight, error) {
	b.once.Do(func() { close(b.started) })
	<-b.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &domain.LiveFlight{FlightNumber: flightNumber, Status: "active"}, nil
}

func (b *blockingGateway) SearchRoute(context.Context, string, string) ([]domain.LiveFlight, error) {
	return nil, errors.New("not used")
}

func TestCachedGateway_FirstCallerLeavingDoesNotFailOthers(t *testing.T) {
	next := &blockingGateway{started: make(chan struct{}), release: make(chan struct{})}
	g := NewCachedGateway(next, newMapCache(), time.Second, quietLogger())

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := g.GetFlightInfo(firstCtx, "AI202")
		firstErr <- err
	}()
	<-next.started

	type result struct {
		flight *domain.LiveFlight
		err    error
	}
	second := make(chan result, 1)
	go func() {
		f, err := g.GetFlightInfo(context.Background(), "AI202")
		second <- result{f, err}
	}()

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	time.Sleep(20 * time.Millisecond)
	close(next.release)

	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, "active", got.flight.Status)
}

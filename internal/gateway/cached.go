package gateway

import (
	"context"
	"strings"
	"time"

	"github.com/Domenick1991/tripassist/internal/domain"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

type Gateway interface {
	GetFlightInfo(ctx context.Context, flightNumber string) (*domain.LiveFlight, error)
	SearchRoute(ctx context.Context, source, destination string) ([]domain.LiveFlight, error)
}

// Cache stores successful live lookups for a short while.
type Cache interface {
	GetLiveFlight(ctx context.Context, flightNumber string) (*domain.LiveFlight, error)
	SetLiveFlight(ctx context.Context, flightNumber string, flight *domain.LiveFlight) error
	GetRoute(ctx context.Context, source, destination string) ([]domain.LiveFlight, error)
	SetRoute(ctx context.Context, source, destination string, flights []domain.LiveFlight) error
}

// CachedGateway serves repeated lookups from the cache and collapses
// concurrent identical calls into one upstream request. Cache failures are
// logged and otherwise ignored; failed or empty upstream answers are not cached.
//
// The shared upstream call does not belong to any one caller: it runs
// detached from the callers' cancellation, bounded by timeout, and each
// caller stops waiting when its own context ends.
type CachedGateway struct {
	next    Gateway
	cache   Cache
	timeout time.Duration
	group   singleflight.Group
	log     logrus.FieldLogger
}

func NewCachedGateway(next Gateway, cache Cache, timeout time.Duration, log logrus.FieldLogger) *CachedGateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &CachedGateway{next: next, cache: cache, timeout: timeout, log: log}
}

func (g *CachedGateway) GetFlightInfo(ctx context.Context, flightNumber string) (*domain.LiveFlight, error) {
	key := strings.ToUpper(flightNumber)
	if hit, err := g.cache.GetLiveFlight(ctx, key); err != nil {
		g.log.WithError(err).WithField("flight_number", key).Warn("live flight cache read failed")
	} else if hit != nil {
		return hit, nil
	}

	v, err := g.shared(ctx, "flight:"+key, func(ctx context.Context) (any, error) {
		flight, err := g.next.GetFlightInfo(ctx, flightNumber)
		if err != nil || flight == nil {
			return flight, err
		}
		if err := g.cache.SetLiveFlight(ctx, key, flight); err != nil {
			g.log.WithError(err).WithField("flight_number", key).Warn("live flight cache write failed")
		}
		return flight, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.LiveFlight), nil
}

func (g *CachedGateway) SearchRoute(ctx context.Context, source, destination string) ([]domain.LiveFlight, error) {
	if hit, err := g.cache.GetRoute(ctx, source, destination); err != nil {
		g.log.WithError(err).WithFields(logrus.Fields{"source": source, "destination": destination}).Warn("route cache read failed")
	} else if len(hit) > 0 {
		return hit, nil
	}

	v, err := g.shared(ctx, "route:"+source+":"+destination, func(ctx context.Context) (any, error) {
		flights, err := g.next.SearchRoute(ctx, source, destination)
		if err != nil || len(flights) == 0 {
			return flights, err
		}
		if err := g.cache.SetRoute(ctx, source, destination, flights); err != nil {
			g.log.WithError(err).WithFields(logrus.Fields{"source": source, "destination": destination}).Warn("route cache write failed")
		}
		return flights, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.LiveFlight), nil
}

func (g *CachedGateway) shared(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	ch := g.group.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout)
		defer cancel()
		return fn(callCtx)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

var (
	_ Gateway = (*Client)(nil)
	_ Gateway = (*CachedGateway)(nil)
)

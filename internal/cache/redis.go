package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Domenick1991/tripassist/config"
	"github.com/Domenick1991/tripassist/internal/domain"
)

type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisCache holds live flight snapshots, route searches and policy lookups.
type RedisCache struct {
	client    kv
	flightTTL time.Duration
	policyTTL time.Duration
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

func NewRedisCache(client kv, flightTTL, policyTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, flightTTL: flightTTL, policyTTL: policyTTL}
}

// GetLiveFlight returns nil, nil on a miss.
func (c *RedisCache) GetLiveFlight(ctx context.Context, flightNumber string) (*domain.LiveFlight, error) {
	var flight domain.LiveFlight
	ok, err := c.getJSON(ctx, liveFlightKey(flightNumber), &flight)
	if err != nil || !ok {
		return nil, err
	}
	return &flight, nil
}

func (c *RedisCache) SetLiveFlight(ctx context.Context, flightNumber string, flight *domain.LiveFlight) error {
	return c.setJSON(ctx, liveFlightKey(flightNumber), flight, c.flightTTL)
}

// GetRoute returns nil, nil on a miss. A cached empty search comes back as
// an empty non-nil slice.
func (c *RedisCache) GetRoute(ctx context.Context, source, destination string) ([]domain.LiveFlight, error) {
	var flights []domain.LiveFlight
	ok, err := c.getJSON(ctx, routeKey(source, destination), &flights)
	if err != nil || !ok {
		return nil, err
	}
	if flights == nil {
		flights = []domain.LiveFlight{}
	}
	return flights, nil
}

func (c *RedisCache) SetRoute(ctx context.Context, source, destination string, flights []domain.LiveFlight) error {
	return c.setJSON(ctx, routeKey(source, destination), flights, c.flightTTL)
}

func (c *RedisCache) GetPolicy(ctx context.Context, policyType, airlineCode string) (*domain.PolicyLookup, error) {
	var lookup domain.PolicyLookup
	ok, err := c.getJSON(ctx, policyKey(policyType, airlineCode), &lookup)
	if err != nil || !ok {
		return nil, err
	}
	return &lookup, nil
}

// SetPolicy stores lookup under the requested pair, which differs from
// lookup.AirlineCode after a default airline fallback.
func (c *RedisCache) SetPolicy(ctx context.Context, policyType, airlineCode string, lookup *domain.PolicyLookup) error {
	return c.setJSON(ctx, policyKey(policyType, airlineCode), lookup, c.policyTTL)
}

func (c *RedisCache) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) setJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func liveFlightKey(flightNumber string) string {
	return "cache:flight:" + strings.ToUpper(flightNumber)
}

func routeKey(source, destination string) string {
	return fmt.Sprintf("cache:route:%s:%s", strings.ToUpper(source), strings.ToUpper(destination))
}

func policyKey(policyType, airlineCode string) string {
	return fmt.Sprintf("cache:policy:%s:%s", strings.ToUpper(airlineCode), strings.ToLower(policyType))
}

package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Domenick1991/railbooking/config"
	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client        *redis.Client
	passengersTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, passengersTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:        redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		passengersTTL: passengersTTL,
	}
}

func (c *RedisCache) GetPassengers(ctx context.Context) ([]domain.Passenger, error) {
	data, err := c.client.Get(ctx, passengersKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var passengers []domain.Passenger
	if err := json.Unmarshal(data, &passengers); err != nil {
		return nil, err
	}
	return passengers, nil
}

func (c *RedisCache) SetPassengers(ctx context.Context, passengers []domain.Passenger) error {
	payload, err := json.Marshal(passengers)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, passengersKey(), payload, c.passengersTTL).Err()
}

// InvalidatePassengers drops the cached list after a booking or
// cancellation so readers never see a stale roster for the full TTL.
func (c *RedisCache) InvalidatePassengers(ctx context.Context) error {
	return c.client.Del(ctx, passengersKey()).Err()
}

func passengersKey() string {
	return "cache:passengers"
}

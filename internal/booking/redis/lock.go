package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis serializes booking creation per venue so two overlapping
// requests cannot both pass the availability check.
type Redis struct {
	Client  *redis.Client
	LockTTL time.Duration
}

func NewRedis(client *redis.Client, lockTTL time.Duration) *Redis {
	return &Redis{Client: client, LockTTL: lockTTL}
}

func lockKey(venueID string) string {
	return "venue_lock:" + venueID
}

// LockVenue takes the per-venue creation lock via SETNX. The TTL bounds
// how long a crashed holder can block the venue.
func (r *Redis) LockVenue(venueID, token string) (bool, error) {
	return r.Client.SetNX(context.Background(), lockKey(venueID), token, r.LockTTL).Result()
}

// UnlockVenue releases the lock only if the caller still holds it. A
// lock that expired and was re-acquired by another request is left
// alone.
func (r *Redis) UnlockVenue(venueID, token string) error {
	ctx := context.Background()
	key := lockKey(venueID)

	val, err := r.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	if val == token {
		_, err := r.Client.Del(ctx, key).Result()
		return err
	}
	return nil
}

package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ThrottleStore rate-limits per-trip actions with SET NX keys. Used by
// the safety-alert path to stop repeated alerts flooding the notifier.
type ThrottleStore struct {
	client *redis.Client
}

// NewThrottleStore creates a new ThrottleStore.
func NewThrottleStore(client *redis.Client) *ThrottleStore {
	return &ThrottleStore{client: client}
}

// Allow reports whether the action may run. The first call for a given
// action/trip pair within the window wins; later calls are rejected until
// the window expires.
func (s *ThrottleStore) Allow(ctx context.Context, action, tripID string, window time.Duration) (bool, error) {
	key := fmt.Sprintf("throttle:%s:%s", action, tripID)

	ok, err := s.client.SetNX(ctx, key, "1", window).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

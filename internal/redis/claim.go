package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ClaimStore records one-shot side effects so redelivered events do not
// repeat them.
type ClaimStore struct {
	client *redis.Client
}

// NewClaimStore creates a new ClaimStore.
func NewClaimStore(client *redis.Client) *ClaimStore {
	return &ClaimStore{client: client}
}

// Claim marks (kind, id) as taken for ttl.
// Returns true if the caller obtained the claim, false if it was already held.
func (s *ClaimStore) Claim(ctx context.Context, kind, id string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("claim:%s:%s", kind, id)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// Release drops a claim so the side effect can be attempted again.
func (s *ClaimStore) Release(ctx context.Context, kind, id string) error {
	key := fmt.Sprintf("claim:%s:%s", kind, id)

	return s.client.Del(ctx, key).Err()
}

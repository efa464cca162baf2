package redis

import (
	"context"
	"fmt"
	"time"
)

const claimPrefix = "claim:"

// ClaimStore одноразовые отметки в Redis: первый Claim по ключу выигрывает до истечения ttl.
type ClaimStore struct {
	client client
}

func NewClaimStore(client client) *ClaimStore {
	return &ClaimStore{client: client}
}

func (s *ClaimStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, claimPrefix+key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis claim %s: %w", key, err)
	}
	return ok, nil
}

func (s *ClaimStore) Release(ctx context.Context, key string) error {
	err := s.client.Del(ctx, claimPrefix+key).Err()
	if err != nil {
		return fmt.Errorf("redis release %s: %w", key, err)
	}
	return nil
}

package session

import (
	"context"
	"time"

	"giftcard-backend/internal/domains/giftcard/model"
	"giftcard-backend/pkg/cache"
)

const keyPrefix = "giftcard:session:"

// Store keeps each checkout session's pending redemption in Redis,
// keyed by the shopper's session token.
type Store struct {
	cache cache.Cache
	ttl   time.Duration
}

func NewStore(c cache.Cache, ttl time.Duration) *Store {
	return &Store{cache: c, ttl: ttl}
}

func (s *Store) Save(ctx context.Context, token string, pending *model.PendingRedemption) error {
	return s.cache.Set(ctx, keyPrefix+token, pending, s.ttl)
}

// Get returns the session's pending redemption, or found = false when
// none is stored (or it expired).
func (s *Store) Get(ctx context.Context, token string) (*model.PendingRedemption, bool, error) {
	var pending model.PendingRedemption
	found, err := s.cache.Get(ctx, keyPrefix+token, &pending)
	if err != nil || !found {
		return nil, false, err
	}
	return &pending, true, nil
}

func (s *Store) Delete(ctx context.Context, token string) error {
	return s.cache.Delete(ctx, keyPrefix+token)
}

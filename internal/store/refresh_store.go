package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrRefreshInvalid = errors.New("refresh invalid")

// RefreshStore keeps issued refresh-token JTIs so each can be used exactly once.
type RefreshStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRefreshStore(rdb redis.Cmdable, ttl time.Duration) *RefreshStore {
	return &RefreshStore{rdb: rdb, ttl: ttl}
}

func (s *RefreshStore) key(userID int64, jti string) string {
	return "refresh:" + strconv.FormatInt(userID, 10) + ":" + jti
}

func (s *RefreshStore) Put(ctx context.Context, userID int64, jti string) error {
	return s.rdb.Set(ctx, s.key(userID, jti), "1", s.ttl).Err()
}

// Consume deletes the JTI; a second call for the same token fails with ErrRefreshInvalid.
func (s *RefreshStore) Consume(ctx context.Context, userID int64, jti string) error {
	n, err := s.rdb.Del(ctx, s.key(userID, jti)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRefreshInvalid
	}
	return nil
}

package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	pkgredis "github.com/ummachristians-netizen/umma-christians/internal/pkg/redis"
)

// RedisStore keeps sessions as JSON values with a TTL so revocation is a DEL.
type RedisStore struct {
	rc *pkgredis.Client
}

func NewRedisStore(rc *pkgredis.Client) *RedisStore {
	return &RedisStore{rc: rc}
}

func (r *RedisStore) sessionKey(id string) string { return r.rc.Key("session", id) }
func (r *RedisStore) tokenKey(token string) string { return r.rc.Key("token", token) }

func (r *RedisStore) Create(ctx context.Context, s *Session) error {
	if s == nil || s.ID == "" {
		return errors.New("session id is required")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session already expired")
	}
	return r.rc.Set(ctx, r.sessionKey(s.ID), data, ttl)
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := r.rc.Get(ctx, r.sessionKey(id))
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *RedisStore) Revoke(ctx context.Context, id string) error {
	return r.rc.Del(ctx, r.sessionKey(id))
}

func (r *RedisStore) PutToken(ctx context.Context, token, value string, ttl time.Duration) error {
	return r.rc.Set(ctx, r.tokenKey(token), value, ttl)
}

func (r *RedisStore) TakeToken(ctx context.Context, token string) (string, error) {
	val, err := r.rc.Raw().GetDel(ctx, r.tokenKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

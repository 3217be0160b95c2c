package state

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nlysenko/datahub-gateway/apperr"
	"github.com/nlysenko/datahub-gateway/crypt"
)

type record struct {
	Expires  int64  `json:"expires"`
	Redirect string `json:"redirect"`
}

// RedisStore keeps pending tokens in Redis so initiate and callback may land
// on different gateway instances. Validate uses GETDEL, which makes the
// lookup-and-consume atomic per token.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *RedisStore) Issue(ctx context.Context, redirect string) (string, error) {
	id, err := crypt.GenerateState(16)
	if err != nil {
		return "", err
	}

	rec, err := json.Marshal(record{
		Expires:  s.now().Add(s.ttl).Unix(),
		Redirect: redirect,
	})
	if err != nil {
		return "", err
	}

	// The Redis expiry runs past the logical one so a stale token is still
	// classified as expired rather than unknown until Redis reaps it.
	if err := s.client.Set(ctx, keyPrefix+id, rec, 2*s.ttl).Err(); err != nil {
		return "", err
	}

	return encode(id, redirect), nil
}

func (s *RedisStore) Validate(ctx context.Context, rawState string) (string, error) {
	id, redirect := decode(rawState)

	raw, err := s.client.GetDel(ctx, keyPrefix+id).Result()
	if err == redis.Nil {
		return "", apperr.ErrInvalidToken
	}
	if err != nil {
		return "", err
	}

	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return "", apperr.ErrInvalidToken
	}

	if s.now().Unix() > rec.Expires {
		return "", apperr.ErrExpiredToken
	}

	// The redirect travels in the state value itself; a state stripped down
	// to the bare id consumed a real token but leaves nowhere to send the
	// browser afterwards.
	if redirect == "" {
		return "", apperr.ErrMissingRedirect
	}

	return redirect, nil
}

func (s *RedisStore) Shutdown(ctx context.Context) error {
	return s.client.Close()
}

package state

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/nlysenko/datahub-gateway/apperr"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewRedisStore(rdb, 30*time.Minute), s
}

func TestStateRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	// The redirect target may itself contain dots, slashes and a fragment.
	redirect := "http://localhost:3000/#app/page?x=1.2"

	token, err := store.Issue(ctx, redirect)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(token, "."+redirect))

	got, err := store.Validate(ctx, token)
	require.NoError(t, err)
	require.Equal(t, redirect, got)
}

func TestStateSingleUse(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	token, err := store.Issue(ctx, "http://localhost:3000/")
	require.NoError(t, err)

	_, err = store.Validate(ctx, token)
	require.NoError(t, err)

	_, err = store.Validate(ctx, token)
	require.ErrorIs(t, err, apperr.ErrInvalidToken)
}

func TestStateForged(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Validate(context.Background(), "something_wrong.http://localhost:3000/")
	require.ErrorIs(t, err, apperr.ErrInvalidToken)
}

func TestStateTruncatedToBareID(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	token, err := store.Issue(ctx, "http://localhost:3000/")
	require.NoError(t, err)

	// A state stripped down to the id consumes the token but has no
	// redirect to finish with.
	id, _, _ := strings.Cut(token, ".")
	_, err = store.Validate(ctx, id)
	require.ErrorIs(t, err, apperr.ErrMissingRedirect)

	_, err = store.Validate(ctx, token)
	require.ErrorIs(t, err, apperr.ErrInvalidToken)
}

func TestStateExpired(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	token, err := store.Issue(ctx, "http://localhost:3000/")
	require.NoError(t, err)

	store.now = func() time.Time { return time.Now().Add(31 * time.Minute) }

	_, err = store.Validate(ctx, token)
	require.ErrorIs(t, err, apperr.ErrExpiredToken)
}

func TestStateReapedByRedis(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	token, err := store.Issue(ctx, "http://localhost:3000/")
	require.NoError(t, err)

	mr.FastForward(61 * time.Minute)

	_, err = store.Validate(ctx, token)
	require.ErrorIs(t, err, apperr.ErrInvalidToken)
}

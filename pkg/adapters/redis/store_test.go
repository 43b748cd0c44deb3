package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/inicheck/pkg/adapters/redis"
	"github.com/aretw0/inicheck/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	ports.RunConfigStoreContract(t, "/etc/app", func(t *testing.T, seed []ports.Section) ports.ConfigStore {
		_, client := newClient(t)
		store := redis.NewFromClient(client, "/etc/app")
		require.NoError(t, store.Seed(context.Background(), seed...))
		return store
	})
}

func TestRedisLocker_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunLockerContract(t, redis.NewLocker(client, "inicheck:"))
}

func TestRedisStore_KeyLayout(t *testing.T) {
	mr, client := newClient(t)
	ctx := context.Background()

	store := redis.NewFromClient(client, "", redis.WithPrefix("app:"))
	require.NoError(t, store.Seed(ctx, ports.Section{Name: "basic", Items: []ports.Item{
		{Name: "num_users", Value: "2"},
	}}))

	assert.True(t, mr.Exists("app:index"))
	assert.True(t, mr.Exists("app:items:basic"))
	assert.Equal(t, `"2"`, mr.HGet("app:section:basic", "num_users"))

	other := redis.NewFromClient(client, "")
	sections, err := other.Sections(ctx)
	require.NoError(t, err)
	assert.Empty(t, sections, "prefixes isolate configurations")
}

func TestRedisStore_SeedAppends(t *testing.T) {
	_, client := newClient(t)
	ctx := context.Background()
	store := redis.NewFromClient(client, "")

	require.NoError(t, store.Seed(ctx,
		ports.Section{Name: "b", Items: []ports.Item{{Name: "x", Value: 1}}},
	))
	require.NoError(t, store.Seed(ctx,
		ports.Section{Name: "a", Items: []ports.Item{{Name: "y", Value: 2}}},
		ports.Section{Name: "b", Items: []ports.Item{{Name: "w", Value: 3}, {Name: "x", Value: 4}}},
	))

	sections, err := store.Sections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, sections)

	items, err := store.Items(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "w"}, items, "existing items keep their position")

	v, _, err := store.Get(ctx, "b", "x")
	require.NoError(t, err)
	assert.Equal(t, 4, v)
}

func TestRedisStore_Numbers(t *testing.T) {
	_, client := newClient(t)
	ctx := context.Background()
	store := redis.NewFromClient(client, "")

	require.NoError(t, store.Seed(ctx, ports.Section{Name: "n", Items: []ports.Item{
		{Name: "int", Value: 7},
		{Name: "whole_float", Value: 2.0},
		{Name: "float", Value: 2.5},
		{Name: "big", Value: 1e21},
		{Name: "list", Value: []any{1, 1.5}},
	}}))

	tests := []struct {
		item string
		want any
	}{
		{"int", 7},
		// encoding/json writes 2.0 as "2".
		{"whole_float", 2},
		{"float", 2.5},
		{"big", 1e21},
		{"list", []any{1, 1.5}},
	}
	for _, tt := range tests {
		t.Run(tt.item, func(t *testing.T) {
			v, ok, err := store.Get(ctx, "n", tt.item)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)
	ctx := context.Background()

	store := redis.NewFromClient(client, "", redis.WithTTL(time.Second))
	require.NoError(t, store.Seed(ctx, ports.ContractSeed()...))

	_, ok, err := store.Get(ctx, "basic", "num_users")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Second)

	_, ok, err = store.Get(ctx, "basic", "num_users")
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = store.Items(ctx, "basic")
	assert.ErrorIs(t, err, ports.ErrSectionNotFound)
}

func TestRedisLocker_Expiration(t *testing.T) {
	mr, client := newClient(t)
	ctx := context.Background()
	locker := redis.NewLocker(client, "inicheck:")

	stale, err := locker.Lock(ctx, "cfg", time.Second)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	unlock, err := locker.Lock(waitCtx, "cfg", time.Second)
	require.NoError(t, err, "an expired lock is free again")

	// The stale holder cannot release a lock it no longer owns.
	require.NoError(t, stale(ctx))
	assert.True(t, mr.Exists("inicheck:lock:cfg"))

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("inicheck:lock:cfg"))
}

func TestRedisStore_Reset(t *testing.T) {
	mr, client := newClient(t)
	ctx := context.Background()

	store := redis.NewFromClient(client, "")
	require.NoError(t, store.Seed(ctx, ports.ContractSeed()...))

	other := redis.NewFromClient(client, "", redis.WithPrefix("other:"))
	require.NoError(t, other.Seed(ctx, ports.ContractSeed()...))

	require.NoError(t, store.Reset(ctx))

	sections, err := store.Sections(ctx)
	require.NoError(t, err)
	assert.Empty(t, sections)
	assert.False(t, mr.Exists("inicheck:config:section:basic"))
	assert.True(t, mr.Exists("other:section:basic"), "other prefixes are untouched")
}

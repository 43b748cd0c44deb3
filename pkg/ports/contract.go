package ports

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ContractSeed is the configuration every ConfigStore contract run starts from.
func ContractSeed() []Section {
	return []Section{
		{Name: "basic", Items: []Item{
			{Name: "num_users", Value: "2"},
			{Name: "fraction", Value: 0.5},
			{Name: "debug", Value: true},
			{Name: "count", Value: 3},
			{Name: "tags", Value: []any{"a", "b"}},
		}},
		{Name: "time", Items: []Item{
			{Name: "start_date", Value: "2020-01-01"},
			{Name: "end_date", Value: ""},
		}},
	}
}

// RunConfigStoreContract verifies that a ConfigStore implementation adheres
// to the interface contract. newStore must return a store seeded with
// ContractSeed and rooted at dir.
func RunConfigStoreContract(t *testing.T, dir string, newStore func(t *testing.T, seed []Section) ConfigStore) {
	ctx := context.Background()

	t.Run("Get", func(t *testing.T) {
		store := newStore(t, ContractSeed())

		v, ok, err := store.Get(ctx, "basic", "num_users")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "2", v)

		v, _, _ = store.Get(ctx, "basic", "fraction")
		assert.Equal(t, 0.5, v)

		v, _, _ = store.Get(ctx, "basic", "debug")
		assert.Equal(t, true, v)

		v, _, _ = store.Get(ctx, "basic", "count")
		assert.EqualValues(t, 3, v)

		v, _, _ = store.Get(ctx, "basic", "tags")
		assert.Equal(t, []any{"a", "b"}, v)

		v, ok, err = store.Get(ctx, "time", "end_date")
		require.NoError(t, err)
		assert.True(t, ok, "empty values are still present")
		assert.Equal(t, "", v)
	})

	t.Run("Get Missing", func(t *testing.T) {
		store := newStore(t, ContractSeed())

		v, ok, err := store.Get(ctx, "basic", "missing")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, v)

		_, ok, err = store.Get(ctx, "missing", "num_users")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Declaration Order", func(t *testing.T) {
		store := newStore(t, ContractSeed())

		sections, err := store.Sections(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"basic", "time"}, sections)

		items, err := store.Items(ctx, "basic")
		require.NoError(t, err)
		assert.Equal(t, []string{"num_users", "fraction", "debug", "count", "tags"}, items)

		_, err = store.Items(ctx, "missing")
		assert.ErrorIs(t, err, ErrSectionNotFound)
	})

	t.Run("Set", func(t *testing.T) {
		store := newStore(t, ContractSeed())

		require.NoError(t, store.Set(ctx, "basic", "num_users", 2))
		v, _, _ := store.Get(ctx, "basic", "num_users")
		assert.EqualValues(t, 2, v)

		require.NoError(t, store.Set(ctx, "time", "start_date", []any{"2020-01-01"}))
		v, _, _ = store.Get(ctx, "time", "start_date")
		assert.Equal(t, []any{"2020-01-01"}, v)

		require.NoError(t, store.Set(ctx, "time", "end_date", nil))
		v, ok, _ := store.Get(ctx, "time", "end_date")
		assert.True(t, ok, "nil values keep the item")
		assert.Nil(t, v)

		items, err := store.Items(ctx, "time")
		require.NoError(t, err)
		assert.Equal(t, []string{"start_date", "end_date"}, items, "Set must not reorder items")
	})

	t.Run("Set Never Invents Keys", func(t *testing.T) {
		store := newStore(t, ContractSeed())

		err := store.Set(ctx, "basic", "invented", "x")
		assert.ErrorIs(t, err, ErrItemNotFound)

		err = store.Set(ctx, "invented", "num_users", "x")
		assert.ErrorIs(t, err, ErrItemNotFound)

		_, ok, _ := store.Get(ctx, "basic", "invented")
		assert.False(t, ok)
		sections, _ := store.Sections(ctx)
		assert.Equal(t, []string{"basic", "time"}, sections)
	})

	t.Run("Sequences Are Copied", func(t *testing.T) {
		store := newStore(t, ContractSeed())

		v, _, _ := store.Get(ctx, "basic", "tags")
		seq := v.([]any)
		seq[0] = "mutated"

		again, _, _ := store.Get(ctx, "basic", "tags")
		assert.Equal(t, []any{"a", "b"}, again)
	})

	t.Run("Dir", func(t *testing.T) {
		store := newStore(t, ContractSeed())
		assert.Equal(t, dir, store.Dir())
	})

	t.Run("Snapshot", func(t *testing.T) {
		store := newStore(t, ContractSeed())

		snap, err := Snapshot(ctx, store)
		require.NoError(t, err)
		require.Len(t, snap, 2)
		assert.Equal(t, "basic", snap[0].Name)
		v, ok := snap[0].Get("tags")
		assert.True(t, ok)
		assert.Equal(t, []any{"a", "b"}, v)
	})
}

// RunLockerContract verifies that a Locker implementation serializes holders
// of the same key and leaves other keys independent.
func RunLockerContract(t *testing.T, locker Locker) {
	ctx := context.Background()
	key := fmt.Sprintf("contract-%d", time.Now().UnixNano())

	t.Run("Lock and Unlock", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err)
		require.NotNil(t, unlock)
		require.NoError(t, unlock(ctx))

		// Reacquire after release.
		unlock, err = locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err)
		require.NoError(t, unlock(ctx))
	})

	t.Run("Contention", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err)

		waitCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(waitCtx, key, 5*time.Second)
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		require.NoError(t, unlock(ctx))
	})

	t.Run("Independent Keys", func(t *testing.T) {
		unlockA, err := locker.Lock(ctx, key+"-a", 5*time.Second)
		require.NoError(t, err)
		defer func() { _ = unlockA(ctx) }()

		waitCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		unlockB, err := locker.Lock(waitCtx, key+"-b", 5*time.Second)
		require.NoError(t, err)
		require.NoError(t, unlockB(ctx))
	})

	t.Run("Mutual Exclusion", func(t *testing.T) {
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			holders int
			maxSeen int
		)
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock, err := locker.Lock(ctx, key+"-mutex", 5*time.Second)
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				holders++
				if holders > maxSeen {
					maxSeen = holders
				}
				mu.Unlock()

				time.Sleep(10 * time.Millisecond)

				mu.Lock()
				holders--
				mu.Unlock()
				assert.NoError(t, unlock(ctx))
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, maxSeen)
	})
}

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/inicheck"
	"github.com/aretw0/inicheck/pkg/adapters/file"
	"github.com/aretw0/inicheck/pkg/adapters/redis"
	"github.com/aretw0/inicheck/pkg/observability"
	"github.com/aretw0/inicheck/pkg/ports"
	"github.com/aretw0/inicheck/pkg/schema"
	backend "github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix = "inicheck:config:"
	passLockKey        = "pass"
	stageLockTTL       = 30 * time.Second
)

// workspace is a schema and the store holding the configuration to check.
type workspace struct {
	master *schema.Master
	store  ports.ConfigStore
	sess   *inicheck.Session
	close  func() error
}

// openWorkspace loads the schema and the configuration file. With a Redis
// address the configuration is staged in Redis, replacing what a previous
// run left under the prefix.
func openWorkspace(ctx context.Context, opts Options, logger *slog.Logger, extra ...inicheck.Option) (*workspace, error) {
	master, err := schema.Load(opts.SchemaPath)
	if err != nil {
		return nil, err
	}
	local, err := file.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	ws := &workspace{
		master: master,
		store:  local,
		close:  func() error { return nil },
	}
	sessOpts := []inicheck.Option{
		inicheck.WithLogger(logger),
		inicheck.WithHooks(observability.LogHooks(logger)),
	}

	if opts.RedisAddr != "" {
		client := backend.NewClient(&backend.Options{Addr: opts.RedisAddr})
		prefix := defaultString(opts.RedisPrefix, defaultRedisPrefix)
		locker := redis.NewLocker(client, prefix)
		store := redis.NewFromClient(client, local.Dir(), redis.WithPrefix(prefix))

		if err := stage(ctx, local, store, locker); err != nil {
			_ = client.Close()
			return nil, err
		}
		logger.Debug("configuration staged in redis", "address", opts.RedisAddr, "prefix", prefix)

		ws.store = store
		ws.close = client.Close
		sessOpts = append(sessOpts, inicheck.WithLocker(locker, passLockKey))
	}

	sess, err := inicheck.New(master, ws.store, append(sessOpts, extra...)...)
	if err != nil {
		_ = ws.close()
		return nil, err
	}
	ws.sess = sess
	return ws, nil
}

func stage(ctx context.Context, local ports.ConfigStore, store *redis.Store, locker ports.Locker) error {
	sections, err := ports.Snapshot(ctx, local)
	if err != nil {
		return err
	}

	unlock, err := locker.Lock(ctx, passLockKey, stageLockTTL)
	if err != nil {
		return fmt.Errorf("failed to lock redis configuration: %w", err)
	}
	defer func() { _ = unlock(context.WithoutCancel(ctx)) }()

	if err := store.Reset(ctx); err != nil {
		return err
	}
	return store.Seed(ctx, sections...)
}

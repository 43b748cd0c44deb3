package cli

import (
	"context"
	"errors"

	"github.com/aretw0/inicheck/internal/watch"
)

// RunWatch runs a check, then reruns it whenever the configuration or the
// schema file changes, until ctx is done.
func RunWatch(ctx context.Context, opts Options) error {
	logger, err := NewLogger(opts)
	if err != nil {
		return err
	}

	check := func(ctx context.Context) error {
		err := RunCheck(ctx, opts)
		if errors.Is(err, ErrInvalid) {
			return nil
		}
		return err
	}

	if err := check(ctx); err != nil {
		logger.Error("check failed", "err", err)
	}

	w, err := watch.New([]string{opts.ConfigPath, opts.SchemaPath}, watch.WithLogger(logger))
	if err != nil {
		return err
	}
	logger.Info("watching for changes", "config", opts.ConfigPath, "schema", opts.SchemaPath)
	return w.Run(ctx, check)
}

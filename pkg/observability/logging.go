package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/inicheck/pkg/checkers"
)

// LogHooks returns checker hooks writing one record per check: Debug for
// valid items, Warn for failures.
func LogHooks(logger *slog.Logger) checkers.Hooks {
	return checkers.Hooks{
		OnCheck: func(ctx context.Context, e *checkers.CheckEvent) {
			res := e.Result
			attrs := []any{
				"section", res.Section,
				"item", res.Item,
				"type", res.Type.Name(),
				"duration", e.Duration,
			}
			if res.Valid() {
				logger.DebugContext(ctx, "item_checked", attrs...)
				return
			}
			logger.WarnContext(ctx, "item_invalid", append(attrs, "err", res.Err())...)
		},
	}
}

package checkers

import (
	"context"
	"time"
)

// CheckEvent describes one completed check.
type CheckEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Result    *Result       `json:"result"`
	Duration  time.Duration `json:"duration"`
}

// Hooks are callbacks for checker observability.
type Hooks struct {
	OnCheck func(context.Context, *CheckEvent)
}

// Merge returns hooks that call h first and then other.
func (h Hooks) Merge(other Hooks) Hooks {
	switch {
	case h.OnCheck == nil:
		return other
	case other.OnCheck == nil:
		return h
	}
	first, second := h.OnCheck, other.OnCheck
	return Hooks{OnCheck: func(ctx context.Context, e *CheckEvent) {
		first(ctx, e)
		second(ctx, e)
	}}
}

func (h Hooks) emit(ctx context.Context, res *Result, start time.Time) {
	if h.OnCheck == nil {
		return
	}
	h.OnCheck(ctx, &CheckEvent{
		Timestamp: time.Now(),
		Result:    res,
		Duration:  time.Since(start),
	})
}

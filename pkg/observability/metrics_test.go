package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/inicheck/pkg/checkers"
	"github.com/aretw0/inicheck/pkg/observability"
	"github.com/aretw0/inicheck/pkg/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(typ schema.Type, issues ...error) *checkers.CheckEvent {
	return &checkers.CheckEvent{
		Timestamp: time.Now(),
		Duration:  2 * time.Millisecond,
		Result: &checkers.Result{
			Section: "basic",
			Item:    "num_users",
			Type:    typ,
			Issues:  issues,
		},
	}
}

func TestMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	hooks := m.Hooks()
	ctx := context.Background()
	hooks.OnCheck(ctx, event(schema.TypeInt, nil))
	hooks.OnCheck(ctx, event(schema.TypeInt, nil, &checkers.Issue{Kind: checkers.KindBounds, Reason: "out of range"}))
	hooks.OnCheck(ctx, event(schema.TypeURL, &checkers.Issue{Kind: checkers.KindParse, Reason: "bad"}))

	checks, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, checks, 3)

	assert.Equal(t, 2, testutil.CollectAndCount(reg, "inicheck_check_duration_seconds"))
	assert.Equal(t, 3, testutil.CollectAndCount(reg, "inicheck_checks_total"))
	assert.Equal(t, 2, testutil.CollectAndCount(reg, "inicheck_issues_total"))
}

func TestMetrics_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	m.Observe(event(schema.TypeBool, nil))

	w := httptest.NewRecorder()
	observability.Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `inicheck_checks_total{outcome="valid",type="bool"} 1`)
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	hooks := observability.LogHooks(logger)
	ctx := context.Background()

	hooks.OnCheck(ctx, event(schema.TypeInt, nil))
	assert.Empty(t, buf.String(), "valid items log at debug")

	hooks.OnCheck(ctx, event(schema.TypeInt, &checkers.Issue{
		Section: "basic", Item: "num_users", Kind: checkers.KindParse, Reason: "not an integer",
	}))
	assert.Contains(t, buf.String(), "item_invalid")
	assert.Contains(t, buf.String(), "not an integer")
}

func TestHooksMerge(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	hooks := m.Hooks().Merge(observability.LogHooks(logger))

	hooks.OnCheck(context.Background(), event(schema.TypeString, &checkers.Issue{Kind: checkers.KindOption, Reason: "not a valid option"}))

	assert.Equal(t, 1, testutil.CollectAndCount(reg, "inicheck_issues_total"))
	assert.Contains(t, buf.String(), "item_invalid")
}

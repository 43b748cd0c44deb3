/*
Package observability turns checker events into metrics and logs.

Both Metrics.Hooks and LogHooks return checkers.Hooks, which combine with
Hooks.Merge:

	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return err
	}
	hooks := metrics.Hooks().Merge(observability.LogHooks(logger))
	sess, err := inicheck.New(master, store, inicheck.WithHooks(hooks))

Handler serves the registry in the Prometheus text format.
*/
package observability

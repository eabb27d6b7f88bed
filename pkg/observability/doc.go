/*
Package observability turns generation lifecycle events into Prometheus metrics and
structured log records.

Both producers return domain.LifecycleHooks, which are merged and handed to the engine:

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	hooks := metrics.Hooks().Merge(observability.LoggingHooks(logger))
	eng, _ := mbt.New(graph, mbt.WithLifecycleHooks(hooks))

Hooks run synchronously on the generating goroutine.
*/
package observability

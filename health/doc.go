// Package health provides health checking primitives for the step cache.
//
// A Checker is any component that can report its health status. The Status
// type represents the health state: Healthy, Degraded, or Unhealthy.
//
// # Checking the cache store
//
// StoreChecker probes the on-disk cache directory: it verifies the directory
// is writable, counts committed entries, and reports Degraded when orphaned
// temp metadata files from interrupted writes are found.
//
//	check := health.NewStoreChecker(health.StoreCheckerConfig{
//	    Fs:  afero.NewOsFs(),
//	    Dir: "/var/cache/steps",
//	})
//	result := check.Check(ctx)
//
// # Aggregating checks
//
// Use Aggregator to combine multiple health checks into a composite status:
//
//	agg := health.NewAggregator()
//	agg.Register("store", storeChecker)
//	agg.Register("memory", memChecker)
//
//	results := agg.CheckAll(ctx)
//	overall := agg.OverallStatus(results)
package health

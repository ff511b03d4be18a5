// Package cache memoizes the two most expensive pipeline stages — Axis
// Discovery and the Snap Engine — keyed by a hash of their inputs and
// tunables, so re-running the same building with the same config.Config
// skips straight to the Object Transform Engine.
//
// [Cache] is the storage contract; [FileCache] backs single-CLI-invocation
// runs, [NullCache] disables caching entirely, and [RedisCache] lets a
// fleet of batch workers share one cache across processes. [ScopedCache]
// wraps any Cache with a key prefix for run-scoped isolation. [Keyer]
// (implemented by [DefaultKeyer]) derives collision-resistant keys from a
// vertex-set or axis-set hash plus the config values that affect the
// output.
package cache

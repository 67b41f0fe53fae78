// Package cache provides the cache partitions and the cache-aside
// gateway used by the configuration router.
//
// Two partitions exist at any time, Org and Session; each is backed by
// an in-memory LRU cache, a Redis instance, or nothing (disabled). The
// Gateway implements the cache-aside protocol on top of the partitions:
// consult the handler's partition, compute on miss, populate, and
// invalidate a whole partition on write. Cache keys are derived from
// the handler identity and the name-sorted parameter pairs so that
// semantically identical lookups always share a key.
package cache

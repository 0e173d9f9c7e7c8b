// Package cache provides block caches for raw index bytes.
//
// # Block Cache (RAM)
//
// LRUBlockCache keeps recently read blocks in memory. ShardedLRUBlockCache
// spreads entries over 64 LRU shards so that parallel block fetches do not
// contend on one mutex.
//
// # Disk Cache (L2)
//
// For remote GDAC hosts, DiskBlockCache keeps blocks under a cache directory:
//   - Async writes to avoid blocking the loader
//   - LRU eviction with configurable size limits
//   - Rebuilds its index from disk on startup, so a later process reuses it
//
// TieredBlockCache stacks a RAM cache in front of a disk cache.
package cache

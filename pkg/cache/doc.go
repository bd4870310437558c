// Package cache provides the key/value stores behind pipeline caching.
//
// Backends implement [Cache]:
//
//   - [FileCache]: JSON files under ~/.cache/dendro (CLI default)
//   - [MemoryCache]: in-process, backed by go-cache (server default)
//   - [RedisCache]: shared Redis instance
//   - [MongoCache]: MongoDB collection with a TTL index
//   - [NullCache]: stores nothing
//
// [Open] selects one by name. A [Keyer] derives stage keys from content
// hashes, so results are reused whenever the same matrix is clustered with
// the same options.
package cache

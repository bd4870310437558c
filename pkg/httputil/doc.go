// Package httputil fetches remote matrix sources.
//
// # Overview
//
//   - [Fetcher]: GET with caching and retry
//   - [Cache]: file-based response body cache
//   - [Retry]: exponential backoff for transient failures
//
// # Caching
//
// [Cache] stores response bodies under ~/.cache/dendro/http/ with a
// configurable TTL. When a refetch fails, [Fetcher.Get] falls back to an
// expired entry:
//
//	cache, _ := httputil.NewCache("", 24*time.Hour)
//	data, err := httputil.NewFetcher(cache).Get(ctx, "https://example.com/m.csv")
//
// # Retry
//
// [Retry] re-runs an operation while it fails with an error marked by
// [Transient]. The fetcher marks:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// A 404 fails immediately with NOT_FOUND; other statuses fail with
// NETWORK_ERROR.
//
// The cache can be cleared with `dendro cache clear`.
package httputil

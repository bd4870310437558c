// Package observability routes pipeline, cache, fetch and widget events to
// whatever the binary installs. Until something is installed every event
// goes to [Noop].
//
// `dendro serve` installs [PrometheusHooks]:
//
//	observability.NewPrometheusHooks(reg).Install()
//
// and the libraries report through the accessors:
//
//	observability.Pipeline().OnClusterStart(ctx, "average", n)
//	// cluster
//	observability.Pipeline().OnClusterComplete(ctx, "average", n, elapsed, err)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// PipelineHooks receives one start and one complete event per stage.
type PipelineHooks interface {
	OnLoadStart(ctx context.Context, source string)
	OnLoadComplete(ctx context.Context, source string, items int, duration time.Duration, err error)
	OnClusterStart(ctx context.Context, linkage string, items int)
	OnClusterComplete(ctx context.Context, linkage string, items int, duration time.Duration, err error)
	OnLayoutStart(ctx context.Context, orientation string, leaves int)
	OnLayoutComplete(ctx context.Context, orientation string, duration time.Duration, err error)
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives pipeline cache lookups. stage is "cluster", "layout"
// or "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, stage string)
	OnCacheMiss(ctx context.Context, stage string)
	OnCacheSet(ctx context.Context, stage string, size int)
}

// HTTPHooks receives fetches of remote matrices.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError records a request that got no response.
	OnError(ctx context.Context, method, host, path string, err error)
}

// WidgetHooks receives the lifecycle of server-held widgets.
type WidgetHooks interface {
	OnWidgetCreated(ctx context.Context, id string, items int)
	// OnSelection records a selection change; size 0 means cleared.
	OnSelection(ctx context.Context, id string, size int)
	OnWidgetDestroyed(ctx context.Context, id string)
}

// Noop implements every hook interface and discards all events.
type Noop struct{}

func (Noop) OnLoadStart(context.Context, string)                                    {}
func (Noop) OnLoadComplete(context.Context, string, int, time.Duration, error)      {}
func (Noop) OnClusterStart(context.Context, string, int)                            {}
func (Noop) OnClusterComplete(context.Context, string, int, time.Duration, error)   {}
func (Noop) OnLayoutStart(context.Context, string, int)                             {}
func (Noop) OnLayoutComplete(context.Context, string, time.Duration, error)         {}
func (Noop) OnRenderStart(context.Context, []string)                                {}
func (Noop) OnRenderComplete(context.Context, []string, time.Duration, error)       {}
func (Noop) OnCacheHit(context.Context, string)                                     {}
func (Noop) OnCacheMiss(context.Context, string)                                    {}
func (Noop) OnCacheSet(context.Context, string, int)                                {}
func (Noop) OnRequest(context.Context, string, string, string)                      {}
func (Noop) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (Noop) OnError(context.Context, string, string, string, error)                 {}
func (Noop) OnWidgetCreated(context.Context, string, int)                           {}
func (Noop) OnSelection(context.Context, string, int)                               {}
func (Noop) OnWidgetDestroyed(context.Context, string)                              {}

// Hooks is the set of installed hooks. Nil fields keep what was installed
// before.
type Hooks struct {
	Pipeline PipelineHooks
	Cache    CacheHooks
	HTTP     HTTPHooks
	Widget   WidgetHooks
}

var current atomic.Pointer[Hooks]

func init() { Reset() }

// Register installs the non-nil fields of h.
func Register(h Hooks) {
	for {
		old := current.Load()
		next := *old
		if h.Pipeline != nil {
			next.Pipeline = h.Pipeline
		}
		if h.Cache != nil {
			next.Cache = h.Cache
		}
		if h.HTTP != nil {
			next.HTTP = h.HTTP
		}
		if h.Widget != nil {
			next.Widget = h.Widget
		}
		if current.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Reset installs [Noop] everywhere.
func Reset() {
	current.Store(&Hooks{Pipeline: Noop{}, Cache: Noop{}, HTTP: Noop{}, Widget: Noop{}})
}

func Pipeline() PipelineHooks { return current.Load().Pipeline }
func Cache() CacheHooks       { return current.Load().Cache }
func HTTP() HTTPHooks         { return current.Load().HTTP }
func Widget() WidgetHooks     { return current.Load().Widget }

package registry

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/dendro/pkg/dendrogram"
	"github.com/matzehuels/dendro/pkg/errors"
	"github.com/matzehuels/dendro/pkg/heatmap"
	"github.com/matzehuels/dendro/pkg/observability"
	"github.com/matzehuels/dendro/pkg/render"
)

// Defaults.
const (
	// DefaultTTL is how long a widget survives without being touched.
	DefaultTTL = time.Hour

	// DefaultMaxWidgets caps the number of live widgets.
	DefaultMaxWidgets = 1000
)

// Options configures a Registry.
type Options struct {
	TTL        time.Duration
	MaxWidgets int
}

// Entry is one live widget. ID, Items and CreatedAt never change after
// Create.
type Entry struct {
	ID        string
	Items     int
	CreatedAt time.Time

	// expires is the expiry in Unix nanoseconds; Get extends it.
	expires atomic.Int64

	widget *dendrogram.Widget
	grid   *heatmap.Grid
	scene  render.Options
	// dx, dy is the offset of the dendrogram layer in scene coordinates.
	dx, dy float64
}

// ExpiresAt returns when the widget expires unless it is touched again.
func (e *Entry) ExpiresAt() time.Time {
	return time.Unix(0, e.expires.Load())
}

func (e *Entry) expiredAt(now time.Time) bool {
	return now.UnixNano() > e.expires.Load()
}

func (e *Entry) extend(until time.Time) {
	e.expires.Store(until.UnixNano())
}

// Selection returns the selected original indices, nil when cleared.
func (e *Entry) Selection() []int {
	return e.widget.State().Selected
}

// State returns the widget's interaction state.
func (e *Entry) State() dendrogram.State {
	return e.widget.State()
}

// Scene composes the widget in its current state.
func (e *Entry) Scene() *render.Scene {
	return render.Compose(e.widget.Layout(), e.widget.State(), e.grid, e.scene)
}

// Registry maps widget IDs to live widgets. It is safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*Entry
	ttl     time.Duration
	max     int
	now     func() time.Time
}

// New creates an empty registry.
func New(opts Options) *Registry {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxWidgets <= 0 {
		opts.MaxWidgets = DefaultMaxWidgets
	}
	return &Registry{
		entries: make(map[string]*Entry),
		ttl:     opts.TTL,
		max:     opts.MaxWidgets,
		now:     time.Now,
	}
}

// Create registers a widget over l. grid may be nil. When the registry is
// full the widget closest to expiry is dropped first.
func (r *Registry) Create(ctx context.Context, l *dendrogram.Layout, grid *heatmap.Grid, opts render.Options) (*Entry, error) {
	if l == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "layout is nil")
	}
	if grid != nil && grid.Size() != len(l.Leaves) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"heatmap has %d rows but the dendrogram has %d leaves", grid.Size(), len(l.Leaves))
	}

	id := uuid.NewString()
	now := r.now()
	e := &Entry{
		ID:        id,
		Items:     len(l.Leaves),
		CreatedAt: now,
		grid:      grid,
		scene:     opts,
	}
	e.extend(now.Add(r.ttl))
	hookCtx := context.WithoutCancel(ctx)
	e.widget = dendrogram.NewWidget(l, func(indices []int) {
		observability.Widget().OnSelection(hookCtx, id, len(indices))
	})
	if layer, ok := e.Scene().Layer(render.LayerDendrogram); ok {
		e.dx, e.dy = layer.X, layer.Y
	}

	r.mu.Lock()
	if len(r.entries) >= r.max {
		r.evictLocked(ctx)
	}
	r.entries[id] = e
	r.mu.Unlock()

	observability.Widget().OnWidgetCreated(ctx, id, e.Items)
	return e, nil
}

// Get returns the widget with the given ID and refreshes its expiry.
func (r *Registry) Get(id string) (*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	now := r.now()
	if !ok || e.expiredAt(now) {
		return nil, errors.New(errors.ErrCodeWidgetNotFound, "widget %s not found", id)
	}
	e.extend(now.Add(r.ttl))
	return e, nil
}

// Click dispatches a click at scene coordinates (x, y) and returns the new
// selection: the members of the innermost branch under the point, or nil
// when the background was hit.
func (r *Registry) Click(ctx context.Context, id string, x, y float64) ([]int, error) {
	e, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return e.widget.Click(x-e.dx, y-e.dy), nil
}

// Select selects internal node node as if its branch had been clicked.
func (r *Registry) Select(ctx context.Context, id string, node int) ([]int, error) {
	e, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return e.widget.Select(node)
}

// Clear drops the selection of a widget.
func (r *Registry) Clear(ctx context.Context, id string) error {
	e, err := r.Get(id)
	if err != nil {
		return err
	}
	e.widget.Clear()
	return nil
}

// Scene composes the widget with the given ID in its current state.
func (r *Registry) Scene(id string) (*render.Scene, error) {
	e, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return e.Scene(), nil
}

// Destroy removes a widget.
func (r *Registry) Destroy(ctx context.Context, id string) error {
	r.mu.Lock()
	_, ok := r.entries[id]
	delete(r.entries, id)
	r.mu.Unlock()
	if !ok {
		return errors.New(errors.ErrCodeWidgetNotFound, "widget %s not found", id)
	}
	observability.Widget().OnWidgetDestroyed(ctx, id)
	return nil
}

// Cleanup removes expired widgets and returns how many were dropped.
func (r *Registry) Cleanup(ctx context.Context) int {
	now := r.now()
	r.mu.Lock()
	var expired []string
	for id, e := range r.entries {
		if e.expiredAt(now) {
			expired = append(expired, id)
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()
	for _, id := range expired {
		observability.Widget().OnWidgetDestroyed(ctx, id)
	}
	return len(expired)
}

// Run calls Cleanup every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Cleanup(ctx)
		}
	}
}

// Len returns the number of registered widgets, expired ones included.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// IDs returns the registered widget IDs in sorted order.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (r *Registry) evictLocked(ctx context.Context) {
	var victim *Entry
	for _, e := range r.entries {
		if victim == nil || e.expires.Load() < victim.expires.Load() {
			victim = e
		}
	}
	if victim != nil {
		delete(r.entries, victim.ID)
		observability.Widget().OnWidgetDestroyed(ctx, victim.ID)
	}
}

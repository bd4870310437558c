package registry

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/dendro/pkg/cluster"
	"github.com/matzehuels/dendro/pkg/dendrogram"
	"github.com/matzehuels/dendro/pkg/errors"
	"github.com/matzehuels/dendro/pkg/heatmap"
	"github.com/matzehuels/dendro/pkg/matrix"
	"github.com/matzehuels/dendro/pkg/render"
)

func fixture(t *testing.T) (*dendrogram.Layout, *heatmap.Grid) {
	t.Helper()
	m, err := matrix.New([]string{"A", "B", "C", "D"}, [][]float64{
		{0, 1, 5, 5},
		{1, 0, 5, 5},
		{5, 5, 0, 1},
		{5, 5, 1, 0},
	})
	if err != nil {
		t.Fatal(err)
	}
	res, err := cluster.Run(m, cluster.Options{Linkage: cluster.Average})
	if err != nil {
		t.Fatal(err)
	}
	l, err := dendrogram.Compute(res.Tree, res.Order, dendrogram.Options{Width: 300, Height: 100, Labels: m.Labels()})
	if err != nil {
		t.Fatal(err)
	}
	g, err := heatmap.New(m, res.Order, heatmap.Options{Width: 300, Height: 300})
	if err != nil {
		t.Fatal(err)
	}
	return l, g
}

func TestCreateGetDestroy(t *testing.T) {
	ctx := context.Background()
	r := New(Options{})
	l, g := fixture(t)

	e, err := r.Create(ctx, l, g, render.Options{Title: "Four"})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if e.ID == "" || e.Items != 4 {
		t.Errorf("entry = %+v", e)
	}
	got, err := r.Get(e.ID)
	if err != nil || got != e {
		t.Fatalf("Get() = %v, %v", got, err)
	}
	if r.Len() != 1 || !slices.Equal(r.IDs(), []string{e.ID}) {
		t.Errorf("Len() = %d, IDs() = %v", r.Len(), r.IDs())
	}

	if err := r.Destroy(ctx, e.ID); err != nil {
		t.Fatalf("Destroy() error: %v", err)
	}
	if _, err := r.Get(e.ID); !errors.Is(err, errors.ErrCodeWidgetNotFound) {
		t.Errorf("Get() after Destroy error = %v, want WIDGET_NOT_FOUND", err)
	}
	if err := r.Destroy(ctx, e.ID); !errors.Is(err, errors.ErrCodeWidgetNotFound) {
		t.Errorf("second Destroy() error = %v, want WIDGET_NOT_FOUND", err)
	}
}

func TestCreateRejectsMismatchedGrid(t *testing.T) {
	l, _ := fixture(t)
	m, _ := matrix.New([]string{"A", "B"}, [][]float64{{0, 1}, {1, 0}})
	g, err := heatmap.New(m, []int{0, 1}, heatmap.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := New(Options{}).Create(context.Background(), l, g, render.Options{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Create() error = %v, want INVALID_INPUT", err)
	}
}

func TestSelectAndClear(t *testing.T) {
	ctx := context.Background()
	r := New(Options{})
	l, g := fixture(t)
	e, err := r.Create(ctx, l, g, render.Options{})
	if err != nil {
		t.Fatal(err)
	}

	sel, err := r.Select(ctx, e.ID, 5)
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if !slices.Equal(sel, []int{2, 3}) || !slices.Equal(e.Selection(), []int{2, 3}) {
		t.Errorf("selection = %v / %v, want [2 3]", sel, e.Selection())
	}
	if e.State().Node != 5 {
		t.Errorf("selected node = %d, want 5", e.State().Node)
	}

	scene, err := r.Scene(e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(scene.State.Selected, []int{2, 3}) {
		t.Errorf("scene selection = %v", scene.State.Selected)
	}

	if _, err := r.Select(ctx, e.ID, 0); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Select(leaf) error = %v, want NOT_FOUND", err)
	}

	if err := r.Clear(ctx, e.ID); err != nil {
		t.Fatal(err)
	}
	if e.Selection() != nil {
		t.Errorf("selection after Clear = %v", e.Selection())
	}
}

func TestClickUsesSceneCoordinates(t *testing.T) {
	ctx := context.Background()
	r := New(Options{})
	l, g := fixture(t)
	e, err := r.Create(ctx, l, g, render.Options{Title: "Four"})
	if err != nil {
		t.Fatal(err)
	}
	scene, _ := r.Scene(e.ID)
	layer, _ := scene.Layer(render.LayerDendrogram)

	b, _ := l.Branch(4)
	x := layer.X + (b.Bar.From.X+b.Bar.To.X)/2
	y := layer.Y + b.Bar.From.Y
	sel, err := r.Click(ctx, e.ID, x, y)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(sel, []int{0, 1}) {
		t.Errorf("Click(branch) = %v, want [0 1]", sel)
	}

	sel, err = r.Click(ctx, e.ID, -50, -50)
	if err != nil {
		t.Fatal(err)
	}
	if sel != nil {
		t.Errorf("Click(background) = %v, want nil", sel)
	}

	if _, err := r.Click(ctx, "missing", 0, 0); !errors.Is(err, errors.ErrCodeWidgetNotFound) {
		t.Errorf("Click(missing) error = %v", err)
	}
}

func TestExpiry(t *testing.T) {
	ctx := context.Background()
	r := New(Options{TTL: time.Minute})
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	l, g := fixture(t)
	a, _ := r.Create(ctx, l, g, render.Options{})
	now = now.Add(30 * time.Second)
	b, _ := r.Create(ctx, l, g, render.Options{})

	now = now.Add(45 * time.Second)
	if _, err := r.Get(a.ID); !errors.Is(err, errors.ErrCodeWidgetNotFound) {
		t.Errorf("Get(expired) error = %v", err)
	}
	if _, err := r.Get(b.ID); err != nil {
		t.Errorf("Get(live) error = %v", err)
	}
	if n := r.Cleanup(ctx); n != 1 {
		t.Errorf("Cleanup() = %d, want 1", n)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	r := New(Options{})
	l, g := fixture(t)
	e, err := r.Create(ctx, l, g, render.Options{})
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for w := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				got, err := r.Get(e.ID)
				if err != nil {
					t.Error(err)
					return
				}
				if got.ExpiresAt().Before(got.CreatedAt) {
					t.Error("expiry before creation")
				}
				if w%2 == 0 {
					r.Select(ctx, e.ID, 5)
				} else {
					r.Clear(ctx, e.ID)
				}
				r.Cleanup(ctx)
			}
		}()
	}
	wg.Wait()
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestGetExtendsExpiry(t *testing.T) {
	r := New(Options{TTL: time.Minute})
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	l, g := fixture(t)
	e, _ := r.Create(context.Background(), l, g, render.Options{})
	if !e.ExpiresAt().Equal(now.Add(time.Minute)) {
		t.Errorf("ExpiresAt() = %v", e.ExpiresAt())
	}

	now = now.Add(50 * time.Second)
	if _, err := r.Get(e.ID); err != nil {
		t.Fatal(err)
	}
	if !e.ExpiresAt().Equal(now.Add(time.Minute)) {
		t.Errorf("ExpiresAt() after Get = %v, want %v", e.ExpiresAt(), now.Add(time.Minute))
	}
}

func TestEviction(t *testing.T) {
	ctx := context.Background()
	r := New(Options{MaxWidgets: 2})
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	l, g := fixture(t)
	first, _ := r.Create(ctx, l, g, render.Options{})
	now = now.Add(time.Second)
	r.Create(ctx, l, g, render.Options{})
	now = now.Add(time.Second)
	r.Create(ctx, l, g, render.Options{})

	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}
	if _, err := r.Get(first.ID); err == nil {
		t.Error("oldest widget survived eviction")
	}
}

package dendrogram

import (
	"slices"
	"sync"

	"github.com/matzehuels/dendro/pkg/cluster"
	"github.com/matzehuels/dendro/pkg/errors"
)

// SelectionFunc receives the original indices of a selected cluster, or nil
// when the selection is cleared.
type SelectionFunc func(indices []int)

// Event is a pointer event travelling from the innermost target outwards.
type Event struct {
	X, Y float64
	// Target is the branch node under the pointer, or cluster.None.
	Target  int
	stopped bool
}

// StopPropagation keeps the event from reaching outer handlers.
func (e *Event) StopPropagation() { e.stopped = true }

// Stopped reports whether a handler stopped the event.
func (e *Event) Stopped() bool { return e.stopped }

// Widget is an interactive dendrogram. A click on a branch selects that
// branch's members; a click anywhere else clears the selection. Every
// change is reported to the SelectionFunc.
//
// A Widget is safe for concurrent use.
type Widget struct {
	mu       sync.Mutex
	layout   *Layout
	onSelect SelectionFunc
	state    State
}

// NewWidget wraps a layout. onSelect may be nil.
func NewWidget(l *Layout, onSelect SelectionFunc) *Widget {
	if onSelect == nil {
		onSelect = func([]int) {}
	}
	return &Widget{layout: l, onSelect: onSelect, state: NewState()}
}

// Layout returns the widget's layout.
func (w *Widget) Layout() *Layout { return w.layout }

// State returns a snapshot of the interaction state.
func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.state
	s.Selected = slices.Clone(s.Selected)
	return s
}

// Click dispatches a pointer click at (x, y) and returns the resulting
// selection.
func (w *Widget) Click(x, y float64) []int {
	ev := &Event{X: x, Y: y, Target: cluster.None}
	if b, ok := w.layout.HitTest(x, y); ok {
		ev.Target = b.Node
	}
	return w.Dispatch(ev)
}

// Dispatch runs the branch handler for ev.Target, if any, and then the
// background handler unless propagation was stopped.
func (w *Widget) Dispatch(ev *Event) []int {
	w.mu.Lock()
	if b, ok := w.layout.Branch(ev.Target); ok {
		w.onBranch(b, ev)
	}
	if !ev.Stopped() {
		w.onBackground()
	}
	sel := slices.Clone(w.state.Selected)
	w.mu.Unlock()

	w.onSelect(slices.Clone(sel))
	return sel
}

// Select selects internal node id as if its branch had been clicked.
func (w *Widget) Select(id int) ([]int, error) {
	b, ok := w.layout.Branch(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "node %d is not a branch of this dendrogram", id)
	}
	x := (b.Bar.From.X + b.Bar.To.X) / 2
	y := (b.Bar.From.Y + b.Bar.To.Y) / 2
	return w.Dispatch(&Event{X: x, Y: y, Target: b.Node}), nil
}

// Clear drops the selection as if the background had been clicked.
func (w *Widget) Clear() {
	w.Dispatch(&Event{Target: cluster.None})
}

// Hover records the branch under the pointer for rendering. It does not
// change the selection.
func (w *Widget) Hover(x, y float64) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.Hover = cluster.None
	if b, ok := w.layout.HitTest(x, y); ok {
		w.state.Hover = b.Node
	}
	return w.state.Hover
}

// Render draws the widget in its current state.
func (w *Widget) Render() []Command {
	return Render(w.layout, w.State())
}

func (w *Widget) onBranch(b Branch, ev *Event) {
	ev.StopPropagation()
	w.state.Selected = slices.Clone(b.Members)
	w.state.Node = b.Node
}

func (w *Widget) onBackground() {
	w.state.Selected = nil
	w.state.Node = cluster.None
}

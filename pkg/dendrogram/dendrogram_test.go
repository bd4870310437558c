package dendrogram

import (
	"slices"
	"testing"

	"github.com/matzehuels/dendro/pkg/cluster"
	"github.com/matzehuels/dendro/pkg/errors"
	"github.com/matzehuels/dendro/pkg/matrix"
)

func fourItemTree(t *testing.T) *cluster.Result {
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
	return res
}

func fourItemLayout(t *testing.T, o Orientation) *Layout {
	t.Helper()
	res := fourItemTree(t)
	opts := Options{Width: 300, Height: 100, Orientation: o}
	if o == Horizontal {
		opts.Width, opts.Height = 100, 300
	}
	l, err := Compute(res.Tree, res.Order, opts)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	return l
}

func TestComputeVertical(t *testing.T) {
	l := fourItemLayout(t, Vertical)

	wantLeaves := []float64{0, 100, 200, 300}
	for i, lf := range l.Leaves {
		if lf.Pos != wantLeaves[i] || lf.At.Y != 0 {
			t.Errorf("leaf %d at %+v, want pos %v", i, lf, wantLeaves[i])
		}
	}

	tests := []struct {
		node      int
		pos, dist float64
		hit       Rect
	}{
		{4, 50, 20, Rect{X: -3, Y: 0, W: 106, H: 21}},
		{5, 250, 20, Rect{X: 197, Y: 0, W: 106, H: 21}},
		{6, 150, 100, Rect{X: 47, Y: 20, W: 206, H: 81}},
	}
	for _, tt := range tests {
		b, ok := l.Branch(tt.node)
		if !ok {
			t.Fatalf("Branch(%d) missing", tt.node)
		}
		if b.Pos != tt.pos || b.Dist != tt.dist {
			t.Errorf("node %d at (%v, %v), want (%v, %v)", tt.node, b.Pos, b.Dist, tt.pos, tt.dist)
		}
		if b.Hit != tt.hit {
			t.Errorf("node %d hit = %+v, want %+v", tt.node, b.Hit, tt.hit)
		}
	}

	root, _ := l.Branch(6)
	if root.LeftRiser != (Segment{From: Point{50, 20}, To: Point{50, 100}}) {
		t.Errorf("left riser = %+v", root.LeftRiser)
	}
	if root.Bar != (Segment{From: Point{50, 100}, To: Point{250, 100}}) {
		t.Errorf("bar = %+v", root.Bar)
	}
	if l.Root() != 6 {
		t.Errorf("Root() = %d, want 6", l.Root())
	}
	if !slices.Equal(l.Order(), []int{0, 1, 2, 3}) {
		t.Errorf("Order() = %v", l.Order())
	}
}

func TestComputeHorizontal(t *testing.T) {
	l := fourItemLayout(t, Horizontal)

	b, _ := l.Branch(4)
	if b.Hit != (Rect{X: 0, Y: -3, W: 21, H: 106}) {
		t.Errorf("hit = %+v", b.Hit)
	}
	if b.Bar != (Segment{From: Point{20, 0}, To: Point{20, 100}}) {
		t.Errorf("bar = %+v", b.Bar)
	}
	if lf := l.Leaves[3]; lf.At != (Point{X: 0, Y: 300}) {
		t.Errorf("last leaf at %+v, want (0, 300)", lf.At)
	}
}

func TestComputeSingleLeaf(t *testing.T) {
	m, _ := matrix.New([]string{"A"}, [][]float64{{0}})
	res, err := cluster.Run(m, cluster.Options{Linkage: cluster.Single})
	if err != nil {
		t.Fatal(err)
	}
	l, err := Compute(res.Tree, res.Order, Options{})
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if len(l.Branches) != 0 || len(l.Leaves) != 1 || l.Leaves[0].Pos != 0 {
		t.Errorf("layout = %+v, want one leaf at 0 and no branches", l)
	}
	if cmds := Render(l, NewState()); len(cmds) != 0 {
		t.Errorf("Render() = %d commands, want none", len(cmds))
	}
}

func TestWidgetSingleLeaf(t *testing.T) {
	m, _ := matrix.New([]string{"A"}, [][]float64{{0}})
	res, err := cluster.Run(m, cluster.Options{Linkage: cluster.Average})
	if err != nil {
		t.Fatal(err)
	}
	l, err := Compute(res.Tree, res.Order, Options{Width: 200, Height: 100})
	if err != nil {
		t.Fatal(err)
	}

	calls := 0
	w := NewWidget(l, func(sel []int) {
		calls++
		if sel != nil {
			t.Errorf("callback selection = %v, want nil", sel)
		}
	})
	for _, p := range []Point{{0, 0}, {100, 50}, {200, 100}} {
		if sel := w.Click(p.X, p.Y); sel != nil {
			t.Errorf("Click(%v) = %v, want nil", p, sel)
		}
	}
	if calls != 3 {
		t.Errorf("callback ran %d times, want 3", calls)
	}
	if _, err := w.Select(0); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Select(0) error = %v, want NOT_FOUND", err)
	}
	if st := w.State(); st.Selected != nil {
		t.Errorf("state = %+v, want no selection", st)
	}
}

func TestComputeZeroDistance(t *testing.T) {
	m, _ := matrix.New([]string{"A", "B"}, [][]float64{{0, 0}, {0, 0}})
	res, err := cluster.Run(m, cluster.Options{Linkage: cluster.Single})
	if err != nil {
		t.Fatal(err)
	}
	l, err := Compute(res.Tree, res.Order, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if l.Branches[0].Dist != 0 {
		t.Errorf("dist = %v, want 0", l.Branches[0].Dist)
	}
}

func TestComputeErrors(t *testing.T) {
	res := fourItemTree(t)
	tests := []struct {
		name  string
		order []int
		opts  Options
		code  errors.Code
	}{
		{"bad order", []int{0, 1, 1, 3}, Options{}, errors.ErrCodeInvalidInput},
		{"short order", []int{0, 1}, Options{}, errors.ErrCodeInvalidInput},
		{"orientation", res.Order, Options{Orientation: "diagonal"}, errors.ErrCodeInvalidOrientation},
		{"labels", res.Order, Options{Labels: []string{"A"}}, errors.ErrCodeInvalidInput},
		{"negative width", res.Order, Options{Width: -1}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Compute(res.Tree, tt.order, tt.opts); !errors.Is(err, tt.code) {
				t.Errorf("Compute() error = %v, want %s", err, tt.code)
			}
		})
	}
	if _, err := Compute(nil, nil, Options{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Compute(nil) error = %v", err)
	}
}

func TestTitles(t *testing.T) {
	res := fourItemTree(t)
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"default", Options{}, "Cluster of 4 items\nDistance: 5.000\nClick to highlight"},
		{"noun and unit", Options{Noun: "players", Unit: "yards", Precision: 1}, "Cluster of 4 players\nDistance: 5.0 yards\nClick to highlight"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Compute(res.Tree, res.Order, tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if got := l.Branches[2].Title; got != tt.want {
				t.Errorf("Title = %q, want %q", got, tt.want)
			}
		})
	}

	m, _ := matrix.New([]string{"A", "B"}, [][]float64{{1, 0.9}, {0.9, 1}})
	sres, err := cluster.Run(m, cluster.Options{Linkage: cluster.Average, Similarity: true})
	if err != nil {
		t.Fatal(err)
	}
	l, err := Compute(sres.Tree, sres.Order, Options{Noun: "clubs", Similarity: true})
	if err != nil {
		t.Fatal(err)
	}
	if want := "Cluster of 2 clubs\nSimilarity: 90.0%\nClick to highlight"; l.Branches[0].Title != want {
		t.Errorf("Title = %q, want %q", l.Branches[0].Title, want)
	}
}

func TestHitTest(t *testing.T) {
	l := fourItemLayout(t, Vertical)
	tests := []struct {
		name   string
		x, y   float64
		want   int
		wantOK bool
	}{
		{"left branch", 50, 10, 4, true},
		{"right branch", 250, 10, 5, true},
		{"overlap picks innermost", 50, 20.5, 4, true},
		{"root", 150, 50, 6, true},
		{"padding", -3, 5, 4, true},
		{"background", 150, 5, 0, false},
		{"outside", 500, 500, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, ok := l.HitTest(tt.x, tt.y)
			if ok != tt.wantOK || (ok && b.Node != tt.want) {
				t.Errorf("HitTest(%v, %v) = %d, %v, want %d, %v", tt.x, tt.y, b.Node, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestWidget(t *testing.T) {
	l := fourItemLayout(t, Vertical)

	var got [][]int
	w := NewWidget(l, func(indices []int) { got = append(got, indices) })

	if sel := w.Click(50, 10); !slices.Equal(sel, []int{0, 1}) {
		t.Errorf("Click(branch) = %v, want [0 1]", sel)
	}
	if s := w.State(); s.Node != 4 || !slices.Equal(s.Selected, []int{0, 1}) {
		t.Errorf("State() = %+v", s)
	}
	if sel := w.Click(150, 5); sel != nil {
		t.Errorf("Click(background) = %v, want nil", sel)
	}
	if sel, err := w.Select(5); err != nil || !slices.Equal(sel, []int{2, 3}) {
		t.Errorf("Select(5) = %v, %v", sel, err)
	}
	w.Clear()

	want := [][]int{{0, 1}, nil, {2, 3}, nil}
	if len(got) != len(want) {
		t.Fatalf("callback called %d times, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if (got[i] == nil) != (want[i] == nil) || !slices.Equal(got[i], want[i]) {
			t.Errorf("callback %d = %v, want %v", i, got[i], want[i])
		}
	}
	if !w.State().Cleared() || w.State().Node != cluster.None {
		t.Errorf("state after Clear() = %+v", w.State())
	}
}

func TestWidgetSelectErrors(t *testing.T) {
	w := NewWidget(fourItemLayout(t, Vertical), nil)
	for _, id := range []int{-1, 0, 3, 7} {
		if _, err := w.Select(id); !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("Select(%d) error = %v, want NOT_FOUND", id, err)
		}
	}
}

func TestEventPropagation(t *testing.T) {
	w := NewWidget(fourItemLayout(t, Vertical), nil)

	ev := &Event{Target: 6}
	w.Dispatch(ev)
	if !ev.Stopped() {
		t.Error("branch handler should stop propagation")
	}
	if w.State().Cleared() {
		t.Error("stopped event must not reach the background handler")
	}

	ev = &Event{Target: cluster.None}
	w.Dispatch(ev)
	if ev.Stopped() || !w.State().Cleared() {
		t.Error("background event should clear the selection")
	}
}

func TestRender(t *testing.T) {
	res := fourItemTree(t)
	l, err := Compute(res.Tree, res.Order, Options{Labels: []string{"A", "B", "C", "D"}})
	if err != nil {
		t.Fatal(err)
	}

	cmds := Render(l, NewState())
	if len(cmds) != 3*4+4 {
		t.Fatalf("Render() = %d commands, want 16", len(cmds))
	}
	for _, c := range cmds {
		if c.Shape == ShapeLine && c.Style.Stroke != ColorBranch {
			t.Errorf("unselected line stroke = %s", c.Style.Stroke)
		}
	}

	state := NewState()
	state.Selected = []int{0, 1}
	state.Hover = 5
	for _, c := range Render(l, state) {
		switch {
		case c.Shape == ShapeLine && c.Node == 4 && c.Style.Stroke != ColorAccent:
			t.Errorf("selected branch stroke = %s", c.Style.Stroke)
		case c.Shape == ShapeLine && c.Node == 5 && c.Style.Stroke != ColorHover:
			t.Errorf("hovered branch stroke = %s", c.Style.Stroke)
		case c.Shape == ShapeLine && c.Node == 6 && c.Style.Stroke != ColorBranch:
			t.Errorf("root stroke = %s", c.Style.Stroke)
		case c.Shape == ShapeText && c.Text == "A" && (c.Style.Fill != ColorAccent || !c.Style.Bold):
			t.Errorf("selected label style = %+v", c.Style)
		case c.Shape == ShapeText && c.Text == "C" && c.Style.Fill != ColorDimLabel:
			t.Errorf("dimmed label style = %+v", c.Style)
		case c.Clickable() && c.Node == 6 && len(c.Members) != 4:
			t.Errorf("root hit members = %v", c.Members)
		}
	}
}

func TestParseOrientation(t *testing.T) {
	for in, want := range map[string]Orientation{"": Vertical, "Vertical": Vertical, "horizontal": Horizontal} {
		if got, err := ParseOrientation(in); err != nil || got != want {
			t.Errorf("ParseOrientation(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseOrientation("radial"); !errors.Is(err, errors.ErrCodeInvalidOrientation) {
		t.Errorf("ParseOrientation(radial) error = %v", err)
	}
}

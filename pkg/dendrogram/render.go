package dendrogram

import (
	"fmt"
	"slices"

	"github.com/matzehuels/dendro/pkg/cluster"
)

// Palette shared by the dendrogram and heatmap renderers.
const (
	ColorBranch   = "#666666"
	ColorAccent   = "#d95f0e"
	ColorHover    = "#4a90e2"
	ColorLabel    = "#000000"
	ColorDimLabel = "#999999"
	ColorGrid     = "#ffffff"
)

// Shape is the primitive a Command draws.
type Shape string

const (
	ShapeLine Shape = "line"
	ShapeRect Shape = "rect"
	ShapeText Shape = "text"
)

// Style holds presentation attributes. A zero Opacity is drawn as fully
// opaque; use [Style.Alpha] to read it.
type Style struct {
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"stroke_width,omitempty"`
	Fill        string  `json:"fill,omitempty"`
	Opacity     float64 `json:"opacity,omitempty"`
	FontSize    float64 `json:"font_size,omitempty"`
	Bold        bool    `json:"bold,omitempty"`
	Anchor      string  `json:"anchor,omitempty"`
	Rotate      float64 `json:"rotate,omitempty"`
}

// Alpha returns the effective opacity.
func (s Style) Alpha() float64 {
	if s.Opacity == 0 {
		return 1
	}
	return s.Opacity
}

// Command is one backend-independent drawing instruction. Lines use X1..Y2,
// rects use X, Y, W, H, and text is anchored at X, Y.
//
// Clickable rects carry the Members a click selects. Node is the internal
// node a branch command belongs to, or cluster.None.
type Command struct {
	Shape   Shape   `json:"shape"`
	Class   string  `json:"class,omitempty"`
	Node    int     `json:"node"`
	X1      float64 `json:"x1,omitempty"`
	Y1      float64 `json:"y1,omitempty"`
	X2      float64 `json:"x2,omitempty"`
	Y2      float64 `json:"y2,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	W       float64 `json:"w,omitempty"`
	H       float64 `json:"h,omitempty"`
	Text    string  `json:"text,omitempty"`
	Title   string  `json:"title,omitempty"`
	Members []int   `json:"members,omitempty"`
	Style   Style   `json:"style"`
}

// Clickable reports whether c is a hit area.
func (c Command) Clickable() bool { return c.Shape == ShapeRect && c.Members != nil }

// State is the interaction state a frame is rendered from.
type State struct {
	// Selected holds the original indices of the highlighted cluster, nil
	// when nothing is selected.
	Selected []int `json:"selected"`
	// Node is the selected internal node, or cluster.None.
	Node int `json:"node"`
	// Hover is the internal node under the pointer, or cluster.None.
	Hover int `json:"hover"`
}

// NewState returns a state with nothing selected or hovered.
func NewState() State {
	return State{Node: cluster.None, Hover: cluster.None}
}

// Cleared reports whether nothing is selected.
func (s State) Cleared() bool { return s.Selected == nil }

func (s State) selectedSet() map[int]bool {
	if s.Selected == nil {
		return nil
	}
	set := make(map[int]bool, len(s.Selected))
	for _, i := range s.Selected {
		set[i] = true
	}
	return set
}

// Render turns a layout into draw commands. Branches whose members all lie
// in the selection are drawn in the accent color; the hovered branch is drawn
// in the hover color. Each branch is followed by its transparent hit area so
// later branches (closer to the root) are drawn on top.
func Render(l *Layout, s State) []Command {
	sel := s.selectedSet()
	cmds := make([]Command, 0, 4*len(l.Branches)+len(l.Leaves))

	for _, b := range l.Branches {
		style := Style{Stroke: ColorBranch, StrokeWidth: 1.5}
		switch {
		case b.Node == s.Hover:
			style = Style{Stroke: ColorHover, StrokeWidth: 2}
		case sel != nil && containsAll(sel, b.Members):
			style = Style{Stroke: ColorAccent, StrokeWidth: 2}
		}
		for _, seg := range b.Segments() {
			cmds = append(cmds, Command{
				Shape: ShapeLine,
				Class: "dendrogram-branch",
				Node:  b.Node,
				X1:    seg.From.X,
				Y1:    seg.From.Y,
				X2:    seg.To.X,
				Y2:    seg.To.Y,
				Style: style,
			})
		}
		cmds = append(cmds, Command{
			Shape:   ShapeRect,
			Class:   "dendrogram-hit",
			Node:    b.Node,
			X:       b.Hit.X,
			Y:       b.Hit.Y,
			W:       b.Hit.W,
			H:       b.Hit.H,
			Title:   b.Title,
			Members: slices.Clone(b.Members),
			Style:   Style{Fill: "transparent"},
		})
	}

	for _, lf := range l.Leaves {
		if lf.Label == "" {
			continue
		}
		cmd := Command{
			Shape: ShapeText,
			Class: fmt.Sprintf("dendrogram-label dendrogram-label-%d", lf.Index),
			Node:  cluster.None,
			Text:  lf.Label,
			Style: Style{Fill: ColorLabel, FontSize: 11},
		}
		if l.Orientation == Horizontal {
			cmd.X, cmd.Y = lf.At.X-6, lf.At.Y
			cmd.Style.Anchor = "end"
		} else {
			cmd.X, cmd.Y = lf.At.X, lf.At.Y-6
			cmd.Style.Anchor = "start"
			cmd.Style.Rotate = -45
		}
		switch {
		case sel == nil:
		case sel[lf.Index]:
			cmd.Style.Fill, cmd.Style.Bold = ColorAccent, true
		default:
			cmd.Style.Fill = ColorDimLabel
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}

func containsAll(set map[int]bool, members []int) bool {
	for _, m := range members {
		if !set[m] {
			return false
		}
	}
	return true
}

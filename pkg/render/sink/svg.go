package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/dendro/pkg/dendrogram"
	"github.com/matzehuels/dendro/pkg/render"
)

const interactionCSS = `
    .dendrogram-hit { cursor: pointer; }
    .dendrogram-branch.hover { stroke: ` + dendrogram.ColorHover + `; stroke-width: 2; }
    .dendrogram-branch.selected { stroke: ` + dendrogram.ColorAccent + `; stroke-width: 2; }
    .cell { transition: opacity 0.2s ease; }
    .cell.dimmed { opacity: 0.2; }
    .cell.selected { opacity: 1; stroke: ` + dendrogram.ColorAccent + `; stroke-width: 2; }
    .label-selected { fill: ` + dendrogram.ColorAccent + `; font-weight: bold; }
    .label-dimmed { fill: ` + dendrogram.ColorDimLabel + `; }`

const interactionJS = `
    const root = document.documentElement;
    const order = (root.dataset.order || '').split(' ').filter(Boolean).map(Number);
    const position = new Map(order.map((idx, p) => [idx, p]));
    const members = el => (el.dataset.members || '').split(' ').filter(Boolean).map(Number);
    const num = (el, re) => { const m = el.getAttribute('class').match(re); return m ? +m[1] : -1; };
    function branchLines(node) {
      return document.querySelectorAll('.dendrogram-branch[data-node="' + node + '"]');
    }
    function select(indices) {
      const picked = new Set(indices);
      const pos = new Set(indices.map(i => position.get(i)));
      document.querySelectorAll('.dendrogram-hit').forEach(h => {
        const on = members(h).every(m => picked.has(m));
        branchLines(h.dataset.node).forEach(l => l.classList.toggle('selected', on));
      });
      document.querySelectorAll('.cell').forEach(c => {
        const on = pos.has(num(c, /cell-row-(\d+)/)) && pos.has(num(c, /cell-col-(\d+)/));
        c.classList.toggle('selected', on);
        c.classList.toggle('dimmed', !on);
      });
      document.querySelectorAll('.x-label, .y-label').forEach(t => {
        const on = pos.has(num(t, /[xy]-label-(\d+)/));
        t.classList.toggle('label-selected', on);
        t.classList.toggle('label-dimmed', !on);
      });
      document.querySelectorAll('.dendrogram-label').forEach(t => {
        const on = picked.has(+t.dataset.index);
        t.classList.toggle('label-selected', on);
        t.classList.toggle('label-dimmed', !on);
      });
    }
    function clearSelection() {
      document.querySelectorAll('.selected, .dimmed, .label-selected, .label-dimmed').forEach(el =>
        el.classList.remove('selected', 'dimmed', 'label-selected', 'label-dimmed'));
    }
    document.querySelectorAll('.dendrogram-hit').forEach(h => {
      h.addEventListener('click', ev => { ev.stopPropagation(); select(members(h)); });
      h.addEventListener('mouseenter', () => branchLines(h.dataset.node).forEach(l => l.classList.add('hover')));
      h.addEventListener('mouseleave', () => branchLines(h.dataset.node).forEach(l => l.classList.remove('hover')));
    });
    root.addEventListener('click', clearSelection);`

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	interactive bool
	background  string
}

// WithInteraction embeds the script that makes branches clickable: a click
// highlights the cluster in the heatmap and a click elsewhere clears it.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interactive = true } }

// WithBackground fills the canvas with color before drawing.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// RenderSVG draws s as a standalone SVG document.
func RenderSVG(s *render.Scene, opts ...SVGOption) []byte {
	var r svgRenderer
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f" data-order="%s" font-family="sans-serif">`+"\n",
		s.Width, s.Height, s.Width, s.Height, joinInts(s.Order))
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect class="background" width="100%%" height="100%%" fill="%s"/>`+"\n", attr(r.background))
	}
	if r.interactive {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", interactionCSS)
	}

	for _, l := range s.Layers {
		fmt.Fprintf(&buf, `  <g class="layer-%s" transform="translate(%s,%s)">`+"\n", attr(l.Name), num(l.X), num(l.Y))
		for _, c := range l.Commands {
			writeCommand(&buf, c)
		}
		buf.WriteString("  </g>\n")
	}

	if r.interactive {
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", interactionJS)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func writeCommand(buf *bytes.Buffer, c dendrogram.Command) {
	buf.WriteString("    ")
	switch c.Shape {
	case dendrogram.ShapeLine:
		fmt.Fprintf(buf, `<line class="%s" data-node="%d" x1="%s" y1="%s" x2="%s" y2="%s"%s`,
			attr(c.Class), c.Node, num(c.X1), num(c.Y1), num(c.X2), num(c.Y2), paint(c.Style))
	case dendrogram.ShapeRect:
		fmt.Fprintf(buf, `<rect class="%s" x="%s" y="%s" width="%s" height="%s"%s`,
			attr(c.Class), num(c.X), num(c.Y), num(c.W), num(c.H), paint(c.Style))
		if c.Clickable() {
			fmt.Fprintf(buf, ` data-node="%d" data-members="%s"`, c.Node, joinInts(c.Members))
		}
	case dendrogram.ShapeText:
		writeText(buf, c)
		buf.WriteByte('\n')
		return
	default:
		return
	}

	if c.Title == "" {
		buf.WriteString("/>\n")
		return
	}
	buf.WriteString("><title>")
	xml.EscapeText(buf, []byte(c.Title))
	buf.WriteString("</title></")
	buf.WriteString(string(c.Shape))
	buf.WriteString(">\n")
}

func writeText(buf *bytes.Buffer, c dendrogram.Command) {
	st := c.Style
	fmt.Fprintf(buf, `<text class="%s" x="%s" y="%s" fill="%s" font-size="%s" dominant-baseline="middle"`,
		attr(c.Class), num(c.X), num(c.Y), attr(st.Fill), num(st.FontSize))
	if st.Anchor != "" {
		fmt.Fprintf(buf, ` text-anchor="%s"`, attr(st.Anchor))
	}
	if st.Bold {
		buf.WriteString(` font-weight="bold"`)
	}
	if st.Rotate != 0 {
		fmt.Fprintf(buf, ` transform="rotate(%s %s %s)"`, num(st.Rotate), num(c.X), num(c.Y))
	}
	if strings.HasPrefix(c.Class, "dendrogram-label") {
		if idx := labelIndex(c); idx >= 0 {
			fmt.Fprintf(buf, ` data-index="%d"`, idx)
		}
	}
	buf.WriteByte('>')
	xml.EscapeText(buf, []byte(c.Text))
	buf.WriteString("</text>")
}

func paint(st dendrogram.Style) string {
	var b strings.Builder
	fill := st.Fill
	if fill == "" {
		fill = "none"
	}
	fmt.Fprintf(&b, ` fill="%s"`, attr(fill))
	if st.Stroke != "" {
		fmt.Fprintf(&b, ` stroke="%s" stroke-width="%s"`, attr(st.Stroke), num(st.StrokeWidth))
	}
	if a := st.Alpha(); a < 1 {
		fmt.Fprintf(&b, ` opacity="%s"`, num(a))
	}
	return b.String()
}

// labelIndex recovers the original index of a dendrogram leaf label from
// its class suffix, or -1.
func labelIndex(c dendrogram.Command) int {
	_, suffix, ok := strings.Cut(c.Class, "dendrogram-label-")
	if !ok {
		return -1
	}
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return -1
	}
	return n
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func attr(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, " ")
}

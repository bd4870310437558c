package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/dendro/pkg/cluster"
	"github.com/matzehuels/dendro/pkg/dendrogram"
)

// Options configures DOT generation.
type Options struct {
	// Labels names the leaves by original index; missing labels fall back
	// to the index.
	Labels []string
	// Orientation selects top-to-bottom (vertical) or left-to-right
	// (horizontal) ranks.
	Orientation dendrogram.Orientation
	// Detailed adds the member count to internal node labels.
	Detailed bool
	// Precision is the number of decimals of merge distances (default 3).
	Precision int
	// Selected highlights the internal nodes whose members all lie in the
	// selection, and the selected leaves.
	Selected []int
}

// ToDOT converts a cluster tree to Graphviz DOT source. The root is drawn
// first and every parent points at its left child before its right child,
// so dot keeps the leaves in tree order.
func ToDOT(t *cluster.Tree, opts Options) string {
	if opts.Precision <= 0 {
		opts.Precision = dendrogram.DefaultPrecision
	}
	rankdir := "TB"
	if opts.Orientation == dendrogram.Horizontal {
		rankdir = "LR"
	}
	sel := make(map[int]bool, len(opts.Selected))
	for _, i := range opts.Selected {
		sel[i] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  ordering=out;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.15,0.05\"];\n")
	fmt.Fprintf(&buf, "  edge [arrowhead=none, color=%q];\n", dendrogram.ColorBranch)
	buf.WriteString("\n")

	for id := t.Len() - 1; id >= 0; id-- {
		n := t.Node(id)
		attrs := nodeAttrs(n, opts, sel)
		fmt.Fprintf(&buf, "  n%d [%s];\n", id, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for id := t.Len() - 1; id >= t.Leaves(); id-- {
		n := t.Node(id)
		fmt.Fprintf(&buf, "  n%d -> n%d;\n", id, n.Left)
		fmt.Fprintf(&buf, "  n%d -> n%d;\n", id, n.Right)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n cluster.Node, opts Options, sel map[int]bool) []string {
	if n.IsLeaf() {
		label := strconv.Itoa(n.ID)
		if n.ID < len(opts.Labels) && opts.Labels[n.ID] != "" {
			label = opts.Labels[n.ID]
		}
		attrs := []string{fmt.Sprintf("label=%q", label)}
		if sel[n.ID] {
			attrs = append(attrs, fmt.Sprintf("color=%q", dendrogram.ColorAccent), "penwidth=2")
		}
		return attrs
	}

	label := strconv.FormatFloat(n.Distance, 'f', opts.Precision, 64)
	if opts.Detailed {
		label += fmt.Sprintf("\n%d members", n.Size())
	}
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		"shape=ellipse",
		"style=filled",
		"fillcolor=\"#f0f0f0\"",
		"fontsize=10",
	}
	if len(sel) > 0 && allSelected(n.Members, sel) {
		attrs = append(attrs, fmt.Sprintf("color=%q", dendrogram.ColorAccent), "penwidth=2")
	}
	return attrs
}

func allSelected(members []int, sel map[int]bool) bool {
	for _, m := range members {
		if !sel[m] {
			return false
		}
	}
	return true
}

// RenderSVG renders DOT source to SVG in process.
func RenderSVG(dot string) ([]byte, error) {
	data, err := render(dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(data), nil
}

// RenderPNG renders DOT source to PNG in process.
func RenderPNG(dot string) ([]byte, error) {
	return render(dot, graphviz.PNG)
}

func render(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces graphviz's pt-sized root element with a
// pixel-sized one over the same viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

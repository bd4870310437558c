package sink

import (
	"bytes"
	"fmt"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/matzehuels/dendro/pkg/dendrogram"
	"github.com/matzehuels/dendro/pkg/render"
)

// PNGOption configures [RenderPNG].
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale      float64
	background string
}

// WithScale sets the pixel density (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// WithPNGBackground sets the canvas color (default white). An empty color
// leaves the canvas transparent.
func WithPNGBackground(color string) PNGOption {
	return func(r *pngRenderer) { r.background = color }
}

// RenderPNG rasterizes s. Text uses the Go fonts.
func RenderPNG(s *render.Scene, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0, background: "#ffffff"}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 || math.IsNaN(r.scale) {
		return nil, fmt.Errorf("png scale must be positive, got %g", r.scale)
	}

	w := int(math.Ceil(s.Width * r.scale))
	h := int(math.Ceil(s.Height * r.scale))
	dc := gg.NewContext(max(w, 1), max(h, 1))
	if r.background != "" {
		if !setColor(dc, r.background, 1) {
			return nil, fmt.Errorf("invalid background color %q", r.background)
		}
		dc.Clear()
	}
	dc.Scale(r.scale, r.scale)

	for _, c := range s.Commands() {
		if err := draw(dc, c); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func draw(dc *gg.Context, c dendrogram.Command) error {
	st := c.Style
	alpha := st.Alpha()
	switch c.Shape {
	case dendrogram.ShapeLine:
		if setColor(dc, st.Stroke, alpha) {
			dc.SetLineWidth(st.StrokeWidth)
			dc.DrawLine(c.X1, c.Y1, c.X2, c.Y2)
			dc.Stroke()
		}
	case dendrogram.ShapeRect:
		if setColor(dc, st.Fill, alpha) {
			dc.DrawRectangle(c.X, c.Y, c.W, c.H)
			dc.Fill()
		}
		if st.StrokeWidth > 0 && setColor(dc, st.Stroke, alpha) {
			dc.SetLineWidth(st.StrokeWidth)
			dc.DrawRectangle(c.X, c.Y, c.W, c.H)
			dc.Stroke()
		}
	case dendrogram.ShapeText:
		if c.Text == "" || !setColor(dc, st.Fill, alpha) {
			return nil
		}
		face, err := fontFace(st.FontSize, st.Bold)
		if err != nil {
			return err
		}
		dc.SetFontFace(face)
		dc.Push()
		if st.Rotate != 0 {
			dc.RotateAbout(gg.Radians(st.Rotate), c.X, c.Y)
		}
		dc.DrawStringAnchored(c.Text, c.X, c.Y, anchorX(st.Anchor), 0.35)
		dc.Pop()
	}
	return nil
}

// setColor reports false for "none", "transparent" and unparsable colors,
// which are not drawn.
func setColor(dc *gg.Context, hex string, alpha float64) bool {
	if hex == "" || hex == "none" || hex == "transparent" {
		return false
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return false
	}
	dc.SetRGBA(c.R, c.G, c.B, alpha)
	return true
}

func anchorX(anchor string) float64 {
	switch anchor {
	case "middle":
		return 0.5
	case "end":
		return 1
	}
	return 0
}

type faceKey struct {
	size float64
	bold bool
}

var (
	fontsOnce    sync.Once
	regular      *truetype.Font
	bold         *truetype.Font
	fontsErr     error
	facesMu      sync.Mutex
	faces        = map[faceKey]font.Face{}
	defaultPoint = 11.0
)

func fontFace(size float64, isBold bool) (font.Face, error) {
	fontsOnce.Do(func() {
		if regular, fontsErr = truetype.Parse(goregular.TTF); fontsErr != nil {
			return
		}
		bold, fontsErr = truetype.Parse(gobold.TTF)
	})
	if fontsErr != nil {
		return nil, fmt.Errorf("load fonts: %w", fontsErr)
	}
	if size <= 0 {
		size = defaultPoint
	}

	key := faceKey{size, isBold}
	facesMu.Lock()
	defer facesMu.Unlock()
	if f, ok := faces[key]; ok {
		return f, nil
	}
	src := regular
	if isBold {
		src = bold
	}
	f := truetype.NewFace(src, &truetype.Options{Size: size, Hinting: font.HintingFull})
	faces[key] = f
	return f, nil
}

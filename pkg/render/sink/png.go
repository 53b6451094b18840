package sink

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"sync"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/geom"
	"github.com/matzehuels/arbor/pkg/render"
)

// maxRasterSide bounds either side of a raster export in pixels.
const maxRasterSide = 16384

// RenderRaster rasterizes the scene. WithScale sets pixels per world unit
// (default 1).
func RenderRaster(s render.Scene, opts ...Option) (image.Image, error) {
	c := newConfig(opts)
	f, err := c.resolve(s, c.scale)
	if err != nil {
		return nil, err
	}
	if f.width > maxRasterSide || f.height > maxRasterSide {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"raster export of %dx%d exceeds %d pixels per side; lower the scale", f.width, f.height, maxRasterSide)
	}

	dc := gg.NewContext(max(1, f.width), max(1, f.height))
	if !c.transparent {
		dc.SetColor(s.Background)
		dc.Clear()
	}
	render.ReplayWith(s, f.transform, &pngSurface{dc: dc, faces: make(map[float64]font.Face)}, f.screen)
	return dc.Image(), nil
}

// RenderPNG rasterizes the scene and encodes it as PNG.
func RenderPNG(s render.Scene, opts ...Option) ([]byte, error) {
	img, err := RenderRaster(s, opts...)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

var goRegular = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

type pngSurface struct {
	dc    *gg.Context
	faces map[float64]font.Face
}

// face returns a Go Regular face at size, falling back to the 7x13 bitmap
// face if the font cannot be loaded.
func (p *pngSurface) face(size float64) font.Face {
	size = math.Round(max(size, 6))
	if f, ok := p.faces[size]; ok {
		return f
	}
	var face font.Face = basicfont.Face7x13
	if fnt, err := goRegular(); err == nil {
		if f, err := opentype.NewFace(fnt, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull}); err == nil {
			face = f
		}
	}
	p.faces[size] = face
	return face
}

func (p *pngSurface) DrawRect(r geom.Rect, st render.Style) {
	p.dc.DrawRectangle(r.X, r.Y, r.W, r.H)
	p.fillStroke(st)
}

func (p *pngSurface) DrawCircle(c geom.Point, radius float64, st render.Style) {
	p.dc.DrawCircle(c.X, c.Y, radius)
	p.fillStroke(st)
}

func (p *pngSurface) DrawPath(c render.Curve, st render.Style) {
	p.dc.MoveTo(c.From.X, c.From.Y)
	p.dc.CubicTo(c.C1.X, c.C1.Y, c.C2.X, c.C2.Y, c.To.X, c.To.Y)
	st.Fill = render.Paint{}
	p.fillStroke(st)
}

func (p *pngSurface) DrawText(at geom.Point, text string, ts render.TextStyle) {
	if ts.Fill.None() {
		return
	}
	p.dc.SetFontFace(p.face(ts.Size))
	p.dc.SetColor(rgba(ts.Fill))
	ax := 0.0
	if ts.Centered {
		ax = 0.5
	}
	for i, line := range strings.Split(text, "\n") {
		y := at.Y + float64(i)*math.Max(8, ts.Size*1.3)
		p.dc.DrawStringAnchored(line, at.X, y, ax, 0)
	}
}

func (p *pngSurface) fillStroke(st render.Style) {
	if !st.Fill.None() {
		p.dc.SetColor(rgba(st.Fill))
		if st.Stroke.None() {
			p.dc.Fill()
			return
		}
		p.dc.FillPreserve()
	}
	if st.Stroke.None() {
		p.dc.ClearPath()
		return
	}
	p.dc.SetColor(rgba(st.Stroke))
	p.dc.SetLineWidth(math.Max(0.5, st.StrokeWidth))
	p.dc.Stroke()
}

func rgba(p render.Paint) color.Color {
	r, g, b := p.Color.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(math.Min(1, p.Alpha) * 255))}
}

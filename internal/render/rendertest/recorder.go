// Package rendertest provides an in-memory renderer and input manager that
// record calls, for tests of drawing and interaction code.
package rendertest

import (
	"fmt"
	"image"
	"image/color"

	"chosenoffset.com/tabletop/internal/render"
)

func init() {
	if render.NewGeoM == nil {
		render.NewGeoM = func() render.GeoM { return NewGeoM() }
	}
}

// Op is one recorded drawing call.
type Op struct {
	Kind   string
	Target *Image
	Source *Image
	Args   []float64
	Text   string
	Color  color.NRGBA
	Blend  render.Blend
}

func (o Op) String() string {
	return fmt.Sprintf("%s%v%q", o.Kind, o.Args, o.Text)
}

// Image is a fake render.Image. Images created by a Renderer record their
// fills and blits on it.
type Image struct {
	Name     string
	W, H     int
	Disposed bool
	Clears   int

	rec *Renderer
}

// NewImage returns a detached fake image, e.g. to stand in for a screen.
func NewImage(r *Renderer, name string, w, h int) *Image {
	return &Image{Name: name, W: w, H: h, rec: r}
}

func (i *Image) Bounds() image.Rectangle { return image.Rect(0, 0, i.W, i.H) }
func (i *Image) Size() (int, int)        { return i.W, i.H }
func (i *Image) Clear()                  { i.Clears++ }
func (i *Image) Dispose()                { i.Disposed = true }

func (i *Image) Fill(clr color.Color) {
	if i.rec != nil {
		i.rec.record(Op{Kind: "Fill", Target: i, Color: nrgba(clr)})
	}
}

func (i *Image) DrawImage(src render.Image, opts *render.DrawImageOptions) {
	if i.rec == nil {
		return
	}
	op := Op{Kind: "DrawImage", Target: i, Source: asImage(src)}
	if opts != nil {
		if g, ok := opts.GeoM.(*GeoM); ok {
			op.Args = []float64{g.TX, g.TY, g.SX, g.SY}
		}
	}
	i.rec.record(op)
}

// GeoM records the transform applied to a DrawImage call.
type GeoM struct {
	TX, TY, SX, SY float64
}

// NewGeoM returns an identity transform.
func NewGeoM() *GeoM { return &GeoM{SX: 1, SY: 1} }

func (g *GeoM) Translate(tx, ty float64) { g.TX += tx; g.TY += ty }
func (g *GeoM) Scale(sx, sy float64)     { g.SX *= sx; g.SY *= sy; g.TX *= sx; g.TY *= sy }
func (g *GeoM) Reset()                   { *g = GeoM{SX: 1, SY: 1} }

// Renderer records every call made through it.
type Renderer struct {
	Ops    []Op
	Images []*Image
}

// NewRenderer returns an empty recorder.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Reset forgets recorded operations.
func (r *Renderer) Reset() {
	r.Ops = nil
}

// Kinds returns the kinds of all recorded ops in order.
func (r *Renderer) Kinds() []string {
	out := make([]string, len(r.Ops))
	for i, op := range r.Ops {
		out[i] = op.Kind
	}
	return out
}

// Count returns how many ops of kind were recorded.
func (r *Renderer) Count(kind string) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Filter returns the ops of the given kind.
func (r *Renderer) Filter(kind string) []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

func (r *Renderer) NewImage(width, height int) render.Image {
	img := NewImage(r, fmt.Sprintf("image%d", len(r.Images)), width, height)
	r.Images = append(r.Images, img)
	return img
}

func (r *Renderer) NewImageFromImage(src image.Image) render.Image {
	b := src.Bounds()
	return r.NewImage(b.Dx(), b.Dy())
}

func (r *Renderer) FillCircle(dst render.Image, x, y, radius float32, clr color.Color, blend render.Blend) {
	r.record(Op{Kind: "FillCircle", Target: asImage(dst), Args: f64(x, y, radius), Color: nrgba(clr), Blend: blend})
}

func (r *Renderer) StrokeCircle(dst render.Image, x, y, radius, width float32, clr color.Color) {
	r.record(Op{Kind: "StrokeCircle", Target: asImage(dst), Args: f64(x, y, radius, width), Color: nrgba(clr)})
}

func (r *Renderer) FillRect(dst render.Image, x, y, width, height float32, clr color.Color) {
	r.record(Op{Kind: "FillRect", Target: asImage(dst), Args: f64(x, y, width, height), Color: nrgba(clr)})
}

func (r *Renderer) StrokeLine(dst render.Image, x0, y0, x1, y1, width float32, clr color.Color) {
	r.record(Op{Kind: "StrokeLine", Target: asImage(dst), Args: f64(x0, y0, x1, y1, width), Color: nrgba(clr)})
}

func (r *Renderer) DrawImageCircle(dst, src render.Image, x, y, radius, clipRadius float32) {
	r.record(Op{Kind: "DrawImageCircle", Target: asImage(dst), Source: asImage(src), Args: f64(x, y, radius, clipRadius)})
}

func (r *Renderer) DrawText(dst render.Image, text string, x, y float64, clr color.Color, opts render.TextOptions) {
	r.record(Op{Kind: "DrawText", Target: asImage(dst), Args: []float64{x, y, opts.Size}, Text: text, Color: nrgba(clr)})
}

func (r *Renderer) MeasureText(text string, size float64) (float64, float64) {
	return float64(len(text)) * size * 0.5, size
}

func (r *Renderer) record(op Op) {
	r.Ops = append(r.Ops, op)
}

func asImage(img render.Image) *Image {
	fake, _ := img.(*Image)
	return fake
}

func nrgba(c color.Color) color.NRGBA {
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}

func f64(vals ...float32) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = float64(v)
	}
	return out
}

package fog

import (
	"image/color"

	"chosenoffset.com/tabletop/internal/render"
	"chosenoffset.com/tabletop/internal/viewport"
)

var (
	// BaseColor covers everything not yet revealed.
	BaseColor = color.NRGBA{0, 0, 0, 0xbb}
	// HideColor re-darkens a hidden circle.
	HideColor = color.NRGBA{0, 0, 0, 0xdd}
)

// maskKey identifies the inputs the mask image was built from.
type maskKey struct {
	revision uint64
	view     viewport.Viewport
	w, h     int
	scale    float64
}

// Mask owns the offscreen fog image. It is rebuilt from scratch by replaying
// the log whenever the log, the view or the surface size change, and reused
// untouched otherwise.
type Mask struct {
	renderer render.Renderer
	img      render.Image
	key      maskKey
	valid    bool
	rebuilds int
}

// NewMask creates a mask drawing through r.
func NewMask(r render.Renderer) *Mask {
	return &Mask{renderer: r}
}

// Rebuilds returns how many times the mask image was repainted.
func (m *Mask) Rebuilds() int {
	return m.rebuilds
}

// Draw composites the fog of log over dst. Coordinates are logical pixels
// multiplied by scale (the device pixel ratio).
func (m *Mask) Draw(dst render.Image, log *Log, view viewport.Viewport, scale float64) {
	w, h := dst.Size()
	key := maskKey{revision: log.Revision(), view: view, w: w, h: h, scale: scale}

	if m.img == nil || !sameSize(m.img, w, h) {
		if m.img != nil {
			m.img.Dispose()
		}
		m.img = m.renderer.NewImage(w, h)
		m.valid = false
	}
	if !m.valid || m.key != key {
		m.paint(log, view, scale)
		m.key = key
		m.valid = true
	}
	dst.DrawImage(m.img, nil)
}

func (m *Mask) paint(log *Log, view viewport.Viewport, scale float64) {
	m.rebuilds++
	m.img.Clear()
	m.img.Fill(BaseColor)
	for _, a := range log.Actions() {
		sx, sy := view.WorldToScreen(a.X, a.Y)
		r := float32(view.Scale(a.Radius) * scale)
		x, y := float32(sx*scale), float32(sy*scale)
		if a.Mode == Reveal {
			m.renderer.FillCircle(m.img, x, y, r, color.Black, render.BlendErase)
		} else {
			m.renderer.FillCircle(m.img, x, y, r, HideColor, render.BlendSourceOver)
		}
	}
}

func sameSize(img render.Image, w, h int) bool {
	iw, ih := img.Size()
	return iw == w && ih == h
}

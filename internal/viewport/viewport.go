// Package viewport maps between world (map pixel) coordinates and screen
// coordinates for a pannable, zoomable camera.
package viewport

import "math"

// Default camera values for a fresh board.
const (
	DefaultX       = 80.0
	DefaultY       = 80.0
	DefaultZoom    = 1.0
	DefaultMinZoom = 0.2
	DefaultMaxZoom = 3.0

	// Wheel zoom factors for scrolling up and down.
	ZoomInFactor  = 1.08
	ZoomOutFactor = 0.92
)

// Viewport is the camera state. X and Y are the screen-space offset of the
// world origin.
type Viewport struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Zoom    float64 `json:"zoom"`
	MinZoom float64 `json:"minZoom"`
	MaxZoom float64 `json:"maxZoom"`
}

// New returns a viewport with the default offset and zoom bounds.
func New() Viewport {
	return Viewport{
		X:       DefaultX,
		Y:       DefaultY,
		Zoom:    DefaultZoom,
		MinZoom: DefaultMinZoom,
		MaxZoom: DefaultMaxZoom,
	}
}

// WorldToScreen maps a world point to the screen.
func (v *Viewport) WorldToScreen(wx, wy float64) (float64, float64) {
	return wx*v.Zoom + v.X, wy*v.Zoom + v.Y
}

// ScreenToWorld is the inverse of WorldToScreen.
func (v *Viewport) ScreenToWorld(sx, sy float64) (float64, float64) {
	return (sx - v.X) / v.Zoom, (sy - v.Y) / v.Zoom
}

// Scale converts a world length to a screen length.
func (v *Viewport) Scale(length float64) float64 {
	return length * v.Zoom
}

// Pan shifts the view by a screen-space delta. Pan is unconstrained.
func (v *Viewport) Pan(dx, dy float64) {
	v.X += dx
	v.Y += dy
}

// ZoomAt multiplies the zoom by factor while keeping the world point under
// (sx, sy) fixed on screen.
func (v *Viewport) ZoomAt(sx, sy, factor float64) {
	wx, wy := v.ScreenToWorld(sx, sy)
	v.Zoom = v.clampZoom(v.Zoom * factor)
	ax, ay := v.WorldToScreen(wx, wy)
	v.X += sx - ax
	v.Y += sy - ay
}

// Wheel applies one wheel notch anchored at the cursor. A negative deltaY
// (scrolling up) zooms in.
func (v *Viewport) Wheel(sx, sy, deltaY float64) {
	if deltaY == 0 {
		return
	}
	factor := ZoomOutFactor
	if deltaY < 0 {
		factor = ZoomInFactor
	}
	v.ZoomAt(sx, sy, factor)
}

// Fit scales a map of mapW x mapH to fit a viewW x viewH viewport and
// centres it.
func (v *Viewport) Fit(viewW, viewH, mapW, mapH float64) {
	if mapW <= 0 || mapH <= 0 {
		return
	}
	v.Zoom = v.clampZoom(math.Min(viewW/mapW, viewH/mapH))
	v.X = (viewW - mapW*v.Zoom) / 2
	v.Y = (viewH - mapH*v.Zoom) / 2
}

// Normalize repairs bounds and zoom after loading external data.
func (v *Viewport) Normalize() {
	if v.MinZoom <= 0 {
		v.MinZoom = DefaultMinZoom
	}
	if v.MaxZoom < v.MinZoom {
		v.MaxZoom = math.Max(DefaultMaxZoom, v.MinZoom)
	}
	if v.Zoom == 0 || math.IsNaN(v.Zoom) {
		v.Zoom = DefaultZoom
	}
	v.Zoom = v.clampZoom(v.Zoom)
}

func (v *Viewport) clampZoom(z float64) float64 {
	return math.Max(v.MinZoom, math.Min(v.MaxZoom, z))
}

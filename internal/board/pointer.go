package board

import "math"

// Snap rounds a world point to the nearest grid intersection when snapping
// is enabled.
func (b *Board) Snap(wx, wy float64) (float64, float64) {
	if !b.grid.Snap || b.grid.Size <= 0 {
		return wx, wy
	}
	g := b.grid.Size
	return math.Round(wx/g) * g, math.Round(wy/g) * g
}

// PointerDown starts an interaction at a screen point. The measure tool
// wins, then the fog tools, then dragging a token the active player
// controls; anything else pans the view.
func (b *Board) PointerDown(sx, sy float64) {
	b.lastX, b.lastY = sx, sy
	wx, wy := b.view.ScreenToWorld(sx, sy)

	switch {
	case b.tools.Measure:
		b.measurement = &Measurement{X1: wx, Y1: wy, X2: wx, Y2: wy}
		b.markDirty()
		return
	case b.tools.FogReveal || b.tools.FogHide:
		b.PaintFog(wx, wy)
		return
	}

	if t, ok := b.TokenAt(sx, sy); ok && b.CanControl(t) {
		b.dragID = t.ID
		return
	}
	b.panning = true
}

// PointerMove continues the current interaction. primaryHeld reports
// whether the primary button is down, which fog painting requires.
func (b *Board) PointerMove(sx, sy float64, primaryHeld bool) {
	dx, dy := sx-b.lastX, sy-b.lastY
	b.lastX, b.lastY = sx, sy

	if b.measurement != nil {
		b.measurement.X2, b.measurement.Y2 = b.view.ScreenToWorld(sx, sy)
		b.markDirty()
		return
	}

	if b.tools.FogReveal || b.tools.FogHide {
		if primaryHeld {
			b.PaintFog(b.view.ScreenToWorld(sx, sy))
		}
		return
	}

	if b.dragID != "" {
		i := b.tokenIndex(b.dragID)
		if i < 0 {
			return
		}
		tx, ty := b.Snap(b.view.ScreenToWorld(sx, sy))
		t := &b.tokens[i]
		t.X += (tx - t.X) * DragFollow
		t.Y += (ty - t.Y) * DragFollow
		b.markDirty()
		return
	}

	if b.panning {
		b.view.Pan(dx, dy)
		b.markDirty()
	}
}

// PointerUp ends any drag, pan or measurement.
func (b *Board) PointerUp() {
	b.clearPointer()
	b.markDirty()
}

// PointerLeave is handled like PointerUp.
func (b *Board) PointerLeave() {
	b.PointerUp()
}

func (b *Board) clearPointer() {
	b.measurement = nil
	b.dragID = ""
	b.panning = false
}

// Measurement returns the ruler being dragged, if any.
func (b *Board) Measurement() (Measurement, bool) {
	if b.measurement == nil {
		return Measurement{}, false
	}
	return *b.measurement, true
}

// Dragging returns the id of the token being dragged, or "".
func (b *Board) Dragging() string { return b.dragID }

// Panning reports whether a pan drag is in progress.
func (b *Board) Panning() bool { return b.panning }

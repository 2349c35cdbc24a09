package game

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"chosenoffset.com/tabletop/internal/board"
	"chosenoffset.com/tabletop/internal/render"
)

// Board palette.
var (
	colorBackground  = color.NRGBA{0x0b, 0x12, 0x20, 0xff}
	colorGridLine    = color.NRGBA{0xff, 0xff, 0xff, 0x24}
	colorTokenBase   = color.NRGBA{0x0f, 0x17, 0x2a, 0xff}
	colorPlaceholder = color.NRGBA{0x1e, 0x29, 0x3b, 0xff}
	colorGlyph       = color.NRGBA{0xa5, 0xb4, 0xfc, 0xff}
	colorNoOwner     = color.NRGBA{0x64, 0x74, 0x8b, 0xff}
	colorActiveRing  = color.NRGBA{0xff, 0xff, 0xff, 0xff}
	colorBarTrack    = color.NRGBA{0x11, 0x18, 0x27, 0xff}
	colorHealthy     = color.NRGBA{0x22, 0xc5, 0x5e, 0xff}
	colorWounded     = color.NRGBA{0xf5, 0x9e, 0x0b, 0xff}
	colorCritical    = color.NRGBA{0xef, 0x44, 0x44, 0xff}
	colorName        = color.NRGBA{0xe5, 0xe7, 0xeb, 0xff}
	colorRuler       = color.NRGBA{0x67, 0xe8, 0xf9, 0xff}
	colorRulerBox    = color.NRGBA{0x0b, 0x12, 0x20, 0xdd}
	colorRulerText   = color.NRGBA{0xf8, 0xfa, 0xfc, 0xff}
)

// Ruler dash pattern in logical pixels.
const (
	dashOn  = 8.0
	dashOff = 6.0

	// minGridStep is the smallest on-screen cell that still gets lines.
	minGridStep = 8.0
)

// Draw renders the board into an offscreen frame when it changed and shows
// that frame.
func (g *Game) Draw(screen render.Image) {
	w, h := screen.Size()
	if g.frame == nil || needsResize(g.frame, w, h) {
		if g.frame != nil {
			g.frame.Dispose()
		}
		g.frame = g.renderer.NewImage(w, h)
		g.sched.MarkDirty()
	}
	g.sched.Frame(func() { g.render(g.frame) })
	screen.DrawImage(g.frame, nil)
}

func needsResize(img render.Image, w, h int) bool {
	bounds := img.Bounds()
	return bounds.Dx() != w || bounds.Dy() != h
}

// render draws every layer in order: map, grid, tokens, ruler, fog, HUD.
// It only reads state.
func (g *Game) render(dst render.Image) {
	dst.Clear()
	dst.Fill(colorBackground)
	g.drawMap(dst)
	g.drawGrid(dst)
	g.drawTokens(dst)
	g.drawMeasurement(dst)
	g.drawFog(dst)
	g.hud.Draw(dst, g.hudState(), g.scale)
}

// px converts a logical length to backing-store pixels.
func (g *Game) px(v float64) float32 {
	return float32(v * g.scale)
}

func (g *Game) drawMap(dst render.Image) {
	m := g.board.Map()
	if !m.Loaded() {
		return
	}
	view := g.board.View()
	geo := render.NewGeoM()
	geo.Scale(view.Zoom*g.scale, view.Zoom*g.scale)
	geo.Translate(view.X*g.scale, view.Y*g.scale)
	dst.DrawImage(m.Image, &render.DrawImageOptions{GeoM: geo})
}

func (g *Game) drawGrid(dst render.Image) {
	grid := g.board.Grid()
	m := g.board.Map()
	if !grid.Enabled || !m.Loaded() {
		return
	}
	view := g.board.View()
	step := view.Scale(grid.Size)
	if step < minGridStep {
		return
	}
	x0, y0 := view.WorldToScreen(0, 0)
	x1, y1 := view.WorldToScreen(float64(m.Width), float64(m.Height))
	width := g.px(1)

	for x := x0; x <= x1; x += step {
		g.renderer.StrokeLine(dst, g.px(x), g.px(y0), g.px(x), g.px(y1), width, colorGridLine)
	}
	for y := y0; y <= y1; y += step {
		g.renderer.StrokeLine(dst, g.px(x0), g.px(y), g.px(x1), g.px(y), width, colorGridLine)
	}
}

func (g *Game) drawTokens(dst render.Image) {
	view := g.board.View()
	active := g.board.ActivePlayer()

	for _, t := range g.board.Tokens() {
		sx, sy := view.WorldToScreen(t.X, t.Y)
		size := view.Scale(t.Size)
		r := size / 2
		cx, cy := g.px(sx), g.px(sy)

		owner, hasOwner := g.board.Player(t.OwnerID)
		activeOwner := hasOwner && owner.ID == active.ID
		border := color.Color(colorNoOwner)
		if hasOwner {
			border = parseHexColor(owner.Color, colorNoOwner)
		}

		g.renderer.FillCircle(dst, cx, cy, g.px(r), colorTokenBase, render.BlendSourceOver)

		if img := g.avatar(t.Sheet.Avatar); img != nil {
			g.renderer.DrawImageCircle(dst, img, cx, cy, g.px(r), g.px(r-3))
		} else {
			g.renderer.FillCircle(dst, cx, cy, g.px(r-3), colorPlaceholder, render.BlendSourceOver)
			g.renderer.DrawText(dst, initial(t.Name), float64(cx), float64(cy), colorGlyph, render.TextOptions{
				Size:   math.Max(12, r*0.8) * g.scale,
				Align:  render.AlignCenter,
				Middle: true,
			})
		}

		borderWidth := 3.0
		if activeOwner {
			borderWidth = 5
		}
		g.renderer.StrokeCircle(dst, cx, cy, g.px(r-1), g.px(borderWidth), border)
		if activeOwner {
			g.renderer.StrokeCircle(dst, cx, cy, g.px(r+3), g.px(2), colorActiveRing)
		}

		g.drawHealthBar(dst, t, sx, sy, size)

		fontSize := math.Max(11, size*0.22)
		g.renderer.DrawText(dst, t.Name, float64(cx), (sy-r-8-fontSize)*g.scale, colorName, render.TextOptions{
			Size:  fontSize * g.scale,
			Align: render.AlignCenter,
		})
	}
}

func (g *Game) drawHealthBar(dst render.Image, t board.Token, sx, sy, size float64) {
	frac := t.HealthFraction()
	barW := size * 0.9
	barH := math.Max(6, size*0.1)
	barX := sx - barW/2
	barY := sy + size/2 + 6

	g.renderer.FillRect(dst, g.px(barX), g.px(barY), g.px(barW), g.px(barH), colorBarTrack)
	if frac > 0 {
		g.renderer.FillRect(dst, g.px(barX), g.px(barY), g.px(barW*frac), g.px(barH), healthColor(frac))
	}
}

func healthColor(frac float64) color.Color {
	switch {
	case frac > 0.5:
		return colorHealthy
	case frac > 0.25:
		return colorWounded
	default:
		return colorCritical
	}
}

// initial is the placeholder glyph: the upper-cased first letter, or "?".
func initial(name string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name))
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}

func (g *Game) drawMeasurement(dst render.Image) {
	m, ok := g.board.Measurement()
	if !ok {
		return
	}
	view := g.board.View()
	ax, ay := view.WorldToScreen(m.X1, m.Y1)
	bx, by := view.WorldToScreen(m.X2, m.Y2)

	length := math.Hypot(bx-ax, by-ay)
	if length > 0 {
		ux, uy := (bx-ax)/length, (by-ay)/length
		for d := 0.0; d < length; d += dashOn + dashOff {
			end := math.Min(d+dashOn, length)
			g.renderer.StrokeLine(dst,
				g.px(ax+ux*d), g.px(ay+uy*d), g.px(ax+ux*end), g.px(ay+uy*end),
				g.px(2), colorRuler)
		}
	}

	midX, midY := (ax+bx)/2, (ay+by)/2
	g.renderer.FillRect(dst, g.px(midX-58), g.px(midY-16), g.px(116), g.px(28), colorRulerBox)
	label := fmt.Sprintf("%.0f px | %.1f ft", m.Length(), m.Feet(g.board.Grid().Size))
	g.renderer.DrawText(dst, label, midX*g.scale, (midY-2)*g.scale, colorRulerText, render.TextOptions{
		Size:   13 * g.scale,
		Align:  render.AlignCenter,
		Middle: true,
	})
}

func (g *Game) drawFog(dst render.Image) {
	if !g.board.Map().Loaded() {
		return
	}
	g.fogMask.Draw(dst, g.board.Fog(), g.board.View(), g.scale)
}

// parseHexColor parses "#rrggbb" or "#rgb", returning fallback otherwise.
func parseHexColor(s string, fallback color.NRGBA) color.NRGBA {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return fallback
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return fallback
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

package board

import "math"

// TokenAt returns the topmost token whose on-screen disc covers (sx, sy).
// Later tokens draw on top, so the search runs from the end.
func (b *Board) TokenAt(sx, sy float64) (Token, bool) {
	for i := len(b.tokens) - 1; i >= 0; i-- {
		t := b.tokens[i]
		cx, cy := b.view.WorldToScreen(t.X, t.Y)
		r := b.view.Scale(t.Size) / 2
		if math.Hypot(sx-cx, sy-cy) <= r {
			return t, true
		}
	}
	return Token{}, false
}

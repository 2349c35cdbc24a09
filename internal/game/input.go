package game

import (
	"math"
	"time"

	"chosenoffset.com/tabletop/internal/board"
	"chosenoffset.com/tabletop/internal/render"
)

// Double-click limits for opening a token's detail panel.
const (
	doubleClickTime     = 350 * time.Millisecond
	doubleClickDistance = 6.0
)

// handleShortcuts applies the single-key shortcuts. It is skipped while the
// command prompt is open.
func (g *Game) handleShortcuts() {
	in := g.input
	ctrl := in.IsKeyPressed(render.KeyControl)

	switch {
	case ctrl && in.IsKeyJustPressed(render.KeyS):
		g.saveWithStatus()
		return
	case ctrl && in.IsKeyJustPressed(render.KeyL):
		g.loadWithStatus()
		return
	case ctrl:
		return
	}

	if in.IsKeyJustPressed(render.KeySpace) {
		g.board.PassTurn()
	}
	if in.IsKeyJustPressed(render.KeyG) {
		g.board.ToggleGrid()
	}
	if in.IsKeyJustPressed(render.KeyS) {
		g.board.ToggleSnap()
	}
	if in.IsKeyJustPressed(render.KeyM) {
		g.board.ToggleTool(board.ToolMeasure)
	}
	if in.IsKeyJustPressed(render.KeyR) {
		g.board.ToggleTool(board.ToolFogReveal)
	}
	if in.IsKeyJustPressed(render.KeyH) {
		g.board.ToggleTool(board.ToolFogHide)
	}
	if in.IsKeyJustPressed(render.KeyI) {
		g.board.SetInitiative(!g.board.Turns().InitiativeMode())
	}
	if in.IsKeyJustPressed(render.KeyC) {
		g.copyLastRoll()
	}
	if in.IsKeyJustPressed(render.KeyEscape) {
		g.closeDetail()
	}
	if in.IsKeyJustPressed(render.KeyEnter) {
		g.prompt = Prompt{Open: true}
		g.sched.MarkDirty()
	}
}

// updatePrompt edits the command line and runs it on Enter.
func (g *Game) updatePrompt() {
	in := g.input
	if in.IsKeyJustPressed(render.KeyEscape) {
		g.prompt = Prompt{}
		g.sched.MarkDirty()
		return
	}

	before := len(g.prompt.Text)
	if in.IsKeyPressed(render.KeyControl) {
		if in.IsKeyJustPressed(render.KeyV) {
			g.paste()
		}
	} else {
		g.prompt.Text = in.AppendInputChars(g.prompt.Text)
	}
	if in.IsKeyJustPressed(render.KeyBackspace) && len(g.prompt.Text) > 0 {
		g.prompt.Text = g.prompt.Text[:len(g.prompt.Text)-1]
	}
	if len(g.prompt.Text) != before {
		g.sched.MarkDirty()
	}

	if in.IsKeyJustPressed(render.KeyEnter) {
		line := string(g.prompt.Text)
		g.prompt = Prompt{}
		g.sched.MarkDirty()
		if msg, err := g.Execute(line); err != nil {
			g.ShowStatus(err.Error())
		} else if msg != "" {
			g.ShowStatus(msg)
		}
	}
}

func (g *Game) paste() {
	text, err := g.clipboard.ReadAll()
	if err != nil {
		g.log.WithError(err).Warn("Clipboard read failed")
		return
	}
	for _, r := range text {
		if r == '\n' || r == '\r' {
			continue
		}
		g.prompt.Text = append(g.prompt.Text, r)
	}
}

func (g *Game) copyLastRoll() {
	rolls := g.board.RecentRolls(1)
	if len(rolls) == 0 {
		return
	}
	if err := g.clipboard.WriteAll(rolls[0].String()); err != nil {
		g.log.WithError(err).Warn("Clipboard write failed")
		return
	}
	g.ShowStatus("Roll copied.")
}

// handleDroppedFiles loads the first decodable dropped image as the map.
func (g *Game) handleDroppedFiles() {
	for _, f := range g.input.DroppedFiles() {
		if err := g.openMapBytes(f.Data); err != nil {
			g.log.WithError(err).WithField("file", f.Name).Warn("Ignoring dropped file")
			continue
		}
		return
	}
}

// handlePointer turns the primary button and cursor into board pointer
// events. Leaving the window or losing focus ends the interaction.
func (g *Game) handlePointer(now time.Time) {
	cx, cy := g.input.GetCursorPosition()
	x, y := float64(cx)/g.scale, float64(cy)/g.scale

	inside := g.input.IsFocused() &&
		x >= 0 && y >= 0 && x < float64(g.width) && y < float64(g.height)
	if !inside {
		if g.pointerInside {
			g.board.PointerLeave()
		}
		g.pointerInside = false
		return
	}
	g.pointerInside = true

	if _, dy := g.input.Wheel(); dy != 0 {
		// A positive wheel delta scrolls up, which zooms in.
		g.board.Zoom(x, y, -dy)
	}

	left := render.MouseButtonLeft
	if g.input.IsMouseButtonJustPressed(left) {
		g.cursorX, g.cursorY = x, y
		g.board.PointerDown(x, y)
		g.checkDoubleClick(now, x, y)
	} else if x != g.cursorX || y != g.cursorY {
		g.cursorX, g.cursorY = x, y
		g.board.PointerMove(x, y, g.input.IsMouseButtonPressed(left))
	}
	if g.input.IsMouseButtonJustReleased(left) {
		g.board.PointerUp()
	}
}

func (g *Game) checkDoubleClick(now time.Time, x, y float64) {
	double := now.Sub(g.lastClickAt) <= doubleClickTime &&
		math.Hypot(x-g.lastClickX, y-g.lastClickY) <= doubleClickDistance
	g.lastClickAt, g.lastClickX, g.lastClickY = now, x, y
	if !double {
		return
	}
	g.lastClickAt = time.Time{}
	if t, ok := g.board.TokenAt(x, y); ok {
		g.openDetail(t.ID)
	}
}

// DetailToken returns the token whose detail panel is open.
func (g *Game) DetailToken() (board.Token, bool) {
	if g.detailID == "" {
		return board.Token{}, false
	}
	return g.board.Token(g.detailID)
}

func (g *Game) openDetail(id string) {
	g.detailID = id
	g.sched.MarkDirty()
}

func (g *Game) closeDetail() {
	if g.detailID == "" {
		return
	}
	g.detailID = ""
	g.sched.MarkDirty()
}

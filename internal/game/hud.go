package game

import (
	"fmt"
	"image/color"
	"strings"

	"chosenoffset.com/tabletop/internal/board"
	"chosenoffset.com/tabletop/internal/dice"
	"chosenoffset.com/tabletop/internal/render"
)

// MaxRollsShown is how many dice rolls the history panel lists.
const MaxRollsShown = 30

// HUDConfig defines the HUD layout in logical pixels.
type HUDConfig struct {
	PanelWidth float64
	FontSize   float64
	LineHeight float64
	Padding    float64
	Opacity    float64 // Panel background opacity (0-1)
}

// DefaultHUDConfig returns the default layout.
func DefaultHUDConfig() HUDConfig {
	return HUDConfig{
		PanelWidth: 280,
		FontSize:   13,
		LineHeight: 17,
		Padding:    8,
		Opacity:    0.8,
	}
}

// HUDState is everything the HUD shows for one frame.
type HUDState struct {
	Width, Height float64
	Banner        string
	BannerColor   color.NRGBA
	Players       []board.Player
	Order         []string
	ActiveIndex   int
	Initiative    bool
	Rolls         []dice.Record
	Grid          board.Grid
	Tools         board.Tools
	PromptOpen    bool
	Prompt        string
	Detail        *board.Token
	DetailOwner   string
}

// HUD draws the panels around the board: turn banner, turn order, dice
// history, tool line, command prompt and the token detail panel.
type HUD struct {
	config   HUDConfig
	renderer render.Renderer
}

// NewHUD creates a HUD with the default layout.
func NewHUD(r render.Renderer) *HUD {
	return &HUD{config: DefaultHUDConfig(), renderer: r}
}

var (
	hudText  = color.NRGBA{0xe5, 0xe7, 0xeb, 0xff}
	hudMuted = color.NRGBA{0x94, 0xa3, 0xb8, 0xff}
	hudFocus = color.NRGBA{0xfa, 0xcc, 0x15, 0xff}
)

func (h *HUD) panelColor() color.NRGBA {
	return color.NRGBA{0x0b, 0x12, 0x20, uint8(h.config.Opacity * 255)}
}

// Draw renders the HUD. Coordinates in s are logical; scale maps them to
// the backing store.
func (h *HUD) Draw(dst render.Image, s HUDState, scale float64) {
	p := hudPainter{h: h, dst: dst, scale: scale}
	h.drawBanner(p, s)
	h.drawSidebar(p, s)
	h.drawToolLine(p, s)
	if s.Detail != nil {
		h.drawDetail(p, s)
	}
	if s.PromptOpen {
		h.drawPrompt(p, s)
	}
}

func (h *HUD) drawBanner(p hudPainter, s HUDState) {
	c := h.config
	w, _ := h.renderer.MeasureText(s.Banner, c.FontSize*p.scale)
	boxW := w/p.scale + 2*c.Padding
	boxH := c.LineHeight + c.Padding
	p.rect(c.Padding, c.Padding, boxW, boxH, h.panelColor())
	p.line(c.Padding, c.Padding+boxH, c.Padding+boxW, c.Padding+boxH, 2, s.BannerColor)
	p.text(s.Banner, 2*c.Padding, c.Padding+c.Padding/2, hudText)
}

func (h *HUD) drawSidebar(p hudPainter, s HUDState) {
	c := h.config
	x := s.Width - c.PanelWidth - c.Padding
	y := c.Padding
	p.rect(x, y, c.PanelWidth, s.Height-2*c.Padding-2*c.LineHeight, h.panelColor())

	x += c.Padding
	y += c.Padding
	title := "Turn order"
	if s.Initiative {
		title += " (initiative)"
	}
	p.text(title, x, y, hudMuted)
	y += c.LineHeight

	names := make(map[string]board.Player, len(s.Players))
	for _, pl := range s.Players {
		names[pl.ID] = pl
	}
	for i, id := range s.Order {
		pl, ok := names[id]
		if !ok {
			continue
		}
		clr := hudText
		prefix := "  "
		if i == s.ActiveIndex {
			clr, prefix = hudFocus, "> "
		}
		p.circle(x+4, y+c.LineHeight/2, 4, parseHexColor(pl.Color, colorNoOwner))
		p.text(fmt.Sprintf("%s%d. %s", prefix, i+1, pl.Name), x+12, y, clr)
		y += c.LineHeight
	}

	y += c.LineHeight / 2
	p.text("Dice", x, y, hudMuted)
	y += c.LineHeight
	bottom := s.Height - 3*c.LineHeight - c.Padding
	for _, r := range s.Rolls {
		if y > bottom {
			break
		}
		p.text(r.String(), x, y, hudText)
		y += c.LineHeight
	}
}

func (h *HUD) drawToolLine(p hudPainter, s HUDState) {
	c := h.config
	tool := "pan/drag"
	switch {
	case s.Tools.Measure:
		tool = "measure"
	case s.Tools.FogReveal:
		tool = "fog reveal"
	case s.Tools.FogHide:
		tool = "fog hide"
	}
	line := fmt.Sprintf("Grid %s (%.0f) | Snap %s | Tool: %s | Fog brush %.0f | Enter: command",
		onOff(s.Grid.Enabled), s.Grid.Size, onOff(s.Grid.Snap), tool, s.Tools.FogRadius)
	y := s.Height - c.LineHeight - c.Padding
	if s.PromptOpen {
		y -= c.LineHeight + c.Padding
	}
	p.text(line, c.Padding, y, hudMuted)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (h *HUD) drawPrompt(p hudPainter, s HUDState) {
	c := h.config
	y := s.Height - c.LineHeight - c.Padding
	p.rect(0, y-c.Padding/2, s.Width, c.LineHeight+c.Padding, h.panelColor())
	p.text("> "+s.Prompt+"_", c.Padding, y, hudFocus)
}

func (h *HUD) drawDetail(p hudPainter, s HUDState) {
	c := h.config
	t := s.Detail
	lines := []string{
		t.Name,
		fmt.Sprintf("%s, level %d", t.Sheet.ClassName, t.Sheet.Level),
		fmt.Sprintf("HP %d/%d", t.Sheet.HP, t.Sheet.HPMax),
		"Owner: " + s.DetailOwner,
	}
	if t.Sheet.Notes != "" {
		lines = append(lines, "Notes: "+t.Sheet.Notes)
	}
	if len(t.Sheet.Inventory) > 0 {
		lines = append(lines, "Inventory: "+strings.Join(t.Sheet.Inventory, ", "))
	}
	lines = append(lines, "hp <n>[/<max>] | avatar <file.png> | Esc closes")

	x := c.Padding
	y := c.Padding*3 + c.LineHeight
	p.rect(x, y, c.PanelWidth, float64(len(lines))*c.LineHeight+2*c.Padding, h.panelColor())
	y += c.Padding
	for i, l := range lines {
		clr := hudText
		if i == 0 {
			clr = hudFocus
		}
		p.text(l, x+c.Padding, y, clr)
		y += c.LineHeight
	}
}

// hudPainter draws in logical coordinates.
type hudPainter struct {
	h     *HUD
	dst   render.Image
	scale float64
}

func (p hudPainter) f(v float64) float32 { return float32(v * p.scale) }

func (p hudPainter) rect(x, y, w, h float64, clr color.Color) {
	p.h.renderer.FillRect(p.dst, p.f(x), p.f(y), p.f(w), p.f(h), clr)
}

func (p hudPainter) line(x0, y0, x1, y1, width float64, clr color.Color) {
	p.h.renderer.StrokeLine(p.dst, p.f(x0), p.f(y0), p.f(x1), p.f(y1), p.f(width), clr)
}

func (p hudPainter) circle(x, y, r float64, clr color.Color) {
	p.h.renderer.FillCircle(p.dst, p.f(x), p.f(y), p.f(r), clr, render.BlendSourceOver)
}

func (p hudPainter) text(s string, x, y float64, clr color.Color) {
	p.h.renderer.DrawText(p.dst, s, x*p.scale, y*p.scale, clr, render.TextOptions{Size: p.h.config.FontSize * p.scale})
}

// hudState collects what the HUD shows from the game and board.
func (g *Game) hudState() HUDState {
	active := g.board.ActivePlayer()
	s := HUDState{
		Width:       float64(g.width),
		Height:      float64(g.height),
		Banner:      "Turn: " + active.Name,
		BannerColor: parseHexColor(active.Color, colorActiveRing),
		Players:     g.board.Players(),
		Order:       g.board.Turns().Order(),
		ActiveIndex: g.board.Turns().ActiveIndex(),
		Initiative:  g.board.Turns().InitiativeMode(),
		Rolls:       g.board.RecentRolls(MaxRollsShown),
		Grid:        g.board.Grid(),
		Tools:       g.board.Tools(),
		PromptOpen:  g.prompt.Open,
		Prompt:      string(g.prompt.Text),
	}
	if msg := g.Status(); msg != "" {
		s.Banner = msg
	}
	if t, ok := g.DetailToken(); ok {
		s.Detail = &t
		s.DetailOwner = "?"
		if owner, ok := g.board.Player(t.OwnerID); ok {
			s.DetailOwner = owner.Name
		}
	}
	return s
}

// Package board holds the live state of the shared tabletop: players, tokens,
// camera, grid, tools, fog, turn order and dice history. All mutation goes
// through Board methods, which keep records clamped and mark the board dirty.
package board

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"slices"
	"strings"

	"github.com/google/uuid"

	"chosenoffset.com/tabletop/internal/dice"
	"chosenoffset.com/tabletop/internal/fog"
	"chosenoffset.com/tabletop/internal/render"
	"chosenoffset.com/tabletop/internal/turn"
	"chosenoffset.com/tabletop/internal/viewport"
)

var (
	ErrEmptyName     = errors.New("name is required")
	ErrUnknownPlayer = errors.New("unknown player")
	ErrUnknownToken  = errors.New("unknown token")
)

// DirtyMarker is notified after every state change.
type DirtyMarker interface {
	MarkDirty()
}

// Board is the single owned aggregate of tabletop state.
type Board struct {
	view    viewport.Viewport
	viewW   float64
	viewH   float64
	mapA    MapAsset
	mapGen  uint64
	players []Player
	tokens  []Token
	grid    Grid
	tools   Tools
	history []dice.Record

	fog    *fog.Log
	turns  *turn.Manager
	roller *dice.Roller
	dirty  DirtyMarker

	// Pointer interaction, never persisted.
	measurement *Measurement
	dragID      string
	panning     bool
	lastX       float64
	lastY       float64
}

// New creates a board with only the game master seated.
func New(rng *rand.Rand, dirty DirtyMarker) *Board {
	b := &Board{
		fog:    fog.NewLog(),
		turns:  turn.NewManager(rng),
		roller: dice.NewRoller(rng),
		dirty:  dirty,
	}
	b.turns.OnActiveChanged = func(string) { b.markDirty() }
	b.reset()
	return b
}

func (b *Board) reset() {
	b.view = viewport.New()
	b.mapA = MapAsset{}
	b.mapGen++
	b.players = []Player{masterPlayer()}
	b.tokens = nil
	b.grid = DefaultGrid()
	b.tools = DefaultTools()
	b.history = nil
	b.fog.Clear()
	b.turns.Restore(nil, 0, false, b.participants())
	b.clearPointer()
}

// Reset returns the board to its freshly booted state.
func (b *Board) Reset() {
	b.reset()
	b.markDirty()
}

func masterPlayer() Player {
	return Player{ID: MasterID, Name: MasterName, Color: MasterColor, IsMaster: true}
}

func (b *Board) markDirty() {
	if b.dirty != nil {
		b.dirty.MarkDirty()
	}
}

// Roller exposes the dice roller, mostly so tests can pin its clock.
func (b *Board) Roller() *dice.Roller { return b.roller }

// View returns the camera state.
func (b *Board) View() viewport.Viewport { return b.view }

// Map returns the current map asset.
func (b *Board) Map() MapAsset { return b.mapA }

// Grid returns the grid configuration.
func (b *Board) Grid() Grid { return b.grid }

// Tools returns the tool state.
func (b *Board) Tools() Tools { return b.tools }

// Fog returns the fog paint log.
func (b *Board) Fog() *fog.Log { return b.fog }

// Turns returns the turn scheduler.
func (b *Board) Turns() *turn.Manager { return b.turns }

// Players returns the players in registration order.
func (b *Board) Players() []Player { return slices.Clone(b.players) }

// Tokens returns the tokens in draw order.
func (b *Board) Tokens() []Token { return slices.Clone(b.tokens) }

// DiceHistory returns every roll, oldest first.
func (b *Board) DiceHistory() []dice.Record { return slices.Clone(b.history) }

// RecentRolls returns up to n rolls, newest first.
func (b *Board) RecentRolls(n int) []dice.Record {
	start := max(0, len(b.history)-n)
	out := slices.Clone(b.history[start:])
	slices.Reverse(out)
	return out
}

// Player looks up a player by id.
func (b *Board) Player(id string) (Player, bool) {
	i := slices.IndexFunc(b.players, func(p Player) bool { return p.ID == id })
	if i < 0 {
		return Player{}, false
	}
	return b.players[i], true
}

// Token looks up a token by id.
func (b *Board) Token(id string) (Token, bool) {
	i := b.tokenIndex(id)
	if i < 0 {
		return Token{}, false
	}
	return b.tokens[i], true
}

func (b *Board) tokenIndex(id string) int {
	return slices.IndexFunc(b.tokens, func(t Token) bool { return t.ID == id })
}

// ActivePlayer returns the player whose turn it is, or the first player when
// the turn order points nowhere known.
func (b *Board) ActivePlayer() Player {
	if p, ok := b.Player(b.turns.Active()); ok {
		return p
	}
	return b.players[0]
}

// CanControl reports whether the active player may move t. The master moves
// anything; anyone else only their own tokens.
func (b *Board) CanControl(t Token) bool {
	ap := b.ActivePlayer()
	return ap.IsMaster || t.OwnerID == ap.ID
}

func (b *Board) participants() []turn.Participant {
	out := make([]turn.Participant, len(b.players))
	for i, p := range b.players {
		out[i] = turn.Participant{ID: p.ID, IsMaster: p.IsMaster}
	}
	return out
}

// AddPlayer seats a new player and appends them to the turn order.
func (b *Board) AddPlayer(name, color string) (Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Player{}, ErrEmptyName
	}
	if color == "" {
		color = "#60a5fa"
	}
	p := Player{ID: "player_" + uuid.NewString(), Name: name, Color: color}
	b.players = append(b.players, p)
	b.turns.Register(p.ID)
	b.markDirty()
	return p, nil
}

// AddToken places a new token owned by ownerID at the map centre, or at
// (100, 100) when no map is loaded. A size of zero picks the default.
func (b *Board) AddToken(ownerID, name string, size float64) (Token, error) {
	if _, ok := b.Player(ownerID); !ok {
		return Token{}, fmt.Errorf("add token for %q: %w", ownerID, ErrUnknownPlayer)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultTokenName
	}
	x, y := 100.0, 100.0
	if b.mapA.Width > 0 && b.mapA.Height > 0 {
		x, y = float64(b.mapA.Width)/2, float64(b.mapA.Height)/2
	}
	t := Token{
		ID:      "tok_" + uuid.NewString(),
		OwnerID: ownerID,
		Name:    name,
		Size:    clampSize(size),
		X:       x,
		Y:       y,
		Sheet:   Sheet{ClassName: DefaultClassName, Level: 1, HP: 10, HPMax: 10, Inventory: []string{}},
	}
	b.tokens = append(b.tokens, t)
	b.markDirty()
	return t, nil
}

// UpdateSheet applies an edit to a token's name and sheet.
func (b *Board) UpdateSheet(tokenID string, patch SheetPatch) (Token, error) {
	i := b.tokenIndex(tokenID)
	if i < 0 {
		return Token{}, fmt.Errorf("update sheet %q: %w", tokenID, ErrUnknownToken)
	}
	t := b.tokens[i]
	if patch.Name != nil {
		if n := strings.TrimSpace(*patch.Name); n != "" {
			t.Name = n
		}
	}
	if patch.ClassName != nil {
		t.Sheet.ClassName = strings.TrimSpace(*patch.ClassName)
	}
	if patch.Level != nil {
		t.Sheet.Level = *patch.Level
	}
	if patch.HP != nil {
		t.Sheet.HP = *patch.HP
	}
	if patch.HPMax != nil {
		t.Sheet.HPMax = *patch.HPMax
	}
	if patch.Notes != nil {
		t.Sheet.Notes = *patch.Notes
	}
	if patch.Inventory != nil {
		inv := make([]string, 0, len(patch.Inventory))
		for _, item := range patch.Inventory {
			if item = strings.TrimSpace(item); item != "" {
				inv = append(inv, item)
			}
		}
		t.Sheet.Inventory = inv
	}
	if patch.Avatar != nil {
		t.Sheet.Avatar = *patch.Avatar
	}
	t.Sheet = clampSheet(t.Sheet)
	b.tokens[i] = t
	b.markDirty()
	return t, nil
}

// SetActivePlayer hands the turn to id. Unknown ids are ignored.
func (b *Board) SetActivePlayer(id string) {
	b.turns.SetActive(id)
}

// PassTurn advances to the next player.
func (b *Board) PassTurn() {
	b.turns.Pass()
}

// SetInitiative switches between initiative order and registration order.
func (b *Board) SetInitiative(on bool) {
	if on {
		b.turns.EnterInitiative(b.participants())
	} else {
		b.turns.ExitInitiative(b.participants())
	}
	b.markDirty()
}

// ToggleTool flips tool and switches the other tools off.
func (b *Board) ToggleTool(tool Tool) {
	b.tools.Measure = tool == ToolMeasure && !b.tools.Measure
	b.tools.FogReveal = tool == ToolFogReveal && !b.tools.FogReveal
	b.tools.FogHide = tool == ToolFogHide && !b.tools.FogHide
	b.markDirty()
}

// ToggleGrid shows or hides the grid.
func (b *Board) ToggleGrid() {
	b.grid.Enabled = !b.grid.Enabled
	b.markDirty()
}

// ToggleSnap turns grid snapping for dragged tokens on or off.
func (b *Board) ToggleSnap() {
	b.grid.Snap = !b.grid.Snap
	b.markDirty()
}

// SetGridSize sets the cell size. Non-positive values restore the default;
// anything else is raised to the minimum.
func (b *Board) SetGridSize(size float64) {
	b.grid.Size = atLeast(size, MinGridSize, DefaultGridSize)
	b.markDirty()
}

// SetFogRadius sets the brush radius with the same rules as SetGridSize.
func (b *Board) SetFogRadius(radius float64) {
	b.tools.FogRadius = atLeast(radius, MinFogRadius, DefaultFogRadius)
	b.markDirty()
}

func atLeast(v, lo, def float64) float64 {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return math.Max(lo, v)
}

// PaintFog records one brush stroke of the active fog tool at a world point.
// Without a fog tool it does nothing.
func (b *Board) PaintFog(wx, wy float64) {
	var mode fog.Mode
	switch {
	case b.tools.FogReveal:
		mode = fog.Reveal
	case b.tools.FogHide:
		mode = fog.Hide
	default:
		return
	}
	b.fog.Push(fog.Action{X: wx, Y: wy, Radius: b.tools.FogRadius, Mode: mode})
	b.markDirty()
}

// RollDice rolls expr for the active player and records the result.
func (b *Board) RollDice(expr string) (dice.Record, error) {
	rec, err := b.roller.Roll(expr, b.ActivePlayer().Name)
	if err != nil {
		return dice.Record{}, err
	}
	b.history = append(b.history, *rec)
	b.markDirty()
	return *rec, nil
}

// SetViewSize records the logical canvas size used to fit maps.
func (b *Board) SetViewSize(w, h float64) {
	if b.viewW == w && b.viewH == h {
		return
	}
	b.viewW, b.viewH = w, h
	b.markDirty()
}

// Zoom applies one wheel step anchored at a screen point.
func (b *Board) Zoom(sx, sy, deltaY float64) {
	b.view.Wheel(sx, sy, deltaY)
	b.markDirty()
}

// SetView replaces the camera, keeping the zoom within its bounds.
func (b *Board) SetView(v viewport.Viewport) {
	v.Normalize()
	b.view = v
	b.markDirty()
}

// BeginMapLoad starts a new map request and returns its generation. Any
// earlier request still in flight becomes stale.
func (b *Board) BeginMapLoad() uint64 {
	b.mapGen++
	return b.mapGen
}

// MapGeneration returns the generation of the newest map request.
func (b *Board) MapGeneration() uint64 {
	return b.mapGen
}

// ApplyMap installs a decoded map if gen is still the newest request, then
// fits it to the view. It reports whether the map was applied.
func (b *Board) ApplyMap(gen uint64, src string, img render.Image, width, height int) bool {
	if gen != b.mapGen || img == nil || width <= 0 || height <= 0 {
		return false
	}
	b.mapA = MapAsset{Src: src, Image: img, Width: width, Height: height}
	if b.viewW > 0 && b.viewH > 0 {
		b.view.Fit(b.viewW, b.viewH, float64(width), float64(height))
	}
	b.markDirty()
	return true
}

// ClearMap removes the map and invalidates any pending map request.
func (b *Board) ClearMap() {
	b.mapGen++
	b.mapA = MapAsset{}
	b.markDirty()
}

// State is a full replacement of the persisted parts of a board.
type State struct {
	View           *viewport.Viewport
	Players        []Player
	Tokens         []Token
	TurnOrder      []string
	ActiveIndex    int
	InitiativeMode bool
	Grid           Grid
	Tools          Tools
	DiceHistory    []dice.Record
	FogActions     []fog.Action
}

// Restore replaces the board's persisted state. Players are de-duplicated
// and always include the master; tokens are clamped and tokens of unknown
// owners are handed to the master. The map is left alone and pointer
// interaction is cleared.
func (b *Board) Restore(s State) {
	players := make([]Player, 0, len(s.Players)+1)
	seen := make(map[string]bool)
	hasMaster := false
	for _, p := range s.Players {
		if p.ID == "" || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		if p.ID == MasterID {
			p.IsMaster = true
			hasMaster = true
		} else {
			p.IsMaster = false
		}
		players = append(players, p)
	}
	if !hasMaster {
		players = append([]Player{masterPlayer()}, players...)
		seen[MasterID] = true
	}
	b.players = players

	tokens := make([]Token, 0, len(s.Tokens))
	for _, t := range s.Tokens {
		if t.ID == "" {
			t.ID = "tok_" + uuid.NewString()
		}
		if !seen[t.OwnerID] {
			t.OwnerID = MasterID
		}
		if strings.TrimSpace(t.Name) == "" {
			t.Name = DefaultTokenName
		}
		t.Size = clampSize(t.Size)
		t.Sheet = clampSheet(t.Sheet)
		tokens = append(tokens, t)
	}
	b.tokens = tokens

	b.turns.Restore(s.TurnOrder, s.ActiveIndex, s.InitiativeMode, b.participants())

	s.Grid.Size = atLeast(s.Grid.Size, MinGridSize, DefaultGridSize)
	b.grid = s.Grid
	s.Tools.FogRadius = atLeast(s.Tools.FogRadius, MinFogRadius, DefaultFogRadius)
	b.tools = s.Tools
	if b.tools.Measure {
		b.tools.FogReveal, b.tools.FogHide = false, false
	} else if b.tools.FogReveal {
		b.tools.FogHide = false
	}

	b.history = slices.Clone(s.DiceHistory)
	b.fog.Replace(s.FogActions)
	if s.View != nil {
		v := *s.View
		v.Normalize()
		b.view = v
	}
	b.clearPointer()
	b.markDirty()
}

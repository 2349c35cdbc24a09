package board

import (
	"math"

	"chosenoffset.com/tabletop/internal/render"
)

// MasterID is the id of the game master, who exists on every board.
const MasterID = "master"

// Defaults and limits for board records.
const (
	MasterName  = "Game Master"
	MasterColor = "#facc15"

	DefaultTokenName = "Adventurer"
	DefaultClassName = "Class"
	DefaultTokenSize = 56.0
	MinTokenSize     = 20.0
	MaxTokenSize     = 220.0

	DefaultGridSize  = 50.0
	MinGridSize      = 20.0
	DefaultFogRadius = 80.0
	MinFogRadius     = 20.0

	// DragFollow is the fraction of the remaining distance a dragged token
	// covers per pointer move.
	DragFollow = 0.4

	// FeetPerCell converts measured grid cells to feet.
	FeetPerCell = 5.0
)

// Player is a participant sitting at the shared screen.
type Player struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	IsMaster bool   `json:"isMaster"`
}

// Sheet is the character sheet attached to a token.
type Sheet struct {
	ClassName string   `json:"className"`
	Level     int      `json:"level"`
	HP        int      `json:"hp"`
	HPMax     int      `json:"hpMax"`
	Notes     string   `json:"notes"`
	Inventory []string `json:"inventory"`
	Avatar    string   `json:"avatar,omitempty"`
}

// Token is a movable marker on the map. X and Y are the world-space centre.
type Token struct {
	ID      string  `json:"id"`
	OwnerID string  `json:"ownerId"`
	Name    string  `json:"name"`
	Size    float64 `json:"size"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Sheet   Sheet   `json:"sheet"`
}

// HealthFraction returns HP/HPMax clamped to [0, 1].
func (t Token) HealthFraction() float64 {
	hpMax := max(1, t.Sheet.HPMax)
	return math.Max(0, math.Min(1, float64(t.Sheet.HP)/float64(hpMax)))
}

// SheetPatch carries the fields of a sheet edit. Nil fields are left alone.
type SheetPatch struct {
	Name      *string
	ClassName *string
	Level     *int
	HP        *int
	HPMax     *int
	Notes     *string
	Inventory []string
	Avatar    *string
}

// Grid is the overlay grid configuration.
type Grid struct {
	Enabled bool    `json:"enabled"`
	Size    float64 `json:"size"`
	Snap    bool    `json:"snap"`
}

// DefaultGrid returns the grid of a fresh board.
func DefaultGrid() Grid {
	return Grid{Enabled: true, Size: DefaultGridSize}
}

// Tool is one of the mutually exclusive pointer tools.
type Tool int

const (
	ToolMeasure Tool = iota
	ToolFogReveal
	ToolFogHide
)

// Tools holds the tool toggles. At most one of the flags is set.
type Tools struct {
	Measure   bool    `json:"measure"`
	FogReveal bool    `json:"fogReveal"`
	FogHide   bool    `json:"fogHide"`
	FogRadius float64 `json:"fogRadius"`
}

// DefaultTools returns the tool state of a fresh board.
func DefaultTools() Tools {
	return Tools{FogRadius: DefaultFogRadius}
}

// Measurement is an in-progress ruler drag in world coordinates.
type Measurement struct {
	X1, Y1, X2, Y2 float64
}

// Length returns the world-space distance.
func (m Measurement) Length() float64 {
	return math.Hypot(m.X2-m.X1, m.Y2-m.Y1)
}

// Feet converts the length to feet at five feet per grid cell.
func (m Measurement) Feet(gridSize float64) float64 {
	if gridSize <= 0 {
		return 0
	}
	return m.Length() / gridSize * FeetPerCell
}

// MapAsset is the background map. Image stays nil until the decode finishes.
type MapAsset struct {
	Src    string
	Image  render.Image
	Width  int
	Height int
}

// Loaded reports whether a decoded map is present.
func (m MapAsset) Loaded() bool {
	return m.Image != nil
}

func clampSize(size float64) float64 {
	if size <= 0 || math.IsNaN(size) {
		size = DefaultTokenSize
	}
	return math.Max(MinTokenSize, math.Min(MaxTokenSize, size))
}

func clampSheet(s Sheet) Sheet {
	s.Level = max(1, s.Level)
	s.HP = max(0, s.HP)
	s.HPMax = max(1, s.HPMax)
	if s.Inventory == nil {
		s.Inventory = []string{}
	}
	return s
}

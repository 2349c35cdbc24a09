// Package snapshot converts a board to and from the flat JSON document that
// is persisted between sessions.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"

	"chosenoffset.com/tabletop/internal/board"
	"chosenoffset.com/tabletop/internal/dice"
	"chosenoffset.com/tabletop/internal/fog"
	"chosenoffset.com/tabletop/internal/viewport"
)

// ErrEmpty is returned by Decode for empty input.
var ErrEmpty = errors.New("empty snapshot")

// MapRef keeps the map's source reference instead of the decoded image.
type MapRef struct {
	Src    string `json:"src"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// GridConfig is the persisted grid. Missing fields keep their defaults.
type GridConfig struct {
	Enabled *bool    `json:"enabled,omitempty"`
	Size    *float64 `json:"size,omitempty"`
	Snap    *bool    `json:"snap,omitempty"`
}

// ToolConfig is the persisted tool state. Missing fields keep their defaults.
type ToolConfig struct {
	Measure   *bool    `json:"measure,omitempty"`
	FogReveal *bool    `json:"fogReveal,omitempty"`
	FogHide   *bool    `json:"fogHide,omitempty"`
	FogRadius *float64 `json:"fogRadius,omitempty"`
}

// Snapshot is the persisted projection of a board. Pointer interaction and
// decoded images are never part of it.
type Snapshot struct {
	Map               *MapRef            `json:"map,omitempty"`
	View              *viewport.Viewport `json:"view,omitempty"`
	Players           []board.Player     `json:"players,omitempty"`
	Tokens            []board.Token      `json:"tokens"`
	ActivePlayerIndex int                `json:"activePlayerIndex"`
	TurnOrder         []string           `json:"turnOrder"`
	InitiativeMode    bool               `json:"initiativeMode"`
	Grid              *GridConfig        `json:"grid,omitempty"`
	Tools             *ToolConfig        `json:"tools,omitempty"`
	DiceHistory       []dice.Record      `json:"diceHistory"`
	FogActions        []fog.Action       `json:"fogActions"`
}

// Serialize projects b into a snapshot.
func Serialize(b *board.Board) *Snapshot {
	m := b.Map()
	view := b.View()
	grid := b.Grid()
	tools := b.Tools()

	s := &Snapshot{
		View:              &view,
		Players:           b.Players(),
		Tokens:            b.Tokens(),
		ActivePlayerIndex: b.Turns().ActiveIndex(),
		TurnOrder:         b.Turns().Order(),
		InitiativeMode:    b.Turns().InitiativeMode(),
		Grid:              &GridConfig{Enabled: &grid.Enabled, Size: &grid.Size, Snap: &grid.Snap},
		Tools: &ToolConfig{
			Measure:   &tools.Measure,
			FogReveal: &tools.FogReveal,
			FogHide:   &tools.FogHide,
			FogRadius: &tools.FogRadius,
		},
		DiceHistory: b.DiceHistory(),
		FogActions:  append([]fog.Action(nil), b.Fog().Actions()...),
	}
	if m.Src != "" {
		s.Map = &MapRef{Src: m.Src, Width: m.Width, Height: m.Height}
	}
	return s
}

// Encode serializes b to JSON.
func Encode(b *board.Board) ([]byte, error) {
	data, err := json.Marshal(Serialize(b))
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses persisted bytes. Nothing is applied to any board, so a
// corrupt document never leaves a half-loaded board behind.
func Decode(data []byte) (*Snapshot, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}

// Hydrate applies s to b and returns the map source that still has to be
// decoded, or "" when the map should be cleared. A nil snapshot or missing
// fields fall back to defaults; missing players keep the current ones.
func Hydrate(b *board.Board, s *Snapshot) string {
	if s == nil {
		s = &Snapshot{}
	}

	players := s.Players
	if players == nil {
		players = b.Players()
	}

	b.Restore(board.State{
		View:           s.View,
		Players:        players,
		Tokens:         s.Tokens,
		TurnOrder:      s.TurnOrder,
		ActiveIndex:    s.ActivePlayerIndex,
		InitiativeMode: s.InitiativeMode,
		Grid:           mergeGrid(s.Grid),
		Tools:          mergeTools(s.Tools),
		DiceHistory:    s.DiceHistory,
		FogActions:     s.FogActions,
	})

	if s.Map == nil {
		return ""
	}
	return s.Map.Src
}

func mergeGrid(c *GridConfig) board.Grid {
	g := board.DefaultGrid()
	if c == nil {
		return g
	}
	if c.Enabled != nil {
		g.Enabled = *c.Enabled
	}
	if c.Size != nil {
		g.Size = *c.Size
	}
	if c.Snap != nil {
		g.Snap = *c.Snap
	}
	return g
}

func mergeTools(c *ToolConfig) board.Tools {
	t := board.DefaultTools()
	if c == nil {
		return t
	}
	if c.Measure != nil {
		t.Measure = *c.Measure
	}
	if c.FogReveal != nil {
		t.FogReveal = *c.FogReveal
	}
	if c.FogHide != nil {
		t.FogHide = *c.FogHide
	}
	if c.FogRadius != nil {
		t.FogRadius = *c.FogRadius
	}
	return t
}

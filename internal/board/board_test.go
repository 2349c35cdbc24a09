package board

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"chosenoffset.com/tabletop/internal/fog"
	"chosenoffset.com/tabletop/internal/render"
)

type countingMarker struct{ n int }

func (c *countingMarker) MarkDirty() { c.n++ }

func newTestBoard(t *testing.T) (*Board, *countingMarker) {
	t.Helper()
	m := &countingMarker{}
	return New(rand.New(rand.NewSource(1)), m), m
}

func TestNewBoardSeatsMaster(t *testing.T) {
	b, _ := newTestBoard(t)

	players := b.Players()
	if len(players) != 1 || players[0].ID != MasterID || !players[0].IsMaster {
		t.Fatalf("Expected only the master, got %+v", players)
	}
	if players[0].Color != MasterColor {
		t.Errorf("Expected master color %s, got %s", MasterColor, players[0].Color)
	}
	if b.ActivePlayer().ID != MasterID {
		t.Errorf("Expected master to be active, got %s", b.ActivePlayer().ID)
	}
	if !b.Grid().Enabled || b.Grid().Size != DefaultGridSize || b.Grid().Snap {
		t.Errorf("Unexpected default grid %+v", b.Grid())
	}
	if b.Tools().FogRadius != DefaultFogRadius {
		t.Errorf("Expected fog radius %v, got %v", DefaultFogRadius, b.Tools().FogRadius)
	}
}

func TestAddPlayerRegistersTurn(t *testing.T) {
	b, m := newTestBoard(t)

	p, err := b.AddPlayer("  Aria ", "#ff0000")
	if err != nil {
		t.Fatalf("AddPlayer failed: %v", err)
	}
	if p.Name != "Aria" || p.IsMaster {
		t.Errorf("Unexpected player %+v", p)
	}
	order := b.Turns().Order()
	if len(order) != 2 || order[1] != p.ID {
		t.Errorf("Expected player appended to turn order, got %v", order)
	}
	if m.n == 0 {
		t.Error("Expected board to be marked dirty")
	}

	if _, err := b.AddPlayer("   ", ""); !errors.Is(err, ErrEmptyName) {
		t.Errorf("Expected ErrEmptyName, got %v", err)
	}
}

func TestAddTokenDefaults(t *testing.T) {
	b, _ := newTestBoard(t)

	tok, err := b.AddToken(MasterID, "", 0)
	if err != nil {
		t.Fatalf("AddToken failed: %v", err)
	}
	if tok.Name != DefaultTokenName || tok.Size != DefaultTokenSize {
		t.Errorf("Unexpected defaults %+v", tok)
	}
	if tok.X != 100 || tok.Y != 100 {
		t.Errorf("Expected spawn at (100,100) without a map, got (%v,%v)", tok.X, tok.Y)
	}
	if tok.Sheet.Level != 1 || tok.Sheet.HP != 10 || tok.Sheet.HPMax != 10 || tok.Sheet.ClassName != DefaultClassName {
		t.Errorf("Unexpected default sheet %+v", tok.Sheet)
	}

	big, _ := b.AddToken(MasterID, "Ogre", 999)
	small, _ := b.AddToken(MasterID, "Rat", 3)
	if big.Size != MaxTokenSize || small.Size != MinTokenSize {
		t.Errorf("Expected sizes clamped to [%v,%v], got %v and %v", MinTokenSize, MaxTokenSize, big.Size, small.Size)
	}

	if _, err := b.AddToken("nobody", "x", 0); !errors.Is(err, ErrUnknownPlayer) {
		t.Errorf("Expected ErrUnknownPlayer, got %v", err)
	}
}

func TestAddTokenSpawnsAtMapCentre(t *testing.T) {
	b, _ := newTestBoard(t)
	gen := b.BeginMapLoad()
	if !b.ApplyMap(gen, "map.png", fakeImage{}, 1000, 600) {
		t.Fatal("Expected map to apply")
	}
	tok, _ := b.AddToken(MasterID, "Hero", 0)
	if tok.X != 500 || tok.Y != 300 {
		t.Errorf("Expected spawn at map centre, got (%v,%v)", tok.X, tok.Y)
	}
}

func TestHealthFractionClamped(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		hp, hpMax int
		want      float64
	}{
		{"half", 5, 10, 0.5},
		{"overhealed", 15, 10, 1},
		{"negative", -4, 10, 0},
		{"zero max", 3, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := Token{Sheet: Sheet{HP: tt.hp, HPMax: tt.hpMax}}
			if got := tok.HealthFraction(); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestUpdateSheetClamps(t *testing.T) {
	b, _ := newTestBoard(t)
	tok, _ := b.AddToken(MasterID, "Hero", 0)

	name, class := "  ", "Wizard"
	level, hp, hpMax := 0, -5, 0
	got, err := b.UpdateSheet(tok.ID, SheetPatch{
		Name:      &name,
		ClassName: &class,
		Level:     &level,
		HP:        &hp,
		HPMax:     &hpMax,
		Inventory: []string{" rope ", "", "torch"},
	})
	if err != nil {
		t.Fatalf("UpdateSheet failed: %v", err)
	}
	if got.Name != "Hero" {
		t.Errorf("Expected blank name to keep %q, got %q", "Hero", got.Name)
	}
	if got.Sheet.ClassName != "Wizard" || got.Sheet.Level != 1 || got.Sheet.HP != 0 || got.Sheet.HPMax != 1 {
		t.Errorf("Unexpected clamped sheet %+v", got.Sheet)
	}
	if len(got.Sheet.Inventory) != 2 || got.Sheet.Inventory[0] != "rope" {
		t.Errorf("Unexpected inventory %v", got.Sheet.Inventory)
	}

	if _, err := b.UpdateSheet("tok_missing", SheetPatch{}); !errors.Is(err, ErrUnknownToken) {
		t.Errorf("Expected ErrUnknownToken, got %v", err)
	}
}

func TestToggleToolIsExclusive(t *testing.T) {
	b, _ := newTestBoard(t)

	b.ToggleTool(ToolMeasure)
	b.ToggleTool(ToolFogReveal)
	tools := b.Tools()
	if tools.Measure || !tools.FogReveal || tools.FogHide {
		t.Errorf("Expected only fog reveal, got %+v", tools)
	}
	b.ToggleTool(ToolFogReveal)
	if b.Tools().FogReveal {
		t.Error("Expected second toggle to switch the tool off")
	}
}

func TestGridAndFogRadiusLimits(t *testing.T) {
	b, _ := newTestBoard(t)

	b.SetGridSize(5)
	if b.Grid().Size != MinGridSize {
		t.Errorf("Expected grid size %v, got %v", MinGridSize, b.Grid().Size)
	}
	b.SetGridSize(0)
	if b.Grid().Size != DefaultGridSize {
		t.Errorf("Expected grid size %v, got %v", DefaultGridSize, b.Grid().Size)
	}
	b.SetFogRadius(10)
	if b.Tools().FogRadius != MinFogRadius {
		t.Errorf("Expected fog radius %v, got %v", MinFogRadius, b.Tools().FogRadius)
	}
	b.SetFogRadius(math.NaN())
	if b.Tools().FogRadius != DefaultFogRadius {
		t.Errorf("Expected fog radius %v, got %v", DefaultFogRadius, b.Tools().FogRadius)
	}
}

func TestRollDiceRecordsHistory(t *testing.T) {
	b, _ := newTestBoard(t)

	for i := 0; i < 35; i++ {
		if _, err := b.RollDice("1d20"); err != nil {
			t.Fatalf("RollDice failed: %v", err)
		}
	}
	if _, err := b.RollDice("abc"); err == nil {
		t.Fatal("Expected an error for a malformed expression")
	}
	if len(b.DiceHistory()) != 35 {
		t.Errorf("Expected 35 rolls in history, got %d", len(b.DiceHistory()))
	}
	recent := b.RecentRolls(30)
	if len(recent) != 30 {
		t.Fatalf("Expected 30 recent rolls, got %d", len(recent))
	}
	last := b.DiceHistory()[34]
	if recent[0].Total != last.Total || !recent[0].At.Equal(last.At) {
		t.Error("Expected newest roll first")
	}
	if recent[0].PlayerName != MasterName {
		t.Errorf("Expected roll by %q, got %q", MasterName, recent[0].PlayerName)
	}
}

func TestStaleMapIsDiscarded(t *testing.T) {
	b, _ := newTestBoard(t)
	b.SetViewSize(800, 600)

	first := b.BeginMapLoad()
	second := b.BeginMapLoad()
	if b.ApplyMap(first, "old.png", fakeImage{}, 100, 100) {
		t.Fatal("Expected stale decode to be discarded")
	}
	if !b.ApplyMap(second, "new.png", fakeImage{}, 1600, 1200) {
		t.Fatal("Expected current decode to apply")
	}
	if b.Map().Src != "new.png" {
		t.Errorf("Expected new.png, got %q", b.Map().Src)
	}
	if v := b.View(); v.Zoom != 0.5 || v.X != 0 || v.Y != 0 {
		t.Errorf("Expected map fitted at zoom 0.5, got %+v", v)
	}

	pending := b.BeginMapLoad()
	b.ClearMap()
	if b.ApplyMap(pending, "late.png", fakeImage{}, 10, 10) {
		t.Error("Expected decode started before ClearMap to be discarded")
	}
}

func TestRestoreRepairsState(t *testing.T) {
	b, _ := newTestBoard(t)
	b.PointerDown(0, 0)

	b.Restore(State{
		Players: []Player{
			{ID: "p1", Name: "Aria", IsMaster: true},
			{ID: "p1", Name: "Dupe"},
			{ID: ""},
		},
		Tokens: []Token{
			{ID: "t1", OwnerID: "ghost", Size: 500, Sheet: Sheet{HP: -1}},
		},
		TurnOrder:   []string{"ghost", "p1"},
		ActiveIndex: 7,
		Grid:        Grid{Enabled: false, Size: 0},
		Tools:       Tools{Measure: true, FogHide: true},
		FogActions:  []fog.Action{{X: 1, Radius: 10, Mode: fog.Hide}},
	})

	players := b.Players()
	if len(players) != 2 || players[0].ID != MasterID || players[1].ID != "p1" || players[1].IsMaster {
		t.Fatalf("Unexpected players %+v", players)
	}
	tok, ok := b.Token("t1")
	if !ok {
		t.Fatal("Expected token t1")
	}
	if tok.OwnerID != MasterID || tok.Size != MaxTokenSize || tok.Sheet.HPMax != 1 || tok.Name != DefaultTokenName {
		t.Errorf("Unexpected repaired token %+v", tok)
	}
	order := b.Turns().Order()
	if len(order) != 1 || order[0] != "p1" || b.Turns().ActiveIndex() != 0 {
		t.Errorf("Unexpected turn state %v @ %d", order, b.Turns().ActiveIndex())
	}
	if b.Grid().Size != DefaultGridSize || b.Grid().Enabled {
		t.Errorf("Unexpected grid %+v", b.Grid())
	}
	if tools := b.Tools(); !tools.Measure || tools.FogHide || tools.FogRadius != DefaultFogRadius {
		t.Errorf("Unexpected tools %+v", tools)
	}
	if b.Fog().Len() != 1 {
		t.Errorf("Expected 1 fog action, got %d", b.Fog().Len())
	}
	if b.Panning() || b.Dragging() != "" {
		t.Error("Expected pointer state cleared")
	}
}

func TestResetClearsBoard(t *testing.T) {
	b, _ := newTestBoard(t)
	b.AddPlayer("Aria", "")
	b.AddToken(MasterID, "Hero", 0)
	b.ToggleTool(ToolFogReveal)
	b.PaintFog(1, 1)

	b.Reset()
	if len(b.Players()) != 1 || len(b.Tokens()) != 0 || b.Fog().Len() != 0 || b.Tools().FogReveal {
		t.Error("Expected a fresh board after Reset")
	}
}

// fakeImage satisfies render.Image for map tests.
type fakeImage struct{ render.Image }

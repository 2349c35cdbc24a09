package rendertest

import "chosenoffset.com/tabletop/internal/render"

// Input is a scriptable render.InputManager. Tests set the fields for the
// next tick and call Advance afterwards to clear edge-triggered state.
type Input struct {
	CursorX, CursorY int
	Held             map[render.MouseButton]bool
	Pressed          map[render.MouseButton]bool
	Released         map[render.MouseButton]bool
	Keys             map[render.Key]bool
	JustKeys         map[render.Key]bool
	WheelY           float64
	Chars            []rune
	Unfocused        bool
	Dropped          []render.DroppedFile
}

// NewInput returns an idle input with the cursor at the origin.
func NewInput() *Input {
	return &Input{
		Held:     make(map[render.MouseButton]bool),
		Pressed:  make(map[render.MouseButton]bool),
		Released: make(map[render.MouseButton]bool),
		Keys:     make(map[render.Key]bool),
		JustKeys: make(map[render.Key]bool),
	}
}

// Press moves the cursor and starts a button press this tick.
func (in *Input) Press(x, y int) {
	in.CursorX, in.CursorY = x, y
	in.Held[render.MouseButtonLeft] = true
	in.Pressed[render.MouseButtonLeft] = true
}

// Move moves the cursor, keeping the button state.
func (in *Input) Move(x, y int) {
	in.CursorX, in.CursorY = x, y
}

// Release lets go of the primary button this tick.
func (in *Input) Release() {
	in.Held[render.MouseButtonLeft] = false
	in.Released[render.MouseButtonLeft] = true
}

// Tap marks key as just pressed this tick.
func (in *Input) Tap(key render.Key) {
	in.JustKeys[key] = true
}

// Advance clears the edge-triggered state after a tick.
func (in *Input) Advance() {
	in.Pressed = make(map[render.MouseButton]bool)
	in.Released = make(map[render.MouseButton]bool)
	in.JustKeys = make(map[render.Key]bool)
	in.WheelY = 0
	in.Chars = nil
	in.Dropped = nil
}

func (in *Input) IsKeyPressed(key render.Key) bool     { return in.Keys[key] }
func (in *Input) IsKeyJustPressed(key render.Key) bool { return in.JustKeys[key] }
func (in *Input) GetCursorPosition() (int, int)        { return in.CursorX, in.CursorY }
func (in *Input) IsMouseButtonPressed(b render.MouseButton) bool {
	return in.Held[b]
}
func (in *Input) IsMouseButtonJustPressed(b render.MouseButton) bool {
	return in.Pressed[b]
}
func (in *Input) IsMouseButtonJustReleased(b render.MouseButton) bool {
	return in.Released[b]
}
func (in *Input) Wheel() (float64, float64) { return 0, in.WheelY }
func (in *Input) AppendInputChars(runes []rune) []rune {
	return append(runes, in.Chars...)
}
func (in *Input) IsFocused() bool                    { return !in.Unfocused }
func (in *Input) DroppedFiles() []render.DroppedFile { return in.Dropped }

package render

import (
	"image"
	"image/color"
)

// Blend selects how a shape is composited onto its destination.
type Blend int

const (
	// BlendSourceOver paints the source over the destination.
	BlendSourceOver Blend = iota
	// BlendErase removes destination coverage where the source is opaque.
	BlendErase
)

// TextAlign is the horizontal anchor of a text run.
type TextAlign int

const (
	AlignStart TextAlign = iota
	AlignCenter
	AlignEnd
)

// TextOptions controls text layout.
type TextOptions struct {
	Size float64
	// Align anchors horizontally at x.
	Align TextAlign
	// Middle anchors vertically at y instead of using y as the top.
	Middle bool
}

// Renderer draws shapes, images and text onto Images. The board only talks
// to this interface; internal/render/ebiten is the real backend and
// rendertest records calls for tests.
type Renderer interface {
	NewImage(width, height int) Image
	NewImageFromImage(src image.Image) Image

	FillCircle(dst Image, x, y, radius float32, clr color.Color, blend Blend)
	StrokeCircle(dst Image, x, y, radius float32, strokeWidth float32, clr color.Color)
	FillRect(dst Image, x, y, width, height float32, clr color.Color)
	StrokeLine(dst Image, x0, y0, x1, y1 float32, strokeWidth float32, clr color.Color)

	// DrawImageCircle draws src scaled into the square of side 2*radius
	// centred at (x, y), clipped to a circle of clipRadius.
	DrawImageCircle(dst, src Image, x, y, radius, clipRadius float32)

	// DrawText draws text with its top-left (or anchor per opts) at (x, y).
	DrawText(dst Image, text string, x, y float64, clr color.Color, opts TextOptions)
	MeasureText(text string, size float64) (width, height float64)
}

// Image is a GPU surface: a render target and a blit source.
type Image interface {
	Bounds() image.Rectangle
	Size() (width, height int)

	Fill(clr color.Color)
	Clear()

	// DrawImage composites src onto the image, transformed by opts.GeoM.
	DrawImage(src Image, opts *DrawImageOptions)

	// Dispose frees the surface; it must not be used afterwards.
	Dispose()
}

// DrawImageOptions carries the transform of a blit. A nil GeoM is identity.
type DrawImageOptions struct {
	GeoM GeoM
}

// GeoM is an affine transform built up by successive calls.
type GeoM interface {
	Translate(tx, ty float64)
	Scale(sx, sy float64)
	Reset()
}

// NewGeoM returns an identity transform of the active backend. The backend
// package sets it from its init function.
var NewGeoM func() GeoM

// InputManager exposes the keyboard, mouse and window input of one tick.
type InputManager interface {
	IsKeyPressed(key Key) bool
	IsKeyJustPressed(key Key) bool
	GetCursorPosition() (x, y int)
	IsMouseButtonPressed(button MouseButton) bool
	IsMouseButtonJustPressed(button MouseButton) bool
	IsMouseButtonJustReleased(button MouseButton) bool
	// Wheel returns the scroll offsets of the current tick.
	Wheel() (dx, dy float64)
	// AppendInputChars appends the characters typed this tick.
	AppendInputChars(runes []rune) []rune
	// IsFocused reports whether the window has input focus.
	IsFocused() bool
	// DroppedFiles returns the files dropped onto the window this tick, if any.
	DroppedFiles() []DroppedFile
}

// Display reports properties of the output device.
type Display interface {
	// DeviceScaleFactor returns the device pixel ratio of the current monitor.
	DeviceScaleFactor() float64
}

// Key is a backend-independent keyboard key.
type Key int

// Key constants for the board's shortcuts
const (
	KeySpace Key = iota
	KeyG
	KeyS
	KeyM
	KeyR
	KeyH
	KeyI
	KeyC
	KeyL
	KeyV
	KeyEnter
	KeyEscape
	KeyBackspace
	KeyControl
)

// MouseButton is a backend-independent mouse button.
type MouseButton int

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)

// Game is the loop callback set run by an Engine.
type Game interface {
	// Update runs once per tick and is the only place board state changes.
	Update() error
	// Draw presents a frame. It may run more or less often than Update.
	Draw(screen Image)
	// Layout receives the window size in logical pixels and returns the
	// backing store size.
	Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int)
}

// Engine owns the window and drives a Game.
type Engine interface {
	SetWindowSize(width, height int)
	SetWindowTitle(title string)
	SetWindowResizable(resizable bool)
	Display
	// RunGame blocks until the window closes or game returns an error.
	RunGame(game Game) error
}

// DroppedFile is a file dropped onto the window.
type DroppedFile struct {
	Name string
	Data []byte
}

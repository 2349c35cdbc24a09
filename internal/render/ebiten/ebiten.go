package ebiten

import (
	"bytes"
	"image"
	"image/color"
	"io/fs"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font/gofont/goregular"

	"chosenoffset.com/tabletop/internal/render"
)

// EbitenRenderer implements the Renderer interface using Ebiten.
type EbitenRenderer struct {
	fontSource *text.GoTextFaceSource
	faces      map[float64]*text.GoTextFace
	white      *ebiten.Image
}

// init sets up the global functions for the ebiten render.
func init() {
	render.NewGeoM = func() render.GeoM {
		return NewGeoM()
	}
}

// NewRenderer creates a new Ebiten-based renderer using the embedded Go
// Regular font for labels.
func NewRenderer(log logrus.FieldLogger) (render.Renderer, error) {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, err
	}
	log.WithField("component", "render").Debug("loaded Go Regular font")

	white := ebiten.NewImage(3, 3)
	white.Fill(color.White)

	return &EbitenRenderer{
		fontSource: src,
		faces:      make(map[float64]*text.GoTextFace),
		white:      white.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image),
	}, nil
}

// NewImage creates a new image with the given dimensions.
func (r *EbitenRenderer) NewImage(width, height int) render.Image {
	return &EbitenImage{img: ebiten.NewImage(width, height)}
}

// NewImageFromImage uploads a decoded image.
func (r *EbitenRenderer) NewImageFromImage(src image.Image) render.Image {
	return &EbitenImage{img: ebiten.NewImageFromImage(src)}
}

// FillCircle draws a filled circle on the destination image.
func (r *EbitenRenderer) FillCircle(dst render.Image, x, y, radius float32, clr color.Color, blend render.Blend) {
	ebitenImg := dst.(*EbitenImage).img
	if blend == render.BlendSourceOver {
		vector.DrawFilledCircle(ebitenImg, x, y, radius, clr, true)
		return
	}

	vertices, indices := circleFan(x, y, radius, func(vx, vy float32) (float32, float32) { return 1.5, 1.5 })
	setVertexColor(vertices, clr)
	ebitenImg.DrawTriangles(vertices, indices, r.white, &ebiten.DrawTrianglesOptions{
		Blend:     ebiten.BlendDestinationOut,
		AntiAlias: true,
	})
}

// StrokeCircle draws a circle outline on the destination image.
func (r *EbitenRenderer) StrokeCircle(dst render.Image, x, y, radius float32, strokeWidth float32, clr color.Color) {
	ebitenImg := dst.(*EbitenImage).img
	vector.StrokeCircle(ebitenImg, x, y, radius, strokeWidth, clr, true)
}

// FillRect draws a filled rectangle.
func (r *EbitenRenderer) FillRect(dst render.Image, x, y, width, height float32, clr color.Color) {
	ebitenImg := dst.(*EbitenImage).img
	vector.DrawFilledRect(ebitenImg, x, y, width, height, clr, false)
}

// StrokeLine draws a straight line segment.
func (r *EbitenRenderer) StrokeLine(dst render.Image, x0, y0, x1, y1 float32, strokeWidth float32, clr color.Color) {
	ebitenImg := dst.(*EbitenImage).img
	vector.StrokeLine(ebitenImg, x0, y0, x1, y1, strokeWidth, clr, true)
}

// DrawImageCircle maps src onto a triangle fan so the avatar comes out
// clipped to a circle without an intermediate mask image.
func (r *EbitenRenderer) DrawImageCircle(dst, src render.Image, x, y, radius, clipRadius float32) {
	ebitenImg := dst.(*EbitenImage).img
	srcImg := src.(*EbitenImage).img
	b := srcImg.Bounds()
	sw, sh := float32(b.Dx()), float32(b.Dy())
	left, top := x-radius, y-radius
	side := 2 * radius

	vertices, indices := circleFan(x, y, clipRadius, func(vx, vy float32) (float32, float32) {
		return float32(b.Min.X) + (vx-left)/side*sw, float32(b.Min.Y) + (vy-top)/side*sh
	})
	setVertexColor(vertices, color.White)
	ebitenImg.DrawTriangles(vertices, indices, srcImg, &ebiten.DrawTrianglesOptions{
		Filter:    ebiten.FilterLinear,
		AntiAlias: true,
	})
}

// DrawText draws text using the embedded font at the requested size.
func (r *EbitenRenderer) DrawText(dst render.Image, str string, x, y float64, clr color.Color, opts render.TextOptions) {
	ebitenImg := dst.(*EbitenImage).img

	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	switch opts.Align {
	case render.AlignCenter:
		op.PrimaryAlign = text.AlignCenter
	case render.AlignEnd:
		op.PrimaryAlign = text.AlignEnd
	}
	if opts.Middle {
		op.SecondaryAlign = text.AlignCenter
	}
	text.Draw(ebitenImg, str, r.face(opts.Size), op)
}

// MeasureText measures the width and height of text at the given size.
func (r *EbitenRenderer) MeasureText(str string, size float64) (width, height float64) {
	face := r.face(size)
	return text.Measure(str, face, face.Size*1.2)
}

func (r *EbitenRenderer) face(size float64) *text.GoTextFace {
	if size <= 0 {
		size = 12
	}
	if f, ok := r.faces[size]; ok {
		return f
	}
	f := &text.GoTextFace{Source: r.fontSource, Size: size}
	r.faces[size] = f
	return f
}

// circleFan builds a triangle fan for a circle. uv maps a destination
// vertex to its source coordinate.
func circleFan(cx, cy, radius float32, uv func(x, y float32) (float32, float32)) ([]ebiten.Vertex, []uint16) {
	segments := int(math.Ceil(float64(radius) / 2))
	if segments < 24 {
		segments = 24
	}
	if segments > 180 {
		segments = 180
	}

	vertices := make([]ebiten.Vertex, 0, segments+1)
	sx, sy := uv(cx, cy)
	vertices = append(vertices, ebiten.Vertex{DstX: cx, DstY: cy, SrcX: sx, SrcY: sy})
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		vx := cx + radius*float32(math.Cos(a))
		vy := cy + radius*float32(math.Sin(a))
		sx, sy := uv(vx, vy)
		vertices = append(vertices, ebiten.Vertex{DstX: vx, DstY: vy, SrcX: sx, SrcY: sy})
	}

	indices := make([]uint16, 0, segments*3)
	for i := 1; i <= segments; i++ {
		next := i + 1
		if next > segments {
			next = 1
		}
		indices = append(indices, 0, uint16(i), uint16(next))
	}
	return vertices, indices
}

func setVertexColor(vertices []ebiten.Vertex, clr color.Color) {
	c := color.NRGBAModel.Convert(clr).(color.NRGBA)
	for i := range vertices {
		vertices[i].ColorR = float32(c.R) / 255
		vertices[i].ColorG = float32(c.G) / 255
		vertices[i].ColorB = float32(c.B) / 255
		vertices[i].ColorA = float32(c.A) / 255
	}
}

// EbitenImage wraps an ebiten.Image to implement the render.Image interface.
type EbitenImage struct {
	img *ebiten.Image
}

// Bounds returns the bounds of the image.
func (i *EbitenImage) Bounds() image.Rectangle {
	return i.img.Bounds()
}

// Size returns the width and height of the image.
func (i *EbitenImage) Size() (width, height int) {
	return i.img.Bounds().Dx(), i.img.Bounds().Dy()
}

// Fill fills the entire image with the given color.
func (i *EbitenImage) Fill(clr color.Color) {
	i.img.Fill(clr)
}

// Clear clears the image to transparent.
func (i *EbitenImage) Clear() {
	i.img.Clear()
}

// Dispose releases the image resources.
func (i *EbitenImage) Dispose() {
	if i.img != nil {
		i.img.Dispose()
	}
}

// DrawImage draws the source image onto this image.
func (i *EbitenImage) DrawImage(src render.Image, opts *render.DrawImageOptions) {
	srcImg := src.(*EbitenImage).img

	if opts == nil {
		i.img.DrawImage(srcImg, nil)
		return
	}

	ebitenOpts := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
	if opts.GeoM != nil {
		ebitenGeoM := opts.GeoM.(*EbitenGeoM)
		ebitenOpts.GeoM = ebitenGeoM.geoM
	}

	i.img.DrawImage(srcImg, ebitenOpts)
}

// EbitenGeoM wraps ebiten's GeoM to implement the render.GeoM interface.
type EbitenGeoM struct {
	geoM ebiten.GeoM
}

// NewGeoM creates a new geometric transformation matrix.
func NewGeoM() render.GeoM {
	return &EbitenGeoM{geoM: ebiten.GeoM{}}
}

// Translate shifts the image by (tx, ty).
func (g *EbitenGeoM) Translate(tx, ty float64) {
	g.geoM.Translate(tx, ty)
}

// Scale scales the image by (sx, sy).
func (g *EbitenGeoM) Scale(sx, sy float64) {
	g.geoM.Scale(sx, sy)
}

// Reset resets the matrix to identity.
func (g *EbitenGeoM) Reset() {
	g.geoM.Reset()
}

// EbitenInputManager implements the InputManager interface using Ebiten.
type EbitenInputManager struct {
	log logrus.FieldLogger
}

// NewInputManager creates a new Ebiten-based input manager.
func NewInputManager(log logrus.FieldLogger) render.InputManager {
	return &EbitenInputManager{log: log.WithField("component", "input")}
}

// IsKeyPressed returns whether the specified key is currently pressed.
func (m *EbitenInputManager) IsKeyPressed(key render.Key) bool {
	if key == render.KeyControl {
		return ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)
	}
	return ebiten.IsKeyPressed(keyToEbitenKey(key))
}

// IsKeyJustPressed returns whether the specified key was just pressed this frame.
func (m *EbitenInputManager) IsKeyJustPressed(key render.Key) bool {
	return inpututil.IsKeyJustPressed(keyToEbitenKey(key))
}

// GetCursorPosition returns the current cursor position.
func (m *EbitenInputManager) GetCursorPosition() (x, y int) {
	return ebiten.CursorPosition()
}

// IsMouseButtonPressed returns whether the specified mouse button is currently pressed.
func (m *EbitenInputManager) IsMouseButtonPressed(button render.MouseButton) bool {
	return ebiten.IsMouseButtonPressed(mouseButtonToEbiten(button))
}

// IsMouseButtonJustPressed returns whether the button went down this tick.
func (m *EbitenInputManager) IsMouseButtonJustPressed(button render.MouseButton) bool {
	return inpututil.IsMouseButtonJustPressed(mouseButtonToEbiten(button))
}

// IsMouseButtonJustReleased returns whether the button went up this tick.
func (m *EbitenInputManager) IsMouseButtonJustReleased(button render.MouseButton) bool {
	return inpututil.IsMouseButtonJustReleased(mouseButtonToEbiten(button))
}

// Wheel returns the wheel offsets of this tick.
func (m *EbitenInputManager) Wheel() (dx, dy float64) {
	return ebiten.Wheel()
}

// AppendInputChars appends the runes typed this tick.
func (m *EbitenInputManager) AppendInputChars(runes []rune) []rune {
	return ebiten.AppendInputChars(runes)
}

// IsFocused reports whether the window is focused.
func (m *EbitenInputManager) IsFocused() bool {
	return ebiten.IsFocused()
}

// DroppedFiles reads every regular file dropped onto the window this tick.
func (m *EbitenInputManager) DroppedFiles() []render.DroppedFile {
	fsys := ebiten.DroppedFiles()
	if fsys == nil {
		return nil
	}

	var files []render.DroppedFile
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		files = append(files, render.DroppedFile{Name: path, Data: data})
		return nil
	})
	if err != nil {
		m.log.WithError(err).Warn("failed to read dropped files")
	}
	return files
}

// keyToEbitenKey converts a render.Key to an ebiten.Key.
func keyToEbitenKey(key render.Key) ebiten.Key {
	switch key {
	case render.KeySpace:
		return ebiten.KeySpace
	case render.KeyG:
		return ebiten.KeyG
	case render.KeyS:
		return ebiten.KeyS
	case render.KeyM:
		return ebiten.KeyM
	case render.KeyR:
		return ebiten.KeyR
	case render.KeyH:
		return ebiten.KeyH
	case render.KeyI:
		return ebiten.KeyI
	case render.KeyC:
		return ebiten.KeyC
	case render.KeyL:
		return ebiten.KeyL
	case render.KeyV:
		return ebiten.KeyV
	case render.KeyEnter:
		return ebiten.KeyEnter
	case render.KeyEscape:
		return ebiten.KeyEscape
	case render.KeyBackspace:
		return ebiten.KeyBackspace
	case render.KeyControl:
		return ebiten.KeyControl
	default:
		return 0
	}
}

// mouseButtonToEbiten converts a render.MouseButton to an ebiten.MouseButton.
func mouseButtonToEbiten(button render.MouseButton) ebiten.MouseButton {
	switch button {
	case render.MouseButtonLeft:
		return ebiten.MouseButtonLeft
	case render.MouseButtonRight:
		return ebiten.MouseButtonRight
	case render.MouseButtonMiddle:
		return ebiten.MouseButtonMiddle
	default:
		return ebiten.MouseButtonLeft
	}
}

// EbitenEngine implements the Engine interface using Ebiten.
type EbitenEngine struct{}

// NewEngine creates a new Ebiten-based game engine.
func NewEngine() render.Engine {
	return &EbitenEngine{}
}

// SetWindowSize sets the window size in pixels.
func (e *EbitenEngine) SetWindowSize(width, height int) {
	ebiten.SetWindowSize(width, height)
}

// SetWindowTitle sets the window title.
func (e *EbitenEngine) SetWindowTitle(title string) {
	ebiten.SetWindowTitle(title)
}

// SetWindowResizable enables or disables window resizing.
func (e *EbitenEngine) SetWindowResizable(resizable bool) {
	if resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	} else {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	}
}

// DeviceScaleFactor returns the device pixel ratio of the current monitor.
func (e *EbitenEngine) DeviceScaleFactor() float64 {
	if m := ebiten.Monitor(); m != nil {
		return m.DeviceScaleFactor()
	}
	return 1
}

// RunGame runs the game loop with the provided game.
func (e *EbitenEngine) RunGame(game render.Game) error {
	return ebiten.RunGame(&gameAdapter{game: game})
}

// gameAdapter adapts a render.Game to ebiten.Game interface.
type gameAdapter struct {
	game render.Game
}

// Update implements ebiten.Game.
func (a *gameAdapter) Update() error {
	return a.game.Update()
}

// Draw implements ebiten.Game.
func (a *gameAdapter) Draw(screen *ebiten.Image) {
	a.game.Draw(&EbitenImage{img: screen})
}

// Layout implements ebiten.Game.
func (a *gameAdapter) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.game.Layout(outsideWidth, outsideHeight)
}

// Package game runs the tabletop board inside the engine loop: it routes
// input to the board, applies finished image decodes, autosaves, and renders
// the board when it changes.
package game

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"chosenoffset.com/tabletop/internal/assets"
	"chosenoffset.com/tabletop/internal/board"
	"chosenoffset.com/tabletop/internal/fog"
	"chosenoffset.com/tabletop/internal/render"
	"chosenoffset.com/tabletop/internal/snapshot"
	"chosenoffset.com/tabletop/internal/storage"
)

// Status messages.
const (
	msgSaved       = "Campaign saved."
	msgLoaded      = "Campaign loaded."
	msgNoSave      = "No save found."
	msgLoadFailed  = "Failed to load save."
	msgSaveFailed  = "Failed to save campaign."
	msgImageFailed = "Failed to load image."
	msgReset       = "Campaign reset."
)

// Options are the settings the game needs from configuration.
type Options struct {
	SaveKey          string
	AutosaveInterval time.Duration
	StatusDuration   time.Duration
	WindowWidth      int
	WindowHeight     int
}

// Deps are the collaborators of a Game.
type Deps struct {
	Log       logrus.FieldLogger
	Renderer  render.Renderer
	Input     render.InputManager
	Display   render.Display
	Board     *board.Board
	Scheduler *render.Scheduler
	Store     storage.SnapshotStore
	Loader    *assets.Loader
	Cache     *assets.Cache
	Clipboard Clipboard
	// Now defaults to time.Now.
	Now func() time.Time
}

// Game implements render.Game for the tabletop.
type Game struct {
	opts      Options
	log       logrus.FieldLogger
	renderer  render.Renderer
	input     render.InputManager
	display   render.Display
	board     *board.Board
	sched     *render.Scheduler
	store     storage.SnapshotStore
	loader    *assets.Loader
	cache     *assets.Cache
	clipboard Clipboard
	now       func() time.Time

	ctx       context.Context
	cancel    context.CancelFunc
	cancelMap context.CancelFunc
	// failed avatar sources are not requested again until they change.
	failed map[string]bool

	// Layout in logical pixels and the device scale.
	width, height int
	scale         float64
	frame         render.Image
	fogMask       *fog.Mask
	hud           *HUD

	status       Status
	nextAutosave time.Time
	prompt       Prompt
	detailID     string

	pointerInside    bool
	cursorX, cursorY float64
	lastClickAt      time.Time
	lastClickX       float64
	lastClickY       float64
}

// New creates a game around an existing board.
func New(opts Options, deps Deps) *Game {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	clip := deps.Clipboard
	if clip == nil {
		clip = SystemClipboard()
	}
	ctx, cancel := context.WithCancel(context.Background())
	g := &Game{
		opts:      opts,
		log:       deps.Log.WithField("component", "game"),
		renderer:  deps.Renderer,
		input:     deps.Input,
		display:   deps.Display,
		board:     deps.Board,
		sched:     deps.Scheduler,
		store:     deps.Store,
		loader:    deps.Loader,
		cache:     deps.Cache,
		clipboard: clip,
		now:       now,
		ctx:       ctx,
		cancel:    cancel,
		cancelMap: func() {},
		failed:    make(map[string]bool),
		width:     opts.WindowWidth,
		height:    opts.WindowHeight,
		scale:     1,
		fogMask:   fog.NewMask(deps.Renderer),
		hud:       NewHUD(deps.Renderer),
	}
	g.nextAutosave = now().Add(opts.AutosaveInterval)
	g.board.SetViewSize(float64(g.width), float64(g.height))
	return g
}

// Close cancels outstanding decodes.
func (g *Game) Close() {
	g.cancel()
}

// Board returns the board the game drives.
func (g *Game) Board() *board.Board { return g.board }

// Status returns the current status message, empty when the turn banner shows.
func (g *Game) Status() string {
	if g.status.Active(g.now()) {
		return g.status.Text
	}
	return ""
}

// ShowStatus displays msg in place of the turn banner for a short while.
func (g *Game) ShowStatus(msg string) {
	g.status = Status{Text: msg, Until: g.now().Add(g.opts.StatusDuration)}
	g.log.WithField("status", msg).Info("Status")
	g.sched.MarkDirty()
}

// Update runs one tick.
func (g *Game) Update() error {
	now := g.now()

	g.applyDecodes()

	if g.status.Text != "" && !g.status.Active(now) {
		g.status = Status{}
		g.sched.MarkDirty()
	}

	if !now.Before(g.nextAutosave) {
		g.autosave()
		g.nextAutosave = now.Add(g.opts.AutosaveInterval)
	}

	g.handleDroppedFiles()

	if g.prompt.Open {
		g.updatePrompt()
	} else {
		g.handleShortcuts()
	}
	g.handlePointer(now)

	g.requestAvatars()
	return nil
}

// Layout records the logical window size and returns the backing store size
// at the device scale.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	scale := 1.0
	if g.display != nil {
		scale = math.Max(1, g.display.DeviceScaleFactor())
	}
	if outsideWidth != g.width || outsideHeight != g.height || scale != g.scale {
		g.width, g.height, g.scale = outsideWidth, outsideHeight, scale
		g.board.SetViewSize(float64(outsideWidth), float64(outsideHeight))
		g.sched.MarkDirty()
	}
	return int(math.Ceil(float64(outsideWidth) * scale)), int(math.Ceil(float64(outsideHeight) * scale))
}

// applyDecodes installs every finished decode. Map results from superseded
// requests are dropped by the board's generation check.
func (g *Game) applyDecodes() {
	for _, res := range g.loader.Drain() {
		log := g.log.WithFields(logrus.Fields{"kind": res.Kind, "generation": res.Gen})
		if res.Err != nil {
			log.WithError(res.Err).Warn("Image decode failed")
			if res.Kind == assets.KindMap {
				if res.Gen == g.board.MapGeneration() {
					g.ShowStatus(msgImageFailed)
				}
			} else {
				g.failed[res.Src] = true
			}
			continue
		}

		b := res.Image.Bounds()
		entry := &assets.Entry{Image: g.renderer.NewImageFromImage(res.Image), Width: b.Dx(), Height: b.Dy()}
		switch res.Kind {
		case assets.KindMap:
			if !g.board.ApplyMap(res.Gen, res.Src, entry.Image, entry.Width, entry.Height) {
				log.Debug("Discarding stale map decode")
				entry.Image.Dispose()
				continue
			}
			g.cache.Set(res.Src, entry)
		case assets.KindAvatar:
			if !g.cache.Set(res.Src, entry) {
				log.WithField("bytes", entry.Width*entry.Height*4).Warn("Avatar rejected by image cache")
				entry.Image.Dispose()
				g.failed[res.Src] = true
				continue
			}
			g.sched.MarkDirty()
		}
	}
}

// LoadMap starts loading src as the map, superseding any earlier request.
func (g *Game) LoadMap(src string) {
	g.cancelMap()
	gen := g.board.BeginMapLoad()
	if e, ok := g.cache.Get(src); ok {
		g.cancelMap = func() {}
		g.board.ApplyMap(gen, src, e.Image, e.Width, e.Height)
		return
	}
	ctx, cancel := context.WithCancel(g.ctx)
	g.cancelMap = cancel
	g.loader.Load(ctx, assets.Request{Kind: assets.KindMap, Src: src, Gen: gen})
}

// requestAvatars starts decodes for avatars that are neither cached nor
// already requested.
func (g *Game) requestAvatars() {
	for _, t := range g.board.Tokens() {
		src := t.Sheet.Avatar
		if src == "" || g.failed[src] {
			continue
		}
		if _, ok := g.cache.Get(src); ok {
			continue
		}
		g.loader.Load(g.ctx, assets.Request{Kind: assets.KindAvatar, Src: src})
	}
}

// avatar returns the decoded avatar for src, if ready.
func (g *Game) avatar(src string) render.Image {
	if e, ok := g.cache.Get(src); ok {
		return e.Image
	}
	return nil
}

// Save writes the board to the store.
func (g *Game) Save() error {
	data, err := snapshot.Encode(g.board)
	if err != nil {
		return err
	}
	if err := g.store.Save(g.ctx, g.opts.SaveKey, data); err != nil {
		return fmt.Errorf("save campaign: %w", err)
	}
	g.log.WithField("key", g.opts.SaveKey).WithField("bytes", len(data)).Debug("Campaign saved")
	return nil
}

func (g *Game) saveWithStatus() {
	if err := g.Save(); err != nil {
		g.log.WithError(err).Error("Save failed")
		g.ShowStatus(msgSaveFailed)
		return
	}
	g.ShowStatus(msgSaved)
}

func (g *Game) autosave() {
	g.saveWithStatus()
}

// Load replaces the board with the stored campaign. A missing or corrupt
// save leaves the board untouched.
func (g *Game) Load() error {
	_, err := g.load()
	return err
}

// load returns the map source of the loaded campaign.
func (g *Game) load() (string, error) {
	data, err := g.store.Load(g.ctx, g.opts.SaveKey)
	if err != nil {
		return "", err
	}
	snap, err := snapshot.Decode(data)
	if err != nil {
		return "", err
	}
	g.closeDetail()
	src := snapshot.Hydrate(g.board, snap)
	switch {
	case src == "":
		g.cancelMap()
		g.board.ClearMap()
	case src != g.board.Map().Src || !g.board.Map().Loaded():
		g.LoadMap(src)
	default:
		// The map on screen is already the saved one; a decode still in
		// flight must not replace it.
		g.cancelMap()
		g.cancelMap = func() {}
		g.board.BeginMapLoad()
	}
	g.failed = make(map[string]bool)
	return src, nil
}

func (g *Game) loadWithStatus() {
	err := g.Load()
	switch {
	case err == nil:
		g.ShowStatus(msgLoaded)
	case errors.Is(err, storage.ErrNotFound):
		g.ShowStatus(msgNoSave)
	default:
		g.log.WithError(err).Error("Load failed")
		g.ShowStatus(msgLoadFailed)
	}
}

// Reset deletes the save and starts a fresh board.
func (g *Game) Reset() error {
	if err := g.store.Delete(g.ctx, g.opts.SaveKey); err != nil {
		return fmt.Errorf("reset campaign: %w", err)
	}
	g.cancelMap()
	g.closeDetail()
	g.board.Reset()
	g.ShowStatus(msgReset)
	return nil
}

// Boot loads the stored campaign if there is one and otherwise opens
// initialMap, if given.
func (g *Game) Boot(initialMap string) {
	mapSrc, err := g.load()
	switch {
	case err == nil:
		g.ShowStatus(msgLoaded)
	case errors.Is(err, storage.ErrNotFound):
		g.log.Info("No saved campaign, starting fresh")
	default:
		g.log.WithError(err).Error("Load failed")
		g.ShowStatus(msgLoadFailed)
	}
	if initialMap != "" && mapSrc == "" {
		if err := g.OpenMapFile(initialMap); err != nil {
			g.log.WithError(err).Warn("Initial map unavailable")
			g.ShowStatus(msgImageFailed)
		}
	}
}

// OpenMapFile embeds the image at path and loads it as the map.
func (g *Game) OpenMapFile(path string) error {
	data, err := assets.Read(path)
	if err != nil {
		return err
	}
	return g.openMapBytes(data)
}

func (g *Game) openMapBytes(data []byte) error {
	src, err := assets.DataURI(data)
	if err != nil {
		return err
	}
	g.LoadMap(src)
	return nil
}

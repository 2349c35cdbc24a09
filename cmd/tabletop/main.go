package main

import (
	"flag"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"chosenoffset.com/tabletop/internal/assets"
	"chosenoffset.com/tabletop/internal/board"
	"chosenoffset.com/tabletop/internal/config"
	"chosenoffset.com/tabletop/internal/game"
	"chosenoffset.com/tabletop/internal/logging"
	"chosenoffset.com/tabletop/internal/render"
	ebitenrender "chosenoffset.com/tabletop/internal/render/ebiten"
	"chosenoffset.com/tabletop/internal/storage/sqlite"
)

func main() {
	mapPath := flag.String("map", "", "image to open as the map when there is no saved campaign")
	dbPath := flag.String("db", "", "campaign database (overrides TABLETOP_DB_PATH)")
	flag.Parse()

	cfg, err := config.Load(".env")
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *mapPath != "" {
		cfg.InitialMap = *mapPath
	}

	log, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		logrus.WithError(err).Fatal("Failed to set up logging")
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		log.WithError(err).WithField("path", cfg.DBPath).Fatal("Failed to open campaign database")
	}
	defer store.Close()

	cache, err := assets.NewCache(cfg.ImageCacheBytes)
	if err != nil {
		log.WithError(err).Fatal("Failed to create image cache")
	}
	defer cache.Close()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	// Initialize the renderer backend (ebiten)
	renderer, err := ebitenrender.NewRenderer(log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create renderer")
	}
	inputMgr := ebitenrender.NewInputManager(log)
	engine := ebitenrender.NewEngine()

	sched := render.NewScheduler()
	g := game.New(game.Options{
		SaveKey:          cfg.SaveKey,
		AutosaveInterval: cfg.AutosaveInterval,
		StatusDuration:   cfg.StatusDuration,
		WindowWidth:      cfg.WindowWidth,
		WindowHeight:     cfg.WindowHeight,
	}, game.Deps{
		Log:       log,
		Renderer:  renderer,
		Input:     inputMgr,
		Display:   engine,
		Board:     board.New(rand.New(rand.NewSource(seed)), sched),
		Scheduler: sched,
		Store:     store,
		Loader:    assets.NewLoader(log),
		Cache:     cache,
	})
	defer g.Close()
	g.Boot(cfg.InitialMap)

	engine.SetWindowSize(cfg.WindowWidth, cfg.WindowHeight)
	engine.SetWindowTitle("Hotseat Tabletop")
	engine.SetWindowResizable(true)

	log.WithFields(logrus.Fields{"db": cfg.DBPath, "seed": seed}).Info("Starting tabletop")
	if err := engine.RunGame(g); err != nil {
		log.WithError(err).Error("Game loop stopped")
	}
	if err := g.Save(); err != nil {
		log.WithError(err).Error("Final save failed")
	}
}

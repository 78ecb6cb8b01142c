// Package main provides the hexcrawl console: a line-oriented front end to a
// single campaign session.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hexcrawl/internal/config"
	"github.com/cory-johannsen/hexcrawl/internal/console"
	"github.com/cory-johannsen/hexcrawl/internal/console/telnet"
	"github.com/cory-johannsen/hexcrawl/internal/game/catalog"
	"github.com/cory-johannsen/hexcrawl/internal/game/dice"
	"github.com/cory-johannsen/hexcrawl/internal/game/events"
	"github.com/cory-johannsen/hexcrawl/internal/game/grid"
	"github.com/cory-johannsen/hexcrawl/internal/game/party"
	"github.com/cory-johannsen/hexcrawl/internal/game/session"
	"github.com/cory-johannsen/hexcrawl/internal/game/travel"
	"github.com/cory-johannsen/hexcrawl/internal/observability"
	"github.com/cory-johannsen/hexcrawl/internal/scripting"
	"github.com/cory-johannsen/hexcrawl/internal/server"
	"github.com/cory-johannsen/hexcrawl/internal/storage"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty uses built-in defaults")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("starting hexcrawl", zap.Error(err))
	}
	defer app.Close()

	logger.Info("hexcrawl ready",
		zap.String("storage", cfg.Storage.Driver),
		zap.Int("tiles", app.session.Grid().Len()),
		zap.Duration("elapsed", time.Since(start)),
	)

	lc := server.NewLifecycle(observability.Component(logger, "lifecycle"))
	app.register(ctx, lc, cfg.Console, os.Stdin, os.Stdout)
	if err := lc.Run(ctx); err != nil {
		logger.Error("hexcrawl stopped", zap.Error(err))
		return
	}
	logger.Info("hexcrawl stopped")
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default()
	}
	return config.Load(path)
}

// app holds everything the console needs and everything that must be closed
// on exit.
type app struct {
	session *session.Session
	handler *console.Handler
	closers []func() error
	logger  *zap.Logger
}

// newApp wires catalogs, party, scripting, storage and the session from cfg
// and generates the starting map.
//
// Postcondition: On success the caller must Close the app.
func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (_ *app, err error) {
	a := &app{logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	catalogs, err := catalog.Load(catalog.Paths{
		Biomes: cfg.Content.Biomes,
		Trails: cfg.Content.Trails,
		Modes:  cfg.Content.Modes,
	})
	if err != nil {
		return nil, fmt.Errorf("loading catalogs: %w", err)
	}
	logger.Info("catalogs loaded",
		zap.Int("biomes", catalogs.Biomes.Len()),
		zap.Bool("biomes_from_table", catalogs.Biomes.FromSource()),
		zap.Int("trails", catalogs.Trails.Len()),
		zap.Bool("trails_from_table", catalogs.Trails.FromSource()),
		zap.Int("modes", catalogs.Modes.Len()),
		zap.Bool("modes_from_table", catalogs.Modes.FromSource()),
	)

	roster, fromTable, err := party.LoadRoster(cfg.Content.Party)
	if err != nil {
		return nil, err
	}
	p, err := party.FromRoster(roster)
	if err != nil {
		return nil, fmt.Errorf("building party: %w", err)
	}
	logger.Info("party assembled", zap.Int("members", len(p.Members)), zap.Bool("from_table", fromTable))

	roller := dice.NewRoller(dice.NewCryptoSource(), observability.Component(logger, "dice"))

	var scripts travel.ScriptCaller
	if cfg.Content.ScriptDir != "" {
		mgr := scripting.NewManager(roller, observability.Component(logger, "scripting"))
		if err := mgr.Load(cfg.Content.ScriptDir, scripting.DefaultInstructionLimit); err != nil {
			return nil, fmt.Errorf("loading scripts: %w", err)
		}
		a.closers = append(a.closers, func() error { mgr.Close(); return nil })
		scripts = mgr
	}
	rule, err := travel.RuleFromConfig(cfg.Travel, scripts)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, cfg.Storage, observability.Component(logger, "storage"))
	if err != nil {
		return nil, fmt.Errorf("opening campaign store: %w", err)
	}
	a.closers = append(a.closers, store.Close)

	s, err := session.New(session.Options{
		Catalogs:      catalogs,
		Party:         p,
		Roller:        roller,
		Rule:          rule,
		DefaultMode:   cfg.Travel.DefaultMode,
		StealthOnMove: cfg.Travel.StealthOnMove,
		DefaultBiome:  cfg.Map.DefaultBiome,
		Logger:        observability.Component(logger, "session"),
	})
	if err != nil {
		return nil, err
	}

	var elevation *grid.ElevationConfig
	if cfg.Map.Elevation {
		ec := grid.DefaultElevationConfig(cfg.Map.Seed)
		elevation = &ec
	}
	gen := session.GenerateOptions{Biome: cfg.Map.DefaultBiome, Elevation: elevation}
	if cfg.Map.Shape == config.ShapeRadius {
		gen.Radius = cfg.Map.Radius
	} else {
		gen.Width, gen.Height = cfg.Map.Width, cfg.Map.Height
	}
	if err := s.Generate(gen); err != nil {
		return nil, fmt.Errorf("generating starting map: %w", err)
	}

	s.Bus().Subscribe(events.Encounter, func(e events.Event) {
		logger.Info("encounter", zap.Stringer("at", e.Coord))
	})

	a.session = s
	a.handler = console.NewHandler(s, console.Options{
		Store:     store,
		Elevation: elevation,
		Color:     cfg.Console.Color && cfg.Console.Listen != "",
		Logger:    observability.Component(logger, "console"),
	})
	return a, nil
}

// register adds the console front end selected by cfg to lc: a telnet
// acceptor when cfg.Listen is set, otherwise a loop over in and out.
func (a *app) register(ctx context.Context, lc *server.Lifecycle, cfg config.ConsoleConfig, in io.Reader, out io.Writer) {
	if cfg.Listen != "" {
		acc := telnet.NewAcceptor(cfg, a.handler, observability.Component(a.logger, "telnet"))
		lc.Add("telnet", &server.FuncService{StartFn: acc.ListenAndServe, StopFn: acc.Stop})
		return
	}
	lc.Add("console", &server.FuncService{StartFn: func() error { return a.run(ctx, in, out) }})
}

// run serves the console over in and out until quit, EOF or cancellation.
func (a *app) run(ctx context.Context, in io.Reader, out io.Writer) error {
	return a.handler.Serve(ctx, console.NewStreamTerminal(in, out))
}

// Close releases the store and the script VM in reverse order of opening.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("closing", zap.Error(err))
		}
	}
	a.closers = nil
}

package main

import (
	"context"
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-ball-arena/internal/setup"
	"github.com/lao-tseu-is-alive/go-ball-arena/internal/viewer"
	"github.com/lao-tseu-is-alive/go-ball-arena/pkg/simulation"
)

func main() {
	configFile := flag.String("config", "", "path to a JSON config file")
	flag.Parse()

	ctx := context.Background()
	logger := golog.DefaultLogger

	if err := setup.LoadEnv(logger); err != nil {
		log.Fatal(err)
	}
	cfg, err := setup.Config(*configFile, logger)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	system, err := actor.NewActorSystem("BallArena", actor.WithLogger(golog.DiscardLogger))
	if err != nil {
		log.Fatalf("Failed to create actor system: %v", err)
	}
	if err := system.Start(ctx); err != nil {
		log.Fatalf("Failed to start actor system: %v", err)
	}
	defer system.Stop(ctx)

	sink, closeTelemetry, err := setup.Telemetry(ctx, cfg, system, logger)
	if err != nil {
		log.Fatalf("Failed to start telemetry: %v", err)
	}
	defer closeTelemetry()

	// A nil *Sink must not become a non-nil Recorder.
	var recorder simulation.Recorder
	if sink != nil {
		recorder = sink
	}
	game := viewer.NewGame(cfg, viewer.NewFactory(logger, recorder), logger)
	defer game.Close()

	w, h := game.Layout(0, 0)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("Ball Arena")
	if err := ebiten.RunGame(game); err != nil {
		logger.Errorf("game loop: %v", err)
	}
}

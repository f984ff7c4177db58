package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-ball-arena/internal/setup"
	"github.com/lao-tseu-is-alive/go-ball-arena/internal/stream"
	"github.com/lao-tseu-is-alive/go-ball-arena/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-ball-arena/pkg/simulation"
)

func main() {
	configFile := flag.String("config", "", "path to a JSON config file")
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	logger := golog.DefaultLogger

	if err := setup.LoadEnv(logger); err != nil {
		log.Fatal(err)
	}
	cfg, err := setup.Config(*configFile, logger)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	system, err := actor.NewActorSystem("BallArenaServer", actor.WithLogger(golog.DiscardLogger))
	if err != nil {
		log.Fatalf("Failed to create actor system: %v", err)
	}
	if err := system.Start(ctx); err != nil {
		log.Fatalf("Failed to start actor system: %v", err)
	}

	opts := []simulation.Option{simulation.WithLogger(logger)}
	sink, closeTelemetry, err := setup.Telemetry(ctx, cfg, system, logger)
	if err != nil {
		log.Fatalf("Failed to start telemetry: %v", err)
	}
	if sink != nil {
		opts = append(opts, simulation.WithRecorder(sink))
	}

	world, err := simulation.NewWorld(cfg, cfg, opts...)
	if err != nil {
		log.Fatalf("Failed to create world: %v", err)
	}

	hub := stream.NewHub(world, logger, stream.DefaultQueueSize)
	go func() {
		if err := hub.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Errorf("hub stopped: %v", err)
		}
	}()

	if err := world.Start(cfg.BallCount, func(pos geometry.Vector2D, b *simulation.Body) {
		logger.Debugf("%s created at %s", b, pos)
	}); err != nil {
		log.Fatalf("Failed to start bodies: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", hub.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := &http.Server{Addr: *addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Infof("streaming %d balls on %s/ws", cfg.BallCount, *addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("http server: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	if err := world.Dispose(); err != nil {
		logger.Warnf("dispose: %v", err)
	}
	closeTelemetry()
	if err := system.Stop(shutdownCtx); err != nil {
		logger.Warnf("actor system stop: %v", err)
	}
}

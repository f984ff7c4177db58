// Package viewer draws a running arena with ebiten.
package viewer

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	golog "github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-ball-arena/internal/presentation"
	"github.com/lao-tseu-is-alive/go-ball-arena/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-ball-arena/pkg/ui"
)

const (
	panelHeight = 50
	maxBalls    = 50
)

var (
	background  = color.RGBA{R: 10, G: 10, B: 30, A: 255}
	arenaBorder = color.RGBA{R: 120, G: 120, B: 140, A: 255}
	ballColors  = []color.RGBA{
		{R: 255, G: 90, B: 80, A: 255},
		{R: 80, G: 160, B: 255, A: 255},
		{R: 250, G: 210, B: 70, A: 255},
		{R: 110, G: 220, B: 120, A: 255},
		{R: 200, G: 110, B: 240, A: 255},
	}
)

// Factory builds a fresh world wrapped in a presentation model.
type Factory func(cfg *simulation.Config) (*presentation.Model, error)

// NewFactory returns the Factory used by the desktop binary. recorder may be nil.
func NewFactory(logger golog.Logger, recorder simulation.Recorder) Factory {
	return func(cfg *simulation.Config) (*presentation.Model, error) {
		opts := []simulation.Option{simulation.WithLogger(logger)}
		if recorder != nil {
			opts = append(opts, simulation.WithRecorder(recorder))
		}
		w, err := simulation.NewWorld(cfg, cfg, opts...)
		if err != nil {
			return nil, err
		}
		return presentation.NewModel(w, cfg.ScaleFactor), nil
	}
}

type Game struct {
	cfg      *simulation.Config
	newModel Factory
	logger   golog.Logger
	model    *presentation.Model

	// UI Controls
	panel    *ui.Panel
	count    *ui.Slider
	startBtn *ui.Button
	stopBtn  *ui.Button
	skip     *ui.Checkbox
	status   string

	// Timing instrumentation
	updateAvg float64
	drawAvg   float64
}

func NewGame(cfg *simulation.Config, factory Factory, logger golog.Logger) *Game {
	if logger == nil {
		logger = golog.DefaultLogger
	}
	g := &Game{
		cfg:      cfg,
		newModel: factory,
		logger:   logger,
		status:   "stopped",
	}
	width, _ := g.canvasSize()
	g.panel = ui.NewPanel(0, 0, width, panelHeight)
	g.count = ui.NewSlider(0, 0, 160, "Balls", 1, maxBalls, cfg.BallCount)
	g.startBtn = ui.NewButton(0, 0, 70, 30, "Start", g.startSimulation)
	g.stopBtn = ui.NewButton(0, 0, 70, 30, "Stop", g.stopSimulation)
	g.skip = ui.NewCheckbox(0, 0, "skip separating", cfg.SkipSeparating)
	g.panel.Add(g.count)
	g.panel.Add(g.startBtn)
	g.panel.Add(g.stopBtn)
	g.panel.Add(g.skip)
	g.syncButtons()
	return g
}

func (g *Game) canvasSize() (float64, float64) {
	return float64(g.cfg.ArenaWidth) * g.cfg.ScaleFactor, float64(g.cfg.ArenaHeight) * g.cfg.ScaleFactor
}

func (g *Game) Running() bool { return g.model != nil }

func (g *Game) startSimulation() {
	if g.model != nil {
		return
	}
	cfg := *g.cfg
	cfg.SkipSeparating = g.skip.Value
	model, err := g.newModel(&cfg)
	if err != nil {
		g.status = fmt.Sprintf("error: %v", err)
		g.logger.Errorf("failed to create world: %v", err)
		return
	}
	if err := model.Start(g.count.Value); err != nil {
		g.status = fmt.Sprintf("error: %v", err)
		g.logger.Errorf("failed to start %d balls: %v", g.count.Value, err)
		_ = model.Close()
		return
	}
	g.model = model
	g.status = fmt.Sprintf("running %d balls", g.count.Value)
	g.syncButtons()
}

func (g *Game) stopSimulation() {
	if g.model == nil {
		return
	}
	if err := g.model.Close(); err != nil {
		g.logger.Warnf("closing simulation: %v", err)
	}
	g.model = nil
	g.status = "stopped"
	g.syncButtons()
}

func (g *Game) syncButtons() {
	g.startBtn.Disabled = g.model != nil
	g.stopBtn.Disabled = g.model == nil
}

// Close stops a running simulation; call it once RunGame returns.
func (g *Game) Close() {
	g.stopSimulation()
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()
	g.panel.Update()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(background)
	width, height := g.canvasSize()
	vector.StrokeRect(screen, 0, panelHeight, float32(width), float32(height), 2, arenaBorder, true)

	if g.model != nil {
		for _, b := range g.model.Balls() {
			r := b.Diameter / 2
			clr := ballColors[b.ID%len(ballColors)]
			vector.FillCircle(screen, float32(b.Left+r), float32(b.Top+r+panelHeight), float32(r), clr, true)
		}
	}

	g.panel.Draw(screen)

	msg := fmt.Sprintf("%s\nFPS: %.2f  Update: %.2fms  Draw: %.2fms", g.status, ebiten.ActualFPS(), g.updateAvg, g.drawAvg)
	ebitenutil.DebugPrintAt(screen, msg, 10, int(panelHeight+height)-36)
}

func (g *Game) Layout(w, h int) (int, int) {
	width, height := g.canvasSize()
	return int(width), int(height) + panelHeight
}

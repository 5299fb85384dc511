package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/flocklab/go-flocking-simulation/pkg/flock"
	"github.com/flocklab/go-flocking-simulation/pkg/telemetry"
)

// whiteImage is the 3x3 source for batched triangle drawing.
var whiteImage = ebiten.NewImage(3, 3)

func init() {
	whiteImage.Fill(color.White)
}

type Game struct {
	flock  *flock.Flock
	cfg    *flock.Config
	walker *Walker

	useParallel bool
	showStats   bool
	showTrails  bool

	width, height int
	canvas        *ebiten.Image

	broadcaster *telemetry.Broadcaster
	tickCount   int64

	// Rolling averages (exponential) in milliseconds.
	tickAvg float64
	drawAvg float64
}

func (g *Game) Update() error {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, _ := ebiten.CursorPosition()
		g.walker.GoTo(float64(x))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.useParallel = !g.useParallel
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.showStats = !g.showStats
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		g.showTrails = !g.showTrails
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		g.flock.AddAgents(10)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		g.flock.RemoveAgents(10)
	}

	start := time.Now()
	if g.useParallel {
		g.flock.TickParallel()
	} else {
		g.flock.TickSerial()
	}
	elapsed := time.Since(start)
	g.tickAvg = g.tickAvg*0.95 + float64(elapsed.Microseconds())/1000.0*0.05
	g.tickCount++

	g.walker.Update(1.0 / float64(ebiten.TPS()))

	if g.broadcaster != nil {
		g.broadcaster.Publish(telemetry.Stats{
			Tick:         g.tickCount,
			Count:        g.flock.Count(),
			AverageSpeed: g.flock.AverageSpeed(),
			Coherence:    g.flock.Coherence(),
			TickMillis:   float64(elapsed.Microseconds()) / 1000.0,
			Parallel:     g.useParallel,
		})
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	bg := color.RGBA{R: 10, G: 10, B: 30, A: 255}
	if g.canvas == nil || g.canvas.Bounds().Dx() != g.width || g.canvas.Bounds().Dy() != g.height {
		g.canvas = ebiten.NewImage(g.width, g.height)
		g.canvas.Fill(bg)
	}

	if g.showTrails {
		// A translucent wash instead of a full clear leaves motion trails.
		vector.DrawFilledRect(g.canvas, 0, 0, float32(g.width), float32(g.height),
			color.RGBA{R: 10, G: 10, B: 30, A: 28}, false)
	} else {
		g.canvas.Fill(bg)
	}

	for _, a := range g.flock.Agents() {
		drawBoid(g.canvas, a)
	}

	screen.DrawImage(g.canvas, nil)
	g.walker.Draw(screen)

	if g.showStats {
		msg := fmt.Sprintf(
			"FPS: %.1f  TPS: %.1f\nAgents: %d\nMode: %s (P toggles)\nTick:  %.2fms\nDraw:  %.2fms\nAvg speed: %.2f\nCoherence: %.1f\n[+/-] agents  [T] trails  [S] stats",
			ebiten.ActualFPS(),
			ebiten.ActualTPS(),
			g.flock.Count(),
			tickModeName(g.useParallel),
			g.tickAvg,
			g.drawAvg,
			g.flock.AverageSpeed(),
			g.flock.Coherence(),
		)
		ebitenutil.DebugPrintAt(screen, msg, 10, 10)
	}
}

func tickModeName(parallel bool) string {
	if parallel {
		return "parallel"
	}
	return "serial"
}

// drawBoid renders one agent as a small triangle pointing along its heading.
func drawBoid(dst *ebiten.Image, a *flock.Agent) {
	angle := math.Atan2(a.Vel.Y, a.Vel.X)
	size := a.Radius * 2

	tipX := a.Pos.X + math.Cos(angle)*size
	tipY := a.Pos.Y + math.Sin(angle)*size
	rightX := a.Pos.X + math.Cos(angle+2.5)*size*0.8
	rightY := a.Pos.Y + math.Sin(angle+2.5)*size*0.8
	leftX := a.Pos.X + math.Cos(angle-2.5)*size*0.8
	leftY := a.Pos.Y + math.Sin(angle-2.5)*size*0.8

	cr := float32(a.Color.R) / 255
	cg := float32(a.Color.G) / 255
	cb := float32(a.Color.B) / 255

	vertices := []ebiten.Vertex{
		{DstX: float32(tipX), DstY: float32(tipY), SrcX: 1, SrcY: 1, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: 1},
		{DstX: float32(rightX), DstY: float32(rightY), SrcX: 1, SrcY: 1, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: 1},
		{DstX: float32(leftX), DstY: float32(leftY), SrcX: 1, SrcY: 1, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: 1},
	}
	indices := []uint16{0, 1, 2}

	dst.DrawTriangles(vertices, indices, whiteImage, &ebiten.DrawTrianglesOptions{})
}

// Layout tracks the outside window size so the simulation bounds follow
// window resizes; agents left outside a shrunken world wrap on the next tick.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width = outsideWidth
		g.height = outsideHeight
		g.flock.Resize(float64(outsideWidth), float64(outsideHeight))
		g.walker.PlaceAtBottom(float64(outsideWidth), float64(outsideHeight))
	}
	return outsideWidth, outsideHeight
}

func main() {
	var (
		width      = flag.Int("width", 0, "window width (0 = config value)")
		height     = flag.Int("height", 0, "window height (0 = config value)")
		numBoids   = flag.Int("n", 0, "number of boids (0 = config value)")
		seed       = flag.Uint64("seed", 0, "random seed (0 = time based)")
		parallel   = flag.Bool("parallel", true, "use the parallel tick strategy")
		stats      = flag.Bool("stats", true, "show the on-screen statistics overlay")
		trails     = flag.Bool("trails", false, "leave motion trails")
		configFile = flag.String("config", "", "optional JSON config file")
		schemaFile = flag.String("schema", "flock.schema.json", "JSON schema for -config validation")
		statsAddr  = flag.String("stats-addr", "", "serve live stats over websocket on this address (e.g. :8089)")
	)
	flag.Parse()

	cfg := flock.DefaultConfig()
	if *configFile != "" {
		loaded, err := flock.LoadConfig(*configFile, *schemaFile)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
		cfg = loaded
	}
	if *width > 0 {
		cfg.WorldWidth = float64(*width)
	}
	if *height > 0 {
		cfg.WorldHeight = float64(*height)
	}
	if *numBoids > 0 {
		cfg.NumAgents = *numBoids
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	f := flock.New(cfg)
	f.Initialize(cfg.NumAgents)

	walker := NewWalker()
	walker.PlaceAtBottom(cfg.WorldWidth, cfg.WorldHeight)

	g := &Game{
		flock:       f,
		cfg:         cfg,
		walker:      walker,
		useParallel: *parallel,
		showStats:   *stats,
		showTrails:  *trails,
		width:       int(cfg.WorldWidth),
		height:      int(cfg.WorldHeight),
	}

	if *statsAddr != "" {
		g.broadcaster = telemetry.NewBroadcaster()
		defer g.broadcaster.Close()
		mux := http.NewServeMux()
		mux.HandleFunc("/stats", g.broadcaster.Handler())
		go func() {
			if err := http.ListenAndServe(*statsAddr, mux); err != nil {
				log.Printf("stats server stopped: %v", err)
			}
		}()
		log.Printf("streaming stats on ws://%s/stats", *statsAddr)
	}

	ebiten.SetWindowSize(int(cfg.WorldWidth), int(cfg.WorldHeight))
	ebiten.SetWindowTitle("Flocking Simulation")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}

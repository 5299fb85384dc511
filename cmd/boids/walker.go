package main

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// walkerState enumerates the walker's animation states.
type walkerState int

const (
	walkerIdle walkerState = iota
	walkerLeft
	walkerRight
)

const (
	walkerFrames        = 4
	walkFrameDur        = 0.10 // seconds per frame while walking
	idleFrameDur        = 0.25
	walkerBottomPadding = 20.0
)

// Walker is the little mascot that strolls along the bottom edge toward
// wherever the user last clicked. Pure decoration: it never touches the
// simulation.
type Walker struct {
	X, Y      float64
	W, H      float64
	Speed     float64 // pixels per second
	ArriveEps float64 // distance at which the target counts as reached

	TargetX float64
	Moving  bool

	state      walkerState
	frame      int
	frameTimer float64
}

func NewWalker() *Walker {
	return &Walker{
		X:         40,
		W:         24,
		H:         32,
		Speed:     140,
		ArriveEps: 6,
	}
}

// PlaceAtBottom pins the walker just above the bottom window edge.
func (w *Walker) PlaceAtBottom(width, height float64) {
	w.Y = height - w.H - walkerBottomPadding
	w.ClampToWindow(width, height)
}

// GoTo sets a new walk target. Only the x coordinate matters: the walker
// stays on its bottom track.
func (w *Walker) GoTo(x float64) {
	w.TargetX = x
	w.Moving = true
	w.pickState()
}

func (w *Walker) pickState() {
	if !w.Moving {
		w.state = walkerIdle
		return
	}
	if w.TargetX < w.X {
		w.state = walkerLeft
	} else {
		w.state = walkerRight
	}
}

// Update advances position and animation by dt seconds.
func (w *Walker) Update(dt float64) {
	dur := idleFrameDur
	if w.Moving {
		dur = walkFrameDur
	}
	w.frameTimer += dt
	for w.frameTimer >= dur {
		w.frameTimer -= dur
		w.frame = (w.frame + 1) % walkerFrames
	}

	if !w.Moving {
		return
	}

	dx := w.TargetX - w.X
	if math.Abs(dx) <= w.ArriveEps {
		w.Moving = false
		w.state = walkerIdle
		return
	}

	step := w.Speed * dt
	if step > math.Abs(dx) {
		step = math.Abs(dx)
	}
	if dx < 0 {
		w.X -= step
	} else {
		w.X += step
	}
	w.pickState()
}

// ClampToWindow keeps the walker fully visible.
func (w *Walker) ClampToWindow(width, height float64) {
	if w.X < 0 {
		w.X = 0
	}
	if w.X > width-w.W {
		w.X = width - w.W
	}
	if w.Y < 0 {
		w.Y = 0
	}
	if w.Y > height-w.H {
		w.Y = height - w.H
	}
}

// Draw renders the walker procedurally: a body, a head and two legs that
// alternate with the animation frame.
func (w *Walker) Draw(screen *ebiten.Image) {
	body := color.RGBA{R: 90, G: 90, B: 110, A: 255}
	accent := color.RGBA{R: 230, G: 160, B: 60, A: 255}

	x := float32(w.X)
	y := float32(w.Y)
	bw := float32(w.W)
	bh := float32(w.H)

	// Body
	vector.DrawFilledRect(screen, x, y+bh*0.3, bw, bh*0.5, body, false)
	// Head, shifted toward the walking direction
	headOffset := float32(0)
	switch w.state {
	case walkerLeft:
		headOffset = -bw * 0.15
	case walkerRight:
		headOffset = bw * 0.15
	}
	vector.DrawFilledCircle(screen, x+bw/2+headOffset, y+bh*0.18, bw*0.3, accent, false)

	// Legs alternate on frame parity while moving; both planted when idle.
	legH := bh * 0.2
	legY := y + bh*0.8
	if w.Moving && w.frame%2 == 1 {
		vector.DrawFilledRect(screen, x+bw*0.15, legY, bw*0.2, legH*0.7, body, false)
		vector.DrawFilledRect(screen, x+bw*0.65, legY, bw*0.2, legH, body, false)
	} else {
		vector.DrawFilledRect(screen, x+bw*0.15, legY, bw*0.2, legH, body, false)
		vector.DrawFilledRect(screen, x+bw*0.65, legY, bw*0.2, legH*0.7, body, false)
	}
}

package flock

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/flocklab/go-flocking-simulation/pkg/geometry"
)

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Seed = 1
	return cfg
}

func newTestAgent(x, y float64, cfg *Config) *Agent {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	a := NewAgent(x, y, cfg, rng)
	a.Vel = geometry.Vector2D{}
	return a
}

func TestAgent_IntegrateCapsSpeed(t *testing.T) {
	cfg := testConfig()
	a := newTestAgent(0, 0, cfg)
	a.Vel = geometry.Vector2D{X: 3, Y: 0}
	a.Acc = geometry.Vector2D{X: 5, Y: 5}

	a.Integrate()

	if speed := a.Vel.Len(); speed > cfg.MaxSpeed+1e-9 {
		t.Errorf("speed after Integrate = %v; want <= %v", speed, cfg.MaxSpeed)
	}
	if !a.Acc.Eq(geometry.Vector2D{}) {
		t.Errorf("acceleration not reset after Integrate, got %v", a.Acc)
	}
	if !a.Pos.Eq(a.Vel) {
		t.Errorf("position should have moved by the capped velocity, got %v with vel %v", a.Pos, a.Vel)
	}
}

func TestAgent_IntegrateRepeatedSpeedCap(t *testing.T) {
	cfg := testConfig()
	a := newTestAgent(100, 100, cfg)
	rng := rand.New(rand.NewPCG(99, 99))

	for i := 0; i < 500; i++ {
		a.Acc = geometry.Vector2D{
			X: (rng.Float64() - 0.5) * 10,
			Y: (rng.Float64() - 0.5) * 10,
		}
		a.Integrate()
		if speed := a.Vel.Len(); speed > cfg.MaxSpeed+1e-9 {
			t.Fatalf("tick %d: speed %v exceeds cap %v", i, speed, cfg.MaxSpeed)
		}
	}
}

func TestAgent_WrapBounds(t *testing.T) {
	const (
		width  = 800.0
		height = 600.0
		radius = 3.0
	)

	tests := []struct {
		name string
		pos  geometry.Vector2D
		want geometry.Vector2D
	}{
		{"In bounds is a no-op", geometry.Vector2D{X: 400, Y: 300}, geometry.Vector2D{X: 400, Y: 300}},
		{"At lower x edge is a no-op", geometry.Vector2D{X: -radius, Y: 300}, geometry.Vector2D{X: -radius, Y: 300}},
		{"Exactly at right edge wraps left", geometry.Vector2D{X: width + radius, Y: 300}, geometry.Vector2D{X: -radius, Y: 300}},
		{"Past right edge wraps left", geometry.Vector2D{X: width + radius + 5, Y: 300}, geometry.Vector2D{X: -radius, Y: 300}},
		{"Past left edge wraps right", geometry.Vector2D{X: -radius - 1, Y: 300}, geometry.Vector2D{X: width + radius, Y: 300}},
		{"Exactly at bottom edge wraps up", geometry.Vector2D{X: 400, Y: height + radius}, geometry.Vector2D{X: 400, Y: -radius}},
		{"Past top edge wraps down", geometry.Vector2D{X: 400, Y: -radius - 2}, geometry.Vector2D{X: 400, Y: height + radius}},
		{"Both axes wrap", geometry.Vector2D{X: width + radius + 1, Y: -radius - 1}, geometry.Vector2D{X: -radius, Y: height + radius}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Agent{Pos: tt.pos, Radius: radius}
			a.WrapBounds(width, height)
			if !a.Pos.Eq(tt.want) {
				t.Errorf("WrapBounds moved %v to %v; want %v", tt.pos, a.Pos, tt.want)
			}
		})
	}
}

func TestAgent_SeparationSymmetry(t *testing.T) {
	cfg := testConfig()
	a := newTestAgent(0, 0, cfg)
	b := newTestAgent(1, 0, cfg)

	view := View{
		{Pos: a.Pos, Vel: a.Vel},
		{Pos: b.Pos, Vel: b.Vel},
	}

	fa := a.separation(view)
	fb := b.separation(view)

	if fa.X >= 0 {
		t.Errorf("agent at origin should be pushed away in -x, got %v", fa)
	}
	if fb.X <= 0 {
		t.Errorf("agent at (1,0) should be pushed away in +x, got %v", fb)
	}
	if math.Abs(fa.Len()-fb.Len()) > 1e-9 {
		t.Errorf("separation magnitudes differ: %v vs %v", fa.Len(), fb.Len())
	}
	if !fa.Add(fb).Eq(geometry.Vector2D{}) {
		t.Errorf("separation forces should be mutually opposing, sum = %v", fa.Add(fb))
	}
}

func TestAgent_SeparationIgnoresDistantNeighbors(t *testing.T) {
	cfg := testConfig()
	a := newTestAgent(0, 0, cfg)
	view := View{
		{Pos: a.Pos, Vel: a.Vel},
		{Pos: geometry.Vector2D{X: cfg.SeparationRadius * 3, Y: 0}},
	}

	if got := a.separation(view); !got.Eq(geometry.Vector2D{}) {
		t.Errorf("neighbor outside separation radius produced force %v; want zero", got)
	}
}

func TestAgent_CohesionSeeksCentroid(t *testing.T) {
	cfg := testConfig()
	a := newTestAgent(0, 0, cfg)
	view := View{
		{Pos: a.Pos, Vel: a.Vel},
		{Pos: geometry.Vector2D{X: 30, Y: 0}},
	}

	got := a.cohesion(view)
	if got.X <= 0 {
		t.Errorf("cohesion should pull toward neighbor at +x, got %v", got)
	}
	if got.Len() > a.MaxForce+1e-9 {
		t.Errorf("cohesion force %v exceeds maxForce %v", got.Len(), a.MaxForce)
	}
}

func TestAgent_AlignmentMatchesNeighborVelocity(t *testing.T) {
	cfg := testConfig()
	a := newTestAgent(0, 0, cfg)
	view := View{
		{Pos: a.Pos, Vel: a.Vel},
		{Pos: geometry.Vector2D{X: 10, Y: 0}, Vel: geometry.Vector2D{X: 2, Y: 0}},
	}

	got := a.alignment(view)
	if got.X <= 0 {
		t.Errorf("alignment should accelerate toward neighbor heading, got %v", got)
	}
}

func TestAgent_AlignmentStationaryNeighborsDoNotBrake(t *testing.T) {
	cfg := testConfig()
	a := newTestAgent(0, 0, cfg)
	a.Vel = geometry.Vector2D{X: 2, Y: 0}
	view := View{
		{Pos: a.Pos, Vel: a.Vel},
		{Pos: geometry.Vector2D{X: 10, Y: 0}},
	}

	if got := a.alignment(view); !got.Eq(geometry.Vector2D{}) {
		t.Errorf("stationary neighbors produced braking force %v; want zero", got)
	}
}

func TestAgent_ComputeFlockingForcesOnlyMutatesAcceleration(t *testing.T) {
	cfg := testConfig()
	a := newTestAgent(100, 100, cfg)
	a.Vel = geometry.Vector2D{X: 1, Y: 1}
	pos, vel := a.Pos, a.Vel

	view := View{
		{Pos: a.Pos, Vel: a.Vel},
		{Pos: geometry.Vector2D{X: 110, Y: 100}, Vel: geometry.Vector2D{X: -1, Y: 0}},
	}
	a.ComputeFlockingForces(view, 800, 600)

	if !a.Pos.Eq(pos) || !a.Vel.Eq(vel) {
		t.Errorf("force computation mutated kinematic state: pos %v vel %v", a.Pos, a.Vel)
	}
	if a.Acc.Eq(geometry.Vector2D{}) {
		t.Error("expected non-zero acceleration after force computation")
	}
}

func TestEnvironmentBias(t *testing.T) {
	const (
		height   = 600.0
		maxForce = 0.5
	)

	t.Run("Clamped to half maxForce", func(t *testing.T) {
		for _, y := range []float64{0, 120, 300, 599, 1200} {
			bias := environmentBias(geometry.Vector2D{X: 0, Y: y}, maxForce, height)
			if bias.Len() > maxForce/2+1e-9 {
				t.Errorf("bias at y=%v has magnitude %v; want <= %v", y, bias.Len(), maxForce/2)
			}
		}
	})

	t.Run("Pulls up below the sink line", func(t *testing.T) {
		bias := environmentBias(geometry.Vector2D{X: 0, Y: height * 0.9}, maxForce, height)
		if bias.Y >= 0 {
			t.Errorf("agent deep below the band should be pulled up, got %v", bias)
		}
	})

	t.Run("Drifts down above the band", func(t *testing.T) {
		bias := environmentBias(geometry.Vector2D{X: 0, Y: height * 0.05}, maxForce, height)
		if bias.Y <= 0 {
			t.Errorf("agent above the band should drift down, got %v", bias)
		}
	})

	t.Run("Always pulls rightward", func(t *testing.T) {
		bias := environmentBias(geometry.Vector2D{X: 0, Y: height * 0.2}, maxForce, height)
		if bias.X <= 0 {
			t.Errorf("bias should keep a rightward component, got %v", bias)
		}
	})
}

package flock

import (
	"testing"

	"github.com/flocklab/go-flocking-simulation/pkg/geometry"
)

func TestFlock_InitializePopulatesWithinBounds(t *testing.T) {
	cfg := testConfig()
	f := New(cfg)
	f.Initialize(40)

	if f.Count() != 40 {
		t.Fatalf("Count() = %d; want 40", f.Count())
	}
	for i, a := range f.Agents() {
		if a.Pos.X < 0 || a.Pos.X > cfg.WorldWidth || a.Pos.Y < 0 || a.Pos.Y > cfg.WorldHeight {
			t.Errorf("agent %d spawned out of bounds at %v", i, a.Pos)
		}
		if a.Vel.Len() > cfg.MaxSpeed+1e-9 {
			t.Errorf("agent %d spawned above max speed: %v", i, a.Vel.Len())
		}
	}
}

func TestFlock_InitializeReplacesPopulation(t *testing.T) {
	f := New(testConfig())
	f.Initialize(30)
	f.Initialize(5)

	if f.Count() != 5 {
		t.Errorf("Count() after re-initialize = %d; want 5", f.Count())
	}
}

func TestFlock_SeededInitializeIsReproducible(t *testing.T) {
	cfg := testConfig()
	cfg.Seed = 1234

	a := New(cfg)
	a.Initialize(20)
	b := New(cfg)
	b.Initialize(20)

	for i := range a.Agents() {
		if !a.Agents()[i].Pos.Eq(b.Agents()[i].Pos) || !a.Agents()[i].Vel.Eq(b.Agents()[i].Vel) {
			t.Fatalf("agent %d differs between identically seeded flocks", i)
		}
	}
}

func TestFlock_PopulationBoundary(t *testing.T) {
	f := New(testConfig())
	f.Initialize(0)

	if f.Count() != 0 {
		t.Fatalf("Count() after Initialize(0) = %d; want 0", f.Count())
	}

	f.AddAgents(10)
	if f.Count() != 10 {
		t.Errorf("Count() after AddAgents(10) = %d; want 10", f.Count())
	}

	f.RemoveAgents(15)
	if f.Count() != 0 {
		t.Errorf("Count() after RemoveAgents(15) = %d; want 0 (removal never goes negative)", f.Count())
	}
}

func TestFlock_RemoveAgentsFromTail(t *testing.T) {
	f := New(testConfig())
	f.AddAgent(1, 1)
	f.AddAgent(2, 2)
	f.AddAgent(3, 3)

	f.RemoveAgents(2)

	if f.Count() != 1 {
		t.Fatalf("Count() = %d; want 1", f.Count())
	}
	if !f.Agents()[0].Pos.Eq(geometry.Vector2D{X: 1, Y: 1}) {
		t.Errorf("removal should take agents from the tail, survivor at %v", f.Agents()[0].Pos)
	}
}

func TestFlock_AddAgentAtPosition(t *testing.T) {
	f := New(testConfig())
	f.AddAgent(123, 456)

	if f.Count() != 1 {
		t.Fatalf("Count() = %d; want 1", f.Count())
	}
	if got := f.Agents()[0].Pos; !got.Eq(geometry.Vector2D{X: 123, Y: 456}) {
		t.Errorf("AddAgent placed agent at %v; want (123, 456)", got)
	}
}

func TestFlock_EmptyStatsAreZero(t *testing.T) {
	f := New(testConfig())

	if got := f.AverageSpeed(); got != 0 {
		t.Errorf("AverageSpeed() on empty flock = %v; want 0", got)
	}
	if got := f.Coherence(); got != 0 {
		t.Errorf("Coherence() on empty flock = %v; want 0", got)
	}

	f.AddAgent(10, 10)
	if got := f.Coherence(); got != 0 {
		t.Errorf("Coherence() with one agent = %v; want 0", got)
	}
}

func TestFlock_AverageSpeed(t *testing.T) {
	f := New(testConfig())
	f.AddAgent(0, 0)
	f.AddAgent(10, 10)

	agents := f.Agents()
	agents[0].Vel = geometry.Vector2D{X: 3, Y: 4} // speed 5
	agents[1].Vel = geometry.Vector2D{X: 0, Y: 1} // speed 1

	if got := f.AverageSpeed(); got != 3 {
		t.Errorf("AverageSpeed() = %v; want 3", got)
	}
}

func TestFlock_Coherence(t *testing.T) {
	f := New(testConfig())
	f.AddAgent(-10, 0)
	f.AddAgent(10, 0)

	// Centroid is the origin, both agents 10 away.
	if got := f.Coherence(); got != 10 {
		t.Errorf("Coherence() = %v; want 10", got)
	}
}

func TestFlock_ResizeWrapsOnNextTick(t *testing.T) {
	cfg := testConfig()
	f := New(cfg)
	f.AddAgent(900, 200)

	f.Resize(500, 400)
	if w, h := f.Bounds(); w != 500 || h != 400 {
		t.Fatalf("Bounds() = %vx%v; want 500x400", w, h)
	}

	f.TickSerial()
	a := f.Agents()[0]
	if a.Pos.X < -a.Radius || a.Pos.X > 500+a.Radius {
		t.Errorf("agent not wrapped into resized world, at %v", a.Pos)
	}
}

func TestFlock_TickSerialKeepsSpeedCap(t *testing.T) {
	cfg := testConfig()
	cfg.Seed = 7
	f := New(cfg)
	f.Initialize(60)

	for tick := 0; tick < 50; tick++ {
		f.TickSerial()
		for i, a := range f.Agents() {
			if speed := a.Vel.Len(); speed > cfg.MaxSpeed+1e-9 {
				t.Fatalf("tick %d agent %d: speed %v exceeds cap", tick, i, speed)
			}
			if !a.Acc.Eq(geometry.Vector2D{}) {
				t.Fatalf("tick %d agent %d: acceleration not reset", tick, i)
			}
		}
	}
}

func TestFlock_TickSerialStaysInWrapBox(t *testing.T) {
	cfg := testConfig()
	cfg.Seed = 11
	f := New(cfg)
	f.Initialize(40)

	for tick := 0; tick < 300; tick++ {
		f.TickSerial()
	}
	for i, a := range f.Agents() {
		if a.Pos.X < -a.Radius || a.Pos.X > cfg.WorldWidth+a.Radius ||
			a.Pos.Y < -a.Radius || a.Pos.Y > cfg.WorldHeight+a.Radius {
			t.Errorf("agent %d escaped the wrap box, at %v", i, a.Pos)
		}
	}
}

func TestFlock_CohesionClusterDoesNotDiverge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 3
	// Large world so the cluster cannot wrap during the run, and a wide
	// cohesion radius so every agent sees the whole cluster.
	cfg.WorldWidth = 10000
	cfg.WorldHeight = 10000
	cfg.CohesionRadius = 200
	cfg.AlignmentRadius = 60
	cfg.SeparationRadius = 10

	f := New(cfg)
	for i := 0; i < 50; i++ {
		x := 5000 + float64(i%10)*6
		y := 5000 + float64(i/10)*6
		f.AddAgent(x, y)
	}
	for _, a := range f.Agents() {
		a.Vel = geometry.Vector2D{}
	}

	initial := f.Coherence()
	for tick := 0; tick < 200; tick++ {
		f.TickSerial()
	}
	final := f.Coherence()

	if final > initial*3+5 {
		t.Errorf("cluster diverged: coherence grew from %v to %v", initial, final)
	}
}

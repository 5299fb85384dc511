package flock

import (
	"math"
	"math/rand/v2"

	"github.com/flocklab/go-flocking-simulation/pkg/geometry"
)

// Color carries the render tint of an agent. It never influences physics.
type Color struct {
	R, G, B uint8
}

// AgentState is the read-only kinematic snapshot of one agent that force
// computations receive. Handing out value copies instead of *Agent keeps a
// rule from accidentally mutating a neighbor mid-tick.
type AgentState struct {
	Pos geometry.Vector2D
	Vel geometry.Vector2D
}

// View is a borrowed snapshot of the whole population, valid for the duration
// of one force-computation phase.
type View []AgentState

// Agent is one boid: kinematic state plus the per-agent tuning constants.
// Pos and Vel are only ever mutated by the agent's own Integrate/WrapBounds;
// Acc is the transient per-tick force accumulator.
type Agent struct {
	Pos geometry.Vector2D
	Vel geometry.Vector2D
	Acc geometry.Vector2D

	Radius   float64
	MaxSpeed float64
	MaxForce float64

	SeparationRadius float64
	AlignmentRadius  float64
	CohesionRadius   float64

	Color Color
}

// NewAgent creates an agent at the given position with a random heading and
// a random speed in the upper half of the allowed range.
func NewAgent(x, y float64, cfg *Config, rng *rand.Rand) *Agent {
	heading := rng.Float64() * 2 * math.Pi
	speed := cfg.MaxSpeed * (0.5 + 0.5*rng.Float64())
	return &Agent{
		Pos:              geometry.Vector2D{X: x, Y: y},
		Vel:              geometry.FromAngle(heading).Mul(speed),
		Radius:           cfg.AgentRadius,
		MaxSpeed:         cfg.MaxSpeed,
		MaxForce:         cfg.MaxForce,
		SeparationRadius: cfg.SeparationRadius,
		AlignmentRadius:  cfg.AlignmentRadius,
		CohesionRadius:   cfg.CohesionRadius,
		Color: Color{
			R: uint8(90 + rng.IntN(60)),
			G: uint8(160 + rng.IntN(60)),
			B: uint8(200 + rng.IntN(56)),
		},
	}
}

// ComputeFlockingForces evaluates the four steering rules against the
// population view and adds their weighted sum into Acc. Velocity and position
// are left untouched; integration happens in a separate phase so that every
// agent within a tick sees the same time-slice.
func (a *Agent) ComputeFlockingForces(view View, worldWidth, worldHeight float64) {
	_ = worldWidth // the bias only cares about the vertical band

	sep := a.separation(view)
	ali := a.alignment(view)
	coh := a.cohesion(view)
	env := environmentBias(a.Pos, a.MaxForce, worldHeight)

	a.Acc = a.Acc.
		Add(sep.Mul(separationWeight)).
		Add(ali.Mul(alignmentWeight)).
		Add(coh.Mul(cohesionWeight)).
		Add(env.Mul(biasWeight))
}

// separation accumulates a repulsion vector away from every neighbor inside
// the separation radius, weighted by 1/distance. diff/d² is exactly
// normalize(diff)/d, so the distance-0 gate doubles as the NaN guard.
func (a *Agent) separation(view View) geometry.Vector2D {
	radiusSq := a.SeparationRadius * a.SeparationRadius
	var sum geometry.Vector2D
	count := 0
	for i := range view {
		diff := a.Pos.Sub(view[i].Pos)
		distSq := diff.LenSqr()
		if distSq <= 0 || distSq >= radiusSq {
			continue
		}
		sum = sum.Add(diff.Div(distSq))
		count++
	}
	return steerFromSeparation(sum, count, a.Vel, a.MaxSpeed, a.MaxForce)
}

// alignment steers toward the average velocity of neighbors inside the
// alignment radius.
func (a *Agent) alignment(view View) geometry.Vector2D {
	radiusSq := a.AlignmentRadius * a.AlignmentRadius
	var velSum geometry.Vector2D
	count := 0
	for i := range view {
		distSq := a.Pos.DistanceSquaredTo(view[i].Pos)
		if distSq <= 0 || distSq >= radiusSq {
			continue
		}
		velSum = velSum.Add(view[i].Vel)
		count++
	}
	return steerFromAlignment(velSum, count, a.Vel, a.MaxSpeed, a.MaxForce)
}

// cohesion seeks the centroid of neighbors inside the cohesion radius.
func (a *Agent) cohesion(view View) geometry.Vector2D {
	radiusSq := a.CohesionRadius * a.CohesionRadius
	var posSum geometry.Vector2D
	count := 0
	for i := range view {
		distSq := a.Pos.DistanceSquaredTo(view[i].Pos)
		if distSq <= 0 || distSq >= radiusSq {
			continue
		}
		posSum = posSum.Add(view[i].Pos)
		count++
	}
	return steerFromCohesion(posSum, count, a.Pos, a.Vel, a.MaxSpeed, a.MaxForce)
}

// Integrate applies the accumulated acceleration, caps the speed, moves the
// agent and resets the accumulator for the next tick.
func (a *Agent) Integrate() {
	a.Vel = a.Vel.Add(a.Acc).Limit(a.MaxSpeed)
	a.Pos = a.Pos.Add(a.Vel)
	a.Acc = geometry.Vector2D{}
}

// WrapBounds teleports the agent to the opposite edge once it leaves the
// [-radius, dim+radius) box on either axis. In-bounds agents are untouched.
func (a *Agent) WrapBounds(width, height float64) {
	if a.Pos.X < -a.Radius {
		a.Pos.X = width + a.Radius
	} else if a.Pos.X >= width+a.Radius {
		a.Pos.X = -a.Radius
	}
	if a.Pos.Y < -a.Radius {
		a.Pos.Y = height + a.Radius
	} else if a.Pos.Y >= height+a.Radius {
		a.Pos.Y = -a.Radius
	}
}

package flock

import (
	"math"

	"github.com/flocklab/go-flocking-simulation/pkg/geometry"
)

// Steering weights combining the four rules. Separation dominates so that
// agents keep personal space even inside a dense cluster; the environmental
// bias stays gentle.
const (
	separationWeight = 1.5
	alignmentWeight  = 1.0
	cohesionWeight   = 1.0
	biasWeight       = 0.8
)

// Environmental bias tuning. Agents are nudged rightward and toward a
// preferred horizontal band at 20% of the world height. Agents that sink
// past the 30% line get pulled back up; agents above it drift mildly down
// so the flock does not pile up at the very top.
const (
	biasRightwardPull = 0.5
	biasBandFraction  = 0.2
	biasSinkFraction  = 0.3
	biasDownwardDrift = 0.05
)

// The helpers below turn accumulated neighbor sums into steering forces.
// Both tick strategies scan neighbors their own way (object view vs columnar
// snapshot) but funnel the resulting sums through these exact functions, so
// the only thing that can differ between the two paths is summation order.

// steerFromSeparation converts the accumulated inverse-square repulsion sum
// into a steering force. The sum is expected to hold Σ (pos−other)/d² over
// neighbors inside the separation radius, which equals the classic
// normalize-then-divide-by-d weighting.
func steerFromSeparation(sum geometry.Vector2D, count int, vel geometry.Vector2D, maxSpeed, maxForce float64) geometry.Vector2D {
	if count == 0 {
		return geometry.Vector2D{}
	}
	avg := sum.Div(float64(count))
	if avg.LenSqr() < geometry.Epsilon {
		return geometry.Vector2D{}
	}
	desired := avg.Normalize().Mul(maxSpeed)
	return desired.Sub(vel).Limit(maxForce)
}

// steerFromAlignment steers toward matching the average neighbor velocity.
func steerFromAlignment(velSum geometry.Vector2D, count int, vel geometry.Vector2D, maxSpeed, maxForce float64) geometry.Vector2D {
	if count == 0 {
		return geometry.Vector2D{}
	}
	avg := velSum.Div(float64(count))
	if avg.LenSqr() < geometry.Epsilon {
		// Stationary neighbors give no heading to match; steering toward a
		// zero desired velocity would just brake.
		return geometry.Vector2D{}
	}
	desired := avg.Normalize().Mul(maxSpeed)
	return desired.Sub(vel).Limit(maxForce)
}

// steerFromCohesion seeks the centroid of the accumulated neighbor positions.
func steerFromCohesion(posSum geometry.Vector2D, count int, pos, vel geometry.Vector2D, maxSpeed, maxForce float64) geometry.Vector2D {
	if count == 0 {
		return geometry.Vector2D{}
	}
	centroid := posSum.Div(float64(count))
	return seek(centroid, pos, vel, maxSpeed, maxForce)
}

// seek is the canonical conversion of a target point into a steering force:
// limit(normalize(target−pos)·maxSpeed − vel, maxForce).
func seek(target, pos, vel geometry.Vector2D, maxSpeed, maxForce float64) geometry.Vector2D {
	offset := target.Sub(pos)
	if offset.LenSqr() < geometry.Epsilon {
		return geometry.Vector2D{}
	}
	desired := offset.Normalize().Mul(maxSpeed)
	return desired.Sub(vel).Limit(maxForce)
}

// environmentBias is the non-social force: a constant rightward pull plus a
// vertical correction toward the preferred band. The correction grows with
// the distance from the band but is clamped to half the agent's maxForce,
// keeping it gentler than the flocking forces.
func environmentBias(pos geometry.Vector2D, maxForce, worldHeight float64) geometry.Vector2D {
	bandY := worldHeight * biasBandFraction
	sinkY := worldHeight * biasSinkFraction

	bias := geometry.Vector2D{X: biasRightwardPull}
	if pos.Y > sinkY {
		bias.Y = -(pos.Y - sinkY) / worldHeight
	} else {
		bias.Y = biasDownwardDrift
	}

	urgency := math.Abs(pos.Y-bandY) / worldHeight
	return bias.Mul(1 + urgency).Limit(maxForce * 0.5)
}

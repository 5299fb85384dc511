package flock

import (
	"sync"

	"github.com/flocklab/go-flocking-simulation/pkg/geometry"
)

// soaSnapshot is the columnar copy of the population's kinematic state taken
// once per parallel tick. Decoupling the neighbor scan from the live agent
// objects is what makes the concurrent reads safe and cache friendly.
type soaSnapshot struct {
	posX []float64
	posY []float64
	velX []float64
	velY []float64
}

func (s *soaSnapshot) grow(n int) {
	if cap(s.posX) < n {
		s.posX = make([]float64, n)
		s.posY = make([]float64, n)
		s.velX = make([]float64, n)
		s.velY = make([]float64, n)
		return
	}
	s.posX = s.posX[:n]
	s.posY = s.posY[:n]
	s.velX = s.velX[:n]
	s.velY = s.velY[:n]
}

// TickParallel advances the simulation by one step using the worker pool.
// It computes the same forces as TickSerial, restructured into three
// data-parallel phases with a barrier after each:
//
//	(a) snapshot extraction into the structure-of-arrays buffers
//	(b) per-agent force accumulation, writing only the agent's output slot
//	(c) applying outputs, integrating and wrapping
//
// Within a phase every iteration reads shared state and writes a disjoint
// slot, so no locking is needed; the barriers order the phases because (b)
// reads what (a) wrote and (c) reads what (b) wrote.
func (f *Flock) TickParallel() {
	n := len(f.agents)
	if n == 0 {
		return
	}
	f.snap.grow(n)
	if cap(f.outX) < n {
		f.outX = make([]float64, n)
		f.outY = make([]float64, n)
	}
	f.outX = f.outX[:n]
	f.outY = f.outY[:n]

	f.fanOut(n, func(start, end int) {
		for i := start; i < end; i++ {
			a := f.agents[i]
			f.snap.posX[i] = a.Pos.X
			f.snap.posY[i] = a.Pos.Y
			f.snap.velX[i] = a.Vel.X
			f.snap.velY[i] = a.Vel.Y
		}
	})

	f.fanOut(n, func(start, end int) {
		for i := start; i < end; i++ {
			f.accumulateForces(i, n)
		}
	})

	f.fanOut(n, func(start, end int) {
		for i := start; i < end; i++ {
			a := f.agents[i]
			a.Acc = a.Acc.Add(geometry.Vector2D{X: f.outX[i], Y: f.outY[i]})
			a.Integrate()
			a.WrapBounds(f.width, f.height)
		}
	})
}

// fanOut splits [0, n) into contiguous chunks, runs fn on each chunk in its
// own goroutine and waits for all of them. The Wait is the phase barrier.
func (f *Flock) fanOut(n int, fn func(start, end int)) {
	workers := f.workers
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		fn(0, n)
		return
	}
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// accumulateForces scans all n snapshot entries once for agent i,
// classifying every neighbor against the three squared radii and
// accumulating the partial sums in locals. The resulting force delta goes to
// the agent's output slot, never to shared state. The sums feed the same
// steer helpers as the serial path, so only summation order can differ.
func (f *Flock) accumulateForces(i, n int) {
	a := f.agents[i]
	px := f.snap.posX[i]
	py := f.snap.posY[i]

	sepSq := a.SeparationRadius * a.SeparationRadius
	aliSq := a.AlignmentRadius * a.AlignmentRadius
	cohSq := a.CohesionRadius * a.CohesionRadius

	var sepX, sepY float64
	var velX, velY float64
	var posX, posY float64
	sepCount, aliCount, cohCount := 0, 0, 0

	for j := 0; j < n; j++ {
		dx := px - f.snap.posX[j]
		dy := py - f.snap.posY[j]
		distSq := dx*dx + dy*dy
		if distSq <= 0 {
			// Self, and exact overlaps that would divide by zero.
			continue
		}
		if distSq < sepSq {
			sepX += dx / distSq
			sepY += dy / distSq
			sepCount++
		}
		if distSq < aliSq {
			velX += f.snap.velX[j]
			velY += f.snap.velY[j]
			aliCount++
		}
		if distSq < cohSq {
			posX += f.snap.posX[j]
			posY += f.snap.posY[j]
			cohCount++
		}
	}

	pos := geometry.Vector2D{X: px, Y: py}
	vel := geometry.Vector2D{X: f.snap.velX[i], Y: f.snap.velY[i]}

	force := steerFromSeparation(geometry.Vector2D{X: sepX, Y: sepY}, sepCount, vel, a.MaxSpeed, a.MaxForce).Mul(separationWeight)
	force = force.Add(steerFromAlignment(geometry.Vector2D{X: velX, Y: velY}, aliCount, vel, a.MaxSpeed, a.MaxForce).Mul(alignmentWeight))
	force = force.Add(steerFromCohesion(geometry.Vector2D{X: posX, Y: posY}, cohCount, pos, vel, a.MaxSpeed, a.MaxForce).Mul(cohesionWeight))
	force = force.Add(environmentBias(pos, a.MaxForce, f.height).Mul(biasWeight))

	f.outX[i] = force.X
	f.outY[i] = force.Y
}

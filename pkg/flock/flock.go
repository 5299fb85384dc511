package flock

import (
	"math"
	"math/rand/v2"
	"runtime"
	"time"
)

// Flock owns the agent collection and the world bounds, and advances the
// simulation one discrete tick at a time. It is not safe for concurrent use:
// callers must not read agent state while a tick is running.
type Flock struct {
	agents []*Agent
	width  float64
	height float64

	cfg *Config
	rng *rand.Rand
	log Logger

	workers int

	// Scratch buffers reused across ticks to keep the hot path allocation
	// free once the population stabilizes.
	view View
	snap soaSnapshot
	outX []float64
	outY []float64
}

// New creates an empty flock with the bounds and tuning from cfg. A zero
// cfg.Seed picks a time-based seed; any other value makes agent placement
// fully reproducible.
func New(cfg *Config) *Flock {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Flock{
		width:   cfg.WorldWidth,
		height:  cfg.WorldHeight,
		cfg:     cfg,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		log:     NewNoOpLogger(),
		workers: workers,
	}
}

// SetLogger replaces the no-op default.
func (f *Flock) SetLogger(l Logger) {
	if l != nil {
		f.log = l
	}
}

// Initialize replaces the collection with n freshly constructed agents at
// uniformly random positions within the current world bounds.
func (f *Flock) Initialize(n int) {
	f.agents = f.agents[:0]
	for i := 0; i < n; i++ {
		f.agents = append(f.agents, f.randomAgent())
	}
	f.log.Debugf("flock initialized with %d agents in %gx%g world", n, f.width, f.height)
}

// AddAgent appends one agent at the given coordinates.
func (f *Flock) AddAgent(x, y float64) {
	f.agents = append(f.agents, NewAgent(x, y, f.cfg, f.rng))
}

// AddAgents appends count agents at random positions.
func (f *Flock) AddAgents(count int) {
	for i := 0; i < count; i++ {
		f.agents = append(f.agents, f.randomAgent())
	}
	f.log.Debugf("added %d agents, population now %d", count, len(f.agents))
}

// RemoveAgents drops count agents from the tail of the collection. Removing
// more than available empties the flock.
func (f *Flock) RemoveAgents(count int) {
	if count >= len(f.agents) {
		f.agents = f.agents[:0]
	} else {
		f.agents = f.agents[:len(f.agents)-count]
	}
	f.log.Debugf("removed up to %d agents, population now %d", count, len(f.agents))
}

// Resize updates the world bounds. Existing agents are left in place; any
// that are now out of bounds get wrapped on the next tick.
func (f *Flock) Resize(width, height float64) {
	f.width = width
	f.height = height
	f.log.Debugf("world resized to %gx%g", width, height)
}

// Count returns the current number of agents.
func (f *Flock) Count() int {
	return len(f.agents)
}

// Agents exposes the live collection for renderers and statistics readers.
// Callers must treat it as read-only and only touch it between ticks.
func (f *Flock) Agents() []*Agent {
	return f.agents
}

// Bounds returns the current world dimensions.
func (f *Flock) Bounds() (width, height float64) {
	return f.width, f.height
}

// TickSerial advances the simulation by one step on the calling goroutine.
// Phase one computes every force against a single immutable view so all
// agents observe the same time-slice; phase two integrates and wraps.
// Interleaving the phases would make the result depend on agent order.
func (f *Flock) TickSerial() {
	view := f.makeView()
	for _, a := range f.agents {
		a.ComputeFlockingForces(view, f.width, f.height)
	}
	for _, a := range f.agents {
		a.Integrate()
		a.WrapBounds(f.width, f.height)
	}
}

// makeView copies the population's kinematic state into the reusable
// snapshot slice.
func (f *Flock) makeView() View {
	f.view = f.view[:0]
	for _, a := range f.agents {
		f.view = append(f.view, AgentState{Pos: a.Pos, Vel: a.Vel})
	}
	return f.view
}

// AverageSpeed returns the mean velocity magnitude, 0 for an empty flock.
func (f *Flock) AverageSpeed() float64 {
	if len(f.agents) == 0 {
		return 0
	}
	total := 0.0
	for _, a := range f.agents {
		total += a.Vel.Len()
	}
	return total / float64(len(f.agents))
}

// Coherence returns the mean distance of every agent from the population
// centroid. Lower values mean tighter flocking; fewer than 2 agents yield 0.
func (f *Flock) Coherence() float64 {
	if len(f.agents) < 2 {
		return 0
	}
	var cx, cy float64
	for _, a := range f.agents {
		cx += a.Pos.X
		cy += a.Pos.Y
	}
	n := float64(len(f.agents))
	cx /= n
	cy /= n

	total := 0.0
	for _, a := range f.agents {
		dx := a.Pos.X - cx
		dy := a.Pos.Y - cy
		total += math.Sqrt(dx*dx + dy*dy)
	}
	return total / n
}

func (f *Flock) randomAgent() *Agent {
	x := f.rng.Float64() * f.width
	y := f.rng.Float64() * f.height
	return NewAgent(x, y, f.cfg, f.rng)
}

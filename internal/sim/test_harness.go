package sim

import (
	"fmt"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// TestSim is a headless harness used by tests and the headless report. It
// builds a hand-placed world (or a generated one) and steps it at a fixed dt.
type TestSim struct {
	Sim    *Simulation
	SimLog *SimLog
	Last   TickResult
	Peak   float64

	world    World
	tuning   Tuning
	seed     int64
	generate bool
	verbose  bool
}

// SimOption configures a TestSim before the simulation is built.
type SimOption func(*TestSim)

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return func(ts *TestSim) { ts.seed = seed }
}

// WithVerbose records footsteps in the log.
func WithVerbose(v bool) SimOption {
	return func(ts *TestSim) { ts.verbose = v }
}

// WithTuning replaces the default tuning.
func WithTuning(t Tuning) SimOption {
	return func(ts *TestSim) { ts.tuning = t }
}

// WithGeneratedWorld scatters a full world from the seed instead of using
// hand-placed entities. Hand-placed options given alongside are ignored.
func WithGeneratedWorld() SimOption {
	return func(ts *TestSim) { ts.generate = true }
}

// WithObstacle adds a tree-like obstacle at ground position (x, z).
func WithObstacle(x, z, radius float64) SimOption {
	return func(ts *TestSim) {
		ts.world.Obstacles = append(ts.world.Obstacles, Obstacle{Position: mgl64.Vec3{x, 0, z}, Radius: radius})
	}
}

// WithPage adds a page at (x, y, z).
func WithPage(x, y, z float64) SimOption {
	return func(ts *TestSim) {
		ts.world.Pages = append(ts.world.Pages, Page{ID: len(ts.world.Pages), Position: mgl64.Vec3{x, y, z}})
	}
}

// WithGoal places the campfire.
func WithGoal(x, y, z float64) SimOption {
	return func(ts *TestSim) { ts.world.Goal = mgl64.Vec3{x, y, z} }
}

// WithPlayer places the player and sets the yaw.
func WithPlayer(x, y, z, yaw float64) SimOption {
	return func(ts *TestSim) { ts.world.Player = Pose{Position: mgl64.Vec3{x, y, z}, Yaw: yaw} }
}

// WithAdversary places the adversary.
func WithAdversary(x, y, z float64) SimOption {
	return func(ts *TestSim) { ts.world.Adversary = Pose{Position: mgl64.Vec3{x, y, z}} }
}

// NewTestSim builds the harness. Hand-placed worlds default to the player at
// the origin at eye height, the adversary parked far away, the goal out of
// reach and pages filled in far from the player up to the page count.
func NewTestSim(opts ...SimOption) (*TestSim, error) {
	ts := &TestSim{tuning: DefaultTuning(), seed: 1}
	ts.world.Player = Pose{Position: mgl64.Vec3{0, ts.tuning.EyeHeight, 0}}
	ts.world.Adversary = Pose{Position: mgl64.Vec3{500, 2.68, 500}}
	ts.world.Goal = mgl64.Vec3{-500, 0, -500}
	for _, o := range opts {
		o(ts)
	}

	rng := rand.New(rand.NewSource(ts.seed)) // #nosec G404 -- test harness
	world := ts.world
	if ts.generate {
		world = GenerateWorld(rng, ts.tuning)
	}
	for len(world.Pages) < ts.tuning.PageCount {
		n := float64(len(world.Pages))
		world.Pages = append(world.Pages, Page{ID: len(world.Pages), Position: mgl64.Vec3{400 + 10*n, 1.5, 400}})
	}

	s, err := New(world, ts.tuning, rng)
	if err != nil {
		return nil, fmt.Errorf("build test sim: %w", err)
	}
	ts.SimLog = NewSimLog(ts.verbose)
	s.SetLog(ts.SimLog)
	ts.Sim = s
	return ts, nil
}

// Step advances one tick and tracks the peak threat.
func (ts *TestSim) Step(dt float64, in MovementIntents) TickResult {
	ts.Last = ts.Sim.Tick(dt, in)
	if ts.Last.Threat > ts.Peak {
		ts.Peak = ts.Last.Threat
	}
	return ts.Last
}

// RunTicks advances n ticks with the same intents, stopping early if the
// session ends.
func (ts *TestSim) RunTicks(n int, dt float64, in MovementIntents) TickResult {
	for i := 0; i < n; i++ {
		ts.Step(dt, in)
		if ts.Last.Flags.Ended() {
			break
		}
	}
	return ts.Last
}

// RunAutopilot lets the scripted pilot play for at most maxTicks.
func (ts *TestSim) RunAutopilot(dt float64, maxTicks int) TickResult {
	ap := NewAutopilot(ts.Sim)
	ts.Last = Drive(ts.Sim, ap, dt, maxTicks, func(r TickResult) {
		if r.Threat > ts.Peak {
			ts.Peak = r.Threat
		}
	})
	return ts.Last
}

// Report classifies the session so far.
func (ts *TestSim) Report() OutcomeReport {
	return DetermineOutcome(ts.Last, ts.Sim.Tuning(), ts.SimLog, ts.Peak)
}

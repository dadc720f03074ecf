// Package session runs one night at a time on top of the simulation and fans
// every tick out to the optional observers: sound, spectators, a replay
// recorder and the run history. Both frontends and the headless report drive
// the simulation through a Runner.
package session

import (
	"fmt"
	"log"
	"math/rand"
	"strings"

	"github.com/Garsondee/Nightwood/internal/record"
	"github.com/Garsondee/Nightwood/internal/sim"
	"github.com/Garsondee/Nightwood/internal/store"
)

// Sound plays cues for a tick's events.
type Sound interface {
	Handle(r sim.TickResult)
}

// Publisher streams ticks to spectators.
type Publisher interface {
	Publish(sessionID string, r sim.TickResult) error
}

// History stores the summary of every finished session.
type History interface {
	Insert(row store.SessionRow) error
}

// Options wires the observers. Nil fields are skipped.
type Options struct {
	Tuning    sim.Tuning
	Seed      int64
	Verbose   bool // keep footsteps in the sim log
	Sound     Sound
	Publisher Publisher
	History   History
}

// Runner owns the current simulation and its bookkeeping.
type Runner struct {
	opts Options

	sim       *sim.Simulation
	simLog    *sim.SimLog
	pilot     *sim.Autopilot
	rec       *record.Recorder
	last      sim.TickResult
	peak      float64
	seed      int64
	sessionID string
	finished  bool
}

// New builds a runner and starts the first session with opts.Seed.
func New(opts Options) (*Runner, error) {
	r := &Runner{opts: opts}
	if err := r.Start(opts.Seed); err != nil {
		return nil, err
	}
	return r, nil
}

// Start throws the current session away and generates a new world from seed.
func (r *Runner) Start(seed int64) error {
	rng := rand.New(rand.NewSource(seed)) // #nosec G404 -- seeded gameplay
	world := sim.GenerateWorld(rng, r.opts.Tuning)
	s, err := sim.New(world, r.opts.Tuning, rng)
	if err != nil {
		return fmt.Errorf("start session (seed %d): %w", seed, err)
	}
	r.sim = s
	r.simLog = sim.NewSimLog(r.opts.Verbose)
	s.SetLog(r.simLog)
	r.pilot = sim.NewAutopilot(s)
	r.rec = nil
	r.seed = seed
	r.sessionID = record.NewSessionID()
	r.peak = 0
	r.finished = false
	r.last = s.Tick(0, sim.MovementIntents{})
	return nil
}

// Next starts a new session with the following seed.
func (r *Runner) Next() error {
	return r.Start(r.seed + 1)
}

// Record streams every observed tick of the current session into rec. The
// recorder is dropped when the next session starts.
func (r *Runner) Record(rec *record.Recorder) error {
	r.rec = rec
	return rec.Record(r.last)
}

// Step advances one tick with player input.
func (r *Runner) Step(dt float64, in sim.MovementIntents) sim.TickResult {
	return r.observe(r.sim.Tick(dt, in))
}

// StepAutopilot lets the scripted pilot play one tick.
func (r *Runner) StepAutopilot(dt float64) sim.TickResult {
	cmd := r.pilot.Decide(r.last, r.sim.Goal(), dt)
	if cmd.Burn {
		r.sim.AttemptBurnPages()
	}
	r.sim.Turn(cmd.DYaw, -r.last.Player.Pitch)
	return r.Step(dt, cmd.Intents)
}

// RunAutopilot plays until the session ends or maxTicks have passed.
func (r *Runner) RunAutopilot(dt float64, maxTicks int) sim.TickResult {
	for i := 0; i < maxTicks && !r.last.Flags.Ended(); i++ {
		r.StepAutopilot(dt)
	}
	return r.last
}

// ResetPilot hands a fresh autopilot the controls, e.g. after the player
// drove for a while.
func (r *Runner) ResetPilot() {
	r.pilot = sim.NewAutopilot(r.sim)
}

func (r *Runner) observe(t sim.TickResult) sim.TickResult {
	r.last = t
	if t.Threat > r.peak {
		r.peak = t.Threat
	}
	if r.opts.Sound != nil {
		r.opts.Sound.Handle(t)
	}
	if r.opts.Publisher != nil {
		if err := r.opts.Publisher.Publish(r.sessionID, t); err != nil {
			log.Printf("session %s: publish: %v", r.sessionID, err)
		}
	}
	if r.rec != nil {
		if err := r.rec.Record(t); err != nil {
			log.Printf("session %s: record: %v", r.sessionID, err)
			r.rec = nil
		}
	}
	if t.Flags.Ended() && !r.finished {
		r.finish()
	}
	return t
}

func (r *Runner) finish() {
	r.finished = true
	if r.opts.History == nil {
		return
	}
	if err := r.opts.History.Insert(store.RowFromReport(r.sessionID, r.seed, r.Report())); err != nil {
		log.Printf("session %s: history: %v", r.sessionID, err)
	}
}

// Sim exposes the running simulation for actions and queries.
func (r *Runner) Sim() *sim.Simulation { return r.sim }

// Log returns the structured log of the current session.
func (r *Runner) Log() *sim.SimLog { return r.simLog }

// Last is the most recent tick result.
func (r *Runner) Last() sim.TickResult { return r.last }

// Seed of the current session.
func (r *Runner) Seed() int64 { return r.seed }

// SessionID of the current session.
func (r *Runner) SessionID() string { return r.sessionID }

// Finished reports whether the current session has ended and been stored.
func (r *Runner) Finished() bool { return r.finished }

// Averting reports whether the autopilot is looking away from the adversary.
func (r *Runner) Averting() bool { return r.pilot.Averting() }

// Report classifies the current session so far.
func (r *Runner) Report() sim.OutcomeReport {
	return sim.DetermineOutcome(r.last, r.sim.Tuning(), r.simLog, r.peak)
}

// ReportText is the plain-text session report: a header line, the outcome
// and the full sim log.
func (r *Runner) ReportText() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Nightwood session %s (seed %d)\n", r.sessionID, r.seed)
	fmt.Fprintf(&sb, "%s\n\n", r.Report())
	sb.WriteString(r.simLog.Format())
	return sb.String()
}

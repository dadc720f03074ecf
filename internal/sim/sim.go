package sim

import (
	"fmt"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// TickResult is everything presentation needs after a tick.
type TickResult struct {
	Tick        int
	Time        float64 // simulated seconds since the session started
	Player      PlayerState
	Adversary   AdversaryState
	Battery     BatteryState
	BatteryBand BatteryBand
	Collected   int
	Remaining   []Page
	Threat      float64
	CanBurn     bool
	Events      []Event
	Flags       SessionFlags
}

// Simulation is the single owner of all session state. It is not safe for
// concurrent use; presentation reads results after Tick returns.
type Simulation struct {
	tuning    Tuning
	world     World
	rng       *rand.Rand
	player    PlayerState
	battery   BatteryState
	adversary AdversaryState
	session   SessionState
	movement  *MovementController
	meter     *ResourceMeter
	pages     *CollectionTracker
	ai        *AdversaryAI
	log       *SimLog

	tick    int
	elapsed float64
	threat  float64
	pending []Event // events raised by actions between ticks
}

// New validates the world and builds a simulation ready for its first tick.
// rng drives threat noise and relocation; pass a seeded source for
// reproducible sessions.
func New(world World, tuning Tuning, rng *rand.Rand) (*Simulation, error) {
	if err := tuning.Validate(); err != nil {
		return nil, err
	}
	if err := world.Validate(tuning); err != nil {
		return nil, fmt.Errorf("invalid world: %w", err)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1)) // #nosec G404 -- gameplay randomness
	}
	obstacles := make([]Obstacle, len(world.Obstacles))
	copy(obstacles, world.Obstacles)
	world.Obstacles = obstacles

	s := &Simulation{
		tuning: tuning,
		world:  world,
		rng:    rng,
		player: PlayerState{
			Position: world.Player.Position,
			Yaw:      world.Player.Yaw,
			Pitch:    world.Player.Pitch,
		},
		battery: BatteryState{
			Level:        tuning.BatteryCapacity,
			DrainRate:    tuning.DrainRate(),
			FlashlightOn: true,
		},
		adversary: AdversaryState{
			Position: world.Adversary.Position,
			Yaw:      world.Adversary.Yaw,
		},
		log: NewSimLog(false),
	}
	s.movement = newMovementController(&s.tuning, obstacles)
	s.meter = &ResourceMeter{tuning: &s.tuning}
	s.pages = newCollectionTracker(&s.tuning, world.Pages)
	s.ai = &AdversaryAI{tuning: &s.tuning, rng: rng}
	return s, nil
}

// SetLog replaces the event log. A nil log disables logging.
func (s *Simulation) SetLog(l *SimLog) {
	s.log = l
}

// Log returns the event log, possibly nil.
func (s *Simulation) Log() *SimLog {
	return s.log
}

// Tick advances the simulation by dt seconds. Stages run in a fixed order
// (movement, battery, pages, adversary) and the first stage that ends the
// session stops the rest. An ended session is frozen: Tick only reports.
func (s *Simulation) Tick(dt float64, in MovementIntents) TickResult {
	events := s.pending
	s.pending = nil
	if s.session.Ended() {
		return s.result(events)
	}

	s.tick++
	s.elapsed += dt

	if s.movement.Update(&s.player, in, dt) {
		events = s.emit(events, Event{Kind: EventFootstep})
	}

	if s.meter.Update(&s.battery, dt) {
		events = s.emit(events, Event{Kind: EventBatteryEmpty})
		s.session.TriggerLoss(LossBatteryDepleted)
		s.threat = 0
		return s.result(events)
	}

	picked, unlocked := s.pages.Update(s.player.Position)
	for _, id := range picked {
		events = s.emit(events, Event{Kind: EventPagePickup, PageID: id})
	}
	if unlocked {
		events = s.emit(events, Event{Kind: EventObjectiveUnlocked})
	}

	pc := s.ai.Perceive(&s.adversary, s.player)
	s.threat = pc.Threat
	if s.ai.Captures(pc) {
		events = s.emit(events, Event{Kind: EventCaptured})
		s.session.TriggerLoss(LossCaught)
		return s.result(events)
	}
	if s.ai.Advance(&s.adversary, s.player, s.pages.Collected(), dt) {
		events = s.emit(events, Event{Kind: EventRelocated})
	}

	return s.result(events)
}

// SetFlashlight switches the flashlight. It is refused once the session has
// ended or the battery is flat, and returns whether anything changed.
func (s *Simulation) SetFlashlight(on bool) bool {
	if s.session.Ended() || s.battery.Level <= 0 || s.battery.FlashlightOn == on {
		return false
	}
	s.battery.FlashlightOn = on
	s.pending = s.emit(s.pending, Event{Kind: EventFlashlightToggled, On: on})
	return true
}

// ToggleFlashlight flips the flashlight, with the same rules as SetFlashlight.
func (s *Simulation) ToggleFlashlight() bool {
	return s.SetFlashlight(!s.battery.FlashlightOn)
}

// AttemptBurnPages wins the session when every page is collected and the
// player stands by the campfire. It returns whether the win fired.
func (s *Simulation) AttemptBurnPages() bool {
	if s.session.Ended() || !s.pages.CanBurn(s.player.Position, s.world.Goal) {
		return false
	}
	if !s.session.TriggerWin() {
		return false
	}
	s.threat = 0
	s.pending = s.emit(s.pending, Event{Kind: EventWon})
	return true
}

// Look applies a mouse movement in pixels.
func (s *Simulation) Look(dx, dy float64) {
	sens := s.tuning.LookSensitivity
	s.Turn(-dx*sens, -dy*sens)
}

// Turn rotates the view by radians. No-op once the session has ended.
func (s *Simulation) Turn(dYaw, dPitch float64) {
	if s.session.Ended() {
		return
	}
	s.player.Turn(dYaw, dPitch, s.tuning.MaxPitch)
}

func (s *Simulation) emit(events []Event, e Event) []Event {
	e.Tick = s.tick
	if s.log != nil {
		value := ""
		switch e.Kind {
		case EventPagePickup:
			value = fmt.Sprintf("page %d (%d/%d)", e.PageID, s.pages.Collected(), s.tuning.PageCount)
		case EventFlashlightToggled:
			value = fmt.Sprintf("on=%t level=%.1f", e.On, s.battery.Level)
		case EventRelocated:
			p := s.adversary.Position
			value = fmt.Sprintf("to (%.1f, %.1f) dist=%.1f", p[0], p[2], horizontalDist(p, s.player.Position))
		case EventCaptured, EventBatteryEmpty:
			value = fmt.Sprintf("t=%.1fs", s.elapsed)
		}
		s.log.Add(s.tick, e.Kind.category(), e.Kind.String(), value, s.elapsed)
	}
	return append(events, e)
}

func (s *Simulation) result(events []Event) TickResult {
	return TickResult{
		Tick:        s.tick,
		Time:        s.elapsed,
		Player:      s.player,
		Adversary:   s.adversary,
		Battery:     s.battery,
		BatteryBand: s.meter.Band(s.battery),
		Collected:   s.pages.Collected(),
		Remaining:   s.pages.Remaining(),
		Threat:      s.threat,
		CanBurn:     !s.session.Ended() && s.pages.CanBurn(s.player.Position, s.world.Goal),
		Events:      events,
		Flags:       s.Flags(),
	}
}

// Flags returns the session latches with the current collected count.
func (s *Simulation) Flags() SessionFlags {
	f := s.session.Flags()
	f.Collected = s.pages.Collected()
	return f
}

// Player returns the current player pose.
func (s *Simulation) Player() PlayerState { return s.player }

// Adversary returns the current adversary pose.
func (s *Simulation) Adversary() AdversaryState { return s.adversary }

// Battery returns the current battery state.
func (s *Simulation) Battery() BatteryState { return s.battery }

// World returns the world the simulation was built from.
func (s *Simulation) World() World { return s.world }

// Tuning returns the simulation's tuning.
func (s *Simulation) Tuning() Tuning { return s.tuning }

// Goal returns the campfire position.
func (s *Simulation) Goal() mgl64.Vec3 { return s.world.Goal }

// Elapsed returns simulated seconds.
func (s *Simulation) Elapsed() float64 { return s.elapsed }

// TickCount returns the number of ticks that advanced the simulation.
func (s *Simulation) TickCount() int { return s.tick }

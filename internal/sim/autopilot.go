package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	pilotTurnRate     = 3.0  // radians per second
	pilotAvertRange   = 14.0 // averts gaze when the adversary is this close and in view
	pilotAvertFacing  = 0.4
	pilotStuckWindow  = 1.5 // seconds without progress before strafing
	pilotStuckEpsilon = 0.5
	pilotStrafeTime   = 0.8
	pilotFacingSlack  = 0.6 // only walk forward when roughly facing the target
)

// PilotCommand is what the autopilot wants to do this frame.
type PilotCommand struct {
	Intents MovementIntents
	DYaw    float64
	Burn    bool
}

// Autopilot is a scripted player used by headless runs and spectator demos.
// It walks to the nearest page, then to the campfire, and looks away when the
// adversary gets close.
type Autopilot struct {
	heading     float64
	lastPos     mgl64.Vec3
	sinceCheck  float64
	strafeTime  float64
	strafeRight bool
	averting    bool
}

// NewAutopilot creates a pilot for a freshly built simulation.
func NewAutopilot(s *Simulation) *Autopilot {
	p := s.Player()
	return &Autopilot{heading: p.Yaw, lastPos: p.Position}
}

// Target returns where the pilot is headed: the nearest page, or the goal.
func (ap *Autopilot) Target(r TickResult, goal mgl64.Vec3) mgl64.Vec3 {
	if len(r.Remaining) == 0 {
		return goal
	}
	best := r.Remaining[0].Position
	bestD := horizontalDist(best, r.Player.Position)
	for _, p := range r.Remaining[1:] {
		if d := horizontalDist(p.Position, r.Player.Position); d < bestD {
			best, bestD = p.Position, d
		}
	}
	return best
}

// Decide produces the next command from the last tick result.
func (ap *Autopilot) Decide(r TickResult, goal mgl64.Vec3, dt float64) PilotCommand {
	var cmd PilotCommand
	if r.Flags.Ended() {
		return cmd
	}
	if r.CanBurn {
		cmd.Burn = true
		return cmd
	}

	pos := r.Player.Position
	target := ap.Target(r, goal)
	want := yawToward(pos, target)

	toAdv := r.Adversary.Position.Sub(pos)
	advDist := toAdv.Len()
	ap.averting = false
	if advDist < pilotAvertRange && advDist > 1e-6 && r.Player.ViewDir().Dot(toAdv.Mul(1/advDist)) > pilotAvertFacing {
		ap.averting = true
		want = yawToward(pos, pos.Sub(toAdv))
	}

	ap.heading = r.Player.Yaw
	before := ap.heading
	ap.heading = updateHeading(ap.heading, want, pilotTurnRate*dt)
	cmd.DYaw = normalizeAngle(ap.heading - before)

	ap.sinceCheck += dt
	if ap.sinceCheck >= pilotStuckWindow {
		if horizontalDist(pos, ap.lastPos) < pilotStuckEpsilon {
			ap.strafeTime = pilotStrafeTime
			ap.strafeRight = !ap.strafeRight
		}
		ap.lastPos = pos
		ap.sinceCheck = 0
	}

	if math.Abs(normalizeAngle(want-ap.heading)) < pilotFacingSlack || ap.averting {
		cmd.Intents.Forward = true
	}
	if ap.strafeTime > 0 {
		ap.strafeTime -= dt
		if ap.strafeRight {
			cmd.Intents.Right = true
		} else {
			cmd.Intents.Left = true
		}
	}
	return cmd
}

// Averting reports whether the last decision was to look away.
func (ap *Autopilot) Averting() bool {
	return ap.averting
}

// yawToward returns the yaw whose Forward vector points from 'from' to 'to'.
func yawToward(from, to mgl64.Vec3) float64 {
	return math.Atan2(-(to[0] - from[0]), -(to[2] - from[2]))
}

// updateHeading rotates heading toward target by at most turnRate.
func updateHeading(heading, target, turnRate float64) float64 {
	diff := normalizeAngle(target - heading)
	if math.Abs(diff) <= turnRate {
		return target
	} else if diff > 0 {
		return normalizeAngle(heading + turnRate)
	}
	return normalizeAngle(heading - turnRate)
}

// Drive runs the pilot against s for at most maxTicks fixed steps and returns
// the last tick result.
func Drive(s *Simulation, ap *Autopilot, dt float64, maxTicks int, observe func(TickResult)) TickResult {
	r := s.Tick(0, MovementIntents{})
	for i := 0; i < maxTicks && !r.Flags.Ended(); i++ {
		cmd := ap.Decide(r, s.Goal(), dt)
		if cmd.Burn {
			s.AttemptBurnPages()
		}
		s.Turn(cmd.DYaw, -r.Player.Pitch)
		r = s.Tick(dt, cmd.Intents)
		if observe != nil {
			observe(r)
		}
	}
	return r
}

package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MovementIntents are the held directional inputs for one tick.
type MovementIntents struct {
	Forward  bool
	Backward bool
	Left     bool
	Right    bool
}

// Any reports whether at least one intent is held.
func (in MovementIntents) Any() bool {
	return in.Forward || in.Backward || in.Left || in.Right
}

// PlayerState is the player's pose. Velocity is the last tick's local
// displacement (x = strafe, y = forward/back, negative y is forward).
type PlayerState struct {
	Position mgl64.Vec3
	Yaw      float64
	Pitch    float64
	Roll     float64
	Velocity mgl64.Vec2
}

// Forward returns the horizontal unit vector the player faces.
func (p PlayerState) Forward() mgl64.Vec3 {
	return mgl64.Vec3{-math.Sin(p.Yaw), 0, -math.Cos(p.Yaw)}
}

// ViewDir returns the unit look direction including pitch.
func (p PlayerState) ViewDir() mgl64.Vec3 {
	cp := math.Cos(p.Pitch)
	return mgl64.Vec3{-math.Sin(p.Yaw) * cp, math.Sin(p.Pitch), -math.Cos(p.Yaw) * cp}
}

// MovementController moves the player and owns the bob/step timers.
type MovementController struct {
	tuning    *Tuning
	obstacles []Obstacle
	bobTimer  float64
	stepTimer float64
}

func newMovementController(t *Tuning, obstacles []Obstacle) *MovementController {
	return &MovementController{tuning: t, obstacles: obstacles}
}

// Update advances the player by one tick and reports whether a footstep fired.
func (m *MovementController) Update(p *PlayerState, in MovementIntents, dt float64) (footstep bool) {
	t := m.tuning
	step := t.MoveSpeed * dt

	// Diagonals are deliberately not normalized.
	var local mgl64.Vec2
	if in.Forward {
		local[1] -= step
	}
	if in.Backward {
		local[1] += step
	}
	if in.Left {
		local[0] -= step
	}
	if in.Right {
		local[0] += step
	}
	p.Velocity = local

	sin, cos := math.Sincos(p.Yaw)
	p.Position[0] += local[0]*cos + local[1]*sin
	p.Position[2] += -local[0]*sin + local[1]*cos

	ResolveCollisions(&p.Position, m.obstacles)
	p.Position[0] = clamp(p.Position[0], -t.PlayHalfExtent, t.PlayHalfExtent)
	p.Position[2] = clamp(p.Position[2], -t.PlayHalfExtent, t.PlayHalfExtent)

	if in.Any() {
		m.bobTimer += dt * t.BobFrequency
		p.Position[1] = t.EyeHeight + math.Sin(m.bobTimer)*t.BobAmplitude
		p.Roll = math.Cos(m.bobTimer*0.5) * t.RollAmplitude

		m.stepTimer += dt
		if m.stepTimer > t.StepInterval {
			m.stepTimer = 0
			footstep = true
		}
		return footstep
	}

	k := math.Min(dt*t.SettleRate, 1)
	p.Position[1] = lerp(p.Position[1], t.EyeHeight, k)
	p.Roll = lerp(p.Roll, 0, k)
	m.bobTimer = 0
	m.stepTimer = t.StepInterval
	return false
}

// ResolveCollisions pushes pos out of every obstacle it penetrates, in one
// pass. A push that lands inside a later circle is resolved by that circle;
// one landing inside an earlier circle waits for the next tick.
func ResolveCollisions(pos *mgl64.Vec3, obstacles []Obstacle) {
	for i := range obstacles {
		o := &obstacles[i]
		dx := pos[0] - o.Position[0]
		dz := pos[2] - o.Position[2]
		dist := math.Sqrt(dx*dx + dz*dz)
		if dist >= o.Radius {
			continue
		}
		if dist < 1e-9 {
			// Dead centre: no direction to push along, pick +x.
			pos[0] = o.Position[0] + o.Radius
			continue
		}
		overlap := o.Radius - dist
		pos[0] += dx / dist * overlap
		pos[2] += dz / dist * overlap
	}
}

// Turn applies a look change in radians. Pitch is clamped to ±MaxPitch.
func (p *PlayerState) Turn(dYaw, dPitch, maxPitch float64) {
	p.Yaw = normalizeAngle(p.Yaw + dYaw)
	p.Pitch = clamp(p.Pitch+dPitch, -maxPitch, maxPitch)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// normalizeAngle wraps an angle to [-pi, pi].
func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

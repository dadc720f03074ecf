package sim

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// AdversaryState is the stalker's pose and relocation timer.
type AdversaryState struct {
	Position      mgl64.Vec3
	Yaw           float64
	SinceRelocate float64
}

// Perception is what the adversary worked out about the player this tick.
type Perception struct {
	Distance float64
	Facing   float64 // cosine between the player's view and the adversary
	Threat   float64 // [0, ThreatMax]
}

// AdversaryAI stalks, captures and relocates. It holds no state of its own
// beyond the tuning and the random source.
type AdversaryAI struct {
	tuning *Tuning
	rng    *rand.Rand
}

// Perceive computes distance, facing and the threat signal, and turns the
// adversary to face the player on the horizontal plane.
func (ai *AdversaryAI) Perceive(a *AdversaryState, p PlayerState) Perception {
	t := ai.tuning
	toAdv := a.Position.Sub(p.Position)
	dist := toAdv.Len()
	facing := 0.0
	if dist > 1e-9 {
		facing = p.ViewDir().Dot(toAdv.Mul(1 / dist))
	}

	a.Yaw = math.Atan2(p.Position[0]-a.Position[0], p.Position[2]-a.Position[2])

	threat := 0.0
	if dist < t.ThreatRampRange {
		threat += (t.ThreatRampRange - dist) / t.ThreatRampRange
	}
	if dist < t.ThreatSightRange && facing > t.ThreatSightCone {
		threat += (facing - t.ThreatSightCone) * 2
	}
	if threat > 0 {
		threat += (ai.rng.Float64()*2 - 1) * t.ThreatNoise
	}
	return Perception{
		Distance: dist,
		Facing:   facing,
		Threat:   clamp(threat, 0, t.ThreatMax),
	}
}

// Captures reports whether the perception meets the capture condition.
// Both bounds are exclusive.
func (ai *AdversaryAI) Captures(pc Perception) bool {
	return pc.Distance < ai.tuning.CaptureDistance && pc.Facing > ai.tuning.CaptureFacing
}

// RelocationInterval returns the seconds between relocations for a page count.
func (t Tuning) RelocationInterval(collected int) float64 {
	sched := t.RelocateSchedule
	idx := collected
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sched) {
		idx = len(sched) - 1
	}
	return math.Max(t.RelocateFloor, sched[idx])
}

// InFrontChance is the probability that a relocation lands in the player's view.
func (t Tuning) InFrontChance(collected int) float64 {
	return math.Min(1, t.InFrontBase+t.InFrontPerPage*float64(collected))
}

// Advance runs the relocation timer. It returns true when the adversary moved.
func (ai *AdversaryAI) Advance(a *AdversaryState, p PlayerState, collected int, dt float64) bool {
	a.SinceRelocate += dt
	if a.SinceRelocate <= ai.tuning.RelocationInterval(collected) {
		return false
	}
	a.Position = ai.PlaceNear(p, collected)
	a.SinceRelocate = 0
	return true
}

// PlaceNear picks a relocation point around the player. Placement uses the
// player's horizontal facing so that pitch does not shorten the distance.
func (ai *AdversaryAI) PlaceNear(p PlayerState, collected int) mgl64.Vec3 {
	t := ai.tuning
	view := p.Forward()
	roll := ai.rng.Float64()
	dist := t.SpawnMinDistance + ai.rng.Float64()*(t.SpawnMaxDistance-t.SpawnMinDistance)

	var spawn mgl64.Vec3
	if roll < t.InFrontChance(collected) {
		spawn = p.Position.Add(view.Mul(dist))
	} else {
		bearing := ai.rng.Float64() * 2 * math.Pi
		spawn = mgl64.Vec3{
			p.Position[0] + math.Cos(bearing)*dist,
			p.Position[1],
			p.Position[2] + math.Sin(bearing)*dist,
		}
	}

	if collected <= t.LenientPages && horizontalDist(spawn, p.Position) < t.LenientRadius {
		spawn = spawn.Add(view.Mul(t.LenientPush))
	}
	spawn[1] = t.AdversaryHeight
	return spawn
}

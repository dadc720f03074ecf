// Package view holds the renderer-independent parts of drawing a session:
// the heading-up projection and how well lit a point is. Both the ebiten and
// the terminal frontends build on it.
package view

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Garsondee/Nightwood/internal/sim"
)

const (
	FlashRange   = 24.0
	FlashHalfFOV = 0.45 // radians
	AmbientRange = 5.0
	FireRange    = 9.0
)

// FlatDist is the distance between a and b on the ground plane.
func FlatDist(a, b mgl64.Vec3) float64 {
	return math.Hypot(a[0]-b[0], a[2]-b[2])
}

// Local returns pos relative to the player in view space: x to the right,
// y ahead, both in world units.
func Local(p sim.PlayerState, pos mgl64.Vec3) (x, y float64) {
	rel := pos.Sub(p.Position)
	rel[1] = 0
	right := mgl64.Vec3{math.Cos(p.Yaw), 0, -math.Sin(p.Yaw)}
	return rel.Dot(right), rel.Dot(p.Forward())
}

// LightAt returns how well lit pos is, in [0, 1]: a dim ambient pool around
// the player, the flashlight cone and the campfire.
func LightAt(p sim.PlayerState, flashlightOn bool, goal, pos mgl64.Vec3) float64 {
	v := 0.0
	d := FlatDist(p.Position, pos)
	if d < AmbientRange {
		v = 0.25 * (1 - d/AmbientRange)
	}
	if flashlightOn && d < FlashRange {
		if d < 1e-6 {
			v = 1
		} else {
			dir := mgl64.Vec3{pos[0] - p.Position[0], 0, pos[2] - p.Position[2]}.Mul(1 / d)
			if dir.Dot(p.Forward()) > math.Cos(FlashHalfFOV) {
				v = math.Max(v, 1-0.7*d/FlashRange)
			}
		}
	}
	if dg := FlatDist(goal, pos); dg < FireRange {
		v = math.Max(v, 0.8*(1-dg/FireRange))
	}
	return v
}

// ClipRay returns how far a ray from origin along the unit vector dir travels
// before it enters one of the obstacles, capped at maxLen. Obstacles that
// already contain the origin are ignored.
func ClipRay(origin, dir mgl64.Vec3, maxLen float64, obstacles []sim.Obstacle) float64 {
	best := maxLen
	for _, o := range obstacles {
		fx, fz := origin[0]-o.Position[0], origin[2]-o.Position[2]
		c := fx*fx + fz*fz - o.Radius*o.Radius
		if c <= 0 {
			continue
		}
		b := fx*dir[0] + fz*dir[2]
		disc := b*b - c
		if disc < 0 {
			continue
		}
		if t := -b - math.Sqrt(disc); t > 0 && t < best {
			best = t
		}
	}
	return best
}

// Near returns the obstacles whose edge lies within r of pos.
func Near(obstacles []sim.Obstacle, pos mgl64.Vec3, r float64) []sim.Obstacle {
	var out []sim.Obstacle
	for _, o := range obstacles {
		if FlatDist(o.Position, pos) < r+o.Radius {
			out = append(out, o)
		}
	}
	return out
}

// AdversaryVisible reports whether the adversary should be drawn, and how
// strongly. It is hidden while parked below ground and otherwise shows when
// lit or within arm's reach.
func AdversaryVisible(r sim.TickResult, goal mgl64.Vec3) (float64, bool) {
	a := r.Adversary.Position
	if a.Y() < 0 {
		return 0, false
	}
	lit := LightAt(r.Player, r.Battery.FlashlightOn, goal, a)
	if FlatDist(a, r.Player.Position) < 4 {
		lit = math.Max(lit, 0.5)
	}
	return lit, lit >= 0.05
}

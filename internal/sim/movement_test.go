package sim

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func newSim(t *testing.T, opts ...SimOption) *TestSim {
	t.Helper()
	ts, err := NewTestSim(opts...)
	if err != nil {
		t.Fatalf("NewTestSim: %v", err)
	}
	return ts
}

func TestMovement_PushedOutToCircleBoundary(t *testing.T) {
	ts := newSim(t, WithObstacle(5, 0, 3))
	// 4 units of +x in one tick lands at x=4, one unit inside the circle.
	r := ts.Step(4/ts.Sim.Tuning().MoveSpeed, MovementIntents{Right: true})
	if r.Player.Position.X() > 2+1e-9 {
		t.Fatalf("expected x <= 2 after resolution, got %.6f", r.Player.Position.X())
	}
	if math.Abs(r.Player.Position.X()-2) > 1e-9 {
		t.Fatalf("expected to rest on the boundary at x=2, got %.6f", r.Player.Position.X())
	}
	if math.Abs(r.Player.Position.Z()) > 1e-9 {
		t.Fatalf("push along the x axis should not move z, got %.6f", r.Player.Position.Z())
	}
}

func TestMovement_DiagonalIsFasterThanStraight(t *testing.T) {
	straight := newSim(t).Step(1, MovementIntents{Forward: true})
	diag := newSim(t).Step(1, MovementIntents{Forward: true, Right: true})

	speed := DefaultTuning().MoveSpeed
	ds := horizontalDist(straight.Player.Position, mgl64.Vec3{})
	dd := horizontalDist(diag.Player.Position, mgl64.Vec3{})
	if math.Abs(ds-speed) > 1e-9 {
		t.Fatalf("straight move should cover %.2f, got %.6f", speed, ds)
	}
	// Intents are summed, not normalized.
	if math.Abs(dd-speed*math.Sqrt2) > 1e-9 {
		t.Fatalf("diagonal move should cover %.4f, got %.6f", speed*math.Sqrt2, dd)
	}
}

func TestMovement_ForwardFollowsYaw(t *testing.T) {
	ts := newSim(t, WithPlayer(0, 1.7, 0, math.Pi/2))
	r := ts.Step(1, MovementIntents{Forward: true})
	// yaw pi/2 faces -x.
	if math.Abs(r.Player.Position.X()+2.8) > 1e-9 || math.Abs(r.Player.Position.Z()) > 1e-9 {
		t.Fatalf("expected (-2.8, 0), got (%.4f, %.4f)", r.Player.Position.X(), r.Player.Position.Z())
	}
}

func TestMovement_ClampedToPlayArea(t *testing.T) {
	ts := newSim(t, WithPlayer(97, 1.7, -97, 0))
	for i := 0; i < 20; i++ {
		r := ts.Step(0.5, MovementIntents{Right: true, Forward: true})
		x, z := r.Player.Position.X(), r.Player.Position.Z()
		if x < -98 || x > 98 || z < -98 || z > 98 {
			t.Fatalf("tick %d: position (%.3f, %.3f) escaped the play area", i, x, z)
		}
	}
	if ts.Last.Player.Position.X() != 98 || ts.Last.Player.Position.Z() != -98 {
		t.Fatalf("expected to be pinned in the corner, got (%.3f, %.3f)",
			ts.Last.Player.Position.X(), ts.Last.Player.Position.Z())
	}
}

func TestResolveCollisions_NoResidualPenetration(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for trial := 0; trial < 300; trial++ {
		var obstacles []Obstacle
		for len(obstacles) < 8 {
			c := Obstacle{
				Position: mgl64.Vec3{rng.Float64()*40 - 20, 0, rng.Float64()*40 - 20},
				Radius:   0.5 + rng.Float64()*4,
			}
			overlaps := false
			for _, o := range obstacles {
				if horizontalDist(c.Position, o.Position) < c.Radius+o.Radius {
					overlaps = true
					break
				}
			}
			if !overlaps {
				obstacles = append(obstacles, c)
			}
		}
		pos := mgl64.Vec3{rng.Float64()*40 - 20, 1.7, rng.Float64()*40 - 20}
		ResolveCollisions(&pos, obstacles)
		for i, o := range obstacles {
			if d := horizontalDist(pos, o.Position); d < o.Radius-1e-9 {
				t.Fatalf("trial %d: still %.6f inside obstacle %d (r=%.3f)", trial, o.Radius-d, i, o.Radius)
			}
		}
	}
}

func TestResolveCollisions_DeadCentre(t *testing.T) {
	pos := mgl64.Vec3{3, 1.7, 4}
	ResolveCollisions(&pos, []Obstacle{{Position: mgl64.Vec3{3, 0, 4}, Radius: 2}})
	if pos.X() != 5 || pos.Z() != 4 {
		t.Fatalf("expected push to (5, 4), got (%.3f, %.3f)", pos.X(), pos.Z())
	}
}

func TestMovement_BobWhileMovingSettlesWhenIdle(t *testing.T) {
	ts := newSim(t)
	tun := ts.Sim.Tuning()
	moved := false
	for i := 0; i < 30; i++ {
		r := ts.Step(1.0/60, MovementIntents{Forward: true})
		dy := r.Player.Position.Y() - tun.EyeHeight
		if math.Abs(dy) > tun.BobAmplitude+1e-12 {
			t.Fatalf("bob %.4f exceeds amplitude", dy)
		}
		if dy != 0 {
			moved = true
		}
	}
	if !moved {
		t.Fatal("expected a vertical bob while walking")
	}
	var r TickResult
	for i := 0; i < 300; i++ {
		r = ts.Step(1.0/60, MovementIntents{})
	}
	if math.Abs(r.Player.Position.Y()-tun.EyeHeight) > 1e-6 || math.Abs(r.Player.Roll) > 1e-8 {
		t.Fatalf("expected pose to settle, got y=%.6f roll=%.8f", r.Player.Position.Y(), r.Player.Roll)
	}
}

func countEvents(r TickResult, kind EventKind) int {
	n := 0
	for _, e := range r.Events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func TestMovement_FootstepInterval(t *testing.T) {
	ts := newSim(t)
	walk := MovementIntents{Forward: true}
	var steps []int
	for i := 1; i <= 6; i++ {
		if countEvents(ts.Step(0.25, walk), EventFootstep) > 0 {
			steps = append(steps, i)
		}
	}
	if len(steps) != 2 || steps[0] != 3 || steps[1] != 6 {
		t.Fatalf("expected footsteps on ticks 3 and 6, got %v", steps)
	}

	// Stopping primes the timer so the next walk starts with a step.
	ts.Step(0.25, MovementIntents{})
	if countEvents(ts.Step(0.25, walk), EventFootstep) != 1 {
		t.Fatal("expected an immediate footstep after resuming")
	}
}

func TestLook_PitchClamped(t *testing.T) {
	ts := newSim(t)
	ts.Sim.Look(0, -1e6)
	if p := ts.Sim.Player().Pitch; p != math.Pi/2 {
		t.Fatalf("expected pitch clamped to π/2, got %.4f", p)
	}
	ts.Sim.Look(0, 2e6)
	if p := ts.Sim.Player().Pitch; p != -math.Pi/2 {
		t.Fatalf("expected pitch clamped to -π/2, got %.4f", p)
	}
	ts.Sim.Look(100, 0)
	if y := ts.Sim.Player().Yaw; math.Abs(y+0.2) > 1e-12 {
		t.Fatalf("expected yaw -0.2 after 100px right, got %.4f", y)
	}
}

func TestNormalizeAngle(t *testing.T) {
	if a := normalizeAngle(3 * math.Pi); math.Abs(math.Abs(a)-math.Pi) > 1e-9 {
		t.Fatalf("3π should normalize to ±π, got %.4f", a)
	}
	if normalizeAngle(0) != 0 {
		t.Fatal("0 should normalize to 0")
	}
}

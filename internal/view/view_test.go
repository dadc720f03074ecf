package view

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Garsondee/Nightwood/internal/sim"
)

func TestLocal_HeadingUp(t *testing.T) {
	p := sim.PlayerState{Position: mgl64.Vec3{10, 1.7, 10}}
	x, y := Local(p, mgl64.Vec3{10, 0, 9})
	if math.Abs(x) > 1e-9 || math.Abs(y-1) > 1e-9 {
		t.Fatalf("a point at -z should be straight ahead, got (%.3f, %.3f)", x, y)
	}
	x, y = Local(p, mgl64.Vec3{11, 0, 10})
	if math.Abs(x-1) > 1e-9 || math.Abs(y) > 1e-9 {
		t.Fatalf("+x should be to the right at yaw 0, got (%.3f, %.3f)", x, y)
	}

	p.Yaw = math.Pi / 2 // facing -x
	x, y = Local(p, mgl64.Vec3{9, 0, 10})
	if math.Abs(x) > 1e-9 || math.Abs(y-1) > 1e-9 {
		t.Fatalf("expected the point straight ahead, got (%.3f, %.3f)", x, y)
	}
}

func TestLightAt(t *testing.T) {
	p := sim.PlayerState{Position: mgl64.Vec3{0, 1.7, 0}}
	farGoal := mgl64.Vec3{500, 0, 500}
	ahead := mgl64.Vec3{0, 1.5, -10}
	behind := mgl64.Vec3{0, 1.5, 10}

	if v := LightAt(p, true, farGoal, ahead); v < 0.5 {
		t.Fatalf("a point 10 ahead in the beam should be lit, got %.2f", v)
	}
	if v := LightAt(p, false, farGoal, ahead); v != 0 {
		t.Fatalf("with the light off a distant point should be dark, got %.2f", v)
	}
	if v := LightAt(p, true, farGoal, behind); v != 0 {
		t.Fatalf("a point behind the player should be dark, got %.2f", v)
	}
	if v := LightAt(p, false, farGoal, mgl64.Vec3{1, 0, 0}); v <= 0 {
		t.Fatal("the ambient pool should light a point at arm's length")
	}
	if v := LightAt(p, false, behind, behind); v < 0.79 {
		t.Fatalf("the campfire should light its own position, got %.2f", v)
	}
}

func TestClipRay(t *testing.T) {
	obstacles := []sim.Obstacle{{Position: mgl64.Vec3{0, 0, -10}, Radius: 2}}
	dir := mgl64.Vec3{0, 0, -1}
	if d := ClipRay(mgl64.Vec3{}, dir, 24, obstacles); math.Abs(d-8) > 1e-9 {
		t.Fatalf("expected the ray to stop at the trunk (8), got %.4f", d)
	}
	if d := ClipRay(mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, 24, obstacles); d != 24 {
		t.Fatalf("a ray missing every trunk should run full length, got %.4f", d)
	}
	if d := ClipRay(mgl64.Vec3{0, 0, -10}, dir, 24, obstacles); d != 24 {
		t.Fatalf("a ray starting inside a trunk ignores it, got %.4f", d)
	}
}

func TestNear(t *testing.T) {
	obstacles := []sim.Obstacle{
		{Position: mgl64.Vec3{0, 0, -10}, Radius: 2},
		{Position: mgl64.Vec3{0, 0, -30}, Radius: 2},
	}
	if got := Near(obstacles, mgl64.Vec3{}, 9); len(got) != 1 {
		t.Fatalf("expected only the first trunk within reach, got %d", len(got))
	}
}

func TestAdversaryVisible(t *testing.T) {
	goal := mgl64.Vec3{500, 0, 500}
	r := sim.TickResult{
		Player:    sim.PlayerState{Position: mgl64.Vec3{0, 1.7, 0}},
		Adversary: sim.AdversaryState{Position: mgl64.Vec3{0, -10, 0}},
	}
	if _, ok := AdversaryVisible(r, goal); ok {
		t.Fatal("a parked adversary is never drawn")
	}
	r.Adversary.Position = mgl64.Vec3{0, 2.68, 3}
	if lit, ok := AdversaryVisible(r, goal); !ok || lit < 0.5 {
		t.Fatalf("an adversary within reach shows even in the dark, got %.2f", lit)
	}
	r.Adversary.Position = mgl64.Vec3{0, 2.68, -15}
	if _, ok := AdversaryVisible(r, goal); ok {
		t.Fatal("unlit at 15 units it should stay hidden")
	}
	r.Battery.FlashlightOn = true
	if _, ok := AdversaryVisible(r, goal); !ok {
		t.Fatal("in the beam it should show")
	}
}

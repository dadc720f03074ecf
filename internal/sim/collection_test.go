package sim

import "testing"

func TestCollection_PickupShrinksActiveSetByOne(t *testing.T) {
	ts := newSim(t,
		WithPage(0, 1.5, -2), // within reach of the spawn
		WithPage(50, 1.5, 50),
		WithPage(-50, 1.5, 50),
	)
	r := ts.Step(0.016, MovementIntents{})
	if r.Collected != 1 || len(r.Remaining) != 2 {
		t.Fatalf("expected 1 collected / 2 remaining, got %d / %d", r.Collected, len(r.Remaining))
	}
	if countEvents(r, EventPagePickup) != 1 || r.Events[0].PageID != 0 {
		t.Fatalf("expected one pickup of page 0, got %v", r.Events)
	}

	// Standing still next to where the page was must not collect it again.
	for i := 0; i < 10; i++ {
		r = ts.Step(0.016, MovementIntents{})
	}
	if r.Collected != 1 || len(r.Remaining) != 2 {
		t.Fatalf("page collected twice: %d collected, %d remaining", r.Collected, len(r.Remaining))
	}
	for _, p := range r.Remaining {
		if p.ID == 0 {
			t.Fatal("collected page is still in the active set")
		}
	}
}

func TestCollection_OutOfReach(t *testing.T) {
	ts := newSim(t, WithPage(0, 1.5, -2.6))
	r := ts.Step(0.016, MovementIntents{})
	if r.Collected != 0 {
		t.Fatalf("page 2.6 away should not be collected, got %d", r.Collected)
	}
}

func TestCollection_ObjectiveUnlocksOnce(t *testing.T) {
	ts := newSim(t,
		WithPage(1, 1.7, 0),
		WithPage(-1, 1.7, 0),
		WithPage(0, 1.7, 1),
	)
	r := ts.Step(0.016, MovementIntents{})
	if r.Collected != 3 {
		t.Fatalf("expected all 3 pages, got %d", r.Collected)
	}
	if countEvents(r, EventPagePickup) != 3 || countEvents(r, EventObjectiveUnlocked) != 1 {
		t.Fatalf("expected 3 pickups and 1 unlock, got %v", r.Events)
	}
	r = ts.Step(0.016, MovementIntents{})
	if countEvents(r, EventObjectiveUnlocked) != 0 {
		t.Fatal("objective_unlocked must fire once")
	}
}

func TestBurn_RequiresAllPagesAndProximity(t *testing.T) {
	cases := []struct {
		name  string
		pages []SimOption
		goalZ float64
		end   bool
		want  bool
	}{
		{"all pages near fire", threePagesAtSpawn(), -5.9, false, true},
		{"all pages on the radius", threePagesAtSpawn(), -6.0, false, true},
		{"all pages too far", threePagesAtSpawn(), -6.1, false, false},
		{"missing a page", []SimOption{WithPage(1, 1.7, 0), WithPage(-1, 1.7, 0)}, -1, false, false},
		{"session already lost", threePagesAtSpawn(), -1, true, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			opts := append([]SimOption{WithGoal(0, 1.7, c.goalZ)}, c.pages...)
			ts := newSim(t, opts...)
			ts.Step(0.016, MovementIntents{})
			if c.end {
				ts.Sim.session.TriggerLoss(LossCaught)
			}
			before := ts.Sim.Flags()
			got := ts.Sim.AttemptBurnPages()
			if got != c.want {
				t.Fatalf("AttemptBurnPages = %t, want %t", got, c.want)
			}
			after := ts.Sim.Flags()
			if !c.want && after != before {
				t.Fatalf("refused burn mutated flags: %+v -> %+v", before, after)
			}
			if c.want && !after.GameWon {
				t.Fatal("successful burn must set GameWon")
			}
		})
	}
}

func threePagesAtSpawn() []SimOption {
	return []SimOption{WithPage(1, 1.7, 0), WithPage(-1, 1.7, 0), WithPage(0, 1.7, 1)}
}

func TestBurn_WinIsOneShot(t *testing.T) {
	opts := append([]SimOption{WithGoal(0, 1.7, -3)}, threePagesAtSpawn()...)
	ts := newSim(t, opts...)
	r := ts.Step(0.016, MovementIntents{})
	if !r.CanBurn {
		t.Fatal("expected the burn prompt by the fire with all pages")
	}
	if !ts.Sim.AttemptBurnPages() {
		t.Fatal("first burn should win")
	}
	if ts.Sim.AttemptBurnPages() {
		t.Fatal("second burn must be a no-op")
	}
	r = ts.Step(0.016, MovementIntents{Forward: true})
	if countEvents(r, EventWon) != 1 || !r.Flags.GameWon || r.Flags.GameOver {
		t.Fatalf("expected a single won event and GameWon only, got %+v %v", r.Flags, r.Events)
	}
	if r.CanBurn {
		t.Fatal("no burn prompt after the session ended")
	}
}

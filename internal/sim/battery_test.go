package sim

import (
	"math"
	"testing"
)

func TestBattery_DrainsWhileLit(t *testing.T) {
	ts := newSim(t)
	prev := ts.Sim.Battery().Level
	for i := 0; i < 30; i++ {
		r := ts.Step(1, MovementIntents{})
		if r.Battery.Level > prev {
			t.Fatalf("tick %d: battery rose from %.4f to %.4f", i, prev, r.Battery.Level)
		}
		prev = r.Battery.Level
	}
	want := 100 - 30*(100.0/300)
	if math.Abs(prev-want) > 1e-9 {
		t.Fatalf("expected %.4f after 30s, got %.4f", want, prev)
	}
}

func TestBattery_NoDrainWhenOff(t *testing.T) {
	ts := newSim(t)
	if !ts.Sim.SetFlashlight(false) {
		t.Fatal("switching the flashlight off should succeed")
	}
	r := ts.RunTicks(10, 1, MovementIntents{})
	if r.Battery.Level != 100 {
		t.Fatalf("battery should not drain with the light off, got %.4f", r.Battery.Level)
	}
	if countEvents(ts.Sim.Tick(0, MovementIntents{}), EventFlashlightToggled) != 0 {
		t.Fatal("toggle event should be delivered once, with the first tick after the action")
	}
}

func TestBattery_DepletionLatchesLoss(t *testing.T) {
	tun := DefaultTuning()
	tun.BatteryLifetime = 2.5 // 40 per second: 60, 20, then empty
	ts := newSim(t, WithTuning(tun))

	var r TickResult
	for i := 1; i <= 3; i++ {
		r = ts.Step(1, MovementIntents{})
		if r.Battery.Level < 0 {
			t.Fatalf("tick %d: battery went negative (%.6f)", i, r.Battery.Level)
		}
	}
	if r.Battery.Level != 0 {
		t.Fatalf("expected battery at exactly 0, got %.6f", r.Battery.Level)
	}
	if !r.Flags.GameOver || r.Flags.Reason != LossBatteryDepleted {
		t.Fatalf("expected loss by battery, got %+v", r.Flags)
	}
	if r.Battery.FlashlightOn {
		t.Fatal("flashlight should be forced off")
	}
	if countEvents(r, EventBatteryEmpty) != 1 {
		t.Fatalf("expected one battery_empty event, got %v", r.Events)
	}

	r = ts.Step(1, MovementIntents{Forward: true})
	if r.Battery.Level != 0 || countEvents(r, EventBatteryEmpty) != 0 {
		t.Fatal("battery_empty must fire exactly once")
	}
	if ts.Sim.SetFlashlight(true) {
		t.Fatal("flashlight cannot be switched on after the session ended")
	}
}

func TestBattery_Bands(t *testing.T) {
	m := &ResourceMeter{tuning: &Tuning{BatteryLowBand: 60, BatteryCritBand: 30}}
	cases := []struct {
		level float64
		want  BatteryBand
	}{
		{100, BatteryFull},
		{60, BatteryFull},
		{59.9, BatteryLow},
		{30, BatteryLow},
		{29.9, BatteryCritical},
		{0, BatteryCritical},
	}
	for _, c := range cases {
		if got := m.Band(BatteryState{Level: c.level}); got != c.want {
			t.Fatalf("level %.1f: expected %s, got %s", c.level, c.want, got)
		}
	}
}

func TestBattery_ToggleEvents(t *testing.T) {
	ts := newSim(t)
	if !ts.Sim.ToggleFlashlight() {
		t.Fatal("toggle should succeed")
	}
	if ts.Sim.SetFlashlight(false) {
		t.Fatal("setting the current state should report no change")
	}
	r := ts.Step(0.1, MovementIntents{})
	if countEvents(r, EventFlashlightToggled) != 1 || r.Battery.FlashlightOn {
		t.Fatalf("expected one toggle-off event, got %v", r.Events)
	}
}

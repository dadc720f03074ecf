package audio

import (
	"math"
	"testing"

	"github.com/gopxl/beep"

	"github.com/Garsondee/Nightwood/internal/config"
	"github.com/Garsondee/Nightwood/internal/sim"
)

const testRate = beep.SampleRate(44100)

// drain streams s to the end and returns the sample count and peak.
func drain(t *testing.T, s beep.Streamer, limit int) (int, float64) {
	t.Helper()
	buf := make([][2]float64, 512)
	total, peak := 0, 0.0
	for total < limit {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			for _, v := range buf[i] {
				if math.IsNaN(v) {
					t.Fatal("NaN sample")
				}
				peak = math.Max(peak, math.Abs(v))
			}
		}
		total += n
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		t.Fatalf("streamer error: %v", err)
	}
	return total, peak
}

func TestSoundFor_EventsAreFinite(t *testing.T) {
	kinds := []sim.EventKind{
		sim.EventFootstep, sim.EventFlashlightToggled, sim.EventPagePickup,
		sim.EventObjectiveUnlocked, sim.EventBatteryEmpty, sim.EventCaptured, sim.EventWon,
	}
	limit := testRate.N(5e9) // five seconds
	for _, k := range kinds {
		s := SoundFor(sim.Event{Kind: k}, testRate, 1)
		if s == nil {
			t.Fatalf("%s: expected a sound", k)
		}
		n, peak := drain(t, s, limit)
		if n == 0 || n >= limit {
			t.Fatalf("%s: expected a finite sound, streamed %d samples", k, n)
		}
		if peak == 0 || peak > 2 {
			t.Fatalf("%s: unexpected peak %.3f", k, peak)
		}
	}
}

func TestSoundFor_RelocationIsSilent(t *testing.T) {
	if SoundFor(sim.Event{Kind: sim.EventRelocated}, testRate, 1) != nil {
		t.Fatal("relocation should not make a sound")
	}
}

func TestStaticGenerator_FollowsLevel(t *testing.T) {
	g := NewStaticGenerator(3)
	_, peak := drain(t, beep.Take(4096, g), 4096)
	if peak != 0 {
		t.Fatalf("static should start silent, peak %.4f", peak)
	}
	g.SetLevel(5)
	if g.Level() != 1 {
		t.Fatalf("level should clamp to 1, got %.2f", g.Level())
	}
	_, peak = drain(t, beep.Take(44100, g), 44100)
	if peak < 0.5 || peak > 1 {
		t.Fatalf("expected loud static after ramp, peak %.4f", peak)
	}
}

func TestSoundManager_UninitializedIsNoop(t *testing.T) {
	sm := NewSoundManager(config.Default().Audio)
	sm.Handle(sim.TickResult{Threat: 0.8, Events: []sim.Event{{Kind: sim.EventCaptured}}})
	sm.Cleanup()
	if sm.static.Level() != 0 {
		t.Fatal("uninitialized manager should not touch the static level")
	}
}

// Package audio synthesizes every sound the game makes; there are no asset
// files. Sounds are driven by the simulation's events and threat signal.
package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/Garsondee/Nightwood/internal/config"
	"github.com/Garsondee/Nightwood/internal/sim"
)

// staticScale maps the threat signal (at most 0.8) onto hiss loudness.
const staticScale = 0.5

// SoundManager plays sounds for simulation ticks. Until Initialize succeeds
// every method is a no-op, so a machine without audio runs silently.
type SoundManager struct {
	mu          sync.Mutex
	rate        beep.SampleRate
	volume      float64
	mixer       *beep.Mixer
	static      *StaticGenerator
	staticCtrl  *beep.Ctrl
	seed        int64
	initialized bool
}

// NewSoundManager creates a manager for the audio config section.
func NewSoundManager(cfg config.AudioConfig) *SoundManager {
	return &SoundManager{
		rate:   beep.SampleRate(cfg.SampleRate),
		volume: cfg.Volume,
		mixer:  &beep.Mixer{},
		static: NewStaticGenerator(1),
	}
}

// Initialize opens the speaker and starts the mixer.
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if err := speaker.Init(sm.rate, sm.rate.N(time.Millisecond*100)); err != nil {
		return err
	}
	sm.staticCtrl = &beep.Ctrl{Streamer: newVolume(sm.static, sm.volume)}
	sm.mixer.Add(sm.staticCtrl)
	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Cleanup stops every sound.
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	speaker.Lock()
	sm.staticCtrl.Paused = true
	sm.mixer.Clear()
	speaker.Unlock()
	sm.initialized = false
}

// Handle reacts to one tick: a sound per event and the static level.
func (sm *SoundManager) Handle(r sim.TickResult) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	for _, e := range r.Events {
		if s := sm.soundFor(e); s != nil {
			speaker.Lock()
			sm.mixer.Add(newVolume(s, sm.volume))
			speaker.Unlock()
		}
	}

	level := r.Threat * staticScale
	if r.Flags.Ended() {
		level = 0
	}
	speaker.Lock()
	sm.static.SetLevel(level)
	speaker.Unlock()
}

func (sm *SoundManager) soundFor(e sim.Event) beep.Streamer {
	sm.seed++
	return SoundFor(e, sm.rate, sm.seed)
}

// SoundFor returns the one-shot sound for an event, or nil when the event is
// silent. Relocations are silent; the static carries that news.
func SoundFor(e sim.Event, rate beep.SampleRate, seed int64) beep.Streamer {
	switch e.Kind {
	case sim.EventFootstep:
		return Footstep(rate, seed)
	case sim.EventFlashlightToggled:
		return Click(rate)
	case sim.EventPagePickup:
		return PageChime(rate)
	case sim.EventObjectiveUnlocked:
		return Unlocked(rate)
	case sim.EventBatteryEmpty:
		return PowerDown(rate)
	case sim.EventCaptured:
		return Jumpscare(rate, seed)
	case sim.EventWon:
		return WinChord(rate)
	default:
		return nil
	}
}

package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// noise is white noise scaled by amp.
type noise struct {
	rng *rand.Rand
	amp float64
}

func newNoise(seed int64, amp float64) *noise {
	return &noise{rng: rand.New(rand.NewSource(seed)), amp: amp} // #nosec G404 -- audio texture
}

func (n *noise) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		v := (n.rng.Float64()*2 - 1) * n.amp
		samples[i][0] = v
		samples[i][1] = v
	}
	return len(samples), true
}

func (n *noise) Err() error { return nil }

// envelope applies a linear attack and release over a fixed length.
type envelope struct {
	streamer beep.Streamer
	total    int
	attack   int
	release  int
	position int
}

func newEnvelope(s beep.Streamer, rate beep.SampleRate, length, attack, release time.Duration) beep.Streamer {
	total := rate.N(length)
	return beep.Take(total, &envelope{
		streamer: s,
		total:    total,
		attack:   rate.N(attack),
		release:  rate.N(release),
	})
}

func (e *envelope) Stream(samples [][2]float64) (int, bool) {
	n, ok := e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		vol := 1.0
		if e.attack > 0 && e.position < e.attack {
			vol = float64(e.position) / float64(e.attack)
		}
		if left := e.total - e.position; e.release > 0 && left < e.release {
			vol = math.Min(vol, math.Max(float64(left)/float64(e.release), 0))
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume wraps s with a linear gain. math.Log2(0) is -Inf, so zero is
// mapped to silence.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

func tone(rate beep.SampleRate, freq float64, length, attack, release time.Duration) beep.Streamer {
	sine, err := generators.SineTone(rate, freq)
	if err != nil {
		return beep.Silence(rate.N(length))
	}
	return newEnvelope(sine, rate, length, attack, release)
}

// Footstep is a short low thud on leaves.
func Footstep(rate beep.SampleRate, seed int64) beep.Streamer {
	thud := tone(rate, 70, 90*time.Millisecond, 2*time.Millisecond, 80*time.Millisecond)
	rustle := newEnvelope(newNoise(seed, 1), rate, 70*time.Millisecond, time.Millisecond, 60*time.Millisecond)
	return beep.Mix(newVolume(thud, 0.5), newVolume(rustle, 0.12))
}

// Click is the flashlight switch.
func Click(rate beep.SampleRate) beep.Streamer {
	return newVolume(tone(rate, 2400, 15*time.Millisecond, 0, 10*time.Millisecond), 0.3)
}

// PageChime rises a fifth when a page is picked up.
func PageChime(rate beep.SampleRate) beep.Streamer {
	return newVolume(beep.Seq(
		tone(rate, 440, 140*time.Millisecond, 5*time.Millisecond, 80*time.Millisecond),
		tone(rate, 659.25, 260*time.Millisecond, 5*time.Millisecond, 200*time.Millisecond),
	), 0.35)
}

// Unlocked is a low minor chord played once every page is held.
func Unlocked(rate beep.SampleRate) beep.Streamer {
	const length = 1500 * time.Millisecond
	return newVolume(beep.Mix(
		tone(rate, 110, length, 200*time.Millisecond, 900*time.Millisecond),
		tone(rate, 130.81, length, 200*time.Millisecond, 900*time.Millisecond),
		tone(rate, 164.81, length, 200*time.Millisecond, 900*time.Millisecond),
	), 0.25)
}

// PowerDown falls through three tones as the battery dies.
func PowerDown(rate beep.SampleRate) beep.Streamer {
	return newVolume(beep.Seq(
		tone(rate, 600, 120*time.Millisecond, 0, 40*time.Millisecond),
		tone(rate, 400, 120*time.Millisecond, 0, 40*time.Millisecond),
		tone(rate, 200, 300*time.Millisecond, 0, 250*time.Millisecond),
	), 0.3)
}

// Jumpscare is the capture sting: a burst of static over a low drone.
func Jumpscare(rate beep.SampleRate, seed int64) beep.Streamer {
	const length = 1200 * time.Millisecond
	burst := newEnvelope(newNoise(seed, 1), rate, length, 5*time.Millisecond, 700*time.Millisecond)
	drone := tone(rate, 55, length, 5*time.Millisecond, 700*time.Millisecond)
	return beep.Mix(newVolume(burst, 0.8), newVolume(drone, 0.6))
}

// WinChord is a major chord when the pages burn.
func WinChord(rate beep.SampleRate) beep.Streamer {
	const length = 2 * time.Second
	return newVolume(beep.Mix(
		tone(rate, 261.63, length, 50*time.Millisecond, 1500*time.Millisecond),
		tone(rate, 329.63, length, 50*time.Millisecond, 1500*time.Millisecond),
		tone(rate, 392.00, length, 50*time.Millisecond, 1500*time.Millisecond),
	), 0.3)
}

// StaticGenerator is the endless hiss whose loudness follows the threat
// signal. SetLevel must be called under speaker.Lock while playing.
type StaticGenerator struct {
	noise *noise
	level float64
	gain  float64 // smoothed level, avoids clicks on jumps
}

// NewStaticGenerator creates a silent static source.
func NewStaticGenerator(seed int64) *StaticGenerator {
	return &StaticGenerator{noise: newNoise(seed, 1)}
}

// SetLevel sets the target loudness in [0, 1].
func (g *StaticGenerator) SetLevel(level float64) {
	g.level = math.Max(0, math.Min(1, level))
}

// Level returns the target loudness.
func (g *StaticGenerator) Level() float64 {
	return g.level
}

func (g *StaticGenerator) Stream(samples [][2]float64) (int, bool) {
	g.noise.Stream(samples)
	for i := range samples {
		g.gain += (g.level - g.gain) * 0.001
		samples[i][0] *= g.gain
		samples[i][1] *= g.gain
	}
	return len(samples), true
}

func (g *StaticGenerator) Err() error { return nil }

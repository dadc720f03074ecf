// Package record turns simulation ticks into compact msgpack frames. The
// same frames feed replay files and the spectator stream.
package record

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/Garsondee/Nightwood/internal/sim"
)

// FormatVersion is bumped whenever Frame or Header change incompatibly.
const FormatVersion = 1

// Header opens every replay stream.
type Header struct {
	Version   int        `msgpack:"v"`
	SessionID string     `msgpack:"sid"`
	Seed      int64      `msgpack:"seed"`
	Tuning    sim.Tuning `msgpack:"tuning"`
	Goal      [3]float64 `msgpack:"goal"`
	Obstacles []Obstacle `msgpack:"obstacles"`
}

// Obstacle is the wire form of sim.Obstacle.
type Obstacle struct {
	Kind   string     `msgpack:"k"`
	Pos    [3]float64 `msgpack:"p"`
	Radius float64    `msgpack:"r"`
}

// Frame is one tick as seen from outside the simulation.
type Frame struct {
	SessionID  string     `msgpack:"sid,omitempty"`
	Tick       int        `msgpack:"tick"`
	Time       float64    `msgpack:"t"`
	Player     [3]float64 `msgpack:"p"`
	Yaw        float64    `msgpack:"yaw"`
	Pitch      float64    `msgpack:"pitch"`
	Adversary  [3]float64 `msgpack:"a"`
	AdvYaw     float64    `msgpack:"ayaw"`
	Battery    float64    `msgpack:"bat"`
	Flashlight bool       `msgpack:"light"`
	Threat     float64    `msgpack:"threat"`
	Collected  int        `msgpack:"got"`
	Remaining  []Page     `msgpack:"pages,omitempty"`
	CanBurn    bool       `msgpack:"burn,omitempty"`
	Events     []string   `msgpack:"ev,omitempty"`
	GameOver   bool       `msgpack:"over,omitempty"`
	GameWon    bool       `msgpack:"won,omitempty"`
	Reason     string     `msgpack:"why,omitempty"`
}

// Page is the wire form of an uncollected page.
type Page struct {
	ID  int        `msgpack:"id"`
	Pos [3]float64 `msgpack:"p"`
}

// FromTick converts a tick result.
func FromTick(sessionID string, r sim.TickResult) Frame {
	f := Frame{
		SessionID:  sessionID,
		Tick:       r.Tick,
		Time:       r.Time,
		Player:     r.Player.Position,
		Yaw:        r.Player.Yaw,
		Pitch:      r.Player.Pitch,
		Adversary:  r.Adversary.Position,
		AdvYaw:     r.Adversary.Yaw,
		Battery:    r.Battery.Level,
		Flashlight: r.Battery.FlashlightOn,
		Threat:     r.Threat,
		Collected:  r.Collected,
		CanBurn:    r.CanBurn,
		GameOver:   r.Flags.GameOver,
		GameWon:    r.Flags.GameWon,
	}
	for _, p := range r.Remaining {
		f.Remaining = append(f.Remaining, Page{ID: p.ID, Pos: p.Position})
	}
	for _, e := range r.Events {
		f.Events = append(f.Events, e.Kind.String())
	}
	if r.Flags.GameOver {
		f.Reason = r.Flags.Reason.String()
	}
	return f
}

// HeaderFor describes the world a session runs in.
func HeaderFor(sessionID string, seed int64, w sim.World, t sim.Tuning) Header {
	h := Header{
		Version:   FormatVersion,
		SessionID: sessionID,
		Seed:      seed,
		Tuning:    t,
		Goal:      w.Goal,
		Obstacles: make([]Obstacle, 0, len(w.Obstacles)),
	}
	for _, o := range w.Obstacles {
		h.Obstacles = append(h.Obstacles, Obstacle{Kind: o.Kind.String(), Pos: o.Position, Radius: o.Radius})
	}
	return h
}

// Encode marshals a frame for the spectator stream.
func Encode(f Frame) ([]byte, error) {
	return msgpack.Marshal(&f)
}

// Decode unmarshals a frame produced by Encode.
func Decode(data []byte) (Frame, error) {
	var f Frame
	err := msgpack.Unmarshal(data, &f)
	return f, err
}

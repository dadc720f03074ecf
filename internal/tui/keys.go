package tui

import (
	"time"

	"github.com/Garsondee/Nightwood/internal/sim"
)

// holdWindow bridges the gap between a key press and the terminal's first
// auto-repeat; terminals report presses but never releases.
const holdWindow = 500 * time.Millisecond

// heldKeys approximates which movement keys are down from the press events a
// terminal delivers. A key counts as held until holdWindow has passed since
// its last press or repeat.
type heldKeys struct {
	window time.Duration
	last   map[rune]time.Time
}

func newHeldKeys(window time.Duration) *heldKeys {
	return &heldKeys{window: window, last: make(map[rune]time.Time)}
}

var opposite = map[rune]rune{'w': 's', 's': 'w', 'a': 'd', 'd': 'a'}

// press marks k as down. Pressing a key lets go of its opposite so a quick
// change of direction does not cancel out.
func (h *heldKeys) press(k rune, now time.Time) {
	h.last[k] = now
	if o, ok := opposite[k]; ok {
		delete(h.last, o)
	}
}

func (h *heldKeys) held(k rune, now time.Time) bool {
	t, ok := h.last[k]
	return ok && now.Sub(t) < h.window
}

// release forgets every key, e.g. when a new session starts.
func (h *heldKeys) release() {
	clear(h.last)
}

func (h *heldKeys) intents(now time.Time) sim.MovementIntents {
	return sim.MovementIntents{
		Forward:  h.held('w', now),
		Backward: h.held('s', now),
		Left:     h.held('a', now),
		Right:    h.held('d', now),
	}
}

package game

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Nightwood/internal/view"
)

const (
	logMaxEntries = 40
	logVisible    = 6
	logLineHeight = 20
	logFadeTicks  = 60 * 8 // entries fade out after ~8s at 60 TPS
)

var toneColors = [...]color.RGBA{
	view.ToneInfo:   {R: 190, G: 190, B: 180, A: 255},
	view.ToneWarn:   {R: 230, G: 190, B: 90, A: 255},
	view.ToneDanger: {R: 230, G: 70, B: 60, A: 255},
	view.ToneGood:   {R: 120, G: 220, B: 130, A: 255},
}

// MessageEntry is a single line in the message log.
type MessageEntry struct {
	Tick    int
	Tone    view.Tone
	Message string
}

// MessageLog is a ring buffer of player-facing messages rendered on-screen.
type MessageLog struct {
	entries []MessageEntry
	head    int
	count   int
}

// NewMessageLog creates a message log with a fixed capacity.
func NewMessageLog() *MessageLog {
	return &MessageLog{
		entries: make([]MessageEntry, logMaxEntries),
	}
}

// Add appends an entry to the log.
func (ml *MessageLog) Add(tick int, tone view.Tone, msg string) {
	ml.entries[ml.head] = MessageEntry{
		Tick:    tick,
		Tone:    tone,
		Message: msg,
	}
	ml.head = (ml.head + 1) % logMaxEntries
	if ml.count < logMaxEntries {
		ml.count++
	}
}

// Recent returns entries in chronological order (oldest first).
func (ml *MessageLog) Recent() []MessageEntry {
	result := make([]MessageEntry, ml.count)
	for i := 0; i < ml.count; i++ {
		idx := (ml.head - ml.count + i + logMaxEntries) % logMaxEntries
		result[i] = ml.entries[idx]
	}
	return result
}

// Clear empties the log.
func (ml *MessageLog) Clear() {
	ml.head, ml.count = 0, 0
}

// Draw renders the newest entries bottom-left, newest at the bottom. Old
// entries fade out.
func (ml *MessageLog) Draw(screen *ebiten.Image, h *hud, x, bottom, nowTick int) {
	entries := ml.Recent()
	if len(entries) > logVisible {
		entries = entries[len(entries)-logVisible:]
	}
	y := bottom - len(entries)*logLineHeight
	for _, e := range entries {
		age := nowTick - e.Tick
		if age > logFadeTicks {
			y += logLineHeight
			continue
		}
		alpha := 1.0
		if age > logFadeTicks/2 {
			alpha = 1 - float64(age-logFadeTicks/2)/float64(logFadeTicks/2)
		}
		c := toneColors[e.Tone]
		vector.FillRect(screen, float32(x-4), float32(y), 6, float32(logLineHeight-6),
			color.RGBA{R: c.R, G: c.G, B: c.B, A: uint8(200 * alpha)}, false)
		h.drawText(screen, e.Message, h.small, float64(x+8), float64(y), c, alpha)
		y += logLineHeight
	}
}

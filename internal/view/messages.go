package view

import (
	"fmt"

	"github.com/Garsondee/Nightwood/internal/sim"
)

// Tone picks the colour of a message.
type Tone int

const (
	ToneInfo Tone = iota
	ToneWarn
	ToneDanger
	ToneGood
)

// Message turns a simulation event into a player-facing line. ok is false
// for events the player is not told about.
func Message(e sim.Event, r sim.TickResult, pageCount int) (msg string, tone Tone, ok bool) {
	switch e.Kind {
	case sim.EventPagePickup:
		return fmt.Sprintf("You found a page (%d/%d).", r.Collected, pageCount), ToneInfo, true
	case sim.EventObjectiveUnlocked:
		return "All pages found. Burn them at the campfire.", ToneGood, true
	case sim.EventFlashlightToggled:
		if e.On {
			return "Flashlight on.", ToneInfo, true
		}
		return "Flashlight off.", ToneInfo, true
	case sim.EventBatteryEmpty:
		return "The battery is dead.", ToneDanger, true
	case sim.EventCaptured:
		return "It caught you.", ToneDanger, true
	case sim.EventWon:
		return "The pages burn. You are free.", ToneGood, true
	case sim.EventRelocated:
		if r.Threat > 0.4 {
			return "Something is watching.", ToneWarn, true
		}
	}
	return "", ToneInfo, false
}

// EndTitle picks the headline for the end screen.
func EndTitle(f sim.SessionFlags) (string, Tone) {
	switch {
	case f.GameWon:
		return "YOU ESCAPED", ToneGood
	case f.Reason == sim.LossCaught:
		return "CAUGHT", ToneDanger
	case f.Reason == sim.LossBatteryDepleted:
		return "DARKNESS", ToneDanger
	default:
		return "", ToneInfo
	}
}

// Intro is the first line of every session.
func Intro(pageCount int) string {
	return fmt.Sprintf("Find the %d pages. Keep your light on them, not on it.", pageCount)
}

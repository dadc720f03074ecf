package sim

// EventKind identifies a discrete thing that happened during a tick.
type EventKind int

const (
	EventFootstep EventKind = iota
	EventPagePickup
	EventObjectiveUnlocked
	EventFlashlightToggled
	EventBatteryEmpty
	EventRelocated
	EventCaptured
	EventWon
)

func (k EventKind) String() string {
	switch k {
	case EventFootstep:
		return "footstep"
	case EventPagePickup:
		return "page_pickup"
	case EventObjectiveUnlocked:
		return "objective_unlocked"
	case EventFlashlightToggled:
		return "flashlight_toggled"
	case EventBatteryEmpty:
		return "battery_empty"
	case EventRelocated:
		return "relocated"
	case EventCaptured:
		return "captured"
	case EventWon:
		return "won"
	default:
		return "unknown"
	}
}

// Event is one entry in a tick's event list. PageID is set for pickups;
// On is set for flashlight toggles.
type Event struct {
	Kind   EventKind
	Tick   int
	PageID int
	On     bool
}

// category groups events for SimLog filtering.
func (k EventKind) category() string {
	switch k {
	case EventFootstep:
		return "move"
	case EventPagePickup, EventObjectiveUnlocked:
		return "pages"
	case EventFlashlightToggled, EventBatteryEmpty:
		return "battery"
	case EventRelocated, EventCaptured:
		return "adversary"
	default:
		return "session"
	}
}

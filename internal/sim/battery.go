package sim

// BatteryBand is the HUD colour band for a battery level.
type BatteryBand int

const (
	BatteryFull BatteryBand = iota
	BatteryLow
	BatteryCritical
)

func (b BatteryBand) String() string {
	switch b {
	case BatteryFull:
		return "full"
	case BatteryLow:
		return "low"
	case BatteryCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// BatteryState is the flashlight battery.
type BatteryState struct {
	Level        float64
	DrainRate    float64
	FlashlightOn bool
}

// ResourceMeter is the only writer of BatteryState.Level.
type ResourceMeter struct {
	tuning *Tuning
}

// Update drains the battery for dt seconds. It returns true on the tick the
// level reaches zero; the flashlight is forced off at that point.
func (r *ResourceMeter) Update(b *BatteryState, dt float64) (depleted bool) {
	if !b.FlashlightOn {
		return false
	}
	b.Level -= b.DrainRate * dt
	if b.Level > 0 {
		return false
	}
	b.Level = 0
	b.FlashlightOn = false
	return true
}

// Band classifies the current level.
func (r *ResourceMeter) Band(b BatteryState) BatteryBand {
	switch {
	case b.Level < r.tuning.BatteryCritBand:
		return BatteryCritical
	case b.Level < r.tuning.BatteryLowBand:
		return BatteryLow
	default:
		return BatteryFull
	}
}

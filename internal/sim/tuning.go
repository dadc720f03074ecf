package sim

import (
	"fmt"
	"math"
)

// Tuning holds every gameplay constant the simulation reads. Zero values are
// never meaningful; start from DefaultTuning and override.
type Tuning struct {
	// Movement, in units and seconds.
	MoveSpeed       float64 `yaml:"move_speed"`
	PlayHalfExtent  float64 `yaml:"play_half_extent"`
	EyeHeight       float64 `yaml:"eye_height"`
	BobFrequency    float64 `yaml:"bob_frequency"`
	BobAmplitude    float64 `yaml:"bob_amplitude"`
	RollAmplitude   float64 `yaml:"roll_amplitude"`
	SettleRate      float64 `yaml:"settle_rate"`
	StepInterval    float64 `yaml:"step_interval"`
	LookSensitivity float64 `yaml:"look_sensitivity"`
	MaxPitch        float64 `yaml:"max_pitch"`

	// Battery. The HUD bands are presentation hints only.
	BatteryCapacity float64 `yaml:"battery_capacity"`
	BatteryLifetime float64 `yaml:"battery_lifetime"`
	BatteryLowBand  float64 `yaml:"battery_low_band"`
	BatteryCritBand float64 `yaml:"battery_crit_band"`

	// Pages and the burn objective.
	PageCount    int     `yaml:"page_count"`
	PickupRadius float64 `yaml:"pickup_radius"`
	BurnRadius   float64 `yaml:"burn_radius"`

	// Threat signal and capture.
	ThreatRampRange  float64 `yaml:"threat_ramp_range"`
	ThreatSightRange float64 `yaml:"threat_sight_range"`
	ThreatSightCone  float64 `yaml:"threat_sight_cone"`
	ThreatNoise      float64 `yaml:"threat_noise"`
	ThreatMax        float64 `yaml:"threat_max"`
	CaptureDistance  float64 `yaml:"capture_distance"`
	CaptureFacing    float64 `yaml:"capture_facing"`

	// Relocation. RelocateSchedule is indexed by collected pages; the last
	// entry repeats for higher counts.
	RelocateSchedule []float64 `yaml:"relocate_schedule"`
	RelocateFloor    float64   `yaml:"relocate_floor"`
	SpawnMinDistance float64   `yaml:"spawn_min_distance"`
	SpawnMaxDistance float64   `yaml:"spawn_max_distance"`
	InFrontBase      float64   `yaml:"in_front_base"`
	InFrontPerPage   float64   `yaml:"in_front_per_page"`
	LenientPages     int       `yaml:"lenient_pages"`
	LenientRadius    float64   `yaml:"lenient_radius"`
	LenientPush      float64   `yaml:"lenient_push"`
	AdversaryHeight  float64   `yaml:"adversary_height"`
}

// DefaultTuning returns the reference game balance.
func DefaultTuning() Tuning {
	return Tuning{
		MoveSpeed:        2.8,
		PlayHalfExtent:   98,
		EyeHeight:        1.7,
		BobFrequency:     10,
		BobAmplitude:     0.1,
		RollAmplitude:    0.002,
		SettleRate:       5,
		StepInterval:     0.6,
		LookSensitivity:  0.002,
		MaxPitch:         math.Pi / 2,
		BatteryCapacity:  100,
		BatteryLifetime:  300,
		BatteryLowBand:   60,
		BatteryCritBand:  30,
		PageCount:        3,
		PickupRadius:     2.5,
		BurnRadius:       6.0,
		ThreatRampRange:  20,
		ThreatSightRange: 30,
		ThreatSightCone:  0.5,
		ThreatNoise:      0.1,
		ThreatMax:        0.8,
		CaptureDistance:  8.0,
		CaptureFacing:    0.7,
		RelocateSchedule: []float64{15, 10, 5, 2.5},
		RelocateFloor:    1.0,
		SpawnMinDistance: 10,
		SpawnMaxDistance: 25,
		InFrontBase:      0.2,
		InFrontPerPage:   0.15,
		LenientPages:     1,
		LenientRadius:    15,
		LenientPush:      10,
		AdversaryHeight:  2.68,
	}
}

// DrainRate is the battery loss per second while the flashlight is on.
func (t Tuning) DrainRate() float64 {
	return t.BatteryCapacity / t.BatteryLifetime
}

// Validate rejects tunings that would make the tick produce NaN or divide by zero.
func (t Tuning) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"move_speed", t.MoveSpeed},
		{"play_half_extent", t.PlayHalfExtent},
		{"step_interval", t.StepInterval},
		{"battery_capacity", t.BatteryCapacity},
		{"battery_lifetime", t.BatteryLifetime},
		{"pickup_radius", t.PickupRadius},
		{"burn_radius", t.BurnRadius},
		{"threat_ramp_range", t.ThreatRampRange},
		{"capture_distance", t.CaptureDistance},
		{"relocate_floor", t.RelocateFloor},
		{"spawn_max_distance", t.SpawnMaxDistance},
	}
	for _, p := range positive {
		if !(p.v > 0) || math.IsInf(p.v, 0) {
			return fmt.Errorf("%s must be positive, got %v: %w", p.name, p.v, ErrInvalidTuning)
		}
	}
	if t.PageCount <= 0 {
		return fmt.Errorf("page_count must be positive, got %d: %w", t.PageCount, ErrInvalidTuning)
	}
	if len(t.RelocateSchedule) == 0 {
		return fmt.Errorf("relocate_schedule is empty: %w", ErrInvalidTuning)
	}
	if t.SpawnMinDistance < 0 || t.SpawnMinDistance > t.SpawnMaxDistance {
		return fmt.Errorf("spawn distance range [%v, %v] is invalid: %w",
			t.SpawnMinDistance, t.SpawnMaxDistance, ErrInvalidTuning)
	}
	return nil
}

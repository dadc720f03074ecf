package sim

import "fmt"

// Outcome is the final classification of a session.
type Outcome int

const (
	OutcomeInconclusive Outcome = iota
	OutcomeWon
	OutcomeCaught
	OutcomeBatteryDepleted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWon:
		return "won"
	case OutcomeCaught:
		return "caught"
	case OutcomeBatteryDepleted:
		return "battery_depleted"
	case OutcomeInconclusive:
		return "inconclusive"
	default:
		return "unknown"
	}
}

// OutcomeReport summarises how a session ended.
type OutcomeReport struct {
	Outcome       Outcome
	Duration      float64
	Ticks         int
	Pages         int
	PageCount     int
	BatteryLeft   float64
	Relocations   int
	PeakThreat    float64
	FirstPageTime float64 // -1 when no page was collected
	LastPageTime  float64 // -1 when no page was collected
	Description   string
}

// DetermineOutcome classifies r. log may be nil; relocation counts and page
// timings are then reported as zero / -1.
func DetermineOutcome(r TickResult, t Tuning, log *SimLog, peakThreat float64) OutcomeReport {
	rep := OutcomeReport{
		Duration:      r.Time,
		Ticks:         r.Tick,
		Pages:         r.Collected,
		PageCount:     t.PageCount,
		BatteryLeft:   r.Battery.Level,
		PeakThreat:    peakThreat,
		FirstPageTime: -1,
		LastPageTime:  -1,
	}
	if log != nil {
		rep.Relocations = log.CountCategory("adversary", EventRelocated.String())
		if e, ok := log.FirstOf("pages", EventPagePickup.String()); ok {
			rep.FirstPageTime = e.NumVal
		}
		if e, ok := log.LastOf("pages", EventPagePickup.String()); ok {
			rep.LastPageTime = e.NumVal
		}
	}

	switch {
	case r.Flags.GameWon:
		rep.Outcome = OutcomeWon
		rep.Description = fmt.Sprintf("pages_burned_after_%.0fs", r.Time)
	case r.Flags.GameOver && r.Flags.Reason == LossCaught:
		rep.Outcome = OutcomeCaught
		rep.Description = fmt.Sprintf("caught_with_%d_of_%d_pages", r.Collected, t.PageCount)
	case r.Flags.GameOver && r.Flags.Reason == LossBatteryDepleted:
		rep.Outcome = OutcomeBatteryDepleted
		rep.Description = fmt.Sprintf("darkness_with_%d_of_%d_pages", r.Collected, t.PageCount)
	default:
		rep.Outcome = OutcomeInconclusive
		rep.Description = fmt.Sprintf("still_searching_%d_of_%d_pages", r.Collected, t.PageCount)
	}
	return rep
}

// String renders the report on one line.
func (rep OutcomeReport) String() string {
	return fmt.Sprintf("outcome=%s pages=%d/%d duration=%.1fs ticks=%d battery=%.1f relocations=%d peak_threat=%.2f (%s)",
		rep.Outcome, rep.Pages, rep.PageCount, rep.Duration, rep.Ticks, rep.BatteryLeft,
		rep.Relocations, rep.PeakThreat, rep.Description)
}

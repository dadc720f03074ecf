package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Garsondee/Nightwood/internal/boot"
	"github.com/Garsondee/Nightwood/internal/record"
	"github.com/Garsondee/Nightwood/internal/session"
	"github.com/Garsondee/Nightwood/internal/sim"
	"github.com/Garsondee/Nightwood/internal/store"
)

type runStats struct {
	runIndex  int
	seed      int64
	sessionID string
	report    sim.OutcomeReport

	firstPickupTick int
	unlockTick      int
	firstRelocTick  int
	endTick         int

	toggles     int
	relocations int
	frames      int
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var tps int
	var configPath string
	var dbPath string
	var recordDir string
	var stride int
	var verbose bool

	flag.IntVar(&runs, "runs", 5, "number of headless autopilot runs")
	flag.IntVar(&ticks, "ticks", 60*600, "maximum ticks per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base world seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.IntVar(&tps, "tps", 60, "simulated ticks per second")
	flag.StringVar(&configPath, "config", boot.DefaultConfigPath, "settings file (only the sim section is used)")
	flag.StringVar(&dbPath, "db", "", "append every run to this sqlite history")
	flag.StringVar(&recordDir, "record", "", "write a replay file per run into this directory")
	flag.IntVar(&stride, "stride", 6, "replay frame stride in ticks")
	flag.BoolVar(&verbose, "verbose", false, "print the full sim log of each run")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return
	}
	if tps <= 0 {
		fmt.Println("error: -tps must be > 0")
		return
	}

	cfg, err := boot.LoadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}
	opts := session.Options{Tuning: cfg.Sim, Verbose: verbose}
	var db *store.DB
	if dbPath != "" {
		db, err = store.Open(dbPath)
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close()
		opts.History = db
	}
	if recordDir != "" {
		if err := os.MkdirAll(recordDir, 0o755); err != nil {
			log.Fatal(err)
		}
	}

	fmt.Printf("=== Headless Night Report ===\n")
	fmt.Printf("runs=%d max_ticks=%d tps=%d seed_base=%d seed_step=%d\n\n", runs, ticks, tps, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		opts.Seed = seedBase + int64(i)*seedStep
		stats, err := runNight(i+1, opts, ticks, 1/float64(tps), recordDir, stride)
		if err != nil {
			log.Fatalf("run %d: %v", i+1, err)
		}
		all = append(all, stats)
		printRun(stats)
	}

	printAggregate(all)

	if db != nil {
		sum, err := db.Summary()
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("\n=== History (%s) ===\n", dbPath)
		fmt.Printf("sessions=%d wins=%d caught=%d darkness=%d avg_duration=%.1fs avg_pages=%.2f best_win=%s\n",
			sum.Sessions, sum.Wins, sum.Caught, sum.Darkness, sum.AvgDuration, sum.AvgPages, secondsOrNA(sum.BestWin))
	}
}

func runNight(runIndex int, opts session.Options, ticks int, dt float64, recordDir string, stride int) (runStats, error) {
	run, err := session.New(opts)
	if err != nil {
		return runStats{}, err
	}

	var rec *record.Recorder
	if recordDir != "" {
		path := filepath.Join(recordDir, run.SessionID()+".nwr")
		f, err := os.Create(path)
		if err != nil {
			return runStats{}, err
		}
		defer f.Close()
		h := record.HeaderFor(run.SessionID(), run.Seed(), run.Sim().World(), run.Sim().Tuning())
		if rec, err = record.NewRecorder(f, h, stride); err != nil {
			return runStats{}, err
		}
		if err := run.Record(rec); err != nil {
			return runStats{}, err
		}
	}

	run.RunAutopilot(dt, ticks)
	rs := collectStats(run.Log(), run.Report())
	rs.runIndex = runIndex
	rs.seed = run.Seed()
	rs.sessionID = run.SessionID()
	if rec != nil {
		rs.frames = rec.Frames()
	}
	if opts.Verbose {
		fmt.Print(run.Log().Format())
	}
	return rs, nil
}

func collectStats(sl *sim.SimLog, rep sim.OutcomeReport) runStats {
	entries := sl.Entries()
	return runStats{
		report:          rep,
		firstPickupTick: firstTick(entries, "pages", sim.EventPagePickup.String(), ""),
		unlockTick:      firstTick(entries, "pages", sim.EventObjectiveUnlocked.String(), ""),
		firstRelocTick:  firstTick(entries, "adversary", sim.EventRelocated.String(), ""),
		endTick:         rep.Ticks,
		toggles:         sl.CountCategory("battery", sim.EventFlashlightToggled.String()),
		relocations:     rep.Relocations,
	}
}

func firstTick(entries []sim.SimLogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d session=%s) ---\n", rs.runIndex, rs.seed, rs.sessionID)
	fmt.Println(rs.report)
	fmt.Printf("phase_markers: first_pickup=%d unlock=%d first_relocation=%d end=%d\n",
		rs.firstPickupTick, rs.unlockTick, rs.firstRelocTick, rs.endTick)
	fmt.Printf("event_totals: relocations=%d toggles=%d\n", rs.relocations, rs.toggles)
	if rs.frames > 0 {
		fmt.Printf("replay_frames=%d\n", rs.frames)
	}
	fmt.Println()
}

type aggregate struct {
	runs        int
	outcomes    map[sim.Outcome]int
	avgDuration float64
	avgPages    float64
	avgPeak     float64
	avgReloc    float64
	bestWin     float64 // seconds, 0 without a win
	pickupTicks []int
	unlockTicks []int
	relocTicks  []int
	reasons     map[string]struct{}
}

func aggregateRuns(all []runStats) aggregate {
	ag := aggregate{
		runs:     len(all),
		outcomes: map[sim.Outcome]int{},
		reasons:  map[string]struct{}{},
	}
	var duration, pages, peak float64
	relocs := 0
	for _, rs := range all {
		rep := rs.report
		ag.outcomes[rep.Outcome]++
		ag.reasons[rep.Description] = struct{}{}
		duration += rep.Duration
		pages += float64(rep.Pages)
		peak += rep.PeakThreat
		relocs += rep.Relocations
		if rep.Outcome == sim.OutcomeWon && (ag.bestWin == 0 || rep.Duration < ag.bestWin) {
			ag.bestWin = rep.Duration
		}
		if rs.firstPickupTick >= 0 {
			ag.pickupTicks = append(ag.pickupTicks, rs.firstPickupTick)
		}
		if rs.unlockTick >= 0 {
			ag.unlockTicks = append(ag.unlockTicks, rs.unlockTick)
		}
		if rs.firstRelocTick >= 0 {
			ag.relocTicks = append(ag.relocTicks, rs.firstRelocTick)
		}
	}
	if n := float64(len(all)); n > 0 {
		ag.avgDuration = duration / n
		ag.avgPages = pages / n
		ag.avgPeak = peak / n
	}
	ag.avgReloc = avg(relocs, len(all))
	return ag
}

func printAggregate(all []runStats) {
	ag := aggregateRuns(all)
	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d won=%d caught=%d battery_depleted=%d inconclusive=%d win_rate=%.0f%%\n",
		ag.runs, ag.outcomes[sim.OutcomeWon], ag.outcomes[sim.OutcomeCaught],
		ag.outcomes[sim.OutcomeBatteryDepleted], ag.outcomes[sim.OutcomeInconclusive],
		avg(ag.outcomes[sim.OutcomeWon]*100, ag.runs))
	fmt.Printf("avg_per_run: duration=%.1fs pages=%.2f relocations=%.1f peak_threat=%.2f best_win=%s\n",
		ag.avgDuration, ag.avgPages, ag.avgReloc, ag.avgPeak, secondsOrNA(ag.bestWin))
	fmt.Printf("phase_marker_avg_ticks: first_pickup=%s unlock=%s first_relocation=%s\n",
		avgTickString(ag.pickupTicks), avgTickString(ag.unlockTicks), avgTickString(ag.relocTicks))
	fmt.Printf("descriptions: %s\n", joinSet(ag.reasons))
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func secondsOrNA(s float64) string {
	if s <= 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.1fs", s)
}

func joinSet(s map[string]struct{}) string {
	if len(s) == 0 {
		return "none"
	}
	labels := make([]string, 0, len(s))
	for k := range s {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	return strings.Join(labels, ",")
}

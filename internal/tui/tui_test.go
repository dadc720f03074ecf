package tui

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Garsondee/Nightwood/internal/config"
	"github.com/Garsondee/Nightwood/internal/session"
	"github.com/Garsondee/Nightwood/internal/sim"
)

func TestHeldKeys_Window(t *testing.T) {
	t0 := time.Unix(100, 0)
	h := newHeldKeys(500 * time.Millisecond)
	h.press('w', t0)
	if !h.intents(t0.Add(400 * time.Millisecond)).Forward {
		t.Fatal("w should still count as held within the window")
	}
	if h.intents(t0.Add(600 * time.Millisecond)).Forward {
		t.Fatal("w should be released once the window passes without a repeat")
	}
	h.press('w', t0.Add(450*time.Millisecond))
	if !h.held('w', t0.Add(900*time.Millisecond)) {
		t.Fatal("a repeat should extend the hold")
	}
}

func TestHeldKeys_OppositeCancels(t *testing.T) {
	t0 := time.Unix(100, 0)
	h := newHeldKeys(time.Second)
	h.press('a', t0)
	h.press('w', t0)
	h.press('d', t0.Add(100*time.Millisecond))
	in := h.intents(t0.Add(200 * time.Millisecond))
	if in.Left || !in.Right || !in.Forward {
		t.Fatalf("expected forward+right after switching from a to d, got %+v", in)
	}
	h.release()
	if h.intents(t0.Add(200 * time.Millisecond)).Any() {
		t.Fatal("release should drop every key")
	}
}

func TestBatteryBar(t *testing.T) {
	if got := batteryBar(100, 100, 10); got != "[##########]" {
		t.Fatalf("full bar, got %q", got)
	}
	if got := batteryBar(45, 100, 10); got != "[####      ]" && got != "[#####     ]" {
		t.Fatalf("half bar, got %q", got)
	}
	if got := batteryBar(0, 100, 4); got != "[    ]" {
		t.Fatalf("empty bar, got %q", got)
	}
}

func TestCellWorld_RoundTrip(t *testing.T) {
	p := sim.PlayerState{Position: mgl64.Vec3{3, 1.7, -4}, Yaw: 0.8}
	for _, c := range [][2]int{{40, 14}, {10, 3}, {70, 20}} {
		pos := cellWorld(p, c[0], c[1], 40, 14)
		col, row := worldCell(p, pos, 40, 14)
		if col != c[0] || row != c[1] {
			t.Fatalf("cell %v came back as (%d, %d)", c, col, row)
		}
	}
	ahead := cellWorld(sim.PlayerState{}, 40, 10, 40, 14)
	if math.Abs(ahead.X()) > 1e-9 || math.Abs(ahead.Z()+4) > 1e-9 {
		t.Fatalf("four rows up at yaw 0 should be 4 units toward -z, got %v", ahead)
	}
}

type fixedClock struct{ t time.Time }

func (c *fixedClock) now() time.Time { return c.t }

func newTestApp(t *testing.T, tun sim.Tuning) (*App, tcell.SimulationScreen, *fixedClock) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	screen.SetSize(80, 24)
	cfg := config.Default()
	cfg.Sim = tun
	run, err := session.New(session.Options{Tuning: tun, Seed: 1})
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	clock := &fixedClock{t: time.Unix(1000, 0)}
	app := New(screen, cfg, run, false)
	app.now = clock.now
	return app, screen, clock
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func rowText(s tcell.SimulationScreen, row, width int) string {
	var sb strings.Builder
	for col := 0; col < width; col++ {
		ch, _, _, _ := s.GetContent(col, row)
		sb.WriteRune(ch)
	}
	return sb.String()
}

func TestApp_KeysDriveTheSimulation(t *testing.T) {
	app, _, clock := newTestApp(t, sim.DefaultTuning())

	if !app.handleKey(key('f')) {
		t.Fatal("f should not quit")
	}
	app.step(0.1)
	if app.last.Battery.FlashlightOn {
		t.Fatal("f should switch the flashlight off")
	}
	if got := app.messages[len(app.messages)-1].text; got != "Flashlight off." {
		t.Fatalf("expected the toggle in the message log, got %q", got)
	}

	start := app.last.Player.Position
	app.handleKey(key('W'))
	app.step(0.1)
	if d := app.last.Player.Position.Sub(start).Len(); d < 0.2 {
		t.Fatalf("a held w should walk, moved %.3f", d)
	}
	clock.t = clock.t.Add(time.Second)
	before := app.last.Player.Position
	app.step(0.1)
	if moved := app.last.Player.Position.Sub(before); math.Hypot(moved.X(), moved.Z()) > 1e-9 {
		t.Fatal("w should be released after the hold window")
	}

	yaw := app.last.Player.Yaw
	app.handleKey(tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone))
	if got := app.run.Sim().Player().Yaw; math.Abs(got-(yaw+turnStep)) > 1e-9 {
		t.Fatalf("left arrow should turn by %.2f, yaw %.3f -> %.3f", turnStep, yaw, got)
	}

	if app.handleKey(key('q')) {
		t.Fatal("q should quit")
	}
	if app.handleKey(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Fatal("escape should quit")
	}
}

func TestApp_AutopilotIgnoresPlayerActions(t *testing.T) {
	app, _, _ := newTestApp(t, sim.DefaultTuning())
	app.handleKey(key('p'))
	if !app.autopilot {
		t.Fatal("p should hand over to the autopilot")
	}
	app.handleKey(key('f'))
	app.step(0.1)
	if !app.last.Battery.FlashlightOn {
		t.Fatal("the flashlight is not the player's to toggle under autopilot")
	}
}

func TestApp_DrawAndRestart(t *testing.T) {
	tun := sim.DefaultTuning()
	tun.BatteryLifetime = 0.5
	app, screen, _ := newTestApp(t, tun)

	app.draw()
	if got := rowText(screen, 0, 80); !strings.Contains(got, "PAGES 0/3") {
		t.Fatalf("status line missing the page count: %q", got)
	}
	h := 24
	cx, cy := 40, int(float64(h)*eyeLineFrac)
	if ch, _, _, _ := screen.GetContent(cx, cy); ch != '^' {
		t.Fatalf("expected the player marker at (%d, %d), got %q", cx, cy, ch)
	}

	for i := 0; i < 10 && !app.last.Flags.Ended(); i++ {
		app.step(0.1)
	}
	if app.last.Flags.Reason != sim.LossBatteryDepleted {
		t.Fatalf("expected the battery to run out, got %+v", app.last.Flags)
	}
	app.draw()
	found := false
	for row := 0; row < 24; row++ {
		if strings.Contains(rowText(screen, row, 80), "DARKNESS") {
			found = true
		}
	}
	if !found {
		t.Fatal("end screen should say DARKNESS")
	}

	seed := app.run.Seed()
	app.handleKey(key('r'))
	if app.run.Seed() != seed+1 || app.last.Flags.Ended() {
		t.Fatalf("r should start the next night, seed %d ended=%t", app.run.Seed(), app.last.Flags.Ended())
	}
	if len(app.messages) != 1 {
		t.Fatalf("restart should leave only the intro message, got %d", len(app.messages))
	}
}

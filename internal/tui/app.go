// Package tui is a terminal frontend on tcell. It shows the same heading-up
// view as the window frontend, drawn in character cells.
package tui

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Garsondee/Nightwood/internal/config"
	"github.com/Garsondee/Nightwood/internal/session"
	"github.com/Garsondee/Nightwood/internal/sim"
	"github.com/Garsondee/Nightwood/internal/view"
)

const (
	cellWidth   = 0.5 // world units per column; cells are about twice as tall as wide
	cellHeight  = 1.0 // world units per row
	eyeLineFrac = 0.62
	turnStep    = 0.12 // radians per arrow press
	pitchStep   = 0.08
	maxMessages = 4
)

// App owns the screen and drives a session runner at a fixed tick rate.
type App struct {
	screen    tcell.Screen
	cfg       config.Config
	run       *session.Runner
	last      sim.TickResult
	keys      *heldKeys
	autopilot bool
	messages  []message
	noise     *rand.Rand
	now       func() time.Time
}

type message struct {
	text string
	tone view.Tone
}

// New wraps an initialised screen. The caller owns the screen and calls Fini.
func New(screen tcell.Screen, cfg config.Config, run *session.Runner, autopilot bool) *App {
	a := &App{
		screen:    screen,
		cfg:       cfg,
		run:       run,
		last:      run.Last(),
		keys:      newHeldKeys(holdWindow),
		autopilot: autopilot,
		noise:     rand.New(rand.NewSource(run.Seed())), // #nosec G404 -- visual noise
		now:       time.Now,
	}
	a.say(view.Intro(cfg.Sim.PageCount), view.ToneInfo)
	return a
}

// Run polls input and ticks until ctx is done or the player quits.
func (a *App) Run(ctx context.Context) error {
	tps := a.cfg.Window.TPS
	if tps <= 0 {
		tps = 60
	}
	dt := 1.0 / float64(tps)
	ticker := time.NewTicker(time.Second / time.Duration(tps))
	defer ticker.Stop()

	events := make(chan tcell.Event, 64)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok || !a.handleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			a.step(dt)
			a.draw()
		}
	}
}

// handleEvent applies one terminal event and returns false to quit.
func (a *App) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.handleKey(ev)
	case *tcell.EventResize:
		a.screen.Sync()
	}
	return true
}

func (a *App) handleKey(ev *tcell.EventKey) bool {
	s := a.run.Sim()
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyLeft:
		if !a.autopilot {
			s.Turn(turnStep, 0)
		}
		return true
	case tcell.KeyRight:
		if !a.autopilot {
			s.Turn(-turnStep, 0)
		}
		return true
	case tcell.KeyUp:
		if !a.autopilot {
			s.Turn(0, pitchStep)
		}
		return true
	case tcell.KeyDown:
		if !a.autopilot {
			s.Turn(0, -pitchStep)
		}
		return true
	case tcell.KeyRune:
	default:
		return true
	}

	r := ev.Rune()
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
	}
	switch r {
	case 'w', 'a', 's', 'd':
		a.keys.press(r, a.now())
	case 'f':
		if !a.autopilot {
			s.ToggleFlashlight()
		}
	case 'e':
		if !a.autopilot {
			s.AttemptBurnPages()
		}
	case 'p':
		a.autopilot = !a.autopilot
		a.run.ResetPilot()
		a.keys.release()
	case 'r':
		if a.last.Flags.Ended() {
			a.restart()
		}
	case 'q':
		return false
	}
	return true
}

func (a *App) restart() {
	if err := a.run.Next(); err != nil {
		log.Printf("restart: %v", err)
		return
	}
	a.last = a.run.Last()
	a.keys.release()
	a.messages = nil
	a.say(view.Intro(a.cfg.Sim.PageCount), view.ToneInfo)
}

func (a *App) step(dt float64) {
	var r sim.TickResult
	if a.autopilot {
		r = a.run.StepAutopilot(dt)
	} else {
		r = a.run.Step(dt, a.keys.intents(a.now()))
	}
	for _, e := range r.Events {
		if msg, tone, ok := view.Message(e, r, a.cfg.Sim.PageCount); ok {
			a.say(msg, tone)
		}
	}
	a.last = r
}

func (a *App) say(text string, tone view.Tone) {
	a.messages = append(a.messages, message{text: text, tone: tone})
	if len(a.messages) > maxMessages {
		a.messages = a.messages[len(a.messages)-maxMessages:]
	}
}

var toneStyles = [...]tcell.Style{
	view.ToneInfo:   tcell.StyleDefault.Foreground(tcell.ColorSilver),
	view.ToneWarn:   tcell.StyleDefault.Foreground(tcell.ColorYellow),
	view.ToneDanger: tcell.StyleDefault.Foreground(tcell.ColorRed),
	view.ToneGood:   tcell.StyleDefault.Foreground(tcell.ColorGreen),
}

var bandStyles = map[sim.BatteryBand]tcell.Style{
	sim.BatteryFull:     tcell.StyleDefault.Foreground(tcell.ColorGreen),
	sim.BatteryLow:      tcell.StyleDefault.Foreground(tcell.ColorYellow),
	sim.BatteryCritical: tcell.StyleDefault.Foreground(tcell.ColorRed),
}

// cellWorld maps a screen cell back to the ground position under it.
func cellWorld(p sim.PlayerState, col, row, cx, cy int) mgl64.Vec3 {
	lx := float64(col-cx) * cellWidth
	ly := float64(cy-row) * cellHeight
	right := mgl64.Vec3{math.Cos(p.Yaw), 0, -math.Sin(p.Yaw)}
	return p.Position.Add(right.Mul(lx)).Add(p.Forward().Mul(ly))
}

// worldCell is the inverse of cellWorld, rounded to the nearest cell.
func worldCell(p sim.PlayerState, pos mgl64.Vec3, cx, cy int) (int, int) {
	x, y := view.Local(p, pos)
	return cx + int(math.Round(x/cellWidth)), cy - int(math.Round(y/cellHeight))
}

func shade(level float64) tcell.Color {
	v := int32(20 + 200*math.Max(0, math.Min(1, level)))
	return tcell.NewRGBColor(v, v, v-10)
}

func (a *App) draw() {
	a.screen.Clear()
	w, h := a.screen.Size()
	if w < 20 || h < 8 {
		a.screen.Show()
		return
	}
	r := a.last
	p := r.Player
	world := a.run.Sim().World()
	on := r.Battery.FlashlightOn
	cx, cy := w/2, int(float64(h)*eyeLineFrac)
	reach := math.Hypot(float64(w)*cellWidth, float64(h)*cellHeight)
	near := view.Near(world.Obstacles, p.Position, reach)

	for row := 1; row < h-1; row++ {
		for col := 0; col < w; col++ {
			pos := cellWorld(p, col, row, cx, cy)
			lit := view.LightAt(p, on, world.Goal, pos)
			ch, style := ' ', tcell.StyleDefault
			if lit > 0.05 {
				ch, style = '.', style.Foreground(shade(lit*0.5))
			}
			for _, o := range near {
				if view.FlatDist(o.Position, pos) > o.Radius {
					continue
				}
				switch o.Kind {
				case sim.ObstacleHouse:
					ch = '▒'
				default:
					ch = '♣'
				}
				style = tcell.StyleDefault.Foreground(shade(math.Max(lit, 0.04)))
				break
			}
			a.screen.SetContent(col, row, ch, nil, style)
		}
	}

	a.put(world.Goal, '*', tcell.StyleDefault.Foreground(tcell.ColorOrange), cx, cy, w, h)
	for _, pg := range r.Remaining {
		if lit := view.LightAt(p, on, world.Goal, pg.Position); lit >= 0.05 {
			a.put(pg.Position, '▯', tcell.StyleDefault.Foreground(shade(lit)), cx, cy, w, h)
		}
	}
	if lit, ok := view.AdversaryVisible(r, world.Goal); ok {
		style := tcell.StyleDefault.Foreground(shade(lit)).Background(tcell.ColorBlack).Bold(true)
		a.put(r.Adversary.Position, 'Ж', style, cx, cy, w, h)
	}

	a.drawStatic(w, h)
	a.screen.SetContent(cx, cy, '^', nil, tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true))
	a.drawStatus(w, h)
	if r.Flags.Ended() {
		a.drawEnd(w, h)
	}
	a.screen.Show()
}

func (a *App) put(pos mgl64.Vec3, ch rune, style tcell.Style, cx, cy, w, h int) {
	col, row := worldCell(a.last.Player, pos, cx, cy)
	if col < 0 || col >= w || row < 1 || row >= h-1 {
		return
	}
	a.screen.SetContent(col, row, ch, nil, style)
}

func (a *App) drawStatic(w, h int) {
	threat := a.last.Threat
	if threat <= 0.02 || a.last.Flags.GameWon {
		return
	}
	glyphs := []rune{'░', '▒', '▓', ':'}
	n := int(threat * float64(w*h) * 0.25)
	for i := 0; i < n; i++ {
		col, row := a.noise.Intn(w), 1+a.noise.Intn(h-2)
		v := int32(80 + a.noise.Intn(150))
		a.screen.SetContent(col, row, glyphs[a.noise.Intn(len(glyphs))], nil,
			tcell.StyleDefault.Foreground(tcell.NewRGBColor(v, v, v)))
	}
}

func (a *App) text(col, row int, s string, style tcell.Style) {
	for _, ch := range s {
		a.screen.SetContent(col, row, ch, nil, style)
		col++
	}
}

// batteryBar renders level/capacity as a fixed-width bar.
func batteryBar(level, capacity float64, width int) string {
	filled := int(math.Round(level / capacity * float64(width)))
	filled = max(0, min(width, filled))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(" ", width-filled) + "]"
}

func (a *App) drawStatus(w, h int) {
	r := a.last
	t := a.run.Sim().Tuning()
	light := "OFF"
	if r.Battery.FlashlightOn {
		light = "ON"
	}
	status := fmt.Sprintf("BATTERY %s %3.0f%%  LIGHT %s  PAGES %d/%d",
		batteryBar(r.Battery.Level, t.BatteryCapacity, 10), r.Battery.Level/t.BatteryCapacity*100,
		light, r.Collected, t.PageCount)
	a.text(0, 0, status, bandStyles[r.BatteryBand])
	if a.autopilot {
		a.text(w-len("AUTOPILOT"), 0, "AUTOPILOT", toneStyles[view.ToneWarn])
	}

	bottom := "wasd move  arrows look  f light  e burn  p autopilot  q quit"
	if r.CanBurn {
		bottom = "press e to burn the pages"
	}
	a.text(0, h-1, bottom, toneStyles[view.ToneInfo])

	for i, m := range a.messages {
		a.text(1, h-1-len(a.messages)+i, m.text, toneStyles[m.tone])
	}
}

func (a *App) drawEnd(w, h int) {
	title, tone := view.EndTitle(a.last.Flags)
	rep := a.run.Report()
	lines := []string{
		title,
		fmt.Sprintf("%d of %d pages in %.0f seconds", rep.Pages, rep.PageCount, rep.Duration),
		fmt.Sprintf("seed %d  relocations %d", a.run.Seed(), rep.Relocations),
		"r new night   q quit",
	}
	row := h/2 - len(lines)/2
	for i, l := range lines {
		style := toneStyles[view.ToneInfo]
		if i == 0 {
			style = toneStyles[tone].Bold(true)
		}
		a.text(max(0, (w-len([]rune(l)))/2), row+i, l, style)
	}
}

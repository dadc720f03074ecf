// Package game is the ebiten frontend: a top-down view of the forest lit by
// the player's flashlight, with the HUD, minimap and end screen around it.
package game

import (
	"log"
	"math/rand"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Nightwood/internal/config"
	"github.com/Garsondee/Nightwood/internal/session"
	"github.com/Garsondee/Nightwood/internal/sim"
	"github.com/Garsondee/Nightwood/internal/view"
)

// Game implements ebiten.Game around a session runner. R starts a new night
// with the next seed once a session has ended.
type Game struct {
	cfg    config.Config
	width  int
	height int
	hud    *hud
	msgLog *MessageLog

	run       *session.Runner
	last      sim.TickResult
	autopilot bool

	showMinimap bool
	showDebug   bool
	lightBuf    *ebiten.Image
	prevKeys    map[ebiten.Key]bool
	captured    bool
	cursorX     int
	cursorY     int
	cursorValid bool
	noiseRng    *rand.Rand // static overlay only; never touches the simulation

	frame       int
	status      string
	statusFrame int
}

// New creates the frontend for run. With autopilot set the scripted pilot
// plays until P is pressed.
func New(cfg config.Config, run *session.Runner, autopilot bool) (*Game, error) {
	h, err := newHUD()
	if err != nil {
		return nil, err
	}
	g := &Game{
		cfg:         cfg,
		width:       cfg.Window.Width,
		height:      cfg.Window.Height,
		hud:         h,
		msgLog:      NewMessageLog(),
		run:         run,
		last:        run.Last(),
		autopilot:   autopilot,
		showMinimap: true,
		prevKeys:    make(map[ebiten.Key]bool),
		noiseRng:    rand.New(rand.NewSource(run.Seed())), // #nosec G404 -- visual noise
	}
	g.intro()
	if cfg.Window.CaptureMouse && !autopilot {
		g.setCaptured(true)
	}
	return g, nil
}

func (g *Game) intro() {
	g.msgLog.Clear()
	g.msgLog.Add(g.frame, view.ToneInfo, view.Intro(g.cfg.Sim.PageCount))
}

func (g *Game) Update() error {
	g.frame++
	g.handleInput()

	dt := 1.0 / float64(ebiten.TPS())
	var r sim.TickResult
	if g.autopilot {
		r = g.run.StepAutopilot(dt)
	} else {
		r = g.run.Step(dt, keyIntents(ebiten.IsKeyPressed))
	}
	g.observe(r)
	return nil
}

func (g *Game) observe(r sim.TickResult) {
	ended := g.last.Flags.Ended()
	g.last = r
	for _, e := range r.Events {
		if msg, tone, ok := view.Message(e, r, g.cfg.Sim.PageCount); ok {
			g.msgLog.Add(g.frame, tone, msg)
		}
	}
	if r.Flags.Ended() && !ended {
		log.Printf("session %s: %s", g.run.SessionID(), g.run.Report())
		g.setCaptured(false)
	}
}

func (g *Game) handleInput() {
	currentKeys := map[ebiten.Key]bool{}
	pressed := func(k ebiten.Key) bool {
		currentKeys[k] = ebiten.IsKeyPressed(k)
		return currentKeys[k] && !g.prevKeys[k]
	}
	s := g.run.Sim()

	// F: flashlight.
	if pressed(ebiten.KeyF) && !g.autopilot {
		s.ToggleFlashlight()
	}
	// E: burn the pages at the campfire.
	if pressed(ebiten.KeyE) && !g.autopilot {
		s.AttemptBurnPages()
	}
	// M: minimap.
	if pressed(ebiten.KeyM) {
		g.showMinimap = !g.showMinimap
	}
	// F3: debug readout.
	if pressed(ebiten.KeyF3) {
		g.showDebug = !g.showDebug
	}
	// P: hand the controls to the autopilot and back.
	if pressed(ebiten.KeyP) {
		g.autopilot = !g.autopilot
		g.run.ResetPilot()
	}
	// Esc releases the mouse; a click takes it again.
	if pressed(ebiten.KeyEscape) {
		g.setCaptured(false)
	}
	if !g.captured && !g.autopilot && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) && !g.last.Flags.Ended() {
		g.setCaptured(true)
	}

	if g.last.Flags.Ended() {
		if pressed(ebiten.KeyR) {
			g.restart()
		}
		if pressed(ebiten.KeyC) {
			if err := clipboard.WriteAll(g.run.ReportText()); err != nil {
				g.setStatus("clipboard unavailable: " + err.Error())
			} else {
				g.setStatus("report copied to clipboard")
			}
		}
	}

	g.handleMouseLook()
	g.prevKeys = currentKeys
}

func (g *Game) restart() {
	if err := g.run.Next(); err != nil {
		log.Printf("restart: %v", err)
		return
	}
	g.last = g.run.Last()
	log.Printf("session %s started (seed %d)", g.run.SessionID(), g.run.Seed())
	g.intro()
	if g.cfg.Window.CaptureMouse && !g.autopilot {
		g.setCaptured(true)
	}
}

func (g *Game) handleMouseLook() {
	if !g.captured || g.autopilot {
		g.cursorValid = false
		return
	}
	x, y := ebiten.CursorPosition()
	if g.cursorValid {
		g.run.Sim().Look(float64(x-g.cursorX), float64(y-g.cursorY))
	}
	g.cursorX, g.cursorY = x, y
	g.cursorValid = true
}

func (g *Game) setCaptured(on bool) {
	g.captured = on
	g.cursorValid = false
	if on {
		ebiten.SetCursorMode(ebiten.CursorModeCaptured)
	} else {
		ebiten.SetCursorMode(ebiten.CursorModeVisible)
	}
}

func (g *Game) setStatus(s string) {
	g.status = s
	g.statusFrame = g.frame
}

// keyIntents maps held keys to movement intents. Arrow keys mirror WASD.
func keyIntents(held func(ebiten.Key) bool) sim.MovementIntents {
	return sim.MovementIntents{
		Forward:  held(ebiten.KeyW) || held(ebiten.KeyArrowUp),
		Backward: held(ebiten.KeyS) || held(ebiten.KeyArrowDown),
		Left:     held(ebiten.KeyA) || held(ebiten.KeyArrowLeft),
		Right:    held(ebiten.KeyD) || held(ebiten.KeyArrowRight),
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.drawWorld(screen)
	g.drawStatic(screen)
	if g.showMinimap {
		g.drawMinimap(screen)
	}
	g.msgLog.Draw(screen, g.hud, 24, g.height-60, g.frame)
	g.drawStatus(screen)
	if g.showDebug {
		g.drawDebug(screen)
	}
	if g.last.Flags.Ended() {
		g.drawEndScreen(screen)
	}
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

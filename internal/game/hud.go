package game

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/Garsondee/Nightwood/internal/sim"
	"github.com/Garsondee/Nightwood/internal/view"
)

// hud owns the font faces used for every on-screen string.
type hud struct {
	small *text.GoTextFace
	body  *text.GoTextFace
	title *text.GoTextFace
}

func newHUD() (*hud, error) {
	regular, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("load regular font: %w", err)
	}
	bold, err := text.NewGoTextFaceSource(bytes.NewReader(gobold.TTF))
	if err != nil {
		return nil, fmt.Errorf("load bold font: %w", err)
	}
	return &hud{
		small: &text.GoTextFace{Source: regular, Size: 14},
		body:  &text.GoTextFace{Source: bold, Size: 18},
		title: &text.GoTextFace{Source: bold, Size: 48},
	}, nil
}

func (h *hud) drawText(dst *ebiten.Image, s string, face *text.GoTextFace, x, y float64, c color.RGBA, alpha float64) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c)
	op.ColorScale.ScaleAlpha(float32(alpha))
	text.Draw(dst, s, face, op)
}

func (h *hud) drawCentered(dst *ebiten.Image, s string, face *text.GoTextFace, cx, y float64, c color.RGBA, alpha float64) {
	w, _ := text.Measure(s, face, 0)
	h.drawText(dst, s, face, cx-w/2, y, c, alpha)
}

var bandColors = map[sim.BatteryBand]color.RGBA{
	sim.BatteryFull:     {R: 110, G: 200, B: 110, A: 255},
	sim.BatteryLow:      {R: 225, G: 180, B: 70, A: 255},
	sim.BatteryCritical: {R: 220, G: 60, B: 50, A: 255},
}

// drawStatus renders the battery bar, the page counter and the prompts.
func (g *Game) drawStatus(screen *ebiten.Image) {
	r := g.last
	t := g.run.Sim().Tuning()
	const x, y, barW, barH = 20, 20, 200, 14

	vector.FillRect(screen, x-8, y-8, barW+16, 72, color.RGBA{R: 0, G: 0, B: 0, A: 150}, false)

	frac := float32(r.Battery.Level / t.BatteryCapacity)
	col := bandColors[r.BatteryBand]
	// Critical battery blinks.
	if r.BatteryBand == sim.BatteryCritical && (g.frame/20)%2 == 0 {
		col.A = 120
	}
	vector.StrokeRect(screen, x, y, barW, barH, 1, color.RGBA{R: 160, G: 160, B: 150, A: 200}, false)
	vector.FillRect(screen, x+2, y+2, (barW-4)*frac, barH-4, col, false)
	light := "OFF"
	if r.Battery.FlashlightOn {
		light = "ON"
	}
	g.hud.drawText(screen, fmt.Sprintf("BATTERY %3.0f%%  LIGHT %s", r.Battery.Level/t.BatteryCapacity*100, light),
		g.hud.small, x, y+barH+4, toneColors[view.ToneInfo], 1)
	g.hud.drawText(screen, fmt.Sprintf("PAGES %d/%d", r.Collected, t.PageCount),
		g.hud.small, x, y+barH+22, toneColors[view.ToneInfo], 1)

	cx := float64(g.width) / 2
	if r.CanBurn {
		pulse := 0.6 + 0.4*math.Sin(float64(g.frame)*0.1)
		g.hud.drawCentered(screen, "Press E to burn the pages", g.hud.body, cx, float64(g.height)-90, toneColors[view.ToneGood], pulse)
	}
	if g.autopilot {
		g.hud.drawCentered(screen, "AUTOPILOT  (P to take over)", g.hud.small, cx, 16, toneColors[view.ToneWarn], 1)
	}
	if g.status != "" && g.frame-g.statusFrame < 180 {
		g.hud.drawCentered(screen, g.status, g.hud.small, cx, float64(g.height)-40, toneColors[view.ToneInfo], 1)
	}
	if r.Tick < 60*10 && !r.Flags.Ended() {
		g.hud.drawCentered(screen, "WASD move  mouse look  F light  M map  P autopilot  Esc release mouse",
			g.hud.small, cx, float64(g.height)-24, toneColors[view.ToneInfo], 0.6)
	}
}

func (g *Game) drawEndScreen(screen *ebiten.Image) {
	w, h := float32(g.width), float32(g.height)
	vector.FillRect(screen, 0, 0, w, h, color.RGBA{R: 0, G: 0, B: 0, A: 190}, false)

	title, tone := view.EndTitle(g.last.Flags)
	cx := float64(g.width) / 2
	cy := float64(g.height) / 2
	g.hud.drawCentered(screen, title, g.hud.title, cx, cy-90, toneColors[tone], 1)

	rep := g.run.Report()
	g.hud.drawCentered(screen, fmt.Sprintf("%d of %d pages in %.0f seconds", rep.Pages, rep.PageCount, rep.Duration),
		g.hud.body, cx, cy, toneColors[view.ToneInfo], 1)
	g.hud.drawCentered(screen, fmt.Sprintf("seed %d   relocations %d   peak threat %.2f", g.run.Seed(), rep.Relocations, rep.PeakThreat),
		g.hud.small, cx, cy+30, toneColors[view.ToneInfo], 0.8)
	g.hud.drawCentered(screen, "R  new night      C  copy report", g.hud.small, cx, cy+80, toneColors[view.ToneWarn], 1)
}

// drawDebug prints the raw simulation state under the status panel.
func (g *Game) drawDebug(screen *ebiten.Image) {
	r := g.last
	p, a := r.Player.Position, r.Adversary.Position
	lines := fmt.Sprintf("TPS %.0f  FPS %.0f  tick %d  t=%.1fs\nplayer (%.1f, %.1f, %.1f) yaw %.2f pitch %.2f\nadversary (%.1f, %.1f, %.1f) since relocate %.1fs\nthreat %.2f  session %s",
		ebiten.ActualTPS(), ebiten.ActualFPS(), r.Tick, r.Time,
		p[0], p[1], p[2], r.Player.Yaw, r.Player.Pitch,
		a[0], a[1], a[2], r.Adversary.SinceRelocate,
		r.Threat, g.run.SessionID())
	ebitenutil.DebugPrintAt(screen, lines, 20, 100)
}

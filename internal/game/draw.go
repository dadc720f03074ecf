package game

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Nightwood/internal/sim"
	"github.com/Garsondee/Nightwood/internal/view"
)

const (
	pixelsPerUnit = 14.0
	eyeLineFrac   = 0.62 // player sits a little below the screen centre

	coneRays = 48

	houseHalfSide = 9.0
	minimapSize   = 160
)

var (
	groundColor    = color.RGBA{R: 7, G: 9, B: 11, A: 255}
	treeColor      = color.RGBA{R: 52, G: 70, B: 44, A: 255}
	trunkColor     = color.RGBA{R: 70, G: 52, B: 36, A: 255}
	houseColor     = color.RGBA{R: 92, G: 86, B: 80, A: 255}
	pageColor      = color.RGBA{R: 235, G: 232, B: 220, A: 255}
	fireColor      = color.RGBA{R: 255, G: 140, B: 40, A: 255}
	flashTint      = color.RGBA{R: 255, G: 240, B: 200, A: 255}
	adversaryColor = color.RGBA{R: 12, G: 12, B: 14, A: 255}
	faceColor      = color.RGBA{R: 215, G: 212, B: 205, A: 255}
)

// camera projects world positions into a heading-up screen: the player's
// forward direction always points up.
type camera struct {
	player sim.PlayerState
	cx, cy float64
	scale  float64
}

func newCamera(p sim.PlayerState, width, height int) camera {
	return camera{
		player: p,
		cx:     float64(width) / 2,
		cy:     float64(height) * eyeLineFrac,
		scale:  pixelsPerUnit,
	}
}

func (c camera) project(pos mgl64.Vec3) (float32, float32) {
	x, y := view.Local(c.player, pos)
	return float32(c.cx + x*c.scale), float32(c.cy - y*c.scale)
}

// onScreen reports whether a circle of world radius r around pos may be
// visible in a w×h viewport.
func (c camera) onScreen(pos mgl64.Vec3, r float64, w, h int) bool {
	x, y := c.project(pos)
	pad := float32(r * c.scale)
	return x+pad >= 0 && y+pad >= 0 && x-pad <= float32(w) && y-pad <= float32(h)
}

func scaled(c color.RGBA, k float64) color.RGBA {
	k = math.Max(0, math.Min(1, k))
	return color.RGBA{R: uint8(float64(c.R) * k), G: uint8(float64(c.G) * k), B: uint8(float64(c.B) * k), A: c.A}
}

func (g *Game) drawWorld(screen *ebiten.Image) {
	screen.Fill(groundColor)
	r := g.last
	p := r.Player
	cam := newCamera(p, g.width, g.height)
	world := g.run.Sim().World()
	on := r.Battery.FlashlightOn

	// Campfire glow is always visible; it is the only light besides the torch.
	fx, fy := cam.project(world.Goal)
	flicker := 0.85 + 0.15*math.Sin(float64(g.frame)*0.23)*math.Sin(float64(g.frame)*0.07)
	vector.FillCircle(screen, fx, fy, float32(view.FireRange*cam.scale), scaled(fireColor, 0.10*flicker), true)
	vector.FillCircle(screen, fx, fy, float32(view.FireRange*cam.scale*0.4), scaled(fireColor, 0.22*flicker), true)
	vector.FillCircle(screen, fx, fy, 5, fireColor, true)

	if on {
		g.drawFlashlight(screen, cam, world.Obstacles)
	}

	for _, o := range world.Obstacles {
		if !cam.onScreen(o.Position, o.Radius, g.width, g.height) {
			continue
		}
		lit := view.LightAt(p, on, world.Goal, o.Position)
		switch o.Kind {
		case sim.ObstacleHouse:
			g.drawHouse(screen, cam, o, math.Max(lit, 0.08))
		default:
			x, y := cam.project(o.Position)
			rad := float32(o.Radius * cam.scale)
			vector.FillCircle(screen, x, y, rad, scaled(treeColor, math.Max(lit, 0.06)), true)
			vector.FillCircle(screen, x, y, rad*0.35, scaled(trunkColor, math.Max(lit, 0.04)), true)
		}
	}

	for _, pg := range r.Remaining {
		lit := view.LightAt(p, on, world.Goal, pg.Position)
		if lit < 0.05 {
			continue
		}
		x, y := cam.project(pg.Position)
		vector.FillRect(screen, x-3, y-4, 6, 8, scaled(pageColor, lit), false)
	}

	g.drawAdversary(screen, cam, world.Goal)

	// Player marker: a small wedge pointing up.
	px, py := float32(cam.cx), float32(cam.cy)
	var path vector.Path
	path.MoveTo(px, py-7)
	path.LineTo(px-5, py+5)
	path.LineTo(px+5, py+5)
	path.Close()
	vector.FillPath(screen, &path, &vector.FillOptions{}, &vector.DrawPathOptions{AntiAlias: true})
}

// drawFlashlight fans the torch into an offscreen buffer, clipping each ray
// at the first trunk, then composites it with a single tint and opacity.
func (g *Game) drawFlashlight(screen *ebiten.Image, cam camera, obstacles []sim.Obstacle) {
	if g.lightBuf == nil || g.lightBuf.Bounds().Dx() != g.width || g.lightBuf.Bounds().Dy() != g.height {
		g.lightBuf = ebiten.NewImage(g.width, g.height)
	}
	buf := g.lightBuf
	buf.Clear()

	p := g.last.Player
	near := view.Near(obstacles, p.Position, view.FlashRange)

	var path vector.Path
	path.MoveTo(float32(cam.cx), float32(cam.cy))
	for i := 0; i <= coneRays; i++ {
		a := p.Yaw - view.FlashHalfFOV + 2*view.FlashHalfFOV*float64(i)/coneRays
		dir := mgl64.Vec3{-math.Sin(a), 0, -math.Cos(a)}
		end := p.Position.Add(dir.Mul(view.ClipRay(p.Position, dir, view.FlashRange, near)))
		x, y := cam.project(end)
		path.LineTo(x, y)
	}
	path.Close()
	vector.FillPath(buf, &path, &vector.FillOptions{}, &vector.DrawPathOptions{AntiAlias: true})

	opacity := 0.28
	// Low battery makes the beam weaker and, when critical, unsteady.
	switch g.last.BatteryBand {
	case sim.BatteryLow:
		opacity = 0.2
	case sim.BatteryCritical:
		opacity = 0.12 + 0.06*math.Sin(float64(g.frame)*0.9)
	}
	opts := &ebiten.DrawImageOptions{}
	opts.ColorScale.ScaleWithColor(flashTint)
	opts.ColorScale.ScaleAlpha(float32(opacity))
	screen.DrawImage(buf, opts)
}

func (g *Game) drawHouse(screen *ebiten.Image, cam camera, o sim.Obstacle, lit float64) {
	corners := [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	var path vector.Path
	for i, c := range corners {
		x, y := cam.project(o.Position.Add(mgl64.Vec3{c[0] * houseHalfSide, 0, c[1] * houseHalfSide}))
		if i == 0 {
			path.MoveTo(x, y)
		} else {
			path.LineTo(x, y)
		}
	}
	path.Close()
	col := scaled(houseColor, lit)
	opts := &vector.DrawPathOptions{AntiAlias: true}
	opts.ColorScale.ScaleWithColor(col)
	vector.FillPath(screen, &path, &vector.FillOptions{}, opts)
}

func (g *Game) drawAdversary(screen *ebiten.Image, cam camera, goal mgl64.Vec3) {
	lit, ok := view.AdversaryVisible(g.last, goal)
	if !ok {
		return
	}
	x, y := cam.project(g.last.Adversary.Position)
	alpha := uint8(255 * math.Min(1, lit*1.4))
	body := adversaryColor
	body.A = alpha
	face := scaled(faceColor, lit)
	face.A = alpha
	vector.FillCircle(screen, x, y, 9, body, true)
	vector.StrokeCircle(screen, x, y, 9, 1, color.RGBA{R: 60, G: 60, B: 66, A: alpha}, true)
	vector.FillCircle(screen, x, y, 4, face, true)
}

// drawStatic covers the screen in noise as the threat rises.
func (g *Game) drawStatic(screen *ebiten.Image) {
	threat := g.last.Threat
	if threat <= 0.02 || g.last.Flags.GameWon {
		return
	}
	w, h := float32(g.width), float32(g.height)
	vector.FillRect(screen, 0, 0, w, h, color.RGBA{R: 40, G: 40, B: 40, A: uint8(70 * threat)}, false)
	specks := int(threat * 900)
	for i := 0; i < specks; i++ {
		x := float32(g.noiseRng.Float64()) * w
		y := float32(g.noiseRng.Float64()) * h
		v := uint8(90 + g.noiseRng.Intn(150))
		vector.FillRect(screen, x, y, 2, 2, color.RGBA{R: v, G: v, B: v, A: 200}, false)
	}
}

// mapPoint places a world position on a north-up minimap of the given size
// covering ±half units.
func mapPoint(pos mgl64.Vec3, half float64, x0, y0, size float32) (float32, float32) {
	fx := (pos[0] + half) / (2 * half)
	fz := (pos[2] + half) / (2 * half)
	return x0 + float32(fx)*size, y0 + float32(fz)*size
}

func (g *Game) drawMinimap(screen *ebiten.Image) {
	const size = minimapSize
	x0 := float32(g.width) - size - 20
	y0 := float32(20)
	half := g.run.Sim().Tuning().PlayHalfExtent

	vector.FillRect(screen, x0, y0, size, size, color.RGBA{R: 0, G: 0, B: 0, A: 170}, false)
	vector.StrokeRect(screen, x0, y0, size, size, 1, color.RGBA{R: 120, G: 120, B: 110, A: 200}, false)

	world := g.run.Sim().World()
	for _, o := range world.Obstacles {
		if o.Kind != sim.ObstacleHouse {
			continue
		}
		hx, hy := mapPoint(o.Position, half, x0, y0, size)
		s := float32(houseHalfSide/(2*half)) * size
		vector.FillRect(screen, hx-s, hy-s, 2*s, 2*s, color.RGBA{R: 110, G: 104, B: 96, A: 220}, false)
	}
	gx, gy := mapPoint(world.Goal, half, x0, y0, size)
	vector.FillCircle(screen, gx, gy, 3, fireColor, true)

	p := g.last.Player
	px, py := mapPoint(p.Position, half, x0, y0, size)
	f := p.Forward()
	vector.StrokeLine(screen, px, py, px+float32(f[0])*10, py+float32(f[2])*10, 1.5, flashTint, true)
	vector.FillCircle(screen, px, py, 3, color.RGBA{R: 230, G: 230, B: 230, A: 255}, true)
}

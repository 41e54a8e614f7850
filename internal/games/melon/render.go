package melon

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/melon-smash/internal/core"
)

// Minimum terminal size for the 3D view.
const (
	minScreenW = 40
	minScreenH = 12
)

// Terrain ray marching.
const (
	nearPlane    = 0.5
	marchBase    = 0.6
	marchGrowth  = 0.015
	marchMaxFrac = 0.9 // of the terrain extent
)

// view is the camera projection for one frame. Terminal cells are about
// twice as tall as wide, so the aspect ratio halves the row count.
type view struct {
	w, h    int
	eye     mgl64.Vec3
	vp      mgl64.Mat4
	inv     mgl64.Mat4
	focalX  float64
	focalY  float64
	far     float64
	zbuffer []float64
}

func newView(w, h int, eye, target mgl64.Vec3, fovDeg, far float64) *view {
	aspect := float64(w) / (2 * float64(h))
	proj := mgl64.Perspective(core.DegToRad(fovDeg), aspect, nearPlane, far)
	look := mgl64.LookAtV(eye, target, mgl64.Vec3{0, 1, 0})
	vp := proj.Mul4(look)
	v := &view{
		w:       w,
		h:       h,
		eye:     eye,
		vp:      vp,
		inv:     vp.Inv(),
		focalX:  proj.At(0, 0) * float64(w) / 2,
		focalY:  proj.At(1, 1) * float64(h) / 2,
		far:     far,
		zbuffer: make([]float64, w*h),
	}
	for i := range v.zbuffer {
		v.zbuffer[i] = math.Inf(1)
	}
	return v
}

// project maps a world point to a cell. ok is false behind the camera.
func (v *view) project(p mgl64.Vec3) (x, y int, depth float64, ok bool) {
	clip := v.vp.Mul4x1(p.Vec4(1))
	if clip.W() <= nearPlane {
		return 0, 0, 0, false
	}
	nx := clip.X() / clip.W()
	ny := clip.Y() / clip.W()
	x = int(math.Floor((nx + 1) / 2 * float64(v.w)))
	y = int(math.Floor((1 - ny) / 2 * float64(v.h)))
	return x, y, clip.W(), true
}

// ray returns the unit direction through the centre of cell (x, y).
func (v *view) ray(x, y int) mgl64.Vec3 {
	nx := (float64(x)+0.5)/float64(v.w)*2 - 1
	ny := 1 - (float64(y)+0.5)/float64(v.h)*2
	far := v.inv.Mul4x1(mgl64.Vec4{nx, ny, 1, 1})
	p := far.Vec3().Mul(1 / far.W())
	return p.Sub(v.eye).Normalize()
}

// plot writes a cell if nothing nearer already covers it.
func (v *view) plot(dst *core.Screen, x, y int, depth float64, r rune, c core.Color) {
	if x < 0 || y < 0 || x >= v.w || y >= v.h {
		return
	}
	i := y*v.w + x
	if depth >= v.zbuffer[i] {
		return
	}
	v.zbuffer[i] = depth
	dst.SetColor(x, y, r, c)
}

// disc draws a filled ellipse for a sphere of radius r centred at p.
func (v *view) disc(dst *core.Screen, p mgl64.Vec3, r float64, fill, rim rune, fillColor, rimColor core.Color) {
	cx, cy, depth, ok := v.project(p)
	if !ok {
		return
	}
	rx := r * v.focalX / depth
	ry := r * v.focalY / depth
	if rx < 0.5 && ry < 0.5 {
		v.plot(dst, cx, cy, depth, fill, fillColor)
		return
	}
	x0, x1 := clipSpan(cx, rx, v.w)
	y0, y1 := clipSpan(cy, ry, v.h)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx := float64(x-cx) / math.Max(rx, 0.5)
			dy := float64(y-cy) / math.Max(ry, 0.5)
			d := dx*dx + dy*dy
			switch {
			case d <= 0.55:
				v.plot(dst, x, y, depth, fill, fillColor)
			case d <= 1:
				v.plot(dst, x, y, depth, rim, rimColor)
			}
		}
	}
}

// clipSpan returns the cells from c-r to c+r that lie inside [0, n).
// lo > hi when none do.
func clipSpan(c int, r float64, n int) (lo, hi int) {
	ext := math.Ceil(r)
	lo = int(math.Max(0, float64(c)-ext))
	hi = int(math.Min(float64(n-1), float64(c)+ext))
	return lo, hi
}

// line draws a segment between two world points.
func (v *view) line(dst *core.Screen, a, b mgl64.Vec3, c core.Color) {
	x0, y0, d0, ok0 := v.project(a)
	x1, y1, d1, ok1 := v.project(b)
	if !ok0 || !ok1 {
		return
	}
	r := lineRune(x1-x0, y1-y0)
	steps := max(abs(x1-x0), abs(y1-y0), 1)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := x0 + int(math.Round(t*float64(x1-x0)))
		y := y0 + int(math.Round(t*float64(y1-y0)))
		v.plot(dst, x, y, core.Lerp(d0, d1, t)-0.1, r, c)
	}
}

func lineRune(dx, dy int) rune {
	switch {
	case dx == 0 && dy == 0:
		return '+'
	case abs(dx) > 2*abs(dy):
		return '-'
	case abs(dy) > 2*abs(dx):
		return '|'
	case (dx > 0) == (dy > 0):
		return '\\'
	default:
		return '/'
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Render draws the scene, then the HUD and overlays.
func (g *Game) Render(dst *core.Screen) {
	if g.round == nil {
		return
	}
	w, h := dst.Width(), dst.Height()
	if w < minScreenW || h < minScreenH {
		dst.DrawTextCentered(h/2-1, "Window too small", core.ColorYellow)
		dst.DrawTextCentered(h/2+1, "Need 40x12", core.ColorGray)
		return
	}

	far := g.ground.Extent() * marchMaxFrac
	v := newView(w, h, g.camera.Position, g.camera.Target, g.cfg.Camera.FieldOfView, far)

	g.renderTerrain(dst, v)
	g.renderTrees(dst, v)
	g.renderMelons(dst, v)
	g.renderParticles(dst, v)
	g.renderPlayer(dst, v)

	g.renderHUD(dst)
	g.renderBanner(dst)
	if g.round.Ended() {
		g.renderResult(dst)
	}
	if g.paused {
		dst.DrawTextCentered(h/2, " PAUSED ", core.ColorBrightYellow)
	}
}

// renderTerrain marches one ray per cell against the heightfield.
func (g *Game) renderTerrain(dst *core.Screen, v *view) {
	lo, hi := g.ground.MinHeight(), g.ground.MaxHeight()
	span := math.Max(hi-lo, 1e-6)
	for y := range v.h {
		for x := range v.w {
			dir := v.ray(x, y)
			t, ok := g.march(v.eye, dir, v.far)
			if !ok {
				continue
			}
			p := v.eye.Add(dir.Mul(t))
			shade := int((p.Y() - lo) / span * float64(len(core.TerrainShades)))
			shade = core.Clamp(shade, 0, len(core.TerrainShades)-1)
			col := core.TerrainShades[shade]
			if !g.cfg.Bounds.Contains(p.X(), p.Z()) {
				col = core.ColorGray
			}
			v.plot(dst, x, y, t, terrainRune(t, v.far), col)
		}
	}
}

func (g *Game) march(eye, dir mgl64.Vec3, far float64) (float64, bool) {
	t := nearPlane
	for t < far {
		p := eye.Add(dir.Mul(t))
		if !g.ground.Contains(p.X(), p.Z()) {
			if dir.Y() >= 0 {
				return 0, false
			}
		} else if p.Y() <= g.ground.HeightAt(p.X(), p.Z(), p.Y()) {
			return t, true
		}
		t += marchBase + t*marchGrowth
	}
	return 0, false
}

// terrainRune picks a denser glyph for nearer ground.
func terrainRune(t, far float64) rune {
	switch f := t / far; {
	case f < 0.08:
		return '#'
	case f < 0.2:
		return '='
	case f < 0.45:
		return '-'
	default:
		return '.'
	}
}

func (g *Game) renderTrees(dst *core.Screen, v *view) {
	if g.bundle.Tree == nil {
		return
	}
	size := g.bundle.Tree.Scaled(treeScale)
	glyph := g.bundle.Tree.Rune('Y')
	for _, t := range g.trees {
		base := t.Position.Sub(mgl64.Vec3{0, treeBaseOffset, 0})
		top := base.Add(mgl64.Vec3{0, size.Y(), 0})
		v.line(dst, base, top, core.ColorOrange)
		v.disc(dst, top, size.X()/2, glyph, '*', core.ColorDarkGreen, core.ColorGreen)
	}
}

func (g *Game) renderMelons(dst *core.Screen, v *view) {
	whole := g.bundle.Watermelon.Rune('@')
	broken := g.bundle.Broken.Rune('%')
	brokenR := g.bundle.Broken.Radius(g.cfg.Broken.Scale)
	for _, m := range g.field.Melons() {
		switch {
		case m.Whole != nil:
			v.disc(dst, m.Whole.Pose.Position, m.Radius, whole, 'o', core.ColorGreen, core.ColorDarkGreen)
		case m.Broken != nil && m.Broken.Visible:
			v.disc(dst, m.Broken.Position, brokenR, broken, '~', core.ColorPink, core.ColorBrightRed)
		}
	}
}

func (g *Game) renderParticles(dst *core.Screen, v *view) {
	for _, b := range g.particles.Bursts() {
		r := '*'
		if b.Opacity() < 0.4 {
			r = '.'
		}
		for _, p := range b.Particles {
			x, y, d, ok := v.project(p.Position)
			if ok {
				v.plot(dst, x, y, d, r, core.ColorPink)
			}
		}
	}
}

func (g *Game) renderPlayer(dst *core.Screen, v *view) {
	feet := g.player.Position
	head := feet.Add(mgl64.Vec3{0, g.player.Height, 0})
	v.line(dst, feet, head, core.ColorBrightWhite)
	if x, y, d, ok := v.project(head); ok {
		v.plot(dst, x, y, d-0.2, g.bundle.Avatar.Model.Rune('A'), core.ColorBrightWhite)
	}
	v.line(dst, g.bat.Pivot, g.bat.Tip(), core.ColorBrown)
}

// SparkColor maps a hue in degrees onto the palette.
func SparkColor(hue int) core.Color {
	colors := [...]core.Color{
		core.ColorBrightRed, core.ColorBrightYellow, core.ColorBrightGreen,
		core.ColorBrightCyan, core.ColorBrightBlue, core.ColorBrightMagenta,
	}
	return colors[((hue%360)+360)%360/60]
}

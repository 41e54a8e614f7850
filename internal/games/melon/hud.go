package melon

import (
	"fmt"

	"github.com/vovakirdan/melon-smash/internal/core"
)

// HUD and result panel labels.
const (
	labelRemaining = "残り: %ds"
	labelCount     = "🍉 %d"
	labelTimeUp    = "タイムアップ"
	labelResult    = "🍉 %d個"
	labelRestart   = "もう一度挑戦 [Enter]"
	labelPractice  = "練習"
)

// Result panel size in cells.
const (
	resultW = 36
	resultH = 9
)

// renderHUD draws the clock on the left and the count on the right.
func (g *Game) renderHUD(dst *core.Screen) {
	left := fmt.Sprintf(labelRemaining, g.round.Seconds())
	if g.mode == ModePractice {
		left = labelPractice
	}
	dst.DrawTextColor(1, 0, left, core.ColorBrightWhite)

	right := fmt.Sprintf(labelCount, g.round.Smashed())
	dst.DrawTextColor(dst.Width()-core.TextWidth(right)-1, 0, right, core.ColorBrightWhite)
}

func (g *Game) renderBanner(dst *core.Screen) {
	b := g.round.Banner()
	if b == "" {
		return
	}
	c := core.ColorBrightYellow
	if b == BannerGo {
		c = core.ColorBrightGreen
	}
	dst.DrawTextCentered(dst.Height()/3, b, c)
}

// ResultRect is where the result panel sits on a w*h screen.
func ResultRect(w, h int) core.Rect {
	return core.CenteredRect(w, h, min(resultW, w), min(resultH, h))
}

func (g *Game) renderResult(dst *core.Screen) {
	r := ResultRect(dst.Width(), dst.Height())
	dst.DrawRect(r, ' ', core.ColorDefault)
	dst.DrawBox(r, core.ColorBrightWhite)

	g.renderSparks(dst, r)

	n := g.round.Smashed()
	dst.DrawTextCentered(r.Y+1, labelTimeUp, core.ColorBrightYellow)
	dst.DrawTextCentered(r.Y+3, fmt.Sprintf(labelResult, n), core.ColorBrightWhite)
	dst.DrawTextCentered(r.Y+5, ResultMessage(n), core.ColorPink)
	dst.DrawTextCentered(r.Bottom()-2, labelRestart, core.ColorCyan)
}

// renderSparks draws the fireworks inside the panel border.
func (g *Game) renderSparks(dst *core.Screen, r core.Rect) {
	now := g.timers.Now()
	for _, s := range g.fireworks.Sparks() {
		p := s.Progress(now)
		if p <= 0 {
			continue
		}
		x := r.X + int(s.Left*float64(r.W)+s.DX*p)
		y := r.Y + int(s.Top*float64(r.H)+s.DY*p)
		if x <= r.X || x >= r.Right()-1 || y <= r.Y || y >= r.Bottom()-1 {
			continue
		}
		glyph := '*'
		switch {
		case p > 0.75:
			glyph = '.'
		case p > 0.4:
			glyph = '+'
		}
		dst.SetColor(x, y, glyph, SparkColor(s.Hue))
	}
}

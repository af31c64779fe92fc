package pong

import (
	"strconv"

	"github.com/vovakirdan/tui-pong/internal/core"
)

// Element colors.
const (
	NetColor    = core.ColorGray
	BallColor   = core.ColorBrightWhite
	ScoreColor  = core.ColorBrightYellow
	BannerColor = core.ColorBrightCyan
)

// PaddleColors holds the paddle color per side.
var PaddleColors = [2]core.Color{core.ColorBrightBlue, core.ColorBrightRed}

// Draw renders a state onto a canvas in playfield units: net, paddles, ball,
// scores and a banner for non-playing states.
func Draw(c core.Canvas, s *State) {
	c.Begin(s.FieldW, s.FieldH)

	c.DashedVLine(s.FieldW/2, NetColor)

	for i, p := range s.Paddles {
		c.FillRect(p.X, p.Y, p.Width, p.Height, PaddleColors[i])
	}

	b := s.Ball
	c.FillCircle(b.X, b.Y, b.Radius, BallColor)

	gap := s.FieldW / 10
	c.DrawText(s.FieldW/2-gap, 0, strconv.Itoa(s.Scores[core.SideLeft]), ScoreColor)
	c.DrawText(s.FieldW/2+gap, 0, strconv.Itoa(s.Scores[core.SideRight]), ScoreColor)

	if banner := bannerText(s); banner != "" {
		c.DrawText(s.FieldW/2-s.FieldW/8, s.FieldH/2-s.FieldH/6, banner, BannerColor)
	}
}

func bannerText(s *State) string {
	switch s.Lifecycle {
	case Ready:
		return "READY"
	case Paused:
		return "PAUSED"
	case Ended:
		if s.Winner == core.SideLeft {
			return "LEFT WINS"
		}
		return "RIGHT WINS"
	default:
		return ""
	}
}

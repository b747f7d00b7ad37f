package sparkline

import (
	"errors"

	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/linechart"
	"github.com/charmbracelet/lipgloss"
)

// ErrEmptySeries is returned when asked to draw nothing.
var ErrEmptySeries = errors.New("sparkline: empty series")

// BrailleRenderer draws a series as a one-dot braille line on an ntcharts
// line chart. Axes and labels are never drawn.
type BrailleRenderer struct {
	UpColor   lipgloss.Color
	DownColor lipgloss.Color
	// Steps is the number of interpolated segments per source interval
	// when smoothing; 0 means 4.
	Steps int
}

// NewBrailleRenderer returns a renderer using the terminal green and red.
func NewBrailleRenderer() BrailleRenderer {
	return BrailleRenderer{UpColor: lipgloss.Color("10"), DownColor: lipgloss.Color("9")}
}

// Render implements Renderer.
func (r BrailleRenderer) Render(series []float64, opts ChartOptions) (string, error) {
	if len(series) == 0 {
		return "", ErrEmptySeries
	}
	steps := r.Steps
	if steps <= 0 {
		steps = 4
	}
	pts := Smooth(series, opts.Tension, steps)

	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts {
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	if maxY-minY < 1e-9 {
		// Flat series: centre the line.
		pad := 1.0
		if minY != 0 {
			pad = abs(minY) * 0.01
		}
		minY -= pad
		maxY += pad
	}
	maxX := pts[len(pts)-1].X
	if maxX == 0 {
		maxX = 1
	}

	color := r.DownColor
	if opts.Color == ColorUp {
		color = r.UpColor
	}
	style := lipgloss.NewStyle().Foreground(color)

	lc := linechart.New(opts.Width, opts.Height,
		0, maxX,
		minY, maxY,
		linechart.WithXYSteps(0, 0),
		linechart.WithStyles(lipgloss.Style{}, lipgloss.Style{}, style),
	)
	if len(pts) == 1 {
		lc.DrawBrailleLineWithStyle(pts[0], canvas.Float64Point{X: maxX, Y: pts[0].Y}, style)
	}
	for i := 0; i < len(pts)-1; i++ {
		lc.DrawBrailleLineWithStyle(pts[i], pts[i+1], style)
	}
	return lc.View(), nil
}

// Smooth interpolates series (x = index) with a cardinal spline of the given
// tension, emitting steps points per interval. The curve passes through every
// source point. tension <= 0 returns the points unchanged.
func Smooth(series []float64, tension float64, steps int) []canvas.Float64Point {
	n := len(series)
	if tension <= 0 || n < 3 || steps < 2 {
		out := make([]canvas.Float64Point, n)
		for i, y := range series {
			out[i] = canvas.Float64Point{X: float64(i), Y: y}
		}
		return out
	}

	at := func(i int) float64 {
		if i < 0 {
			return series[0]
		}
		if i >= n {
			return series[n-1]
		}
		return series[i]
	}
	tangent := func(i int) float64 {
		return tension * (at(i+1) - at(i-1))
	}

	out := make([]canvas.Float64Point, 0, (n-1)*steps+1)
	for i := 0; i < n-1; i++ {
		y1, y2 := series[i], series[i+1]
		m1, m2 := tangent(i), tangent(i+1)
		for s := 0; s < steps; s++ {
			t := float64(s) / float64(steps)
			t2, t3 := t*t, t*t*t
			h00 := 2*t3 - 3*t2 + 1
			h10 := t3 - 2*t2 + t
			h01 := -2*t3 + 3*t2
			h11 := t3 - t2
			out = append(out, canvas.Float64Point{
				X: float64(i) + t,
				Y: h00*y1 + h10*m1 + h01*y2 + h11*m2,
			})
		}
	}
	out = append(out, canvas.Float64Point{X: float64(n - 1), Y: series[n-1]})
	return out
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

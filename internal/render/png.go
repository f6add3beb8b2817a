// Package render draws series as PNG line charts and HTML dashboards.
package render

import (
	"errors"
	"fmt"
	"io"

	"github.com/couchcryptid/ocean-series-service/internal/domain"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// ErrNothingToPlot is returned when no series has a point.
var ErrNothingToPlot = errors.New("render: no points to plot")

// PNG chart dimensions.
const (
	pngWidth  = 10 * vg.Inch
	pngHeight = 5 * vg.Inch
)

// WritePNG draws one line per series, plus a dashed fitted line for each
// series with an entry in trends.
func WritePNG(w io.Writer, title string, series []domain.Series, trends map[string]domain.Trend) error {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Year"
	p.Y.Label.Text = axisUnit(series)
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	drawn := 0
	for i, s := range series {
		if s.Len() == 0 {
			continue
		}
		line, err := plotter.NewLine(toXYs(s))
		if err != nil {
			return fmt.Errorf("render %s: %w", s.Label, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(s.Label, line)
		drawn++

		tr, ok := trends[s.Label]
		if !ok {
			continue
		}
		fitted := tr.Fitted(s)
		trendLine, err := plotter.NewLine(toXYs(fitted))
		if err != nil {
			return fmt.Errorf("render %s: %w", fitted.Label, err)
		}
		trendLine.Color = plotutil.Color(i)
		trendLine.Width = vg.Points(1)
		trendLine.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}
		p.Add(trendLine)
		p.Legend.Add(fitted.Label, trendLine)
	}
	if drawn == 0 {
		return ErrNothingToPlot
	}

	wt, err := p.WriterTo(pngWidth, pngHeight, "png")
	if err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	return nil
}

func toXYs(s domain.Series) plotter.XYs {
	xys := make(plotter.XYs, len(s.Points))
	for i, pt := range s.Points {
		xys[i].X = float64(pt.Year)
		xys[i].Y = pt.Value
	}
	return xys
}

// axisUnit returns the shared unit of series, or "" when units differ.
func axisUnit(series []domain.Series) string {
	unit := ""
	for i, s := range series {
		if i == 0 {
			unit = s.Unit
			continue
		}
		if s.Unit != unit {
			return ""
		}
	}
	return unit
}

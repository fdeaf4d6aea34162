/*
 * plot.go, part of gobalance.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

//Package balplot draws the atom balance of a balanced equation: for each
//element, one bar for the atoms in the reactants and one for the atoms in the
//products.
package balplot

import (
	"errors"
	"image/color"
	"io"
	"math"

	balance "github.com/rmera/gobalance"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	barWidth   = 12 //points
	plotWidth  = 5  //inches
	plotHeight = 4  //inches
)

//ErrNoElements is returned for results without a linear system.
var ErrNoElements = errors.New("balplot: result has no elements to plot")

func basicBarPlot(title string, elements []string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.Y.Label.Text = "Atoms"
	p.Y.Min = 0
	p.NominalX(elements...)
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	return p
}

//barPlot builds the plot for R.
func barPlot(R *balance.Result, title string) (*plot.Plot, error) {
	if R == nil || R.System == nil {
		return nil, ErrNoElements
	}
	elements, reactants, products := R.AtomTotals()
	if len(elements) == 0 {
		return nil, ErrNoElements
	}
	if title == "" {
		title = R.Text
	}
	p := basicBarPlot(title, elements)
	w := vg.Points(barWidth)
	for i, series := range []struct {
		name   string
		values []float64
	}{{"Reactants", reactants}, {"Products", products}} {
		bars, err := plotter.NewBarChart(plotter.Values(series.values), w)
		if err != nil {
			return nil, err
		}
		r, g, b := colors(i, 2)
		bars.Color = color.RGBA{R: r, G: g, B: b, A: 255}
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = w * vg.Length(2*i-1) / 2
		p.Add(bars)
		p.Legend.Add(series.name, bars)
	}
	return p, nil
}

//BarChart draws the atom balance of R and saves it to filename. The format is taken
//from the extension of filename (png, svg, pdf, eps, jpg, tif). An empty title
//means the balanced equation.
func BarChart(R *balance.Result, title, filename string) error {
	p, err := barPlot(R, title)
	if err != nil {
		return err
	}
	return p.Save(plotWidth*vg.Inch, plotHeight*vg.Inch, filename)
}

//WriteBarChart is like BarChart, but writes the plot to out in the given format.
func WriteBarChart(out io.Writer, R *balance.Result, title, format string) error {
	p, err := barPlot(R, title)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(plotWidth*vg.Inch, plotHeight*vg.Inch, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(out)
	return err
}

//takes hue (0-360), v and s (0-1), returns r,g,b (0-255)
func hsv2RGB(h, s, v float64) (uint8, uint8, uint8) {
	if s == 0.0 {
		c := uint8(255 * v)
		return c, c, c
	}
	h = h / 60
	i := math.Floor(h)
	f := h - i
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))
	var r, g, b float64
	switch int(i) % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return uint8(255 * r), uint8(255 * g), uint8(255 * b)
}

//colors spreads steps colors over the hue circle, skipping the yellows,
//which are hard to see on white.
func colors(key, steps int) (r, g, b uint8) {
	norm := 260.0 / float64(steps)
	hp := float64(key)*norm + 20.0
	h := hp + 20.0
	if hp < 55 {
		h = hp - 20.0
	}
	return hsv2RGB(h, 0.8, 0.9)
}

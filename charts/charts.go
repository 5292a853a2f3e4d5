// Package charts renders figures from pricing engine output: simulated path
// fans, value-versus-spot curves, terminal-price distributions, lattice
// convergence series and early-exercise boundaries. PNG figures are drawn
// with gonum/plot; interactive HTML reports with go-echarts. The package
// only consumes PricePath sequences and PricingResult values; it holds no
// pricing logic.
package charts

import (
	"errors"
	"image/color"
	"sort"

	"github.com/golang/glog"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	pricing "github.com/Felixtrp/Derivatives-Pricing-Models"
)

var (
	fanPathColor  = color.RGBA{R: 220, G: 60, B: 60, A: 90}
	quantileColor = color.RGBA{A: 255}
	theoryColor   = color.RGBA{A: 255}
)

// fanQuantiles are the probability levels overlaid on a path fan: outer
// deciles, quartiles and the median.
var fanQuantiles = []float64{0.1, 0.25, 0.5, 0.75, 0.9}

// PathFan draws a bundle of simulated price paths against time with
// per-step quantile curves layered on top. At most maxDrawn individual
// paths are drawn; the quantiles always use every path.
func PathFan(paths [][]float64, expiry float64, maxDrawn int) (*plot.Plot, error) {
	if len(paths) == 0 {
		return nil, errors.New("path fan needs at least one path")
	}
	p := plot.New()
	p.Title.Text = "Stock Price Simulation - Geometric Brownian Motion"
	p.X.Label.Text = "Time"
	p.Y.Label.Text = "Stock Price"

	steps := len(paths[0]) - 1
	dt := expiry / float64(steps)

	drawn := len(paths)
	if maxDrawn > 0 && drawn > maxDrawn {
		drawn = maxDrawn
	}
	for _, path := range paths[:drawn] {
		line, err := plotter.NewLine(pathXYs(path, dt))
		if err != nil {
			return nil, err
		}
		line.Color = fanPathColor
		line.Width = vg.Points(0.3)
		p.Add(line)
	}

	// Quantiles of the path distribution at each time step.
	sorted := make([]float64, len(paths))
	for _, q := range fanQuantiles {
		xys := make(plotter.XYs, steps+1)
		for step := 0; step <= steps; step++ {
			for i, path := range paths {
				sorted[i] = path[step]
			}
			sort.Float64s(sorted)
			xys[step].X = dt * float64(step)
			xys[step].Y = stat.Quantile(q, stat.Empirical, sorted, nil)
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		line.Color = quantileColor
		line.Width = vg.Points(1.5)
		if q == 0.5 {
			line.Width = vg.Points(2.5)
		}
		p.Add(line)
	}
	return p, nil
}

// ValueSeries is one labeled value-versus-spot curve, e.g. the output of a
// single pricer swept over starting prices.
type ValueSeries struct {
	Name   string
	Values []float64
}

// ValueCurves plots option value against spot price for several series on
// shared axes, the shape used to compare the three pricing methods.
func ValueCurves(title string, spots []float64, series []ValueSeries) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Stock Price"
	p.Y.Label.Text = "Option Price"

	palette := []color.RGBA{
		{B: 255, A: 255},
		{R: 255, A: 255},
		{G: 180, A: 255},
		{A: 255},
	}
	for i, s := range series {
		xys := make(plotter.XYs, len(spots))
		for j := range spots {
			xys[j].X = spots[j]
			xys[j].Y = s.Values[j]
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		line.Color = palette[i%len(palette)]
		p.Add(line)
		p.Legend.Add(s.Name, line)
	}
	p.Legend.Top = true
	return p, nil
}

// TerminalHistogram draws the distribution of simulated terminal prices as
// a normalized histogram with the exact lognormal density drawn over it.
func TerminalHistogram(
	params pricing.MarketParameters,
	terminals []float64,
	bins int) (*plot.Plot, error) {

	if len(terminals) == 0 {
		return nil, errors.New("histogram needs at least one terminal price")
	}
	p := plot.New()
	p.Title.Text = "Probability Density of Future Stock Prices"
	p.X.Label.Text = "Stock Price"
	p.Y.Label.Text = "Density"

	hist, err := plotter.NewHist(plotter.Values(terminals), bins)
	if err != nil {
		return nil, err
	}
	hist.Normalize(1)
	p.Add(hist)

	low, high := terminals[0], terminals[0]
	for _, s := range terminals {
		if s < low {
			low = s
		}
		if s > high {
			high = s
		}
	}
	const samples = 400
	xys := make(plotter.XYs, samples)
	for i := 0; i < samples; i++ {
		s := low + (high-low)*float64(i)/float64(samples-1)
		xys[i].X = s
		xys[i].Y = pricing.LogNormalDensity(s, params, params.Expiry)
	}
	theory, err := plotter.NewLine(xys)
	if err != nil {
		return nil, err
	}
	theory.Color = theoryColor
	theory.Width = vg.Points(2)
	p.Add(theory)
	p.Legend.Add("theoretical density", theory)
	return p, nil
}

// Save writes a figure to a PNG file at a standard size.
func Save(p *plot.Plot, filename string) error {
	if err := p.Save(8*vg.Inch, 5*vg.Inch, filename); err != nil {
		glog.Error("Failed to save figure ", filename, ": ", err)
		return err
	}
	glog.Info("Saved figure ", filename)
	return nil
}

func pathXYs(path []float64, dt float64) plotter.XYs {
	xys := make(plotter.XYs, len(path))
	for i, price := range path {
		xys[i].X = dt * float64(i)
		xys[i].Y = price
	}
	return xys
}

package charts

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	pricing "github.com/Felixtrp/Derivatives-Pricing-Models"
)

// RenderConvergence writes an HTML line chart of lattice values against
// step count, with the closed-form reference drawn as a flat line.
func RenderConvergence(
	w io.Writer,
	stepCounts []int,
	values []float64,
	reference float64) error {

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Lattice Convergence",
			Subtitle: "binomial value vs. step count against the closed form",
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Option Value", Scale: true}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Steps"}),
	)

	labels := make([]string, len(stepCounts))
	latticeData := make([]opts.LineData, len(stepCounts))
	referenceData := make([]opts.LineData, len(stepCounts))
	for i, steps := range stepCounts {
		labels[i] = fmt.Sprintf("%d", steps)
		latticeData[i] = opts.LineData{Value: values[i]}
		referenceData[i] = opts.LineData{Value: reference}
	}

	line.SetXAxis(labels).
		AddSeries("lattice", latticeData).
		AddSeries("analytic", referenceData)
	return line.Render(w)
}

// RenderBoundary writes an HTML line chart of an American option's
// early-exercise boundary: optimal exercise price against time.
func RenderBoundary(w io.Writer, boundary []pricing.BoundaryPoint) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Early-Exercise Boundary",
			Subtitle: "price at which immediate exercise becomes optimal",
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Stock Price", Scale: true}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time (years)"}),
	)

	labels := make([]string, len(boundary))
	data := make([]opts.LineData, len(boundary))
	for i, point := range boundary {
		labels[i] = fmt.Sprintf("%.3f", point.Time)
		data[i] = opts.LineData{Value: point.Price}
	}

	line.SetXAxis(labels).AddSeries("boundary", data)
	return line.Render(w)
}

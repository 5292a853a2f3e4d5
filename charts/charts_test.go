package charts

import (
	"bytes"
	"strings"
	"testing"

	pricing "github.com/Felixtrp/Derivatives-Pricing-Models"
)

func testSimulator(t *testing.T) (pricing.MarketParameters, *pricing.PathSimulator) {
	t.Helper()
	params, err := pricing.NewMarketParameters(100, 0.2, 0.05, 0, 1)
	if err != nil {
		t.Fatalf("NewMarketParameters: %v", err)
	}
	sim, err := pricing.NewPathSimulator(params, pricing.SimConfig{
		Steps: 20,
		Paths: 50,
		Seed:  1,
	})
	if err != nil {
		t.Fatalf("NewPathSimulator: %v", err)
	}
	return params, sim
}

func TestPathFan(t *testing.T) {
	params, sim := testSimulator(t)
	p, err := PathFan(sim.Paths(), params.Expiry, 20)
	if err != nil {
		t.Fatalf("PathFan: %v", err)
	}
	if p == nil {
		t.Fatal("expected a plot")
	}
}

func TestPathFanRejectsEmptyInput(t *testing.T) {
	if _, err := PathFan(nil, 1, 20); err == nil {
		t.Fatal("expected an error for an empty path bundle")
	}
}

func TestValueCurves(t *testing.T) {
	spots := []float64{80, 90, 100, 110, 120}
	series := []ValueSeries{
		{Name: "analytic", Values: []float64{1, 3, 7, 13, 21}},
		{Name: "lattice", Values: []float64{1.1, 3.1, 7.1, 13.1, 21.1}},
	}
	p, err := ValueCurves("European Call", spots, series)
	if err != nil {
		t.Fatalf("ValueCurves: %v", err)
	}
	if p == nil {
		t.Fatal("expected a plot")
	}
}

func TestTerminalHistogram(t *testing.T) {
	params, sim := testSimulator(t)
	terminals := make([]float64, sim.NumPaths())
	for i := range terminals {
		path := sim.Path(i, nil)
		terminals[i] = path[len(path)-1]
	}
	p, err := TerminalHistogram(params, terminals, 16)
	if err != nil {
		t.Fatalf("TerminalHistogram: %v", err)
	}
	if p == nil {
		t.Fatal("expected a plot")
	}
}

func TestTerminalHistogramRejectsEmptyInput(t *testing.T) {
	params, _ := testSimulator(t)
	if _, err := TerminalHistogram(params, nil, 16); err == nil {
		t.Fatal("expected an error for an empty terminal sample")
	}
}

func TestRenderConvergence(t *testing.T) {
	var buf bytes.Buffer
	err := RenderConvergence(&buf,
		[]int{10, 50, 200},
		[]float64{10.1, 10.42, 10.449},
		10.4506)
	if err != nil {
		t.Fatalf("RenderConvergence: %v", err)
	}
	if !strings.Contains(buf.String(), "Lattice Convergence") {
		t.Error("rendered HTML is missing the chart title")
	}
}

func TestRenderBoundary(t *testing.T) {
	var buf bytes.Buffer
	boundary := []pricing.BoundaryPoint{
		{Time: 0.1, Price: 41.2},
		{Time: 0.2, Price: 42.8},
		{Time: 0.3, Price: 44.9},
	}
	if err := RenderBoundary(&buf, boundary); err != nil {
		t.Fatalf("RenderBoundary: %v", err)
	}
	if !strings.Contains(buf.String(), "Early-Exercise Boundary") {
		t.Error("rendered HTML is missing the chart title")
	}
}

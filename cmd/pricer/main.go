package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/golang/glog"

	pricing "github.com/Felixtrp/Derivatives-Pricing-Models"
	"github.com/Felixtrp/Derivatives-Pricing-Models/charts"
)

var scenarioFile = flag.String("scenario", "",
	"YAML scenario file; the built-in at-the-money call is used when empty")

type methodRow struct {
	Method   string
	Result   pricing.PricingResult
	Err      error
	HasError bool
}

func main() {
	flag.Set("alsologtostderr", "true")
	flag.Parse()

	scenario := DefaultScenario()
	if *scenarioFile != "" {
		loaded, err := LoadScenario(*scenarioFile)
		if err != nil {
			glog.Error("Failed to load scenario. ", err)
			os.Exit(1)
		}
		scenario = loaded
	}

	params, err := scenario.BuildMarket()
	if err != nil {
		glog.Error("Invalid market parameters. ", err)
		os.Exit(1)
	}
	spec, err := scenario.BuildSpec()
	if err != nil {
		glog.Error("Invalid option spec. ", err)
		os.Exit(1)
	}

	glog.Info("Pricing ", spec.Payoff.Kind(), " (", spec.Style, ") at spot ",
		params.Spot)

	rows := []methodRow{
		runAnalytic(params, spec, scenario),
		runLattice(params, spec, scenario),
		runMonteCarlo(params, spec, scenario),
	}
	printTable(spec, rows)

	if err := writeFigures(params, spec, scenario, rows); err != nil {
		glog.Error("Failed to write figures. ", err)
		os.Exit(1)
	}
}

func runAnalytic(
	params pricing.MarketParameters,
	spec pricing.OptionSpec,
	scenario *Scenario) methodRow {

	pricer := pricing.NewAnalyticPricer(params)
	row := methodRow{Method: "analytic/PDE"}
	if spec.Payoff.PathDependent() || spec.Style != pricing.European {
		row.Result, row.Err = pricer.Price(spec)
	} else {
		switch spec.Payoff.(type) {
		case pricing.VanillaCallPayoff, pricing.VanillaPutPayoff:
			row.Result, row.Err = pricer.Price(spec)
		default:
			row.Result, row.Err = pricer.PricePde(spec, scenario.PdeConfig())
		}
	}
	row.HasError = row.Err != nil
	return row
}

func runLattice(
	params pricing.MarketParameters,
	spec pricing.OptionSpec,
	scenario *Scenario) methodRow {

	row := methodRow{Method: "lattice"}
	pricer, err := pricing.NewLatticePricer(params, pricing.LatticeConfig{
		Steps: scenario.Methods.LatticeSteps,
	})
	if err != nil {
		row.Err, row.HasError = err, true
		return row
	}
	row.Result, row.Err = pricer.Price(spec)
	row.HasError = row.Err != nil
	return row
}

func runMonteCarlo(
	params pricing.MarketParameters,
	spec pricing.OptionSpec,
	scenario *Scenario) methodRow {

	row := methodRow{Method: "monte carlo"}
	pricer, err := pricing.NewMonteCarloPricer(params, scenario.McConfig())
	if err != nil {
		row.Err, row.HasError = err, true
		return row
	}
	row.Result, row.Err = pricer.Price(spec)
	row.HasError = row.Err != nil
	return row
}

func printTable(spec pricing.OptionSpec, rows []methodRow) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Printf("%-14s %-14s %-14s %s\n",
		"Method", "Value", "StdError", "Notes")
	for _, row := range rows {
		if row.HasError {
			note := row.Err.Error()
			if errors.Is(row.Err, pricing.ErrInvalidParameter) {
				note = "not applicable: " + note
			}
			fmt.Printf("%-14s %-14s %-14s %s\n", row.Method, "-", "-", red(note))
			continue
		}

		stderr := "-"
		if row.Result.StdError > 0 {
			stderr = fmt.Sprintf("%.6f", row.Result.StdError)
		}
		note := ""
		if row.Result.HasReference {
			note = fmt.Sprintf("%+.2f standard errors from analytic",
				row.Result.RefDeviation)
		}
		if row.Result.Warning != nil {
			note = yellow(row.Result.Warning.Error())
		}
		fmt.Printf("%-14s %-14s %-14s %s\n",
			row.Method, green(fmt.Sprintf("%.6f", row.Result.Value)), stderr, note)
	}
	fmt.Println()
	fmt.Println("Option:", spec.Payoff.Kind(), "/", spec.Style)
}

func writeFigures(
	params pricing.MarketParameters,
	spec pricing.OptionSpec,
	scenario *Scenario,
	rows []methodRow) error {

	out := scenario.Output

	if out.PathFan != "" || out.Histogram != "" {
		sim, err := pricing.NewPathSimulator(params, pricing.SimConfig{
			Steps: scenario.Methods.McSteps,
			Paths: scenario.Methods.McPaths,
			Seed:  scenario.Methods.McSeed,
		})
		if err != nil {
			return err
		}
		paths := sim.Paths()

		if out.PathFan != "" {
			figure, err := charts.PathFan(paths, params.Expiry, 300)
			if err != nil {
				return err
			}
			if err := charts.Save(figure, out.PathFan); err != nil {
				return err
			}
		}
		if out.Histogram != "" {
			terminals := make([]float64, len(paths))
			for i, path := range paths {
				terminals[i] = path[len(path)-1]
			}
			figure, err := charts.TerminalHistogram(params, terminals, 100)
			if err != nil {
				return err
			}
			if err := charts.Save(figure, out.Histogram); err != nil {
				return err
			}
		}
	}

	if out.Convergence != "" {
		if err := writeConvergence(params, spec, out.Convergence); err != nil {
			return err
		}
	}

	if out.ValueCurves != "" {
		spots, series, err := sweepValueCurves(scenario)
		if err != nil {
			return err
		}
		if len(series) == 0 {
			glog.Info("No applicable pricer for a value curve, skipping ",
				out.ValueCurves)
		} else {
			title := fmt.Sprintf("%v (%v) value vs. spot",
				spec.Payoff.Kind(), spec.Style)
			figure, err := charts.ValueCurves(title, spots, series)
			if err != nil {
				return err
			}
			if err := charts.Save(figure, out.ValueCurves); err != nil {
				return err
			}
		}
	}

	if out.Boundary != "" {
		for _, row := range rows {
			if row.Method != "lattice" || len(row.Result.Boundary) == 0 {
				continue
			}
			file, err := os.Create(out.Boundary)
			if err != nil {
				return err
			}
			err = charts.RenderBoundary(file, row.Result.Boundary)
			if closeErr := file.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return err
			}
			glog.Info("Saved boundary chart ", out.Boundary)
		}
	}
	return nil
}

func writeConvergence(
	params pricing.MarketParameters,
	spec pricing.OptionSpec,
	filename string) error {

	analytic := pricing.NewAnalyticPricer(params)
	reference, err := analytic.Price(spec)
	if err != nil {
		glog.Info("No analytic reference for convergence chart: ", err)
		return nil
	}

	stepCounts := []int{10, 25, 50, 100, 200, 500, 1000, 2000}
	values := make([]float64, len(stepCounts))
	for i, steps := range stepCounts {
		lattice, err := pricing.NewLatticePricer(params, pricing.LatticeConfig{Steps: steps})
		if err != nil {
			return err
		}
		result, err := lattice.Price(spec)
		if err != nil {
			return err
		}
		values[i] = result.Value
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	err = charts.RenderConvergence(file, stepCounts, values, reference.Value)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	glog.Info("Saved convergence chart ", filename)
	return nil
}

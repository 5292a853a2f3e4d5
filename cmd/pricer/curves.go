package main

import (
	pricing "github.com/Felixtrp/Derivatives-Pricing-Models"
	"github.com/Felixtrp/Derivatives-Pricing-Models/charts"
)

// sweepSpots spans the spot axis for a value curve: spotPoints prices
// evenly spaced from half to one-and-a-half times the scenario spot.
const spotPoints = 21

func sweepSpots(spot float64) []float64 {
	spots := make([]float64, spotPoints)
	low := 0.5 * spot
	step := spot / float64(spotPoints-1)
	for i := range spots {
		spots[i] = low + step*float64(i)
	}
	return spots
}

// sweepValueCurves revalues the option at each spot level with every
// applicable pricer, rebuilding the market parameters per point. Methods
// the option does not admit (a lattice on a path-dependent payoff, the
// analytic pricer on an American style) contribute no series rather than
// failing the sweep.
func sweepValueCurves(scenario *Scenario) ([]float64, []charts.ValueSeries, error) {
	spec, err := scenario.BuildSpec()
	if err != nil {
		return nil, nil, err
	}
	spots := sweepSpots(scenario.Market.Spot)

	marketAt := func(spot float64) (pricing.MarketParameters, error) {
		m := scenario.Market
		return pricing.NewMarketParameters(spot, m.Volatility, m.Rate, m.Yield, m.Expiry)
	}

	methods := []struct {
		name  string
		value func(params pricing.MarketParameters) (float64, error)
	}{
		{"analytic", func(params pricing.MarketParameters) (float64, error) {
			row := runAnalytic(params, spec, scenario)
			return row.Result.Value, row.Err
		}},
		{"lattice", func(params pricing.MarketParameters) (float64, error) {
			row := runLattice(params, spec, scenario)
			return row.Result.Value, row.Err
		}},
		{"monte carlo", func(params pricing.MarketParameters) (float64, error) {
			row := runMonteCarlo(params, spec, scenario)
			return row.Result.Value, row.Err
		}},
	}

	var series []charts.ValueSeries
	for _, method := range methods {
		values := make([]float64, len(spots))
		applicable := true
		for i, spot := range spots {
			params, err := marketAt(spot)
			if err != nil {
				return nil, nil, err
			}
			value, err := method.value(params)
			if err != nil {
				applicable = false
				break
			}
			values[i] = value
		}
		if applicable {
			series = append(series, charts.ValueSeries{
				Name:   method.name,
				Values: values,
			})
		}
	}
	return spots, series, nil
}

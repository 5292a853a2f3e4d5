package pricing

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/stat/distuv"
)

func TestPdeImplicitMatchesClosedForm(t *testing.T) {
	params := testMarket(t)
	pricer := NewAnalyticPricer(params)

	tests := []struct {
		name   string
		payoff Payoff
		want   float64
	}{
		{"vanilla call", VanillaCallPayoff{Strike: 100}, pricer.Call(100)},
		{"vanilla put", VanillaPutPayoff{Strike: 100}, pricer.Put(100)},
		{"out of the money call", VanillaCallPayoff{Strike: 120}, pricer.Call(120)},
	}

	cfg := PdeConfig{GridSize: 800, TimeSteps: 800, SmaxScale: 4, Scheme: ImplicitScheme}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := pricer.PricePde(OptionSpec{Style: European, Payoff: tc.payoff}, cfg)
			if err != nil {
				t.Fatalf("PricePde: %v", err)
			}
			if math.Abs(result.Value-tc.want) > 5e-2 {
				t.Errorf("PDE value %v, closed form %v", result.Value, tc.want)
			}
			if result.Grid == nil {
				t.Fatal("expected diagnostic grid")
			}
			if len(result.Grid.Prices) != len(result.Grid.Values) {
				t.Errorf("grid lengths differ: %d prices, %d values",
					len(result.Grid.Prices), len(result.Grid.Values))
			}
		})
	}
}

// The window payout has a closed form too: a difference of two discounted
// in-the-money probabilities. The PDE solver never sees it, so it makes an
// independent check.
func TestPdeCashOrNothingMatchesDigitalFormula(t *testing.T) {
	params, err := NewMarketParameters(100, 0.1, 0.05, 0, 1)
	if err != nil {
		t.Fatalf("NewMarketParameters: %v", err)
	}
	payoff := CashOrNothingPayoff{Low: 110, High: 120, Amount: 10}

	d2 := func(strike float64) float64 {
		return (math.Log(params.Spot/strike) +
			(params.Rate-0.5*params.Volatility*params.Volatility)*params.Expiry) /
			(params.Volatility * math.Sqrt(params.Expiry))
	}
	discount := math.Exp(-params.Rate * params.Expiry)
	want := payoff.Amount * discount *
		(distuv.UnitNormal.CDF(d2(payoff.Low)) - distuv.UnitNormal.CDF(d2(payoff.High)))

	pricer := NewAnalyticPricer(params)
	cfg := PdeConfig{GridSize: 1600, TimeSteps: 800, SmaxScale: 4, Scheme: ImplicitScheme}
	result, err := pricer.PricePde(OptionSpec{Style: European, Payoff: payoff}, cfg)
	if err != nil {
		t.Fatalf("PricePde: %v", err)
	}
	if math.Abs(result.Value-want) > 0.1 {
		t.Errorf("PDE value %v, digital formula %v", result.Value, want)
	}
}

func TestPdeExplicitStabilityCheck(t *testing.T) {
	params := testMarket(t)
	pricer := NewAnalyticPricer(params)
	spec := OptionSpec{Style: European, Payoff: VanillaCallPayoff{Strike: 100}}

	// Far too few time steps for this grid: the ratio check must reject it
	// before any stepping happens.
	unstable := PdeConfig{GridSize: 400, TimeSteps: 10, SmaxScale: 4, Scheme: ExplicitScheme}
	_, err := pricer.PricePde(spec, unstable)
	var instability *NumericalInstabilityError
	if !errors.As(err, &instability) {
		t.Fatalf("got %v, want NumericalInstabilityError", err)
	}
	if instability.Ratio <= 1 {
		t.Errorf("reported ratio %v, want > 1", instability.Ratio)
	}

	// A coarse grid with enough time steps satisfies the ratio and should
	// land near the closed form.
	stable := PdeConfig{GridSize: 50, TimeSteps: 400, SmaxScale: 4, Scheme: ExplicitScheme}
	result, err := pricer.PricePde(spec, stable)
	if err != nil {
		t.Fatalf("PricePde(stable explicit): %v", err)
	}
	if math.Abs(result.Value-pricer.Call(100)) > 0.5 {
		t.Errorf("explicit value %v, closed form %v", result.Value, pricer.Call(100))
	}
}

func TestPdeConfigValidation(t *testing.T) {
	params := testMarket(t)
	pricer := NewAnalyticPricer(params)
	spec := OptionSpec{Style: European, Payoff: VanillaCallPayoff{Strike: 100}}

	tests := []struct {
		name string
		cfg  PdeConfig
	}{
		{"tiny grid", PdeConfig{GridSize: 2, TimeSteps: 10, SmaxScale: 4}},
		{"no time steps", PdeConfig{GridSize: 100, TimeSteps: 0, SmaxScale: 4}},
		{"smax at spot", PdeConfig{GridSize: 100, TimeSteps: 10, SmaxScale: 1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := pricer.PricePde(spec, tc.cfg); !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("got %v, want ErrInvalidParameter", err)
			}
		})
	}

	_, err := pricer.PricePde(OptionSpec{
		Style:  European,
		Payoff: AsianCallPayoff{Strike: 100},
	}, DefaultPdeConfig())
	if !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("path-dependent payoff: got %v, want ErrInvalidParameter", err)
	}
}

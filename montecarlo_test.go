package pricing

import (
	"errors"
	"math"
	"testing"
)

func TestMonteCarloMatchesAnalytic(t *testing.T) {
	params := testMarket(t)
	spec := OptionSpec{Style: European, Payoff: VanillaCallPayoff{Strike: 100}}

	// A terminal-only payoff needs a single exact lognormal step, so a
	// hundred independent runs stay cheap. Each estimate should land within
	// three standard errors of the closed form roughly 99.7% of the time;
	// requiring 97 of 100 leaves room for the binomial tail, where demanding
	// 99 exactly would fail a few percent of healthy test runs.
	const runs = 100
	within := 0
	for seed := uint64(0); seed < runs; seed++ {
		pricer, err := NewMonteCarloPricer(params, McConfig{
			Steps: 1,
			Paths: 100000,
			Seed:  1000 + seed,
		})
		if err != nil {
			t.Fatalf("NewMonteCarloPricer: %v", err)
		}
		result, err := pricer.Price(spec)
		if err != nil {
			t.Fatalf("Price: %v", err)
		}
		if !result.HasReference {
			t.Fatal("expected an analytic reference for a vanilla call")
		}
		if math.Abs(result.RefDeviation) <= 3 {
			within++
		}
	}
	if within < 97 {
		t.Errorf("only %d/%d runs within 3 standard errors of the "+
			"analytic value", within, runs)
	}
}

func TestMonteCarloReproducible(t *testing.T) {
	params := testMarket(t)
	spec := OptionSpec{Style: European, Payoff: AsianCallPayoff{Strike: 100}}
	cfg := McConfig{Steps: 50, Paths: 5000, Seed: 42, Workers: 4}

	price := func(cfg McConfig) PricingResult {
		pricer, err := NewMonteCarloPricer(params, cfg)
		if err != nil {
			t.Fatalf("NewMonteCarloPricer: %v", err)
		}
		result, err := pricer.Price(spec)
		if err != nil {
			t.Fatalf("Price: %v", err)
		}
		return result
	}

	first := price(cfg)
	second := price(cfg)
	if first.Value != second.Value || first.StdError != second.StdError {
		t.Errorf("same config gave %v+-%v then %v+-%v",
			first.Value, first.StdError, second.Value, second.StdError)
	}

	// Worker count must not change the estimate beyond summation order.
	for _, workers := range []int{1, 3, 8} {
		other := cfg
		other.Workers = workers
		got := price(other)
		if math.Abs(got.Value-first.Value) > 1e-9 {
			t.Errorf("workers=%d: value %v differs from %v",
				workers, got.Value, first.Value)
		}
	}
}

func TestMonteCarloConvergenceWarning(t *testing.T) {
	params := testMarket(t)
	spec := OptionSpec{Style: European, Payoff: VanillaCallPayoff{Strike: 100}}

	pricer, err := NewMonteCarloPricer(params, McConfig{
		Steps:     1,
		Paths:     500,
		Seed:      7,
		Tolerance: 1e-6,
	})
	if err != nil {
		t.Fatalf("NewMonteCarloPricer: %v", err)
	}
	result, err := pricer.Price(spec)
	if err != nil {
		t.Fatalf("Price must not fail on a convergence warning: %v", err)
	}

	var warning *ConvergenceWarning
	if !errors.As(result.Warning, &warning) {
		t.Fatalf("got warning %v, want ConvergenceWarning", result.Warning)
	}
	if warning.StdError <= warning.Tolerance {
		t.Errorf("warning std error %v should exceed tolerance %v",
			warning.StdError, warning.Tolerance)
	}
	if result.Value <= 0 {
		t.Errorf("estimate %v should still be usable", result.Value)
	}
}

func TestMonteCarloAntitheticReducesError(t *testing.T) {
	params := testMarket(t)
	spec := OptionSpec{Style: European, Payoff: VanillaCallPayoff{Strike: 100}}

	base := McConfig{Steps: 1, Paths: 20000, Seed: 5}
	plain, err := NewMonteCarloPricer(params, base)
	if err != nil {
		t.Fatalf("NewMonteCarloPricer: %v", err)
	}
	plainResult, err := plain.Price(spec)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}

	paired := base
	paired.Antithetic = true
	antithetic, err := NewMonteCarloPricer(params, paired)
	if err != nil {
		t.Fatalf("NewMonteCarloPricer: %v", err)
	}
	antitheticResult, err := antithetic.Price(spec)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}

	// A monotone payoff correlates negatively with its mirror, so the pair
	// average has lower variance per sample.
	if antitheticResult.StdError >= plainResult.StdError {
		t.Errorf("antithetic std error %v should be below plain %v",
			antitheticResult.StdError, plainResult.StdError)
	}
}

func TestLookbackDiscretizationBias(t *testing.T) {
	params := testMarket(t)
	spec := OptionSpec{Style: European, Payoff: LookbackCallPayoff{Strike: 100}}

	// Finer paths sample the running maximum more densely, so the estimate
	// climbs toward the continuous-time value and never past it. The gaps
	// between these step counts dwarf the sampling error at this path
	// count.
	stepCounts := []int{10, 50, 200, 1000}
	values := make([]float64, len(stepCounts))
	for i, steps := range stepCounts {
		pricer, err := NewMonteCarloPricer(params, McConfig{
			Steps: steps,
			Paths: 50000,
			Seed:  9,
		})
		if err != nil {
			t.Fatalf("NewMonteCarloPricer(steps=%d): %v", steps, err)
		}
		result, err := pricer.Price(spec)
		if err != nil {
			t.Fatalf("Price(steps=%d): %v", steps, err)
		}
		values[i] = result.Value
	}

	for i := 1; i < len(values); i++ {
		if values[i] < values[i-1] {
			t.Errorf("estimate fell from %v (steps=%d) to %v (steps=%d)",
				values[i-1], stepCounts[i-1], values[i], stepCounts[i])
		}
	}
}

func TestMonteCarloRejectsAmerican(t *testing.T) {
	params := testMarket(t)
	pricer, err := NewMonteCarloPricer(params, McConfig{Steps: 10, Paths: 100})
	if err != nil {
		t.Fatalf("NewMonteCarloPricer: %v", err)
	}
	_, err = pricer.Price(OptionSpec{Style: American, Payoff: VanillaPutPayoff{Strike: 100}})
	if !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("got %v, want ErrInvalidParameter", err)
	}

	if _, err := NewMonteCarloPricer(params, McConfig{Steps: 0, Paths: 100}); err == nil {
		t.Error("expected error for zero steps")
	}
	if _, err := NewMonteCarloPricer(params, McConfig{Steps: 10, Paths: 0}); err == nil {
		t.Error("expected error for zero paths")
	}
}

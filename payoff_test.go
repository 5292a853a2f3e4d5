package pricing

import (
	"math"
	"testing"
)

func TestPayoffEvaluate(t *testing.T) {
	path := []float64{100, 95, 120, 110}

	tests := []struct {
		name   string
		payoff Payoff
		want   float64
	}{
		{"call in the money", VanillaCallPayoff{Strike: 105}, 5},
		{"call out of the money", VanillaCallPayoff{Strike: 115}, 0},
		{"put in the money", VanillaPutPayoff{Strike: 115}, 5},
		{"put out of the money", VanillaPutPayoff{Strike: 105}, 0},
		{"cash-or-nothing inside window", CashOrNothingPayoff{Low: 105, High: 115, Amount: 10}, 10},
		{"cash-or-nothing above window", CashOrNothingPayoff{Low: 90, High: 105, Amount: 10}, 0},
		{"cash-or-nothing lower edge excluded", CashOrNothingPayoff{Low: 110, High: 120, Amount: 10}, 0},
		{"cash-or-nothing upper edge included", CashOrNothingPayoff{Low: 100, High: 110, Amount: 10}, 10},
		{"asian call on average", AsianCallPayoff{Strike: 100}, 6.25},
		{"asian call below strike", AsianCallPayoff{Strike: 120}, 0},
		{"lookback call on maximum", LookbackCallPayoff{Strike: 110}, 10},
		{"lookback call below strike", LookbackCallPayoff{Strike: 130}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.payoff.Evaluate(path)
			if math.Abs(got-tc.want) > 1e-12 {
				t.Errorf("Evaluate(%v) = %v, want %v", path, got, tc.want)
			}
			if got < 0 {
				t.Errorf("payoff must be non-negative, got %v", got)
			}
		})
	}
}

func TestPayoffPathDependence(t *testing.T) {
	terminalOnly := []Payoff{
		VanillaCallPayoff{Strike: 100},
		VanillaPutPayoff{Strike: 100},
		CashOrNothingPayoff{Low: 90, High: 110, Amount: 5},
	}
	for _, payoff := range terminalOnly {
		if payoff.PathDependent() {
			t.Errorf("%v should not be path dependent", payoff.Kind())
		}
		// Terminal-only payoffs must agree with their path evaluation.
		path := []float64{80, 130, 104}
		if payoff.Evaluate(path) != payoff.Terminal(104) {
			t.Errorf("%v: Evaluate disagrees with Terminal", payoff.Kind())
		}
	}

	pathDependent := []Payoff{
		AsianCallPayoff{Strike: 100},
		LookbackCallPayoff{Strike: 100},
	}
	for _, payoff := range pathDependent {
		if !payoff.PathDependent() {
			t.Errorf("%v should be path dependent", payoff.Kind())
		}
	}
}

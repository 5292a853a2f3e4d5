package pricing

import (
	"errors"
	"fmt"
)

// ExerciseStyle selects when the option holder may exercise.
type ExerciseStyle int

const (
	European ExerciseStyle = iota
	American
)

func (style ExerciseStyle) String() string {
	switch style {
	case European:
		return "European"
	case American:
		return "American"
	}
	return fmt.Sprintf("ExerciseStyle(%d)", int(style))
}

// MarketParameters describes the risk-neutral world an option is priced in:
// the current spot price of the underlying, its volatility, the risk-free
// interest rate, a continuous dividend/carry yield, and the time to expiry
// in years. Values are fixed at construction; all pricers treat them as
// read-only.
type MarketParameters struct {
	Spot       float64
	Volatility float64
	Rate       float64
	Yield      float64
	Expiry     float64
}

// NewMarketParameters validates and constructs the market inputs shared by
// every pricer. Spot, volatility and expiry must be strictly positive; the
// rate and yield may take any sign.
func NewMarketParameters(
	spot float64,
	volatility float64,
	rate float64,
	yield float64,
	expiry float64) (MarketParameters, error) {

	if spot <= 0 {
		return MarketParameters{}, invalidParameterf(
			"spot price must be positive, got %v", spot)
	}
	if volatility <= 0 {
		return MarketParameters{}, invalidParameterf(
			"volatility must be positive, got %v", volatility)
	}
	if expiry <= 0 {
		return MarketParameters{}, invalidParameterf(
			"time to expiry must be positive, got %v", expiry)
	}
	return MarketParameters{
		Spot:       spot,
		Volatility: volatility,
		Rate:       rate,
		Yield:      yield,
		Expiry:     expiry,
	}, nil
}

// OptionSpec ties an exercise style to a payoff. The payoff carries the
// strike and any payoff-specific parameters (barrier window, fixed amount).
type OptionSpec struct {
	Style  ExerciseStyle
	Payoff Payoff
}

// BoundaryPoint is one sample of the early-exercise boundary: at time Time
// (in years from now) exercising at price Price is optimal.
type BoundaryPoint struct {
	Time  float64
	Price float64
}

// PdeGrid is the diagnostic output of the finite-difference solver: the
// price levels of the spatial grid and the option values on the final
// (present-time) slice.
type PdeGrid struct {
	Prices []float64
	Values []float64
}

// PricingResult is what every pricer returns. Value is always set. StdError
// and RefDeviation are populated by the Monte Carlo pricer only, Boundary by
// the American lattice only, Grid by the PDE solver only. Warning carries a
// non-fatal ConvergenceWarning when the caller asked for a tolerance the
// estimate did not reach.
type PricingResult struct {
	Value        float64
	StdError     float64
	RefDeviation float64
	HasReference bool
	Boundary     []BoundaryPoint
	Grid         *PdeGrid
	Warning      error
}

// ErrInvalidParameter marks rejected inputs: non-positive volatility or
// expiry, step or path counts below one, or a payoff kind a pricer cannot
// evaluate. Detected before any computation starts.
var ErrInvalidParameter = errors.New("invalid parameter")

func invalidParameterf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}

// ArbitrageViolationError reports a lattice risk-neutral probability outside
// (0,1): the time step is too coarse for the given volatility and rates.
type ArbitrageViolationError struct {
	Probability float64
	Up          float64
	Down        float64
	TimeStep    float64
}

func (self *ArbitrageViolationError) Error() string {
	return fmt.Sprintf(
		"arbitrage violation: risk-neutral probability %v outside (0,1) "+
			"(u=%v d=%v dt=%v)",
		self.Probability, self.Up, self.Down, self.TimeStep)
}

// NumericalInstabilityError reports a diverging finite-difference solve:
// either the explicit scheme's stability ratio was exceeded, or NaN/Inf
// values appeared on the grid during time stepping.
type NumericalInstabilityError struct {
	Reason    string
	GridSize  int
	TimeSteps int
	Ratio     float64
}

func (self *NumericalInstabilityError) Error() string {
	return fmt.Sprintf(
		"numerical instability: %s (grid=%d steps=%d ratio=%v)",
		self.Reason, self.GridSize, self.TimeSteps, self.Ratio)
}

// ConvergenceWarning is attached (never returned as the error) when the
// Monte Carlo standard error exceeds the requested tolerance. The estimate
// it accompanies is still valid, just less certain than asked for.
type ConvergenceWarning struct {
	StdError  float64
	Tolerance float64
}

func (self *ConvergenceWarning) Error() string {
	return fmt.Sprintf(
		"convergence warning: standard error %v exceeds tolerance %v",
		self.StdError, self.Tolerance)
}

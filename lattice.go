package pricing

import "math"

// LatticeConfig configures the binomial tree: the number of time steps
// between now and expiry.
type LatticeConfig struct {
	Steps int
}

// LatticePricer values options on a recombining Cox-Ross-Rubinstein tree:
// up factor u = e^{sigma*sqrt(dt)}, down factor d = 1/u, risk-neutral up
// probability p = (e^{(r-q)dt} - d)/(u - d). It supports both exercise
// styles; for American options it also reports the early-exercise boundary.
// Backward induction keeps only the two layers being combined, never the
// whole tree.
type LatticePricer struct {
	params MarketParameters
	cfg    LatticeConfig
}

func NewLatticePricer(
	params MarketParameters,
	cfg LatticeConfig) (*LatticePricer, error) {

	if cfg.Steps < 1 {
		return nil, invalidParameterf("step count must be >= 1, got %d", cfg.Steps)
	}
	return &LatticePricer{params: params, cfg: cfg}, nil
}

// Price runs the backward induction and returns the root value. American
// results carry the exercise boundary in expiry order. Path-dependent
// payoffs cannot be valued on a recombining tree and are rejected.
func (self *LatticePricer) Price(spec OptionSpec) (PricingResult, error) {
	if spec.Payoff.PathDependent() {
		return PricingResult{}, invalidParameterf(
			"lattice pricer cannot value path-dependent payoff %v",
			spec.Payoff.Kind())
	}

	params := self.params
	steps := self.cfg.Steps
	dt := params.Expiry / float64(steps)

	logUp := params.Volatility * math.Sqrt(dt)
	up := math.Exp(logUp)
	down := 1 / up
	growth := math.Exp((params.Rate - params.Yield) * dt)
	probability := (growth - down) / (up - down)
	if probability <= 0 || probability >= 1 {
		return PricingResult{}, &ArbitrageViolationError{
			Probability: probability,
			Up:          up,
			Down:        down,
			TimeStep:    dt,
		}
	}
	discount := math.Exp(-params.Rate * dt)

	// Node j at layer m sits at S0 * u^j * d^(m-j) = S0 * e^{(2j-m)*logUp}.
	nodePrice := func(layer, j int) float64 {
		return params.Spot * math.Exp(float64(2*j-layer)*logUp)
	}

	values := make([]float64, steps+1)
	next := make([]float64, steps+1)
	for j := 0; j <= steps; j++ {
		values[j] = spec.Payoff.Terminal(nodePrice(steps, j))
	}

	var boundary []BoundaryPoint
	var exercised []bool
	if spec.Style == American {
		exercised = make([]bool, steps+1)
	}

	for layer := steps - 1; layer >= 0; layer-- {
		for j := 0; j <= layer; j++ {
			continuation := discount *
				(probability*values[j+1] + (1-probability)*values[j])
			if spec.Style == American {
				intrinsic := spec.Payoff.Terminal(nodePrice(layer, j))
				exercised[j] = intrinsic > continuation
				if exercised[j] {
					next[j] = intrinsic
				} else {
					next[j] = continuation
				}
			} else {
				next[j] = continuation
			}
		}
		values, next = next, values

		if spec.Style == American {
			if price, ok := boundaryPrice(exercised[:layer+1], func(j int) float64 {
				return nodePrice(layer, j)
			}); ok {
				boundary = append(boundary, BoundaryPoint{
					Time:  float64(layer) * dt,
					Price: price,
				})
			}
		}
	}

	// The boundary was collected walking backward in time.
	for i, j := 0, len(boundary)-1; i < j; i, j = i+1, j-1 {
		boundary[i], boundary[j] = boundary[j], boundary[i]
	}

	return PricingResult{Value: values[0], Boundary: boundary}, nil
}

// boundaryPrice locates the flag transition in one layer. A monotone payoff
// makes the exercised region contiguous from one edge of the layer: from
// the bottom for puts (report the highest exercised price), from the top
// for calls (report the lowest). Layers with no exercised node contribute
// no boundary point.
func boundaryPrice(exercised []bool, price func(j int) float64) (float64, bool) {
	n := len(exercised)
	switch {
	case exercised[0]:
		j := 0
		for j+1 < n && exercised[j+1] {
			j++
		}
		return price(j), true
	case exercised[n-1]:
		j := n - 1
		for j-1 >= 0 && exercised[j-1] {
			j--
		}
		return price(j), true
	}
	for j := 0; j < n; j++ {
		if exercised[j] {
			return price(j), true
		}
	}
	return 0, false
}

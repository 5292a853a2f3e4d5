package pricing

import (
	"math"
	"runtime"
	"sync"
)

// McConfig configures a Monte Carlo run. Workers defaults to GOMAXPROCS
// when zero; the estimate is identical for any worker count because every
// path index owns its own random stream. Tolerance, when positive, is the
// largest acceptable standard error; exceeding it attaches a
// ConvergenceWarning to the result instead of failing. Antithetic turns
// each path into an antithetic pair whose payoffs are averaged into one
// sample.
type McConfig struct {
	Steps      int
	Paths      int
	Seed       uint64
	Workers    int
	Tolerance  float64
	Antithetic bool
}

// MonteCarloPricer estimates option values by simulating price paths,
// evaluating the payoff on each, and discounting the sample mean. The
// standard error of the mean is always reported alongside the estimate;
// for vanilla European payoffs the result also carries the deviation from
// the closed-form value in standard-error units.
type MonteCarloPricer struct {
	params MarketParameters
	cfg    McConfig
	sim    *PathSimulator
}

func NewMonteCarloPricer(
	params MarketParameters,
	cfg McConfig) (*MonteCarloPricer, error) {

	sim, err := NewPathSimulator(params, SimConfig{
		Steps: cfg.Steps,
		Paths: cfg.Paths,
		Seed:  cfg.Seed,
	})
	if err != nil {
		return nil, err
	}
	return &MonteCarloPricer{params: params, cfg: cfg, sim: sim}, nil
}

// Simulator exposes the underlying path source, e.g. for plotting the
// simulated paths a price estimate came from.
func (self *MonteCarloPricer) Simulator() *PathSimulator {
	return self.sim
}

// Price estimates the discounted expected payoff. The reduction across
// workers is a plain sum of payoffs and squared payoffs, so partial results
// combine in any order to the same mean and standard error.
func (self *MonteCarloPricer) Price(spec OptionSpec) (PricingResult, error) {
	if spec.Style != European {
		return PricingResult{}, invalidParameterf(
			"monte carlo pricer handles European exercise only, got %v",
			spec.Style)
	}

	discount := math.Exp(-self.params.Rate * self.params.Expiry)
	workers := self.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > self.cfg.Paths {
		workers = self.cfg.Paths
	}

	// Partial sums are kept per worker and combined in worker order after
	// the wait, so a fixed seed and worker count reproduce the result
	// bit for bit.
	type partial struct {
		sum     float64
		squares float64
	}
	partials := make([]partial, workers)

	var wg sync.WaitGroup
	chunk := (self.cfg.Paths + workers - 1) / workers
	for w := 0; w < workers; w++ {
		begin := w * chunk
		end := begin + chunk
		if end > self.cfg.Paths {
			end = self.cfg.Paths
		}
		if begin >= end {
			break
		}

		wg.Add(1)
		go func(w, begin, end int) {
			defer wg.Done()
			local := partial{}
			var buf []float64
			for i := begin; i < end; i++ {
				buf = self.sim.Path(i, buf)
				sample := discount * spec.Payoff.Evaluate(buf)
				if self.cfg.Antithetic {
					buf = self.sim.AntitheticPath(i, buf)
					mirror := discount * spec.Payoff.Evaluate(buf)
					sample = 0.5 * (sample + mirror)
				}
				local.sum += sample
				local.squares += sample * sample
			}
			partials[w] = local
		}(w, begin, end)
	}
	wg.Wait()

	sum := 0.0
	sumSquares := 0.0
	for _, p := range partials {
		sum += p.sum
		sumSquares += p.squares
	}

	n := float64(self.cfg.Paths)
	mean := sum / n
	result := PricingResult{Value: mean}
	if self.cfg.Paths > 1 {
		variance := (sumSquares - n*mean*mean) / (n - 1)
		if variance < 0 {
			variance = 0
		}
		result.StdError = math.Sqrt(variance / n)
	}

	if self.cfg.Tolerance > 0 && result.StdError > self.cfg.Tolerance {
		result.Warning = &ConvergenceWarning{
			StdError:  result.StdError,
			Tolerance: self.cfg.Tolerance,
		}
	}

	if reference, ok := self.analyticReference(spec); ok && result.StdError > 0 {
		result.HasReference = true
		result.RefDeviation = (result.Value - reference) / result.StdError
	}
	return result, nil
}

// analyticReference returns the closed-form value when one exists for the
// option, so callers can judge the estimate against ground truth.
func (self *MonteCarloPricer) analyticReference(spec OptionSpec) (float64, bool) {
	analytic := NewAnalyticPricer(self.params)
	switch payoff := spec.Payoff.(type) {
	case VanillaCallPayoff:
		return analytic.Call(payoff.Strike), true
	case VanillaPutPayoff:
		return analytic.Put(payoff.Strike), true
	}
	return 0, false
}

package pricing

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// SimConfig configures a path simulation run: the number of time steps per
// path, the number of paths, and the seed the whole run is derived from.
// The same config always reproduces the same paths.
type SimConfig struct {
	Steps int
	Paths int
	Seed  uint64
}

// PathSimulator generates risk-neutral geometric Brownian motion price
// paths. Each path evolves by the exact lognormal step
//
//	S_{t+dt} = S_t * exp((r - q - sigma^2/2)*dt + sigma*sqrt(dt)*Z)
//
// with Z standard normal, so the terminal distribution is exact for any
// step count. Every path index owns an independent random stream derived
// from the seed, which makes the sequence restartable and lets callers
// partition path indices across workers in any way without changing the
// output.
type PathSimulator struct {
	params MarketParameters
	cfg    SimConfig

	drift float64
	vol   float64
	dt    float64
}

// NewPathSimulator validates the configuration and prepares the per-step
// drift and diffusion coefficients.
func NewPathSimulator(
	params MarketParameters,
	cfg SimConfig) (*PathSimulator, error) {

	if cfg.Steps < 1 {
		return nil, invalidParameterf("step count must be >= 1, got %d", cfg.Steps)
	}
	if cfg.Paths < 1 {
		return nil, invalidParameterf("path count must be >= 1, got %d", cfg.Paths)
	}

	dt := params.Expiry / float64(cfg.Steps)
	sigma := params.Volatility
	return &PathSimulator{
		params: params,
		cfg:    cfg,
		drift:  (params.Rate - params.Yield - 0.5*sigma*sigma) * dt,
		vol:    sigma * math.Sqrt(dt),
		dt:     dt,
	}, nil
}

// TimeStep returns the step length dt = T/steps in years.
func (self *PathSimulator) TimeStep() float64 { return self.dt }

// Steps returns the number of steps per path.
func (self *PathSimulator) Steps() int { return self.cfg.Steps }

// NumPaths returns the number of paths in the configured sequence.
func (self *PathSimulator) NumPaths() int { return self.cfg.Paths }

// mix64 is the splitmix64 finalizer. It spreads consecutive path indices
// into well-separated stream seeds.
func mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// stream builds the independent random stream for one path index.
func (self *PathSimulator) stream(index int) *rand.Rand {
	seed := mix64(self.cfg.Seed + 0x9e3779b97f4a7c15*uint64(index+1))
	return rand.New(rand.NewSource(seed))
}

// Path writes path number index into buf and returns it. buf is grown when
// shorter than steps+1 elements; index 0 holds the spot price. Calling Path
// twice with the same index yields identical prices.
func (self *PathSimulator) Path(index int, buf []float64) []float64 {
	return self.path(index, buf, 1)
}

// AntitheticPath is Path with every normal draw negated. Together with the
// plain path of the same index it forms an antithetic pair.
func (self *PathSimulator) AntitheticPath(index int, buf []float64) []float64 {
	return self.path(index, buf, -1)
}

func (self *PathSimulator) path(index int, buf []float64, sign float64) []float64 {
	if cap(buf) < self.cfg.Steps+1 {
		buf = make([]float64, self.cfg.Steps+1)
	}
	buf = buf[:self.cfg.Steps+1]

	rng := self.stream(index)
	price := self.params.Spot
	buf[0] = price
	for i := 1; i <= self.cfg.Steps; i++ {
		price *= math.Exp(self.drift + self.vol*sign*rng.NormFloat64())
		buf[i] = price
	}
	return buf
}

// Paths materializes the full configured sequence of paths. The result is
// freshly allocated and identical on every call with the same simulator.
func (self *PathSimulator) Paths() [][]float64 {
	paths := make([][]float64, self.cfg.Paths)
	for i := range paths {
		paths[i] = self.Path(i, nil)
	}
	return paths
}

// LogNormalDensity is the exact transition density of geometric Brownian
// motion: the probability density of the price being s at time t, having
// started at spot. Used to check simulated distributions against theory.
func LogNormalDensity(
	s float64,
	params MarketParameters,
	t float64) float64 {

	if s <= 0 || t <= 0 {
		return 0
	}
	sigma := params.Volatility
	mean := math.Log(params.Spot) +
		(params.Rate-params.Yield-0.5*sigma*sigma)*t
	dist := distuv.LogNormal{Mu: mean, Sigma: sigma * math.Sqrt(t)}
	return dist.Prob(s)
}

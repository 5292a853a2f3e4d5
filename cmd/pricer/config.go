package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	pricing "github.com/Felixtrp/Derivatives-Pricing-Models"
)

// MarketConfig is the market block of a scenario file.
type MarketConfig struct {
	Spot       float64 `yaml:"spot"`
	Volatility float64 `yaml:"volatility"`
	Rate       float64 `yaml:"rate"`
	Yield      float64 `yaml:"yield"`
	Expiry     float64 `yaml:"expiry"`
}

// OptionConfig selects the option being priced.
type OptionConfig struct {
	Style  string  `yaml:"style"`
	Payoff string  `yaml:"payoff"`
	Strike float64 `yaml:"strike"`
	Low    float64 `yaml:"low"`
	High   float64 `yaml:"high"`
	Amount float64 `yaml:"amount"`
}

// MethodConfig carries the per-method numerical settings.
type MethodConfig struct {
	LatticeSteps   int     `yaml:"lattice_steps"`
	McSteps        int     `yaml:"mc_steps"`
	McPaths        int     `yaml:"mc_paths"`
	McSeed         uint64  `yaml:"mc_seed"`
	McWorkers      int     `yaml:"mc_workers"`
	McTolerance    float64 `yaml:"mc_tolerance"`
	McAntithetic   bool    `yaml:"mc_antithetic"`
	PdeGridSize    int     `yaml:"pde_grid_size"`
	PdeTimeSteps   int     `yaml:"pde_time_steps"`
	PdeSmaxScale   float64 `yaml:"pde_smax_scale"`
	PdeUseExplicit bool    `yaml:"pde_use_explicit"`
}

// OutputConfig names the optional figure files. Empty entries are skipped.
type OutputConfig struct {
	PathFan     string `yaml:"path_fan"`
	Histogram   string `yaml:"histogram"`
	Convergence string `yaml:"convergence"`
	Boundary    string `yaml:"boundary"`
	ValueCurves string `yaml:"value_curves"`
}

// Scenario is one complete pricing run loaded from YAML.
type Scenario struct {
	Market  MarketConfig `yaml:"market"`
	Option  OptionConfig `yaml:"option"`
	Methods MethodConfig `yaml:"methods"`
	Output  OutputConfig `yaml:"output"`
}

// DefaultScenario is used when no scenario file is given: the at-the-money
// European call every method can price, with validation-friendly settings.
func DefaultScenario() *Scenario {
	return &Scenario{
		Market: MarketConfig{Spot: 100, Volatility: 0.2, Rate: 0.05, Expiry: 1},
		Option: OptionConfig{Style: "european", Payoff: "vanilla_call", Strike: 100},
		Methods: MethodConfig{
			LatticeSteps: 500,
			McSteps:      50,
			McPaths:      100000,
			McSeed:       1,
		},
	}
}

// LoadScenario reads and parses a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	scenario := DefaultScenario()
	if err := yaml.Unmarshal(data, scenario); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	return scenario, nil
}

// BuildMarket validates the market block into engine parameters.
func (self *Scenario) BuildMarket() (pricing.MarketParameters, error) {
	m := self.Market
	return pricing.NewMarketParameters(m.Spot, m.Volatility, m.Rate, m.Yield, m.Expiry)
}

// BuildSpec maps the option block onto an engine OptionSpec.
func (self *Scenario) BuildSpec() (pricing.OptionSpec, error) {
	var style pricing.ExerciseStyle
	switch strings.ToLower(self.Option.Style) {
	case "", "european":
		style = pricing.European
	case "american":
		style = pricing.American
	default:
		return pricing.OptionSpec{}, fmt.Errorf(
			"unknown exercise style %q", self.Option.Style)
	}

	var payoff pricing.Payoff
	switch strings.ToLower(self.Option.Payoff) {
	case "vanilla_call":
		payoff = pricing.VanillaCallPayoff{Strike: self.Option.Strike}
	case "vanilla_put":
		payoff = pricing.VanillaPutPayoff{Strike: self.Option.Strike}
	case "cash_or_nothing":
		payoff = pricing.CashOrNothingPayoff{
			Low:    self.Option.Low,
			High:   self.Option.High,
			Amount: self.Option.Amount,
		}
	case "asian_call":
		payoff = pricing.AsianCallPayoff{Strike: self.Option.Strike}
	case "lookback_call":
		payoff = pricing.LookbackCallPayoff{Strike: self.Option.Strike}
	default:
		return pricing.OptionSpec{}, fmt.Errorf(
			"unknown payoff kind %q", self.Option.Payoff)
	}
	return pricing.OptionSpec{Style: style, Payoff: payoff}, nil
}

// PdeConfig assembles the solver settings, falling back to engine defaults
// for unset fields.
func (self *Scenario) PdeConfig() pricing.PdeConfig {
	cfg := pricing.DefaultPdeConfig()
	if self.Methods.PdeGridSize > 0 {
		cfg.GridSize = self.Methods.PdeGridSize
	}
	if self.Methods.PdeTimeSteps > 0 {
		cfg.TimeSteps = self.Methods.PdeTimeSteps
	}
	if self.Methods.PdeSmaxScale > 0 {
		cfg.SmaxScale = self.Methods.PdeSmaxScale
	}
	if self.Methods.PdeUseExplicit {
		cfg.Scheme = pricing.ExplicitScheme
	}
	return cfg
}

// McConfig assembles the Monte Carlo settings.
func (self *Scenario) McConfig() pricing.McConfig {
	return pricing.McConfig{
		Steps:      self.Methods.McSteps,
		Paths:      self.Methods.McPaths,
		Seed:       self.Methods.McSeed,
		Workers:    self.Methods.McWorkers,
		Tolerance:  self.Methods.McTolerance,
		Antithetic: self.Methods.McAntithetic,
	}
}

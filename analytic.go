package pricing

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// OptionGreeks holds the sensitivities of a vanilla option price to the
// market inputs. Vega and Rho are scaled per 1% move in volatility and
// rate; Theta is per calendar day.
type OptionGreeks struct {
	Delta float64
	Gamma float64
	Vega  float64
	Theta float64
	Rho   float64
}

// AnalyticPricer values vanilla European calls and puts in closed form with
// the Black-Scholes formula, and everything else terminal-valued through
// the finite-difference solver in pde.go. It is the reference the lattice
// and Monte Carlo pricers are validated against.
type AnalyticPricer struct {
	params MarketParameters
}

func NewAnalyticPricer(params MarketParameters) *AnalyticPricer {
	return &AnalyticPricer{params: params}
}

// CalculateAValue is the total volatility over the remaining life of the
// option: sigma multiplied by the square root of the time to expiry. It is
// the denominator of d1 and the gap between d1 and d2.
func (self *AnalyticPricer) CalculateAValue(volatility float64) float64 {
	return volatility * math.Sqrt(self.params.Expiry)
}

// CalculateD1Value calculates the value of 'd1' in the Black-Scholes
// formula: the log-moneyness of the option plus the risk-neutral drift
// accumulated to expiry, normalized by the total volatility. The carry
// yield enters the drift with a negative sign.
func (self *AnalyticPricer) CalculateD1Value(strike, volatility float64) float64 {
	p := self.params
	return (math.Log(p.Spot/strike) +
		(p.Rate-p.Yield+0.5*volatility*volatility)*p.Expiry) /
		self.CalculateAValue(volatility)
}

// CalculateD2Value calculates the value of 'd2' in the Black-Scholes
// formula: d1 shifted down by the total volatility. N(d2) is the
// risk-neutral probability that the option finishes in the money.
func (self *AnalyticPricer) CalculateD2Value(strike, volatility float64) float64 {
	return self.CalculateD1Value(strike, volatility) -
		self.CalculateAValue(volatility)
}

// NormCdf is the cumulative distribution function of the standard normal
// distribution.
func (self *AnalyticPricer) NormCdf(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// NormPdf is the probability density function of the standard normal
// distribution.
func (self *AnalyticPricer) NormPdf(x float64) float64 {
	return distuv.UnitNormal.Prob(x)
}

// rateDiscount is the present-value factor e^{-rT} for a cash flow at
// expiry.
func (self *AnalyticPricer) rateDiscount() float64 {
	return math.Exp(-self.params.Rate * self.params.Expiry)
}

// yieldDiscount is the carry adjustment e^{-qT} applied to the spot leg.
func (self *AnalyticPricer) yieldDiscount() float64 {
	return math.Exp(-self.params.Yield * self.params.Expiry)
}

func (self *AnalyticPricer) callValue(strike, volatility float64) float64 {
	d1 := self.CalculateD1Value(strike, volatility)
	d2 := self.CalculateD2Value(strike, volatility)
	return self.params.Spot*self.yieldDiscount()*self.NormCdf(d1) -
		strike*self.rateDiscount()*self.NormCdf(d2)
}

func (self *AnalyticPricer) putValue(strike, volatility float64) float64 {
	d1 := self.CalculateD1Value(strike, volatility)
	d2 := self.CalculateD2Value(strike, volatility)
	return strike*self.rateDiscount()*self.NormCdf(-d2) -
		self.params.Spot*self.yieldDiscount()*self.NormCdf(-d1)
}

// Call returns the Black-Scholes value of a European call at the given
// strike.
func (self *AnalyticPricer) Call(strike float64) float64 {
	return self.callValue(strike, self.params.Volatility)
}

// Put returns the Black-Scholes value of a European put at the given
// strike.
func (self *AnalyticPricer) Put(strike float64) float64 {
	return self.putValue(strike, self.params.Volatility)
}

// ParityValue is the model-free right-hand side of put-call parity,
// S0*e^{-qT} - K*e^{-rT}. For any strike, Call(K) - Put(K) equals this
// value; a violation would be an arbitrage.
func (self *AnalyticPricer) ParityValue(strike float64) float64 {
	return self.params.Spot*self.yieldDiscount() -
		strike*self.rateDiscount()
}

// Greeks computes the call and put sensitivities at the given strike.
func (self *AnalyticPricer) Greeks(strike float64) (call, put OptionGreeks) {
	p := self.params
	vol := p.Volatility
	d1 := self.CalculateD1Value(strike, vol)
	d2 := self.CalculateD2Value(strike, vol)
	yd := self.yieldDiscount()
	rd := self.rateDiscount()
	sqrtT := math.Sqrt(p.Expiry)

	call.Delta = yd * self.NormCdf(d1)
	put.Delta = -yd * self.NormCdf(-d1)

	// Gamma and vega are the same for calls and puts at a common strike.
	gamma := yd * self.NormPdf(d1) / (p.Spot * vol * sqrtT)
	call.Gamma = gamma
	put.Gamma = gamma

	vega := p.Spot * yd * self.NormPdf(d1) * sqrtT / 100
	call.Vega = vega
	put.Vega = vega

	decay := -p.Spot * yd * self.NormPdf(d1) * vol / (2 * sqrtT)
	call.Theta = (decay - p.Rate*strike*rd*self.NormCdf(d2) +
		p.Yield*p.Spot*yd*self.NormCdf(d1)) / 365
	put.Theta = (decay + p.Rate*strike*rd*self.NormCdf(-d2) -
		p.Yield*p.Spot*yd*self.NormCdf(-d1)) / 365

	call.Rho = strike * p.Expiry * rd * self.NormCdf(d2) / 100
	put.Rho = -strike * p.Expiry * rd * self.NormCdf(-d2) / 100
	return call, put
}

// ImpliedVolatility inverts the Black-Scholes formula for a vanilla option:
// it finds the volatility at which the model value matches the observed
// price, by bisection on the volatility. The search covers (0, 4]; prices
// outside the attainable range fail to converge and return an error.
func (self *AnalyticPricer) ImpliedVolatility(
	kind PayoffKind,
	strike float64,
	observedPrice float64) (float64, error) {

	if kind != VanillaCall && kind != VanillaPut {
		return 0, invalidParameterf(
			"implied volatility supports vanilla options only, got %v", kind)
	}
	if observedPrice <= 0 {
		return 0, invalidParameterf(
			"observed price must be positive, got %v", observedPrice)
	}

	const maxIterations = 200
	const tolerance = 1e-7

	value := func(vol float64) float64 {
		if kind == VanillaCall {
			return self.callValue(strike, vol)
		}
		return self.putValue(strike, vol)
	}

	lowerBound := 1e-9
	upperBound := 4.0
	for i := 0; i < maxIterations; i++ {
		vol := 0.5 * (lowerBound + upperBound)
		diff := value(vol) - observedPrice
		if math.Abs(diff) < tolerance {
			return vol, nil
		}
		// Vanilla prices are increasing in volatility, so bisection brackets
		// the root as long as the price is attainable.
		if diff < 0 {
			lowerBound = vol
		} else {
			upperBound = vol
		}
	}
	return 0, invalidParameterf(
		"implied volatility did not converge for price %v", observedPrice)
}

// Price values the option analytically. Vanilla European payoffs use the
// closed form; other terminal-valued European payoffs fall back to the
// finite-difference PDE solver with its default configuration. American
// styles and path-dependent payoffs have no analytic or PDE treatment here
// and are rejected.
func (self *AnalyticPricer) Price(spec OptionSpec) (PricingResult, error) {
	if spec.Style != European {
		return PricingResult{}, invalidParameterf(
			"analytic pricer handles European exercise only, got %v", spec.Style)
	}
	switch payoff := spec.Payoff.(type) {
	case VanillaCallPayoff:
		return PricingResult{Value: self.Call(payoff.Strike)}, nil
	case VanillaPutPayoff:
		return PricingResult{Value: self.Put(payoff.Strike)}, nil
	}
	if spec.Payoff.PathDependent() {
		return PricingResult{}, invalidParameterf(
			"analytic pricer cannot value path-dependent payoff %v",
			spec.Payoff.Kind())
	}
	return self.PricePde(spec, DefaultPdeConfig())
}

package pricing

import "fmt"

// PayoffKind enumerates the supported payoff families. The set is closed:
// pricers dispatch through the Payoff interface and never inspect the kind,
// so adding a family means adding a type here and nothing elsewhere.
type PayoffKind int

const (
	VanillaCall PayoffKind = iota
	VanillaPut
	CashOrNothing
	AsianCall
	LookbackCall
)

func (kind PayoffKind) String() string {
	switch kind {
	case VanillaCall:
		return "vanilla call"
	case VanillaPut:
		return "vanilla put"
	case CashOrNothing:
		return "cash-or-nothing"
	case AsianCall:
		return "asian call"
	case LookbackCall:
		return "lookback call"
	}
	return fmt.Sprintf("PayoffKind(%d)", int(kind))
}

// Payoff maps a terminal price, or a full simulated path, to a non-negative
// payout. Implementations are pure and deterministic. Terminal is only
// meaningful when PathDependent reports false; Evaluate accepts a full path
// for every kind and reduces it as the payoff requires.
type Payoff interface {
	Kind() PayoffKind
	Terminal(price float64) float64
	Evaluate(path []float64) float64
	PathDependent() bool
}

// VanillaCallPayoff pays max(S_T - K, 0).
type VanillaCallPayoff struct {
	Strike float64
}

func (self VanillaCallPayoff) Kind() PayoffKind    { return VanillaCall }
func (self VanillaCallPayoff) PathDependent() bool { return false }

func (self VanillaCallPayoff) Terminal(price float64) float64 {
	if price > self.Strike {
		return price - self.Strike
	}
	return 0
}

func (self VanillaCallPayoff) Evaluate(path []float64) float64 {
	return self.Terminal(path[len(path)-1])
}

// VanillaPutPayoff pays max(K - S_T, 0).
type VanillaPutPayoff struct {
	Strike float64
}

func (self VanillaPutPayoff) Kind() PayoffKind    { return VanillaPut }
func (self VanillaPutPayoff) PathDependent() bool { return false }

func (self VanillaPutPayoff) Terminal(price float64) float64 {
	if price < self.Strike {
		return self.Strike - price
	}
	return 0
}

func (self VanillaPutPayoff) Evaluate(path []float64) float64 {
	return self.Terminal(path[len(path)-1])
}

// CashOrNothingPayoff pays the fixed Amount when the terminal price lands in
// the half-open window (Low, High], else nothing.
type CashOrNothingPayoff struct {
	Low    float64
	High   float64
	Amount float64
}

func (self CashOrNothingPayoff) Kind() PayoffKind    { return CashOrNothing }
func (self CashOrNothingPayoff) PathDependent() bool { return false }

func (self CashOrNothingPayoff) Terminal(price float64) float64 {
	if price > self.Low && price <= self.High {
		return self.Amount
	}
	return 0
}

func (self CashOrNothingPayoff) Evaluate(path []float64) float64 {
	return self.Terminal(path[len(path)-1])
}

// AsianCallPayoff pays the arithmetic average of the path over the strike,
// floored at zero. The average includes the starting price.
type AsianCallPayoff struct {
	Strike float64
}

func (self AsianCallPayoff) Kind() PayoffKind    { return AsianCall }
func (self AsianCallPayoff) PathDependent() bool { return true }

// Terminal is undefined for a path-dependent payoff; treating the terminal
// price as a one-point average keeps the interface total.
func (self AsianCallPayoff) Terminal(price float64) float64 {
	if price > self.Strike {
		return price - self.Strike
	}
	return 0
}

func (self AsianCallPayoff) Evaluate(path []float64) float64 {
	sum := 0.0
	for _, price := range path {
		sum += price
	}
	average := sum / float64(len(path))
	if average > self.Strike {
		return average - self.Strike
	}
	return 0
}

// LookbackCallPayoff pays the running maximum of the path over the strike,
// floored at zero.
type LookbackCallPayoff struct {
	Strike float64
}

func (self LookbackCallPayoff) Kind() PayoffKind    { return LookbackCall }
func (self LookbackCallPayoff) PathDependent() bool { return true }

func (self LookbackCallPayoff) Terminal(price float64) float64 {
	if price > self.Strike {
		return price - self.Strike
	}
	return 0
}

func (self LookbackCallPayoff) Evaluate(path []float64) float64 {
	max := path[0]
	for _, price := range path[1:] {
		if price > max {
			max = price
		}
	}
	if max > self.Strike {
		return max - self.Strike
	}
	return 0
}

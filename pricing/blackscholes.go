package pricing

import (
	"fmt"
	"math"
	"time"

	"github.com/chobie/go-gaussian"

	"options-maker-go/market"
)

// UnknownKindError is returned when an option kind is neither "call" nor
// "put". Callers can skip the offending instrument instead of aborting the
// whole cycle.
type UnknownKindError struct {
	Kind market.OptionKind
}

func (e UnknownKindError) Error() string {
	return fmt.Sprintf("pricing: unknown option kind %q, want %q or %q", e.Kind, market.KindCall, market.KindPut)
}

// ExpiredError is returned when an option is priced at or past its expiry.
// The model needs strictly positive time to expiry; sqrt of a negative
// TimeToExpiry would otherwise poison the result with NaN.
type ExpiredError struct {
	ID     string
	Expiry time.Time
}

func (e ExpiredError) Error() string {
	return fmt.Sprintf("pricing: option %s expired at %s", e.ID, e.Expiry.Format(time.RFC3339))
}

const hoursPerYear = 24 * 365

// TimeToExpiry returns the signed distance from now to expiry in fractional
// years. Negative for expired options.
func TimeToExpiry(expiry, now time.Time) float64 {
	return expiry.Sub(now).Hours() / hoursPerYear
}

// Params are the Black-Scholes model inputs shared by value and delta.
type Params struct {
	Spot         float64 // assumed underlying value
	Strike       float64
	TimeToExpiry float64 // fractional years
	InterestRate float64
	Volatility   float64
}

func (p Params) d1() float64 {
	return (math.Log(p.Spot/p.Strike) + (p.InterestRate+p.Volatility*p.Volatility/2)*p.TimeToExpiry) /
		(p.Volatility * math.Sqrt(p.TimeToExpiry))
}

func (p Params) d2() float64 {
	return p.d1() - p.Volatility*math.Sqrt(p.TimeToExpiry)
}

var stdNormal = gaussian.NewGaussian(0, 1)

// CallValue prices a European call.
func CallValue(p Params) float64 {
	return p.Spot*stdNormal.Cdf(p.d1()) - p.Strike*math.Exp(-p.InterestRate*p.TimeToExpiry)*stdNormal.Cdf(p.d2())
}

// PutValue prices a European put.
func PutValue(p Params) float64 {
	return p.Strike*math.Exp(-p.InterestRate*p.TimeToExpiry)*stdNormal.Cdf(-p.d2()) - p.Spot*stdNormal.Cdf(-p.d1())
}

// CallDelta is the sensitivity of the call value to the spot price.
func CallDelta(p Params) float64 {
	return stdNormal.Cdf(p.d1())
}

// PutDelta is the sensitivity of the put value to the spot price.
func PutDelta(p Params) float64 {
	return stdNormal.Cdf(p.d1()) - 1
}

func modelParams(inst market.Instrument, spot, rate, vol float64, now time.Time) (Params, error) {
	tte := TimeToExpiry(inst.Expiry, now)
	if tte <= 0 {
		return Params{}, ExpiredError{ID: inst.ID, Expiry: inst.Expiry}
	}
	return Params{
		Spot:         spot,
		Strike:       inst.Strike,
		TimeToExpiry: tte,
		InterestRate: rate,
		Volatility:   vol,
	}, nil
}

func checkFinite(instrumentID string, v float64, p Params) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("pricing: non-finite result for %s (spot=%v vol=%v tte=%v)",
			instrumentID, p.Spot, p.Volatility, p.TimeToExpiry)
	}
	return v, nil
}

// OptionValue dispatches on kind and returns the theoretical fair value of
// the option at the given spot, as of now. Expired options and inputs that
// break the model come back as errors, never as NaN.
func OptionValue(inst market.Instrument, spot, rate, vol float64, now time.Time) (float64, error) {
	p, err := modelParams(inst, spot, rate, vol, now)
	if err != nil {
		return 0, err
	}
	switch inst.Kind {
	case market.KindCall:
		return checkFinite(inst.ID, CallValue(p), p)
	case market.KindPut:
		return checkFinite(inst.ID, PutValue(p), p)
	default:
		return 0, UnknownKindError{Kind: inst.Kind}
	}
}

// OptionDelta dispatches on kind and returns the option delta at the given
// spot, as of now.
func OptionDelta(inst market.Instrument, spot, rate, vol float64, now time.Time) (float64, error) {
	p, err := modelParams(inst, spot, rate, vol, now)
	if err != nil {
		return 0, err
	}
	switch inst.Kind {
	case market.KindCall:
		return checkFinite(inst.ID, CallDelta(p), p)
	case market.KindPut:
		return checkFinite(inst.ID, PutDelta(p), p)
	default:
		return 0, UnknownKindError{Kind: inst.Kind}
	}
}

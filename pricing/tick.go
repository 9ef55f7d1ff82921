package pricing

import "math"

// RoundDownToTick returns the largest multiple of tickSize <= price,
// e.g. tick 0.10 rounds 0.97 down to 0.90. Caller guarantees tickSize > 0.
func RoundDownToTick(price, tickSize float64) float64 {
	return math.Floor(price/tickSize) * tickSize
}

// RoundUpToTick returns the smallest multiple of tickSize >= price,
// e.g. tick 0.10 rounds 1.34 up to 1.40. Caller guarantees tickSize > 0.
func RoundUpToTick(price, tickSize float64) float64 {
	return math.Ceil(price/tickSize) * tickSize
}

// RoundToLot rounds a fractional quantity to the nearest whole lot.
func RoundToLot(qty float64, lotSize int) int {
	if lotSize <= 0 {
		lotSize = 1
	}
	return int(math.Round(qty/float64(lotSize))) * lotSize
}

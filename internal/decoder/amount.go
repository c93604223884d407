package decoder

import "github.com/shopspring/decimal"

// ScaleAmount converts a raw unsigned on-chain amount into a fixed-point
// decimal by dividing by 10^decimals, rounded to decimals places.
func ScaleAmount(raw uint64, decimals uint8) decimal.Decimal {
	d := int32(decimals)
	return decimal.NewFromUint64(raw).Shift(-d).Round(d)
}

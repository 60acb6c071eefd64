package aggregate

import (
	"math"
	"math/big"
)

var weiPerEth = new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))

// weiToEth converts an 18-decimal fixed-point value to a decimal amount.
// Precision loss is acceptable at presale magnitudes.
func weiToEth(wei *big.Int) float64 {
	out, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), weiPerEth).Float64()
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

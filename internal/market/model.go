package market

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strings"
)

const (
	MicrosPerNow = int64(1_000_000)

	StarterBalanceMicros = int64(10_000) * MicrosPerNow

	ShareScale = int64(10_000) // 1 share = 10_000 units.

	// MinPriceMicros is the hard price floor: 0.01 now.
	MinPriceMicros = int64(10_000)
)

var (
	ErrInvalidSymbol      = errors.New("symbol must be 2-6 uppercase letters")
	ErrStockNotFound      = errors.New("stock not found")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrInvalidShares      = errors.New("share quantity must be > 0")
	ErrEngineStopped      = errors.New("engine is not running")
)

var symbolRE = regexp.MustCompile(`^[A-Z]{2,6}$`)

func ValidateSymbol(symbol string) error {
	if !symbolRE.MatchString(strings.TrimSpace(symbol)) {
		return ErrInvalidSymbol
	}
	return nil
}

func NowToMicros(v float64) int64 {
	return int64(math.Round(v * float64(MicrosPerNow)))
}

func MicrosToNow(v int64) float64 {
	return float64(v) / float64(MicrosPerNow)
}

func SharesToUnits(v float64) (int64, error) {
	if v <= 0 {
		return 0, ErrInvalidShares
	}
	return int64(math.Round(v * float64(ShareScale))), nil
}

func UnitsToShares(v int64) float64 {
	return float64(v) / float64(ShareScale)
}

// notionalMicros computes price*qty without intermediate overflow.
func notionalMicros(priceMicros, qtyUnits int64) (int64, error) {
	p := big.NewInt(priceMicros)
	q := big.NewInt(qtyUnits)
	v := new(big.Int).Mul(p, q)
	v = v.Div(v, big.NewInt(ShareScale))
	if !v.IsInt64() {
		return 0, fmt.Errorf("notional overflow")
	}
	return v.Int64(), nil
}

func divideMicros(totalMicros, qtyUnits int64) (int64, error) {
	if qtyUnits <= 0 {
		return 0, fmt.Errorf("qty must be > 0")
	}
	v := new(big.Int).Mul(big.NewInt(totalMicros), big.NewInt(ShareScale))
	v = v.Div(v, big.NewInt(qtyUnits))
	if !v.IsInt64() {
		return 0, fmt.Errorf("avg overflow")
	}
	return v.Int64(), nil
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

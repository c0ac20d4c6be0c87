package backfill

import (
	"context"
	"hash/fnv"
	"math"
	mathrand "math/rand"

	"nowmarket/internal/market"
)

// Synthetic generates plausible close series when no quote service is
// available. The same symbol always yields the same series so restarts do not
// redraw charts.
type Synthetic struct {
	// AnchorMicros is the level the series ends near; zero means 100.00.
	AnchorMicros int64
}

// Closes produces days closes, oldest first, as a seeded drift walk with a
// mild weekly cycle layered on top.
func (s *Synthetic) Closes(_ context.Context, symbol string, days int) ([]int64, error) {
	if days <= 0 {
		days = 30
	}
	anchor := s.AnchorMicros
	if anchor <= 0 {
		anchor = 100 * market.MicrosPerNow
	}

	h := fnv.New64a()
	h.Write([]byte(symbol))
	rng := mathrand.New(mathrand.NewSource(int64(h.Sum64())))

	// Walk backwards from the anchor so the newest close lands near the
	// live price, then reverse into chronological order.
	out := make([]int64, days)
	price := float64(anchor)
	for i := days - 1; i >= 0; i-- {
		wave := 0.006 * math.Sin(float64(i)*2*math.Pi/7)
		step := (rng.Float64()*2 - 1) * 0.02
		out[i] = clampMicros(int64(price * (1 + wave)))
		price /= 1 + step
		if price < float64(market.MinPriceMicros) {
			price = float64(market.MinPriceMicros)
		}
	}
	return out, nil
}

func clampMicros(v int64) int64 {
	if v < market.MinPriceMicros {
		return market.MinPriceMicros
	}
	return v
}

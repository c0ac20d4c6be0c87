package market

import (
	"fmt"
	"time"
)

const priceHistoryCap = 60

// Trend classifies the direction of the latest move.
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// Instrument is one tradable company and its full simulation state.
// All mutation happens inside the engine loop.
type Instrument struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Sector      Sector `json:"sector"`

	PriceMicros     int64   `json:"price_micros"`
	PrevPriceMicros int64   `json:"prev_price_micros"`
	PriceHistory    []int64 `json:"price_history"` // oldest first, capped
	PercentChange   float64 `json:"percent_change"`
	Trending        Trend   `json:"trending"`

	Volatility float64 `json:"volatility"`
	Beta       float64 `json:"beta"`
	TotalUnits int64   `json:"total_units"`
	CapMicros  int64   `json:"cap_micros"`

	BuyPressure  float64 `json:"buy_pressure"`
	SellPressure float64 `json:"sell_pressure"`
	PriceTrend   float64 `json:"price_trend"`

	LastRecordedMicros int64     `json:"last_recorded_micros"`
	PriceChangeAt      time.Time `json:"price_change_at"`
	SampleTrend        Trend     `json:"sample_trend"`

	OwnedUnits   int64 `json:"owned_units"`
	CompanyOwned bool  `json:"company_owned"`

	Earnings *EarningsEntry `json:"earnings,omitempty"`
	Dividend *DividendEntry `json:"dividend,omitempty"`

	// Calendar latches: the clock day each event last fired. The clock moves
	// one minute per tick, so a matching day spans a whole session; these keep
	// the event to one firing per day.
	LastEarningsDay int `json:"last_earnings_day,omitempty"`
	LastDividendDay int `json:"last_dividend_day,omitempty"`
}

// NewInstrument validates a spec and builds the initial state.
func NewInstrument(spec CompanySpec) (*Instrument, error) {
	if err := ValidateSymbol(spec.Symbol); err != nil {
		return nil, fmt.Errorf("%s: %w", spec.Symbol, err)
	}
	if spec.Volatility <= 0 {
		return nil, fmt.Errorf("%s: volatility must be > 0", spec.Symbol)
	}
	if spec.Beta <= 0 {
		return nil, fmt.Errorf("%s: beta must be > 0", spec.Symbol)
	}
	if spec.TotalUnits <= 0 {
		return nil, fmt.Errorf("%s: total shares must be > 0", spec.Symbol)
	}
	if spec.PriceMicros < MinPriceMicros {
		return nil, fmt.Errorf("%s: price must be >= 0.01", spec.Symbol)
	}
	if spec.CapMicros <= 0 {
		return nil, fmt.Errorf("%s: market cap must be > 0", spec.Symbol)
	}
	return &Instrument{
		Symbol:             spec.Symbol,
		Name:               spec.Name,
		Description:        spec.Description,
		Sector:             spec.Sector,
		PriceMicros:        spec.PriceMicros,
		PrevPriceMicros:    spec.PriceMicros,
		PriceHistory:       []int64{spec.PriceMicros},
		Trending:           TrendNeutral,
		SampleTrend:        TrendNeutral,
		Volatility:         spec.Volatility,
		Beta:               spec.Beta,
		TotalUnits:         spec.TotalUnits,
		CapMicros:          spec.CapMicros,
		LastRecordedMicros: spec.PriceMicros,
		Earnings:           spec.Earnings,
		Dividend:           spec.Dividend,
	}, nil
}

// applyPrice commits the tick's new price and derived bookkeeping.
func (in *Instrument) applyPrice(nextMicros int64) {
	if nextMicros < MinPriceMicros {
		nextMicros = MinPriceMicros
	}
	in.PrevPriceMicros = in.PriceMicros
	in.PriceMicros = nextMicros
	in.PriceHistory = append(in.PriceHistory, nextMicros)
	if len(in.PriceHistory) > priceHistoryCap {
		in.PriceHistory = in.PriceHistory[len(in.PriceHistory)-priceHistoryCap:]
	}
	in.PercentChange = percentChange(in.PrevPriceMicros, in.PriceMicros)
	in.Trending = classifyTrend(in.PercentChange, instrumentTrendDeadZone)
}

// recordSample updates the slow-cadence direction-since-last-sample fields.
func (in *Instrument) recordSample(now time.Time) {
	if in.PriceMicros == in.LastRecordedMicros {
		return
	}
	if in.PriceMicros > in.LastRecordedMicros {
		in.SampleTrend = TrendUp
	} else {
		in.SampleTrend = TrendDown
	}
	in.LastRecordedMicros = in.PriceMicros
	in.PriceChangeAt = now
}

// seedHistory prepends older closes from backfill. The live price and the
// points already simulated stay untouched.
func (in *Instrument) seedHistory(closesMicros []int64) {
	if len(closesMicros) == 0 || len(in.PriceHistory) >= priceHistoryCap {
		return
	}
	room := priceHistoryCap - len(in.PriceHistory)
	if len(closesMicros) > room {
		closesMicros = closesMicros[len(closesMicros)-room:]
	}
	merged := make([]int64, 0, len(closesMicros)+len(in.PriceHistory))
	for _, c := range closesMicros {
		if c < MinPriceMicros {
			c = MinPriceMicros
		}
		merged = append(merged, c)
	}
	merged = append(merged, in.PriceHistory...)
	in.PriceHistory = merged
}

func (in *Instrument) refreshOwnership() {
	in.CompanyOwned = float64(in.OwnedUnits) > 0.51*float64(in.TotalUnits)
}

const (
	instrumentTrendDeadZone = 0.25 // percent
	indexTrendDeadZone      = 0.08
)

func percentChange(prevMicros, curMicros int64) float64 {
	if prevMicros <= 0 {
		return 0
	}
	return (float64(curMicros-prevMicros) / float64(prevMicros)) * 100
}

func classifyTrend(pct, deadZone float64) Trend {
	switch {
	case pct > deadZone:
		return TrendUp
	case pct < -deadZone:
		return TrendDown
	default:
		return TrendNeutral
	}
}

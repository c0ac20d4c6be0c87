package market

// Read-only snapshot types returned to the API layer. Each is a copy taken
// inside the engine loop; callers can hold them as long as they like.

type InstrumentView struct {
	Symbol          string  `json:"symbol"`
	Name            string  `json:"name"`
	Sector          Sector  `json:"sector"`
	PriceMicros     int64   `json:"price_micros"`
	PrevPriceMicros int64   `json:"prev_price_micros"`
	PercentChange   float64 `json:"percent_change"`
	Trending        Trend   `json:"trending"`
	SampleTrend     Trend   `json:"sample_trend"`
	OwnedUnits      int64   `json:"owned_units"`
	CompanyOwned    bool    `json:"company_owned"`
	Watched         bool    `json:"watched"`
}

type InstrumentDetail struct {
	InstrumentView
	Description  string  `json:"description,omitempty"`
	Volatility   float64 `json:"volatility"`
	Beta         float64 `json:"beta"`
	TotalUnits   int64   `json:"total_units"`
	CapMicros    int64   `json:"cap_micros"`
	PriceHistory []int64 `json:"price_history"`
}

type HoldingView struct {
	Holding
	CurrentPriceMicros int64 `json:"current_price_micros"`
	MarketValueMicros  int64 `json:"market_value_micros"`
	UnrealizedMicros   int64 `json:"unrealized_micros"`
}

type PortfolioView struct {
	BalanceMicros  int64         `json:"balance_micros"`
	NetWorthMicros int64         `json:"net_worth_micros"`
	Holdings       []HoldingView `json:"holdings"`
	Transactions   []Transaction `json:"transactions"`
}

type ClockView struct {
	Clock     Clock   `json:"clock"`
	MoodValue float64 `json:"mood_value"`
	MoodLabel string  `json:"mood_label"`
}

func viewOf(in *Instrument, watched bool) InstrumentView {
	return InstrumentView{
		Symbol:          in.Symbol,
		Name:            in.Name,
		Sector:          in.Sector,
		PriceMicros:     in.PriceMicros,
		PrevPriceMicros: in.PrevPriceMicros,
		PercentChange:   in.PercentChange,
		Trending:        in.Trending,
		SampleTrend:     in.SampleTrend,
		OwnedUnits:      in.OwnedUnits,
		CompanyOwned:    in.CompanyOwned,
		Watched:         watched,
	}
}

func detailOf(in *Instrument, watched bool) InstrumentDetail {
	history := make([]int64, len(in.PriceHistory))
	copy(history, in.PriceHistory)
	return InstrumentDetail{
		InstrumentView: viewOf(in, watched),
		Description:    in.Description,
		Volatility:     in.Volatility,
		Beta:           in.Beta,
		TotalUnits:     in.TotalUnits,
		CapMicros:      in.CapMicros,
		PriceHistory:   history,
	}
}

func indexViewOf(idx *Index) Index {
	out := *idx
	out.Members = append([]string(nil), idx.Members...)
	out.History = append([]float64(nil), idx.History...)
	return out
}

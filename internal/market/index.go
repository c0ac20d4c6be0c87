package market

import "fmt"

// CompositeID names the market-cap-weighted aggregate across all instruments.
const CompositeID = "NOW"

// compositeScale turns the cap-weighted mean price into display points.
const compositeScale = 10.0

// Index is a derived aggregate. Values are recomputed from instrument state
// every tick and never mutated independently.
type Index struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Members       []string  `json:"members"`
	Base          float64   `json:"base"`
	Value         float64   `json:"value"`
	PrevValue     float64   `json:"prev_value"`
	History       []float64 `json:"history"`
	PercentChange float64   `json:"percent_change"`
	Trending      Trend     `json:"trending"`
}

// aggregator owns the sector indices and the composite.
type aggregator struct {
	sectors   map[Sector]*Index
	composite *Index
}

func newAggregator(instruments []*Instrument) (*aggregator, error) {
	bySector := make(map[Sector][]string)
	all := make([]string, 0, len(instruments))
	for _, in := range instruments {
		bySector[in.Sector] = append(bySector[in.Sector], in.Symbol)
		all = append(all, in.Symbol)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("composite index needs at least one instrument")
	}
	agg := &aggregator{
		sectors: make(map[Sector]*Index, len(bySector)),
		composite: &Index{
			ID:      CompositeID,
			Name:    "NOW Average",
			Members: all,
			Base:    100,
		},
	}
	for sector, members := range bySector {
		if len(members) == 0 {
			return nil, fmt.Errorf("sector index %q has no members", sector)
		}
		agg.sectors[sector] = &Index{
			ID:      string(sector),
			Name:    sectorIndexName(sector),
			Members: members,
			Base:    100,
		}
	}
	return agg, nil
}

// recompute derives every index from the instruments at this tick. When
// reopened is true the day rolled over and histories restart at one point.
func (a *aggregator) recompute(bySymbol map[string]*Instrument, reopened bool) {
	for _, idx := range a.sectors {
		cur := sectorValue(idx, bySymbol, false)
		prev := sectorValue(idx, bySymbol, true)
		idx.commit(cur, prev, reopened)
	}
	cur := compositeValue(a.composite, bySymbol, false)
	prev := compositeValue(a.composite, bySymbol, true)
	a.composite.commit(cur, prev, reopened)
}

// refresh recomputes index values in place without extending histories, so a
// save/restore cycle does not duplicate the last saved point.
func (a *aggregator) refresh(bySymbol map[string]*Instrument) {
	for _, idx := range a.sectors {
		idx.setValues(sectorValue(idx, bySymbol, false), sectorValue(idx, bySymbol, true))
	}
	a.composite.setValues(compositeValue(a.composite, bySymbol, false), compositeValue(a.composite, bySymbol, true))
}

func (idx *Index) commit(cur, prev float64, reopened bool) {
	idx.setValues(cur, prev)
	if reopened || len(idx.History) == 0 {
		idx.History = []float64{cur}
	} else {
		idx.History = append(idx.History, cur)
	}
}

func (idx *Index) setValues(cur, prev float64) {
	idx.PrevValue = prev
	idx.Value = cur
	if prev > 0 {
		idx.PercentChange = (cur - prev) / prev * 100
	} else {
		idx.PercentChange = 0
	}
	idx.Trending = classifyTrend(idx.PercentChange, indexTrendDeadZone)
}

// sectorValue is the mean member price scaled by base/100.
func sectorValue(idx *Index, bySymbol map[string]*Instrument, usePrev bool) float64 {
	var sum float64
	var n int
	for _, symbol := range idx.Members {
		in, ok := bySymbol[symbol]
		if !ok {
			continue
		}
		price := in.PriceMicros
		if usePrev {
			price = in.PrevPriceMicros
		}
		sum += MicrosToNow(price)
		n++
	}
	if n == 0 {
		return 0
	}
	return (sum / float64(n)) * idx.Base / 100
}

// compositeValue is the market-cap-weighted mean price in display points.
func compositeValue(idx *Index, bySymbol map[string]*Instrument, usePrev bool) float64 {
	var totalCap float64
	for _, symbol := range idx.Members {
		if in, ok := bySymbol[symbol]; ok {
			totalCap += float64(in.CapMicros)
		}
	}
	if totalCap <= 0 {
		return 0
	}
	var weighted float64
	for _, symbol := range idx.Members {
		in, ok := bySymbol[symbol]
		if !ok {
			continue
		}
		price := in.PriceMicros
		if usePrev {
			price = in.PrevPriceMicros
		}
		weighted += MicrosToNow(price) * (float64(in.CapMicros) / totalCap)
	}
	return weighted * compositeScale
}

func sectorIndexName(s Sector) string {
	switch s {
	case SectorTech:
		return "NOW Technology"
	case SectorEnergy:
		return "NOW Energy"
	case SectorFinance:
		return "NOW Financials"
	case SectorHealth:
		return "NOW Healthcare"
	case SectorConsumer:
		return "NOW Consumer"
	case SectorIndustrial:
		return "NOW Industrials"
	default:
		return "NOW " + string(s)
	}
}

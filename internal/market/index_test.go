package market

import (
	"math"
	"testing"
)

func indexFixture(t *testing.T) ([]*Instrument, map[string]*Instrument) {
	t.Helper()
	specs := []CompanySpec{
		{Symbol: "AAPX", Name: "Alpha", Sector: SectorTech, PriceMicros: 100 * MicrosPerNow, Volatility: 0.01, Beta: 1, TotalUnits: 100 * ShareScale, CapMicros: 300 * MicrosPerNow},
		{Symbol: "BETA", Name: "Beta", Sector: SectorTech, PriceMicros: 200 * MicrosPerNow, Volatility: 0.01, Beta: 1, TotalUnits: 100 * ShareScale, CapMicros: 100 * MicrosPerNow},
		{Symbol: "GAMA", Name: "Gamma", Sector: SectorEnergy, PriceMicros: 50 * MicrosPerNow, Volatility: 0.01, Beta: 1, TotalUnits: 100 * ShareScale, CapMicros: 100 * MicrosPerNow},
	}
	instruments := make([]*Instrument, 0, len(specs))
	bySymbol := make(map[string]*Instrument)
	for _, spec := range specs {
		in, err := NewInstrument(spec)
		if err != nil {
			t.Fatalf("new instrument: %v", err)
		}
		instruments = append(instruments, in)
		bySymbol[in.Symbol] = in
	}
	return instruments, bySymbol
}

func TestAggregatorSectorValue(t *testing.T) {
	instruments, bySymbol := indexFixture(t)
	agg, err := newAggregator(instruments)
	if err != nil {
		t.Fatalf("new aggregator: %v", err)
	}
	agg.recompute(bySymbol, false)

	tech := agg.sectors[SectorTech]
	// Mean of 100 and 200 at base 100.
	if math.Abs(tech.Value-150) > 1e-9 {
		t.Fatalf("tech value got %f want 150", tech.Value)
	}
	energy := agg.sectors[SectorEnergy]
	if math.Abs(energy.Value-50) > 1e-9 {
		t.Fatalf("energy value got %f want 50", energy.Value)
	}
}

func TestAggregatorCompositeCapWeighted(t *testing.T) {
	instruments, bySymbol := indexFixture(t)
	agg, err := newAggregator(instruments)
	if err != nil {
		t.Fatalf("new aggregator: %v", err)
	}
	agg.recompute(bySymbol, false)

	// Caps 300/100/100, prices 100/200/50:
	// (100*0.6 + 200*0.2 + 50*0.2) * 10 = 1100.
	if math.Abs(agg.composite.Value-1100) > 1e-6 {
		t.Fatalf("composite got %f want 1100", agg.composite.Value)
	}
}

func TestAggregatorPercentChangeTracksPrices(t *testing.T) {
	instruments, bySymbol := indexFixture(t)
	agg, err := newAggregator(instruments)
	if err != nil {
		t.Fatalf("new aggregator: %v", err)
	}
	agg.recompute(bySymbol, false)

	// Move every tech price up 10%.
	bySymbol["AAPX"].applyPrice(110 * MicrosPerNow)
	bySymbol["BETA"].applyPrice(220 * MicrosPerNow)
	agg.recompute(bySymbol, false)

	tech := agg.sectors[SectorTech]
	if math.Abs(tech.PercentChange-10) > 1e-6 {
		t.Fatalf("tech change got %f want 10", tech.PercentChange)
	}
	if tech.Trending != TrendUp {
		t.Fatalf("tech trending got %s want up", tech.Trending)
	}
	if len(tech.History) != 2 {
		t.Fatalf("history len got %d want 2", len(tech.History))
	}
}

func TestAggregatorReopenResetsHistory(t *testing.T) {
	instruments, bySymbol := indexFixture(t)
	agg, err := newAggregator(instruments)
	if err != nil {
		t.Fatalf("new aggregator: %v", err)
	}
	for i := 0; i < 5; i++ {
		agg.recompute(bySymbol, false)
	}
	agg.recompute(bySymbol, true)

	if len(agg.composite.History) != 1 {
		t.Fatalf("composite history got %d want 1", len(agg.composite.History))
	}
	for _, idx := range agg.sectors {
		if len(idx.History) != 1 {
			t.Fatalf("index %s history got %d want 1", idx.ID, len(idx.History))
		}
	}
}

func TestAggregatorRejectsEmptyCatalog(t *testing.T) {
	if _, err := newAggregator(nil); err == nil {
		t.Fatalf("expected empty catalog to fail")
	}
}

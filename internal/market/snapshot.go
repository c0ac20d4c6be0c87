package market

import (
	"encoding/json"
	"fmt"
	"time"
)

// Snapshot is the whole simulation state as one opaque, restorable blob.
// Offline time is never replayed: a restored engine resumes from the saved
// clock and ticks forward from there.
type Snapshot struct {
	SavedAt       time.Time              `json:"saved_at"`
	Clock         Clock                  `json:"clock"`
	Mood          Mood                   `json:"mood"`
	BalanceMicros int64                  `json:"balance_micros"`
	Instruments   []*Instrument          `json:"instruments"`
	Indices       []Index                `json:"indices"`
	Holdings      []Holding              `json:"holdings"`
	Transactions  []Transaction          `json:"transactions"`
	News          []NewsItem             `json:"news"`
	Watchlist     []string               `json:"watchlist"`
	SectorShocks  map[Sector]sectorShock `json:"sector_shocks,omitempty"`
}

// capture builds the blob. Runs inside the engine loop.
func (e *Engine) capture() ([]byte, error) {
	snap := Snapshot{
		SavedAt:       time.Now().UTC(),
		Clock:         e.clock,
		Mood:          e.mood,
		BalanceMicros: e.cash.BalanceMicros(),
		Holdings:      e.ledger.holdingList(),
		Transactions:  e.ledger.transactionList(),
		News:          e.feed.list(),
		SectorShocks:  e.shocks,
	}
	for _, in := range e.instruments {
		cp := *in
		cp.PriceHistory = append([]int64(nil), in.PriceHistory...)
		snap.Instruments = append(snap.Instruments, &cp)
	}
	for _, idx := range e.agg.sectors {
		snap.Indices = append(snap.Indices, indexViewOf(idx))
	}
	snap.Indices = append(snap.Indices, indexViewOf(e.agg.composite))
	for symbol := range e.watch {
		snap.Watchlist = append(snap.Watchlist, symbol)
	}
	return json.Marshal(snap)
}

// Restore loads a snapshot blob into a not-yet-started engine.
func (e *Engine) Restore(blob []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return fmt.Errorf("restore requires a stopped engine")
	}
	var snap Snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	if len(snap.Instruments) == 0 {
		return fmt.Errorf("snapshot has no instruments")
	}

	e.clock = snap.Clock
	e.mood = snap.Mood
	if setter, ok := e.cash.(interface{ SetBalanceMicros(int64) }); ok {
		setter.SetBalanceMicros(snap.BalanceMicros)
	}
	e.instruments = snap.Instruments
	e.bySymbol = make(map[string]*Instrument, len(snap.Instruments))
	for _, in := range snap.Instruments {
		if in.PriceMicros < MinPriceMicros {
			in.PriceMicros = MinPriceMicros
		}
		e.bySymbol[in.Symbol] = in
	}

	agg, err := newAggregator(e.instruments)
	if err != nil {
		return err
	}
	e.agg = agg
	for i := range snap.Indices {
		saved := snap.Indices[i]
		if saved.ID == CompositeID {
			e.agg.composite.History = saved.History
			continue
		}
		if idx, ok := e.agg.sectors[Sector(saved.ID)]; ok {
			idx.History = saved.History
		}
	}
	e.agg.refresh(e.bySymbol)

	e.ledger = newLedger(e.cash)
	for i := range snap.Holdings {
		h := snap.Holdings[i]
		e.ledger.holdings[h.Symbol] = &h
	}
	e.ledger.transactions = snap.Transactions
	e.feed.items = snap.News
	e.watch = make(map[string]bool, len(snap.Watchlist))
	for _, symbol := range snap.Watchlist {
		e.watch[symbol] = true
	}
	e.shocks = snap.SectorShocks
	if e.shocks == nil {
		e.shocks = make(map[Sector]sectorShock)
	}
	return nil
}

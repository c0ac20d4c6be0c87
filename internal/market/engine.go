package market

import (
	"context"
	"fmt"
	"log/slog"
	mathrand "math/rand"
	"strings"
	"sync"
	"time"
)

// Config tunes the scheduler cadences.
type Config struct {
	// TickEvery is the base scheduler period driving price updates, index
	// aggregation, mood and the clock.
	TickEvery time.Duration
	// SampleEveryTicks derives the slow direction-sample process from the
	// base tick instead of running a second timer.
	SampleEveryTicks int
}

func (c *Config) applyDefaults() {
	if c.TickEvery <= 0 {
		c.TickEvery = time.Second
	}
	if c.SampleEveryTicks <= 0 {
		c.SampleEveryTicks = 5
	}
}

// Engine owns the whole simulation state and serializes every mutation —
// ticks, trades, watch toggles, snapshot reads — through one goroutine.
// There are no concurrent writers anywhere in the package.
type Engine struct {
	cfg  Config
	log  *slog.Logger
	cash CashLedger

	sim         *simulator
	ledger      *ledger
	agg         *aggregator
	instruments []*Instrument
	bySymbol    map[string]*Instrument
	clock       Clock
	mood        Mood
	feed        newsFeed
	watch       map[string]bool
	shocks      map[Sector]sectorShock
	tickCount   int

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	cmds    chan func()
	done    chan struct{}
	wg      sync.WaitGroup
}

// New builds an engine from a company catalog and event tables.
func New(cfg Config, catalog []CompanySpec, tables Tables, cash CashLedger, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.applyDefaults()
	if cash == nil {
		return nil, fmt.Errorf("cash ledger is required")
	}
	if err := tables.Validate(catalog); err != nil {
		return nil, err
	}

	instruments := make([]*Instrument, 0, len(catalog))
	bySymbol := make(map[string]*Instrument, len(catalog))
	for _, spec := range catalog {
		in, err := NewInstrument(spec)
		if err != nil {
			return nil, err
		}
		if _, dup := bySymbol[in.Symbol]; dup {
			return nil, fmt.Errorf("duplicate symbol %s", in.Symbol)
		}
		instruments = append(instruments, in)
		bySymbol[in.Symbol] = in
	}
	agg, err := newAggregator(instruments)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:         cfg,
		log:         logger,
		cash:        cash,
		sim:         newSimulator(tables, mathrand.New(mathrand.NewSource(time.Now().UnixNano()))),
		ledger:      newLedger(cash),
		agg:         agg,
		instruments: instruments,
		bySymbol:    bySymbol,
		clock:       NewClock(),
		watch:       make(map[string]bool),
		shocks:      make(map[Sector]sectorShock),
		cmds:        make(chan func(), 64),
		done:        make(chan struct{}),
	}
	e.agg.recompute(e.bySymbol, false)
	return e, nil
}

// Start launches the scheduler loop. It is an error to start twice.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return fmt.Errorf("engine already started")
	}
	select {
	case <-e.done:
		return fmt.Errorf("engine cannot be restarted")
	default:
	}
	e.started = true
	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.wg.Add(1)
	go e.run(runCtx)
	e.log.Info("engine started", "instruments", len(e.instruments), "tick_every", e.cfg.TickEvery.String())
	return nil
}

// Stop tears the scheduler down and waits for the loop to exit.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return
	}
	e.started = false
	cancel := e.cancel
	e.mu.Unlock()

	cancel()
	e.wg.Wait()
	e.log.Info("engine stopped")
}

func (e *Engine) run(ctx context.Context) {
	defer e.wg.Done()
	defer close(e.done)
	ticker := time.NewTicker(e.cfg.TickEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.safeTick()
		case fn := <-e.cmds:
			fn()
		}
	}
}

// safeTick isolates a faulty tick: the market keeps running.
func (e *Engine) safeTick() {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("tick panicked, skipping", "panic", r)
		}
	}()
	e.tick()
}

func (e *Engine) tick() {
	reopened := e.clock.Advance()
	e.tickCount++

	if e.clock.Open {
		env := tickEnv{
			MarketTrend: e.mood.MarketTrend(),
			Day:         e.clock.Day,
			Month:       e.clock.Month(),
			DayOfMonth:  e.clock.DayOfMonth(),
		}

		if sector, shock, item, ok := e.sim.maybeSectorShock(e.instruments); ok {
			e.shocks[sector] = shock
			e.feed.push(item)
		}

		for _, in := range e.instruments {
			env.SectorShock = e.shocks[in.Sector].Impact
			out := e.sim.tick(in, env)
			e.feed.push(out.News...)
			if out.DividendPerShareMicros > 0 && in.OwnedUnits > 0 {
				amount, err := notionalMicros(out.DividendPerShareMicros, in.OwnedUnits)
				if err == nil && amount > 0 {
					e.cash.Credit(amount)
				}
			}
		}

		for sector, shock := range e.shocks {
			shock.TicksLeft--
			if shock.TicksLeft <= 0 {
				delete(e.shocks, sector)
			} else {
				e.shocks[sector] = shock
			}
		}

		e.agg.recompute(e.bySymbol, reopened)
		e.mood.Update(e.agg.composite.PercentChange)
	}

	if e.tickCount%e.cfg.SampleEveryTicks == 0 {
		now := time.Now().UTC()
		for _, in := range e.instruments {
			in.recordSample(now)
		}
	}
}

// do runs fn inside the engine loop and waits for it. It rejects calls while
// the loop is not running; queueing before Start would block the caller until
// some future loop drained the command.
func (e *Engine) do(ctx context.Context, fn func()) error {
	e.mu.Lock()
	started := e.started
	e.mu.Unlock()
	if !started {
		return ErrEngineStopped
	}
	ran := make(chan struct{})
	wrapped := func() {
		fn()
		close(ran)
	}
	select {
	case e.cmds <- wrapped:
	case <-e.done:
		return ErrEngineStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-ran:
		return nil
	case <-e.done:
		return ErrEngineStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Buy executes a market buy at the current price.
func (e *Engine) Buy(ctx context.Context, symbol string, units int64) (OrderResult, error) {
	return e.order(ctx, "buy", symbol, units)
}

// Sell executes a market sell at the current price.
func (e *Engine) Sell(ctx context.Context, symbol string, units int64) (OrderResult, error) {
	return e.order(ctx, "sell", symbol, units)
}

func (e *Engine) order(ctx context.Context, side, symbol string, units int64) (OrderResult, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	var (
		result OrderResult
		opErr  error
	)
	err := e.do(ctx, func() {
		in, ok := e.bySymbol[symbol]
		if !ok {
			opErr = fmt.Errorf("%w: %s", ErrStockNotFound, symbol)
			return
		}
		if side == "buy" {
			result, opErr = e.ledger.buy(in, units)
		} else {
			result, opErr = e.ledger.sell(in, units)
		}
	})
	if err != nil {
		return OrderResult{}, err
	}
	return result, opErr
}

// ToggleWatch flips the watch flag and reports the new state.
func (e *Engine) ToggleWatch(ctx context.Context, symbol string) (bool, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	var (
		watched bool
		opErr   error
	)
	err := e.do(ctx, func() {
		if _, ok := e.bySymbol[symbol]; !ok {
			opErr = fmt.Errorf("%w: %s", ErrStockNotFound, symbol)
			return
		}
		if e.watch[symbol] {
			delete(e.watch, symbol)
		} else {
			e.watch[symbol] = true
		}
		watched = e.watch[symbol]
	})
	if err != nil {
		return false, err
	}
	return watched, opErr
}

// Instruments returns snapshots of every instrument, catalog order.
func (e *Engine) Instruments(ctx context.Context) ([]InstrumentView, error) {
	var out []InstrumentView
	err := e.do(ctx, func() {
		out = make([]InstrumentView, 0, len(e.instruments))
		for _, in := range e.instruments {
			out = append(out, viewOf(in, e.watch[in.Symbol]))
		}
	})
	return out, err
}

// Instrument returns the detailed snapshot of one instrument.
func (e *Engine) Instrument(ctx context.Context, symbol string) (InstrumentDetail, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	var (
		out   InstrumentDetail
		opErr error
	)
	err := e.do(ctx, func() {
		in, ok := e.bySymbol[symbol]
		if !ok {
			opErr = fmt.Errorf("%w: %s", ErrStockNotFound, symbol)
			return
		}
		out = detailOf(in, e.watch[symbol])
	})
	if err != nil {
		return InstrumentDetail{}, err
	}
	return out, opErr
}

// Indices returns every sector index plus the composite (composite last).
func (e *Engine) Indices(ctx context.Context) ([]Index, error) {
	var out []Index
	err := e.do(ctx, func() {
		out = make([]Index, 0, len(e.agg.sectors)+1)
		for _, idx := range e.agg.sectors {
			out = append(out, indexViewOf(idx))
		}
		out = append(out, indexViewOf(e.agg.composite))
	})
	return out, err
}

// IndexByID returns one index snapshot; CompositeID selects the composite.
func (e *Engine) IndexByID(ctx context.Context, id string) (Index, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	var (
		out   Index
		opErr error
	)
	err := e.do(ctx, func() {
		if id == CompositeID {
			out = indexViewOf(e.agg.composite)
			return
		}
		if idx, ok := e.agg.sectors[Sector(strings.ToLower(id))]; ok {
			out = indexViewOf(idx)
			return
		}
		opErr = fmt.Errorf("%w: index %s", ErrStockNotFound, id)
	})
	if err != nil {
		return Index{}, err
	}
	return out, opErr
}

// Portfolio returns cash, holdings marked to the current prices, and the
// transaction log.
func (e *Engine) Portfolio(ctx context.Context) (PortfolioView, error) {
	var out PortfolioView
	err := e.do(ctx, func() {
		out.BalanceMicros = e.cash.BalanceMicros()
		out.Transactions = e.ledger.transactionList()
		holdings := e.ledger.holdingList()
		out.Holdings = make([]HoldingView, 0, len(holdings))
		net := out.BalanceMicros
		for _, h := range holdings {
			view := HoldingView{Holding: h}
			if in, ok := e.bySymbol[h.Symbol]; ok {
				view.CurrentPriceMicros = in.PriceMicros
				if value, err := notionalMicros(in.PriceMicros, h.Units); err == nil {
					view.MarketValueMicros = value
					view.UnrealizedMicros = value - h.TotalInvestedMicros
					net += value
				}
			}
			out.Holdings = append(out.Holdings, view)
		}
		out.NetWorthMicros = net
	})
	return out, err
}

// News returns the feed, newest first.
func (e *Engine) News(ctx context.Context) ([]NewsItem, error) {
	var out []NewsItem
	err := e.do(ctx, func() {
		out = e.feed.list()
	})
	return out, err
}

// ClockMood returns the clock and sentiment snapshot.
func (e *Engine) ClockMood(ctx context.Context) (ClockView, error) {
	var out ClockView
	err := e.do(ctx, func() {
		out = ClockView{Clock: e.clock, MoodValue: e.mood.Value, MoodLabel: e.mood.Label()}
	})
	return out, err
}

// Snapshot serializes the whole simulation state as one blob.
func (e *Engine) Snapshot(ctx context.Context) ([]byte, error) {
	var (
		blob  []byte
		opErr error
	)
	err := e.do(ctx, func() {
		blob, opErr = e.capture()
	})
	if err != nil {
		return nil, err
	}
	return blob, opErr
}

// MergeBackfill seeds an instrument's chart history with external closes,
// oldest first. The live price is never touched.
func (e *Engine) MergeBackfill(ctx context.Context, symbol string, closesMicros []int64) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	var opErr error
	err := e.do(ctx, func() {
		in, ok := e.bySymbol[symbol]
		if !ok {
			opErr = fmt.Errorf("%w: %s", ErrStockNotFound, symbol)
			return
		}
		in.seedHistory(closesMicros)
	})
	if err != nil {
		return err
	}
	return opErr
}

// Symbols lists the catalog symbols without entering the loop; the set is
// immutable after construction.
func (e *Engine) Symbols() []string {
	out := make([]string, 0, len(e.instruments))
	for _, in := range e.instruments {
		out = append(out, in.Symbol)
	}
	return out
}

package backfill

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Seeder is the slice of the engine the manager needs.
type Seeder interface {
	MergeBackfill(ctx context.Context, symbol string, closesMicros []int64) error
	Symbols() []string
}

// Manager fetches history on demand, caches results, and collapses repeat
// requests for the same symbol while one is already in flight.
type Manager struct {
	seeder   Seeder
	primary  Fetcher
	fallback Fetcher
	log      *slog.Logger
	ttl      time.Duration
	days     int

	mu       sync.Mutex
	fetched  map[string]time.Time
	inFlight map[string]chan struct{}
}

// NewManager wires a manager. primary may be nil, in which case every fetch
// uses the fallback. fallback must not be nil.
func NewManager(seeder Seeder, primary, fallback Fetcher, ttl time.Duration, days int, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	if days <= 0 {
		days = 30
	}
	return &Manager{
		seeder:   seeder,
		primary:  primary,
		fallback: fallback,
		log:      logger,
		ttl:      ttl,
		days:     days,
		fetched:  make(map[string]time.Time),
		inFlight: make(map[string]chan struct{}),
	}
}

// Ensure seeds symbol's history unless a fresh fetch already happened. A call
// that arrives while another fetch for the same symbol is running waits for
// that fetch instead of issuing its own.
func (m *Manager) Ensure(ctx context.Context, symbol string) error {
	for {
		m.mu.Lock()
		if at, ok := m.fetched[symbol]; ok && time.Since(at) < m.ttl {
			m.mu.Unlock()
			return nil
		}
		if wait, ok := m.inFlight[symbol]; ok {
			m.mu.Unlock()
			select {
			case <-wait:
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		done := make(chan struct{})
		m.inFlight[symbol] = done
		m.mu.Unlock()

		err := m.fetch(ctx, symbol)

		m.mu.Lock()
		delete(m.inFlight, symbol)
		if err == nil {
			m.fetched[symbol] = time.Now()
		}
		m.mu.Unlock()
		close(done)
		return err
	}
}

// Warm seeds every catalog symbol. Individual failures are logged, not fatal.
func (m *Manager) Warm(ctx context.Context) {
	for _, symbol := range m.seeder.Symbols() {
		if err := m.Ensure(ctx, symbol); err != nil {
			m.log.Warn("backfill failed", "symbol", symbol, "err", err)
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (m *Manager) fetch(ctx context.Context, symbol string) error {
	var (
		closes []int64
		err    error
	)
	if m.primary != nil {
		closes, err = m.primary.Closes(ctx, symbol, m.days)
		if err != nil {
			m.log.Warn("quote service unavailable, using synthetic history", "symbol", symbol, "err", err)
		}
	}
	if len(closes) == 0 {
		closes, err = m.fallback.Closes(ctx, symbol, m.days)
		if err != nil {
			return err
		}
	}
	return m.seeder.MergeBackfill(ctx, symbol, closes)
}

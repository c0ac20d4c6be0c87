// Package wallet holds the player's cash balance in micros.
package wallet

import (
	"fmt"
	"sync"

	"nowmarket/internal/market"
)

// Wallet is a thread-safe cash ledger. The engine serializes trades, but the
// autosave path and HTTP handlers may read the balance concurrently.
type Wallet struct {
	mu     sync.Mutex
	micros int64
}

// New starts a wallet at the given balance.
func New(startingMicros int64) *Wallet {
	if startingMicros < 0 {
		startingMicros = 0
	}
	return &Wallet{micros: startingMicros}
}

// BalanceMicros reports the current balance.
func (w *Wallet) BalanceMicros() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.micros
}

// Debit withdraws amount or fails without mutating the balance.
func (w *Wallet) Debit(amountMicros int64) error {
	if amountMicros <= 0 {
		return fmt.Errorf("debit amount must be positive, got %d", amountMicros)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.micros < amountMicros {
		return fmt.Errorf("%w: have %d micros, need %d", market.ErrInsufficientFunds, w.micros, amountMicros)
	}
	w.micros -= amountMicros
	return nil
}

// Credit deposits amount. Non-positive amounts are ignored.
func (w *Wallet) Credit(amountMicros int64) {
	if amountMicros <= 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.micros += amountMicros
}

// SetBalanceMicros overwrites the balance; used when restoring a snapshot.
func (w *Wallet) SetBalanceMicros(micros int64) {
	if micros < 0 {
		micros = 0
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.micros = micros
}

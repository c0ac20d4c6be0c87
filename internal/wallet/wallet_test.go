package wallet

import (
	"errors"
	"testing"

	"nowmarket/internal/market"
)

func TestDebitCredit(t *testing.T) {
	w := New(1000 * market.MicrosPerNow)
	if err := w.Debit(400 * market.MicrosPerNow); err != nil {
		t.Fatalf("debit: %v", err)
	}
	w.Credit(150 * market.MicrosPerNow)
	if got := w.BalanceMicros(); got != 750*market.MicrosPerNow {
		t.Fatalf("balance got %d want %d", got, 750*market.MicrosPerNow)
	}
}

func TestDebitInsufficientFunds(t *testing.T) {
	w := New(100)
	err := w.Debit(101)
	if !errors.Is(err, market.ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}
	if w.BalanceMicros() != 100 {
		t.Fatalf("failed debit mutated balance: %d", w.BalanceMicros())
	}
}

func TestDebitRejectsNonPositive(t *testing.T) {
	w := New(100)
	if err := w.Debit(0); err == nil {
		t.Fatalf("zero debit must fail")
	}
	if err := w.Debit(-5); err == nil {
		t.Fatalf("negative debit must fail")
	}
}

func TestCreditIgnoresNonPositive(t *testing.T) {
	w := New(100)
	w.Credit(0)
	w.Credit(-50)
	if w.BalanceMicros() != 100 {
		t.Fatalf("non-positive credit changed balance: %d", w.BalanceMicros())
	}
}

func TestSetBalanceClampsNegative(t *testing.T) {
	w := New(100)
	w.SetBalanceMicros(-1)
	if w.BalanceMicros() != 0 {
		t.Fatalf("negative set should clamp to zero, got %d", w.BalanceMicros())
	}
}

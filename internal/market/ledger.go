package market

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const transactionLogCap = 200

// pressureBumpScale converts traded share fraction into pressure points.
const pressureBumpScale = 25.0

// CashLedger is the external wallet the engine debits and credits. The engine
// never owns cash; an insufficient-funds Debit is information, not a fault.
type CashLedger interface {
	BalanceMicros() int64
	Debit(amountMicros int64) error
	Credit(amountMicros int64)
}

// Holding is the player's position in one instrument.
type Holding struct {
	Symbol              string `json:"symbol"`
	Units               int64  `json:"units"`
	AvgCostMicros       int64  `json:"avg_cost_micros"`
	TotalInvestedMicros int64  `json:"total_invested_micros"`
}

// Transaction is one immutable audit record.
type Transaction struct {
	ID          string    `json:"id"`
	Side        string    `json:"side"`
	Symbol      string    `json:"symbol"`
	Units       int64     `json:"units"`
	PriceMicros int64     `json:"price_micros"`
	TotalMicros int64     `json:"total_micros"`
	At          time.Time `json:"at"`
}

// OrderResult reports an executed trade back to the caller.
type OrderResult struct {
	TxID          string `json:"tx_id"`
	Symbol        string `json:"symbol"`
	Side          string `json:"side"`
	Units         int64  `json:"units"`
	PriceMicros   int64  `json:"price_micros"`
	TotalMicros   int64  `json:"total_micros"`
	BalanceMicros int64  `json:"balance_micros"`
}

// ledger validates and applies trades. All calls run inside the engine loop.
type ledger struct {
	cash         CashLedger
	holdings     map[string]*Holding
	transactions []Transaction // newest first
}

func newLedger(cash CashLedger) *ledger {
	return &ledger{
		cash:     cash,
		holdings: make(map[string]*Holding),
	}
}

func (l *ledger) buy(in *Instrument, units int64) (OrderResult, error) {
	if units <= 0 {
		return OrderResult{}, ErrInvalidShares
	}
	notional, err := notionalMicros(in.PriceMicros, units)
	if err != nil {
		return OrderResult{}, err
	}
	// Debit first: a rejected buy must leave holdings and pressure untouched.
	if err := l.cash.Debit(notional); err != nil {
		return OrderResult{}, fmt.Errorf("%w: need %.2f", err, MicrosToNow(notional))
	}

	h, ok := l.holdings[in.Symbol]
	if !ok {
		l.holdings[in.Symbol] = &Holding{
			Symbol:              in.Symbol,
			Units:               units,
			AvgCostMicros:       in.PriceMicros,
			TotalInvestedMicros: notional,
		}
	} else {
		newUnits := h.Units + units
		newInvested := h.TotalInvestedMicros + notional
		avg, err := divideMicros(newInvested, newUnits)
		if err != nil {
			// Refund rather than corrupt the position.
			l.cash.Credit(notional)
			return OrderResult{}, err
		}
		h.Units = newUnits
		h.AvgCostMicros = avg
		h.TotalInvestedMicros = newInvested
	}

	tx := l.appendTransaction("buy", in, units, notional)
	bump := pressureBumpScale * float64(units) / float64(in.TotalUnits)
	in.BuyPressure += bump
	in.SellPressure = maxFloat(0, in.SellPressure-bump)
	in.OwnedUnits += units
	in.refreshOwnership()

	return OrderResult{
		TxID:          tx.ID,
		Symbol:        in.Symbol,
		Side:          "buy",
		Units:         units,
		PriceMicros:   in.PriceMicros,
		TotalMicros:   notional,
		BalanceMicros: l.cash.BalanceMicros(),
	}, nil
}

func (l *ledger) sell(in *Instrument, units int64) (OrderResult, error) {
	if units <= 0 {
		return OrderResult{}, ErrInvalidShares
	}
	h, ok := l.holdings[in.Symbol]
	if !ok || h.Units < units {
		return OrderResult{}, fmt.Errorf("%w: %s", ErrInsufficientShares, in.Symbol)
	}
	notional, err := notionalMicros(in.PriceMicros, units)
	if err != nil {
		return OrderResult{}, err
	}
	l.cash.Credit(notional)

	if h.Units == units {
		delete(l.holdings, in.Symbol)
	} else {
		h.Units -= units
		// Partial sells keep the average cost; only the invested total shrinks.
		invested, err := notionalMicros(h.AvgCostMicros, h.Units)
		if err == nil {
			h.TotalInvestedMicros = invested
		}
	}

	tx := l.appendTransaction("sell", in, units, notional)
	bump := pressureBumpScale * float64(units) / float64(in.TotalUnits)
	in.SellPressure += bump
	in.BuyPressure = maxFloat(0, in.BuyPressure-bump)
	in.OwnedUnits -= units
	if in.OwnedUnits < 0 {
		in.OwnedUnits = 0
	}
	in.refreshOwnership()

	return OrderResult{
		TxID:          tx.ID,
		Symbol:        in.Symbol,
		Side:          "sell",
		Units:         units,
		PriceMicros:   in.PriceMicros,
		TotalMicros:   notional,
		BalanceMicros: l.cash.BalanceMicros(),
	}, nil
}

func (l *ledger) appendTransaction(side string, in *Instrument, units, totalMicros int64) Transaction {
	tx := Transaction{
		ID:          uuid.NewString(),
		Side:        side,
		Symbol:      in.Symbol,
		Units:       units,
		PriceMicros: in.PriceMicros,
		TotalMicros: totalMicros,
		At:          time.Now().UTC(),
	}
	l.transactions = append([]Transaction{tx}, l.transactions...)
	if len(l.transactions) > transactionLogCap {
		l.transactions = l.transactions[:transactionLogCap]
	}
	return tx
}

func (l *ledger) holdingList() []Holding {
	out := make([]Holding, 0, len(l.holdings))
	for _, h := range l.holdings {
		out = append(out, *h)
	}
	return out
}

func (l *ledger) transactionList() []Transaction {
	out := make([]Transaction, len(l.transactions))
	copy(out, l.transactions)
	return out
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

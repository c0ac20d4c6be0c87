package market

import (
	"errors"
	"fmt"
	"testing"
)

type fakeCash struct {
	micros int64
}

func (c *fakeCash) BalanceMicros() int64 { return c.micros }

func (c *fakeCash) Debit(amountMicros int64) error {
	if c.micros < amountMicros {
		return fmt.Errorf("%w: short %d", ErrInsufficientFunds, amountMicros-c.micros)
	}
	c.micros -= amountMicros
	return nil
}

func (c *fakeCash) Credit(amountMicros int64) { c.micros += amountMicros }

func (c *fakeCash) SetBalanceMicros(micros int64) { c.micros = micros }

func ledgerFixture(t *testing.T, balanceMicros int64) (*ledger, *Instrument, *fakeCash) {
	t.Helper()
	in, err := NewInstrument(CompanySpec{
		Symbol:      "ZENITH",
		Name:        "Zenith Retail",
		Sector:      SectorConsumer,
		PriceMicros: 100 * MicrosPerNow,
		Volatility:  0.01,
		Beta:        1,
		TotalUnits:  100 * ShareScale,
		CapMicros:   10_000 * MicrosPerNow,
	})
	if err != nil {
		t.Fatalf("new instrument: %v", err)
	}
	cash := &fakeCash{micros: balanceMicros}
	return newLedger(cash), in, cash
}

func TestBuyDebitsExactNotional(t *testing.T) {
	l, in, cash := ledgerFixture(t, 1000*MicrosPerNow)

	units, _ := SharesToUnits(5)
	result, err := l.buy(in, units)
	if err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if result.TotalMicros != 500*MicrosPerNow {
		t.Fatalf("total got %d want %d", result.TotalMicros, 500*MicrosPerNow)
	}
	if cash.micros != 500*MicrosPerNow {
		t.Fatalf("balance got %d want %d", cash.micros, 500*MicrosPerNow)
	}
	if in.OwnedUnits != units {
		t.Fatalf("owned units got %d want %d", in.OwnedUnits, units)
	}
	if in.BuyPressure <= 0 {
		t.Fatalf("buy pressure not bumped")
	}
}

func TestBuyWeightedAverageCost(t *testing.T) {
	l, in, _ := ledgerFixture(t, 10_000*MicrosPerNow)

	units, _ := SharesToUnits(1)
	if _, err := l.buy(in, units); err != nil {
		t.Fatalf("first buy: %v", err)
	}
	in.applyPrice(200 * MicrosPerNow)
	if _, err := l.buy(in, units); err != nil {
		t.Fatalf("second buy: %v", err)
	}

	h := l.holdings[in.Symbol]
	if h.Units != 2*ShareScale {
		t.Fatalf("units got %d want %d", h.Units, 2*ShareScale)
	}
	// (100*1 + 200*1) / 2 = 150.
	if h.AvgCostMicros != 150*MicrosPerNow {
		t.Fatalf("avg cost got %d want %d", h.AvgCostMicros, 150*MicrosPerNow)
	}
	if h.TotalInvestedMicros != 300*MicrosPerNow {
		t.Fatalf("invested got %d want %d", h.TotalInvestedMicros, 300*MicrosPerNow)
	}
}

func TestBuyInsufficientFundsLeavesStateUntouched(t *testing.T) {
	l, in, cash := ledgerFixture(t, 100*MicrosPerNow)

	units, _ := SharesToUnits(50)
	_, err := l.buy(in, units)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}
	if cash.micros != 100*MicrosPerNow {
		t.Fatalf("balance mutated: %d", cash.micros)
	}
	if len(l.holdings) != 0 || len(l.transactions) != 0 {
		t.Fatalf("rejected buy left residue")
	}
	if in.BuyPressure != 0 || in.OwnedUnits != 0 {
		t.Fatalf("rejected buy touched the instrument")
	}
}

func TestSellRoundTrip(t *testing.T) {
	l, in, cash := ledgerFixture(t, 1000*MicrosPerNow)

	units, _ := SharesToUnits(4)
	if _, err := l.buy(in, units); err != nil {
		t.Fatalf("buy: %v", err)
	}
	half, _ := SharesToUnits(2)
	result, err := l.sell(in, half)
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if result.TotalMicros != 200*MicrosPerNow {
		t.Fatalf("sell total got %d", result.TotalMicros)
	}
	if cash.micros != 800*MicrosPerNow {
		t.Fatalf("balance got %d want %d", cash.micros, 800*MicrosPerNow)
	}

	h := l.holdings[in.Symbol]
	if h.Units != half {
		t.Fatalf("remaining units got %d want %d", h.Units, half)
	}
	// Partial sells keep the average cost.
	if h.AvgCostMicros != 100*MicrosPerNow {
		t.Fatalf("avg cost changed on partial sell: %d", h.AvgCostMicros)
	}

	if _, err := l.sell(in, half); err != nil {
		t.Fatalf("final sell: %v", err)
	}
	if _, ok := l.holdings[in.Symbol]; ok {
		t.Fatalf("flat position should be removed")
	}
	if in.OwnedUnits != 0 {
		t.Fatalf("owned units got %d want 0", in.OwnedUnits)
	}
}

func TestSellMoreThanHeldFails(t *testing.T) {
	l, in, cash := ledgerFixture(t, 1000*MicrosPerNow)

	units, _ := SharesToUnits(1)
	if _, err := l.buy(in, units); err != nil {
		t.Fatalf("buy: %v", err)
	}
	before := cash.micros

	over, _ := SharesToUnits(2)
	_, err := l.sell(in, over)
	if !errors.Is(err, ErrInsufficientShares) {
		t.Fatalf("want ErrInsufficientShares, got %v", err)
	}
	if cash.micros != before {
		t.Fatalf("rejected sell moved cash")
	}
	if l.holdings[in.Symbol].Units != units {
		t.Fatalf("rejected sell changed the position")
	}
}

func TestMajorityOwnershipFlag(t *testing.T) {
	l, in, _ := ledgerFixture(t, 100_000*MicrosPerNow)

	half, _ := SharesToUnits(51) // exactly 51% of 100 shares
	if _, err := l.buy(in, half); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if in.CompanyOwned {
		t.Fatalf("51%% exactly must not flip the flag")
	}

	one, _ := SharesToUnits(1)
	if _, err := l.buy(in, one); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if !in.CompanyOwned {
		t.Fatalf("52%% should flip the flag")
	}

	if _, err := l.sell(in, one); err != nil {
		t.Fatalf("sell: %v", err)
	}
	if in.CompanyOwned {
		t.Fatalf("flag must clear when ownership drops")
	}
}

func TestTransactionLogNewestFirstAndCapped(t *testing.T) {
	l, in, _ := ledgerFixture(t, 1_000_000*MicrosPerNow)

	tiny := int64(1) // single unit trades
	for i := 0; i < transactionLogCap+20; i++ {
		if _, err := l.buy(in, tiny); err != nil {
			t.Fatalf("buy %d: %v", i, err)
		}
	}
	txs := l.transactionList()
	if len(txs) != transactionLogCap {
		t.Fatalf("log len got %d want %d", len(txs), transactionLogCap)
	}
	if txs[0].At.Before(txs[len(txs)-1].At) {
		t.Fatalf("log is not newest first")
	}
}

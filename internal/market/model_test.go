package market

import "testing"

func TestValidateSymbol(t *testing.T) {
	valid := []string{"AB", "COBOLT", "NIMBUS"}
	for _, s := range valid {
		if err := ValidateSymbol(s); err != nil {
			t.Fatalf("expected symbol %q to be valid: %v", s, err)
		}
	}

	invalid := []string{"", "A", "abc", "ABC12", "TOOLONG", "A_BCD"}
	for _, s := range invalid {
		if err := ValidateSymbol(s); err == nil {
			t.Fatalf("expected symbol %q to fail", s)
		}
	}
}

func TestNotionalMicros(t *testing.T) {
	price := int64(150 * MicrosPerNow)
	qty := int64(25 * ShareScale / 10) // 2.5 shares
	got, err := notionalMicros(price, qty)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := int64(375 * MicrosPerNow)
	if got != want {
		t.Fatalf("got %d want %d", got, want)
	}
}

func TestDivideMicrosRoundTrip(t *testing.T) {
	invested := int64(450 * MicrosPerNow)
	units := int64(3 * ShareScale)
	avg, err := divideMicros(invested, units)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if avg != 150*MicrosPerNow {
		t.Fatalf("avg got %d want %d", avg, 150*MicrosPerNow)
	}

	if _, err := divideMicros(invested, 0); err == nil {
		t.Fatalf("expected zero quantity to fail")
	}
}

func TestSharesToUnits(t *testing.T) {
	units, err := SharesToUnits(2.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if units != 25_000 {
		t.Fatalf("got %d want 25000", units)
	}
	if UnitsToShares(units) != 2.5 {
		t.Fatalf("round trip got %f", UnitsToShares(units))
	}

	if _, err := SharesToUnits(0); err == nil {
		t.Fatalf("expected zero shares to fail")
	}
	if _, err := SharesToUnits(-1); err == nil {
		t.Fatalf("expected negative shares to fail")
	}
}

package market

import "testing"

func TestClockMinuteCarry(t *testing.T) {
	c := Clock{Day: 1, Hour: 10, Minute: 59, Open: true}
	if reopened := c.Advance(); reopened {
		t.Fatalf("carry must not reopen")
	}
	if c.Hour != 11 || c.Minute != 0 {
		t.Fatalf("got %02d:%02d want 11:00", c.Hour, c.Minute)
	}
}

func TestClockClosesAndRollsDay(t *testing.T) {
	c := Clock{Day: 3, Hour: 15, Minute: 59, Open: true}
	if reopened := c.Advance(); reopened {
		t.Fatalf("close is not a reopen")
	}
	if c.Open {
		t.Fatalf("expected closed at 16:00")
	}
	if c.Day != 4 {
		t.Fatalf("day got %d want 4", c.Day)
	}
}

func TestClockReopensAtBell(t *testing.T) {
	c := Clock{Day: 2, Hour: 9, Minute: 29, Open: false}
	reopened := c.Advance()
	if !reopened {
		t.Fatalf("expected reopen at 09:30")
	}
	if !c.Open {
		t.Fatalf("expected open session")
	}
}

func TestClockStaysClosedOvernight(t *testing.T) {
	c := Clock{Day: 1, Hour: 16, Minute: 0, Open: false}
	// 16:01 through 09:29 next morning: 17*60 + 29 minutes, all closed.
	for i := 0; i < 17*60+29; i++ {
		if reopened := c.Advance(); reopened {
			t.Fatalf("reopened early at %02d:%02d", c.Hour, c.Minute)
		}
		if c.Open {
			t.Fatalf("open overnight at %02d:%02d", c.Hour, c.Minute)
		}
	}
	if !c.Advance() {
		t.Fatalf("expected reopen at the bell")
	}
}

func TestClockFullSessionMinutes(t *testing.T) {
	c := NewClock()
	open := 0
	// Two simulated days is enough to cross a full close/reopen cycle.
	for i := 0; i < 2*24*60; i++ {
		c.Advance()
		if c.Open {
			open++
		}
	}
	// 09:30-16:00 is 390 minutes per day.
	if open < 300 || open > 2*390+60 {
		t.Fatalf("implausible open-minute count %d", open)
	}
}

func TestClockSyntheticCalendar(t *testing.T) {
	tests := []struct {
		day        int
		month      int
		dayOfMonth int
	}{
		{day: 1, month: 1, dayOfMonth: 1},
		{day: 30, month: 1, dayOfMonth: 30},
		{day: 31, month: 2, dayOfMonth: 1},
		{day: 360, month: 12, dayOfMonth: 30},
		{day: 361, month: 1, dayOfMonth: 1},
	}
	for _, tc := range tests {
		c := Clock{Day: tc.day}
		if c.Month() != tc.month || c.DayOfMonth() != tc.dayOfMonth {
			t.Fatalf("day %d: got %d/%d want %d/%d", tc.day, c.Month(), c.DayOfMonth(), tc.month, tc.dayOfMonth)
		}
	}
}

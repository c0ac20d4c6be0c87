package market

import "testing"

func TestMoodStaysBounded(t *testing.T) {
	var m Mood
	for i := 0; i < 100; i++ {
		m.Update(50)
	}
	if m.Value > moodBound {
		t.Fatalf("mood exceeded bound: %f", m.Value)
	}
	for i := 0; i < 200; i++ {
		m.Update(-50)
	}
	if m.Value < -moodBound {
		t.Fatalf("mood exceeded lower bound: %f", m.Value)
	}
}

func TestMoodDecaysTowardZero(t *testing.T) {
	m := Mood{Value: 8}
	for i := 0; i < 500; i++ {
		m.Update(0)
	}
	if m.Value > 0.01 {
		t.Fatalf("mood did not revert: %f", m.Value)
	}
}

func TestMoodLabels(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{value: -9, want: MoodBearish},
		{value: -3, want: MoodNegative},
		{value: 0, want: MoodNeutral},
		{value: 3, want: MoodPositive},
		{value: 9, want: MoodBullish},
	}
	for _, tc := range tests {
		m := Mood{Value: tc.value}
		if got := m.Label(); got != tc.want {
			t.Fatalf("value %f: got %s want %s", tc.value, got, tc.want)
		}
	}
}

func TestMoodMarketTrendSign(t *testing.T) {
	up := Mood{Value: 5}
	down := Mood{Value: -5}
	if up.MarketTrend() <= 0 || down.MarketTrend() >= 0 {
		t.Fatalf("trend signs wrong: %f %f", up.MarketTrend(), down.MarketTrend())
	}
}

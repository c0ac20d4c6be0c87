package market

// Mood labels, mapped from the bounded sentiment scalar.
const (
	MoodBearish  = "bearish"
	MoodNegative = "negative"
	MoodNeutral  = "neutral"
	MoodPositive = "positive"
	MoodBullish  = "bullish"
)

const (
	moodBound = 10.0
	moodDecay = 0.95
	// moodGain converts composite percent change into sentiment points.
	moodGain = 4.0
	// moodToTrend converts sentiment back into a per-tick return term.
	moodToTrend = 0.0015
)

// Mood is the bounded, mean-reverting market sentiment scalar.
type Mood struct {
	Value float64 `json:"value"`
}

// Update nudges sentiment by the composite's percent change, then decays
// toward zero and clamps to [-10, 10].
func (m *Mood) Update(compositePctChange float64) {
	m.Value = clampFloat((m.Value+compositePctChange*moodGain)*moodDecay, -moodBound, moodBound)
}

// MarketTrend is the momentum term fed into every instrument's sector blend.
func (m Mood) MarketTrend() float64 {
	return m.Value * moodToTrend
}

// Label maps the scalar onto the discrete sentiment bands.
func (m Mood) Label() string {
	switch {
	case m.Value <= -6:
		return MoodBearish
	case m.Value <= -2:
		return MoodNegative
	case m.Value < 2:
		return MoodNeutral
	case m.Value < 6:
		return MoodPositive
	default:
		return MoodBullish
	}
}

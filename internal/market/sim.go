package market

import "fmt"

// randSource is the single randomness hook of the simulator; tests stub it.
type randSource interface {
	Float64() float64
}

const (
	trendSmoothing    = 0.95
	trendBound        = 0.5
	pressureK         = 0.12
	pressureDecay     = 0.97
	circuitBreakerPct = 0.09

	earningsBeatProb = 0.40
	earningsMeetProb = 0.35

	dividendBump = 0.004
)

// tickEnv carries the per-tick global inputs shared by every instrument.
type tickEnv struct {
	MarketTrend float64
	// SectorShock is the active sector news modifier, already signed;
	// zero when no shock is live for the instrument's sector.
	SectorShock float64
	// Day is the clock's absolute day counter, the latch key for
	// once-per-day calendar events.
	Day        int
	Month      int
	DayOfMonth int
}

// tickOutcome reports the side effects a tick produced.
type tickOutcome struct {
	News                   []NewsItem
	DividendPerShareMicros int64
}

// simulator advances one instrument one tick. It owns no instrument state;
// the engine serializes all calls.
type simulator struct {
	tables Tables
	rng    randSource
}

func newSimulator(tables Tables, rng randSource) *simulator {
	return &simulator{tables: tables, rng: rng}
}

func (s *simulator) uniform(r Range) float64 {
	return r.Min + s.rng.Float64()*(r.Max-r.Min)
}

// tick runs the §price-update pipeline: sector/idio blend, smoothed momentum,
// pressure term, calendar events, news draw, circuit breaker, floor clamp.
func (s *simulator) tick(in *Instrument, env tickEnv) tickOutcome {
	var out tickOutcome

	sectorRandom := s.uniform(s.tables.SectorTrend[in.Sector])
	sectorImpact := 0.6*env.MarketTrend + 0.4*sectorRandom + env.SectorShock

	idio := s.uniform(Range{Min: -1, Max: 1}) * in.Volatility * in.Beta

	in.PriceTrend = clampFloat(trendSmoothing*in.PriceTrend+0.05*(sectorImpact+idio), -trendBound, trendBound)

	pressureTerm := (in.BuyPressure - in.SellPressure) * pressureK

	rawChange := 0.5*(0.4*sectorImpact+0.4*idio) + 0.3*in.PriceTrend + 0.2*pressureTerm

	if in.Earnings != nil && calendarMatches(in.Earnings.DayOfMonth, in.Earnings.Months, env) && in.LastEarningsDay != env.Day {
		in.LastEarningsDay = env.Day
		delta, item := s.earningsOutcome(in)
		rawChange += delta
		out.News = append(out.News, item)
	}
	if in.Dividend != nil && calendarMatches(in.Dividend.DayOfMonth, in.Dividend.Months, env) && in.LastDividendDay != env.Day {
		in.LastDividendDay = env.Day
		rawChange += dividendBump
		out.DividendPerShareMicros = in.Dividend.PerShareMicros
		out.News = append(out.News, newNewsItem(in.Symbol,
			fmt.Sprintf("%s pays a %.2f dividend per share", in.Name, MicrosToNow(in.Dividend.PerShareMicros)),
			dividendBump, NewsKindDividend))
	}

	if s.rng.Float64() < s.tables.InstrumentNewsProb {
		if delta, item, ok := s.drawNews(in); ok {
			rawChange += delta
			out.News = append(out.News, item)
		}
	}

	rawChange = clampFloat(rawChange, -circuitBreakerPct, circuitBreakerPct)

	next := int64(float64(in.PriceMicros) * (1 + rawChange))
	in.applyPrice(next)

	in.BuyPressure *= pressureDecay
	in.SellPressure *= pressureDecay

	return out
}

// earningsOutcome draws beat/meet/miss with magnitude scaled by valuation:
// richly valued names get bigger misses and smaller beats.
func (s *simulator) earningsOutcome(in *Instrument) (float64, NewsItem) {
	bookMicros, err := divideMicros(in.CapMicros, in.TotalUnits)
	multiple := 1.0
	if err == nil && bookMicros > 0 {
		multiple = clampFloat(float64(in.PriceMicros)/float64(bookMicros), 0.5, 2.0)
	}
	draw := s.rng.Float64()
	switch {
	case draw < earningsBeatProb:
		delta := 0.05 / multiple
		return delta, newNewsItem(in.Symbol, fmt.Sprintf("%s beats earnings expectations", in.Name), delta, NewsKindEarnings)
	case draw < earningsBeatProb+earningsMeetProb:
		delta := 0.008 * s.uniform(Range{Min: -1, Max: 1})
		return delta, newNewsItem(in.Symbol, fmt.Sprintf("%s reports earnings in line with estimates", in.Name), delta, NewsKindEarnings)
	default:
		delta := -0.06 * multiple
		return delta, newNewsItem(in.Symbol, fmt.Sprintf("%s misses earnings expectations", in.Name), delta, NewsKindEarnings)
	}
}

// drawNews picks one template from the sector table and rolls its trigger.
func (s *simulator) drawNews(in *Instrument) (float64, NewsItem, bool) {
	templates := s.tables.SectorNews[in.Sector]
	if len(templates) == 0 {
		return 0, NewsItem{}, false
	}
	idx := int(s.rng.Float64() * float64(len(templates)))
	if idx >= len(templates) {
		idx = len(templates) - 1
	}
	tmpl := templates[idx]
	if s.rng.Float64() >= tmpl.Prob {
		return 0, NewsItem{}, false
	}
	delta := tmpl.Impact
	switch tmpl.Polarity {
	case PolarityNegative:
		delta = -delta
	case PolarityNeutral:
		if s.rng.Float64() < 0.5 {
			delta = -delta
		}
	}
	return delta, newNewsItem(in.Symbol, fmt.Sprintf(tmpl.Headline, in.Name), delta, NewsKindCompany), true
}

func calendarMatches(day int, months []int, env tickEnv) bool {
	if day != env.DayOfMonth {
		return false
	}
	for _, m := range months {
		if m == env.Month {
			return true
		}
	}
	return false
}

// sectorShock is one live sector-wide news event nudging every member.
type sectorShock struct {
	Impact    float64 `json:"impact"`
	TicksLeft int     `json:"ticks_left"`
}

// maybeSectorShock rolls for a new sector-wide event. Returns the sector hit,
// a news item, and whether anything fired.
func (s *simulator) maybeSectorShock(instruments []*Instrument) (Sector, sectorShock, NewsItem, bool) {
	if s.rng.Float64() >= s.tables.SectorEventProb || len(instruments) == 0 {
		return "", sectorShock{}, NewsItem{}, false
	}
	pick := instruments[int(s.rng.Float64()*float64(len(instruments)))%len(instruments)]
	templates := s.tables.SectorNews[pick.Sector]
	if len(templates) == 0 {
		return "", sectorShock{}, NewsItem{}, false
	}
	tmpl := templates[int(s.rng.Float64()*float64(len(templates)))%len(templates)]
	impact := tmpl.Impact * 0.5
	switch tmpl.Polarity {
	case PolarityNegative:
		impact = -impact
	case PolarityNeutral:
		if s.rng.Float64() < 0.5 {
			impact = -impact
		}
	}
	shock := sectorShock{Impact: impact, TicksLeft: s.tables.SectorEventTicks}
	item := newNewsItem("", fmt.Sprintf("Sector alert: %s", fmt.Sprintf(tmpl.Headline, string(pick.Sector))), impact, NewsKindSector)
	return pick.Sector, shock, item, true
}

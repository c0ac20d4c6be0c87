package market

import "fmt"

// Sector groups instruments for trend ranges, sector indices and news tables.
type Sector string

const (
	SectorTech       Sector = "tech"
	SectorEnergy     Sector = "energy"
	SectorFinance    Sector = "finance"
	SectorHealth     Sector = "health"
	SectorConsumer   Sector = "consumer"
	SectorIndustrial Sector = "industrial"
)

// Range is an inclusive uniform sampling interval.
type Range struct {
	Min float64
	Max float64
}

// Polarity declares the sign of a news template's impact. Neutral events
// get a random sign when they fire.
type Polarity int

const (
	PolarityPositive Polarity = iota
	PolarityNegative
	PolarityNeutral
)

// NewsTemplate is one entry in a sector's or instrument's news table.
type NewsTemplate struct {
	Headline string // fmt string taking the company display name
	Prob     float64
	Impact   float64 // magnitude; sign comes from Polarity
	Polarity Polarity
}

// EarningsEntry schedules quarterly-style earnings reports.
type EarningsEntry struct {
	DayOfMonth int   `json:"day_of_month"`
	Months     []int `json:"months"`
}

// DividendEntry schedules per-share cash dividends.
type DividendEntry struct {
	DayOfMonth     int   `json:"day_of_month"`
	Months         []int `json:"months"`
	PerShareMicros int64 `json:"per_share_micros"`
}

// Tables holds every static lookup the simulator samples from. All maps are
// keyed by the Sector enum so a missing sector is a construction-time error,
// never a runtime nil.
type Tables struct {
	SectorTrend map[Sector]Range
	SectorNews  map[Sector][]NewsTemplate
	// SectorEventProb is the per-tick chance of a sector-wide news shock.
	SectorEventProb float64
	// SectorEventTicks is how long a sector shock keeps nudging prices.
	SectorEventTicks int
	// InstrumentNewsProb gates the per-instrument idiosyncratic news draw.
	InstrumentNewsProb float64
}

// DefaultTables returns the shipped trend ranges and news tables.
func DefaultTables() Tables {
	return Tables{
		SectorTrend: map[Sector]Range{
			SectorTech:       {Min: -0.014, Max: 0.018},
			SectorEnergy:     {Min: -0.016, Max: 0.014},
			SectorFinance:    {Min: -0.012, Max: 0.013},
			SectorHealth:     {Min: -0.009, Max: 0.011},
			SectorConsumer:   {Min: -0.008, Max: 0.010},
			SectorIndustrial: {Min: -0.011, Max: 0.012},
		},
		SectorNews: map[Sector][]NewsTemplate{
			SectorTech: {
				{Headline: "%s unveils a breakthrough chip design", Prob: 0.30, Impact: 0.030, Polarity: PolarityPositive},
				{Headline: "%s hit by a major data breach", Prob: 0.25, Impact: 0.035, Polarity: PolarityNegative},
				{Headline: "%s reorganizes its platform division", Prob: 0.45, Impact: 0.015, Polarity: PolarityNeutral},
			},
			SectorEnergy: {
				{Headline: "%s strikes a new supply contract", Prob: 0.35, Impact: 0.025, Polarity: PolarityPositive},
				{Headline: "%s refinery halted for inspection", Prob: 0.30, Impact: 0.030, Polarity: PolarityNegative},
				{Headline: "Commodity swings whipsaw %s", Prob: 0.35, Impact: 0.020, Polarity: PolarityNeutral},
			},
			SectorFinance: {
				{Headline: "%s beats on trading revenue", Prob: 0.35, Impact: 0.022, Polarity: PolarityPositive},
				{Headline: "Regulators open a probe into %s", Prob: 0.25, Impact: 0.032, Polarity: PolarityNegative},
				{Headline: "%s reshuffles its loan book", Prob: 0.40, Impact: 0.012, Polarity: PolarityNeutral},
			},
			SectorHealth: {
				{Headline: "%s trial results exceed expectations", Prob: 0.30, Impact: 0.034, Polarity: PolarityPositive},
				{Headline: "%s faces a product recall", Prob: 0.25, Impact: 0.030, Polarity: PolarityNegative},
				{Headline: "%s awaits an approval decision", Prob: 0.45, Impact: 0.016, Polarity: PolarityNeutral},
			},
			SectorConsumer: {
				{Headline: "%s holiday sales surge", Prob: 0.35, Impact: 0.020, Polarity: PolarityPositive},
				{Headline: "%s misses on same-store sales", Prob: 0.30, Impact: 0.024, Polarity: PolarityNegative},
				{Headline: "%s tests a new store format", Prob: 0.35, Impact: 0.010, Polarity: PolarityNeutral},
			},
			SectorIndustrial: {
				{Headline: "%s lands a fleet order", Prob: 0.35, Impact: 0.024, Polarity: PolarityPositive},
				{Headline: "%s hit by supply chain delays", Prob: 0.30, Impact: 0.026, Polarity: PolarityNegative},
				{Headline: "%s retools its assembly lines", Prob: 0.35, Impact: 0.012, Polarity: PolarityNeutral},
			},
		},
		SectorEventProb:    0.005,
		SectorEventTicks:   30,
		InstrumentNewsProb: 0.01,
	}
}

// Validate checks that every sector used by the catalog has table entries.
func (t Tables) Validate(catalog []CompanySpec) error {
	for _, c := range catalog {
		if _, ok := t.SectorTrend[c.Sector]; !ok {
			return fmt.Errorf("sector %q of %s has no trend range", c.Sector, c.Symbol)
		}
		if _, ok := t.SectorNews[c.Sector]; !ok {
			return fmt.Errorf("sector %q of %s has no news table", c.Sector, c.Symbol)
		}
	}
	return nil
}

// CompanySpec seeds one instrument.
type CompanySpec struct {
	Symbol      string
	Name        string
	Description string
	Sector      Sector
	PriceMicros int64
	Volatility  float64
	Beta        float64
	TotalUnits  int64 // share units, ShareScale per share
	CapMicros   int64
	Earnings    *EarningsEntry
	Dividend    *DividendEntry
}

// DefaultCatalog returns the shipped company roster.
func DefaultCatalog() []CompanySpec {
	q1 := []int{1, 4, 7, 10}
	q2 := []int{2, 5, 8, 11}
	q3 := []int{3, 6, 9, 12}
	return []CompanySpec{
		{Symbol: "COBOLT", Name: "Cobalt Dynamics", Sector: SectorTech, PriceMicros: 130 * MicrosPerNow, Volatility: 0.016, Beta: 1.3, TotalUnits: 900_000 * ShareScale, CapMicros: 117_000_000 * MicrosPerNow, Earnings: &EarningsEntry{DayOfMonth: 12, Months: q1}},
		{Symbol: "NIMBUS", Name: "Nimbus Labs", Sector: SectorTech, PriceMicros: 95 * MicrosPerNow, Volatility: 0.020, Beta: 1.5, TotalUnits: 700_000 * ShareScale, CapMicros: 66_500_000 * MicrosPerNow, Earnings: &EarningsEntry{DayOfMonth: 19, Months: q2}},
		{Symbol: "QUARKX", Name: "Quarkx Compute", Sector: SectorTech, PriceMicros: 135 * MicrosPerNow, Volatility: 0.018, Beta: 1.4, TotalUnits: 650_000 * ShareScale, CapMicros: 87_750_000 * MicrosPerNow, Earnings: &EarningsEntry{DayOfMonth: 5, Months: q3}},
		{Symbol: "VECTRA", Name: "Vectra AI", Sector: SectorTech, PriceMicros: 165 * MicrosPerNow, Volatility: 0.024, Beta: 1.7, TotalUnits: 500_000 * ShareScale, CapMicros: 82_500_000 * MicrosPerNow},
		{Symbol: "NEBULA", Name: "Nebula Energy", Sector: SectorEnergy, PriceMicros: 92 * MicrosPerNow, Volatility: 0.014, Beta: 1.1, TotalUnits: 1_200_000 * ShareScale, CapMicros: 110_400_000 * MicrosPerNow, Dividend: &DividendEntry{DayOfMonth: 25, Months: q1, PerShareMicros: 450_000}},
		{Symbol: "FUSION", Name: "Fusion Grid", Sector: SectorEnergy, PriceMicros: 110 * MicrosPerNow, Volatility: 0.015, Beta: 1.0, TotalUnits: 1_000_000 * ShareScale, CapMicros: 110_000_000 * MicrosPerNow, Earnings: &EarningsEntry{DayOfMonth: 8, Months: q2}},
		{Symbol: "ORBITZ", Name: "Orbitz Space", Sector: SectorEnergy, PriceMicros: 180 * MicrosPerNow, Volatility: 0.028, Beta: 1.8, TotalUnits: 400_000 * ShareScale, CapMicros: 72_000_000 * MicrosPerNow},
		{Symbol: "ARCANE", Name: "Arcane Finance", Sector: SectorFinance, PriceMicros: 145 * MicrosPerNow, Volatility: 0.012, Beta: 1.2, TotalUnits: 800_000 * ShareScale, CapMicros: 116_000_000 * MicrosPerNow, Dividend: &DividendEntry{DayOfMonth: 15, Months: q2, PerShareMicros: 600_000}},
		{Symbol: "LEDGRA", Name: "Ledgra Holdings", Sector: SectorFinance, PriceMicros: 88 * MicrosPerNow, Volatility: 0.011, Beta: 0.9, TotalUnits: 1_100_000 * ShareScale, CapMicros: 96_800_000 * MicrosPerNow, Earnings: &EarningsEntry{DayOfMonth: 22, Months: q1}},
		{Symbol: "CYBRON", Name: "Cybron Secure", Sector: SectorFinance, PriceMicros: 140 * MicrosPerNow, Volatility: 0.017, Beta: 1.3, TotalUnits: 600_000 * ShareScale, CapMicros: 84_000_000 * MicrosPerNow},
		{Symbol: "LUMINA", Name: "Lumina Health", Sector: SectorHealth, PriceMicros: 102 * MicrosPerNow, Volatility: 0.013, Beta: 0.8, TotalUnits: 950_000 * ShareScale, CapMicros: 96_900_000 * MicrosPerNow, Dividend: &DividendEntry{DayOfMonth: 10, Months: q3, PerShareMicros: 380_000}},
		{Symbol: "HELIXA", Name: "Helixa Bio", Sector: SectorHealth, PriceMicros: 76 * MicrosPerNow, Volatility: 0.022, Beta: 1.4, TotalUnits: 850_000 * ShareScale, CapMicros: 64_600_000 * MicrosPerNow, Earnings: &EarningsEntry{DayOfMonth: 17, Months: q3}},
		{Symbol: "ZENITH", Name: "Zenith Retail", Sector: SectorConsumer, PriceMicros: 75 * MicrosPerNow, Volatility: 0.010, Beta: 0.7, TotalUnits: 1_400_000 * ShareScale, CapMicros: 105_000_000 * MicrosPerNow, Dividend: &DividendEntry{DayOfMonth: 28, Months: q2, PerShareMicros: 300_000}},
		{Symbol: "SWIFTR", Name: "Swiftr Mobile", Sector: SectorConsumer, PriceMicros: 150 * MicrosPerNow, Volatility: 0.019, Beta: 1.2, TotalUnits: 550_000 * ShareScale, CapMicros: 82_500_000 * MicrosPerNow, Earnings: &EarningsEntry{DayOfMonth: 3, Months: q2}},
		{Symbol: "DATUMX", Name: "Datumx Data", Sector: SectorConsumer, PriceMicros: 85 * MicrosPerNow, Volatility: 0.012, Beta: 1.0, TotalUnits: 1_000_000 * ShareScale, CapMicros: 85_000_000 * MicrosPerNow},
		{Symbol: "PYLONS", Name: "Pylon Networks", Sector: SectorIndustrial, PriceMicros: 80 * MicrosPerNow, Volatility: 0.013, Beta: 0.9, TotalUnits: 1_300_000 * ShareScale, CapMicros: 104_000_000 * MicrosPerNow, Earnings: &EarningsEntry{DayOfMonth: 14, Months: q1}},
		{Symbol: "RUSTIC", Name: "Rustic Systems", Sector: SectorIndustrial, PriceMicros: 115 * MicrosPerNow, Volatility: 0.014, Beta: 1.1, TotalUnits: 750_000 * ShareScale, CapMicros: 86_250_000 * MicrosPerNow, Dividend: &DividendEntry{DayOfMonth: 20, Months: q3, PerShareMicros: 520_000}},
		{Symbol: "KINETA", Name: "Kineta Motors", Sector: SectorIndustrial, PriceMicros: 120 * MicrosPerNow, Volatility: 0.016, Beta: 1.2, TotalUnits: 700_000 * ShareScale, CapMicros: 84_000_000 * MicrosPerNow},
	}
}

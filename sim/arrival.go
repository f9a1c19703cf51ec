package sim

import "math"

// Evening peak window, inclusive hours.
const (
	PeakStartHour = 18
	PeakEndHour   = 23
)

// BaseArrivalProb is the per-tick probability of a new wash request for a
// population with the given weekly washing habit:
// population × weeklyWashesPerPerson / 7 / 1440.
func BaseArrivalProb(population int, weeklyWashesPerPerson float64) float64 {
	daily := float64(population) * weeklyWashesPerPerson / DaysPerWeek
	return daily / TicksPerDay
}

// PeakWeight scales the base arrival probability at a tick.
// Outside 18:00–23:59 it is 1.0; inside it is a Gaussian bump centred at
// x=0.5 on x=(hour-18)/5, i.e. around 20:30. The constants are tuned and
// kept literally.
func PeakWeight(tick int64, peakMultiplier float64) float64 {
	hour := HourOf(tick)
	if hour < PeakStartHour || hour > PeakEndHour {
		return 1.0
	}
	x := float64(hour-PeakStartHour) / 5.0
	return 1.0 + peakMultiplier*math.Exp(-((x-0.5)*(x-0.5))/0.08)
}

// ArrivalGenerator draws at most one wash request per tick.
type ArrivalGenerator struct {
	baseProb       float64
	peakMultiplier float64
}

// NewArrivalGenerator creates an ArrivalGenerator for a pool configuration.
func NewArrivalGenerator(cfg PoolConfig) *ArrivalGenerator {
	return &ArrivalGenerator{
		baseProb:       BaseArrivalProb(cfg.Population, cfg.WeeklyWashesPerPerson),
		peakMultiplier: cfg.PeakMultiplier,
	}
}

// BaseProb returns the off-peak per-tick arrival probability.
func (g *ArrivalGenerator) BaseProb() float64 {
	return g.baseProb
}

// Prob returns the arrival probability at tick, capped at 1.
func (g *ArrivalGenerator) Prob(tick int64) float64 {
	return math.Min(1.0, g.baseProb*PeakWeight(tick, g.peakMultiplier))
}

// Sample consumes one uniform draw and reports whether a request arrives.
func (g *ArrivalGenerator) Sample(tick int64, rng RandomSource) bool {
	return rng.Float64() < g.Prob(tick)
}

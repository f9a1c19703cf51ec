package eventlog

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// Relative hour weights. Weekdays build up towards a late-evening rush;
// weekends peak in the early afternoon.
var (
	weekdayHourWeights = hourWeights(
		band{7, 0.5}, // 00–06
		band{5, 1.5}, // 07–11
		band{5, 2.8}, // 12–16
		band{4, 4.5}, // 17–20
		band{3, 7.5}, // 21–23
	)
	weekendHourWeights = hourWeights(
		band{9, 0.5}, // 00–08
		band{4, 2.0}, // 09–12
		band{4, 6.0}, // 13–16
		band{3, 4.0}, // 17–19
		band{4, 1.5}, // 20–23
	)
)

type band struct {
	hours  int
	weight float64
}

func hourWeights(bands ...band) []float64 {
	w := make([]float64, 0, 24)
	for _, b := range bands {
		for i := 0; i < b.hours; i++ {
			w = append(w, b.weight)
		}
	}
	if len(w) != 24 {
		panic(fmt.Sprintf("hourWeights: %d hours, want 24", len(w)))
	}
	return w
}

// GeneratorConfig parameterizes a synthetic event log.
type GeneratorConfig struct {
	Rooms      []string `yaml:"rooms"`
	Events     int      `yaml:"events"`
	WashWeight float64  `yaml:"wash_weight"` // relative frequency of wash events
	DryWeight  float64  `yaml:"dry_weight"`  // relative frequency of dry events
	WashMin    int      `yaml:"wash_min"`    // wash duration bounds, minutes
	WashMax    int      `yaml:"wash_max"`
	DryMin     int      `yaml:"dry_min"` // dry duration bounds, minutes
	DryMax     int      `yaml:"dry_max"`
}

// DefaultGeneratorConfig returns 4000 events over two rooms with a 2:1
// wash/dry mix.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Rooms:      []string{"men", "women"},
		Events:     4000,
		WashWeight: 2,
		DryWeight:  1,
		WashMin:    40,
		WashMax:    60,
		DryMin:     90,
		DryMax:     120,
	}
}

// Validate checks that events can be generated.
func (c GeneratorConfig) Validate() error {
	if len(c.Rooms) == 0 {
		return fmt.Errorf("at least one room required")
	}
	if c.Events < 0 {
		return fmt.Errorf("events must be non-negative, got %d", c.Events)
	}
	if c.WashWeight < 0 || c.DryWeight < 0 || c.WashWeight+c.DryWeight <= 0 {
		return fmt.Errorf("wash_weight and dry_weight must be non-negative with a positive sum")
	}
	if c.WashMin < 0 || c.WashMax < c.WashMin {
		return fmt.Errorf("wash duration bounds invalid: [%d, %d]", c.WashMin, c.WashMax)
	}
	if c.DryMin < 0 || c.DryMax < c.DryMin {
		return fmt.Errorf("dry duration bounds invalid: [%d, %d]", c.DryMin, c.DryMax)
	}
	return nil
}

// Generate draws cfg.Events independent events.
// Room and day are uniform; the hour follows the weekday or weekend weight
// table; minutes fall on 10-minute marks.
func Generate(cfg GeneratorConfig, rng *rand.Rand) ([]Event, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	washShare := cfg.WashWeight / (cfg.WashWeight + cfg.DryWeight)
	events := make([]Event, 0, cfg.Events)
	for i := 0; i < cfg.Events; i++ {
		room := cfg.Rooms[rng.Intn(len(cfg.Rooms))]
		dow := rng.Intn(7)
		weights := weekdayHourWeights
		if dow >= 5 {
			weights = weekendHourWeights
		}
		hour := weightedIndex(rng, weights)
		minute := 10 * rng.Intn(6)

		e := Event{Room: room, DayOfWeek: dow, Hour: hour, Minute: minute}
		if rng.Float64() < washShare {
			e.Kind = KindWash
			e.Duration = cfg.WashMin + rng.Intn(cfg.WashMax-cfg.WashMin+1)
		} else {
			e.Kind = KindDry
			e.Duration = cfg.DryMin + rng.Intn(cfg.DryMax-cfg.DryMin+1)
		}
		events = append(events, e)
	}
	logrus.Debugf("generated %d events across %d rooms", len(events), len(cfg.Rooms))
	return events, nil
}

// weightedIndex returns i with probability weights[i]/sum(weights).
func weightedIndex(rng *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	u := rng.Float64() * total
	for i, w := range weights {
		if u < w {
			return i
		}
		u -= w
	}
	return len(weights) - 1
}

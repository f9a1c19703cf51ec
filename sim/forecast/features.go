package forecast

import (
	"fmt"
	"slices"

	"github.com/laundry-sim/laundry-sim/sim"
	"github.com/laundry-sim/laundry-sim/sim/label"
	"github.com/laundry-sim/laundry-sim/sim/slots"
)

// DefaultFeatures is the feature schema used unless training says otherwise.
var DefaultFeatures = []string{"hour", "day_of_week", "is_weekend", "room_code", "last_1h", "last_3h"}

// RecordFeatures is the schema of models trained on tick-level usage
// records, which carry only calendar fields.
var RecordFeatures = []string{"hour", "day_of_week", "is_weekend"}

// featureExtractors maps each schema name to a slot column.
var featureExtractors = map[string]func(slots.Slot) float64{
	"hour":        func(s slots.Slot) float64 { return float64(s.Hour) },
	"day_of_week": func(s slots.Slot) float64 { return float64(s.DayOfWeek) },
	"is_weekend": func(s slots.Slot) float64 {
		if s.IsWeekend {
			return 1
		}
		return 0
	},
	"room_code": func(s slots.Slot) float64 { return float64(s.RoomCode) },
	"last_1h":   func(s slots.Slot) float64 { return s.Last1h },
	"last_3h":   func(s slots.Slot) float64 { return s.Last3h },
}

// ValidateFeatures checks that names is a non-empty list of known,
// distinct feature names.
func ValidateFeatures(names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("%w: empty feature schema", sim.ErrInvalidConfig)
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := featureExtractors[n]; !ok {
			return fmt.Errorf("%w: unknown feature %q", sim.ErrInvalidConfig, n)
		}
		if seen[n] {
			return fmt.Errorf("%w: duplicate feature %q", sim.ErrInvalidConfig, n)
		}
		seen[n] = true
	}
	return nil
}

// FeatureRow projects one slot onto the schema. Names must be validated.
func FeatureRow(s slots.Slot, names []string) []float64 {
	row := make([]float64, len(names))
	for i, n := range names {
		row[i] = featureExtractors[n](s)
	}
	return row
}

// Dataset builds the feature matrix and congestion labels of a slot table.
func Dataset(table []slots.Slot, names []string) ([][]float64, []int, error) {
	if err := ValidateFeatures(names); err != nil {
		return nil, nil, err
	}
	if len(table) == 0 {
		return nil, nil, fmt.Errorf("%w: empty slot table", sim.ErrInsufficientData)
	}
	X := make([][]float64, len(table))
	y := make([]int, len(table))
	for i, s := range table {
		X[i] = FeatureRow(s, names)
		y[i] = s.Congestion
	}
	return X, y, nil
}

// RecordDataset builds one row per usage record, labeled with the live
// policy. Names must be a subset of RecordFeatures.
func RecordDataset(records []sim.UsageRecord, names []string) ([][]float64, []int, error) {
	if err := ValidateFeatures(names); err != nil {
		return nil, nil, err
	}
	for _, n := range names {
		if !slices.Contains(RecordFeatures, n) {
			return nil, nil, fmt.Errorf("%w: feature %q is not available on usage records", sim.ErrInvalidConfig, n)
		}
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%w: no usage records", sim.ErrInsufficientData)
	}
	X := make([][]float64, len(records))
	for i, r := range records {
		X[i] = FeatureRow(slots.Slot{Room: r.Room, DayOfWeek: r.DayOfWeek, Hour: r.Hour, IsWeekend: r.IsWeekend}, names)
	}
	return X, label.LabelRecords(records), nil
}

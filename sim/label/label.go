// Package label maps usage measurements to ordinal congestion levels.
//
// Two policies exist:
//   - live: instantaneous active-washer count to levels 0..3
//   - historical: decile rank of a slot population's weighted usage to levels 1..10
//
// Both are pure functions of their input.
package label

import (
	"fmt"
	"math"
	"sort"

	"github.com/laundry-sim/laundry-sim/sim"
)

// Policy names a labeling strategy.
type Policy string

const (
	PolicyLive       Policy = "live"
	PolicyHistorical Policy = "historical"
)

// Number of ordinal levels each policy produces.
const (
	LiveClasses       = 4
	HistoricalClasses = 10
)

// validPolicies is shared by IsValidPolicy and New.
var validPolicies = map[Policy]bool{PolicyLive: true, PolicyHistorical: true}

// IsValidPolicy reports whether name is a recognized policy.
func IsValidPolicy(name string) bool { return validPolicies[Policy(name)] }

// ValidPolicyNames returns the recognized policy names, sorted.
func ValidPolicyNames() []string {
	names := make([]string, 0, len(validPolicies))
	for p := range validPolicies {
		names = append(names, string(p))
	}
	sort.Strings(names)
	return names
}

// ClassRange returns the smallest and largest level a policy produces.
func ClassRange(p Policy) (lo, hi int, err error) {
	switch p {
	case PolicyLive:
		return 0, LiveClasses - 1, nil
	case PolicyHistorical:
		return 1, HistoricalClasses, nil
	}
	return 0, 0, fmt.Errorf("%w: unknown label policy %q", sim.ErrInvalidConfig, p)
}

// Labeler assigns one ordinal level per input value, preserving order.
type Labeler interface {
	Policy() Policy
	NumClasses() int
	Label(values []float64) ([]int, error)
}

// New returns the labeler for a policy name.
func New(name string) (Labeler, error) {
	switch Policy(name) {
	case PolicyLive:
		return liveLabeler{}, nil
	case PolicyHistorical:
		return historicalLabeler{}, nil
	}
	return nil, fmt.Errorf("%w: unknown label policy %q; valid: %v", sim.ErrInvalidConfig, name, ValidPolicyNames())
}

// Live maps an active-washer count to a level:
// ≤2 → 0, ≤5 → 1, ≤7 → 2, otherwise 3.
func Live(active int) int {
	switch {
	case active <= 2:
		return 0
	case active <= 5:
		return 1
	case active <= 7:
		return 2
	default:
		return 3
	}
}

// Historical ranks values ascending (ties keep input order) and assigns
// label = floor(rank*10/n) + 1, giving ten equal-sized groups labeled 1..10.
// Returns sim.ErrInsufficientData for fewer than ten values.
func Historical(values []float64) ([]int, error) {
	n := len(values)
	if n < HistoricalClasses {
		return nil, fmt.Errorf("%w: decile labeling needs at least %d values, got %d",
			sim.ErrInsufficientData, HistoricalClasses, n)
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})
	labels := make([]int, n)
	for rank, idx := range order {
		labels[idx] = rank*HistoricalClasses/n + 1
	}
	return labels, nil
}

// LabelRecords applies the live policy to every usage record.
func LabelRecords(records []sim.UsageRecord) []int {
	labels := make([]int, len(records))
	for i, r := range records {
		labels[i] = Live(r.ActiveWashers)
	}
	return labels
}

type liveLabeler struct{}

func (liveLabeler) Policy() Policy  { return PolicyLive }
func (liveLabeler) NumClasses() int { return LiveClasses }

// Label rounds each value to the nearest active count before mapping.
func (liveLabeler) Label(values []float64) ([]int, error) {
	labels := make([]int, len(values))
	for i, v := range values {
		if math.IsNaN(v) || v < 0 {
			return nil, fmt.Errorf("value %d: active count must be non-negative, got %v", i, v)
		}
		labels[i] = Live(int(math.Round(v)))
	}
	return labels, nil
}

type historicalLabeler struct{}

func (historicalLabeler) Policy() Policy                        { return PolicyHistorical }
func (historicalLabeler) NumClasses() int                       { return HistoricalClasses }
func (historicalLabeler) Label(values []float64) ([]int, error) { return Historical(values) }

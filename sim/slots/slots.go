// Package slots reduces usage data into (room, day-of-week, hour) slots with
// rolling history features, the training table for congestion forecasting.
package slots

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/laundry-sim/laundry-sim/sim"
	"github.com/laundry-sim/laundry-sim/sim/label"
)

// Slot is one aggregation bucket of the weekly cycle for one room.
type Slot struct {
	Room          string
	RoomCode      int
	DayOfWeek     int
	Hour          int
	WeightedUsage float64
	Congestion    int
	IsWeekend     bool
	Last1h        float64 // WeightedUsage of the previous slot in this room
	Last3h        float64 // mean WeightedUsage of the three previous slots, zero-padded

	// Occupancy-mode statistics. Not part of the CSV table.
	MeanActive float64
	Samples    int
}

// RoomIndex maps room names to the numeric codes used as a model feature.
type RoomIndex map[string]int

// Code returns the code of room, or an ErrInvalidConfig error if unknown.
func (ri RoomIndex) Code(room string) (int, error) {
	code, ok := ri[room]
	if !ok {
		return 0, fmt.Errorf("%w: room %q has no room code", sim.ErrInvalidConfig, room)
	}
	return code, nil
}

// Validate checks that no two rooms share a code.
func (ri RoomIndex) Validate() error {
	owner := make(map[int]string, len(ri))
	for room, code := range ri {
		if other, dup := owner[code]; dup {
			a, b := min(room, other), max(room, other)
			return fmt.Errorf("%w: rooms %q and %q share room code %d", sim.ErrInvalidConfig, a, b, code)
		}
		owner[code] = room
	}
	return nil
}

// historyWindow is the number of preceding slots averaged into Last3h.
const historyWindow = 3

// Aggregate reduces src into slots, fills rolling features, and returns them
// ordered by (room code, day of week, hour). Congestion is left at zero;
// see ApplyLabels.
func Aggregate(src Source, rooms RoomIndex) ([]Slot, error) {
	if err := rooms.Validate(); err != nil {
		return nil, err
	}
	out, err := src.slots(rooms)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s source produced no slots", sim.ErrInsufficientData, src.Mode())
	}
	sortSlots(out)
	fillHistory(out)
	logrus.Debugf("aggregated %d slots from %s source", len(out), src.Mode())
	return out, nil
}

// Build aggregates src and labels the result with the named policy.
func Build(src Source, rooms RoomIndex, policy string) ([]Slot, error) {
	labeler, err := label.New(policy)
	if err != nil {
		return nil, err
	}
	out, err := Aggregate(src, rooms)
	if err != nil {
		return nil, err
	}
	if err := ApplyLabels(out, src.Mode(), labeler); err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyLabels sets Congestion on every slot.
// The live policy labels each slot's rounded MeanActive and therefore needs
// occupancy-mode slots; the historical policy ranks WeightedUsage over the
// whole population.
func ApplyLabels(slots []Slot, mode SourceMode, labeler label.Labeler) error {
	values := make([]float64, len(slots))
	switch labeler.Policy() {
	case label.PolicyLive:
		if mode != ModeOccupancy {
			return fmt.Errorf("%w: %s labels need the %s source, got %s",
				sim.ErrInvalidConfig, label.PolicyLive, ModeOccupancy, mode)
		}
		for i, s := range slots {
			values[i] = s.MeanActive
		}
	default:
		for i, s := range slots {
			values[i] = s.WeightedUsage
		}
	}
	labels, err := labeler.Label(values)
	if err != nil {
		return err
	}
	for i := range slots {
		slots[i].Congestion = labels[i]
	}
	return nil
}

func sortSlots(s []Slot) {
	sort.SliceStable(s, func(i, j int) bool {
		a, b := s[i], s[j]
		if a.RoomCode != b.RoomCode {
			return a.RoomCode < b.RoomCode
		}
		if a.Room != b.Room {
			return a.Room < b.Room
		}
		if a.DayOfWeek != b.DayOfWeek {
			return a.DayOfWeek < b.DayOfWeek
		}
		return a.Hour < b.Hour
	})
}

// fillHistory computes Last1h and Last3h over slots already sorted by
// (room code, room, day, hour). History resets at every room boundary.
func fillHistory(s []Slot) {
	start := 0
	for i := range s {
		if s[i].Room != s[start].Room {
			start = i
		}
		window := make([]float64, historyWindow)
		for k := 1; k <= historyWindow; k++ {
			if i-k >= start {
				window[historyWindow-k] = s[i-k].WeightedUsage
			}
		}
		s[i].Last1h = window[historyWindow-1]
		s[i].Last3h = stat.Mean(window, nil)
	}
}

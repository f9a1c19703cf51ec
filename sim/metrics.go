// Tracks per-room pool statistics such as arrivals, completions and bails.

package sim

import (
	"fmt"
	"io"
)

// Metrics aggregates statistics about one room's simulation
// for final reporting.
type Metrics struct {
	Room  string
	Ticks int64 // simulated ticks

	Arrivals        int // wash requests generated
	WashesStarted   int
	WashesCompleted int
	DryEnqueued     int // completed washes that joined the dry queue
	DriesStarted    int
	DriesCompleted  int
	Bailed          int // dry requests that abandoned the queue
	Forgotten       int // starts extended by a forget delay

	BusyWasherMinutes int64 // integral of active washers over time
	BusyDryerMinutes  int64 // integral of active dryers over time
	PeakWashQueue     int
	PeakDryQueue      int
}

// NewMetrics returns empty metrics for room.
func NewMetrics(room string) *Metrics {
	return &Metrics{Room: room}
}

// Observe folds one tick's outcome and resulting state into the metrics.
func (m *Metrics) Observe(out StepOutcome, state State) {
	m.Ticks++
	if out.Arrived {
		m.Arrivals++
	}
	m.WashesStarted += out.WashesStarted
	m.WashesCompleted += out.WashesCompleted
	m.DryEnqueued += out.DryEnqueued
	m.DriesStarted += out.DriesStarted
	m.DriesCompleted += out.DriesCompleted
	m.Bailed += out.Bailed
	m.Forgotten += out.Forgotten
	m.BusyWasherMinutes += int64(state.ActiveWashers())
	m.BusyDryerMinutes += int64(state.ActiveDryers())
	m.PeakWashQueue = max(m.PeakWashQueue, state.WashQueue)
	m.PeakDryQueue = max(m.PeakDryQueue, state.DryQueue)
}

// Print writes the aggregated metrics at the end of a run.
func (m *Metrics) Print(w io.Writer) {
	fmt.Fprintf(w, "=== Simulation Metrics (%s) ===\n", m.Room)
	fmt.Fprintf(w, "Simulated Minutes    : %d\n", m.Ticks)
	fmt.Fprintf(w, "Wash Arrivals        : %d\n", m.Arrivals)
	fmt.Fprintf(w, "Washes Completed     : %d\n", m.WashesCompleted)
	fmt.Fprintf(w, "Dries Completed      : %d\n", m.DriesCompleted)
	fmt.Fprintf(w, "Dry Requests Bailed  : %d\n", m.Bailed)
	fmt.Fprintf(w, "Forgotten Loads      : %d\n", m.Forgotten)
	fmt.Fprintf(w, "Peak Wash Queue      : %d\n", m.PeakWashQueue)
	fmt.Fprintf(w, "Peak Dry Queue       : %d\n", m.PeakDryQueue)
	if m.Ticks > 0 {
		fmt.Fprintf(w, "Average Busy Washers : %.2f\n", float64(m.BusyWasherMinutes)/float64(m.Ticks))
		fmt.Fprintf(w, "Average Busy Dryers  : %.2f\n", float64(m.BusyDryerMinutes)/float64(m.Ticks))
	}
}

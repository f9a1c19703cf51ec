// Package eventlog produces and parses raw laundry event logs: one row per
// machine use, keyed by room, day of week, hour and minute.
package eventlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Kind is the machine type of an event.
type Kind string

const (
	KindWash Kind = "wash"
	KindDry  Kind = "dry"
)

// IsValid reports whether k is a known machine type.
func (k Kind) IsValid() bool {
	return k == KindWash || k == KindDry
}

// Event is one machine use from a raw usage log.
type Event struct {
	Room      string
	DayOfWeek int // 0=Monday .. 6=Sunday
	Hour      int
	Minute    int
	Kind      Kind
	Duration  int // minutes
}

// Validate checks the event's calendar fields and kind.
func (e Event) Validate() error {
	switch {
	case e.Room == "":
		return fmt.Errorf("room must not be empty")
	case e.DayOfWeek < 0 || e.DayOfWeek > 6:
		return fmt.Errorf("day_of_week must be in [0, 6], got %d", e.DayOfWeek)
	case e.Hour < 0 || e.Hour > 23:
		return fmt.Errorf("hour must be in [0, 23], got %d", e.Hour)
	case e.Minute < 0 || e.Minute > 59:
		return fmt.Errorf("minute must be in [0, 59], got %d", e.Minute)
	case !e.Kind.IsValid():
		return fmt.Errorf("unknown machine_type %q; valid: wash, dry", e.Kind)
	case e.Duration < 0:
		return fmt.Errorf("duration_min must be non-negative, got %d", e.Duration)
	}
	return nil
}

// CSV column headers for raw event logs.
var columns = []string{"room_type", "day_of_week", "hour", "minute", "machine_type", "duration_min"}

// WriteCSV writes events with a header row.
func WriteCSV(w io.Writer, events []Event) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i, e := range events {
		row := []string{
			e.Room,
			strconv.Itoa(e.DayOfWeek),
			strconv.Itoa(e.Hour),
			strconv.Itoa(e.Minute),
			string(e.Kind),
			strconv.Itoa(e.Duration),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadCSV reads and validates an event log written by WriteCSV.
func ReadCSV(r io.Reader) ([]Event, error) {
	reader := csv.NewReader(r)

	// Skip header row
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	var events []Event
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}
		if len(row) < len(columns) {
			return nil, fmt.Errorf("CSV line %d has %d columns, expected %d", line, len(row), len(columns))
		}
		e, err := parseEvent(row)
		if err != nil {
			return nil, fmt.Errorf("CSV line %d: %w", line, err)
		}
		events = append(events, e)
	}
	return events, nil
}

func parseEvent(row []string) (Event, error) {
	var nums [4]int
	for i, col := range []int{1, 2, 3, 5} {
		v, err := strconv.Atoi(row[col])
		if err != nil {
			return Event{}, fmt.Errorf("%s: %w", columns[col], err)
		}
		nums[i] = v
	}
	e := Event{
		Room:      row[0],
		DayOfWeek: nums[0],
		Hour:      nums[1],
		Minute:    nums[2],
		Kind:      Kind(row[4]),
		Duration:  nums[3],
	}
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	return e, nil
}

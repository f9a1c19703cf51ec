package sim

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// UsageRecord is one room's occupancy snapshot at the end of a tick.
// Records are values: created by the simulator, never mutated afterwards.
type UsageRecord struct {
	Room          string
	Tick          int64
	Hour          int
	DayOfWeek     int
	IsWeekend     bool
	ActiveWashers int
	ActiveDryers  int
	WashQueue     int
	DryQueue      int
}

// Day returns the simulated day index of the record.
func (r UsageRecord) Day() int64 {
	return r.Tick / TicksPerDay
}

// NewUsageRecord snapshots state at tick for room.
func NewUsageRecord(room string, tick int64, state State) UsageRecord {
	tf := TimeOf(tick)
	return UsageRecord{
		Room:          room,
		Tick:          tick,
		Hour:          tf.Hour,
		DayOfWeek:     tf.DayOfWeek,
		IsWeekend:     tf.IsWeekend,
		ActiveWashers: state.ActiveWashers(),
		ActiveDryers:  state.ActiveDryers(),
		WashQueue:     state.WashQueue,
		DryQueue:      state.DryQueue,
	}
}

// CSV column headers for usage records.
var recordColumns = []string{
	"room", "tick", "hour", "day_of_week", "is_weekend",
	"active_washers", "active_dryers", "wash_queue", "dry_queue",
}

// WriteRecordsCSV writes records with a header row.
func WriteRecordsCSV(w io.Writer, records []UsageRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(recordColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.Room,
			strconv.FormatInt(r.Tick, 10),
			strconv.Itoa(r.Hour),
			strconv.Itoa(r.DayOfWeek),
			boolToBit(r.IsWeekend),
			strconv.Itoa(r.ActiveWashers),
			strconv.Itoa(r.ActiveDryers),
			strconv.Itoa(r.WashQueue),
			strconv.Itoa(r.DryQueue),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row for %s tick %d: %w", r.Room, r.Tick, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadRecordsCSV reads records written by WriteRecordsCSV.
func ReadRecordsCSV(r io.Reader) ([]UsageRecord, error) {
	reader := csv.NewReader(r)

	// Skip header row
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	var records []UsageRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}
		if len(row) < len(recordColumns) {
			return nil, fmt.Errorf("CSV line %d has %d columns, expected %d", line, len(row), len(recordColumns))
		}
		rec, err := parseRecord(row)
		if err != nil {
			return nil, fmt.Errorf("CSV line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRecord(row []string) (UsageRecord, error) {
	var ints [6]int
	for i, col := range []int{2, 3, 5, 6, 7, 8} {
		v, err := strconv.Atoi(row[col])
		if err != nil {
			return UsageRecord{}, fmt.Errorf("%s: %w", recordColumns[col], err)
		}
		ints[i] = v
	}
	tick, err := strconv.ParseInt(row[1], 10, 64)
	if err != nil {
		return UsageRecord{}, fmt.Errorf("tick: %w", err)
	}
	weekend, err := parseBit(row[4])
	if err != nil {
		return UsageRecord{}, fmt.Errorf("is_weekend: %w", err)
	}
	return UsageRecord{
		Room:          row[0],
		Tick:          tick,
		Hour:          ints[0],
		DayOfWeek:     ints[1],
		IsWeekend:     weekend,
		ActiveWashers: ints[2],
		ActiveDryers:  ints[3],
		WashQueue:     ints[4],
		DryQueue:      ints[5],
	}, nil
}

func boolToBit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func parseBit(s string) (bool, error) {
	switch s {
	case "1", "true":
		return true, nil
	case "0", "false":
		return false, nil
	}
	return false, fmt.Errorf("invalid flag %q", s)
}

package slots

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/laundry-sim/laundry-sim/sim"
)

// Columns of the slot feature table. Trained artifacts depend on these
// names and meanings.
var Columns = []string{
	"room_type", "day_of_week", "hour", "weighted_usage", "congestion",
	"is_weekend", "room_code", "last_1h", "last_3h",
}

// ParseSourceMode validates a source mode name.
func ParseSourceMode(name string) (SourceMode, error) {
	switch m := SourceMode(name); m {
	case ModeOccupancy, ModeEventLog:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown slot source %q; valid: %s, %s",
		sim.ErrInvalidConfig, name, ModeOccupancy, ModeEventLog)
}

// WriteCSV writes the slot table with a header row.
func WriteCSV(w io.Writer, slots []Slot) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Columns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i, s := range slots {
		row := []string{
			s.Room,
			strconv.Itoa(s.DayOfWeek),
			strconv.Itoa(s.Hour),
			formatFloat(s.WeightedUsage),
			strconv.Itoa(s.Congestion),
			strconv.Itoa(bit(s.IsWeekend)),
			strconv.Itoa(s.RoomCode),
			formatFloat(s.Last1h),
			formatFloat(s.Last3h),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadCSV reads a slot table. Columns are located by header name, so extra
// columns and reordering are tolerated; every column in Columns must exist.
func ReadCSV(r io.Reader) ([]Slot, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}
	for _, c := range Columns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("slot table missing column %q", c)
		}
	}

	var out []Slot
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}
		s, err := parseSlot(row, idx)
		if err != nil {
			return nil, fmt.Errorf("CSV line %d: %w", line, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func parseSlot(row []string, idx map[string]int) (Slot, error) {
	field := func(name string) string { return row[idx[name]] }
	ints := map[string]int{}
	for _, name := range []string{"day_of_week", "hour", "congestion", "is_weekend", "room_code"} {
		v, err := strconv.Atoi(field(name))
		if err != nil {
			return Slot{}, fmt.Errorf("%s: %w", name, err)
		}
		ints[name] = v
	}
	floats := map[string]float64{}
	for _, name := range []string{"weighted_usage", "last_1h", "last_3h"} {
		v, err := strconv.ParseFloat(field(name), 64)
		if err != nil {
			return Slot{}, fmt.Errorf("%s: %w", name, err)
		}
		floats[name] = v
	}
	s := Slot{
		Room:          field("room_type"),
		RoomCode:      ints["room_code"],
		DayOfWeek:     ints["day_of_week"],
		Hour:          ints["hour"],
		WeightedUsage: floats["weighted_usage"],
		Congestion:    ints["congestion"],
		IsWeekend:     ints["is_weekend"] != 0,
		Last1h:        floats["last_1h"],
		Last3h:        floats["last_3h"],
	}
	if s.DayOfWeek < 0 || s.DayOfWeek >= sim.DaysPerWeek {
		return Slot{}, fmt.Errorf("day_of_week out of range: %d", s.DayOfWeek)
	}
	if s.Hour < 0 || s.Hour >= sim.HoursPerDay {
		return Slot{}, fmt.Errorf("hour out of range: %d", s.Hour)
	}
	return s, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func bit(b bool) int {
	if b {
		return 1
	}
	return 0
}

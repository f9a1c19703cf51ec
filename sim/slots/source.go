package slots

import (
	"fmt"

	"github.com/laundry-sim/laundry-sim/sim"
	"github.com/laundry-sim/laundry-sim/sim/eventlog"
)

// SourceMode names how slots are derived.
type SourceMode string

const (
	// ModeOccupancy reduces a tick-level occupancy series.
	ModeOccupancy SourceMode = "occupancy"
	// ModeEventLog counts raw wash/dry events.
	ModeEventLog SourceMode = "eventlog"
)

// Minutes of load credited per event when weighting an event log.
const (
	WashWeight = 50
	DryWeight  = 120
)

// Source yields unsorted slots without history features.
type Source interface {
	Mode() SourceMode
	slots(rooms RoomIndex) ([]Slot, error)
}

type slotKey struct {
	room      string
	dayOfWeek int
	hour      int
}

// OccupancySource aggregates simulator usage records.
// WeightedUsage is the busy washer-minutes of the slot averaged over the
// distinct days that contributed to it; MeanActive is the mean number of
// busy washers per tick. Only observed slots are emitted.
type OccupancySource struct {
	Records []sim.UsageRecord
}

func (OccupancySource) Mode() SourceMode { return ModeOccupancy }

func (o OccupancySource) slots(rooms RoomIndex) ([]Slot, error) {
	type acc struct {
		busy  int
		ticks int
		days  map[int64]struct{}
	}
	accs := make(map[slotKey]*acc)
	var keys []slotKey
	for _, r := range o.Records {
		k := slotKey{r.Room, r.DayOfWeek, r.Hour}
		a, ok := accs[k]
		if !ok {
			a = &acc{days: make(map[int64]struct{})}
			accs[k] = a
			keys = append(keys, k)
		}
		a.busy += r.ActiveWashers
		a.ticks++
		a.days[r.Day()] = struct{}{}
	}

	out := make([]Slot, 0, len(keys))
	for _, k := range keys {
		code, err := rooms.Code(k.room)
		if err != nil {
			return nil, err
		}
		a := accs[k]
		out = append(out, Slot{
			Room:          k.room,
			RoomCode:      code,
			DayOfWeek:     k.dayOfWeek,
			Hour:          k.hour,
			WeightedUsage: float64(a.busy) / float64(len(a.days)),
			IsWeekend:     sim.IsWeekend(k.dayOfWeek),
			MeanActive:    float64(a.busy) / float64(a.ticks),
			Samples:       a.ticks,
		})
	}
	return out, nil
}

// EventLogSource aggregates a raw event log.
// WeightedUsage = washCount*WashWeight + dryCount*DryWeight, and every room
// present in the log receives the full 7x24 grid.
type EventLogSource struct {
	Events []eventlog.Event
}

func (EventLogSource) Mode() SourceMode { return ModeEventLog }

func (e EventLogSource) slots(rooms RoomIndex) ([]Slot, error) {
	type counts struct{ wash, dry int }
	byKey := make(map[slotKey]*counts)
	var roomOrder []string
	seen := make(map[string]bool)
	for i, ev := range e.Events {
		if err := ev.Validate(); err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		if !seen[ev.Room] {
			if _, err := rooms.Code(ev.Room); err != nil {
				return nil, err
			}
			seen[ev.Room] = true
			roomOrder = append(roomOrder, ev.Room)
		}
		k := slotKey{ev.Room, ev.DayOfWeek, ev.Hour}
		c, ok := byKey[k]
		if !ok {
			c = &counts{}
			byKey[k] = c
		}
		if ev.Kind == eventlog.KindWash {
			c.wash++
		} else {
			c.dry++
		}
	}

	out := make([]Slot, 0, len(roomOrder)*sim.DaysPerWeek*sim.HoursPerDay)
	for _, room := range roomOrder {
		code := rooms[room]
		for dow := 0; dow < sim.DaysPerWeek; dow++ {
			for hour := 0; hour < sim.HoursPerDay; hour++ {
				s := Slot{Room: room, RoomCode: code, DayOfWeek: dow, Hour: hour, IsWeekend: sim.IsWeekend(dow)}
				if c, ok := byKey[slotKey{room, dow, hour}]; ok {
					s.WeightedUsage = float64(c.wash*WashWeight + c.dry*DryWeight)
					s.Samples = c.wash + c.dry
				}
				out = append(out, s)
			}
		}
	}
	return out, nil
}

package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimeOf(t *testing.T) {
	tests := []struct {
		name string
		tick int64
		want TimeFields
	}{
		{"start", 0, TimeFields{Tick: 0, Hour: 0, Day: 0, DayOfWeek: 0, IsWeekend: false}},
		{"monday 20:30", 20*60 + 30, TimeFields{Tick: 1230, Hour: 20, Day: 0, DayOfWeek: 0}},
		{"saturday 00:00", 5 * TicksPerDay, TimeFields{Tick: 7200, Hour: 0, Day: 5, DayOfWeek: 5, IsWeekend: true}},
		{"sunday 23:59", 7*TicksPerDay - 1, TimeFields{Tick: 10079, Hour: 23, Day: 6, DayOfWeek: 6, IsWeekend: true}},
		{"second monday", 7 * TicksPerDay, TimeFields{Tick: 10080, Hour: 0, Day: 7, DayOfWeek: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TimeOf(tt.tick))
		})
	}
}

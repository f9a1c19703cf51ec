package sim

// One tick is one simulated minute.
const (
	TicksPerHour = 60
	HoursPerDay  = 24
	TicksPerDay  = TicksPerHour * HoursPerDay
	DaysPerWeek  = 7
)

// TimeFields are the calendar fields derived from a tick.
// DayOfWeek is Monday-based: 0=Monday .. 6=Sunday; tick 0 is Monday 00:00.
type TimeFields struct {
	Tick      int64
	Hour      int
	Day       int64
	DayOfWeek int
	IsWeekend bool
}

// TimeOf derives hour, day, day-of-week and weekend flag from a tick.
func TimeOf(tick int64) TimeFields {
	day := tick / TicksPerDay
	dow := int(day % DaysPerWeek)
	return TimeFields{
		Tick:      tick,
		Hour:      HourOf(tick),
		Day:       day,
		DayOfWeek: dow,
		IsWeekend: IsWeekend(dow),
	}
}

// HourOf returns (tick/60) mod 24.
func HourOf(tick int64) int {
	return int((tick / TicksPerHour) % HoursPerDay)
}

// IsWeekend reports whether a Monday-based day-of-week is Saturday or Sunday.
func IsWeekend(dayOfWeek int) bool {
	return dayOfWeek == 5 || dayOfWeek == 6
}

package forecast

import (
	"fmt"

	"github.com/laundry-sim/laundry-sim/sim"
	"github.com/laundry-sim/laundry-sim/sim/slots"
)

// WeeklyEntry is one hour of a day in a weekly report.
type WeeklyEntry struct {
	Hour  int            `json:"hour"`
	Rooms map[string]int `json:"rooms"`
}

// Week holds the report rows of each day, Monday first.
type Week struct {
	Mon []WeeklyEntry `json:"mon"`
	Tue []WeeklyEntry `json:"tue"`
	Wed []WeeklyEntry `json:"wed"`
	Thu []WeeklyEntry `json:"thu"`
	Fri []WeeklyEntry `json:"fri"`
	Sat []WeeklyEntry `json:"sat"`
	Sun []WeeklyEntry `json:"sun"`
}

// Day returns a pointer to the rows of a Monday-based day index.
func (w *Week) Day(dow int) *[]WeeklyEntry {
	return [...]*[]WeeklyEntry{&w.Mon, &w.Tue, &w.Wed, &w.Thu, &w.Fri, &w.Sat, &w.Sun}[dow]
}

// WeeklyReport is the predicted congestion of every room for a full week.
type WeeklyReport struct {
	Unit            string `json:"unit"`
	CongestionScale string `json:"congestion_scale"`
	Week            Week   `json:"week"`
}

// BuildWeeklyReport predicts every row of a slot table and arranges the
// results by day and hour. Hours with no slot in any room are omitted.
func BuildWeeklyReport(model Model, features []string, scale string, table []slots.Slot) (*WeeklyReport, error) {
	X, _, err := Dataset(table, features)
	if err != nil {
		return nil, err
	}
	pred, err := model.Predict(X)
	if err != nil {
		return nil, err
	}
	if len(pred) != len(table) {
		return nil, fmt.Errorf("model returned %d predictions for %d slots", len(pred), len(table))
	}

	var grid [sim.DaysPerWeek][sim.HoursPerDay]map[string]int
	for i, s := range table {
		if s.DayOfWeek < 0 || s.DayOfWeek >= sim.DaysPerWeek || s.Hour < 0 || s.Hour >= sim.HoursPerDay {
			return nil, fmt.Errorf("%w: slot %d at day %d hour %d", ErrInvalidInput, i, s.DayOfWeek, s.Hour)
		}
		cell := &grid[s.DayOfWeek][s.Hour]
		if *cell == nil {
			*cell = make(map[string]int)
		}
		(*cell)[s.Room] = pred[i]
	}

	rep := &WeeklyReport{Unit: "hour", CongestionScale: scale}
	for dow := range grid {
		day := rep.Week.Day(dow)
		*day = []WeeklyEntry{}
		for hour, rooms := range grid[dow] {
			if rooms != nil {
				*day = append(*day, WeeklyEntry{Hour: hour, Rooms: rooms})
			}
		}
	}
	return rep, nil
}

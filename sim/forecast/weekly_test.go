package forecast

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laundry-sim/laundry-sim/sim/slots"
)

// hourModel predicts the first feature column.
type hourModel struct{}

func (hourModel) Predict(X [][]float64) ([]int, error) {
	out := make([]int, len(X))
	for i, x := range X {
		out[i] = int(x[0])
	}
	return out, nil
}

func TestBuildWeeklyReport(t *testing.T) {
	// GIVEN two rooms observed on Monday 08:00 and only one on Sunday 22:00
	table := []slots.Slot{
		{Room: "men", RoomCode: 0, DayOfWeek: 0, Hour: 8},
		{Room: "women", RoomCode: 1, DayOfWeek: 0, Hour: 8},
		{Room: "women", RoomCode: 1, DayOfWeek: 6, Hour: 22, IsWeekend: true},
	}

	rep, err := BuildWeeklyReport(hourModel{}, []string{"hour", "room_code"}, "1-10", table)
	require.NoError(t, err)

	assert.Equal(t, "hour", rep.Unit)
	assert.Equal(t, "1-10", rep.CongestionScale)
	assert.Equal(t, []WeeklyEntry{{Hour: 8, Rooms: map[string]int{"men": 8, "women": 8}}}, rep.Week.Mon)
	assert.Equal(t, []WeeklyEntry{{Hour: 22, Rooms: map[string]int{"women": 22}}}, rep.Week.Sun)
	assert.Empty(t, rep.Week.Wed)

	// days serialize Monday first, empty days as []
	data, err := json.Marshal(rep)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"week":{"mon":[{"hour":8`)
	assert.Contains(t, string(data), `"tue":[]`)
}

func TestBuildWeeklyReport_Errors(t *testing.T) {
	_, err := BuildWeeklyReport(hourModel{}, DefaultFeatures, "1-10", nil)
	assert.Error(t, err)

	_, err = BuildWeeklyReport(hourModel{}, DefaultFeatures, "1-10", []slots.Slot{{Room: "men", DayOfWeek: 9}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

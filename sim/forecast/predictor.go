package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/laundry-sim/laundry-sim/sim"
	"github.com/laundry-sim/laundry-sim/sim/slots"
)

// DateLayout is the accepted calendar date format.
const DateLayout = "2006-01-02"

// ServingConfig supplies the feature values a calendar date cannot.
// Zero values are used when no history is available.
type ServingConfig struct {
	RoomCode int     `yaml:"room_code"`
	Last1h   float64 `yaml:"last_1h"`
	Last3h   float64 `yaml:"last_3h"`
}

// Validate rejects out-of-range serving features.
func (c ServingConfig) Validate() error {
	if c.RoomCode < 0 {
		return fmt.Errorf("%w: room_code must be non-negative, got %d", ErrInvalidInput, c.RoomCode)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{{"last_1h", c.Last1h}, {"last_3h", c.Last3h}} {
		if f.v < 0 || math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s must be a non-negative number, got %v", ErrInvalidInput, f.name, f.v)
		}
	}
	return nil
}

// HourForecast is one row of a daily timeline.
type HourForecast struct {
	Hour                int `json:"hour"`
	PredictedCongestion int `json:"predicted_congestion"`
}

// DailyForecast is the model's view of one calendar day.
type DailyForecast struct {
	Date          time.Time
	DayOfWeek     int
	IsWeekend     bool
	Timeline      []HourForecast // 24 rows, ascending by hour
	PeakHour      int            // smallest hour with the highest prediction
	RecommendHour int            // smallest hour with the lowest prediction
}

// Predictor turns a date into a daily forecast. Safe for concurrent use.
type Predictor struct {
	model    Model
	features []string
	serving  ServingConfig
}

// NewPredictor pairs a model with its feature schema.
func NewPredictor(model Model, features []string, serving ServingConfig) (*Predictor, error) {
	if model == nil {
		panic("NewPredictor: model must not be nil")
	}
	if err := ValidateFeatures(features); err != nil {
		return nil, err
	}
	if err := serving.Validate(); err != nil {
		return nil, err
	}
	return &Predictor{
		model:    model,
		features: append([]string(nil), features...),
		serving:  serving,
	}, nil
}

// NewArtifactPredictor serves a loaded artifact.
func NewArtifactPredictor(a *Artifact, serving ServingConfig) (*Predictor, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return NewPredictor(a.Forest, a.Features, serving)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidInput, s)
	}
	return t, nil
}

// Weekday returns the Monday-based day index of t (0=Monday .. 6=Sunday).
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// DayRows builds the 24 feature rows for date, hour 0 first.
func (p *Predictor) DayRows(date time.Time) [][]float64 {
	dow := Weekday(date)
	rows := make([][]float64, sim.HoursPerDay)
	for h := range rows {
		rows[h] = FeatureRow(slots.Slot{
			RoomCode:  p.serving.RoomCode,
			DayOfWeek: dow,
			Hour:      h,
			IsWeekend: sim.IsWeekend(dow),
			Last1h:    p.serving.Last1h,
			Last3h:    p.serving.Last3h,
		}, p.features)
	}
	return rows
}

// PredictDay forecasts every hour of date.
func (p *Predictor) PredictDay(date time.Time) (*DailyForecast, error) {
	pred, err := p.model.Predict(p.DayRows(date))
	if err != nil {
		return nil, fmt.Errorf("predicting %s: %w", date.Format(DateLayout), err)
	}
	if len(pred) != sim.HoursPerDay {
		return nil, fmt.Errorf("model returned %d predictions for %d rows", len(pred), sim.HoursPerDay)
	}
	dow := Weekday(date)
	df := &DailyForecast{
		Date:      date,
		DayOfWeek: dow,
		IsWeekend: sim.IsWeekend(dow),
		Timeline:  make([]HourForecast, len(pred)),
	}
	for h, v := range pred {
		df.Timeline[h] = HourForecast{Hour: h, PredictedCongestion: v}
		if v > pred[df.PeakHour] {
			df.PeakHour = h
		}
		if v < pred[df.RecommendHour] {
			df.RecommendHour = h
		}
	}
	return df, nil
}

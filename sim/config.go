package sim

import (
	"fmt"
	"math"
)

// MaxBailProb caps the per-request bail probability under dry-queue overload.
const MaxBailProb = 0.9

// ServiceTime parameterizes a clamped, rounded Normal duration in minutes.
type ServiceTime struct {
	Mean   float64 `yaml:"mean"`
	StdDev float64 `yaml:"stddev"`
	Min    int     `yaml:"min"`
}

// PoolConfig groups the parameters of one room's washer/dryer pool.
type PoolConfig struct {
	Washers int `yaml:"washers"` // number of washers (must be > 0)
	Dryers  int `yaml:"dryers"`  // number of dryers (must be > 0)

	Population            int     `yaml:"population"`               // residents sharing the room (>= 0)
	WeeklyWashesPerPerson float64 `yaml:"weekly_washes_per_person"` // loads per resident per week
	PeakMultiplier        float64 `yaml:"peak_multiplier"`          // height of the evening bump

	WashTime   ServiceTime `yaml:"wash_time"`
	DryTime    ServiceTime `yaml:"dry_time"`
	ForgetTime ServiceTime `yaml:"forget_time"`

	PUseDryerAfterWash float64 `yaml:"p_use_dryer_after_wash"`
	PForget            float64 `yaml:"p_forget"`

	MaxDryQueue    int     `yaml:"max_dry_queue"`     // queue length above which requests start to bail
	PBailBase      float64 `yaml:"p_bail_base"`       // bail probability at one request over the limit
	PBailPerPerson float64 `yaml:"p_bail_per_person"` // added per request over the limit
}

// DefaultPoolConfig returns the calibrated defaults for a dormitory room of
// 358 residents sharing 10 washers and 5 dryers.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		Washers:               10,
		Dryers:                5,
		Population:            358,
		WeeklyWashesPerPerson: 1.5,
		PeakMultiplier:        2.0,
		WashTime:              ServiceTime{Mean: 45, StdDev: 5, Min: 10},
		DryTime:               ServiceTime{Mean: 100, StdDev: 10, Min: 20},
		ForgetTime:            ServiceTime{Mean: 10, StdDev: 5, Min: 0},
		PUseDryerAfterWash:    0.8,
		PForget:               0.3,
		MaxDryQueue:           10,
		PBailBase:             0.05,
		PBailPerPerson:        0.02,
	}
}

// Validate checks that the pool can be simulated.
// All errors wrap ErrInvalidConfig.
func (c PoolConfig) Validate() error {
	if c.Washers <= 0 {
		return fmt.Errorf("%w: washers must be positive, got %d", ErrInvalidConfig, c.Washers)
	}
	if c.Dryers <= 0 {
		return fmt.Errorf("%w: dryers must be positive, got %d", ErrInvalidConfig, c.Dryers)
	}
	if c.Population < 0 {
		return fmt.Errorf("%w: population must be non-negative, got %d", ErrInvalidConfig, c.Population)
	}
	if c.MaxDryQueue < 0 {
		return fmt.Errorf("%w: max_dry_queue must be non-negative, got %d", ErrInvalidConfig, c.MaxDryQueue)
	}
	if err := validateNonNegative("weekly_washes_per_person", c.WeeklyWashesPerPerson); err != nil {
		return err
	}
	if err := validateNonNegative("peak_multiplier", c.PeakMultiplier); err != nil {
		return err
	}
	probs := []struct {
		name string
		p    float64
	}{
		{"p_use_dryer_after_wash", c.PUseDryerAfterWash},
		{"p_forget", c.PForget},
		{"p_bail_base", c.PBailBase},
		{"p_bail_per_person", c.PBailPerPerson},
	}
	for _, pr := range probs {
		if err := validateProbability(pr.name, pr.p); err != nil {
			return err
		}
	}
	if err := validateServiceTime("wash_time", c.WashTime); err != nil {
		return err
	}
	if err := validateServiceTime("dry_time", c.DryTime); err != nil {
		return err
	}
	// a started machine must be busy for at least one tick
	if c.WashTime.Min < 1 || c.DryTime.Min < 1 {
		return fmt.Errorf("%w: wash_time.min and dry_time.min must be at least 1, got %d and %d",
			ErrInvalidConfig, c.WashTime.Min, c.DryTime.Min)
	}
	return validateServiceTime("forget_time", c.ForgetTime)
}

func validateServiceTime(name string, st ServiceTime) error {
	if err := validateNonNegative(name+".mean", st.Mean); err != nil {
		return err
	}
	if err := validateNonNegative(name+".stddev", st.StdDev); err != nil {
		return err
	}
	if st.Min < 0 {
		return fmt.Errorf("%w: %s.min must be non-negative, got %d", ErrInvalidConfig, name, st.Min)
	}
	return nil
}

func validateNonNegative(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%w: %s must be a finite number, got %f", ErrInvalidConfig, name, val)
	}
	if val < 0 {
		return fmt.Errorf("%w: %s must be non-negative, got %f", ErrInvalidConfig, name, val)
	}
	return nil
}

func validateProbability(name string, p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return fmt.Errorf("%w: %s must be in [0, 1], got %f", ErrInvalidConfig, name, p)
	}
	return nil
}

package sim

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// quantileEps keeps uniform draws away from 0 and 1, where the Normal
// quantile is infinite.
const quantileEps = 1e-12

// ServiceSampler draws clamped, rounded Normal durations in whole minutes:
// max(Min, round(Normal(Mean, StdDev))).
//
// Each sample consumes exactly one uniform draw, transformed through the
// Normal inverse CDF, so a scripted RandomSource fully determines the result.
type ServiceSampler struct {
	dist distuv.Normal
	min  int
}

// NewServiceSampler creates a sampler from a ServiceTime.
func NewServiceSampler(st ServiceTime) *ServiceSampler {
	return &ServiceSampler{
		dist: distuv.Normal{Mu: st.Mean, Sigma: st.StdDev},
		min:  st.Min,
	}
}

// Sample returns a duration >= Min.
func (s *ServiceSampler) Sample(rng RandomSource) int {
	u := rng.Float64()
	if s.dist.Sigma == 0 {
		return s.clamp(s.dist.Mu)
	}
	u = math.Min(math.Max(u, quantileEps), 1-quantileEps)
	return s.clamp(s.dist.Quantile(u))
}

func (s *ServiceSampler) clamp(val float64) int {
	result := int(math.Round(val))
	if result < s.min {
		return s.min
	}
	return result
}

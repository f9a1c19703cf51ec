package sim

import (
	"fmt"
	"math"
)

// State is the complete mutable state of one room's pool, as a value.
// Each entry of Washers/Dryers is the unit's remaining busy minutes; 0 is idle.
type State struct {
	Washers   []int
	Dryers    []int
	WashQueue int // wash requests waiting for a washer
	DryQueue  int // washed loads waiting for a dryer
}

// NewState returns an all-idle pool with empty queues.
func NewState(washers, dryers int) State {
	return State{
		Washers: make([]int, washers),
		Dryers:  make([]int, dryers),
	}
}

// Clone returns a deep copy; Step never mutates its input.
func (s State) Clone() State {
	return State{
		Washers:   append([]int(nil), s.Washers...),
		Dryers:    append([]int(nil), s.Dryers...),
		WashQueue: s.WashQueue,
		DryQueue:  s.DryQueue,
	}
}

// ActiveWashers returns the number of busy washers.
func (s State) ActiveWashers() int {
	return countBusy(s.Washers)
}

// ActiveDryers returns the number of busy dryers.
func (s State) ActiveDryers() int {
	return countBusy(s.Dryers)
}

func countBusy(units []int) int {
	n := 0
	for _, remaining := range units {
		if remaining > 0 {
			n++
		}
	}
	return n
}

// StepOutcome counts what happened during one tick.
type StepOutcome struct {
	Arrived         bool
	WashesCompleted int
	DryEnqueued     int
	DriesCompleted  int
	Bailed          int
	WashesStarted   int
	DriesStarted    int
	Forgotten       int // starts extended by a forget delay
}

// Pool holds the immutable parameters and samplers of one room.
// It carries no simulation state; see State and Step.
type Pool struct {
	cfg      PoolConfig
	arrivals *ArrivalGenerator
	wash     *ServiceSampler
	dry      *ServiceSampler
	forget   *ServiceSampler
}

// NewPool validates cfg and builds the pool's samplers.
func NewPool(cfg PoolConfig) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pool{
		cfg:      cfg,
		arrivals: NewArrivalGenerator(cfg),
		wash:     NewServiceSampler(cfg.WashTime),
		dry:      NewServiceSampler(cfg.DryTime),
		forget:   NewServiceSampler(cfg.ForgetTime),
	}, nil
}

// Config returns the pool's configuration.
func (p *Pool) Config() PoolConfig {
	return p.cfg
}

// Arrivals returns the pool's arrival generator.
func (p *Pool) Arrivals() *ArrivalGenerator {
	return p.arrivals
}

// InitialState returns an idle state sized for this pool.
func (p *Pool) InitialState() State {
	return NewState(p.cfg.Washers, p.cfg.Dryers)
}

// Step advances state by one tick and returns the new state.
//
// Sub-steps run in this fixed order, and draws are consumed from rng in the
// same order:
//  1. arrival: one draw
//  2. washers tick down; each washer reaching 0 draws once for "uses dryer"
//  3. dryers tick down (no draws)
//  4. bail: when DryQueue > MaxDryQueue, one draw per queued dry request
//  5. idle washers take wash requests: duration draw, forget coin, and a
//     forget-duration draw when the coin hits
//  6. idle dryers take dry requests with the same draw pattern
//
// Step never fails: queue lengths and durations are floored.
func (p *Pool) Step(state State, tick int64, rng RandomSource) (State, StepOutcome) {
	if len(state.Washers) != p.cfg.Washers || len(state.Dryers) != p.cfg.Dryers {
		panic(fmt.Sprintf("Step: state has %d washers/%d dryers, pool has %d/%d",
			len(state.Washers), len(state.Dryers), p.cfg.Washers, p.cfg.Dryers))
	}
	next := state.Clone()
	var out StepOutcome

	// 1. arrival
	if p.arrivals.Sample(tick, rng) {
		next.WashQueue++
		out.Arrived = true
	}

	// 2. washers
	for i := range next.Washers {
		if next.Washers[i] == 0 {
			continue
		}
		next.Washers[i]--
		if next.Washers[i] == 0 {
			out.WashesCompleted++
			if rng.Float64() < p.cfg.PUseDryerAfterWash {
				next.DryQueue++
				out.DryEnqueued++
			}
		}
	}

	// 3. dryers
	for i := range next.Dryers {
		if next.Dryers[i] == 0 {
			continue
		}
		next.Dryers[i]--
		if next.Dryers[i] == 0 {
			out.DriesCompleted++
		}
	}

	// 4. bail
	if next.DryQueue > p.cfg.MaxDryQueue {
		excess := next.DryQueue - p.cfg.MaxDryQueue
		bailProb := BailProb(excess, p.cfg.PBailBase, p.cfg.PBailPerPerson)
		bailed := 0
		for range next.DryQueue {
			if rng.Float64() < bailProb {
				bailed++
			}
		}
		next.DryQueue = max(0, next.DryQueue-bailed)
		out.Bailed = bailed
	}

	// 5. washer assignment
	for i := range next.Washers {
		if next.Washers[i] != 0 || next.WashQueue == 0 {
			continue
		}
		next.WashQueue--
		next.Washers[i] = p.occupancy(p.wash, rng, &out)
		out.WashesStarted++
	}

	// 6. dryer assignment
	for i := range next.Dryers {
		if next.Dryers[i] != 0 || next.DryQueue == 0 {
			continue
		}
		next.DryQueue--
		next.Dryers[i] = p.occupancy(p.dry, rng, &out)
		out.DriesStarted++
	}

	return next, out
}

// occupancy samples a service time and the optional forget extension.
func (p *Pool) occupancy(service *ServiceSampler, rng RandomSource, out *StepOutcome) int {
	minutes := service.Sample(rng)
	if rng.Float64() < p.cfg.PForget {
		minutes += p.forget.Sample(rng)
		out.Forgotten++
	}
	return minutes
}

// BailProb returns min(base + excess·perPerson, MaxBailProb).
func BailProb(excess int, base, perPerson float64) float64 {
	return math.Min(base+float64(excess)*perPerson, MaxBailProb)
}

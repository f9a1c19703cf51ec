// sim/simulator.go
package sim

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Simulator is the core object that holds simulation time, pool state, and
// the tick loop for one room.
type Simulator struct {
	Room    string
	Clock   int64 // next tick to execute
	Horizon int64 // ticks to simulate; the run covers [0, Horizon)
	State   State
	Metrics *Metrics
	// Records has one UsageRecord per executed tick, in tick order.
	Records []UsageRecord

	pool *Pool
	rng  RandomSource
}

// NewSimulator validates cfg and returns a simulator with an idle pool.
func NewSimulator(room string, cfg PoolConfig, horizon int64, rng RandomSource) (*Simulator, error) {
	if rng == nil {
		panic("NewSimulator: rng must not be nil")
	}
	if room == "" {
		return nil, fmt.Errorf("%w: room name must not be empty", ErrInvalidConfig)
	}
	if horizon < 0 {
		return nil, fmt.Errorf("%w: horizon must be non-negative, got %d", ErrInvalidConfig, horizon)
	}
	pool, err := NewPool(cfg)
	if err != nil {
		return nil, fmt.Errorf("room %s: %w", room, err)
	}
	return &Simulator{
		Room:    room,
		Horizon: horizon,
		State:   pool.InitialState(),
		Metrics: NewMetrics(room),
		Records: make([]UsageRecord, 0, horizon),
		pool:    pool,
		rng:     rng,
	}, nil
}

// Pool returns the simulator's pool parameters.
func (sim *Simulator) Pool() *Pool {
	return sim.pool
}

// Step executes the tick at sim.Clock, records it, and advances the clock.
// It returns the tick's outcome.
func (sim *Simulator) Step() StepOutcome {
	next, out := sim.pool.Step(sim.State, sim.Clock, sim.rng)
	sim.State = next
	sim.Metrics.Observe(out, next)
	sim.Records = append(sim.Records, NewUsageRecord(sim.Room, sim.Clock, next))
	sim.Clock++
	return out
}

// Run executes every remaining tick up to the horizon and returns the records.
// ctx is checked at every simulated day boundary.
func (sim *Simulator) Run(ctx context.Context) ([]UsageRecord, error) {
	for sim.Clock < sim.Horizon {
		if sim.Clock%TicksPerDay == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("room %s: %w", sim.Room, err)
			}
		}
		sim.Step()
		if sim.Clock%TicksPerDay == 0 {
			logrus.Debugf("[%s day %03d] arrivals=%d washQ=%d dryQ=%d bailed=%d",
				sim.Room, sim.Clock/TicksPerDay, sim.Metrics.Arrivals,
				sim.State.WashQueue, sim.State.DryQueue, sim.Metrics.Bailed)
		}
	}
	logrus.Infof("[%s tick %07d] Simulation ended", sim.Room, sim.Clock)
	return sim.Records, nil
}

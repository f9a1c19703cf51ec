package sim

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laundry-sim/laundry-sim/sim/internal/testutil"
)

func newTestPool(t *testing.T, mutate func(*PoolConfig)) *Pool {
	t.Helper()
	cfg := DefaultPoolConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	p, err := NewPool(cfg)
	require.NoError(t, err)
	return p
}

func TestStep_ArrivalIsAssignedToIdleWasher(t *testing.T) {
	// GIVEN an idle pool and draws: arrival hits, median wash time, no forget
	p := newTestPool(t, nil)
	rng := testutil.NewScriptedSource(0.0, 0.5, testutil.NoEvent)

	// WHEN one tick runs
	next, out := p.Step(p.InitialState(), 0, rng)

	// THEN the request is taken by the first washer for round(45) minutes
	assert.True(t, out.Arrived)
	assert.Equal(t, 45, next.Washers[0])
	assert.Equal(t, 0, next.WashQueue)
	assert.Equal(t, 1, out.WashesStarted)
	assert.Equal(t, 1, next.ActiveWashers())
	assert.Equal(t, 3, rng.Consumed())
}

func TestStep_ForgetExtendsOccupancy(t *testing.T) {
	// GIVEN draws: arrival, median wash, forget coin hits, median forget time
	p := newTestPool(t, nil)
	rng := testutil.NewScriptedSource(0.0, 0.5, 0.0, 0.5)

	next, out := p.Step(p.InitialState(), 0, rng)

	// THEN the washer is held for 45 + 10 minutes
	assert.Equal(t, 55, next.Washers[0])
	assert.Equal(t, 1, out.Forgotten)
}

func TestStep_FinishedWashJoinsDryQueueAndGetsDryer(t *testing.T) {
	// GIVEN a washer with one minute left and idle dryers
	p := newTestPool(t, nil)
	state := p.InitialState()
	state.Washers[0] = 1
	// draws: no arrival, uses dryer, median dry time, no forget
	rng := testutil.NewScriptedSource(testutil.NoEvent, 0.0, 0.5, testutil.NoEvent)

	next, out := p.Step(state, 0, rng)

	// THEN the wash completes and the load starts drying in the same tick
	assert.Equal(t, 1, out.WashesCompleted)
	assert.Equal(t, 1, out.DryEnqueued)
	assert.Equal(t, 1, out.DriesStarted)
	assert.Equal(t, 0, next.Washers[0])
	assert.Equal(t, 100, next.Dryers[0])
	assert.Equal(t, 0, next.DryQueue)
}

func TestStep_FinishedWashSkipsDryer(t *testing.T) {
	p := newTestPool(t, nil)
	state := p.InitialState()
	state.Washers[3] = 1
	rng := testutil.NewScriptedSource(testutil.NoEvent, testutil.NoEvent)

	next, out := p.Step(state, 0, rng)

	assert.Equal(t, 1, out.WashesCompleted)
	assert.Equal(t, 0, out.DryEnqueued)
	assert.Equal(t, 0, next.DryQueue)
	assert.Equal(t, 0, next.ActiveDryers())
}

func TestStep_WasherFreedThisTickIsReassigned(t *testing.T) {
	// GIVEN a washer about to finish and one waiting request
	p := newTestPool(t, nil)
	state := p.InitialState()
	state.Washers[0] = 1
	state.WashQueue = 1
	rng := testutil.NewScriptedSource(testutil.NoEvent, testutil.NoEvent, 0.5, testutil.NoEvent)

	next, _ := p.Step(state, 0, rng)

	// THEN sub-step 5 sees the washer idle and assigns the waiting request
	assert.Equal(t, 45, next.Washers[0])
	assert.Equal(t, 0, next.WashQueue)
}

func TestStep_BusyUnitsDecrementOncePerTick(t *testing.T) {
	p := newTestPool(t, nil)
	state := p.InitialState()
	state.Washers[0] = 5
	state.Dryers[0] = 7

	next, _ := p.Step(state, 0, testutil.NewScriptedSource())

	assert.Equal(t, 4, next.Washers[0])
	assert.Equal(t, 6, next.Dryers[0])
}

func TestStep_BailRemovesQueuedDryRequests(t *testing.T) {
	// GIVEN all dryers busy and 15 queued dry requests (limit 10, excess 5)
	p := newTestPool(t, nil)
	state := p.InitialState()
	for i := range state.Dryers {
		state.Dryers[i] = 50
	}
	state.DryQueue = 15
	// bailProb = 0.05 + 5·0.02 = 0.15; three draws fall below it
	script := testutil.Concat(
		[]float64{testutil.NoEvent},
		testutil.Repeat(0.0, 3),
		testutil.Repeat(0.5, 12),
	)
	rng := testutil.NewScriptedSource(script...)

	next, out := p.Step(state, 0, rng)

	assert.Equal(t, 3, out.Bailed)
	assert.Equal(t, 12, next.DryQueue)
	assert.Equal(t, 16, rng.Consumed())
}

func TestStep_BailNeverDrivesQueueNegative(t *testing.T) {
	p := newTestPool(t, nil)
	state := p.InitialState()
	for i := range state.Dryers {
		state.Dryers[i] = 50
	}
	state.DryQueue = 12
	rng := testutil.NewScriptedSource(testutil.Concat([]float64{testutil.NoEvent}, testutil.Repeat(0.0, 12))...)

	next, out := p.Step(state, 0, rng)

	assert.Equal(t, 12, out.Bailed)
	assert.Equal(t, 0, next.DryQueue)
}

func TestStep_DoesNotMutateInput(t *testing.T) {
	p := newTestPool(t, nil)
	state := p.InitialState()
	state.Washers[0] = 3
	before := state.Clone()

	_, _ = p.Step(state, 0, testutil.NewScriptedSource(0.0, 0.5, testutil.NoEvent))

	assert.Equal(t, before, state)
}

func TestStep_MismatchedStatePanics(t *testing.T) {
	p := newTestPool(t, nil)
	assert.Panics(t, func() {
		p.Step(NewState(1, 1), 0, testutil.NewScriptedSource())
	})
}

func TestBailProb_CappedAtMax(t *testing.T) {
	assert.InDelta(t, 0.07, BailProb(1, 0.05, 0.02), 1e-12)
	assert.Equal(t, MaxBailProb, BailProb(100, 0.05, 0.02))
}

func TestStep_InvariantsHoldUnderRandomLoad(t *testing.T) {
	// GIVEN a heavily loaded room and a seeded RNG
	p := newTestPool(t, func(c *PoolConfig) { c.Population = 3000 })
	rng := rand.New(rand.NewSource(11))
	state := p.InitialState()

	// WHEN three simulated days run
	for tick := int64(0); tick < 3*TicksPerDay; tick++ {
		prev := state
		state, _ = p.Step(state, tick, rng)

		// THEN remaining times and queues never go negative, and a unit only
		// changes by more than one minute when it was assignable (idle).
		for i, r := range state.Washers {
			require.GreaterOrEqual(t, r, 0, "washer %d at tick %d", i, tick)
			if prev.Washers[i] > 1 {
				require.Equal(t, prev.Washers[i]-1, r, "busy washer %d reassigned at tick %d", i, tick)
			}
		}
		for i, r := range state.Dryers {
			require.GreaterOrEqual(t, r, 0, "dryer %d at tick %d", i, tick)
			if prev.Dryers[i] > 1 {
				require.Equal(t, prev.Dryers[i]-1, r, "busy dryer %d reassigned at tick %d", i, tick)
			}
		}
		require.GreaterOrEqual(t, state.WashQueue, 0)
		require.GreaterOrEqual(t, state.DryQueue, 0)
	}
}

func TestPoolConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PoolConfig)
	}{
		{"negative population", func(c *PoolConfig) { c.Population = -1 }},
		{"zero washers", func(c *PoolConfig) { c.Washers = 0 }},
		{"zero dryers", func(c *PoolConfig) { c.Dryers = 0 }},
		{"probability above one", func(c *PoolConfig) { c.PForget = 1.5 }},
		{"negative stddev", func(c *PoolConfig) { c.DryTime.StdDev = -1 }},
		{"zero wash minimum", func(c *PoolConfig) { c.WashTime.Min = 0 }},
		{"negative max dry queue", func(c *PoolConfig) { c.MaxDryQueue = -3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultPoolConfig()
			tt.mutate(&cfg)
			_, err := NewPool(cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
		})
	}

	assert.NoError(t, DefaultPoolConfig().Validate())
	zeroPop := DefaultPoolConfig()
	zeroPop.Population = 0
	assert.NoError(t, zeroPop.Validate(), "an empty room is a valid configuration")
}

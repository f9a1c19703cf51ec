package sim

import (
	"hash/fnv"
	"math/rand"
)

// RandomSource is the only randomness the pool kernel consumes.
// Float64 returns a uniform draw in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two runs with the same SimulationKey and identical configuration
// produce identical records.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemEventLog is the RNG subsystem for synthetic event logs.
	// Uses the master seed directly.
	SubsystemEventLog = "eventlog"

	// SubsystemTraining is the RNG subsystem for forest training
	// (bootstrap samples and feature subsets).
	SubsystemTraining = "training"

	// SubsystemSplit is the RNG subsystem for the train/test split.
	SubsystemSplit = "split"
)

// SubsystemRoom returns the subsystem name for a room's pool.
// Each room gets its own stream so rooms can be simulated concurrently.
func SubsystemRoom(room string) string {
	return "room_" + room
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula:
//   - For SubsystemEventLog: uses masterSeed directly
//   - For all other subsystems: masterSeed XOR fnv1a64(subsystemName)
//
// Thread-safety: NOT thread-safe. Hand out per-subsystem streams before
// fanning out to goroutines; each *rand.Rand must then stay with one goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}

	var derivedSeed int64
	if name == SubsystemEventLog {
		derivedSeed = int64(p.key)
	} else {
		derivedSeed = int64(p.key) ^ fnv1a64(name)
	}

	rng := rand.New(rand.NewSource(derivedSeed))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}

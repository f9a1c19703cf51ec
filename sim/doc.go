// Package sim provides the core discrete-time simulation engine for a laundry
// room: a fixed pool of washers and dryers contended for by stochastic arrivals.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - clock.go: tick arithmetic (one tick is one simulated minute)
//   - pool.go: the value-type pool State and the pure Step transition
//   - simulator.go: the per-room tick loop that records UsageRecords
//
// # Architecture
//
// The sim package owns the per-room kernel; everything else lives in
// sub-packages:
//   - sim/facility/: several independent rooms simulated in parallel
//   - sim/eventlog/: synthetic raw wash/dry event logs
//   - sim/slots/: room×day×hour aggregation and rolling features
//   - sim/label/: congestion labeling policies
//   - sim/forecast/: classifier capability, daily predictor, readiness
//
// # Randomness
//
// Step consumes only the RandomSource capability. Production runs pass a
// *rand.Rand taken from a PartitionedRNG; tests pass scripted sources so a
// fixed draw sequence replays exactly.
package sim

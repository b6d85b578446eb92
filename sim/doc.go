// Package sim provides the discrete-event simulation engine for closed
// queuing networks: a fixed population of jobs circulating forever among
// multi-server stations with exponential service times and Markovian routing.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - event.go / event_queue.go: Arrival and Departure events and their time-ordered queue
//   - station.go: per-station FIFO queue, server occupancy and time-weighted accumulators
//   - network.go: the event loop, arrival/departure handlers, routing and the warmup reset
//   - metrics.go: post-run Results, bottleneck identification and report rendering
//
// # Determinism
//
// All randomness flows through PartitionedRNG: each station's service times
// and the routing draws use separate streams derived from one SimulationKey.
// Equal-time events pop in scheduling order. Two runs with the same seed and
// configuration produce identical event sequences and statistics.
//
// # Sub-packages
//   - sim/trace/: event-trace recording
//   - sim/sweep/: WIP-level sweeps across independent networks
package sim

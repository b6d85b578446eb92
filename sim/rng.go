package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two simulations with the same SimulationKey and identical configuration
// MUST produce bit-for-bit identical results.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// EntropyKey draws a SimulationKey from process entropy, for runs without a seed.
func EntropyKey() SimulationKey {
	return SimulationKey(rand.Int64())
}

// === Subsystem Constants ===

// SubsystemRouting is the RNG subsystem for next-station routing draws.
const SubsystemRouting = "routing"

// SubsystemService returns the subsystem name for station N's service times.
func SubsystemService(stationID int) string {
	return fmt.Sprintf("service_%d", stationID)
}

// === PartitionedRNG ===

// PartitionedRNG is the random-variate source of a simulation. It hands out
// deterministic, isolated streams per subsystem, so service-time sampling at
// one station never shifts the draws seen by another station or by routing.
//
// Derivation formula: PCG(masterSeed XOR fnv1a64(subsystemName), masterSeed).
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
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
	derived := uint64(int64(p.key) ^ fnv1a64(name))
	rng := rand.New(rand.NewPCG(derived, uint64(p.key)))
	p.subsystems[name] = rng
	return rng
}

// Exponential returns an exponential sampler with the given mean, drawing
// from the named subsystem's stream.
func (p *PartitionedRNG) Exponential(subsystem string, mean float64) distuv.Exponential {
	return distuv.Exponential{Rate: 1 / mean, Src: p.ForSubsystem(subsystem)}
}

// Categorical returns a sampler over indices 0..len(weights)-1 with the given
// weights, drawing from the named subsystem's stream.
func (p *PartitionedRNG) Categorical(subsystem string, weights []float64) distuv.Categorical {
	return distuv.NewCategorical(weights, p.ForSubsystem(subsystem))
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

package rainfall

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
)

// ClimateKey uniquely identifies a reproducible synthesis run. Two runs with
// the same ClimateKey and identical spec MUST produce bit-for-bit identical
// rainfall series.
type ClimateKey int64

// PartitionedRNG provides deterministic, isolated RNG streams per subsystem.
// Each simulated year draws from its own PCG stream seeded with the master
// seed and the fnv1a64 hash of the subsystem name, so the storms of one year
// never perturb another's.
//
// Not thread-safe; the generator is single-goroutine by design.
type PartitionedRNG struct {
	key        ClimateKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a master seed.
func NewPartitionedRNG(seed int64) *PartitionedRNG {
	return &PartitionedRNG{
		key:        ClimateKey(seed),
		subsystems: make(map[string]*rand.Rand),
	}
}

// SubsystemYear returns the subsystem name for one simulated year.
func SubsystemYear(year int) string {
	return fmt.Sprintf("year_%d", year)
}

// ForSubsystem returns a deterministically-seeded RNG for the named
// subsystem. The same name always returns the same cached instance.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewPCG(uint64(p.key), fnv1a64(name)))
	p.subsystems[name] = rng
	return rng
}

func fnv1a64(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

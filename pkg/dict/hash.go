package dict

import (
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
)

// HashFunc maps a key to a 64-bit hash. It must be deterministic for the
// lifetime of the tables using it.
type HashFunc func(key string) uint64

// processSeed is chosen once per process; hashes are stable within a run
// but not across runs.
var processSeed = rand.Uint32()

// Murmur3 returns a seeded 64-bit murmur3 hash function.
func Murmur3(seed uint32) HashFunc {
	return func(key string) uint64 {
		return murmur3.Sum64WithSeed([]byte(key), seed)
	}
}

// XXHash returns a seeded xxhash64 hash function.
func XXHash(seed uint32) HashFunc {
	return func(key string) uint64 {
		var d xxhash.Digest
		d.ResetWithSeed(uint64(seed))
		d.WriteString(key)
		return d.Sum64()
	}
}

// DefaultHash is the hash function used when none is configured.
func DefaultHash() HashFunc {
	return Murmur3(processSeed)
}

// HashByName resolves a configured hash name ("murmur3", "xxhash").
// It returns nil for unknown names.
func HashByName(name string) HashFunc {
	switch name {
	case "", "murmur3":
		return Murmur3(processSeed)
	case "xxhash":
		return XXHash(processSeed)
	default:
		return nil
	}
}

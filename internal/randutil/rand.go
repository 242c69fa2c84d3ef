package randutil

import (
	rand "math/rand/v2"
	"time"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from seed. Every shuffle
// and simulated decision in the room draws from one of these so that a seed
// replays a session exactly.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Derive returns an independent stream for a sub-component (a bot seat, the
// token pool) so components do not perturb each other's sequences.
func Derive(seed int64, stream uint64) *rand.Rand {
	return New(int64(mix(uint64(seed) ^ mix(stream+goldenRatio64))))
}

// Seed returns *seed when set, otherwise a wall-clock seed.
func Seed(seed *int64) int64 {
	if seed != nil {
		return *seed
	}
	return time.Now().UnixNano()
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

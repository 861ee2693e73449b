package randutil

import (
	"crypto/rand"
	"encoding/binary"
	randv2 "math/rand/v2"
)

// New returns a *rand.Rand seeded deterministically from the provided
// seed. Centralising the rand/v2 PCG construction keeps every call
// site reproducible from a single int64.
func New(seed int64) *randv2.Rand {
	u := uint64(seed)
	return randv2.New(randv2.NewPCG(splitmix(u), splitmix(u^0xa5a5a5a5a5a5a5a5)))
}

// NewFromEntropy returns a *rand.Rand seeded from the OS entropy pool,
// for production use where no seed is configured.
func NewFromEntropy() *randv2.Rand {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("randutil: failed to read entropy: " + err.Error())
	}
	return New(int64(binary.LittleEndian.Uint64(buf[:])))
}

func splitmix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
